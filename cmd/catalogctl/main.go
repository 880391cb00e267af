// Command catalogctl runs single catalog operations against a configured database.
//
// Usage:
//
//	catalogctl [-init-schema] [-otel] <entity> <action> [flags]
//
// Entities are book, author, user, relation, and loan. The database is configured through
// the CATALOG_* environment variables read by the config package. Results are printed as JSON
// on stdout, logs are written as JSON to stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
