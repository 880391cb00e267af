package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-catalog-go/catalog/oteladapters"
	"github.com/AntonStoeckl/library-catalog-go/catalog/service"
	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway"
	"github.com/AntonStoeckl/library-catalog-go/config"
)

const instrumentationName = "catalogctl"

var (
	ErrUsage         = errors.New("usage: catalogctl [-init-schema] [-otel] <entity> <action> [flags]")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingFlag   = errors.New("missing required flag")
)

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := execute(ctx, args, stdout, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	return 0
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet(instrumentationName, flag.ContinueOnError)
	global.SetOutput(stderr)
	initSchema := global.Bool("init-schema", false, "create the catalog tables before running the command")
	withOTel := global.Bool("otel", false, "report logs, metrics, and traces through the global OpenTelemetry providers")

	if err := global.Parse(args); err != nil {
		return err
	}

	if global.NArg() < 2 {
		return ErrUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := config.NewLogger(cfg, stderr, "run_id", uuid.NewString())

	store, closeDB, err := openStore(ctx, cfg, logger, *withOTel)
	if err != nil {
		return err
	}
	defer closeDB()

	if *initSchema {
		if schemaErr := store.EnsureSchema(ctx); schemaErr != nil {
			return schemaErr
		}
	}

	library, err := service.NewLibrary(ctx, gatewaysOf(store), libraryOptions(cfg, logger, *withOTel)...)
	if err != nil {
		return err
	}

	entity, action := global.Arg(0), global.Arg(1)

	result, err := dispatch(ctx, library, entity, action, global.Args()[2:], stderr)
	if err != nil {
		return err
	}

	return printJSON(stdout, result)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, withOTel bool) (*sqlgateway.Store, func(), error) {
	options := []sqlgateway.Option{
		sqlgateway.WithDialect(cfg.Dialect),
		sqlgateway.WithLogger(logger),
	}
	if withOTel {
		options = append(options,
			sqlgateway.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
			sqlgateway.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
		)
	}

	switch cfg.AdapterType {
	case config.AdapterPGXPool:
		pool, err := config.OpenPGXPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlgateway.NewStoreFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return store, pool.Close, nil

	case config.AdapterSQLXDB:
		db, err := config.OpenSQLX(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlgateway.NewStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	default:
		db, err := config.OpenSQLDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		store, err := sqlgateway.NewStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil
	}
}

func gatewaysOf(store *sqlgateway.Store) service.Gateways {
	return service.Gateways{
		Books:       store.Books(),
		Authors:     store.Authors(),
		Users:       store.Users(),
		Loans:       store.Loans(),
		BookAuthors: store.BookAuthors(),
	}
}

func libraryOptions(cfg config.Config, logger *slog.Logger, withOTel bool) []service.Option {
	options := []service.Option{service.WithLogger(logger)}

	if withOTel {
		options = append(options,
			service.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
			service.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
			service.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
		)
	}

	if cfg.StrictParity {
		options = append(options, service.WithStrictParity())
	}

	return options
}

func printJSON(w io.Writer, result any) error {
	encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = fmt.Fprintln(w, string(encoded))

	return err
}
