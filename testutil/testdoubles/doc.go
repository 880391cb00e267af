// Package testdoubles provides test doubles for the catalog: in-memory gateways with failure
// injection, and spies for the logger, metrics, and tracing interfaces.
//
// The fakes keep their rows in memory and assign ids from a sequence, so service tests can run
// without a database. Every failure they return carries catalog.ErrStorage, like the sqlgateway.
package testdoubles
