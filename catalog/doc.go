// Package catalog defines the domain of a small library catalog:
// books, authors, users, loans, and the book-author relation.
//
// It contains the entity types, the gateway contracts a persistent store has to implement,
// the error taxonomy shared by all layers, and the dependency-free observability interfaces
// (Logger, MetricsCollector, TracingCollector, ContextualLogger).
//
// The package has no knowledge of any database. The SQL implementation of the gateways lives in
// catalog/sqlgateway, the in-memory caches and the loan booking engine live in catalog/service.
//
// Usage example:
//
//	loan := catalog.BuildLoan(userID, bookID, time.Now())
//	if catalog.Overlaps(loan.StartDate, loan.EndDate, other.StartDate, other.EndDate) {
//		// conflict
//	}
package catalog
