// Package service keeps in-memory collections of the catalog entities consistent with a relational store.
//
// Every collection is loaded once on construction. Reads are served from memory;
// writes go to the store first and change memory only after the store accepted them.
//
// Deleting a book or an author first removes its book-author relations. The BookingEngine rejects
// loans whose inclusive date range overlaps another loan of the same book.
//
// Example usage:
//
//	store, _ := sqlgateway.NewStoreFromPGXPool(pool)
//	library, err := service.NewLibrary(ctx, service.Gateways{
//		Books:       store.Books(),
//		Authors:     store.Authors(),
//		Users:       store.Users(),
//		Loans:       store.Loans(),
//		BookAuthors: store.BookAuthors(),
//	}, service.WithLogger(logger))
//
//	alice, _ := library.Users.CreateUser(ctx, "Alice")
//	dune, _ := library.Books.CreateBook(ctx, "Dune", "978-0441013593")
//	loan, err := library.Loans.CreateLoan(ctx, alice.ID, dune.ID)
package service
