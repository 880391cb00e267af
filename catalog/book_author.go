package catalog

// BookAuthorEntityName is used in error messages, log attributes, and metric labels.
const BookAuthorEntityName = "book_author"

// BookAuthor associates one book with one author. It has no identity of its own,
// and duplicate pairs are allowed unless the store rejects them.
type BookAuthor struct {
	BookID   ID
	AuthorID ID
}

// BuildBookAuthor creates a relation row. Neither side is checked for existence.
func BuildBookAuthor(bookID ID, authorID ID) BookAuthor {
	return BookAuthor{BookID: bookID, AuthorID: authorID}
}
