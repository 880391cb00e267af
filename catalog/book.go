package catalog

import "strings"

// BookEntityName is used in error messages, log attributes, and metric labels.
const BookEntityName = "book"

// Book represents a title in the catalog.
type Book struct {
	ID    ID
	Title string
	ISBN  string
}

// BuildBook creates a transient Book (without an ID). The title must not be blank, the ISBN is free text.
func BuildBook(title string, isbn string) (Book, error) {
	if strings.TrimSpace(title) == "" {
		return Book{}, Invalid("title", ErrBlankTitle)
	}

	return Book{Title: title, ISBN: isbn}, nil
}

// EntityID returns the store-assigned ID.
func (b Book) EntityID() ID {
	return b.ID
}

// WithID returns a copy carrying the given ID.
func (b Book) WithID(id ID) Book {
	b.ID = id
	return b
}

// EntityName returns BookEntityName.
func (b Book) EntityName() string {
	return BookEntityName
}

// Apply returns a copy with every non-blank input overwriting the corresponding field.
func (b Book) Apply(title string, isbn string) Book {
	if !IsBlank(title) {
		b.Title = title
	}

	if !IsBlank(isbn) {
		b.ISBN = isbn
	}

	return b
}

// IsBlank reports whether s is empty or consists of whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
