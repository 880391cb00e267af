package catalog

// AuthorEntityName is used in error messages, log attributes, and metric labels.
const AuthorEntityName = "author"

// Author represents a person who wrote one or more books.
type Author struct {
	ID   ID
	Name string
}

// BuildAuthor creates a transient Author (without an ID).
func BuildAuthor(name string) (Author, error) {
	if IsBlank(name) {
		return Author{}, Invalid("name", ErrBlankName)
	}

	return Author{Name: name}, nil
}

// EntityID returns the store-assigned ID.
func (a Author) EntityID() ID {
	return a.ID
}

// WithID returns a copy carrying the given ID.
func (a Author) WithID(id ID) Author {
	a.ID = id
	return a
}

// EntityName returns AuthorEntityName.
func (a Author) EntityName() string {
	return AuthorEntityName
}

// Apply returns a copy with the name replaced unless the input is blank.
func (a Author) Apply(name string) Author {
	if !IsBlank(name) {
		a.Name = name
	}

	return a
}
