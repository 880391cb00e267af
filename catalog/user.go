package catalog

// UserEntityName is used in error messages, log attributes, and metric labels.
const UserEntityName = "user"

// User represents a library member who can borrow books.
type User struct {
	ID   ID
	Name string
}

// BuildUser creates a transient User (without an ID).
func BuildUser(name string) (User, error) {
	if IsBlank(name) {
		return User{}, Invalid("name", ErrBlankName)
	}

	return User{Name: name}, nil
}

// EntityID returns the store-assigned ID.
func (u User) EntityID() ID {
	return u.ID
}

// WithID returns a copy carrying the given ID.
func (u User) WithID(id ID) User {
	u.ID = id
	return u
}

// EntityName returns UserEntityName.
func (u User) EntityName() string {
	return UserEntityName
}

// Apply returns a copy with the name replaced unless the input is blank.
func (u User) Apply(name string) User {
	if !IsBlank(name) {
		u.Name = name
	}

	return u
}
