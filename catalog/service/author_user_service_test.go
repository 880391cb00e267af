package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	. "github.com/AntonStoeckl/library-catalog-go/catalog/service"
	"github.com/AntonStoeckl/library-catalog-go/testutil/testdoubles"
)

func Test_AuthorService_Lifecycle(t *testing.T) {
	// setup
	ctx := context.Background()
	fakes := newStoreFakes()
	library := buildLibrary(t, fakes)

	// act
	created, createErr := library.Authors.CreateAuthor(ctx, "Frank Herbert")
	require.NoError(t, createErr)

	found, findErr := library.Authors.FindAuthorByID(created.ID)
	updated, updateErr := library.Authors.UpdateAuthor(ctx, created.ID, "Franklin Patrick Herbert")
	unchanged, blankUpdateErr := library.Authors.UpdateAuthor(ctx, created.ID, "  ")
	read, readErr := library.Authors.ReadAuthor(ctx, created.ID)
	deleteErr := library.Authors.DeleteAuthor(ctx, created.ID)
	_, afterDeleteErr := library.Authors.FindAuthorByID(created.ID)

	// assert
	require.NoError(t, findErr)
	require.NoError(t, updateErr)
	require.NoError(t, blankUpdateErr)
	require.NoError(t, readErr)
	require.NoError(t, deleteErr)

	assert.Equal(t, catalog.Author{ID: created.ID, Name: "Frank Herbert"}, found)
	assert.Equal(t, "Franklin Patrick Herbert", updated.Name)
	assert.Equal(t, updated, unchanged)
	assert.Equal(t, updated, read)
	assert.ErrorIs(t, afterDeleteErr, catalog.ErrNotFound)
	assert.Empty(t, library.Authors.Authors())
	assert.Empty(t, fakes.authors.Rows())
}

func Test_AuthorService_CreateAuthor_BlankName(t *testing.T) {
	// setup
	library := buildLibrary(t, newStoreFakes())

	// act
	_, err := library.Authors.CreateAuthor(context.Background(), "")

	// assert
	assert.ErrorIs(t, err, catalog.ErrValidation)
	assert.ErrorIs(t, err, catalog.ErrBlankName)
	assert.ErrorContains(t, err, "name")
}

func Test_AuthorService_DeleteAuthor_WithoutRelations(t *testing.T) {
	// setup
	ctx := context.Background()
	logHandler := testdoubles.NewLogHandlerSpy(false)
	library := buildLibrary(t, newStoreFakes(), WithStrictParity(), withSpyLogger(logHandler))

	// arrange
	author, err := library.Authors.CreateAuthor(ctx, "Frank Herbert")
	require.NoError(t, err, "error in arranging test data")

	// act
	deleteErr := library.Authors.DeleteAuthor(ctx, author.ID)

	// assert
	require.NoError(t, deleteErr)
	assert.Empty(t, library.Authors.Authors())
	assert.False(t, logHandler.HasWarnLogWithMessage("cascade delete found no book-author relations").Assert(),
		"an author without relations is not worth a warning")
}

func Test_AuthorService_DeleteAuthor_CascadesRelations(t *testing.T) {
	// setup
	ctx := context.Background()
	fakes := newStoreFakes()
	library := buildLibrary(t, fakes)

	// arrange
	goodOmens, err := library.Books.CreateBook(ctx, "Good Omens", "")
	require.NoError(t, err, "error in arranging test data")
	pratchett, err := library.Authors.CreateAuthor(ctx, "Terry Pratchett")
	require.NoError(t, err, "error in arranging test data")
	gaiman, err := library.Authors.CreateAuthor(ctx, "Neil Gaiman")
	require.NoError(t, err, "error in arranging test data")
	_, err = library.Relations.CreateBookAuthor(ctx, goodOmens.ID, pratchett.ID)
	require.NoError(t, err, "error in arranging test data")
	_, err = library.Relations.CreateBookAuthor(ctx, goodOmens.ID, gaiman.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	deleteErr := library.Authors.DeleteAuthor(ctx, gaiman.ID)

	// assert
	require.NoError(t, deleteErr)
	assert.Empty(t, library.Relations.FindByAuthorID(gaiman.ID))
	assert.Equal(t, []catalog.BookAuthor{{BookID: goodOmens.ID, AuthorID: pratchett.ID}}, library.Relations.FindByBookID(goodOmens.ID))
	assert.Equal(t, library.Relations.All(), fakes.relations.Rows())
}

func Test_UserService_Lifecycle(t *testing.T) {
	// setup
	ctx := context.Background()
	fakes := newStoreFakes()
	library := buildLibrary(t, fakes)

	// act
	alice, createErr := library.Users.CreateUser(ctx, "Alice")
	require.NoError(t, createErr)

	found, findErr := library.Users.FindUserByID(alice.ID)
	updated, updateErr := library.Users.UpdateUser(ctx, alice.ID, "Alice Liddell")
	read, readErr := library.Users.ReadUser(ctx, alice.ID)
	deleteErr := library.Users.DeleteUser(ctx, alice.ID)
	_, afterDeleteErr := library.Users.FindUserByID(alice.ID)
	_, readAfterDeleteErr := library.Users.ReadUser(ctx, alice.ID)

	// assert
	require.NoError(t, findErr)
	require.NoError(t, updateErr)
	require.NoError(t, readErr)
	require.NoError(t, deleteErr)

	assert.Equal(t, catalog.User{ID: alice.ID, Name: "Alice"}, found)
	assert.Equal(t, catalog.User{ID: alice.ID, Name: "Alice Liddell"}, updated)
	assert.Equal(t, updated, read)
	assert.ErrorIs(t, afterDeleteErr, catalog.ErrNotFound)
	assert.ErrorIs(t, readAfterDeleteErr, catalog.ErrNotFound)
	assert.Empty(t, library.Users.Users())
}

func Test_UserService_DeleteUser_StoreFailureKeepsMemory(t *testing.T) {
	// setup
	ctx := context.Background()
	fakes := newStoreFakes()
	library := buildLibrary(t, fakes)

	// arrange
	alice, err := library.Users.CreateUser(ctx, "Alice")
	require.NoError(t, err, "error in arranging test data")
	fakes.users.FailOn(testdoubles.OpDelete, nil)

	// act
	deleteErr := library.Users.DeleteUser(ctx, alice.ID)

	// assert
	assert.ErrorIs(t, deleteErr, catalog.ErrStorage)
	assert.Equal(t, []catalog.User{alice}, library.Users.Users())
}

func Test_UserService_ReadUser_StoreFailure(t *testing.T) {
	// setup
	fakes := newStoreFakes()
	library := buildLibrary(t, fakes)
	fakes.users.FailOn(testdoubles.OpReadByID, nil)

	// act
	_, err := library.Users.ReadUser(context.Background(), 1)

	// assert
	assert.ErrorIs(t, err, catalog.ErrStorage)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}
