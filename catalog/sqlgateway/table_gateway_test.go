package sqlgateway_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	. "github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway"
	"github.com/AntonStoeckl/library-catalog-go/testutil/sqlgatewaytest"
)

func Test_Books_CreateAndReadByID(t *testing.T) {
	// setup
	ctx := context.Background()
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// act
	firstID, err := books.Create(ctx, catalog.Book{Title: "Dune", ISBN: "978-0441013593"})
	require.NoError(t, err)
	secondID, err := books.Create(ctx, catalog.Book{Title: "Emma"})
	require.NoError(t, err)

	book, found, readErr := books.ReadByID(ctx, firstID)

	// assert
	require.NoError(t, readErr)
	assert.True(t, found)
	assert.Greater(t, secondID, firstID)
	assert.Equal(t, catalog.Book{ID: firstID, Title: "Dune", ISBN: "978-0441013593"}, book)
}

func Test_Books_ReadByID_Missing(t *testing.T) {
	// setup
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// act
	_, found, err := books.ReadByID(context.Background(), 4711)

	// assert
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_Books_ReadAll_OrderedByID(t *testing.T) {
	// setup
	ctx := context.Background()
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// arrange
	titles := []string{"Dune", "Emma", "Ulysses"}
	for _, title := range titles {
		_, err := books.Create(ctx, catalog.Book{Title: title})
		require.NoError(t, err, "error in arranging test data")
	}

	// act
	all, err := books.ReadAll(ctx)

	// assert
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, book := range all {
		assert.Equal(t, titles[i], book.Title)
		if i > 0 {
			assert.Greater(t, book.ID, all[i-1].ID)
		}
	}
}

func Test_Books_ReadAll_Empty(t *testing.T) {
	// setup
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// act
	all, err := books.ReadAll(context.Background())

	// assert
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func Test_Books_Update(t *testing.T) {
	// setup
	ctx := context.Background()
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// arrange
	id, err := books.Create(ctx, catalog.Book{Title: "Dune"})
	require.NoError(t, err, "error in arranging test data")

	// act
	err = books.Update(ctx, catalog.Book{ID: id, Title: "Dune Messiah", ISBN: "978-0593098233"})

	// assert
	require.NoError(t, err)
	book, found, readErr := books.ReadByID(ctx, id)
	require.NoError(t, readErr)
	assert.True(t, found)
	assert.Equal(t, "Dune Messiah", book.Title)
	assert.Equal(t, "978-0593098233", book.ISBN)
}

func Test_Books_UpdateAndDelete_MissingRow(t *testing.T) {
	// setup
	ctx := context.Background()
	books := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore().Books()

	// act
	updateErr := books.Update(ctx, catalog.Book{ID: 4711, Title: "Ghost"})
	deleteErr := books.Delete(ctx, 4711)

	// assert
	assert.ErrorIs(t, updateErr, catalog.ErrStorage)
	assert.ErrorIs(t, updateErr, ErrUpdateFailed)
	assert.ErrorIs(t, updateErr, catalog.ErrRowNotFound)
	assert.NotErrorIs(t, updateErr, catalog.ErrNotFound)
	assert.ErrorContains(t, updateErr, "book with id 4711")

	assert.ErrorIs(t, deleteErr, catalog.ErrStorage)
	assert.ErrorIs(t, deleteErr, ErrDeleteFailed)
	assert.ErrorIs(t, deleteErr, catalog.ErrRowNotFound)
}

func Test_Books_Delete(t *testing.T) {
	// setup
	ctx := context.Background()
	wrapper := sqlgatewaytest.CreateWrapperWithTestConfig(t)
	books := wrapper.GetStore().Books()

	// arrange
	id, err := books.Create(ctx, catalog.Book{Title: "Dune"})
	require.NoError(t, err, "error in arranging test data")

	// act
	err = books.Delete(ctx, id)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, sqlgatewaytest.CountRows(t, wrapper, "books"))
}

func Test_AuthorsAndUsers_CreateAndReadAll(t *testing.T) {
	// setup
	ctx := context.Background()
	store := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore()

	// act
	authorID, authorErr := store.Authors().Create(ctx, catalog.Author{Name: "Frank Herbert"})
	userID, userErr := store.Users().Create(ctx, catalog.User{Name: "Alice"})

	// assert
	require.NoError(t, authorErr)
	require.NoError(t, userErr)

	authors, err := store.Authors().ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Author{{ID: authorID, Name: "Frank Herbert"}}, authors)

	users, err := store.Users().ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.User{{ID: userID, Name: "Alice"}}, users)
}

func Test_Loans_DatesSurviveRoundTrip(t *testing.T) {
	// setup
	ctx := context.Background()
	store := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore()

	// arrange
	userID, err := store.Users().Create(ctx, catalog.User{Name: "Alice"})
	require.NoError(t, err, "error in arranging test data")
	bookID, err := store.Books().Create(ctx, catalog.Book{Title: "Dune"})
	require.NoError(t, err, "error in arranging test data")

	loan := catalog.BuildLoan(userID, bookID, day(0))

	// act
	loanID, err := store.Loans().Create(ctx, loan)
	require.NoError(t, err)

	read, found, readErr := store.Loans().ReadByID(ctx, loanID)

	// assert
	require.NoError(t, readErr)
	require.True(t, found)
	assert.Equal(t, "2025-03-01", catalog.FormatDate(read.StartDate))
	assert.Equal(t, "2025-03-16", catalog.FormatDate(read.EndDate))
	assert.True(t, read.StartDate.Equal(day(0)))
	assert.Equal(t, userID, read.UserID)
	assert.Equal(t, bookID, read.BookID)
}

func Test_Loans_Update(t *testing.T) {
	// setup
	ctx := context.Background()
	store := sqlgatewaytest.CreateWrapperWithTestConfig(t).GetStore()

	// arrange
	userID, err := store.Users().Create(ctx, catalog.User{Name: "Alice"})
	require.NoError(t, err, "error in arranging test data")
	bookID, err := store.Books().Create(ctx, catalog.Book{Title: "Dune"})
	require.NoError(t, err, "error in arranging test data")
	loanID, err := store.Loans().Create(ctx, catalog.BuildLoan(userID, bookID, day(0)))
	require.NoError(t, err, "error in arranging test data")

	// act
	err = store.Loans().Update(ctx, catalog.Loan{ID: loanID, StartDate: day(2), EndDate: day(5), UserID: userID, BookID: bookID})

	// assert
	require.NoError(t, err)
	loans, readErr := store.Loans().ReadAll(ctx)
	require.NoError(t, readErr)
	require.Len(t, loans, 1)
	assert.Equal(t, "2025-03-03", catalog.FormatDate(loans[0].StartDate))
	assert.Equal(t, "2025-03-06", catalog.FormatDate(loans[0].EndDate))
}
