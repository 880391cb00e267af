package service_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	. "github.com/AntonStoeckl/library-catalog-go/catalog/service"
	"github.com/AntonStoeckl/library-catalog-go/testutil/testdoubles"
)

type loanFixture struct {
	library *Library
	fakes   storeFakes
	clock   *testClock
	alice   catalog.User
	bob     catalog.User
	dune    catalog.Book
	emma    catalog.Book
}

func arrangeLoans(t *testing.T, options ...Option) loanFixture {
	t.Helper()

	ctx := context.Background()
	f := loanFixture{fakes: newStoreFakes(), clock: &testClock{}}
	f.clock.setDay(0)
	f.library = buildLibrary(t, f.fakes, append(options, WithClock(f.clock.Now))...)

	var err error
	f.alice, err = f.library.Users.CreateUser(ctx, "Alice")
	require.NoError(t, err, "error in arranging test data")
	f.bob, err = f.library.Users.CreateUser(ctx, "Bob")
	require.NoError(t, err, "error in arranging test data")
	f.dune, err = f.library.Books.CreateBook(ctx, "Dune", "978-0441013593")
	require.NoError(t, err, "error in arranging test data")
	f.emma, err = f.library.Books.CreateBook(ctx, "Emma", "")
	require.NoError(t, err, "error in arranging test data")

	return f
}

func Test_BookingEngine_AliceScenario(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// act
	loan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	_, secondErr := f.library.Loans.CreateLoan(ctx, f.bob.ID, f.dune.ID)

	// assert
	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.Equal(t, day(0), loan.StartDate)
	assert.Equal(t, loan.StartDate.AddDate(0, 0, catalog.LoanPeriodDays), loan.EndDate)
	assert.Equal(t, f.alice.ID, loan.UserID)
	assert.Equal(t, f.dune.ID, loan.BookID)

	assert.ErrorIs(t, secondErr, catalog.ErrConflict)
	assert.ErrorIs(t, secondErr, catalog.ErrBookAlreadyLoaned)
	assert.Equal(t, []catalog.Loan{loan}, f.library.Loans.Loans())
	assert.Equal(t, []catalog.Loan{loan}, f.fakes.loans.Rows())
}

func Test_BookingEngine_CreateLoan_Overlap(t *testing.T) {
	testCases := []struct {
		description string
		startDay    int
		expectedErr error
	}{
		{description: "start on day 10 overlaps", startDay: 10, expectedErr: catalog.ErrConflict},
		{description: "start on day 15 touches the boundary", startDay: 15, expectedErr: catalog.ErrConflict},
		{description: "start on day 16 is free", startDay: 16},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// setup
			ctx := context.Background()
			f := arrangeLoans(t)

			// arrange
			_, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
			require.NoError(t, err, "error in arranging test data")
			f.clock.setDay(tc.startDay)

			// act
			loan, createErr := f.library.Loans.CreateLoan(ctx, f.bob.ID, f.dune.ID)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, createErr, tc.expectedErr)
				assert.Len(t, f.library.Loans.Loans(), 1)
				assert.Equal(t, 1, f.fakes.loans.Calls(testdoubles.OpCreate))
				return
			}

			require.NoError(t, createErr)
			assert.Equal(t, day(tc.startDay), loan.StartDate)
			assert.Len(t, f.library.Loans.Loans(), 2)
		})
	}
}

func Test_BookingEngine_CreateLoan_OtherBookIsFree(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// arrange
	_, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	_, createErr := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.emma.ID)

	// assert
	assert.NoError(t, createErr)
}

func Test_BookingEngine_CreateLoan_UnknownReferences(t *testing.T) {
	testCases := []struct {
		description     string
		userID          func(loanFixture) catalog.ID
		bookID          func(loanFixture) catalog.ID
		expectedMessage string
	}{
		{
			description:     "unknown user",
			userID:          func(loanFixture) catalog.ID { return 4711 },
			bookID:          func(f loanFixture) catalog.ID { return f.dune.ID },
			expectedMessage: "user with id 4711",
		},
		{
			description:     "unknown book",
			userID:          func(f loanFixture) catalog.ID { return f.alice.ID },
			bookID:          func(loanFixture) catalog.ID { return 4712 },
			expectedMessage: "book with id 4712",
		},
		{
			description:     "zero user id",
			userID:          func(loanFixture) catalog.ID { return 0 },
			bookID:          func(f loanFixture) catalog.ID { return f.dune.ID },
			expectedMessage: "user with id 0",
		},
		{
			description:     "zero book id",
			userID:          func(f loanFixture) catalog.ID { return f.alice.ID },
			bookID:          func(loanFixture) catalog.ID { return 0 },
			expectedMessage: "book with id 0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// setup
			ctx := context.Background()
			f := arrangeLoans(t)

			// act
			_, err := f.library.Loans.CreateLoan(ctx, tc.userID(f), tc.bookID(f))

			// assert
			assert.ErrorIs(t, err, catalog.ErrNotFound)
			assert.ErrorContains(t, err, tc.expectedMessage)
			assert.Empty(t, f.library.Loans.Loans())
			assert.Empty(t, f.fakes.loans.Rows())
		})
	}
}

func Test_BookingEngine_CreateLoan_StoreFailure(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)
	f.fakes.loans.FailOn(testdoubles.OpCreate, nil)

	// act
	_, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)

	// assert
	assert.ErrorIs(t, err, catalog.ErrStorage)
	assert.Empty(t, f.library.Loans.Loans())
}

func Test_BookingEngine_UpdateLoan(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// arrange
	loan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	extended, extendErr := f.library.Loans.UpdateLoan(ctx, loan.ID, LoanChange{EndDate: day(20)})
	unchanged, unchangedErr := f.library.Loans.UpdateLoan(ctx, loan.ID, LoanChange{})
	moved, moveErr := f.library.Loans.UpdateLoan(ctx, loan.ID, LoanChange{UserID: f.bob.ID, BookID: f.emma.ID})

	// assert
	require.NoError(t, extendErr, "a loan must not conflict with itself")
	require.NoError(t, unchangedErr)
	require.NoError(t, moveErr)

	assert.Equal(t, day(0), extended.StartDate)
	assert.Equal(t, day(20), extended.EndDate)
	assert.Equal(t, extended, unchanged)
	assert.Equal(t, catalog.Loan{ID: loan.ID, StartDate: day(0), EndDate: day(20), UserID: f.bob.ID, BookID: f.emma.ID}, moved)
	assert.Equal(t, []catalog.Loan{moved}, f.fakes.loans.Rows())
}

func Test_BookingEngine_UpdateLoan_Rejections(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// arrange
	first, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")
	f.clock.setDay(30)
	second, err := f.library.Loans.CreateLoan(ctx, f.bob.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	_, overlapErr := f.library.Loans.UpdateLoan(ctx, first.ID, LoanChange{EndDate: day(30)})
	_, endBeforeStartErr := f.library.Loans.UpdateLoan(ctx, second.ID, LoanChange{EndDate: day(29)})
	_, unknownLoanErr := f.library.Loans.UpdateLoan(ctx, 4711, LoanChange{EndDate: day(5)})
	_, unknownBookErr := f.library.Loans.UpdateLoan(ctx, first.ID, LoanChange{BookID: 4712})

	// assert
	assert.ErrorIs(t, overlapErr, catalog.ErrConflict)
	assert.ErrorIs(t, overlapErr, catalog.ErrBookAlreadyLoaned)
	assert.ErrorIs(t, endBeforeStartErr, catalog.ErrConflict)
	assert.ErrorIs(t, endBeforeStartErr, catalog.ErrEndBeforeStart)
	assert.ErrorIs(t, unknownLoanErr, catalog.ErrNotFound)
	assert.ErrorIs(t, unknownBookErr, catalog.ErrNotFound)

	assert.Equal(t, []catalog.Loan{first, second}, f.library.Loans.Loans())
	assert.Equal(t, 0, f.fakes.loans.Calls(testdoubles.OpUpdate))
}

func Test_BookingEngine_DeleteLoan_FreesTheBook(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// arrange
	loan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	deleteErr := f.library.Loans.DeleteLoan(ctx, loan.ID)
	_, findErr := f.library.Loans.FindLoanByID(loan.ID)
	secondDeleteErr := f.library.Loans.DeleteLoan(ctx, loan.ID)
	_, rebookErr := f.library.Loans.CreateLoan(ctx, f.bob.ID, f.dune.ID)

	// assert
	require.NoError(t, deleteErr)
	assert.ErrorIs(t, findErr, catalog.ErrNotFound)
	assert.ErrorIs(t, secondDeleteErr, catalog.ErrNotFound)
	require.NoError(t, rebookErr)
	assert.Len(t, f.library.Loans.Loans(), 1)
}

func Test_BookingEngine_FindLoansByUserAndBook(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)

	// arrange
	duneLoan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err, "error in arranging test data")
	emmaLoan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.emma.ID)
	require.NoError(t, err, "error in arranging test data")

	// act
	byAlice, aliceErr := f.library.Loans.FindLoansByUserID(f.alice.ID)
	byBob, bobErr := f.library.Loans.FindLoansByUserID(f.bob.ID)
	byEmma, emmaErr := f.library.Loans.FindLoansByBookID(f.emma.ID)
	read, readErr := f.library.Loans.ReadLoan(ctx, duneLoan.ID)

	// assert
	require.NoError(t, aliceErr)
	require.NoError(t, bobErr)
	require.NoError(t, emmaErr)
	require.NoError(t, readErr)

	assert.Equal(t, []catalog.Loan{duneLoan, emmaLoan}, byAlice)
	assert.NotNil(t, byBob)
	assert.Empty(t, byBob)
	assert.Equal(t, []catalog.Loan{emmaLoan}, byEmma)
	assert.Equal(t, duneLoan, read)
}

func Test_BookingEngine_EmptyLoanResultAsNotFound(t *testing.T) {
	// setup
	f := arrangeLoans(t, WithEmptyLoanResultAsNotFound())

	// act
	_, byUserErr := f.library.Loans.FindLoansByUserID(f.bob.ID)
	_, byBookErr := f.library.Loans.FindLoansByBookID(f.emma.ID)

	// assert
	assert.ErrorIs(t, byUserErr, catalog.ErrNotFound)
	assert.ErrorIs(t, byUserErr, catalog.ErrNoLoansFound)
	assert.ErrorContains(t, byUserErr, "user id")
	assert.ErrorIs(t, byBookErr, catalog.ErrNotFound)
	assert.ErrorIs(t, byBookErr, catalog.ErrNoLoansFound)
	assert.ErrorContains(t, byBookErr, "book id")
}

func Test_BookingEngine_ConcurrentCreatesForOneBook(t *testing.T) {
	// setup
	ctx := context.Background()
	f := arrangeLoans(t)
	attempts := 20

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	// act
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// assert
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, catalog.ErrBookAlreadyLoaned)
	}

	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.fakes.loans.Rows(), 1)
}

func Test_BookingEngine_Observability(t *testing.T) {
	// setup
	ctx := context.Background()
	logHandler := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	f := arrangeLoans(t, WithLogger(slog.New(logHandler)), WithMetrics(metrics), WithTracing(tracing))

	// act
	loan, err := f.library.Loans.CreateLoan(ctx, f.alice.ID, f.dune.ID)
	require.NoError(t, err)
	_, conflictErr := f.library.Loans.CreateLoan(ctx, f.bob.ID, f.dune.ID)

	// assert
	assert.ErrorIs(t, conflictErr, catalog.ErrConflict)

	assert.True(t, logHandler.HasInfoLogWithMessage("catalog operation: loan created").
		WithAttr("id", idString(loan.ID)).
		WithAttr("start_date", "2025-03-01").
		WithAttr("end_date", "2025-03-16").Assert())
	assert.True(t, logHandler.HasWarnLogWithMessage("loan rejected: book already loaned").
		WithAttr("book_id", idString(f.dune.ID)).Assert())

	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(LoanConflictsMetric))
	assert.True(t, metrics.HasCounterRecordForMetric(OperationErrorsMetric).
		WithLabel("entity", "loan").WithLabel("error_type", ErrorTypeConflict).Assert())

	span, found := tracing.FindSpan("catalog.loan.create")
	require.True(t, found)
	assert.Equal(t, idString(f.alice.ID), span.StartAttributes["user_id"])
	assert.True(t, span.Finished)
}
