package service_test

import (
	"context"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	. "github.com/AntonStoeckl/library-catalog-go/catalog/service"
	"github.com/AntonStoeckl/library-catalog-go/testutil/testdoubles"
)

// storeFakes holds one in-memory gateway per table.
type storeFakes struct {
	books     *testdoubles.FakeGateway[catalog.Book]
	authors   *testdoubles.FakeGateway[catalog.Author]
	users     *testdoubles.FakeGateway[catalog.User]
	loans     *testdoubles.FakeGateway[catalog.Loan]
	relations *testdoubles.FakeRelationGateway
}

func newStoreFakes() storeFakes {
	return storeFakes{
		books:     testdoubles.NewFakeGateway[catalog.Book](),
		authors:   testdoubles.NewFakeGateway[catalog.Author](),
		users:     testdoubles.NewFakeGateway[catalog.User](),
		loans:     testdoubles.NewFakeGateway[catalog.Loan](),
		relations: testdoubles.NewFakeRelationGateway(),
	}
}

func (f storeFakes) gateways() Gateways {
	return Gateways{
		Books:       f.books,
		Authors:     f.authors,
		Users:       f.users,
		Loans:       f.loans,
		BookAuthors: f.relations,
	}
}

func buildLibrary(t *testing.T, fakes storeFakes, options ...Option) *Library {
	t.Helper()

	library, err := NewLibrary(context.Background(), fakes.gateways(), options...)
	require.NoError(t, err, "error in building the library")

	return library
}

// testClock is a settable clock for loan start dates.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) setDay(offset int) {
	c.now = day(offset).Add(9 * time.Hour)
}

func day(offset int) time.Time {
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func idString(id catalog.ID) string {
	return strconv.FormatInt(id, 10)
}

func withSpyLogger(handler *testdoubles.LogHandlerSpy) Option {
	return WithLogger(slog.New(handler))
}
