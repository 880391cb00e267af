package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// LoanChange describes an update of a loan. Zero values keep the current field.
type LoanChange struct {
	EndDate time.Time
	UserID  catalog.ID
	BookID  catalog.ID
}

// BookingEngine manages loans and prevents a book from being loaned for overlapping date ranges.
//
// All loan writes are serialized by the engine, so the overlap check and the following store write
// cannot interleave with another loan write.
type BookingEngine struct {
	loans    *EntityCache[catalog.Loan]
	books    *BookService
	users    *UserService
	settings settings

	writeMu sync.Mutex
}

// NewBookingEngine creates a BookingEngine and loads every loan from the store.
func NewBookingEngine(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Loan],
	books *BookService,
	users *UserService,
	options ...Option,
) (*BookingEngine, error) {

	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newBookingEngine(ctx, gateway, books, users, s)
}

func newBookingEngine(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Loan],
	books *BookService,
	users *UserService,
	s settings,
) (*BookingEngine, error) {

	if books == nil || users == nil {
		return nil, ErrNilDependency
	}

	loans, err := newEntityCache(ctx, catalog.LoanEntityName, gateway, s)
	if err != nil {
		return nil, err
	}

	return &BookingEngine{loans: loans, books: books, users: users, settings: s}, nil
}

// CreateLoan lends a book to a user from today for catalog.LoanPeriodDays days.
// Both ids must resolve in memory. A loan overlapping another loan of the same book is rejected
// with catalog.ErrConflict and nothing is persisted.
func (e *BookingEngine) CreateLoan(ctx context.Context, userID, bookID catalog.ID) (catalog.Loan, error) {
	observer, ctx := e.settings.startOperation(ctx, catalog.LoanEntityName, OperationCreate, map[string]string{
		logAttrUserID: idAttr(userID),
		logAttrBookID: idAttr(bookID),
	})

	if err := e.resolveReferences(userID, bookID); err != nil {
		return catalog.Loan{}, observer.finish(ctx, err)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	candidate := catalog.BuildLoan(userID, bookID, e.settings.clock())

	if err := DecideLoan(candidate, e.loans.All()); err != nil {
		e.observeRejection(ctx, OperationCreate, candidate, err)
		return catalog.Loan{}, observer.finish(ctx, err)
	}

	loan, err := e.loans.Create(ctx, candidate)
	if err != nil {
		return catalog.Loan{}, observer.finish(ctx, err)
	}

	e.settings.logOperation(
		ctx,
		"loan created",
		logAttrID, loan.ID,
		logAttrUserID, loan.UserID,
		logAttrBookID, loan.BookID,
		logAttrStartDate, catalog.FormatDate(loan.StartDate),
		logAttrEndDate, catalog.FormatDate(loan.EndDate),
	)

	return loan, observer.finish(ctx, nil)
}

// UpdateLoan changes the end date, user, or book of a loan, keeping its start date.
// The updated loan is checked like a new one, except that it never conflicts with itself.
func (e *BookingEngine) UpdateLoan(ctx context.Context, id catalog.ID, change LoanChange) (catalog.Loan, error) {
	observer, ctx := e.settings.startOperation(ctx, catalog.LoanEntityName, OperationUpdate, map[string]string{logAttrID: idAttr(id)})

	if err := e.resolveChangedReferences(change); err != nil {
		return catalog.Loan{}, observer.finish(ctx, err)
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	existing := e.loans.All()

	loan, err := e.loans.Update(ctx, id, func(current catalog.Loan) (catalog.Loan, error) {
		candidate := applyLoanChange(current, change)

		if err := DecideLoan(candidate, existing); err != nil {
			e.observeRejection(ctx, OperationUpdate, candidate, err)
			return catalog.Loan{}, err
		}

		return candidate, nil
	})
	if err != nil {
		return catalog.Loan{}, observer.finish(ctx, err)
	}

	e.settings.logOperation(
		ctx,
		"loan updated",
		logAttrID, loan.ID,
		logAttrBookID, loan.BookID,
		logAttrEndDate, catalog.FormatDate(loan.EndDate),
	)

	return loan, observer.finish(ctx, nil)
}

// DeleteLoan ends a loan by removing it.
func (e *BookingEngine) DeleteLoan(ctx context.Context, id catalog.ID) error {
	observer, ctx := e.settings.startOperation(ctx, catalog.LoanEntityName, OperationDelete, map[string]string{logAttrID: idAttr(id)})

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.loans.Delete(ctx, id); err != nil {
		return observer.finish(ctx, err)
	}

	e.settings.logOperation(ctx, "loan deleted", logAttrID, id)

	return observer.finish(ctx, nil)
}

// FindLoanByID returns a loan from memory.
func (e *BookingEngine) FindLoanByID(id catalog.ID) (catalog.Loan, error) {
	return e.loans.FindByID(id)
}

// ReadLoan reads a loan directly from the store, bypassing memory.
func (e *BookingEngine) ReadLoan(ctx context.Context, id catalog.ID) (catalog.Loan, error) {
	return e.loans.ReadByID(ctx, id)
}

// FindLoansByUserID returns the user's loans in insertion order.
// The result is empty when there are none, unless WithEmptyLoanResultAsNotFound is set.
func (e *BookingEngine) FindLoansByUserID(userID catalog.ID) ([]catalog.Loan, error) {
	loans := e.loans.Filter(func(l catalog.Loan) bool { return l.UserID == userID })

	return e.emptyResult(loans, catalog.UserEntityName, userID)
}

// FindLoansByBookID returns the book's loans in insertion order.
// The result is empty when there are none, unless WithEmptyLoanResultAsNotFound is set.
func (e *BookingEngine) FindLoansByBookID(bookID catalog.ID) ([]catalog.Loan, error) {
	loans := e.loans.Filter(func(l catalog.Loan) bool { return l.BookID == bookID })

	return e.emptyResult(loans, catalog.BookEntityName, bookID)
}

// Loans returns every loan in insertion order.
func (e *BookingEngine) Loans() []catalog.Loan {
	return e.loans.All()
}

// Reload replaces the loans in memory with the store's current rows.
func (e *BookingEngine) Reload(ctx context.Context) error {
	observer, ctx := e.settings.startOperation(ctx, catalog.LoanEntityName, OperationReload, nil)

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := e.loans.Reload(ctx); err != nil {
		return observer.finish(ctx, err)
	}

	e.settings.logOperation(ctx, "loan reloaded", logAttrCount, e.loans.Len())

	return observer.finish(ctx, nil)
}

// resolveReferences checks that the user and the book exist in memory.
func (e *BookingEngine) resolveReferences(userID, bookID catalog.ID) error {
	if _, err := e.users.FindUserByID(userID); err != nil {
		return err
	}

	if _, err := e.books.FindBookByID(bookID); err != nil {
		return err
	}

	return nil
}

// resolveChangedReferences checks the user and book ids a change sets. Zero ids keep the current value.
func (e *BookingEngine) resolveChangedReferences(change LoanChange) error {
	if change.UserID != 0 {
		if _, err := e.users.FindUserByID(change.UserID); err != nil {
			return err
		}
	}

	if change.BookID != 0 {
		if _, err := e.books.FindBookByID(change.BookID); err != nil {
			return err
		}
	}

	return nil
}

func (e *BookingEngine) emptyResult(loans []catalog.Loan, entity string, id catalog.ID) ([]catalog.Loan, error) {
	if len(loans) == 0 && e.settings.emptyLoanResultAsNotFound {
		return nil, fmt.Errorf("%w: %w for %s id %d", catalog.ErrNotFound, catalog.ErrNoLoansFound, entity, id)
	}

	return loans, nil
}

func (e *BookingEngine) observeRejection(ctx context.Context, operation string, candidate catalog.Loan, err error) {
	if !errors.Is(err, catalog.ErrBookAlreadyLoaned) {
		return
	}

	e.settings.recordLoanConflict(ctx, operation)
	e.settings.logWarn(
		ctx,
		logMsgLoanConflict,
		logAttrBookID, candidate.BookID,
		logAttrStartDate, catalog.FormatDate(candidate.StartDate),
		logAttrEndDate, catalog.FormatDate(candidate.EndDate),
	)
}

func applyLoanChange(current catalog.Loan, change LoanChange) catalog.Loan {
	if !change.EndDate.IsZero() {
		current.EndDate = catalog.ToDate(change.EndDate)
	}

	if change.UserID != 0 {
		current.UserID = change.UserID
	}

	if change.BookID != 0 {
		current.BookID = change.BookID
	}

	return current
}
