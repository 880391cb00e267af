package catalog

import (
	"fmt"
	"time"
)

const (
	// LoanEntityName is used in error messages, log attributes, and metric labels.
	LoanEntityName = "loan"

	// LoanPeriodDays is the fixed length of a new loan.
	LoanPeriodDays = 15
)

// Loan represents a book lent to a user for the inclusive date range [StartDate, EndDate].
type Loan struct {
	ID        ID
	StartDate time.Time
	EndDate   time.Time
	UserID    ID
	BookID    ID
}

// BuildLoan creates a transient Loan starting on the calendar day of today and ending LoanPeriodDays later.
func BuildLoan(userID ID, bookID ID, today time.Time) Loan {
	start := ToDate(today)

	return Loan{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, LoanPeriodDays),
		UserID:    userID,
		BookID:    bookID,
	}
}

// EntityID returns the store-assigned ID.
func (l Loan) EntityID() ID {
	return l.ID
}

// WithID returns a copy carrying the given ID.
func (l Loan) WithID(id ID) Loan {
	l.ID = id
	return l
}

// EntityName returns LoanEntityName.
func (l Loan) EntityName() string {
	return LoanEntityName
}

// Validate checks the date ordering invariant.
func (l Loan) Validate() error {
	if l.EndDate.Before(l.StartDate) {
		return Conflict(
			ErrEndBeforeStart,
			fmt.Sprintf("start %s, end %s", FormatDate(l.StartDate), FormatDate(l.EndDate)),
		)
	}

	return nil
}

// Overlaps reports whether both loans are for the same book and their date ranges overlap.
func (l Loan) Overlaps(other Loan) bool {
	return l.BookID == other.BookID && Overlaps(l.StartDate, l.EndDate, other.StartDate, other.EndDate)
}
