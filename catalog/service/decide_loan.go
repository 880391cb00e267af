package service

import (
	"fmt"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// loanState represents the current state of the candidate's book projected from the existing loans.
type loanState struct {
	conflictingLoan  catalog.Loan
	bookIsLoanedThen bool
}

// DecideLoan decides whether a candidate loan may be persisted given all existing loans.
// It is a pure function with no side effects.
//
// Business Rules:
//
//	GIVEN: A candidate loan for BookID covering [StartDate, EndDate]
//	WHEN: a loan is created or updated
//	THEN: nil, the candidate may be persisted
//	ERROR: catalog.ErrEndBeforeStart if EndDate precedes StartDate
//	ERROR: catalog.ErrBookAlreadyLoaned if another loan of the same book overlaps, touching days included
//	SELF: an existing loan with the candidate's (non-zero) ID is the one being updated and is ignored
func DecideLoan(candidate catalog.Loan, existing []catalog.Loan) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	s := projectLoans(candidate, existing)

	if s.bookIsLoanedThen {
		other := s.conflictingLoan

		return catalog.Conflict(
			catalog.ErrBookAlreadyLoaned,
			fmt.Sprintf(
				"book id %d is loaned from %s to %s by loan id %d",
				other.BookID,
				catalog.FormatDate(other.StartDate),
				catalog.FormatDate(other.EndDate),
				other.ID,
			),
		)
	}

	return nil
}

// projectLoans finds the first existing loan that blocks the candidate.
func projectLoans(candidate catalog.Loan, existing []catalog.Loan) loanState {
	for _, other := range existing {
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}

		if candidate.Overlaps(other) {
			return loanState{conflictingLoan: other, bookIsLoanedThen: true}
		}
	}

	return loanState{}
}
