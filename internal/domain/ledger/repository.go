package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type LedgerRepository interface {
	// Post adds every posting to its EmployeeYTD row, creating rows as needed.
	// It fails with ErrAlreadyPosted if any entry was posted before.
	Post(ctx context.Context, postings []Posting) error
	Get(ctx context.Context, employeeID string, practiceID string, taxYear int) (EmployeeYTD, error)
	ListByPractice(ctx context.Context, practiceID string, taxYear int) ([]EmployeeYTD, error)
	// PracticeGross is the paid gross for the practice in the tax year.
	PracticeGross(ctx context.Context, practiceID string, taxYear int) (decimal.Decimal, error)
}
