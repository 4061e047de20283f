package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PayrollRepository defines data access methods for payroll runs.
// All run-scoped methods take practiceID to prevent cross-practice access.
type PayrollRepository interface {
	// Runs
	//
	// LockRunForPeriod returns the run for (practice, month, year), creating a
	// draft run when none exists, and holds a row lock until the surrounding
	// transaction ends.
	LockRunForPeriod(ctx context.Context, practiceID string, month, year, taxYear int) (Run, error)
	LockRun(ctx context.Context, id, practiceID string) (Run, error)
	GetRun(ctx context.Context, id, practiceID string) (Run, error)
	GetRunByPeriod(ctx context.Context, practiceID string, month, year int) (Run, error)
	ListRuns(ctx context.Context, practiceID string, filter RunFilter) ([]Run, int64, error)
	UpdateRunTotals(ctx context.Context, id string, totals Totals) error
	// CompareAndSetStatus moves the run from one status to another only if
	// its stored status still equals from. It returns *StateConflictError otherwise.
	CompareAndSetStatus(ctx context.Context, id, practiceID string, from, to RunStatus, at time.Time) (Run, error)

	// Entries
	ListEntries(ctx context.Context, runID, practiceID string) ([]Entry, error)
	GetEntry(ctx context.Context, id, runID string) (Entry, error)
	// DeleteEntries removes every entry of the run; additions cascade.
	DeleteEntries(ctx context.Context, runID string) error
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	// ProcessedIrregular sums irregular income per employee over processed,
	// not yet paid runs of the tax year for periods before month/year.
	ProcessedIrregular(ctx context.Context, practiceID string, taxYear, month, year int) (map[string]decimal.Decimal, error)

	// Additions
	ListAdditions(ctx context.Context, runID string) ([]Addition, error)
	GetAddition(ctx context.Context, id, runID string) (Addition, error)
	CreateAddition(ctx context.Context, addition Addition) (Addition, error)
	DeleteAddition(ctx context.Context, id, runID string) error
}
