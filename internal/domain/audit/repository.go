package audit

import "context"

// Repository is append-only: records are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, records []CalculationRecord) error
	ListByRun(ctx context.Context, runID string, practiceID string) ([]CalculationRecord, error)
	ListByEmployee(ctx context.Context, employeeID string, practiceID string, taxYear int) ([]CalculationRecord, error)
}
