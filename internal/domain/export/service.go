package export

import "context"

// ExportService renders statutory exports. It never changes state.
type ExportService interface {
	BankPayments(ctx context.Context, runID string) (Document, error)
	Accountant(ctx context.Context, runID string) (Document, error)
	MonthlyDeclaration(ctx context.Context, month, year int) (Document, error)
	AnnualReconciliation(ctx context.Context, taxYear int) (Document, error)
	IndividualCertificate(ctx context.Context, employeeID string, taxYear int, format Format) (Document, error)
}
