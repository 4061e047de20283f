package payroll

import (
	"context"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
)

type PayrollService interface {
	RecalculateRun(ctx context.Context, req RecalculateRunRequest) (RunResponse, error)
	TransitionRun(ctx context.Context, req TransitionRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunResponse, error)

	AddAddition(ctx context.Context, req CreateAdditionRequest) (RunResponse, error)
	DeleteAddition(ctx context.Context, req DeleteAdditionRequest) (RunResponse, error)

	GetRunAudit(ctx context.Context, id string) ([]audit.CalculationRecordResponse, error)
	GetEmployeeAudit(ctx context.Context, employeeID string, taxYear int) ([]audit.CalculationRecordResponse, error)
	GetEmployeeYTD(ctx context.Context, employeeID string, taxYear int) (ledger.YTDResponse, error)
}
