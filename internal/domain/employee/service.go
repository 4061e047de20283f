package employee

import "context"

type EmployeeService interface {
	CreateFringeBenefit(ctx context.Context, req CreateFringeBenefitRequest) (FringeBenefitResponse, error)
	RetireFringeBenefit(ctx context.Context, req RetireFringeBenefitRequest) (FringeBenefitResponse, error)
	ListFringeBenefits(ctx context.Context, employeeID string) ([]FringeBenefitResponse, error)

	CreateGarnishee(ctx context.Context, req CreateGarnisheeRequest) (GarnisheeResponse, error)
	DeactivateGarnishee(ctx context.Context, id, employeeID string) error
	ListGarnishees(ctx context.Context, employeeID string) ([]GarnisheeResponse, error)
}
