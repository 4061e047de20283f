package employee

import (
	"context"
	"time"
)

// EmployeeRepository reads compensation profiles and manages the benefit and
// garnishee records attached to them. Every method is scoped by practiceID.
type EmployeeRepository interface {
	GetProfile(ctx context.Context, id string, practiceID string) (CompensationProfile, error)
	ListActiveProfiles(ctx context.Context, practiceID string) ([]CompensationProfile, error)

	// Fringe benefits
	CreateFringeBenefit(ctx context.Context, benefit FringeBenefit) (FringeBenefit, error)
	RetireFringeBenefit(ctx context.Context, id, employeeID string, effectiveTo time.Time) (FringeBenefit, error)
	ListFringeBenefits(ctx context.Context, employeeIDs []string) ([]FringeBenefit, error)

	// Garnishees
	CreateGarnishee(ctx context.Context, order GarnisheeDeduction) (GarnisheeDeduction, error)
	DeactivateGarnishee(ctx context.Context, id, employeeID string) error
	ListGarnishees(ctx context.Context, employeeIDs []string, activeOnly bool) ([]GarnisheeDeduction, error)
}
