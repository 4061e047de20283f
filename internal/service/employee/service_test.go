package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmployeeRepo struct {
	profiles   []employee.CompensationProfile
	benefits   []employee.FringeBenefit
	garnishees []employee.GarnisheeDeduction
}

func (r *stubEmployeeRepo) GetProfile(_ context.Context, id, practiceID string) (employee.CompensationProfile, error) {
	for _, p := range r.profiles {
		if p.ID == id && p.PracticeID == practiceID {
			return p, nil
		}
	}
	return employee.CompensationProfile{}, employee.ErrEmployeeNotFound
}

func (r *stubEmployeeRepo) ListActiveProfiles(_ context.Context, practiceID string) ([]employee.CompensationProfile, error) {
	return r.profiles, nil
}

func (r *stubEmployeeRepo) CreateFringeBenefit(_ context.Context, b employee.FringeBenefit) (employee.FringeBenefit, error) {
	b.ID = "benefit-" + string(rune('a'+len(r.benefits)))
	r.benefits = append(r.benefits, b)
	return b, nil
}

func (r *stubEmployeeRepo) RetireFringeBenefit(_ context.Context, id, employeeID string, effectiveTo time.Time) (employee.FringeBenefit, error) {
	for i := range r.benefits {
		if r.benefits[i].ID == id && r.benefits[i].EmployeeID == employeeID {
			r.benefits[i].EffectiveTo = &effectiveTo
			return r.benefits[i], nil
		}
	}
	return employee.FringeBenefit{}, employee.ErrFringeBenefitNotFound
}

func (r *stubEmployeeRepo) ListFringeBenefits(_ context.Context, employeeIDs []string) ([]employee.FringeBenefit, error) {
	var out []employee.FringeBenefit
	for _, b := range r.benefits {
		for _, id := range employeeIDs {
			if b.EmployeeID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (r *stubEmployeeRepo) CreateGarnishee(_ context.Context, g employee.GarnisheeDeduction) (employee.GarnisheeDeduction, error) {
	g.ID = "garnishee-" + string(rune('a'+len(r.garnishees)))
	r.garnishees = append(r.garnishees, g)
	return g, nil
}

func (r *stubEmployeeRepo) DeactivateGarnishee(_ context.Context, id, employeeID string) error {
	for i := range r.garnishees {
		if r.garnishees[i].ID == id && r.garnishees[i].EmployeeID == employeeID {
			r.garnishees[i].Active = false
			return nil
		}
	}
	return employee.ErrGarnisheeNotFound
}

func (r *stubEmployeeRepo) ListGarnishees(_ context.Context, employeeIDs []string, activeOnly bool) ([]employee.GarnisheeDeduction, error) {
	var out []employee.GarnisheeDeduction
	for _, g := range r.garnishees {
		for _, id := range employeeIDs {
			if g.EmployeeID == id && (g.Active || !activeOnly) {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func newTestService() (*EmployeeServiceImpl, *stubEmployeeRepo, context.Context) {
	repo := &stubEmployeeRepo{
		profiles: []employee.CompensationProfile{{ID: "e1", PracticeID: "practice-1", FullName: "Thandi Mokoena", Active: true}},
	}
	token := jwt.New()
	_ = token.Set("practice_id", "practice-1")
	ctx := jwtauth.NewContext(context.Background(), token, nil)
	return NewEmployeeService(repo).(*EmployeeServiceImpl), repo, ctx
}

func strPtr(s string) *string { return &s }

func TestCreateFringeBenefit(t *testing.T) {
	svc, repo, ctx := newTestService()

	resp, err := svc.CreateFringeBenefit(ctx, employee.CreateFringeBenefitRequest{
		EmployeeID:          "e1",
		Category:            "company_car",
		MonthlyTaxableValue: decimal.RequireFromString("2450.00"),
		EffectiveFrom:       "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", resp.EffectiveFrom)
	assert.Nil(t, resp.EffectiveTo)
	assert.Len(t, repo.benefits, 1)
}

func TestCreateFringeBenefit_RejectsInvertedRange(t *testing.T) {
	svc, repo, ctx := newTestService()

	_, err := svc.CreateFringeBenefit(ctx, employee.CreateFringeBenefitRequest{
		EmployeeID:          "e1",
		Category:            "housing",
		MonthlyTaxableValue: decimal.RequireFromString("1000"),
		EffectiveFrom:       "2025-06-01",
		EffectiveTo:         strPtr("2025-05-31"),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "effective_to")
	assert.Empty(t, repo.benefits)
}

func TestCreateFringeBenefit_RejectsFractionalCents(t *testing.T) {
	svc, repo, ctx := newTestService()

	_, err := svc.CreateFringeBenefit(ctx, employee.CreateFringeBenefitRequest{
		EmployeeID:          "e1",
		Category:            "company_car",
		MonthlyTaxableValue: decimal.RequireFromString("2450.125"),
		EffectiveFrom:       "2025-03-01",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must have at most 2 decimal places", verrs.ToMap()["monthly_taxable_value"])
	assert.Empty(t, repo.benefits)
}

func TestCreateFringeBenefit_OtherPracticeEmployee(t *testing.T) {
	svc, _, ctx := newTestService()

	_, err := svc.CreateFringeBenefit(ctx, employee.CreateFringeBenefitRequest{
		EmployeeID:          "e9",
		Category:            "housing",
		MonthlyTaxableValue: decimal.RequireFromString("1000"),
		EffectiveFrom:       "2025-06-01",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRetireFringeBenefit(t *testing.T) {
	svc, _, ctx := newTestService()

	created, err := svc.CreateFringeBenefit(ctx, employee.CreateFringeBenefitRequest{
		EmployeeID:          "e1",
		Category:            "low_interest_loan",
		MonthlyTaxableValue: decimal.RequireFromString("310.42"),
		EffectiveFrom:       "2025-04-01",
	})
	require.NoError(t, err)

	_, err = svc.RetireFringeBenefit(ctx, employee.RetireFringeBenefitRequest{ID: created.ID, EmployeeID: "e1", EffectiveTo: "2025-03-31"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	retired, err := svc.RetireFringeBenefit(ctx, employee.RetireFringeBenefitRequest{ID: created.ID, EmployeeID: "e1", EffectiveTo: "2025-09-30"})
	require.NoError(t, err)
	require.NotNil(t, retired.EffectiveTo)
	assert.Equal(t, "2025-09-30", *retired.EffectiveTo)

	_, err = svc.RetireFringeBenefit(ctx, employee.RetireFringeBenefitRequest{ID: created.ID, EmployeeID: "e1", EffectiveTo: "2025-10-31"})
	assert.ErrorIs(t, err, employee.ErrBenefitAlreadyRetired)
}

func TestGarnisheeLifecycle(t *testing.T) {
	svc, _, ctx := newTestService()

	_, err := svc.CreateGarnishee(ctx, employee.CreateGarnisheeRequest{EmployeeID: "e1", Reference: "EMO 4411/2024", Amount: decimal.Zero})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	_, err = svc.CreateGarnishee(ctx, employee.CreateGarnisheeRequest{EmployeeID: "e1", Reference: "EMO 4411/2024", Amount: decimal.RequireFromString("500.001")})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must have at most 2 decimal places", verrs.ToMap()["amount"])

	created, err := svc.CreateGarnishee(ctx, employee.CreateGarnisheeRequest{
		EmployeeID: "e1",
		Reference:  "EMO 4411/2024",
		Amount:     decimal.RequireFromString("500"),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	require.NoError(t, svc.DeactivateGarnishee(ctx, created.ID, "e1"))
	assert.ErrorIs(t, svc.DeactivateGarnishee(ctx, created.ID, "e1"), employee.ErrGarnisheeAlreadyClosed)
	assert.ErrorIs(t, svc.DeactivateGarnishee(ctx, "missing", "e1"), employee.ErrGarnisheeNotFound)

	orders, err := svc.ListGarnishees(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.False(t, orders[0].Active)
}

func TestEmployeeService_RequiresPracticeClaim(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListGarnishees(context.Background(), "e1")
	assert.ErrorIs(t, err, employee.ErrClaimsMissing)
}
