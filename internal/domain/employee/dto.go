package employee

import (
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== FRINGE BENEFIT DTOs ==========

type CreateFringeBenefitRequest struct {
	EmployeeID          string          `json:"-"`
	Category            string          `json:"category"`
	Description         string          `json:"description"`
	MonthlyTaxableValue decimal.Decimal `json:"monthly_taxable_value"`
	EffectiveFrom       string          `json:"effective_from"`
	EffectiveTo         *string         `json:"effective_to,omitempty"`
}

func (r *CreateFringeBenefitRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validBenefitCategories[BenefitCategory(r.Category)] {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "is not a known fringe benefit category"})
	}
	switch {
	case !r.MonthlyTaxableValue.IsPositive():
		errs = append(errs, validator.ValidationError{Field: "monthly_taxable_value", Message: "must be greater than zero"})
	case !validator.HasAtMostCents(r.MonthlyTaxableValue):
		errs = append(errs, validator.ValidationError{Field: "monthly_taxable_value", Message: "must have at most 2 decimal places"})
	}

	from, fromOK := validator.IsValidDate(r.EffectiveFrom)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a date in YYYY-MM-DD format"})
	}
	if r.EffectiveTo != nil {
		to, toOK := validator.IsValidDate(*r.EffectiveTo)
		switch {
		case !toOK:
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must be a date in YYYY-MM-DD format"})
		case fromOK && to.Before(from):
			errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must not be before effective_from"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntity assumes Validate has passed.
func (r *CreateFringeBenefitRequest) ToEntity() FringeBenefit {
	from, _ := validator.IsValidDate(r.EffectiveFrom)
	b := FringeBenefit{
		EmployeeID:          r.EmployeeID,
		Category:            BenefitCategory(r.Category),
		Description:         r.Description,
		MonthlyTaxableValue: r.MonthlyTaxableValue,
		EffectiveFrom:       from,
	}
	if r.EffectiveTo != nil {
		to, _ := validator.IsValidDate(*r.EffectiveTo)
		b.EffectiveTo = &to
	}
	return b
}

type RetireFringeBenefitRequest struct {
	ID          string `json:"-"`
	EmployeeID  string `json:"-"`
	EffectiveTo string `json:"effective_to"`
}

func (r *RetireFringeBenefitRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.EffectiveTo); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_to", Message: "must be a date in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FringeBenefitResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	Category            string          `json:"category"`
	Description         string          `json:"description"`
	MonthlyTaxableValue decimal.Decimal `json:"monthly_taxable_value"`
	EffectiveFrom       string          `json:"effective_from"`
	EffectiveTo         *string         `json:"effective_to,omitempty"`
}

func NewFringeBenefitResponse(b FringeBenefit) FringeBenefitResponse {
	resp := FringeBenefitResponse{
		ID:                  b.ID,
		EmployeeID:          b.EmployeeID,
		Category:            string(b.Category),
		Description:         b.Description,
		MonthlyTaxableValue: b.MonthlyTaxableValue,
		EffectiveFrom:       b.EffectiveFrom.Format(time.DateOnly),
	}
	if b.EffectiveTo != nil {
		to := b.EffectiveTo.Format(time.DateOnly)
		resp.EffectiveTo = &to
	}
	return resp
}

// ========== GARNISHEE DTOs ==========

type CreateGarnisheeRequest struct {
	EmployeeID string          `json:"-"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
}

func (r *CreateGarnisheeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reference) {
		errs = append(errs, validator.ValidationError{Field: "reference", Message: "is required"})
	}
	switch {
	case !r.Amount.IsPositive():
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be greater than zero"})
	case !validator.HasAtMostCents(r.Amount):
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must have at most 2 decimal places"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GarnisheeResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	Active     bool            `json:"active"`
}

func NewGarnisheeResponse(g GarnisheeDeduction) GarnisheeResponse {
	return GarnisheeResponse{
		ID:         g.ID,
		EmployeeID: g.EmployeeID,
		Reference:  g.Reference,
		Amount:     g.Amount,
		Active:     g.Active,
	}
}
