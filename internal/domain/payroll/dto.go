package payroll

import (
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type RecalculateRunRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *RecalculateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be between 2000 and 2100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionRunRequest struct {
	RunID  string `json:"-"`
	Status string `json:"status"`
}

func (r *TransitionRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RunID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}
	if !RunStatus(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft', 'processed' or 'paid'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunFilter struct {
	PeriodYear *int       `json:"period_year,omitempty"`
	Status     *RunStatus `json:"status,omitempty"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

func (f *RunFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !f.Status.Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft', 'processed' or 'paid'"})
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== ADDITION DTOs ==========

type CreateAdditionRequest struct {
	RunID       string          `json:"-"`
	EntryID     string          `json:"-"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r *CreateAdditionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RunID) {
		errs = append(errs, validator.ValidationError{Field: "run_id", Message: "is required"})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{Field: "entry_id", Message: "is required"})
	}
	if !AdditionCategory(r.Category).Valid() {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "is not a known addition category"})
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

type DeleteAdditionRequest struct {
	RunID      string
	AdditionID string
}

// ========== RESPONSES ==========

type TotalsResponse struct {
	EmployeeCount  int             `json:"employee_count"`
	Gross          decimal.Decimal `json:"gross"`
	Taxable        decimal.Decimal `json:"taxable"`
	FringeBenefits decimal.Decimal `json:"fringe_benefits"`
	PAYE           decimal.Decimal `json:"paye"`
	MedicalCredits decimal.Decimal `json:"medical_credits"`
	EmployeeUIF    decimal.Decimal `json:"employee_uif"`
	EmployerUIF    decimal.Decimal `json:"employer_uif"`
	SDL            decimal.Decimal `json:"sdl"`
	Retirement     decimal.Decimal `json:"retirement"`
	MedicalAid     decimal.Decimal `json:"medical_aid"`
	Garnishees     decimal.Decimal `json:"garnishees"`
	Net            decimal.Decimal `json:"net"`
}

type AdditionResponse struct {
	ID          string          `json:"id"`
	EntryID     string          `json:"entry_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
	Sequence    int             `json:"sequence"`
}

type EntryResponse struct {
	ID             string             `json:"id"`
	EmployeeID     string             `json:"employee_id"`
	EmployeeName   *string            `json:"employee_name,omitempty"`
	EmployeeCode   *string            `json:"employee_code,omitempty"`
	BaseSalary     decimal.Decimal    `json:"base_salary"`
	AdditionsTotal decimal.Decimal    `json:"additions_total"`
	Gross          decimal.Decimal    `json:"gross"`
	FringeBenefits decimal.Decimal    `json:"fringe_benefits"`
	TaxableIncome  decimal.Decimal    `json:"taxable_income"`
	PAYE           decimal.Decimal    `json:"paye"`
	MedicalCredit  decimal.Decimal    `json:"medical_credit"`
	EmployeeUIF    decimal.Decimal    `json:"employee_uif"`
	EmployerUIF    decimal.Decimal    `json:"employer_uif"`
	SDL            decimal.Decimal    `json:"sdl"`
	Retirement     decimal.Decimal    `json:"retirement"`
	MedicalAid     decimal.Decimal    `json:"medical_aid"`
	Garnishees     decimal.Decimal    `json:"garnishees"`
	Net            decimal.Decimal    `json:"net"`
	Additions      []AdditionResponse `json:"additions"`
}

type RunResponse struct {
	ID          string          `json:"id"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	TaxYear     int             `json:"tax_year"`
	Status      string          `json:"status"`
	Totals      TotalsResponse  `json:"totals"`
	ProcessedAt *string         `json:"processed_at,omitempty"`
	PaidAt      *string         `json:"paid_at,omitempty"`
	Entries     []EntryResponse `json:"entries,omitempty"`
}

type ListRunResponse struct {
	Data       []RunResponse `json:"data"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func NewAdditionResponse(a Addition) AdditionResponse {
	return AdditionResponse{
		ID:          a.ID,
		EntryID:     a.EntryID,
		Category:    string(a.Category),
		Amount:      a.Amount,
		Description: a.Description,
		Source:      string(a.Source),
		Sequence:    a.Sequence,
	}
}

func NewEntryResponse(e Entry) EntryResponse {
	additions := make([]AdditionResponse, 0, len(e.Additions))
	for _, a := range e.Additions {
		additions = append(additions, NewAdditionResponse(a))
	}
	return EntryResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		EmployeeCode:   e.EmployeeCode,
		BaseSalary:     e.BaseSalary,
		AdditionsTotal: e.AdditionsTotal,
		Gross:          e.Gross,
		FringeBenefits: e.FringeBenefits,
		TaxableIncome:  e.TaxableIncome,
		PAYE:           e.PAYE,
		MedicalCredit:  e.MedicalCredit,
		EmployeeUIF:    e.EmployeeUIF,
		EmployerUIF:    e.EmployerUIF,
		SDL:            e.SDL,
		Retirement:     e.Retirement,
		MedicalAid:     e.MedicalAid,
		Garnishees:     e.Garnishees,
		Net:            e.Net,
		Additions:      additions,
	}
}

func NewRunResponse(r Run, entries []Entry) RunResponse {
	resp := RunResponse{
		ID:          r.ID,
		PeriodMonth: r.PeriodMonth,
		PeriodYear:  r.PeriodYear,
		TaxYear:     r.TaxYear,
		Status:      string(r.Status),
		Totals: TotalsResponse{
			EmployeeCount:  r.Totals.EmployeeCount,
			Gross:          r.Totals.Gross,
			Taxable:        r.Totals.Taxable,
			FringeBenefits: r.Totals.FringeBenefits,
			PAYE:           r.Totals.PAYE,
			MedicalCredits: r.Totals.MedicalCredits,
			EmployeeUIF:    r.Totals.EmployeeUIF,
			EmployerUIF:    r.Totals.EmployerUIF,
			SDL:            r.Totals.SDL,
			Retirement:     r.Totals.Retirement,
			MedicalAid:     r.Totals.MedicalAid,
			Garnishees:     r.Totals.Garnishees,
			Net:            r.Totals.Net,
		},
		ProcessedAt: formatTimestamp(r.ProcessedAt),
		PaidAt:      formatTimestamp(r.PaidAt),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, NewEntryResponse(e))
	}
	return resp
}
