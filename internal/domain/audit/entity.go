package audit

import (
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

// CalculationRecord is an immutable snapshot of one entry calculation.
// Records are only ever appended; a recalculation adds a new record and keeps
// the old ones.
type CalculationRecord struct {
	ID           string
	PracticeID   string
	RunID        string
	EntryID      string
	EmployeeID   string
	TaxYear      int
	RunStatus    string
	CalculatedAt time.Time
	Breakdown    Breakdown
}

// Breakdown holds every intermediate value used to produce a payroll entry.
// Tax and contribution amounts are unrounded; deductions, disposable income
// and net are in cents, as persisted.
type Breakdown struct {
	TaxYear    int             `json:"tax_year"`
	PeriodEnd  time.Time       `json:"period_end"`
	Age        int             `json:"age"`
	BaseSalary decimal.Decimal `json:"base_salary"`

	Additions      []AdditionLine  `json:"additions"`
	AdditionsTotal decimal.Decimal `json:"additions_total"`
	CashGross      decimal.Decimal `json:"cash_gross"`

	FringeBenefits []FringeLine    `json:"fringe_benefits"`
	FringeTotal    decimal.Decimal `json:"fringe_total"`
	TaxableIncome  decimal.Decimal `json:"taxable_income"`

	RegularMonthlyTaxable decimal.Decimal          `json:"regular_monthly_taxable"`
	RegularTax            statutory.TaxComputation `json:"regular_tax"`
	RegularPAYE           decimal.Decimal          `json:"regular_paye"`
	IrregularPAYE         decimal.Decimal          `json:"irregular_paye"`
	YTDIrregularBefore    decimal.Decimal          `json:"ytd_irregular_before"`

	PAYEBeforeCredit     decimal.Decimal `json:"paye_before_credit"`
	MedicalDependents    int             `json:"medical_dependents"`
	MedicalCredit        decimal.Decimal `json:"medical_credit"`
	MedicalCreditApplied decimal.Decimal `json:"medical_credit_applied"`
	PAYE                 decimal.Decimal `json:"paye"`

	Contributions statutory.Contributions `json:"contributions"`

	Deductions       []DeductionLine `json:"deductions"`
	Garnishees       []GarnisheeLine `json:"garnishees"`
	GarnisheeTotal   decimal.Decimal `json:"garnishee_total"`
	DisposableIncome decimal.Decimal `json:"disposable_income"`
	Net              decimal.Decimal `json:"net"`

	Warnings []string `json:"warnings,omitempty"`
}

type AdditionLine struct {
	Category      string                  `json:"category"`
	Source        string                  `json:"source"`
	Amount        decimal.Decimal         `json:"amount"`
	Annualisation statutory.Annualisation `json:"annualisation"`
}

type FringeLine struct {
	BenefitID string          `json:"benefit_id"`
	Category  string          `json:"category"`
	Value     decimal.Decimal `json:"value"`
}

type DeductionLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	// Shortfall is the part of Amount not covered by the pay left after the
	// deductions before it.
	Shortfall decimal.Decimal `json:"shortfall"`
}

type GarnisheeLine struct {
	OrderID   string          `json:"order_id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}
