package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationProfile is the payroll view of an employee. It is maintained by
// HR outside the payroll engine and only read here.
type CompensationProfile struct {
	ID                 string
	PracticeID         string
	EmployeeCode       string
	FullName           string
	DOB                time.Time
	TaxReferenceNumber string
	BaseSalary         decimal.Decimal

	BankAccountHolderName string
	BankName              string
	BankAccountNumber     string
	BankBranchCode        string

	// Employee-side contributions, deducted from net pay as configured.
	RetirementContribution decimal.Decimal
	MedicalAidContribution decimal.Decimal
	MedicalAidDependents   int
	HasMedicalAid          bool

	// ThirteenthChequeMonth, when set, adds a thirteenth cheque equal to the
	// base salary to that month's run.
	ThirteenthChequeMonth *int

	Active bool
}

// AccountHolder falls back to the employee's name.
func (p CompensationProfile) AccountHolder() string {
	if p.BankAccountHolderName != "" {
		return p.BankAccountHolderName
	}
	return p.FullName
}

type BenefitCategory string

const (
	BenefitCompanyCar      BenefitCategory = "company_car"
	BenefitHousing         BenefitCategory = "housing"
	BenefitLowInterestLoan BenefitCategory = "low_interest_loan"
	BenefitMedicalAid      BenefitCategory = "employer_medical_aid"
	BenefitOther           BenefitCategory = "other"
)

var validBenefitCategories = map[BenefitCategory]bool{
	BenefitCompanyCar:      true,
	BenefitHousing:         true,
	BenefitLowInterestLoan: true,
	BenefitMedicalAid:      true,
	BenefitOther:           true,
}

// FringeBenefit is a notional taxable value; it is never paid in cash.
type FringeBenefit struct {
	ID                  string
	EmployeeID          string
	Category            BenefitCategory
	Description         string
	MonthlyTaxableValue decimal.Decimal
	EffectiveFrom       time.Time
	EffectiveTo         *time.Time
	CreatedAt           time.Time
}

// ActiveOn reports whether the benefit applies on date. Both ends are inclusive.
func (b FringeBenefit) ActiveOn(date time.Time) bool {
	if date.Before(b.EffectiveFrom) {
		return false
	}
	return b.EffectiveTo == nil || !b.EffectiveTo.Before(date)
}

// GarnisheeDeduction is a court-ordered fixed monthly deduction.
type GarnisheeDeduction struct {
	ID         string
	EmployeeID string
	Reference  string
	Amount     decimal.Decimal
	Active     bool
	CreatedAt  time.Time
}
