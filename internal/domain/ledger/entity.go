package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeYTD holds cumulative finalized figures for one employee in one tax
// year. Figures only ever increase, and only when a run is marked paid.
type EmployeeYTD struct {
	EmployeeID     string
	PracticeID     string
	TaxYear        int
	Gross          decimal.Decimal
	Taxable        decimal.Decimal
	PAYE           decimal.Decimal
	EmployeeUIF    decimal.Decimal
	EmployerUIF    decimal.Decimal
	SDL            decimal.Decimal
	Retirement     decimal.Decimal
	MedicalAid     decimal.Decimal
	FringeBenefits decimal.Decimal
	MedicalCredits decimal.Decimal
	Irregular      decimal.Decimal
	UpdatedAt      time.Time

	// Joined fields
	EmployeeName       *string
	EmployeeCode       *string
	TaxReferenceNumber *string
}

// Posting is the contribution of one paid entry. EntryID is the idempotency
// key: an entry can be posted at most once.
type Posting struct {
	EntryID        string
	RunID          string
	EmployeeID     string
	PracticeID     string
	TaxYear        int
	Gross          decimal.Decimal
	Taxable        decimal.Decimal
	PAYE           decimal.Decimal
	EmployeeUIF    decimal.Decimal
	EmployerUIF    decimal.Decimal
	SDL            decimal.Decimal
	Retirement     decimal.Decimal
	MedicalAid     decimal.Decimal
	FringeBenefits decimal.Decimal
	MedicalCredits decimal.Decimal
	Irregular      decimal.Decimal
}

// Apply adds p to y.
func (y EmployeeYTD) Apply(p Posting) EmployeeYTD {
	y.Gross = y.Gross.Add(p.Gross)
	y.Taxable = y.Taxable.Add(p.Taxable)
	y.PAYE = y.PAYE.Add(p.PAYE)
	y.EmployeeUIF = y.EmployeeUIF.Add(p.EmployeeUIF)
	y.EmployerUIF = y.EmployerUIF.Add(p.EmployerUIF)
	y.SDL = y.SDL.Add(p.SDL)
	y.Retirement = y.Retirement.Add(p.Retirement)
	y.MedicalAid = y.MedicalAid.Add(p.MedicalAid)
	y.FringeBenefits = y.FringeBenefits.Add(p.FringeBenefits)
	y.MedicalCredits = y.MedicalCredits.Add(p.MedicalCredits)
	y.Irregular = y.Irregular.Add(p.Irregular)
	return y
}
