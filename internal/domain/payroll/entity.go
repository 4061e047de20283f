package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run is the payroll for one practice and one calendar month.
// Totals is always the sum of the run's entries.
type Run struct {
	ID          string
	PracticeID  string
	PeriodMonth int
	PeriodYear  int
	TaxYear     int
	Status      RunStatus
	Totals      Totals
	ProcessedAt *time.Time
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Totals struct {
	EmployeeCount  int
	Gross          decimal.Decimal
	Taxable        decimal.Decimal
	FringeBenefits decimal.Decimal
	PAYE           decimal.Decimal
	MedicalCredits decimal.Decimal
	EmployeeUIF    decimal.Decimal
	EmployerUIF    decimal.Decimal
	SDL            decimal.Decimal
	Retirement     decimal.Decimal
	MedicalAid     decimal.Decimal
	Garnishees     decimal.Decimal
	Net            decimal.Decimal
}

// SumEntries derives run totals from entries.
func SumEntries(entries []Entry) Totals {
	t := Totals{
		EmployeeCount:  len(entries),
		Gross:          decimal.Zero,
		Taxable:        decimal.Zero,
		FringeBenefits: decimal.Zero,
		PAYE:           decimal.Zero,
		MedicalCredits: decimal.Zero,
		EmployeeUIF:    decimal.Zero,
		EmployerUIF:    decimal.Zero,
		SDL:            decimal.Zero,
		Retirement:     decimal.Zero,
		MedicalAid:     decimal.Zero,
		Garnishees:     decimal.Zero,
		Net:            decimal.Zero,
	}
	for _, e := range entries {
		t.Gross = t.Gross.Add(e.Gross)
		t.Taxable = t.Taxable.Add(e.TaxableIncome)
		t.FringeBenefits = t.FringeBenefits.Add(e.FringeBenefits)
		t.PAYE = t.PAYE.Add(e.PAYE)
		t.MedicalCredits = t.MedicalCredits.Add(e.MedicalCredit)
		t.EmployeeUIF = t.EmployeeUIF.Add(e.EmployeeUIF)
		t.EmployerUIF = t.EmployerUIF.Add(e.EmployerUIF)
		t.SDL = t.SDL.Add(e.SDL)
		t.Retirement = t.Retirement.Add(e.Retirement)
		t.MedicalAid = t.MedicalAid.Add(e.MedicalAid)
		t.Garnishees = t.Garnishees.Add(e.Garnishees)
		t.Net = t.Net.Add(e.Net)
	}
	return t
}

// Entry is one employee's result in one run. Amounts are rounded to cents.
type Entry struct {
	ID             string
	RunID          string
	PracticeID     string
	EmployeeID     string
	TaxYear        int
	BaseSalary     decimal.Decimal
	AdditionsTotal decimal.Decimal
	Irregular      decimal.Decimal
	Gross          decimal.Decimal
	FringeBenefits decimal.Decimal
	TaxableIncome  decimal.Decimal
	PAYE           decimal.Decimal
	MedicalCredit  decimal.Decimal
	EmployeeUIF    decimal.Decimal
	EmployerUIF    decimal.Decimal
	SDL            decimal.Decimal
	Retirement     decimal.Decimal
	MedicalAid     decimal.Decimal
	Garnishees     decimal.Decimal
	Net            decimal.Decimal
	CalculatedAt   time.Time
	Additions      []Addition

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// SameAmounts reports whether two entries carry identical figures.
func (e Entry) SameAmounts(o Entry) bool {
	pairs := [][2]decimal.Decimal{
		{e.BaseSalary, o.BaseSalary}, {e.AdditionsTotal, o.AdditionsTotal}, {e.Irregular, o.Irregular},
		{e.Gross, o.Gross}, {e.FringeBenefits, o.FringeBenefits}, {e.TaxableIncome, o.TaxableIncome},
		{e.PAYE, o.PAYE}, {e.MedicalCredit, o.MedicalCredit}, {e.EmployeeUIF, o.EmployeeUIF},
		{e.EmployerUIF, o.EmployerUIF}, {e.SDL, o.SDL}, {e.Retirement, o.Retirement},
		{e.MedicalAid, o.MedicalAid}, {e.Garnishees, o.Garnishees}, {e.Net, o.Net},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			return false
		}
	}
	return e.EmployeeID == o.EmployeeID && e.TaxYear == o.TaxYear
}

type AdditionCategory string

const (
	AdditionBonus            AdditionCategory = "bonus"
	AdditionCommission       AdditionCategory = "commission"
	AdditionOvertime         AdditionCategory = "overtime"
	AdditionBackPay          AdditionCategory = "back_pay"
	AdditionSeverance        AdditionCategory = "severance"
	AdditionThirteenthCheque AdditionCategory = "thirteenth_cheque"
	AdditionAllowance        AdditionCategory = "allowance"
)

var validAdditionCategories = map[AdditionCategory]bool{
	AdditionBonus:            true,
	AdditionCommission:       true,
	AdditionOvertime:         true,
	AdditionBackPay:          true,
	AdditionSeverance:        true,
	AdditionThirteenthCheque: true,
	AdditionAllowance:        true,
}

func (c AdditionCategory) Valid() bool {
	return validAdditionCategories[c]
}

// AdditionSource separates user-entered additions, which survive a
// recalculation, from additions the engine derives itself.
type AdditionSource string

const (
	AdditionSourceManual AdditionSource = "manual"
	AdditionSourceAuto   AdditionSource = "auto"
)

// Addition is an irregular payment owned by exactly one entry.
type Addition struct {
	ID          string
	EntryID     string
	RunID       string
	EmployeeID  string
	Category    AdditionCategory
	Amount      decimal.Decimal
	Description string
	Source      AdditionSource
	// Sequence orders additions within an entry; irregular PAYE is computed
	// in this order.
	Sequence    int
	CreatedAt   time.Time
}
