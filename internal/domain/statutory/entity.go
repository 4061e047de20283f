package statutory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Band is one row of a progressive tax table. Income in [Lower, Upper) is
// taxed as Base + (income - Lower) * Rate. A nil Upper marks the top band.
type Band struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Base  decimal.Decimal
	Rate  decimal.Decimal
}

// Contains reports whether income falls in the band.
func (b Band) Contains(income decimal.Decimal) bool {
	if income.LessThan(b.Lower) {
		return false
	}
	return b.Upper == nil || income.LessThan(*b.Upper)
}

// Rebates are annual amounts subtracted from tax, tiered by age.
type Rebates struct {
	Primary      decimal.Decimal
	Secondary    decimal.Decimal
	SecondaryAge int
	Tertiary     decimal.Decimal
	TertiaryAge  int
}

// MedicalCreditRates are monthly credits per covered life.
// FirstDependent, when set, replaces Dependent for the first dependent only.
type MedicalCreditRates struct {
	MainMember     decimal.Decimal
	FirstDependent *decimal.Decimal
	Dependent      decimal.Decimal
}

type UIFRates struct {
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
	// MonthlyCeiling caps the remuneration UIF is computed on.
	MonthlyCeiling decimal.Decimal
}

type SDLRates struct {
	Rate decimal.Decimal
	// ExemptionThreshold is an annual payroll amount; practices below it pay no SDL.
	ExemptionThreshold decimal.Decimal
}

// TaxYear is the full statutory configuration for one tax year.
// ID is the calendar year in which the tax year ends.
type TaxYear struct {
	ID            int
	Start         time.Time
	End           time.Time
	Bands         []Band
	Rebates       Rebates
	MedicalCredit MedicalCreditRates
	UIF           UIFRates
	SDL           SDLRates
}

// Contains reports whether date falls inside the tax year (inclusive).
func (y TaxYear) Contains(date time.Time) bool {
	d := truncateDay(date)
	return !d.Before(y.Start) && !d.After(y.End)
}

// MonthsRemaining counts pay months from the month of date to the last month
// of the tax year, both included.
func (y TaxYear) MonthsRemaining(date time.Time) int {
	months := (y.End.Year()-date.Year())*12 + int(y.End.Month()) - int(date.Month()) + 1
	if months < 0 {
		return 0
	}
	return months
}

// AgeAt returns the completed years between dob and date.
func AgeAt(dob, date time.Time) int {
	age := date.Year() - dob.Year()
	if date.Month() < dob.Month() || (date.Month() == dob.Month() && date.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// PeriodEnd is the last calendar day of month/year, the evaluation date of a pay period.
func PeriodEnd(month, year int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
