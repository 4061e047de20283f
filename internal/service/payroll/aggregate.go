package payroll

import (
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// SumActiveFringeBenefits totals the monthly taxable value of the benefits
// active on date.
func SumActiveFringeBenefits(benefits []employee.FringeBenefit, date time.Time) (decimal.Decimal, []audit.FringeLine) {
	total := decimal.Zero
	lines := make([]audit.FringeLine, 0)
	for _, b := range benefits {
		if !b.ActiveOn(date) {
			continue
		}
		total = total.Add(b.MonthlyTaxableValue)
		lines = append(lines, audit.FringeLine{
			BenefitID: b.ID,
			Category:  string(b.Category),
			Value:     b.MonthlyTaxableValue,
		})
	}
	return total, lines
}

// SumActiveGarnishees totals the active orders. Orders are summed in the
// order given; no cap is applied.
func SumActiveGarnishees(orders []employee.GarnisheeDeduction) (decimal.Decimal, []audit.GarnisheeLine) {
	total := decimal.Zero
	lines := make([]audit.GarnisheeLine, 0)
	for _, o := range orders {
		if !o.Active {
			continue
		}
		total = total.Add(o.Amount)
		lines = append(lines, audit.GarnisheeLine{
			OrderID:   o.ID,
			Reference: o.Reference,
			Amount:    o.Amount,
		})
	}
	return total, lines
}
