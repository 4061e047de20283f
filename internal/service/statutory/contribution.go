package statutory

import (
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ComputeContributions computes UIF on remuneration capped at the ceiling and
// SDL on the full remuneration unless the practice is exempt.
func ComputeContributions(table statutory.TaxYear, remuneration decimal.Decimal, sdlExempt bool) statutory.Contributions {
	rem := money.NonNegative(remuneration)
	base := money.Min(rem, table.UIF.MonthlyCeiling)

	c := statutory.Contributions{
		UIFBase:     base,
		EmployeeUIF: base.Mul(table.UIF.EmployeeRate),
		EmployerUIF: base.Mul(table.UIF.EmployerRate),
		SDL:         decimal.Zero,
		SDLExempt:   sdlExempt,
	}
	if !sdlExempt {
		c.SDL = rem.Mul(table.SDL.Rate)
	}
	return c
}

// SDLExempt reports whether a practice's projected annual payroll falls below
// the exemption threshold.
func SDLExempt(table statutory.TaxYear, projectedAnnualPayroll decimal.Decimal) bool {
	return projectedAnnualPayroll.LessThan(table.SDL.ExemptionThreshold)
}
