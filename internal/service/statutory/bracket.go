// Package statutory implements the pure statutory calculations: progressive
// income tax with age rebates, medical tax credits, UIF/SDL contributions and
// the annualisation of irregular payments.
package statutory

import (
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ResolveAnnualTax applies the tax year's bands and age rebates to an annual
// taxable income. Negative income is treated as zero.
func ResolveAnnualTax(table statutory.TaxYear, annualIncome decimal.Decimal, age int) (statutory.TaxComputation, error) {
	income := money.NonNegative(annualIncome)

	idx := -1
	for i, band := range table.Bands {
		if band.Contains(income) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return statutory.TaxComputation{}, statutory.NewConfigurationError(table.ID, "no tax band covers income "+income.String())
	}
	band := table.Bands[idx]

	before := band.Base.Add(income.Sub(band.Lower).Mul(band.Rate))
	primary, secondary, tertiary := Rebates(table.Rebates, age)
	rebates := money.Sum(primary, secondary, tertiary)

	return statutory.TaxComputation{
		TaxYear:          table.ID,
		AnnualIncome:     income,
		BandIndex:        idx,
		BandLower:        band.Lower,
		BandBase:         band.Base,
		BandRate:         band.Rate,
		TaxBeforeRebates: before,
		PrimaryRebate:    primary,
		SecondaryRebate:  secondary,
		TertiaryRebate:   tertiary,
		TotalRebates:     rebates,
		Liability:        money.NonNegative(before.Sub(rebates)),
	}, nil
}

// Rebates returns the rebate tiers that apply at age.
func Rebates(r statutory.Rebates, age int) (primary, secondary, tertiary decimal.Decimal) {
	primary, secondary, tertiary = r.Primary, decimal.Zero, decimal.Zero
	if r.SecondaryAge > 0 && age >= r.SecondaryAge {
		secondary = r.Secondary
	}
	if r.TertiaryAge > 0 && age >= r.TertiaryAge {
		tertiary = r.Tertiary
	}
	return primary, secondary, tertiary
}

// AnnualLiability is ResolveAnnualTax reduced to the liability after rebates.
func AnnualLiability(table statutory.TaxYear, annualIncome decimal.Decimal, age int) (decimal.Decimal, error) {
	c, err := ResolveAnnualTax(table, annualIncome, age)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Liability, nil
}
