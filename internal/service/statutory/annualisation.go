package statutory

import (
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// AnnualiseIrregular returns the PAYE attributable to payment: the annual
// liability with the payment less the liability without it, floored at zero.
// ytdIrregularBefore is the irregular income already taxed in the tax year.
func AnnualiseIrregular(table statutory.TaxYear, regularMonthly, ytdIrregularBefore, payment decimal.Decimal, age int) (statutory.Annualisation, error) {
	regularAnnual := money.Annual(regularMonthly)
	without := regularAnnual.Add(ytdIrregularBefore)
	with := without.Add(payment)

	taxWith, err := AnnualLiability(table, with, age)
	if err != nil {
		return statutory.Annualisation{}, err
	}
	taxWithout, err := AnnualLiability(table, without, age)
	if err != nil {
		return statutory.Annualisation{}, err
	}

	return statutory.Annualisation{
		Payment:            payment,
		RegularAnnual:      regularAnnual,
		YTDIrregularBefore: ytdIrregularBefore,
		ProjectedWith:      with,
		ProjectedWithout:   without,
		TaxWith:            taxWith,
		TaxWithout:         taxWithout,
		IncrementalTax:     money.NonNegative(taxWith.Sub(taxWithout)),
	}, nil
}
