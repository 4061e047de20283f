package statutory

import "github.com/shopspring/decimal"

// TaxComputation is an annual liability and the values that produced it.
type TaxComputation struct {
	TaxYear          int             `json:"tax_year"`
	AnnualIncome     decimal.Decimal `json:"annual_income"`
	BandIndex        int             `json:"band_index"`
	BandLower        decimal.Decimal `json:"band_lower"`
	BandBase         decimal.Decimal `json:"band_base"`
	BandRate         decimal.Decimal `json:"band_rate"`
	TaxBeforeRebates decimal.Decimal `json:"tax_before_rebates"`
	PrimaryRebate    decimal.Decimal `json:"primary_rebate"`
	SecondaryRebate  decimal.Decimal `json:"secondary_rebate"`
	TertiaryRebate   decimal.Decimal `json:"tertiary_rebate"`
	TotalRebates     decimal.Decimal `json:"total_rebates"`
	Liability        decimal.Decimal `json:"liability"`
}

// Annualisation records how the PAYE on one irregular payment was derived.
type Annualisation struct {
	Payment            decimal.Decimal `json:"payment"`
	RegularAnnual      decimal.Decimal `json:"regular_annual"`
	YTDIrregularBefore decimal.Decimal `json:"ytd_irregular_before"`
	ProjectedWith      decimal.Decimal `json:"projected_with"`
	ProjectedWithout   decimal.Decimal `json:"projected_without"`
	TaxWith            decimal.Decimal `json:"tax_with"`
	TaxWithout         decimal.Decimal `json:"tax_without"`
	IncrementalTax     decimal.Decimal `json:"incremental_tax"`
}

type Contributions struct {
	UIFBase     decimal.Decimal `json:"uif_base"`
	EmployeeUIF decimal.Decimal `json:"employee_uif"`
	EmployerUIF decimal.Decimal `json:"employer_uif"`
	SDL         decimal.Decimal `json:"sdl"`
	SDLExempt   bool            `json:"sdl_exempt"`
}
