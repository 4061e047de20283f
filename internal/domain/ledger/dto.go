package ledger

import "github.com/shopspring/decimal"

type YTDResponse struct {
	EmployeeID     string          `json:"employee_id"`
	TaxYear        int             `json:"tax_year"`
	Gross          decimal.Decimal `json:"gross"`
	Taxable        decimal.Decimal `json:"taxable"`
	PAYE           decimal.Decimal `json:"paye"`
	EmployeeUIF    decimal.Decimal `json:"employee_uif"`
	EmployerUIF    decimal.Decimal `json:"employer_uif"`
	SDL            decimal.Decimal `json:"sdl"`
	Retirement     decimal.Decimal `json:"retirement"`
	MedicalAid     decimal.Decimal `json:"medical_aid"`
	FringeBenefits decimal.Decimal `json:"fringe_benefits"`
	MedicalCredits decimal.Decimal `json:"medical_credits"`
	Irregular      decimal.Decimal `json:"irregular"`
}

func NewYTDResponse(y EmployeeYTD) YTDResponse {
	return YTDResponse{
		EmployeeID:     y.EmployeeID,
		TaxYear:        y.TaxYear,
		Gross:          y.Gross,
		Taxable:        y.Taxable,
		PAYE:           y.PAYE,
		EmployeeUIF:    y.EmployeeUIF,
		EmployerUIF:    y.EmployerUIF,
		SDL:            y.SDL,
		Retirement:     y.Retirement,
		MedicalAid:     y.MedicalAid,
		FringeBenefits: y.FringeBenefits,
		MedicalCredits: y.MedicalCredits,
		Irregular:      y.Irregular,
	}
}
