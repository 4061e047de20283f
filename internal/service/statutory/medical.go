package statutory

import (
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// MonthlyMedicalCredit is the credit for the main member plus dependents.
func MonthlyMedicalCredit(rates statutory.MedicalCreditRates, dependents int) decimal.Decimal {
	credit := rates.MainMember
	if dependents <= 0 {
		return credit
	}
	if rates.FirstDependent != nil {
		credit = credit.Add(*rates.FirstDependent)
		dependents--
	}
	return credit.Add(rates.Dependent.Mul(decimal.NewFromInt(int64(dependents))))
}

// ApplyMedicalCredit reduces paye by credit without taking it below zero.
// It returns the PAYE payable and the portion of the credit actually used.
func ApplyMedicalCredit(paye, credit decimal.Decimal) (payable, applied decimal.Decimal) {
	applied = money.Min(money.NonNegative(credit), money.NonNegative(paye))
	return paye.Sub(applied), applied
}
