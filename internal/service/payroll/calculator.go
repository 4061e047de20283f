package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	statutorycalc "github.com/cmlabs-hris/practice-payroll/internal/service/statutory"
	"github.com/shopspring/decimal"
)

// DeductionKind names an employee-side deduction taken after PAYE and UIF.
type DeductionKind string

const (
	DeductionRetirement DeductionKind = "retirement"
	DeductionMedicalAid DeductionKind = "medical_aid"
	DeductionGarnishee  DeductionKind = "garnishee"
)

// DefaultDeductionOrder is used when no order is configured.
var DefaultDeductionOrder = []DeductionKind{DeductionRetirement, DeductionMedicalAid, DeductionGarnishee}

// ParseDeductionOrder reads a comma separated order such as
// "retirement,medical_aid,garnishee". Every kind must appear exactly once.
func ParseDeductionOrder(s string) ([]DeductionKind, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultDeductionOrder, nil
	}

	known := map[DeductionKind]bool{}
	for _, k := range DefaultDeductionOrder {
		known[k] = true
	}

	seen := map[DeductionKind]bool{}
	order := make([]DeductionKind, 0, len(DefaultDeductionOrder))
	for _, part := range strings.Split(s, ",") {
		kind := DeductionKind(strings.TrimSpace(part))
		if !known[kind] {
			return nil, fmt.Errorf("unknown deduction %q", kind)
		}
		if seen[kind] {
			return nil, fmt.Errorf("deduction %q listed twice", kind)
		}
		seen[kind] = true
		order = append(order, kind)
	}
	if len(order) != len(DefaultDeductionOrder) {
		return nil, fmt.Errorf("deduction order must list %d deductions, got %d", len(DefaultDeductionOrder), len(order))
	}
	return order, nil
}

// EntryInput is everything needed to compute one employee's pay for a period.
// Additions must be in recorded order.
type EntryInput struct {
	Table              statutory.TaxYear
	Profile            employee.CompensationProfile
	PeriodEnd          time.Time
	Additions          []payroll.Addition
	FringeBenefits     []employee.FringeBenefit
	Garnishees         []employee.GarnisheeDeduction
	YTDIrregularBefore decimal.Decimal
	SDLExempt          bool
}

// EntryResult is a calculated entry, rounded to cents, and the breakdown
// that produced it. The entry carries no IDs yet.
type EntryResult struct {
	Entry     payroll.Entry
	Breakdown audit.Breakdown
}

// Calculator computes payroll entries. It holds no state between calls.
type Calculator struct {
	order []DeductionKind
}

func NewCalculator(order []DeductionKind) *Calculator {
	if len(order) == 0 {
		order = DefaultDeductionOrder
	}
	return &Calculator{order: order}
}

func (c *Calculator) Calculate(in EntryInput) (EntryResult, error) {
	table := in.Table
	profile := in.Profile
	age := statutory.AgeAt(profile.DOB, table.End)

	b := audit.Breakdown{
		TaxYear:            table.ID,
		PeriodEnd:          in.PeriodEnd,
		Age:                age,
		BaseSalary:         profile.BaseSalary,
		YTDIrregularBefore: in.YTDIrregularBefore,
		Additions:          make([]audit.AdditionLine, 0, len(in.Additions)),
		Deductions:         make([]audit.DeductionLine, 0, len(c.order)),
	}

	b.FringeTotal, b.FringeBenefits = SumActiveFringeBenefits(in.FringeBenefits, in.PeriodEnd)

	// Regular PAYE: the monthly share of the annual liability on regular
	// income, which includes fringe benefits.
	b.RegularMonthlyTaxable = profile.BaseSalary.Add(b.FringeTotal)
	regular, err := statutorycalc.ResolveAnnualTax(table, money.Annual(b.RegularMonthlyTaxable), age)
	if err != nil {
		return EntryResult{}, err
	}
	b.RegularTax = regular
	b.RegularPAYE = money.Monthly(regular.Liability)

	// Each addition is taxed on top of the irregular income before it.
	b.AdditionsTotal = decimal.Zero
	b.IrregularPAYE = decimal.Zero
	running := in.YTDIrregularBefore
	for _, a := range in.Additions {
		ann, err := statutorycalc.AnnualiseIrregular(table, b.RegularMonthlyTaxable, running, a.Amount, age)
		if err != nil {
			return EntryResult{}, err
		}
		b.Additions = append(b.Additions, audit.AdditionLine{
			Category:      string(a.Category),
			Source:        string(a.Source),
			Amount:        a.Amount,
			Annualisation: ann,
		})
		b.AdditionsTotal = b.AdditionsTotal.Add(a.Amount)
		b.IrregularPAYE = b.IrregularPAYE.Add(ann.IncrementalTax)
		running = running.Add(a.Amount)
	}

	b.CashGross = profile.BaseSalary.Add(b.AdditionsTotal)
	b.TaxableIncome = b.CashGross.Add(b.FringeTotal)
	b.PAYEBeforeCredit = b.RegularPAYE.Add(b.IrregularPAYE)

	b.MedicalCredit = decimal.Zero
	if profile.HasMedicalAid {
		b.MedicalDependents = profile.MedicalAidDependents
		b.MedicalCredit = statutorycalc.MonthlyMedicalCredit(table.MedicalCredit, profile.MedicalAidDependents)
	}
	b.PAYE, b.MedicalCreditApplied = statutorycalc.ApplyMedicalCredit(b.PAYEBeforeCredit, b.MedicalCredit)

	b.Contributions = statutorycalc.ComputeContributions(table, b.CashGross, in.SDLExempt)

	entry := payroll.Entry{
		EmployeeID:     profile.ID,
		PracticeID:     profile.PracticeID,
		TaxYear:        table.ID,
		BaseSalary:     money.Round(profile.BaseSalary),
		AdditionsTotal: money.Round(b.AdditionsTotal),
		Irregular:      money.Round(b.AdditionsTotal),
		Gross:          money.Round(b.CashGross),
		FringeBenefits: money.Round(b.FringeTotal),
		TaxableIncome:  money.Round(b.TaxableIncome),
		PAYE:           money.Round(b.PAYE),
		MedicalCredit:  money.Round(b.MedicalCreditApplied),
		EmployeeUIF:    money.Round(b.Contributions.EmployeeUIF),
		EmployerUIF:    money.Round(b.Contributions.EmployerUIF),
		SDL:            money.Round(b.Contributions.SDL),
	}

	// Deductions below are taken from the rounded figures so that net is
	// exactly gross less the persisted deductions.
	garnisheeTotal, garnisheeLines := SumActiveGarnishees(in.Garnishees)
	b.Garnishees = garnisheeLines
	b.GarnisheeTotal = garnisheeTotal

	amounts := map[DeductionKind]decimal.Decimal{
		DeductionRetirement: money.Round(profile.RetirementContribution),
		DeductionMedicalAid: money.Round(profile.MedicalAidContribution),
		DeductionGarnishee:  money.Round(garnisheeTotal),
	}
	entry.Retirement = amounts[DeductionRetirement]
	entry.MedicalAid = amounts[DeductionMedicalAid]
	entry.Garnishees = amounts[DeductionGarnishee]

	b.DisposableIncome = entry.Gross.Sub(entry.PAYE).Sub(entry.EmployeeUIF)
	remaining := b.DisposableIncome
	for _, kind := range c.order {
		amount := amounts[kind]
		if amount.IsZero() {
			continue
		}
		shortfall := money.NonNegative(amount.Sub(money.NonNegative(remaining)))
		if shortfall.IsPositive() {
			b.Warnings = append(b.Warnings, fmt.Sprintf("%s of %s exceeds remaining pay by %s", kind, money.Format(amount), money.Format(shortfall)))
		}
		b.Deductions = append(b.Deductions, audit.DeductionLine{
			Name:      string(kind),
			Amount:    amount,
			Shortfall: shortfall,
		})
		remaining = remaining.Sub(amount)
	}

	entry.Net = remaining
	b.Net = remaining
	if remaining.IsNegative() {
		b.Warnings = append(b.Warnings, fmt.Sprintf("net pay is negative: %s", money.Format(remaining)))
	}

	return EntryResult{Entry: entry, Breakdown: b}, nil
}
