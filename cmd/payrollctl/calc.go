package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/logger"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/taxtable"
	payrollService "github.com/cmlabs-hris/practice-payroll/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type calcOutput struct {
	TaxYear       int             `json:"tax_year"`
	Period        string          `json:"period"`
	Gross         string          `json:"gross"`
	Taxable       string          `json:"taxable_income"`
	PAYE          string          `json:"paye"`
	MedicalCredit string          `json:"medical_credit"`
	EmployeeUIF   string          `json:"employee_uif"`
	EmployerUIF   string          `json:"employer_uif"`
	SDL           string          `json:"sdl"`
	Retirement    string          `json:"retirement"`
	MedicalAid    string          `json:"medical_aid"`
	Garnishees    string          `json:"garnishees"`
	Net           string          `json:"net"`
	Breakdown     audit.Breakdown `json:"breakdown"`
}

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute one payroll entry offline",
		Long: `Compute a single employee's payroll entry for a month without a database
and print the amounts with the full calculation breakdown as JSON.`,
		Example: `  # Salary 30 000 with a 10 000 bonus and a 500 garnishee in June 2025
  payrollctl calc --month 6 --year 2025 --salary 30000 --dob 1985-06-15 \
    --addition bonus=10000 --garnishee 500`,
		RunE: runCalc,
	}

	cmd.Flags().String("tables", "configs/tax_tables.yaml", "Tax table file")
	cmd.Flags().Int("month", 0, "Period month, 1-12 (required)")
	cmd.Flags().Int("year", 0, "Period year (required)")
	cmd.Flags().String("salary", "", "Monthly base salary (required)")
	cmd.Flags().String("dob", "", "Date of birth, YYYY-MM-DD (required)")
	cmd.Flags().StringArray("addition", nil, "Irregular payment as category=amount, repeatable, taxed in order")
	cmd.Flags().String("fringe", "0", "Monthly taxable value of fringe benefits")
	cmd.Flags().String("retirement", "0", "Monthly retirement contribution")
	cmd.Flags().String("medical-aid", "0", "Monthly medical aid contribution; a positive amount enables the medical credit")
	cmd.Flags().Int("dependents", 0, "Medical aid dependents excluding the main member")
	cmd.Flags().String("garnishee", "0", "Monthly garnishee order amount")
	cmd.Flags().String("ytd-irregular", "0", "Irregular income already paid this tax year")
	cmd.Flags().Bool("sdl-exempt", false, "Employer is below the SDL threshold")
	cmd.Flags().String("order", "", "Deduction order, e.g. retirement,medical_aid,garnishee")
	for _, name := range []string{"month", "year", "salary", "dob"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runCalc(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("calc")
	flags := cmd.Flags()

	tablesPath, _ := flags.GetString("tables")
	month, _ := flags.GetInt("month")
	year, _ := flags.GetInt("year")
	dependents, _ := flags.GetInt("dependents")
	sdlExempt, _ := flags.GetBool("sdl-exempt")
	orderFlag, _ := flags.GetString("order")
	additionFlags, _ := flags.GetStringArray("addition")

	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if dependents < 0 {
		return fmt.Errorf("dependents must not be negative")
	}

	dobFlag, _ := flags.GetString("dob")
	dob, err := time.Parse("2006-01-02", dobFlag)
	if err != nil {
		return fmt.Errorf("invalid --dob: %w", err)
	}

	amounts := map[string]decimal.Decimal{}
	for _, name := range []string{"salary", "fringe", "retirement", "medical-aid", "garnishee", "ytd-irregular"} {
		raw, _ := flags.GetString(name)
		amount, err := parseAmount(name, raw)
		if err != nil {
			return err
		}
		amounts[name] = amount
	}

	additions, err := parseAdditions(additionFlags)
	if err != nil {
		return err
	}

	order, err := payrollService.ParseDeductionOrder(orderFlag)
	if err != nil {
		return fmt.Errorf("invalid --order: %w", err)
	}

	tables, err := taxtable.LoadRegistry(tablesPath)
	if err != nil {
		return err
	}
	periodEnd := statutory.PeriodEnd(month, year)
	table, err := tables.ForDate(periodEnd)
	if err != nil {
		return err
	}

	profile := employee.CompensationProfile{
		ID:                     "offline",
		DOB:                    dob,
		BaseSalary:             amounts["salary"],
		RetirementContribution: amounts["retirement"],
		MedicalAidContribution: amounts["medical-aid"],
		MedicalAidDependents:   dependents,
		HasMedicalAid:          amounts["medical-aid"].IsPositive(),
		Active:                 true,
	}

	input := payrollService.EntryInput{
		Table:              table,
		Profile:            profile,
		PeriodEnd:          periodEnd,
		Additions:          additions,
		YTDIrregularBefore: amounts["ytd-irregular"],
		SDLExempt:          sdlExempt,
	}
	if fringe := amounts["fringe"]; fringe.IsPositive() {
		input.FringeBenefits = []employee.FringeBenefit{{
			ID:                  "fringe",
			Category:            employee.BenefitOther,
			Description:         "Fringe benefits",
			MonthlyTaxableValue: fringe,
			EffectiveFrom:       table.Start,
		}}
	}
	if garnishee := amounts["garnishee"]; garnishee.IsPositive() {
		input.Garnishees = []employee.GarnisheeDeduction{{
			ID:        "garnishee",
			Reference: "offline",
			Amount:    garnishee,
			Active:    true,
		}}
	}

	result, err := payrollService.NewCalculator(order).Calculate(input)
	if err != nil {
		return err
	}

	e := result.Entry
	log.Info().
		Int("tax_year", table.ID).
		Str("gross", money.Format(e.Gross)).
		Str("paye", money.Format(e.PAYE)).
		Str("net", money.Format(e.Net)).
		Msg("Entry calculated")

	out := calcOutput{
		TaxYear:       table.ID,
		Period:        fmt.Sprintf("%04d-%02d", year, month),
		Gross:         money.Format(e.Gross),
		Taxable:       money.Format(e.TaxableIncome),
		PAYE:          money.Format(e.PAYE),
		MedicalCredit: money.Format(e.MedicalCredit),
		EmployeeUIF:   money.Format(e.EmployeeUIF),
		EmployerUIF:   money.Format(e.EmployerUIF),
		SDL:           money.Format(e.SDL),
		Retirement:    money.Format(e.Retirement),
		MedicalAid:    money.Format(e.MedicalAid),
		Garnishees:    money.Format(e.Garnishees),
		Net:           money.Format(e.Net),
		Breakdown:     result.Breakdown,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s must not be negative", name)
	}
	return amount, nil
}

func parseAdditions(values []string) ([]payroll.Addition, error) {
	additions := make([]payroll.Addition, 0, len(values))
	for i, v := range values {
		category, raw, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --addition %q, want category=amount", v)
		}
		amount, err := parseAmount("addition", raw)
		if err != nil {
			return nil, err
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("--addition %q must be positive", v)
		}
		kind := payroll.AdditionCategory(strings.TrimSpace(category))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown addition category %q", category)
		}
		additions = append(additions, payroll.Addition{
			Category: kind,
			Amount:   amount,
			Source:   payroll.AdditionSourceManual,
			Sequence: i + 1,
		})
	}
	return additions, nil
}
