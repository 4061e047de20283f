package export

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/export"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/money"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/gocarina/gocsv"
)

type ExportServiceImpl struct {
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	ledgerRepo   ledger.LedgerRepository
}

func NewExportService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	ledgerRepo ledger.LedgerRepository,
) export.ExportService {
	return &ExportServiceImpl{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		ledgerRepo:   ledgerRepo,
	}
}

func getPracticeID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	practiceID, ok := claims["practice_id"].(string)
	if !ok || practiceID == "" {
		return "", export.ErrClaimsMissing
	}
	return practiceID, nil
}

// ========== RUN EXPORTS ==========

// BankPayments lists one payment per entry with positive net pay. Every paid
// employee must have complete bank details or no file is produced.
func (s *ExportServiceImpl) BankPayments(ctx context.Context, runID string) (export.Document, error) {
	practiceID, run, entries, err := s.loadRun(ctx, runID)
	if err != nil {
		return export.Document{}, err
	}

	reference := fmt.Sprintf("SALARY %s", period(run))
	rows := make([]export.BankPaymentRow, 0, len(entries))
	var errs validator.ValidationErrors
	for _, e := range entries {
		if !e.Net.IsPositive() {
			continue
		}

		profile, err := s.employeeRepo.GetProfile(ctx, e.EmployeeID, practiceID)
		if err != nil {
			return export.Document{}, fmt.Errorf("failed to load employee %s: %w", e.EmployeeID, err)
		}

		field := "employees." + profile.EmployeeCode + "."
		if validator.IsEmpty(profile.BankName) {
			errs = append(errs, validator.ValidationError{Field: field + "bank_name", Message: "is required for a bank payment"})
		}
		switch {
		case validator.IsEmpty(profile.BankAccountNumber):
			errs = append(errs, validator.ValidationError{Field: field + "bank_account_number", Message: "is required for a bank payment"})
		case !validator.IsValidBankAccountNumber(profile.BankAccountNumber):
			errs = append(errs, validator.ValidationError{Field: field + "bank_account_number", Message: "must be 6 to 16 digits"})
		}
		switch {
		case validator.IsEmpty(profile.BankBranchCode):
			errs = append(errs, validator.ValidationError{Field: field + "bank_branch_code", Message: "is required for a bank payment"})
		case !validator.IsValidBranchCode(profile.BankBranchCode):
			errs = append(errs, validator.ValidationError{Field: field + "bank_branch_code", Message: "must be 6 digits"})
		}
		if len(errs) > 0 {
			continue
		}

		rows = append(rows, export.BankPaymentRow{
			EmployeeCode:  profile.EmployeeCode,
			EmployeeName:  profile.FullName,
			AccountHolder: profile.AccountHolder(),
			BankName:      profile.BankName,
			AccountNumber: profile.BankAccountNumber,
			BranchCode:    profile.BankBranchCode,
			Amount:        money.Format(e.Net),
			Reference:     reference,
		})
	}
	if len(errs) > 0 {
		return export.Document{}, errs
	}
	if len(rows) == 0 {
		return export.Document{}, export.ErrNothingToExport
	}

	return csvDocument(filename(run, "bank-payments"), &rows)
}

// Accountant breaks every entry down into its deduction and employer cost lines.
func (s *ExportServiceImpl) Accountant(ctx context.Context, runID string) (export.Document, error) {
	_, run, entries, err := s.loadRun(ctx, runID)
	if err != nil {
		return export.Document{}, err
	}

	rows := make([]export.AccountantRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, export.AccountantRow{
			RunStatus:      string(run.Status),
			Period:         period(run),
			EmployeeCode:   deref(e.EmployeeCode),
			EmployeeName:   deref(e.EmployeeName),
			BaseSalary:     money.Format(e.BaseSalary),
			Additions:      money.Format(e.AdditionsTotal),
			Gross:          money.Format(e.Gross),
			FringeBenefits: money.Format(e.FringeBenefits),
			TaxableIncome:  money.Format(e.TaxableIncome),
			PAYE:           money.Format(e.PAYE),
			MedicalCredit:  money.Format(e.MedicalCredit),
			EmployeeUIF:    money.Format(e.EmployeeUIF),
			Retirement:     money.Format(e.Retirement),
			MedicalAid:     money.Format(e.MedicalAid),
			Garnishees:     money.Format(e.Garnishees),
			Net:            money.Format(e.Net),
			EmployerUIF:    money.Format(e.EmployerUIF),
			SDL:            money.Format(e.SDL),
			EmployerCost:   money.Format(money.Sum(e.Gross, e.EmployerUIF, e.SDL)),
		})
	}

	return csvDocument(filename(run, "accountant"), &rows)
}

// MonthlyDeclaration totals the amounts due to the revenue service for one month.
func (s *ExportServiceImpl) MonthlyDeclaration(ctx context.Context, month, year int) (export.Document, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return export.Document{}, err
	}

	run, err := s.payrollRepo.GetRunByPeriod(ctx, practiceID, month, year)
	if err != nil {
		return export.Document{}, err
	}

	t := run.Totals
	uif := t.EmployeeUIF.Add(t.EmployerUIF)
	rows := []export.DeclarationRow{{
		Period:        period(run),
		TaxYear:       run.TaxYear,
		RunStatus:     string(run.Status),
		EmployeeCount: t.EmployeeCount,
		PAYE:          money.Format(t.PAYE),
		EmployeeUIF:   money.Format(t.EmployeeUIF),
		EmployerUIF:   money.Format(t.EmployerUIF),
		UIF:           money.Format(uif),
		SDL:           money.Format(t.SDL),
		TotalDue:      money.Format(money.Sum(t.PAYE, uif, t.SDL)),
	}}

	return csvDocument(filename(run, "declaration"), &rows)
}

// ========== TAX YEAR EXPORTS ==========

// AnnualReconciliation lists every employee's paid YTD figures followed by a
// practice TOTAL row.
func (s *ExportServiceImpl) AnnualReconciliation(ctx context.Context, taxYear int) (export.Document, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return export.Document{}, err
	}

	ytd, err := s.ledgerRepo.ListByPractice(ctx, practiceID, taxYear)
	if err != nil {
		return export.Document{}, err
	}

	total := ledger.EmployeeYTD{}
	rows := make([]export.ReconciliationRow, 0, len(ytd)+1)
	for _, y := range ytd {
		total = total.Apply(ledger.Posting{
			Gross:       y.Gross,
			Taxable:     y.Taxable,
			PAYE:        y.PAYE,
			EmployeeUIF: y.EmployeeUIF,
			EmployerUIF: y.EmployerUIF,
			SDL:         y.SDL,
			Retirement:  y.Retirement,
			MedicalAid:  y.MedicalAid,
		})
		rows = append(rows, reconciliationRow(deref(y.EmployeeCode), deref(y.EmployeeName), deref(y.TaxReferenceNumber), y))
	}
	rows = append(rows, reconciliationRow("TOTAL", "", "", total))

	return csvDocument(fmt.Sprintf("reconciliation-%d.csv", taxYear), &rows)
}

func reconciliationRow(code, name, taxRef string, y ledger.EmployeeYTD) export.ReconciliationRow {
	return export.ReconciliationRow{
		EmployeeCode:       code,
		EmployeeName:       name,
		TaxReferenceNumber: taxRef,
		Gross:              money.Format(y.Gross),
		Taxable:            money.Format(y.Taxable),
		PAYE:               money.Format(y.PAYE),
		EmployeeUIF:        money.Format(y.EmployeeUIF),
		EmployerUIF:        money.Format(y.EmployerUIF),
		SDL:                money.Format(y.SDL),
		Retirement:         money.Format(y.Retirement),
		MedicalAid:         money.Format(y.MedicalAid),
	}
}

// IndividualCertificate is the employee-facing summary of one tax year.
func (s *ExportServiceImpl) IndividualCertificate(ctx context.Context, employeeID string, taxYear int, format export.Format) (export.Document, error) {
	if format != export.FormatCSV && format != export.FormatPDF {
		return export.Document{}, export.ErrUnknownFormat
	}

	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return export.Document{}, err
	}

	profile, err := s.employeeRepo.GetProfile(ctx, employeeID, practiceID)
	if err != nil {
		return export.Document{}, err
	}

	ytd, err := s.ledgerRepo.Get(ctx, employeeID, practiceID, taxYear)
	if err != nil {
		return export.Document{}, err
	}

	row := export.CertificateRow{
		TaxYear:            taxYear,
		EmployeeCode:       profile.EmployeeCode,
		EmployeeName:       profile.FullName,
		TaxReferenceNumber: profile.TaxReferenceNumber,
		GrossRemuneration:  money.Format(ytd.Gross),
		TaxableIncome:      money.Format(ytd.Taxable),
		FringeBenefits:     money.Format(ytd.FringeBenefits),
		PAYE:               money.Format(ytd.PAYE),
		UIF:                money.Format(ytd.EmployeeUIF),
		Retirement:         money.Format(ytd.Retirement),
		MedicalAid:         money.Format(ytd.MedicalAid),
		MedicalTaxCredits:  money.Format(ytd.MedicalCredits),
	}

	name := fmt.Sprintf("certificate-%s-%d", profile.EmployeeCode, taxYear)
	if format == export.FormatPDF {
		body, err := renderCertificatePDF(row)
		if err != nil {
			return export.Document{}, err
		}
		return export.Document{Filename: name + ".pdf", ContentType: export.ContentTypePDF, Body: body}, nil
	}

	rows := []export.CertificateRow{row}
	return csvDocument(name+".csv", &rows)
}

// ========== HELPERS ==========

func (s *ExportServiceImpl) loadRun(ctx context.Context, runID string) (string, payroll.Run, []payroll.Entry, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return "", payroll.Run{}, nil, err
	}

	run, err := s.payrollRepo.GetRun(ctx, runID, practiceID)
	if err != nil {
		return "", payroll.Run{}, nil, err
	}

	entries, err := s.payrollRepo.ListEntries(ctx, run.ID, practiceID)
	if err != nil {
		return "", payroll.Run{}, nil, err
	}
	return practiceID, run, entries, nil
}

func csvDocument(name string, rows interface{}) (export.Document, error) {
	body, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return export.Document{}, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return export.Document{Filename: name, ContentType: export.ContentTypeCSV, Body: body}, nil
}

func period(run payroll.Run) string {
	return fmt.Sprintf("%04d-%02d", run.PeriodYear, run.PeriodMonth)
}

// filename marks exports of unpaid runs, whose figures may still change.
func filename(run payroll.Run, kind string) string {
	name := fmt.Sprintf("%s-%s.csv", kind, period(run))
	if run.Status != payroll.RunStatusPaid {
		name = string(run.Status) + "-" + name
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
