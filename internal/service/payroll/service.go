package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
	statutorycalc "github.com/cmlabs-hris/practice-payroll/internal/service/statutory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	ledgerRepo   ledger.LedgerRepository
	auditRepo    audit.Repository
	tables       statutory.TableProvider
	calculator   *Calculator
	now          func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	ledgerRepo ledger.LedgerRepository,
	auditRepo audit.Repository,
	tables statutory.TableProvider,
	calculator *Calculator,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		ledgerRepo:   ledgerRepo,
		auditRepo:    auditRepo,
		tables:       tables,
		calculator:   calculator,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// getPracticeID reads the practice the caller acts for from the JWT claims.
func getPracticeID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	practiceID, ok := claims["practice_id"].(string)
	if !ok || practiceID == "" {
		return "", payroll.ErrClaimsMissing
	}
	return practiceID, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) RecalculateRun(ctx context.Context, req payroll.RecalculateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	table, err := s.tables.ForDate(statutory.PeriodEnd(req.PeriodMonth, req.PeriodYear))
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var (
		run     payroll.Run
		entries []payroll.Entry
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, err := s.payrollRepo.LockRunForPeriod(txCtx, practiceID, req.PeriodMonth, req.PeriodYear, table.ID)
		if err != nil {
			return err
		}
		if err := locked.RequireEditable("recalculate"); err != nil {
			return err
		}

		run, entries, err = s.recalculate(txCtx, locked, table)
		return err
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	slog.InfoContext(ctx, "payroll run recalculated",
		"run_id", run.ID,
		"practice_id", practiceID,
		"period", fmt.Sprintf("%04d-%02d", run.PeriodYear, run.PeriodMonth),
		"entries", len(entries),
		"net", run.Totals.Net.String(),
	)

	return payroll.NewRunResponse(run, entries), nil
}

func (s *PayrollServiceImpl) TransitionRun(ctx context.Context, req payroll.TransitionRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	target := payroll.RunStatus(req.Status)

	var (
		run     payroll.Run
		entries []payroll.Entry
		from    payroll.RunStatus
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.payrollRepo.LockRun(txCtx, req.RunID, practiceID)
		if err != nil {
			return err
		}
		from = current.Status
		if err := current.Status.Transition(current.ID, target); err != nil {
			return err
		}

		run, err = s.payrollRepo.CompareAndSetStatus(txCtx, current.ID, practiceID, current.Status, target, s.now())
		if err != nil {
			return err
		}

		entries, err = s.payrollRepo.ListEntries(txCtx, run.ID, practiceID)
		if err != nil {
			return err
		}

		if target == payroll.RunStatusPaid {
			if err := s.ledgerRepo.Post(txCtx, postingsFor(run, entries)); err != nil {
				return fmt.Errorf("failed to post run %s to YTD ledger: %w", run.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	slog.InfoContext(ctx, "payroll run transitioned",
		"run_id", run.ID,
		"practice_id", practiceID,
		"from", string(from),
		"to", string(run.Status),
	)

	return payroll.NewRunResponse(run, entries), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.payrollRepo.GetRun(ctx, id, practiceID)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	entries, err := s.payrollRepo.ListEntries(ctx, run.ID, practiceID)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.NewRunResponse(run, entries), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListRunResponse{}, err
	}

	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	runs, total, err := s.payrollRepo.ListRuns(ctx, practiceID, filter)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	data := make([]payroll.RunResponse, 0, len(runs))
	for _, r := range runs {
		data = append(data, payroll.NewRunResponse(r, nil))
	}

	return payroll.ListRunResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== ADDITIONS ==========

func (s *PayrollServiceImpl) AddAddition(ctx context.Context, req payroll.CreateAdditionRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var (
		run     payroll.Run
		entries []payroll.Entry
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, table, err := s.lockEditable(txCtx, req.RunID, practiceID, "add addition")
		if err != nil {
			return err
		}

		entry, err := s.payrollRepo.GetEntry(txCtx, req.EntryID, locked.ID)
		if err != nil {
			return err
		}

		existing, err := s.payrollRepo.ListAdditions(txCtx, locked.ID)
		if err != nil {
			return err
		}
		sequence := 1
		for _, a := range existing {
			if a.EmployeeID == entry.EmployeeID && a.Sequence >= sequence {
				sequence = a.Sequence + 1
			}
		}

		if _, err := s.payrollRepo.CreateAddition(txCtx, payroll.Addition{
			EntryID:     entry.ID,
			RunID:       locked.ID,
			EmployeeID:  entry.EmployeeID,
			Category:    payroll.AdditionCategory(req.Category),
			Amount:      req.Amount,
			Description: req.Description,
			Source:      payroll.AdditionSourceManual,
			Sequence:    sequence,
		}); err != nil {
			return err
		}

		run, entries, err = s.recalculate(txCtx, locked, table)
		return err
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.NewRunResponse(run, entries), nil
}

func (s *PayrollServiceImpl) DeleteAddition(ctx context.Context, req payroll.DeleteAdditionRequest) (payroll.RunResponse, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	var (
		run     payroll.Run
		entries []payroll.Entry
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, table, err := s.lockEditable(txCtx, req.RunID, practiceID, "delete addition")
		if err != nil {
			return err
		}

		addition, err := s.payrollRepo.GetAddition(txCtx, req.AdditionID, locked.ID)
		if err != nil {
			return err
		}
		if addition.Source == payroll.AdditionSourceAuto {
			return payroll.ErrAutoAdditionLocked
		}
		if err := s.payrollRepo.DeleteAddition(txCtx, addition.ID, locked.ID); err != nil {
			return err
		}

		run, entries, err = s.recalculate(txCtx, locked, table)
		return err
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	return payroll.NewRunResponse(run, entries), nil
}

// ========== AUDIT ==========

func (s *PayrollServiceImpl) GetRunAudit(ctx context.Context, id string) ([]audit.CalculationRecordResponse, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return nil, err
	}

	run, err := s.payrollRepo.GetRun(ctx, id, practiceID)
	if err != nil {
		return nil, err
	}

	records, err := s.auditRepo.ListByRun(ctx, run.ID, practiceID)
	if err != nil {
		return nil, err
	}
	return audit.NewCalculationRecordResponses(records), nil
}

// ========== EMPLOYEE HISTORY ==========

func (s *PayrollServiceImpl) GetEmployeeAudit(ctx context.Context, employeeID string, taxYear int) ([]audit.CalculationRecordResponse, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.employeeRepo.GetProfile(ctx, employeeID, practiceID); err != nil {
		return nil, err
	}

	records, err := s.auditRepo.ListByEmployee(ctx, employeeID, practiceID, taxYear)
	if err != nil {
		return nil, err
	}
	return audit.NewCalculationRecordResponses(records), nil
}

func (s *PayrollServiceImpl) GetEmployeeYTD(ctx context.Context, employeeID string, taxYear int) (ledger.YTDResponse, error) {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return ledger.YTDResponse{}, err
	}

	ytd, err := s.ledgerRepo.Get(ctx, employeeID, practiceID, taxYear)
	if err != nil {
		return ledger.YTDResponse{}, err
	}
	return ledger.NewYTDResponse(ytd), nil
}

// ========== HELPERS ==========

// lockEditable locks a draft run and loads its tax table.
func (s *PayrollServiceImpl) lockEditable(ctx context.Context, runID, practiceID, op string) (payroll.Run, statutory.TaxYear, error) {
	run, err := s.payrollRepo.LockRun(ctx, runID, practiceID)
	if err != nil {
		return payroll.Run{}, statutory.TaxYear{}, err
	}
	if err := run.RequireEditable(op); err != nil {
		return payroll.Run{}, statutory.TaxYear{}, err
	}

	table, err := s.tables.ForYear(run.TaxYear)
	if err != nil {
		return payroll.Run{}, statutory.TaxYear{}, err
	}
	return run, table, nil
}

// recalculate replaces every entry of a locked draft run. Manual additions
// are carried over to the regenerated entries in their recorded order; auto
// additions are derived again. Any error aborts the whole run.
func (s *PayrollServiceImpl) recalculate(ctx context.Context, run payroll.Run, table statutory.TaxYear) (payroll.Run, []payroll.Entry, error) {
	periodEnd := statutory.PeriodEnd(run.PeriodMonth, run.PeriodYear)

	profiles, err := s.employeeRepo.ListActiveProfiles(ctx, run.PracticeID)
	if err != nil {
		return payroll.Run{}, nil, err
	}

	employeeIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		employeeIDs = append(employeeIDs, p.ID)
	}

	benefits, err := s.employeeRepo.ListFringeBenefits(ctx, employeeIDs)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	benefitsByEmployee := make(map[string][]employee.FringeBenefit)
	for _, b := range benefits {
		benefitsByEmployee[b.EmployeeID] = append(benefitsByEmployee[b.EmployeeID], b)
	}

	garnishees, err := s.employeeRepo.ListGarnishees(ctx, employeeIDs, true)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	garnisheesByEmployee := make(map[string][]employee.GarnisheeDeduction)
	for _, g := range garnishees {
		garnisheesByEmployee[g.EmployeeID] = append(garnisheesByEmployee[g.EmployeeID], g)
	}

	existing, err := s.payrollRepo.ListAdditions(ctx, run.ID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	manualByEmployee := make(map[string][]payroll.Addition)
	for _, a := range existing {
		if a.Source == payroll.AdditionSourceManual {
			manualByEmployee[a.EmployeeID] = append(manualByEmployee[a.EmployeeID], a)
		}
	}

	ytd, err := s.ledgerRepo.ListByPractice(ctx, run.PracticeID, table.ID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	irregularBefore := make(map[string]decimal.Decimal, len(ytd))
	for _, y := range ytd {
		irregularBefore[y.EmployeeID] = y.Irregular
	}
	// Processed runs are not posted to the ledger until paid.
	processed, err := s.payrollRepo.ProcessedIrregular(ctx, run.PracticeID, table.ID, run.PeriodMonth, run.PeriodYear)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	for employeeID, amount := range processed {
		irregularBefore[employeeID] = irregularBefore[employeeID].Add(amount)
	}

	additionsByEmployee := make(map[string][]payroll.Addition, len(profiles))
	runGross := decimal.Zero
	for _, p := range profiles {
		additions := runAdditions(p, run, manualByEmployee[p.ID])
		additionsByEmployee[p.ID] = additions
		runGross = runGross.Add(p.BaseSalary)
		for _, a := range additions {
			runGross = runGross.Add(a.Amount)
		}
	}

	paidGross, err := s.ledgerRepo.PracticeGross(ctx, run.PracticeID, table.ID)
	if err != nil {
		return payroll.Run{}, nil, err
	}
	projected := paidGross.Add(runGross.Mul(decimal.NewFromInt(int64(table.MonthsRemaining(periodEnd)))))
	sdlExempt := statutorycalc.SDLExempt(table, projected)

	if err := s.payrollRepo.DeleteEntries(ctx, run.ID); err != nil {
		return payroll.Run{}, nil, err
	}

	calculatedAt := s.now()
	entries := make([]payroll.Entry, 0, len(profiles))
	records := make([]audit.CalculationRecord, 0, len(profiles))
	for _, p := range profiles {
		additions := additionsByEmployee[p.ID]
		result, err := s.calculator.Calculate(EntryInput{
			Table:              table,
			Profile:            p,
			PeriodEnd:          periodEnd,
			Additions:          additions,
			FringeBenefits:     benefitsByEmployee[p.ID],
			Garnishees:         garnisheesByEmployee[p.ID],
			YTDIrregularBefore: irregularBefore[p.ID],
			SDLExempt:          sdlExempt,
		})
		if err != nil {
			return payroll.Run{}, nil, fmt.Errorf("employee %s: %w", p.ID, err)
		}

		entry := result.Entry
		entry.RunID = run.ID
		entry.CalculatedAt = calculatedAt
		created, err := s.payrollRepo.CreateEntry(ctx, entry)
		if err != nil {
			return payroll.Run{}, nil, err
		}
		created.EmployeeName = &p.FullName
		created.EmployeeCode = &p.EmployeeCode

		created.Additions = make([]payroll.Addition, 0, len(additions))
		for _, a := range additions {
			a.ID = ""
			a.EntryID = created.ID
			a.RunID = run.ID
			saved, err := s.payrollRepo.CreateAddition(ctx, a)
			if err != nil {
				return payroll.Run{}, nil, err
			}
			created.Additions = append(created.Additions, saved)
		}

		entries = append(entries, created)
		records = append(records, audit.CalculationRecord{
			PracticeID:   run.PracticeID,
			RunID:        run.ID,
			EntryID:      created.ID,
			EmployeeID:   p.ID,
			TaxYear:      table.ID,
			RunStatus:    string(run.Status),
			CalculatedAt: calculatedAt,
			Breakdown:    result.Breakdown,
		})
	}

	if err := s.auditRepo.Append(ctx, records); err != nil {
		return payroll.Run{}, nil, err
	}

	run.Totals = payroll.SumEntries(entries)
	if err := s.payrollRepo.UpdateRunTotals(ctx, run.ID, run.Totals); err != nil {
		return payroll.Run{}, nil, err
	}
	run.UpdatedAt = calculatedAt

	return run, entries, nil
}

// runAdditions returns the additions an employee's entry carries in this run:
// manual additions in their recorded order followed by auto-derived ones,
// renumbered from one.
func runAdditions(p employee.CompensationProfile, run payroll.Run, manual []payroll.Addition) []payroll.Addition {
	sorted := make([]payroll.Addition, len(manual))
	copy(sorted, manual)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	if p.ThirteenthChequeMonth != nil && *p.ThirteenthChequeMonth == run.PeriodMonth && p.BaseSalary.IsPositive() {
		sorted = append(sorted, payroll.Addition{
			EmployeeID:  p.ID,
			Category:    payroll.AdditionThirteenthCheque,
			Amount:      p.BaseSalary,
			Description: "Thirteenth cheque",
			Source:      payroll.AdditionSourceAuto,
		})
	}

	for i := range sorted {
		sorted[i].Sequence = i + 1
	}
	return sorted
}

func postingsFor(run payroll.Run, entries []payroll.Entry) []ledger.Posting {
	postings := make([]ledger.Posting, 0, len(entries))
	for _, e := range entries {
		postings = append(postings, ledger.Posting{
			EntryID:        e.ID,
			RunID:          run.ID,
			EmployeeID:     e.EmployeeID,
			PracticeID:     run.PracticeID,
			TaxYear:        run.TaxYear,
			Gross:          e.Gross,
			Taxable:        e.TaxableIncome,
			PAYE:           e.PAYE,
			EmployeeUIF:    e.EmployeeUIF,
			EmployerUIF:    e.EmployerUIF,
			SDL:            e.SDL,
			Retirement:     e.Retirement,
			MedicalAid:     e.MedicalAid,
			FringeBenefits: e.FringeBenefits,
			MedicalCredits: e.MedicalCredit,
			Irregular:      e.Irregular,
		})
	}
	return postings
}
