package payroll

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
)

// memState is the whole fake database. It is copied before each transaction
// so that a failed transaction can be rolled back.
type memState struct {
	seq        int
	runs       map[string]payroll.Run
	entries    map[string]payroll.Entry
	additions  map[string]payroll.Addition
	profiles   []employee.CompensationProfile
	benefits   []employee.FringeBenefit
	garnishees []employee.GarnisheeDeduction
	ytd        map[string]ledger.EmployeeYTD
	posted     map[string]bool
	audit      []audit.CalculationRecord
}

func newMemState() *memState {
	return &memState{
		runs:      map[string]payroll.Run{},
		entries:   map[string]payroll.Entry{},
		additions: map[string]payroll.Addition{},
		ytd:       map[string]ledger.EmployeeYTD{},
		posted:    map[string]bool{},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		seq:        s.seq,
		runs:       make(map[string]payroll.Run, len(s.runs)),
		entries:    make(map[string]payroll.Entry, len(s.entries)),
		additions:  make(map[string]payroll.Addition, len(s.additions)),
		profiles:   append([]employee.CompensationProfile(nil), s.profiles...),
		benefits:   append([]employee.FringeBenefit(nil), s.benefits...),
		garnishees: append([]employee.GarnisheeDeduction(nil), s.garnishees...),
		ytd:        make(map[string]ledger.EmployeeYTD, len(s.ytd)),
		posted:     make(map[string]bool, len(s.posted)),
		audit:      append([]audit.CalculationRecord(nil), s.audit...),
	}
	for k, v := range s.runs {
		c.runs[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.additions {
		c.additions[k] = v
	}
	for k, v := range s.ytd {
		c.ytd[k] = v
	}
	for k, v := range s.posted {
		c.posted[k] = v
	}
	return c
}

func (s *memState) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%05d", prefix, s.seq)
}

type memDB struct {
	state *memState
}

func newMemDB() *memDB {
	return &memDB{state: newMemState()}
}

func (m *memDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

// ========== PAYROLL REPOSITORY ==========

type fakePayrollRepo struct{ db *memDB }

func (r fakePayrollRepo) LockRunForPeriod(ctx context.Context, practiceID string, month, year, taxYear int) (payroll.Run, error) {
	if run, err := r.GetRunByPeriod(ctx, practiceID, month, year); err == nil {
		return run, nil
	}
	s := r.db.state
	run := payroll.Run{
		ID:          s.nextID("run"),
		PracticeID:  practiceID,
		PeriodMonth: month,
		PeriodYear:  year,
		TaxYear:     taxYear,
		Status:      payroll.RunStatusDraft,
		Totals:      payroll.SumEntries(nil),
	}
	s.runs[run.ID] = run
	return run, nil
}

func (r fakePayrollRepo) LockRun(ctx context.Context, id, practiceID string) (payroll.Run, error) {
	return r.GetRun(ctx, id, practiceID)
}

func (r fakePayrollRepo) GetRun(_ context.Context, id, practiceID string) (payroll.Run, error) {
	run, ok := r.db.state.runs[id]
	if !ok || run.PracticeID != practiceID {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r fakePayrollRepo) GetRunByPeriod(_ context.Context, practiceID string, month, year int) (payroll.Run, error) {
	for _, run := range r.db.state.runs {
		if run.PracticeID == practiceID && run.PeriodMonth == month && run.PeriodYear == year {
			return run, nil
		}
	}
	return payroll.Run{}, payroll.ErrRunNotFound
}

func (r fakePayrollRepo) ListRuns(_ context.Context, practiceID string, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	var runs []payroll.Run
	for _, run := range r.db.state.runs {
		if run.PracticeID != practiceID {
			continue
		}
		if filter.PeriodYear != nil && run.PeriodYear != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, int64(len(runs)), nil
}

func (r fakePayrollRepo) UpdateRunTotals(_ context.Context, id string, totals payroll.Totals) error {
	run, ok := r.db.state.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Totals = totals
	r.db.state.runs[id] = run
	return nil
}

func (r fakePayrollRepo) CompareAndSetStatus(_ context.Context, id, practiceID string, from, to payroll.RunStatus, at time.Time) (payroll.Run, error) {
	run, ok := r.db.state.runs[id]
	if !ok || run.PracticeID != practiceID {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	if run.Status != from {
		return payroll.Run{}, &payroll.StateConflictError{RunID: id, Op: "transition to " + string(to), Status: run.Status}
	}
	run.Status = to
	switch to {
	case payroll.RunStatusProcessed:
		run.ProcessedAt = &at
	case payroll.RunStatusPaid:
		run.PaidAt = &at
	}
	r.db.state.runs[id] = run
	return run, nil
}

func (r fakePayrollRepo) ListEntries(_ context.Context, runID, practiceID string) ([]payroll.Entry, error) {
	s := r.db.state
	var entries []payroll.Entry
	for _, e := range s.entries {
		if e.RunID == runID && e.PracticeID == practiceID {
			e.Additions = r.entryAdditions(e.ID)
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r fakePayrollRepo) entryAdditions(entryID string) []payroll.Addition {
	var additions []payroll.Addition
	for _, a := range r.db.state.additions {
		if a.EntryID == entryID {
			additions = append(additions, a)
		}
	}
	sort.Slice(additions, func(i, j int) bool { return additions[i].Sequence < additions[j].Sequence })
	return additions
}

func (r fakePayrollRepo) GetEntry(_ context.Context, id, runID string) (payroll.Entry, error) {
	e, ok := r.db.state.entries[id]
	if !ok || e.RunID != runID {
		return payroll.Entry{}, payroll.ErrEntryNotFound
	}
	return e, nil
}

func (r fakePayrollRepo) DeleteEntries(_ context.Context, runID string) error {
	s := r.db.state
	for id, e := range s.entries {
		if e.RunID != runID {
			continue
		}
		delete(s.entries, id)
		for aid, a := range s.additions {
			if a.EntryID == id {
				delete(s.additions, aid)
			}
		}
	}
	return nil
}

func (r fakePayrollRepo) CreateEntry(_ context.Context, entry payroll.Entry) (payroll.Entry, error) {
	entry.ID = r.db.state.nextID("entry")
	entry.Additions = nil
	r.db.state.entries[entry.ID] = entry
	return entry, nil
}

func (r fakePayrollRepo) ProcessedIrregular(_ context.Context, practiceID string, taxYear, month, year int) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal)
	for _, e := range r.db.state.entries {
		run := r.db.state.runs[e.RunID]
		if run.PracticeID != practiceID || run.TaxYear != taxYear || run.Status != payroll.RunStatusProcessed {
			continue
		}
		if run.PeriodYear*12+run.PeriodMonth >= year*12+month {
			continue
		}
		sums[e.EmployeeID] = sums[e.EmployeeID].Add(e.Irregular)
	}
	return sums, nil
}

func (r fakePayrollRepo) ListAdditions(_ context.Context, runID string) ([]payroll.Addition, error) {
	var additions []payroll.Addition
	for _, a := range r.db.state.additions {
		if a.RunID == runID {
			additions = append(additions, a)
		}
	}
	sort.Slice(additions, func(i, j int) bool { return additions[i].ID < additions[j].ID })
	return additions, nil
}

func (r fakePayrollRepo) GetAddition(_ context.Context, id, runID string) (payroll.Addition, error) {
	a, ok := r.db.state.additions[id]
	if !ok || a.RunID != runID {
		return payroll.Addition{}, payroll.ErrAdditionNotFound
	}
	return a, nil
}

func (r fakePayrollRepo) CreateAddition(_ context.Context, a payroll.Addition) (payroll.Addition, error) {
	s := r.db.state
	if _, ok := s.entries[a.EntryID]; !ok {
		return payroll.Addition{}, payroll.ErrEntryNotFound
	}
	a.ID = s.nextID("addition")
	s.additions[a.ID] = a
	return a, nil
}

func (r fakePayrollRepo) DeleteAddition(_ context.Context, id, runID string) error {
	a, ok := r.db.state.additions[id]
	if !ok || a.RunID != runID {
		return payroll.ErrAdditionNotFound
	}
	delete(r.db.state.additions, id)
	return nil
}

// ========== EMPLOYEE REPOSITORY ==========

type fakeEmployeeRepo struct{ db *memDB }

func (r fakeEmployeeRepo) GetProfile(_ context.Context, id, practiceID string) (employee.CompensationProfile, error) {
	for _, p := range r.db.state.profiles {
		if p.ID == id && p.PracticeID == practiceID {
			return p, nil
		}
	}
	return employee.CompensationProfile{}, employee.ErrEmployeeNotFound
}

func (r fakeEmployeeRepo) ListActiveProfiles(_ context.Context, practiceID string) ([]employee.CompensationProfile, error) {
	var profiles []employee.CompensationProfile
	for _, p := range r.db.state.profiles {
		if p.PracticeID == practiceID && p.Active {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (r fakeEmployeeRepo) CreateFringeBenefit(_ context.Context, b employee.FringeBenefit) (employee.FringeBenefit, error) {
	b.ID = r.db.state.nextID("benefit")
	r.db.state.benefits = append(r.db.state.benefits, b)
	return b, nil
}

func (r fakeEmployeeRepo) RetireFringeBenefit(_ context.Context, id, employeeID string, effectiveTo time.Time) (employee.FringeBenefit, error) {
	for i, b := range r.db.state.benefits {
		if b.ID == id && b.EmployeeID == employeeID {
			b.EffectiveTo = &effectiveTo
			r.db.state.benefits[i] = b
			return b, nil
		}
	}
	return employee.FringeBenefit{}, employee.ErrFringeBenefitNotFound
}

func (r fakeEmployeeRepo) ListFringeBenefits(_ context.Context, employeeIDs []string) ([]employee.FringeBenefit, error) {
	ids := toSet(employeeIDs)
	var benefits []employee.FringeBenefit
	for _, b := range r.db.state.benefits {
		if ids[b.EmployeeID] {
			benefits = append(benefits, b)
		}
	}
	return benefits, nil
}

func (r fakeEmployeeRepo) CreateGarnishee(_ context.Context, g employee.GarnisheeDeduction) (employee.GarnisheeDeduction, error) {
	g.ID = r.db.state.nextID("garnishee")
	r.db.state.garnishees = append(r.db.state.garnishees, g)
	return g, nil
}

func (r fakeEmployeeRepo) DeactivateGarnishee(_ context.Context, id, employeeID string) error {
	for i, g := range r.db.state.garnishees {
		if g.ID == id && g.EmployeeID == employeeID {
			g.Active = false
			r.db.state.garnishees[i] = g
			return nil
		}
	}
	return employee.ErrGarnisheeNotFound
}

func (r fakeEmployeeRepo) ListGarnishees(_ context.Context, employeeIDs []string, activeOnly bool) ([]employee.GarnisheeDeduction, error) {
	ids := toSet(employeeIDs)
	var orders []employee.GarnisheeDeduction
	for _, g := range r.db.state.garnishees {
		if ids[g.EmployeeID] && (g.Active || !activeOnly) {
			orders = append(orders, g)
		}
	}
	return orders, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ========== LEDGER REPOSITORY ==========

type fakeLedgerRepo struct{ db *memDB }

func ytdKey(employeeID string, taxYear int) string {
	return fmt.Sprintf("%s/%d", employeeID, taxYear)
}

func (r fakeLedgerRepo) Post(_ context.Context, postings []ledger.Posting) error {
	s := r.db.state
	for _, p := range postings {
		if s.posted[p.EntryID] {
			return ledger.ErrAlreadyPosted
		}
		s.posted[p.EntryID] = true

		key := ytdKey(p.EmployeeID, p.TaxYear)
		row, ok := s.ytd[key]
		if !ok {
			row = ledger.EmployeeYTD{EmployeeID: p.EmployeeID, PracticeID: p.PracticeID, TaxYear: p.TaxYear}
		}
		s.ytd[key] = row.Apply(p)
	}
	return nil
}

func (r fakeLedgerRepo) Get(_ context.Context, employeeID, practiceID string, taxYear int) (ledger.EmployeeYTD, error) {
	row, ok := r.db.state.ytd[ytdKey(employeeID, taxYear)]
	if !ok || row.PracticeID != practiceID {
		return ledger.EmployeeYTD{}, ledger.ErrYTDNotFound
	}
	return row, nil
}

func (r fakeLedgerRepo) ListByPractice(_ context.Context, practiceID string, taxYear int) ([]ledger.EmployeeYTD, error) {
	var rows []ledger.EmployeeYTD
	for _, row := range r.db.state.ytd {
		if row.PracticeID == practiceID && row.TaxYear == taxYear {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EmployeeID < rows[j].EmployeeID })
	return rows, nil
}

func (r fakeLedgerRepo) PracticeGross(ctx context.Context, practiceID string, taxYear int) (decimal.Decimal, error) {
	rows, _ := r.ListByPractice(ctx, practiceID, taxYear)
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Gross)
	}
	return total, nil
}

// ========== AUDIT REPOSITORY ==========

type fakeAuditRepo struct{ db *memDB }

func (r fakeAuditRepo) Append(_ context.Context, records []audit.CalculationRecord) error {
	for _, rec := range records {
		rec.ID = r.db.state.nextID("audit")
		r.db.state.audit = append(r.db.state.audit, rec)
	}
	return nil
}

func (r fakeAuditRepo) ListByRun(_ context.Context, runID, practiceID string) ([]audit.CalculationRecord, error) {
	var records []audit.CalculationRecord
	for _, rec := range r.db.state.audit {
		if rec.RunID == runID && rec.PracticeID == practiceID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (r fakeAuditRepo) ListByEmployee(_ context.Context, employeeID, practiceID string, taxYear int) ([]audit.CalculationRecord, error) {
	var records []audit.CalculationRecord
	for _, rec := range r.db.state.audit {
		if rec.EmployeeID == employeeID && rec.PracticeID == practiceID && rec.TaxYear == taxYear {
			records = append(records, rec)
		}
	}
	return records, nil
}

// practiceContext returns a context carrying a token with the practice_id claim.
func practiceContext(practiceID string) context.Context {
	token := jwt.New()
	_ = token.Set("practice_id", practiceID)
	return jwtauth.NewContext(context.Background(), token, nil)
}
