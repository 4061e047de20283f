package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/taxtable"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *memDB
	tables *taxtable.Registry
	svc    *PayrollServiceImpl
	ctx    context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newMemDB()
	tables := loadTables(t)
	svc := NewPayrollService(
		db,
		fakePayrollRepo{db},
		fakeEmployeeRepo{db},
		fakeLedgerRepo{db},
		fakeAuditRepo{db},
		tables,
		NewCalculator(nil),
	).(*PayrollServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 6, 25, 8, 0, 0, 0, time.UTC) }

	return &testEnv{db: db, tables: tables, svc: svc, ctx: practiceContext("practice-1")}
}

func (e *testEnv) addEmployee(p employee.CompensationProfile) {
	e.db.state.profiles = append(e.db.state.profiles, p)
}

func (e *testEnv) addGarnishee(employeeID, amount string) {
	e.db.state.garnishees = append(e.db.state.garnishees, employee.GarnisheeDeduction{
		ID:         e.db.state.nextID("garnishee"),
		EmployeeID: employeeID,
		Reference:  "Court order " + employeeID,
		Amount:     d(amount),
		Active:     true,
	})
}

func (e *testEnv) recalculate(t *testing.T, month, year int) payroll.RunResponse {
	t.Helper()
	run, err := e.svc.RecalculateRun(e.ctx, payroll.RecalculateRunRequest{PeriodMonth: month, PeriodYear: year})
	require.NoError(t, err)
	return run
}

func (e *testEnv) transition(t *testing.T, runID string, status payroll.RunStatus) payroll.RunResponse {
	t.Helper()
	run, err := e.svc.TransitionRun(e.ctx, payroll.TransitionRunRequest{RunID: runID, Status: string(status)})
	require.NoError(t, err)
	return run
}

func (e *testEnv) addBonus(t *testing.T, run payroll.RunResponse, entryIdx int, amount string) payroll.RunResponse {
	t.Helper()
	updated, err := e.svc.AddAddition(e.ctx, payroll.CreateAdditionRequest{
		RunID:    run.ID,
		EntryID:  run.Entries[entryIdx].ID,
		Category: string(payroll.AdditionBonus),
		Amount:   d(amount),
	})
	require.NoError(t, err)
	return updated
}

func (e *testEnv) storedEntries(t *testing.T, runID string) []payroll.Entry {
	t.Helper()
	entries, err := fakePayrollRepo{e.db}.ListEntries(context.Background(), runID, "practice-1")
	require.NoError(t, err)
	return entries
}

// ========== RECALCULATE ==========

func TestRecalculateRun_ConcreteScenario(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	env.addGarnishee("e1", "500")

	run := env.recalculate(t, 6, 2025)
	assert.Equal(t, 2026, run.TaxYear)
	assert.Equal(t, "draft", run.Status)
	require.Len(t, run.Entries, 1)

	run = env.addBonus(t, run, 0, "10000")
	require.Len(t, run.Entries, 1)
	entry := run.Entries[0]

	assertDecimal(t, "40000.00", entry.Gross)
	assertDecimal(t, "7383.08", entry.PAYE, "paye")
	assertDecimal(t, "177.12", entry.EmployeeUIF, "uif")
	assertDecimal(t, "500.00", entry.Garnishees)
	assertDecimal(t, "31939.80", entry.Net, "net")
	// 40 000 x 9 remaining months is below the SDL threshold.
	assert.True(t, entry.SDL.IsZero())

	require.Len(t, entry.Additions, 1)
	assert.Equal(t, "manual", entry.Additions[0].Source)
	assert.Equal(t, 1, entry.Additions[0].Sequence)
}

func TestRecalculateRun_SDLDueAbovePayrollThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "60000"))

	run := env.recalculate(t, 6, 2025)
	require.Len(t, run.Entries, 1)
	assertDecimal(t, "600.00", run.Entries[0].SDL)
}

func TestRecalculateRun_TotalsEqualSumOfEntries(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	env.addEmployee(profile40("e2", "18500.55"))
	p3 := profile40("e3", "72000")
	p3.RetirementContribution = d("5400")
	p3.HasMedicalAid = true
	p3.MedicalAidDependents = 3
	p3.MedicalAidContribution = d("6120.40")
	env.addEmployee(p3)
	env.addGarnishee("e2", "750.25")

	run := env.recalculate(t, 8, 2025)
	run = env.addBonus(t, run, 0, "12345.67")

	sum := func(get func(payroll.EntryResponse) decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, e := range run.Entries {
			total = total.Add(get(e))
		}
		return total
	}

	totals := run.Totals
	assert.Equal(t, 3, totals.EmployeeCount)
	checks := map[string][2]decimal.Decimal{
		"gross":           {totals.Gross, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.Gross })},
		"taxable":         {totals.Taxable, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.TaxableIncome })},
		"paye":            {totals.PAYE, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.PAYE })},
		"medical_credits": {totals.MedicalCredits, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.MedicalCredit })},
		"employee_uif":    {totals.EmployeeUIF, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.EmployeeUIF })},
		"employer_uif":    {totals.EmployerUIF, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.EmployerUIF })},
		"sdl":             {totals.SDL, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.SDL })},
		"retirement":      {totals.Retirement, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.Retirement })},
		"medical_aid":     {totals.MedicalAid, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.MedicalAid })},
		"garnishees":      {totals.Garnishees, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.Garnishees })},
		"net":             {totals.Net, sum(func(e payroll.EntryResponse) decimal.Decimal { return e.Net })},
	}
	for name, pair := range checks {
		assert.True(t, pair[0].Equal(pair[1]), "%s: total %s, sum %s", name, pair[0], pair[1])
	}

	stored := env.db.state.runs[run.ID].Totals
	assert.True(t, stored.Net.Equal(totals.Net))
}

func TestRecalculateRun_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	env.addEmployee(profile40("e2", "41234.99"))
	env.addGarnishee("e1", "500")

	run := env.recalculate(t, 6, 2025)
	run = env.addBonus(t, run, 1, "7777.77")
	first := env.storedEntries(t, run.ID)
	recordsBefore := len(env.db.state.audit)

	env.recalculate(t, 6, 2025)
	second := env.storedEntries(t, run.ID)

	require.Len(t, second, len(first))
	for i := range first {
		assert.NotEqual(t, first[i].ID, second[i].ID, "entries are regenerated")
		assert.True(t, first[i].SameAmounts(second[i]), "entry %d differs", i)
	}

	records := env.db.state.audit
	require.Len(t, records, recordsBefore+len(second))
	for i := range second {
		before, err := json.Marshal(records[recordsBefore-len(first)+i].Breakdown)
		require.NoError(t, err)
		after, err := json.Marshal(records[recordsBefore+i].Breakdown)
		require.NoError(t, err)
		assert.JSONEq(t, string(before), string(after))
	}
}

func TestRecalculateRun_PreservesManualAdditionsInOrder(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	run := env.recalculate(t, 6, 2025)
	run = env.addBonus(t, run, 0, "10000")
	run, err := env.svc.AddAddition(env.ctx, payroll.CreateAdditionRequest{
		RunID:    run.ID,
		EntryID:  run.Entries[0].ID,
		Category: string(payroll.AdditionCommission),
		Amount:   d("2500"),
	})
	require.NoError(t, err)

	run = env.recalculate(t, 6, 2025)
	additions := run.Entries[0].Additions
	require.Len(t, additions, 2)
	assert.Equal(t, "bonus", additions[0].Category)
	assert.Equal(t, "commission", additions[1].Category)
	assert.Equal(t, run.Entries[0].ID, additions[0].EntryID)
	assertDecimal(t, "42500.00", run.Entries[0].Gross)
}

func TestDeleteAddition_Recalculates(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	run := env.recalculate(t, 6, 2025)
	run = env.addBonus(t, run, 0, "10000")
	assertDecimal(t, "7383.08", run.Entries[0].PAYE)

	run, err := env.svc.DeleteAddition(env.ctx, payroll.DeleteAdditionRequest{
		RunID:      run.ID,
		AdditionID: run.Entries[0].Additions[0].ID,
	})
	require.NoError(t, err)
	assert.Empty(t, run.Entries[0].Additions)
	assertDecimal(t, "4783.08", run.Entries[0].PAYE)
}

func TestRecalculateRun_ThirteenthChequeIsDerived(t *testing.T) {
	env := newTestEnv(t)
	p := profile40("e1", "30000")
	december := 12
	p.ThirteenthChequeMonth = &december
	env.addEmployee(p)

	run := env.recalculate(t, 12, 2025)
	additions := run.Entries[0].Additions
	require.Len(t, additions, 1)
	assert.Equal(t, "auto", additions[0].Source)
	assert.Equal(t, "thirteenth_cheque", additions[0].Category)
	assertDecimal(t, "30000", additions[0].Amount)

	_, err := env.svc.DeleteAddition(env.ctx, payroll.DeleteAdditionRequest{RunID: run.ID, AdditionID: additions[0].ID})
	assert.ErrorIs(t, err, payroll.ErrAutoAdditionLocked)

	run = env.addBonus(t, run, 0, "1000")
	additions = run.Entries[0].Additions
	require.Len(t, additions, 2)
	assert.Equal(t, "manual", additions[0].Source)
	assert.Equal(t, "auto", additions[1].Source)

	other := env.recalculate(t, 11, 2025)
	assert.Empty(t, other.Entries[0].Additions)
}

func TestRecalculateRun_MissingTaxYearIsConfigurationError(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	_, err := env.svc.RecalculateRun(env.ctx, payroll.RecalculateRunRequest{PeriodMonth: 6, PeriodYear: 2035})
	require.Error(t, err)
	assert.True(t, errors.Is(err, statutory.ErrConfiguration))
	assert.Empty(t, env.db.state.runs)
}

func TestRecalculateRun_ConfigurationErrorHaltsWholeRun(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "5000"))
	env.addEmployee(profile40("e2", "30000"))

	run := env.recalculate(t, 6, 2025)
	before := env.storedEntries(t, run.ID)
	auditBefore := len(env.db.state.audit)

	// A table whose bands stop at 100 000 covers e1 but not e2.
	upper := d("100000")
	good := loadTaxYear(t, 2026)
	broken := good
	broken.Bands = []statutory.Band{{Lower: decimal.Zero, Upper: &upper, Base: decimal.Zero, Rate: d("0.18")}}
	env.tables.Replace([]statutory.TaxYear{broken})

	_, err := env.svc.RecalculateRun(env.ctx, payroll.RecalculateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.Error(t, err)
	assert.True(t, errors.Is(err, statutory.ErrConfiguration))

	after := env.storedEntries(t, run.ID)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
	assert.Len(t, env.db.state.audit, auditBefore)
}

func TestRecalculateRun_RequiresPracticeClaim(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RecalculateRun(context.Background(), payroll.RecalculateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	assert.ErrorIs(t, err, payroll.ErrClaimsMissing)
}

func TestAddAddition_RejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	run := env.recalculate(t, 6, 2025)

	_, err := env.svc.AddAddition(env.ctx, payroll.CreateAdditionRequest{
		RunID:    run.ID,
		EntryID:  run.Entries[0].ID,
		Category: string(payroll.AdditionBonus),
		Amount:   d("-10"),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "amount")
}

func TestAddAddition_RejectsFractionalCents(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	run := env.recalculate(t, 6, 2025)

	_, err := env.svc.AddAddition(env.ctx, payroll.CreateAdditionRequest{
		RunID:    run.ID,
		EntryID:  run.Entries[0].ID,
		Category: string(payroll.AdditionBonus),
		Amount:   d("1000.005"),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "must have at most 2 decimal places", verrs.ToMap()["amount"])
	assert.Empty(t, env.storedEntries(t, run.ID)[0].Additions)
}

// ========== TRANSITIONS ==========

func TestTransitionRun_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))
	env.addGarnishee("e1", "500")

	run := env.recalculate(t, 6, 2025)
	run = env.addBonus(t, run, 0, "10000")

	_, err := env.svc.TransitionRun(env.ctx, payroll.TransitionRunRequest{RunID: run.ID, Status: "paid"})
	assert.ErrorIs(t, err, payroll.ErrStateConflict)

	processed := env.transition(t, run.ID, payroll.RunStatusProcessed)
	assert.Equal(t, "processed", processed.Status)
	assert.NotNil(t, processed.ProcessedAt)
	entriesBefore := env.storedEntries(t, run.ID)
	totalsBefore := env.db.state.runs[run.ID].Totals

	_, err = env.svc.RecalculateRun(env.ctx, payroll.RecalculateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	var conflict *payroll.StateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, payroll.RunStatusProcessed, conflict.Status)

	_, err = env.svc.AddAddition(env.ctx, payroll.CreateAdditionRequest{
		RunID: run.ID, EntryID: run.Entries[0].ID, Category: "bonus", Amount: d("1"),
	})
	assert.ErrorIs(t, err, payroll.ErrStateConflict)

	_, err = env.svc.DeleteAddition(env.ctx, payroll.DeleteAdditionRequest{RunID: run.ID, AdditionID: run.Entries[0].Additions[0].ID})
	assert.ErrorIs(t, err, payroll.ErrStateConflict)

	entriesAfter := env.storedEntries(t, run.ID)
	require.Len(t, entriesAfter, len(entriesBefore))
	for i := range entriesBefore {
		assert.Equal(t, entriesBefore[i].ID, entriesAfter[i].ID)
		assert.True(t, entriesBefore[i].SameAmounts(entriesAfter[i]))
	}
	assert.True(t, totalsBefore.Net.Equal(env.db.state.runs[run.ID].Totals.Net))
	assert.Empty(t, env.db.state.ytd)

	paid := env.transition(t, run.ID, payroll.RunStatusPaid)
	assert.Equal(t, "paid", paid.Status)
	assert.NotNil(t, paid.PaidAt)

	ytd, err := fakeLedgerRepo{env.db}.Get(context.Background(), "e1", "practice-1", 2026)
	require.NoError(t, err)
	assertDecimal(t, "40000", ytd.Gross)
	assertDecimal(t, "7383.08", ytd.PAYE)
	assertDecimal(t, "10000", ytd.Irregular)

	for _, target := range []string{"paid", "processed", "draft"} {
		_, err = env.svc.TransitionRun(env.ctx, payroll.TransitionRunRequest{RunID: run.ID, Status: target})
		assert.ErrorIs(t, err, payroll.ErrStateConflict, target)
	}

	again, err := fakeLedgerRepo{env.db}.Get(context.Background(), "e1", "practice-1", 2026)
	require.NoError(t, err)
	assertDecimal(t, "40000", again.Gross)
}

func TestTransitionRun_LedgerFailureKeepsRunProcessed(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	run := env.recalculate(t, 6, 2025)
	env.transition(t, run.ID, payroll.RunStatusProcessed)
	env.db.state.posted[run.Entries[0].ID] = true

	_, err := env.svc.TransitionRun(env.ctx, payroll.TransitionRunRequest{RunID: run.ID, Status: "paid"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyPosted)
	assert.Equal(t, payroll.RunStatusProcessed, env.db.state.runs[run.ID].Status)
	assert.Empty(t, env.db.state.ytd)
}

func TestRecalculateRun_CountsIrregularFromProcessedRuns(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	june := env.recalculate(t, 6, 2025)
	june = env.addBonus(t, june, 0, "10000")
	env.transition(t, june.ID, payroll.RunStatusProcessed)

	// June is processed but unpaid, so its bonus is not in the ledger yet.
	july := env.recalculate(t, 7, 2025)
	july = env.addBonus(t, july, 0, "10000")
	assertDecimal(t, "7858.08", july.Entries[0].PAYE)

	// Once June is paid its bonus comes from the ledger only.
	env.transition(t, june.ID, payroll.RunStatusPaid)
	july = env.recalculate(t, 7, 2025)
	assertDecimal(t, "7858.08", july.Entries[0].PAYE)

}

func TestRecalculateRun_IgnoresIrregularFromLaterProcessedRuns(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	july := env.recalculate(t, 7, 2025)
	july = env.addBonus(t, july, 0, "10000")
	env.transition(t, july.ID, payroll.RunStatusProcessed)

	june := env.recalculate(t, 6, 2025)
	june = env.addBonus(t, june, 0, "10000")
	assertDecimal(t, "7383.08", june.Entries[0].PAYE)
}

func TestTransitionRun_YTDAccumulatesAcrossRuns(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	june := env.recalculate(t, 6, 2025)
	june = env.addBonus(t, june, 0, "10000")
	env.transition(t, june.ID, payroll.RunStatusProcessed)
	env.transition(t, june.ID, payroll.RunStatusPaid)

	july := env.recalculate(t, 7, 2025)
	july = env.addBonus(t, july, 0, "10000")
	// The June bonus is already in the YTD irregular total, so this one is
	// taxed from 370 000 to 380 000.
	assertDecimal(t, "7858.08", july.Entries[0].PAYE)
	env.transition(t, july.ID, payroll.RunStatusProcessed)
	env.transition(t, july.ID, payroll.RunStatusPaid)

	ytd, err := fakeLedgerRepo{env.db}.Get(context.Background(), "e1", "practice-1", 2026)
	require.NoError(t, err)
	assertDecimal(t, "80000", ytd.Gross)
	assertDecimal(t, "15241.16", ytd.PAYE)
	assertDecimal(t, "354.24", ytd.EmployeeUIF)
	assertDecimal(t, "20000", ytd.Irregular)

	resp, err := env.svc.GetEmployeeYTD(env.ctx, "e1", 2026)
	require.NoError(t, err)
	assertDecimal(t, "15241.16", resp.PAYE)

	_, err = env.svc.GetEmployeeYTD(env.ctx, "e1", 2027)
	assert.ErrorIs(t, err, ledger.ErrYTDNotFound)

	// Two calculations per run: the initial one and the one after the bonus.
	history, err := env.svc.GetEmployeeAudit(env.ctx, "e1", 2026)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	_, err = env.svc.GetEmployeeAudit(practiceContext("practice-2"), "e1", 2026)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

// ========== QUERIES ==========

func TestListRunsAndAudit(t *testing.T) {
	env := newTestEnv(t)
	env.addEmployee(profile40("e1", "30000"))

	june := env.recalculate(t, 6, 2025)
	env.recalculate(t, 7, 2025)
	env.recalculate(t, 6, 2025)
	env.transition(t, june.ID, payroll.RunStatusProcessed)

	list, err := env.svc.ListRuns(env.ctx, payroll.RunFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)

	processed := payroll.RunStatusProcessed
	list, err = env.svc.ListRuns(env.ctx, payroll.RunFilter{Status: &processed})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, june.ID, list.Data[0].ID)

	history, err := env.svc.GetRunAudit(env.ctx, june.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "both calculations are kept")

	_, err = env.svc.GetRun(practiceContext("practice-2"), june.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}
