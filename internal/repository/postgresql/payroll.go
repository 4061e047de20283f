package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// newID returns a time-ordered UUID so rows sort by creation.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========== RUNS ==========

const runColumns = `
	id, practice_id, period_month, period_year, tax_year, status,
	employee_count, total_gross, total_taxable, total_fringe_benefits, total_paye,
	total_medical_credits, total_employee_uif, total_employer_uif, total_sdl,
	total_retirement, total_medical_aid, total_garnishees, total_net,
	processed_at, paid_at, created_at, updated_at
`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var run payroll.Run
	t := &run.Totals
	err := row.Scan(
		&run.ID, &run.PracticeID, &run.PeriodMonth, &run.PeriodYear, &run.TaxYear, &run.Status,
		&t.EmployeeCount, &t.Gross, &t.Taxable, &t.FringeBenefits, &t.PAYE,
		&t.MedicalCredits, &t.EmployeeUIF, &t.EmployerUIF, &t.SDL,
		&t.Retirement, &t.MedicalAid, &t.Garnishees, &t.Net,
		&run.ProcessedAt, &run.PaidAt, &run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) LockRunForPeriod(ctx context.Context, practiceID string, month, year, taxYear int) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	// Two concurrent first recalculations both insert; the loser does nothing
	// and then waits on the row lock below.
	_, err := q.Exec(ctx, `
		INSERT INTO payroll_runs (id, practice_id, period_month, period_year, tax_year, status)
		VALUES ($1, $2, $3, $4, $5, 'draft')
		ON CONFLICT (practice_id, period_year, period_month) DO NOTHING
	`, newID(), practiceID, month, year, taxYear)
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	query := `SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE practice_id = $1 AND period_month = $2 AND period_year = $3
		FOR UPDATE
	`
	run, err := scanRun(q.QueryRow(ctx, query, practiceID, month, year))
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) LockRun(ctx context.Context, id, practiceID string) (payroll.Run, error) {
	return r.getRun(ctx, id, practiceID, " FOR UPDATE")
}

func (r *payrollRepository) GetRun(ctx context.Context, id, practiceID string) (payroll.Run, error) {
	return r.getRun(ctx, id, practiceID, "")
}

func (r *payrollRepository) getRun(ctx context.Context, id, practiceID, lock string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE id = $1 AND practice_id = $2` + lock

	run, err := scanRun(q.QueryRow(ctx, query, id, practiceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByPeriod(ctx context.Context, practiceID string, month, year int) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE practice_id = $1 AND period_month = $2 AND period_year = $3
	`

	run, err := scanRun(q.QueryRow(ctx, query, practiceID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, practiceID string, filter payroll.RunFilter) ([]payroll.Run, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_runs
		WHERE practice_id = $1
	`
	args := []interface{}{practiceID}
	argIdx := 2

	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*filter.Status))
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s
		ORDER BY period_year DESC, period_month DESC
		LIMIT $%d OFFSET $%d
	`, runColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}

	return runs, totalCount, nil
}

func (r *payrollRepository) UpdateRunTotals(ctx context.Context, id string, totals payroll.Totals) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs SET
			employee_count = $2, total_gross = $3, total_taxable = $4, total_fringe_benefits = $5,
			total_paye = $6, total_medical_credits = $7, total_employee_uif = $8,
			total_employer_uif = $9, total_sdl = $10, total_retirement = $11,
			total_medical_aid = $12, total_garnishees = $13, total_net = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query, id,
		totals.EmployeeCount, totals.Gross, totals.Taxable, totals.FringeBenefits,
		totals.PAYE, totals.MedicalCredits, totals.EmployeeUIF,
		totals.EmployerUIF, totals.SDL, totals.Retirement,
		totals.MedicalAid, totals.Garnishees, totals.Net,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll run totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

func (r *payrollRepository) CompareAndSetStatus(ctx context.Context, id, practiceID string, from, to payroll.RunStatus, at time.Time) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs SET
			status = $4::text,
			processed_at = CASE WHEN $4::text = 'processed' THEN $5::timestamptz ELSE processed_at END,
			paid_at = CASE WHEN $4::text = 'paid' THEN $5::timestamptz ELSE paid_at END,
			updated_at = NOW()
		WHERE id = $1 AND practice_id = $2 AND status = $3
		RETURNING ` + runColumns

	run, err := scanRun(q.QueryRow(ctx, query, id, practiceID, string(from), string(to), at))
	if err == nil {
		return run, nil
	}
	if err != pgx.ErrNoRows {
		return payroll.Run{}, fmt.Errorf("failed to update payroll run status: %w", err)
	}

	current, err := r.GetRun(ctx, id, practiceID)
	if err != nil {
		return payroll.Run{}, err
	}
	return payroll.Run{}, &payroll.StateConflictError{RunID: id, Op: "transition to " + string(to), Status: current.Status}
}

// ========== ENTRIES ==========

const entryColumns = `
	pe.id, pe.run_id, pe.practice_id, pe.employee_id, pe.tax_year,
	pe.base_salary, pe.additions_total, pe.irregular, pe.gross, pe.fringe_benefits,
	pe.taxable_income, pe.paye, pe.medical_credit, pe.employee_uif, pe.employer_uif,
	pe.sdl, pe.retirement, pe.medical_aid, pe.garnishees, pe.net, pe.calculated_at,
	e.full_name, e.employee_code
`

func scanEntry(row pgx.Row) (payroll.Entry, error) {
	var e payroll.Entry
	err := row.Scan(
		&e.ID, &e.RunID, &e.PracticeID, &e.EmployeeID, &e.TaxYear,
		&e.BaseSalary, &e.AdditionsTotal, &e.Irregular, &e.Gross, &e.FringeBenefits,
		&e.TaxableIncome, &e.PAYE, &e.MedicalCredit, &e.EmployeeUIF, &e.EmployerUIF,
		&e.SDL, &e.Retirement, &e.MedicalAid, &e.Garnishees, &e.Net, &e.CalculatedAt,
		&e.EmployeeName, &e.EmployeeCode,
	)
	return e, err
}

func (r *payrollRepository) ListEntries(ctx context.Context, runID, practiceID string) ([]payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + `
		FROM payroll_entries pe
		LEFT JOIN employees e ON pe.employee_id = e.id
		WHERE pe.run_id = $1 AND pe.practice_id = $2
		ORDER BY e.employee_code, pe.id
	`

	rows, err := q.Query(ctx, query, runID, practiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payroll entries: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	additions, err := r.ListAdditions(ctx, runID)
	if err != nil {
		return nil, err
	}
	byEntry := make(map[string][]payroll.Addition, len(entries))
	for _, a := range additions {
		byEntry[a.EntryID] = append(byEntry[a.EntryID], a)
	}
	for i := range entries {
		entries[i].Additions = byEntry[entries[i].ID]
	}

	return entries, nil
}

func (r *payrollRepository) GetEntry(ctx context.Context, id, runID string) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + entryColumns + `
		FROM payroll_entries pe
		LEFT JOIN employees e ON pe.employee_id = e.id
		WHERE pe.id = $1 AND pe.run_id = $2
	`

	entry, err := scanEntry(q.QueryRow(ctx, query, id, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Entry{}, payroll.ErrEntryNotFound
		}
		return payroll.Entry{}, fmt.Errorf("failed to get payroll entry: %w", err)
	}

	return entry, nil
}

func (r *payrollRepository) DeleteEntries(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_entries WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payroll entries: %w", err)
	}

	return nil
}

func (r *payrollRepository) CreateEntry(ctx context.Context, entry payroll.Entry) (payroll.Entry, error) {
	q := GetQuerier(ctx, r.db)

	entry.ID = newID()
	query := `
		INSERT INTO payroll_entries (
			id, run_id, practice_id, employee_id, tax_year,
			base_salary, additions_total, irregular, gross, fringe_benefits,
			taxable_income, paye, medical_credit, employee_uif, employer_uif,
			sdl, retirement, medical_aid, garnishees, net, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := q.Exec(ctx, query,
		entry.ID, entry.RunID, entry.PracticeID, entry.EmployeeID, entry.TaxYear,
		entry.BaseSalary, entry.AdditionsTotal, entry.Irregular, entry.Gross, entry.FringeBenefits,
		entry.TaxableIncome, entry.PAYE, entry.MedicalCredit, entry.EmployeeUIF, entry.EmployerUIF,
		entry.SDL, entry.Retirement, entry.MedicalAid, entry.Garnishees, entry.Net, entry.CalculatedAt,
	)
	if err != nil {
		return payroll.Entry{}, fmt.Errorf("failed to create payroll entry: %w", err)
	}

	entry.Additions = nil
	return entry, nil
}

func (r *payrollRepository) ProcessedIrregular(ctx context.Context, practiceID string, taxYear, month, year int) (map[string]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT pe.employee_id, COALESCE(SUM(pe.irregular), 0)
		FROM payroll_entries pe
		JOIN payroll_runs pr ON pe.run_id = pr.id
		WHERE pr.practice_id = $1 AND pr.tax_year = $2 AND pr.status = 'processed'
			AND (pr.period_year * 12 + pr.period_month) < ($4 * 12 + $3)
		GROUP BY pe.employee_id
	`

	rows, err := q.Query(ctx, query, practiceID, taxYear, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to sum processed irregular income: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var employeeID string
		var amount decimal.Decimal
		if err := rows.Scan(&employeeID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan processed irregular income: %w", err)
		}
		sums[employeeID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to sum processed irregular income: %w", err)
	}

	return sums, nil
}

// ========== ADDITIONS ==========

const additionColumns = `
	id, entry_id, run_id, employee_id, category, amount, description, source, sequence, created_at
`

func scanAddition(row pgx.Row) (payroll.Addition, error) {
	var a payroll.Addition
	err := row.Scan(
		&a.ID, &a.EntryID, &a.RunID, &a.EmployeeID, &a.Category, &a.Amount,
		&a.Description, &a.Source, &a.Sequence, &a.CreatedAt,
	)
	return a, err
}

func (r *payrollRepository) ListAdditions(ctx context.Context, runID string) ([]payroll.Addition, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + additionColumns + `
		FROM payroll_additions
		WHERE run_id = $1
		ORDER BY employee_id, sequence, id
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll additions: %w", err)
	}
	defer rows.Close()

	var additions []payroll.Addition
	for rows.Next() {
		a, err := scanAddition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll addition: %w", err)
		}
		additions = append(additions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payroll additions: %w", err)
	}

	return additions, nil
}

func (r *payrollRepository) GetAddition(ctx context.Context, id, runID string) (payroll.Addition, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + additionColumns + `
		FROM payroll_additions
		WHERE id = $1 AND run_id = $2
	`

	a, err := scanAddition(q.QueryRow(ctx, query, id, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Addition{}, payroll.ErrAdditionNotFound
		}
		return payroll.Addition{}, fmt.Errorf("failed to get payroll addition: %w", err)
	}

	return a, nil
}

func (r *payrollRepository) CreateAddition(ctx context.Context, addition payroll.Addition) (payroll.Addition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_additions (id, entry_id, run_id, employee_id, category, amount, description, source, sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + additionColumns

	a, err := scanAddition(q.QueryRow(ctx, query,
		newID(), addition.EntryID, addition.RunID, addition.EmployeeID, string(addition.Category),
		addition.Amount, addition.Description, string(addition.Source), addition.Sequence,
	))
	if err != nil {
		return payroll.Addition{}, fmt.Errorf("failed to create payroll addition: %w", err)
	}

	return a, nil
}

func (r *payrollRepository) DeleteAddition(ctx context.Context, id, runID string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM payroll_additions WHERE id = $1 AND run_id = $2`, id, runID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll addition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return payroll.ErrAdditionNotFound
	}

	return nil
}
