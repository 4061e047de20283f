package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) ledger.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Post must run inside the transaction that marks the run paid.
func (r *ledgerRepository) Post(ctx context.Context, postings []ledger.Posting) error {
	q := GetQuerier(ctx, r.db)

	for _, p := range postings {
		result, err := q.Exec(ctx, `
			INSERT INTO ytd_postings (entry_id, run_id, employee_id, practice_id, tax_year)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (entry_id) DO NOTHING
		`, p.EntryID, p.RunID, p.EmployeeID, p.PracticeID, p.TaxYear)
		if err != nil {
			return fmt.Errorf("failed to record ytd posting: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("entry %s: %w", p.EntryID, ledger.ErrAlreadyPosted)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO employee_ytd (
				employee_id, practice_id, tax_year, gross, taxable, paye, employee_uif, employer_uif,
				sdl, retirement, medical_aid, fringe_benefits, medical_credits, irregular
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (employee_id, tax_year) DO UPDATE SET
				gross = employee_ytd.gross + EXCLUDED.gross,
				taxable = employee_ytd.taxable + EXCLUDED.taxable,
				paye = employee_ytd.paye + EXCLUDED.paye,
				employee_uif = employee_ytd.employee_uif + EXCLUDED.employee_uif,
				employer_uif = employee_ytd.employer_uif + EXCLUDED.employer_uif,
				sdl = employee_ytd.sdl + EXCLUDED.sdl,
				retirement = employee_ytd.retirement + EXCLUDED.retirement,
				medical_aid = employee_ytd.medical_aid + EXCLUDED.medical_aid,
				fringe_benefits = employee_ytd.fringe_benefits + EXCLUDED.fringe_benefits,
				medical_credits = employee_ytd.medical_credits + EXCLUDED.medical_credits,
				irregular = employee_ytd.irregular + EXCLUDED.irregular,
				updated_at = NOW()
		`,
			p.EmployeeID, p.PracticeID, p.TaxYear, p.Gross, p.Taxable, p.PAYE, p.EmployeeUIF, p.EmployerUIF,
			p.SDL, p.Retirement, p.MedicalAid, p.FringeBenefits, p.MedicalCredits, p.Irregular,
		)
		if err != nil {
			return fmt.Errorf("failed to update employee ytd: %w", err)
		}
	}

	return nil
}

const ytdColumns = `
	y.employee_id, y.practice_id, y.tax_year, y.gross, y.taxable, y.paye, y.employee_uif,
	y.employer_uif, y.sdl, y.retirement, y.medical_aid, y.fringe_benefits, y.medical_credits,
	y.irregular, y.updated_at, e.full_name, e.employee_code, e.tax_reference_number
`

func scanYTD(row pgx.Row) (ledger.EmployeeYTD, error) {
	var y ledger.EmployeeYTD
	err := row.Scan(
		&y.EmployeeID, &y.PracticeID, &y.TaxYear, &y.Gross, &y.Taxable, &y.PAYE, &y.EmployeeUIF,
		&y.EmployerUIF, &y.SDL, &y.Retirement, &y.MedicalAid, &y.FringeBenefits, &y.MedicalCredits,
		&y.Irregular, &y.UpdatedAt, &y.EmployeeName, &y.EmployeeCode, &y.TaxReferenceNumber,
	)
	return y, err
}

func (r *ledgerRepository) Get(ctx context.Context, employeeID string, practiceID string, taxYear int) (ledger.EmployeeYTD, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ytdColumns + `
		FROM employee_ytd y
		LEFT JOIN employees e ON y.employee_id = e.id
		WHERE y.employee_id = $1 AND y.practice_id = $2 AND y.tax_year = $3
	`

	y, err := scanYTD(q.QueryRow(ctx, query, employeeID, practiceID, taxYear))
	if err != nil {
		if err == pgx.ErrNoRows {
			return ledger.EmployeeYTD{}, ledger.ErrYTDNotFound
		}
		return ledger.EmployeeYTD{}, fmt.Errorf("failed to get employee ytd: %w", err)
	}

	return y, nil
}

func (r *ledgerRepository) ListByPractice(ctx context.Context, practiceID string, taxYear int) ([]ledger.EmployeeYTD, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ytdColumns + `
		FROM employee_ytd y
		LEFT JOIN employees e ON y.employee_id = e.id
		WHERE y.practice_id = $1 AND y.tax_year = $2
		ORDER BY e.employee_code, y.employee_id
	`

	rows, err := q.Query(ctx, query, practiceID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee ytd: %w", err)
	}
	defer rows.Close()

	var list []ledger.EmployeeYTD
	for rows.Next() {
		y, err := scanYTD(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee ytd: %w", err)
		}
		list = append(list, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list employee ytd: %w", err)
	}

	return list, nil
}

func (r *ledgerRepository) PracticeGross(ctx context.Context, practiceID string, taxYear int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var gross decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(gross), 0) FROM employee_ytd WHERE practice_id = $1 AND tax_year = $2
	`, practiceID, taxYear).Scan(&gross)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum practice gross: %w", err)
	}

	return gross, nil
}
