package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/audit"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, records []audit.CalculationRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO calculation_audit (id, practice_id, run_id, entry_id, employee_id, tax_year, run_status, calculated_at, breakdown)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, rec := range records {
		breakdown, err := json.Marshal(rec.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode calculation breakdown: %w", err)
		}

		_, err = q.Exec(ctx, query,
			newID(), rec.PracticeID, rec.RunID, rec.EntryID, rec.EmployeeID,
			rec.TaxYear, rec.RunStatus, rec.CalculatedAt, breakdown,
		)
		if err != nil {
			return fmt.Errorf("failed to append calculation record: %w", err)
		}
	}

	return nil
}

func (r *auditRepository) ListByRun(ctx context.Context, runID string, practiceID string) ([]audit.CalculationRecord, error) {
	return r.list(ctx, `WHERE run_id = $1 AND practice_id = $2`, runID, practiceID)
}

func (r *auditRepository) ListByEmployee(ctx context.Context, employeeID string, practiceID string, taxYear int) ([]audit.CalculationRecord, error) {
	return r.list(ctx, `WHERE employee_id = $1 AND practice_id = $2 AND tax_year = $3`, employeeID, practiceID, taxYear)
}

func (r *auditRepository) list(ctx context.Context, where string, args ...interface{}) ([]audit.CalculationRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, practice_id, run_id, entry_id, employee_id, tax_year, run_status, calculated_at, breakdown
		FROM calculation_audit
		` + where + `
		ORDER BY calculated_at, id
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculation records: %w", err)
	}
	defer rows.Close()

	var records []audit.CalculationRecord
	for rows.Next() {
		var rec audit.CalculationRecord
		var breakdown []byte
		if err := rows.Scan(
			&rec.ID, &rec.PracticeID, &rec.RunID, &rec.EntryID, &rec.EmployeeID,
			&rec.TaxYear, &rec.RunStatus, &rec.CalculatedAt, &breakdown,
		); err != nil {
			return nil, fmt.Errorf("failed to scan calculation record: %w", err)
		}
		if err := json.Unmarshal(breakdown, &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode calculation breakdown %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list calculation records: %w", err)
	}

	return records, nil
}
