package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

// ========== PROFILES ==========

const profileColumns = `
	id, practice_id, employee_code, full_name, dob, tax_reference_number, base_salary,
	bank_account_holder_name, bank_name, bank_account_number, bank_branch_code,
	retirement_contribution, medical_aid_contribution, medical_aid_dependents, has_medical_aid,
	thirteenth_cheque_month, active
`

func scanProfile(row pgx.Row) (employee.CompensationProfile, error) {
	var p employee.CompensationProfile
	err := row.Scan(
		&p.ID, &p.PracticeID, &p.EmployeeCode, &p.FullName, &p.DOB, &p.TaxReferenceNumber, &p.BaseSalary,
		&p.BankAccountHolderName, &p.BankName, &p.BankAccountNumber, &p.BankBranchCode,
		&p.RetirementContribution, &p.MedicalAidContribution, &p.MedicalAidDependents, &p.HasMedicalAid,
		&p.ThirteenthChequeMonth, &p.Active,
	)
	return p, err
}

func (r *employeeRepository) GetProfile(ctx context.Context, id string, practiceID string) (employee.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM employees
		WHERE id = $1 AND practice_id = $2
	`

	p, err := scanProfile(q.QueryRow(ctx, query, id, practiceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.CompensationProfile{}, employee.ErrEmployeeNotFound
		}
		return employee.CompensationProfile{}, fmt.Errorf("failed to get employee profile: %w", err)
	}

	return p, nil
}

func (r *employeeRepository) ListActiveProfiles(ctx context.Context, practiceID string) ([]employee.CompensationProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + `
		FROM employees
		WHERE practice_id = $1 AND active = true
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, practiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee profiles: %w", err)
	}
	defer rows.Close()

	var profiles []employee.CompensationProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list employee profiles: %w", err)
	}

	return profiles, nil
}

// ========== FRINGE BENEFITS ==========

const benefitColumns = `
	id, employee_id, category, description, monthly_taxable_value, effective_from, effective_to, created_at
`

func scanBenefit(row pgx.Row) (employee.FringeBenefit, error) {
	var b employee.FringeBenefit
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Category, &b.Description, &b.MonthlyTaxableValue,
		&b.EffectiveFrom, &b.EffectiveTo, &b.CreatedAt,
	)
	return b, err
}

func (r *employeeRepository) CreateFringeBenefit(ctx context.Context, benefit employee.FringeBenefit) (employee.FringeBenefit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO fringe_benefits (id, employee_id, category, description, monthly_taxable_value, effective_from, effective_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + benefitColumns

	b, err := scanBenefit(q.QueryRow(ctx, query,
		newID(), benefit.EmployeeID, string(benefit.Category), benefit.Description,
		benefit.MonthlyTaxableValue, benefit.EffectiveFrom, benefit.EffectiveTo,
	))
	if err != nil {
		return employee.FringeBenefit{}, fmt.Errorf("failed to create fringe benefit: %w", err)
	}

	return b, nil
}

func (r *employeeRepository) RetireFringeBenefit(ctx context.Context, id, employeeID string, effectiveTo time.Time) (employee.FringeBenefit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE fringe_benefits SET effective_to = $3
		WHERE id = $1 AND employee_id = $2
		RETURNING ` + benefitColumns

	b, err := scanBenefit(q.QueryRow(ctx, query, id, employeeID, effectiveTo))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.FringeBenefit{}, employee.ErrFringeBenefitNotFound
		}
		return employee.FringeBenefit{}, fmt.Errorf("failed to retire fringe benefit: %w", err)
	}

	return b, nil
}

func (r *employeeRepository) ListFringeBenefits(ctx context.Context, employeeIDs []string) ([]employee.FringeBenefit, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + benefitColumns + `
		FROM fringe_benefits
		WHERE employee_id = ANY($1::uuid[])
		ORDER BY employee_id, effective_from, id
	`

	rows, err := q.Query(ctx, query, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list fringe benefits: %w", err)
	}
	defer rows.Close()

	var benefits []employee.FringeBenefit
	for rows.Next() {
		b, err := scanBenefit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fringe benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list fringe benefits: %w", err)
	}

	return benefits, nil
}

// ========== GARNISHEES ==========

const garnisheeColumns = `id, employee_id, reference, amount, active, created_at`

func scanGarnishee(row pgx.Row) (employee.GarnisheeDeduction, error) {
	var g employee.GarnisheeDeduction
	err := row.Scan(&g.ID, &g.EmployeeID, &g.Reference, &g.Amount, &g.Active, &g.CreatedAt)
	return g, err
}

func (r *employeeRepository) CreateGarnishee(ctx context.Context, order employee.GarnisheeDeduction) (employee.GarnisheeDeduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO garnishee_orders (id, employee_id, reference, amount, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + garnisheeColumns

	g, err := scanGarnishee(q.QueryRow(ctx, query, newID(), order.EmployeeID, order.Reference, order.Amount, order.Active))
	if err != nil {
		return employee.GarnisheeDeduction{}, fmt.Errorf("failed to create garnishee order: %w", err)
	}

	return g, nil
}

func (r *employeeRepository) DeactivateGarnishee(ctx context.Context, id, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `UPDATE garnishee_orders SET active = false WHERE id = $1 AND employee_id = $2`, id, employeeID)
	if err != nil {
		return fmt.Errorf("failed to deactivate garnishee order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return employee.ErrGarnisheeNotFound
	}

	return nil
}

func (r *employeeRepository) ListGarnishees(ctx context.Context, employeeIDs []string, activeOnly bool) ([]employee.GarnisheeDeduction, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + garnisheeColumns + `
		FROM garnishee_orders
		WHERE employee_id = ANY($1::uuid[])
	`
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY employee_id, created_at, id"

	rows, err := q.Query(ctx, query, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list garnishee orders: %w", err)
	}
	defer rows.Close()

	var orders []employee.GarnisheeDeduction
	for rows.Next() {
		g, err := scanGarnishee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan garnishee order: %w", err)
		}
		orders = append(orders, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list garnishee orders: %w", err)
	}

	return orders, nil
}
