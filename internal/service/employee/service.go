package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

func getPracticeID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	practiceID, ok := claims["practice_id"].(string)
	if !ok || practiceID == "" {
		return "", employee.ErrClaimsMissing
	}
	return practiceID, nil
}

// requireEmployee checks that employeeID belongs to the caller's practice.
func (s *EmployeeServiceImpl) requireEmployee(ctx context.Context, employeeID string) error {
	practiceID, err := getPracticeID(ctx)
	if err != nil {
		return err
	}
	_, err = s.employeeRepo.GetProfile(ctx, employeeID, practiceID)
	return err
}

// ========== FRINGE BENEFITS ==========

func (s *EmployeeServiceImpl) CreateFringeBenefit(ctx context.Context, req employee.CreateFringeBenefitRequest) (employee.FringeBenefitResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.FringeBenefitResponse{}, err
	}
	if err := s.requireEmployee(ctx, req.EmployeeID); err != nil {
		return employee.FringeBenefitResponse{}, err
	}

	created, err := s.employeeRepo.CreateFringeBenefit(ctx, req.ToEntity())
	if err != nil {
		return employee.FringeBenefitResponse{}, err
	}

	slog.InfoContext(ctx, "fringe benefit created", "employee_id", created.EmployeeID, "benefit_id", created.ID, "category", string(created.Category))
	return employee.NewFringeBenefitResponse(created), nil
}

func (s *EmployeeServiceImpl) RetireFringeBenefit(ctx context.Context, req employee.RetireFringeBenefitRequest) (employee.FringeBenefitResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.FringeBenefitResponse{}, err
	}
	if err := s.requireEmployee(ctx, req.EmployeeID); err != nil {
		return employee.FringeBenefitResponse{}, err
	}

	benefits, err := s.employeeRepo.ListFringeBenefits(ctx, []string{req.EmployeeID})
	if err != nil {
		return employee.FringeBenefitResponse{}, err
	}

	var current *employee.FringeBenefit
	for i := range benefits {
		if benefits[i].ID == req.ID {
			current = &benefits[i]
			break
		}
	}
	if current == nil {
		return employee.FringeBenefitResponse{}, employee.ErrFringeBenefitNotFound
	}
	if current.EffectiveTo != nil {
		return employee.FringeBenefitResponse{}, employee.ErrBenefitAlreadyRetired
	}

	effectiveTo, _ := validator.IsValidDate(req.EffectiveTo)
	if effectiveTo.Before(current.EffectiveFrom) {
		return employee.FringeBenefitResponse{}, validator.ValidationErrors{
			{Field: "effective_to", Message: "must not be before effective_from"},
		}
	}

	retired, err := s.employeeRepo.RetireFringeBenefit(ctx, req.ID, req.EmployeeID, effectiveTo)
	if err != nil {
		return employee.FringeBenefitResponse{}, err
	}
	return employee.NewFringeBenefitResponse(retired), nil
}

func (s *EmployeeServiceImpl) ListFringeBenefits(ctx context.Context, employeeID string) ([]employee.FringeBenefitResponse, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	benefits, err := s.employeeRepo.ListFringeBenefits(ctx, []string{employeeID})
	if err != nil {
		return nil, err
	}

	result := make([]employee.FringeBenefitResponse, 0, len(benefits))
	for _, b := range benefits {
		result = append(result, employee.NewFringeBenefitResponse(b))
	}
	return result, nil
}

// ========== GARNISHEES ==========

func (s *EmployeeServiceImpl) CreateGarnishee(ctx context.Context, req employee.CreateGarnisheeRequest) (employee.GarnisheeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.GarnisheeResponse{}, err
	}
	if err := s.requireEmployee(ctx, req.EmployeeID); err != nil {
		return employee.GarnisheeResponse{}, err
	}

	created, err := s.employeeRepo.CreateGarnishee(ctx, employee.GarnisheeDeduction{
		EmployeeID: req.EmployeeID,
		Reference:  req.Reference,
		Amount:     req.Amount,
		Active:     true,
	})
	if err != nil {
		return employee.GarnisheeResponse{}, err
	}

	slog.InfoContext(ctx, "garnishee order created", "employee_id", created.EmployeeID, "garnishee_id", created.ID)
	return employee.NewGarnisheeResponse(created), nil
}

func (s *EmployeeServiceImpl) DeactivateGarnishee(ctx context.Context, id, employeeID string) error {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return err
	}

	orders, err := s.employeeRepo.ListGarnishees(ctx, []string{employeeID}, false)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.ID != id {
			continue
		}
		if !o.Active {
			return employee.ErrGarnisheeAlreadyClosed
		}
		if err := s.employeeRepo.DeactivateGarnishee(ctx, id, employeeID); err != nil {
			return err
		}
		slog.InfoContext(ctx, "garnishee order deactivated", "employee_id", employeeID, "garnishee_id", id)
		return nil
	}
	return employee.ErrGarnisheeNotFound
}

func (s *EmployeeServiceImpl) ListGarnishees(ctx context.Context, employeeID string) ([]employee.GarnisheeResponse, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	orders, err := s.employeeRepo.ListGarnishees(ctx, []string{employeeID}, false)
	if err != nil {
		return nil, err
	}

	result := make([]employee.GarnisheeResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, employee.NewGarnisheeResponse(o))
	}
	return result, nil
}
