package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	// Fringe benefits
	CreateFringeBenefit(w http.ResponseWriter, r *http.Request)
	RetireFringeBenefit(w http.ResponseWriter, r *http.Request)
	ListFringeBenefits(w http.ResponseWriter, r *http.Request)

	// Garnishees
	CreateGarnishee(w http.ResponseWriter, r *http.Request)
	DeactivateGarnishee(w http.ResponseWriter, r *http.Request)
	ListGarnishees(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// ========== FRINGE BENEFITS ==========

func (h *employeeHandlerImpl) CreateFringeBenefit(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateFringeBenefitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	result, err := h.employeeService.CreateFringeBenefit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Fringe benefit created", result)
}

// RetireFringeBenefit ends a benefit on the effective_to query date. The
// record is kept so earlier runs stay reproducible.
func (h *employeeHandlerImpl) RetireFringeBenefit(w http.ResponseWriter, r *http.Request) {
	req := employee.RetireFringeBenefitRequest{
		ID:          chi.URLParam(r, "benefitId"),
		EmployeeID:  chi.URLParam(r, "id"),
		EffectiveTo: r.URL.Query().Get("effective_to"),
	}

	result, err := h.employeeService.RetireFringeBenefit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Fringe benefit retired", result)
}

func (h *employeeHandlerImpl) ListFringeBenefits(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.ListFringeBenefits(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== GARNISHEES ==========

func (h *employeeHandlerImpl) CreateGarnishee(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateGarnisheeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "id")

	result, err := h.employeeService.CreateGarnishee(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Garnishee order created", result)
}

func (h *employeeHandlerImpl) DeactivateGarnishee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "garnisheeId")
	if id == "" {
		response.BadRequest(w, "Garnishee ID is required", nil)
		return
	}

	if err := h.employeeService.DeactivateGarnishee(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Garnishee order deactivated", nil)
}

func (h *employeeHandlerImpl) ListGarnishees(w http.ResponseWriter, r *http.Request) {
	result, err := h.employeeService.ListGarnishees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
