package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	RecalculateRun(w http.ResponseWriter, r *http.Request)
	TransitionRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ListRuns(w http.ResponseWriter, r *http.Request)
	GetRunAudit(w http.ResponseWriter, r *http.Request)

	// Additions
	AddAddition(w http.ResponseWriter, r *http.Request)
	DeleteAddition(w http.ResponseWriter, r *http.Request)

	// Employee history
	GetEmployeeYTD(w http.ResponseWriter, r *http.Request)
	GetEmployeeAudit(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) RecalculateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.RecalculateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.RecalculateRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run recalculated", result)
}

func (h *payrollHandlerImpl) TransitionRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	var req payroll.TransitionRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RunID = id

	result, err := h.payrollService.TransitionRun(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRun(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := payroll.RunFilter{
		Page:  1,
		Limit: 20,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if yearStr := r.URL.Query().Get("period_year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.PeriodYear = &year
		}
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := payroll.RunStatus(statusStr)
		if !status.Valid() {
			response.HandleError(w, payroll.ErrInvalidStatus)
			return
		}
		filter.Status = &status
	}

	result, err := h.payrollService.ListRuns(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payrollHandlerImpl) GetRunAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Run ID is required", nil)
		return
	}

	result, err := h.payrollService.GetRunAudit(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ADDITIONS ==========

func (h *payrollHandlerImpl) AddAddition(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateAdditionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RunID = chi.URLParam(r, "id")
	req.EntryID = chi.URLParam(r, "entryId")

	result, err := h.payrollService.AddAddition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Addition recorded and run recalculated", result)
}

func (h *payrollHandlerImpl) DeleteAddition(w http.ResponseWriter, r *http.Request) {
	req := payroll.DeleteAdditionRequest{
		RunID:      chi.URLParam(r, "id"),
		AdditionID: chi.URLParam(r, "additionId"),
	}
	if req.RunID == "" || req.AdditionID == "" {
		response.BadRequest(w, "Run ID and addition ID are required", nil)
		return
	}

	result, err := h.payrollService.DeleteAddition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Addition removed and run recalculated", result)
}

// ========== EMPLOYEE HISTORY ==========

func (h *payrollHandlerImpl) GetEmployeeYTD(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	taxYear, err := strconv.Atoi(chi.URLParam(r, "taxYear"))
	if employeeID == "" || err != nil {
		response.BadRequest(w, "Employee ID and a numeric tax year are required", nil)
		return
	}

	result, err := h.payrollService.GetEmployeeYTD(r.Context(), employeeID, taxYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetEmployeeAudit(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	taxYear, err := strconv.Atoi(chi.URLParam(r, "taxYear"))
	if employeeID == "" || err != nil {
		response.BadRequest(w, "Employee ID and a numeric tax year are required", nil)
		return
	}

	result, err := h.payrollService.GetEmployeeAudit(r.Context(), employeeID, taxYear)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
