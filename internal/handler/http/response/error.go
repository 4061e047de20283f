package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/export"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/ledger"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var conflict *payroll.StateConflictError
	if errors.As(err, &conflict) {
		Conflict(w, conflict.Error())
		return
	}

	var configErr *statutory.ConfigurationError
	if errors.As(err, &configErr) {
		ConfigurationError(w, configErr.Error())
		return
	}

	switch {
	// Claims
	case errors.Is(err, payroll.ErrClaimsMissing),
		errors.Is(err, employee.ErrClaimsMissing),
		errors.Is(err, export.ErrClaimsMissing):
		Unauthorized(w, "practice_id claim is required")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrEntryNotFound):
		NotFound(w, "Payroll entry not found")
	case errors.Is(err, payroll.ErrAdditionNotFound):
		NotFound(w, "Payroll addition not found")
	case errors.Is(err, payroll.ErrInvalidStatus):
		BadRequest(w, "Invalid payroll run status", nil)
	case errors.Is(err, payroll.ErrAutoAdditionLocked):
		BadRequest(w, err.Error(), nil)

	// Ledger
	case errors.Is(err, ledger.ErrYTDNotFound):
		NotFound(w, "No paid payroll for employee in tax year")
	case errors.Is(err, ledger.ErrAlreadyPosted):
		Conflict(w, "Payroll run already posted to the YTD ledger")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrFringeBenefitNotFound):
		NotFound(w, "Fringe benefit not found")
	case errors.Is(err, employee.ErrGarnisheeNotFound):
		NotFound(w, "Garnishee order not found")
	case errors.Is(err, employee.ErrBenefitAlreadyRetired):
		Conflict(w, "Fringe benefit already retired")
	case errors.Is(err, employee.ErrGarnisheeAlreadyClosed):
		Conflict(w, "Garnishee order already inactive")

	// Exports
	case errors.Is(err, export.ErrNothingToExport):
		NotFound(w, "Nothing to export")
	case errors.Is(err, export.ErrUnknownFormat):
		BadRequest(w, "Unknown export format", nil)

	// Configuration problems not tied to a tax year
	case errors.Is(err, statutory.ErrConfiguration):
		ConfigurationError(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
