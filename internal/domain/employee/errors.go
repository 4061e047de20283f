package employee

import "errors"

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrFringeBenefitNotFound  = errors.New("fringe benefit not found")
	ErrGarnisheeNotFound      = errors.New("garnishee order not found")
	ErrGarnisheeAlreadyClosed = errors.New("garnishee order already inactive")
	ErrBenefitAlreadyRetired  = errors.New("fringe benefit already retired")
	ErrClaimsMissing          = errors.New("practice_id claim is missing or invalid")
)
