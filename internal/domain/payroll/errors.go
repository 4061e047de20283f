package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound        = errors.New("payroll run not found")
	ErrEntryNotFound      = errors.New("payroll entry not found")
	ErrAdditionNotFound   = errors.New("payroll addition not found")
	ErrInvalidStatus      = errors.New("invalid payroll run status")
	ErrAutoAdditionLocked = errors.New("auto-derived additions are regenerated on recalculation and cannot be removed")
	ErrClaimsMissing      = errors.New("practice_id claim is missing or invalid")
)

// ErrStateConflict is matched by every *StateConflictError.
var ErrStateConflict = errors.New("payroll run state conflict")

// StateConflictError reports an operation that the run's status forbids.
type StateConflictError struct {
	RunID  string
	Op     string
	Status RunStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("payroll run %s is %s: cannot %s", e.RunID, e.Status, e.Op)
}

func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}
