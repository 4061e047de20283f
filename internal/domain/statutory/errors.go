package statutory

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = errors.New("statutory configuration error")

var (
	ErrUnsupportedTableVersion = errors.New("tax tables: unsupported version")
	ErrNoTaxYears              = errors.New("tax tables: no tax years defined")
)

// ConfigurationError is raised when a calculation cannot proceed because the
// statutory tables for a tax year are missing or incomplete.
type ConfigurationError struct {
	TaxYear int
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("tax year %d: %s", e.TaxYear, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func NewConfigurationError(taxYear int, reason string) *ConfigurationError {
	return &ConfigurationError{TaxYear: taxYear, Reason: reason}
}
