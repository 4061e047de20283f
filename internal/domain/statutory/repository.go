package statutory

import "time"

// TableProvider looks up versioned statutory tables.
// Both methods return a *ConfigurationError when no table covers the request.
type TableProvider interface {
	ForYear(id int) (TaxYear, error)
	ForDate(date time.Time) (TaxYear, error)
}
