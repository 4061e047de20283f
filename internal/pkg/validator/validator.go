package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// South African bank account numbers are 6 to 16 digits, no separators.
func IsValidBankAccountNumber(account string) bool {
	return len(account) >= 6 && len(account) <= 16 && IsNumeric(account)
}

// Universal and branch-specific codes are both 6 digits.
func IsValidBranchCode(code string) bool {
	return len(code) == 6 && IsNumeric(code)
}

// HasAtMostCents reports whether amount is representable in rand and cents.
// Trailing zeros such as 10.500 are accepted.
func HasAtMostCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}
