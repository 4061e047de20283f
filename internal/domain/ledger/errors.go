package ledger

import "errors"

var (
	ErrAlreadyPosted = errors.New("payroll entry already posted to the YTD ledger")
	ErrYTDNotFound   = errors.New("no YTD figures for employee in tax year")
)
