package export

import "errors"

var (
	ErrNothingToExport = errors.New("nothing to export")
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrClaimsMissing   = errors.New("practice_id claim is missing or invalid")
)
