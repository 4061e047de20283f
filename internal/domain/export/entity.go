package export

// Document is a rendered export ready to be sent to the caller.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)
