package export

import (
	"bytes"
	"fmt"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/export"
	"github.com/jung-kurt/gofpdf"
)

func renderCertificatePDF(row export.CertificateRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Tax certificate %d %s", row.TaxYear, row.EmployeeCode), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Employee Tax Certificate")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Tax year", fmt.Sprintf("%d", row.TaxYear)},
		{"Employee", row.EmployeeName},
		{"Employee code", row.EmployeeCode},
		{"Tax reference", row.TaxReferenceNumber},
	}
	for _, line := range header {
		pdf.CellFormat(60, 7, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, line[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Amount (ZAR)", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	amounts := [][2]string{
		{"Gross remuneration", row.GrossRemuneration},
		{"Taxable income", row.TaxableIncome},
		{"Taxable fringe benefits", row.FringeBenefits},
		{"PAYE withheld", row.PAYE},
		{"UIF contributions", row.UIF},
		{"Retirement fund contributions", row.Retirement},
		{"Medical aid contributions", row.MedicalAid},
		{"Medical scheme fees tax credit", row.MedicalTaxCredits},
	}
	for _, line := range amounts {
		pdf.CellFormat(120, 7, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, line[1], "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
