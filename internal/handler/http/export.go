package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/export"
	"github.com/cmlabs-hris/practice-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExportHandler interface {
	BankPayments(w http.ResponseWriter, r *http.Request)
	Accountant(w http.ResponseWriter, r *http.Request)
	MonthlyDeclaration(w http.ResponseWriter, r *http.Request)
	AnnualReconciliation(w http.ResponseWriter, r *http.Request)
	// Certificate serves /certificates/{taxYear}.csv and .pdf.
	Certificate(w http.ResponseWriter, r *http.Request)
}

type exportHandlerImpl struct {
	exportService export.ExportService
}

func NewExportHandler(exportService export.ExportService) ExportHandler {
	return &exportHandlerImpl{exportService: exportService}
}

func writeDocument(w http.ResponseWriter, doc export.Document, err error) {
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Attachment(w, doc.Filename, doc.ContentType, doc.Body)
}

func (h *exportHandlerImpl) BankPayments(w http.ResponseWriter, r *http.Request) {
	doc, err := h.exportService.BankPayments(r.Context(), chi.URLParam(r, "id"))
	writeDocument(w, doc, err)
}

func (h *exportHandlerImpl) Accountant(w http.ResponseWriter, r *http.Request) {
	doc, err := h.exportService.Accountant(r.Context(), chi.URLParam(r, "id"))
	writeDocument(w, doc, err)
}

func (h *exportHandlerImpl) MonthlyDeclaration(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		response.BadRequest(w, "Invalid year", nil)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, "Invalid month", nil)
		return
	}

	doc, err := h.exportService.MonthlyDeclaration(r.Context(), month, year)
	writeDocument(w, doc, err)
}

func (h *exportHandlerImpl) AnnualReconciliation(w http.ResponseWriter, r *http.Request) {
	taxYear, err := strconv.Atoi(chi.URLParam(r, "taxYear"))
	if err != nil {
		response.BadRequest(w, "Invalid tax year", nil)
		return
	}

	doc, err := h.exportService.AnnualReconciliation(r.Context(), taxYear)
	writeDocument(w, doc, err)
}

func (h *exportHandlerImpl) Certificate(w http.ResponseWriter, r *http.Request) {
	format := export.Format(chi.URLParam(r, "format"))
	taxYear, err := strconv.Atoi(chi.URLParam(r, "taxYear"))
	if err != nil {
		response.BadRequest(w, "Invalid tax year", nil)
		return
	}

	doc, err := h.exportService.IndividualCertificate(r.Context(), chi.URLParam(r, "id"), taxYear, format)
	writeDocument(w, doc, err)
}
