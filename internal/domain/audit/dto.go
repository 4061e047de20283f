package audit

import "time"

type CalculationRecordResponse struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	EntryID      string    `json:"entry_id"`
	EmployeeID   string    `json:"employee_id"`
	TaxYear      int       `json:"tax_year"`
	RunStatus    string    `json:"run_status"`
	CalculatedAt time.Time `json:"calculated_at"`
	Breakdown    Breakdown `json:"breakdown"`
}

func NewCalculationRecordResponses(records []CalculationRecord) []CalculationRecordResponse {
	result := make([]CalculationRecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, CalculationRecordResponse{
			ID:           r.ID,
			RunID:        r.RunID,
			EntryID:      r.EntryID,
			EmployeeID:   r.EmployeeID,
			TaxYear:      r.TaxYear,
			RunStatus:    r.RunStatus,
			CalculatedAt: r.CalculatedAt,
			Breakdown:    r.Breakdown,
		})
	}
	return result
}
