package payroll

// RunStatus is the payroll run lifecycle: draft -> processed -> paid.
type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusProcessed RunStatus = "processed"
	RunStatusPaid      RunStatus = "paid"
)

var nextStatus = map[RunStatus]RunStatus{
	RunStatusDraft:     RunStatusProcessed,
	RunStatusProcessed: RunStatusPaid,
}

func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusDraft, RunStatusProcessed, RunStatusPaid:
		return true
	}
	return false
}

// Editable reports whether entries and additions may change.
func (s RunStatus) Editable() bool {
	return s == RunStatusDraft
}

// Transition validates a move from s to target for run runID. It is the only
// place legal transitions are defined.
func (s RunStatus) Transition(runID string, target RunStatus) error {
	if next, ok := nextStatus[s]; ok && next == target {
		return nil
	}
	return &StateConflictError{RunID: runID, Op: "transition to " + string(target), Status: s}
}

// RequireEditable returns a StateConflictError naming op unless the run is a draft.
func (r Run) RequireEditable(op string) error {
	if r.Status.Editable() {
		return nil
	}
	return &StateConflictError{RunID: r.ID, Op: op, Status: r.Status}
}
