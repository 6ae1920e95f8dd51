package document

// Status is the document lifecycle status.
type Status string

// Lifecycle: pending -> processing -> {indexed | failed}.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusIndexed    Status = "indexed"
	StatusFailed     Status = "failed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusIndexed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the upload attempt.
func (s Status) IsTerminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusIndexed || next == StatusFailed
	default:
		return false
	}
}
