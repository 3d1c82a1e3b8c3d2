package requisition

// Status represents the lifecycle state of a purchase requisition.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusSubmitted     Status = "SUBMITTED"
	StatusApproved      Status = "APPROVED"
	StatusInProcurement Status = "IN_PROCUREMENT"
	StatusClosed        Status = "CLOSED"
	StatusRejected      Status = "REJECTED"
	StatusCancelled     Status = "CANCELLED"
)

// allowedTransitions is the full lifecycle table. CLOSED has no outgoing
// transitions; REJECTED and CANCELLED can only be reopened back to DRAFT.
var allowedTransitions = map[Status][]Status{
	StatusDraft:         {StatusSubmitted, StatusCancelled},
	StatusSubmitted:     {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:      {StatusInProcurement, StatusCancelled},
	StatusInProcurement: {StatusClosed, StatusCancelled},
	StatusRejected:      {StatusDraft},
	StatusCancelled:     {StatusDraft},
	StatusClosed:        {},
}

// IsValid checks if the status value is one of the known lifecycle states
func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the target status is directly reachable
// from the current one according to the lifecycle table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses directly reachable from the current one.
// The result is empty for terminal statuses.
func (s Status) AllowedTargets() []Status {
	targets := allowedTransitions[s]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}
