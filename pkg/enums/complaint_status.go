package enums

import "fmt"

// ComplaintStatus tracks the lifecycle of a complaint.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusClosed,
}

// complaintTransitions is the single source of truth for legal status moves.
// CLOSED is terminal.
var complaintTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusPending:    {ComplaintStatusInProgress, ComplaintStatusClosed},
	ComplaintStatusInProgress: {ComplaintStatusResolved, ComplaintStatusClosed},
	ComplaintStatusResolved:   {ComplaintStatusClosed, ComplaintStatusInProgress},
	ComplaintStatusClosed:     {},
}

// String implements fmt.Stringer.
func (c ComplaintStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ComplaintStatus.
func (c ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from the current status to next is a
// legal edge in the lifecycle.
func (c ComplaintStatus) CanTransition(next ComplaintStatus) bool {
	for _, candidate := range complaintTransitions[c] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseComplaintStatus converts raw input into a ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}
