// Package lifecycle holds the order state machine: the status enum, the
// role-gated transition table and the typed errors a rejected transition
// produces. It is pure data and checks; side effects live in the services.
package lifecycle

// Status is an order lifecycle status as stored in orders.status.
type Status string

const (
	StatusUnderReview          Status = "UNDER_REVIEW"
	StatusConfirmPending       Status = "CONFIRM_PENDING"
	StatusApprovedOrder        Status = "APPROVED_ORDER"
	StatusArranging            Status = "ARRANGING"
	StatusArranged             Status = "ARRANGED"
	StatusSentForPackaging     Status = "SENT_FOR_PACKAGING"
	StatusUnderPackaging       Status = "UNDER_PACKAGING"
	StatusPackagingCompleted   Status = "PACKAGING_COMPLETED"
	StatusInTransit            Status = "IN_TRANSIT"
	StatusConfirmOrderReceived Status = "CONFIRM_ORDER_RECEIVED"
	StatusClosedOrder          Status = "CLOSED_ORDER"

	// Issue branch states. WAITING_FOR_MANAGER_REPLY and MANAGER_REPLIED
	// pause the pre-approval flow; RAISED_ISSUE pauses transit.
	StatusRaisedIssue            Status = "RAISED_ISSUE"
	StatusWaitingForManagerReply Status = "WAITING_FOR_MANAGER_REPLY"
	StatusManagerReplied         Status = "MANAGER_REPLIED"

	// StatusNone is the pseudo-source of the creation transition.
	StatusNone Status = ""
)

var allStatuses = []Status{
	StatusUnderReview,
	StatusConfirmPending,
	StatusApprovedOrder,
	StatusArranging,
	StatusArranged,
	StatusSentForPackaging,
	StatusUnderPackaging,
	StatusPackagingCompleted,
	StatusInTransit,
	StatusConfirmOrderReceived,
	StatusClosedOrder,
	StatusRaisedIssue,
	StatusWaitingForManagerReply,
	StatusManagerReplied,
}

// arrangingStages is the sub-range mirrored onto orders.arranging_stage.
var arrangingStages = map[Status]bool{
	StatusArranging:        true,
	StatusArranged:         true,
	StatusSentForPackaging: true,
}

func (s Status) String() string { return string(s) }

// IsKnown reports whether s is a real lifecycle status (StatusNone is not).
func (s Status) IsKnown() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusClosedOrder
}

// IsArrangingStage reports whether s belongs to the arranging sub-range.
func (s Status) IsArrangingStage() bool {
	return arrangingStages[s]
}

// All returns every real status, in rough lifecycle order.
func All() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Parse returns the status named by raw, or an error for unknown input so
// a typo in a request can never reach the transition table.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsKnown() {
		return StatusNone, &UnknownStatusError{Raw: raw}
	}
	return s, nil
}
