package lifecycle

import (
	"fmt"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/constants"
)

// Rule is one edge of the transition graph: a target status and the roles
// allowed to move an order onto it.
type Rule struct {
	To    Status
	Roles []string
}

// transitions maps the source status to its outgoing edges. The graph is
// forward-only; the single documented cycle is the issue re-raise loop
// MANAGER_REPLIED -> WAITING_FOR_MANAGER_REPLY.
var transitions = map[Status][]Rule{
	StatusNone: {
		{To: StatusUnderReview, Roles: []string{constants.RoleBranchUser}},
	},
	StatusUnderReview: {
		{To: StatusConfirmPending, Roles: []string{constants.RoleManager, constants.RoleAdmin}},
	},
	StatusConfirmPending: {
		{To: StatusApprovedOrder, Roles: []string{constants.RoleBranchUser}},
		{To: StatusWaitingForManagerReply, Roles: []string{constants.RoleBranchUser}},
	},
	StatusApprovedOrder: {
		{To: StatusArranging, Roles: []string{constants.RoleBranchUser, constants.RoleManager, constants.RoleAdmin}},
		// Fast lane: arranging may be skipped entirely and packaging
		// started straight from approval.
		{To: StatusUnderPackaging, Roles: []string{constants.RoleManager, constants.RoleAdmin, constants.RolePackager}},
	},
	StatusArranging: {
		{To: StatusArranged, Roles: []string{constants.RoleBranchUser, constants.RoleManager, constants.RoleAdmin}},
	},
	StatusArranged: {
		{To: StatusSentForPackaging, Roles: []string{constants.RoleBranchUser, constants.RoleManager, constants.RoleAdmin}},
	},
	StatusSentForPackaging: {
		{To: StatusUnderPackaging, Roles: []string{constants.RoleAdmin, constants.RoleManager, constants.RolePackager}},
	},
	StatusUnderPackaging: {
		{To: StatusPackagingCompleted, Roles: []string{constants.RoleAdmin, constants.RoleManager, constants.RolePackager}},
	},
	StatusPackagingCompleted: {
		{To: StatusInTransit, Roles: []string{constants.RoleAdmin, constants.RoleManager, constants.RoleDispatcher}},
	},
	StatusInTransit: {
		{To: StatusConfirmOrderReceived, Roles: []string{constants.RoleBranchUser}},
		{To: StatusRaisedIssue, Roles: []string{constants.RoleBranchUser}},
	},
	StatusRaisedIssue: {
		// A transit dispute must not strand a delivered order.
		{To: StatusConfirmOrderReceived, Roles: []string{constants.RoleBranchUser}},
	},
	StatusConfirmOrderReceived: {
		{To: StatusClosedOrder, Roles: []string{constants.RoleManager, constants.RoleAdmin, constants.RoleSystem}},
	},
	StatusWaitingForManagerReply: {
		{To: StatusManagerReplied, Roles: []string{constants.RoleManager, constants.RoleAdmin}},
	},
	StatusManagerReplied: {
		{To: StatusApprovedOrder, Roles: []string{constants.RoleBranchUser}},
		{To: StatusWaitingForManagerReply, Roles: []string{constants.RoleBranchUser}},
	},
	StatusClosedOrder: {},
}

// CanTransition reports whether the edge from -> to exists at all,
// regardless of role.
func CanTransition(from, to Status) bool {
	for _, rule := range transitions[from] {
		if rule.To == to {
			return true
		}
	}
	return false
}

// AllowedRoles returns the roles permitted on the edge from -> to, or nil
// when the edge does not exist.
func AllowedRoles(from, to Status) []string {
	for _, rule := range transitions[from] {
		if rule.To == to {
			out := make([]string, len(rule.Roles))
			copy(out, rule.Roles)
			return out
		}
	}
	return nil
}

// Next returns the statuses reachable from the given status.
func Next(from Status) []Status {
	rules := transitions[from]
	out := make([]Status, 0, len(rules))
	for _, rule := range rules {
		out = append(out, rule.To)
	}
	return out
}

// Authorize validates the edge and the acting role, in that order of
// failure: a missing edge is a state-precondition error, a present edge
// with a foreign role is an authorization error. Callers can tell the two
// apart with errors.As.
func Authorize(from, to Status, role string) error {
	rules, ok := transitions[from]
	if !ok && from != StatusNone {
		return &TransitionError{From: from, To: to}
	}
	for _, rule := range rules {
		if rule.To != to {
			continue
		}
		for _, allowed := range rule.Roles {
			if allowed == role {
				return nil
			}
		}
		return &RoleError{Role: role, From: from, To: to}
	}
	return &TransitionError{From: from, To: to}
}

// TransitionError reports an edge that does not exist in the graph.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Invalid transition: %s → %s", e.From, e.To)
}

// RoleError reports a valid edge attempted by a role outside its allow-list.
type RoleError struct {
	Role string
	From Status
	To   Status
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("role %s is not permitted to move an order from %s to %s", e.Role, e.From, e.To)
}

// UnknownStatusError reports request input naming no known status.
type UnknownStatusError struct {
	Raw string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status: %q", e.Raw)
}
