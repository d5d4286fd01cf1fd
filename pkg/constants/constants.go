package constants

//============== ROLES ==============

// Role codes as stored in users.role and carried in JWT claims. The
// lifecycle transition table gates every status change on these.
const (
	RoleBranchUser = "BRANCH_USER"
	RoleManager    = "MANAGER"
	RoleAdmin      = "ADMIN"
	RolePackager   = "PACKAGER"
	RoleDispatcher = "DISPATCHER"

	// RoleSystem is the synthetic actor the auto-close scheduler acts as.
	// It is never issued in a token.
	RoleSystem = "SYSTEM"
)

var UserRoles = []string{
	RoleBranchUser,
	RoleManager,
	RoleAdmin,
	RolePackager,
	RoleDispatcher,
}

func IsUserRole(role string) bool {
	for _, r := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

//============== NOTIFICATION EVENT TYPES ==============

// Event type codes written to notifications.event_type and order history.
const (
	EventOrderCreated    = "ORDER_CREATED"
	EventOrderApproved   = "ORDER_APPROVED"
	EventOrderConfirmed  = "ORDER_CONFIRMED"
	EventStatusChanged   = "ORDER_STATUS_CHANGED"
	EventOrderDispatched = "ORDER_DISPATCHED"
	EventOrderReceived   = "ORDER_RECEIVED"
	EventOrderClosed     = "ORDER_CLOSED"
	EventIssueRaised     = "ISSUE_RAISED"
	EventIssueReplied    = "ISSUE_REPLIED"
	EventReplyConfirmed  = "ISSUE_REPLY_CONFIRMED"
	EventReceivedIssue   = "RECEIVED_ISSUE_REPORTED"
)

//============== CACHE KEYS ==============

// Prefixes for Redis keys used by the notification fan-out. Recipient
// directories change only through seeding, so a short TTL is enough.
const (
	// Format: recipients:role:<role> -> JSON []userID
	CacheKeyRoleRecipients = "recipients:role:%s"

	// Format: recipients:branch:<branchID>:role:<role> -> JSON []userID
	CacheKeyBranchRoleRecipients = "recipients:branch:%d:role:%s"

	// Format: recipients:active -> JSON []userID
	CacheKeyActiveRecipients = "recipients:active"
)

//============== ORDER NUMBERS ==============

// Two-letter prefix for human-readable order numbers, e.g. "BRX7K2N9".
const OrderNumberPrefix = "BR"
