package dto

// UserClaims is the authenticated actor as extracted from the access
// token. BranchID is nil for cross-branch roles.
type UserClaims struct {
	UserID   uint64  `json:"user_id"`
	Role     string  `json:"role"`
	BranchID *uint64 `json:"branch_id,omitempty"`
}
