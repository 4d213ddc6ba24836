package domain

import "time"

// ActivityAction is the closed set of auditable actions. Persisted as text but
// only ever constructed from these constants, so an unknown action is a
// compile-time error rather than a silently ignored filter.
type ActivityAction string

const (
	ActionLoginSuccess     ActivityAction = "LOGIN_SUCCESS"
	ActionLoginFailed      ActivityAction = "LOGIN_FAILED"
	ActionLogout           ActivityAction = "LOGOUT"
	ActionPasswordChange   ActivityAction = "PASSWORD_CHANGE"
	ActionPasswordReset    ActivityAction = "PASSWORD_RESET"
	ActionEmailVerified    ActivityAction = "EMAIL_VERIFIED"
	ActionAccountBlocked   ActivityAction = "ACCOUNT_BLOCKED"
	ActionAccountUnblocked ActivityAction = "ACCOUNT_UNBLOCKED"
	ActionUserCreated      ActivityAction = "USER_CREATED"
	ActionUserUpdated      ActivityAction = "USER_UPDATED"
	ActionUserDeleted      ActivityAction = "USER_DELETED"
)

// Activity is one append-only audit log entry. UserID is nil when the actor is
// the system itself. Entries are never mutated or deleted by the application.
type Activity struct {
	ActivityID string         `json:"activityID"`
	UserID     *string        `json:"userID,omitempty"`
	Action     ActivityAction `json:"action"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	Device     string         `json:"device,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
