package models

import "time"

// Activity is the database row representation of one audit log entry.
// Metadata is stored as raw JSONB bytes.
type Activity struct {
	ActivityID string    `db:"activity_id"`
	UserID     *string   `db:"user_id"`
	Action     string    `db:"action"`
	IPAddress  string    `db:"ip_address"`
	Device     string    `db:"device"`
	Metadata   []byte    `db:"metadata"`
	CreatedAt  time.Time `db:"created_at"`
}
