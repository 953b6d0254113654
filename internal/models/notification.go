package models

import "time"

// Notification types.
const (
	NotifMatchFound = "match_found"
	NotifClaimEvent = "claim_event"
	NotifSystem     = "system"
)

// Notification is a one-way message to a user, pulled by the client.
// ItemID references the item that caused the notification (for matches, the
// candidate on the other side); SourceItemID references the recipient's own
// item. At most one match_found notification may exist per
// (user, caused-by-item) pair; the store enforces that.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ItemID       string    `json:"item_id,omitempty"`
	SourceItemID string    `json:"source_item_id,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is a notification-routing identity. Authentication lives outside this
// service; the user table only maps contact emails to stable IDs.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
