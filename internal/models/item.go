// Package models defines the domain types for Retrace.
package models

import "time"

// Item dispositions.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Item moderation statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusResolved = "resolved"
)

// Question is a poster-authored challenge question with its expected answer.
// Only meaningful on found items: a lost-item poster has nothing to quiz about.
// The expected answer is never serialized.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"-"`
}

// Location describes where an item was lost or found.
type Location struct {
	City     string `json:"city"`
	Area     string `json:"area"`
	Landmark string `json:"landmark,omitempty"`
}

// Item represents a lost-or-found report. Phone and Email are the poster's
// private contact details; they are excluded from JSON and only surfaced
// through the claim contact-disclosure path.
type Item struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    Location   `json:"location"`
	Keywords    []string   `json:"keywords,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
	PosterName  string     `json:"poster_name"`
	Phone       string     `json:"-"`
	Email       string     `json:"-"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OppositeType returns the disposition a matching candidate must have.
func OppositeType(t string) string {
	if t == TypeLost {
		return TypeFound
	}
	return TypeLost
}
