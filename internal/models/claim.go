package models

import "time"

// Claim statuses.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
	ClaimSolved   = "solved"
)

// Answer is a claimant's response to one challenge question.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GradedAnswer is an answer with the verification scorer's verdict.
type GradedAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
}

// Claim is a counter-party's attempt to connect over someone else's item.
// PosterEmail snapshots the item poster's contact identity at submission
// time; ClaimantEmail identifies the counter-party. Which of the two is the
// real-world finder depends on the item's disposition.
type Claim struct {
	ID            string         `json:"id"`
	ItemID        string         `json:"item_id"`
	PosterEmail   string         `json:"-"`
	ClaimantName  string         `json:"claimant_name"`
	ClaimantEmail string         `json:"claimant_email"`
	Answers       []GradedAnswer `json:"answers"`
	Confidence    int            `json:"confidence"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Active reports whether the claim still blocks a new claim from the same
// claimant on the same item.
func (c *Claim) Active() bool {
	return c.Status != ClaimRejected
}
