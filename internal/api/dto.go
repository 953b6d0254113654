package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/retracehq/retrace/internal/models"
)

// QuestionDTO is a poster-authored challenge question with its expected
// answer, accepted on item creation only.
type QuestionDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate validates a challenge question.
func (q QuestionDTO) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Question, validation.Required),
		validation.Field(&q.Answer, validation.Required),
	)
}

// CreateItemRequest is the request body for posting a report.
type CreateItemRequest struct {
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	City        string        `json:"city"`
	Area        string        `json:"area"`
	Landmark    string        `json:"landmark"`
	Keywords    []string      `json:"keywords"`
	Questions   []QuestionDTO `json:"questions"`
	PosterName  string        `json:"poster_name"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
}

// Validate validates the item payload. Challenge questions are only
// accepted on found items; a lost-item poster has nothing to quiz about.
func (r CreateItemRequest) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(models.TypeLost, models.TypeFound)),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.City, validation.Required),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Questions, validation.Each()),
	); err != nil {
		return err
	}
	if r.Type == models.TypeLost && len(r.Questions) > 0 {
		return validation.Errors{"questions": validation.NewError(
			"questions_on_lost_item", "challenge questions are only allowed on found items")}
	}
	return nil
}

func (r CreateItemRequest) toModel() *models.Item {
	questions := make([]models.Question, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = models.Question{Question: q.Question, Answer: q.Answer}
	}
	return &models.Item{
		Type:        r.Type,
		Category:    r.Category,
		Title:       r.Title,
		Description: r.Description,
		Location:    models.Location{City: r.City, Area: r.Area, Landmark: r.Landmark},
		Keywords:    r.Keywords,
		Questions:   questions,
		PosterName:  r.PosterName,
		Phone:       r.Phone,
		Email:       r.Email,
	}
}

// AnswerDTO is one submitted answer in a claim.
type AnswerDTO struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate validates a submitted answer.
func (a AnswerDTO) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Question, validation.Required),
		validation.Field(&a.Answer, validation.Required),
	)
}

// CreateClaimRequest is the request body for submitting a claim.
type CreateClaimRequest struct {
	ItemID        string      `json:"item_id"`
	ClaimantName  string      `json:"claimant_name"`
	ClaimantEmail string      `json:"claimant_email"`
	Answers       []AnswerDTO `json:"answers"`
}

// Validate validates the claim payload.
func (r CreateClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemID, validation.Required, is.UUIDv4),
		validation.Field(&r.ClaimantName, validation.Required),
		validation.Field(&r.ClaimantEmail, validation.Required, is.EmailFormat),
		validation.Field(&r.Answers, validation.Each()),
	)
}

// TransitionClaimRequest drives the claim state machine.
type TransitionClaimRequest struct {
	Status     string `json:"status"`
	ActorEmail string `json:"actor_email"`
}

// Validate validates the transition payload.
func (r TransitionClaimRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(models.ClaimApproved, models.ClaimRejected, models.ClaimSolved)),
		validation.Field(&r.ActorEmail, validation.Required, is.EmailFormat),
	)
}

// CreateUserRequest registers a notification-routing identity.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the user payload.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

// CreateItemResponse wraps the stored item with the number of match
// notifications dispatched during the synchronous discovery scan.
type CreateItemResponse struct {
	Item            *models.Item `json:"item"`
	MatchesNotified int          `json:"matches_notified"`
}

// ClaimStatusResponse summarizes a participant's claim on an item.
type ClaimStatusResponse struct {
	Submitted bool   `json:"submitted"`
	ClaimID   string `json:"claim_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Approved  bool   `json:"approved"`
}
