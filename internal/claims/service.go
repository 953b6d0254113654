// Package claims implements claim submission, the claim lifecycle state
// machine, and the contact-disclosure gate.
package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/models"
	"github.com/retracehq/retrace/internal/store"
	"github.com/retracehq/retrace/internal/verify"
)

// transitions is the claim lifecycle graph. rejected and solved are
// terminal.
var transitions = map[string][]string{
	models.ClaimPending:  {models.ClaimApproved, models.ClaimRejected},
	models.ClaimApproved: {models.ClaimSolved},
}

// Service coordinates claim persistence, grading, and authorization.
type Service struct {
	items  store.ItemStore
	claims store.ClaimStore
	users  store.UserStore
	notifs store.NotificationStore
	logger *slog.Logger
}

// NewService creates a claim service.
func NewService(items store.ItemStore, claims store.ClaimStore, users store.UserStore,
	notifs store.NotificationStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, claims: claims, users: users, notifs: notifs, logger: logger}
}

// SubmitRequest carries a counter-party's claim on an item.
type SubmitRequest struct {
	ItemID        string
	ClaimantName  string
	ClaimantEmail string
	Answers       []models.Answer
}

// Submit creates a claim in pending state. For found items the claimant's
// answers are graded against the poster's challenge questions; for lost
// items the counter-party is reporting a sighting, needs no quiz, and gets
// maximum confidence. Self-claims and duplicate active claims are rejected
// as conflicts.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Claim, error) {
	item, err := s.items.GetItem(req.ItemID)
	if err != nil {
		return nil, err
	}

	if item.Email != "" && strings.EqualFold(item.Email, req.ClaimantEmail) {
		return nil, fmt.Errorf("%w: cannot claim your own item", apperr.ErrConflict)
	}
	if _, err := s.claims.ActiveClaim(item.ID, req.ClaimantEmail); err == nil {
		return nil, fmt.Errorf("%w: an active claim already exists for this item", apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	var confidence int
	var graded []models.GradedAnswer
	if item.Type == models.TypeLost {
		confidence = verify.MaxConfidence
		graded = make([]models.GradedAnswer, 0, len(req.Answers))
		for _, a := range req.Answers {
			graded = append(graded, models.GradedAnswer{Question: a.Question, Answer: a.Answer, Correct: true})
		}
	} else {
		confidence, graded = verify.Grade(item.Questions, req.Answers)
	}

	claim := &models.Claim{
		ItemID:        item.ID,
		PosterEmail:   item.Email,
		ClaimantName:  req.ClaimantName,
		ClaimantEmail: req.ClaimantEmail,
		Answers:       graded,
		Confidence:    confidence,
		Status:        models.ClaimPending,
	}
	if err := s.claims.CreateClaim(claim); err != nil {
		return nil, err
	}

	s.notifyPoster(item, claim)
	return claim, nil
}

// Get returns a claim by id.
func (s *Service) Get(_ context.Context, id string) (*models.Claim, error) {
	return s.claims.GetClaim(id)
}

// StatusFor returns the most recent claim on an item that involves the
// given email on either side.
func (s *Service) StatusFor(_ context.Context, itemID, email string) (*models.Claim, error) {
	return s.claims.ClaimForParticipant(itemID, email)
}

// Transition moves a claim along the lifecycle graph. Only the party
// holding authority for the claim may drive it; anyone else gets
// apperr.ErrForbidden. Marking a claim solved also retires the underlying
// item from active listings.
func (s *Service) Transition(ctx context.Context, claimID, actorEmail, target string) (*models.Claim, error) {
	claim, err := s.claims.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(claim.ItemID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(claim.Status, target) {
		return nil, fmt.Errorf("%w: cannot move claim from %s to %s", apperr.ErrConflict, claim.Status, target)
	}

	auth := Resolve(item)
	if !strings.EqualFold(actorEmail, auth.Email) {
		return nil, fmt.Errorf("%w: only the %s may %s this claim", apperr.ErrForbidden, auth.Role, target)
	}

	// The conditional write catches a transition racing past the check above.
	if err := s.claims.UpdateClaimStatus(claim.ID, claim.Status, target); err != nil {
		return nil, err
	}
	claim.Status = target

	if target == models.ClaimSolved {
		if err := s.items.UpdateItemStatus(item.ID, models.StatusResolved); err != nil {
			s.logger.Error("claims: item resolve failed",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()))
		}
	}

	s.notifyClaimant(item, claim)
	return claim, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ContactDetails are the poster's private contact fields, released only
// through Contact.
type ContactDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Contact discloses the item poster's contact details to a participant of
// an approved (or solved) claim. This is the only path by which the private
// fields leave the service.
func (s *Service) Contact(ctx context.Context, claimID, requesterEmail string) (*ContactDetails, error) {
	claim, err := s.claims.GetClaim(claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status != models.ClaimApproved && claim.Status != models.ClaimSolved {
		return nil, fmt.Errorf("%w: claim is not approved", apperr.ErrForbidden)
	}
	if !strings.EqualFold(requesterEmail, claim.ClaimantEmail) &&
		!strings.EqualFold(requesterEmail, claim.PosterEmail) {
		return nil, fmt.Errorf("%w: not a participant of this claim", apperr.ErrForbidden)
	}

	item, err := s.items.GetItem(claim.ItemID)
	if err != nil {
		return nil, err
	}
	return &ContactDetails{Name: item.PosterName, Phone: item.Phone, Email: item.Email}, nil
}

// notifyPoster sends a best-effort claim_event notification to the item
// poster about a new claim.
func (s *Service) notifyPoster(item *models.Item, claim *models.Claim) {
	s.sendClaimEvent(item.Email, item,
		"New claim received",
		fmt.Sprintf("%s submitted a claim on %q with %d%% confidence.", claim.ClaimantName, item.Title, claim.Confidence))
}

// notifyClaimant tells the counter-party about a status decision.
func (s *Service) notifyClaimant(item *models.Item, claim *models.Claim) {
	s.sendClaimEvent(claim.ClaimantEmail, item,
		fmt.Sprintf("Claim %s", claim.Status),
		fmt.Sprintf("Your claim on %q is now %s.", item.Title, claim.Status))
}

func (s *Service) sendClaimEvent(email string, item *models.Item, title, message string) {
	if email == "" {
		return
	}
	user, err := s.users.UserByEmail(email)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Error("claims: user lookup failed", slog.String("error", err.Error()))
		}
		return
	}
	if _, err := s.notifs.InsertNotification(&models.Notification{
		UserID:  user.ID,
		Type:    models.NotifClaimEvent,
		Title:   title,
		Message: message,
		ItemID:  item.ID,
	}); err != nil {
		s.logger.Error("claims: notification write failed", slog.String("error", err.Error()))
	}
}
