package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retracehq/retrace/internal/apperr"
	"github.com/retracehq/retrace/internal/claims"
	"github.com/retracehq/retrace/internal/match"
	"github.com/retracehq/retrace/internal/models"
	"github.com/retracehq/retrace/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	items  store.ItemStore
	users  store.UserStore
	notifs store.NotificationStore
	engine *match.Engine
	claims *claims.Service
}

// NewHandler creates a new Handler.
func NewHandler(items store.ItemStore, users store.UserStore, notifs store.NotificationStore,
	engine *match.Engine, claimSvc *claims.Service) *Handler {
	return &Handler{items: items, users: users, notifs: notifs, engine: engine, claims: claimSvc}
}

// CreateItem handles POST /api/items. Match discovery runs synchronously
// after the item is persisted; discovery failures are logged but never fail
// the creation.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	item := req.toModel()
	if err := h.items.CreateItem(item); err != nil {
		writeError(w, err)
		return
	}

	notified, err := h.engine.OnItemCreated(r.Context(), item)
	if err != nil {
		slog.Error("match discovery failed", slog.String("item_id", item.ID),
			slog.String("error", err.Error()))
	}

	writeJSON(w, http.StatusCreated, CreateItemResponse{Item: item, MatchesNotified: notified})
}

// ListItems handles GET /api/items with optional type/category/city/area/
// status filters.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.items.ListItems(store.ItemFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Area:     q.Get("area"),
		Status:   q.Get("status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// GetItem handles GET /api/items/{id}. Contact fields are excluded from the
// item's JSON form.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetItem(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{id}. Claims on the item cascade.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.items.DeleteItem(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateClaim handles POST /api/claims.
func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	answers := make([]models.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = models.Answer{Question: a.Question, Answer: a.Answer}
	}
	claim, err := h.claims.Submit(r.Context(), claims.SubmitRequest{
		ItemID:        req.ItemID,
		ClaimantName:  req.ClaimantName,
		ClaimantEmail: req.ClaimantEmail,
		Answers:       answers,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

// GetClaim handles GET /api/claims/{id}.
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.claims.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// ClaimStatus handles GET /api/claims/status?item_id=&email=.
func (h *Handler) ClaimStatus(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item_id")
	email := r.URL.Query().Get("email")
	if itemID == "" || email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("item_id and email are required"))
		return
	}
	claim, err := h.claims.StatusFor(r.Context(), itemID, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusOK, ClaimStatusResponse{Submitted: false})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClaimStatusResponse{
		Submitted: true,
		ClaimID:   claim.ID,
		Status:    claim.Status,
		Approved:  claim.Status == models.ClaimApproved,
	})
}

// TransitionClaim handles PATCH /api/claims/{id}.
func (h *Handler) TransitionClaim(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req TransitionClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}
	claim, err := h.claims.Transition(r.Context(), chi.URLParam(r, "id"), req.ActorEmail, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// ClaimContact handles GET /api/claims/{id}/contact?email=.
func (h *Handler) ClaimContact(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("email is required"))
		return
	}
	contact, err := h.claims.Contact(r.Context(), chi.URLParam(r, "id"), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// ListNotifications handles GET /api/notifications?email=&unread=&type=.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("email is required"))
		return
	}
	user, err := h.users.UserByEmail(email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Unknown routing identity simply has no notifications.
			writeJSON(w, http.StatusOK, map[string]any{"notifications": []models.Notification{}})
			return
		}
		writeError(w, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifs, err := h.notifs.ListNotifications(user.ID, unreadOnly, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifs})
}

// MarkNotificationRead handles PATCH /api/notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifs.MarkNotificationRead(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email}
	if err := h.users.CreateUser(user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
