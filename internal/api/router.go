package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(h *Handler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Item reports.
	r.Post("/items", h.CreateItem)
	r.Get("/items", h.ListItems)
	r.Get("/items/{id}", h.GetItem)
	r.Delete("/items/{id}", h.DeleteItem)

	// Claims. The status route must precede the id route in intent but chi
	// matches literals before wildcards, so the order here is cosmetic.
	r.Post("/claims", h.CreateClaim)
	r.Get("/claims/status", h.ClaimStatus)
	r.Get("/claims/{id}", h.GetClaim)
	r.Patch("/claims/{id}", h.TransitionClaim)
	r.Get("/claims/{id}/contact", h.ClaimContact)

	// Notifications (pull model).
	r.Get("/notifications", h.ListNotifications)
	r.Patch("/notifications/{id}/read", h.MarkNotificationRead)

	// Routing identities.
	r.Post("/users", h.CreateUser)

	return r
}
