// Package resource serves the protected sample resource. Access requires
// the READ_DATA permission, enforced by the gate.
package resource

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/securegate/securegate/internal/gate"
	"github.com/securegate/securegate/internal/platform/httpx"
)

// Handler serves the protected resource payload.
type Handler struct{}

// NewHandler constructs a Handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers resource routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
}

type resourcePayload struct {
	Message  string       `json:"message"`
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	Data     resourceData `json:"data"`
}

type resourceData struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user := gate.PrincipalFromContext(r.Context())
	if user == nil {
		// Unreachable behind the gate; guards direct mounting mistakes.
		httpx.RespondError(w, httpx.ErrMissingCredential)
		return
	}
	httpx.JSON(w, http.StatusOK, resourcePayload{
		Message:  "You have access to this resource",
		UserID:   user.ID,
		Username: user.Username,
		Data: resourceData{
			Content:   "This is protected resource data",
			Timestamp: time.Now().UTC(),
		},
	})
}
