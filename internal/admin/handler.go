// Package admin exposes administrative operations over the directory:
// role assignment and catalog listings. All routes sit behind the gate
// with the ADMIN permission.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/securegate/securegate/internal/directory"
	"github.com/securegate/securegate/internal/platform/httpx"
)

// Handler wires HTTP endpoints for administrative flows.
type Handler struct {
	logger    *slog.Logger
	dir       directory.Repository
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, dir directory.Repository) *Handler {
	return &Handler{logger: logger, dir: dir, validator: validator.New()}
}

// MountRoutes registers admin routes on the provided router. Permission
// enforcement happens in the gate before these handlers run.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/assign-role", h.handleAssignRole)
	r.Get("/roles", h.handleListRoles)
	r.Get("/permissions", h.handleListPermissions)
}

type assignRoleRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	RoleID int64 `json:"roleId" validate:"required,gt=0"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.dir.AssignRole(r.Context(), req.UserID, req.RoleID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		if h.logger != nil {
			h.logger.Error("assign role", slog.Int64("user", req.UserID), slog.Int64("role", req.RoleID), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statusResponse{Status: "Role assigned"})
}

type roleView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.dir.ListRoles(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list roles", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	views := make([]roleView, len(roles))
	for i, role := range roles {
		views[i] = roleView{ID: role.ID, Name: role.Name}
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.dir.ListPermissions(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list permissions", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	views := make([]roleView, len(perms))
	for i, perm := range perms {
		views[i] = roleView{ID: perm.ID, Name: perm.Name}
	}
	httpx.JSON(w, http.StatusOK, views)
}
