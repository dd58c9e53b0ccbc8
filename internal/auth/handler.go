package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/securegate/securegate/internal/platform/httpx"
)

// Handler wires the HTTP endpoint for the login flow.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	throttle  *Throttle
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. throttle may be nil.
func NewHandler(logger *slog.Logger, service *Service, throttle *Throttle) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		throttle:  throttle,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	allowed, err := h.throttle.Allow(r.Context(), req.Username)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("login throttle check", slog.Any("error", err))
		}
		allowed = true
	}
	if !allowed {
		httpx.RespondError(w, httpx.ErrTooManyAttempts)
		return
	}

	raw, err := h.service.Login(r.Context(), req.Username, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		if errors.Is(err, httpx.ErrInvalidLogin) {
			if terr := h.throttle.RecordFailure(r.Context(), req.Username); terr != nil && h.logger != nil {
				h.logger.Warn("record login failure", slog.Any("error", terr))
			}
		} else if h.logger != nil {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	if terr := h.throttle.Reset(r.Context(), req.Username); terr != nil && h.logger != nil {
		h.logger.Warn("reset login throttle", slog.Any("error", terr))
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Token: raw})
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
