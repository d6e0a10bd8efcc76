// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/steamybeans/api/internal/core"
	"github.com/steamybeans/api/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/user", h.Create)
	r.Get("/loginuser/{email}", h.GetByEmail)
	r.Get("/alluser", h.ListAll)
	r.Put("/user/make-moderator/{email}", h.Promote)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			core.RequestEntityTooLarge(w)
			return
		}
		core.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByEmail(r.Context(), emailParam(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Promote(r.Context(), emailParam(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError

	switch {
	case errors.As(err, &vErr):
		core.ValidationFailed(w, vErr)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.Conflict(w, "email")
	default:
		msg := "user request failed"
		if core.IsPersistenceError(err) {
			msg = "user store unavailable"
		}
		slog.ErrorContext(r.Context(), msg,
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"trace_id", core.TraceIDFromContext(r.Context()),
		)
		core.JSONError(w, core.InternalError(err))
	}
}

// emailParam reads the {email} path segment. chi matches on RawPath when
// the request carried one, so only then is the segment still escaped.
func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
