package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oneminute/oneminute-go/internal/middleware"
	"github.com/oneminute/oneminute-go/internal/model"
	"github.com/oneminute/oneminute-go/internal/service"
)

// SessionHandler handles HTTP requests for generator sessions.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// HandleCreate handles POST /api/v1/sessions requests.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/v1/session requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Get)
}

// HandleSetLength handles PUT /api/v1/session/length requests.
func (h *SessionHandler) HandleSetLength(w http.ResponseWriter, r *http.Request) {
	var req model.SetLengthRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, id string) (model.SessionResponse, error) {
		return h.service.SetLength(ctx, id, req)
	})
}

// HandleSetOptions handles PUT /api/v1/session/options requests.
func (h *SessionHandler) HandleSetOptions(w http.ResponseWriter, r *http.Request) {
	var req model.SetOptionsRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	h.respond(w, r, func(ctx context.Context, id string) (model.SessionResponse, error) {
		return h.service.SetOptions(ctx, id, req)
	})
}

// HandleToggleOption handles POST /api/v1/session/options/{option}/toggle requests.
func (h *SessionHandler) HandleToggleOption(w http.ResponseWriter, r *http.Request) {
	option := chi.URLParam(r, "option")
	h.respond(w, r, func(ctx context.Context, id string) (model.SessionResponse, error) {
		return h.service.ToggleOption(ctx, id, option)
	})
}

// HandleRegenerate handles POST /api/v1/session/regenerate requests.
func (h *SessionHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Regenerate)
}

// HandleToggleVisibility handles POST /api/v1/session/visibility requests.
func (h *SessionHandler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.ToggleVisibility)
}

// HandleCopy handles POST /api/v1/session/copy requests.
func (h *SessionHandler) HandleCopy(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Copy)
}

// HandleDelete handles DELETE /api/v1/session requests.
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (model.SessionResponse, error)) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := fn(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
