package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"locshare/internal/decode"
	"locshare/internal/domain"
	"locshare/internal/infra"
	"locshare/internal/locator"
)

// PeopleService answers position lookups. *locator.Locator implements it.
type PeopleService interface {
	AllPeople(ctx context.Context) ([]domain.SharedRecord, error)
	AuthenticatedPerson(ctx context.Context) (domain.SelfRecord, error)
	PersonByNickname(ctx context.Context, name string) (domain.SharedRecord, error)
	PersonByFullName(ctx context.Context, name string) (domain.SharedRecord, error)
}

// Handler serves the read-only people API.
type Handler struct {
	people PeopleService
}

// NewHandler creates a people API handler.
func NewHandler(people PeopleService) *Handler {
	return &Handler{people: people}
}

// Register mounts the v1 people routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/people", h.handleAllPeople)
	r.Get("/self", h.handleSelf)
	r.Get("/people/nickname/{name}", h.handleByNickname)
	r.Get("/people/fullname/{name}", h.handleByFullName)
}

type peopleResponse struct {
	People []domain.SharedRecord `json:"people"`
	Count  int                   `json:"count"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleAllPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.people.AllPeople(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, peopleResponse{People: people, Count: len(people)})
}

func (h *Handler) handleSelf(w http.ResponseWriter, r *http.Request) {
	rec, err := h.people.AuthenticatedPerson(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleByNickname(w http.ResponseWriter, r *http.Request) {
	rec, err := h.people.PersonByNickname(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleByFullName(w http.ResponseWriter, r *http.Request) {
	rec, err := h.people.PersonByFullName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// errorStatus maps lookup and refresh failures onto HTTP responses.
func errorStatus(err error) (int, string) {
	var se *infra.StatusError
	switch {
	case errors.Is(err, locator.ErrPersonNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, decode.ErrSessionExpired), errors.Is(err, decode.ErrAuthFieldMissing):
		return http.StatusBadGateway, "session_rejected"
	case errors.Is(err, infra.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.As(err, &se):
		return http.StatusBadGateway, "upstream_status"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	}
	if kind := decode.Kind(err); kind != "other" {
		return http.StatusBadGateway, "decode_" + kind
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		slog.WarnContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", slog.Any("error", err))
	}
}

// HealthFunc reports readiness. A nil error means healthy.
type HealthFunc func(ctx context.Context) error

type healthResponse struct {
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func healthHandler(check HealthFunc, updatedAt func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if updatedAt != nil {
			if ts := updatedAt(); !ts.IsZero() {
				resp.UpdatedAt = &ts
			}
		}
		if check != nil {
			if err := check(r.Context()); err != nil {
				resp.Status = "degraded"
				resp.Error = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
