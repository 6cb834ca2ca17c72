package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/middleware"
	"github.com/sakif/repo-explorer/internal/model"
)

// APIHandler exposes the explorer as JSON.
//
// Session endpoints always answer 200 with a Snapshot: a failed lookup is a
// state of the session, reported in result.error. The stateless lookup
// endpoint answers 502 when the listing request fails.
type APIHandler struct {
	svc    ExplorerService
	logger *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(svc ExplorerService, logger *slog.Logger) *APIHandler {
	return &APIHandler{svc: svc, logger: logger}
}

type searchRequest struct {
	Username string `json:"username"`
}

type sortRequest struct {
	Order string `json:"order"`
}

type pageRequest struct {
	Page *int `json:"page"`
}

// HandleSession returns the caller's session.
//
// HTTP: GET /api/session
func (h *APIHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.SessionIDFromContext(r.Context())

	snap, err := h.svc.Snapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleSearch submits a search in the caller's session.
//
// HTTP: POST /api/session/search   body: {"username": "octocat"}
func (h *APIHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	snap, err := h.svc.SubmitSearch(r.Context(), id, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleSort changes the sort order of the caller's session.
//
// HTTP: POST /api/session/sort   body: {"order": "asc"}
func (h *APIHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	snap, err := h.svc.ChangeSortOrder(r.Context(), id, req.Order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandlePage moves the caller's session to another page.
//
// HTTP: POST /api/session/page   body: {"page": 2}
func (h *APIHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}
	if req.Page == nil {
		writeError(w, apperror.ValidationFailed("page", "page is required"))
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	snap, err := h.svc.ChangePage(r.Context(), id, *req.Page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleLookup runs one stateless lookup.
//
// HTTP: GET /api/users/{username}/repos?page=1&direction=desc
func (h *APIHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, apperror.ValidationFailed("page", "page must be a number"))
			return
		}
		page = n
	}

	sort := model.SortDescending
	if v := r.URL.Query().Get("direction"); v != "" {
		s, err := model.ParseSortOrder(v)
		if err != nil {
			writeError(w, apperror.ValidationFailed("direction", "direction must be asc or desc"))
			return
		}
		sort = s
	}

	snap := h.svc.Lookup(r.Context(), username, page, sort)
	if snap.Result.Outcome == model.OutcomeFailure {
		h.logger.Debug("lookup failed", slog.String("username", username), slog.Int("page", page))
		writeError(w, apperror.LookupFailed(nil))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleHealth reports liveness.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
