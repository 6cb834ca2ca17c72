package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/repo-explorer/internal/apperror"
	"github.com/sakif/repo-explorer/internal/middleware"
	"github.com/sakif/repo-explorer/internal/model"
)

// templateFuncs are available in every page template.
var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	// pageLabel renders "Page N of M", or "Page N of ?" when the total is unknown.
	"pageLabel": func(s model.SearchState) string {
		if !s.TotalKnown {
			return fmt.Sprintf("Page %d of ?", s.Page)
		}
		return fmt.Sprintf("Page %d of %d", s.Page, s.TotalPages)
	},
}

// ExplorerHandler serves the explorer page and its form posts.
//
// Every form post runs the operation, then redirects back to GET /
// (post/redirect/get), so reloading the page never repeats a lookup.
type ExplorerHandler struct {
	svc       ExplorerService
	templates *template.Template
	logger    *slog.Logger
}

// NewExplorerHandler parses templates/base.html and templates/explorer.html from files.
func NewExplorerHandler(files fs.FS, svc ExplorerService, logger *slog.Logger) (*ExplorerHandler, error) {
	tmpl, err := template.New("explorer").Funcs(templateFuncs).ParseFS(files,
		"templates/base.html",
		"templates/explorer.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &ExplorerHandler{
		svc:       svc,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// HandlePage renders the explorer for the caller's session.
//
// HTTP: GET /
func (h *ExplorerHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.SessionIDFromContext(r.Context())

	snap, err := h.svc.Snapshot(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, snap)
}

// HandleSearch submits a new search.
//
// HTTP: POST /search   form: username
func (h *ExplorerHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	// The username is passed through as typed; an empty one is legal.
	if _, err := h.svc.SubmitSearch(r.Context(), id, r.PostFormValue("username")); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSort changes the sort order, keeping the current page.
//
// HTTP: POST /sort   form: order=asc|desc
func (h *ExplorerHandler) HandleSort(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	if _, err := h.svc.ChangeSortOrder(r.Context(), id, r.PostFormValue("order")); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandlePageChange moves to another page.
//
// HTTP: POST /page   form: page
func (h *ExplorerHandler) HandlePageChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, _ := middleware.SessionIDFromContext(r.Context())

	page, err := strconv.Atoi(r.PostFormValue("page"))
	if err != nil {
		h.fail(w, apperror.ValidationFailed("page", "page must be a number"))
		return
	}

	if _, err := h.svc.ChangePage(r.Context(), id, page); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleReset forgets the session's search.
//
// HTTP: POST /reset
func (h *ExplorerHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.SessionIDFromContext(r.Context())

	if err := h.svc.Forget(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ExplorerHandler) render(w http.ResponseWriter, snap model.Snapshot) {
	data := map[string]interface{}{
		"Title":    "GitHub Repository Explorer",
		"Snapshot": snap,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// fail answers a page request with a plain-text error.
func (h *ExplorerHandler) fail(w http.ResponseWriter, err error) {
	status, _ := errorStatus(err)
	msg := "Internal Server Error"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	} else {
		h.logger.Error("page request failed", slog.String("error", err.Error()))
	}
	http.Error(w, msg, status)
}
