package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/generator"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the workspace path after the route prefix.
// Supports encoded slashes from OpenAPI clients (e.g. csv%2Fplan.csv).
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListCharts handles GET /api/charts.
//
//	@Summary		List rendered and failed charts
//	@Tags			charts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			profile	query		string	false	"Filter by profile"
//	@Param			status	query		string	false	"Filter by status"	Enums(rendered, failed)
//	@Success		200		{object}	ChartListResponse
//	@Security		BearerAuth
//	@Router			/charts [get]
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListCharts(q.Get("profile"), q.Get("status"), limit, offset)
	if err != nil {
		slog.Error("list charts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ChartListResponse{Charts: items, Total: total})
}

// GetChart handles GET /api/charts/*.
//
//	@Summary		Get the chart record of one source file
//	@Tags			charts
//	@Produce		json
//	@Param			path	path		string	true	"Source path"
//	@Success		200		{object}	ChartRecord
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/charts/{path} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	src := wildcardPath(r)
	if src == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	rec, err := h.svc.GetChart(src)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get chart failed", slog.String("path", src), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListProfiles handles GET /api/profiles.
//
//	@Summary		List configured chart profiles
//	@Tags			profiles
//	@Produce		json
//	@Success		200	{object}	ProfileListResponse
//	@Security		BearerAuth
//	@Router			/profiles [get]
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProfileListResponse{Profiles: h.svc.Profiles()})
}

// Render handles POST /api/render.
//
//	@Summary		Render every export in the workspace
//	@Tags			charts
//	@Produce		json
//	@Param			force	query		bool	false	"Re-render unchanged files"
//	@Param			only	query		string	false	"Restrict to one source path (repeatable)"
//	@Success		200		{object}	RenderResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force, _ := strconv.ParseBool(q.Get("force"))

	sum, err := h.svc.Render(r.Context(), generator.BatchOptions{Force: force, Only: q["only"]})
	if err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := sum.Results
	if results == nil {
		results = []ChartRecord{}
	}
	writeJSON(w, http.StatusOK, RenderResponse{
		Rendered:  sum.Rendered,
		Skipped:   sum.Skipped,
		Failed:    sum.Failed,
		Unmatched: sum.Unmatched,
		Removed:   sum.Removed,
		Results:   results,
	})
}
