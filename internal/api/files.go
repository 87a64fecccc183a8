package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/gantt/internal/apperr"
)

const maxUploadBytes = 50 << 20 // 50 MB

// ServeImage handles GET /api/images/*.
//
//	@Summary		Download a rendered chart image
//	@Tags			charts
//	@Produce		image/svg+xml,image/png
//	@Param			path	path	string	true	"Image path, e.g. diagrams/plan.svg"
//	@Success		200
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/images/{path} [get]
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	rel := wildcardPath(r)
	abs, err := h.svc.ImagePath(rel)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if strings.HasSuffix(abs, ".svg") {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	http.ServeFile(w, r, abs)
}

// UploadExport handles POST /api/exports (multipart/form-data, fields "file"
// and "profile"). The export is stored in the profile's CSV directory and
// rendered immediately.
//
//	@Summary		Upload an issue export and render it
//	@Tags			charts
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"CSV or XLSX export"
//	@Param			profile	formData	string	true	"Profile name"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	UploadResponse
//	@Security		BearerAuth
//	@Router			/exports [post]
func (h *Handler) UploadExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	// Only plain names; the directory comes from the profile.
	name := filepath.Base(filepath.Clean(header.Filename))
	if name == "." || name == ".." || name != header.Filename {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename: "+header.Filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	rec, err := h.svc.SaveExport(r.Context(), r.FormValue("profile"), name, data)
	resp := UploadResponse{Filename: name, Size: int64(len(data)), Chart: rec}
	var renderErr *apperr.RenderError
	switch {
	case err == nil:
		resp.URL = "/api/images/" + rec.Output
		writeJSON(w, http.StatusCreated, resp)
	case errors.As(err, &renderErr):
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrUnsupportedFormat), errors.Is(err, apperr.ErrNoProfile):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
