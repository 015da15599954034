package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"clipforge/pkg/zip"
)

// DownloadFile serves one generated clip as an attachment.
func (a *App) DownloadFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	path, err := a.Outputs.Resolve(filename)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid filename")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		a.error(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

// DownloadAll streams every generated mp4 as a single zip archive.
func (a *App) DownloadAll(w http.ResponseWriter, r *http.Request) {
	names, err := a.Outputs.ListByExtension(".mp4")
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: listing generated clips failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list files")
		return
	}
	if len(names) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no generated files")
		return
	}

	archiveName := fmt.Sprintf("clips_%s.zip", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName))
	if err := zip.WriteArchive(w, a.Outputs.BasePath(), names); err != nil {
		// Headers are already written, the client sees a truncated archive.
		a.Logger.Error().Err(err).Msg("handlers: writing archive failed")
	}
}
