package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"clipforge/internal/pipeline"
)

// maxMultipartMemory bounds how much of a parsed form is held in memory;
// larger uploads spill to temp files.
const maxMultipartMemory = 32 << 20

// GenerateVideos accepts a multipart batch of images with optional parallel
// prompts, runs both generation stages, and returns the per-item report.
// Uploaded files are removed once the batch finishes.
func (a *App) GenerateVideos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no files uploaded")
		return
	}

	prompts := r.MultipartForm.Value["prompts"]
	addSound := true
	if v := r.FormValue("add_sound"); v != "" {
		addSound = strings.EqualFold(v, "true")
	}

	if err := a.Config.RequireCredentials(addSound); err != nil {
		a.error(w, http.StatusServiceUnavailable, "configuration", err.Error())
		return
	}

	var (
		items       []pipeline.Item
		uploadedKey []string
	)
	cleanup := func() {
		for _, key := range uploadedKey {
			_ = a.Uploads.Remove(key)
		}
	}

	for i, header := range files {
		if header.Filename == "" || !pipeline.AllowedImageExtension(header.Filename) {
			cleanup()
			a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid file type: %s", header.Filename))
			return
		}

		src, err := header.Open()
		if err != nil {
			cleanup()
			a.error(w, http.StatusInternalServerError, "internal", "failed to read upload")
			return
		}
		key := uuid.NewString() + "_" + filepath.Base(header.Filename)
		path, err := a.Uploads.Save(key, src)
		src.Close()
		if err != nil {
			cleanup()
			a.Logger.Error().Err(err).Str("filename", header.Filename).Msg("handlers: saving upload failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to save upload")
			return
		}
		uploadedKey = append(uploadedKey, key)

		item := pipeline.Item{Index: i, ImagePath: path}
		if i < len(prompts) {
			item.Prompt = strings.TrimSpace(prompts[i])
		}
		items = append(items, item)
	}
	defer cleanup()

	report, err := a.Runner.Run(r.Context(), items, pipeline.RunOptions{
		OutputDir: a.Outputs.BasePath(),
		WithSound: addSound,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: batch run failed")
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	a.json(w, http.StatusOK, report)
}
