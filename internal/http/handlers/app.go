package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"clipforge/internal/infra"
	"clipforge/internal/pipeline"
	"clipforge/internal/storage"
)

// BatchRunner executes a two-stage generation batch. It is satisfied by
// *pipeline.Coordinator and stubbed in tests.
type BatchRunner interface {
	Run(ctx context.Context, items []pipeline.Item, opts pipeline.RunOptions) (*pipeline.Report, error)
}

type App struct {
	Config  *infra.Config
	Logger  zerolog.Logger
	Runner  BatchRunner
	Uploads *storage.FileStore
	Outputs *storage.FileStore
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, runner BatchRunner, uploads, outputs *storage.FileStore) *App {
	return &App{
		Config:  cfg,
		Logger:  logger,
		Runner:  runner,
		Uploads: uploads,
		Outputs: outputs,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
