// Package httpapi wires the HTTP routes and middleware chain.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clipforge/internal/http/handlers"
	"clipforge/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.Origins),
	)

	r.Get("/", app.Index)
	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)).
			Post("/generate-videos", app.GenerateVideos)
		r.Get("/download/{filename}", app.DownloadFile)
		r.Get("/download-all", app.DownloadAll)
	})

	return r
}
