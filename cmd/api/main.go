package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clipforge/internal/generation"
	"clipforge/internal/http/handlers"
	httpapi "clipforge/internal/http/httpapi"
	"clipforge/internal/infra"
	"clipforge/internal/metrics"
	"clipforge/internal/pipeline"
	"clipforge/internal/providers/mirelo"
	"clipforge/internal/providers/runware"
	"clipforge/internal/storage"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// The video key is mandatory. The sound key is optional at startup,
	// requests asking for sound without it are rejected per request.
	if err := cfg.RequireCredentials(false); err != nil {
		logger.Fatal().Err(err).Msg("missing configuration")
	}

	metrics.Register()

	uploads, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare upload directory")
	}
	outputs, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	videoClient, err := runware.NewClient(runware.Options{
		APIKey:       cfg.RunwareAPIKey,
		BaseURL:      cfg.RunwareBaseURL,
		Model:        cfg.RunwareModel,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build video client")
	}

	coordinator := &pipeline.Coordinator{
		Video:      videoClient,
		Fetcher:    generation.NewFetcher(http.DefaultClient, logger),
		Logger:     logger,
		MaxWorkers: cfg.MaxWorkers,
		Timeout:    cfg.GenerationTimeout,
	}
	if cfg.MireloAPIKey != "" {
		soundClient, err := mirelo.NewClient(mirelo.Options{
			APIKey:  cfg.MireloAPIKey,
			BaseURL: cfg.MireloBaseURL,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build sound client")
		}
		coordinator.Sound = soundClient
	}

	app := handlers.NewApp(cfg, logger, coordinator, uploads, outputs)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
