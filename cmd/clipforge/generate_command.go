package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/generation"
	"clipforge/internal/infra"
	"clipforge/internal/pipeline"
	"clipforge/internal/providers/mirelo"
	"clipforge/internal/providers/runware"
)

func newGenerateCommand() *cobra.Command {
	var (
		outputDir  string
		maxWorkers int
		skipSound  bool
		prompts    []string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate IMAGE...",
		Short: "Generate video clips from one or more images",
		Long: `Generate a short video clip for every input image, then optionally add
sound effects to each clip. Images are processed in parallel and results
are written to the output directory as video_NN.mp4 and
sound_video_NN_M.mp4.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), generateOptions{
				images:     args,
				outputDir:  outputDir,
				maxWorkers: maxWorkers,
				withSound:  !skipSound,
				prompts:    prompts,
				timeout:    timeout,
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for generated clips (default $OUTPUT_DIR or ./output)")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Parallel generations (default $MAX_WORKERS or 3)")
	cmd.Flags().BoolVar(&skipSound, "skip-sound", false, "Skip the sound effect stage")
	cmd.Flags().StringArrayVarP(&prompts, "prompt", "p", nil, "Extra prompt for the matching image, repeatable")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-video generation timeout (default $GENERATION_TIMEOUT_SECONDS or 300s)")

	return cmd
}

type generateOptions struct {
	images     []string
	outputDir  string
	maxWorkers int
	withSound  bool
	prompts    []string
	timeout    time.Duration
}

func runGenerate(ctx context.Context, opts generateOptions) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	if opts.outputDir == "" {
		opts.outputDir = cfg.OutputDir
	}
	if opts.maxWorkers <= 0 {
		opts.maxWorkers = cfg.MaxWorkers
	}
	if opts.timeout <= 0 {
		opts.timeout = cfg.GenerationTimeout
	}
	if err := cfg.RequireCredentials(opts.withSound); err != nil {
		return err
	}

	out := newUI()

	// Drop unusable inputs up front so one bad path does not burn a worker
	// slot. Prompts stay paired with their original argument position.
	var items []pipeline.Item
	for i, image := range opts.images {
		if err := pipeline.ValidateImage(image); err != nil {
			fmt.Printf("%s skipping %s: %v\n", out.warn("[WARN]"), image, err)
			continue
		}
		item := pipeline.Item{Index: len(items), ImagePath: image}
		if i < len(opts.prompts) {
			item.Prompt = opts.prompts[i]
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return fmt.Errorf("no valid input images")
	}

	logger := infra.NewLogger(cfg.AppEnv)

	videoClient, err := runware.NewClient(runware.Options{
		APIKey:       cfg.RunwareAPIKey,
		BaseURL:      cfg.RunwareBaseURL,
		Model:        cfg.RunwareModel,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	coordinator := &pipeline.Coordinator{
		Video:      videoClient,
		Fetcher:    generation.NewFetcher(http.DefaultClient, logger),
		Logger:     logger,
		MaxWorkers: opts.maxWorkers,
		Timeout:    opts.timeout,
		Progress:   downloadProgress,
	}
	if opts.withSound {
		soundClient, err := mirelo.NewClient(mirelo.Options{
			APIKey:  cfg.MireloAPIKey,
			BaseURL: cfg.MireloBaseURL,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		coordinator.Sound = soundClient
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("%s Generating %d clip(s) with %d worker(s)\n",
		out.title("clipforge"), len(items), opts.maxWorkers)

	report, err := coordinator.Run(runCtx, items, pipeline.RunOptions{
		OutputDir: opts.outputDir,
		WithSound: opts.withSound,
	})
	if err != nil {
		return err
	}

	renderReport(out, report, opts.withSound)
	return nil
}

func renderReport(out *ui, report *pipeline.Report, withSound bool) {
	fmt.Println()
	for _, r := range report.VideoResults {
		if r.Success {
			fmt.Printf("%s %s %s %s\n", out.ok("[OK]"), r.ImageFilename, out.dim("->"), r.VideoFilename)
		} else {
			fmt.Printf("%s %s: %s\n", out.err("[FAIL]"), r.ImageFilename, r.Error)
		}
	}
	fmt.Printf("%s %d/%d videos generated\n", out.info("[INFO]"), report.SuccessfulVideos, report.TotalVideos)

	if !withSound {
		return
	}
	for _, r := range report.SoundResults {
		if r.Success {
			for _, path := range r.SoundVideoPaths {
				fmt.Printf("%s %s %s %s\n", out.ok("[OK]"), filepath.Base(r.VideoPath), out.dim("+sound ->"), filepath.Base(path))
			}
		} else {
			fmt.Printf("%s %s: %s\n", out.err("[FAIL]"), filepath.Base(r.VideoPath), r.Error)
		}
	}
	fmt.Printf("%s %d/%d clips got sound\n", out.info("[INFO]"), report.SuccessfulSounds, len(report.SoundResults))
}
