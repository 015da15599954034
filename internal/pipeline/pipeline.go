// Package pipeline coordinates the two-stage batch flow: image-to-video
// generation over a bounded worker pool, then sound generation for the
// videos that succeeded.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"clipforge/internal/generation"
	"clipforge/internal/metrics"
	"clipforge/internal/providers/mirelo"
	"clipforge/internal/providers/runware"
)

// VideoGenerator is the Stage-1 job client contract.
type VideoGenerator interface {
	SubmitVideo(ctx context.Context, req runware.VideoRequest) (string, error)
	AwaitVideo(ctx context.Context, taskUUID string, timeout time.Duration) (*runware.VideoResult, error)
}

// SoundGenerator is the Stage-2 client contract.
type SoundGenerator interface {
	UploadAsset(ctx context.Context, videoPath string) (string, error)
	GenerateSFX(ctx context.Context, assetID string, req mirelo.SFXRequest) ([]string, error)
}

// Downloader fetches a remote artifact to a local path.
type Downloader interface {
	Download(ctx context.Context, url, destPath string, progress generation.ProgressFunc) (string, error)
}

// Item is one batch input: an image plus its position and optional prompt
// override.
type Item struct {
	Index     int
	ImagePath string
	Prompt    string
}

// VideoResult is the Stage-1 outcome for one item. Exactly one of the
// success fields or Error is populated.
type VideoResult struct {
	Index         int    `json:"index"`
	ImageFilename string `json:"image_filename"`
	VideoFilename string `json:"video_filename,omitempty"`
	VideoPath     string `json:"video_path,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// SoundResult is the Stage-2 outcome for one item.
type SoundResult struct {
	Index           int      `json:"index"`
	VideoPath       string   `json:"video_path"`
	SoundVideoPaths []string `json:"sound_video_paths,omitempty"`
	Success         bool     `json:"success"`
	Error           string   `json:"error,omitempty"`
}

// Report aggregates both stages of one batch run.
type Report struct {
	VideoResults     []VideoResult `json:"video_results"`
	TotalVideos      int           `json:"total_videos"`
	SuccessfulVideos int           `json:"successful_videos"`
	SoundResults     []SoundResult `json:"sound_results,omitempty"`
	SuccessfulSounds int           `json:"successful_sounds"`
}

// RunOptions parameterizes one batch run.
type RunOptions struct {
	OutputDir string
	WithSound bool
	SFX       mirelo.SFXRequest
}

// Coordinator owns the clients shared by all workers in a run. Each worker
// writes to a distinct index-derived output path, so no locking is needed
// beyond creating the output directory up front.
type Coordinator struct {
	Video      VideoGenerator
	Sound      SoundGenerator
	Fetcher    Downloader
	Logger     zerolog.Logger
	MaxWorkers int
	Timeout    time.Duration

	// Progress, when set, supplies a per-download progress callback keyed
	// by the destination filename.
	Progress func(label string) generation.ProgressFunc
}

// Run executes Stage 1 over all items, filters successes, and when sound is
// enabled runs Stage 2 over those successes reusing their local video files.
// Per-item failures are reported in the result lists and never abort the
// batch; the returned error covers setup problems only.
func (c *Coordinator) Run(ctx context.Context, items []Item, opts RunOptions) (*Report, error) {
	if len(items) == 0 {
		return &Report{}, nil
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "./output"
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create output directory: %w", err)
	}
	metrics.BatchesTotal.Inc()

	c.Logger.Info().
		Int("items", len(items)).
		Int("max_workers", c.MaxWorkers).
		Bool("with_sound", opts.WithSound).
		Msg("pipeline: starting batch")

	stageStart := time.Now()
	videoResults := RunBatch(ctx, items, c.MaxWorkers, func(ctx context.Context, _ int, item Item) VideoResult {
		return c.generateVideo(ctx, item, opts.OutputDir)
	})
	metrics.StageDurationSeconds.WithLabelValues("video").Observe(time.Since(stageStart).Seconds())

	report := &Report{
		VideoResults: videoResults,
		TotalVideos:  len(videoResults),
	}
	var successes []VideoResult
	for _, r := range videoResults {
		if r.Success {
			successes = append(successes, r)
		}
	}
	report.SuccessfulVideos = len(successes)

	c.Logger.Info().
		Int("succeeded", len(successes)).
		Int("failed", len(videoResults)-len(successes)).
		Msg("pipeline: video stage finished")

	// Stage 2 runs only for Stage-1 successes; an all-failed batch ends here.
	if !opts.WithSound || len(successes) == 0 {
		return report, nil
	}

	stageStart = time.Now()
	report.SoundResults = RunBatch(ctx, successes, c.MaxWorkers, func(ctx context.Context, _ int, video VideoResult) SoundResult {
		return c.generateSound(ctx, video, opts)
	})
	metrics.StageDurationSeconds.WithLabelValues("sound").Observe(time.Since(stageStart).Seconds())

	for _, r := range report.SoundResults {
		if r.Success {
			report.SuccessfulSounds++
		}
	}
	c.Logger.Info().
		Int("succeeded", report.SuccessfulSounds).
		Int("failed", len(report.SoundResults)-report.SuccessfulSounds).
		Msg("pipeline: sound stage finished")
	return report, nil
}

// generateVideo is the Stage-1 worker: validate, submit, poll, download.
// All errors are folded into the failure variant.
func (c *Coordinator) generateVideo(ctx context.Context, item Item, outputDir string) VideoResult {
	result := VideoResult{Index: item.Index, ImageFilename: filepath.Base(item.ImagePath)}

	if err := ValidateImage(item.ImagePath); err != nil {
		result.Error = err.Error()
		metrics.VideoJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	prompt := runware.DefaultPositivePrompt
	if item.Prompt != "" {
		prompt = prompt + ", " + item.Prompt
	}

	taskUUID, err := c.Video.SubmitVideo(ctx, runware.VideoRequest{
		ImagePath:      item.ImagePath,
		PositivePrompt: prompt,
	})
	if err != nil {
		c.Logger.Error().Err(err).Int("index", item.Index).Str("image", result.ImageFilename).Msg("pipeline: video submission failed")
		result.Error = err.Error()
		metrics.VideoJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	videoResult, err := c.Video.AwaitVideo(ctx, taskUUID, c.Timeout)
	if err != nil {
		c.Logger.Error().Err(err).Int("index", item.Index).Str("task_uuid", taskUUID).Msg("pipeline: video generation failed")
		result.Error = err.Error()
		metrics.VideoJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	videoFilename := fmt.Sprintf("video_%02d.mp4", item.Index+1)
	videoPath := filepath.Join(outputDir, videoFilename)
	if _, err := c.Fetcher.Download(ctx, videoResult.VideoURL, videoPath, c.progressFor(videoFilename)); err != nil {
		c.Logger.Error().Err(err).Int("index", item.Index).Str("url", videoResult.VideoURL).Msg("pipeline: video download failed")
		result.Error = err.Error()
		metrics.VideoJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	result.VideoFilename = videoFilename
	result.VideoPath = videoPath
	result.VideoURL = videoResult.VideoURL
	result.Success = true
	metrics.VideoJobsTotal.WithLabelValues("success").Inc()
	return result
}

// generateSound is the Stage-2 worker. It feeds the local video file from
// Stage 1 to the sound API; the remote video URL is never re-fetched.
func (c *Coordinator) generateSound(ctx context.Context, video VideoResult, opts RunOptions) SoundResult {
	result := SoundResult{Index: video.Index, VideoPath: video.VideoPath}

	assetID, err := c.Sound.UploadAsset(ctx, video.VideoPath)
	if err != nil {
		c.Logger.Error().Err(err).Int("index", video.Index).Str("video", video.VideoFilename).Msg("pipeline: sound upload failed")
		result.Error = err.Error()
		metrics.SoundJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	urls, err := c.Sound.GenerateSFX(ctx, assetID, opts.SFX)
	if err != nil {
		c.Logger.Error().Err(err).Int("index", video.Index).Str("asset_id", assetID).Msg("pipeline: sound generation failed")
		result.Error = err.Error()
		metrics.SoundJobsTotal.WithLabelValues("failure").Inc()
		return result
	}

	for i, url := range urls {
		name := fmt.Sprintf("sound_video_%02d_%d.mp4", video.Index+1, i+1)
		dest := filepath.Join(opts.OutputDir, name)
		if _, err := c.Fetcher.Download(ctx, url, dest, c.progressFor(name)); err != nil {
			c.Logger.Error().Err(err).Int("index", video.Index).Str("url", url).Msg("pipeline: sound download failed")
			result.Error = err.Error()
			metrics.SoundJobsTotal.WithLabelValues("failure").Inc()
			return result
		}
		result.SoundVideoPaths = append(result.SoundVideoPaths, dest)
	}

	result.Success = true
	metrics.SoundJobsTotal.WithLabelValues("success").Inc()
	return result
}

func (c *Coordinator) progressFor(label string) generation.ProgressFunc {
	if c.Progress == nil {
		return nil
	}
	return c.Progress(label)
}
