// Package runware wraps the Runware image-to-video API: a single submission
// endpoint that accepts task envelopes and a polling endpoint that reports
// task completion.
package runware

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clipforge/internal/generation"
)

const apiName = "runware"

// DefaultPositivePrompt guides generation when the caller supplies no prompt.
const DefaultPositivePrompt = "smooth animation, natural movement, facial reactions and actions only, NO Lip movement, high quality"

// Options configures the Runware client.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// Client performs HTTP calls against the Runware video inference API.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       zerolog.Logger
}

// VideoRequest captures the inputs for one image-to-video job. Zero values
// fall back to the service defaults.
type VideoRequest struct {
	ImagePath      string
	PositivePrompt string
	Duration       int
	Width          int
	Height         int
	FPS            int
	OutputFormat   string
	OutputQuality  int
	FramePosition  string
}

// VideoResult is the terminal payload of a successful video job.
type VideoResult struct {
	TaskUUID  string
	VideoUUID string
	VideoURL  string
	Cost      float64
	Seed      int64
}

type taskEnvelope struct {
	TaskType       string       `json:"taskType"`
	TaskUUID       string       `json:"taskUUID"`
	DeliveryMethod string       `json:"deliveryMethod,omitempty"`
	Model          string       `json:"model,omitempty"`
	Duration       int          `json:"duration,omitempty"`
	Width          int          `json:"width,omitempty"`
	Height         int          `json:"height,omitempty"`
	FPS            int          `json:"fps,omitempty"`
	OutputType     string       `json:"outputType,omitempty"`
	OutputFormat   string       `json:"outputFormat,omitempty"`
	OutputQuality  int          `json:"outputQuality,omitempty"`
	NumberResults  int          `json:"numberResults,omitempty"`
	IncludeCost    bool         `json:"includeCost,omitempty"`
	PositivePrompt string       `json:"positivePrompt,omitempty"`
	FrameImages    []frameImage `json:"frameImages,omitempty"`
}

type frameImage struct {
	InputImage string `json:"inputImage"`
	Frame      string `json:"frame"`
}

type apiResponse struct {
	Data []struct {
		TaskUUID  string  `json:"taskUUID"`
		Status    string  `json:"status"`
		Message   string  `json:"message"`
		VideoUUID string  `json:"videoUUID"`
		VideoURL  string  `json:"videoURL"`
		Cost      float64 `json:"cost"`
		Seed      int64   `json:"seed"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, &generation.ConfigurationError{Key: "RUNWARE_API_KEY"}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.runware.ai/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "bytedance:1@1"
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		model:        model,
		pollInterval: pollInterval,
		httpClient:   httpClient,
		logger:       opts.Logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// SubmitVideo encodes the source image, submits an async videoInference task
// and returns its task UUID without waiting for completion.
func (c *Client) SubmitVideo(ctx context.Context, req VideoRequest) (string, error) {
	inputImage, err := encodeImageDataURI(req.ImagePath)
	if err != nil {
		return "", err
	}

	taskUUID := uuid.NewString()
	task := taskEnvelope{
		TaskType:       "videoInference",
		TaskUUID:       taskUUID,
		DeliveryMethod: "async",
		Model:          c.model,
		Duration:       valueOr(req.Duration, 5),
		Width:          valueOr(req.Width, 1248),
		Height:         valueOr(req.Height, 704),
		FPS:            valueOr(req.FPS, 24),
		OutputType:     "URL",
		OutputFormat:   stringOr(req.OutputFormat, "mp4"),
		OutputQuality:  valueOr(req.OutputQuality, 95),
		NumberResults:  1,
		IncludeCost:    true,
		PositivePrompt: req.PositivePrompt,
		FrameImages: []frameImage{{
			InputImage: inputImage,
			Frame:      stringOr(req.FramePosition, "first"),
		}},
	}

	decoded, status, err := c.post(ctx, []taskEnvelope{task})
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	if status != http.StatusOK {
		return "", &generation.SubmissionError{API: apiName, Message: fmt.Sprintf("status %d", status)}
	}
	if len(decoded.Errors) > 0 {
		return "", &generation.SubmissionError{API: apiName, Message: decoded.Errors[0].Message}
	}

	c.logger.Info().
		Str("task_uuid", taskUUID).
		Str("model", c.model).
		Str("image", filepath.Base(req.ImagePath)).
		Msg("runware: video task submitted")
	return taskUUID, nil
}

// AwaitVideo polls the task on a fixed interval until it reaches a terminal
// state or timeout elapses. A taskNotFound error code from the remote is
// transient; any other error code is terminal.
func (c *Client) AwaitVideo(ctx context.Context, taskUUID string, timeout time.Duration) (*VideoResult, error) {
	deadline := time.Now().Add(timeout)
	pollCount := 0
	for {
		pollCount++
		result, terminal, err := c.pollOnce(ctx, taskUUID)
		if err != nil {
			return nil, err
		}
		if terminal {
			c.logger.Info().
				Str("task_uuid", taskUUID).
				Int("polls", pollCount).
				Str("video_url", result.VideoURL).
				Msg("runware: video task completed")
			return result, nil
		}
		if time.Now().After(deadline) {
			return nil, &generation.TimeoutError{API: apiName, Limit: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		if time.Now().After(deadline) {
			return nil, &generation.TimeoutError{API: apiName, Limit: timeout}
		}
	}
}

// pollOnce issues one getResponse request. It returns terminal=false for
// transient conditions: the task not being registered yet, transport
// failures, and non-2xx poll responses.
func (c *Client) pollOnce(ctx context.Context, taskUUID string) (*VideoResult, bool, error) {
	decoded, status, err := c.post(ctx, []taskEnvelope{{TaskType: "getResponse", TaskUUID: taskUUID}})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		c.logger.Warn().Err(err).Str("task_uuid", taskUUID).Msg("runware: poll request failed")
		return nil, false, nil
	}
	if status != http.StatusOK {
		c.logger.Warn().Int("status", status).Str("task_uuid", taskUUID).Msg("runware: poll returned non-200")
		return nil, false, nil
	}

	if len(decoded.Data) > 0 {
		data := decoded.Data[0]
		switch data.Status {
		case "success":
			return &VideoResult{
				TaskUUID:  taskUUID,
				VideoUUID: data.VideoUUID,
				VideoURL:  data.VideoURL,
				Cost:      data.Cost,
				Seed:      data.Seed,
			}, true, nil
		case "error":
			return nil, false, &generation.GenerationError{API: apiName, Message: stringOr(data.Message, "unknown error")}
		}
	}
	if len(decoded.Errors) > 0 {
		remote := decoded.Errors[0]
		if remote.Code == "taskNotFound" {
			return nil, false, nil
		}
		return nil, false, &generation.GenerationError{API: apiName, Message: remote.Message}
	}
	return nil, false, nil
}

func (c *Client) post(ctx context.Context, tasks []taskEnvelope) (*apiResponse, int, error) {
	body, err := json.Marshal(tasks)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	var decoded apiResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode == http.StatusOK {
			return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return &decoded, resp.StatusCode, nil
}

// encodeImageDataURI reads the image and produces a MIME-prefixed base64
// data URI as expected by the frameImages payload.
func encodeImageDataURI(imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &generation.ValidationError{Path: imagePath, Reason: "file not found"}
		}
		return "", fmt.Errorf("runware: read image: %w", err)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeForExtension(imagePath), base64.StdEncoding.EncodeToString(data)), nil
}

func mimeForExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/jpeg"
	}
}

func valueOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
