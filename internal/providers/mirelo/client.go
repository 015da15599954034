// Package mirelo wraps the Mirelo video-to-sound-effects API. Unlike the
// video service this API is synchronous: uploading an asset is a two-step
// create-then-PUT exchange and the generation call returns output URLs
// directly, so no polling loop is needed.
package mirelo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"clipforge/internal/generation"
)

const apiName = "mirelo"

// Default prompt guidance for sound generation.
const (
	DefaultTextPrompt     = "cinematic sound effects, ambient sounds, facial reactions, actions"
	DefaultNegativePrompt = "speech, talking, dialogue, vocals, words"
)

// Options configures the Mirelo client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client performs HTTP calls against the Mirelo SFX API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// SFXRequest captures the generation parameters for one video. Zero values
// fall back to the service defaults.
type SFXRequest struct {
	Duration       int
	NumSamples     int
	ModelVersion   string
	CreativityCoef int
	TextPrompt     string
	NegativePrompt string
	Steps          int
}

type createAssetResponse struct {
	CustomerAssetID string `json:"customer_asset_id"`
	UploadURL       string `json:"upload_url"`
	Message         string `json:"message"`
}

type sfxRequestPayload struct {
	CustomerAssetID string `json:"customer_asset_id"`
	Duration        int    `json:"duration"`
	NumSamples      int    `json:"num_samples"`
	ModelVersion    string `json:"model_version"`
	CreativityCoef  int    `json:"creativity_coef"`
	ReturnAudioOnly bool   `json:"return_audio_only"`
	TextPrompt      string `json:"text_prompt"`
	NegativePrompt  string `json:"negative_prompt"`
	Steps           int    `json:"steps"`
}

type sfxResponse struct {
	OutputPaths []string `json:"output_paths"`
	Message     string   `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, &generation.ConfigurationError{Key: "MIRELO_API_KEY"}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mirelo.ai"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Generation plus upload can take minutes for larger clips.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// UploadAsset registers a customer asset and PUTs the raw video bytes to the
// returned upload URL. It reports the asset identifier used by GenerateSFX.
func (c *Client) UploadAsset(ctx context.Context, videoPath string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &generation.ValidationError{Path: videoPath, Reason: "file not found"}
		}
		return "", fmt.Errorf("mirelo: open video: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("mirelo: stat video: %w", err)
	}

	payload, _ := json.Marshal(map[string]string{"contentType": "video/mp4"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-customer-asset", bytes.NewReader(payload))
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &generation.SubmissionError{API: apiName, Message: remoteMessage(raw, resp.StatusCode)}
	}
	var created createAssetResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: fmt.Errorf("decode response: %w", err)}
	}
	if created.CustomerAssetID == "" || created.UploadURL == "" {
		return "", &generation.SubmissionError{API: apiName, Message: "create-customer-asset returned no upload target"}
	}

	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPut, created.UploadURL, file)
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	uploadReq.ContentLength = info.Size()
	uploadReq.Header.Set("Content-Type", "video/mp4")

	uploadResp, err := c.httpClient.Do(uploadReq)
	if err != nil {
		return "", &generation.SubmissionError{API: apiName, Err: err}
	}
	defer uploadResp.Body.Close()
	io.Copy(io.Discard, uploadResp.Body)
	if uploadResp.StatusCode != http.StatusOK && uploadResp.StatusCode != http.StatusNoContent {
		return "", &generation.SubmissionError{API: apiName, Message: fmt.Sprintf("upload status %d", uploadResp.StatusCode)}
	}

	c.logger.Info().
		Str("asset_id", created.CustomerAssetID).
		Str("video", filepath.Base(videoPath)).
		Int64("bytes", info.Size()).
		Msg("mirelo: asset uploaded")
	return created.CustomerAssetID, nil
}

// GenerateSFX requests sound generation for an uploaded asset and returns
// the output URLs. The API responds synchronously with 201 Created.
func (c *Client) GenerateSFX(ctx context.Context, assetID string, req SFXRequest) ([]string, error) {
	payload := sfxRequestPayload{
		CustomerAssetID: assetID,
		Duration:        valueOr(req.Duration, 10),
		NumSamples:      valueOr(req.NumSamples, 1),
		ModelVersion:    stringOr(req.ModelVersion, "1.5"),
		CreativityCoef:  valueOr(req.CreativityCoef, 5),
		ReturnAudioOnly: false,
		TextPrompt:      stringOr(req.TextPrompt, DefaultTextPrompt),
		NegativePrompt:  stringOr(req.NegativePrompt, DefaultNegativePrompt),
		Steps:           valueOr(req.Steps, 25),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mirelo: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video-to-sfx", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mirelo: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &generation.GenerationError{API: apiName, Message: err.Error()}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &generation.GenerationError{API: apiName, Message: err.Error()}
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &generation.GenerationError{API: apiName, Message: remoteMessage(raw, resp.StatusCode)}
	}
	var decoded sfxResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &generation.GenerationError{API: apiName, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(decoded.OutputPaths) == 0 {
		return nil, &generation.GenerationError{API: apiName, Message: "no output URLs generated"}
	}

	c.logger.Info().
		Str("asset_id", assetID).
		Int("outputs", len(decoded.OutputPaths)).
		Msg("mirelo: sfx generated")
	return decoded.OutputPaths, nil
}

// remoteMessage extracts an error message from a response body, falling back
// to the HTTP status.
func remoteMessage(raw []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return fmt.Sprintf("status %d", status)
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
