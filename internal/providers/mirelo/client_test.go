package mirelo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/generation"
)

func writeTestVideo(t *testing.T) (string, []byte) {
	t.Helper()
	content := []byte("fake mp4 bytes")
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return path, content
}

func TestUploadAssetTwoStepProtocol(t *testing.T) {
	videoPath, content := writeTestVideo(t)

	var uploadedBody []byte
	var uploadedContentType string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/create-customer-asset", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["contentType"] != "video/mp4" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"customer_asset_id": "asset-123",
			"upload_url":        srv.URL + "/upload/asset-123",
		})
	})
	mux.HandleFunc("/upload/asset-123", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		uploadedContentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read", http.StatusInternalServerError)
			return
		}
		uploadedBody = body
		w.WriteHeader(http.StatusNoContent)
	})

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	assetID, err := client.UploadAsset(context.Background(), videoPath)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if assetID != "asset-123" {
		t.Fatalf("asset id = %q, want asset-123", assetID)
	}
	if string(uploadedBody) != string(content) {
		t.Fatalf("uploaded bytes differ: %q vs %q", uploadedBody, content)
	}
	if uploadedContentType != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", uploadedContentType)
	}
}

func TestUploadAssetCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid api key"})
	}))
	defer srv.Close()

	videoPath, _ := writeTestVideo(t)
	client, _ := NewClient(Options{APIKey: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.UploadAsset(context.Background(), videoPath)
	var se *generation.SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *generation.SubmissionError", err)
	}
	if se.Message != "invalid api key" {
		t.Fatalf("Message = %q, want remote message", se.Message)
	}
}

func TestUploadAssetMissingFile(t *testing.T) {
	client, _ := NewClient(Options{APIKey: "key"})
	_, err := client.UploadAsset(context.Background(), "/nope/missing.mp4")
	var ve *generation.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *generation.ValidationError", err)
	}
}

func TestGenerateSFXSuccess(t *testing.T) {
	var captured sfxRequestPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/video-to-sfx" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output_paths": []string{"https://cdn.mirelo.test/out-1.mp4", "https://cdn.mirelo.test/out-2.mp4"},
		})
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	urls, err := client.GenerateSFX(context.Background(), "asset-123", SFXRequest{Duration: 5, CreativityCoef: 6})
	if err != nil {
		t.Fatalf("generate sfx: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls len = %d, want 2", len(urls))
	}
	if captured.CustomerAssetID != "asset-123" {
		t.Fatalf("customer_asset_id = %q", captured.CustomerAssetID)
	}
	if captured.Duration != 5 || captured.CreativityCoef != 6 {
		t.Fatalf("explicit params not forwarded: %+v", captured)
	}
	if captured.TextPrompt != DefaultTextPrompt || captured.NegativePrompt != DefaultNegativePrompt {
		t.Fatalf("default prompts not applied: %+v", captured)
	}
	if captured.NumSamples != 1 || captured.ModelVersion != "1.5" || captured.Steps != 25 {
		t.Fatalf("defaults not applied: %+v", captured)
	}
	if captured.ReturnAudioOnly {
		t.Fatalf("return_audio_only should be false")
	}
}

func TestGenerateSFXNon201IsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "asset too long"})
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.GenerateSFX(context.Background(), "asset-123", SFXRequest{})
	var ge *generation.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *generation.GenerationError", err)
	}
	if ge.Message != "asset too long" {
		t.Fatalf("Message = %q, want remote message", ge.Message)
	}
}

func TestGenerateSFXEmptyOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"output_paths": []string{}})
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.GenerateSFX(context.Background(), "asset-123", SFXRequest{})
	var ge *generation.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *generation.GenerationError", err)
	}
}
