package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const fetchChunkSize = 8 * 1024

// ProgressFunc receives download progress. total is zero when the remote did
// not send a Content-Length header.
type ProgressFunc func(downloaded, total int64)

// Fetcher streams remote artifacts to local files. It performs no retries;
// retry policy belongs to the caller.
type Fetcher struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFetcher constructs a Fetcher. A nil client falls back to a default
// http.Client without a timeout, since artifact downloads can be large and
// are bounded by the request context instead.
func NewFetcher(client *http.Client, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{httpClient: client, logger: logger}
}

// Download fetches url into destPath and returns destPath. When the remote
// announces a Content-Length the body is streamed in 8 KiB chunks and
// progress is reported after each chunk; otherwise the whole body is written
// in one go.
func (f *Fetcher) Download(ctx context.Context, url, destPath string, progress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &TransferError{URL: url, Err: err}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", &TransferError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransferError{URL: url, Status: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", &TransferError{URL: url, Err: fmt.Errorf("ensure directory: %w", err)}
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", &TransferError{URL: url, Err: fmt.Errorf("create file: %w", err)}
	}
	defer out.Close()

	total := resp.ContentLength
	if total <= 0 {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &TransferError{URL: url, Err: err}
		}
		if _, err := out.Write(data); err != nil {
			return "", &TransferError{URL: url, Err: err}
		}
		if progress != nil {
			progress(int64(len(data)), int64(len(data)))
		}
		f.logger.Debug().Str("url", url).Int("bytes", len(data)).Msg("fetch: downloaded artifact")
		return destPath, nil
	}

	var downloaded int64
	buf := make([]byte, fetchChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return "", &TransferError{URL: url, Err: err}
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", &TransferError{URL: url, Err: readErr}
		}
	}
	f.logger.Debug().Str("url", url).Int64("bytes", downloaded).Msg("fetch: downloaded artifact")
	return destPath, nil
}
