package generation

import (
	"fmt"
	"time"
)

// SubmissionError indicates the remote API rejected a job request before any
// generation work started.
type SubmissionError struct {
	API     string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: submission failed: %v", e.API, e.Err)
	}
	return fmt.Sprintf("%s: submission failed: %s", e.API, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// GenerationError indicates the remote API accepted the job but reported a
// terminal failure while producing the artifact.
type GenerationError struct {
	API     string
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %s", e.API, e.Message)
}

// TimeoutError indicates polling exceeded the configured bound without the
// job reaching a terminal state.
type TimeoutError struct {
	API   string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s waiting for generation to complete", e.API, e.Limit)
}

// TransferError indicates an artifact download failed, either at the
// transport level or with a non-2xx status.
type TransferError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ConfigurationError indicates a required credential or setting is missing.
// It is the only error class raised before any worker is spawned.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s is required", e.Key)
}

// ValidationError indicates an input file is unusable: missing on disk or
// carrying an unsupported extension.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}
