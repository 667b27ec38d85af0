package transcribe

import (
	"errors"
	"fmt"
)

var (
	ErrFilePathRequired    = errors.New("file path is required")
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsupportedFileType = errors.New("file is neither audio nor video")
	ErrUnsupportedFormat   = errors.New("invalid format specified")
)

// ValidationError reports input rejected before any network activity.
type ValidationError struct {
	Field string // "file" or "format"
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrFileNotFound):
		return fmt.Sprintf("%v: %s", e.Err, e.Value)
	case errors.Is(e.Err, ErrUnsupportedFormat):
		return fmt.Sprintf("%v %q. Allowed formats are: %s", e.Err, e.Value, formatList())
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NetworkError reports a failed upload. Payload holds the response body the
// service sent back, if any.
type NetworkError struct {
	StatusCode int
	Payload    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transcription service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("transcription request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Payload extracts the remote error body from err, if there is one.
func Payload(err error) string {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Payload
	}
	return ""
}
