package transcribe

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// FormField is the multipart field carrying the media file.
const FormField = "audio_file"

// Client uploads media to a whisper ASR web service.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for endpoint. A zero timeout waits as long as
// the service takes.
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Endpoint returns the service URL without query parameters.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Upload posts the file at path and returns the response body as text.
func (c *Client) Upload(ctx context.Context, path, format, language string) (string, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("encode", "true")
	q.Set("task", "transcribe")
	q.Set("word_timestamps", "false")
	q.Set("output", format)
	q.Set("language", language)
	u.RawQuery = q.Encode()

	pr, pw := io.Pipe()
	defer pr.Close()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeFileField(writer, path)
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), pr)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading",
		zap.String("url", u.String()),
		zap.String("file", path))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("upload finished",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &NetworkError{
			StatusCode: resp.StatusCode,
			Payload:    string(body),
			Err:        fmt.Errorf("HTTP error %d", resp.StatusCode),
		}
	}

	return string(body), nil
}

func writeFileField(writer *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fw, err := writer.CreateFormFile(FormField, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}
