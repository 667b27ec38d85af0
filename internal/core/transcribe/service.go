// Package transcribe validates media files, uploads them to a whisper ASR
// service and writes the returned transcript next to the input.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/neilberkman/whispapi/internal/core/logging"
	"github.com/neilberkman/whispapi/internal/core/media"
	"go.uber.org/zap"
)

const (
	DefaultFormat   = "txt"
	DefaultLanguage = "en"
)

// Formats lists the output formats the service can return.
var Formats = []string{"txt", "json", "srt", "vtt"}

func formatList() string {
	return strings.Join(Formats, ", ")
}

// Request is one transcription job.
type Request struct {
	FilePath string
	Format   string
	Language string
}

// Result is a finished transcription.
type Result struct {
	ID         string
	Text       string
	OutputPath string
	Info       *media.Info
	Elapsed    time.Duration
}

// Uploader sends a file to the remote service.
type Uploader interface {
	Upload(ctx context.Context, path, format, language string) (string, error)
	Endpoint() string
}

// Indicator shows progress while the upload is pending.
type Indicator interface {
	Start(ctx context.Context) error
	Stop(clear bool) error
}

// Recorder stores an attempt in the history.
type Recorder interface {
	InsertTranscription(t db.Transcription) error
}

type Option func(*Service)

// WithIndicator sets the constructor for the progress indicator shown
// during each upload.
func WithIndicator(fn func(Request, *media.Info) Indicator) Option {
	return func(s *Service) { s.indicator = fn }
}

// WithRecorder records every attempt that passed validation.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service runs transcriptions.
type Service struct {
	uploader  Uploader
	indicator func(Request, *media.Info) Indicator
	recorder  Recorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewService(uploader Uploader, opts ...Option) *Service {
	s := &Service{
		uploader: uploader,
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize fills in defaults for empty fields.
func Normalize(req Request) Request {
	req.FilePath = strings.TrimSpace(req.FilePath)
	if req.Format == "" {
		req.Format = DefaultFormat
	}
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	return req
}

// Validate checks req without touching the network. Checks run in order:
// path present, file exists, extension supported, format supported.
func Validate(req Request) error {
	if req.FilePath == "" {
		return &ValidationError{Field: "file", Err: ErrFilePathRequired}
	}

	fi, err := os.Stat(req.FilePath)
	if err != nil || fi.IsDir() {
		return &ValidationError{Field: "file", Value: req.FilePath, Err: ErrFileNotFound}
	}

	if _, ok := media.KindOf(req.FilePath); !ok {
		return &ValidationError{Field: "file", Value: req.FilePath, Err: ErrUnsupportedFileType}
	}

	for _, f := range Formats {
		if req.Format == f {
			return nil
		}
	}
	return &ValidationError{Field: "format", Value: req.Format, Err: ErrUnsupportedFormat}
}

// OutputPath returns <dir>/<basename>.<format> for the input at filePath.
func OutputPath(filePath, format string) string {
	dir := filepath.Dir(filePath)
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return filepath.Join(dir, base+"."+format)
}

// Transcribe validates req, uploads the file and writes the transcript to
// OutputPath. Nothing is written when the upload fails.
func (s *Service) Transcribe(ctx context.Context, req Request) (*Result, error) {
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return nil, err
	}

	info, err := media.Probe(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", req.FilePath, err)
	}

	rec := db.Transcription{
		ID:            uuid.NewString(),
		SourcePath:    absPath(req.FilePath),
		Format:        req.Format,
		Language:      req.Language,
		Endpoint:      s.uploader.Endpoint(),
		FileSize:      info.Size,
		MediaDuration: info.Duration,
		CreatedAt:     s.now(),
	}

	s.logger.Debug("transcribing",
		zap.String("id", rec.ID),
		zap.String("file", req.FilePath),
		zap.String("kind", string(info.Kind)),
		zap.Int64("size", info.Size),
		zap.String("format", req.Format),
		zap.String("language", req.Language))

	start := time.Now()
	text, err := s.upload(ctx, req, info)
	rec.Elapsed = time.Since(start)

	if err != nil {
		rec.Status = db.StatusFailed
		rec.Error = err.Error()
		if p := Payload(err); p != "" {
			rec.Transcript = p
		}
		s.record(rec)
		return nil, err
	}

	out := OutputPath(req.FilePath, req.Format)
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		err = fmt.Errorf("failed to write transcription: %w", err)
		rec.Status = db.StatusFailed
		rec.Error = err.Error()
		s.record(rec)
		return nil, err
	}

	rec.Status = db.StatusCompleted
	rec.OutputPath = absPath(out)
	rec.Transcript = text
	s.record(rec)

	return &Result{
		ID:         rec.ID,
		Text:       text,
		OutputPath: out,
		Info:       info,
		Elapsed:    rec.Elapsed,
	}, nil
}

// upload runs the request with the indicator spinning and logs muted.
func (s *Service) upload(ctx context.Context, req Request, info *media.Info) (string, error) {
	if s.indicator != nil {
		if ind := s.indicator(req, info); ind != nil {
			restore := s.logger.Mute()
			defer func() {
				err := ind.Stop(true)
				restore()
				if err != nil {
					s.logger.Warn("progress indicator failed", zap.Error(err))
				}
			}()
			if err := ind.Start(ctx); err != nil {
				s.logger.Warn("progress indicator failed", zap.Error(err))
			}
		}
	}

	text, err := s.uploader.Upload(ctx, req.FilePath, req.Format, req.Language)
	if err != nil {
		var ne *NetworkError
		if errors.As(err, &ne) {
			return "", err
		}
		return "", &NetworkError{Err: err}
	}
	return text, nil
}

func (s *Service) record(t db.Transcription) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.InsertTranscription(t); err != nil {
		s.logger.Warn("failed to record transcription", zap.String("id", t.ID), zap.Error(err))
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
