package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/neilberkman/whispapi/internal/core/config"
	"github.com/neilberkman/whispapi/internal/core/db"
	"github.com/neilberkman/whispapi/internal/core/history"
	"github.com/neilberkman/whispapi/internal/core/logging"
	"github.com/neilberkman/whispapi/internal/core/transcribe"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// TranscribeFileArgs defines arguments for the transcribe_file tool
type TranscribeFileArgs struct {
	FilePath string `json:"file_path" jsonschema:"description=Path to an audio or video file,required"`
	Format   string `json:"format,omitempty" jsonschema:"description=txt json srt or vtt"`
	Language string `json:"language,omitempty" jsonschema:"description=Spoken language code"`
}

// ListTranscriptionsArgs defines arguments for the list_transcriptions tool
type ListTranscriptionsArgs struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max transcriptions to return (default: 20)"`
	Since  string `json:"since,omitempty" jsonschema:"description=Only transcriptions after this date"`
	Format string `json:"format,omitempty" jsonschema:"description=Filter by output format"`
	Query  string `json:"query,omitempty" jsonschema:"description=Full-text search over transcripts"`
}

// GetTranscriptionArgs defines arguments for the get_transcription tool
type GetTranscriptionArgs struct {
	ID string `json:"id" jsonschema:"description=Transcription id or unique prefix,required"`
}

// TranscriptionSummary represents a transcription in the list view
type TranscriptionSummary struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path"`
	Format     string `json:"format"`
	Language   string `json:"language"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// TranscriptionDetail is a full stored transcription
type TranscriptionDetail struct {
	TranscriptionSummary
	OutputPath      string  `json:"output_path,omitempty"`
	FileSize        int64   `json:"file_size"`
	DurationSeconds float64 `json:"media_duration_seconds,omitempty"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	Error           string  `json:"error,omitempty"`
	Transcript      string  `json:"transcript"`
}

// Transcriber runs one transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (*transcribe.Result, error)
}

// Store reads the transcription history.
type Store interface {
	ListTranscriptions(f db.ListFilter) ([]db.Transcription, error)
	GetTranscription(idPrefix string) (*db.Transcription, error)
}

// StartServer starts the MCP server on stdio
func StartServer(cfg *config.Config, dbPath string, logger *logging.Logger) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.Warn("error closing database", zap.Error(closeErr))
		}
	}()

	client, err := transcribe.NewClient(cfg.Endpoint, cfg.Timeout, logger.Logger)
	if err != nil {
		return err
	}

	opts := []transcribe.Option{transcribe.WithLogger(logger)}
	if cfg.History {
		opts = append(opts, transcribe.WithRecorder(database))
	}
	svc := transcribe.NewService(client, opts...)

	return server.ServeStdio(NewServer(cfg, svc, database))
}

// NewServer registers the whispapi tools on a new MCP server.
func NewServer(cfg *config.Config, svc Transcriber, store Store) *server.MCPServer {
	s := server.NewMCPServer(
		"whispapi",
		"1.0.0",
	)

	transcribeTool := mcp.NewTool("transcribe_file",
		mcp.WithDescription("Transcribe a local audio or video file with the configured whisper ASR service. The transcript is also saved next to the file."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to an audio (.mp3 .wav .m4a .flac .ogg .opus .aac) or video (.mp4 .mov .avi .mkv .flv .webm .wmv) file")),
		mcp.WithString("format",
			mcp.Description(fmt.Sprintf("Output format: txt, json, srt or vtt (default: %s)", cfg.Format))),
		mcp.WithString("language",
			mcp.Description(fmt.Sprintf("Spoken language code (default: %s)", cfg.Language))),
	)
	s.AddTool(transcribeTool, makeTranscribeFileHandler(cfg, svc))

	listTool := mcp.NewTool("list_transcriptions",
		mcp.WithDescription("List past transcriptions, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max transcriptions to return (default: 20)")),
		mcp.WithString("since",
			mcp.Description("Only transcriptions after this date, e.g. '2025-01-01', '3d' or 'yesterday'")),
		mcp.WithString("format",
			mcp.Description("Filter by output format")),
		mcp.WithString("query",
			mcp.Description("Full-text search over transcripts")),
	)
	s.AddTool(listTool, makeListTranscriptionsHandler(store))

	getTool := mcp.NewTool("get_transcription",
		mcp.WithDescription("Retrieve a stored transcript and its details"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Transcription id or unique prefix")),
	)
	s.AddTool(getTool, makeGetTranscriptionHandler(store))

	return s
}

func decodeArgs(request mcp.CallToolRequest, v interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, v)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func makeTranscribeFileHandler(cfg *config.Config, svc Transcriber) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TranscribeFileArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		req := transcribe.Request{
			FilePath: args.FilePath,
			Format:   cfg.Format,
			Language: cfg.Language,
		}
		if args.Format != "" {
			req.Format = args.Format
		}
		if args.Language != "" {
			req.Language = args.Language
		}

		res, err := svc.Transcribe(ctx, req)
		if err != nil {
			msg := fmt.Sprintf("transcription failed: %v", err)
			if payload := transcribe.Payload(err); payload != "" {
				msg += "\nresponse data: " + payload
			}
			return mcp.NewToolResultError(msg), nil
		}

		return jsonResult(map[string]interface{}{
			"id":          res.ID,
			"output_path": res.OutputPath,
			"transcript":  res.Text,
		})
	}
}

func makeListTranscriptionsHandler(store Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListTranscriptionsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}

		filter := db.ListFilter{Format: args.Format, Query: args.Query, Limit: limit}
		if args.Since != "" {
			since, err := history.ParseSince(args.Since, time.Now())
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid since: %v", err)), nil
			}
			filter.After = since
		}

		items, err := store.ListTranscriptions(filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		results := []TranscriptionSummary{}
		for _, t := range items {
			results = append(results, summarize(t))
		}

		return jsonResult(map[string]interface{}{
			"transcriptions": results,
		})
	}
}

func makeGetTranscriptionHandler(store Store) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetTranscriptionArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		t, err := store.GetTranscription(args.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("transcription not found: %s", args.ID)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		return jsonResult(TranscriptionDetail{
			TranscriptionSummary: summarize(*t),
			OutputPath:           t.OutputPath,
			FileSize:             t.FileSize,
			DurationSeconds:      t.MediaDuration.Seconds(),
			ElapsedSeconds:       t.Elapsed.Seconds(),
			Error:                t.Error,
			Transcript:           t.Transcript,
		})
	}
}

func summarize(t db.Transcription) TranscriptionSummary {
	return TranscriptionSummary{
		ID:         t.ID,
		SourcePath: t.SourcePath,
		Format:     t.Format,
		Language:   t.Language,
		Status:     t.Status,
		CreatedAt:  t.CreatedAt.Format(timeLayout),
	}
}
