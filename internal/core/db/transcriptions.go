package db

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// timeLayout is how created_at is stored; always UTC so string order is time order.
const timeLayout = "2006-01-02 15:04:05"

var ErrNotFound = errors.New("transcription not found")

// Transcription is one recorded transcription attempt
type Transcription struct {
	ID            string
	SourcePath    string
	OutputPath    string
	Format        string
	Language      string
	Endpoint      string
	FileSize      int64
	MediaDuration time.Duration
	Elapsed       time.Duration
	Status        string
	Error         string
	Transcript    string
	CreatedAt     time.Time
}

// ListFilter narrows ListTranscriptions. Zero values mean "any".
type ListFilter struct {
	After    time.Time
	Before   time.Time
	Format   string
	Language string
	Status   string
	Query    string // full-text match against transcripts
	Limit    int
}

// InsertTranscription records a transcription attempt
func (db *DB) InsertTranscription(t Transcription) error {
	if t.ID == "" {
		return fmt.Errorf("transcription id is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := db.conn.Exec(`
		INSERT INTO transcriptions (
			uuid, source_path, output_path, format, language, endpoint,
			file_size, media_duration_ms, elapsed_ms, status, error_message,
			transcript, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.SourcePath, t.OutputPath, t.Format, t.Language, t.Endpoint,
		t.FileSize, t.MediaDuration.Milliseconds(), t.Elapsed.Milliseconds(), t.Status, t.Error,
		t.Transcript, t.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert transcription: %w", err)
	}
	return nil
}

const selectColumns = `
	t.uuid, t.source_path, COALESCE(t.output_path, ''), t.format, t.language,
	COALESCE(t.endpoint, ''), t.file_size, t.media_duration_ms, t.elapsed_ms,
	t.status, COALESCE(t.error_message, ''), COALESCE(t.transcript, ''), t.created_at`

func scanTranscription(scan func(dest ...interface{}) error) (Transcription, error) {
	var t Transcription
	var mediaMS, elapsedMS int64
	var createdAt string
	err := scan(&t.ID, &t.SourcePath, &t.OutputPath, &t.Format, &t.Language,
		&t.Endpoint, &t.FileSize, &mediaMS, &elapsedMS,
		&t.Status, &t.Error, &t.Transcript, &createdAt)
	if err != nil {
		return t, err
	}
	t.MediaDuration = time.Duration(mediaMS) * time.Millisecond
	t.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	t.CreatedAt = parseTimestamp(createdAt)
	return t, nil
}

// GetTranscription finds a transcription by id or unique id prefix
func (db *DB) GetTranscription(idPrefix string) (*Transcription, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, ErrNotFound
	}

	rows, err := db.conn.Query(`
		SELECT `+selectColumns+`
		FROM transcriptions t
		WHERE t.uuid LIKE ? || '%'
		ORDER BY t.created_at DESC
		LIMIT 2
	`, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("query transcription: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []Transcription
	for rows.Next() {
		t, err := scanTranscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		found = append(found, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous", idPrefix)
	}
}

// ListTranscriptions returns transcriptions newest first
func (db *DB) ListTranscriptions(f ListFilter) ([]Transcription, error) {
	var where []string
	var args []interface{}

	if !f.After.IsZero() {
		where = append(where, "t.created_at >= ?")
		args = append(args, f.After.UTC().Format(timeLayout))
	}
	if !f.Before.IsZero() {
		where = append(where, "t.created_at < ?")
		args = append(args, f.Before.UTC().Format(timeLayout))
	}
	if f.Format != "" {
		where = append(where, "t.format = ?")
		args = append(args, strings.ToLower(f.Format))
	}
	if f.Language != "" {
		where = append(where, "t.language = ?")
		args = append(args, strings.ToLower(f.Language))
	}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		// FTS5 chokes on punctuation; fall back to substring matching
		if strings.ContainsAny(q, "-_@#$%&\"'*:()") {
			where = append(where, "t.transcript LIKE '%' || ? || '%'")
			args = append(args, q)
		} else {
			where = append(where, "t.id IN (SELECT rowid FROM transcriptions_fts WHERE transcriptions_fts MATCH ?)")
			args = append(args, q)
		}
	}

	query := `SELECT ` + selectColumns + ` FROM transcriptions t`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Transcription
	for rows.Next() {
		t, err := scanTranscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTranscription removes a transcription by exact id
func (db *DB) DeleteTranscription(id string) error {
	res, err := db.conn.Exec(`DELETE FROM transcriptions WHERE uuid = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transcription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// parseTimestamp attempts to parse timestamps from various formats
func parseTimestamp(s string) time.Time {
	formats := []string{
		timeLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
