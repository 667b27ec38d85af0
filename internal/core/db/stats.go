package db

import (
	"database/sql"
	"time"
)

// Stats represents history statistics
type Stats struct {
	Total        int
	Completed    int
	Failed       int
	TotalBytes   int64
	TotalMedia   time.Duration
	AvgElapsed   time.Duration
	Oldest       time.Time
	Newest       time.Time
	ByFormat     map[string]int
	TopLanguage  string
	TopLanguageN int
}

// GetStats returns statistics over all recorded transcriptions
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{ByFormat: map[string]int{}}

	var mediaMS int64

	err := db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(file_size), 0),
			COALESCE(SUM(media_duration_ms), 0)
		FROM transcriptions
	`).Scan(&stats.Total, &stats.Completed, &stats.Failed, &stats.TotalBytes, &mediaMS)
	if err != nil {
		return nil, err
	}
	stats.TotalMedia = time.Duration(mediaMS) * time.Millisecond

	if stats.Total == 0 {
		return stats, nil
	}

	var avgElapsed sql.NullFloat64
	err = db.QueryRow(`SELECT AVG(elapsed_ms) FROM transcriptions WHERE status = 'completed'`).Scan(&avgElapsed)
	if err != nil {
		return nil, err
	}
	if avgElapsed.Valid {
		stats.AvgElapsed = time.Duration(avgElapsed.Float64) * time.Millisecond
	}

	var minCreated, maxCreated sql.NullString
	err = db.QueryRow("SELECT MIN(created_at), MAX(created_at) FROM transcriptions").Scan(&minCreated, &maxCreated)
	if err != nil {
		return nil, err
	}
	if minCreated.Valid {
		stats.Oldest = parseTimestamp(minCreated.String)
	}
	if maxCreated.Valid {
		stats.Newest = parseTimestamp(maxCreated.String)
	}

	rows, err := db.Query(`SELECT format, COUNT(*) FROM transcriptions GROUP BY format`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var format string
		var n int
		if err := rows.Scan(&format, &n); err != nil {
			return nil, err
		}
		stats.ByFormat[format] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = db.QueryRow(`
		SELECT language, COUNT(*) as count
		FROM transcriptions
		GROUP BY language
		ORDER BY count DESC, language ASC
		LIMIT 1
	`).Scan(&stats.TopLanguage, &stats.TopLanguageN)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return stats, nil
}
