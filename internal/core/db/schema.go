package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per transcription attempt that passed validation
	CREATE TABLE IF NOT EXISTS transcriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT UNIQUE NOT NULL,
		source_path TEXT NOT NULL,
		output_path TEXT,
		format TEXT NOT NULL,
		language TEXT NOT NULL,
		endpoint TEXT,
		file_size INTEGER DEFAULT 0,
		media_duration_ms INTEGER DEFAULT 0,
		elapsed_ms INTEGER DEFAULT 0,
		status TEXT NOT NULL CHECK(status IN ('completed', 'failed')),
		error_message TEXT,
		transcript TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transcriptions_uuid ON transcriptions(uuid);
	CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
	CREATE INDEX IF NOT EXISTS idx_transcriptions_source_path ON transcriptions(source_path);

	-- Full-text search over transcripts
	CREATE VIRTUAL TABLE IF NOT EXISTS transcriptions_fts USING fts5(
		transcript,
		content=transcriptions,
		content_rowid=id,
		tokenize='porter unicode61'
	);

	-- Triggers to keep FTS in sync
	CREATE TRIGGER IF NOT EXISTS transcriptions_ai AFTER INSERT ON transcriptions BEGIN
		INSERT INTO transcriptions_fts(rowid, transcript) VALUES (new.id, new.transcript);
	END;

	CREATE TRIGGER IF NOT EXISTS transcriptions_ad AFTER DELETE ON transcriptions BEGIN
		INSERT INTO transcriptions_fts(transcriptions_fts, rowid, transcript) VALUES ('delete', old.id, old.transcript);
	END;

	CREATE TRIGGER IF NOT EXISTS transcriptions_au AFTER UPDATE ON transcriptions BEGIN
		INSERT INTO transcriptions_fts(transcriptions_fts, rowid, transcript) VALUES ('delete', old.id, old.transcript);
		INSERT INTO transcriptions_fts(rowid, transcript) VALUES (new.id, new.transcript);
	END;
	`

	_, err := db.conn.Exec(schema)
	return err
}
