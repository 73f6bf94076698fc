package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "messages: per-session append-only dialogue log",
		SQL: `
CREATE TABLE messages (
    id         INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    timestamp  TEXT NOT NULL
);

CREATE INDEX idx_messages_session ON messages(session_id, id);
`,
	},
	{
		Version:     2,
		Description: "semantic_memories: normalized fact triples about the user",
		SQL: `
CREATE TABLE semantic_memories (
    id            INTEGER PRIMARY KEY,
    session_id    TEXT NOT NULL,
    entity        TEXT NOT NULL,
    relation      TEXT NOT NULL,
    target        TEXT NOT NULL,
    confidence    REAL NOT NULL DEFAULT 0.5,
    importance    REAL NOT NULL DEFAULT 0.5,
    last_accessed TEXT,
    access_count  INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL
);

CREATE INDEX idx_semantic_session ON semantic_memories(session_id);
`,
	},
	{
		Version:     3,
		Description: "episodic_memories: summarized notable moments",
		SQL: `
CREATE TABLE episodic_memories (
    id               INTEGER PRIMARY KEY,
    session_id       TEXT NOT NULL,
    summary          TEXT NOT NULL,
    importance       REAL NOT NULL DEFAULT 0.5,
    emotional_weight REAL NOT NULL DEFAULT 0.0,
    embedding        BLOB,
    last_accessed    TEXT,
    access_count     INTEGER NOT NULL DEFAULT 0,
    created_at       TEXT NOT NULL
);

CREATE INDEX idx_episodic_session ON episodic_memories(session_id);
`,
	},
	{
		Version:     4,
		Description: "conversation_segments: non-overlapping summarized dialogue ranges",
		SQL: `
CREATE TABLE conversation_segments (
    id               INTEGER PRIMARY KEY,
    session_id       TEXT NOT NULL,
    start_message_id INTEGER NOT NULL,
    end_message_id   INTEGER NOT NULL,
    summary          TEXT NOT NULL,
    importance       REAL NOT NULL DEFAULT 0.5,
    created_at       TEXT NOT NULL
);

CREATE INDEX idx_segments_session ON conversation_segments(session_id, start_message_id);
`,
	},
	{
		Version:     5,
		Description: "extraction_marks: per-session extractor high-water mark",
		SQL: `
CREATE TABLE extraction_marks (
    session_id      TEXT PRIMARY KEY,
    last_message_id INTEGER NOT NULL DEFAULT 0,
    updated_at      TEXT NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
