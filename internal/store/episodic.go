package store

import (
	"database/sql"
	"fmt"
)

// EpisodicMemory is a narrative snapshot of a notable conversational moment.
// Embedding is reserved for future vector search and never read by retrieval.
type EpisodicMemory struct {
	ID              int64
	SessionID       string
	Summary         string
	Importance      float64
	EmotionalWeight float64
	Embedding       []byte
	LastAccessed    string
	AccessCount     int
	CreatedAt       string
}

// InsertEpisodic records a new episodic memory.
func (db *DB) InsertEpisodic(m *EpisodicMemory) error {
	now := nowStamp()
	result, err := db.Exec(`
		INSERT INTO episodic_memories
			(session_id, summary, importance, emotional_weight, embedding,
			 last_accessed, access_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, m.SessionID, m.Summary, m.Importance, m.EmotionalWeight, m.Embedding, now, now)
	if err != nil {
		return fmt.Errorf("insert episodic: %w", err)
	}
	id, _ := result.LastInsertId()
	m.ID = id
	m.LastAccessed = now
	m.CreatedAt = now
	return nil
}

// ListEpisodic returns all episodic memories for a session. An empty session
// id returns every row (used by the decay engine).
func (db *DB) ListEpisodic(sessionID string) ([]EpisodicMemory, error) {
	query := `
		SELECT id, session_id, summary, importance, emotional_weight, embedding,
			last_accessed, access_count, created_at
		FROM episodic_memories`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodic: %w", err)
	}
	defer rows.Close()

	var memories []EpisodicMemory
	for rows.Next() {
		var m EpisodicMemory
		var lastAccessed sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Summary, &m.Importance,
			&m.EmotionalWeight, &m.Embedding, &lastAccessed, &m.AccessCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan episodic: %w", err)
		}
		m.LastAccessed = lastAccessed.String
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// TouchEpisodic bumps access_count and last_accessed on the given rows.
func (db *DB) TouchEpisodic(ids []int64) error {
	return db.touch("episodic_memories", ids)
}

// SetEpisodicImportance overwrites a row's importance (decay write path).
func (db *DB) SetEpisodicImportance(id int64, importance float64) error {
	_, err := db.Exec(`UPDATE episodic_memories SET importance = ? WHERE id = ?`, importance, id)
	if err != nil {
		return fmt.Errorf("set episodic importance: %w", err)
	}
	return nil
}

// ReinforceEpisodic applies an explicit usefulness signal: importance +0.05
// (capped at 1.0), access_count +1, last_accessed refreshed.
func (db *DB) ReinforceEpisodic(id int64) error {
	result, err := db.Exec(`
		UPDATE episodic_memories
		SET importance = min(importance + ?, 1.0),
			access_count = access_count + 1,
			last_accessed = ?
		WHERE id = ?
	`, reinforcementStep, nowStamp(), id)
	if err != nil {
		return fmt.Errorf("reinforce episodic: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("episodic memory %d not found", id)
	}
	return nil
}
