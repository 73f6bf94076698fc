package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// SemanticMemory is a normalized fact about the user.
type SemanticMemory struct {
	ID           int64
	SessionID    string
	Entity       string
	Relation     string
	Target       string
	Confidence   float64
	Importance   float64
	LastAccessed string
	AccessCount  int
	CreatedAt    string
}

const (
	initialConfidence = 0.5
	initialImportance = 0.5
	confidenceStep    = 0.1
	reinforcementStep = 0.05
)

// normalizeKey folds a triple component for dedup lookup. Stored values keep
// their original casing; only the comparison is normalized, so "Python" and
// "python " land on the same row.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindTriple returns the semantic memory matching the (session, entity,
// relation, target) dedup key, or nil if none exists.
func (db *DB) FindTriple(sessionID, entity, relation, target string) (*SemanticMemory, error) {
	var m SemanticMemory
	var lastAccessed sql.NullString
	err := db.QueryRow(`
		SELECT id, session_id, entity, relation, target, confidence, importance,
			last_accessed, access_count, created_at
		FROM semantic_memories
		WHERE session_id = ? AND relation = ?
			AND lower(trim(entity)) = ? AND lower(trim(target)) = ?
	`, sessionID, relation, normalizeKey(entity), normalizeKey(target)).Scan(
		&m.ID, &m.SessionID, &m.Entity, &m.Relation, &m.Target,
		&m.Confidence, &m.Importance, &lastAccessed, &m.AccessCount, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find triple: %w", err)
	}
	m.LastAccessed = lastAccessed.String
	return &m, nil
}

// UpsertFact records a fact triple. A rematch on the dedup key bumps
// confidence by 0.1 (capped at 1.0) and refreshes access stats; a new triple
// is inserted with confidence and importance 0.5. Returns whether a new row
// was created.
func (db *DB) UpsertFact(sessionID, entity, relation, target string) (bool, error) {
	existing, err := db.FindTriple(sessionID, entity, relation, target)
	if err != nil {
		return false, err
	}

	now := nowStamp()
	if existing != nil {
		_, err := db.Exec(`
			UPDATE semantic_memories
			SET confidence = min(confidence + ?, 1.0),
				access_count = access_count + 1,
				last_accessed = ?
			WHERE id = ?
		`, confidenceStep, now, existing.ID)
		if err != nil {
			return false, fmt.Errorf("bump fact confidence: %w", err)
		}
		return false, nil
	}

	_, err = db.Exec(`
		INSERT INTO semantic_memories
			(session_id, entity, relation, target, confidence, importance,
			 last_accessed, access_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, sessionID, entity, relation, target, initialConfidence, initialImportance, now, now)
	if err != nil {
		return false, fmt.Errorf("insert fact: %w", err)
	}
	return true, nil
}

// ListSemantic returns all semantic memories for a session. An empty session
// id returns every row (used by the decay engine).
func (db *DB) ListSemantic(sessionID string) ([]SemanticMemory, error) {
	query := `
		SELECT id, session_id, entity, relation, target, confidence, importance,
			last_accessed, access_count, created_at
		FROM semantic_memories`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list semantic: %w", err)
	}
	defer rows.Close()

	var memories []SemanticMemory
	for rows.Next() {
		var m SemanticMemory
		var lastAccessed sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Entity, &m.Relation, &m.Target,
			&m.Confidence, &m.Importance, &lastAccessed, &m.AccessCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan semantic: %w", err)
		}
		m.LastAccessed = lastAccessed.String
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// TouchSemantic bumps access_count and last_accessed on the given rows
// (retrieval read reinforcement — importance is untouched).
func (db *DB) TouchSemantic(ids []int64) error {
	return db.touch("semantic_memories", ids)
}

// SetSemanticImportance overwrites a row's importance (decay write path).
func (db *DB) SetSemanticImportance(id int64, importance float64) error {
	_, err := db.Exec(`UPDATE semantic_memories SET importance = ? WHERE id = ?`, importance, id)
	if err != nil {
		return fmt.Errorf("set semantic importance: %w", err)
	}
	return nil
}

// ReinforceSemantic applies an explicit usefulness signal: importance +0.05
// (capped at 1.0), access_count +1, last_accessed refreshed.
func (db *DB) ReinforceSemantic(id int64) error {
	result, err := db.Exec(`
		UPDATE semantic_memories
		SET importance = min(importance + ?, 1.0),
			access_count = access_count + 1,
			last_accessed = ?
		WHERE id = ?
	`, reinforcementStep, nowStamp(), id)
	if err != nil {
		return fmt.Errorf("reinforce semantic: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("semantic memory %d not found", id)
	}
	return nil
}

// touch updates access stats on a set of rows in one statement.
func (db *DB) touch(table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := []any{nowStamp()}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(`
		UPDATE %s SET access_count = access_count + 1, last_accessed = ?
		WHERE id IN (%s)
	`, table, strings.Join(placeholders, ","))
	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("touch %s: %w", table, err)
	}
	return nil
}
