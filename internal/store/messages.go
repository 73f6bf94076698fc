package store

import (
	"fmt"
)

// Message is one entry in the external message log: a per-session append-only
// stream with monotonically increasing ids, role tags, and TimeLayout
// timestamps.
type Message struct {
	ID        int64
	SessionID string
	Role      string // "user", "assistant", "system"
	Content   string
	Timestamp string
}

// AddMessage appends a message to the log. An empty timestamp is filled with
// the current time.
func (db *DB) AddMessage(sessionID, role, content, timestamp string) (int64, error) {
	if timestamp == "" {
		timestamp = nowStamp()
	}
	result, err := db.Exec(`
		INSERT INTO messages (session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?)
	`, sessionID, role, content, timestamp)
	if err != nil {
		return 0, fmt.Errorf("add message: %w", err)
	}
	id, _ := result.LastInsertId()
	return id, nil
}

// MessagesAfter returns user/assistant messages for a session with id strictly
// greater than afterID, ordered by id ascending.
func (db *DB) MessagesAfter(sessionID string, afterID int64) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, session_id, role, content, timestamp
		FROM messages
		WHERE session_id = ? AND id > ? AND role IN ('user', 'assistant')
		ORDER BY id ASC
	`, sessionID, afterID)
	if err != nil {
		return nil, fmt.Errorf("messages after: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SessionIDs returns every distinct session id present in the message log.
func (db *DB) SessionIDs() ([]string, error) {
	rows, err := db.Query(`SELECT DISTINCT session_id FROM messages ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("session ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
