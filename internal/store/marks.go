package store

import (
	"fmt"
)

// ExtractionMark returns the highest message id already consumed by fact
// extraction for a session, or 0 if the session was never extracted. Backfill
// runs consult this so re-running migration never re-submits history.
func (db *DB) ExtractionMark(sessionID string) (int64, error) {
	var mark int64
	err := db.QueryRow(`
		SELECT COALESCE(MAX(last_message_id), 0)
		FROM extraction_marks WHERE session_id = ?
	`, sessionID).Scan(&mark)
	if err != nil {
		return 0, fmt.Errorf("extraction mark: %w", err)
	}
	return mark, nil
}

// SetExtractionMark advances the extraction high-water mark for a session.
func (db *DB) SetExtractionMark(sessionID string, lastMessageID int64) error {
	_, err := db.Exec(`
		INSERT INTO extraction_marks (session_id, last_message_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			last_message_id = excluded.last_message_id,
			updated_at = excluded.updated_at
	`, sessionID, lastMessageID, nowStamp())
	if err != nil {
		return fmt.Errorf("set extraction mark: %w", err)
	}
	return nil
}
