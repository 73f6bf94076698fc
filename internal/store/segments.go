package store

import (
	"fmt"
)

// Segment is a write-once, non-overlapping range of message ids with a
// generated summary. Importance is fixed at creation and never decayed.
type Segment struct {
	ID             int64
	SessionID      string
	StartMessageID int64
	EndMessageID   int64
	Summary        string
	Importance     float64
	CreatedAt      string
}

// HighWaterMark returns the highest end_message_id recorded for a session,
// or 0 if the session has no segments. The next segmentation run only
// considers messages with id strictly greater than this.
func (db *DB) HighWaterMark(sessionID string) (int64, error) {
	var mark int64
	err := db.QueryRow(`
		SELECT COALESCE(MAX(end_message_id), 0)
		FROM conversation_segments WHERE session_id = ?
	`, sessionID).Scan(&mark)
	if err != nil {
		return 0, fmt.Errorf("high water mark: %w", err)
	}
	return mark, nil
}

// InsertSegment records a new conversation segment.
func (db *DB) InsertSegment(s *Segment) error {
	now := nowStamp()
	result, err := db.Exec(`
		INSERT INTO conversation_segments
			(session_id, start_message_id, end_message_id, summary, importance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.SessionID, s.StartMessageID, s.EndMessageID, s.Summary, s.Importance, now)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}
	id, _ := result.LastInsertId()
	s.ID = id
	s.CreatedAt = now
	return nil
}

// ListSegments returns all segments for a session, most recently created
// first.
func (db *DB) ListSegments(sessionID string) ([]Segment, error) {
	rows, err := db.Query(`
		SELECT id, session_id, start_message_id, end_message_id, summary, importance, created_at
		FROM conversation_segments
		WHERE session_id = ?
		ORDER BY id DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var s Segment
		if err := rows.Scan(&s.ID, &s.SessionID, &s.StartMessageID, &s.EndMessageID,
			&s.Summary, &s.Importance, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}
