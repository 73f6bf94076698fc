package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/fennwick/keepsake/internal/store"
)

const (
	segmentGap         = 15 * time.Minute
	segmentMaxMessages = 20
	segmentMinTail     = 5
	segmentImportance  = 0.5
)

// SegmentSession partitions un-segmented messages into bounded,
// non-overlapping segments and returns the number created this run. A
// per-session lock serializes concurrent calls so two callers can never read
// the same high-water mark and write overlapping ranges. Sessions with no
// qualifying messages return 0.
func (e *Engine) SegmentSession(sessionID string) (int, error) {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	mark, err := e.DB.HighWaterMark(sessionID)
	if err != nil {
		return 0, fmt.Errorf("segment %s: %w", sessionID, err)
	}

	msgs, err := e.DB.MessagesAfter(sessionID, mark)
	if err != nil {
		return 0, fmt.Errorf("segment %s: %w", sessionID, err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	created := 0
	for _, group := range groupMessages(msgs) {
		seg := &store.Segment{
			SessionID:      sessionID,
			StartMessageID: group[0].ID,
			EndMessageID:   group[len(group)-1].ID,
			Summary:        SummarizeTurns(messagesToTurns(group)),
			Importance:     segmentImportance,
		}
		if err := e.DB.InsertSegment(seg); err != nil {
			return created, fmt.Errorf("segment %s: %w", sessionID, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("segmenter: created %d segments for %s", created, sessionID)
	}
	return created, nil
}

// groupMessages runs the boundary algorithm in a single linear pass: close
// the open group before appending a message when the time gap to the previous
// message is >= 15 minutes or the group already holds 20 messages. A trailing
// group under 5 messages is dropped and stays unsegmented until it grows or a
// later boundary closes it.
func groupMessages(msgs []store.Message) [][]store.Message {
	var groups [][]store.Message
	var cur []store.Message
	var prev time.Time
	prevOK := false

	for _, m := range msgs {
		t, ok := parseStamp(m.Timestamp)
		if len(cur) > 0 && (len(cur) >= segmentMaxMessages || gapExceeded(prev, prevOK, t, ok)) {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, m)
		prev, prevOK = t, ok
	}

	if len(cur) >= segmentMinTail {
		groups = append(groups, cur)
	}
	return groups
}

// gapExceeded reports whether the pause between two adjacent messages closes
// the open group. An unparsable previous timestamp counts as maximally stale
// (always a boundary); an unparsable current one asserts nothing.
func gapExceeded(prev time.Time, prevOK bool, cur time.Time, curOK bool) bool {
	if !prevOK {
		return true
	}
	if !curOK {
		return false
	}
	return cur.Sub(prev) >= segmentGap
}

func messagesToTurns(msgs []store.Message) []Turn {
	turns := make([]Turn, len(msgs))
	for i, m := range msgs {
		turns[i] = Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}
