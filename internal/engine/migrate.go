package engine

import (
	"fmt"
	"log"
)

// migrationBatchSize is the number of log messages fed to the extractor per
// backfill batch.
const migrationBatchSize = 20

// MigrationResult reports what a backfill run produced.
type MigrationResult struct {
	SemanticCount int `json:"semantic_count"`
	SegmentCount  int `json:"segment_count"`
}

// MigrateSession backfills memory from a session's full message history:
// fact extraction over fixed-size batches, then one segmentation run. The
// extraction high-water mark makes repeated runs safe no-ops — history below
// the mark is never re-submitted, so confidences are not inflated.
func (e *Engine) MigrateSession(sessionID string) (MigrationResult, error) {
	var res MigrationResult

	mark, err := e.DB.ExtractionMark(sessionID)
	if err != nil {
		return res, fmt.Errorf("migrate %s: %w", sessionID, err)
	}

	msgs, err := e.DB.MessagesAfter(sessionID, mark)
	if err != nil {
		return res, fmt.Errorf("migrate %s: %w", sessionID, err)
	}

	for start := 0; start < len(msgs); start += migrationBatchSize {
		end := start + migrationBatchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		for _, f := range ExtractFacts(messagesToTurns(msgs[start:end])) {
			if _, err := e.DB.UpsertFact(sessionID, f.Entity, f.Relation, f.Target); err != nil {
				log.Printf("migrate %s: upsert fact (%s %s %s): %v",
					sessionID, f.Entity, f.Relation, f.Target, err)
				continue
			}
			res.SemanticCount++
		}
	}

	if len(msgs) > 0 {
		if err := e.DB.SetExtractionMark(sessionID, msgs[len(msgs)-1].ID); err != nil {
			return res, fmt.Errorf("migrate %s: %w", sessionID, err)
		}
	}

	segments, err := e.SegmentSession(sessionID)
	if err != nil {
		return res, fmt.Errorf("migrate %s: %w", sessionID, err)
	}
	res.SegmentCount = segments

	return res, nil
}

// MigrateAll backfills every known session and aggregates the totals. A
// failure on one session is logged and does not abort the others.
func (e *Engine) MigrateAll() (MigrationResult, error) {
	var total MigrationResult

	ids, err := e.DB.SessionIDs()
	if err != nil {
		return total, fmt.Errorf("migrate all: %w", err)
	}

	for _, id := range ids {
		res, err := e.MigrateSession(id)
		if err != nil {
			log.Printf("migrate all: session %s: %v", id, err)
			continue
		}
		total.SemanticCount += res.SemanticCount
		total.SegmentCount += res.SegmentCount
	}
	return total, nil
}
