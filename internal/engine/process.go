package engine

import (
	"log"

	"github.com/fennwick/keepsake/internal/store"
)

// episodicBaseImportance plus a share of the batch's emotional weight sets
// the initial importance of a triggered episodic memory.
const (
	episodicBaseImportance = 0.5
	episodicWeightShare    = 0.3
)

// ProcessResult reports what a ProcessMessages call stored. Per-item failures
// are counted rather than raised so callers and tests can assert on them.
type ProcessResult struct {
	FactsStored     int  `json:"facts_stored"`
	FactsFailed     int  `json:"facts_failed"`
	EpisodicCreated bool `json:"episodic_created"`
}

// ProcessMessages is the write path invoked after every assistant turn. It
// extracts facts from the batch, upserts each independently, and records an
// episodic memory when the trigger fires. Failures are logged and counted;
// nothing propagates to the conversational caller.
func (e *Engine) ProcessMessages(sessionID string, turns []Turn, affectionDelta float64) ProcessResult {
	var res ProcessResult

	for _, f := range ExtractFacts(turns) {
		if _, err := e.DB.UpsertFact(sessionID, f.Entity, f.Relation, f.Target); err != nil {
			log.Printf("process: upsert fact (%s %s %s): %v", f.Entity, f.Relation, f.Target, err)
			res.FactsFailed++
			continue
		}
		res.FactsStored++
	}

	weight := EmotionalWeight(turns)
	if ShouldCreateEpisodic(turns, affectionDelta) {
		mem := &store.EpisodicMemory{
			SessionID:       sessionID,
			Summary:         SummarizeTurns(turns),
			Importance:      episodicBaseImportance + weight*episodicWeightShare,
			EmotionalWeight: weight,
		}
		if err := e.DB.InsertEpisodic(mem); err != nil {
			log.Printf("process: insert episodic for %s: %v", sessionID, err)
		} else {
			res.EpisodicCreated = true
		}
	}

	return res
}
