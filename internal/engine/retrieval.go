package engine

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fennwick/keepsake/internal/store"
)

const (
	semanticLimit = 15
	episodicLimit = 5
	segmentLimit  = 5

	// recencyHalfLife is the hours over which the episodic recency factor
	// falls to 1/e.
	recencyHalfLife = 24.0

	// neverAccessedRecency is the factor for rows never accessed or with an
	// unparsable last_accessed.
	neverAccessedRecency = 0.1

	summaryRenderMax = 200
)

// MemoryBundle groups the three retrieval results handed to the prompt
// builder.
type MemoryBundle struct {
	Semantic []store.SemanticMemory `json:"semantic"`
	Episodic []store.EpisodicMemory `json:"episodic"`
	Segments []store.Segment        `json:"segments"`
}

// RetrieveSemantic returns the top semantic memories for a session scored by
// importance * confidence, bumping access stats on the returned rows only.
func (e *Engine) RetrieveSemantic(sessionID string) ([]store.SemanticMemory, error) {
	rows, err := e.DB.ListSemantic(sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve semantic: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Importance*rows[i].Confidence > rows[j].Importance*rows[j].Confidence
	})
	if len(rows) > semanticLimit {
		rows = rows[:semanticLimit]
	}

	if err := e.DB.TouchSemantic(rowIDsSemantic(rows)); err != nil {
		log.Printf("retrieve semantic: touch: %v", err)
	}
	return rows, nil
}

// RetrieveEpisodic returns the top episodic memories scored by importance +
// emotional_weight*0.5 + recency, bumping access stats on the returned rows.
func (e *Engine) RetrieveEpisodic(sessionID string) ([]store.EpisodicMemory, error) {
	rows, err := e.DB.ListEpisodic(sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve episodic: %w", err)
	}

	scores := make(map[int64]float64, len(rows))
	for _, m := range rows {
		scores[m.ID] = m.Importance + m.EmotionalWeight*0.5 + recencyFactor(m.LastAccessed)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return scores[rows[i].ID] > scores[rows[j].ID]
	})
	if len(rows) > episodicLimit {
		rows = rows[:episodicLimit]
	}

	if err := e.DB.TouchEpisodic(rowIDsEpisodic(rows)); err != nil {
		log.Printf("retrieve episodic: touch: %v", err)
	}
	return rows, nil
}

// RetrieveSegments returns the top segments ordered by importance with the
// most recent id as tiebreak. Segments are static artifacts: no access-stat
// mutation.
func (e *Engine) RetrieveSegments(sessionID string) ([]store.Segment, error) {
	rows, err := e.DB.ListSegments(sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve segments: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Importance != rows[j].Importance {
			return rows[i].Importance > rows[j].Importance
		}
		return rows[i].ID > rows[j].ID
	})
	if len(rows) > segmentLimit {
		rows = rows[:segmentLimit]
	}
	return rows, nil
}

// RetrieveMemory bundles the three retrieval reads. Each sub-read is
// isolated: a failure degrades that kind to an empty list and never blanks
// the whole bundle.
func (e *Engine) RetrieveMemory(sessionID string) MemoryBundle {
	var bundle MemoryBundle

	if rows, err := e.RetrieveSemantic(sessionID); err != nil {
		log.Printf("retrieve memory %s: semantic: %v", sessionID, err)
	} else {
		bundle.Semantic = rows
	}

	if rows, err := e.RetrieveEpisodic(sessionID); err != nil {
		log.Printf("retrieve memory %s: episodic: %v", sessionID, err)
	} else {
		bundle.Episodic = rows
	}

	if rows, err := e.RetrieveSegments(sessionID); err != nil {
		log.Printf("retrieve memory %s: segments: %v", sessionID, err)
	} else {
		bundle.Segments = rows
	}

	return bundle
}

// recencyFactor decays exponentially with hours since last access.
func recencyFactor(lastAccessed string) float64 {
	t, ok := parseStamp(lastAccessed)
	if !ok {
		return neverAccessedRecency
	}
	h := time.Since(t).Hours()
	if h < 0 {
		h = 0
	}
	return math.Exp(-h / recencyHalfLife)
}

// FormatMemory renders a bundle into the text block folded into the prompt.
// Empty sections are omitted; an all-empty bundle renders to "".
func FormatMemory(b MemoryBundle) string {
	var sections []string

	if len(b.Semantic) > 0 {
		var sb strings.Builder
		sb.WriteString("Known preferences:\n")
		for _, m := range b.Semantic {
			fmt.Fprintf(&sb, "- %s %s %s\n", m.Entity, m.Relation, m.Target)
		}
		sections = append(sections, sb.String())
	}

	if len(b.Episodic) > 0 {
		var sb strings.Builder
		sb.WriteString("Recent important events:\n")
		for _, m := range b.Episodic {
			fmt.Fprintf(&sb, "- %s\n", truncate(m.Summary, summaryRenderMax))
		}
		sections = append(sections, sb.String())
	}

	if len(b.Segments) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant past context:\n")
		for _, s := range b.Segments {
			fmt.Fprintf(&sb, "- %s\n", truncate(s.Summary, summaryRenderMax))
		}
		sections = append(sections, sb.String())
	}

	return strings.TrimRight(strings.Join(sections, "\n"), "\n")
}

func rowIDsSemantic(rows []store.SemanticMemory) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func rowIDsEpisodic(rows []store.EpisodicMemory) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}
