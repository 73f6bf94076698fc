package engine

import (
	"fmt"
	"log"
	"math"
)

const (
	// decayFloor keeps importance strictly positive so downstream scoring
	// never divides by or multiplies into zero.
	decayFloor = 0.01

	semanticBaseStability = 24.0
	semanticAccessScale   = 0.5
	episodicBaseStability = 48.0
	episodicAccessScale   = 0.3
)

// DecayResult counts the rows whose importance a decay run reduced.
type DecayResult struct {
	Semantic int `json:"semantic"`
	Episodic int `json:"episodic"`
}

// stability returns the decay time constant in hours. Higher access counts
// raise stability, so frequently retrieved memories decay more slowly — the
// sole feedback loop between retrieval activity and long-term survival.
func stability(base, accessScale float64, accessCount int) float64 {
	s := base * (1 + float64(accessCount)*accessScale)
	return math.Max(s, base)
}

// decayedImportance applies exponential decay with the hard floor.
func decayedImportance(importance, hours, stab float64) float64 {
	return math.Max(importance*math.Exp(-hours/stab), decayFloor)
}

// DecaySemantic ages semantic memories, optionally filtered by session
// (empty = all). Returns the number of rows updated.
func (e *Engine) DecaySemantic(sessionID string) (int, error) {
	rows, err := e.DB.ListSemantic(sessionID)
	if err != nil {
		return 0, fmt.Errorf("decay semantic: %w", err)
	}

	updated := 0
	for _, m := range rows {
		hours := hoursSince(m.LastAccessed)
		stab := stability(semanticBaseStability, semanticAccessScale, m.AccessCount)
		next := decayedImportance(m.Importance, hours, stab)
		if next >= m.Importance {
			continue
		}
		if err := e.DB.SetSemanticImportance(m.ID, next); err != nil {
			return updated, fmt.Errorf("decay semantic: %w", err)
		}
		updated++
	}
	return updated, nil
}

// DecayEpisodic ages episodic memories, optionally filtered by session
// (empty = all). Returns the number of rows updated.
func (e *Engine) DecayEpisodic(sessionID string) (int, error) {
	rows, err := e.DB.ListEpisodic(sessionID)
	if err != nil {
		return 0, fmt.Errorf("decay episodic: %w", err)
	}

	updated := 0
	for _, m := range rows {
		hours := hoursSince(m.LastAccessed)
		stab := stability(episodicBaseStability, episodicAccessScale, m.AccessCount)
		next := decayedImportance(m.Importance, hours, stab)
		if next >= m.Importance {
			continue
		}
		if err := e.DB.SetEpisodicImportance(m.ID, next); err != nil {
			return updated, fmt.Errorf("decay episodic: %w", err)
		}
		updated++
	}
	return updated, nil
}

// RunDecay runs both decay passes, each independently isolated. Safe to call
// with no data present; never raises.
func (e *Engine) RunDecay(sessionID string) DecayResult {
	var res DecayResult

	if n, err := e.DecaySemantic(sessionID); err != nil {
		log.Printf("decay: semantic: %v", err)
	} else {
		res.Semantic = n
	}

	if n, err := e.DecayEpisodic(sessionID); err != nil {
		log.Printf("decay: episodic: %v", err)
	} else {
		res.Episodic = n
	}

	return res
}

// Reinforce applies an explicit usefulness signal to one memory: importance
// +0.05 capped at 1.0, access_count +1, last_accessed refreshed. Distinct
// from the implicit access bump inside retrieval, which never raises
// importance.
func (e *Engine) Reinforce(id int64, memType string) error {
	switch memType {
	case "semantic":
		return e.DB.ReinforceSemantic(id)
	case "episodic":
		return e.DB.ReinforceEpisodic(id)
	default:
		return fmt.Errorf("unknown memory type %q", memType)
	}
}
