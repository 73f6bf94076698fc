package engine

import (
	"testing"
	"time"

	"github.com/fennwick/keepsake/internal/store"
)

// testEngine creates an engine over an in-memory database.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

// stampAgo formats a timestamp the given number of hours in the past.
func stampAgo(hours float64) string {
	return time.Now().Add(-time.Duration(hours * float64(time.Hour))).Format(store.TimeLayout)
}

func TestHoursSince(t *testing.T) {
	if h := hoursSince(stampAgo(48)); h < 47.9 || h > 48.1 {
		t.Errorf("hoursSince(48h ago) = %f, want ~48", h)
	}

	// Unparsable and empty timestamps are maximally stale
	if h := hoursSince("not a timestamp"); h != staleHours {
		t.Errorf("hoursSince(garbage) = %f, want %f", h, staleHours)
	}
	if h := hoursSince(""); h != staleHours {
		t.Errorf("hoursSince(empty) = %f, want %f", h, staleHours)
	}

	// Future timestamps count as zero, not negative
	future := time.Now().Add(time.Hour).Format(store.TimeLayout)
	if h := hoursSince(future); h != 0 {
		t.Errorf("hoursSince(future) = %f, want 0", h)
	}
}
