package engine

import (
	"time"

	"github.com/fennwick/keepsake/internal/store"
)

// staleHours is the elapsed-time fallback for memories that were never
// accessed or carry an unparsable timestamp: 720 hours = 30 days.
const staleHours = 720.0

// parseStamp parses a log timestamp. The second return is false when the
// value is empty or not in the store's layout.
func parseStamp(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(store.TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// hoursSince returns the hours elapsed since the given timestamp, or
// staleHours when the value does not parse. Future timestamps count as zero.
func hoursSince(s string) float64 {
	t, ok := parseStamp(s)
	if !ok {
		return staleHours
	}
	h := time.Since(t).Hours()
	if h < 0 {
		return 0
	}
	return h
}
