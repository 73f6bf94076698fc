package engine

import (
	"sync"

	"github.com/fennwick/keepsake/internal/store"
)

// Engine orchestrates fact extraction, segmentation, decay, and retrieval
// over a single store handle. Construct one per process and share it; all
// methods are safe for concurrent use.
type Engine struct {
	DB *store.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a new Engine bound to the given store.
func New(db *store.DB) *Engine {
	return &Engine{
		DB:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session mutex, creating it on first use.
// Segmentation holds this across its high-water-mark read and segment writes
// so concurrent callers cannot produce overlapping segments. Entries are never
// evicted: the map holds one mutex per session id seen, for the life of the
// process.
func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[sessionID] = l
	}
	return l
}
