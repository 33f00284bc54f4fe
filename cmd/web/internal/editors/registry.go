package editors

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"thirdcoast.systems/cutroom/internal/editor"
)

const (
	// MaxStreamsPerEditor limits open SSE streams for one browser session.
	MaxStreamsPerEditor = 8
)

// Factory builds a coordinator for a new session.
type Factory func(id string) *editor.Coordinator

type entry struct {
	coord    *editor.Coordinator
	lastSeen time.Time
	streams  int
}

// Registry holds one coordinator per browser session and expires sessions
// that have been idle, with no open stream, for longer than idleTimeout.
type Registry struct {
	mu          sync.Mutex
	editors     map[string]*entry
	factory     Factory
	idleTimeout time.Duration
	now         func() time.Time
}

func NewRegistry(factory Factory, idleTimeout time.Duration) *Registry {
	return &Registry{
		editors:     make(map[string]*entry),
		factory:     factory,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// GetOrCreate returns the coordinator for id, creating it if needed, and
// marks the session as active.
func (r *Registry) GetOrCreate(id string) *editor.Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.editors[id]
	if !ok {
		e = &entry{coord: r.factory(id)}
		r.editors[id] = e
		slog.Info("editor session created", "editor_id", id, "sessions", len(r.editors))
	}
	e.lastSeen = r.now()
	return e.coord
}

// Get returns the coordinator for id without creating one.
func (r *Registry) Get(id string) (*editor.Coordinator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.editors[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.coord, true
}

// AcquireStream registers an open stream for id. It returns false when the
// session already has too many.
func (r *Registry) AcquireStream(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.editors[id]
	if !ok || e.streams >= MaxStreamsPerEditor {
		return false
	}
	e.streams++
	e.lastSeen = r.now()
	return true
}

// ReleaseStream undoes AcquireStream.
func (r *Registry) ReleaseStream(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.editors[id]
	if !ok {
		return
	}
	if e.streams > 0 {
		e.streams--
	}
	e.lastSeen = r.now()
}

// Remove closes and forgets the session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.editors[id]
	delete(r.editors, id)
	r.mu.Unlock()

	if ok {
		e.coord.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}

// PruneIdle closes sessions idle since before now-idleTimeout.
func (r *Registry) PruneIdle(now time.Time) int {
	r.mu.Lock()
	var stale []*editor.Coordinator
	for id, e := range r.editors {
		if e.streams > 0 || now.Sub(e.lastSeen) <= r.idleTimeout {
			continue
		}
		delete(r.editors, id)
		stale = append(stale, e.coord)
		slog.Info("editor session expired", "editor_id", id, "idle", now.Sub(e.lastSeen))
	}
	r.mu.Unlock()

	// Close outside the lock; Close cancels timers and subscriptions.
	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// Run prunes idle sessions every interval until ctx is done, then closes
// every remaining session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			_ = r.PruneIdle(r.now())
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.editors
	r.editors = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.coord.Close()
	}
}
