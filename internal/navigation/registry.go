package navigation

import (
	"context"
	"sync"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/logger"
)

// Registry holds one Index per dashboard session.
type Registry struct {
	mu      sync.Mutex
	indexes map[string]*Index
}

func NewRegistry() *Registry {
	return &Registry{indexes: make(map[string]*Index)}
}

// For returns the session's index, creating it on first use.
func (r *Registry) For(session string) *Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.indexes[session]
	if !ok {
		x = NewIndex()
		r.indexes[session] = x
	}
	return x
}

// Drop forgets the session's index and closes its live streams.
func (r *Registry) Drop(session string) {
	r.mu.Lock()
	x, ok := r.indexes[session]
	delete(r.indexes, session)
	r.mu.Unlock()
	if ok {
		x.Close()
	}
}

// RebuildAll replaces the list of every live index.
func (r *Registry) RebuildAll(ids []string) {
	r.mu.Lock()
	all := make([]*Index, 0, len(r.indexes))
	for _, x := range r.indexes {
		all = append(all, x)
	}
	r.mu.Unlock()

	for _, x := range all {
		x.SetList(ids)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.indexes)
}

type IDLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Follow rebuilds every index whenever the watcher reports a change to the
// candidate collection. It blocks until ctx is cancelled or the watcher fails.
func Follow(ctx context.Context, watcher domain.CandidateWatcher, lister IDLister, reg *Registry) error {
	return watcher.Watch(ctx, func() {
		ids, err := lister.ListIDs(ctx)
		if err != nil {
			logger.Log.Error("navigation: failed to reload candidate ids", "error", err)
			return
		}
		reg.RebuildAll(ids)
		logger.Log.Debug("navigation: indexes rebuilt", "candidates", len(ids), "sessions", reg.Len())
	})
}
