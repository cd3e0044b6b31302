package files

import (
	"context"
	"sync"

	"filevault/internal/api"
)

// FilterState shares the currently active filter set between the UI,
// which owns the inputs, and the reconciler, which refetches with
// whatever the user is looking at.
type FilterState struct {
	mu  sync.Mutex
	cur api.SearchFilters
}

func (s *FilterState) Set(f api.SearchFilters) {
	s.mu.Lock()
	s.cur = f
	s.mu.Unlock()
}

func (s *FilterState) Get() api.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// ProfileRefresher re-fetches the authenticated user's profile; the
// session store implements it.
type ProfileRefresher interface {
	RefreshProfile(ctx context.Context) error
}

// Reconciler re-fetches authoritative server state after a mutating
// action. Uploads, deletes and downloads all shift quota_used,
// storage_saved or download counters in ways the mutation's own response
// does not reveal, so the collection and the session are both refreshed.
type Reconciler struct {
	Collection *Collection
	Profile    ProfileRefresher
	// Filters supplies the currently active filter set so the refetch
	// reflects what the user is looking at.
	Filters func() api.SearchFilters
}

// Reconcile runs both refreshes. The first failure is returned but does
// not stop the other refresh; the server state that could be fetched is
// still applied.
func (r Reconciler) Reconcile(ctx context.Context) error {
	var filters api.SearchFilters
	if r.Filters != nil {
		filters = r.Filters()
	}
	_, loadErr := r.Collection.Load(ctx, filters)
	profErr := r.Profile.RefreshProfile(ctx)
	if loadErr != nil {
		return loadErr
	}
	return profErr
}
