// Package files keeps the client's view of the user's file set
// consistent with the server across concurrent loads and mutations.
// The collection is always replaced wholesale from the most recently
// resolved fetch; the single exception is the optimistic removal of a
// just-deleted record, which the following reconciliation confirms.
package files

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"filevault/internal/api"
)

type Collection struct {
	client *api.Client
	log    *slog.Logger

	mu      sync.Mutex
	nextSeq uint64
	applied uint64
	records []api.FileRecord
}

func NewCollection(client *api.Client, log *slog.Logger) *Collection {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collection{client: client, log: log}
}

// Load fetches the file set for the given filters and applies it unless
// a later-issued fetch already resolved. Completion order decides which
// response wins, so back-to-back filter changes cannot leave a stale
// list on screen. The returned slice is whatever is applied afterwards.
func (c *Collection) Load(ctx context.Context, filters api.SearchFilters) ([]api.FileRecord, error) {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	records, err := c.client.ListFiles(ctx, filters)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		c.log.Debug("discarding stale file list", "seq", seq, "applied", c.applied)
		return c.snapshotLocked(), nil
	}
	c.applied = seq
	c.records = records
	return c.snapshotLocked(), nil
}

// Records returns a copy of the currently applied file set.
func (c *Collection) Records() []api.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() []api.FileRecord {
	out := make([]api.FileRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Delete removes a file on the server, then removes it from the local
// collection. The optimistic removal is committed only on a 2xx; a 404
// or any other failure leaves the collection unchanged and surfaces the
// gateway error. Callers still reconcile afterwards because deletion can
// free a now-unreferenced block and move storage_saved.
func (c *Collection) Delete(ctx context.Context, id int64) error {
	if err := c.client.DeleteFile(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.records[:0]
	for _, r := range c.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.records = kept
	return nil
}
