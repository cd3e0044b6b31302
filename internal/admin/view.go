// Package admin aggregates the cross-user views behind the admin
// dashboard: storage statistics, the user table with quota edits, and
// the audit trail.
package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"filevault/internal/api"
)

// Snapshot holds the three admin fetches with their individual
// outcomes. One failed fetch does not hide the other two.
type Snapshot struct {
	Stats    api.StorageStats
	StatsErr error

	Users    []api.User
	UsersErr error

	Logs    []api.AuditLogEntry
	LogsErr error
}

// Failed reports whether every fetch failed, the only case the UI
// treats as a whole-view failure.
func (s Snapshot) Failed() bool {
	return s.StatsErr != nil && s.UsersErr != nil && s.LogsErr != nil
}

type View struct {
	client *api.Client
	log    *slog.Logger
}

func NewView(client *api.Client, log *slog.Logger) *View {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &View{client: client, log: log}
}

// LoadAll issues the three fetches concurrently and returns whatever
// each produced. Errors stay with their field.
func (v *View) LoadAll(ctx context.Context) Snapshot {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Stats, snap.StatsErr = v.client.StorageStats(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Users, snap.UsersErr = v.client.Users(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Logs, snap.LogsErr = v.client.AuditLogs(ctx)
		return nil
	})
	g.Wait() //nolint:errcheck

	for _, err := range []error{snap.StatsErr, snap.UsersErr, snap.LogsErr} {
		if err != nil {
			v.log.Warn("admin fetch failed", "err", err)
		}
	}
	return snap
}

// UpdateQuota converts the admin's MB input to bytes, applies it, and
// returns a users slice where only the affected record is replaced by
// the server's returned object. Usage percentages are never recomputed
// locally from the submitted value.
func (v *View) UpdateQuota(ctx context.Context, users []api.User, userID int64, megabytes float64) ([]api.User, error) {
	if megabytes <= 0 || math.IsNaN(megabytes) || math.IsInf(megabytes, 0) {
		return nil, errors.New("quota must be a positive number of megabytes")
	}
	quotaBytes := int64(megabytes * 1024 * 1024)

	updated, err := v.client.UpdateUserQuota(ctx, userID, quotaBytes)
	if err != nil {
		return nil, err
	}

	out := make([]api.User, len(users))
	copy(out, users)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out, nil
}
