// Package share creates sharable links for single files. Links are
// fire-and-forget: a created link is shown once and never cached or
// re-fetched client-side; expiry and download counting stay with the
// server.
package share

import (
	"context"
	"errors"

	"filevault/internal/api"
)

// MaxExpiryHours bounds the hours-from-now input to a sane UI range.
const MaxExpiryHours = 168

// ErrPasswordRequired blocks a password-protected share with no password
// text before any network call is made.
var ErrPasswordRequired = errors.New("a password is required when password protection is enabled")

// ErrBadExpiry rejects an out-of-range expiration input.
var ErrBadExpiry = errors.New("expiration must be between 1 and 168 hours")

// Options are the user's choices in the share dialog.
type Options struct {
	UsePassword    bool
	Password       string
	UseExpiry      bool
	ExpiresInHours int
}

type Manager struct {
	client *api.Client
}

func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// Validate applies the client-side preconditions without touching the
// network. The UI also uses it to disable the create action.
func (o Options) Validate() error {
	if o.UsePassword && o.Password == "" {
		return ErrPasswordRequired
	}
	if o.UseExpiry && (o.ExpiresInHours < 1 || o.ExpiresInHours > MaxExpiryHours) {
		return ErrBadExpiry
	}
	return nil
}

// Create asks the server for a share link. The returned expires_at is an
// absolute server timestamp and is displayed verbatim, never recomputed.
func (m *Manager) Create(ctx context.Context, fileID int64, opt Options) (api.ShareLink, error) {
	if err := opt.Validate(); err != nil {
		return api.ShareLink{}, err
	}
	password := ""
	if opt.UsePassword {
		password = opt.Password
	}
	hours := 0
	if opt.UseExpiry {
		hours = opt.ExpiresInHours
	}
	return m.client.CreateShare(ctx, fileID, password, hours)
}

// URL renders the public address for a share token.
func (m *Manager) URL(token string) string {
	return m.client.BaseURL() + "/share/" + token
}
