// Package session owns the authenticated user's token and profile. The
// store is the single writer of session state; everything else observes
// it through Current and Subscribe. Quota and dedup figures change only
// when RefreshProfile overwrites the profile with the server's numbers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"

	"filevault/internal/api"
)

// Session is the durable client-local state: the bearer token and the
// last server-reported user object.
type Session struct {
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

type Store struct {
	fs   afero.Fs
	path string
	log  *slog.Logger

	mu     sync.Mutex
	cur    *Session
	client *api.Client
	subs   []func(*Session)
}

// NewStore creates a store persisting to path on fs. Bind must be called
// before the auth operations are used.
func NewStore(fs afero.Fs, path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{fs: fs, path: path, log: log}
}

// Bind attaches the gateway client. Split from NewStore because the
// client itself reads tokens from the store.
func (s *Store) Bind(c *api.Client) { s.client = c }

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Token
}

// Current returns a copy of the session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return nil
	}
	cp := *s.cur
	return &cp
}

// Subscribe registers an observer called after every session change,
// including logout (with nil).
func (s *Store) Subscribe(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// set replaces the session wholesale, persists it, and notifies.
func (s *Store) set(sess *Session) {
	s.mu.Lock()
	s.cur = sess
	subs := make([]func(*Session), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if err := s.persist(sess); err != nil {
		s.log.Warn("session persist failed", "err", err)
	}
	for _, fn := range subs {
		fn(sess)
	}
}

// Load restores a persisted session from disk. A missing file is not an
// error; an expired token is discarded so a stale state file never
// produces a dashboard that immediately 401s.
func (s *Store) Load() error {
	b, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return err
	}
	if sess.Token == "" {
		return nil
	}
	if tokenExpired(sess.Token) {
		s.log.Info("persisted token expired, discarding session")
		return s.clear()
	}
	s.mu.Lock()
	s.cur = &sess
	s.mu.Unlock()
	return nil
}

// Login authenticates and replaces the session on success. On failure
// prior state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	s.set(&Session{Token: resp.Token, User: resp.User})
	return nil
}

// Register creates an account and starts a session, mirroring Login.
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	resp, err := s.client.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	s.set(&Session{Token: resp.Token, User: resp.User})
	return nil
}

// RefreshProfile re-fetches the user profile and overwrites quota_used
// and storage_saved with the server's numbers. This is the only way
// those fields change. A response that resolves after the session it
// was issued for has ended (logout, or a new login) is dropped, so a
// slow background refresh can never resurrect cleared state.
func (s *Store) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	cur := s.cur
	s.mu.Unlock()
	if cur == nil {
		return errors.New("not logged in")
	}
	u, err := s.client.Profile(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	stale := s.cur == nil || s.cur.Token != cur.Token
	s.mu.Unlock()
	if stale {
		s.log.Debug("dropping profile refresh for ended session")
		return nil
	}
	s.set(&Session{Token: cur.Token, User: u})
	return nil
}

// Logout clears durable and in-memory state. Idempotent.
func (s *Store) Logout() error {
	err := s.clear()
	s.set(nil)
	return err
}

func (s *Store) clear() error {
	err := s.fs.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) persist(sess *Session) error {
	if sess == nil {
		return s.clear()
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return afero.WriteFile(s.fs, s.path, b, 0o600)
}

// tokenExpired peeks at the JWT exp claim without verifying the
// signature; verification is the server's job. Tokens that do not parse
// or carry no exp are treated as live and left for the server to judge.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}
