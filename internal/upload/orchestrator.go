// Package upload drives multi-file uploads: one multipart request for
// the whole batch, a synthetic progress indicator while it is in flight,
// and exactly one reconciliation pass once the server has answered.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"filevault/internal/api"
)

// Reconciler refreshes the file collection and session after a mutation.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// ErrUploadInFlight rejects a second upload while one is running. Only
// duplicate submissions of the same logical action are blocked; other
// operations proceed normally.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// Result is the per-batch outcome. Errors holds one entry per rejected
// file; accepted files are not rolled back when some are rejected.
type Result struct {
	Uploaded []api.FileRecord
	Errors   []string
}

type Orchestrator struct {
	client *api.Client
	fs     afero.Fs
	rec    Reconciler
	log    *slog.Logger

	// Synthetic pacing knobs, shortened in tests.
	tick   time.Duration
	settle time.Duration

	mu       sync.Mutex
	inflight bool
	progress float64
}

func NewOrchestrator(client *api.Client, fs afero.Fs, rec Reconciler, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		client: client,
		fs:     fs,
		rec:    rec,
		log:    log,
		tick:   200 * time.Millisecond,
		settle: 500 * time.Millisecond,
	}
}

// InFlight reports whether an upload is currently running, so the UI can
// disable the triggering control.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight
}

// Progress returns the current indicator in [0,1]. The request shape
// gives the client no real byte-level feedback, so progress is paced
// synthetically to ~90% and jumps to 100% on completion.
func (o *Orchestrator) Progress() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Upload reads the named local files, sniffs each part's MIME type, and
// submits them all in one multipart request. A response with per-file
// errors is a success carrying a non-empty Result.Errors; only transport
// failures and non-2xx statuses return an error. On any completed
// request, success or partial, reconciliation runs exactly once.
func (o *Orchestrator) Upload(ctx context.Context, paths []string, directory string) (Result, error) {
	if len(paths) == 0 {
		return Result{}, errors.New("no files selected")
	}
	o.mu.Lock()
	if o.inflight {
		o.mu.Unlock()
		return Result{}, ErrUploadInFlight
	}
	o.inflight = true
	o.progress = 0
	o.mu.Unlock()

	stop := o.startPacing()

	parts, err := o.readParts(paths)
	if err != nil {
		stop()
		o.finish(0)
		return Result{}, err
	}

	resp, err := o.client.UploadFiles(ctx, parts, directory)
	stop()
	if err != nil {
		o.finish(0)
		return Result{}, err
	}

	o.log.Info("upload complete",
		"accepted", len(resp.Uploaded), "rejected", len(resp.Errors))

	if rerr := o.rec.Reconcile(ctx); rerr != nil {
		o.log.Warn("post-upload reconciliation failed", "err", rerr)
	}

	o.finish(1)
	return Result{Uploaded: resp.Uploaded, Errors: resp.Errors}, nil
}

// readParts loads each file and detects its content type from the bytes
// rather than trusting the extension.
func (o *Orchestrator) readParts(paths []string) ([]api.UploadFile, error) {
	parts := make([]api.UploadFile, 0, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(o.fs, p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, api.UploadFile{
			Name:        baseName(p),
			ContentType: mimetype.Detect(data).String(),
			Content:     bytes.NewReader(data),
		})
	}
	return parts, nil
}

func baseName(p string) string { return filepath.Base(filepath.Clean(p)) }

// startPacing bumps progress toward 90% on a ticker until stopped.
func (o *Orchestrator) startPacing() (stop func()) {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(o.tick)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				o.mu.Lock()
				o.progress = math.Min(o.progress+0.1, 0.9)
				o.mu.Unlock()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// finish records the terminal progress value, then resets state after a
// short settle delay so a repeat upload starts from a clean indicator.
func (o *Orchestrator) finish(p float64) {
	o.mu.Lock()
	o.progress = p
	o.mu.Unlock()

	time.AfterFunc(o.settle, func() {
		o.mu.Lock()
		o.progress = 0
		o.inflight = false
		o.mu.Unlock()
	})
}
