package files

import (
	"context"
	"net/http"
	"testing"

	"github.com/spf13/afero"

	"filevault/internal/api"
)

func blobServer(t *testing.T, body string) *Collection {
	t.Helper()
	return newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body)) //nolint:errcheck
	}))
}

func TestDownloadSavesUnderDir(t *testing.T) {
	coll := blobServer(t, "contents")
	fs := afero.NewMemMapFs()
	d := Downloader{Fs: fs, Dir: "downloads"}

	path, err := coll.Download(context.Background(), api.FileRecord{ID: 1, OriginalName: "report.pdf"}, d)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "downloads/report.pdf" {
		t.Fatalf("path=%q", path)
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil || string(b) != "contents" {
		t.Fatalf("saved=%q err=%v", b, err)
	}
}

// TestDownloadNeverOverwrites picks a numbered variant when the name is
// taken.
func TestDownloadNeverOverwrites(t *testing.T) {
	coll := blobServer(t, "new")
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "dl/report.pdf", []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	d := Downloader{Fs: fs, Dir: "dl"}

	path, err := coll.Download(context.Background(), api.FileRecord{ID: 1, OriginalName: "report.pdf"}, d)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "dl/report (2).pdf" {
		t.Fatalf("path=%q", path)
	}
	old, _ := afero.ReadFile(fs, "dl/report.pdf")
	if string(old) != "old" {
		t.Fatalf("existing file overwritten: %q", old)
	}
}

// TestDownloadSanitizesServerName strips path components out of the
// server-supplied name before touching the filesystem.
func TestDownloadSanitizesServerName(t *testing.T) {
	coll := blobServer(t, "x")
	fs := afero.NewMemMapFs()
	d := Downloader{Fs: fs, Dir: "dl"}

	path, err := coll.Download(context.Background(), api.FileRecord{ID: 1, OriginalName: "../../etc/passwd"}, d)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "dl/passwd" {
		t.Fatalf("path=%q", path)
	}
}

func TestDownloadErrorWritesNothing(t *testing.T) {
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "File not found", http.StatusNotFound)
	}))
	fs := afero.NewMemMapFs()
	d := Downloader{Fs: fs, Dir: "dl"}

	if _, err := coll.Download(context.Background(), api.FileRecord{ID: 1, OriginalName: "a.txt"}, d); err == nil {
		t.Fatal("expected error")
	}
	if ok, _ := afero.DirExists(fs, "dl"); ok {
		t.Fatal("nothing should be written on failure")
	}
}
