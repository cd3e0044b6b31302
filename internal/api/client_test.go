// Package api tests cover request shaping and failure normalization.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, h http.Handler, tok string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientOptions{Addr: srv.URL, Tokens: staticToken(tok)})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

// TestSearchFiltersSparseEncoding only encodes defined fields.
func TestSearchFiltersSparseEncoding(t *testing.T) {
	f := SearchFilters{Name: "report", SizeMin: 2048}
	v := f.Values()
	if got := v.Get("name"); got != "report" {
		t.Fatalf("name=%q", got)
	}
	if got := v.Get("size_min"); got != "2048" {
		t.Fatalf("size_min=%q", got)
	}
	if len(v) != 2 {
		t.Fatalf("expected 2 params, got %d: %v", len(v), v)
	}
	if empty := (SearchFilters{}).Values(); len(empty) != 0 {
		t.Fatalf("empty filters must encode to nothing, got %v", empty)
	}
}

// TestListFilesSendsOnlyDefinedFilters checks the wire query.
func TestListFilesSendsOnlyDefinedFilters(t *testing.T) {
	var got url.Values
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		json.NewEncoder(w).Encode([]FileRecord{}) //nolint:errcheck
	}), "tok")

	_, err := c.ListFiles(context.Background(), SearchFilters{MimeType: "image", SizeMax: 4096})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if got.Get("mime_type") != "image" || got.Get("size_max") != "4096" {
		t.Fatalf("query=%v", got)
	}
	if _, present := got["name"]; present {
		t.Fatalf("undefined filter leaked into query: %v", got)
	}
}

// TestBearerInjection attaches the token to authenticated calls.
func TestBearerInjection(t *testing.T) {
	var auth, reqID string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-Id")
		json.NewEncoder(w).Encode(User{}) //nolint:errcheck
	}), "secret-token")

	if _, err := c.Profile(context.Background()); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if auth != "Bearer secret-token" {
		t.Fatalf("auth header=%q", auth)
	}
	if reqID == "" {
		t.Fatalf("expected a request id header")
	}
}

// TestPlainTextErrorBody surfaces the server's http.Error message.
func TestPlainTextErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Only uploader can delete their files", http.StatusForbidden)
	}), "tok")

	err := c.DeleteFile(context.Background(), 7)
	ae, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ae.Status != http.StatusForbidden || !ae.Auth() {
		t.Fatalf("status=%d", ae.Status)
	}
	if ae.Message != "Only uploader can delete their files" {
		t.Fatalf("message=%q", ae.Message)
	}
}

// TestNetworkFailure is distinct from an HTTP error response.
func TestNetworkFailure(t *testing.T) {
	c, err := NewClient(ClientOptions{Addr: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Profile(context.Background())
	ae, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !ae.Network() {
		t.Fatalf("expected network failure, got status %d", ae.Status)
	}
}

// TestUploadFilesMultipart sends every file in one request plus the
// optional directory field, and decodes the mixed outcome.
func TestUploadFilesMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		parts := r.MultipartForm.File["files"]
		if len(parts) != 2 {
			t.Errorf("expected 2 file parts, got %d", len(parts))
		}
		if got := parts[0].Header.Get("Content-Type"); got != "text/plain; charset=utf-8" {
			t.Errorf("part content type=%q", got)
		}
		if got := r.FormValue("directory"); got != "docs" {
			t.Errorf("directory=%q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"uploaded_files": []FileRecord{{ID: 1, OriginalName: "a.txt"}},
			"errors":         []string{"b.txt: quota exceeded"},
		})
	}), "tok")

	res, err := c.UploadFiles(context.Background(), []UploadFile{
		{Name: "a.txt", ContentType: "text/plain; charset=utf-8", Content: sreader("hello")},
		{Name: "b.txt", ContentType: "text/plain; charset=utf-8", Content: sreader("world")},
	}, "docs")
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if len(res.Uploaded) != 1 || len(res.Errors) != 1 {
		t.Fatalf("result=%+v", res)
	}
}

// TestDownloadFileReturnsBytes reads the raw blob.
func TestDownloadFileReturnsBytes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blob-bytes")) //nolint:errcheck
	}), "tok")

	b, err := c.DownloadFile(context.Background(), 3)
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if string(b) != "blob-bytes" {
		t.Fatalf("body=%q", b)
	}
}

// TestCreateShareOmitsUnsetFields leaves password and expires_in out of
// the body when they are not chosen.
func TestCreateShareOmitsUnsetFields(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		json.NewEncoder(w).Encode(ShareLink{Token: "abc"}) //nolint:errcheck
	}), "tok")

	if _, err := c.CreateShare(context.Background(), 5, "", 0); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty body, got %v", body)
	}

	if _, err := c.CreateShare(context.Background(), 5, "pw", 24); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if body["password"] != "pw" || body["expires_in"] != float64(24) {
		t.Fatalf("body=%v", body)
	}
}

func sreader(s string) io.Reader { return &stringReader{s: s} }

type stringReader struct {
	s   string
	pos int
}

func (r *stringReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}
