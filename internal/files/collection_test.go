package files

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"filevault/internal/api"
)

func newTestCollection(t *testing.T, h http.Handler) *Collection {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := api.NewClient(api.ClientOptions{Addr: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewCollection(client, nil)
}

func writeRecords(w http.ResponseWriter, recs []api.FileRecord) {
	json.NewEncoder(w).Encode(recs) //nolint:errcheck
}

func names(recs []api.FileRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.OriginalName
	}
	return out
}

func TestLoadReplacesWholesale(t *testing.T) {
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeRecords(w, []api.FileRecord{{ID: 1, OriginalName: "a.txt"}, {ID: 2, OriginalName: "b.txt"}})
	}))

	recs, err := coll.Load(context.Background(), api.SearchFilters{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records=%v", names(recs))
	}
	if got := coll.Records(); len(got) != 2 {
		t.Fatalf("Records=%v", names(got))
	}
}

// TestStaleResponseDiscarded issues two overlapping loads and holds the
// first one open until the second has resolved. The earlier fetch must
// not overwrite the later result even though it completes last.
func TestStaleResponseDiscarded(t *testing.T) {
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "old" {
			close(firstArrived)
			<-release
			writeRecords(w, []api.FileRecord{{ID: 1, OriginalName: "old.txt"}})
			return
		}
		writeRecords(w, []api.FileRecord{{ID: 2, OriginalName: "new.txt"}})
	}))

	done := make(chan []api.FileRecord)
	go func() {
		recs, err := coll.Load(context.Background(), api.SearchFilters{Name: "old"})
		if err != nil {
			t.Errorf("first Load: %v", err)
		}
		done <- recs
	}()

	<-firstArrived
	recs, err := coll.Load(context.Background(), api.SearchFilters{Name: "new"})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if len(recs) != 1 || recs[0].OriginalName != "new.txt" {
		t.Fatalf("second load applied %v", names(recs))
	}

	close(release)
	lateRecs := <-done
	if len(lateRecs) != 1 || lateRecs[0].OriginalName != "new.txt" {
		t.Fatalf("stale load returned %v, want the applied set", names(lateRecs))
	}
	if got := coll.Records(); len(got) != 1 || got[0].OriginalName != "new.txt" {
		t.Fatalf("collection holds %v after stale resolve", names(got))
	}
}

func TestLoadErrorKeepsCurrentSet(t *testing.T) {
	fail := false
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeRecords(w, []api.FileRecord{{ID: 1, OriginalName: "a.txt"}})
	}))

	if _, err := coll.Load(context.Background(), api.SearchFilters{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fail = true
	if _, err := coll.Load(context.Background(), api.SearchFilters{}); err == nil {
		t.Fatal("expected error")
	}
	if got := coll.Records(); len(got) != 1 {
		t.Fatalf("failed load disturbed collection: %v", names(got))
	}
}

// TestDeleteCommitsOnSuccess removes the record locally only after the
// server confirms.
func TestDeleteCommitsOnSuccess(t *testing.T) {
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeRecords(w, []api.FileRecord{{ID: 1, OriginalName: "a.txt"}, {ID: 2, OriginalName: "b.txt"}})
	}))

	if _, err := coll.Load(context.Background(), api.SearchFilters{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := coll.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got := coll.Records()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("records after delete: %v", names(got))
	}
}

// TestDeleteNotFoundLeavesCollection keeps the local set intact when the
// server answers 404; the record may have been removed elsewhere, and the
// follow-up reconciliation settles it.
func TestDeleteNotFoundLeavesCollection(t *testing.T) {
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		writeRecords(w, []api.FileRecord{{ID: 42, OriginalName: "gone.txt"}})
	}))

	if _, err := coll.Load(context.Background(), api.SearchFilters{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	err := coll.Delete(context.Background(), 42)
	ae, ok := api.AsError(err)
	if !ok || !ae.NotFound() {
		t.Fatalf("expected 404, got %v", err)
	}
	if got := coll.Records(); len(got) != 1 {
		t.Fatalf("404 delete disturbed collection: %v", names(got))
	}
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshProfile(ctx context.Context) error {
	f.calls++
	return f.err
}

// TestReconcileRunsBothRefreshes refetches the list with the active
// filters and refreshes the profile even when one of them fails.
func TestReconcileRunsBothRefreshes(t *testing.T) {
	var gotQuery string
	coll := newTestCollection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeRecords(w, nil)
	}))

	prof := &fakeRefresher{err: errors.New("profile down")}
	state := &FilterState{}
	state.Set(api.SearchFilters{Name: "report"})
	rec := Reconciler{Collection: coll, Profile: prof, Filters: state.Get}

	err := rec.Reconcile(context.Background())
	if err == nil || err.Error() != "profile down" {
		t.Fatalf("err=%v", err)
	}
	if prof.calls != 1 {
		t.Fatalf("profile refreshed %d times", prof.calls)
	}
	if gotQuery != "name=report" {
		t.Fatalf("query=%q", gotQuery)
	}
}
