package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"filevault/internal/api"
)

func newTestView(t *testing.T, h http.Handler) *View {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := api.NewClient(api.ClientOptions{Addr: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewView(client, nil)
}

func adminMux(t *testing.T, statsOK, usersOK, logsOK bool) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		if !statsOK {
			http.Error(w, "stats backend down", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(api.StorageStats{TotalFiles: 10, SpaceSaved: 2048}) //nolint:errcheck
	})
	mux.HandleFunc("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if !usersOK {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode([]api.User{{ID: 1, Username: "mia"}, {ID: 2, Username: "ben"}}) //nolint:errcheck
	})
	mux.HandleFunc("/api/admin/audit-logs", func(w http.ResponseWriter, r *http.Request) {
		if !logsOK {
			http.Error(w, "audit store down", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]api.AuditLogEntry{{ID: 1, Action: "upload"}}) //nolint:errcheck
	})
	return mux
}

func TestLoadAllSuccess(t *testing.T) {
	v := newTestView(t, adminMux(t, true, true, true))
	snap := v.LoadAll(context.Background())
	if snap.StatsErr != nil || snap.UsersErr != nil || snap.LogsErr != nil {
		t.Fatalf("snapshot errors: %v %v %v", snap.StatsErr, snap.UsersErr, snap.LogsErr)
	}
	if snap.Stats.TotalFiles != 10 || len(snap.Users) != 2 || len(snap.Logs) != 1 {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Failed() {
		t.Fatal("Failed() on a full snapshot")
	}
}

// TestLoadAllPartialFailure: one broken fetch leaves the other sections
// populated and keeps its error with its field.
func TestLoadAllPartialFailure(t *testing.T) {
	v := newTestView(t, adminMux(t, false, true, true))
	snap := v.LoadAll(context.Background())
	if snap.StatsErr == nil {
		t.Fatal("expected stats error")
	}
	if snap.UsersErr != nil || snap.LogsErr != nil {
		t.Fatalf("unrelated fetches failed: %v %v", snap.UsersErr, snap.LogsErr)
	}
	if len(snap.Users) != 2 || len(snap.Logs) != 1 {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Failed() {
		t.Fatal("partial failure reported as total")
	}
}

func TestLoadAllTotalFailure(t *testing.T) {
	v := newTestView(t, adminMux(t, false, false, false))
	snap := v.LoadAll(context.Background())
	if !snap.Failed() {
		t.Fatal("expected total failure")
	}
}

// TestUpdateQuotaConvertsAndReplaces: the MB input becomes bytes on the
// wire, and only the affected row is swapped for the server's object.
func TestUpdateQuotaConvertsAndReplaces(t *testing.T) {
	var sent struct {
		QuotaMax int64 `json:"quota_max"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/users/2/quota", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent) //nolint:errcheck
		// The server may clamp or round; the client must display this
		// object, not its own arithmetic.
		json.NewEncoder(w).Encode(api.User{ID: 2, Username: "ben", QuotaMax: sent.QuotaMax, QuotaUsed: 999}) //nolint:errcheck
	})
	v := newTestView(t, mux)

	users := []api.User{{ID: 1, Username: "mia", QuotaMax: 100}, {ID: 2, Username: "ben", QuotaMax: 100}}
	out, err := v.UpdateQuota(context.Background(), users, 2, 1.5)
	if err != nil {
		t.Fatalf("UpdateQuota: %v", err)
	}
	if sent.QuotaMax != 1572864 {
		t.Fatalf("sent quota_max=%d, want 1572864", sent.QuotaMax)
	}
	if out[0].QuotaMax != 100 {
		t.Fatalf("unrelated user touched: %+v", out[0])
	}
	if out[1].QuotaMax != 1572864 || out[1].QuotaUsed != 999 {
		t.Fatalf("affected user not replaced by server object: %+v", out[1])
	}
	// Input slice is left alone.
	if users[1].QuotaMax != 100 {
		t.Fatalf("input slice mutated: %+v", users[1])
	}
}

func TestUpdateQuotaRejectsBadInput(t *testing.T) {
	hits := 0
	v := newTestView(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))

	for _, mb := range []float64{0, -5} {
		if _, err := v.UpdateQuota(context.Background(), nil, 1, mb); err == nil {
			t.Fatalf("mb=%v accepted", mb)
		}
	}
	if hits != 0 {
		t.Fatalf("server was hit %d times", hits)
	}
}
