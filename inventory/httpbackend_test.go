package inventory_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vigil-eol/advisor/inventory"
)

func TestHTTPBackendQueryOSHeartbeat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/os-heartbeat" {
			t.Errorf("expected path /os-heartbeat, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("window_days") != "30" {
			t.Errorf("expected window_days=30, got %s", r.URL.Query().Get("window_days"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"computer": "host-1", "raw_name": "Windows Server", "raw_version": "2012"},
		})
	}))
	defer srv.Close()

	backend := inventory.NewHTTPBackend(srv.URL)
	rows, err := backend.QueryOSHeartbeat(context.Background(), 30, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Computer != "host-1" || rows[0].RawName != "Windows Server" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestHTTPBackendNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := inventory.NewHTTPBackend(srv.URL)
	if _, err := backend.QuerySoftwareInventory(context.Background(), 7, 100); err == nil {
		t.Fatalf("expected an error on a non-200 response")
	}
}
