package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vigil-eol/advisor/provider"
)

func TestHTTPSearcherBuildsQueryAndParsesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "windows server 2012 end of life" {
			t.Errorf("unexpected query param: %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("expected api key to be forwarded, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"url": "https://example.com", "title": "Windows Server 2012 EOL", "snippet": "reached end of life"},
		})
	}))
	defer srv.Close()

	searcher := provider.NewHTTPSearcher(srv.URL, "secret")
	hits, err := searcher.Search(context.Background(), "windows server 2012 end of life")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].URL != "https://example.com" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

func TestHTTPSearcherNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	searcher := provider.NewHTTPSearcher(srv.URL, "")
	if _, err := searcher.Search(context.Background(), "anything"); err == nil {
		t.Fatalf("expected an error on a non-200 response")
	}
}
