package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPSearcher implements Searcher against a generic JSON search API:
// GET {baseURL}?q={query}&key={apiKey}, returning a JSON array of
// {url, title, snippet} objects. This is the concrete backend behind
// WebSearchProvider's Searcher interface when WEBSEARCH_API_URL is
// configured; an unconfigured deployment disables the provider
// entirely rather than wiring a Searcher that always errors.
type HTTPSearcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSearcher(baseURL, apiKey string) *HTTPSearcher {
	return &HTTPSearcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type searchHitWire struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

func (s *HTTPSearcher) Search(ctx context.Context, query string) ([]SearchHit, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid web search API URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	if s.apiKey != "" {
		q.Set("key", s.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "eoladvisor/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search API returned %d", resp.StatusCode)
	}

	var wire []searchHitWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding web search API response: %w", err)
	}

	hits := make([]SearchHit, 0, len(wire))
	for _, w := range wire {
		hits = append(hits, SearchHit{URL: w.URL, Title: w.Title, Snippet: w.Snippet})
	}
	return hits, nil
}
