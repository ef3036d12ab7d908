package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vigil-eol/advisor/cache"
	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/model"
)

func TestGetCachesSuccessAndServesRepeatCallFromCache(t *testing.T) {
	eng := cache.NewEngine(cache.WithTTL(time.Hour), cache.WithNegativeTTL(time.Minute))
	fp := fingerprint.NewNormalizer().Normalize("ubuntu", "18.04", fingerprint.KindOS)
	key := cache.Key("ubuntu", fp)

	calls := 0
	fn := func(ctx context.Context) (*model.LookupResult, error) {
		calls++
		return &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Confidence: 0.9}, nil
	}

	res1, cached1, err := eng.Get(context.Background(), key, fn)
	if err != nil || cached1 || res1 == nil {
		t.Fatalf("expected a fresh miss on first call, got cached=%v err=%v res=%+v", cached1, err, res1)
	}

	res2, cached2, err := eng.Get(context.Background(), key, fn)
	if err != nil || !cached2 || res2 == nil {
		t.Fatalf("expected a cache hit on second call, got cached=%v err=%v", cached2, err)
	}

	if calls != 1 {
		t.Fatalf("expected the lookup function to run exactly once, got %d", calls)
	}
}

func TestGetCoalescesTrueConcurrentCallers(t *testing.T) {
	eng := cache.NewEngine(cache.WithTTL(time.Hour))
	fp := fingerprint.NewNormalizer().Normalize("ubuntu", "20.04", fingerprint.KindOS)
	key := cache.Key("ubuntu", fp)

	const n = 20
	var calls int32
	release := make(chan struct{})
	fn := func(ctx context.Context) (*model.LookupResult, error) {
		atomic.AddInt32(&calls, 1)
		<-release // block so every goroutine below arrives before fn returns
		return &model.LookupResult{Success: true, Status: model.StatusEndOfLife, Confidence: 0.7}, nil
	}

	var wg sync.WaitGroup
	results := make([]*model.LookupResult, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, _, err := eng.Get(context.Background(), key, fn)
			if err != nil {
				t.Errorf("unexpected error from caller %d: %v", i, err)
				return
			}
			results[i] = res
		}()
	}
	close(start)

	// Give every goroutine a chance to block on the single-flight lock
	// or on fn itself before letting fn complete.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected the underlying lookup to run exactly once for %d concurrent callers, got %d", n, got)
	}
	for i, res := range results {
		if res == nil || res.Status != model.StatusEndOfLife {
			t.Fatalf("caller %d got an unexpected result: %+v", i, res)
		}
	}
}

func TestPurgeAllReportsCount(t *testing.T) {
	eng := cache.NewEngine()
	fp := fingerprint.NewNormalizer().Normalize("ubuntu", "18.04", fingerprint.KindOS)

	for _, agent := range []string{"ubuntu", "endoflife.date"} {
		key := cache.Key(agent, fp)
		_, _, _ = eng.Get(context.Background(), key, func(ctx context.Context) (*model.LookupResult, error) {
			return &model.LookupResult{Success: true}, nil
		})
	}

	n := eng.PurgeAll()
	if n != 2 {
		t.Fatalf("expected PurgeAll to report 2 removed entries, got %d", n)
	}
	if n2 := eng.PurgeAll(); n2 != 0 {
		t.Fatalf("expected a second PurgeAll on an empty cache to report 0, got %d", n2)
	}
}

func TestPurgeByAgentOnlyRemovesMatchingPrefix(t *testing.T) {
	eng := cache.NewEngine()
	fpUbuntu := fingerprint.NewNormalizer().Normalize("ubuntu", "18.04", fingerprint.KindOS)
	fpDebian := fingerprint.NewNormalizer().Normalize("debian", "10", fingerprint.KindOS)

	_, _, _ = eng.Get(context.Background(), cache.Key("ubuntu", fpUbuntu), func(ctx context.Context) (*model.LookupResult, error) {
		return &model.LookupResult{Success: true}, nil
	})
	_, _, _ = eng.Get(context.Background(), cache.Key("ubuntu", fpDebian), func(ctx context.Context) (*model.LookupResult, error) {
		return &model.LookupResult{Success: true}, nil
	})
	_, _, _ = eng.Get(context.Background(), cache.Key("endoflife.date", fpUbuntu), func(ctx context.Context) (*model.LookupResult, error) {
		return &model.LookupResult{Success: true}, nil
	})

	n, err := eng.PurgeByAgent(context.Background(), "ubuntu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries purged for agent ubuntu, got %d", n)
	}
	if n := eng.PurgeAll(); n != 1 {
		t.Fatalf("expected 1 entry left belonging to endoflife.date, got %d", n)
	}
}

func TestNegativeCachingReturnsNotFound(t *testing.T) {
	eng := cache.NewEngine(cache.WithNegativeTTL(time.Hour))
	fp := fingerprint.NewNormalizer().Normalize("unknown-thing", "1.0", fingerprint.KindSoftware)
	key := cache.Key("vendor", fp)

	calls := 0
	fn := func(ctx context.Context) (*model.LookupResult, error) {
		calls++
		return nil, &model.ProviderError{Kind: model.ErrNotFound}
	}

	_, _, err := eng.Get(context.Background(), key, fn)
	if err == nil {
		t.Fatalf("expected an error on the first (uncached) not-found lookup")
	}

	_, cached, err := eng.Get(context.Background(), key, fn)
	if !cached {
		t.Fatalf("expected the second lookup to be served from the negative cache")
	}
	if err == nil {
		t.Fatalf("expected the cached negative result to still report not_found")
	}
	if calls != 1 {
		t.Fatalf("expected the lookup function to run exactly once despite two calls, got %d", calls)
	}
}
