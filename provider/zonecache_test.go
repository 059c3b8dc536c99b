package provider

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestZoneCacheDeduplicates(t *testing.T) {
	var cache ZoneCache
	var calls atomic.Int32

	const workers = 16
	results := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := cache.ID("Example.COM.", func() (string, error) {
				calls.Add(1)
				return "zone-1", nil
			})
			if err != nil {
				t.Errorf("ID: %v", err)
			}
			results[i] = id
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("lookup ran %d times, want 1", got)
	}
	for i, id := range results {
		if id != "zone-1" {
			t.Errorf("worker %d got %q, want zone-1", i, id)
		}
	}

	// The key is the canonical name, so spelling variants hit the cache.
	id, err := cache.ID("example.com", func() (string, error) {
		calls.Add(1)
		return "zone-2", nil
	})
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if id != "zone-1" {
		t.Errorf("cached ID = %q, want zone-1", id)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("lookup ran %d times after cached call, want still 1", got)
	}
}

func TestZoneCacheDoesNotCacheFailures(t *testing.T) {
	var cache ZoneCache
	failure := errors.New("zone not found")

	if _, err := cache.ID("example.com", func() (string, error) {
		return "", failure
	}); !errors.Is(err, failure) {
		t.Fatalf("ID error = %v, want %v", err, failure)
	}

	id, err := cache.ID("example.com", func() (string, error) {
		return "zone-1", nil
	})
	if err != nil {
		t.Fatalf("ID after failure: %v", err)
	}
	if id != "zone-1" {
		t.Errorf("ID = %q, want zone-1", id)
	}
}
