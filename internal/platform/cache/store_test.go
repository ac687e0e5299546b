package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_InvalidationDuringLoadIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	loading := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = store.GetOrLoad(ctx, "matches:list", func(context.Context) (any, error) {
			close(loading)
			<-release
			return "stale", nil
		})
	}()

	<-loading
	store.Purge(ctx)
	close(release)
	<-done

	if _, ok := store.Get(ctx, "matches:list"); ok {
		t.Fatalf("expected load started before purge to be discarded")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	store.Set(ctx, "match:1", 1)
	store.Set(ctx, "match:2", 2)
	store.Set(ctx, "page:0", 0)

	store.DeletePrefix(ctx, "match:")

	if store.Len() != 1 {
		t.Fatalf("expected one remaining entry, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "page:0"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

func TestStore_MaxEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, WithMaxEntries(2))
	ctx := context.Background()
	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "c", 3)

	if store.Len() != 2 {
		t.Fatalf("expected store bounded at 2 entries, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "c"); ok {
		t.Fatalf("expected write beyond capacity to be dropped")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
