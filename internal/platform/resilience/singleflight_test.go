package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("token-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ForgetStartsFreshCall(t *testing.T) {
	var g SingleFlight
	var counter int32

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _, _ = g.Do("token-key", func() (any, error) {
			atomic.AddInt32(&counter, 1)
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	g.Forget("token-key")

	val, err, shared := g.Do("token-key", func() (any, error) {
		atomic.AddInt32(&counter, 1)
		return "fresh", nil
	})
	close(release)
	<-done

	if err != nil {
		t.Fatalf("singleflight call failed: %v", err)
	}
	if shared {
		t.Fatalf("expected a fresh call after Forget")
	}
	if val != "fresh" {
		t.Fatalf("unexpected value: %v", val)
	}
	if got := atomic.LoadInt32(&counter); got != 2 {
		t.Fatalf("expected two executions, got %d", got)
	}
}
