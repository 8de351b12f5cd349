package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2, time.Second)

	var running, peak atomic.Int32
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		p.Submit(func(ctx context.Context) {
			n := running.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	p.Wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("peak concurrency got %d want <=2", got)
	}
}

func TestPoolJobGetsDeadline(t *testing.T) {
	p := NewPool(1, 20*time.Millisecond)

	expired := make(chan bool, 1)
	p.Submit(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			expired <- true
		case <-time.After(2 * time.Second):
			expired <- false
		}
	})
	p.Wait()

	if !<-expired {
		t.Fatalf("job context never expired")
	}
}

func TestPoolRunsEveryJob(t *testing.T) {
	p := NewPool(3, time.Second)
	var done atomic.Int32
	for i := 0; i < 25; i++ {
		p.Submit(func(ctx context.Context) { done.Add(1) })
	}
	p.Wait()
	if got := done.Load(); got != 25 {
		t.Fatalf("jobs run got %d want 25", got)
	}
}
