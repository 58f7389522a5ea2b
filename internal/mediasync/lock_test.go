package mediasync

import (
	"context"
	"sync"
	"testing"
)

func TestKeyedLockerTryLock(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	unlock, ok := l.TryLock(ctx, "med_1")
	if !ok {
		t.Fatal("expected first acquisition to succeed")
	}

	if _, ok := l.TryLock(ctx, "med_1"); ok {
		t.Error("expected second acquisition of held key to fail")
	}

	// A different key is independent.
	unlock2, ok := l.TryLock(ctx, "med_2")
	if !ok {
		t.Error("expected acquisition of a different key to succeed")
	}
	unlock2()

	unlock()
	if _, ok := l.TryLock(ctx, "med_1"); !ok {
		t.Error("expected re-acquisition after release to succeed")
	}
}

func TestKeyedLockerConcurrent(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := l.TryLock(ctx, "med_1"); ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly 1 winner, got %d", acquired)
	}
}
