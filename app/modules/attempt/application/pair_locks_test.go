package attemptservice

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPairLocksSerialisesOneKey(t *testing.T) {
	locks := newPairLocks()
	key := pairKey{uuid.New(), uuid.New()}

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(key)
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, locks.size())
}

func TestPairLocksIndependentKeys(t *testing.T) {
	locks := newPairLocks()
	a := pairKey{uuid.New(), uuid.New()}
	b := pairKey{uuid.New(), uuid.New()}

	unlockA := locks.lock(a)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		locks.lock(b)()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an unrelated pair blocked")
	}
}

func TestPairLocksLockAllOverlapping(t *testing.T) {
	locks := newPairLocks()
	a := pairKey{uuid.New(), uuid.New()}
	b := pairKey{uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys := []pairKey{a, b, a}
			if i%2 == 0 {
				keys = []pairKey{b, a}
			}
			locks.lockAll(keys)()
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("overlapping lockAll calls deadlocked")
	}
	assert.Zero(t, locks.size())
}
