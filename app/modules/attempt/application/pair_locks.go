package attemptservice

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type pairKey struct {
	userID       uuid.UUID
	puzzleTypeID uuid.UUID
}

func comparePairs(a, b pairKey) int {
	if c := cmp.Compare(a.userID.String(), b.userID.String()); c != 0 {
		return c
	}
	return cmp.Compare(a.puzzleTypeID.String(), b.puzzleTypeID.String())
}

// pairLocks is a keyed mutex. Entries are dropped once nobody holds or waits on them.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[pairKey]*pairLock)}
}

// lock blocks until key is free and returns the matching unlock.
func (p *pairLocks) lock(key pairKey) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

// lockAll takes every key in a fixed order so overlapping batches cannot deadlock.
func (p *pairLocks) lockAll(keys []pairKey) func() {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, comparePairs)
	sorted = slices.Compact(sorted)

	unlocks := make([]func(), 0, len(sorted))
	for _, k := range sorted {
		unlocks = append(unlocks, p.lock(k))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (p *pairLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
