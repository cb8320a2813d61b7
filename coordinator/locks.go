// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import "sync"

// pollLocks hands out one mutex per poll id. Entries are dropped once no
// goroutine holds or waits on them.
type pollLocks struct {
	mu    sync.Mutex
	locks map[string]*pollLock
}

type pollLock struct {
	mu   sync.Mutex
	refs int
}

func newPollLocks() *pollLocks {
	return &pollLocks{locks: make(map[string]*pollLock)}
}

// lock blocks until the caller owns pollID and returns the matching unlock
func (l *pollLocks) lock(pollID string) func() {
	l.mu.Lock()
	pl, ok := l.locks[pollID]
	if !ok {
		pl = &pollLock{}
		l.locks[pollID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, pollID)
		}
		l.mu.Unlock()
	}
}

// size is the number of polls currently locked or awaited
func (l *pollLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
