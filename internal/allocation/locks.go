// internal/allocation/locks.go
package allocation

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// lockTable hands out one exclusive slot per resource key. Keys are always
// acquired in sorted order, which gives every caller the same global order
// and rules out deadlock between approvals with overlapping resource sets.
// Slots are never reaped; the domain is tens of venues and materials.
type lockTable struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	timeout time.Duration
}

func newLockTable(timeout time.Duration) *lockTable {
	return &lockTable{
		slots:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		t.slots[key] = s
	}
	return s
}

// acquire takes every key's slot, sharing one deadline across the whole set.
// On timeout or context cancellation it returns all slots taken so far and
// reports ErrResourceBusy; the caller should retry with backoff.
func (t *lockTable) acquire(ctx context.Context, keys []string) (release func(), err error) {
	ordered := append([]string(nil), keys...)
	sort.Strings(ordered)
	// A repeated key would block on its own slot; one take per key suffices.
	ordered = slices.Compact(ordered)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	var held []chan struct{}
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range ordered {
		s := t.slot(key)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-timer.C:
			releaseHeld()
			return nil, ErrResourceBusy
		case <-ctx.Done():
			releaseHeld()
			return nil, ctx.Err()
		}
	}
	return releaseHeld, nil
}
