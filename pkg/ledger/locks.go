package ledger

import (
	"context"
	"sort"
	"sync"

	"bankledger/pkg/bank"
)

// accountLocks serializes balance mutations per account. Locks are channel
// based so acquisition can respect context cancellation and a bounded wait.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]chan struct{})}
}

func (al *accountLocks) lockFor(id string) chan struct{} {
	al.mu.Lock()
	defer al.mu.Unlock()
	l, ok := al.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		al.locks[id] = l
	}
	return l
}

// acquire takes the locks for the given account ids in ascending id order.
// The fixed global order prevents deadlock between opposing transfers over the
// same account pair. On failure (context done) every lock taken so far is
// released and bank.ErrLockTimeout is returned.
func (al *accountLocks) acquire(ctx context.Context, ids ...string) (release func(), err error) {
	ordered := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}
	sort.Strings(ordered)

	held := make([]chan struct{}, 0, len(ordered))
	releaseHeld := func() {
		for _, l := range held {
			<-l
		}
	}

	for _, id := range ordered {
		l := al.lockFor(id)
		select {
		case l <- struct{}{}:
			held = append(held, l)
		case <-ctx.Done():
			releaseHeld()
			return nil, bank.ErrLockTimeout
		}
	}

	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}
