package ledger

import (
	"sync"
	"time"
)

var (
	clockMu  sync.Mutex
	lastTick time.Time
)

// Now returns the current UTC time, guaranteed not to move backwards within
// this process. Status-history and audit records rely on ordering.
func Now() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()

	t := time.Now().UTC()
	if !t.After(lastTick) {
		t = lastTick.Add(time.Nanosecond)
	}
	lastTick = t
	return t
}
