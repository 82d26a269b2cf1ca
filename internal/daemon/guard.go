package daemon

import "sync"

// guard serializes everything that may touch the store or present dialogs.
// The check cycle and the interactive menu path block until they own it; the
// display refresh only ever tries, and skips its tick when the guard is
// held, so a modal dialog can never wedge the menu loop behind it.
type guard struct {
	mu sync.Mutex
}

func (g *guard) acquire() {
	g.mu.Lock()
}

func (g *guard) tryAcquire() bool {
	return g.mu.TryLock()
}

func (g *guard) release() {
	g.mu.Unlock()
}
