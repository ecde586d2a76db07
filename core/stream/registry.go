package stream

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/winstream/internal/logging"
)

// handle is the registry entry shared by every window over one store.
type handle struct {
	id    string
	store Store
	refs  int // guarded by registry.mu
}

var registry = struct {
	mu      sync.Mutex
	entries map[Store]*handle
}{entries: make(map[Store]*handle)}

// liveWindows counts windows that have been opened and not yet closed.
var liveWindows atomic.Int64

// LiveWindows returns the number of open windows in this process.
func LiveWindows() int64 {
	return liveWindows.Load()
}

// acquire returns the entry for store, creating it on first use, and takes
// one reference on it.
func acquire(store Store) *handle {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	h, ok := registry.entries[store]
	if !ok {
		h = &handle{id: uuid.NewString(), store: store}
		registry.entries[store] = h
		length, _ := store.Len()
		logging.StoreOpened(h.id, fmt.Sprintf("%T", store), length)
	}
	h.refs++
	return h
}

// retain takes one more reference on an entry that is already live.
func (h *handle) retain() {
	registry.mu.Lock()
	h.refs++
	registry.mu.Unlock()
}

// release drops one reference and closes the store when none remain.
func (h *handle) release() error {
	registry.mu.Lock()
	h.refs--
	if h.refs > 0 {
		registry.mu.Unlock()
		return nil
	}
	delete(registry.entries, h.store)
	registry.mu.Unlock()

	// The store is closed outside the lock: a Window used as a store
	// releases its own entry from Close.
	err := h.store.Close()
	logging.StoreClosed(h.id, err)
	return err
}
