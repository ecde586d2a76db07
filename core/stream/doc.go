// Package stream provides bounded, independently cursored windows over a
// shared backing store.
//
// A Store is any seekable byte container: a MemoryStore, a lazily created
// FileStore, or another Window. Windows opened over the same store share one
// registry entry whose reference count decides when the store is closed: the
// store closes when the last window over it is closed, never earlier.
//
// Every read or write repositions the store's cursor to the window's absolute
// position immediately before acting, so sibling windows may be used in any
// interleaving from a single goroutine. The store cursor itself is not locked:
// windows that share a store must not be used from several goroutines at once
// without external synchronization. Opening and closing windows is safe from
// any goroutine; the registry's increment and decrement-and-close run under a
// mutex.
//
// LiveWindows reports how many windows are currently open in the process. It
// is an auditing aid for tests and tools, not part of any correctness
// contract.
package stream
