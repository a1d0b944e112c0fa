// Package nodeid issues the integer identifiers that tie electrically
// identical points together.
//
// Every connectivity-bearing point (via and pad centers, power and ground
// symbols, trace endpoints that snapped onto one of those) carries a Node
// ID. Two points with the same ID are the same net. The Allocator is the
// only source of new IDs and never hands out a value twice within its
// lifetime; SetCounter exists so a loaded project can continue numbering
// after its highest used ID.
package nodeid

import (
	"strconv"
	"sync"
)

// ID is a Node ID. The zero value means "no ID".
type ID int64

// None is the absent Node ID.
const None ID = 0

// DefaultSeed is the first value handed out by a fresh allocator.
const DefaultSeed ID = 1

// Valid reports whether id refers to an allocated node.
func (id ID) Valid() bool {
	return id > None
}

// String returns the decimal form used in component pin connections.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Parse reads a decimal Node ID as stored in a component pin connection.
// Empty strings and non-positive values yield None and false.
func Parse(s string) (ID, bool) {
	if s == "" {
		return None, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return None, false
	}
	return ID(n), true
}

// Allocator hands out strictly increasing Node IDs. It is safe for
// concurrent use.
type Allocator struct {
	mu   sync.Mutex
	next ID
}

// NewAllocator returns an allocator whose first ID is seed. Seeds below
// DefaultSeed are raised to it.
func NewAllocator(seed ID) *Allocator {
	if seed < DefaultSeed {
		seed = DefaultSeed
	}
	return &Allocator{next: seed}
}

// NextID consumes and returns the next ID.
func (a *Allocator) NextID() ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.next
	a.next++
	return id
}

// Peek returns the value the next call to NextID will return.
func (a *Allocator) Peek() ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}

// SetCounter reseeds the allocator so that the next ID is n. This is the
// project load/new-project entry point; callers must pass a value above every
// ID already present in the document (see Observe).
func (a *Allocator) SetCounter(n ID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n < DefaultSeed {
		n = DefaultSeed
	}
	a.next = n
}

// Observe records an ID found in existing data and moves the counter past
// it if needed. It never lowers the counter.
func (a *Allocator) Observe(id ID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id >= a.next {
		a.next = id + 1
	}
}
