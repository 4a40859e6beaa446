// SPDX-License-Identifier: GPL-2.0-or-later

// Package persist hands out object identities and resolves saved
// identities back to live objects after a load.
package persist

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"

	"soundscene/conlog"
)

var lastID atomic.Uint64

// NewID returns a process wide unique, never zero, identity.
func NewID() uint64 {
	return lastID.Add(1)
}

type entry struct {
	old uint64
	obj any
}

type request struct {
	old uint64
	fix func(obj any)
}

// Remapper collects the objects created by a load together with the
// identity they had when saved, and the references that need fixing.
// Process resolves them in one go.
type Remapper struct {
	mu       sync.Mutex
	entries  []entry
	requests []request
}

// Register records that the object saved as old is now obj.
func (r *Remapper) Register(old uint64, obj any) {
	if old == 0 {
		return
	}
	r.mu.Lock()
	r.entries = append(r.entries, entry{old, obj})
	r.mu.Unlock()
}

// Request asks for fix to be called with the object saved as old.
func (r *Remapper) Request(old uint64, fix func(obj any)) {
	if old == 0 {
		return
	}
	r.mu.Lock()
	r.requests = append(r.requests, request{old, fix})
	r.mu.Unlock()
}

// Process resolves all pending requests and resets the remapper. It returns
// the number of requests whose object was never registered.
func (r *Remapper) Process() int {
	r.mu.Lock()
	entries, requests := r.entries, r.requests
	r.entries, r.requests = nil, nil
	r.mu.Unlock()

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.old, b.old)
	})
	missing := 0
	for _, q := range requests {
		i, ok := slices.BinarySearchFunc(entries, q.old, func(e entry, id uint64) int {
			return cmp.Compare(e.old, id)
		})
		if !ok {
			conlog.Printf("persist: unresolved reference %#x\n", q.old)
			missing++
			continue
		}
		q.fix(entries[i].obj)
	}
	return missing
}
