// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"soundscene/cull"
	"soundscene/math/vec"
)

// members is an insertion ordered set with O(1) add, remove and lookup.
// Removal moves the last element into the hole.
type members[T comparable] struct {
	items []T
	index map[T]int
}

func (m *members[T]) add(v T) bool {
	if _, ok := m.index[v]; ok {
		return false
	}
	if m.index == nil {
		m.index = make(map[T]int)
	}
	m.index[v] = len(m.items)
	m.items = append(m.items, v)
	return true
}

func (m *members[T]) remove(v T) bool {
	i, ok := m.index[v]
	if !ok {
		return false
	}
	last := len(m.items) - 1
	if i != last {
		m.items[i] = m.items[last]
		m.index[m.items[i]] = i
	}
	var zero T
	m.items[last] = zero
	m.items = m.items[:last]
	delete(m.index, v)
	return true
}

func (m *members[T]) has(v T) bool {
	_, ok := m.index[v]
	return ok
}

func (m *members[T]) len() int {
	return len(m.items)
}

// snapshot copies the members so the live set can change while the copy is
// walked.
func (m *members[T]) snapshot() []T {
	return append([]T(nil), m.items...)
}

// wrapper is the cull system entry of a scene object.
type wrapper[T any] struct {
	owner T
	box   vec.Box
	link  cull.Link
}

func newWrapper[T any](owner T, box vec.Box) *wrapper[T] {
	return &wrapper[T]{owner: owner, box: box}
}

func (w *wrapper[T]) CullBox() vec.Box     { return w.box }
func (w *wrapper[T]) CullLink() *cull.Link { return &w.link }

func (w *wrapper[T]) release() {
	debugAssert(!w.link.Linked(), "releasing a wrapper still in a culling system")
	var zero T
	w.owner = zero
}

type releaser interface {
	release()
}
