// SPDX-License-Identifier: GPL-2.0-or-later

// Package cull provides spatial indices over axis aligned boxes.
//
// Objects carry a Link which records where a system stored them. An object
// can be a member of at most one system at a time. The query side is a
// cursor: ResetCollection, one or more Collect calls, then First/Next.
// None of the systems are safe for concurrent use and a collection must not
// be started while another one on the same system is being iterated.
package cull

import (
	"soundscene/math/vec"
)

// Link is the per object bookkeeping of a culling system.
type Link struct {
	owner any
	cell  int
	slot  int
}

// Linked reports whether the object is currently stored in any system.
func (l *Link) Linked() bool {
	return l.owner != nil
}

func (l *Link) clear() {
	*l = Link{}
}

// Object is anything a culling system can index.
type Object interface {
	CullBox() vec.Box
	CullLink() *Link
}

// System is the contract shared by the grid and the static tree.
type System[T Object] interface {
	RePartition(min, max vec.Vec3, cellSize float32)
	AddObject(o T)
	RemoveObject(o T)
	UpdateCulling(o T)
	ResetCollection()
	CollectObjects(p vec.Vec3)
	CollectBox(b vec.Box)
	First() (T, bool)
	Next() (T, bool)
	Count() int
}

// collection is the cursor shared by all systems.
type collection[T Object] struct {
	collected []T
	cursor    int
}

func (c *collection[T]) ResetCollection() {
	clear(c.collected)
	c.collected = c.collected[:0]
	c.cursor = 0
}

// First rewinds the cursor and returns the first collected object.
func (c *collection[T]) First() (T, bool) {
	c.cursor = 0
	return c.Next()
}

func (c *collection[T]) Next() (T, bool) {
	if c.cursor >= len(c.collected) {
		var zero T
		return zero, false
	}
	o := c.collected[c.cursor]
	c.cursor++
	return o, true
}

// Collected returns the current collection. The slice is reused by the next
// ResetCollection.
func (c *collection[T]) Collected() []T {
	return c.collected
}
