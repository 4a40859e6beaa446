// SPDX-License-Identifier: GPL-2.0-or-later

package cull

import (
	"slices"

	"soundscene/conlog"
	"soundscene/math/vec"
)

const (
	leafSize = 4
	// objects added after a build are scanned linearly until there are this
	// many of them
	looseLimit = 16
)

type treeNode struct {
	lo, hi      vec.Vec3 // bounds of all boxes below
	start, end  int      // range in Tree.order, leaves only
	left, right int      // child nodes, -1 for leaves
}

// Tree is a bounding volume hierarchy for objects that rarely move. It is
// built lazily over its own population; the extents and cell size given to
// RePartition are ignored.
type Tree[T Object] struct {
	collection[T]
	members []T
	order   []T
	nodes   []treeNode
	built   int // members[:built] are covered by nodes
	dirty   bool
}

func NewTree[T Object]() *Tree[T] {
	return &Tree[T]{}
}

// RePartition forces a rebuild on the next query.
func (t *Tree[T]) RePartition(_, _ vec.Vec3, _ float32) {
	t.dirty = true
}

func (t *Tree[T]) Count() int {
	return len(t.members)
}

func (t *Tree[T]) AddObject(o T) {
	l := o.CullLink()
	if l.owner != nil {
		return
	}
	*l = Link{owner: t, slot: len(t.members)}
	t.members = append(t.members, o)
	if len(t.members)-t.built > looseLimit {
		t.dirty = true
	}
}

func (t *Tree[T]) RemoveObject(o T) {
	l := o.CullLink()
	if l.owner != any(t) {
		return
	}
	last := len(t.members) - 1
	if l.slot != last {
		moved := t.members[last]
		t.members[l.slot] = moved
		moved.CullLink().slot = l.slot
	}
	var zero T
	t.members[last] = zero
	t.members = t.members[:last]
	l.clear()
	t.dirty = true
}

func (t *Tree[T]) UpdateCulling(o T) {
	if o.CullLink().owner == any(t) {
		t.dirty = true
	}
}

func (t *Tree[T]) rebuild() {
	t.order = append(t.order[:0], t.members...)
	t.nodes = t.nodes[:0]
	if len(t.order) > 0 {
		t.build(0, len(t.order))
	}
	t.built = len(t.members)
	t.dirty = false
	conlog.DPrintf("cull: tree rebuilt, %v objects %v nodes\n", len(t.order), len(t.nodes))
}

func (t *Tree[T]) build(start, end int) int {
	first := t.order[start].CullBox()
	bmin, bmax := first.Min(), first.Max()
	lo, hi := first.Center, first.Center
	for _, o := range t.order[start+1 : end] {
		b := o.CullBox()
		bmin, _ = vec.MinMax(bmin, b.Min())
		_, bmax = vec.MinMax(bmax, b.Max())
		lo, _ = vec.MinMax(lo, b.Center)
		_, hi = vec.MinMax(hi, b.Center)
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{lo: bmin, hi: bmax, start: start, end: end, left: -1, right: -1})
	if end-start <= leafSize {
		return idx
	}

	// split at the median of the longest axis of the centers
	spread := vec.Sub(hi, lo)
	axis := 0
	if spread.Y > spread.Idx(axis) {
		axis = 1
	}
	if spread.Z > spread.Idx(axis) {
		axis = 2
	}
	slices.SortFunc(t.order[start:end], func(a, b T) int {
		ca, cb := a.CullBox().Center, b.CullBox().Center
		x, y := ca.Idx(axis), cb.Idx(axis)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	mid := (start + end) / 2
	left := t.build(start, mid)
	right := t.build(mid, end)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

func (t *Tree[T]) CollectObjects(p vec.Vec3) {
	t.query(
		func(n *treeNode) bool {
			return n.lo.X <= p.X && p.X <= n.hi.X &&
				n.lo.Y <= p.Y && p.Y <= n.hi.Y &&
				n.lo.Z <= p.Z && p.Z <= n.hi.Z
		},
		func(o T) bool {
			b := o.CullBox()
			return b.Contains(p)
		})
}

func (t *Tree[T]) CollectBox(q vec.Box) {
	qlo, qhi := q.Min(), q.Max()
	t.query(
		func(n *treeNode) bool {
			return n.lo.X <= qhi.X && qlo.X <= n.hi.X &&
				n.lo.Y <= qhi.Y && qlo.Y <= n.hi.Y &&
				n.lo.Z <= qhi.Z && qlo.Z <= n.hi.Z
		},
		func(o T) bool {
			b := o.CullBox()
			return b.Intersects(q)
		})
}

func (t *Tree[T]) query(node func(*treeNode) bool, test func(T) bool) {
	if t.dirty {
		t.rebuild()
	}
	if len(t.nodes) > 0 {
		stack := []int{0}
		for len(stack) > 0 {
			n := &t.nodes[stack[len(stack)-1]]
			stack = stack[:len(stack)-1]
			if !node(n) {
				continue
			}
			if n.left < 0 {
				for _, o := range t.order[n.start:n.end] {
					if test(o) {
						t.collected = append(t.collected, o)
					}
				}
				continue
			}
			stack = append(stack, n.left, n.right)
		}
	}
	for _, o := range t.members[t.built:] {
		if test(o) {
			t.collected = append(t.collected, o)
		}
	}
}
