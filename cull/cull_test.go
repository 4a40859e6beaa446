// SPDX-License-Identifier: GPL-2.0-or-later

package cull

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/math/vec"
	"soundscene/rand"
)

type object struct {
	id   int
	box  vec.Box
	link Link
}

func (o *object) CullBox() vec.Box { return o.box }
func (o *object) CullLink() *Link  { return &o.link }

var (
	worldMin = vec.Splat(-500)
	worldMax = vec.Splat(500)
)

func systems() map[string]func() System[*object] {
	return map[string]func() System[*object]{
		"grid": func() System[*object] { return NewGrid[*object](worldMin, worldMax, 100) },
		"tree": func() System[*object] { return NewTree[*object]() },
	}
}

func ids(s System[*object]) []int {
	var r []int
	for o, ok := s.First(); ok; o, ok = s.Next() {
		r = append(r, o.id)
	}
	sort.Ints(r)
	return r
}

func collect(s System[*object], p vec.Vec3) []int {
	s.ResetCollection()
	s.CollectObjects(p)
	return ids(s)
}

func randomObjects(n int, seed uint32) []*object {
	g := rand.New(seed)
	r := make([]*object, n)
	for i := range r {
		c := vec.Vec3{X: g.Range(-600, 600), Y: g.Range(-600, 600), Z: g.Range(-100, 100)}
		r[i] = &object{id: i, box: vec.BoxAround(c, g.Range(1, 250))}
	}
	return r
}

func bruteForce(objs []*object, p vec.Vec3) []int {
	var r []int
	for _, o := range objs {
		if o.box.Contains(p) {
			r = append(r, o.id)
		}
	}
	sort.Ints(r)
	return r
}

func TestAddRemove(t *testing.T) {
	for name, create := range systems() {
		t.Run(name, func(t *testing.T) {
			s := create()
			a := &object{id: 1, box: vec.BoxAround(vec.Vec3{}, 10)}
			b := &object{id: 2, box: vec.BoxAround(vec.Vec3{X: 5}, 10)}
			c := &object{id: 3, box: vec.BoxAround(vec.Vec3{X: -5}, 10)}

			s.AddObject(a)
			s.AddObject(b)
			s.AddObject(c)
			s.AddObject(a)
			assert.Equal(t, 3, s.Count())
			assert.Equal(t, []int{1, 2, 3}, collect(s, vec.Vec3{}))

			s.RemoveObject(a)
			assert.False(t, a.link.Linked())
			s.RemoveObject(a)
			assert.Equal(t, 2, s.Count())
			assert.Equal(t, []int{2, 3}, collect(s, vec.Vec3{}))

			s.RemoveObject(c)
			s.RemoveObject(b)
			assert.Equal(t, 0, s.Count())
			assert.Empty(t, collect(s, vec.Vec3{}))
		})
	}
}

func TestMembershipIsExclusive(t *testing.T) {
	g := NewGrid[*object](worldMin, worldMax, 100)
	tr := NewTree[*object]()
	o := &object{box: vec.BoxAround(vec.Vec3{}, 1)}
	g.AddObject(o)
	tr.AddObject(o)
	tr.RemoveObject(o)
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, 0, tr.Count())
	assert.True(t, o.link.Linked())
}

func TestMatchesBruteForce(t *testing.T) {
	objs := randomObjects(300, 42)
	points := randomObjects(50, 7)
	for name, create := range systems() {
		t.Run(name, func(t *testing.T) {
			s := create()
			for _, o := range objs {
				s.AddObject(o)
			}
			for _, p := range points {
				assert.Equal(t, bruteForce(objs, p.box.Center), collect(s, p.box.Center))
			}
		})
	}
}

func TestCellSizeDoesNotChangeResults(t *testing.T) {
	objs := randomObjects(200, 5)
	points := randomObjects(40, 9)
	var want [][]int
	for _, cell := range []float32{7, 40, 100, 333, 2000} {
		t.Run(fmt.Sprint(cell), func(t *testing.T) {
			g := NewGrid[*object](worldMin, worldMax, cell)
			for _, o := range objs {
				o.link.clear()
				g.AddObject(o)
			}
			var got [][]int
			for _, p := range points {
				got = append(got, collect(g, p.box.Center))
			}
			if want == nil {
				want = got
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRePartitionPreservesMembership(t *testing.T) {
	objs := randomObjects(100, 13)
	for name, create := range systems() {
		t.Run(name, func(t *testing.T) {
			s := create()
			for _, o := range objs {
				s.AddObject(o)
			}
			p := vec.Vec3{X: 10, Y: -20}
			before := collect(s, p)

			s.RePartition(vec.Splat(-2000), vec.Splat(2000), 37)
			assert.Equal(t, len(objs), s.Count())
			assert.Equal(t, before, collect(s, p))
			for _, o := range objs {
				assert.True(t, o.link.Linked())
				s.RemoveObject(o)
			}
			assert.Equal(t, 0, s.Count())
		})
	}
}

func TestOutOfRangeIsClamped(t *testing.T) {
	g := NewGrid[*object](worldMin, worldMax, 100)
	far := &object{id: 1, box: vec.BoxAround(vec.Vec3{X: 5000, Y: -5000}, 50)}
	big := &object{id: 2, box: vec.BoxAround(vec.Vec3{}, 4000)}
	g.AddObject(far)
	g.AddObject(big)

	assert.Equal(t, []int{1, 2}, collect(g, vec.Vec3{X: 5020, Y: -4990}))
	assert.Equal(t, []int{2}, collect(g, vec.Vec3{X: 499, Y: -499}))
	assert.Empty(t, collect(g, vec.Splat(1e7)))
}

func TestUpdateCulling(t *testing.T) {
	for name, create := range systems() {
		t.Run(name, func(t *testing.T) {
			s := create()
			o := &object{id: 1, box: vec.BoxAround(vec.Vec3{X: -300}, 10)}
			s.AddObject(o)
			require.Equal(t, []int{1}, collect(s, vec.Vec3{X: -300}))

			o.box = vec.BoxAround(vec.Vec3{X: 300}, 10)
			s.UpdateCulling(o)
			assert.Empty(t, collect(s, vec.Vec3{X: -300}))
			assert.Equal(t, []int{1}, collect(s, vec.Vec3{X: 300}))
		})
	}
}

func TestCollectBox(t *testing.T) {
	objs := randomObjects(200, 21)
	q := vec.BoxFromMinMax(vec.Vec3{X: -50, Y: -50, Z: -50}, vec.Vec3{X: 80, Y: 20, Z: 50})
	var want []int
	for _, o := range objs {
		if o.box.Intersects(q) {
			want = append(want, o.id)
		}
	}
	sort.Ints(want)
	for name, create := range systems() {
		t.Run(name, func(t *testing.T) {
			s := create()
			for _, o := range objs {
				s.AddObject(o)
			}
			s.ResetCollection()
			s.CollectBox(q)
			assert.Equal(t, want, ids(s))
		})
	}
}

func TestTreeLooseObjects(t *testing.T) {
	tr := NewTree[*object]()
	objs := randomObjects(looseLimit*3, 3)
	for i, o := range objs {
		tr.AddObject(o)
		if i%5 == 0 {
			p := o.box.Center
			assert.Equal(t, bruteForce(objs[:i+1], p), collect(tr, p))
		}
	}
}

func TestCursor(t *testing.T) {
	g := NewGrid[*object](worldMin, worldMax, 100)
	_, ok := g.First()
	assert.False(t, ok)

	g.AddObject(&object{id: 4, box: vec.BoxAround(vec.Vec3{}, 1)})
	g.ResetCollection()
	g.CollectObjects(vec.Vec3{})
	g.CollectObjects(vec.Vec3{})
	assert.Len(t, g.Collected(), 2)
	o, ok := g.First()
	require.True(t, ok)
	assert.Equal(t, 4, o.id)
	_, ok = g.Next()
	assert.True(t, ok)
	_, ok = g.Next()
	assert.False(t, ok)
}
