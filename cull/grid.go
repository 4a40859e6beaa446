// SPDX-License-Identifier: GPL-2.0-or-later

package cull

import (
	"github.com/chewxy/math32"

	"soundscene/conlog"
	"soundscene/math"
	"soundscene/math/vec"
)

const (
	overflowCell = -1
	// upper bound for the number of cells, the cell size grows to fit
	maxCells = 1 << 18
)

// Grid is a uniform grid over the scene extents. An object is stored in the
// cell containing the center of its box. Objects larger than a cell go to an
// overflow list that every query scans. Points and boxes outside of the
// extents are clamped into the border cells.
type Grid[T Object] struct {
	collection[T]
	min      vec.Vec3
	max      vec.Vec3
	cellSize float32
	dim      [3]int
	cells    [][]T
	overflow []T
	count    int
}

func NewGrid[T Object](min, max vec.Vec3, cellSize float32) *Grid[T] {
	g := &Grid[T]{}
	g.partition(min, max, cellSize)
	return g
}

func (g *Grid[T]) partition(min, max vec.Vec3, cellSize float32) {
	g.min, g.max = vec.MinMax(min, max)
	if cellSize <= 0 {
		cellSize = 1
	}
	size := vec.Sub(g.max, g.min)
	for {
		total := 1
		for i := 0; i < 3; i++ {
			n := int(math32.Ceil(size.Idx(i) / cellSize))
			g.dim[i] = math.Clamp(1, n, maxCells)
			total *= g.dim[i]
		}
		if total <= maxCells {
			break
		}
		cellSize *= 2
	}
	g.cellSize = cellSize
	g.cells = make([][]T, g.dim[0]*g.dim[1]*g.dim[2])
	g.overflow = nil
	g.count = 0
}

// RePartition rebuilds the grid for new extents and cell size. Every member
// stays a member.
func (g *Grid[T]) RePartition(min, max vec.Vec3, cellSize float32) {
	members := g.members()
	for _, o := range members {
		o.CullLink().clear()
	}
	g.partition(min, max, cellSize)
	for _, o := range members {
		g.AddObject(o)
	}
	conlog.DPrintf("cull: grid %vx%vx%v cell %v, %v objects\n",
		g.dim[0], g.dim[1], g.dim[2], g.cellSize, g.count)
}

func (g *Grid[T]) members() []T {
	r := make([]T, 0, g.count)
	for _, c := range g.cells {
		r = append(r, c...)
	}
	return append(r, g.overflow...)
}

// CellSize returns the effective cell size which can be larger than the
// requested one for huge extents.
func (g *Grid[T]) CellSize() float32 {
	return g.cellSize
}

func (g *Grid[T]) Count() int {
	return g.count
}

func (g *Grid[T]) axisIndex(v float32, axis int) int {
	f := math32.Floor((v - g.min.Idx(axis)) / g.cellSize)
	f = math.Clamp(0, f, float32(g.dim[axis]-1))
	return int(f)
}

func (g *Grid[T]) cellCoords(p vec.Vec3) [3]int {
	return [3]int{
		g.axisIndex(p.X, 0),
		g.axisIndex(p.Y, 1),
		g.axisIndex(p.Z, 2),
	}
}

func (g *Grid[T]) flat(c [3]int) int {
	return (c[2]*g.dim[1]+c[1])*g.dim[0] + c[0]
}

func (g *Grid[T]) cellOf(o T) int {
	b := o.CullBox()
	if b.MaxExtent() > g.cellSize {
		return overflowCell
	}
	return g.flat(g.cellCoords(b.Center))
}

func (g *Grid[T]) list(cell int) *[]T {
	if cell == overflowCell {
		return &g.overflow
	}
	return &g.cells[cell]
}

// AddObject inserts o. Adding a member again does nothing.
func (g *Grid[T]) AddObject(o T) {
	l := o.CullLink()
	if l.owner != nil {
		return
	}
	g.insert(o, g.cellOf(o))
}

func (g *Grid[T]) insert(o T, cell int) {
	lst := g.list(cell)
	*o.CullLink() = Link{owner: g, cell: cell, slot: len(*lst)}
	*lst = append(*lst, o)
	g.count++
}

// RemoveObject removes o. Objects that are not members are ignored.
func (g *Grid[T]) RemoveObject(o T) {
	l := o.CullLink()
	if l.owner != any(g) {
		return
	}
	g.unlink(l)
}

func (g *Grid[T]) unlink(l *Link) {
	lst := g.list(l.cell)
	last := len(*lst) - 1
	if l.slot != last {
		moved := (*lst)[last]
		(*lst)[l.slot] = moved
		moved.CullLink().slot = l.slot
	}
	var zero T
	(*lst)[last] = zero
	*lst = (*lst)[:last]
	g.count--
	l.clear()
}

// UpdateCulling moves o to the cell matching its current box.
func (g *Grid[T]) UpdateCulling(o T) {
	l := o.CullLink()
	if l.owner != any(g) {
		return
	}
	cell := g.cellOf(o)
	if cell == l.cell {
		return
	}
	g.unlink(l)
	g.insert(o, cell)
}

// CollectObjects appends every member whose box contains p.
func (g *Grid[T]) CollectObjects(p vec.Vec3) {
	r := vec.Splat(g.cellSize)
	g.scan(vec.Sub(p, r), vec.Add(p, r), func(o T) bool {
		b := o.CullBox()
		return b.Contains(p)
	})
}

// CollectBox appends every member whose box intersects b.
func (g *Grid[T]) CollectBox(b vec.Box) {
	r := vec.Splat(g.cellSize)
	g.scan(vec.Sub(b.Min(), r), vec.Add(b.Max(), r), func(o T) bool {
		ob := o.CullBox()
		return ob.Intersects(b)
	})
}

func (g *Grid[T]) scan(lo, hi vec.Vec3, test func(T) bool) {
	l := g.cellCoords(lo)
	h := g.cellCoords(hi)
	for z := l[2]; z <= h[2]; z++ {
		for y := l[1]; y <= h[1]; y++ {
			for x := l[0]; x <= h[0]; x++ {
				for _, o := range g.cells[g.flat([3]int{x, y, z})] {
					if test(o) {
						g.collected = append(g.collected, o)
					}
				}
			}
		}
	}
	for _, o := range g.overflow {
		if test(o) {
			g.collected = append(g.collected, o)
		}
	}
}
