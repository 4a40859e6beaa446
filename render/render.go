// SPDX-License-Identifier: GPL-2.0-or-later

// Package render keeps the poses of render objects that sounds and
// listeners can be attached to. References are generation checked handles,
// a handle to a removed object simply stops resolving.
package render

import (
	"soundscene/math/vec"
	"soundscene/persist"
)

// Handle identifies an object in a Table. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// Raw packs the handle for saving.
func (h Handle) Raw() uint64 {
	return uint64(h.gen)<<32 | uint64(h.index)
}

func FromRaw(r uint64) Handle {
	return Handle{index: uint32(r), gen: uint32(r >> 32)}
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

type object struct {
	gen       uint32
	alive     bool
	transform vec.Transform
	bones     map[string]vec.Transform
}

type Table struct {
	objects []object
	free    []uint32
}

func NewTable() *Table {
	return &Table{}
}

// Add creates an object at t.
func (tb *Table) Add(t vec.Transform) Handle {
	var idx uint32
	if n := len(tb.free); n > 0 {
		idx = tb.free[n-1]
		tb.free = tb.free[:n-1]
	} else {
		idx = uint32(len(tb.objects))
		tb.objects = append(tb.objects, object{})
	}
	o := &tb.objects[idx]
	o.gen++
	if o.gen == 0 {
		o.gen = 1
	}
	o.alive = true
	o.transform = t
	o.bones = nil
	return Handle{index: idx, gen: o.gen}
}

func (tb *Table) get(h Handle) *object {
	if tb == nil || h.gen == 0 || int(h.index) >= len(tb.objects) {
		return nil
	}
	o := &tb.objects[h.index]
	if !o.alive || o.gen != h.gen {
		return nil
	}
	return o
}

func (tb *Table) Valid(h Handle) bool {
	return tb.get(h) != nil
}

func (tb *Table) Remove(h Handle) {
	o := tb.get(h)
	if o == nil {
		return
	}
	o.alive = false
	o.bones = nil
	tb.free = append(tb.free, h.index)
}

func (tb *Table) SetTransform(h Handle, t vec.Transform) bool {
	o := tb.get(h)
	if o == nil {
		return false
	}
	o.transform = t
	return true
}

// SetBone sets the pose of a named bone relative to the object.
func (tb *Table) SetBone(h Handle, bone string, local vec.Transform) bool {
	o := tb.get(h)
	if o == nil {
		return false
	}
	if o.bones == nil {
		o.bones = make(map[string]vec.Transform)
	}
	o.bones[bone] = local
	return true
}

// Transform returns the world pose of the object, or of one of its bones if
// bone is not empty. Unknown bones resolve to the object itself.
func (tb *Table) Transform(h Handle, bone string) (vec.Transform, bool) {
	o := tb.get(h)
	if o == nil {
		return vec.Transform{}, false
	}
	if bone == "" {
		return o.transform, true
	}
	local, ok := o.bones[bone]
	if !ok {
		return o.transform, true
	}
	return vec.Mul(o.transform, local), true
}

// RegisterLive registers every live object with remap under its raw handle
// so that saved attachments resolve to the objects of this table.
func (tb *Table) RegisterLive(remap *persist.Remapper) {
	if tb == nil || remap == nil {
		return
	}
	for i := range tb.objects {
		o := &tb.objects[i]
		if !o.alive {
			continue
		}
		h := Handle{index: uint32(i), gen: o.gen}
		remap.Register(h.Raw(), h)
	}
}
