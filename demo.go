// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/chewxy/math32"

	"soundscene/conlog"
	"soundscene/math/vec"
	"soundscene/rand"
	"soundscene/render"
	"soundscene/sound"
)

// demo drives a random population: drifting emitters, a camera circling
// the origin that carries the listener, and guards reacting to gunfire.
type demo struct {
	sys    *sound.System
	rnd    rand.Generator
	camera render.Handle

	movers  []mover
	guards  []*sound.LogicalListener
	gunfire uint32
	heard   int
}

type mover struct {
	object   render.Handle
	position vec.Vec3
	velocity vec.Vec3
	sound    *sound.AudibleSound
}

func newDemo(sys *sound.System, seed uint32) *demo {
	d := &demo{
		sys: sys,
		rnd: rand.New(seed),
	}
	d.gunfire = sys.AddLogicalType("gunfire")
	d.camera = sys.RenderObjects().Add(vec.Identity())
	sys.Scene().Listener().AttachToObject(d.camera, "")
	return d
}

func (d *demo) randomPoint() vec.Vec3 {
	min, max := d.sys.Scene().Extents()
	return vec.Vec3{
		X: d.rnd.Range(min.X, max.X),
		Y: d.rnd.Range(min.Y, max.Y),
		Z: d.rnd.Range(min.Z, max.Z) * 0.1,
	}
}

// populate adds n emitters. About a third are static ambient loops, the
// rest move and fire a gunshot every now and then.
func (d *demo) populate(n int) {
	names := d.sys.BufferNames()
	if len(names) == 0 {
		return
	}
	scene := d.sys.Scene()
	scene.SetBatchMode(true)
	defer scene.SetBatchMode(false)

	for i := 0; i < n; i++ {
		s := d.sys.Create3DSound(names[d.rnd.Intn(len(names))])
		s.SetDropOffRadius(d.rnd.Range(20, 150))
		s.SetMaxVolRadius(s.DropOffRadius() * 0.2)
		s.SetPriority(d.rnd.Float32())
		s.SetTransform(vec.FromAngles(d.randomPoint(), vec.Vec3{Y: d.rnd.Range(0, 360)}))
		s.SetLoopCount(0)
		if d.rnd.Bool(0.33) {
			s.SetStatic(true)
			s.AddToScene(true)
			continue
		}
		m := mover{
			object:   d.sys.RenderObjects().Add(s.Transform()),
			position: s.Position(),
			velocity: vec.Vec3{X: d.rnd.Range(-20, 20), Y: d.rnd.Range(-20, 20)},
			sound:    s,
		}
		s.AttachToObject(m.object, "")
		s.AddToScene(true)
		d.movers = append(d.movers, m)
	}

	for i := 0; i < max(n/16, 1); i++ {
		g := sound.NewLogicalListener(d.onHeard)
		g.SetTypeMask(d.gunfire)
		g.SetPosition(d.randomPoint())
		g.SetScale(d.rnd.Range(0.5, 2))
		scene.AddLogicalListener(g)
		d.guards = append(d.guards, g)
	}
	conlog.Printf("demo: %d emitters, %d moving, %d guards\n", n, len(d.movers), len(d.guards))
}

func (d *demo) onHeard(l *sound.LogicalListener, s *sound.LogicalSound) {
	d.heard++
	conlog.DPrintf("demo: guard %v heard gunfire at %v\n", l.Position(), s.Position())
}

// step moves the camera and the emitters by one frame of ms milliseconds.
func (d *demo) step(frame int, ms uint32) {
	dt := float32(ms) / 1000
	angle := float32(frame) * dt * 0.2
	sin, cos := math32.Sincos(angle)
	eye := vec.Vec3{X: 200 * cos, Y: 200 * sin}
	d.sys.RenderObjects().SetTransform(d.camera, vec.LookAt(eye, vec.Vec3{}, vec.Vec3{Z: 1}))

	min, max := d.sys.Scene().Extents()
	for i := range d.movers {
		m := &d.movers[i]
		m.position = vec.Add(m.position, m.velocity.Scale(dt))
		if m.position.X < min.X || m.position.X > max.X {
			m.velocity.X = -m.velocity.X
		}
		if m.position.Y < min.Y || m.position.Y > max.Y {
			m.velocity.Y = -m.velocity.Y
		}
		d.sys.RenderObjects().SetTransform(m.object, vec.Translation(m.position))
	}

	if len(d.movers) > 0 && d.rnd.Bool(0.05) {
		m := d.movers[d.rnd.Intn(len(d.movers))]
		shot := d.sys.NewLogicalSound()
		shot.SetTypeMask(d.gunfire)
		shot.SetSingleShot(true)
		shot.SetDropOffRadius(m.sound.DropOffRadius() * 2)
		shot.SetPosition(m.position)
		shot.AddToScene(false)
	}
}
