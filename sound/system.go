// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"sort"

	"soundscene/clock"
	"soundscene/conlog"
	"soundscene/device"
	"soundscene/math"
	"soundscene/math/vec"
	"soundscene/persist"
	"soundscene/render"
)

const maxLogicalTypes = 32

// System ties the scene to a device. It creates sounds, keeps the list of
// playing sounds and runs the frame update.
//
// All exported methods accept a nil *System, a nil system is a disabled
// sound system.
type System struct {
	dev      device.Device
	clock    clock.Source
	scene    *Scene
	voices   *Voices
	playlist members[*AudibleSound]
	buffers  map[string]device.Buffer
	volumes  [categoryCount]float32
	types    []string
	objects  *render.Table
}

// NewSystem creates a system on dev. maxVoices limits the voices further
// than the device does.
func NewSystem(dev device.Device, clk clock.Source, cfg Config, maxVoices int) *System {
	if clk == nil {
		clk = clock.System
	}
	s := &System{
		dev:     dev,
		clock:   clk,
		buffers: make(map[string]device.Buffer),
		volumes: [categoryCount]float32{1, 1},
		objects: render.NewTable(),
	}
	s.voices = newVoices(dev, maxVoices)
	s.scene = newScene(s, cfg)
	return s
}

func (s *System) Scene() *Scene {
	if s == nil {
		return nil
	}
	return s.scene
}

func (s *System) Voices() *Voices {
	if s == nil {
		return nil
	}
	return s.voices
}

func (s *System) Clock() clock.Source {
	if s == nil {
		return clock.System
	}
	return s.clock
}

// RenderObjects is the table sounds and listeners attach to.
func (s *System) RenderObjects() *render.Table {
	if s == nil {
		return nil
	}
	return s.objects
}

func (s *System) RegisterBuffer(b device.Buffer) {
	if s == nil || b == nil {
		return
	}
	s.buffers[b.Name()] = b
}

func (s *System) Buffer(name string) (device.Buffer, bool) {
	if s == nil {
		return nil, false
	}
	b, ok := s.buffers[name]
	return b, ok
}

// BufferNames returns the registered buffer names, sorted.
func (s *System) BufferNames() []string {
	if s == nil {
		return nil
	}
	r := make([]string, 0, len(s.buffers))
	for n := range s.buffers {
		r = append(r, n)
	}
	sort.Strings(r)
	return r
}

// Create3DSound returns a stopped, culled sound for the named buffer. An
// unknown name gives a sound that never gets a voice. With a nil system
// the sound is inert.
func (s *System) Create3DSound(name string) *AudibleSound {
	a := &AudibleSound{
		id:           persist.NewID(),
		name:         name,
		transform:    vec.Identity(),
		autoVelocity: true,
		dropOff:      100,
		priority:     0.5,
		culled:       true,
		loops:        1,
		volume:       1,
	}
	if s == nil {
		return a
	}
	a.sys = s
	b, ok := s.buffers[name]
	if !ok {
		conlog.Printf("sound: unknown buffer %q\n", name)
	}
	a.buffer = b
	return a
}

func (s *System) NewLogicalSound() *LogicalSound {
	l := &LogicalSound{
		id:       persist.NewID(),
		dropOff:  100,
		typeMask: ^uint32(0),
	}
	if s != nil {
		l.sys = s
	}
	return l
}

// AddLogicalType registers a named logical sound type and returns its mask
// bit. Registering a name again returns the existing bit, 0 when all bits
// are taken.
func (s *System) AddLogicalType(name string) uint32 {
	if s == nil {
		return 0
	}
	if m, ok := s.LogicalType(name); ok {
		return m
	}
	if len(s.types) >= maxLogicalTypes {
		conlog.Printf("sound: too many logical types, %q ignored\n", name)
		return 0
	}
	s.types = append(s.types, name)
	return 1 << (len(s.types) - 1)
}

func (s *System) LogicalType(name string) (uint32, bool) {
	if s == nil {
		return 0, false
	}
	for i, n := range s.types {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

func (s *System) LogicalTypes() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.types...)
}

func (s *System) Volume(c Category) float32 {
	if s == nil || c < 0 || c >= categoryCount {
		return 0
	}
	return s.volumes[c]
}

// SetVolume sets the volume of a category. Playing sounds follow at once.
func (s *System) SetVolume(c Category, v float32) {
	if s == nil || c < 0 || c >= categoryCount {
		return
	}
	s.volumes[c] = math.Unit(v)
	for _, a := range s.playlist.items {
		if a.category == c {
			a.applyVolume()
		}
	}
}

// Playing returns the sounds that are playing or paused.
func (s *System) Playing() []*AudibleSound {
	if s == nil {
		return nil
	}
	return s.playlist.snapshot()
}

func (s *System) StopAll() {
	if s == nil {
		return
	}
	for _, a := range s.playlist.snapshot() {
		a.Stop()
	}
}

// Update runs one frame: the scene pass, then the playlist, then at most one
// voice handed to a waiting sound.
func (s *System) Update(deltaMs uint32) {
	if s == nil {
		return
	}
	s.scene.OnFrameUpdate(deltaMs)
	for _, a := range s.playlist.snapshot() {
		if !a.update(deltaMs) {
			continue
		}
		a.Stop()
		a.RemoveFromScene(false)
	}
	s.voices.reprioritize(s.playlist.items)
}

func (s *System) Shutdown() {
	if s == nil {
		return
	}
	s.StopAll()
	s.scene.FlushScene()
	s.scene.releasePending()
}
