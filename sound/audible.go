// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"time"

	"soundscene/conlog"
	"soundscene/device"
	"soundscene/math"
	"soundscene/math/vec"
	"soundscene/render"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

type Category int

const (
	SoundEffect Category = iota
	Music
	categoryCount
)

type Event int

const (
	EventStarted Event = iota
	EventEnded
)

func (e Event) String() string {
	if e == EventStarted {
		return "started"
	}
	return "ended"
}

type EventFunc func(s *AudibleSound, e Event)

// AudibleSound is a positioned sound that plays through a device voice.
// It can be logically playing without a voice, in which case it advances
// silently and picks up where it should be once it gets one.
type AudibleSound struct {
	id     uint64
	sys    *System
	name   string
	buffer device.Buffer
	voice  device.Voice

	transform    vec.Transform
	velocity     vec.Vec3
	autoVelocity bool
	moved        bool
	movedAt      uint32

	dropOff         float32
	maxVol          float32
	priority        float32
	runtimePriority float32
	isStatic        bool
	culled          bool

	state     State
	startedAt uint32
	loops     int // 0 loops forever
	loopsDone int
	position  time.Duration
	volume    float32
	category  Category

	// listener the sound was last heard by
	ear        *Listener
	wrapper    *wrapper[*AudibleSound]
	dirty      bool
	heardFrame uint32
	keptFrame  uint32

	attach   render.Handle
	bone     string
	logical  *LogicalSound
	onEvent  EventFunc
	userData any
}

func (s *AudibleSound) ID() uint64 {
	return s.id
}

func (s *AudibleSound) Name() string {
	return s.name
}

func (s *AudibleSound) Buffer() device.Buffer {
	return s.buffer
}

func (s *AudibleSound) Transform() vec.Transform {
	return s.transform
}

// SetTransform moves the sound. Unless disabled the velocity is derived
// from the distance moved since the last call.
func (s *AudibleSound) SetTransform(t vec.Transform) {
	if s.autoVelocity && s.sys != nil {
		now := s.sys.clock.Now()
		if s.moved && now > s.movedAt {
			dt := float32(now-s.movedAt) / 1000
			s.velocity = vec.Sub(t.Origin, s.transform.Origin).Scale(1 / dt)
		}
		s.moved = true
		s.movedAt = now
	}
	s.transform = t
	s.markDirty()
	if s.logical != nil {
		s.logical.SetPosition(t.Origin)
	}
}

func (s *AudibleSound) Position() vec.Vec3 {
	return s.transform.Origin
}

func (s *AudibleSound) SetPosition(p vec.Vec3) {
	t := s.transform
	t.Origin = p
	s.SetTransform(t)
}

func (s *AudibleSound) Velocity() vec.Vec3 {
	return s.velocity
}

// SetVelocity sets an explicit velocity, it is overwritten by the next move
// while auto velocity is on.
func (s *AudibleSound) SetVelocity(v vec.Vec3) {
	s.velocity = v
}

func (s *AudibleSound) SetAutoVelocity(b bool) {
	s.autoVelocity = b
	s.moved = false
}

func (s *AudibleSound) AutoVelocity() bool {
	return s.autoVelocity
}

func (s *AudibleSound) DropOffRadius() float32 {
	return s.dropOff
}

func (s *AudibleSound) SetDropOffRadius(r float32) {
	s.dropOff = max(r, 0)
	if s.voice != nil {
		s.voice.SetDistances(s.maxVol, s.dropOff)
	}
	s.markDirty()
}

func (s *AudibleSound) MaxVolRadius() float32 {
	return s.maxVol
}

func (s *AudibleSound) SetMaxVolRadius(r float32) {
	s.maxVol = max(r, 0)
	if s.voice != nil {
		s.voice.SetDistances(s.maxVol, s.dropOff)
	}
}

// Priority is the designer priority in [0,1]. It ranks before the runtime
// priority when voices are handed out.
func (s *AudibleSound) Priority() float32 {
	return s.priority
}

func (s *AudibleSound) SetPriority(p float32) {
	s.priority = math.Unit(p)
}

// RuntimePriority is 1 at the listener, falls to 0 at the drop-off radius
// and is exactly 0 while culled by distance.
func (s *AudibleSound) RuntimePriority() float32 {
	return s.runtimePriority
}

func (s *AudibleSound) IsStatic() bool {
	return s.isStatic
}

// SetStatic selects the culling system. It has no effect while the sound
// is in the scene.
func (s *AudibleSound) SetStatic(b bool) {
	if s.wrapper != nil {
		return
	}
	s.isStatic = b
}

func (s *AudibleSound) IsCulled() bool {
	return s.culled
}

func (s *AudibleSound) State() State {
	return s.state
}

func (s *AudibleSound) IsPlaying() bool {
	return s.state == Playing
}

// HasVoice reports whether the sound currently owns a device voice.
func (s *AudibleSound) HasVoice() bool {
	return s.voice != nil
}

func (s *AudibleSound) Volume() float32 {
	return s.volume
}

func (s *AudibleSound) SetVolume(v float32) {
	s.volume = math.Unit(v)
	s.applyVolume()
}

func (s *AudibleSound) Category() Category {
	return s.category
}

func (s *AudibleSound) SetCategory(c Category) {
	if c < 0 || c >= categoryCount {
		return
	}
	s.category = c
	s.applyVolume()
}

func (s *AudibleSound) effectiveVolume() float32 {
	if s.sys == nil {
		return s.volume
	}
	return s.volume * s.sys.volumes[s.category]
}

func (s *AudibleSound) applyVolume() {
	if s.voice != nil {
		s.voice.SetVolume(s.effectiveVolume())
	}
}

func (s *AudibleSound) LoopCount() int {
	return s.loops
}

// SetLoopCount sets how often the sound plays, 0 loops forever.
func (s *AudibleSound) SetLoopCount(n int) {
	s.loops = max(n, 0)
	if s.voice != nil {
		s.voice.SetLoopCount(s.loopsLeft())
	}
}

func (s *AudibleSound) loopsLeft() int {
	if s.loops == 0 {
		return 0
	}
	return max(s.loops-s.loopsDone, 1)
}

func (s *AudibleSound) Duration() time.Duration {
	if s.buffer == nil {
		return 0
	}
	return s.buffer.Duration()
}

// PlayPosition is the position inside the current loop.
func (s *AudibleSound) PlayPosition() time.Duration {
	if s.voice != nil {
		return s.voice.Position()
	}
	return s.position
}

func (s *AudibleSound) Seek(pos time.Duration) {
	pos = math.Clamp(0, pos, s.Duration())
	s.position = pos
	if s.state == Playing {
		s.stamp()
	}
	if s.voice != nil {
		if err := s.voice.Seek(pos); err != nil {
			conlog.Printf("sound: %s: %v\n", s.name, err)
		}
	}
}

// StartedAt is the tick at which the current pass through the buffer
// began, taking seeks into account. It is 0 while stopped.
func (s *AudibleSound) StartedAt() uint32 {
	return s.startedAt
}

func (s *AudibleSound) stamp() {
	if s.sys == nil {
		return
	}
	s.startedAt = s.sys.clock.Now() - uint32(s.position.Milliseconds())
}

func (s *AudibleSound) OnEvent(f EventFunc) {
	s.onEvent = f
}

func (s *AudibleSound) fire(e Event) {
	if s.onEvent != nil {
		s.onEvent(s, e)
	}
}

func (s *AudibleSound) UserData() any {
	return s.userData
}

func (s *AudibleSound) SetUserData(d any) {
	s.userData = d
}

// AttachToObject makes the sound pull the pose of a render object (or of
// one of its bones) every frame.
func (s *AudibleSound) AttachToObject(h render.Handle, bone string) {
	s.attach = h
	s.bone = bone
}

func (s *AudibleSound) Detach() {
	s.attach = render.Handle{}
	s.bone = ""
}

func (s *AudibleSound) Attachment() (render.Handle, string) {
	return s.attach, s.bone
}

func (s *AudibleSound) pullAttachment(objects *render.Table) {
	if s.attach.IsZero() {
		return
	}
	t, ok := objects.Transform(s.attach, s.bone)
	if !ok {
		s.Detach()
		return
	}
	s.SetTransform(t)
}

// SetLogicalSound gives the sound a companion logical sound. It enters the
// scene when the sound starts playing, follows it, and leaves when it stops
// unless it is single shot.
func (s *AudibleSound) SetLogicalSound(l *LogicalSound) {
	if s.logical != nil && s.logical != l && s.state != Stopped {
		s.logical.RemoveFromScene(false)
	}
	s.logical = l
	if l != nil {
		l.SetPosition(s.Position())
		if s.state != Stopped {
			l.AddToScene(false)
		}
	}
}

func (s *AudibleSound) LogicalSound() *LogicalSound {
	return s.logical
}

func (s *AudibleSound) InScene() bool {
	return s.wrapper != nil
}

func (s *AudibleSound) AddToScene(startPlaying bool) {
	if s.sys == nil {
		return
	}
	s.sys.scene.AddSound(s, startPlaying)
}

func (s *AudibleSound) RemoveFromScene(stopPlaying bool) {
	if s.sys == nil {
		return
	}
	s.sys.scene.RemoveSound(s, stopPlaying)
}

func (s *AudibleSound) markDirty() {
	if s.wrapper == nil || s.dirty {
		return
	}
	s.dirty = true
	s.sys.scene.dirtyAudible = append(s.sys.scene.dirtyAudible, s)
}

func (s *AudibleSound) cullBox() vec.Box {
	return vec.BoxAround(s.Position(), s.dropOff)
}

// Play starts the sound. With allocVoice a device voice is requested right
// away, provided the sound is not culled; otherwise the frame update hands
// one out later.
func (s *AudibleSound) Play(allocVoice bool) {
	if s.sys == nil {
		return
	}
	switch s.state {
	case Playing:
		return
	case Paused:
		s.Resume()
		return
	}
	s.state = Playing
	s.loopsDone = 0
	s.stamp()
	s.sys.playlist.add(s)
	if allocVoice && !s.culled {
		s.acquireVoice()
	}
	if s.logical != nil {
		s.logical.SetPosition(s.Position())
		s.logical.AddToScene(false)
	}
	s.fire(EventStarted)
}

func (s *AudibleSound) Stop() {
	if s.state == Stopped {
		return
	}
	s.state = Stopped
	s.freeVoice()
	s.position = 0
	s.startedAt = 0
	s.loopsDone = 0
	if s.sys != nil {
		s.sys.playlist.remove(s)
	}
	if s.logical != nil && !s.logical.IsSingleShot() {
		s.logical.RemoveFromScene(false)
	}
	s.fire(EventEnded)
}

func (s *AudibleSound) Pause() {
	if s.state != Playing {
		return
	}
	s.state = Paused
	if s.voice != nil {
		s.voice.Pause()
	}
}

func (s *AudibleSound) Resume() {
	if s.state != Paused {
		return
	}
	s.state = Playing
	if s.voice != nil {
		s.voice.Resume()
	}
}

// cull mutes the sound by giving up its voice, or asks for one again.
func (s *AudibleSound) cull(culled bool) {
	s.culled = culled
	if culled {
		s.freeVoice()
		return
	}
	if s.state != Stopped {
		s.acquireVoice()
	}
}

func (s *AudibleSound) acquireVoice() {
	if s.voice != nil || s.buffer == nil || s.sys == nil {
		return
	}
	v := s.sys.voices.acquire(s)
	if v == nil {
		return
	}
	s.voice = v
	v.SetDistances(s.maxVol, s.dropOff)
	v.SetVolume(s.effectiveVolume())
	v.SetLoopCount(s.loopsLeft())
	if s.position > 0 {
		if err := v.Seek(s.position); err != nil {
			conlog.Printf("sound: %s: %v\n", s.name, err)
		}
	}
	v.Update3D(s.spatial())
	if err := v.Start(); err != nil {
		conlog.Printf("sound: %s: %v\n", s.name, err)
		s.freeVoice()
		return
	}
	if s.state == Paused {
		v.Pause()
	}
}

func (s *AudibleSound) freeVoice() {
	if s.voice == nil {
		return
	}
	s.position = s.voice.Position()
	s.voice.Stop()
	s.sys.voices.release(s)
	s.voice = nil
}

func (s *AudibleSound) listener() *Listener {
	if s.ear != nil {
		return s.ear
	}
	if s.sys != nil {
		return s.sys.scene.listener
	}
	return nil
}

func (s *AudibleSound) spatial() device.Spatial {
	sp := device.Spatial{
		Position: s.Position(),
		Velocity: s.velocity,
		Listener: vec.Identity(),
	}
	if l := s.listener(); l != nil {
		sp.Listener = l.Transform()
	}
	return sp
}

// update advances a playing sound by one frame. It returns true once the
// sound ran out.
func (s *AudibleSound) update(deltaMs uint32) bool {
	if s.state != Playing {
		return false
	}
	if s.voice != nil {
		pos := s.voice.Position()
		if !s.voice.Playing() {
			return true
		}
		if pos < s.position && s.loops != 1 {
			s.loopsDone++
		}
		s.position = pos
		s.stamp()
		s.voice.Update3D(s.spatial())
		return false
	}

	d := s.Duration()
	if d <= 0 {
		return true
	}
	s.position += time.Duration(deltaMs) * time.Millisecond
	for s.position >= d {
		if s.loops != 0 && s.loopsDone+1 >= s.loops {
			return true
		}
		s.loopsDone++
		s.position -= d
	}
	s.stamp()
	return false
}
