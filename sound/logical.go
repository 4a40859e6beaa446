// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"soundscene/math/vec"
	"soundscene/render"
)

// LogicalSound is an inaudible event gameplay code can "hear" through
// logical listeners, e.g. AI reacting to gunfire.
type LogicalSound struct {
	id          uint64
	sys         *System
	position    vec.Vec3
	dropOff     float32
	typeMask    uint32
	singleShot  bool
	notifyDelay uint32
	lastNotify  uint32
	notified    bool
	// newest listener timestamp when the sound entered the scene
	listenerTimestamp uint32
	wrapper           *wrapper[*LogicalSound]
	dirty             bool
	userData          any
}

func (s *LogicalSound) ID() uint64 {
	return s.id
}

func (s *LogicalSound) Transform() vec.Transform {
	return vec.Translation(s.position)
}

func (s *LogicalSound) SetTransform(t vec.Transform) {
	s.SetPosition(t.Origin)
}

func (s *LogicalSound) Position() vec.Vec3 {
	return s.position
}

func (s *LogicalSound) SetPosition(p vec.Vec3) {
	s.position = p
	s.markDirty()
}

func (s *LogicalSound) DropOffRadius() float32 {
	return s.dropOff
}

func (s *LogicalSound) SetDropOffRadius(r float32) {
	s.dropOff = max(r, 0)
	s.markDirty()
}

// IsCulled is always true, logical sounds never play.
func (s *LogicalSound) IsCulled() bool {
	return true
}

func (s *LogicalSound) TypeMask() uint32 {
	return s.typeMask
}

func (s *LogicalSound) SetTypeMask(m uint32) {
	s.typeMask = m
}

func (s *LogicalSound) IsSingleShot() bool {
	return s.singleShot
}

// SetSingleShot must be called before the sound is added to the scene.
func (s *LogicalSound) SetSingleShot(b bool) {
	s.singleShot = b
}

// SetNotifyDelay sets the minimum time in milliseconds between two
// notifications of a continuous sound.
func (s *LogicalSound) SetNotifyDelay(ms uint32) {
	s.notifyDelay = ms
}

func (s *LogicalSound) NotifyDelay() uint32 {
	return s.notifyDelay
}

func (s *LogicalSound) ListenerTimestamp() uint32 {
	return s.listenerTimestamp
}

func (s *LogicalSound) UserData() any {
	return s.userData
}

func (s *LogicalSound) SetUserData(d any) {
	s.userData = d
}

// AllowNotify reports whether the sound may notify a listener at time now
// and records the notification. Single shot sounds always may.
func (s *LogicalSound) AllowNotify(now uint32) bool {
	if s.singleShot {
		return true
	}
	if s.notified && now-s.lastNotify < s.notifyDelay {
		return false
	}
	s.notified = true
	s.lastNotify = now
	return true
}

func (s *LogicalSound) InScene() bool {
	return s.wrapper != nil
}

func (s *LogicalSound) AddToScene(bool) {
	if s == nil || s.sys == nil {
		return
	}
	s.sys.scene.AddLogicalSound(s)
}

func (s *LogicalSound) RemoveFromScene(bool) {
	if s == nil || s.sys == nil {
		return
	}
	s.sys.scene.RemoveLogicalSound(s)
}

func (s *LogicalSound) markDirty() {
	if s.wrapper == nil || s.dirty {
		return
	}
	s.dirty = true
	s.sys.scene.dirtyLogical = append(s.sys.scene.dirtyLogical, s)
}

// HeardFunc is called when a logical listener hears a logical sound.
type HeardFunc func(l *LogicalListener, s *LogicalSound)

// LogicalListener receives notifications for logical sounds within reach.
// Its reach is the sound's drop-off radius times the effective scale.
type LogicalListener struct {
	id        uint64
	position  vec.Vec3
	scale     float32
	typeMask  uint32
	timestamp uint32
	onHeard   HeardFunc
	attach    render.Handle
	bone      string
	scene     *Scene
	wrapper   *wrapper[*LogicalListener]
	heapIndex int
	dirty     bool
	userData  any
}

func NewLogicalListener(onHeard HeardFunc) *LogicalListener {
	return &LogicalListener{
		scale:     1,
		typeMask:  ^uint32(0),
		onHeard:   onHeard,
		heapIndex: -1,
	}
}

func (l *LogicalListener) Transform() vec.Transform {
	return vec.Translation(l.position)
}

func (l *LogicalListener) SetTransform(t vec.Transform) {
	l.SetPosition(t.Origin)
}

func (l *LogicalListener) Position() vec.Vec3 {
	return l.position
}

func (l *LogicalListener) SetPosition(p vec.Vec3) {
	l.position = p
	if l.wrapper != nil && !l.dirty {
		l.dirty = true
		l.scene.dirtyListeners = append(l.scene.dirtyListeners, l)
	}
}

func (l *LogicalListener) Scale() float32 {
	return l.scale
}

// SetScale sets the per listener hearing multiplier.
func (l *LogicalListener) SetScale(s float32) {
	l.scale = max(s, 0)
	if l.scene != nil {
		l.scene.growLogicalReach(l.scale)
	}
}

// EffectiveScale is the listener scale times the global logical scale.
func (l *LogicalListener) EffectiveScale() float32 {
	if l.scene == nil {
		return l.scale
	}
	return l.scale * l.scene.globalScale
}

func (l *LogicalListener) TypeMask() uint32 {
	return l.typeMask
}

func (l *LogicalListener) SetTypeMask(m uint32) {
	l.typeMask = m
}

func (l *LogicalListener) Timestamp() uint32 {
	return l.timestamp
}

func (l *LogicalListener) SetOnHeard(f HeardFunc) {
	l.onHeard = f
}

func (l *LogicalListener) UserData() any {
	return l.userData
}

func (l *LogicalListener) SetUserData(d any) {
	l.userData = d
}

func (l *LogicalListener) AttachToObject(h render.Handle, bone string) {
	l.attach = h
	l.bone = bone
}

func (l *LogicalListener) InScene() bool {
	return l.wrapper != nil
}

// update refreshes the position from the attached object.
func (l *LogicalListener) update(objects *render.Table) {
	if l.attach.IsZero() {
		return
	}
	t, ok := objects.Transform(l.attach, l.bone)
	if !ok {
		l.attach = render.Handle{}
		l.bone = ""
		return
	}
	l.SetPosition(t.Origin)
}

func (l *LogicalListener) hears(s *LogicalSound) bool {
	return l.typeMask&s.typeMask != 0
}

// listenerQueue orders logical listeners oldest timestamp first.
type listenerQueue []*LogicalListener

func (q listenerQueue) Len() int { return len(q) }

func (q listenerQueue) Less(i, j int) bool {
	return q[i].timestamp < q[j].timestamp
}

func (q listenerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIndex = i
	q[j].heapIndex = j
}

func (q *listenerQueue) Push(x any) {
	l := x.(*LogicalListener)
	l.heapIndex = len(*q)
	*q = append(*q, l)
}

func (q *listenerQueue) Pop() any {
	old := *q
	n := len(old)
	l := old[n-1]
	old[n-1] = nil
	l.heapIndex = -1
	*q = old[:n-1]
	return l
}
