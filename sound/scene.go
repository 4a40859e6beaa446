// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"container/heap"

	"soundscene/conlog"
	"soundscene/cull"
	"soundscene/math/vec"
	"soundscene/render"
)

// MaxLogicalListenerUpdates is the number of logical listeners serviced per
// frame by default.
const MaxLogicalListenerUpdates = 4

type Config struct {
	Min, Max     vec.Vec3
	DynamicCell  float32
	LogicalCell  float32
	ListenerCell float32
	// logical listeners serviced per frame
	LogicalBudget int
}

func DefaultConfig() Config {
	return Config{
		Min:           vec.Splat(-500),
		Max:           vec.Splat(500),
		DynamicCell:   100,
		LogicalCell:   100,
		ListenerCell:  40,
		LogicalBudget: MaxLogicalListenerUpdates,
	}
}

type (
	audibleWrapper  = wrapper[*AudibleSound]
	logicalWrapper  = wrapper[*LogicalSound]
	listenerWrapper = wrapper[*LogicalListener]
)

// Scene decides every frame which sounds the listeners can hear. It never
// owns the sounds, only their culling entries.
//
// All exported methods accept a nil *Scene and do nothing.
type Scene struct {
	sys *System
	cfg Config

	dynamicCull  *cull.Grid[*audibleWrapper]
	staticCull   *cull.Tree[*audibleWrapper]
	logicalCull  *cull.Grid[*logicalWrapper]
	listenerCull *cull.Grid[*listenerWrapper]

	static      members[*AudibleSound]
	dynamic     members[*AudibleSound]
	logical     members[*LogicalSound]
	singleShot  members[*LogicalSound]
	queue       listenerQueue
	lastAudible members[*AudibleSound]

	listener  *Listener
	listener2 *Listener
	batch     bool

	newestTimestamp uint32
	oldestTimestamp uint32
	globalScale     float32
	// largest per listener scale seen, at least 1
	logicalReach float32

	dirtyAudible   []*AudibleSound
	dirtyLogical   []*LogicalSound
	dirtyListeners []*LogicalListener
	pending        []releaser

	frame      uint32
	primaryBuf []Heard
	auxBuf     []Heard
	heardBuf   []*logicalWrapper
}

func newScene(sys *System, cfg Config) *Scene {
	d := DefaultConfig()
	if cfg.DynamicCell <= 0 {
		cfg.DynamicCell = d.DynamicCell
	}
	if cfg.LogicalCell <= 0 {
		cfg.LogicalCell = d.LogicalCell
	}
	if cfg.ListenerCell <= 0 {
		cfg.ListenerCell = d.ListenerCell
	}
	if cfg.LogicalBudget <= 0 {
		cfg.LogicalBudget = d.LogicalBudget
	}
	if vec.Equal(cfg.Min, cfg.Max) {
		cfg.Min, cfg.Max = d.Min, d.Max
	}
	cfg.Min, cfg.Max = vec.MinMax(cfg.Min, cfg.Max)
	return &Scene{
		sys:          sys,
		cfg:          cfg,
		dynamicCull:  cull.NewGrid[*audibleWrapper](cfg.Min, cfg.Max, cfg.DynamicCell),
		staticCull:   cull.NewTree[*audibleWrapper](),
		logicalCull:  cull.NewGrid[*logicalWrapper](cfg.Min, cfg.Max, cfg.LogicalCell),
		listenerCull: cull.NewGrid[*listenerWrapper](cfg.Min, cfg.Max, cfg.ListenerCell),
		listener:     NewListener(),
		globalScale:  1,
		logicalReach: 1,
	}
}

func (sc *Scene) objects() *render.Table {
	return sc.sys.objects
}

// Listener returns the primary listener, it always exists.
func (sc *Scene) Listener() *Listener {
	if sc == nil {
		return nil
	}
	return sc.listener
}

func (sc *Scene) Listener2() *Listener {
	if sc == nil {
		return nil
	}
	return sc.listener2
}

// Set2ndListener installs the secondary listener for split screen, nil
// removes it. The scene keeps it until it is replaced.
func (sc *Scene) Set2ndListener(l *Listener) {
	if sc == nil || l == sc.listener {
		return
	}
	old := sc.listener2
	sc.listener2 = l
	if old == nil || old == l {
		return
	}
	for _, s := range sc.lastAudible.items {
		if s.ear == old {
			s.ear = sc.listener
		}
	}
}

func (sc *Scene) SetBatchMode(b bool) {
	if sc == nil {
		return
	}
	sc.batch = b
}

func (sc *Scene) IsBatchMode() bool {
	return sc != nil && sc.batch
}

func (sc *Scene) Extents() (min, max vec.Vec3) {
	if sc == nil {
		return vec.Vec3{}, vec.Vec3{}
	}
	return sc.cfg.Min, sc.cfg.Max
}

func (sc *Scene) Config() Config {
	if sc == nil {
		return Config{}
	}
	return sc.cfg
}

// RePartition rebuilds the grids over new extents. Every member stays.
func (sc *Scene) RePartition(min, max vec.Vec3) {
	if sc == nil {
		return
	}
	sc.flushDirty()
	sc.cfg.Min, sc.cfg.Max = vec.MinMax(min, max)
	sc.dynamicCull.RePartition(sc.cfg.Min, sc.cfg.Max, sc.cfg.DynamicCell)
	sc.staticCull.RePartition(sc.cfg.Min, sc.cfg.Max, 0)
	sc.logicalCull.RePartition(sc.cfg.Min, sc.cfg.Max, sc.cfg.LogicalCell)
	sc.listenerCull.RePartition(sc.cfg.Min, sc.cfg.Max, sc.cfg.ListenerCell)
	conlog.DPrintf("sound: scene repartitioned to %v %v\n", sc.cfg.Min, sc.cfg.Max)
}

// SetCellSizes changes the grid cell sizes, values <= 0 keep the current
// size.
func (sc *Scene) SetCellSizes(dynamic, logical, listener float32) {
	if sc == nil {
		return
	}
	if dynamic > 0 {
		sc.cfg.DynamicCell = dynamic
	}
	if logical > 0 {
		sc.cfg.LogicalCell = logical
	}
	if listener > 0 {
		sc.cfg.ListenerCell = listener
	}
	sc.RePartition(sc.cfg.Min, sc.cfg.Max)
}

// SetLogicalBudget sets how many logical listeners are serviced per frame.
func (sc *Scene) SetLogicalBudget(n int) {
	if sc == nil || n <= 0 {
		return
	}
	sc.cfg.LogicalBudget = n
}

// Initialize puts the listeners back into their initial state and rebuilds
// the culling systems.
func (sc *Scene) Initialize() {
	if sc == nil {
		return
	}
	sc.Set2ndListener(nil)
	sc.listener.Detach()
	sc.listener.SetTransform(vec.Identity())
	sc.listener.SetVelocity(vec.Vec3{})
	sc.RePartition(sc.cfg.Min, sc.cfg.Max)
}

func (sc *Scene) GlobalScale() float32 {
	if sc == nil {
		return 0
	}
	return sc.globalScale
}

// SetGlobalScale sets the hearing multiplier shared by all logical
// listeners.
func (sc *Scene) SetGlobalScale(s float32) {
	if sc == nil || s < 0 || s == sc.globalScale {
		return
	}
	sc.globalScale = s
	sc.refreshLogicalBoxes()
}

func (sc *Scene) growLogicalReach(scale float32) {
	if scale <= sc.logicalReach {
		return
	}
	sc.logicalReach = scale
	sc.refreshLogicalBoxes()
}

func (sc *Scene) refreshLogicalBoxes() {
	for _, s := range sc.logical.items {
		s.markDirty()
	}
	for _, s := range sc.singleShot.items {
		s.markDirty()
	}
}

// logicalBox covers the sphere every listener could hear s in.
func (sc *Scene) logicalBox(s *LogicalSound) vec.Box {
	return vec.BoxAround(s.position, s.dropOff*sc.globalScale*sc.logicalReach)
}

// GetNewTimestamp returns the next logical listener timestamp.
func (sc *Scene) GetNewTimestamp() uint32 {
	if sc == nil {
		return 0
	}
	sc.newestTimestamp++
	return sc.newestTimestamp
}

func (sc *Scene) NewestTimestamp() uint32 {
	if sc == nil {
		return 0
	}
	return sc.newestTimestamp
}

func (sc *Scene) OldestTimestamp() uint32 {
	if sc == nil {
		return 0
	}
	return sc.oldestTimestamp
}

// SetOldestTimestamp advances the watermark, it never moves back.
func (sc *Scene) SetOldestTimestamp(ts uint32) {
	if sc == nil || ts <= sc.oldestTimestamp {
		return
	}
	sc.oldestTimestamp = ts
}

// AddSound registers s with the culling system matching its static flag.
// Outside of batch mode a sound within reach of the primary listener starts
// out audible; every other sound starts out culled.
func (sc *Scene) AddSound(s *AudibleSound, startPlaying bool) {
	if sc == nil || s == nil || s.wrapper != nil {
		return
	}
	w := newWrapper(s, s.cullBox())
	s.wrapper = w
	s.dirty = false
	if s.isStatic {
		sc.staticCull.AddObject(w)
		sc.static.add(s)
	} else {
		sc.dynamicCull.AddObject(w)
		sc.dynamic.add(s)
	}

	audible := false
	if !sc.batch {
		r := s.dropOff
		audible = vec.Distance2(sc.listener.Position(), s.Position()) <= r*r
	}
	if audible {
		s.ear = sc.listener
		sc.lastAudible.add(s)
	} else {
		s.runtimePriority = 0
	}
	s.cull(!audible)
	if startPlaying {
		s.Play(true)
	}
}

// RemoveSound unregisters s. Its culling entry is released at the end of
// the frame.
func (sc *Scene) RemoveSound(s *AudibleSound, stopPlaying bool) {
	if sc == nil || s == nil {
		return
	}
	sc.lastAudible.remove(s)
	w := s.wrapper
	if w == nil {
		return
	}
	if stopPlaying {
		s.Stop()
	}
	s.wrapper = nil
	s.dirty = false
	if s.isStatic {
		sc.staticCull.RemoveObject(w)
		sc.static.remove(s)
	} else {
		sc.dynamicCull.RemoveObject(w)
		sc.dynamic.remove(s)
	}
	sc.pending = append(sc.pending, w)
}

func (sc *Scene) IsSoundInScene(s *AudibleSound) bool {
	if sc == nil || s == nil {
		return false
	}
	return sc.static.has(s) || sc.dynamic.has(s)
}

func (sc *Scene) AddLogicalSound(s *LogicalSound) {
	if sc == nil || s == nil || s.wrapper != nil {
		return
	}
	w := newWrapper(s, sc.logicalBox(s))
	s.wrapper = w
	s.dirty = false
	sc.logicalCull.AddObject(w)
	if s.singleShot {
		s.listenerTimestamp = sc.newestTimestamp
		sc.singleShot.add(s)
	} else {
		sc.logical.add(s)
	}
}

func (sc *Scene) RemoveLogicalSound(s *LogicalSound) {
	if sc == nil || s == nil || s.wrapper == nil {
		return
	}
	w := s.wrapper
	s.wrapper = nil
	s.dirty = false
	sc.logicalCull.RemoveObject(w)
	sc.logical.remove(s)
	sc.singleShot.remove(s)
	sc.pending = append(sc.pending, w)
}

func (sc *Scene) IsLogicalSoundInScene(s *LogicalSound) bool {
	if sc == nil || s == nil {
		return false
	}
	return sc.logical.has(s) || sc.singleShot.has(s)
}

// AddLogicalListener registers l. It gets a fresh timestamp so it is
// serviced after every listener already waiting.
func (sc *Scene) AddLogicalListener(l *LogicalListener) {
	if sc == nil || l == nil || l.wrapper != nil {
		return
	}
	l.scene = sc
	l.timestamp = sc.GetNewTimestamp()
	w := newWrapper(l, vec.BoxAround(l.position, 0))
	l.wrapper = w
	l.dirty = false
	sc.listenerCull.AddObject(w)
	heap.Push(&sc.queue, l)
	sc.growLogicalReach(l.scale)
}

func (sc *Scene) RemoveLogicalListener(l *LogicalListener) {
	if sc == nil || l == nil || l.wrapper == nil || l.scene != sc {
		return
	}
	w := l.wrapper
	l.wrapper = nil
	l.dirty = false
	sc.listenerCull.RemoveObject(w)
	if l.heapIndex >= 0 {
		heap.Remove(&sc.queue, l.heapIndex)
	}
	sc.pending = append(sc.pending, w)
}

func (sc *Scene) LogicalListeners() int {
	if sc == nil {
		return 0
	}
	return sc.queue.Len()
}

// FlushScene removes every sound, stopping the audible ones. Listeners
// stay.
func (sc *Scene) FlushScene() {
	if sc == nil {
		return
	}
	for _, s := range sc.static.snapshot() {
		sc.RemoveSound(s, true)
	}
	for _, s := range sc.dynamic.snapshot() {
		sc.RemoveSound(s, true)
	}
	for _, s := range sc.logical.snapshot() {
		sc.RemoveLogicalSound(s)
	}
	for _, s := range sc.singleShot.snapshot() {
		sc.RemoveLogicalSound(s)
	}
	sc.lastAudible = members[*AudibleSound]{}
}

func (sc *Scene) flushDirty() {
	for _, s := range sc.dirtyAudible {
		s.dirty = false
		if s.wrapper == nil {
			continue
		}
		s.wrapper.box = s.cullBox()
		if s.isStatic {
			sc.staticCull.UpdateCulling(s.wrapper)
		} else {
			sc.dynamicCull.UpdateCulling(s.wrapper)
		}
	}
	clear(sc.dirtyAudible)
	sc.dirtyAudible = sc.dirtyAudible[:0]

	for _, s := range sc.dirtyLogical {
		s.dirty = false
		if s.wrapper == nil {
			continue
		}
		s.wrapper.box = sc.logicalBox(s)
		sc.logicalCull.UpdateCulling(s.wrapper)
	}
	clear(sc.dirtyLogical)
	sc.dirtyLogical = sc.dirtyLogical[:0]
	sc.flushDirtyListeners()
}

func (sc *Scene) flushDirtyListeners() {
	for _, l := range sc.dirtyListeners {
		l.dirty = false
		if l.wrapper == nil {
			continue
		}
		l.wrapper.box = vec.BoxAround(l.position, 0)
		sc.listenerCull.UpdateCulling(l.wrapper)
	}
	clear(sc.dirtyListeners)
	sc.dirtyListeners = sc.dirtyListeners[:0]
}

func (sc *Scene) pullAttachments() {
	objects := sc.objects()
	for _, s := range sc.dynamic.items {
		s.pullAttachment(objects)
	}
	for _, s := range sc.static.items {
		s.pullAttachment(objects)
	}
}

// releasePending frees the culling entries of removed objects. No
// collection may be walked past this point.
func (sc *Scene) releasePending() {
	for _, w := range sc.pending {
		w.release()
	}
	clear(sc.pending)
	sc.pending = sc.pending[:0]
}

type Stats struct {
	Static           int
	Dynamic          int
	Logical          int
	SingleShot       int
	LogicalListeners int
	Audible          int
	Playing          int
	Voices           int
	VoiceLimit       int
	VoiceSteals      int
	PendingRelease   int
}

func (sc *Scene) Stats() Stats {
	if sc == nil {
		return Stats{}
	}
	return Stats{
		Static:           sc.static.len(),
		Dynamic:          sc.dynamic.len(),
		Logical:          sc.logical.len(),
		SingleShot:       sc.singleShot.len(),
		LogicalListeners: sc.queue.Len(),
		Audible:          sc.lastAudible.len(),
		Playing:          sc.sys.playlist.len(),
		Voices:           sc.sys.voices.InUse(),
		VoiceLimit:       sc.sys.voices.Limit(),
		VoiceSteals:      sc.sys.voices.Steals(),
		PendingRelease:   len(sc.pending),
	}
}
