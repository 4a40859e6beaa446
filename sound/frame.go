// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"container/heap"

	"soundscene/math"
	"soundscene/math/vec"
)

// Heard is a sound found within reach of a listener.
type Heard struct {
	Sound     *AudibleSound
	Distance2 float32
	// 1 at the listener, 0 at the drop-off radius
	Priority float32
}

func runtimePriority(length, dropOff float32) float32 {
	if length <= 0 || dropOff <= 0 {
		return 1
	}
	return math.Unit(1 - length/dropOff)
}

// OnFrameUpdate runs the culling pass of one frame. Sounds leaving the
// audible set lose their voice before sounds entering it ask for one.
func (sc *Scene) OnFrameUpdate(deltaMs uint32) {
	if sc == nil {
		return
	}
	sc.frame++
	objects := sc.objects()
	sc.listener.update(objects)
	if sc.listener2 != nil {
		sc.listener2.update(objects)
	}
	sc.pullAttachments()
	for _, l := range sc.queue {
		l.update(objects)
	}
	sc.flushDirty()

	next := sc.reconcile()
	sc.applyTransitions(next)

	sc.CollectLogicalSounds(sc.queue.Len())
	sc.releasePending()
}

// reconcile merges what both listeners hear. A sound heard by both belongs
// to the closer one, the primary listener on a tie.
func (sc *Scene) reconcile() []*AudibleSound {
	sc.auxBuf = sc.auxBuf[:0]
	if sc.listener2 != nil {
		sc.auxBuf = sc.collectAudible(sc.listener2, sc.auxBuf)
	}
	sc.primaryBuf = sc.collectAudible(sc.listener, sc.primaryBuf[:0])

	next := make([]*AudibleSound, 0, len(sc.primaryBuf)+len(sc.auxBuf))
	for i := range sc.auxBuf {
		h := &sc.auxBuf[i]
		s := h.Sound
		s.heardFrame = sc.frame
		s.ear = sc.listener2
		s.runtimePriority = h.Priority
		next = append(next, s)
	}
	for i := range sc.primaryBuf {
		h := &sc.primaryBuf[i]
		s := h.Sound
		if s.heardFrame == sc.frame {
			if a := sc.auxDistance2(s); a < h.Distance2 {
				continue
			}
		} else {
			s.heardFrame = sc.frame
			next = append(next, s)
		}
		s.ear = sc.listener
		s.runtimePriority = h.Priority
	}
	return next
}

func (sc *Scene) auxDistance2(s *AudibleSound) float32 {
	for i := range sc.auxBuf {
		if sc.auxBuf[i].Sound == s {
			return sc.auxBuf[i].Distance2
		}
	}
	debugAssert(false, "sound %s heard by the secondary listener but not collected", s.name)
	return 0
}

func (sc *Scene) applyTransitions(next []*AudibleSound) {
	for _, s := range sc.lastAudible.snapshot() {
		if s.heardFrame == sc.frame {
			continue
		}
		sc.lastAudible.remove(s)
		s.runtimePriority = 0
		s.ear = nil
		s.cull(true)
	}
	// kept sounds get their voices before entering ones
	for _, s := range next {
		if sc.lastAudible.has(s) {
			s.keptFrame = sc.frame
			if s.culled {
				s.cull(false)
			}
		}
	}
	for _, s := range next {
		if s.keptFrame == sc.frame {
			continue
		}
		sc.lastAudible.add(s)
		s.cull(false)
	}
}

func (sc *Scene) collectAudible(l *Listener, buf []Heard) []Heard {
	p := l.Position()
	visit := func(s *AudibleSound) {
		d := vec.Sub(s.Position(), p)
		d2 := d.Length2()
		if d2 > s.dropOff*s.dropOff {
			return
		}
		buf = append(buf, Heard{
			Sound:     s,
			Distance2: d2,
			Priority:  runtimePriority(d.QuickLength(), s.dropOff),
		})
	}
	sc.dynamicCull.ResetCollection()
	sc.dynamicCull.CollectObjects(p)
	for _, w := range sc.dynamicCull.Collected() {
		visit(w.owner)
	}
	sc.staticCull.ResetCollection()
	sc.staticCull.CollectObjects(p)
	for _, w := range sc.staticCull.Collected() {
		visit(w.owner)
	}
	return buf
}

// CollectAudibleSounds returns every sound in the scene whose drop-off
// sphere contains the listener.
func (sc *Scene) CollectAudibleSounds(l *Listener) []Heard {
	if sc == nil || l == nil {
		return nil
	}
	sc.flushDirty()
	return sc.collectAudible(l, nil)
}

// Audible returns the sounds the last frame update found audible.
func (sc *Scene) Audible() []*AudibleSound {
	if sc == nil {
		return nil
	}
	return sc.lastAudible.snapshot()
}

// CollectLogicalSounds services up to count logical listeners, oldest
// timestamp first, and delivers the logical sounds each one hears. The
// count never exceeds the per frame budget; a negative count asks for the
// full budget. Afterwards single shot sounds every listener had a chance to
// hear leave the scene.
func (sc *Scene) CollectLogicalSounds(count int) {
	if sc == nil {
		return
	}
	sc.flushDirty()
	if sc.queue.Len() == 0 {
		for _, s := range sc.singleShot.snapshot() {
			sc.RemoveLogicalSound(s)
		}
		return
	}
	if count < 0 {
		count = sc.cfg.LogicalBudget
	}
	count = min(count, sc.cfg.LogicalBudget, sc.queue.Len())
	now := sc.sys.clock.Now()
	for range count {
		if sc.queue.Len() == 0 {
			break
		}
		sc.serviceListener(sc.queue[0], now)
	}
	for _, s := range sc.singleShot.snapshot() {
		if s.listenerTimestamp <= sc.oldestTimestamp {
			sc.RemoveLogicalSound(s)
		}
	}
}

func (sc *Scene) serviceListener(l *LogicalListener, now uint32) {
	ts := l.timestamp
	sc.SetOldestTimestamp(ts)
	l.timestamp = sc.GetNewTimestamp()
	heap.Fix(&sc.queue, l.heapIndex)

	sc.logicalCull.ResetCollection()
	sc.logicalCull.CollectObjects(l.position)
	// callbacks may add or remove sounds
	sc.heardBuf = append(sc.heardBuf[:0], sc.logicalCull.Collected()...)
	scale := l.EffectiveScale()
	for _, w := range sc.heardBuf {
		if l.wrapper == nil {
			break
		}
		s := w.owner
		if s == nil || s.wrapper != w || !l.hears(s) {
			continue
		}
		if s.singleShot && ts > s.listenerTimestamp {
			continue
		}
		r := s.dropOff * scale
		if vec.Distance2(l.position, s.position) > r*r {
			continue
		}
		if !s.AllowNotify(now) {
			continue
		}
		if l.onHeard != nil {
			l.onHeard(l, s)
		}
	}
	clear(sc.heardBuf)
}

// ListenersInRange returns the logical listeners that would hear s now,
// ignoring its notify delay.
func (sc *Scene) ListenersInRange(s *LogicalSound) []*LogicalListener {
	if sc == nil || s == nil {
		return nil
	}
	sc.flushDirty()
	sc.listenerCull.ResetCollection()
	sc.listenerCull.CollectBox(sc.logicalBox(s))
	var r []*LogicalListener
	for _, w := range sc.listenerCull.Collected() {
		l := w.owner
		if !l.hears(s) {
			continue
		}
		d := s.dropOff * l.EffectiveScale()
		if vec.Distance2(l.position, s.position) <= d*d {
			r = append(r, l)
		}
	}
	return r
}
