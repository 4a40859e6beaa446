// SPDX-License-Identifier: GPL-2.0-or-later

package beepdev

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/pkg/errors"

	"soundscene/device"
)

// looper plays the source loops times, 0 is forever. A killed looper
// reports the end of its stream so the mixer drops it.
type looper struct {
	src   beep.StreamSeeker
	loops int
	done  atomic.Bool
}

func (l *looper) Stream(samples [][2]float64) (int, bool) {
	if l.done.Load() {
		return 0, false
	}
	filled := 0
	for filled < len(samples) {
		n, ok := l.src.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if l.loops == 1 {
			l.done.Store(true)
			break
		}
		if l.loops > 1 {
			l.loops--
		}
		if err := l.src.Seek(0); err != nil || l.src.Len() == 0 {
			l.done.Store(true)
			break
		}
	}
	return filled, filled > 0
}

func (l *looper) Err() error {
	return l.src.Err()
}

// Voice is one playing buffer. The streamer chain is
// looper -> beep.Ctrl (pause) -> effects.Volume -> effects.Pan -> mixer.
type Voice struct {
	id  uuid.UUID
	dev *Device
	buf *Buffer
	src beep.StreamSeeker

	cur    *looper
	ctrl   *beep.Ctrl
	volume *effects.Volume
	pan    *effects.Pan

	loops   int
	base    float32
	gain    float32
	maxVol  float32
	dropOff float32
	closed  bool
}

func newVoice(d *Device, b *Buffer) *Voice {
	v := &Voice{
		id:      uuid.Must(uuid.NewV7()),
		dev:     d,
		buf:     b,
		src:     b.buf.Streamer(0, b.buf.Len()),
		loops:   1,
		base:    1,
		gain:    1,
		dropOff: 1,
	}
	return v
}

// ID identifies the voice in logs.
func (v *Voice) ID() uuid.UUID {
	return v.id
}

func (v *Voice) Start() error {
	if v.closed {
		return errors.Errorf("beepdev: voice %v closed", v.id)
	}
	v.dev.lock()
	defer v.dev.unlock()
	if v.cur != nil && !v.cur.done.Load() {
		v.ctrl.Paused = false
		return nil
	}
	if v.src.Position() >= v.src.Len() {
		if err := v.src.Seek(0); err != nil {
			return errors.Wrapf(err, "voice %v", v.id)
		}
	}
	v.cur = &looper{src: v.src, loops: v.loops}
	v.ctrl = &beep.Ctrl{Streamer: v.cur}
	v.volume = &effects.Volume{Streamer: v.ctrl, Base: 2}
	v.pan = &effects.Pan{Streamer: v.volume}
	v.applyLocked(0)
	v.dev.mixer.Add(v.pan)
	return nil
}

func (v *Voice) Stop() {
	v.dev.lock()
	defer v.dev.unlock()
	if v.cur != nil {
		v.cur.done.Store(true)
	}
}

func (v *Voice) Pause() {
	v.dev.lock()
	defer v.dev.unlock()
	if v.ctrl != nil {
		v.ctrl.Paused = true
	}
}

func (v *Voice) Resume() {
	v.dev.lock()
	defer v.dev.unlock()
	if v.ctrl != nil {
		v.ctrl.Paused = false
	}
}

func (v *Voice) Playing() bool {
	return v.cur != nil && !v.cur.done.Load()
}

func (v *Voice) Position() time.Duration {
	v.dev.lock()
	defer v.dev.unlock()
	return v.dev.format.SampleRate.D(v.src.Position())
}

func (v *Voice) Seek(pos time.Duration) error {
	n := v.dev.format.SampleRate.N(pos)
	if n < 0 || n > v.src.Len() {
		return errors.Errorf("beepdev: seek to %v out of range", pos)
	}
	v.dev.lock()
	defer v.dev.unlock()
	return errors.Wrapf(v.src.Seek(n), "voice %v", v.id)
}

func (v *Voice) SetVolume(f float32) {
	v.dev.lock()
	defer v.dev.unlock()
	v.base = f
	v.applyLocked(v.currentPan())
}

func (v *Voice) SetLoopCount(n int) {
	v.dev.lock()
	defer v.dev.unlock()
	v.loops = n
	if v.cur != nil {
		v.cur.loops = n
	}
}

func (v *Voice) SetDistances(maxVol, dropOff float32) {
	v.maxVol = maxVol
	v.dropOff = dropOff
}

func (v *Voice) Update3D(s device.Spatial) {
	gain, pan := device.Attenuate(s, v.maxVol, v.dropOff)
	v.dev.lock()
	defer v.dev.unlock()
	v.gain = gain
	v.applyLocked(pan)
}

func (v *Voice) currentPan() float32 {
	if v.pan == nil {
		return 0
	}
	return float32(v.pan.Pan)
}

func (v *Voice) applyLocked(pan float32) {
	if v.volume == nil {
		return
	}
	g := float64(v.base * v.gain)
	v.volume.Silent = g <= 0
	if g > 0 {
		v.volume.Volume = math.Log2(g)
	}
	v.pan.Pan = float64(pan)
}

func (v *Voice) Close() {
	if v.closed {
		return
	}
	v.Stop()
	v.closed = true
	v.dev.release(v)
}
