// SPDX-License-Identifier: GPL-2.0-or-later

// Package nulldev is a silent device. It plays nothing but keeps the state
// a real device would have, which makes it useful with -nosound and in
// tests.
package nulldev

import (
	"time"

	"github.com/pkg/errors"

	"soundscene/device"
)

type Device struct {
	voices int
	open   []*Voice
	// Opened counts every successful Open.
	Opened int
}

func New(voices int) *Device {
	return &Device{voices: voices}
}

func (d *Device) Voices() int {
	return d.voices
}

func (d *Device) Open(b device.Buffer) (device.Voice, error) {
	if b == nil {
		return nil, errors.New("nulldev: nil buffer")
	}
	if len(d.open) >= d.voices {
		return nil, device.ErrNoVoice
	}
	v := &Voice{dev: d, Buffer: b, Volume: 1, Loops: 1}
	d.open = append(d.open, v)
	d.Opened++
	return v, nil
}

// Active returns the voices that are open.
func (d *Device) Active() []*Voice {
	return d.open
}

// Playing returns the open voices that are playing.
func (d *Device) Playing() []*Voice {
	var r []*Voice
	for _, v := range d.open {
		if v.Playing() {
			r = append(r, v)
		}
	}
	return r
}

func (d *Device) release(v *Voice) {
	for i, o := range d.open {
		if o == v {
			d.open = append(d.open[:i], d.open[i+1:]...)
			return
		}
	}
}

// Voice records every command it receives.
type Voice struct {
	dev     *Device
	Buffer  device.Buffer
	playing bool
	Paused  bool
	Closed  bool
	Starts  int
	pos     time.Duration

	Volume  float32
	Loops   int
	MaxVol  float32
	DropOff float32
	Spatial device.Spatial
	Gain    float32
	Pan     float32
}

func (v *Voice) Start() error {
	if v.Closed {
		return errors.New("nulldev: voice closed")
	}
	if !v.playing {
		v.Starts++
	}
	v.playing = true
	return nil
}

func (v *Voice) Stop() {
	v.playing = false
	v.Paused = false
}

func (v *Voice) Pause()  { v.Paused = true }
func (v *Voice) Resume() { v.Paused = false }

func (v *Voice) Playing() bool {
	return v.playing
}

// Finish ends playback as if the buffer ran out.
func (v *Voice) Finish() {
	v.playing = false
	v.pos = 0
}

func (v *Voice) Position() time.Duration {
	return v.pos
}

func (v *Voice) Seek(pos time.Duration) error {
	if pos < 0 || pos > v.Buffer.Duration() {
		return errors.Errorf("nulldev: seek to %v out of range", pos)
	}
	v.pos = pos
	return nil
}

func (v *Voice) SetVolume(f float32) {
	v.Volume = f
}

func (v *Voice) SetLoopCount(n int) {
	v.Loops = n
}

func (v *Voice) SetDistances(maxVol, dropOff float32) {
	v.MaxVol = maxVol
	v.DropOff = dropOff
}

func (v *Voice) Update3D(s device.Spatial) {
	v.Spatial = s
	v.Gain, v.Pan = device.Attenuate(s, v.MaxVol, v.DropOff)
}

func (v *Voice) Close() {
	if v.Closed {
		return
	}
	v.Closed = true
	v.playing = false
	v.dev.release(v)
}

// Buffer is a named stretch of silence.
type Buffer struct {
	name     string
	duration time.Duration
}

func NewBuffer(name string, d time.Duration) *Buffer {
	return &Buffer{name: name, duration: d}
}

func (b *Buffer) Name() string            { return b.name }
func (b *Buffer) Duration() time.Duration { return b.duration }
