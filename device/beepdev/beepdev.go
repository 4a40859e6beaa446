// SPDX-License-Identifier: GPL-2.0-or-later

// Package beepdev is a device backed by a beep mixer. The mixer is a plain
// beep.Streamer, the host hands it to the speaker (or anything else that
// pulls samples).
package beepdev

import (
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/pkg/errors"

	"soundscene/conlog"
	"soundscene/device"
)

const resampleQuality = 4

type Options struct {
	SampleRate beep.SampleRate
	Voices     int
	// Lock and Unlock guard the streamers against the goroutine pulling
	// samples, speaker.Lock and speaker.Unlock when playing to the speaker.
	Lock   func()
	Unlock func()
}

type Device struct {
	format beep.Format
	voices int
	mixer  *beep.Mixer
	lock   func()
	unlock func()

	mu   sync.Mutex
	open map[*Voice]struct{}
}

func New(o Options) *Device {
	if o.SampleRate == 0 {
		o.SampleRate = 44100
	}
	d := &Device{
		format: beep.Format{SampleRate: o.SampleRate, NumChannels: 2, Precision: 2},
		voices: o.Voices,
		mixer:  &beep.Mixer{},
		lock:   o.Lock,
		unlock: o.Unlock,
		open:   make(map[*Voice]struct{}),
	}
	if d.lock == nil || d.unlock == nil {
		var m sync.Mutex
		d.lock, d.unlock = m.Lock, m.Unlock
	}
	// the mixer must never run dry, the speaker would drop it
	d.mixer.Add(generators.Silence(-1))
	return d
}

// Streamer returns the mixed output of all voices.
func (d *Device) Streamer() beep.Streamer {
	return d.mixer
}

func (d *Device) SampleRate() beep.SampleRate {
	return d.format.SampleRate
}

func (d *Device) Voices() int {
	return d.voices
}

func (d *Device) Open(b device.Buffer) (device.Voice, error) {
	buf, ok := b.(*Buffer)
	if !ok || buf == nil {
		return nil, errors.Errorf("beepdev: unsupported buffer %T", b)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.open) >= d.voices {
		return nil, device.ErrNoVoice
	}
	v := newVoice(d, buf)
	d.open[v] = struct{}{}
	conlog.DPrintf("beepdev: voice %v opened for %s\n", v.id, buf.name)
	return v, nil
}

// Active returns the number of open voices.
func (d *Device) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open)
}

func (d *Device) release(v *Voice) {
	d.mu.Lock()
	delete(d.open, v)
	d.mu.Unlock()
}

// Buffer holds decoded samples in the device format.
type Buffer struct {
	name string
	buf  *beep.Buffer
}

func (b *Buffer) Name() string {
	return b.name
}

func (b *Buffer) Duration() time.Duration {
	return b.buf.Format().SampleRate.D(b.buf.Len())
}

// LoadWAV decodes a wav stream and converts it to the device sample rate.
func (d *Device) LoadWAV(name string, r io.Reader) (*Buffer, error) {
	s, format, err := wav.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", name)
	}
	defer s.Close()
	var src beep.Streamer = s
	if format.SampleRate != d.format.SampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, d.format.SampleRate, s)
	}
	buf := beep.NewBuffer(d.format)
	buf.Append(src)
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", name)
	}
	return &Buffer{name: name, buf: buf}, nil
}

// Tone creates a sine tone buffer, the demo uses it when no wav files are
// given.
func (d *Device) Tone(name string, freq float64, length time.Duration) (*Buffer, error) {
	tone, err := generators.SineTone(d.format.SampleRate, freq)
	if err != nil {
		return nil, errors.Wrapf(err, "tone %s", name)
	}
	buf := beep.NewBuffer(d.format)
	buf.Append(beep.Take(d.format.SampleRate.N(length), tone))
	return &Buffer{name: name, buf: buf}, nil
}
