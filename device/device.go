// SPDX-License-Identifier: GPL-2.0-or-later

// Package device is the contract between the sound scene and whatever
// produces audio. A device owns a fixed number of voices; a voice plays one
// buffer and is steered by 3D parameters every frame.
package device

import (
	"time"

	"github.com/pkg/errors"

	"soundscene/math"
	"soundscene/math/vec"
)

var ErrNoVoice = errors.New("no free voice")

// Buffer is decoded audio a voice can play.
type Buffer interface {
	Name() string
	Duration() time.Duration
}

// Spatial is the per frame 3D state of a voice.
type Spatial struct {
	Position vec.Vec3
	Velocity vec.Vec3
	Listener vec.Transform
}

type Voice interface {
	// Start begins or continues playback at the current position.
	Start() error
	Stop()
	Pause()
	Resume()
	// Playing is false once the voice was stopped or ran out of data.
	Playing() bool
	Position() time.Duration
	Seek(pos time.Duration) error
	SetVolume(v float32)
	// SetLoopCount sets how often the buffer is played, 0 loops forever.
	SetLoopCount(n int)
	SetDistances(maxVol, dropOff float32)
	Update3D(s Spatial)
	// Close releases the voice back to the device.
	Close()
}

type Device interface {
	// Voices is the number of voices that can be open at the same time.
	Voices() int
	// Open returns ErrNoVoice once all voices are in use.
	Open(b Buffer) (Voice, error)
}

// Attenuate returns the gain and stereo pan of a sound as heard by the
// listener. Full volume up to maxVol, silence from dropOff on, linear in
// between. Pan is -1 for hard left and 1 for hard right.
func Attenuate(s Spatial, maxVol, dropOff float32) (gain, pan float32) {
	v := vec.Sub(s.Position, s.Listener.Origin)
	dist := v.Length()
	switch {
	case dist <= maxVol:
		gain = 1
	case dist >= dropOff:
		gain = 0
	default:
		gain = 1 - (dist-maxVol)/(dropOff-maxVol)
	}
	if dist > 0 {
		v = v.Normalize()
		pan = math.Clamp(-1, vec.Dot(s.Listener.Right(), v), 1)
	}
	return gain, pan
}
