// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"testing"
	"time"

	"soundscene/clock"
	"soundscene/device/nulldev"
	"soundscene/math/vec"
)

type testRig struct {
	sys   *System
	dev   *nulldev.Device
	clock *clock.Manual
}

func newRig(t *testing.T, voices int, cfg Config) *testRig {
	t.Helper()
	dev := nulldev.New(voices)
	clk := clock.NewManual(1000)
	sys := NewSystem(dev, clk, cfg, voices)
	sys.RegisterBuffer(nulldev.NewBuffer("hum", 2*time.Second))
	sys.RegisterBuffer(nulldev.NewBuffer("click", 100*time.Millisecond))
	t.Cleanup(sys.Shutdown)
	return &testRig{sys: sys, dev: dev, clock: clk}
}

// frame advances the clock and runs one update.
func (r *testRig) frame() {
	r.clock.Advance(16)
	r.sys.Update(16)
}

func (r *testRig) sound(name string, p vec.Vec3, dropOff float32) *AudibleSound {
	s := r.sys.Create3DSound(name)
	s.SetDropOffRadius(dropOff)
	s.SetPosition(p)
	return s
}

func ids(sounds []*AudibleSound) []uint64 {
	r := make([]uint64, 0, len(sounds))
	for _, s := range sounds {
		r = append(r, s.ID())
	}
	return r
}
