// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/clock"
	"soundscene/device/nulldev"
	"soundscene/sound"
)

func TestDemoRuns(t *testing.T) {
	dev := nulldev.New(8)
	clk := clock.NewManual(0)
	sys := sound.NewSystem(dev, clk, sound.DefaultConfig(), 8)
	defer sys.Shutdown()
	require.NoError(t, registerBuffers(sys, nil))

	d := newDemo(sys, 5)
	d.populate(64)
	st := sys.Scene().Stats()
	assert.Equal(t, 64, st.Static+st.Dynamic)
	assert.Equal(t, 4, st.LogicalListeners)
	assert.Equal(t, len(d.movers), st.Dynamic)

	for frame := 0; frame < 300; frame++ {
		clk.Advance(33)
		d.step(frame, 33)
		sys.Update(33)
		assert.LessOrEqual(t, len(dev.Active()), 8)
	}
	for _, m := range d.movers {
		assert.Equal(t, m.position, m.sound.Position())
	}
	cam, ok := sys.RenderObjects().Transform(d.camera, "")
	require.True(t, ok)
	assert.Equal(t, cam, sys.Scene().Listener().Transform())
	assert.Equal(t, 64, sys.Scene().Stats().Playing, "every emitter loops forever")
}

func TestRegisterNullBuffers(t *testing.T) {
	sys := sound.NewSystem(nulldev.New(1), nil, sound.DefaultConfig(), 1)
	require.NoError(t, registerBuffers(sys, nil))
	assert.Equal(t, []string{"beep", "chirp", "hum"}, sys.BufferNames())
	b, _ := sys.Buffer("hum")
	assert.Equal(t, 2*time.Second, b.Duration())
}
