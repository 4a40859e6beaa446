// SPDX-License-Identifier: GPL-2.0-or-later

package beepdev

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/device"
	"soundscene/math/vec"
)

func pull(d *Device, n int) [][2]float64 {
	samples := make([][2]float64, n)
	d.lock()
	d.mixer.Stream(samples)
	d.unlock()
	return samples
}

func TestToneAndBudget(t *testing.T) {
	d := New(Options{SampleRate: 8000, Voices: 1})
	b, err := d.Tone("beep", 440, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, b.Duration())
	assert.Equal(t, "beep", b.Name())

	v, err := d.Open(b)
	require.NoError(t, err)
	_, err = d.Open(b)
	assert.ErrorIs(t, err, device.ErrNoVoice)

	v.Close()
	assert.Equal(t, 0, d.Active())
	_, err = d.Open(b)
	assert.NoError(t, err)

	_, err = d.Open(nil)
	assert.Error(t, err)
}

func TestPlayback(t *testing.T) {
	d := New(Options{SampleRate: 8000, Voices: 4})
	b, err := d.Tone("beep", 440, 10*time.Millisecond)
	require.NoError(t, err)
	v, err := d.Open(b)
	require.NoError(t, err)

	v.SetDistances(10, 100)
	v.Update3D(device.Spatial{Position: vec.Vec3{X: 5}, Listener: vec.Identity()})
	require.NoError(t, v.Start())
	assert.True(t, v.Playing())

	out := pull(d, 1024)
	var energy float64
	for _, s := range out {
		energy += s[0]*s[0] + s[1]*s[1]
	}
	assert.Greater(t, energy, 0.0)
	assert.False(t, v.Playing())

	// a finished voice starts over
	require.NoError(t, v.Start())
	assert.True(t, v.Playing())
	v.Stop()
	assert.False(t, v.Playing())
}

func TestLoopsAndSilence(t *testing.T) {
	d := New(Options{SampleRate: 8000, Voices: 1})
	b, err := d.Tone("beep", 440, 10*time.Millisecond)
	require.NoError(t, err)
	v, err := d.Open(b)
	require.NoError(t, err)

	v.SetLoopCount(0)
	v.SetDistances(10, 100)
	v.Update3D(device.Spatial{Position: vec.Vec3{Z: 500}, Listener: vec.Identity()})
	require.NoError(t, v.Start())

	out := pull(d, 2048)
	for _, s := range out {
		require.Zero(t, s[0])
		require.Zero(t, s[1])
	}
	assert.True(t, v.Playing())

	require.NoError(t, v.Seek(5*time.Millisecond))
	assert.Error(t, v.Seek(time.Second))
	v.Close()
	assert.False(t, v.Playing())
}

func TestLoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 4000, NumChannels: 1, Precision: 2}
	tone, err := generators.SineTone(format.SampleRate, 220)
	require.NoError(t, err)
	require.NoError(t, wav.Encode(f, beep.Take(4000, tone), format))
	require.NoError(t, f.Close())

	d := New(Options{SampleRate: 8000, Voices: 1})
	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	b, err := d.LoadWAV("tone", f)
	require.NoError(t, err)
	assert.InDelta(t, float64(time.Second), float64(b.Duration()), float64(10*time.Millisecond))

	_, err = d.LoadWAV("broken", f)
	assert.Error(t, err)
}
