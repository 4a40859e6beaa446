// SPDX-License-Identifier: GPL-2.0-or-later

package audio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/clock"
	"soundscene/cmd"
	"soundscene/cvars"
	"soundscene/device/nulldev"
	"soundscene/math/vec"
	"soundscene/sound"
)

func initNull(t *testing.T, voices int) (*sound.System, *nulldev.Device) {
	t.Helper()
	dev := nulldev.New(voices)
	s := Init(dev, clock.NewManual(0))
	t.Cleanup(Shutdown)
	require.NotNil(t, s)
	s.RegisterBuffer(nulldev.NewBuffer("hum", time.Second))
	return s, dev
}

func TestInit(t *testing.T) {
	s, _ := initNull(t, 4)
	assert.Same(t, s, Get())
	assert.Equal(t, 4, s.Voices().Limit(), "capped by the device")
	min, max := s.Scene().Extents()
	assert.Equal(t, vec.Splat(-500), min)
	assert.Equal(t, vec.Splat(500), max)
	assert.Equal(t, float32(40), s.Scene().Config().ListenerCell)

	Shutdown()
	assert.Nil(t, Get())
}

func TestCommands(t *testing.T) {
	s, dev := initNull(t, 4)
	require.NoError(t, cmd.ExecuteString("snd_play hum 1 2 3 50"))
	assert.Equal(t, 1, s.Scene().Stats().Dynamic)
	assert.Len(t, dev.Active(), 1)

	require.NoError(t, cmd.ExecuteString("snd_repartition -100 -100 -100 100 100 100"))
	min, max := s.Scene().Extents()
	assert.Equal(t, vec.Splat(-100), min)
	assert.Equal(t, vec.Splat(100), max)
	require.NoError(t, cmd.ExecuteString("snd_repartition"))
	min, _ = s.Scene().Extents()
	assert.Equal(t, vec.Splat(-500), min)

	require.NoError(t, cmd.ExecuteString("snd_stats"))
	require.NoError(t, cmd.ExecuteString("snd_list"))
	require.NoError(t, cmd.ExecuteString("snd_stopall"))
	assert.Empty(t, s.Playing())
	require.NoError(t, cmd.ExecuteString("snd_flush"))
	assert.Zero(t, s.Scene().Stats().Dynamic)
}

func TestCvarBindings(t *testing.T) {
	s, _ := initNull(t, 8)
	t.Cleanup(func() {
		cvars.SoundMusicVolume.Reset()
		cvars.SoundMaxVoices.Reset()
		cvars.SoundLogicalScale.Reset()
		cvars.SoundDynamicCell.Reset()
	})

	cvars.SoundMusicVolume.SetByString("2")
	assert.Equal(t, "1", cvars.SoundMusicVolume.String())
	assert.Equal(t, float32(1), s.Volume(sound.Music))
	cvars.SoundMusicVolume.SetByString("0.25")
	assert.Equal(t, float32(0.25), s.Volume(sound.Music))
	assert.Equal(t, float32(1), s.Volume(sound.SoundEffect))

	cvars.SoundMaxVoices.SetByString("2")
	assert.Equal(t, 2, s.Voices().Limit())

	cvars.SoundLogicalScale.SetByString("3")
	assert.Equal(t, float32(3), s.Scene().GlobalScale())

	cvars.SoundDynamicCell.SetByString("50")
	assert.Equal(t, float32(50), s.Scene().Config().DynamicCell)
}

func TestSaveLoadFile(t *testing.T) {
	s, _ := initNull(t, 4)
	a := s.Create3DSound("hum")
	a.SetStatic(true)
	a.SetPosition(vec.Vec3{X: 42})
	a.AddToScene(true)
	path := filepath.Join(t.TempDir(), "static.snd")
	require.NoError(t, SaveFile(path))

	s, _ = initNull(t, 4)
	missing, err := LoadFile(path)
	require.NoError(t, err)
	assert.Zero(t, missing)
	assert.Equal(t, 1, s.Scene().Stats().Static)
	assert.Equal(t, 1, s.Scene().Stats().Playing)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadFileKeepsAttachment(t *testing.T) {
	s, _ := initNull(t, 4)
	obj := s.RenderObjects().Add(vec.Translation(vec.Vec3{Y: 30}))
	a := s.Create3DSound("hum")
	a.SetStatic(true)
	a.AttachToObject(obj, "muzzle")
	a.AddToScene(true)
	path := filepath.Join(t.TempDir(), "attached.snd")
	require.NoError(t, SaveFile(path))
	a.RemoveFromScene(true)
	require.Empty(t, s.Playing())

	missing, err := LoadFile(path)
	require.NoError(t, err)
	assert.Zero(t, missing)
	require.Len(t, s.Playing(), 1)
	loaded := s.Playing()[0]
	assert.NotSame(t, a, loaded)
	h, bone := loaded.Attachment()
	assert.Equal(t, obj, h)
	assert.Equal(t, "muzzle", bone)

	s.Update(16)
	assert.Equal(t, vec.Vec3{Y: 30}, loaded.Position())
}

func TestDisabled(t *testing.T) {
	assert.Nil(t, Init(nil, nil))
	assert.Nil(t, Get())
	for _, c := range []string{"snd_stats", "snd_play hum", "snd_flush", "snd_repartition", "snd_list", "snd_stopall"} {
		assert.NotPanics(t, func() { cmd.ExecuteString(c) }, c)
	}
}
