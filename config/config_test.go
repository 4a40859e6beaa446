// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/cvars"
)

func TestApply(t *testing.T) {
	doc := `
snd_debug = true

[snd]
max_voices = 24
world_min = [-1000, -1000, -250.5]
sfx_volume = 0.5
bogus = "ignored"
`
	require.NoError(t, Apply([]byte(doc)))
	t.Cleanup(func() {
		cvars.SoundDebug.Reset()
		cvars.SoundMaxVoices.Reset()
		cvars.SoundWorldMin.Reset()
		cvars.SoundSfxVolume.Reset()
	})

	assert.True(t, cvars.SoundDebug.Bool())
	assert.Equal(t, float32(24), cvars.SoundMaxVoices.Value())
	assert.Equal(t, []float32{-1000, -1000, -250.5}, cvars.SoundWorldMin.Floats())
	assert.Equal(t, float32(0.5), cvars.SoundSfxVolume.Value())
}

func TestApplyInvalid(t *testing.T) {
	assert.Error(t, Apply([]byte("snd_debug = = 1")))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sound.toml")
	require.NoError(t, os.WriteFile(path, []byte("snd_listener_cell = 55\n"), 0o600))
	t.Cleanup(cvars.SoundListenerCell.Reset)

	require.NoError(t, Load(path))
	assert.Equal(t, float32(55), cvars.SoundListenerCell.Value())

	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.toml")))
}
