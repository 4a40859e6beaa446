// SPDX-License-Identifier: GPL-2.0-or-later

package nulldev

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/device"
)

func TestVoiceBudget(t *testing.T) {
	d := New(2)
	b := NewBuffer("a", time.Second)
	v1, err := d.Open(b)
	require.NoError(t, err)
	_, err = d.Open(b)
	require.NoError(t, err)
	_, err = d.Open(b)
	assert.ErrorIs(t, err, device.ErrNoVoice)

	v1.Close()
	v1.Close()
	assert.Len(t, d.Active(), 1)
	_, err = d.Open(b)
	assert.NoError(t, err)
	assert.Equal(t, 3, d.Opened)
}

func TestVoiceState(t *testing.T) {
	d := New(1)
	vi, err := d.Open(NewBuffer("a", time.Second))
	require.NoError(t, err)
	v := vi.(*Voice)

	require.NoError(t, v.Start())
	require.NoError(t, v.Start())
	assert.Equal(t, 1, v.Starts)
	assert.Len(t, d.Playing(), 1)

	assert.NoError(t, v.Seek(500*time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, v.Position())
	assert.Error(t, v.Seek(2*time.Second))

	v.Finish()
	assert.False(t, v.Playing())
	assert.Empty(t, d.Playing())

	v.Close()
	assert.Error(t, v.Start())
}
