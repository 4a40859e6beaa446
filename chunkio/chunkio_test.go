// SPDX-License-Identifier: GPL-2.0-or-later

package chunkio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/math/vec"
)

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.BeginChunk(0x100)
	w.WriteVec3(1, vec.Vec3{X: -500, Y: -250, Z: 1.5})
	w.WriteFloat32(2, 0.75)
	w.WriteString(3, "ambient")
	w.WriteBool(4, true)
	w.WriteUint64(5, 1<<40)
	require.NoError(t, w.EndChunk())

	w.BeginChunk(0x101)
	for i := uint32(0); i < 3; i++ {
		w.BeginChunk(0x200)
		w.WriteUint32(1, i)
		require.NoError(t, w.EndChunk())
	}
	require.NoError(t, w.EndChunk())

	var out bytes.Buffer
	_, err := w.WriteTo(&out)
	require.NoError(t, err)

	r, err := NewReader(&out)
	require.NoError(t, err)
	assert.True(t, r.ContainsChunks())

	require.True(t, r.OpenChunk())
	assert.Equal(t, uint32(0x100), r.CurChunkID())
	assert.False(t, r.ContainsChunks())

	require.True(t, r.OpenMicroChunk())
	assert.Equal(t, uint32(1), r.CurMicroChunkID())
	v, err := r.ReadVec3()
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3{X: -500, Y: -250, Z: 1.5}, v)

	require.True(t, r.OpenMicroChunk())
	f, err := r.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(0.75), f)

	require.True(t, r.OpenMicroChunk())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "ambient", s)

	require.True(t, r.OpenMicroChunk())
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	require.True(t, r.OpenMicroChunk())
	u, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u)

	assert.False(t, r.OpenMicroChunk())
	require.NoError(t, r.CloseChunk())

	require.True(t, r.OpenChunk())
	assert.Equal(t, uint32(0x101), r.CurChunkID())
	assert.True(t, r.ContainsChunks())
	var got []uint32
	for r.OpenChunk() {
		for r.OpenMicroChunk() {
			n, err := r.ReadUint32()
			require.NoError(t, err)
			got = append(got, n)
		}
		require.NoError(t, r.CloseChunk())
	}
	assert.Equal(t, []uint32{0, 1, 2}, got)
	require.NoError(t, r.CloseChunk())

	assert.False(t, r.OpenChunk())
	assert.NoError(t, r.Err())
}

func TestUnknownDataIsSkipped(t *testing.T) {
	w := NewWriter()
	w.BeginChunk(0x999)
	w.BeginChunk(0x1)
	w.WriteString(9, "unknown")
	w.EndChunk()
	w.EndChunk()
	w.BeginChunk(0x100)
	w.WriteString(77, "unknown field")
	w.WriteFloat32(2, 3)
	w.EndChunk()
	require.NoError(t, w.Err())

	r := FromBytes(w.Bytes())
	var ids []uint32
	var value float32
	for r.OpenChunk() {
		ids = append(ids, r.CurChunkID())
		if r.CurChunkID() == 0x100 {
			for r.OpenMicroChunk() {
				if r.CurMicroChunkID() == 2 {
					value, _ = r.ReadFloat32()
				}
			}
		}
		require.NoError(t, r.CloseChunk())
	}
	assert.Equal(t, []uint32{0x999, 0x100}, ids)
	assert.Equal(t, float32(3), value)
	assert.NoError(t, r.Err())
}

func TestWriterErrors(t *testing.T) {
	w := NewWriter()
	assert.ErrorIs(t, w.EndChunk(), ErrNoChunk)

	w = NewWriter()
	w.WriteFloat32(1, 1)
	assert.ErrorIs(t, w.Err(), ErrNoChunk)

	w = NewWriter()
	w.BeginChunk(1)
	w.WriteFloat32(1, 1)
	w.BeginChunk(2)
	assert.Error(t, w.Err())

	w = NewWriter()
	w.BeginChunk(1)
	_, err := w.WriteTo(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestReaderErrors(t *testing.T) {
	w := NewWriter()
	w.BeginChunk(0x100)
	w.WriteFloat32(1, 2)
	require.NoError(t, w.EndChunk())
	data := w.Bytes()

	r := FromBytes(data[:len(data)-2])
	assert.False(t, r.OpenChunk())
	assert.ErrorIs(t, r.Err(), ErrTruncated)

	r = FromBytes(data[:5])
	assert.False(t, r.OpenChunk())
	assert.Error(t, r.Err())

	r = FromBytes(data)
	_, err := r.ReadFloat32()
	assert.ErrorIs(t, err, ErrNoMicroChunk)
	require.True(t, r.OpenChunk())
	require.True(t, r.OpenMicroChunk())
	_, err = r.ReadString()
	assert.Error(t, err)
	assert.ErrorIs(t, FromBytes(nil).CloseChunk(), ErrNoChunk)
}
