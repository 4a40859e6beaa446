// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundscene/chunkio"
	"soundscene/math/vec"
	"soundscene/persist"
	"soundscene/render"
)

type savedScene struct {
	data   []byte
	hum    *AudibleSound
	click  *AudibleSound
	object render.Handle
}

func saveScene(t *testing.T) savedScene {
	r := newRig(t, 8, DefaultConfig())
	sc := r.sys.Scene()
	sc.RePartition(vec.Splat(-800), vec.Splat(800))
	sc.SetGlobalScale(2.5)

	hum := r.sys.Create3DSound("hum")
	hum.SetStatic(true)
	hum.SetTransform(vec.FromAngles(vec.Vec3{X: 10, Y: 20, Z: 30}, vec.Vec3{X: 10, Y: 90}))
	hum.SetDropOffRadius(70)
	hum.SetMaxVolRadius(5)
	hum.SetPriority(0.7)
	hum.SetVolume(0.4)
	hum.SetLoopCount(3)
	hum.SetCategory(Music)
	hum.AddToScene(true)

	obj := r.sys.RenderObjects().Add(vec.Translation(vec.Vec3{Y: 600}))
	click := r.sound("click", vec.Vec3{Y: 600}, 40)
	click.SetStatic(true)
	click.AttachToObject(obj, "head")
	click.AddToScene(false)

	r.sound("hum", vec.Vec3{}, 10).AddToScene(true)

	var buf bytes.Buffer
	require.NoError(t, sc.SaveStatic(&buf))
	return savedScene{data: buf.Bytes(), hum: hum, click: click, object: obj}
}

func staticByName(sc *Scene) map[string]*AudibleSound {
	m := map[string]*AudibleSound{}
	for _, s := range sc.static.items {
		m[s.Name()] = s
	}
	return m
}

func TestSaveLoadStatic(t *testing.T) {
	saved := saveScene(t)

	r := newRig(t, 8, DefaultConfig())
	sc := r.sys.Scene()
	remap := &persist.Remapper{}
	obj := r.sys.RenderObjects().Add(vec.Identity())
	remap.Register(saved.object.Raw(), obj)
	var found any
	remap.Request(saved.hum.ID(), func(o any) { found = o })

	require.NoError(t, sc.LoadStatic(bytes.NewReader(saved.data), remap))
	assert.Zero(t, remap.Process())
	assert.False(t, sc.IsBatchMode())

	min, max := sc.Extents()
	assert.Equal(t, vec.Splat(-800), min)
	assert.Equal(t, vec.Splat(800), max)
	assert.Equal(t, float32(2.5), sc.GlobalScale())
	assert.Equal(t, 2, sc.Stats().Static)
	assert.Zero(t, sc.Stats().Dynamic)

	got := staticByName(sc)
	hum := got["hum"]
	require.NotNil(t, hum)
	assert.Same(t, hum, found)
	assert.Equal(t, saved.hum.Transform(), hum.Transform())
	assert.Equal(t, float32(70), hum.DropOffRadius())
	assert.Equal(t, float32(5), hum.MaxVolRadius())
	assert.Equal(t, float32(0.7), hum.Priority())
	assert.Equal(t, float32(0.4), hum.Volume())
	assert.Equal(t, 3, hum.LoopCount())
	assert.Equal(t, Music, hum.Category())
	assert.True(t, hum.IsStatic())
	assert.True(t, hum.IsPlaying())
	assert.NotEqual(t, saved.hum.ID(), hum.ID())

	click := got["click"]
	require.NotNil(t, click)
	assert.False(t, click.IsPlaying())
	h, bone := click.Attachment()
	assert.Equal(t, obj, h)
	assert.Equal(t, "head", bone)

	// the batch load decides audibility on the next frame
	assert.True(t, hum.IsCulled())
	sc.Listener().SetPosition(hum.Position())
	r.frame()
	assert.False(t, hum.IsCulled())
	assert.True(t, hum.HasVoice())
}

func TestLoadSkipsUnknownChunks(t *testing.T) {
	saved := saveScene(t)
	w := chunkio.NewWriter()
	w.BeginChunk(0x4242)
	w.WriteString(1, "from a newer version")
	require.NoError(t, w.EndChunk())
	w.BeginChunk(chunkStaticSounds)
	w.BeginChunk(0x777)
	w.WriteUint32(1, 1)
	require.NoError(t, w.EndChunk())
	require.NoError(t, w.EndChunk())
	data := append(w.Bytes(), saved.data...)

	r := newRig(t, 8, DefaultConfig())
	sc := r.sys.Scene()
	require.NoError(t, sc.LoadStatic(bytes.NewReader(data), nil))
	assert.Equal(t, 2, sc.Stats().Static)
	assert.Equal(t, float32(2.5), sc.GlobalScale())
	h, _ := staticByName(sc)["click"].Attachment()
	assert.True(t, h.IsZero(), "no remapper, no attachment")
}

func TestLoadTruncated(t *testing.T) {
	saved := saveScene(t)
	r := newRig(t, 8, DefaultConfig())
	err := r.sys.Scene().LoadStatic(bytes.NewReader(saved.data[:len(saved.data)-3]), nil)
	assert.ErrorIs(t, err, chunkio.ErrTruncated)
}

func TestDynamicHooks(t *testing.T) {
	r := newRig(t, 8, DefaultConfig())
	var buf bytes.Buffer
	assert.NoError(t, r.sys.Scene().SaveDynamic(&buf))
	assert.Zero(t, buf.Len())
	assert.NoError(t, r.sys.Scene().LoadDynamic(&buf))
}
