// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"io"

	"github.com/pkg/errors"

	"soundscene/chunkio"
	"soundscene/conlog"
	"soundscene/math/vec"
	"soundscene/persist"
	"soundscene/render"
)

const (
	chunkVariables    = 0x100
	chunkStaticSounds = 0x101
	chunkStaticSound  = 0x102
)

const (
	varMinDim = iota + 1
	varMaxDim
	varLogicalScale
)

const (
	staticID = iota + 1
	staticName
	staticOrigin
	staticRight
	staticUp
	staticForward
	staticDropOff
	staticMaxVol
	staticPriority
	staticVolume
	staticLoops
	staticPlaying
	staticAttach
	staticBone
	staticCategory
)

// SaveStatic writes the scene extents, the global logical scale and every
// static sound.
func (sc *Scene) SaveStatic(out io.Writer) error {
	if sc == nil {
		return nil
	}
	w := chunkio.NewWriter()
	w.BeginChunk(chunkVariables)
	w.WriteVec3(varMinDim, sc.cfg.Min)
	w.WriteVec3(varMaxDim, sc.cfg.Max)
	w.WriteFloat32(varLogicalScale, sc.globalScale)
	w.EndChunk()

	w.BeginChunk(chunkStaticSounds)
	for _, s := range sc.static.items {
		saveStaticSound(w, s)
	}
	w.EndChunk()

	if _, err := w.WriteTo(out); err != nil {
		return errors.Wrap(err, "saving static sounds")
	}
	return nil
}

func saveStaticSound(w *chunkio.Writer, s *AudibleSound) {
	w.BeginChunk(chunkStaticSound)
	w.WriteUint64(staticID, s.id)
	w.WriteString(staticName, s.name)
	t := s.transform
	w.WriteVec3(staticOrigin, t.Origin)
	w.WriteVec3(staticRight, t.Right())
	w.WriteVec3(staticUp, t.Up())
	w.WriteVec3(staticForward, t.Forward())
	w.WriteFloat32(staticDropOff, s.dropOff)
	w.WriteFloat32(staticMaxVol, s.maxVol)
	w.WriteFloat32(staticPriority, s.priority)
	w.WriteFloat32(staticVolume, s.volume)
	w.WriteUint32(staticLoops, uint32(s.loops))
	w.WriteBool(staticPlaying, s.state != Stopped)
	if !s.attach.IsZero() {
		w.WriteUint64(staticAttach, s.attach.Raw())
		w.WriteString(staticBone, s.bone)
	}
	w.WriteUint32(staticCategory, uint32(s.category))
	w.EndChunk()
}

type staticRecord struct {
	id       uint64
	name     string
	t        vec.Transform
	dropOff  float32
	maxVol   float32
	priority float32
	volume   float32
	loops    uint32
	playing  bool
	attach   uint64
	bone     string
	category uint32
}

// LoadStatic reads what SaveStatic wrote and adds the static sounds to the
// scene. Sounds are registered with remap under their saved identity and
// their attachments are requested from it; the caller runs remap.Process
// once every subsystem is loaded. Unknown chunks are skipped.
func (sc *Scene) LoadStatic(in io.Reader, remap *persist.Remapper) error {
	if sc == nil {
		return nil
	}
	r, err := chunkio.NewReader(in)
	if err != nil {
		return err
	}
	batch := sc.batch
	sc.batch = true
	defer func() { sc.batch = batch }()

	for r.OpenChunk() {
		switch id := r.CurChunkID(); id {
		case chunkVariables:
			if err := sc.loadVariables(r); err != nil {
				return err
			}
		case chunkStaticSounds:
			for r.OpenChunk() {
				if r.CurChunkID() != chunkStaticSound {
					conlog.DPrintf("sound: skipping chunk %#x in static sounds\n", r.CurChunkID())
				} else if err := sc.loadStaticSound(r, remap); err != nil {
					return err
				}
				if err := r.CloseChunk(); err != nil {
					return err
				}
			}
		default:
			conlog.Printf("sound: skipping unknown chunk %#x\n", id)
		}
		if err := r.CloseChunk(); err != nil {
			return err
		}
	}
	return errors.Wrap(r.Err(), "loading static sounds")
}

func (sc *Scene) loadVariables(r *chunkio.Reader) error {
	min, max := sc.cfg.Min, sc.cfg.Max
	scale := sc.globalScale
	var err error
	for r.OpenMicroChunk() {
		switch r.CurMicroChunkID() {
		case varMinDim:
			min, err = r.ReadVec3()
		case varMaxDim:
			max, err = r.ReadVec3()
		case varLogicalScale:
			scale, err = r.ReadFloat32()
		}
		if err != nil {
			return errors.Wrap(err, "loading scene variables")
		}
	}
	sc.RePartition(min, max)
	sc.SetGlobalScale(scale)
	return nil
}

func readStaticRecord(r *chunkio.Reader) (staticRecord, error) {
	rec := staticRecord{
		t:        vec.Identity(),
		dropOff:  100,
		priority: 0.5,
		volume:   1,
		loops:    1,
	}
	var err error
	for r.OpenMicroChunk() {
		switch r.CurMicroChunkID() {
		case staticID:
			rec.id, err = r.ReadUint64()
		case staticName:
			rec.name, err = r.ReadString()
		case staticOrigin:
			rec.t.Origin, err = r.ReadVec3()
		case staticRight:
			rec.t.Basis[0], err = r.ReadVec3()
		case staticUp:
			rec.t.Basis[1], err = r.ReadVec3()
		case staticForward:
			rec.t.Basis[2], err = r.ReadVec3()
		case staticDropOff:
			rec.dropOff, err = r.ReadFloat32()
		case staticMaxVol:
			rec.maxVol, err = r.ReadFloat32()
		case staticPriority:
			rec.priority, err = r.ReadFloat32()
		case staticVolume:
			rec.volume, err = r.ReadFloat32()
		case staticLoops:
			rec.loops, err = r.ReadUint32()
		case staticPlaying:
			rec.playing, err = r.ReadBool()
		case staticAttach:
			rec.attach, err = r.ReadUint64()
		case staticBone:
			rec.bone, err = r.ReadString()
		case staticCategory:
			rec.category, err = r.ReadUint32()
		}
		if err != nil {
			return rec, errors.Wrap(err, "loading static sound")
		}
	}
	return rec, nil
}

func (sc *Scene) loadStaticSound(r *chunkio.Reader, remap *persist.Remapper) error {
	rec, err := readStaticRecord(r)
	if err != nil {
		return err
	}
	s := sc.sys.Create3DSound(rec.name)
	s.SetStatic(true)
	s.SetAutoVelocity(false)
	s.transform = rec.t
	s.dropOff = max(rec.dropOff, 0)
	s.maxVol = max(rec.maxVol, 0)
	s.SetPriority(rec.priority)
	s.SetVolume(rec.volume)
	s.SetLoopCount(int(rec.loops))
	s.SetCategory(Category(rec.category))
	if remap != nil {
		remap.Register(rec.id, s)
		bone := rec.bone
		remap.Request(rec.attach, func(obj any) {
			if h, ok := obj.(render.Handle); ok {
				s.AttachToObject(h, bone)
			}
		})
	}
	s.AddToScene(rec.playing)
	return nil
}

// SaveDynamic is part of the save contract, dynamic sounds are not
// persisted.
func (sc *Scene) SaveDynamic(io.Writer) error {
	return nil
}

// LoadDynamic reads nothing, see SaveDynamic.
func (sc *Scene) LoadDynamic(io.Reader) error {
	return nil
}
