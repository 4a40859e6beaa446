// SPDX-License-Identifier: GPL-2.0-or-later

package chunkio

import (
	"io"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"soundscene/math/vec"
)

type frame struct {
	header
	end int
}

type microChunk struct {
	id    uint32
	typ   protowire.Type
	value []byte
}

// Reader walks a chunk stream. OpenChunk/CloseChunk descend and ascend,
// OpenMicroChunk iterates the scalars of a leaf chunk.
type Reader struct {
	data  []byte
	pos   int
	stack []frame
	micro *microChunk
	err   error
}

func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading chunks")
	}
	return FromBytes(data), nil
}

func FromBytes(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first structural error met while reading.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) limit() int {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1].end
	}
	return len(r.data)
}

// OpenChunk opens the next chunk at the current level. It returns false at
// the end of the level or on malformed data.
func (r *Reader) OpenChunk() bool {
	if r.err != nil {
		return false
	}
	if n := len(r.stack); n > 0 && !r.stack[n-1].sub {
		return false
	}
	limit := r.limit()
	if r.pos >= limit {
		return false
	}
	if limit-r.pos < headerSize {
		r.err = ErrTruncated
		return false
	}
	h := readHeader(r.data[r.pos:])
	start := r.pos + headerSize
	if int(h.size) > limit-start {
		r.err = errors.Wrapf(ErrTruncated, "chunk %#x", h.id)
		return false
	}
	r.stack = append(r.stack, frame{header: h, end: start + int(h.size)})
	r.pos = start
	r.micro = nil
	return true
}

// CloseChunk skips whatever is left of the current chunk.
func (r *Reader) CloseChunk() error {
	n := len(r.stack)
	if n == 0 {
		return ErrNoChunk
	}
	r.pos = r.stack[n-1].end
	r.stack = r.stack[:n-1]
	r.micro = nil
	return nil
}

func (r *Reader) CurChunkID() uint32 {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1].id
	}
	return 0
}

func (r *Reader) CurChunkLength() uint32 {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1].size
	}
	return 0
}

func (r *Reader) ContainsChunks() bool {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1].sub
	}
	return true
}

// OpenMicroChunk reads the next micro chunk of the current leaf chunk.
func (r *Reader) OpenMicroChunk() bool {
	r.micro = nil
	if r.err != nil {
		return false
	}
	n := len(r.stack)
	if n == 0 || r.stack[n-1].sub {
		return false
	}
	end := r.stack[n-1].end
	if r.pos >= end {
		return false
	}
	b := r.data[r.pos:end]
	num, typ, tl := protowire.ConsumeTag(b)
	if tl < 0 {
		r.err = errors.Wrapf(protowire.ParseError(tl), "chunk %#x", r.stack[n-1].id)
		return false
	}
	vl := protowire.ConsumeFieldValue(num, typ, b[tl:])
	if vl < 0 {
		r.err = errors.Wrapf(protowire.ParseError(vl), "chunk %#x micro chunk %d", r.stack[n-1].id, num)
		return false
	}
	r.micro = &microChunk{id: uint32(num), typ: typ, value: b[tl : tl+vl]}
	r.pos += tl + vl
	return true
}

func (r *Reader) CurMicroChunkID() uint32 {
	if r.micro == nil {
		return 0
	}
	return r.micro.id
}

func (r *Reader) microValue(t protowire.Type) ([]byte, error) {
	if r.micro == nil {
		return nil, ErrNoMicroChunk
	}
	if r.micro.typ != t {
		return nil, errors.Errorf("micro chunk %d has wire type %d, want %d", r.micro.id, r.micro.typ, t)
	}
	return r.micro.value, nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.microValue(protowire.Fixed32Type)
	if err != nil {
		return 0, err
	}
	v, _ := protowire.ConsumeFixed32(b)
	return math32.Float32frombits(v), nil
}

func (r *Reader) ReadVec3() (vec.Vec3, error) {
	b, err := r.microValue(protowire.BytesType)
	if err != nil {
		return vec.Vec3{}, err
	}
	p, _ := protowire.ConsumeBytes(b)
	if len(p) != 12 {
		return vec.Vec3{}, errors.Errorf("micro chunk %d: vector of %d bytes", r.micro.id, len(p))
	}
	var a [3]float32
	for i := range a {
		v, _ := protowire.ConsumeFixed32(p[4*i:])
		a[i] = math32.Float32frombits(v)
	}
	return vec.VFromA(a), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.microValue(protowire.VarintType)
	if err != nil {
		return 0, err
	}
	v, _ := protowire.ConsumeVarint(b)
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadUint64()
	return uint32(v), err
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint64()
	return protowire.DecodeBool(v), err
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.microValue(protowire.BytesType)
	if err != nil {
		return "", err
	}
	s, _ := protowire.ConsumeString(b)
	return s, nil
}
