// SPDX-License-Identifier: GPL-2.0-or-later

package chunkio

import (
	"io"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"soundscene/math/vec"
)

type openChunk struct {
	id     uint32
	offset int
	sub    bool
	micro  bool
}

// Writer builds a chunk stream in memory. Errors are sticky and reported by
// EndChunk, Err and WriteTo.
type Writer struct {
	buf  []byte
	open []openChunk
	err  error
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) BeginChunk(id uint32) {
	if w.err != nil {
		return
	}
	if n := len(w.open); n > 0 {
		p := &w.open[n-1]
		if p.micro {
			w.err = errors.Errorf("chunk %#x mixes micro chunks and sub chunks", p.id)
			return
		}
		p.sub = true
	}
	w.open = append(w.open, openChunk{id: id, offset: len(w.buf)})
	w.buf = append(w.buf, make([]byte, headerSize)...)
}

func (w *Writer) EndChunk() error {
	if w.err != nil {
		return w.err
	}
	n := len(w.open)
	if n == 0 {
		w.err = ErrNoChunk
		return w.err
	}
	c := w.open[n-1]
	w.open = w.open[:n-1]
	size := len(w.buf) - c.offset - headerSize
	if size > sizeMask {
		w.err = errors.Errorf("chunk %#x too large: %d bytes", c.id, size)
		return w.err
	}
	header{id: c.id, size: uint32(size), sub: c.sub}.put(w.buf[c.offset:])
	return nil
}

func (w *Writer) micro(id uint32, t protowire.Type) bool {
	if w.err != nil {
		return false
	}
	n := len(w.open)
	if n == 0 {
		w.err = ErrNoChunk
		return false
	}
	p := &w.open[n-1]
	if p.sub {
		w.err = errors.Errorf("chunk %#x mixes micro chunks and sub chunks", p.id)
		return false
	}
	if id == 0 || id > uint32(protowire.MaxValidNumber) {
		w.err = errors.Errorf("invalid micro chunk id %d", id)
		return false
	}
	p.micro = true
	w.buf = protowire.AppendTag(w.buf, protowire.Number(id), t)
	return true
}

func (w *Writer) WriteFloat32(id uint32, v float32) {
	if w.micro(id, protowire.Fixed32Type) {
		w.buf = protowire.AppendFixed32(w.buf, math32.Float32bits(v))
	}
}

func (w *Writer) WriteVec3(id uint32, v vec.Vec3) {
	if w.micro(id, protowire.BytesType) {
		var b []byte
		b = protowire.AppendFixed32(b, math32.Float32bits(v.X))
		b = protowire.AppendFixed32(b, math32.Float32bits(v.Y))
		b = protowire.AppendFixed32(b, math32.Float32bits(v.Z))
		w.buf = protowire.AppendBytes(w.buf, b)
	}
}

func (w *Writer) WriteUint32(id uint32, v uint32) {
	w.WriteUint64(id, uint64(v))
}

func (w *Writer) WriteUint64(id uint32, v uint64) {
	if w.micro(id, protowire.VarintType) {
		w.buf = protowire.AppendVarint(w.buf, v)
	}
}

func (w *Writer) WriteBool(id uint32, v bool) {
	w.WriteUint64(id, protowire.EncodeBool(v))
}

func (w *Writer) WriteString(id uint32, v string) {
	if w.micro(id, protowire.BytesType) {
		w.buf = protowire.AppendString(w.buf, v)
	}
}

// Bytes returns the finished stream. It is only complete once every chunk
// has been ended.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	if len(w.open) != 0 {
		return 0, errors.Errorf("chunk %#x not ended", w.open[len(w.open)-1].id)
	}
	n, err := out.Write(w.buf)
	return int64(n), errors.Wrap(err, "writing chunks")
}
