// SPDX-License-Identifier: GPL-2.0-or-later

// Package chunkio implements a nested chunk file format.
//
// A chunk is an 8 byte little endian header (id, size) followed by size
// bytes of data. The top bit of size marks chunks whose data is a sequence
// of sub chunks. All other chunks hold micro chunks: small tagged scalars
// encoded as protobuf wire fields with the micro chunk id as field number.
// Readers skip chunk and micro chunk ids they do not know.
package chunkio

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	headerSize   = 8
	subChunkFlag = 1 << 31
	sizeMask     = subChunkFlag - 1
)

var (
	ErrNoChunk      = errors.New("no open chunk")
	ErrNoMicroChunk = errors.New("no open micro chunk")
	ErrTruncated    = errors.New("truncated chunk")
)

type header struct {
	id   uint32
	size uint32
	sub  bool
}

func (h header) put(b []byte) {
	size := h.size & sizeMask
	if h.sub {
		size |= subChunkFlag
	}
	binary.LittleEndian.PutUint32(b[0:4], h.id)
	binary.LittleEndian.PutUint32(b[4:8], size)
}

func readHeader(b []byte) header {
	size := binary.LittleEndian.Uint32(b[4:8])
	return header{
		id:   binary.LittleEndian.Uint32(b[0:4]),
		size: size & sizeMask,
		sub:  size&subChunkFlag != 0,
	}
}
