// SPDX-License-Identifier: GPL-2.0-or-later

package clock

import (
	"sync/atomic"
	"time"
)

var (
	startTime = time.Now()
)

// Source hands out millisecond timestamps.
type Source interface {
	Now() uint32
}

// Ticks returns the milliseconds since process start.
func Ticks() uint32 {
	return uint32(time.Since(startTime) / time.Millisecond)
}

type system struct{}

func (system) Now() uint32 { return Ticks() }

// System is the wall clock source.
var System Source = system{}

// Manual is a source that only moves when told to.
type Manual struct {
	now atomic.Uint32
}

func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

func (m *Manual) Now() uint32 {
	return m.now.Load()
}

func (m *Manual) Advance(ms uint32) uint32 {
	return m.now.Add(ms)
}

func (m *Manual) Set(ms uint32) {
	m.now.Store(ms)
}
