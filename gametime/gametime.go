// SPDX-License-Identifier: GPL-2.0-or-later

// Package gametime turns clock readings into frame times.
package gametime

import (
	"soundscene/clock"
	"soundscene/math"
)

const (
	minFrameTime = 1
	maxFrameTime = 100
)

type GameTime struct {
	src        clock.Source
	time       uint32
	oldTime    uint32
	frameTime  uint32
	frameCount int
}

func New(src clock.Source) *GameTime {
	h := &GameTime{src: src}
	h.Reset()
	return h
}

// Reset starts measuring from now.
func (h *GameTime) Reset() {
	h.time = h.src.Now()
	h.oldTime = h.time
	h.frameTime = 0
}

func (h *GameTime) Time() uint32      { return h.time }
func (h *GameTime) OldTime() uint32   { return h.oldTime }
func (h *GameTime) FrameTime() uint32 { return h.frameTime }
func (h *GameTime) FrameCount() int   { return h.frameCount }

// UpdateTime measures the time since the last frame in milliseconds.
// It returns false while less than minFrame passed. Long stalls are
// clamped so the scene never jumps by more than a tenth of a second.
func (h *GameTime) UpdateTime(minFrame uint32) bool {
	h.time = h.src.Now()
	if h.time-h.oldTime < minFrame {
		return false
	}
	h.frameTime = math.Clamp(minFrameTime, h.time-h.oldTime, maxFrameTime)
	h.oldTime = h.time
	h.frameCount++
	return true
}
