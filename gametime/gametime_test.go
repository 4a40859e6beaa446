// SPDX-License-Identifier: GPL-2.0-or-later

package gametime

import (
	"testing"

	"soundscene/clock"
)

func TestUpdateTime(t *testing.T) {
	c := clock.NewManual(1000)
	h := New(c)
	c.Advance(10)
	if h.UpdateTime(16) {
		t.Errorf("UpdateTime(16) after 10ms = true want false")
	}
	c.Advance(10)
	if !h.UpdateTime(16) {
		t.Fatalf("UpdateTime(16) after 20ms = false want true")
	}
	if h.FrameTime() != 20 {
		t.Errorf("FrameTime() = %v want 20", h.FrameTime())
	}
	c.Advance(5000)
	h.UpdateTime(0)
	if h.FrameTime() != maxFrameTime {
		t.Errorf("FrameTime() = %v want %v", h.FrameTime(), maxFrameTime)
	}
	h.UpdateTime(0)
	if h.FrameTime() != minFrameTime {
		t.Errorf("FrameTime() = %v want %v", h.FrameTime(), minFrameTime)
	}
	if h.FrameCount() != 3 {
		t.Errorf("FrameCount() = %v want 3", h.FrameCount())
	}
}
