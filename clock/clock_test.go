// SPDX-License-Identifier: GPL-2.0-or-later

package clock

import (
	"testing"
)

func TestManual(t *testing.T) {
	m := NewManual(100)
	if m.Now() != 100 {
		t.Errorf("Now() = %v want 100", m.Now())
	}
	if got := m.Advance(16); got != 116 {
		t.Errorf("Advance(16) = %v want 116", got)
	}
	m.Set(5)
	if m.Now() != 5 {
		t.Errorf("Now() = %v want 5", m.Now())
	}
}

func TestSystemMonotonic(t *testing.T) {
	a := System.Now()
	b := System.Now()
	if b < a {
		t.Errorf("System clock went backwards %v -> %v", a, b)
	}
}
