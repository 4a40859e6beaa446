// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"
)

func TestClampMin(t *testing.T) {
	v := Clamp(1, 0, 10)
	if v != 1 {
		t.Errorf("Clamp(1,0,10) = %v", v)
	}
}

func TestClampMan(t *testing.T) {
	v := Clamp(1, 100, 10)
	if v != 10 {
		t.Errorf("Clamp(1,100,10) = %v", v)
	}
}

func TestClampVal(t *testing.T) {
	v := Clamp(1, 5, 10)
	if v != 5 {
		t.Errorf("Clamp(1,5,10) = %v", v)
	}
}

func TestUnit(t *testing.T) {
	for _, tc := range []struct {
		in, want float32
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{1.5, 1},
	} {
		if got := Unit(tc.in); got != tc.want {
			t.Errorf("Unit(%v) = %v want %v", tc.in, got, tc.want)
		}
	}
}
