// SPDX-License-Identifier: GPL-2.0-or-later

package rand

import "testing"

func TestDeterministic(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("step %d: %v != %v", i, x, y)
		}
	}
	a.NewSeed(7)
	c := New(7)
	if x, y := a.Intn(1000), c.Intn(1000); x != y {
		t.Errorf("NewSeed did not restart: %v != %v", x, y)
	}
}

func TestRange(t *testing.T) {
	g := New(3)
	for i := 0; i < 1000; i++ {
		f := g.Float32()
		if f < 0 || f >= 1 {
			t.Fatalf("Float32() = %v", f)
		}
		r := g.Range(-500, 500)
		if r < -500 || r > 500 {
			t.Fatalf("Range(-500, 500) = %v", r)
		}
		if n := g.Intn(5); n < 0 || n >= 5 {
			t.Fatalf("Intn(5) = %v", n)
		}
	}
}

func TestBool(t *testing.T) {
	g := New(11)
	for i := 0; i < 100; i++ {
		if g.Bool(0) {
			t.Fatalf("Bool(0) = true")
		}
		if !g.Bool(1) {
			t.Fatalf("Bool(1) = false")
		}
	}
}
