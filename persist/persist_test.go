// SPDX-License-Identifier: GPL-2.0-or-later

package persist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDUnique(t *testing.T) {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[uint64]bool)
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := NewID()
				mu.Lock()
				assert.False(t, seen[id])
				assert.NotZero(t, id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestProcess(t *testing.T) {
	var r Remapper
	type thing struct{ name string }
	a, b := &thing{"a"}, &thing{"b"}
	r.Register(30, a)
	r.Register(10, b)
	r.Register(0, b)

	var got []string
	fix := func(obj any) { got = append(got, obj.(*thing).name) }
	r.Request(10, fix)
	r.Request(30, fix)
	r.Request(20, fix)
	r.Request(0, fix)

	assert.Equal(t, 1, r.Process())
	assert.Equal(t, []string{"b", "a"}, got)

	got = nil
	r.Request(10, fix)
	assert.Equal(t, 1, r.Process())
	assert.Empty(t, got)
}
