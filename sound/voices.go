// SPDX-License-Identifier: GPL-2.0-or-later

package sound

import (
	"github.com/pkg/errors"

	"soundscene/conlog"
	"soundscene/device"
)

// Voices hands out the fixed number of device voices. When all are taken
// the holder ranking lowest gives its voice up to a higher ranked request.
// Rank is the designer priority, then the runtime priority.
type Voices struct {
	dev     device.Device
	limit   int
	holders members[*AudibleSound]
	steals  int
}

func newVoices(dev device.Device, limit int) *Voices {
	v := &Voices{dev: dev}
	v.SetLimit(limit)
	return v
}

func ranksBelow(a, b *AudibleSound) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.runtimePriority < b.runtimePriority
}

func (v *Voices) Limit() int {
	if v == nil {
		return 0
	}
	return v.limit
}

// SetLimit changes the number of voices, holders beyond the new limit lose
// their voice lowest rank first.
func (v *Voices) SetLimit(n int) {
	if v == nil {
		return
	}
	if v.dev != nil {
		n = min(n, v.dev.Voices())
	}
	v.limit = max(n, 0)
	for v.holders.len() > v.limit {
		v.lowest().freeVoice()
	}
}

func (v *Voices) InUse() int {
	if v == nil {
		return 0
	}
	return v.holders.len()
}

// Steals returns how often a voice was taken from a lower ranked sound.
func (v *Voices) Steals() int {
	if v == nil {
		return 0
	}
	return v.steals
}

func (v *Voices) lowest() *AudibleSound {
	var r *AudibleSound
	for _, s := range v.holders.items {
		if r == nil || ranksBelow(s, r) {
			r = s
		}
	}
	return r
}

func (v *Voices) acquire(s *AudibleSound) device.Voice {
	if v == nil || v.dev == nil || v.limit == 0 {
		return nil
	}
	if v.holders.len() >= v.limit {
		victim := v.lowest()
		if victim == nil || !ranksBelow(victim, s) {
			return nil
		}
		conlog.DPrintf("sound: %s takes the voice of %s\n", s.name, victim.name)
		victim.freeVoice()
		v.steals++
	}
	dv, err := v.dev.Open(s.buffer)
	if err != nil {
		if !errors.Is(err, device.ErrNoVoice) {
			conlog.Printf("sound: %s: %v\n", s.name, err)
		}
		return nil
	}
	v.holders.add(s)
	return dv
}

func (v *Voices) release(s *AudibleSound) {
	if v == nil || !v.holders.remove(s) {
		return
	}
	s.voice.Close()
}

// reprioritize gives at most one voice per frame to the best ranked
// playing sound that is audible but has none.
func (v *Voices) reprioritize(candidates []*AudibleSound) {
	if v == nil {
		return
	}
	var best *AudibleSound
	for _, s := range candidates {
		if s.state != Playing || s.culled || s.voice != nil || s.buffer == nil {
			continue
		}
		if best == nil || ranksBelow(best, s) {
			best = s
		}
	}
	if best != nil {
		best.acquireVoice()
	}
}
