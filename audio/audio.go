// SPDX-License-Identifier: GPL-2.0-or-later

// Package audio holds the process wide sound system and binds it to the
// console variables and commands.
package audio

import (
	"os"

	"github.com/pkg/errors"

	"soundscene/clock"
	"soundscene/conlog"
	"soundscene/cvar"
	"soundscene/cvars"
	"soundscene/device"
	"soundscene/math/vec"
	"soundscene/persist"
	"soundscene/sound"
)

var (
	system *sound.System
)

// Init replaces the current system with one on dev. A nil dev leaves sound
// disabled, every sound call becomes a no-op.
func Init(dev device.Device, clk clock.Source) *sound.System {
	Shutdown()
	if dev == nil {
		conlog.Printf("Sound disabled\n")
		return nil
	}
	system = sound.NewSystem(dev, clk, configFromCvars(), int(cvars.SoundMaxVoices.Value()))
	system.Scene().SetGlobalScale(cvars.SoundLogicalScale.Value())
	onVolumeChange(cvars.SoundSfxVolume)
	onVolumeChange(cvars.SoundMusicVolume)
	conlog.DPrintf("Sound initialized with %d voices\n", system.Voices().Limit())
	return system
}

// Get returns the system, nil while sound is disabled.
func Get() *sound.System {
	return system
}

func Shutdown() {
	system.Shutdown()
	system = nil
}

func configFromCvars() sound.Config {
	cfg := sound.DefaultConfig()
	cfg.Min = vecFromCvar(cvars.SoundWorldMin, cfg.Min)
	cfg.Max = vecFromCvar(cvars.SoundWorldMax, cfg.Max)
	cfg.DynamicCell = cvars.SoundDynamicCell.Value()
	cfg.LogicalCell = cvars.SoundLogicalCell.Value()
	cfg.ListenerCell = cvars.SoundListenerCell.Value()
	return cfg
}

func vecFromCvar(cv *cvar.Cvar, def vec.Vec3) vec.Vec3 {
	f := cv.Floats()
	if len(f) != 3 {
		conlog.Printf("%s needs three values, got \"%s\"\n", cv.Name(), cv.String())
		return def
	}
	return vec.VFromA([3]float32{f[0], f[1], f[2]})
}

func init() {
	cvars.SoundSfxVolume.SetCallback(onVolumeChange)
	cvars.SoundMusicVolume.SetCallback(onVolumeChange)
	cvars.SoundMaxVoices.SetCallback(func(cv *cvar.Cvar) {
		system.Voices().SetLimit(int(cv.Value()))
	})
	cvars.SoundLogicalScale.SetCallback(func(cv *cvar.Cvar) {
		system.Scene().SetGlobalScale(cv.Value())
	})
	onCells := func(*cvar.Cvar) {
		system.Scene().SetCellSizes(
			cvars.SoundDynamicCell.Value(),
			cvars.SoundLogicalCell.Value(),
			cvars.SoundListenerCell.Value())
	}
	cvars.SoundDynamicCell.SetCallback(onCells)
	cvars.SoundLogicalCell.SetCallback(onCells)
	cvars.SoundListenerCell.SetCallback(onCells)
}

func onVolumeChange(cv *cvar.Cvar) {
	v := cv.Value()
	if v > 1 {
		cv.SetByString("1")
		// recursion so exit early
		return
	}
	if v < 0 {
		cv.SetByString("0")
		// recursion so exit early
		return
	}
	c := sound.SoundEffect
	if cv == cvars.SoundMusicVolume {
		c = sound.Music
	}
	system.SetVolume(c, v)
}

// SaveFile writes the static sound population to path.
func SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "snd_save")
	}
	if err := system.Scene().SaveStatic(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "snd_save")
}

// LoadFile adds the static sounds saved in path. It returns the number of
// references that could not be resolved.
func LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "snd_load")
	}
	defer f.Close()
	remap := &persist.Remapper{}
	if err := system.Scene().LoadStatic(f, remap); err != nil {
		return 0, err
	}
	system.RenderObjects().RegisterLive(remap)
	return remap.Process(), nil
}
