// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/mainthread/v2"

	"soundscene/audio"
	"soundscene/cbuf"
	"soundscene/clock"
	"soundscene/cmd"
	"soundscene/commandline"
	"soundscene/config"
	"soundscene/conlog"
	"soundscene/cvar"
	"soundscene/cvars"
	"soundscene/device"
	"soundscene/device/beepdev"
	"soundscene/device/nulldev"
	"soundscene/gametime"
	"soundscene/sound"
)

const sampleRate = beep.SampleRate(44100)

func main() {
	flag.Parse()
	mainthread.Run(func() {
		if err := run(); err != nil {
			log.Fatal(err)
		}
	})
}

func run() error {
	if commandline.ConsoleDebug() {
		cvars.SoundDebug.SetByString("1")
	}
	if f := commandline.ConfigFile(); f != "" {
		if err := config.Load(f); err != nil {
			return err
		}
	}

	var clk clock.Source = clock.System
	var manual *clock.Manual
	dev, err := openDevice()
	if err != nil {
		conlog.Printf("%v, continuing without sound output\n", err)
		dev = nil
	}
	if dev == nil {
		manual = clock.NewManual(0)
		clk = manual
	}
	sys := audio.Init(deviceOrNull(dev), clk)
	defer audio.Shutdown()
	if err := registerBuffers(sys, dev); err != nil {
		return err
	}

	if f := commandline.LoadFile(); f != "" {
		missing, err := audio.LoadFile(f)
		if err != nil {
			return err
		}
		conlog.Printf("loaded %s, %d unresolved references\n", f, missing)
	}
	d := newDemo(sys, commandline.Seed())
	if commandline.Populate() {
		d.populate(commandline.PopulateNum())
	}
	console := newConsole()
	console.AddText(commandline.Exec() + "\n")

	frameTime := uint32(max(commandline.FrameTime(), 1))
	var tick <-chan time.Time
	if manual == nil {
		t := time.NewTicker(time.Duration(frameTime) * time.Millisecond)
		defer t.Stop()
		tick = t.C
	}
	gt := gametime.New(clk)
	for commandline.Frames() == 0 || gt.FrameCount() < commandline.Frames() {
		if tick != nil {
			<-tick
		} else {
			manual.Advance(frameTime)
		}
		if !gt.UpdateTime(frameTime / 2) {
			continue
		}
		console.Execute()
		d.step(gt.FrameCount(), gt.FrameTime())
		sys.Update(gt.FrameTime())
		if gt.FrameCount()%100 == 0 {
			console.AddText("snd_stats\n")
		}
	}
	console.Execute()

	if f := commandline.SaveFile(); f != "" {
		return audio.SaveFile(f)
	}
	return nil
}

// openDevice returns nil without error when sound is switched off.
func openDevice() (*beepdev.Device, error) {
	if !commandline.Sound() {
		return nil, nil
	}
	var dev *beepdev.Device
	err := mainthread.CallErr(func() error {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/30)); err != nil {
			return err
		}
		dev = beepdev.New(beepdev.Options{
			SampleRate: sampleRate,
			Voices:     int(cvars.SoundMaxVoices.Value()),
			Lock:       speaker.Lock,
			Unlock:     speaker.Unlock,
		})
		speaker.Play(dev.Streamer())
		return nil
	})
	return dev, err
}

func deviceOrNull(dev *beepdev.Device) device.Device {
	if dev == nil {
		return nulldev.New(int(cvars.SoundMaxVoices.Value()))
	}
	return dev
}

var tones = []struct {
	name   string
	freq   float64
	length time.Duration
}{
	{"hum", 110, 2 * time.Second},
	{"beep", 440, 300 * time.Millisecond},
	{"chirp", 880, 150 * time.Millisecond},
}

func registerBuffers(sys *sound.System, dev *beepdev.Device) error {
	if dev == nil {
		for _, t := range tones {
			sys.RegisterBuffer(nulldev.NewBuffer(t.name, t.length))
		}
		return nil
	}
	if f := commandline.WavFile(); f != "" {
		r, err := os.Open(f)
		if err != nil {
			return err
		}
		defer r.Close()
		b, err := dev.LoadWAV("wav", r)
		if err != nil {
			return err
		}
		sys.RegisterBuffer(b)
	}
	for _, t := range tones {
		b, err := dev.Tone(t.name, t.freq, t.length)
		if err != nil {
			return err
		}
		sys.RegisterBuffer(b)
	}
	return nil
}

func newConsole() *cbuf.CommandBuffer {
	c := &cbuf.CommandBuffer{}
	c.SetCommandExecutors([]cbuf.Efunc{
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return cmd.Execute(a)
		},
		func(_ *cbuf.CommandBuffer, a cmd.Arguments) (bool, error) {
			return cvar.Execute(a)
		},
	})
	return c
}
