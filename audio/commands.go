// SPDX-License-Identifier: GPL-2.0-or-later

package audio

import (
	"soundscene/cmd"
	"soundscene/conlog"
	"soundscene/cvars"
	"soundscene/math/vec"
)

func init() {
	cmd.Must(cmd.AddCommand("snd_stats", statsCmd))
	cmd.Must(cmd.AddCommand("snd_repartition", repartitionCmd))
	cmd.Must(cmd.AddCommand("snd_save", saveCmd))
	cmd.Must(cmd.AddCommand("snd_load", loadCmd))
	cmd.Must(cmd.AddCommand("snd_flush", flushCmd))
	cmd.Must(cmd.AddCommand("snd_list", listCmd))
	cmd.Must(cmd.AddCommand("snd_play", playCmd))
	cmd.Must(cmd.AddCommand("snd_stopall", stopAllCmd))
}

func statsCmd(_ cmd.Arguments) error {
	if system == nil {
		conlog.SafePrintf("sound disabled\n")
		return nil
	}
	st := system.Scene().Stats()
	conlog.SafePrintf("static %d dynamic %d audible %d playing %d\n",
		st.Static, st.Dynamic, st.Audible, st.Playing)
	conlog.SafePrintf("logical %d single shot %d listeners %d\n",
		st.Logical, st.SingleShot, st.LogicalListeners)
	conlog.SafePrintf("voices %d/%d, %d stolen\n", st.Voices, st.VoiceLimit, st.VoiceSteals)
	return nil
}

// snd_repartition [minx miny minz maxx maxy maxz]
func repartitionCmd(a cmd.Arguments) error {
	args := a.Args()[1:]
	switch len(args) {
	case 0:
		system.Scene().RePartition(
			vecFromCvar(cvars.SoundWorldMin, vec.Splat(-500)),
			vecFromCvar(cvars.SoundWorldMax, vec.Splat(500)))
	case 6:
		min := vec.Vec3{X: args[0].Float32(), Y: args[1].Float32(), Z: args[2].Float32()}
		max := vec.Vec3{X: args[3].Float32(), Y: args[4].Float32(), Z: args[5].Float32()}
		system.Scene().RePartition(min, max)
	default:
		conlog.Printf("snd_repartition [minx miny minz maxx maxy maxz]\n")
	}
	return nil
}

func saveCmd(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("snd_save <file>\n")
		return nil
	}
	if err := SaveFile(a.Argv(1).String()); err != nil {
		conlog.Printf("%v\n", err)
	}
	return nil
}

func loadCmd(a cmd.Arguments) error {
	if len(a.Args()) != 2 {
		conlog.Printf("snd_load <file>\n")
		return nil
	}
	missing, err := LoadFile(a.Argv(1).String())
	if err != nil {
		conlog.Printf("%v\n", err)
		return nil
	}
	if missing > 0 {
		conlog.Printf("snd_load: %d unresolved references\n", missing)
	}
	return nil
}

func flushCmd(_ cmd.Arguments) error {
	system.Scene().FlushScene()
	return nil
}

func listCmd(_ cmd.Arguments) error {
	names := system.BufferNames()
	for _, n := range names {
		b, _ := system.Buffer(n)
		conlog.SafePrintf("  %-20s %v\n", n, b.Duration())
	}
	conlog.SafePrintf("%d buffers\n", len(names))
	return nil
}

// snd_play <buffer> [x y z [dropoff]]
func playCmd(a cmd.Arguments) error {
	if system == nil {
		return nil
	}
	args := a.Args()[1:]
	if len(args) != 1 && len(args) != 4 && len(args) != 5 {
		conlog.Printf("snd_play <buffer> [x y z [dropoff]]\n")
		return nil
	}
	s := system.Create3DSound(args[0].String())
	if len(args) >= 4 {
		s.SetPosition(vec.Vec3{X: args[1].Float32(), Y: args[2].Float32(), Z: args[3].Float32()})
	} else {
		s.SetPosition(system.Scene().Listener().Position())
	}
	if len(args) == 5 {
		s.SetDropOffRadius(args[4].Float32())
	}
	s.AddToScene(true)
	return nil
}

func stopAllCmd(_ cmd.Arguments) error {
	system.StopAll()
	return nil
}
