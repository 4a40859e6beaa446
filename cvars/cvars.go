// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"soundscene/conlog"
	"soundscene/cvar"
)

var (
	SoundDebug        *cvar.Cvar
	SoundDynamicCell  *cvar.Cvar
	SoundListenerCell *cvar.Cvar
	SoundLogicalCell  *cvar.Cvar
	SoundLogicalScale *cvar.Cvar
	SoundMaxVoices    *cvar.Cvar
	SoundMusicVolume  *cvar.Cvar
	SoundSfxVolume    *cvar.Cvar
	SoundWorldMax     *cvar.Cvar
	SoundWorldMin     *cvar.Cvar
)

func init() {
	SoundDebug = cvar.MustRegister("snd_debug", "0", cvar.NONE)
	SoundDynamicCell = cvar.MustRegister("snd_dynamic_cell", "100", cvar.ARCHIVE)
	SoundListenerCell = cvar.MustRegister("snd_listener_cell", "40", cvar.ARCHIVE)
	SoundLogicalCell = cvar.MustRegister("snd_logical_cell", "100", cvar.ARCHIVE)
	SoundLogicalScale = cvar.MustRegister("snd_logical_scale", "1", cvar.ARCHIVE)
	SoundMaxVoices = cvar.MustRegister("snd_max_voices", "16", cvar.ARCHIVE)
	SoundMusicVolume = cvar.MustRegister("snd_music_volume", "1", cvar.ARCHIVE)
	SoundSfxVolume = cvar.MustRegister("snd_sfx_volume", "1", cvar.ARCHIVE)
	SoundWorldMax = cvar.MustRegister("snd_world_max", "500 500 500", cvar.ARCHIVE)
	SoundWorldMin = cvar.MustRegister("snd_world_min", "-500 -500 -500", cvar.ARCHIVE)

	conlog.SetDebug(SoundDebug.Bool)
}
