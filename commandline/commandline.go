package commandline

import (
	"flag"
	"fmt"
	"strconv"
)

var (
	conDebug bool
	noSound  bool

	// number of random emitters the demo scene is populated with
	populate = boolInt{false, 64}

	frames    int
	frameTime int
	seed      int

	configFile string
	execLine   string
	loadFile   string
	saveFile   string
	wavFile    string
)

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

func init() {
	flag.BoolVar(&conDebug, "condebug", false, "enable console debugging")
	flag.BoolVar(&noSound, "nosound", false, "Disable sound output")

	flag.Var(&populate, "populate", "Populate the scene with random emitters, optional number of emitters")

	flag.IntVar(&frames, "frames", 600, "number of frames to simulate, 0 runs forever")
	flag.IntVar(&frameTime, "frametime", 33, "milliseconds per frame")
	flag.IntVar(&seed, "seed", 1, "seed of the demo population")

	flag.StringVar(&configFile, "config", "", "toml file applied to the cvars")
	flag.StringVar(&execLine, "exec", "", "console commands run after startup, separated by ';'")
	flag.StringVar(&loadFile, "load", "", "load the static sounds from this file")
	flag.StringVar(&saveFile, "save", "", "save the static sounds to this file on exit")
	flag.StringVar(&wavFile, "wav", "", "wav file used by the demo emitters instead of tones")
}

func ConsoleDebug() bool {
	return conDebug
}

func Sound() bool {
	return !noSound
}

func Populate() bool {
	return populate.set
}

func PopulateNum() int {
	return populate.num
}

func Frames() int {
	return frames
}

func FrameTime() int {
	return frameTime
}

func Seed() uint32 {
	return uint32(seed)
}

func ConfigFile() string {
	return configFile
}

func Exec() string {
	return execLine
}

func LoadFile() string {
	return loadFile
}

func SaveFile() string {
	return saveFile
}

func WavFile() string {
	return wavFile
}
