package conlog

import (
	"log"
)

var (
	p     func(string, ...interface{}) = log.Printf
	sp    func(string, ...interface{}) = log.Printf
	debug func() bool
)

func SetPrintf(f func(string, ...interface{})) {
	p = f
}
func SetSavePrintf(f func(string, ...interface{})) {
	sp = f
}

// SetDebug installs the predicate that gates DPrintf.
func SetDebug(f func() bool) {
	debug = f
}

func Printf(format string, v ...interface{}) {
	p(format, v...)
}

func SafePrintf(format string, v ...interface{}) {
	sp(format, v...)
}

// DPrintf prints only while developer output is enabled.
func DPrintf(format string, v ...interface{}) {
	if debug == nil || !debug() {
		return
	}
	p(format, v...)
}
