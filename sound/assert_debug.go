// SPDX-License-Identifier: GPL-2.0-or-later

//go:build sounddebug

package sound

import "fmt"

func debugAssert(cond bool, format string, v ...any) {
	if !cond {
		panic(fmt.Sprintf("sound: "+format, v...))
	}
}
