// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !sounddebug

package sound

func debugAssert(bool, string, ...any) {}
