// SPDX-License-Identifier: GPL-2.0-or-later

// Package config applies TOML configuration files to the cvar registry.
//
// Keys are cvar names. Tables are flattened with an underscore, so
//
//	[snd]
//	max_voices = 24
//
// sets snd_max_voices. Arrays are joined with spaces which is the format
// vector cvars expect.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"soundscene/conlog"
	"soundscene/cvar"
)

// Load reads the file at path and applies it.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config %s", path)
	}
	return errors.Wrapf(Apply(data), "config %s", path)
}

// Apply sets every cvar named in the TOML document. Unknown names are
// reported and skipped.
func Apply(data []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "parsing toml")
	}
	flat := make(map[string]string)
	flatten("", doc, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cv, ok := cvar.Get(k)
		if !ok {
			conlog.Printf("config: unknown variable %s\n", k)
			continue
		}
		cv.SetByString(flat[k])
	}
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		name := k
		if prefix != "" {
			name = prefix + "_" + k
		}
		switch t := v.(type) {
		case map[string]any:
			flatten(name, t, out)
		case []any:
			parts := make([]string, len(t))
			for i, e := range t {
				parts[i] = scalar(e)
			}
			out[name] = strings.Join(parts, " ")
		default:
			out[name] = scalar(t)
		}
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
