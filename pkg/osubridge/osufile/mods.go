package osufile

import (
	"fmt"
	"strings"
)

// Mods is the osu! mod bitmask, as used by the web API and replays.
type Mods uint32

const (
	ModNoFail Mods = 1 << iota
	ModEasy
	ModTouchDevice
	ModHidden
	ModHardRock
	ModSuddenDeath
	ModDoubleTime
	ModRelax
	ModHalfTime
	ModNightcore
	ModFlashlight
)

var modAcronyms = []struct {
	mod  Mods
	name string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModTouchDevice, "TD"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModNightcore, "NC"},
	{ModFlashlight, "FL"},
}

func (m Mods) Has(mod Mods) bool { return m&mod == mod }

// String joins the acronyms of the set mods, e.g. "HDHR". No mods is "NM".
func (m Mods) String() string {
	if m == 0 {
		return "NM"
	}
	var sb strings.Builder
	for _, a := range modAcronyms {
		if m.Has(a.mod) {
			sb.WriteString(a.name)
		}
	}
	return sb.String()
}

// ParseMods reads acronyms such as "HDHR", "hd,hr" or "EZ FL".
func ParseMods(s string) (Mods, error) {
	s = strings.ToUpper(strings.NewReplacer(",", "", " ", "", "+", "").Replace(s))
	if s == "" || s == "NM" {
		return 0, nil
	}
	if len(s)%2 != 0 {
		return 0, fmt.Errorf("invalid mods %q", s)
	}
	var m Mods
	for i := 0; i < len(s); i += 2 {
		found := false
		for _, a := range modAcronyms {
			if a.name == s[i:i+2] {
				m |= a.mod
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown mod %q", s[i:i+2])
		}
	}
	return m, nil
}
