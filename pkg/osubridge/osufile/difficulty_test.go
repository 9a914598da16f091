package osufile

import (
	"math"
	"testing"
)

func TestAdjustForMods(t *testing.T) {
	base := Difficulty{
		HPDrainRate:       6,
		CircleSize:        4,
		OverallDifficulty: 8,
		ApproachRate:      9,
		SliderMultiplier:  1.8,
		SliderTickRate:    1,
	}

	tests := []struct {
		name string
		mods Mods
		want Difficulty
	}{
		{"no mods", 0, base},
		{"hidden only", ModHidden, base},
		{"easy", ModEasy, Difficulty{HPDrainRate: 3, CircleSize: 2, OverallDifficulty: 4, ApproachRate: 4.5, SliderMultiplier: 1.8, SliderTickRate: 1}},
		{"hard rock caps at 10", ModHardRock, Difficulty{HPDrainRate: 8.4, CircleSize: 5.2, OverallDifficulty: 10, ApproachRate: 10, SliderMultiplier: 1.8, SliderTickRate: 1}},
		{"easy wins over hard rock", ModEasy | ModHardRock, Difficulty{HPDrainRate: 3, CircleSize: 2, OverallDifficulty: 4, ApproachRate: 4.5, SliderMultiplier: 1.8, SliderTickRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.AdjustForMods(tt.mods)
			pairs := [][2]float64{
				{got.HPDrainRate, tt.want.HPDrainRate},
				{got.CircleSize, tt.want.CircleSize},
				{got.OverallDifficulty, tt.want.OverallDifficulty},
				{got.ApproachRate, tt.want.ApproachRate},
				{got.SliderMultiplier, tt.want.SliderMultiplier},
				{got.SliderTickRate, tt.want.SliderTickRate},
			}
			for _, p := range pairs {
				if math.Abs(p[0]-p[1]) > 1e-9 {
					t.Fatalf("Expected %+v, got %+v", tt.want, got)
				}
			}
		})
	}

	if base.CircleSize != 4 {
		t.Error("AdjustForMods modified its receiver")
	}
}

func TestAdjustedWindows(t *testing.T) {
	d := Difficulty{ApproachRate: 10, OverallDifficulty: 10}
	w := d.AdjustForMods(ModEasy).Windows()
	if w.ReactionTime != 1200 || w.Hit300 != 50 {
		t.Errorf("Expected AR5/OD5 windows under Easy, got %+v", w)
	}
}

func TestParseMods(t *testing.T) {
	tests := []struct {
		in   string
		want Mods
	}{
		{"", 0},
		{"NM", 0},
		{"HR", ModHardRock},
		{"hdhr", ModHidden | ModHardRock},
		{"EZ, FL", ModEasy | ModFlashlight},
		{"+DT", ModDoubleTime},
	}
	for _, tt := range tests {
		got, err := ParseMods(tt.in)
		if err != nil {
			t.Errorf("ParseMods(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMods(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}

	for _, in := range []string{"H", "HRX", "ZZ"} {
		if _, err := ParseMods(in); err == nil {
			t.Errorf("ParseMods(%q): expected an error", in)
		}
	}

	if s := (ModHidden | ModHardRock).String(); s != "HDHR" {
		t.Errorf("Expected HDHR, got %s", s)
	}
	if s := Mods(0).String(); s != "NM" {
		t.Errorf("Expected NM, got %s", s)
	}
	if ModEasy != 2 || ModHardRock != 16 || ModFlashlight != 1024 {
		t.Error("Mod bits do not match the osu! bitmask")
	}
}
