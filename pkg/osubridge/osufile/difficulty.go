package osufile

// Windows holds the timing windows derived from a difficulty, in ms.
type Windows struct {
	ReactionTime float64 `json:"reactionTime"`
	Hit300       float64 `json:"hit300"`
	Hit100       float64 `json:"hit100"`
	Hit50        float64 `json:"hit50"`
}

// MapDifficultyRange maps a 0-10 difficulty value linearly onto [lo, mid]
// below 5 and [mid, hi] above it.
func MapDifficultyRange(diff, lo, mid, hi float64) float64 {
	switch {
	case diff > 5:
		return mid + (hi-mid)*(diff-5)/5
	case diff < 5:
		return mid - (mid-lo)*(5-diff)/5
	}
	return mid
}

// Windows computes the approach (reaction) time from AR and the hit windows
// from OD.
func (d Difficulty) Windows() Windows {
	return Windows{
		ReactionTime: MapDifficultyRange(d.ApproachRate, 1800, 1200, 450),
		Hit300:       MapDifficultyRange(d.OverallDifficulty, 80, 50, 20),
		Hit100:       MapDifficultyRange(d.OverallDifficulty, 140, 100, 60),
		Hit50:        MapDifficultyRange(d.OverallDifficulty, 200, 150, 100),
	}
}

// AdjustForMods applies Easy (halves AR, CS, HP and OD) or HardRock (CS x1.3,
// the others x1.4, capped at 10). Easy wins when both are set. Slider
// settings are unchanged.
func (d Difficulty) AdjustForMods(m Mods) Difficulty {
	switch {
	case m.Has(ModEasy):
		d.ApproachRate /= 2
		d.CircleSize /= 2
		d.HPDrainRate /= 2
		d.OverallDifficulty /= 2
	case m.Has(ModHardRock):
		d.ApproachRate = min(10, d.ApproachRate*1.4)
		d.CircleSize = min(10, d.CircleSize*1.3)
		d.HPDrainRate = min(10, d.HPDrainRate*1.4)
		d.OverallDifficulty = min(10, d.OverallDifficulty*1.4)
	}
	return d
}
