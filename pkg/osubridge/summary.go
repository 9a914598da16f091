package osubridge

import (
	"fmt"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge/osufile"
)

// Summary is a flat overview of a beatmap, used for listings.
type Summary struct {
	Title          string  `json:"title"`
	Artist         string  `json:"artist"`
	Creator        string  `json:"creator"`
	DifficultyName string  `json:"difficultyName"`
	Mode           string  `json:"mode"`
	Version        uint32  `json:"version"`
	AudioFilename  string  `json:"audioFilename"`
	AudioLeadIn    uint32  `json:"audioLeadIn"`
	BeatmapID      int32   `json:"beatmapId"`
	BeatmapSetID   int32   `json:"beatmapSetId"`
	HitObjects     int     `json:"hitObjects"`
	MaxCombo       int     `json:"maxCombo"`
	LengthMs       int32   `json:"lengthMs"`
	MinBPM         float64 `json:"minBpm"`
	MaxBPM         float64 `json:"maxBpm"`

	Mods       string             `json:"mods"`
	Difficulty osufile.Difficulty `json:"difficulty"`
	Windows    osufile.Windows    `json:"windows"`
	Tags       []string           `json:"tags"`
}

// Summary computes the overview from the current model.
func (b *Beatmap) Summary() Summary {
	return b.SummaryFor(0)
}

// SummaryFor is Summary with the difficulty and hit windows adjusted for mods.
func (b *Beatmap) SummaryFor(mods osufile.Mods) Summary {
	m := b.m
	diff := m.Difficulty.AdjustForMods(mods)
	lo, hi := m.BPMRange()
	s := Summary{
		Title:          m.Metadata.Title,
		Artist:         m.Metadata.Artist,
		Creator:        m.Metadata.Creator,
		DifficultyName: m.Metadata.DifficultyName,
		Mode:           m.Mode.String(),
		Version:        m.Version,
		AudioFilename:  m.AudioFilename,
		AudioLeadIn:    m.AudioLeadIn,
		BeatmapID:      m.Metadata.BeatmapID,
		BeatmapSetID:   m.Metadata.BeatmapSetID,
		HitObjects:     len(m.HitObjects),
		MaxCombo:       m.MaxComboLength(),
		MinBPM:         lo,
		MaxBPM:         hi,
		Mods:           mods.String(),
		Difficulty:     diff,
		Windows:        diff.Windows(),
		Tags:           append([]string(nil), m.Metadata.Tags...),
	}
	if n := len(m.HitObjects); n > 0 {
		first, last := m.HitObjects[0], m.HitObjects[n-1]
		s.LengthMs = m.EndTimeOf(last) - first.Time
	}
	return s
}

// DisplayName formats "Artist - Title [Difficulty]" the way osu! lists maps.
func (s Summary) DisplayName() string {
	return fmt.Sprintf("%s - %s [%s]", s.Artist, s.Title, s.DifficultyName)
}
