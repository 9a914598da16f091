package osufile

import (
	"math"
	"sort"
)

const (
	EffectKiai             uint8 = 1 << 0
	EffectOmitFirstBarLine uint8 = 1 << 3
)

// TimingPoint is one line of [TimingPoints]. Uninherited (red) points carry
// the beat length in ms; inherited (green) points carry a negative inverse
// slider velocity percentage.
type TimingPoint struct {
	Time        float64   `json:"time"`
	BeatLength  float64   `json:"beatLength"`
	Meter       int32     `json:"meter"`
	SampleSet   SampleSet `json:"sampleSet"`
	SampleIndex int32     `json:"sampleIndex"`
	Volume      int32     `json:"volume"`
	Uninherited bool      `json:"uninherited"`
	Effects     uint8     `json:"effects"`
}

func (tp TimingPoint) Kiai() bool { return tp.Effects&EffectKiai != 0 }

// BPM is zero for inherited points.
func (tp TimingPoint) BPM() float64 {
	if !tp.Uninherited || tp.BeatLength <= 0 {
		return 0
	}
	return 60000 / tp.BeatLength
}

// SliderVelocity is the multiplier an inherited point applies; 1 for red lines.
func (tp TimingPoint) SliderVelocity() float64 {
	if tp.Uninherited || tp.BeatLength >= 0 {
		return 1
	}
	return 100 / -tp.BeatLength
}

// TimingPointAt returns the last timing point at or before t, or the first one
// when t precedes them all. ok is false when the map has no timing points.
// TimingPoints must be sorted by time, which is how osu! writes them.
func (b *Beatmap) TimingPointAt(t float64) (tp TimingPoint, ok bool) {
	if len(b.TimingPoints) == 0 {
		return TimingPoint{}, false
	}
	i := sort.Search(len(b.TimingPoints), func(i int) bool {
		return b.TimingPoints[i].Time > t
	})
	if i > 0 {
		i--
	}
	return b.TimingPoints[i], true
}

// BPMRange returns the slowest and fastest BPM among uninherited points.
func (b *Beatmap) BPMRange() (lo, hi float64) {
	lo, hi = math.Inf(1), 0
	for _, tp := range b.TimingPoints {
		bpm := tp.BPM()
		if bpm == 0 {
			continue
		}
		lo = math.Min(lo, bpm)
		hi = math.Max(hi, bpm)
	}
	if hi == 0 {
		return 0, 0
	}
	return lo, hi
}

// TimingOffset is the correction osu! adds to every time in maps older than v5.
func (b *Beatmap) TimingOffset() int32 {
	if b.Version < 5 {
		return EarlyVersionTimingOffset
	}
	return 0
}

// ComboNumbers returns the number shown on each hit object, restarting at 1 on
// every new combo.
func (b *Beatmap) ComboNumbers() []int {
	out := make([]int, len(b.HitObjects))
	n := 0
	for i, h := range b.HitObjects {
		if i == 0 || h.NewCombo || h.Kind == KindSpinner {
			n = 0
		}
		n++
		out[i] = n
	}
	return out
}

// MaxComboLength is the longest run of objects inside one combo.
func (b *Beatmap) MaxComboLength() int {
	longest := 0
	for _, n := range b.ComboNumbers() {
		longest = max(longest, n)
	}
	return longest
}

// EndTimeOf returns when h finishes. Spinners and holds carry their end time;
// a slider's is derived from its length, repeat count, the slider multiplier
// and the timing in effect at its start, rounded up to the next ms.
func (b *Beatmap) EndTimeOf(h HitObject) int32 {
	switch h.Kind {
	case KindSpinner, KindHold:
		return max(h.Time, h.EndTime)
	case KindSlider:
		if h.Slider == nil {
			return h.Time
		}
		beatLength, sv := b.sliderTiming(float64(h.Time))
		pxPerBeat := b.Difficulty.SliderMultiplier * 100 * sv
		if beatLength <= 0 || pxPerBeat <= 0 {
			return h.Time
		}
		beats := h.Slider.Length * float64(max(h.Slider.Slides, 1)) / pxPerBeat
		return h.Time + int32(math.Ceil(beats*beatLength))
	}
	return h.Time
}

// sliderTiming returns the beat length of the red line governing t and the
// velocity of the green line after it. Objects before the first red line use
// that line's beat length.
func (b *Beatmap) sliderTiming(t float64) (beatLength, sv float64) {
	sv = 1
	for _, tp := range b.TimingPoints {
		if tp.Time > t {
			if beatLength > 0 {
				break
			}
			if tp.Uninherited && tp.BeatLength > 0 {
				beatLength = tp.BeatLength
			}
			continue
		}
		if tp.Uninherited {
			if tp.BeatLength > 0 {
				beatLength = tp.BeatLength
			}
			sv = 1
		} else {
			sv = tp.SliderVelocity()
		}
	}
	return beatLength, sv
}

// IndexAt returns the index of the object being played at t: the first
// slider, spinner or hold still running at t, or the first circle at or after
// t. Past the last object it returns the last index, and -1 for a map with no
// objects.
func (b *Beatmap) IndexAt(t int32) int {
	for i, h := range b.HitObjects {
		if h.Kind == KindCircle {
			if t <= h.Time {
				return i
			}
			continue
		}
		if t < b.EndTimeOf(h) {
			return i
		}
	}
	return len(b.HitObjects) - 1
}
