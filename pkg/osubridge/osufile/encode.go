package osufile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrLineBreak is returned by Encode when a text field holds a CR or LF, which
// would end the line it is written on.
var ErrLineBreak = errors.New("line break in text field")

// Encode writes b as .osu text. Decoding the output yields a model equal to b.
// Nothing is written when a text field contains a line break.
func Encode(w io.Writer, b *Beatmap) error {
	if err := checkText(b); err != nil {
		return err
	}
	e := &encoder{w: bufio.NewWriter(w)}
	e.line("%s%d", headerPrefix, b.Version)

	e.section("General")
	e.line("AudioFilename: %s", b.AudioFilename)
	e.line("AudioLeadIn: %d", b.AudioLeadIn)
	e.line("PreviewTime: %d", b.PreviewTime)
	e.line("Countdown: %d", b.Countdown)
	e.line("SampleSet: %s", b.SampleSet)
	e.line("StackLeniency: %s", ftoa(b.StackLeniency))
	e.line("Mode: %d", b.Mode)
	e.line("LetterboxInBreaks: %s", btoa(b.LetterboxInBreaks))
	e.line("WidescreenStoryboard: %s", btoa(b.WidescreenStoryboard))
	e.line("EpilepsyWarning: %s", btoa(b.EpilepsyWarning))
	e.line("SpecialStyle: %s", btoa(b.SpecialStyle))
	e.line("SamplesMatchPlaybackRate: %s", btoa(b.SamplesMatchPlaybackRate))

	e.section("Editor")
	if len(b.Editor.Bookmarks) > 0 {
		marks := make([]string, len(b.Editor.Bookmarks))
		for i, m := range b.Editor.Bookmarks {
			marks[i] = strconv.Itoa(int(m))
		}
		e.line("Bookmarks: %s", strings.Join(marks, ","))
	}
	e.line("DistanceSpacing: %s", ftoa(b.Editor.DistanceSpacing))
	e.line("BeatDivisor: %d", b.Editor.BeatDivisor)
	e.line("GridSize: %d", b.Editor.GridSize)
	e.line("TimelineZoom: %s", ftoa(b.Editor.TimelineZoom))

	m := b.Metadata
	e.section("Metadata")
	e.line("Title:%s", m.Title)
	e.line("TitleUnicode:%s", m.TitleUnicode)
	e.line("Artist:%s", m.Artist)
	e.line("ArtistUnicode:%s", m.ArtistUnicode)
	e.line("Creator:%s", m.Creator)
	e.line("Version:%s", m.DifficultyName)
	e.line("Source:%s", m.Source)
	if len(m.Tags) > 0 {
		e.line("Tags:%s", strings.Join(m.Tags, " "))
	}
	e.line("BeatmapID:%d", m.BeatmapID)
	e.line("BeatmapSetID:%d", m.BeatmapSetID)

	d := b.Difficulty
	e.section("Difficulty")
	e.line("HPDrainRate:%s", ftoa(d.HPDrainRate))
	e.line("CircleSize:%s", ftoa(d.CircleSize))
	e.line("OverallDifficulty:%s", ftoa(d.OverallDifficulty))
	e.line("ApproachRate:%s", ftoa(d.ApproachRate))
	e.line("SliderMultiplier:%s", ftoa(d.SliderMultiplier))
	e.line("SliderTickRate:%s", ftoa(d.SliderTickRate))

	e.section("Events")
	for _, ev := range b.Events {
		switch ev.Kind {
		case EventBackground:
			e.line("0,%d,\"%s\",%d,%d", ev.StartTime, ev.Filename, ev.XOffset, ev.YOffset)
		case EventVideo:
			e.line("1,%d,\"%s\",%d,%d", ev.StartTime, ev.Filename, ev.XOffset, ev.YOffset)
		case EventBreak:
			e.line("2,%d,%d", ev.StartTime, ev.EndTime)
		default:
			e.line("%s", ev.Raw)
		}
	}

	e.section("TimingPoints")
	for _, tp := range b.TimingPoints {
		e.line("%s,%s,%d,%d,%d,%d,%s,%d",
			ftoa(tp.Time), ftoa(tp.BeatLength), tp.Meter, tp.SampleSet,
			tp.SampleIndex, tp.Volume, btoa(tp.Uninherited), tp.Effects)
	}

	if c := b.Colors; len(c.Combo) > 0 || c.SliderTrackOverride != nil || c.SliderBorder != nil {
		e.section("Colours")
		for i, col := range c.Combo {
			e.line("Combo%d : %s", i+1, col)
		}
		if c.SliderTrackOverride != nil {
			e.line("SliderTrackOverride : %s", *c.SliderTrackOverride)
		}
		if c.SliderBorder != nil {
			e.line("SliderBorder : %s", *c.SliderBorder)
		}
	}

	e.section("HitObjects")
	for _, h := range b.HitObjects {
		e.line("%s", encodeHitObject(h))
	}
	return e.w.Flush()
}

func checkText(b *Beatmap) error {
	check := func(name, v string) error {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("encode %s %q: %w", name, v, ErrLineBreak)
		}
		return nil
	}

	m := b.Metadata
	named := [][2]string{
		{"AudioFilename", b.AudioFilename},
		{"Title", m.Title},
		{"TitleUnicode", m.TitleUnicode},
		{"Artist", m.Artist},
		{"ArtistUnicode", m.ArtistUnicode},
		{"Creator", m.Creator},
		{"Version", m.DifficultyName},
		{"Source", m.Source},
		{"Tags", strings.Join(m.Tags, " ")},
	}
	for _, f := range named {
		if err := check(f[0], f[1]); err != nil {
			return err
		}
	}
	for _, ev := range b.Events {
		if err := check("event", ev.Filename+ev.Raw); err != nil {
			return err
		}
	}
	for _, h := range b.HitObjects {
		if err := check("hit sample filename", h.Sample.Filename); err != nil {
			return err
		}
	}
	return nil
}

type encoder struct {
	w *bufio.Writer
}

// line ignores write errors; bufio.Writer keeps the first one for Flush.
func (e *encoder) line(format string, args ...any) {
	fmt.Fprintf(e.w, format, args...)
	e.w.WriteString("\r\n")
}

func (e *encoder) section(name string) {
	e.w.WriteString("\r\n")
	e.line("[%s]", name)
}

func encodeHitObject(h HitObject) string {
	typ := uint32(h.ComboSkip&7) << 4
	if h.NewCombo {
		typ |= typeNewCombo
	}
	var sb strings.Builder
	switch h.Kind {
	case KindSlider:
		typ |= typeSlider
	case KindSpinner:
		typ |= typeSpinner
	case KindHold:
		typ |= typeHold
	default:
		typ |= typeCircle
	}
	fmt.Fprintf(&sb, "%d,%d,%d,%d,%d", h.X, h.Y, h.Time, typ, h.HitSound)

	switch h.Kind {
	case KindSlider:
		s := h.Slider
		if s == nil {
			s = &SliderParams{Curve: CurveBezier, Slides: 1}
		}
		path := []string{string(s.Curve)}
		for _, p := range s.Points {
			path = append(path, fmt.Sprintf("%d:%d", p.X, p.Y))
		}
		sounds := make([]string, len(s.EdgeSounds))
		for i, v := range s.EdgeSounds {
			sounds[i] = strconv.Itoa(int(v))
		}
		sets := make([]string, len(s.EdgeSets))
		for i, v := range s.EdgeSets {
			sets[i] = fmt.Sprintf("%d:%d", v.Normal, v.Addition)
		}
		fmt.Fprintf(&sb, ",%s,%d,%s,%s,%s,%s", strings.Join(path, "|"), s.Slides, ftoa(s.Length),
			strings.Join(sounds, "|"), strings.Join(sets, "|"), encodeHitSample(h.Sample))
	case KindSpinner:
		fmt.Fprintf(&sb, ",%d,%s", h.EndTime, encodeHitSample(h.Sample))
	case KindHold:
		fmt.Fprintf(&sb, ",%d:%s", h.EndTime, encodeHitSample(h.Sample))
	default:
		fmt.Fprintf(&sb, ",%s", encodeHitSample(h.Sample))
	}
	return sb.String()
}

func encodeHitSample(s HitSample) string {
	return fmt.Sprintf("%d:%d:%d:%d:%s", s.Normal, s.Addition, s.Index, s.Volume, s.Filename)
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func btoa(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
