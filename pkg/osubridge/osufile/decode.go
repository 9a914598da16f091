package osufile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const headerPrefix = "osu file format v"

// SyntaxError reports where a .osu file stopped following the grammar.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

type section int

const (
	secNone section = iota
	secGeneral
	secEditor
	secMetadata
	secDifficulty
	secEvents
	secTimingPoints
	secColours
	secHitObjects
	secUnknown
)

func sectionOf(name string) section {
	switch strings.ToLower(name) {
	case "general":
		return secGeneral
	case "editor":
		return secEditor
	case "metadata":
		return secMetadata
	case "difficulty":
		return secDifficulty
	case "events":
		return secEvents
	case "timingpoints":
		return secTimingPoints
	case "colours", "colors":
		return secColours
	case "hitobjects":
		return secHitObjects
	default:
		return secUnknown
	}
}

// DecodeFile opens path and decodes it. Open errors are returned as-is.
func DecodeFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a complete .osu file. Keys the decoder does not know are
// skipped; known keys with malformed values are a *SyntaxError.
func Decode(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 1024 * 1024
	sc.Buffer(make([]byte, 64*1024), maxLine)

	d := &decoder{sc: sc, b: Default()}
	if err := d.header(); err != nil {
		return nil, err
	}
	if err := d.body(); err != nil {
		return nil, err
	}
	return d.b, nil
}

type decoder struct {
	sc     *bufio.Scanner
	b      *Beatmap
	line   int
	sec    section
	seenAR bool
}

func (d *decoder) errorf(format string, args ...any) error {
	return &SyntaxError{Line: d.line, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) header() error {
	for d.sc.Scan() {
		d.line++
		line := strings.TrimSpace(strings.TrimPrefix(d.sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(line), headerPrefix) {
			return d.errorf("invalid .osu header %q", line)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(line[len(headerPrefix):]), 10, 32)
		if err != nil {
			return d.errorf("invalid .osu version in header %q", line)
		}
		d.b.Version = uint32(v)
		return nil
	}
	if err := d.sc.Err(); err != nil {
		return err
	}
	return &SyntaxError{Msg: "missing .osu header"}
}

func (d *decoder) body() error {
	for d.sc.Scan() {
		d.line++
		raw := strings.TrimRight(d.sc.Text(), " \t\r")
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			d.sec = sectionOf(line[1 : len(line)-1])
			continue
		}

		var err error
		switch d.sec {
		case secNone:
			err = d.errorf("unexpected %q outside of a section", line)
		case secGeneral:
			err = d.general(line)
		case secEditor:
			err = d.editor(line)
		case secMetadata:
			err = d.metadata(line)
		case secDifficulty:
			err = d.difficulty(line)
		case secEvents:
			err = d.event(line, raw)
		case secTimingPoints:
			err = d.timingPoint(line)
		case secColours:
			err = d.colour(line)
		case secHitObjects:
			err = d.hitObject(line)
		}
		if err != nil {
			return err
		}
	}
	return d.sc.Err()
}

func (d *decoder) keyValue(line string) (string, string, error) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", d.errorf("expected \"key: value\", got %q", line)
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), nil
}

func (d *decoder) general(line string) error {
	k, v, err := d.keyValue(line)
	if err != nil {
		return err
	}
	b := d.b
	switch strings.ToLower(k) {
	case "audiofilename":
		b.AudioFilename = v
	case "audioleadin":
		b.AudioLeadIn, err = d.uint32Val(k, v)
	case "previewtime":
		b.PreviewTime, err = d.int32Val(k, v)
	case "countdown":
		var n uint32
		n, err = d.rangeVal(k, v, 3)
		b.Countdown = Countdown(n)
	case "sampleset":
		s, ok := parseSampleSetName(v)
		if !ok {
			return d.errorf("invalid %s %q", k, v)
		}
		b.SampleSet = s
	case "stackleniency":
		b.StackLeniency, err = d.floatVal(k, v)
	case "mode":
		var n uint32
		n, err = d.rangeVal(k, v, uint32(ModeMania))
		b.Mode = Mode(n)
	case "letterboxinbreaks":
		b.LetterboxInBreaks, err = d.boolVal(k, v)
	case "widescreenstoryboard":
		b.WidescreenStoryboard, err = d.boolVal(k, v)
	case "epilepsywarning":
		b.EpilepsyWarning, err = d.boolVal(k, v)
	case "specialstyle":
		b.SpecialStyle, err = d.boolVal(k, v)
	case "samplesmatchplaybackrate":
		b.SamplesMatchPlaybackRate, err = d.boolVal(k, v)
	}
	return err
}

func (d *decoder) editor(line string) error {
	k, v, err := d.keyValue(line)
	if err != nil {
		return err
	}
	e := &d.b.Editor
	switch strings.ToLower(k) {
	case "bookmarks":
		e.Bookmarks = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			n, err := d.int32Val(k, p)
			if err != nil {
				return err
			}
			e.Bookmarks = append(e.Bookmarks, n)
		}
	case "distancespacing":
		e.DistanceSpacing, err = d.floatVal(k, v)
	case "beatdivisor":
		e.BeatDivisor, err = d.uint32Val(k, v)
	case "gridsize":
		e.GridSize, err = d.uint32Val(k, v)
	case "timelinezoom":
		e.TimelineZoom, err = d.floatVal(k, v)
	}
	return err
}

func (d *decoder) metadata(line string) error {
	k, v, err := d.keyValue(line)
	if err != nil {
		return err
	}
	m := &d.b.Metadata
	switch strings.ToLower(k) {
	case "title":
		m.Title = v
	case "titleunicode":
		m.TitleUnicode = v
	case "artist":
		m.Artist = v
	case "artistunicode":
		m.ArtistUnicode = v
	case "creator":
		m.Creator = v
	case "version":
		m.DifficultyName = v
	case "source":
		m.Source = v
	case "tags":
		m.Tags = strings.Fields(v)
	case "beatmapid":
		m.BeatmapID, err = d.int32Val(k, v)
	case "beatmapsetid":
		m.BeatmapSetID, err = d.int32Val(k, v)
	}
	return err
}

func (d *decoder) difficulty(line string) error {
	k, v, err := d.keyValue(line)
	if err != nil {
		return err
	}
	df := &d.b.Difficulty
	switch strings.ToLower(k) {
	case "hpdrainrate":
		df.HPDrainRate, err = d.floatVal(k, v)
	case "circlesize":
		df.CircleSize, err = d.floatVal(k, v)
	case "overalldifficulty":
		df.OverallDifficulty, err = d.floatVal(k, v)
		// Old maps have no AR and use OD for it.
		if !d.seenAR {
			df.ApproachRate = df.OverallDifficulty
		}
	case "approachrate":
		df.ApproachRate, err = d.floatVal(k, v)
		d.seenAR = true
	case "slidermultiplier":
		df.SliderMultiplier, err = d.floatVal(k, v)
	case "slidertickrate":
		df.SliderTickRate, err = d.floatVal(k, v)
	}
	return err
}

func (d *decoder) event(line, raw string) error {
	parts := splitCSV(line)
	ev := Event{Kind: EventOther, Raw: raw}
	var err error
	switch strings.ToLower(parts[0]) {
	case "0", "background", "1", "video":
		if len(parts) < 3 {
			return d.errorf("background/video event needs 3 fields, got %q", line)
		}
		ev = Event{Kind: EventBackground, Filename: parts[2]}
		if p := strings.ToLower(parts[0]); p == "1" || p == "video" {
			ev.Kind = EventVideo
		}
		if ev.StartTime, err = d.int32Val("event time", parts[1]); err != nil {
			return err
		}
		if len(parts) >= 5 {
			if ev.XOffset, err = d.int32Val("event x offset", parts[3]); err != nil {
				return err
			}
			if ev.YOffset, err = d.int32Val("event y offset", parts[4]); err != nil {
				return err
			}
		}
	case "2", "break":
		if len(parts) < 3 {
			return d.errorf("break event needs 3 fields, got %q", line)
		}
		ev = Event{Kind: EventBreak}
		if ev.StartTime, err = d.int32Val("break start", parts[1]); err != nil {
			return err
		}
		if ev.EndTime, err = d.int32Val("break end", parts[2]); err != nil {
			return err
		}
	}
	d.b.Events = append(d.b.Events, ev)
	return nil
}

func (d *decoder) timingPoint(line string) error {
	parts := splitTrim(line, ",")
	if len(parts) < 2 {
		return d.errorf("timing point needs at least 2 fields, got %q", line)
	}
	tp := TimingPoint{Meter: 4, Volume: 100, Uninherited: true}
	var err error
	if tp.Time, err = d.floatVal("timing point time", parts[0]); err != nil {
		return err
	}
	if tp.BeatLength, err = d.floatVal("beat length", parts[1]); err != nil {
		return err
	}
	if len(parts) > 2 {
		if tp.Meter, err = d.int32Val("meter", parts[2]); err != nil {
			return err
		}
	}
	if len(parts) > 3 {
		if tp.SampleSet, err = d.sampleSetVal(parts[3]); err != nil {
			return err
		}
	}
	if len(parts) > 4 {
		if tp.SampleIndex, err = d.int32Val("sample index", parts[4]); err != nil {
			return err
		}
	}
	if len(parts) > 5 {
		if tp.Volume, err = d.int32Val("volume", parts[5]); err != nil {
			return err
		}
	}
	if len(parts) > 6 {
		if tp.Uninherited, err = d.boolVal("uninherited", parts[6]); err != nil {
			return err
		}
	}
	if len(parts) > 7 {
		n, err := d.rangeVal("effects", parts[7], math.MaxUint8)
		if err != nil {
			return err
		}
		tp.Effects = uint8(n)
	}
	d.b.TimingPoints = append(d.b.TimingPoints, tp)
	return nil
}

func (d *decoder) colour(line string) error {
	k, v, err := d.keyValue(line)
	if err != nil {
		return err
	}
	c, err := parseColor(v)
	if err != nil {
		return d.errorf("invalid colour %s: %v", k, err)
	}
	lk := strings.ToLower(k)
	switch {
	case strings.HasPrefix(lk, "combo"):
		d.b.Colors.Combo = append(d.b.Colors.Combo, c)
	case lk == "slidertrackoverride":
		d.b.Colors.SliderTrackOverride = &c
	case lk == "sliderborder":
		d.b.Colors.SliderBorder = &c
	}
	return nil
}

func (d *decoder) hitObject(line string) error {
	parts := splitTrim(line, ",")
	if len(parts) < 5 {
		return d.errorf("hit object needs at least 5 fields, got %q", line)
	}
	var (
		h   HitObject
		err error
	)
	if h.X, err = d.int32Val("x", parts[0]); err != nil {
		return err
	}
	if h.Y, err = d.int32Val("y", parts[1]); err != nil {
		return err
	}
	if h.Time, err = d.int32Val("time", parts[2]); err != nil {
		return err
	}
	typ, err := d.rangeVal("type", parts[3], math.MaxUint8)
	if err != nil {
		return err
	}
	sound, err := d.rangeVal("hit sound", parts[4], math.MaxUint8)
	if err != nil {
		return err
	}
	h.HitSound = uint8(sound)
	h.NewCombo = typ&typeNewCombo != 0
	h.ComboSkip = uint8((typ & typeComboSkip) >> 4)

	switch {
	case typ&typeCircle != 0:
		h.Kind = KindCircle
		if len(parts) > 5 {
			h.Sample, err = d.hitSample(parts[5])
		}
	case typ&typeSlider != 0:
		h.Kind = KindSlider
		h.Slider, err = d.slider(parts)
		if err == nil && len(parts) > 10 {
			h.Sample, err = d.hitSample(parts[10])
		}
	case typ&typeSpinner != 0:
		h.Kind = KindSpinner
		if len(parts) < 6 {
			return d.errorf("spinner is missing its end time: %q", line)
		}
		h.EndTime, err = d.int32Val("spinner end time", parts[5])
		if err == nil && len(parts) > 6 {
			h.Sample, err = d.hitSample(parts[6])
		}
	case typ&typeHold != 0:
		h.Kind = KindHold
		if len(parts) < 6 {
			return d.errorf("hold is missing its end time: %q", line)
		}
		end, sample, _ := strings.Cut(parts[5], ":")
		h.EndTime, err = d.int32Val("hold end time", end)
		if err == nil {
			h.Sample, err = d.hitSample(sample)
		}
	default:
		return d.errorf("unknown hit object type %d", typ)
	}
	if err != nil {
		return err
	}
	d.b.HitObjects = append(d.b.HitObjects, h)
	return nil
}

func (d *decoder) slider(parts []string) (*SliderParams, error) {
	if len(parts) < 8 {
		return nil, d.errorf("slider needs at least 8 fields, got %d", len(parts))
	}
	path := strings.Split(parts[5], "|")
	s := &SliderParams{Curve: CurveType(strings.ToUpper(path[0]))}
	switch s.Curve {
	case CurveBezier, CurveCatmull, CurveLinear, CurvePerfect:
	default:
		return nil, d.errorf("unknown slider curve type %q", path[0])
	}
	for _, p := range path[1:] {
		xs, ys, ok := strings.Cut(p, ":")
		if !ok {
			return nil, d.errorf("invalid slider point %q", p)
		}
		x, err := d.int32Val("slider point x", xs)
		if err != nil {
			return nil, err
		}
		y, err := d.int32Val("slider point y", ys)
		if err != nil {
			return nil, err
		}
		s.Points = append(s.Points, Point{X: x, Y: y})
	}

	var err error
	if s.Slides, err = d.int32Val("slides", parts[6]); err != nil {
		return nil, err
	}
	if s.Length, err = d.floatVal("slider length", parts[7]); err != nil {
		return nil, err
	}
	if len(parts) > 8 && parts[8] != "" {
		for _, e := range strings.Split(parts[8], "|") {
			n, err := d.rangeVal("edge sound", e, math.MaxUint8)
			if err != nil {
				return nil, err
			}
			s.EdgeSounds = append(s.EdgeSounds, uint8(n))
		}
	}
	if len(parts) > 9 && parts[9] != "" {
		for _, e := range strings.Split(parts[9], "|") {
			ns, as, _ := strings.Cut(e, ":")
			var es EdgeSet
			if es.Normal, err = d.sampleSetVal(ns); err != nil {
				return nil, err
			}
			if es.Addition, err = d.sampleSetVal(as); err != nil {
				return nil, err
			}
			s.EdgeSets = append(s.EdgeSets, es)
		}
	}
	return s, nil
}

// hitSample parses normalSet:additionSet:index:volume:filename. Every
// component is optional.
func (d *decoder) hitSample(s string) (HitSample, error) {
	var hs HitSample
	if strings.TrimSpace(s) == "" {
		return hs, nil
	}
	parts := strings.SplitN(s, ":", 5)
	var err error
	if hs.Normal, err = d.sampleSetVal(parts[0]); err != nil {
		return hs, err
	}
	if len(parts) > 1 {
		if hs.Addition, err = d.sampleSetVal(parts[1]); err != nil {
			return hs, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if hs.Index, err = d.int32Val("sample index", parts[2]); err != nil {
			return hs, err
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		if hs.Volume, err = d.int32Val("sample volume", parts[3]); err != nil {
			return hs, err
		}
	}
	if len(parts) > 4 {
		hs.Filename = strings.TrimSpace(parts[4])
	}
	return hs, nil
}

func (d *decoder) sampleSetVal(s string) (SampleSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SampleNone, nil
	}
	n, err := d.rangeVal("sample set", s, uint32(SampleDrum))
	return SampleSet(n), err
}

func (d *decoder) uint32Val(key, s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, d.errorf("invalid %s %q", key, s)
	}
	return uint32(n), nil
}

func (d *decoder) rangeVal(key, s string, limit uint32) (uint32, error) {
	n, err := d.uint32Val(key, s)
	if err != nil {
		return 0, err
	}
	if n > limit {
		return 0, d.errorf("%s %d out of range [0, %d]", key, n, limit)
	}
	return n, nil
}

// int32Val accepts fractional input and truncates it; some editors write
// coordinates and times as floats.
func (d *decoder) int32Val(key, s string) (int32, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, d.errorf("invalid %s %q", key, s)
	}
	return int32(f), nil
}

// floatVal rejects NaN and infinities so a decoded model always encodes to JSON.
func (d *decoder) floatVal(key, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, d.errorf("invalid %s %q", key, s)
	}
	return f, nil
}

func (d *decoder) boolVal(key, s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, d.errorf("invalid %s %q, expected 0 or 1", key, s)
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitCSV splits on commas outside double quotes and drops the quotes.
func splitCSV(line string) []string {
	var out []string
	var cur strings.Builder
	inQ := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQ = !inQ
		case c == ',' && !inQ:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(out, strings.TrimSpace(cur.String()))
}
