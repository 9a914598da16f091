package osufile

import (
	"fmt"
	"strings"
)

const (
	LatestVersion = 14

	// Beatmaps older than v5 store times 24ms early.
	EarlyVersionTimingOffset = 24
	MaxManiaKeyCount         = 18
)

// Beatmap is the decoded form of a single .osu file.
type Beatmap struct {
	Version uint32 `json:"version"`

	// [General]
	AudioFilename            string    `json:"audioFilename"`
	AudioLeadIn              uint32    `json:"audioLeadIn"`
	PreviewTime              int32     `json:"previewTime"`
	Countdown                Countdown `json:"countdown"`
	SampleSet                SampleSet `json:"sampleSet"`
	StackLeniency            float64   `json:"stackLeniency"`
	Mode                     Mode      `json:"mode"`
	LetterboxInBreaks        bool      `json:"letterboxInBreaks"`
	WidescreenStoryboard     bool      `json:"widescreenStoryboard"`
	EpilepsyWarning          bool      `json:"epilepsyWarning"`
	SpecialStyle             bool      `json:"specialStyle"`
	SamplesMatchPlaybackRate bool      `json:"samplesMatchPlaybackRate"`

	Editor     Editor     `json:"editor"`
	Metadata   Metadata   `json:"metadata"`
	Difficulty Difficulty `json:"difficulty"`

	Events       []Event       `json:"events"`
	TimingPoints []TimingPoint `json:"timingPoints"`
	Colors       Colors        `json:"colors"`
	HitObjects   []HitObject   `json:"hitObjects"`
}

type Editor struct {
	Bookmarks       []int32 `json:"bookmarks"`
	DistanceSpacing float64 `json:"distanceSpacing"`
	BeatDivisor     uint32  `json:"beatDivisor"`
	GridSize        uint32  `json:"gridSize"`
	TimelineZoom    float64 `json:"timelineZoom"`
}

type Metadata struct {
	Title          string   `json:"title"`
	TitleUnicode   string   `json:"titleUnicode"`
	Artist         string   `json:"artist"`
	ArtistUnicode  string   `json:"artistUnicode"`
	Creator        string   `json:"creator"`
	DifficultyName string   `json:"difficultyName"`
	Source         string   `json:"source"`
	Tags           []string `json:"tags"`
	BeatmapID      int32    `json:"beatmapId"`
	BeatmapSetID   int32    `json:"beatmapSetId"`
}

type Difficulty struct {
	HPDrainRate       float64 `json:"hpDrainRate"`
	CircleSize        float64 `json:"circleSize"`
	OverallDifficulty float64 `json:"overallDifficulty"`
	ApproachRate      float64 `json:"approachRate"`
	SliderMultiplier  float64 `json:"sliderMultiplier"`
	SliderTickRate    float64 `json:"sliderTickRate"`
}

// Default returns a beatmap holding the values osu! assumes when a key is absent.
func Default() *Beatmap {
	return &Beatmap{
		Version:       LatestVersion,
		PreviewTime:   -1,
		Countdown:     CountdownNormal,
		SampleSet:     SampleNormal,
		StackLeniency: 0.7,
		Editor: Editor{
			BeatDivisor:  4,
			GridSize:     4,
			TimelineZoom: 1,
		},
		Difficulty: Difficulty{
			HPDrainRate:       5,
			CircleSize:        5,
			OverallDifficulty: 5,
			ApproachRate:      5,
			SliderMultiplier:  1.4,
			SliderTickRate:    1,
		},
	}
}

// Clone returns a deep copy that shares no slices with b.
func (b *Beatmap) Clone() *Beatmap {
	c := *b
	c.Editor.Bookmarks = append([]int32(nil), b.Editor.Bookmarks...)
	c.Metadata.Tags = append([]string(nil), b.Metadata.Tags...)
	c.Events = append([]Event(nil), b.Events...)
	c.TimingPoints = append([]TimingPoint(nil), b.TimingPoints...)
	c.Colors = b.Colors.clone()
	if b.HitObjects != nil {
		c.HitObjects = make([]HitObject, len(b.HitObjects))
		for i, h := range b.HitObjects {
			c.HitObjects[i] = h.clone()
		}
	}
	return &c
}

type Mode uint8

const (
	ModeOsu Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m Mode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		return "mania"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

type Countdown uint8

const (
	CountdownNone Countdown = iota
	CountdownNormal
	CountdownHalf
	CountdownDouble
)

// SampleSet is stored by name in [General] and by number everywhere else.
type SampleSet uint8

const (
	SampleNone SampleSet = iota
	SampleNormal
	SampleSoft
	SampleDrum
)

func (s SampleSet) String() string {
	switch s {
	case SampleNormal:
		return "Normal"
	case SampleSoft:
		return "Soft"
	case SampleDrum:
		return "Drum"
	default:
		return "None"
	}
}

func (s SampleSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SampleSet) UnmarshalText(text []byte) error {
	v, ok := parseSampleSetName(string(text))
	if !ok {
		return fmt.Errorf("unknown sample set %q", text)
	}
	*s = v
	return nil
}

func parseSampleSetName(name string) (SampleSet, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return SampleNone, true
	case "normal":
		return SampleNormal, true
	case "soft":
		return SampleSoft, true
	case "drum":
		return SampleDrum, true
	}
	return SampleNone, false
}

type EventKind string

const (
	EventBackground EventKind = "background"
	EventVideo      EventKind = "video"
	EventBreak      EventKind = "break"
	// EventOther keeps storyboard and unknown lines verbatim.
	EventOther EventKind = "other"
)

type Event struct {
	Kind      EventKind `json:"kind"`
	StartTime int32     `json:"startTime"`
	EndTime   int32     `json:"endTime,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	XOffset   int32     `json:"xOffset,omitempty"`
	YOffset   int32     `json:"yOffset,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

type Colors struct {
	Combo               []Color `json:"combo"`
	SliderTrackOverride *Color  `json:"sliderTrackOverride,omitempty"`
	SliderBorder        *Color  `json:"sliderBorder,omitempty"`
}

func (c Colors) clone() Colors {
	out := Colors{Combo: append([]Color(nil), c.Combo...)}
	if c.SliderTrackOverride != nil {
		v := *c.SliderTrackOverride
		out.SliderTrackOverride = &v
	}
	if c.SliderBorder != nil {
		v := *c.SliderBorder
		out.SliderBorder = &v
	}
	return out
}

type HitObjectKind string

const (
	KindCircle  HitObjectKind = "circle"
	KindSlider  HitObjectKind = "slider"
	KindSpinner HitObjectKind = "spinner"
	KindHold    HitObjectKind = "hold"
)

// Hit object type bits as written in the fourth column.
const (
	typeCircle    = 1 << 0
	typeSlider    = 1 << 1
	typeNewCombo  = 1 << 2
	typeSpinner   = 1 << 3
	typeComboSkip = 0x70
	typeHold      = 1 << 7
)

// Hit sound bits.
const (
	HitSoundNormal  uint8 = 1 << 0
	HitSoundWhistle uint8 = 1 << 1
	HitSoundFinish  uint8 = 1 << 2
	HitSoundClap    uint8 = 1 << 3
)

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type HitObject struct {
	Kind      HitObjectKind `json:"kind"`
	X         int32         `json:"x"`
	Y         int32         `json:"y"`
	Time      int32         `json:"time"`
	NewCombo  bool          `json:"newCombo"`
	ComboSkip uint8         `json:"comboSkip"`
	HitSound  uint8         `json:"hitSound"`

	// EndTime is set for spinners and holds.
	EndTime int32         `json:"endTime,omitempty"`
	Slider  *SliderParams `json:"slider,omitempty"`
	Sample  HitSample     `json:"sample"`
}

func (h HitObject) clone() HitObject {
	if h.Slider != nil {
		s := *h.Slider
		s.Points = append([]Point(nil), h.Slider.Points...)
		s.EdgeSounds = append([]uint8(nil), h.Slider.EdgeSounds...)
		s.EdgeSets = append([]EdgeSet(nil), h.Slider.EdgeSets...)
		h.Slider = &s
	}
	return h
}

type CurveType string

const (
	CurveBezier  CurveType = "B"
	CurveCatmull CurveType = "C"
	CurveLinear  CurveType = "L"
	CurvePerfect CurveType = "P"
)

type SliderParams struct {
	Curve      CurveType `json:"curve"`
	Points     []Point   `json:"points"`
	Slides     int32     `json:"slides"`
	Length     float64   `json:"length"`
	EdgeSounds []uint8   `json:"edgeSounds,omitempty"`
	EdgeSets   []EdgeSet `json:"edgeSets,omitempty"`
}

type EdgeSet struct {
	Normal   SampleSet `json:"normal"`
	Addition SampleSet `json:"addition"`
}

// HitSample is the trailing normalSet:additionSet:index:volume:filename column.
type HitSample struct {
	Normal   SampleSet `json:"normal"`
	Addition SampleSet `json:"addition"`
	Index    int32     `json:"index"`
	Volume   int32     `json:"volume"`
	Filename string    `json:"filename,omitempty"`
}
