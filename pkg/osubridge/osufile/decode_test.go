package osufile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleMap = "\ufeffosu file format v14\r\n" +
	"\r\n" +
	"[General]\r\n" +
	"AudioFilename: audio.mp3\r\n" +
	"AudioLeadIn: 1500\r\n" +
	"PreviewTime: 42000\r\n" +
	"Countdown: 0\r\n" +
	"SampleSet: Soft\r\n" +
	"StackLeniency: 0.5\r\n" +
	"Mode: 0\r\n" +
	"LetterboxInBreaks: 1\r\n" +
	"WidescreenStoryboard: 1\r\n" +
	"\r\n" +
	"[Editor]\r\n" +
	"Bookmarks: 1000,2000,3000\r\n" +
	"DistanceSpacing: 1.2\r\n" +
	"BeatDivisor: 4\r\n" +
	"GridSize: 8\r\n" +
	"TimelineZoom: 2.5\r\n" +
	"\r\n" +
	"[Metadata]\r\n" +
	"Title:Freedom Dive\r\n" +
	"TitleUnicode:FREEDOM DiVE\r\n" +
	"Artist:xi\r\n" +
	"ArtistUnicode:xi\r\n" +
	"Creator:Nakagawa-Kanon\r\n" +
	"Version:FOUR DIMENSIONS\r\n" +
	"Source:BMS\r\n" +
	"Tags:parousia onosakihito\r\n" +
	"BeatmapID:129891\r\n" +
	"BeatmapSetID:39804\r\n" +
	"\r\n" +
	"[Difficulty]\r\n" +
	"HPDrainRate:6\r\n" +
	"CircleSize:4\r\n" +
	"OverallDifficulty:8\r\n" +
	"ApproachRate:9\r\n" +
	"SliderMultiplier:1.8\r\n" +
	"SliderTickRate:1\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"//Background and Video events\r\n" +
	"0,0,\"bg.jpg\",0,0\r\n" +
	"2,50000,60000\r\n" +
	"Sprite,Foreground,Centre,\"sb\\star.png\",320,240\r\n" +
	" F,0,1000,2000,1,0\r\n" +
	"\r\n" +
	"[TimingPoints]\r\n" +
	"2133,272.727272727273,4,2,1,60,1,0\r\n" +
	"2133,-100,4,2,1,60,0,1\r\n" +
	"30000,250,4,2,1,70,1,0\r\n" +
	"\r\n" +
	"[Colours]\r\n" +
	"Combo1 : 255,128,0\r\n" +
	"Combo2 : 0,202,0\r\n" +
	"SliderBorder : 255,255,255\r\n" +
	"\r\n" +
	"[HitObjects]\r\n" +
	"256,192,2133,5,0,0:0:0:0:\r\n" +
	"100,100,2406,2,2,B|200:200|250:100,2,140,2|0|8,1:2|0:0|2:0,1:0:0:0:\r\n" +
	"256,192,3000,12,0,4000,0:0:0:0:\r\n" +
	"64,192,5000,128,0,5500:0:0:0:0:hit.wav\r\n"

func decodeSample(t *testing.T) *Beatmap {
	t.Helper()
	b, err := Decode(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return b
}

func TestDecodeGeneral(t *testing.T) {
	b := decodeSample(t)

	if b.Version != 14 {
		t.Errorf("Expected version 14, got %d", b.Version)
	}
	if b.AudioFilename != "audio.mp3" {
		t.Errorf("Expected audio filename 'audio.mp3', got '%s'", b.AudioFilename)
	}
	if b.AudioLeadIn != 1500 {
		t.Errorf("Expected audio lead-in 1500, got %d", b.AudioLeadIn)
	}
	if b.PreviewTime != 42000 {
		t.Errorf("Expected preview time 42000, got %d", b.PreviewTime)
	}
	if b.Countdown != CountdownNone {
		t.Errorf("Expected no countdown, got %d", b.Countdown)
	}
	if b.SampleSet != SampleSoft {
		t.Errorf("Expected Soft sample set, got %s", b.SampleSet)
	}
	if b.StackLeniency != 0.5 {
		t.Errorf("Expected stack leniency 0.5, got %v", b.StackLeniency)
	}
	if !b.LetterboxInBreaks || !b.WidescreenStoryboard {
		t.Error("Expected letterbox and widescreen flags to be set")
	}
}

func TestDecodeEditorAndMetadata(t *testing.T) {
	b := decodeSample(t)

	if want := []int32{1000, 2000, 3000}; !reflect.DeepEqual(b.Editor.Bookmarks, want) {
		t.Errorf("Expected bookmarks %v, got %v", want, b.Editor.Bookmarks)
	}
	if b.Editor.GridSize != 8 || b.Editor.TimelineZoom != 2.5 {
		t.Errorf("Unexpected editor values: %+v", b.Editor)
	}
	m := b.Metadata
	if m.Title != "Freedom Dive" || m.TitleUnicode != "FREEDOM DiVE" {
		t.Errorf("Unexpected title: %q / %q", m.Title, m.TitleUnicode)
	}
	if m.DifficultyName != "FOUR DIMENSIONS" {
		t.Errorf("Expected difficulty name 'FOUR DIMENSIONS', got '%s'", m.DifficultyName)
	}
	if want := []string{"parousia", "onosakihito"}; !reflect.DeepEqual(m.Tags, want) {
		t.Errorf("Expected tags %v, got %v", want, m.Tags)
	}
	if m.BeatmapID != 129891 || m.BeatmapSetID != 39804 {
		t.Errorf("Unexpected IDs: %d / %d", m.BeatmapID, m.BeatmapSetID)
	}
}

func TestDecodeDifficulty(t *testing.T) {
	b := decodeSample(t)
	want := Difficulty{
		HPDrainRate:       6,
		CircleSize:        4,
		OverallDifficulty: 8,
		ApproachRate:      9,
		SliderMultiplier:  1.8,
		SliderTickRate:    1,
	}
	if b.Difficulty != want {
		t.Errorf("Expected difficulty %+v, got %+v", want, b.Difficulty)
	}
}

func TestDecodeApproachRateFallsBackToOverallDifficulty(t *testing.T) {
	b, err := Decode(strings.NewReader("osu file format v5\n[Difficulty]\nOverallDifficulty:7\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b.Difficulty.ApproachRate != 7 {
		t.Errorf("Expected AR to follow OD (7), got %v", b.Difficulty.ApproachRate)
	}
}

func TestDecodeEvents(t *testing.T) {
	b := decodeSample(t)

	if len(b.Events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(b.Events))
	}
	if ev := b.Events[0]; ev.Kind != EventBackground || ev.Filename != "bg.jpg" {
		t.Errorf("Expected background bg.jpg, got %+v", ev)
	}
	if ev := b.Events[1]; ev.Kind != EventBreak || ev.StartTime != 50000 || ev.EndTime != 60000 {
		t.Errorf("Expected break 50000-60000, got %+v", ev)
	}
	if ev := b.Events[3]; ev.Kind != EventOther || ev.Raw != " F,0,1000,2000,1,0" {
		t.Errorf("Expected storyboard command kept verbatim, got %+v", ev)
	}
}

func TestDecodeTimingPoints(t *testing.T) {
	b := decodeSample(t)

	if len(b.TimingPoints) != 3 {
		t.Fatalf("Expected 3 timing points, got %d", len(b.TimingPoints))
	}
	red, green := b.TimingPoints[0], b.TimingPoints[1]
	if !red.Uninherited || red.SampleSet != SampleSoft || red.Volume != 60 {
		t.Errorf("Unexpected red line: %+v", red)
	}
	if green.Uninherited || !green.Kiai() {
		t.Errorf("Expected inherited kiai point, got %+v", green)
	}
	if got := green.SliderVelocity(); got != 1 {
		t.Errorf("Expected slider velocity 1, got %v", got)
	}
}

func TestDecodeColours(t *testing.T) {
	b := decodeSample(t)

	if len(b.Colors.Combo) != 2 {
		t.Fatalf("Expected 2 combo colours, got %d", len(b.Colors.Combo))
	}
	if got := b.Colors.Combo[0].Hex(); got != "ff8000" {
		t.Errorf("Expected ff8000, got %s", got)
	}
	if b.Colors.SliderBorder == nil || *b.Colors.SliderBorder != (Color{255, 255, 255}) {
		t.Errorf("Expected white slider border, got %v", b.Colors.SliderBorder)
	}
	if b.Colors.SliderTrackOverride != nil {
		t.Errorf("Expected no slider track override, got %v", b.Colors.SliderTrackOverride)
	}
}

func TestDecodeHitObjects(t *testing.T) {
	b := decodeSample(t)

	if len(b.HitObjects) != 4 {
		t.Fatalf("Expected 4 hit objects, got %d", len(b.HitObjects))
	}

	circle := b.HitObjects[0]
	if circle.Kind != KindCircle || !circle.NewCombo || circle.X != 256 || circle.Time != 2133 {
		t.Errorf("Unexpected circle: %+v", circle)
	}

	slider := b.HitObjects[1]
	if slider.Kind != KindSlider || slider.Slider == nil {
		t.Fatalf("Expected slider, got %+v", slider)
	}
	s := slider.Slider
	if s.Curve != CurveBezier || len(s.Points) != 2 || s.Points[1] != (Point{250, 100}) {
		t.Errorf("Unexpected slider path: %+v", s)
	}
	if s.Slides != 2 || s.Length != 140 {
		t.Errorf("Expected 2 slides of length 140, got %d / %v", s.Slides, s.Length)
	}
	if want := []uint8{2, 0, 8}; !reflect.DeepEqual(s.EdgeSounds, want) {
		t.Errorf("Expected edge sounds %v, got %v", want, s.EdgeSounds)
	}
	if len(s.EdgeSets) != 3 || s.EdgeSets[0] != (EdgeSet{SampleNormal, SampleSoft}) {
		t.Errorf("Unexpected edge sets: %+v", s.EdgeSets)
	}
	if slider.Sample.Normal != SampleNormal {
		t.Errorf("Expected Normal slider sample, got %s", slider.Sample.Normal)
	}

	spinner := b.HitObjects[2]
	if spinner.Kind != KindSpinner || spinner.EndTime != 4000 {
		t.Errorf("Unexpected spinner: %+v", spinner)
	}

	hold := b.HitObjects[3]
	if hold.Kind != KindHold || hold.EndTime != 5500 || hold.Sample.Filename != "hit.wav" {
		t.Errorf("Unexpected hold: %+v", hold)
	}
}

func TestDecodeMinimal(t *testing.T) {
	b, err := Decode(strings.NewReader("osu file format v14\n[General]\nAudioFilename: song.mp3\nAudioLeadIn: 500\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b.Version != 14 || b.AudioFilename != "song.mp3" || b.AudioLeadIn != 500 {
		t.Errorf("Unexpected values: v%d %q %d", b.Version, b.AudioFilename, b.AudioLeadIn)
	}
	// Absent keys keep their defaults.
	if b.PreviewTime != -1 || b.Difficulty.SliderMultiplier != 1.4 {
		t.Errorf("Expected defaults for absent keys, got preview %d multiplier %v",
			b.PreviewTime, b.Difficulty.SliderMultiplier)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"empty input", "", 0},
		{"not a beatmap", "not a beatmap", 1},
		{"bad version", "osu file format vX\n", 1},
		{"line outside section", "osu file format v14\nAudioFilename: a.mp3\n", 2},
		{"missing colon", "osu file format v14\n[General]\nAudioFilename\n", 3},
		{"bad lead-in", "osu file format v14\n[General]\nAudioLeadIn: soon\n", 3},
		{"negative lead-in", "osu file format v14\n[General]\nAudioLeadIn: -5\n", 3},
		{"bad mode", "osu file format v14\n[General]\nMode: 9\n", 3},
		{"bad sample set", "osu file format v14\n[General]\nSampleSet: Loud\n", 3},
		{"short timing point", "osu file format v14\n[TimingPoints]\n100\n", 3},
		{"bad colour", "osu file format v14\n[Colours]\nCombo1 : 300,0,0\n", 3},
		{"short hit object", "osu file format v14\n\n[HitObjects]\n1,2,3\n", 4},
		{"unknown object type", "osu file format v14\n[HitObjects]\n1,2,3,0,0\n", 3},
		{"bad curve", "osu file format v14\n[HitObjects]\n1,2,3,2,0,Q|1:1,1,10\n", 3},
		{"spinner without end", "osu file format v14\n[HitObjects]\n1,2,3,8,0\n", 3},
		{"NaN stack leniency", "osu file format v14\n[General]\nStackLeniency: NaN\n", 3},
		{"infinite slider multiplier", "osu file format v14\n[Difficulty]\nSliderMultiplier: Inf\n", 3},
		{"infinity spelled out", "osu file format v14\n[Difficulty]\nHPDrainRate: -infinity\n", 3},
		{"NaN beat length", "osu file format v14\n[TimingPoints]\n0,NaN\n", 3},
		{"infinite hit object time", "osu file format v14\n[HitObjects]\n1,2,+Inf,1,0\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected an error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Expected *SyntaxError, got %T: %v", err, err)
			}
			if se.Line != tt.line {
				t.Errorf("Expected error on line %d, got %d (%v)", tt.line, se.Line, err)
			}
		})
	}
}

func TestDecodeSkipsUnknownKeysAndSections(t *testing.T) {
	input := "osu file format v14\n[General]\nFutureKey: 1\n[Fancy]\nwhatever goes here\n[General]\nAudioLeadIn: 3\n"
	b, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b.AudioLeadIn != 3 {
		t.Errorf("Expected lead-in 3, got %d", b.AudioLeadIn)
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.osu")
	if err := os.WriteFile(path, []byte(sampleMap), 0o644); err != nil {
		t.Fatalf("Failed to write test map: %v", err)
	}
	b, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if b.Metadata.Title != "Freedom Dive" {
		t.Errorf("Expected title 'Freedom Dive', got '%s'", b.Metadata.Title)
	}

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.osu"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	orig := decodeSample(t)

	var buf bytes.Buffer
	if err := Encode(&buf, orig); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decoding encoded output failed: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(orig, again) {
		t.Errorf("Round trip changed the model\nwant %+v\ngot  %+v", orig, again)
	}
}

func TestEncodeDefaultRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Default()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(Default(), got) {
		t.Errorf("Default map did not survive a round trip: %+v", got)
	}
}

func TestEncodeRejectsLineBreaks(t *testing.T) {
	tests := []struct {
		name  string
		apply func(b *Beatmap)
	}{
		{"audio filename LF", func(b *Beatmap) { b.AudioFilename = "a.mp3\nfoo" }},
		{"audio filename CR", func(b *Beatmap) { b.AudioFilename = "a.mp3\rfoo" }},
		{"title", func(b *Beatmap) { b.Metadata.Title = "x\n[Difficulty]" }},
		{"creator", func(b *Beatmap) { b.Metadata.Creator = "me\r\n" }},
		{"tag", func(b *Beatmap) { b.Metadata.Tags = []string{"ok", "bad\ntag"} }},
		{"background", func(b *Beatmap) {
			b.Events = append(b.Events, Event{Kind: EventBackground, Filename: "bg\n.jpg"})
		}},
		{"hit sample", func(b *Beatmap) {
			b.HitObjects = append(b.HitObjects, HitObject{Kind: KindCircle, Sample: HitSample{Filename: "s\n.wav"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Default()
			tt.apply(b)
			var buf bytes.Buffer
			err := Encode(&buf, b)
			if !errors.Is(err, ErrLineBreak) {
				t.Fatalf("Expected ErrLineBreak, got %v", err)
			}
			if buf.Len() != 0 {
				t.Errorf("Expected nothing written, got %q", buf.String())
			}
		})
	}
}

func TestClone(t *testing.T) {
	orig := decodeSample(t)
	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatal("Clone differs from original")
	}

	c.Metadata.Tags[0] = "changed"
	c.HitObjects[1].Slider.Points[0].X = -1
	c.Colors.SliderBorder.R = 1
	if orig.Metadata.Tags[0] == "changed" || orig.HitObjects[1].Slider.Points[0].X == -1 || orig.Colors.SliderBorder.R == 1 {
		t.Error("Clone shares memory with the original")
	}
}
