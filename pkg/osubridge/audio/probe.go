// Package audio reads format information from the audio file a beatmap
// references.
package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

var ErrUnsupportedAudio = errors.New("unsupported audio format")

type Info struct {
	Filename   string        `json:"filename"`
	Format     string        `json:"format"`
	SampleRate int           `json:"sampleRate"`
	Channels   int           `json:"channels"`
	BitDepth   int           `json:"bitDepth"`
	Duration   time.Duration `json:"duration"`
}

// Probe reads WAV files directly. Other formats go through ffprobe when it is
// on PATH; without it they fail with ErrUnsupportedAudio.
func Probe(ctx context.Context, path string) (*Info, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return ProbeWAV(path)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, filepath.Ext(path))
	}
	return probeFFmpeg(ctx, path)
}

func ProbeWAV(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedAudio, filepath.Base(path))
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating WAV data chunk: %w", err)
	}
	// The decoder's own Duration() includes the header bytes.
	frameBytes := int64(dec.SampleRate) * int64(dec.NumChans) * int64(dec.BitDepth) / 8
	if frameBytes == 0 {
		return nil, fmt.Errorf("%w: %s has an empty format chunk", ErrUnsupportedAudio, filepath.Base(path))
	}
	d := time.Duration(int64(dec.PCMSize) * int64(time.Second) / frameBytes)
	info := &Info{
		Filename:   filepath.Base(path),
		Format:     "wav",
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   d,
	}
	return info, nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Format   string `json:"format_name"`
	} `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType     string `json:"codec_type"`
	SampleRate    string `json:"sample_rate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bits_per_sample"`
}

func (p *ffprobeOutput) firstAudioStream() *ffprobeStream {
	for i := range p.Streams {
		if p.Streams[i].CodecType == "audio" {
			return &p.Streams[i]
		}
	}
	return nil
}

func probeFFmpeg(ctx context.Context, path string) (*Info, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("decoding ffprobe output: %w", err)
	}
	stream := probe.firstAudioStream()
	if stream == nil {
		return nil, fmt.Errorf("%w: no audio stream in %s", ErrUnsupportedAudio, filepath.Base(path))
	}

	secs, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	rate, _ := strconv.Atoi(stream.SampleRate)
	return &Info{
		Filename:   filepath.Base(path),
		Format:     probe.Format.Format,
		SampleRate: rate,
		Channels:   stream.Channels,
		BitDepth:   stream.BitsPerSample,
		Duration:   time.Duration(secs * float64(time.Second)),
	}, nil
}
