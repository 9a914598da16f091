// Package osubridge wraps a decoded osu! beatmap in a handle used by the host
// adapters under cmd/.
package osubridge

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge/osufile"
)

// Beatmap owns exactly one decoded model. A Beatmap is not safe for
// concurrent mutation.
type Beatmap struct {
	m *osufile.Beatmap
}

// Parse decodes a complete .osu file held in text.
func Parse(text string) (*Beatmap, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader decodes a complete .osu file from r.
func ParseReader(r io.Reader) (*Beatmap, error) {
	m, err := osufile.Decode(r)
	if err != nil {
		return nil, &ParseError{Detail: err.Error(), Err: err}
	}
	return &Beatmap{m: m}, nil
}

// ParseFile opens path and decodes it. A failure to open the file is returned
// as-is, without the ParseError wrapper.
func ParseFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f)
}

// New returns a handle holding the default model.
func New() *Beatmap {
	return &Beatmap{m: osufile.Default()}
}

// FromModel takes a copy of m.
func FromModel(m *osufile.Beatmap) *Beatmap {
	return &Beatmap{m: m.Clone()}
}

func (b *Beatmap) Version() uint32     { return b.m.Version }
func (b *Beatmap) SetVersion(v uint32) { b.m.Version = v }

func (b *Beatmap) AudioFilename() string     { return b.m.AudioFilename }
func (b *Beatmap) SetAudioFilename(v string) { b.m.AudioFilename = v }

func (b *Beatmap) AudioLeadIn() uint32     { return b.m.AudioLeadIn }
func (b *Beatmap) SetAudioLeadIn(v uint32) { b.m.AudioLeadIn = v }

// Model returns a deep copy of the underlying model.
func (b *Beatmap) Model() *osufile.Beatmap {
	return b.m.Clone()
}

func (b *Beatmap) Clone() *Beatmap {
	return &Beatmap{m: b.m.Clone()}
}

func (b *Beatmap) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.m)
}

// AsJSON projects the whole model into maps, slices and scalars, the shape a
// host runtime can consume without parsing text. Numbers are float64.
func (b *Beatmap) AsJSON() (map[string]any, error) {
	raw, err := json.Marshal(b.m)
	if err != nil {
		return nil, fmt.Errorf("encode beatmap: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode beatmap json: %w", err)
	}
	return out, nil
}

// WriteTo writes the model back out as .osu text. It fails with ErrLineBreak,
// having written nothing, when a text field contains CR or LF.
func (b *Beatmap) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := osufile.Encode(cw, b.m)
	return cw.n, err
}

// Text renders the model as .osu text.
func (b *Beatmap) Text() (string, error) {
	var sb strings.Builder
	if _, err := b.WriteTo(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// String is Text with the error dropped; it returns "" for a model Text
// rejects.
func (b *Beatmap) String() string {
	s, _ := b.Text()
	return s
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
