package osubridge

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field names as seen by host code.
const (
	FieldVersion       = "version"
	FieldAudioFilename = "audioFilename"
	FieldAudioLeadIn   = "audioLeadIn"
)

type accessor struct {
	get func(*Beatmap) string
	set func(*Beatmap, string) error
	// text fields take strings only in SetFieldValue.
	text bool
}

var accessors = map[string]accessor{
	FieldVersion: {
		get: func(b *Beatmap) string { return strconv.FormatUint(uint64(b.Version()), 10) },
		set: func(b *Beatmap, v string) error {
			n, err := parseUint32(v)
			if err != nil {
				return err
			}
			b.SetVersion(n)
			return nil
		},
	},
	FieldAudioFilename: {
		get: func(b *Beatmap) string { return b.AudioFilename() },
		set: func(b *Beatmap, v string) error {
			b.SetAudioFilename(v)
			return nil
		},
		text: true,
	},
	FieldAudioLeadIn: {
		get: func(b *Beatmap) string { return strconv.FormatUint(uint64(b.AudioLeadIn()), 10) },
		set: func(b *Beatmap, v string) error {
			n, err := parseUint32(v)
			if err != nil {
				return err
			}
			b.SetAudioLeadIn(n)
			return nil
		},
	},
}

// FieldNames lists the names accepted by Field and SetField.
func FieldNames() []string {
	names := make([]string, 0, len(accessors))
	for name := range accessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field returns the named field formatted as text.
func (b *Beatmap) Field(name string) (string, error) {
	a, ok := lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return a.get(b), nil
}

// SetField parses value for the named field and stores it. The handle is left
// unchanged when value does not parse.
func (b *Beatmap) SetField(name, value string) error {
	a, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if err := a.set(b, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

// SetFieldValue is SetField for values decoded from JSON or a host runtime.
// Text fields take strings only; numeric fields also take whole float64
// numbers and Go integers.
func (b *Beatmap) SetFieldValue(name string, v any) error {
	if a, ok := lookup(name); ok && a.text {
		if _, isString := v.(string); !isString {
			return fmt.Errorf("set %s: %w: expected a string, got %T", name, ErrInvalidValue, v)
		}
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return fmt.Errorf("set %s: %w: %v is not a whole number", name, ErrInvalidValue, x)
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case uint32:
		s = strconv.FormatUint(uint64(x), 10)
	default:
		return fmt.Errorf("set %s: %w: unsupported type %T", name, ErrInvalidValue, v)
	}
	return b.SetField(name, s)
}

// lookup matches names case-insensitively so "audio_lead_in" style input from
// shells is accepted too.
func lookup(name string) (accessor, bool) {
	key := strings.ToLower(strings.ReplaceAll(name, "_", ""))
	for n, a := range accessors {
		if strings.ToLower(n) == key {
			return a, true
		}
	}
	return accessor{}, false
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an unsigned 32-bit integer", ErrInvalidValue, s)
	}
	return uint32(n), nil
}
