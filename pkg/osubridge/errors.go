package osubridge

import (
	"errors"

	"github.com/himanishpuri/OsuBridge/pkg/osubridge/osufile"
)

var (
	// ErrUnknownField is returned by Field and SetField for names outside the
	// accessor table.
	ErrUnknownField = errors.New("unknown beatmap field")
	ErrInvalidValue = errors.New("invalid field value")
	// ErrReleased is reported by host adapters for handles the host has freed.
	ErrReleased = errors.New("beatmap handle has been released")
	// ErrLineBreak is returned when writing a handle whose text fields hold
	// a CR or LF.
	ErrLineBreak = osufile.ErrLineBreak
)

// ParseError wraps a decoder failure. Its message is "sad: " followed by the
// decoder's own text.
type ParseError struct {
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	return "sad: " + e.Detail
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
