package osubridge

import (
	"errors"
	"io/fs"
)

// Error codes carried in an Envelope. Host code switches on these rather than
// on message text.
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorParse
	ErrorIO
	ErrorReleased
	ErrorInternal
)

// Envelope is the result shape handed across host boundaries: Data holds the
// value on success and the error message otherwise.
type Envelope struct {
	Error int `json:"error"`
	Data  any `json:"data"`
}

func OK(data any) Envelope {
	return Envelope{Error: ErrorNone, Data: data}
}

func Fail(err error) Envelope {
	return Envelope{Error: ErrorCode(err), Data: err.Error()}
}

// ErrorCode classifies err for an Envelope.
func ErrorCode(err error) int {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return ErrorNone
	case IsParseError(err):
		return ErrorParse
	case errors.As(err, &pathErr):
		return ErrorIO
	case errors.Is(err, ErrReleased):
		return ErrorReleased
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidValue), errors.Is(err, ErrLineBreak):
		return ErrorInvalidArgs
	default:
		return ErrorInternal
	}
}
