package llm

import (
	"errors"
	"fmt"
)

var (
	ErrNoData             = errors.New("no data chunks found")
	ErrPromptRequired     = errors.New("prompt is required")
	ErrEndpointRequired   = errors.New("trace endpoint is required")
	ErrTooManyStops       = errors.New("too many stop sequences")
	ErrAudioModelRequired = errors.New("audio model not set")
)

type ErrorKind string

const (
	// ErrKindValidation is raised at construction time and never retried.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindMerge means a streamed exchange could not be folded into a response.
	ErrKindMerge     ErrorKind = "merge"
	ErrKindTransport ErrorKind = "transport"
	ErrKindParse     ErrorKind = "parse"
)

// Error is the classified error returned by this module.
//
// Raw carries the offending payload (a response body or stream chunk) when
// one is available.
type Error struct {
	Op      string
	Kind    ErrorKind
	Message string

	Raw []byte

	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("llm %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("llm: %s", msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// NewValidationError wraps cause as a validation error for op.
func NewValidationError(op string, cause error) error {
	return &Error{Op: op, Kind: ErrKindValidation, Cause: cause}
}
