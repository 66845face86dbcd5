package fusion

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupportedEncoding indicates a depth frame with an unknown pixel encoding.
	ErrUnsupportedEncoding = errors.New("fusion: unsupported depth encoding")

	// ErrMalformedFrame indicates a depth frame whose buffer does not match its header.
	ErrMalformedFrame = errors.New("fusion: malformed depth frame")
)

// FusionError wraps a rejected sensor frame. It is never fatal to a goal.
type FusionError struct {
	Stamp    time.Time
	Encoding Encoding
	Wrapped  error
}

func (e *FusionError) Error() string {
	return fmt.Sprintf("%v (encoding=%q stamp=%s)", e.Wrapped, e.Encoding, e.Stamp.Format(time.RFC3339Nano))
}

func (e *FusionError) Unwrap() error {
	return e.Wrapped
}
