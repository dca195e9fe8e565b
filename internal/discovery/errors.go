package discovery

import (
	"errors"
	"fmt"
)

// ErrUnparsable marks a discovery response that is not a JSON array.
var ErrUnparsable = errors.New("discovery response is not a JSON array")

// Error is returned for every failed discovery run. It is fatal to the run:
// no partial result accompanies it.
type Error struct {
	// Stage is where the run failed: "oracle" or "parse".
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("discovery failed (%s): %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is (or wraps) a discovery error.
func IsError(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
