package domain

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable reports that an optional model could not be reached
// or failed at inference. Callers fall back to the rule path.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrEmptyInput reports empty text or image input.
var ErrEmptyInput = errors.New("empty input")

// DecodeError wraps a failure to decode image bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
