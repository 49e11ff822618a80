package model

import "errors"

var (
	// ErrInvalidParameter marks out-of-range or non-positive simulation input.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrLengthMismatch marks misaligned series; always a programming defect.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrNumeric marks a division by zero or non-finite intermediate result.
	ErrNumeric = errors.New("numeric error")
)
