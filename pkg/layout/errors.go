package layout

import "errors"

var (
	// ErrMalformed covers every structural failure while decoding a
	// layout: truncated buffer, constant mismatch, absurd declared
	// length, out-of-range seek.
	ErrMalformed = errors.New("malformed layout")
)
