package formats

import "errors"

var (
	// ErrAssumptionsViolated is signalled by a structured decoder that
	// determines mid-parse its structural assumptions do not hold (wrong
	// constant, unexpected version, unsupported game). The dispatch layer
	// converts it into a fall back to the heuristic scanner; it never
	// means "asset has no dependencies".
	ErrAssumptionsViolated = errors.New("structured decoder assumptions violated")
)
