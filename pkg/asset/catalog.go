package asset

import "errors"

// ErrUnknownAsset is returned by catalog lookups for identifiers the
// catalog cannot resolve. For references a structured decoder actually
// believes exist, this is a hard failure, not a fallback trigger.
var ErrUnknownAsset = errors.New("unknown asset id")

// Catalog is the external collaborator that maps identifiers to content.
// Implementations must be safe for concurrent read-only use.
type Catalog interface {
	// Resolve returns the type tag and payload for id, or an error
	// wrapping ErrUnknownAsset.
	Resolve(id AssetID) (RawAsset, error)

	// TypeOf returns the type tag for id without materializing its
	// payload, or an error wrapping ErrUnknownAsset.
	TypeOf(id AssetID) (TypeTag, error)

	// IsValid reports whether id denotes a known asset. It never fails,
	// whatever the candidate: the heuristic scanner probes arbitrary
	// integers through it. The container flag broadens the judgment when
	// the asset being scanned is itself a level/container descriptor.
	IsValid(id AssetID, container bool) bool
}
