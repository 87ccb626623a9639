// Package asset defines the core vocabulary of the dependency engine:
// typed asset identity, dependency records, game variants and the catalog
// contract every decoder resolves against.
package asset

import "fmt"

// TypeTag is the 4-character code identifying an asset's format, e.g. "ANCS".
type TypeTag string

// TagFromBytes builds a TypeTag from the first four bytes of b.
func TagFromBytes(b []byte) (TypeTag, bool) {
	if len(b) < 4 {
		return "", false
	}
	return TypeTag(b[:4]), true
}

// Valid reports whether the tag is exactly four printable ASCII characters.
func (t TypeTag) Valid() bool {
	if len(t) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if t[i] < 0x20 || t[i] > 0x7e {
			return false
		}
	}
	return true
}

// AssetID is an asset identifier. Storage is always 64-bit; the active
// identifier width (4 or 8 bytes) comes from the target Game.
type AssetID uint64

func (id AssetID) String() string {
	return fmt.Sprintf("0x%08X", uint64(id))
}

// Dependency is a single (type, id) reference from one asset to another.
// Records are immutable once produced and are not deduplicated here; that
// is the catalog's responsibility.
type Dependency struct {
	Type TypeTag
	ID   AssetID
}

func (d Dependency) String() string {
	return fmt.Sprintf("%s %s", d.Type, d.ID)
}

// RawAsset is the opaque input to every decoder: a type tag plus the
// asset's payload bytes. The data is owned by the caller and must be
// treated as read-only by decoders.
type RawAsset struct {
	Type TypeTag
	Data []byte
}
