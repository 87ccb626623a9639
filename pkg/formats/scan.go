package formats

import (
	"encoding/binary"
	"iter"

	"github.com/samcharles93/relic/pkg/asset"
)

// Scan is the heuristic fallback: it treats data as a dense sequence of
// candidate identifiers and probes every byte offset from 0 through
// len(data)-W inclusive, W being the active identifier width. Offsets are
// deliberately byte-granular rather than width-aligned; the scanner exists
// precisely for formats whose structure is not modeled, and identifiers in
// those are not guaranteed to be aligned. Do not "optimize" this to
// aligned-only scanning.
//
// Candidates are judged solely by the catalog's non-throwing validity
// check, so the result over-approximates: coincidental byte patterns may
// yield false positives, but a true reference at any offset is never
// missed. The sequence is restartable and order-preserving.
func Scan(data []byte, game asset.Game, cat asset.Catalog, container bool) iter.Seq[asset.Dependency] {
	w := game.IDWidth()
	return func(yield func(asset.Dependency) bool) {
		for i := 0; i+w <= len(data); i++ {
			var id asset.AssetID
			if w == 8 {
				id = asset.AssetID(binary.BigEndian.Uint64(data[i:]))
			} else {
				id = asset.AssetID(binary.BigEndian.Uint32(data[i:]))
			}
			if !cat.IsValid(id, container) {
				continue
			}
			tag, err := cat.TypeOf(id)
			if err != nil {
				// Valid but untyped candidates are catalog-internal
				// (container references); report them untagged.
				tag = ""
			}
			if !yield(asset.Dependency{Type: tag, ID: id}) {
				return
			}
		}
	}
}
