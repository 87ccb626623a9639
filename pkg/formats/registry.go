// Package formats extracts cross-asset references from raw asset payloads.
//
// A registry maps 4-character type tags to structured decoders built on
// pkg/layout. Decode picks the structured decoder for an asset's tag and
// runs it; when the decoder reports its assumptions are violated, or when
// no decoder is registered at all, the heuristic byte scanner takes over.
// Structured results are complete: the scanner never runs in addition to a
// successful structured decode.
package formats

import (
	"errors"
	"iter"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/layout"
)

// DecodeFunc is one structured decoder. Parsing and any catalog lookup
// that can fail happen eagerly; the returned sequence is lazy, finite,
// restartable and yields records in structured field order. Errors
// wrapping ErrAssumptionsViolated or layout.ErrMalformed mean "fall back
// to the scanner"; anything else is a hard failure for this asset.
type DecodeFunc func(a asset.RawAsset, game asset.Game, cat asset.Catalog, container bool) (iter.Seq[asset.Dependency], error)

// Registry is a closed dispatch table from type tag to decoder,
// constructed at startup and extensible by callers before use.
type Registry struct {
	decoders map[asset.TypeTag]DecodeFunc
}

// NewRegistry returns a registry preloaded with every built-in decoder.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[asset.TypeTag]DecodeFunc)}
	r.Register("ANCS", ancsDependencies)
	r.Register("EVNT", evntDependencies)
	r.Register("CSNG", csngDependencies)
	r.Register("DUMB", dumbDependencies)
	r.Register("FRME", frmeDependencies)
	r.Register("FSM2", fsm2Dependencies)
	r.Register("HINT", hintDependencies)
	r.Register("RULE", ruleDependencies)
	r.Register("FONT", fontDependencies)
	r.Register("CMDL", cmdlDependencies)
	return r
}

// Register installs or replaces the decoder for tag.
func (r *Registry) Register(tag asset.TypeTag, fn DecodeFunc) {
	r.decoders[tag] = fn
}

// Lookup returns the decoder registered for tag, if any.
func (r *Registry) Lookup(tag asset.TypeTag) (DecodeFunc, bool) {
	fn, ok := r.decoders[tag]
	return fn, ok
}

// Decode resolves the direct dependencies of a single asset.
//
// State machine per asset:
//
//	Start → TryStructured → {Success → Done, AssumptionsViolated → TryHeuristic → Done}
//	Start → (no decoder)  → TryHeuristic → Done
//
// There are no retries beyond the single fallback step; the heuristic
// scanner cannot itself fail.
func (r *Registry) Decode(a asset.RawAsset, game asset.Game, cat asset.Catalog, container bool) (iter.Seq[asset.Dependency], error) {
	if fn, ok := r.decoders[a.Type]; ok {
		seq, err := fn(a, game, cat, container)
		if err == nil {
			return seq, nil
		}
		if !errors.Is(err, ErrAssumptionsViolated) && !errors.Is(err, layout.ErrMalformed) {
			return nil, err
		}
	}
	return Scan(a.Data, game, cat, container), nil
}

// Default is the process-wide registry with the built-in decoders.
var Default = NewRegistry()

// Decode runs Registry.Decode on the default registry.
func Decode(a asset.RawAsset, game asset.Game, cat asset.Catalog, container bool) (iter.Seq[asset.Dependency], error) {
	return Default.Decode(a, game, cat, container)
}
