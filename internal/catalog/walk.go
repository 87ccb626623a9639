package catalog

import (
	"errors"
	"sync"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/formats"
)

// WalkOptions configures one transitive dependency walk.
type WalkOptions struct {
	// Recursive expands the dependency set through referenced assets.
	// The decode core only ever reports one-hop references; the walker
	// owns the recursion.
	Recursive bool

	// NotExistOK treats unresolvable identifiers as empty rather than
	// failing. The heuristic scanner's probe results are routed through
	// this mode.
	NotExistOK bool

	// Container marks the walk as rooted at a level/container
	// descriptor, which broadens validity judgments.
	Container bool

	// PlayerActor restricts a root ANCS to the player-actor character
	// slot instead of walking every suit variant.
	PlayerActor bool
}

// Walker resolves transitive dependency sets over a catalog. Direct
// (one-hop) results are memoized per (id, container) pair; decoding is
// pure, so cached entries never go stale while the catalog is unchanged.
type Walker struct {
	cat      asset.Catalog
	game     asset.Game
	registry *formats.Registry

	mu    sync.Mutex
	cache map[walkKey][]asset.Dependency
}

type walkKey struct {
	id        asset.AssetID
	container bool
}

// NewWalker builds a walker over cat using the default format registry.
func NewWalker(cat asset.Catalog, game asset.Game) *Walker {
	return NewWalkerWithRegistry(cat, game, formats.Default)
}

// NewWalkerWithRegistry builds a walker with a caller-supplied registry.
func NewWalkerWithRegistry(cat asset.Catalog, game asset.Game, reg *formats.Registry) *Walker {
	return &Walker{
		cat:      cat,
		game:     game,
		registry: reg,
		cache:    make(map[walkKey][]asset.Dependency),
	}
}

// DependenciesFor returns the dependency records of id, deduplicated in
// first-seen order. The root asset itself is not included.
func (w *Walker) DependenciesFor(id asset.AssetID, opts WalkOptions) ([]asset.Dependency, error) {
	seen := make(map[asset.Dependency]struct{})
	visiting := make(map[asset.AssetID]struct{})
	var out []asset.Dependency

	var visit func(id asset.AssetID, root bool) error
	visit = func(id asset.AssetID, root bool) error {
		if _, ok := visiting[id]; ok {
			// Dependency cycle; everything reachable from here is
			// already being collected.
			return nil
		}
		visiting[id] = struct{}{}
		defer delete(visiting, id)

		direct, err := w.direct(id, opts, root)
		if err != nil {
			if opts.NotExistOK && errors.Is(err, asset.ErrUnknownAsset) {
				return nil
			}
			return err
		}
		for _, d := range direct {
			if _, dup := seen[d]; !dup {
				seen[d] = struct{}{}
				out = append(out, d)
			}
			if opts.Recursive {
				if err := visit(d.ID, false); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := visit(id, true); err != nil {
		return nil, err
	}
	return out, nil
}

// direct returns the one-hop dependencies of id.
func (w *Walker) direct(id asset.AssetID, opts WalkOptions, root bool) ([]asset.Dependency, error) {
	playerActor := root && opts.PlayerActor
	key := walkKey{id: id, container: opts.Container}

	if !playerActor {
		w.mu.Lock()
		cached, ok := w.cache[key]
		w.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	raw, err := w.cat.Resolve(id)
	if err != nil {
		return nil, err
	}

	var deps []asset.Dependency
	if playerActor && raw.Type == "ANCS" {
		seq, err := formats.PlayerActorDependencies(raw, w.game)
		if err != nil {
			return nil, err
		}
		for d := range seq {
			deps = append(deps, d)
		}
		// Restricted results are root-specific; keep them out of the
		// shared cache.
		return deps, nil
	}

	seq, err := w.registry.Decode(raw, w.game, w.cat, opts.Container)
	if err != nil {
		return nil, err
	}
	for d := range seq {
		deps = append(deps, d)
	}

	w.mu.Lock()
	w.cache[key] = deps
	w.mu.Unlock()
	return deps, nil
}
