package formats

import (
	"fmt"
	"iter"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/layout"
)

// The decoders in this file each target one previously reverse-engineered
// byte layout and pull a small fixed set of identifier fields out of it.
// The RULE and FONT offsets are empirical; a mismatch there surfaces as a
// malformed layout and the dispatch layer falls back to the scanner
// instead of silently proceeding.

func seqOf(deps []asset.Dependency) iter.Seq[asset.Dependency] {
	return func(yield func(asset.Dependency) bool) {
		for _, d := range deps {
			if !yield(d) {
				return
			}
		}
	}
}

// csngDependencies: a CSNG header starts with constant 2 and stores its
// AGSC bank id at absolute offset 0xC.
func csngDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}
	if _, err := layout.Const32(2)(c, env); err != nil {
		return nil, err
	}
	if err := c.Seek(0xC); err != nil {
		return nil, err
	}
	id, err := layout.ID32(c, env)
	if err != nil {
		return nil, err
	}
	var deps []asset.Dependency
	if game.IsValidID(id) {
		deps = append(deps, asset.Dependency{Type: "AGSC", ID: id})
	}
	return seqOf(deps), nil
}

// dumbDependencies: DUMB payloads carry the logbook hierarchy table, a
// count-prefixed list of (string table, name, scan, parent) records.
func dumbDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	type hierEntry struct {
		StringTableID asset.AssetID
		Name          string
		ScanID        asset.AssetID
		ParentID      uint32
	}
	parseEntry := func(c *layout.Cursor, env layout.Env) (hierEntry, error) {
		var e hierEntry
		var err error
		if e.StringTableID, err = layout.ID32(c, env); err != nil {
			return e, err
		}
		if e.Name, err = c.ReadString(); err != nil {
			return e, err
		}
		if e.ScanID, err = layout.ID32(c, env); err != nil {
			return e, err
		}
		e.ParentID, err = c.ReadU32()
		return e, err
	}

	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}
	entries, err := layout.PrefixedArray(parseEntry)(c, env)
	if err != nil {
		return nil, err
	}
	var deps []asset.Dependency
	for _, e := range entries {
		if game.IsValidID(e.StringTableID) {
			deps = append(deps, asset.Dependency{Type: "STRG", ID: e.StringTableID})
		}
		if game.IsValidID(e.ScanID) {
			deps = append(deps, asset.Dependency{Type: "SCAN", ID: e.ScanID})
		}
	}
	return seqOf(deps), nil
}

// frmeDependencies: a FRME header is one u32 followed by a count-prefixed
// list of dependency ids. This is the one decoder that hard-fails on an
// unknown reference rather than falling back: its list is declared, so an
// unresolvable entry is a genuinely broken asset, not an unrecognized
// layout.
func frmeDependencies(a asset.RawAsset, game asset.Game, cat asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}
	if _, err := c.ReadU32(); err != nil {
		return nil, err
	}
	ids, err := layout.PrefixedArray(layout.ID32)(c, env)
	if err != nil {
		return nil, err
	}
	deps := make([]asset.Dependency, 0, len(ids))
	for _, id := range ids {
		tag, err := cat.TypeOf(id)
		if err != nil {
			return nil, fmt.Errorf("FRME dependency %s: %w", id, err)
		}
		deps = append(deps, asset.Dependency{Type: tag, ID: id})
	}
	return seqOf(deps), nil
}

// fsm2Dependencies walks the FSM2 state machine tables; only the fourth
// table's records carry an asset reference.
func fsm2Dependencies(a asset.RawAsset, game asset.Game, cat asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}
	if _, err := layout.ConstBytes([]byte("FSM2"))(c, env); err != nil {
		return nil, err
	}
	version, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	env.Version = version

	var counts [4]uint32
	for i := range counts {
		if counts[i], err = c.ReadU32(); err != nil {
			return nil, err
		}
	}

	// Named sub-records: a name, a version >= 2 16-byte blob, then a
	// count-prefixed list of (name, 4-byte value) pairs.
	skipNamed := func(trailingByte bool, leading4 bool) error {
		if _, err := c.ReadString(); err != nil {
			return err
		}
		if version >= 2 {
			if err := c.Skip(0x10); err != nil {
				return err
			}
		}
		if leading4 {
			if err := c.Skip(4); err != nil {
				return err
			}
		}
		n, err := c.ReadU32()
		if err != nil {
			return err
		}
		if int64(n) > int64(c.Remaining()) {
			return fmt.Errorf("%w: FSM2 pair count %d exceeds %d remaining bytes", layout.ErrMalformed, n, c.Remaining())
		}
		for i := uint32(0); i < n; i++ {
			if _, err := c.ReadString(); err != nil {
				return err
			}
			if err := c.Skip(4); err != nil {
				return err
			}
		}
		if trailingByte {
			return c.Skip(1)
		}
		return nil
	}

	for i := uint32(0); i < counts[0]; i++ { // states
		if err := skipNamed(false, false); err != nil {
			return nil, err
		}
	}
	for i := uint32(0); i < counts[1]; i++ { // triggers
		if err := skipNamed(true, true); err != nil {
			return nil, err
		}
	}
	for i := uint32(0); i < counts[2]; i++ { // signals
		if err := skipNamed(false, false); err != nil {
			return nil, err
		}
	}

	var deps []asset.Dependency
	for i := uint32(0); i < counts[3]; i++ { // logic nodes
		if err := skipNamed(false, false); err != nil {
			return nil, err
		}
		id, err := layout.ID32(c, env)
		if err != nil {
			return nil, err
		}
		if !game.IsValidID(id) {
			continue
		}
		tag, err := cat.TypeOf(id)
		if err != nil {
			return nil, fmt.Errorf("FSM2 dependency %s: %w", id, err)
		}
		deps = append(deps, asset.Dependency{Type: tag, ID: id})
	}
	return seqOf(deps), nil
}

// hintDependencies: hint records reference popup and map-text string
// tables; outside container context each location also surfaces its world
// and area as dependencies.
func hintDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, container bool) (iter.Seq[asset.Dependency], error) {
	type hintLocation struct {
		World   asset.AssetID
		Area    asset.AssetID
		Index   uint32
		MapText asset.AssetID
	}
	type hint struct {
		Name          string
		ImmediateTime float32
		NormalTime    float32
		PopupText     asset.AssetID
		TextTime      float32
		Locations     []hintLocation
	}
	parseLocation := func(c *layout.Cursor, env layout.Env) (hintLocation, error) {
		var l hintLocation
		var err error
		if l.World, err = layout.ID32(c, env); err != nil {
			return l, err
		}
		if l.Area, err = layout.ID32(c, env); err != nil {
			return l, err
		}
		if l.Index, err = c.ReadU32(); err != nil {
			return l, err
		}
		l.MapText, err = layout.ID32(c, env)
		return l, err
	}
	parseHint := func(c *layout.Cursor, env layout.Env) (hint, error) {
		var h hint
		var err error
		if h.Name, err = c.ReadString(); err != nil {
			return h, err
		}
		if h.ImmediateTime, err = c.ReadF32(); err != nil {
			return h, err
		}
		if h.NormalTime, err = c.ReadF32(); err != nil {
			return h, err
		}
		if h.PopupText, err = layout.ID32(c, env); err != nil {
			return h, err
		}
		if h.TextTime, err = c.ReadF32(); err != nil {
			return h, err
		}
		h.Locations, err = layout.PrefixedArray(parseLocation)(c, env)
		return h, err
	}

	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}
	if _, err := layout.Const32(0x00BADBAD)(c, env); err != nil {
		return nil, err
	}
	if _, err := c.ReadU32(); err != nil { // version
		return nil, err
	}
	hints, err := layout.PrefixedArray(parseHint)(c, env)
	if err != nil {
		return nil, err
	}

	var deps []asset.Dependency
	for _, h := range hints {
		if game.IsValidID(h.PopupText) {
			deps = append(deps, asset.Dependency{Type: "STRG", ID: h.PopupText})
		}
		for _, l := range h.Locations {
			if game.IsValidID(l.MapText) {
				deps = append(deps, asset.Dependency{Type: "STRG", ID: l.MapText})
			}
			if !container {
				if game.IsValidID(l.World) {
					deps = append(deps, asset.Dependency{Type: "MLVL", ID: l.World})
				}
				if game.IsValidID(l.Area) {
					deps = append(deps, asset.Dependency{Type: "MREA", ID: l.Area})
				}
			}
		}
	}
	return seqOf(deps), nil
}

// ruleDependencies: a RULE set inherits from the rule set whose id sits at
// absolute offset 0x5.
func ruleDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	if err := c.Seek(0x5); err != nil {
		return nil, err
	}
	id, err := layout.ID32(c, layout.Env{Game: game})
	if err != nil {
		return nil, err
	}
	var deps []asset.Dependency
	if game.IsValidID(id) {
		deps = append(deps, asset.Dependency{Type: "RULE", ID: id})
	}
	return seqOf(deps), nil
}

// fontDependencies: the glyph texture id follows the font name string at
// absolute offset 0x22.
func fontDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	if err := c.Seek(0x22); err != nil {
		return nil, err
	}
	if _, err := c.ReadString(); err != nil { // font name
		return nil, err
	}
	id, err := layout.ID32(c, layout.Env{Game: game})
	if err != nil {
		return nil, err
	}
	var deps []asset.Dependency
	if game.IsValidID(id) {
		deps = append(deps, asset.Dependency{Type: "TXTR", ID: id})
	}
	return seqOf(deps), nil
}

// cmdlDependencies reads the texture ids out of a model's material sets.
// The layout assumed here (36-byte header, section size table, 32-byte
// section alignment) holds for the 32-bit ID family only.
func cmdlDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	if game >= asset.GameCorruption {
		return nil, fmt.Errorf("%w: CMDL material layout unknown for %s", ErrAssumptionsViolated, game)
	}

	c := layout.NewCursor(a.Data)
	env := layout.Env{Game: game}

	// Magic (4), version (4), flags (4), AABox (24).
	if err := c.Skip(36); err != nil {
		return nil, err
	}
	dataSectionCount, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	materialSetCount, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if materialSetCount > dataSectionCount {
		return nil, fmt.Errorf("%w: %d material sets but only %d data sections", layout.ErrMalformed, materialSetCount, dataSectionCount)
	}
	sizes, err := layout.FixedArray(int(dataSectionCount), layout.U32)(c, env)
	if err != nil {
		return nil, err
	}
	if err := c.AlignTo(32, 0); err != nil {
		return nil, err
	}

	var deps []asset.Dependency
	for i := uint32(0); i < materialSetCount; i++ {
		sectionStart := c.Offset()
		ids, err := layout.PrefixedArray(layout.ID32)(c, env)
		if err != nil {
			return nil, fmt.Errorf("material set %d: %w", i, err)
		}
		for _, id := range ids {
			if game.IsValidID(id) {
				deps = append(deps, asset.Dependency{Type: "TXTR", ID: id})
			}
		}
		// Each material set occupies exactly one data section.
		if err := c.Seek(sectionStart + int(sizes[i])); err != nil {
			return nil, err
		}
	}
	return seqOf(deps), nil
}
