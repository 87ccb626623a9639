package formats

import (
	"fmt"
	"iter"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/layout"
)

// The ANCS character/animation set only exists in the 32-bit ID games, so
// every identifier below is read with ID32.

// AnimationName binds an animation slot to a human-readable name. The
// extra string disappears at character version 10.
type AnimationName struct {
	AnimationID uint32
	Unknown     *string // before version 10
	Name        string
}

// ParticleResourceData is four independently-optional lists of particle
// systems attached to a character.
type ParticleResourceData struct {
	Generic  []asset.AssetID  // PART
	Swoosh   []asset.AssetID  // SWHC
	Unknown  *uint32          // version >= 6
	Electric []asset.AssetID  // ELSC
	Spawn    *[]asset.AssetID // SPSC, version >= 10
}

// AnimationAABB is a named bounding box for one animation.
type AnimationAABB struct {
	Name   string
	Bounds [6]float32
}

// IndexedAnimationAABB is the version-10 replacement keyed by animation id.
type IndexedAnimationAABB struct {
	ID     uint32
	Bounds [6]float32
}

// EffectComponent is one particle emitter within an effect; the bone
// anchor is a name in the first game and an id in the second.
type EffectComponent struct {
	Name         string
	ParticleType asset.TypeTag
	ParticleID   asset.AssetID
	BoneName     *string
	BoneID       *uint32
	Scale        float32
	ParentedMode uint32
	Flags        uint32
}

// Effect is a named group of components.
type Effect struct {
	Name       string
	Components []EffectComponent
}

// Character is one suit/body variant in the character set. Fields gated
// by the per-character format version are pointers: absence is distinct
// from a zero value, because absence changes the dependency output.
type Character struct {
	ID         uint32
	Version    uint16
	Name       string
	ModelID    asset.AssetID // CMDL
	SkinID     asset.AssetID // CSKR
	SkeletonID asset.AssetID // CINF

	AnimationNames []AnimationName
	PAS            PASDatabase
	Particles      ParticleResourceData

	Unknown1 uint32
	Unknown2 *uint32 // version >= 10

	AnimationAABBs *[]AnimationAABB // version >= 2
	Effects        *[]Effect        // version >= 2

	FrozenModel *asset.AssetID // CMDL, version >= 4
	FrozenSkin  *asset.AssetID // CSKR, version >= 4

	AnimationIDMap *[]uint32 // version >= 5

	SpatialPrimitivesID   *asset.AssetID          // CSPP, version >= 10
	Unknown3              *uint8                  // version >= 10
	IndexedAnimationAABBs *[]IndexedAnimationAABB // version >= 10
}

// Animation names a meta-animation tree.
type Animation struct {
	Name string
	Meta MetaAnimation
}

// Transition connects two animation slots through a meta-transition.
type Transition struct {
	Unknown    uint32
	AnimIDA    uint32
	AnimIDB    uint32
	Transition MetaTransition
}

// AdditiveAnimation configures additive blending for one animation slot.
type AdditiveAnimation struct {
	AnimationID uint32
	FadeIn      float32
	FadeOut     float32
}

// AdditiveBlock is present iff the set's table count is at least 2.
type AdditiveBlock struct {
	Animations     []AdditiveAnimation
	DefaultFadeIn  float32
	DefaultFadeOut float32
}

// HalfTransition is present (as a list) iff the table count is at least 3.
type HalfTransition struct {
	AnimationID uint32
	Transition  MetaTransition
}

// AnimationResourcePair pairs an ANIM with its standalone EVNT. Only the
// first game stores these; the second embeds the event sets instead. The
// two trailing lists are mutually exclusive across game variants.
type AnimationResourcePair struct {
	AnimID  asset.AssetID // ANIM
	EventID asset.AssetID // EVNT
}

// AnimationSet is the shared, non-per-character animation data.
type AnimationSet struct {
	TableCount        uint16
	Animations        []Animation
	Transitions       []Transition
	DefaultTransition MetaTransition

	Additive        *AdditiveBlock    // table count >= 2
	HalfTransitions *[]HalfTransition // table count >= 3

	AnimationResources *[]AnimationResourcePair // first game only
	EventSets          *[]EVNT                  // second game only
}

// ANCS is a fully parsed character/animation set asset.
type ANCS struct {
	Characters   []Character
	AnimationSet AnimationSet
}

// ParseANCS decodes an ANCS payload. Games outside the 32-bit ID family
// never shipped this format; asking for one is an assumption violation,
// not a malformed asset.
func ParseANCS(data []byte, game asset.Game) (*ANCS, error) {
	if game != asset.GamePrime && game != asset.GameEchoes {
		return nil, fmt.Errorf("%w: ANCS does not exist for %s", ErrAssumptionsViolated, game)
	}
	c := layout.NewCursor(data)
	env := layout.Env{Game: game}

	if _, err := layout.Const16(1)(c, env); err != nil {
		return nil, fmt.Errorf("ANCS version: %w", err)
	}
	if _, err := layout.Const16(1)(c, env); err != nil {
		return nil, fmt.Errorf("character set version: %w", err)
	}

	out := &ANCS{}
	var err error
	if out.Characters, err = layout.PrefixedArray(parseCharacter)(c, env); err != nil {
		return nil, fmt.Errorf("character set: %w", err)
	}
	if out.AnimationSet, err = parseAnimationSet(c, env); err != nil {
		return nil, fmt.Errorf("animation set: %w", err)
	}
	return out, nil
}

func parseCharacter(c *layout.Cursor, env layout.Env) (Character, error) {
	var ch Character
	var err error
	if ch.ID, err = c.ReadU32(); err != nil {
		return ch, err
	}
	if ch.Version, err = c.ReadU16(); err != nil {
		return ch, err
	}
	// Per-character format version gates everything below.
	env.Version = uint32(ch.Version)

	if ch.Name, err = c.ReadString(); err != nil {
		return ch, err
	}
	if ch.ModelID, err = layout.ID32(c, env); err != nil {
		return ch, err
	}
	if ch.SkinID, err = layout.ID32(c, env); err != nil {
		return ch, err
	}
	if ch.SkeletonID, err = layout.ID32(c, env); err != nil {
		return ch, err
	}
	if ch.AnimationNames, err = layout.PrefixedArray(parseAnimationName)(c, env); err != nil {
		return ch, err
	}
	if ch.PAS, err = parsePASDatabase(c, env); err != nil {
		return ch, err
	}
	if ch.Particles, err = parseParticleResourceData(c, env); err != nil {
		return ch, err
	}
	if ch.Unknown1, err = c.ReadU32(); err != nil {
		return ch, err
	}
	if ch.Unknown2, err = layout.WithVersion(10, layout.U32)(c, env); err != nil {
		return ch, err
	}
	if ch.AnimationAABBs, err = layout.WithVersion(2, layout.PrefixedArray(parseAnimationAABB))(c, env); err != nil {
		return ch, err
	}
	if ch.Effects, err = layout.WithVersion(2, layout.PrefixedArray(parseEffect))(c, env); err != nil {
		return ch, err
	}
	if ch.FrozenModel, err = layout.WithVersion(4, layout.ID32)(c, env); err != nil {
		return ch, err
	}
	if ch.FrozenSkin, err = layout.WithVersion(4, layout.ID32)(c, env); err != nil {
		return ch, err
	}
	if ch.AnimationIDMap, err = layout.WithVersion(5, layout.PrefixedArray(layout.U32))(c, env); err != nil {
		return ch, err
	}
	if ch.SpatialPrimitivesID, err = layout.WithVersion(10, layout.ID32)(c, env); err != nil {
		return ch, err
	}
	if ch.Unknown3, err = layout.WithVersion(10, layout.U8)(c, env); err != nil {
		return ch, err
	}
	ch.IndexedAnimationAABBs, err = layout.WithVersion(10, layout.PrefixedArray(parseIndexedAnimationAABB))(c, env)
	return ch, err
}

func parseAnimationName(c *layout.Cursor, env layout.Env) (AnimationName, error) {
	var an AnimationName
	var err error
	if an.AnimationID, err = c.ReadU32(); err != nil {
		return an, err
	}
	if an.Unknown, err = layout.BeforeVersion(10, layout.StringZ)(c, env); err != nil {
		return an, err
	}
	an.Name, err = c.ReadString()
	return an, err
}

func parseParticleResourceData(c *layout.Cursor, env layout.Env) (ParticleResourceData, error) {
	var pd ParticleResourceData
	var err error
	ids := layout.PrefixedArray(layout.ID32)
	if pd.Generic, err = ids(c, env); err != nil {
		return pd, err
	}
	if pd.Swoosh, err = ids(c, env); err != nil {
		return pd, err
	}
	if pd.Unknown, err = layout.WithVersion(6, layout.U32)(c, env); err != nil {
		return pd, err
	}
	if pd.Electric, err = ids(c, env); err != nil {
		return pd, err
	}
	pd.Spawn, err = layout.WithVersion(10, ids)(c, env)
	return pd, err
}

func parseAnimationAABB(c *layout.Cursor, env layout.Env) (AnimationAABB, error) {
	var ab AnimationAABB
	var err error
	if ab.Name, err = c.ReadString(); err != nil {
		return ab, err
	}
	ab.Bounds, err = layout.AABox(c, env)
	return ab, err
}

func parseIndexedAnimationAABB(c *layout.Cursor, env layout.Env) (IndexedAnimationAABB, error) {
	var ab IndexedAnimationAABB
	var err error
	if ab.ID, err = c.ReadU32(); err != nil {
		return ab, err
	}
	ab.Bounds, err = layout.AABox(c, env)
	return ab, err
}

func parseEffect(c *layout.Cursor, env layout.Env) (Effect, error) {
	var ef Effect
	var err error
	if ef.Name, err = c.ReadString(); err != nil {
		return ef, err
	}
	ef.Components, err = layout.PrefixedArray(parseEffectComponent)(c, env)
	return ef, err
}

func parseEffectComponent(c *layout.Cursor, env layout.Env) (EffectComponent, error) {
	var ec EffectComponent
	var err error
	if ec.Name, err = c.ReadString(); err != nil {
		return ec, err
	}
	if ec.ParticleType, err = layout.FourCC(c, env); err != nil {
		return ec, err
	}
	if ec.ParticleID, err = layout.ID32(c, env); err != nil {
		return ec, err
	}
	if ec.BoneName, err = layout.IfGame(layout.StringZ, asset.GamePrime)(c, env); err != nil {
		return ec, err
	}
	if ec.BoneID, err = layout.IfGame(layout.U32, asset.GameEchoes)(c, env); err != nil {
		return ec, err
	}
	if ec.Scale, err = c.ReadF32(); err != nil {
		return ec, err
	}
	if ec.ParentedMode, err = c.ReadU32(); err != nil {
		return ec, err
	}
	ec.Flags, err = c.ReadU32()
	return ec, err
}

func parseAnimationSet(c *layout.Cursor, env layout.Env) (AnimationSet, error) {
	var as AnimationSet
	var err error
	if as.TableCount, err = c.ReadU16(); err != nil {
		return as, err
	}
	if as.Animations, err = layout.PrefixedArray(parseAnimation)(c, env); err != nil {
		return as, err
	}
	if as.Transitions, err = layout.PrefixedArray(parseTransition)(c, env); err != nil {
		return as, err
	}
	if as.DefaultTransition, err = parseMetaTransition(c, env); err != nil {
		return as, err
	}

	if as.TableCount >= 2 {
		var blk AdditiveBlock
		if blk.Animations, err = layout.PrefixedArray(parseAdditiveAnimation)(c, env); err != nil {
			return as, err
		}
		if blk.DefaultFadeIn, err = c.ReadF32(); err != nil {
			return as, err
		}
		if blk.DefaultFadeOut, err = c.ReadF32(); err != nil {
			return as, err
		}
		as.Additive = &blk
	}
	if as.TableCount >= 3 {
		half, err := layout.PrefixedArray(parseHalfTransition)(c, env)
		if err != nil {
			return as, err
		}
		as.HalfTransitions = &half
	}

	if as.AnimationResources, err = layout.IfGame(layout.PrefixedArray(parseAnimationResourcePair), asset.GamePrime)(c, env); err != nil {
		return as, err
	}
	as.EventSets, err = layout.IfGame(layout.PrefixedArray(parseEVNT), asset.GameEchoes)(c, env)
	return as, err
}

func parseAnimation(c *layout.Cursor, env layout.Env) (Animation, error) {
	var a Animation
	var err error
	if a.Name, err = c.ReadString(); err != nil {
		return a, err
	}
	a.Meta, err = parseMetaAnimation(c, env)
	return a, err
}

func parseTransition(c *layout.Cursor, env layout.Env) (Transition, error) {
	var t Transition
	var err error
	if t.Unknown, err = c.ReadU32(); err != nil {
		return t, err
	}
	if t.AnimIDA, err = c.ReadU32(); err != nil {
		return t, err
	}
	if t.AnimIDB, err = c.ReadU32(); err != nil {
		return t, err
	}
	t.Transition, err = parseMetaTransition(c, env)
	return t, err
}

func parseAdditiveAnimation(c *layout.Cursor, _ layout.Env) (AdditiveAnimation, error) {
	var aa AdditiveAnimation
	var err error
	if aa.AnimationID, err = c.ReadU32(); err != nil {
		return aa, err
	}
	if aa.FadeIn, err = c.ReadF32(); err != nil {
		return aa, err
	}
	aa.FadeOut, err = c.ReadF32()
	return aa, err
}

func parseHalfTransition(c *layout.Cursor, env layout.Env) (HalfTransition, error) {
	var ht HalfTransition
	var err error
	if ht.AnimationID, err = c.ReadU32(); err != nil {
		return ht, err
	}
	ht.Transition, err = parseMetaTransition(c, env)
	return ht, err
}

func parseAnimationResourcePair(c *layout.Cursor, env layout.Env) (AnimationResourcePair, error) {
	var p AnimationResourcePair
	var err error
	if p.AnimID, err = layout.ID32(c, env); err != nil {
		return p, err
	}
	p.EventID, err = layout.ID32(c, env)
	return p, err
}

// characterDependencies yields the per-character references: the three
// base resources, the frozen variants, the spatial primitives and every
// particle list entry. Each id passes the width/null validity gate first.
func characterDependencies(ch *Character, game asset.Game, yield func(asset.Dependency) bool) bool {
	emit := func(tag asset.TypeTag, id asset.AssetID) bool {
		if !game.IsValidID(id) {
			return true
		}
		return yield(asset.Dependency{Type: tag, ID: id})
	}
	emitOpt := func(tag asset.TypeTag, id *asset.AssetID) bool {
		if id == nil {
			return true
		}
		return emit(tag, *id)
	}
	emitList := func(tag asset.TypeTag, ids []asset.AssetID) bool {
		for _, id := range ids {
			if !emit(tag, id) {
				return false
			}
		}
		return true
	}

	if !emit("CMDL", ch.ModelID) {
		return false
	}
	if !emit("CSKR", ch.SkinID) {
		return false
	}
	if !emit("CINF", ch.SkeletonID) {
		return false
	}
	if !emitOpt("CMDL", ch.FrozenModel) {
		return false
	}
	if !emitOpt("CSKR", ch.FrozenSkin) {
		return false
	}
	if !emitOpt("CSPP", ch.SpatialPrimitivesID) {
		return false
	}

	if !emitList("PART", ch.Particles.Generic) {
		return false
	}
	if !emitList("SWHC", ch.Particles.Swoosh) {
		return false
	}
	if !emitList("ELSC", ch.Particles.Electric) {
		return false
	}
	if ch.Particles.Spawn != nil && !emitList("SPSC", *ch.Particles.Spawn) {
		return false
	}
	return true
}

// sharedDependencies yields the non-per-character references: every
// meta-animation tree, the animation/event resource pairs of the first
// game and the embedded event sets of the second.
func (a *ANCS) sharedDependencies(game asset.Game, yield func(asset.Dependency) bool) bool {
	for i := range a.AnimationSet.Animations {
		if !a.AnimationSet.Animations[i].Meta.dependencies(game, yield) {
			return false
		}
	}
	if a.AnimationSet.AnimationResources != nil {
		for _, res := range *a.AnimationSet.AnimationResources {
			if game.IsValidID(res.AnimID) && !yield(asset.Dependency{Type: "ANIM", ID: res.AnimID}) {
				return false
			}
			if game.IsValidID(res.EventID) && !yield(asset.Dependency{Type: "EVNT", ID: res.EventID}) {
				return false
			}
		}
	}
	if a.AnimationSet.EventSets != nil {
		for i := range *a.AnimationSet.EventSets {
			if !(*a.AnimationSet.EventSets)[i].dependencies(game, yield) {
				return false
			}
		}
	}
	return true
}

// Dependencies yields every direct reference of the set: all characters
// followed by the shared animation data, in structured field order.
func (a *ANCS) Dependencies(game asset.Game) iter.Seq[asset.Dependency] {
	return func(yield func(asset.Dependency) bool) {
		for i := range a.Characters {
			if !characterDependencies(&a.Characters[i], game, yield) {
				return
			}
		}
		a.sharedDependencies(game, yield)
	}
}

// PlayerActorDependencies is the restricted variant for player actors: it
// visits only the game's designated character index plus the shared
// animation data, skipping the other suit variants entirely.
func (a *ANCS) PlayerActorDependencies(game asset.Game) (iter.Seq[asset.Dependency], error) {
	idx := game.PlayerActorIndex()
	if idx < 0 {
		return nil, fmt.Errorf("%w: no player actor character index for %s", ErrAssumptionsViolated, game)
	}
	if idx >= len(a.Characters) {
		return nil, fmt.Errorf("%w: player actor character index %d outside set of %d", ErrAssumptionsViolated, idx, len(a.Characters))
	}
	return func(yield func(asset.Dependency) bool) {
		if !characterDependencies(&a.Characters[idx], game, yield) {
			return
		}
		a.sharedDependencies(game, yield)
	}, nil
}

// ancsDependencies is the registered decoder entry point.
func ancsDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	parsed, err := ParseANCS(a.Data, game)
	if err != nil {
		return nil, err
	}
	return parsed.Dependencies(game), nil
}

// PlayerActorDependencies decodes an ANCS payload restricted to the
// player-actor character slot.
func PlayerActorDependencies(a asset.RawAsset, game asset.Game) (iter.Seq[asset.Dependency], error) {
	parsed, err := ParseANCS(a.Data, game)
	if err != nil {
		return nil, err
	}
	return parsed.PlayerActorDependencies(game)
}
