package formats

import (
	"iter"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/layout"
)

// CharAnimTime is the engine's animation timestamp: a second count plus a
// differential-state discriminant.
type CharAnimTime struct {
	Time              float32
	DifferentialState uint32
}

// EventBase is the header every animation event shares.
type EventBase struct {
	Unknown    uint16
	Name       string
	Type       uint16
	Time       CharAnimTime
	EventIndex uint32
}

// LoopEvent toggles animation looping at a point in time.
type LoopEvent struct {
	Base    EventBase
	Looping uint8
}

// UserEvent is a named script callback.
type UserEvent struct {
	Base     EventBase
	UserType uint32
	UserName string
}

// EffectEvent spawns a particle effect; it is the only event kind that
// references another asset. The bone anchor is a name for one game family
// and a numeric id for the other.
type EffectEvent struct {
	Base         EventBase
	FrameCount   uint32
	EffectType   asset.TypeTag
	EffectID     asset.AssetID
	BoneName     *string
	BoneID       *uint32
	Scale        float32
	ParentedMode uint32
}

// SoundEvent triggers audio playback by engine sound id.
type SoundEvent struct {
	Base         EventBase
	SoundID      uint32
	RefAmplitude float32
	MaxDistance  float32
	Echo1        *uint32
	Echo2        *uint32
}

// EVNT is an animation event set. In the first 32-bit game it is a
// standalone asset paired with each ANIM; in the second it is embedded
// directly in the animation set.
type EVNT struct {
	Version      uint32
	LoopEvents   []LoopEvent
	UserEvents   *[]UserEvent // version >= 2
	EffectEvents []EffectEvent
	SoundEvents  *[]SoundEvent // version >= 2
}

func parseEVNT(c *layout.Cursor, env layout.Env) (EVNT, error) {
	var e EVNT
	version, err := c.ReadU32()
	if err != nil {
		return e, err
	}
	e.Version = version
	env.Version = version

	if e.LoopEvents, err = layout.PrefixedArray(parseLoopEvent)(c, env); err != nil {
		return e, err
	}
	if e.UserEvents, err = layout.WithVersion(2, layout.PrefixedArray(parseUserEvent))(c, env); err != nil {
		return e, err
	}
	if e.EffectEvents, err = layout.PrefixedArray(parseEffectEvent)(c, env); err != nil {
		return e, err
	}
	e.SoundEvents, err = layout.WithVersion(2, layout.PrefixedArray(parseSoundEvent))(c, env)
	return e, err
}

func parseEventBase(c *layout.Cursor, _ layout.Env) (EventBase, error) {
	var b EventBase
	var err error
	if b.Unknown, err = c.ReadU16(); err != nil {
		return b, err
	}
	if b.Name, err = c.ReadString(); err != nil {
		return b, err
	}
	if b.Type, err = c.ReadU16(); err != nil {
		return b, err
	}
	if b.Time.Time, err = c.ReadF32(); err != nil {
		return b, err
	}
	if b.Time.DifferentialState, err = c.ReadU32(); err != nil {
		return b, err
	}
	b.EventIndex, err = c.ReadU32()
	return b, err
}

func parseLoopEvent(c *layout.Cursor, env layout.Env) (LoopEvent, error) {
	var ev LoopEvent
	base, err := parseEventBase(c, env)
	if err != nil {
		return ev, err
	}
	ev.Base = base
	ev.Looping, err = c.ReadU8()
	return ev, err
}

func parseUserEvent(c *layout.Cursor, env layout.Env) (UserEvent, error) {
	var ev UserEvent
	base, err := parseEventBase(c, env)
	if err != nil {
		return ev, err
	}
	ev.Base = base
	if ev.UserType, err = c.ReadU32(); err != nil {
		return ev, err
	}
	ev.UserName, err = c.ReadString()
	return ev, err
}

func parseEffectEvent(c *layout.Cursor, env layout.Env) (EffectEvent, error) {
	var ev EffectEvent
	base, err := parseEventBase(c, env)
	if err != nil {
		return ev, err
	}
	ev.Base = base
	if ev.FrameCount, err = c.ReadU32(); err != nil {
		return ev, err
	}
	if ev.EffectType, err = layout.FourCC(c, env); err != nil {
		return ev, err
	}
	if ev.EffectID, err = layout.ID32(c, env); err != nil {
		return ev, err
	}
	if ev.BoneName, err = layout.IfGame(layout.StringZ, asset.GamePrime)(c, env); err != nil {
		return ev, err
	}
	if ev.BoneID, err = layout.IfGame(layout.U32, asset.GameEchoes)(c, env); err != nil {
		return ev, err
	}
	if ev.Scale, err = c.ReadF32(); err != nil {
		return ev, err
	}
	ev.ParentedMode, err = c.ReadU32()
	return ev, err
}

func parseSoundEvent(c *layout.Cursor, env layout.Env) (SoundEvent, error) {
	var ev SoundEvent
	base, err := parseEventBase(c, env)
	if err != nil {
		return ev, err
	}
	ev.Base = base
	if ev.SoundID, err = c.ReadU32(); err != nil {
		return ev, err
	}
	if ev.RefAmplitude, err = c.ReadF32(); err != nil {
		return ev, err
	}
	if ev.MaxDistance, err = c.ReadF32(); err != nil {
		return ev, err
	}
	if ev.Echo1, err = layout.IfGame(layout.U32, asset.GameEchoes)(c, env); err != nil {
		return ev, err
	}
	ev.Echo2, err = layout.IfGame(layout.U32, asset.GameEchoes)(c, env)
	return ev, err
}

// dependencies yields the particle reference of every effect event.
func (e *EVNT) dependencies(game asset.Game, yield func(asset.Dependency) bool) bool {
	for i := range e.EffectEvents {
		ev := &e.EffectEvents[i]
		if !ev.EffectType.Valid() || !game.IsValidID(ev.EffectID) {
			continue
		}
		if !yield(asset.Dependency{Type: ev.EffectType, ID: ev.EffectID}) {
			return false
		}
	}
	return true
}

// evntDependencies decodes a standalone EVNT asset.
func evntDependencies(a asset.RawAsset, game asset.Game, _ asset.Catalog, _ bool) (iter.Seq[asset.Dependency], error) {
	c := layout.NewCursor(a.Data)
	e, err := parseEVNT(c, layout.Env{Game: game})
	if err != nil {
		return nil, err
	}
	return func(yield func(asset.Dependency) bool) {
		e.dependencies(game, yield)
	}, nil
}
