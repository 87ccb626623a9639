package formats

import (
	"fmt"

	"github.com/samcharles93/relic/pkg/layout"
)

// MetaTransitionKind discriminates the transition variants.
type MetaTransitionKind uint32

const (
	MetaTransAnimation       MetaTransitionKind = 0
	MetaTransTransition      MetaTransitionKind = 1
	MetaTransPhaseTransition MetaTransitionKind = 2
	MetaTransNotATransition  MetaTransitionKind = 3
)

// MetaTransition describes how one animation blends into another.
// Animation-kind transitions embed a full meta-animation tree;
// NotATransition carries no body at all.
type MetaTransition struct {
	Kind      MetaTransitionKind
	Animation *MetaAnimation

	// Transition, PhaseTransition
	Duration float32
	Unknown1 uint32
	Unknown2 uint8
	Unknown3 uint8
	Unknown4 uint32
}

func parseMetaTransition(c *layout.Cursor, env layout.Env) (MetaTransition, error) {
	var t MetaTransition
	kind, err := c.ReadU32()
	if err != nil {
		return t, err
	}
	t.Kind = MetaTransitionKind(kind)

	switch t.Kind {
	case MetaTransAnimation:
		anim, err := parseMetaAnimation(c, env)
		if err != nil {
			return t, err
		}
		t.Animation = &anim
		return t, nil

	case MetaTransTransition, MetaTransPhaseTransition:
		if t.Duration, err = c.ReadF32(); err != nil {
			return t, err
		}
		if t.Unknown1, err = c.ReadU32(); err != nil {
			return t, err
		}
		if t.Unknown2, err = c.ReadU8(); err != nil {
			return t, err
		}
		if t.Unknown3, err = c.ReadU8(); err != nil {
			return t, err
		}
		t.Unknown4, err = c.ReadU32()
		return t, err

	case MetaTransNotATransition:
		return t, nil

	default:
		return t, fmt.Errorf("%w: meta-transition kind %d at offset %d", layout.ErrMalformed, kind, c.Offset()-4)
	}
}
