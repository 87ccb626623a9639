package formats

import (
	"fmt"

	"github.com/samcharles93/relic/pkg/asset"
	"github.com/samcharles93/relic/pkg/layout"
)

// MetaAnimationKind discriminates the recursive meta-animation tree.
type MetaAnimationKind uint32

const (
	MetaAnimPlay       MetaAnimationKind = 0
	MetaAnimBlend      MetaAnimationKind = 1
	MetaAnimPhaseBlend MetaAnimationKind = 2
	MetaAnimRandom     MetaAnimationKind = 3
	MetaAnimSequence   MetaAnimationKind = 4
)

// MetaAnimation is one node of an animation's meta tree. Play leaves
// reference ANIM assets; the other kinds compose sub-trees.
type MetaAnimation struct {
	Kind MetaAnimationKind

	// Play
	AnimID      asset.AssetID
	PrimitiveID uint32
	Name        string
	Unknown     uint32

	// Blend, PhaseBlend
	Left           *MetaAnimation
	Right          *MetaAnimation
	BlendParameter float32
	BlendUnknown   uint8

	// Random
	Choices []MetaAnimationChoice

	// Sequence
	Sequence []MetaAnimation
}

// MetaAnimationChoice is one weighted branch of a Random node.
type MetaAnimationChoice struct {
	Animation   MetaAnimation
	Probability uint32
}

func parseMetaAnimation(c *layout.Cursor, env layout.Env) (MetaAnimation, error) {
	var m MetaAnimation
	kind, err := c.ReadU32()
	if err != nil {
		return m, err
	}
	m.Kind = MetaAnimationKind(kind)

	switch m.Kind {
	case MetaAnimPlay:
		if m.AnimID, err = layout.ID32(c, env); err != nil {
			return m, err
		}
		if m.PrimitiveID, err = c.ReadU32(); err != nil {
			return m, err
		}
		if m.Name, err = c.ReadString(); err != nil {
			return m, err
		}
		m.Unknown, err = c.ReadU32()
		return m, err

	case MetaAnimBlend, MetaAnimPhaseBlend:
		left, err := parseMetaAnimation(c, env)
		if err != nil {
			return m, err
		}
		right, err := parseMetaAnimation(c, env)
		if err != nil {
			return m, err
		}
		m.Left, m.Right = &left, &right
		if m.BlendParameter, err = c.ReadF32(); err != nil {
			return m, err
		}
		m.BlendUnknown, err = c.ReadU8()
		return m, err

	case MetaAnimRandom:
		m.Choices, err = layout.PrefixedArray(parseMetaAnimationChoice)(c, env)
		return m, err

	case MetaAnimSequence:
		m.Sequence, err = layout.PrefixedArray(parseMetaAnimation)(c, env)
		return m, err

	default:
		return m, fmt.Errorf("%w: meta-animation kind %d at offset %d", layout.ErrMalformed, kind, c.Offset()-4)
	}
}

func parseMetaAnimationChoice(c *layout.Cursor, env layout.Env) (MetaAnimationChoice, error) {
	var ch MetaAnimationChoice
	anim, err := parseMetaAnimation(c, env)
	if err != nil {
		return ch, err
	}
	ch.Animation = anim
	ch.Probability, err = c.ReadU32()
	return ch, err
}

// dependencies walks the tree and yields every ANIM leaf reference.
func (m *MetaAnimation) dependencies(game asset.Game, yield func(asset.Dependency) bool) bool {
	switch m.Kind {
	case MetaAnimPlay:
		if game.IsValidID(m.AnimID) {
			return yield(asset.Dependency{Type: "ANIM", ID: m.AnimID})
		}
	case MetaAnimBlend, MetaAnimPhaseBlend:
		if !m.Left.dependencies(game, yield) {
			return false
		}
		return m.Right.dependencies(game, yield)
	case MetaAnimRandom:
		for i := range m.Choices {
			if !m.Choices[i].Animation.dependencies(game, yield) {
				return false
			}
		}
	case MetaAnimSequence:
		for i := range m.Sequence {
			if !m.Sequence[i].dependencies(game, yield) {
				return false
			}
		}
	}
	return true
}
