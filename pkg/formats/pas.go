package formats

import (
	"fmt"

	"github.com/samcharles93/relic/pkg/layout"
)

// PASParmKind is the value type of one PAS database parameter.
type PASParmKind uint32

const (
	PASParmInt32 PASParmKind = iota
	PASParmUint32
	PASParmReal32
	PASParmBool
	PASParmEnum
)

// PASValue is one parameter value, stored as the raw 32-bit pattern
// (bool values occupy a single byte on the wire and are stored 0/1).
type PASValue struct {
	Kind PASParmKind
	Raw  uint32
}

// PASParmInfo describes one parameter axis of an animation state.
type PASParmInfo struct {
	Kind           PASParmKind
	WeightFunction uint32
	Weight         float32
	RangeMin       PASValue
	RangeMax       PASValue
}

// PASAnimInfo is one animation entry with a value per parameter axis.
type PASAnimInfo struct {
	ID     uint32
	Values []PASValue
}

// PASAnimState groups parameters and animations for one locomotion state.
type PASAnimState struct {
	Unknown   uint32
	ParmInfos []PASParmInfo
	AnimInfos []PASAnimInfo
}

// PASDatabase is the PAS4 locomotion database embedded in each character.
// It carries no asset references but must be traversed byte-exactly to
// reach the fields behind it.
type PASDatabase struct {
	DefaultState uint32
	AnimStates   []PASAnimState
}

var pasMagic = []byte("PAS4")

func parsePASValue(c *layout.Cursor, kind PASParmKind) (PASValue, error) {
	v := PASValue{Kind: kind}
	switch kind {
	case PASParmInt32, PASParmUint32, PASParmReal32, PASParmEnum:
		raw, err := c.ReadU32()
		if err != nil {
			return v, err
		}
		v.Raw = raw
	case PASParmBool:
		b, err := c.ReadU8()
		if err != nil {
			return v, err
		}
		v.Raw = uint32(b)
	default:
		return v, fmt.Errorf("%w: PAS parameter kind %d at offset %d", layout.ErrMalformed, kind, c.Offset())
	}
	return v, nil
}

func parsePASDatabase(c *layout.Cursor, env layout.Env) (PASDatabase, error) {
	var db PASDatabase
	if _, err := layout.ConstBytes(pasMagic)(c, env); err != nil {
		return db, err
	}
	stateCount, err := c.ReadU32()
	if err != nil {
		return db, err
	}
	if db.DefaultState, err = c.ReadU32(); err != nil {
		return db, err
	}
	db.AnimStates, err = layout.FixedArray(int(stateCount), parsePASAnimState)(c, env)
	return db, err
}

func parsePASAnimState(c *layout.Cursor, env layout.Env) (PASAnimState, error) {
	var st PASAnimState
	var err error
	if st.Unknown, err = c.ReadU32(); err != nil {
		return st, err
	}
	parmCount, err := c.ReadU32()
	if err != nil {
		return st, err
	}
	animCount, err := c.ReadU32()
	if err != nil {
		return st, err
	}
	// Every animation entry consumes at least four bytes for its id, so a
	// count past the remaining budget is malformed before any allocation.
	if int64(animCount) > int64(c.Remaining()) {
		return st, fmt.Errorf("%w: declared animation count %d at offset %d exceeds %d remaining bytes", layout.ErrMalformed, animCount, c.Offset()-4, c.Remaining())
	}

	st.ParmInfos, err = layout.FixedArray(int(parmCount), parsePASParmInfo)(c, env)
	if err != nil {
		return st, err
	}

	// Each animation entry carries one value per parameter axis, typed by
	// the matching parm info.
	st.AnimInfos = make([]PASAnimInfo, 0, animCount)
	for i := uint32(0); i < animCount; i++ {
		var ai PASAnimInfo
		if ai.ID, err = c.ReadU32(); err != nil {
			return st, err
		}
		ai.Values = make([]PASValue, 0, len(st.ParmInfos))
		for _, pi := range st.ParmInfos {
			v, err := parsePASValue(c, pi.Kind)
			if err != nil {
				return st, err
			}
			ai.Values = append(ai.Values, v)
		}
		st.AnimInfos = append(st.AnimInfos, ai)
	}
	return st, nil
}

func parsePASParmInfo(c *layout.Cursor, _ layout.Env) (PASParmInfo, error) {
	var pi PASParmInfo
	kind, err := c.ReadU32()
	if err != nil {
		return pi, err
	}
	pi.Kind = PASParmKind(kind)
	if pi.Kind > PASParmEnum {
		return pi, fmt.Errorf("%w: PAS parameter kind %d at offset %d", layout.ErrMalformed, kind, c.Offset()-4)
	}
	if pi.WeightFunction, err = c.ReadU32(); err != nil {
		return pi, err
	}
	if pi.Weight, err = c.ReadF32(); err != nil {
		return pi, err
	}
	if pi.RangeMin, err = parsePASValue(c, pi.Kind); err != nil {
		return pi, err
	}
	pi.RangeMax, err = parsePASValue(c, pi.Kind)
	return pi, err
}
