package layout

import (
	"bytes"
	"fmt"

	"github.com/samcharles93/relic/pkg/asset"
)

// Env carries the decode-time discriminants a descriptor may be gated on.
// The identifier width is constant for the whole decode because Game is.
type Env struct {
	// Version is the in-band format version counter of the record being
	// decoded. Zero when the format carries none.
	Version uint32
	// Game is the target game variant.
	Game asset.Game
}

// Codec decodes one value of type T at the cursor position. Codec values
// are pure data: build them once, reuse them across any number of decode
// calls. They never touch anything beyond the cursor.
type Codec[T any] func(*Cursor, Env) (T, error)

// Fixed-width field codecs.
var (
	U8  Codec[uint8]   = func(c *Cursor, _ Env) (uint8, error) { return c.ReadU8() }
	U16 Codec[uint16]  = func(c *Cursor, _ Env) (uint16, error) { return c.ReadU16() }
	U32 Codec[uint32]  = func(c *Cursor, _ Env) (uint32, error) { return c.ReadU32() }
	U64 Codec[uint64]  = func(c *Cursor, _ Env) (uint64, error) { return c.ReadU64() }
	I8  Codec[int8]    = func(c *Cursor, _ Env) (int8, error) { return c.ReadI8() }
	I16 Codec[int16]   = func(c *Cursor, _ Env) (int16, error) { return c.ReadI16() }
	I32 Codec[int32]   = func(c *Cursor, _ Env) (int32, error) { return c.ReadI32() }
	I64 Codec[int64]   = func(c *Cursor, _ Env) (int64, error) { return c.ReadI64() }
	F32 Codec[float32] = func(c *Cursor, _ Env) (float32, error) { return c.ReadF32() }

	// StringZ is a null-terminated string.
	StringZ Codec[string] = func(c *Cursor, _ Env) (string, error) { return c.ReadString() }

	// ID32 is a 32-bit asset identifier regardless of target game; used
	// by formats that only exist in the 32-bit ID family.
	ID32 Codec[asset.AssetID] = func(c *Cursor, _ Env) (asset.AssetID, error) {
		v, err := c.ReadU32()
		return asset.AssetID(v), err
	}

	// ID reads an identifier of the active width for the target game.
	ID Codec[asset.AssetID] = func(c *Cursor, env Env) (asset.AssetID, error) {
		if env.Game.IDWidth() == 8 {
			v, err := c.ReadU64()
			return asset.AssetID(v), err
		}
		v, err := c.ReadU32()
		return asset.AssetID(v), err
	}

	// FourCC reads a 4-character type code.
	FourCC Codec[asset.TypeTag] = func(c *Cursor, _ Env) (asset.TypeTag, error) {
		b, err := c.Bytes(4)
		if err != nil {
			return "", err
		}
		return asset.TypeTag(b), nil
	}
)

// FixedBytes consumes exactly n bytes.
func FixedBytes(n int) Codec[[]byte] {
	return func(c *Cursor, _ Env) ([]byte, error) {
		return c.Bytes(n)
	}
}

// Const16 requires the next big-endian u16 to equal want.
func Const16(want uint16) Codec[uint16] {
	return func(c *Cursor, _ Env) (uint16, error) {
		off := c.Offset()
		v, err := c.ReadU16()
		if err != nil {
			return 0, err
		}
		if v != want {
			return 0, fmt.Errorf("%w: constant mismatch at offset %d: got 0x%04X, want 0x%04X", ErrMalformed, off, v, want)
		}
		return v, nil
	}
}

// Const32 requires the next big-endian u32 to equal want.
func Const32(want uint32) Codec[uint32] {
	return func(c *Cursor, _ Env) (uint32, error) {
		off := c.Offset()
		v, err := c.ReadU32()
		if err != nil {
			return 0, err
		}
		if v != want {
			return 0, fmt.Errorf("%w: constant mismatch at offset %d: got 0x%08X, want 0x%08X", ErrMalformed, off, v, want)
		}
		return v, nil
	}
}

// ConstBytes requires the next len(want) bytes to equal want (magic).
func ConstBytes(want []byte) Codec[[]byte] {
	return func(c *Cursor, _ Env) ([]byte, error) {
		off := c.Offset()
		b, err := c.Bytes(len(want))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(b, want) {
			return nil, fmt.Errorf("%w: magic mismatch at offset %d: got %q, want %q", ErrMalformed, off, b, want)
		}
		return b, nil
	}
}

// PrefixedArray reads a u32 element count followed by that many elements.
// A declared count larger than the remaining byte budget is malformed;
// every element consumes at least one byte, so this rejects absurd counts
// before allocating for them.
func PrefixedArray[T any](elem Codec[T]) Codec[[]T] {
	return func(c *Cursor, env Env) ([]T, error) {
		off := c.Offset()
		n, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		if int64(n) > int64(c.Remaining()) {
			return nil, fmt.Errorf("%w: declared count %d at offset %d exceeds %d remaining bytes", ErrMalformed, n, off, c.Remaining())
		}
		out := make([]T, 0, n)
		for i := uint32(0); i < n; i++ {
			v, err := elem(c, env)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// FixedArray reads exactly n elements.
func FixedArray[T any](n int, elem Codec[T]) Codec[[]T] {
	return func(c *Cursor, env Env) ([]T, error) {
		if n < 0 || n > c.Remaining() {
			return nil, fmt.Errorf("%w: array count %d at offset %d exceeds %d remaining bytes", ErrMalformed, n, c.Offset(), c.Remaining())
		}
		out := make([]T, 0, n)
		for i := 0; i < n; i++ {
			v, err := elem(c, env)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// WithVersion gates a field on env.Version >= min. Below the threshold the
// field is absent and nil is returned: absence is represented, never
// defaulted to a zero value.
func WithVersion[T any](min uint32, inner Codec[T]) Codec[*T] {
	return func(c *Cursor, env Env) (*T, error) {
		if env.Version < min {
			return nil, nil
		}
		v, err := inner(c, env)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// BeforeVersion gates a field on env.Version < v.
func BeforeVersion[T any](v uint32, inner Codec[T]) Codec[*T] {
	return func(c *Cursor, env Env) (*T, error) {
		if env.Version >= v {
			return nil, nil
		}
		val, err := inner(c, env)
		if err != nil {
			return nil, err
		}
		return &val, nil
	}
}

// IfGame gates a field on the target game being one of games.
func IfGame[T any](inner Codec[T], games ...asset.Game) Codec[*T] {
	return func(c *Cursor, env Env) (*T, error) {
		match := false
		for _, g := range games {
			if env.Game == g {
				match = true
				break
			}
		}
		if !match {
			return nil, nil
		}
		v, err := inner(c, env)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// AABox is the 24-byte axis-aligned bounding box used by animation data.
var AABox Codec[[6]float32] = func(c *Cursor, env Env) ([6]float32, error) {
	var box [6]float32
	for i := range box {
		v, err := c.ReadF32()
		if err != nil {
			return box, err
		}
		box[i] = v
	}
	return box, nil
}
