package layout

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/samcharles93/relic/pkg/asset"
)

func be16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func be64(v uint64) []byte { return binary.BigEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestConstCodecs(t *testing.T) {
	t.Parallel()

	if _, err := Const16(1)(NewCursor(be16(1)), Env{}); err != nil {
		t.Fatalf("Const16 match: %v", err)
	}
	if _, err := Const16(1)(NewCursor(be16(2)), Env{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Const16 mismatch: %v", err)
	}
	if _, err := Const32(0x00BADBAD)(NewCursor(be32(0x00BADBAD)), Env{}); err != nil {
		t.Fatalf("Const32 match: %v", err)
	}
	if _, err := Const32(2)(NewCursor(be32(3)), Env{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("Const32 mismatch: %v", err)
	}
	if _, err := ConstBytes([]byte("PAS4"))(NewCursor([]byte("PAS4")), Env{}); err != nil {
		t.Fatalf("ConstBytes match: %v", err)
	}
	if _, err := ConstBytes([]byte("PAS4"))(NewCursor([]byte("FSM2")), Env{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("ConstBytes mismatch: %v", err)
	}
}

func TestIDWidth(t *testing.T) {
	t.Parallel()

	data := cat(be32(0xCAFEBABE), be32(0x11223344))

	id, err := ID(NewCursor(data), Env{Game: asset.GamePrime})
	if err != nil || id != 0xCAFEBABE {
		t.Fatalf("32-bit ID: got %s, %v", id, err)
	}

	id, err = ID(NewCursor(data), Env{Game: asset.GameCorruption})
	if err != nil || id != 0xCAFEBABE11223344 {
		t.Fatalf("64-bit ID: got %s, %v", id, err)
	}

	id, err = ID32(NewCursor(data), Env{Game: asset.GameCorruption})
	if err != nil || id != 0xCAFEBABE {
		t.Fatalf("ID32 is width-independent: got %s, %v", id, err)
	}
}

func TestPrefixedArray(t *testing.T) {
	t.Parallel()

	data := cat(be32(3), be32(10), be32(20), be32(30))
	got, err := PrefixedArray(U32)(NewCursor(data), Env{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint32{10, 20, 30}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// Declared count larger than the remaining bytes must be rejected
	// before any element decode.
	_, err = PrefixedArray(U32)(NewCursor(be32(0xFFFFFFFF)), Env{})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("absurd count: %v", err)
	}

	// Truncated element.
	_, err = PrefixedArray(U32)(NewCursor(cat(be32(2), be32(10), []byte{0})), Env{})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("truncated element: %v", err)
	}
}

func TestVersionGates(t *testing.T) {
	t.Parallel()

	data := be32(42)

	// Below the threshold nothing is consumed and absence is nil.
	c := NewCursor(data)
	got, err := WithVersion(5, U32)(c, Env{Version: 4})
	if err != nil || got != nil {
		t.Fatalf("WithVersion below: got %v, %v", got, err)
	}
	if c.Offset() != 0 {
		t.Fatalf("WithVersion below consumed %d bytes", c.Offset())
	}

	got, err = WithVersion(5, U32)(NewCursor(data), Env{Version: 5})
	if err != nil || got == nil || *got != 42 {
		t.Fatalf("WithVersion at threshold: got %v, %v", got, err)
	}

	got, err = BeforeVersion(10, U32)(NewCursor(data), Env{Version: 10})
	if err != nil || got != nil {
		t.Fatalf("BeforeVersion at threshold: got %v, %v", got, err)
	}
	got, err = BeforeVersion(10, U32)(NewCursor(data), Env{Version: 9})
	if err != nil || got == nil || *got != 42 {
		t.Fatalf("BeforeVersion below: got %v, %v", got, err)
	}
}

func TestIfGame(t *testing.T) {
	t.Parallel()

	data := be32(7)

	got, err := IfGame(U32, asset.GamePrime)(NewCursor(data), Env{Game: asset.GamePrime})
	if err != nil || got == nil || *got != 7 {
		t.Fatalf("matching game: got %v, %v", got, err)
	}

	c := NewCursor(data)
	got, err = IfGame(U32, asset.GamePrime)(c, Env{Game: asset.GameEchoes})
	if err != nil || got != nil || c.Offset() != 0 {
		t.Fatalf("non-matching game: got %v, %v, off=%d", got, err, c.Offset())
	}
}

func TestAABox(t *testing.T) {
	t.Parallel()

	var data []byte
	for i := 1; i <= 6; i++ {
		data = append(data, be32(uint32(0x3F800000))...) // 1.0
	}
	box, err := AABox(NewCursor(data), Env{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range box {
		if v != 1.0 {
			t.Fatalf("got %v", box)
		}
	}
}

func TestFixedArray(t *testing.T) {
	t.Parallel()

	got, err := FixedArray(2, U16)(NewCursor(cat(be16(1), be16(2))), Env{})
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint16{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := FixedArray(500, U16)(NewCursor(be16(1)), Env{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("oversized fixed array: %v", err)
	}
}

func TestU64Codec(t *testing.T) {
	t.Parallel()

	got, err := U64(NewCursor(be64(0x0102030405060708)), Env{})
	if err != nil || got != 0x0102030405060708 {
		t.Fatalf("got %#x, %v", got, err)
	}
}
