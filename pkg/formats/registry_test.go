package formats

import (
	"errors"
	"iter"
	"reflect"
	"testing"

	"github.com/samcharles93/relic/pkg/asset"
)

func TestDecodeUnregisteredTagUsesScanner(t *testing.T) {
	t.Parallel()

	cat := newFakeCatalog().add(0xAABBCC01, "TXTR")
	a := asset.RawAsset{Type: "STRG", Data: (&builder{}).u32(0).u32(0xAABBCC01).bytes()}

	seq, err := Decode(a, asset.GamePrime, cat, false)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(seq)
	want := []asset.Dependency{{Type: "TXTR", ID: 0xAABBCC01}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeFallsBackOnMalformedLayout(t *testing.T) {
	t.Parallel()

	cat := newFakeCatalog().add(0xAABBCC01, "TXTR")

	// A HINT payload without the magic constant: the structured decoder
	// rejects it, the scanner still finds the embedded reference.
	data := (&builder{}).u32(0x12345678).u32(0xAABBCC01).bytes()
	seq, err := Decode(asset.RawAsset{Type: "HINT", Data: data}, asset.GamePrime, cat, false)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(seq)
	want := []asset.Dependency{{Type: "TXTR", ID: 0xAABBCC01}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeFallsBackOnAssumptionsViolated(t *testing.T) {
	t.Parallel()

	cat := newFakeCatalog().add(0xAABBCCDD00112233, "TXTR")

	// ANCS does not exist for the 64-bit ID family; dispatch degrades to
	// the scanner at that game's width.
	data := (&builder{}).u64(0xAABBCCDD00112233).bytes()
	seq, err := Decode(asset.RawAsset{Type: "ANCS", Data: data}, asset.GameCorruption, cat, false)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(seq)
	want := []asset.Dependency{{Type: "TXTR", ID: 0xAABBCCDD00112233}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeFRMEHardFailure(t *testing.T) {
	t.Parallel()

	// A declared FRME reference the catalog cannot resolve is a hard
	// failure; the scanner must not be consulted.
	cat := newFakeCatalog()
	data := (&builder{}).u32(0).u32(1).u32(0xAABBCC01).bytes()

	_, err := Decode(asset.RawAsset{Type: "FRME", Data: data}, asset.GamePrime, cat, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, asset.ErrUnknownAsset) {
		t.Fatalf("error does not wrap ErrUnknownAsset: %v", err)
	}
}

func TestRegisterOverride(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("STRG", func(a asset.RawAsset, game asset.Game, cat asset.Catalog, container bool) (iter.Seq[asset.Dependency], error) {
		return seqOf([]asset.Dependency{{Type: "TXTR", ID: 0x42}}), nil
	})
	seq, err := r.Decode(asset.RawAsset{Type: "STRG"}, asset.GamePrime, newFakeCatalog(), false)
	if err != nil {
		t.Fatal(err)
	}
	got := collect(seq)
	if len(got) != 1 || got[0].ID != 0x42 {
		t.Fatalf("got %v", got)
	}

	if _, ok := r.Lookup("STRG"); !ok {
		t.Fatal("Lookup after Register failed")
	}
	if _, ok := r.Lookup("XXXX"); ok {
		t.Fatal("Lookup of unregistered tag succeeded")
	}
}
