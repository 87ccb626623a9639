package catalog

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/samcharles93/relic/pkg/asset"
)

func be32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// ruleBody builds a RULE payload whose parent rule set id sits at offset 5.
func ruleBody(parent uint32) []byte {
	return concat([]byte{'R', 'U', 'L', 'E', 1}, be32(parent))
}

// dumbBody builds a DUMB payload with one hierarchy entry.
func dumbBody(strg, scan uint32) []byte {
	return concat(be32(1), be32(strg), []byte("entry\x00"), be32(scan), be32(0))
}

// countingCatalog counts Resolve calls to observe walker memoization.
type countingCatalog struct {
	inner    *Memory
	resolves int
}

func (c *countingCatalog) Resolve(id asset.AssetID) (asset.RawAsset, error) {
	c.resolves++
	return c.inner.Resolve(id)
}

func (c *countingCatalog) TypeOf(id asset.AssetID) (asset.TypeTag, error) {
	return c.inner.TypeOf(id)
}

func (c *countingCatalog) IsValid(id asset.AssetID, container bool) bool {
	return c.inner.IsValid(id, container)
}

func TestWalkerDirect(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Add(0x1, "DUMB", dumbBody(0x11, 0x12))
	m.Add(0x11, "STRG", nil)
	m.Add(0x12, "SCAN", nil)

	w := NewWalker(m, asset.GamePrime)
	got, err := w.DependenciesFor(0x1, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []asset.Dependency{
		{Type: "STRG", ID: 0x11},
		{Type: "SCAN", ID: 0x12},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkerRecursiveDedupe(t *testing.T) {
	t.Parallel()

	// Two hierarchy entries name the same string table; the record must
	// appear once, in first-seen order.
	body := concat(
		be32(2),
		be32(0x11), []byte("a\x00"), be32(0x12), be32(0),
		be32(0x11), []byte("b\x00"), be32(0), be32(0),
	)
	m := NewMemory()
	m.Add(0x1, "DUMB", body)
	m.Add(0x11, "STRG", nil)
	m.Add(0x12, "SCAN", nil)

	w := NewWalker(m, asset.GamePrime)
	got, err := w.DependenciesFor(0x1, WalkOptions{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []asset.Dependency{
		{Type: "STRG", ID: 0x11},
		{Type: "SCAN", ID: 0x12},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkerCycle(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Add(0xA1, "RULE", ruleBody(0xA2))
	m.Add(0xA2, "RULE", ruleBody(0xA1))

	w := NewWalker(m, asset.GamePrime)
	got, err := w.DependenciesFor(0xA1, WalkOptions{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []asset.Dependency{
		{Type: "RULE", ID: 0xA2},
		{Type: "RULE", ID: 0xA1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkerNotExistOK(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Add(0xA1, "RULE", ruleBody(0xBAD))

	w := NewWalker(m, asset.GamePrime)
	if _, err := w.DependenciesFor(0xA1, WalkOptions{Recursive: true}); !errors.Is(err, asset.ErrUnknownAsset) {
		t.Fatalf("strict walk: %v", err)
	}

	got, err := w.DependenciesFor(0xA1, WalkOptions{Recursive: true, NotExistOK: true})
	if err != nil {
		t.Fatal(err)
	}
	// The record is still reported; only its expansion is skipped.
	want := []asset.Dependency{{Type: "RULE", ID: 0xBAD}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// An unknown root behaves the same way.
	if _, err := w.DependenciesFor(0xFFF, WalkOptions{}); !errors.Is(err, asset.ErrUnknownAsset) {
		t.Fatalf("unknown root: %v", err)
	}
	got, err = w.DependenciesFor(0xFFF, WalkOptions{NotExistOK: true})
	if err != nil || len(got) != 0 {
		t.Fatalf("unknown root with NotExistOK: %v, %v", got, err)
	}
}

func TestWalkerMemoization(t *testing.T) {
	t.Parallel()

	inner := NewMemory()
	inner.Add(0xA1, "RULE", ruleBody(0xA2))
	inner.Add(0xA2, "RULE", ruleBody(0))

	cc := &countingCatalog{inner: inner}
	w := NewWalker(cc, asset.GamePrime)

	if _, err := w.DependenciesFor(0xA1, WalkOptions{Recursive: true}); err != nil {
		t.Fatal(err)
	}
	first := cc.resolves
	if first == 0 {
		t.Fatal("no resolves recorded")
	}
	if _, err := w.DependenciesFor(0xA1, WalkOptions{Recursive: true}); err != nil {
		t.Fatal(err)
	}
	if cc.resolves != first {
		t.Fatalf("second walk resolved again: %d -> %d", first, cc.resolves)
	}
}

// minimalCharacter writes the smallest valid version-1 character record:
// id, version, empty name, the three base resource ids, then empty
// animation name, PAS, and particle tables.
func minimalCharacter(id, model, skin, skeleton uint32) []byte {
	return concat(
		be32(id), []byte{0, 1}, []byte{0},
		be32(model), be32(skin), be32(skeleton),
		be32(0),
		[]byte("PAS4"), be32(0), be32(0),
		be32(0), be32(0), be32(0),
		be32(0),
	)
}

func TestWalkerPlayerActor(t *testing.T) {
	t.Parallel()

	body := []byte{0, 1, 0, 1}
	body = append(body, be32(6)...)
	for i := uint32(0); i < 6; i++ {
		body = append(body, minimalCharacter(i, 0x100+i, 0x200+i, 0x300+i)...)
	}
	// Animation set: no animations, no transitions, NotATransition
	// default, no resource pairs.
	body = append(body, []byte{0, 1}...)
	body = append(body, concat(be32(0), be32(0), be32(3), be32(0))...)

	m := NewMemory()
	m.Add(0x1, "ANCS", body)

	w := NewWalker(m, asset.GamePrime)

	restricted, err := w.DependenciesFor(0x1, WalkOptions{PlayerActor: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []asset.Dependency{
		{Type: "CMDL", ID: 0x105},
		{Type: "CSKR", ID: 0x205},
		{Type: "CINF", ID: 0x305},
	}
	if !reflect.DeepEqual(restricted, want) {
		t.Fatalf("restricted: got %v, want %v", restricted, want)
	}

	// The unrestricted walk still sees every character.
	full, err := w.DependenciesFor(0x1, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(full) != 18 {
		t.Fatalf("full walk: got %d records, want 18", len(full))
	}
}
