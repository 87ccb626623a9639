package formats

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/samcharles93/relic/pkg/asset"
)

// fakeCatalog is a minimal asset.Catalog for decoder tests.
type fakeCatalog struct {
	types     map[asset.AssetID]asset.TypeTag
	container map[asset.AssetID]struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		types:     make(map[asset.AssetID]asset.TypeTag),
		container: make(map[asset.AssetID]struct{}),
	}
}

func (f *fakeCatalog) add(id asset.AssetID, tag asset.TypeTag) *fakeCatalog {
	f.types[id] = tag
	return f
}

func (f *fakeCatalog) addContainer(id asset.AssetID) *fakeCatalog {
	f.container[id] = struct{}{}
	return f
}

func (f *fakeCatalog) Resolve(id asset.AssetID) (asset.RawAsset, error) {
	tag, ok := f.types[id]
	if !ok {
		return asset.RawAsset{}, fmt.Errorf("%w: %s", asset.ErrUnknownAsset, id)
	}
	return asset.RawAsset{Type: tag}, nil
}

func (f *fakeCatalog) TypeOf(id asset.AssetID) (asset.TypeTag, error) {
	tag, ok := f.types[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrUnknownAsset, id)
	}
	return tag, nil
}

func (f *fakeCatalog) IsValid(id asset.AssetID, container bool) bool {
	if _, ok := f.types[id]; ok {
		return true
	}
	if container {
		_, ok := f.container[id]
		return ok
	}
	return false
}

// builder assembles big-endian test payloads.
type builder struct {
	buf []byte
}

func (b *builder) u8(v uint8) *builder {
	b.buf = append(b.buf, v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	return b
}

func (b *builder) u32(v uint32) *builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
	return b
}

func (b *builder) u64(v uint64) *builder {
	b.buf = binary.BigEndian.AppendUint64(b.buf, v)
	return b
}

func (b *builder) f32(v float32) *builder {
	b.buf = binary.BigEndian.AppendUint32(b.buf, math.Float32bits(v))
	return b
}

func (b *builder) str(s string) *builder {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
	return b
}

func (b *builder) raw(p []byte) *builder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *builder) fourcc(s string) *builder {
	b.buf = append(b.buf, s[:4]...)
	return b
}

func (b *builder) bytes() []byte { return b.buf }

func collect(seq iter.Seq[asset.Dependency]) []asset.Dependency {
	var out []asset.Dependency
	for d := range seq {
		out = append(out, d)
	}
	return out
}
