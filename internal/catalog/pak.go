package catalog

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/relic/pkg/asset"
)

const (
	pakVersionMajor = 3
	pakVersionMinor = 5
	pakHeaderSize   = 8
)

// PAKNamedResource is one entry of the archive's name table.
type PAKNamedResource struct {
	Type asset.TypeTag
	ID   asset.AssetID
	Name string
}

// PAKResource is one entry of the archive's resource table.
type PAKResource struct {
	Compressed bool
	Type       asset.TypeTag
	ID         asset.AssetID
	Size       uint32
	Offset     uint32
}

// PAK is a mapped 32-bit-ID-family archive. It resolves identifiers to
// payload bytes; the dependency core never touches the container layer
// directly.
type PAK struct {
	Data      []byte
	Named     []PAKNamedResource
	Resources []PAKResource
	mmapped   bool
}

// OpenPAK maps a PAK archive read-only and parses its tables. If mmap is
// unavailable it falls back to ReadAt-based loading. The returned archive
// must be closed to release any mapping.
func OpenPAK(path string) (*PAK, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < pakHeaderSize {
		return nil, ErrCorruptPAK
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptPAK
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		p, parseErr := parsePAK(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return p, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parsePAK(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parsePAK(data []byte, mmapped bool) (*PAK, error) {
	be := binary.BigEndian
	if len(data) < pakHeaderSize {
		return nil, ErrCorruptPAK
	}
	major := be.Uint16(data[0:2])
	minor := be.Uint16(data[2:4])
	if major != pakVersionMajor || minor != pakVersionMinor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedPAK, major, minor)
	}
	// 4 unused bytes follow the version.
	off := pakHeaderSize

	u32 := func() (uint32, bool) {
		if off+4 > len(data) {
			return 0, false
		}
		v := be.Uint32(data[off:])
		off += 4
		return v, true
	}

	namedCount, ok := u32()
	if !ok {
		return nil, ErrCorruptPAK
	}
	// Each named entry is at least 12 bytes (tag, id, name length).
	if uint64(namedCount)*12 > uint64(len(data)-off) {
		return nil, fmt.Errorf("%w: named count %d exceeds archive size", ErrCorruptPAK, namedCount)
	}
	named := make([]PAKNamedResource, 0, namedCount)
	for i := uint32(0); i < namedCount; i++ {
		if off+4 > len(data) {
			return nil, fmt.Errorf("%w: named entry %d truncated", ErrCorruptPAK, i)
		}
		tag := asset.TypeTag(data[off : off+4])
		off += 4
		id, ok := u32()
		if !ok {
			return nil, fmt.Errorf("%w: named entry %d truncated", ErrCorruptPAK, i)
		}
		nameLen, ok := u32()
		if !ok || off+int(nameLen) > len(data) {
			return nil, fmt.Errorf("%w: named entry %d name out of bounds", ErrCorruptPAK, i)
		}
		name := string(data[off : off+int(nameLen)])
		off += int(nameLen)
		named = append(named, PAKNamedResource{Type: tag, ID: asset.AssetID(id), Name: name})
	}

	resourceCount, ok := u32()
	if !ok {
		return nil, ErrCorruptPAK
	}
	// Resource entries are exactly 20 bytes each.
	if uint64(resourceCount)*20 > uint64(len(data)-off) {
		return nil, fmt.Errorf("%w: resource count %d exceeds archive size", ErrCorruptPAK, resourceCount)
	}
	resources := make([]PAKResource, 0, resourceCount)
	for i := uint32(0); i < resourceCount; i++ {
		compressed, ok := u32()
		if !ok || off+4 > len(data) {
			return nil, fmt.Errorf("%w: resource entry %d truncated", ErrCorruptPAK, i)
		}
		tag := asset.TypeTag(data[off : off+4])
		off += 4
		id, ok1 := u32()
		size, ok2 := u32()
		resOff, ok3 := u32()
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("%w: resource entry %d truncated", ErrCorruptPAK, i)
		}
		end := uint64(resOff) + uint64(size)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: resource %d payload out of bounds", ErrCorruptPAK, i)
		}
		resources = append(resources, PAKResource{
			Compressed: compressed != 0,
			Type:       tag,
			ID:         asset.AssetID(id),
			Size:       size,
			Offset:     resOff,
		})
	}

	return &PAK{
		Data:      data,
		Named:     named,
		Resources: resources,
		mmapped:   mmapped,
	}, nil
}

// Close releases archive resources and any mmap backing.
func (p *PAK) Close() error {
	if p == nil || p.Data == nil {
		return nil
	}
	var err error
	if p.mmapped {
		err = unix.Munmap(p.Data)
	}
	p.Data = nil
	p.Named = nil
	p.Resources = nil
	p.mmapped = false
	return err
}

// ResourceData returns the payload of r, inflating it when the archive
// stores it zlib-compressed. Uncompressed payloads are zero-copy slices
// that must not be retained after Close.
func (p *PAK) ResourceData(r *PAKResource) ([]byte, error) {
	raw := p.Data[r.Offset : uint64(r.Offset)+uint64(r.Size)]
	if !r.Compressed {
		return raw, nil
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: compressed resource %s too short", ErrCorruptPAK, r.ID)
	}
	decompressedSize := binary.BigEndian.Uint32(raw)
	zr, err := zlib.NewReader(bytes.NewReader(raw[4:]))
	if err != nil {
		return nil, fmt.Errorf("%w: resource %s: %v", ErrCorruptPAK, r.ID, err)
	}
	defer func() { _ = zr.Close() }()
	// The declared size is untrusted; grow the buffer from the stream's
	// actual output instead of pre-allocating it.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(zr, int64(decompressedSize)))
	if err != nil {
		return nil, fmt.Errorf("%w: resource %s: %v", ErrCorruptPAK, r.ID, err)
	}
	if n != int64(decompressedSize) {
		return nil, fmt.Errorf("%w: resource %s inflated %d of %d declared bytes", ErrCorruptPAK, r.ID, n, decompressedSize)
	}
	return buf.Bytes(), nil
}

// LoadInto materializes every resource into a memory catalog. Duplicate
// table entries (the engine repeats shared resources) keep the first
// payload.
func (p *PAK) LoadInto(m *Memory) error {
	loaded := make(map[asset.AssetID]struct{}, len(p.Resources))
	for i := range p.Resources {
		r := &p.Resources[i]
		if _, ok := loaded[r.ID]; ok {
			continue
		}
		data, err := p.ResourceData(r)
		if err != nil {
			return err
		}
		m.Add(r.ID, r.Type, data)
		loaded[r.ID] = struct{}{}
	}
	return nil
}
