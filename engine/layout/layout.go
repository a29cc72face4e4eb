// Package layout computes byte-exact offsets for uniform blocks.
//
// The packing rules are the 16-byte, vector-padded convention shared by GLSL std140 and the WGSL
// uniform address space: a 3-component vector occupies the footprint of a 4-component vector,
// every array element and nested record starts on a 16-byte boundary, and the block size is
// rounded up to 16 bytes. A Layout is computed once from a Schema and then answers slot queries
// by path ("view", "lights[2].diffuse", "materials[7].shininess") so calling code never does
// offset arithmetic by hand.
package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxBlockSize is the largest block Pack accepts. It equals the WebGPU default
// maxUniformBufferBindingSize limit.
const MaxBlockSize uint64 = 64 * 1024

// blockAlign is the alignment of arrays, array elements, records and the block itself.
const blockAlign uint64 = 16

var (
	// ErrLayoutViolation is returned when a schema, slot path or write range is inconsistent
	// with the block's fixed capacity. It is always raised before any GPU write is issued.
	ErrLayoutViolation = errors.New("layout violation")

	// ErrUnknownField is returned when a slot path names a field the schema does not declare.
	ErrUnknownField = fmt.Errorf("%w: unknown field", ErrLayoutViolation)

	// ErrIndexOutOfRange is returned when a slot path indexes past an array's fixed length.
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrLayoutViolation)
)

// Slot is the resolved location of one field inside a packed block.
type Slot struct {
	// Path is the path the slot was resolved from.
	Path string
	// Kind is the field kind at this slot.
	Kind FieldKind
	// Offset is the byte offset from the start of the block.
	Offset uint64
	// Size is the number of meaningful data bytes (12 for a 3-vector, 4 for a scalar).
	Size uint64
	// Footprint is the number of bytes the field reserves including trailing padding.
	Footprint uint64
}

// End returns the first byte past the slot's footprint.
func (s Slot) End() uint64 {
	return s.Offset + s.Footprint
}

// node is a packed field. Offsets are relative to the enclosing record or array element.
type node struct {
	name      string
	kind      FieldKind
	offset    uint64
	size      uint64
	footprint uint64
	align     uint64

	// arrays
	length int
	stride uint64
	elem   *node

	// records (and the block root)
	members []*node
	byName  map[string]*node
}

// Layout is the immutable packed form of a Schema.
type Layout struct {
	name string
	root *node
}

// primitiveLayouts maps leaf kinds to (size, footprint, align).
var primitiveLayouts = map[FieldKind][3]uint64{
	FieldKindScalar:     {4, 4, 4},
	FieldKindVec3:       {12, 16, 16},
	FieldKindVec3Packed: {12, 16, 16},
	FieldKindVec4:       {16, 16, 16},
	FieldKindMat4:       {64, 64, 16},
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// Pack computes the offsets of every field in the schema and the total block size.
//
// Parameters:
//   - schema: the block schema to pack
//
// Returns:
//   - *Layout: the packed layout
//   - error: ErrLayoutViolation if the schema is empty, malformed, or larger than MaxBlockSize
func Pack(schema Schema) (*Layout, error) {
	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("%w: block %q declares no fields", ErrLayoutViolation, schema.Name)
	}

	root, err := packRecord(Record(schema.Name, schema.Fields...))
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", schema.Name, err)
	}
	if root.footprint > MaxBlockSize {
		return nil, fmt.Errorf("%w: block %q needs %d bytes, limit is %d", ErrLayoutViolation, schema.Name, root.footprint, MaxBlockSize)
	}

	return &Layout{name: schema.Name, root: root}, nil
}

func packField(f Field) (*node, error) {
	if f.Kind == FieldKindArray {
		return packArray(f)
	}
	if f.Kind == FieldKindRecord {
		return packRecord(f)
	}

	p, ok := primitiveLayouts[f.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: field %q has unknown kind %d", ErrLayoutViolation, f.Name, f.Kind)
	}
	if f.Kind == FieldKindVec3Packed && f.PackedName == "" {
		return nil, fmt.Errorf("%w: packed vector %q has no packed scalar name", ErrLayoutViolation, f.Name)
	}
	return &node{name: f.Name, kind: f.Kind, size: p[0], footprint: p[1], align: p[2]}, nil
}

func packArray(f Field) (*node, error) {
	if f.Len <= 0 {
		return nil, fmt.Errorf("%w: array %q has length %d", ErrLayoutViolation, f.Name, f.Len)
	}
	if f.Elem == nil {
		return nil, fmt.Errorf("%w: array %q has no element type", ErrLayoutViolation, f.Name)
	}

	elem, err := packField(*f.Elem)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", f.Name, err)
	}
	stride := roundUpAlign(blockAlign, elem.footprint)
	total := uint64(f.Len) * stride

	return &node{
		name:      f.Name,
		kind:      FieldKindArray,
		size:      total,
		footprint: total,
		align:     blockAlign,
		length:    f.Len,
		stride:    stride,
		elem:      elem,
	}, nil
}

func packRecord(f Field) (*node, error) {
	if len(f.Members) == 0 {
		return nil, fmt.Errorf("%w: record %q has no members", ErrLayoutViolation, f.Name)
	}

	n := &node{
		name:   f.Name,
		kind:   FieldKindRecord,
		align:  blockAlign,
		byName: make(map[string]*node, len(f.Members)),
	}

	claim := func(name string) error {
		if name == "" {
			return fmt.Errorf("%w: record %q has an unnamed member", ErrLayoutViolation, f.Name)
		}
		if _, dup := n.byName[name]; dup {
			return fmt.Errorf("%w: record %q declares %q twice", ErrLayoutViolation, f.Name, name)
		}
		return nil
	}

	offset := uint64(0)
	for _, m := range f.Members {
		if err := claim(m.Name); err != nil {
			return nil, err
		}
		child, err := packField(m)
		if err != nil {
			return nil, err
		}

		offset = roundUpAlign(child.align, offset)
		child.offset = offset
		offset += child.footprint

		n.members = append(n.members, child)
		n.byName[child.name] = child

		if child.kind == FieldKindVec3Packed {
			if err := claim(m.PackedName); err != nil {
				return nil, err
			}
			n.byName[m.PackedName] = &node{
				name:      m.PackedName,
				kind:      FieldKindScalar,
				offset:    child.offset + 12,
				size:      4,
				footprint: 4,
				align:     4,
			}
		}
	}

	n.footprint = roundUpAlign(blockAlign, offset)
	n.size = n.footprint
	return n, nil
}

// Name returns the block name the layout was packed from.
func (l *Layout) Name() string {
	return l.name
}

// Size returns the total block size in bytes, always a multiple of 16.
func (l *Layout) Size() uint64 {
	return l.root.footprint
}

// Slot resolves a field path to its location in the block.
//
// Paths are dot-separated field names with optional array indices, e.g. "count",
// "lights[3].position" or "materials[0].shininess". Naming an array without an index
// resolves the whole array.
//
// Parameters:
//   - path: the field path
//
// Returns:
//   - Slot: the resolved slot
//   - error: ErrUnknownField or ErrIndexOutOfRange (both wrap ErrLayoutViolation)
func (l *Layout) Slot(path string) (Slot, error) {
	if path == "" {
		return Slot{}, fmt.Errorf("%w: empty path in block %q", ErrUnknownField, l.name)
	}

	cur := l.root
	offset := uint64(0)
	for _, seg := range strings.Split(path, ".") {
		if cur.kind != FieldKindRecord {
			return Slot{}, fmt.Errorf("%w: %q in block %q: %s has no members", ErrUnknownField, path, l.name, cur.kind)
		}

		name, index, hasIndex, err := parseSegment(seg)
		if err != nil {
			return Slot{}, fmt.Errorf("%w: %q in block %q: %v", ErrUnknownField, path, l.name, err)
		}

		child, ok := cur.byName[name]
		if !ok {
			return Slot{}, fmt.Errorf("%w: %q in block %q", ErrUnknownField, path, l.name)
		}
		offset += child.offset
		cur = child

		if !hasIndex {
			continue
		}
		if cur.kind != FieldKindArray {
			return Slot{}, fmt.Errorf("%w: %q in block %q: %s is not an array", ErrUnknownField, path, l.name, name)
		}
		if index >= cur.length {
			return Slot{}, fmt.Errorf("%w: %q in block %q: index %d, length %d", ErrIndexOutOfRange, path, l.name, index, cur.length)
		}
		offset += uint64(index) * cur.stride
		cur = cur.elem
	}

	return Slot{Path: path, Kind: cur.kind, Offset: offset, Size: cur.size, Footprint: cur.footprint}, nil
}

// Len returns the fixed length of a top-level array field.
//
// Parameters:
//   - name: the array field name
//
// Returns:
//   - int: the array length
//   - error: ErrUnknownField if name is not a top-level array
func (l *Layout) Len(name string) (int, error) {
	n, ok := l.root.byName[name]
	if !ok || n.kind != FieldKindArray {
		return 0, fmt.Errorf("%w: %q is not an array of block %q", ErrUnknownField, name, l.name)
	}
	return n.length, nil
}

// Stride returns the element stride in bytes of a top-level array field.
//
// Parameters:
//   - name: the array field name
//
// Returns:
//   - uint64: the element stride, a multiple of 16
//   - error: ErrUnknownField if name is not a top-level array
func (l *Layout) Stride(name string) (uint64, error) {
	n, ok := l.root.byName[name]
	if !ok || n.kind != FieldKindArray {
		return 0, fmt.Errorf("%w: %q is not an array of block %q", ErrUnknownField, name, l.name)
	}
	return n.stride, nil
}

// Fields returns the top-level fields of the block in declaration order.
// Packed scalars are not listed separately since they live inside their vector's footprint.
func (l *Layout) Fields() []Slot {
	out := make([]Slot, 0, len(l.root.members))
	for _, m := range l.root.members {
		out = append(out, Slot{Path: m.name, Kind: m.kind, Offset: m.offset, Size: m.size, Footprint: m.footprint})
	}
	return out
}

// Leaves returns every leaf slot of the block in ascending offset order, expanding arrays
// element by element. Packed scalars are omitted for the same reason as in Fields.
func (l *Layout) Leaves() []Slot {
	var out []Slot
	var walk func(n *node, prefix string, base uint64)
	walk = func(n *node, prefix string, base uint64) {
		switch n.kind {
		case FieldKindRecord:
			for _, m := range n.members {
				walk(m, joinPath(prefix, m.name), base+m.offset)
			}
		case FieldKindArray:
			for i := 0; i < n.length; i++ {
				walk(n.elem, prefix+"["+strconv.Itoa(i)+"]", base+uint64(i)*n.stride)
			}
		default:
			out = append(out, Slot{Path: prefix, Kind: n.kind, Offset: base, Size: n.size, Footprint: n.footprint})
		}
	}
	walk(l.root, "", 0)
	return out
}

// CheckRange verifies that a write of n bytes at slot stays inside both the slot's
// footprint and the block.
//
// Parameters:
//   - slot: the destination slot
//   - n: the number of bytes to write
//
// Returns:
//   - error: ErrLayoutViolation if the write would spill
func (l *Layout) CheckRange(slot Slot, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: empty write to %q in block %q", ErrLayoutViolation, slot.Path, l.name)
	}
	if uint64(n) > slot.Footprint {
		return fmt.Errorf("%w: %d bytes into %q (%s, %d bytes) in block %q", ErrLayoutViolation, n, slot.Path, slot.Kind, slot.Footprint, l.name)
	}
	if slot.Offset+uint64(n) > l.Size() {
		return fmt.Errorf("%w: write to %q ends at %d, block %q is %d bytes", ErrLayoutViolation, slot.Path, slot.Offset+uint64(n), l.name, l.Size())
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// parseSegment splits "name[3]" into ("name", 3, true).
func parseSegment(seg string) (string, int, bool, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") || open == 0 {
		return "", 0, false, fmt.Errorf("malformed segment %q", seg)
	}
	index, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || index < 0 {
		return "", 0, false, fmt.Errorf("malformed index in %q", seg)
	}
	return seg[:open], index, true, nil
}
