// Package zobject implements the Z-machine object tree: the fixed-size
// object records (parent/sibling/child links and attribute flags) and
// their variable-length property lists.
package zobject

import (
	"github.com/aldermoor/zif/memory"
	"github.com/aldermoor/zif/zstring"
)

// Object is a decoded object-tree record. Field widths differ between v3
// (9-byte record, 32 attributes, byte-sized links) and v4+ (14-byte
// record, 48 attributes, word-sized links); both are represented
// uniformly here, with version-aware accessors doing the translation.
type Object struct {
	BaseAddress     uint32
	ID              uint16
	Name            string
	Attributes      uint64 // top N bits valid: 32 for v3, 48 for v4+
	Parent          uint16
	Sibling         uint16
	Child           uint16
	PropertyPointer uint16
}

const (
	v3EntrySize     = 9
	v3DefaultsCount = 31
	v4EntrySize     = 14
	v4DefaultsCount = 63
)

func entryBase(objectTableBase uint16, id uint16, version uint8) uint32 {
	if version >= 4 {
		return uint32(objectTableBase) + v4DefaultsCount*2 + uint32(id-1)*v4EntrySize
	}
	return uint32(objectTableBase) + v3DefaultsCount*2 + uint32(id-1)*v3EntrySize
}

// Get decodes object id from the tree rooted at objectTableBase. Object 0
// is a sentinel meaning "no object" throughout the Z-machine and is never
// a valid argument here; callers are expected to have checked for it.
func Get(buf *memory.Buffer, id uint16, objectTableBase uint16, alphabets *zstring.Alphabets) *Object {
	version := buf.Header.Version
	base := entryBase(objectTableBase, id, version)

	var attrs uint64
	var parent, sibling, child, propPtr uint16

	if version >= 4 {
		hi := uint64(buf.ReadWord(base))
		mid := uint64(buf.ReadWord(base + 2))
		lo := uint64(buf.ReadWord(base + 4))
		attrs = (hi<<32 | mid<<16 | lo) << 16 // top 48 bits populated
		parent = buf.ReadWord(base + 6)
		sibling = buf.ReadWord(base + 8)
		child = buf.ReadWord(base + 10)
		propPtr = buf.ReadWord(base + 12)
	} else {
		hi := uint64(buf.ReadWord(base))
		lo := uint64(buf.ReadWord(base + 2))
		attrs = (hi<<16 | lo) << 32 // top 32 bits populated
		parent = uint16(buf.ReadByte(base + 4))
		sibling = uint16(buf.ReadByte(base + 5))
		child = uint16(buf.ReadByte(base + 6))
		propPtr = buf.ReadWord(base + 7)
	}

	nameLength := buf.ReadByte(uint32(propPtr))
	name := ""
	if nameLength > 0 {
		name, _, _ = zstring.Decode(buf, uint32(propPtr)+1, alphabets, buf.Header.AbbreviationTableBase, nil)
	}

	return &Object{
		BaseAddress:     base,
		ID:              id,
		Name:            name,
		Attributes:      attrs,
		Parent:          parent,
		Sibling:         sibling,
		Child:           child,
		PropertyPointer: propPtr,
	}
}

// TestAttribute reports whether attribute bit n (0-indexed from the most
// significant bit) is set.
func (o *Object) TestAttribute(n uint16) bool {
	mask := uint64(1) << (63 - n)
	return o.Attributes&mask == mask
}

// SetAttribute sets attribute bit n, both on the decoded copy and in live
// memory.
func (o *Object) SetAttribute(n uint16, buf *memory.Buffer) {
	mask := uint64(1) << (63 - n)
	o.Attributes |= mask
	o.writeAttributes(buf)
}

// ClearAttribute clears attribute bit n.
func (o *Object) ClearAttribute(n uint16, buf *memory.Buffer) {
	mask := uint64(1) << (63 - n)
	o.Attributes &^= mask
	o.writeAttributes(buf)
}

func (o *Object) writeAttributes(buf *memory.Buffer) {
	if buf.Header.Version >= 4 {
		buf.WriteWord(o.BaseAddress, uint16(o.Attributes>>48))
		buf.WriteWord(o.BaseAddress+2, uint16(o.Attributes>>32))
		buf.WriteWord(o.BaseAddress+4, uint16(o.Attributes>>16))
	} else {
		buf.WriteWord(o.BaseAddress, uint16(o.Attributes>>48))
		buf.WriteWord(o.BaseAddress+2, uint16(o.Attributes>>32))
	}
}

// SetParent updates the parent link, in both the decoded copy and memory.
func (o *Object) SetParent(parent uint16, buf *memory.Buffer) {
	if buf.Header.Version >= 4 {
		buf.WriteWord(o.BaseAddress+6, parent)
	} else {
		buf.WriteByte(o.BaseAddress+4, uint8(parent))
	}
	o.Parent = parent
}

// SetSibling updates the sibling link.
func (o *Object) SetSibling(sibling uint16, buf *memory.Buffer) {
	if buf.Header.Version >= 4 {
		buf.WriteWord(o.BaseAddress+8, sibling)
	} else {
		buf.WriteByte(o.BaseAddress+5, uint8(sibling))
	}
	o.Sibling = sibling
}

// SetChild updates the child link.
func (o *Object) SetChild(child uint16, buf *memory.Buffer) {
	if buf.Header.Version >= 4 {
		buf.WriteWord(o.BaseAddress+10, child)
	} else {
		buf.WriteByte(o.BaseAddress+6, uint8(child))
	}
	o.Child = child
}

// PrintTree renders the object tree rooted at id as indented text, purely
// for debugging: it is never reached from an opcode.
func PrintTree(buf *memory.Buffer, id uint16, objectTableBase uint16, alphabets *zstring.Alphabets, depth int, w func(string)) {
	for id != 0 {
		obj := Get(buf, id, objectTableBase, alphabets)
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}
		w(indent + obj.Name)
		if obj.Child != 0 {
			PrintTree(buf, obj.Child, objectTableBase, alphabets, depth+1, w)
		}
		id = obj.Sibling
	}
}
