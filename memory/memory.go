// Package memory holds the story file's byte image: dynamic, static and
// high memory, the parsed header, and the positional cursors opcodes use
// to walk it.
package memory

import (
	"encoding/binary"
	"fmt"
)

// BadAddress is returned when an access falls outside the bounds of the
// loaded story image.
type BadAddress struct {
	Address uint32
	Size    uint32
}

func (e *BadAddress) Error() string {
	return fmt.Sprintf("address %#x out of range (access of %d bytes)", e.Address, e.Size)
}

// Buffer is the full byte image of a loaded story file plus the region
// boundaries taken from its header.
type Buffer struct {
	bytes []uint8
	boot  []uint8 // snapshot taken at load time, used for restart and Quetzal deltas

	Header Header
}

// New parses a story file image into a Buffer, snapshotting it for later
// restart/Quetzal-delta use and writing the interpreter's own header bits.
func New(image []uint8) (*Buffer, error) {
	if len(image) < 0x40 {
		return nil, fmt.Errorf("story file too short to contain a header (%d bytes)", len(image))
	}

	b := &Buffer{
		bytes: image,
		boot:  append([]uint8(nil), image...),
	}
	b.Header = parseHeader(image)
	b.writeInterpreterBits()

	return b, nil
}

func (b *Buffer) Len() uint32 { return uint32(len(b.bytes)) }

func (b *Buffer) check(addr uint32, size uint32) error {
	if uint64(addr)+uint64(size) > uint64(len(b.bytes)) {
		return &BadAddress{Address: addr, Size: size}
	}
	return nil
}

func (b *Buffer) ReadByte(addr uint32) uint8 {
	return b.bytes[addr]
}

func (b *Buffer) ReadWord(addr uint32) uint16 {
	return binary.BigEndian.Uint16(b.bytes[addr : addr+2])
}

func (b *Buffer) WriteByte(addr uint32, v uint8) {
	b.bytes[addr] = v
}

func (b *Buffer) WriteWord(addr uint32, v uint16) {
	binary.BigEndian.PutUint16(b.bytes[addr:addr+2], v)
}

// Slice returns a live (mutable) view into the image; callers must not
// retain it past a restart/restore.
func (b *Buffer) Slice(start, end uint32) []uint8 {
	return b.bytes[start:end]
}

// Bytes returns the full live backing slice, for Quetzal snapshotting and
// the object/dictionary/zstring packages that still work on raw []uint8.
func (b *Buffer) Bytes() []uint8 {
	return b.bytes
}

// BootSnapshot is the image exactly as loaded, before any opcode touched
// it. Used by the `restart` opcode and by Quetzal's CMem delta encoding.
func (b *Buffer) BootSnapshot() []uint8 {
	return b.boot
}

// DynamicMemory is the mutable prefix of the image, up to StaticMemoryBase.
func (b *Buffer) DynamicMemory() []uint8 {
	return b.bytes[:b.Header.StaticMemoryBase]
}

// Restart resets dynamic memory to the boot snapshot and re-applies the
// interpreter's own header bits (which are not part of the original game
// image and must survive a restart).
func (b *Buffer) Restart() {
	copy(b.bytes, b.boot)
	b.writeInterpreterBits()
}

// Reader is a positional cursor for sequential big-endian reads, used by
// the instruction decoder and Z-string scanner to avoid re-deriving
// pointer arithmetic at every call site.
type Reader struct {
	buf *Buffer
	pos uint32
}

func (b *Buffer) NewReader(pos uint32) *Reader { return &Reader{buf: b, pos: pos} }

func (r *Reader) Pos() uint32       { return r.pos }
func (r *Reader) SetPos(pos uint32) { r.pos = pos }

func (r *Reader) NextByte() uint8 {
	v := r.buf.ReadByte(r.pos)
	r.pos++
	return v
}

func (r *Reader) NextWord() uint16 {
	v := r.buf.ReadWord(r.pos)
	r.pos += 2
	return v
}

func (r *Reader) PeekByte() uint8 {
	return r.buf.ReadByte(r.pos)
}

// Writer is a positional cursor for sequential big-endian writes, used by
// output-stream-3 memory redirection and the Quetzal decoder.
type Writer struct {
	buf *Buffer
	pos uint32
}

func (b *Buffer) NewWriter(pos uint32) *Writer { return &Writer{buf: b, pos: pos} }

func (w *Writer) Pos() uint32       { return w.pos }
func (w *Writer) SetPos(pos uint32) { w.pos = pos }

func (w *Writer) PutByte(v uint8) {
	w.buf.WriteByte(w.pos, v)
	w.pos++
}

func (w *Writer) PutWord(v uint16) {
	w.buf.WriteWord(w.pos, v)
	w.pos += 2
}
