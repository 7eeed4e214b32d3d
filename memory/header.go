package memory

import "encoding/binary"

// Header is the set of story-file header fields read once at load time.
// Field names and offsets are grounded on the Z-machine standard header
// layout (bytes 0x00-0x3f).
type Header struct {
	Version            uint8
	Flags1             uint8
	ReleaseNumber      uint16
	HighMemoryBase     uint16
	InitialPC          uint16
	DictionaryBase     uint16
	ObjectTableBase    uint16
	GlobalVariableBase uint16
	StaticMemoryBase   uint16
	Flags2             uint16

	SerialCode [6]uint8

	AbbreviationTableBase uint16
	FileLengthField       uint16
	FileChecksum          uint16

	InterpreterNumber  uint8
	InterpreterVersion uint8
	ScreenHeightLines  uint8
	ScreenWidthChars   uint8
	ScreenWidthUnits   uint16
	ScreenHeightUnits  uint16
	FontWidthUnits     uint8
	FontHeightUnits    uint8

	RoutinesOffset uint16 // packed address offset (added x8), v6/7 only
	StringsOffset  uint16 // packed address offset (added x8), v6/7 only

	DefaultBackgroundColor uint8
	DefaultForegroundColor uint8

	TerminatingCharTableBase uint16
	OutputStream3Width       uint16
	StandardRevisionNumber   uint16

	AlphabetTableBase  uint16 // custom alphabets, v5+
	ExtensionTableBase uint16

	UnicodeExtensionTableBase uint16 // extension table word 3, if present
}

func parseHeader(b []uint8) Header {
	h := Header{
		Version:               b[0x00],
		Flags1:                b[0x01],
		ReleaseNumber:         binary.BigEndian.Uint16(b[0x02:0x04]),
		HighMemoryBase:        binary.BigEndian.Uint16(b[0x04:0x06]),
		InitialPC:             binary.BigEndian.Uint16(b[0x06:0x08]),
		DictionaryBase:        binary.BigEndian.Uint16(b[0x08:0x0a]),
		ObjectTableBase:       binary.BigEndian.Uint16(b[0x0a:0x0c]),
		GlobalVariableBase:    binary.BigEndian.Uint16(b[0x0c:0x0e]),
		StaticMemoryBase:      binary.BigEndian.Uint16(b[0x0e:0x10]),
		Flags2:                binary.BigEndian.Uint16(b[0x10:0x12]),
		AbbreviationTableBase: binary.BigEndian.Uint16(b[0x18:0x1a]),
		FileLengthField:       binary.BigEndian.Uint16(b[0x1a:0x1c]),
		FileChecksum:          binary.BigEndian.Uint16(b[0x1c:0x1e]),
		InterpreterNumber:     b[0x1e],
		InterpreterVersion:    b[0x1f],
		ScreenHeightLines:     b[0x20],
		ScreenWidthChars:      b[0x21],
		ScreenWidthUnits:      binary.BigEndian.Uint16(b[0x22:0x24]),
		ScreenHeightUnits:     binary.BigEndian.Uint16(b[0x24:0x26]),
		FontWidthUnits:        b[0x27],
		FontHeightUnits:       b[0x26],
		RoutinesOffset:        binary.BigEndian.Uint16(b[0x28:0x2a]),
		StringsOffset:         binary.BigEndian.Uint16(b[0x2a:0x2c]),

		DefaultBackgroundColor: b[0x2c],
		DefaultForegroundColor: b[0x2d],

		TerminatingCharTableBase: binary.BigEndian.Uint16(b[0x2e:0x30]),
		OutputStream3Width:       binary.BigEndian.Uint16(b[0x30:0x32]),
		StandardRevisionNumber:   binary.BigEndian.Uint16(b[0x32:0x34]),
		AlphabetTableBase:        binary.BigEndian.Uint16(b[0x34:0x36]),
		ExtensionTableBase:       binary.BigEndian.Uint16(b[0x36:0x38]),
	}
	copy(h.SerialCode[:], b[0x12:0x18])

	if h.ExtensionTableBase != 0 {
		numWords := binary.BigEndian.Uint16(b[h.ExtensionTableBase : h.ExtensionTableBase+2])
		if numWords >= 3 {
			h.UnicodeExtensionTableBase = binary.BigEndian.Uint16(b[h.ExtensionTableBase+6 : h.ExtensionTableBase+8])
		}
	}

	return h
}

// FileLength returns the story file's declared length in bytes, scaled by
// the version-dependent divisor the header field is packed with.
func (h *Header) FileLength() uint32 {
	var multiplier uint32
	switch {
	case h.Version <= 3:
		multiplier = 2
	case h.Version <= 5:
		multiplier = 4
	default:
		multiplier = 8
	}
	return uint32(h.FileLengthField) * multiplier
}

// PackedAddress unpacks a routine or string packed address per the
// version-dependent rules (6.3.8 of the Z-machine standard); routine and
// string addresses only differ in v6/7, where separate offsets apply.
func (h *Header) PackedAddress(packed uint16, isRoutine bool) uint32 {
	switch {
	case h.Version <= 3:
		return uint32(packed) * 2
	case h.Version <= 5:
		return uint32(packed) * 4
	case h.Version <= 7:
		offset := h.StringsOffset
		if isRoutine {
			offset = h.RoutinesOffset
		}
		return uint32(packed)*4 + uint32(offset)*8
	default: // v8
		return uint32(packed) * 8
	}
}

// interpreter-identity bits the host writes into the header once at load
// and again on every restart, mirroring the teacher's zcore.LoadCore.
func (b *Buffer) writeInterpreterBits() {
	buf := b.bytes
	buf[0x1e] = 6 // interpreter number: "IBM PC", the closest stock fit
	buf[0x1f] = 1 // interpreter version

	buf[0x20] = 25 // screen height, lines
	buf[0x21] = 80 // screen width, chars
	buf[0x22] = 0
	buf[0x23] = 80
	buf[0x24] = 0
	buf[0x25] = 25
	buf[0x26] = 1 // font height units
	buf[0x27] = 1 // font width units

	buf[0x32] = 1 // standard revision major
	buf[0x33] = 0 // standard revision minor

	if buf[0x00] <= 3 {
		buf[0x01] |= 0b0010_0000 // split screen available
	} else {
		// colour (0x01), bold (0x04), italic (0x08), split screen (0x20);
		// not claiming pictures, fixed-width default, or timed input
		buf[0x01] |= 0b0010_1101
	}

	b.Header.InterpreterNumber = buf[0x1e]
	b.Header.InterpreterVersion = buf[0x1f]
	b.Header.ScreenHeightLines = buf[0x20]
	b.Header.ScreenWidthChars = buf[0x21]
	b.Header.ScreenWidthUnits = binary.BigEndian.Uint16(buf[0x22:0x24])
	b.Header.ScreenHeightUnits = binary.BigEndian.Uint16(buf[0x24:0x26])
	b.Header.FontHeightUnits = buf[0x26]
	b.Header.FontWidthUnits = buf[0x27]
	b.Header.StandardRevisionNumber = binary.BigEndian.Uint16(buf[0x32:0x34])
	b.Header.Flags1 = buf[0x01]
}

// SetDefaultBackgroundColor writes the default background colour number
// (set_colour opcode bookkeeping), keeping the cached Header field in
// sync with the live byte.
func (b *Buffer) SetDefaultBackgroundColor(c uint8) {
	b.bytes[0x2c] = c
	b.Header.DefaultBackgroundColor = c
}

// SetDefaultForegroundColor writes the default foreground colour number.
func (b *Buffer) SetDefaultForegroundColor(c uint8) {
	b.bytes[0x2d] = c
	b.Header.DefaultForegroundColor = c
}
