package zstring

import (
	"errors"
	"fmt"

	"github.com/aldermoor/zif/memory"
)

// ErrRecursiveAbbreviation is returned when decoding an abbreviation string
// would require expanding an abbreviation that is already being expanded
// on the current call stack. Abbreviation strings may not reference
// abbreviations per the standard; a story that violates this would
// otherwise recurse forever.
var ErrRecursiveAbbreviation = errors.New("zstring: abbreviation string recursively references an abbreviation")

type alphabet int

const (
	alphaA0 alphabet = iota
	alphaA1
	alphaA2
)

// Decode reads a Z-string starting at addr and returns the decoded text
// together with the number of bytes consumed (always a multiple of 2,
// terminating at the first word with its high bit set). inProgress tracks
// abbreviation indices currently being expanded, guarding against
// self-referential abbreviation tables; pass nil at the top level.
func Decode(buf *memory.Buffer, addr uint32, alphabets *Alphabets, abbreviationBase uint16, inProgress map[uint16]bool) (string, uint32, error) {
	zchars, bytesRead := readZChars(buf, addr)

	out := make([]rune, 0, len(zchars))
	base := alphaA0
	current := alphaA0
	unicodeTable := UnicodeTable(buf)

	for i := 0; i < len(zchars); i++ {
		zchr := zchars[i]
		next := base

		switch {
		case zchr == 0:
			out = append(out, ' ')
			current = next
			continue
		case zchr == 1, zchr == 2, zchr == 3:
			if i+1 >= len(zchars) {
				current = next
				continue
			}
			abbrevSet := zchr - 1
			abbrevIx := uint16(abbrevSet)*32 + uint16(zchars[i+1])
			i++
			if inProgress[abbrevIx] {
				return "", 0, fmt.Errorf("abbreviation %d: %w", abbrevIx, ErrRecursiveAbbreviation)
			}
			str, err := decodeAbbreviation(buf, abbrevIx, alphabets, abbreviationBase, inProgress)
			if err != nil {
				return "", 0, err
			}
			out = append(out, []rune(str)...)
			current = next
			continue
		case zchr == 4:
			next = alphaA1
			current = next
			continue
		case zchr == 5:
			next = alphaA2
			current = next
			continue
		}

		if current == alphaA2 && zchr == 6 {
			if i+2 >= len(zchars) {
				current = next
				continue
			}
			code := uint16(zchars[i+1])<<5 | uint16(zchars[i+2])
			i += 2
			if code < 256 {
				if r, ok := ZsciiToUnicode(uint8(code), unicodeTable); ok {
					out = append(out, r)
				} else {
					out = append(out, rune(code))
				}
			}
			current = base
			continue
		}

		out = append(out, rune(alphabetChar(alphabets, current, zchr)))
		current = base
	}

	return string(out), bytesRead, nil
}

// alphabetChar looks up a decoded z-char in the alphabet row it shifted
// into. A0/A1 index from z-char 6; A2 indexes from z-char 7, since z-char
// 6 in A2 is the ten-bit ZSCII escape and never reaches here (Decode
// intercepts it before calling in).
func alphabetChar(alphabets *Alphabets, a alphabet, zchr uint8) uint8 {
	if zchr < 6 || zchr > 31 {
		return '?'
	}
	switch a {
	case alphaA0:
		return alphabets.A0[zchr-6]
	case alphaA1:
		return alphabets.A1[zchr-6]
	default:
		return alphabets.A2[zchr-7]
	}
}

// readZChars unpacks the 16-bit words at addr into their 5-bit z-char
// triples, stopping at (and including) the first word with its high bit
// set.
func readZChars(buf *memory.Buffer, addr uint32) ([]uint8, uint32) {
	var zchars []uint8
	pos := addr
	for {
		word := buf.ReadWord(pos)
		pos += 2
		zchars = append(zchars,
			uint8((word>>10)&0b11111),
			uint8((word>>5)&0b11111),
			uint8(word&0b11111),
		)
		if word&0x8000 != 0 {
			break
		}
	}
	return zchars, pos - addr
}

func decodeAbbreviation(buf *memory.Buffer, abbrevIx uint16, alphabets *Alphabets, abbreviationBase uint16, inProgress map[uint16]bool) (string, error) {
	if abbreviationBase == 0 {
		return "", nil
	}
	entryAddr := uint32(abbreviationBase) + uint32(abbrevIx)*2
	strWordAddr := uint32(buf.ReadWord(entryAddr)) * 2

	child := make(map[uint16]bool, len(inProgress)+1)
	for k := range inProgress {
		child[k] = true
	}
	child[abbrevIx] = true

	str, _, err := Decode(buf, strWordAddr, alphabets, abbreviationBase, child)
	return str, err
}

// EncodeForDictionary encodes player-typed (or story-supplied) text into
// the fixed-width packed Z-string used as a dictionary lookup key: 6
// z-chars in 4 bytes (v3) or 9 z-chars in 6 bytes (v4+), padded with the
// "shift" z-char 5 and terminated with the high-bit-set word as usual.
func EncodeForDictionary(text string, version uint8, alphabets *Alphabets) []uint8 {
	width := 6
	if version > 3 {
		width = 9
	}

	zchars := encodeZChars(text, alphabets)
	if len(zchars) > width {
		zchars = zchars[:width]
	}
	for len(zchars) < width {
		zchars = append(zchars, 5)
	}

	return packZChars(zchars)
}

func encodeZChars(text string, alphabets *Alphabets) []uint8 {
	var zchars []uint8
	unicodeTable := DefaultUnicodeTable

	for _, r := range text {
		if r == ' ' {
			zchars = append(zchars, 0)
			continue
		}
		if ix, ok := indexOf(alphabets.A0, uint8(r)); ok && r < 128 {
			zchars = append(zchars, ix+6)
			continue
		}
		if ix, ok := indexOf(alphabets.A1, uint8(r)); ok && r < 128 {
			zchars = append(zchars, 4, ix+6)
			continue
		}
		if ix, ok := indexOf(alphabets.A2, uint8(r)); ok && r < 128 {
			zchars = append(zchars, 5, ix+7)
			continue
		}

		// Fall back to a 10-bit ZSCII literal escape (A2 shift, zchar 6).
		code := uint16(r)
		if r > 127 {
			if zscii, ok := UnicodeToZscii(r, unicodeTable); ok {
				code = uint16(zscii)
			}
		}
		zchars = append(zchars, 5, 6, uint8(code>>5)&0b11111, uint8(code&0b11111))
	}

	return zchars
}

func indexOf(table [26]uint8, c uint8) (uint8, bool) {
	for i, v := range table {
		if v == c {
			return uint8(i), true
		}
	}
	return 0, false
}

func packZChars(zchars []uint8) []uint8 {
	out := make([]uint8, 0, (len(zchars)/3+1)*2)
	for i := 0; i < len(zchars); i += 3 {
		var a, b, c uint8
		a = zchars[i]
		if i+1 < len(zchars) {
			b = zchars[i+1]
		} else {
			b = 5
		}
		if i+2 < len(zchars) {
			c = zchars[i+2]
		} else {
			c = 5
		}

		word := uint16(a&0b11111)<<10 | uint16(b&0b11111)<<5 | uint16(c&0b11111)
		if i+3 >= len(zchars) {
			word |= 0x8000
		}
		out = append(out, uint8(word>>8), uint8(word))
	}
	return out
}
