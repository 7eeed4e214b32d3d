// Package zstring implements the Z-machine's 5-bit Z-character text
// codec: the three shifting alphabets, abbreviation expansion, 10-bit
// ZSCII literal escapes, and the ZSCII<->Unicode translation table.
package zstring

import "github.com/aldermoor/zif/memory"

// a0/a1/a2 are the default alphabet tables for versions 3 and up (v1/2's
// alternate punctuation row and shift-lock behaviour are out of scope —
// this runtime only targets v3-8).
var a0Default = [26]uint8{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o', 'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z'}
var a1Default = [26]uint8{'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z'}
var a2Default = [26]uint8{'\n', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', ',', '!', '?', '_', '#', '\'', '"', '/', '\\', '-', ':', '(', ')'}

// Alphabets holds the three 26-entry alphabet tables in effect for a
// loaded story file: the v3-compatible defaults, or a custom table
// supplied via the header's alphabet-table pointer (v5+).
type Alphabets struct {
	A0, A1, A2 [26]uint8
}

// DefaultAlphabets returns the standard tables used when a story carries
// no custom alphabet table.
func DefaultAlphabets() *Alphabets {
	return &Alphabets{A0: a0Default, A1: a1Default, A2: a2Default}
}

// LoadAlphabets reads the custom alphabet table from the header's
// alphabet-table address (v5+ only; zero means "use the defaults"). The
// table is 3 rows of 26 raw ZSCII bytes, A0/A1/A2 in that order, each
// row starting at z-char 6. A2's first byte (z-char 6, the ten-bit
// escape) is skipped, since the A2 array is indexed from z-char 7.
func LoadAlphabets(buf *memory.Buffer) *Alphabets {
	addr := buf.Header.AlphabetTableBase
	if buf.Header.Version < 5 || addr == 0 {
		return DefaultAlphabets()
	}

	a := &Alphabets{}
	for i := 0; i < 26; i++ {
		a.A0[i] = buf.ReadByte(uint32(addr) + uint32(i))
		a.A1[i] = buf.ReadByte(uint32(addr) + 26 + uint32(i))
	}
	for i := 0; i < 25; i++ {
		a.A2[i] = buf.ReadByte(uint32(addr) + 53 + uint32(i))
	}
	// Row A2 position 0 is always newline, regardless of what the table
	// supplies, per the standard's note that it can never be remapped.
	a.A2[0] = '\n'
	return a
}
