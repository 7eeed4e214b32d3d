package zstring

import (
	"testing"

	"github.com/aldermoor/zif/memory"
)

func newBuffer(t *testing.T, version uint8, size int) *memory.Buffer {
	t.Helper()
	img := make([]uint8, size)
	img[0x00] = version
	img[0x0e] = uint8(size >> 8)
	img[0x0f] = uint8(size)
	buf, err := memory.New(img)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	return buf
}

func writePackedString(buf *memory.Buffer, addr uint32, zchars []uint8) {
	packed := packZChars(zchars)
	for i, b := range packed {
		buf.WriteByte(addr+uint32(i), b)
	}
}

func TestDecodeSimpleLowercase(t *testing.T) {
	buf := newBuffer(t, 3, 0x100)
	// "cab" -> a0 indices c=2,a=0,b=1 (zchar = index+6)
	writePackedString(buf, 0x40, []uint8{8, 6, 7})

	got, n, err := Decode(buf, 0x40, DefaultAlphabets(), 0, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "cab" {
		t.Fatalf("Decode = %q, want %q", got, "cab")
	}
	if n != 2 {
		t.Fatalf("bytes consumed = %d, want 2", n)
	}
}

func TestDecodeShiftToUppercase(t *testing.T) {
	buf := newBuffer(t, 3, 0x100)
	// shift(4), 'A' (index 0 -> zchar 6), space
	writePackedString(buf, 0x40, []uint8{4, 6, 0})

	got, _, err := Decode(buf, 0x40, DefaultAlphabets(), 0, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "A " {
		t.Fatalf("Decode = %q, want %q", got, "A ")
	}
}

func TestDecodeA2DigitsAndPunctuation(t *testing.T) {
	buf := newBuffer(t, 3, 0x100)
	// Single-shift (5) to A2 before each character. Per the standard's A2
	// row, z-char 6 is the ZSCII escape and z-char 7 is newline, so digits
	// start at z-char 8 ('0') and punctuation follows: '1' is z-char 9,
	// '2' is z-char 10, '.' is z-char 18.
	writePackedString(buf, 0x40, []uint8{5, 9, 5, 10, 5, 18})

	got, _, err := Decode(buf, 0x40, DefaultAlphabets(), 0, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "12." {
		t.Fatalf("Decode = %q, want %q", got, "12.")
	}
}

func TestDecodeAbbreviation(t *testing.T) {
	buf := newBuffer(t, 3, 0x200)
	abbrevBase := uint32(0x40)
	abbrevStrAddr := uint32(0x60)

	// abbreviation table entry 0 points (word address, i.e. /2) at the
	// packed string "hi" (h = a0 index 7 -> zchar 13, i = index 8 -> zchar 14)
	buf.WriteWord(abbrevBase, uint16(abbrevStrAddr/2))
	writePackedString(buf, abbrevStrAddr, []uint8{13, 14})

	// Main string: abbreviation type 1 (zchar 1), index 0
	writePackedString(buf, 0x100, []uint8{1, 0})

	got, _, err := Decode(buf, 0x100, DefaultAlphabets(), uint16(abbrevBase), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hi" {
		t.Fatalf("Decode = %q, want %q", got, "hi")
	}
}

func TestDecodeRecursiveAbbreviationIsRejected(t *testing.T) {
	buf := newBuffer(t, 3, 0x200)
	abbrevBase := uint32(0x40)

	// Abbreviation 0 decodes to a string that itself references
	// abbreviation 0 -- must not be allowed to recurse forever.
	buf.WriteWord(abbrevBase, uint16(0x60/2))
	writePackedString(buf, 0x60, []uint8{1, 0})

	_, _, err := Decode(buf, 0x60, DefaultAlphabets(), uint16(abbrevBase), map[uint16]bool{0: true})
	if err == nil {
		t.Fatalf("expected ErrRecursiveAbbreviation")
	}
}

func TestEncodeForDictionaryPadsShortWords(t *testing.T) {
	enc := EncodeForDictionary("ab", 3, DefaultAlphabets())
	if len(enc) != 4 { // v3 dictionary words are 6 z-chars = 4 bytes
		t.Fatalf("len(enc) = %d, want 4", len(enc))
	}
}

func TestEncodeForDictionaryTruncatesLongWords(t *testing.T) {
	enc := EncodeForDictionary("abcdefgh", 3, DefaultAlphabets())
	decoded, _, err := decodeFromBytes(enc)
	if err != nil {
		t.Fatalf("decode round trip: %v", err)
	}
	if decoded != "abcdef" {
		t.Fatalf("decoded truncated dictionary word = %q, want %q", decoded, "abcdef")
	}
}

func decodeFromBytes(packed []uint8) (string, uint32, error) {
	img := make([]uint8, 0x100)
	img[0x00] = 3
	buf, err := memory.New(img)
	if err != nil {
		return "", 0, err
	}
	for i, b := range packed {
		buf.WriteByte(uint32(0x40+i), b)
	}
	return Decode(buf, 0x40, DefaultAlphabets(), 0, nil)
}
