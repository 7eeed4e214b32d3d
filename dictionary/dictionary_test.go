package dictionary_test

import (
	"testing"

	"github.com/aldermoor/zif/dictionary"
	"github.com/aldermoor/zif/memory"
	"github.com/aldermoor/zif/zstring"
)

func buildDictionary(t *testing.T) (*memory.Buffer, uint32) {
	t.Helper()
	img := make([]uint8, 0x100)
	img[0x00] = 3
	buf, err := memory.New(img)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}

	const base = 0x40
	buf.WriteByte(base, 3) // 3 separators
	buf.WriteByte(base+1, '.')
	buf.WriteByte(base+2, ',')
	buf.WriteByte(base+3, '"')

	buf.WriteByte(base+4, 7) // entry length
	buf.WriteWord(base+5, 1) // 1 entry

	entryAddr := uint32(base + 7)
	alphabets := zstring.DefaultAlphabets()
	enc := zstring.EncodeForDictionary("open", 3, alphabets)
	for i, b := range enc {
		buf.WriteByte(entryAddr+uint32(i), b)
	}
	buf.WriteByte(entryAddr+uint32(len(enc)), 0xAB) // first of the 3 data bytes in entryLen=7 (4+3)

	return buf, base
}

func TestParseAndFind(t *testing.T) {
	buf, base := buildDictionary(t)
	alphabets := zstring.DefaultAlphabets()
	d := dictionary.Parse(buf, uint32(base), alphabets)

	if len(d.Separators) != 3 || !d.IsSeparator('.') || d.IsSeparator('!') {
		t.Fatalf("separators parsed incorrectly: %v", d.Separators)
	}

	enc := zstring.EncodeForDictionary("open", 3, alphabets)
	addr := d.Find(enc)
	if addr == 0 {
		t.Fatalf("expected to find 'open' in the dictionary")
	}

	missing := zstring.EncodeForDictionary("zzzzzz", 3, alphabets)
	if d.Find(missing) != 0 {
		t.Fatalf("expected 'zzzzzz' to be absent")
	}
}
