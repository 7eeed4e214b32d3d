// Package dictionary parses a Z-machine dictionary table and resolves
// encoded words to their dictionary entry address for the tokeniser.
package dictionary

import (
	"bytes"

	"github.com/aldermoor/zif/memory"
	"github.com/aldermoor/zif/zstring"
)

// Entry is one decoded dictionary word.
type Entry struct {
	Address     uint16
	EncodedWord []uint8
	Word        string
	Data        []uint8
}

// Dictionary is a parsed word list plus its word-separator set.
type Dictionary struct {
	Separators []uint8
	EntryLen   uint8
	entries    []Entry
}

// Parse reads the dictionary table at baseAddress (header.DictionaryBase
// for the main dictionary, or an alternate address supplied to
// `tokenise`'s 3rd operand for a custom one).
func Parse(buf *memory.Buffer, baseAddress uint32, alphabets *zstring.Alphabets) *Dictionary {
	numSeparators := buf.ReadByte(baseAddress)
	separators := make([]uint8, numSeparators)
	for i := range separators {
		separators[i] = buf.ReadByte(baseAddress + 1 + uint32(i))
	}

	entryLenAddr := baseAddress + 1 + uint32(numSeparators)
	entryLen := buf.ReadByte(entryLenAddr)
	count := int16(buf.ReadWord(entryLenAddr + 1))

	encodedWordLen := 4
	if buf.Header.Version > 3 {
		encodedWordLen = 6
	}

	entryBase := entryLenAddr + 3
	entries := make([]Entry, 0, count)
	for i := int16(0); i < count; i++ {
		addr := entryBase + uint32(i)*uint32(entryLen)
		word, _, _ := zstring.Decode(buf, addr, alphabets, buf.Header.AbbreviationTableBase, nil)
		entries = append(entries, Entry{
			Address:     uint16(addr),
			EncodedWord: buf.Slice(addr, addr+uint32(encodedWordLen)),
			Word:        word,
			Data:        buf.Slice(addr+uint32(encodedWordLen), addr+uint32(entryLen)),
		})
	}

	return &Dictionary{Separators: separators, EntryLen: entryLen, entries: entries}
}

// Find looks up an already-encoded (packed Z-string) word. Story
// dictionaries are sorted, but small enough in practice that a linear
// scan keeps this simple; returns 0 if the word is not found.
func (d *Dictionary) Find(encodedWord []uint8) uint16 {
	for _, e := range d.entries {
		if bytes.Equal(e.EncodedWord, encodedWord) {
			return e.Address
		}
	}
	return 0
}

// IsSeparator reports whether c is one of this dictionary's word
// separators (used by the tokeniser to decide where to split input,
// distinct from plain whitespace).
func (d *Dictionary) IsSeparator(c uint8) bool {
	for _, s := range d.Separators {
		if s == c {
			return true
		}
	}
	return false
}
