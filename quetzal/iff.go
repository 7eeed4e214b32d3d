// Package quetzal implements the Quetzal save-file format (IFF FORM
// type IFZS): an IFhd identity chunk, a compressed dynamic-memory
// diff (CMem), and a serialised call stack (Stks).
package quetzal

import (
	"encoding/binary"
	"fmt"
)

type chunk struct {
	id   [4]byte
	data []byte
}

// parseChunks splits an IFF FORM's body into its child chunks. form must
// already have its 8-byte "FORM"+length header and 4-byte form-type
// stripped.
func parseChunks(form []byte) ([]chunk, error) {
	var chunks []chunk
	pos := 0
	for pos+8 <= len(form) {
		var c chunk
		copy(c.id[:], form[pos:pos+4])
		length := binary.BigEndian.Uint32(form[pos+4 : pos+8])
		start := pos + 8
		end := start + int(length)
		if end > len(form) {
			return nil, fmt.Errorf("quetzal: chunk %q overruns form (want %d bytes, have %d)", c.id, length, len(form)-start)
		}
		c.data = form[start:end]
		chunks = append(chunks, c)
		pos = end
		if length%2 == 1 {
			pos++ // chunks are padded to an even length
		}
	}
	return chunks, nil
}

func writeChunk(out []byte, id string, data []byte) []byte {
	out = append(out, id...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	out = append(out, lenBuf[:]...)
	out = append(out, data...)
	if len(data)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func wrapForm(formType string, body []byte) []byte {
	out := make([]byte, 0, len(body)+12)
	out = append(out, "FORM"...)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)+4))
	out = append(out, lenBuf[:]...)
	out = append(out, formType...)
	out = append(out, body...)
	return out
}

func unwrapForm(data []byte) (formType string, body []byte, err error) {
	if len(data) < 12 || string(data[0:4]) != "FORM" {
		return "", nil, fmt.Errorf("quetzal: not an IFF FORM")
	}
	length := binary.BigEndian.Uint32(data[4:8])
	if int(length)+8 > len(data) {
		return "", nil, fmt.Errorf("quetzal: FORM length %d exceeds data size %d", length, len(data))
	}
	return string(data[8:12]), data[12 : 8+length], nil
}
