package quetzal

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	boot := make([]byte, 64)
	for i := range boot {
		boot[i] = byte(i)
	}

	cur := append([]byte(nil), boot...)
	cur[10] = 0xff
	cur[40] = 0x01

	snap := Snapshot{
		Release:  7,
		Serial:   [6]byte{'2', '6', '0', '7', '3', '1'},
		Checksum: 0x1234,
		PC:       0xabcdef,
		Memory:   cur,
		Frames: []Frame{
			{ReturnPC: 0x100, Locals: []uint16{1, 2, 3}, EvalStack: []uint16{9}, StoreTarget: 5, ArgCount: 2},
			{ReturnPC: 0x200, Locals: nil, EvalStack: []uint16{1, 2}, StoreTarget: -1, ArgCount: 0},
		},
	}

	encoded := Encode(boot, snap)
	decoded, err := Decode(encoded, boot)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Release != snap.Release || decoded.Serial != snap.Serial || decoded.Checksum != snap.Checksum || decoded.PC != snap.PC {
		t.Fatalf("header mismatch: got %+v", decoded)
	}
	if !bytes.Equal(decoded.Memory, cur) {
		t.Fatalf("memory mismatch:\n got %v\nwant %v", decoded.Memory, cur)
	}
	if len(decoded.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(decoded.Frames))
	}
	if decoded.Frames[0].StoreTarget != 5 || decoded.Frames[0].ArgCount != 2 {
		t.Fatalf("frame 0 mismatch: %+v", decoded.Frames[0])
	}
	if decoded.Frames[1].StoreTarget != -1 {
		t.Fatalf("frame 1 should have discarded its result, got %+v", decoded.Frames[1])
	}
}

func TestDecodeRejectsNonIFZS(t *testing.T) {
	bogus := wrapForm("WXYZ", nil)
	if _, err := Decode(bogus, nil); err == nil {
		t.Fatalf("expected an error for a non-IFZS form")
	}
}

func TestEncodeCMemRunLengthEncodesLongZeroRuns(t *testing.T) {
	boot := make([]byte, 600)
	cur := append([]byte(nil), boot...)
	diff := encodeCMem(boot, cur)
	if len(diff) == 0 {
		t.Fatalf("expected at least one RLE marker pair for an all-zero diff")
	}
	// 600 identical bytes should collapse into 3 marker pairs (256+256+88).
	if len(diff) != 6 {
		t.Fatalf("expected 6 encoded bytes (3 runs), got %d: %v", len(diff), diff)
	}
}
