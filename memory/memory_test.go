package memory

import "testing"

func minimalImage(version uint8) []uint8 {
	img := make([]uint8, 0x40+16)
	img[0x00] = version
	img[0x0e] = 0x00 // static memory base
	img[0x0f] = 0x40
	img[0x06] = 0x00 // initial PC
	img[0x07] = 0x40
	return img
}

func TestNewParsesHeaderAndSnapshotsBoot(t *testing.T) {
	img := minimalImage(3)
	img[0x20] = 0xAA // will be overwritten by interpreter bits

	buf, err := New(img)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if buf.Header.Version != 3 {
		t.Fatalf("Version = %d, want 3", buf.Header.Version)
	}
	if buf.Header.ScreenHeightLines != 25 {
		t.Fatalf("expected interpreter bits to be written, ScreenHeightLines = %d", buf.Header.ScreenHeightLines)
	}
	if buf.BootSnapshot()[0x20] != 0xAA {
		t.Fatalf("boot snapshot should retain the original pre-patch byte")
	}
}

func TestNewRejectsShortImage(t *testing.T) {
	if _, err := New(make([]uint8, 4)); err == nil {
		t.Fatalf("expected error for a too-short image")
	}
}

func TestReadWriteWord(t *testing.T) {
	buf, err := New(minimalImage(5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf.WriteWord(0x3e, 0xBEEF)
	if got := buf.ReadWord(0x3e); got != 0xBEEF {
		t.Fatalf("ReadWord = %#x, want 0xBEEF", got)
	}
}

func TestRestartRestoresDynamicMemoryAndReappliesInterpreterBits(t *testing.T) {
	buf, err := New(minimalImage(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf.WriteByte(0x30, 0x99)
	buf.WriteByte(0x20, 0x00) // corrupt an interpreter-owned byte

	buf.Restart()

	if buf.ReadByte(0x30) != 0 {
		t.Fatalf("expected dynamic memory to be restored to boot snapshot")
	}
	if buf.Header.ScreenHeightLines != 25 {
		t.Fatalf("expected interpreter bits to be reapplied after restart")
	}
}

func TestReaderCursorAdvances(t *testing.T) {
	buf, err := New(minimalImage(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf.WriteWord(0x30, 0x1234)
	buf.WriteByte(0x32, 0x56)

	r := buf.NewReader(0x30)
	if w := r.NextWord(); w != 0x1234 {
		t.Fatalf("NextWord = %#x, want 0x1234", w)
	}
	if b := r.NextByte(); b != 0x56 {
		t.Fatalf("NextByte = %#x, want 0x56", b)
	}
	if r.Pos() != 0x33 {
		t.Fatalf("Pos = %#x, want 0x33", r.Pos())
	}
}

func TestPackedAddress(t *testing.T) {
	h := Header{Version: 3}
	if got := h.PackedAddress(0x10, true); got != 0x20 {
		t.Fatalf("v3 PackedAddress = %#x, want 0x20", got)
	}

	h = Header{Version: 5}
	if got := h.PackedAddress(0x10, true); got != 0x40 {
		t.Fatalf("v5 PackedAddress = %#x, want 0x40", got)
	}

	h = Header{Version: 8}
	if got := h.PackedAddress(0x10, true); got != 0x80 {
		t.Fatalf("v8 PackedAddress = %#x, want 0x80", got)
	}
}

func TestFileLength(t *testing.T) {
	h := Header{Version: 3, FileLengthField: 0x100}
	if got := h.FileLength(); got != 0x200 {
		t.Fatalf("v3 FileLength = %#x, want 0x200", got)
	}

	h = Header{Version: 8, FileLengthField: 0x100}
	if got := h.FileLength(); got != 0x800 {
		t.Fatalf("v8 FileLength = %#x, want 0x800", got)
	}
}
