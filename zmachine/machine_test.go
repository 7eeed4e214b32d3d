package zmachine

import "testing"

// newTestStory builds a minimal but header-valid v3 story image large
// enough to hold a dictionary, object table and globals, and copies prog
// into the code area at the declared initial PC.
func newTestStory(t *testing.T, prog []uint8) *ZMachine {
	t.Helper()

	const (
		dictBase    = 0x40
		objBase     = 0x60
		globalsBase = 0x100
		staticBase  = 0x300
		codeBase    = 0x400
	)

	image := make([]uint8, 0x1000)
	image[0x00] = 3 // version 3

	image[0x06] = uint8(codeBase >> 8)
	image[0x07] = uint8(codeBase & 0xff)
	image[0x08] = uint8(dictBase >> 8)
	image[0x09] = uint8(dictBase)
	image[0x0a] = uint8(objBase >> 8)
	image[0x0b] = uint8(objBase)
	image[0x0c] = uint8(globalsBase >> 8)
	image[0x0d] = uint8(globalsBase & 0xff)
	image[0x0e] = uint8(staticBase >> 8)
	image[0x0f] = uint8(staticBase & 0xff)

	// Minimal dictionary: no separators, entry length 7, zero entries.
	image[dictBase] = 0
	image[dictBase+1] = 7
	image[dictBase+2] = 0
	image[dictBase+3] = 0

	copy(image[codeBase:], prog)

	z, err := LoadStory(image, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadStory: %v", err)
	}
	return z
}

// drainOutput runs Step until the story quits or faults, concatenating
// any lower-window text produced along the way.
func drainOutput(t *testing.T, z *ZMachine) (string, error) {
	t.Helper()
	var out string
	for i := 0; i < 1000; i++ {
		switch e := z.Step().(type) {
		case Output:
			for _, run := range z.Screen.DrainLowerOutput() {
				out += run.Text
			}
		case Done:
			return out, e.Err
		case Warning:
			t.Fatalf("unexpected warning: %s", e.Message)
		default:
			t.Fatalf("unexpected event: %#v", e)
		}
	}
	t.Fatalf("story did not terminate within step budget")
	return out, nil
}

func TestStoreAndPrintNum(t *testing.T) {
	prog := []uint8{
		0x0d, 0x10, 0x2a, // long form store: global0 (var 0x10) = 42
		0xe6, 0xbf, 0x10, // VAR form print_num: operand is variable 0x10
		0xba, // short form 0OP: quit
	}
	z := newTestStory(t, prog)

	out, err := drainOutput(t, z)
	if err != nil {
		t.Fatalf("story errored: %v", err)
	}
	if out != "42" {
		t.Fatalf("expected %q, got %q", "42", out)
	}
}

func TestJlBranchesOnSignedComparison(t *testing.T) {
	// jl compares its operands as signed 16-bit values; -1 (0xffff) must
	// compare less than 0. Encoded in variable form so the first operand
	// can carry a full word (long form only allows byte-sized operands).
	prog := []uint8{
		0xc2, 0x1f, 0xff, 0xff, 0x00, 0xc6, // jl -1, 0 ?(branch true, skip to offset 10)
		0xe6, 0x7f, 0x63, 0xba, // offset 6: print_num 99; quit (must be skipped)
		0xe6, 0x7f, 0x01, 0xba, // offset 10: print_num 1; quit
	}
	z := newTestStory(t, prog)

	out, err := drainOutput(t, z)
	if err != nil {
		t.Fatalf("story errored: %v", err)
	}
	if out != "1" {
		t.Fatalf("expected %q, got %q", "1", out)
	}
}

func TestCallAndReturn(t *testing.T) {
	const calleeByteAddr = 0x420
	const calleePacked = calleeByteAddr / 2 // v3 packs routine addresses *2

	prog := []uint8{
		0xe0, 0x3f, // VAR form call, one large-constant operand
		uint8(calleePacked >> 8), uint8(calleePacked & 0xff),
		0x10,             // store result in global0
		0xe6, 0xbf, 0x10, // print_num global0
		0xba, // quit
	}

	callee := []uint8{
		0,          // 0 locals
		0x9b, 0x07, // short form 1OP ret, small-constant operand 7
	}

	image := make([]uint8, 0x1000)
	image[0x00] = 3
	image[0x06], image[0x07] = 0x04, 0x00 // initial PC = 0x400
	image[0x08], image[0x09] = 0x00, 0x40 // dict base
	image[0x0a], image[0x0b] = 0x00, 0x60 // obj base
	image[0x0c], image[0x0d] = 0x01, 0x00 // globals base
	image[0x0e], image[0x0f] = 0x03, 0x00 // static base
	image[0x40], image[0x41], image[0x42], image[0x43] = 0, 7, 0, 0

	copy(image[0x400:], prog)
	copy(image[calleeByteAddr:], callee)

	z, err := LoadStory(image, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadStory: %v", err)
	}

	out, err := drainOutput(t, z)
	if err != nil {
		t.Fatalf("story errored: %v", err)
	}
	if out != "7" {
		t.Fatalf("expected %q, got %q", "7", out)
	}
}

func TestIncOnVariableZeroReplacesStackTopInPlace(t *testing.T) {
	// inc's operand is itself a variable number (the indirect reference
	// form): targeting variable 0 must peek-then-replace the evaluation
	// stack's top in place, not pop-then-push a second value on top of it.
	prog := []uint8{
		0xe8, 0x7f, 0x2a, // VAR form push, small-constant operand 42
		0x95, 0x00, // short form 1OP inc, small-constant operand 0 (variable 0)
		0xe5, 0x7f, 0x58, // VAR form print_char, small-constant operand 'X'
		0xba, // quit
	}
	z := newTestStory(t, prog)

	event := z.Step()
	if _, ok := event.(Output); !ok {
		t.Fatalf("expected Output after print_char, got %#v", event)
	}

	f := z.currentFrame()
	if depth := f.StackDepth(); depth != 1 {
		t.Fatalf("stack depth after inc on variable 0 = %d, want 1 (replace, not push)", depth)
	}
	if got := f.StackValues()[0]; got != 43 {
		t.Fatalf("stack top after inc on variable 0 = %d, want 43", got)
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	prog := []uint8{
		0x17, 0x05, 0x00, 0x10, // long form div: 5 / 0 -> global0
	}
	z := newTestStory(t, prog)

	done, ok := z.Step().(Done)
	if !ok {
		t.Fatalf("expected Done")
	}
	if done.Err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}
