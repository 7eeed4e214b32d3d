package frame

import "testing"

func TestPushPopRoundTrips(t *testing.T) {
	f := New(0x100, 1, make([]uint16, 2), 0, RoutineCall)
	f.Push(42)
	f.Push(7)

	v, err := f.Pop(0)
	if err != nil || v != 7 {
		t.Fatalf("Pop = (%d, %v), want (7, nil)", v, err)
	}
	v, err = f.Pop(0)
	if err != nil || v != 42 {
		t.Fatalf("Pop = (%d, %v), want (42, nil)", v, err)
	}
}

func TestPopEmptyReturnsUnderflowNotPanic(t *testing.T) {
	f := New(0, -1, nil, 0, RoutineMain)
	v, err := f.Pop(0x200)
	if v != 0 {
		t.Fatalf("expected zero value on underflow, got %d", v)
	}
	var underflow *StackUnderflow
	if err == nil {
		t.Fatalf("expected a StackUnderflow error")
	}
	if !asStackUnderflow(err, &underflow) {
		t.Fatalf("expected *StackUnderflow, got %T", err)
	}
	if underflow.PC != 0x200 {
		t.Fatalf("PC = %#x, want 0x200", underflow.PC)
	}
}

func asStackUnderflow(err error, target **StackUnderflow) bool {
	if su, ok := err.(*StackUnderflow); ok {
		*target = su
		return true
	}
	return false
}

func TestLocalsAreOneIndexed(t *testing.T) {
	f := New(0, -1, []uint16{10, 20, 30}, 3, RoutineCall)
	if got := f.Local(1); got != 10 {
		t.Fatalf("Local(1) = %d, want 10", got)
	}
	f.SetLocal(3, 99)
	if got := f.Local(3); got != 99 {
		t.Fatalf("Local(3) after SetLocal = %d, want 99", got)
	}
	// Out of range reads are tolerated and return zero, matching the
	// leniency extended to stack underflow.
	if got := f.Local(5); got != 0 {
		t.Fatalf("Local(5) out of range = %d, want 0", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := New(0, -1, []uint16{1, 2}, 0, RoutineCall)
	f.Push(5)

	c := f.Clone()
	c.SetLocal(1, 100)
	c.Push(6)

	if f.Local(1) != 1 {
		t.Fatalf("mutating clone's locals affected original")
	}
	if f.StackDepth() != 1 {
		t.Fatalf("mutating clone's stack affected original, depth = %d", f.StackDepth())
	}
}

func TestStackPushPopTopOrder(t *testing.T) {
	s := &Stack{}
	a := New(1, -1, nil, 0, RoutineMain)
	b := New(2, -1, nil, 0, RoutineCall)
	s.Push(a)
	s.Push(b)

	top, err := s.Top()
	if err != nil || top != b {
		t.Fatalf("Top() should be the most recently pushed frame")
	}

	popped, err := s.Pop()
	if err != nil || popped != b {
		t.Fatalf("Pop() should return the innermost frame first")
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", s.Depth())
	}
}

func TestStackPopEmptyErrors(t *testing.T) {
	s := &Stack{}
	if _, err := s.Pop(); err == nil {
		t.Fatalf("expected an error popping an empty call stack")
	}
}
