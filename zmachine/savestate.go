package zmachine

import "github.com/aldermoor/zif/frame"

// SaveState is a full in-memory snapshot of the machine, used by the
// undo ring (`save_undo`/`restore_undo`). Quetzal save files (the
// `save`/`restore` opcodes) are a distinct, host-persisted format handled
// by the quetzal package; this type never leaves the process.
type SaveState struct {
	memory []uint8
	frames *frame.Stack
	pc     uint32
}

func (z *ZMachine) captureState() *SaveState {
	dyn := z.Memory.DynamicMemory()
	return &SaveState{
		memory: append([]uint8(nil), dyn...),
		frames: z.frames.Clone(),
		pc:     z.pc,
	}
}

func (z *ZMachine) applyState(s *SaveState) {
	copy(z.Memory.Bytes()[:len(s.memory)], s.memory)
	z.frames = s.frames.Clone()
	z.pc = s.pc
}

// saveUndo implements `save_undo`, keeping at most opts.UndoLimit
// snapshots (the oldest is dropped once the ring is full).
func (z *ZMachine) saveUndo() {
	z.undoRing = append(z.undoRing, z.captureState())
	if len(z.undoRing) > z.opts.UndoLimit {
		z.undoRing = z.undoRing[1:]
	}
}

// restoreUndo implements `restore_undo`, returning false (no-op) if the
// ring is empty.
func (z *ZMachine) restoreUndo() bool {
	if len(z.undoRing) == 0 {
		return false
	}
	s := z.undoRing[len(z.undoRing)-1]
	z.undoRing = z.undoRing[:len(z.undoRing)-1]
	z.applyState(s)
	return true
}

// doRestart implements the `restart` opcode: dynamic memory reverts to
// the boot snapshot, the call stack and screen reset, but the undo ring
// and RNG state are left alone (a restarted game commonly re-seeds its
// own randomness deliberately).
func (z *ZMachine) doRestart() {
	z.Memory.Restart()
	z.frames = &frame.Stack{}
	z.frames.Push(frame.New(0, -1, nil, 0, frame.RoutineMain))
	z.pc = uint32(z.Memory.Header.InitialPC)
	z.Screen.EraseWindow(-1)
	z.Screen.SetWindow(Lower)
	z.streamMask = streamScreen
	z.memoryStream = nil
}

// verifyChecksum implements the `verify` opcode: sum every byte from
// 0x40 to the header's declared file length (taken from the boot
// snapshot, since live dynamic memory has since been modified by play)
// and compare against the stored checksum.
func (z *ZMachine) verifyChecksum() bool {
	boot := z.Memory.BootSnapshot()
	length := z.Memory.Header.FileLength()
	if length == 0 || uint32(len(boot)) < length {
		return true
	}
	var sum uint32
	for i := uint32(0x40); i < length; i++ {
		sum += uint32(boot[i])
	}
	return uint16(sum) == z.Memory.Header.FileChecksum
}

// doThrow implements `throw`: unwind the call stack down to the frame
// depth `catch` recorded, then return value from it, exactly as if that
// frame had executed `ret value`.
func (z *ZMachine) doThrow(value uint16, targetDepth uint16) error {
	for uint16(z.frames.Depth()) > targetDepth {
		if _, err := z.frames.Pop(); err != nil {
			return &RuntimeError{Kind: KindDispatch, PC: z.currentInstructionPC, Message: "throw: invalid stack frame", Err: err}
		}
	}
	return z.returnFromRoutine(value)
}

// updateStatusBar implements `show_status` (the v1-3 status line), built
// from the conventional globals: global 0 is the current location
// object, and bit 1 of Flags1 selects between a score/turns game (global
// 1 = score, global 2 = turns) and a time game (global 1 = hours, global
// 2 = minutes).
func (z *ZMachine) updateStatusBar() {
	locationObj := z.readVariable(16, true)
	g1 := int16(z.readVariable(17, true))
	g2 := z.readVariable(18, true)

	location := ""
	if locationObj != 0 {
		location = z.getObject(locationObj).Name
	}

	var right string
	if z.Memory.Header.Flags1&0b0000_0010 != 0 {
		hour := int(g1) % 12
		if hour == 0 {
			hour = 12
		}
		suffix := " AM"
		if g1 >= 12 {
			suffix = " PM"
		}
		right = itoa(int16(hour)) + ":" + twoDigit(int(g2)) + suffix
	} else {
		right = "Score: " + itoa(g1) + "  Moves: " + itoa(int16(g2))
	}

	z.Screen.SetStatusBar(location, right)
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + itoa(int16(n))
	}
	return itoa(int16(n))
}
