package zmachine

// readVariable resolves a variable number per the standard's numbering:
// 0 is the top of the current routine's evaluation stack (popped unless
// peek is true, used by `inc`/`dec`-family opcodes that read-modify-write
// in place), 1-15 are locals, 16-255 are globals.
func (z *ZMachine) readVariable(varNum uint8, peek bool) uint16 {
	switch {
	case varNum == 0:
		f := z.currentFrame()
		if peek {
			v, err := f.Peek(z.currentInstructionPC)
			z.noteUnderflow(err)
			return v
		}
		v, err := f.Pop(z.currentInstructionPC)
		z.noteUnderflow(err)
		return v
	case varNum <= 15:
		return z.currentFrame().Local(int(varNum))
	default:
		addr := uint32(z.Memory.Header.GlobalVariableBase) + 2*uint32(varNum-16)
		return z.Memory.ReadWord(addr)
	}
}

// writeVariable resolves a variable number for writing. indirect marks
// the opcodes (`inc`/`dec`/`inc_chk`/`dec_chk`/`store`/`pull`) whose
// variable operand is itself a reference rather than a plain store
// target: for those, variable 0 replaces the top of the evaluation
// stack in place instead of pushing a new value.
func (z *ZMachine) writeVariable(varNum uint8, value uint16, indirect bool) {
	switch {
	case varNum == 0:
		if indirect {
			z.currentFrame().ReplaceTop(value)
			return
		}
		z.currentFrame().Push(value)
	case varNum <= 15:
		z.currentFrame().SetLocal(int(varNum), value)
	default:
		addr := uint32(z.Memory.Header.GlobalVariableBase) + 2*uint32(varNum-16)
		z.Memory.WriteWord(addr, value)
	}
}

func (z *ZMachine) noteUnderflow(err error) {
	if err != nil {
		z.warnOnce("stack_underflow", "warning: stack underflow at pc %#x", z.currentInstructionPC)
	}
}

// store writes an opcode's result per its store-byte target, when the
// instruction has one (callers pass hasStore=false for opcodes like
// `print` that never store).
func (z *ZMachine) store(target uint8, hasStore bool, value uint16) {
	if !hasStore {
		return
	}
	z.writeVariable(target, value, false)
}

// branch evaluates a decoded branch descriptor: if condition matches the
// descriptor's polarity, either returns from the current routine (the
// 0/1 special forms) or jumps pc to the branch target; otherwise falls
// through to the next instruction (pc already past the branch bytes).
func (z *ZMachine) branch(b branchInfo, condition bool) error {
	if condition != b.onTrue {
		return nil
	}
	switch b.target {
	case 0:
		return z.returnFromRoutine(0)
	case 1:
		return z.returnFromRoutine(1)
	default:
		z.pc = b.target
		return nil
	}
}
