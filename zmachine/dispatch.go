package zmachine

import (
	"github.com/aldermoor/zif/frame"
	"github.com/aldermoor/zif/zobject"
)

// Step executes instructions until the story produces something a host
// must react to: new output, a request for input, a save/restore point,
// or termination. This mirrors the reference implementation's run loop,
// adapted from a channel-fed goroutine into a single blocking call a host
// drives explicitly.
func (z *ZMachine) Step() StepEvent {
	for {
		if z.quit {
			return Done{}
		}
		if z.pendingWarning != "" {
			w := z.pendingWarning
			z.pendingWarning = ""
			return Warning{Message: w}
		}

		pc := z.pc
		z.currentInstructionPC = pc
		ins := z.decodeInstruction(pc)
		z.pc = ins.nextPC

		z.producedOutput = false
		event, err := z.execute(ins)
		switch err {
		case nil:
		case ErrQuit:
			z.quit = true
			return Done{}
		case ErrRestart:
			z.doRestart()
			continue
		default:
			z.quit = true
			return Done{Err: err}
		}
		if event != nil {
			return event
		}
		if z.producedOutput {
			return Output{}
		}
	}
}

// resolveOperands reads each decoded operand's live value, deferring
// variable reads to dispatch time (not decode time) so that operand
// order matches the standard's left-to-right evaluation rule.
func (z *ZMachine) resolveOperands(ins instruction) []uint16 {
	values := make([]uint16, len(ins.operands))
	for i, op := range ins.operands {
		if op.kind == typeVariable {
			values[i] = z.readVariable(uint8(op.raw), false)
		} else {
			values[i] = op.raw
		}
	}
	return values
}

func (z *ZMachine) getObject(id uint16) *zobject.Object {
	return zobject.Get(z.Memory, id, z.Memory.Header.ObjectTableBase, z.Alphabets)
}

// execute runs one decoded instruction. A non-nil StepEvent means the
// host must be consulted before the machine can proceed further; a nil
// event (and nil error) means normal completion, continue stepping.
func (z *ZMachine) execute(ins instruction) (StepEvent, error) {
	ops := z.resolveOperands(ins)

	switch ins.name {

	// --- 0OP ---
	case "rtrue":
		return nil, z.returnFromRoutine(1)
	case "rfalse":
		return nil, z.returnFromRoutine(0)
	case "print":
		z.printText(ins.text)
		return nil, nil
	case "print_ret":
		z.printText(ins.text)
		z.printText("\n")
		return nil, z.returnFromRoutine(1)
	case "nop":
		return nil, nil
	case "save":
		z.pendingSaveRestore = &pendingSaveRestore{hasStore: ins.hasStore, storeTarget: ins.storeTarget, hasBranch: ins.branch.present, branch: ins.branch}
		return SaveRequest{}, nil
	case "restore":
		z.pendingSaveRestore = &pendingSaveRestore{hasStore: ins.hasStore, storeTarget: ins.storeTarget, hasBranch: ins.branch.present, branch: ins.branch}
		return RestoreRequest{}, nil
	case "restart":
		return nil, ErrRestart
	case "ret_popped":
		v, err := z.currentFrame().Pop(z.currentInstructionPC)
		z.noteUnderflow(err)
		return nil, z.returnFromRoutine(v)
	case "catch":
		z.store(ins.storeTarget, ins.hasStore, uint16(z.frames.Depth()))
		return nil, nil
	case "quit":
		return nil, ErrQuit
	case "new_line":
		z.printText("\n")
		return nil, nil
	case "show_status":
		z.updateStatusBar()
		return nil, nil
	case "verify":
		ok := z.verifyChecksum()
		return nil, z.branch(ins.branch, ok)
	case "piracy":
		return nil, z.branch(ins.branch, true)

	// --- 1OP ---
	case "jz":
		return nil, z.branch(ins.branch, ops[0] == 0)
	case "get_sibling":
		obj := z.objOrNil(ops[0])
		var sib uint16
		if obj != nil {
			sib = obj.Sibling
		}
		z.store(ins.storeTarget, ins.hasStore, sib)
		return nil, z.branch(ins.branch, sib != 0)
	case "get_child":
		obj := z.objOrNil(ops[0])
		var child uint16
		if obj != nil {
			child = obj.Child
		}
		z.store(ins.storeTarget, ins.hasStore, child)
		return nil, z.branch(ins.branch, child != 0)
	case "get_parent":
		obj := z.objOrNil(ops[0])
		var parent uint16
		if obj != nil {
			parent = obj.Parent
		}
		z.store(ins.storeTarget, ins.hasStore, parent)
		return nil, nil
	case "get_prop_len":
		z.store(ins.storeTarget, ins.hasStore, zobject.PropertyLength(z.Memory, uint32(ops[0])))
		return nil, nil
	case "inc":
		v := z.readVariable(uint8(ops[0]), true)
		z.writeVariable(uint8(ops[0]), uint16(int16(v)+1), true)
		return nil, nil
	case "dec":
		v := z.readVariable(uint8(ops[0]), true)
		z.writeVariable(uint8(ops[0]), uint16(int16(v)-1), true)
		return nil, nil
	case "print_addr":
		text, _, _ := decodeZString(z, uint32(ops[0]))
		z.printText(text)
		return nil, nil
	case "call_1s":
		z.callRoutine(ops[0], nil, ins.nextPC, int(ins.storeTarget), frame.RoutineCall)
		return nil, nil
	case "remove_obj":
		if ops[0] != 0 {
			obj := z.getObject(ops[0])
			zobject.Detach(z.Memory, obj, z.Memory.Header.ObjectTableBase, z.getObject)
		}
		return nil, nil
	case "print_obj":
		if ops[0] != 0 {
			z.printText(z.getObject(ops[0]).Name)
		}
		return nil, nil
	case "ret":
		return nil, z.returnFromRoutine(ops[0])
	case "jump":
		offset := int16(ops[0])
		z.pc = uint32(int64(z.pc) + int64(offset) - 2)
		return nil, nil
	case "print_paddr":
		addr := z.Memory.Header.PackedAddress(ops[0], false)
		text, _, _ := decodeZString(z, addr)
		z.printText(text)
		return nil, nil
	case "load":
		z.store(ins.storeTarget, ins.hasStore, z.readVariable(uint8(ops[0]), true))
		return nil, nil
	case "not":
		z.store(ins.storeTarget, ins.hasStore, ^ops[0])
		return nil, nil

	// --- 2OP ---
	case "je":
		match := false
		for _, v := range ops[1:] {
			if v == ops[0] {
				match = true
				break
			}
		}
		return nil, z.branch(ins.branch, match)
	case "jl":
		return nil, z.branch(ins.branch, int16(ops[0]) < int16(ops[1]))
	case "jg":
		return nil, z.branch(ins.branch, int16(ops[0]) > int16(ops[1]))
	case "dec_chk":
		v := int16(z.readVariable(uint8(ops[0]), true)) - 1
		z.writeVariable(uint8(ops[0]), uint16(v), true)
		return nil, z.branch(ins.branch, v < int16(ops[1]))
	case "inc_chk":
		v := int16(z.readVariable(uint8(ops[0]), true)) + 1
		z.writeVariable(uint8(ops[0]), uint16(v), true)
		return nil, z.branch(ins.branch, v > int16(ops[1]))
	case "jin":
		obj := z.objOrNil(ops[0])
		var parent uint16
		if obj != nil {
			parent = obj.Parent
		}
		return nil, z.branch(ins.branch, parent == ops[1])
	case "test":
		return nil, z.branch(ins.branch, ops[0]&ops[1] == ops[1])
	case "or":
		z.store(ins.storeTarget, ins.hasStore, ops[0]|ops[1])
		return nil, nil
	case "and":
		z.store(ins.storeTarget, ins.hasStore, ops[0]&ops[1])
		return nil, nil
	case "test_attr":
		obj := z.objOrNil(ops[0])
		set := obj != nil && obj.TestAttribute(ops[1])
		return nil, z.branch(ins.branch, set)
	case "set_attr":
		if obj := z.objOrNil(ops[0]); obj != nil {
			obj.SetAttribute(ops[1], z.Memory)
		}
		return nil, nil
	case "clear_attr":
		if obj := z.objOrNil(ops[0]); obj != nil {
			obj.ClearAttribute(ops[1], z.Memory)
		}
		return nil, nil
	case "store":
		z.writeVariable(uint8(ops[0]), ops[1], true)
		return nil, nil
	case "insert_obj":
		if ops[0] != 0 {
			obj := z.getObject(ops[0])
			dest := z.getObject(ops[1])
			zobject.Insert(z.Memory, obj, dest, z.getObject)
		}
		return nil, nil
	case "loadw":
		z.store(ins.storeTarget, ins.hasStore, z.Memory.ReadWord(uint32(ops[0])+2*uint32(ops[1])))
		return nil, nil
	case "loadb":
		z.store(ins.storeTarget, ins.hasStore, uint16(z.Memory.ReadByte(uint32(ops[0])+uint32(ops[1]))))
		return nil, nil
	case "get_prop":
		obj := z.objOrNil(ops[0])
		var v uint16
		if obj != nil {
			prop := obj.GetProperty(z.Memory, uint8(ops[1]), z.Memory.Header.ObjectTableBase)
			if len(prop.Data) == 1 {
				v = uint16(prop.Data[0])
			} else if len(prop.Data) >= 2 {
				v = uint16(prop.Data[0])<<8 | uint16(prop.Data[1])
			}
		}
		z.store(ins.storeTarget, ins.hasStore, v)
		return nil, nil
	case "get_prop_addr":
		var addr uint32
		if obj := z.objOrNil(ops[0]); obj != nil {
			addr = obj.GetPropertyAddr(z.Memory, uint8(ops[1]))
		}
		z.store(ins.storeTarget, ins.hasStore, uint16(addr))
		return nil, nil
	case "get_next_prop":
		var next uint8
		if obj := z.objOrNil(ops[0]); obj != nil {
			next = obj.NextProperty(z.Memory, uint8(ops[1]))
		}
		z.store(ins.storeTarget, ins.hasStore, uint16(next))
		return nil, nil
	case "add":
		z.store(ins.storeTarget, ins.hasStore, uint16(int16(ops[0])+int16(ops[1])))
		return nil, nil
	case "sub":
		z.store(ins.storeTarget, ins.hasStore, uint16(int16(ops[0])-int16(ops[1])))
		return nil, nil
	case "mul":
		z.store(ins.storeTarget, ins.hasStore, uint16(int16(ops[0])*int16(ops[1])))
		return nil, nil
	case "div":
		if ops[1] == 0 {
			return nil, fatalf(KindDivisionByZero, z.currentInstructionPC, "division by zero")
		}
		z.store(ins.storeTarget, ins.hasStore, uint16(int16(ops[0])/int16(ops[1])))
		return nil, nil
	case "mod":
		if ops[1] == 0 {
			return nil, fatalf(KindDivisionByZero, z.currentInstructionPC, "division by zero")
		}
		z.store(ins.storeTarget, ins.hasStore, uint16(int16(ops[0])%int16(ops[1])))
		return nil, nil
	case "call_2s":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, int(ins.storeTarget), frame.RoutineCall)
		return nil, nil
	case "call_2n":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, -1, frame.RoutineCall)
		return nil, nil
	case "set_colour":
		z.applySetColour(ops[0], ops[1])
		return nil, nil
	case "throw":
		return nil, z.doThrow(ops[0], ops[1])

	// --- VAR ---
	case "call":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, int(ins.storeTarget), frame.RoutineCall)
		return nil, nil
	case "storew":
		z.Memory.WriteWord(uint32(ops[0])+2*uint32(ops[1]), ops[2])
		return nil, nil
	case "storeb":
		z.Memory.WriteByte(uint32(ops[0])+uint32(ops[1]), uint8(ops[2]))
		return nil, nil
	case "put_prop":
		if obj := z.objOrNil(ops[0]); obj != nil {
			obj.SetProperty(z.Memory, uint8(ops[1]), ops[2])
		}
		return nil, nil
	case "sread":
		return z.beginReadLine(ops, ins), nil
	case "print_char":
		z.printChar(ops[0])
		return nil, nil
	case "print_num":
		z.printText(itoa(int16(ops[0])))
		return nil, nil
	case "random":
		z.store(ins.storeTarget, ins.hasStore, z.rng.draw(int16(ops[0])))
		return nil, nil
	case "push":
		z.currentFrame().Push(ops[0])
		return nil, nil
	case "pull":
		if len(ops) == 0 {
			return nil, nil
		}
		v, err := z.currentFrame().Pop(z.currentInstructionPC)
		z.noteUnderflow(err)
		z.writeVariable(uint8(ops[0]), v, true)
		return nil, nil
	case "split_window":
		z.Screen.SplitWindow(int(ops[0]))
		return nil, nil
	case "set_window":
		if ops[0] == 0 {
			z.Screen.SetWindow(Lower)
		} else {
			z.Screen.SetWindow(Upper)
		}
		return nil, nil
	case "call_vs2":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, int(ins.storeTarget), frame.RoutineCall)
		return nil, nil
	case "erase_window":
		z.Screen.EraseWindow(int(int16(ops[0])))
		return nil, nil
	case "erase_line":
		return nil, nil // no-op: no fixed-width upper-window renderer backs this runtime's default terminal frontend
	case "set_cursor":
		z.Screen.SetCursor(int(ops[0]), int(ops[1]))
		return nil, nil
	case "get_cursor":
		return nil, nil // no inverse of SetCursor is exposed by Screen; out of scope without a grid-addressable frontend
	case "set_text_style":
		z.Screen.SetTextStyle(TextStyle(ops[0]))
		return nil, nil
	case "buffer_mode":
		return nil, nil // buffering is the host's concern, not this package's
	case "output_stream":
		z.setOutputStream(int16(ops[0]), ops)
		return nil, nil
	case "input_stream":
		return nil, nil // only keyboard input is supported
	case "sound_effect":
		return nil, nil // no sound device backs this runtime
	case "read_char":
		return z.beginReadChar(ins), nil
	case "scan_table":
		return z.doScanTable(ops, ins)
	case "call_vn":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, -1, frame.RoutineCall)
		return nil, nil
	case "call_vn2":
		z.callRoutine(ops[0], ops[1:], ins.nextPC, -1, frame.RoutineCall)
		return nil, nil
	case "tokenise":
		z.doTokenise(ops)
		return nil, nil
	case "encode_text":
		z.doEncodeText(ops)
		return nil, nil
	case "copy_table":
		z.doCopyTable(ops)
		return nil, nil
	case "print_table":
		z.doPrintTable(ops)
		return nil, nil
	case "check_arg_count":
		return nil, z.branch(ins.branch, int(ops[0]) <= z.currentFrame().ArgCount)

	// --- EXT ---
	case "save_undo":
		z.saveUndo()
		z.store(ins.storeTarget, ins.hasStore, 1)
		return nil, nil
	case "restore_undo":
		ok := z.restoreUndo()
		v := uint16(0)
		if ok {
			v = 2
		}
		z.store(ins.storeTarget, ins.hasStore, v)
		return nil, nil
	case "log_shift":
		z.store(ins.storeTarget, ins.hasStore, logShift(ops[0], int16(ops[1])))
		return nil, nil
	case "art_shift":
		z.store(ins.storeTarget, ins.hasStore, uint16(artShift(int16(ops[0]), int16(ops[1]))))
		return nil, nil
	case "set_font":
		z.store(ins.storeTarget, ins.hasStore, 0) // font 1 (normal) is the only font this runtime supports
		return nil, nil
	case "print_unicode":
		z.printChar(ops[0])
		return nil, nil
	case "check_unicode":
		z.store(ins.storeTarget, ins.hasStore, 3) // claim both input and output support for any codepoint
		return nil, nil
	case "set_true_colour":
		z.applySetTrueColour(ops)
		return nil, nil

	default:
		return nil, fatalf(KindDecode, ins.pc, "unknown opcode %d (operand count %d)", ins.opcodeNumber, ins.count)
	}
}

func (z *ZMachine) objOrNil(id uint16) *zobject.Object {
	if id == 0 {
		return nil
	}
	return z.getObject(id)
}

func logShift(v uint16, places int16) uint16 {
	if places >= 0 {
		return v << uint16(places)
	}
	return v >> uint16(-places)
}

func artShift(v int16, places int16) int16 {
	if places >= 0 {
		return v << uint16(places)
	}
	return v >> uint16(-places)
}

func (z *ZMachine) printText(s string) {
	z.producedOutput = true
	if z.streamMask&streamMemory != 0 && len(z.memoryStream) > 0 {
		z.writeToMemoryStream(s)
		return
	}
	if z.streamMask&streamScreen != 0 {
		z.Screen.Print(s)
	}
}

func (z *ZMachine) printChar(zscii uint16) {
	r, ok := zsciiRune(uint8(zscii))
	if !ok {
		r = rune(zscii)
	}
	z.printText(string(r))
}

func itoa(n int16) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	v := uint16(n)
	if neg {
		v = uint16(-n)
	}
	var buf [6]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
