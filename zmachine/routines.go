package zmachine

import "github.com/aldermoor/zif/frame"

// callRoutine implements the `call`/`call_1s`/`call_2s`/`call_vs2`/
// `call_1n`/`call_2n`/`call_vn`/`call_vn2` family: calling packed address
// 0 is a no-op that immediately "returns" false, per the standard;
// otherwise a new frame is pushed with its locals initialised from the
// routine header (inline word values in v1-4, zeroed in v5+) and then
// overwritten left-to-right by the supplied arguments.
func (z *ZMachine) callRoutine(packedAddr uint16, args []uint16, returnPC uint32, storeTarget int, t frame.RoutineType) {
	if packedAddr == 0 {
		z.store(uint8(storeTarget), storeTarget >= 0, 0)
		z.pc = returnPC
		return
	}

	addr := z.Memory.Header.PackedAddress(packedAddr, true)
	numLocals := int(z.Memory.ReadByte(addr))
	addr++

	locals := make([]uint16, numLocals)
	if z.Version() <= 4 {
		for i := 0; i < numLocals; i++ {
			locals[i] = z.Memory.ReadWord(addr)
			addr += 2
		}
	}
	for i := 0; i < len(args) && i < numLocals; i++ {
		locals[i] = args[i]
	}

	z.frames.Push(frame.New(returnPC, storeTarget, locals, len(args), t))
	z.pc = addr
}

// returnFromRoutine implements `ret`/`ret_popped`/`rtrue`/`rfalse` and the
// branch descriptor's 0/1 special forms: pop the current frame, resume at
// its caller's return address, and store the return value into the
// caller's named variable if the call expected one.
func (z *ZMachine) returnFromRoutine(value uint16) error {
	if z.frames.Depth() <= 1 {
		return &RuntimeError{Kind: KindDispatch, PC: z.currentInstructionPC, Message: "return from the main routine"}
	}
	f, err := z.frames.Pop()
	if err != nil {
		return &RuntimeError{Kind: KindDispatch, PC: z.currentInstructionPC, Message: "return with no active routine", Err: err}
	}
	z.pc = f.ReturnPC
	z.store(uint8(f.StoreTarget), f.StoreTarget >= 0, value)
	return nil
}
