package zmachine

import (
	"fmt"

	"github.com/aldermoor/zif/frame"
	"github.com/aldermoor/zif/quetzal"
)

// pendingSaveRestore records how to report a save/restore's outcome back
// into the story once the host responds: the v1-3 form branches, v4+
// stores a result word.
type pendingSaveRestore struct {
	hasStore    bool
	storeTarget uint8
	hasBranch   bool
	branch      branchInfo
}

// ExportSave serialises the machine's current state to Quetzal bytes,
// for the host to write wherever it persists save files.
func (z *ZMachine) ExportSave() []byte {
	snap := quetzal.Snapshot{
		Release:  z.Memory.Header.ReleaseNumber,
		Serial:   z.Memory.Header.SerialCode,
		Checksum: z.Memory.Header.FileChecksum,
		PC:       z.pc,
		Memory:   append([]byte(nil), z.Memory.DynamicMemory()...),
		Frames:   framesToQuetzal(z.frames),
	}
	return quetzal.Encode(z.Memory.BootSnapshot()[:z.Memory.Header.StaticMemoryBase], snap)
}

// ImportSave replaces the machine's state from previously-exported
// Quetzal bytes. It refuses a save file from a different release/serial,
// the same guard real interpreters apply to avoid restoring state from
// an unrelated story file.
func (z *ZMachine) ImportSave(data []byte) error {
	boot := z.Memory.BootSnapshot()[:z.Memory.Header.StaticMemoryBase]
	snap, err := quetzal.Decode(data, boot)
	if err != nil {
		return fmt.Errorf("zmachine: invalid save file: %w", err)
	}
	if snap.Release != z.Memory.Header.ReleaseNumber || snap.Serial != z.Memory.Header.SerialCode {
		return fmt.Errorf("zmachine: save file is from a different story (release %d/%s, want %d/%s)",
			snap.Release, snap.Serial, z.Memory.Header.ReleaseNumber, z.Memory.Header.SerialCode)
	}

	copy(z.Memory.Bytes()[:len(snap.Memory)], snap.Memory)
	z.frames = framesFromQuetzal(snap.Frames)
	z.pc = snap.PC
	return nil
}

func framesToQuetzal(stack *frame.Stack) []quetzal.Frame {
	src := stack.Frames()
	out := make([]quetzal.Frame, len(src))
	for i, f := range src {
		out[i] = quetzal.Frame{
			ReturnPC:    f.ReturnPC,
			Locals:      append([]uint16(nil), f.Locals...),
			EvalStack:   f.StackValues(),
			StoreTarget: f.StoreTarget,
			ArgCount:    f.ArgCount,
		}
	}
	return out
}

func framesFromQuetzal(src []quetzal.Frame) *frame.Stack {
	s := &frame.Stack{}
	for _, qf := range src {
		f := frame.New(qf.ReturnPC, qf.StoreTarget, append([]uint16(nil), qf.Locals...), qf.ArgCount, frame.RoutineCall)
		for _, v := range qf.EvalStack {
			f.Push(v)
		}
		s.Push(f)
	}
	return s
}

// ResumeSave reports a host-driven save attempt's outcome back to the
// waiting `save` opcode.
func (z *ZMachine) ResumeSave(ok bool) {
	p := z.pendingSaveRestore
	if p == nil {
		return
	}
	z.pendingSaveRestore = nil
	z.reportSaveRestoreOutcome(p, ok)
}

// ResumeRestore applies host-supplied Quetzal bytes (nil/empty means the
// host cancelled or found nothing to restore) and reports the outcome
// back to the waiting `restore` opcode. A successful restore resumes
// execution entirely from the snapshot's own PC, so the original
// `restore` instruction's store/branch target is moot in that case.
func (z *ZMachine) ResumeRestore(data []byte) {
	p := z.pendingSaveRestore
	if p == nil {
		return
	}
	z.pendingSaveRestore = nil

	if len(data) == 0 {
		z.reportSaveRestoreOutcome(p, false)
		return
	}
	if err := z.ImportSave(data); err != nil {
		z.warnOnce("restore_failed", "warning: %s", err)
		z.reportSaveRestoreOutcome(p, false)
		return
	}
	// On success, the restored PC already points past whatever
	// instruction originally called `restore`/`save_undo` in the saved
	// game; nothing further to resolve here.
}

func (z *ZMachine) reportSaveRestoreOutcome(p *pendingSaveRestore, ok bool) {
	if p.hasStore {
		z.store(p.storeTarget, true, boolToWord(ok))
		return
	}
	if p.hasBranch {
		z.branch(p.branch, ok)
	}
}

func boolToWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
