package zmachine

// applySetColour implements `set_colour`'s two-operand form (the v6-only
// third window operand is out of scope).
func (z *ZMachine) applySetColour(fg, bg uint16) {
	z.Screen.SetColor(z.Screen.ResolveColor(fg, true), z.Screen.ResolveColor(bg, false))
}

// applySetTrueColour implements `set_true_colour`: each operand is
// either a packed 5-5-5 BGR colour, or the special values -1 ("keep
// current") / -2 ("use default").
func (z *ZMachine) applySetTrueColour(ops []uint16) {
	fg := trueColourFromWord(ops[0], z.Screen.foreground, z.Screen.defaultForeground)
	bg := trueColourFromWord(ops[1], z.Screen.background, z.Screen.defaultBackground)
	z.Screen.SetColor(fg, bg)
}

func trueColourFromWord(w uint16, current, def Color) Color {
	switch int16(w) {
	case -1:
		return current
	case -2:
		return def
	}
	red := int(w&0x1f) * 8
	green := int((w>>5)&0x1f) * 8
	blue := int((w>>10)&0x1f) * 8
	return Color{red, green, blue}
}

// setOutputStream implements `output_stream`: positive numbers enable a
// stream, negative disable it; stream 3 additionally pushes/pops a
// memory-redirection target sized by ops[1] when enabling.
func (z *ZMachine) setOutputStream(n int16, ops []uint16) {
	switch n {
	case 1:
		z.streamMask |= streamScreen
	case -1:
		z.streamMask &^= streamScreen
	case 2:
		z.streamMask |= streamTranscript
	case -2:
		z.streamMask &^= streamTranscript
	case 3:
		if len(ops) > 1 {
			z.memoryStream = append(z.memoryStream, memoryStreamTarget{base: uint32(ops[1])})
			z.streamMask |= streamMemory
		}
	case -3:
		if len(z.memoryStream) > 0 {
			t := z.memoryStream[len(z.memoryStream)-1]
			z.memoryStream = z.memoryStream[:len(z.memoryStream)-1]
			z.Memory.WriteWord(t.base, uint16(t.written))
			if len(z.memoryStream) == 0 {
				z.streamMask &^= streamMemory
			}
		}
	case 4:
		z.streamMask |= streamCommands
	case -4:
		z.streamMask &^= streamCommands
	}
}

// writeToMemoryStream appends text to the innermost active output_stream
// 3 redirection, as raw ZSCII bytes rather than packed Z-string form
// (`print_table` and other memory-stream consumers expect plain bytes).
func (z *ZMachine) writeToMemoryStream(s string) {
	n := len(z.memoryStream)
	if n == 0 {
		return
	}
	t := &z.memoryStream[n-1]
	for _, r := range s {
		z.Memory.WriteByte(t.base+2+t.written, byte(r))
		t.written++
	}
}
