package zmachine

import "strings"

// doScanTable implements `scan_table`: linear-search a table of ops[2]
// entries starting at ops[1], each `form`-sized (low 7 bits of ops[3],
// defaulting to word-sized when only 3 operands are given), for a field
// equal to ops[0]. Stores the matching entry's address (0 if none) and
// branches on whether it was found.
func (z *ZMachine) doScanTable(ops []uint16, ins instruction) (StepEvent, error) {
	test := ops[0]
	addr := uint32(ops[1])
	length := ops[2]
	form := uint16(0b1000_0010)
	if len(ops) > 3 {
		form = ops[3]
	}

	fieldSize := form & 0b0111_1111
	checkWord := form&0b1000_0000 != 0
	var found uint32
	if fieldSize != 0 {
		ptr := addr
		for i := uint16(0); i < length; i++ {
			var v uint16
			if checkWord {
				v = z.Memory.ReadWord(ptr)
			} else {
				v = uint16(z.Memory.ReadByte(ptr))
			}
			if v == test {
				found = ptr
				break
			}
			ptr += uint32(fieldSize)
		}
	}

	z.store(ins.storeTarget, ins.hasStore, uint16(found))
	return nil, z.branch(ins.branch, found != 0)
}

// doCopyTable implements `copy_table`: ops[1] == 0 zeroes the first
// table (per the standard's documented special case); a negative size
// permits overlap-corrupting forward copy, a positive size copies via a
// temporary buffer so overlapping source/dest regions read pre-copy
// values throughout.
func (z *ZMachine) doCopyTable(ops []uint16) {
	first := uint32(ops[0])
	second := ops[1]
	size := int16(ops[2])

	sizeAbs := uint32(size)
	if size < 0 {
		sizeAbs = uint32(-size)
	}

	switch {
	case second == 0:
		for i := uint32(0); i < sizeAbs; i++ {
			z.Memory.WriteByte(first+i, 0)
		}
	case size >= 0:
		tmp := make([]uint8, sizeAbs)
		for i := uint32(0); i < sizeAbs; i++ {
			tmp[i] = z.Memory.ReadByte(first + i)
		}
		for i := uint32(0); i < sizeAbs; i++ {
			z.Memory.WriteByte(uint32(second)+i, tmp[i])
		}
	default:
		for i := uint32(0); i < sizeAbs; i++ {
			z.Memory.WriteByte(uint32(second)+i, z.Memory.ReadByte(first+i))
		}
	}
}

// doPrintTable implements `print_table`: print a width x height grid of
// characters starting at ops[0], with an optional per-row skip (extra
// bytes between rows beyond width) in ops[3].
func (z *ZMachine) doPrintTable(ops []uint16) {
	addr := uint32(ops[0])
	width := ops[1]
	height := uint16(1)
	if len(ops) > 2 {
		height = ops[2]
	}
	var skip uint16
	if len(ops) > 3 {
		skip = ops[3]
	}

	s := strings.Builder{}
	for row := uint16(0); row < height; row++ {
		if row != 0 {
			s.WriteByte('\n')
		}
		rowStart := addr + uint32(row)*(uint32(width)+uint32(skip))
		for col := uint16(0); col < width; col++ {
			s.WriteByte(z.Memory.ReadByte(rowStart + uint32(col)))
		}
	}

	z.printText(s.String())
}
