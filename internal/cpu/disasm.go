package cpu

import "fmt"

// Disassemble renders the instruction at pbr:pc without executing it and
// returns the text plus the instruction length in bytes. Operand widths
// follow the m/x flags supplied by the caller.
func Disassemble(mem MemoryInterface, pbr uint8, pc uint16, m, x bool) (string, int) {
	peek := func(offset uint16) uint8 {
		return mem.Read8(uint32(pbr)<<16 | uint32(pc+offset))
	}
	peek16 := func(offset uint16) uint16 {
		return uint16(peek(offset)) | uint16(peek(offset+1))<<8
	}

	opcode := peek(0)
	inst := &opcodeTable[opcode]

	switch inst.Mode {
	case Implied:
		return inst.Name, 1

	case Accumulator:
		return fmt.Sprintf("%s A", inst.Name), 1

	case Immediate:
		width := 1
		switch {
		case opcode == 0xF4: // PEA always pushes a word
			width = 2
		case isIndexOp(opcode):
			if !x {
				width = 2
			}
		case isAccumOp(opcode):
			if !m {
				width = 2
			}
		}
		if width == 2 {
			return fmt.Sprintf("%s #$%04X", inst.Name, peek16(1)), 3
		}
		return fmt.Sprintf("%s #$%02X", inst.Name, peek(1)), 2

	case DirectPage:
		return fmt.Sprintf("%s $%02X", inst.Name, peek(1)), 2
	case DirectPageX:
		return fmt.Sprintf("%s $%02X,X", inst.Name, peek(1)), 2
	case DirectPageY:
		return fmt.Sprintf("%s $%02X,Y", inst.Name, peek(1)), 2
	case DPIndirect:
		return fmt.Sprintf("%s ($%02X)", inst.Name, peek(1)), 2
	case DPIndirectLong:
		return fmt.Sprintf("%s [$%02X]", inst.Name, peek(1)), 2
	case DPIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", inst.Name, peek(1)), 2
	case DPIndirectY:
		return fmt.Sprintf("%s ($%02X),Y", inst.Name, peek(1)), 2
	case DPIndirectLongY:
		return fmt.Sprintf("%s [$%02X],Y", inst.Name, peek(1)), 2

	case Absolute:
		return fmt.Sprintf("%s $%04X", inst.Name, peek16(1)), 3
	case AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", inst.Name, peek16(1)), 3
	case AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", inst.Name, peek16(1)), 3
	case AbsoluteIndirect:
		return fmt.Sprintf("%s ($%04X)", inst.Name, peek16(1)), 3
	case AbsoluteIndirectLong:
		return fmt.Sprintf("%s [$%04X]", inst.Name, peek16(1)), 3
	case AbsoluteIndexedIndirect:
		return fmt.Sprintf("%s ($%04X,X)", inst.Name, peek16(1)), 3

	case AbsoluteLong:
		long := uint32(peek16(1)) | uint32(peek(3))<<16
		return fmt.Sprintf("%s $%06X", inst.Name, long), 4
	case AbsoluteLongX:
		long := uint32(peek16(1)) | uint32(peek(3))<<16
		return fmt.Sprintf("%s $%06X,X", inst.Name, long), 4

	case StackRelative:
		return fmt.Sprintf("%s $%02X,S", inst.Name, peek(1)), 2
	case StackRelativeY:
		return fmt.Sprintf("%s ($%02X,S),Y", inst.Name, peek(1)), 2

	case Relative:
		target := pc + 2 + uint16(int8(peek(1)))
		return fmt.Sprintf("%s $%04X", inst.Name, target), 2
	case RelativeLong:
		target := pc + 3 + peek16(1)
		return fmt.Sprintf("%s $%04X", inst.Name, target), 3

	case BlockMove:
		return fmt.Sprintf("%s $%02X,$%02X", inst.Name, peek(1), peek(2)), 3

	case StackInterrupt:
		return fmt.Sprintf("%s #$%02X", inst.Name, peek(1)), 2

	default:
		return inst.Name, 1
	}
}

// isIndexOp reports whether an immediate opcode sizes by the X flag
func isIndexOp(opcode uint8) bool {
	switch opcode {
	case 0xA2, 0xA0, 0xE0, 0xC0:
		return true
	}
	return false
}

// isAccumOp reports whether an immediate opcode sizes by the M flag
func isAccumOp(opcode uint8) bool {
	switch opcode {
	case 0xA9, 0x69, 0xE9, 0x29, 0x09, 0x49, 0xC9, 0x89:
		return true
	}
	return false
}
