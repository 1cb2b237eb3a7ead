package cpu

import "log"

// execute decodes and runs one opcode, returning its cycle cost. Operand
// widths follow the M/X flags at the moment of fetch; instructions that
// change the flags only affect later instructions.
func (cpu *CPU) execute(opcode uint8) uint64 {
	inst := &opcodeTable[opcode]
	if cpu.traceLogging {
		text, _ := Disassemble(cpu.memory, cpu.PBR, cpu.PC-1, cpu.M, cpu.XF)
		log.Printf("[CPU] $%02X:%04X %-14s A=%04X X=%04X Y=%04X P=%02X",
			cpu.PBR, cpu.PC-1, text, cpu.A, cpu.X, cpu.Y, cpu.P())
	}
	cpu.extra = 0

	switch opcode {
	// Load
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1, 0xB2, 0xA7, 0xB7, 0xA3, 0xB3, 0xAF, 0xBF:
		cpu.opLDA(cpu.valueM(inst.Mode))
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.X = cpu.valueX(inst.Mode)
		cpu.setNZX(cpu.X)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.Y = cpu.valueX(inst.Mode)
		cpu.setNZX(cpu.Y)

	// Store
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91, 0x92, 0x87, 0x97, 0x83, 0x93, 0x8F, 0x9F:
		cpu.writeM(cpu.resolve(inst.Mode), cpu.A)
	case 0x86, 0x96, 0x8E:
		cpu.writeX(cpu.resolve(inst.Mode), cpu.X)
	case 0x84, 0x94, 0x8C:
		cpu.writeX(cpu.resolve(inst.Mode), cpu.Y)
	case 0x64, 0x74, 0x9C, 0x9E:
		cpu.writeM(cpu.resolve(inst.Mode), 0)

	// Arithmetic
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71, 0x72, 0x67, 0x77, 0x63, 0x73, 0x6F, 0x7F:
		cpu.opADC(cpu.valueM(inst.Mode))
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, 0xF2, 0xE7, 0xF7, 0xE3, 0xF3, 0xEF, 0xFF:
		cpu.opSBC(cpu.valueM(inst.Mode))

	// Logical
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31, 0x32, 0x27, 0x37, 0x23, 0x33, 0x2F, 0x3F:
		cpu.setA(cpu.accM() & cpu.valueM(inst.Mode))
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11, 0x12, 0x07, 0x17, 0x03, 0x13, 0x0F, 0x1F:
		cpu.setA(cpu.accM() | cpu.valueM(inst.Mode))
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51, 0x52, 0x47, 0x57, 0x43, 0x53, 0x4F, 0x5F:
		cpu.setA(cpu.accM() ^ cpu.valueM(inst.Mode))

	// Compare
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1, 0xD2, 0xC7, 0xD7, 0xC3, 0xD3, 0xCF, 0xDF:
		cpu.compare(cpu.accM(), cpu.valueM(inst.Mode), cpu.M)
	case 0xE0, 0xE4, 0xEC:
		cpu.compare(cpu.X, cpu.valueX(inst.Mode), cpu.XF)
	case 0xC0, 0xC4, 0xCC:
		cpu.compare(cpu.Y, cpu.valueX(inst.Mode), cpu.XF)

	// Shift/rotate and memory INC/DEC
	case 0x0A, 0x06, 0x16, 0x0E, 0x1E:
		cpu.modifyM(inst.Mode, cpu.opASL)
	case 0x4A, 0x46, 0x56, 0x4E, 0x5E:
		cpu.modifyM(inst.Mode, cpu.opLSR)
	case 0x2A, 0x26, 0x36, 0x2E, 0x3E:
		cpu.modifyM(inst.Mode, cpu.opROL)
	case 0x6A, 0x66, 0x76, 0x6E, 0x7E:
		cpu.modifyM(inst.Mode, cpu.opROR)
	case 0x1A, 0xE6, 0xF6, 0xEE, 0xFE:
		cpu.modifyM(inst.Mode, cpu.opINC)
	case 0x3A, 0xC6, 0xD6, 0xCE, 0xDE:
		cpu.modifyM(inst.Mode, cpu.opDEC)

	// Bit test
	case 0x89:
		cpu.Z = cpu.accM()&cpu.immediateM() == 0
	case 0x24, 0x34, 0x2C, 0x3C:
		cpu.opBIT(cpu.valueM(inst.Mode))
	case 0x04, 0x0C:
		cpu.opTSB(cpu.resolve(inst.Mode))
	case 0x14, 0x1C:
		cpu.opTRB(cpu.resolve(inst.Mode))

	// Register INC/DEC
	case 0xE8:
		cpu.X = cpu.maskX(cpu.X + 1)
		cpu.setNZX(cpu.X)
	case 0xC8:
		cpu.Y = cpu.maskX(cpu.Y + 1)
		cpu.setNZX(cpu.Y)
	case 0xCA:
		cpu.X = cpu.maskX(cpu.X - 1)
		cpu.setNZX(cpu.X)
	case 0x88:
		cpu.Y = cpu.maskX(cpu.Y - 1)
		cpu.setNZX(cpu.Y)

	// Transfers
	case 0xAA:
		cpu.X = cpu.maskX(cpu.A)
		cpu.setNZX(cpu.X)
	case 0xA8:
		cpu.Y = cpu.maskX(cpu.A)
		cpu.setNZX(cpu.Y)
	case 0x8A:
		cpu.setA(cpu.X)
	case 0x98:
		cpu.setA(cpu.Y)
	case 0x9A: // TXS
		if cpu.E {
			cpu.SP = stackPageEmu | cpu.X&0xFF
		} else {
			cpu.SP = cpu.X
		}
	case 0xBA: // TSX
		cpu.X = cpu.maskX(cpu.SP)
		cpu.setNZX(cpu.X)
	case 0x5B: // TCD
		cpu.D = cpu.A
		cpu.setNZ16(cpu.D)
	case 0x7B: // TDC
		cpu.A = cpu.D
		cpu.setNZ16(cpu.A)
	case 0x1B: // TCS
		if cpu.E {
			cpu.SP = stackPageEmu | cpu.A&0xFF
		} else {
			cpu.SP = cpu.A
		}
	case 0x3B: // TSC
		cpu.A = cpu.SP
		cpu.setNZ16(cpu.A)
	case 0x9B: // TXY
		cpu.Y = cpu.maskX(cpu.X)
		cpu.setNZX(cpu.Y)
	case 0xBB: // TYX
		cpu.X = cpu.maskX(cpu.Y)
		cpu.setNZX(cpu.X)

	// Branches
	case 0x10:
		cpu.branch(!cpu.N)
	case 0x30:
		cpu.branch(cpu.N)
	case 0x50:
		cpu.branch(!cpu.V)
	case 0x70:
		cpu.branch(cpu.V)
	case 0x90:
		cpu.branch(!cpu.C)
	case 0xB0:
		cpu.branch(cpu.C)
	case 0xD0:
		cpu.branch(!cpu.Z)
	case 0xF0:
		cpu.branch(cpu.Z)
	case 0x80:
		cpu.branch(true)
	case 0x82: // BRL
		offset := cpu.fetch16()
		cpu.PC += offset

	// Jumps and calls
	case 0x4C:
		cpu.PC = cpu.fetch16()
	case 0x6C: // JMP (abs)
		cpu.PC = cpu.readPointer16(cpu.fetch16())
	case 0x7C: // JMP (abs,X): pointer lives in the program bank
		ptr := cpu.fetch16() + cpu.X
		cpu.PC = cpu.readProgramPointer(ptr)
	case 0x5C: // JML long
		target := cpu.fetch24()
		cpu.PBR = uint8(target >> 16)
		cpu.PC = uint16(target)
	case 0xDC: // JML [abs]
		ptr := cpu.readPointer24(cpu.fetch16())
		cpu.PBR = uint8(ptr >> 16)
		cpu.PC = uint16(ptr)
	case 0x20: // JSR abs
		target := cpu.fetch16()
		cpu.push16(cpu.PC - 1)
		cpu.PC = target
	case 0xFC: // JSR (abs,X)
		ptr := cpu.fetch16() + cpu.X
		cpu.push16(cpu.PC - 1)
		cpu.PC = cpu.readProgramPointer(ptr)
	case 0x22: // JSL long
		target := cpu.fetch24()
		cpu.push8(cpu.PBR)
		cpu.push16(cpu.PC - 1)
		cpu.PBR = uint8(target >> 16)
		cpu.PC = uint16(target)
	case 0x60: // RTS
		cpu.PC = cpu.pull16() + 1
	case 0x6B: // RTL
		cpu.PC = cpu.pull16() + 1
		cpu.PBR = cpu.pull8()

	// Stack
	case 0x48:
		cpu.pushM(cpu.A)
	case 0xDA:
		cpu.pushX(cpu.X)
	case 0x5A:
		cpu.pushX(cpu.Y)
	case 0x08:
		cpu.push8(cpu.P())
	case 0x8B:
		cpu.push8(cpu.DBR)
	case 0x4B:
		cpu.push8(cpu.PBR)
	case 0x0B:
		cpu.push16(cpu.D)
	case 0xF4: // PEA
		cpu.push16(cpu.fetch16())
	case 0xD4: // PEI: pushes the 16-bit word at the direct-page operand
		addr := cpu.dpBase(cpu.fetch8(), 0)
		cpu.push16(cpu.readPointer16(addr))
	case 0x62: // PER
		offset := cpu.fetch16()
		cpu.push16(cpu.PC + offset)
	case 0x68:
		cpu.setA(cpu.pullM())
	case 0xFA:
		cpu.X = cpu.pullX()
		cpu.setNZX(cpu.X)
	case 0x7A:
		cpu.Y = cpu.pullX()
		cpu.setNZX(cpu.Y)
	case 0x28:
		cpu.SetP(cpu.pull8())
	case 0xAB:
		cpu.DBR = cpu.pull8()
		cpu.setNZ8(cpu.DBR)
	case 0x2B:
		cpu.D = cpu.pull16()
		cpu.setNZ16(cpu.D)

	// Mode and flag control
	case 0xC2: // REP
		cpu.SetP(cpu.P() &^ cpu.fetch8())
	case 0xE2: // SEP
		cpu.SetP(cpu.P() | cpu.fetch8())
	case 0xFB: // XCE
		cpu.C, cpu.E = cpu.E, cpu.C
		cpu.applyWidthInvariants()
	case 0x18:
		cpu.C = false
	case 0x38:
		cpu.C = true
	case 0x58:
		cpu.I = false
	case 0x78:
		cpu.I = true
	case 0xD8:
		cpu.DF = false
	case 0xF8:
		cpu.DF = true
	case 0xB8:
		cpu.V = false

	// Block moves
	case 0x54: // MVN: ascending copy
		cpu.blockMove(1)
	case 0x44: // MVP: descending copy
		cpu.blockMove(-1)

	// Interrupt and control
	case 0x00:
		cpu.softwareInterrupt(vectorBRKNative, vectorIRQBRKEmu)
	case 0x02:
		cpu.softwareInterrupt(vectorCOPNative, vectorCOPEmu)
	case 0x40: // RTI
		cpu.SetP(cpu.pull8())
		cpu.PC = cpu.pull16()
		if !cpu.E {
			cpu.PBR = cpu.pull8()
		}
	case 0xCB: // WAI
		cpu.waiting = true
	case 0xDB: // STP
		cpu.stopped = true
	case 0xEA: // NOP
	case 0x42: // WDM: reserved, consumes its operand byte
		cpu.PC++
	case 0xEB: // XBA
		cpu.A = cpu.A>>8 | cpu.A<<8
		cpu.setNZ8(uint8(cpu.A))

	default:
		cpu.reportUnknownOpcode(opcode, cpu.PC-1)
	}

	return uint64(inst.Cycles) + cpu.extra
}

// accM returns the accumulator at the current width
func (cpu *CPU) accM() uint16 {
	if cpu.M {
		return cpu.A & 0xFF
	}
	return cpu.A
}

// setA stores a result into the accumulator at the current width, preserving
// the hidden high byte in 8-bit mode, and sets N/Z.
func (cpu *CPU) setA(value uint16) {
	if cpu.M {
		cpu.A = cpu.A&0xFF00 | value&0xFF
	} else {
		cpu.A = value
	}
	cpu.setNZM(value)
}

// maskX masks a value to the current index width
func (cpu *CPU) maskX(value uint16) uint16 {
	if cpu.XF {
		return value & 0xFF
	}
	return value
}

// valueM fetches an accumulator-width operand value for any data mode
func (cpu *CPU) valueM(mode AddressingMode) uint16 {
	if mode == Immediate {
		return cpu.immediateM()
	}
	return cpu.readM(cpu.resolve(mode))
}

// valueX fetches an index-width operand value for any data mode
func (cpu *CPU) valueX(mode AddressingMode) uint16 {
	if mode == Immediate {
		return cpu.immediateX()
	}
	return cpu.readX(cpu.resolve(mode))
}

// modifyM applies a read-modify-write operation at accumulator width
func (cpu *CPU) modifyM(mode AddressingMode, f func(uint16) uint16) {
	if mode == Accumulator {
		result := f(cpu.accM())
		if cpu.M {
			cpu.A = cpu.A&0xFF00 | result&0xFF
		} else {
			cpu.A = result
		}
		return
	}
	op := cpu.resolve(mode)
	cpu.writeM(op, f(cpu.readM(op)))
}

// opLDA loads the accumulator
func (cpu *CPU) opLDA(value uint16) {
	cpu.setA(value)
}

// opADC adds with carry. Binary arithmetic only; the decimal flag is
// accepted but does not alter the result.
func (cpu *CPU) opADC(value uint16) {
	a := cpu.accM()
	carry := uint32(0)
	if cpu.C {
		carry = 1
	}

	if cpu.M {
		sum := uint32(a) + uint32(value) + carry
		result := uint16(sum & 0xFF)
		cpu.C = sum > 0xFF
		cpu.V = (^(a^value)&(a^result))&0x80 != 0
		cpu.setA(result)
	} else {
		sum := uint32(a) + uint32(value) + carry
		result := uint16(sum)
		cpu.C = sum > 0xFFFF
		cpu.V = (^(a^value)&(a^result))&0x8000 != 0
		cpu.setA(result)
	}
}

// opSBC subtracts with borrow via one's-complement addition
func (cpu *CPU) opSBC(value uint16) {
	if cpu.M {
		cpu.opADC(^value & 0xFF)
	} else {
		cpu.opADC(^value)
	}
}

// compare performs CMP/CPX/CPY at the given width
func (cpu *CPU) compare(reg, value uint16, eightBit bool) {
	if eightBit {
		reg &= 0xFF
		value &= 0xFF
		result := reg - value
		cpu.C = reg >= value
		cpu.setNZ8(uint8(result))
	} else {
		result := reg - value
		cpu.C = reg >= value
		cpu.setNZ16(result)
	}
}

// opASL shifts left, carrying out of the top bit
func (cpu *CPU) opASL(value uint16) uint16 {
	if cpu.M {
		cpu.C = value&0x80 != 0
		result := value << 1 & 0xFF
		cpu.setNZ8(uint8(result))
		return result
	}
	cpu.C = value&0x8000 != 0
	result := value << 1
	cpu.setNZ16(result)
	return result
}

// opLSR shifts right, carrying out of bit 0
func (cpu *CPU) opLSR(value uint16) uint16 {
	if cpu.M {
		value &= 0xFF
	}
	cpu.C = value&1 != 0
	result := value >> 1
	if cpu.M {
		cpu.setNZ8(uint8(result))
	} else {
		cpu.setNZ16(result)
	}
	return result
}

// opROL rotates left through carry
func (cpu *CPU) opROL(value uint16) uint16 {
	carryIn := uint16(0)
	if cpu.C {
		carryIn = 1
	}
	if cpu.M {
		cpu.C = value&0x80 != 0
		result := (value<<1 | carryIn) & 0xFF
		cpu.setNZ8(uint8(result))
		return result
	}
	cpu.C = value&0x8000 != 0
	result := value<<1 | carryIn
	cpu.setNZ16(result)
	return result
}

// opROR rotates right through carry
func (cpu *CPU) opROR(value uint16) uint16 {
	carryIn := uint16(0)
	if cpu.C {
		if cpu.M {
			carryIn = 0x80
		} else {
			carryIn = 0x8000
		}
	}
	if cpu.M {
		value &= 0xFF
	}
	cpu.C = value&1 != 0
	result := value>>1 | carryIn
	if cpu.M {
		cpu.setNZ8(uint8(result))
	} else {
		cpu.setNZ16(result)
	}
	return result
}

// opINC increments at accumulator width
func (cpu *CPU) opINC(value uint16) uint16 {
	result := value + 1
	if cpu.M {
		result &= 0xFF
		cpu.setNZ8(uint8(result))
	} else {
		cpu.setNZ16(result)
	}
	return result
}

// opDEC decrements at accumulator width
func (cpu *CPU) opDEC(value uint16) uint16 {
	result := value - 1
	if cpu.M {
		result &= 0xFF
		cpu.setNZ8(uint8(result))
	} else {
		cpu.setNZ16(result)
	}
	return result
}

// opBIT tests accumulator bits against memory: N and V copy the operand's
// top bits, Z reflects the AND.
func (cpu *CPU) opBIT(value uint16) {
	if cpu.M {
		cpu.N = value&0x80 != 0
		cpu.V = value&0x40 != 0
	} else {
		cpu.N = value&0x8000 != 0
		cpu.V = value&0x4000 != 0
	}
	cpu.Z = cpu.accM()&value == 0
}

// opTSB sets accumulator bits in memory; Z tests the original AND
func (cpu *CPU) opTSB(op operand) {
	value := cpu.readM(op)
	cpu.Z = cpu.accM()&value == 0
	cpu.writeM(op, value|cpu.accM())
}

// opTRB clears accumulator bits in memory; Z tests the original AND
func (cpu *CPU) opTRB(op operand) {
	value := cpu.readM(op)
	cpu.Z = cpu.accM()&value == 0
	cpu.writeM(op, value&^cpu.accM())
}

// branch takes an 8-bit signed displacement when the condition holds
func (cpu *CPU) branch(condition bool) {
	offset := int8(cpu.fetch8())
	if condition {
		cpu.PC = uint16(int32(cpu.PC) + int32(offset))
		cpu.extra++
	}
}

// readProgramPointer reads a 16-bit pointer from the program bank, used by
// the (abs,X) jump and call forms.
func (cpu *CPU) readProgramPointer(address uint16) uint16 {
	low := cpu.memory.Read8(uint32(cpu.PBR)<<16 | uint32(address))
	high := cpu.memory.Read8(uint32(cpu.PBR)<<16 | uint32(address+1))
	return uint16(low) | uint16(high)<<8
}

// pushM pushes the accumulator at its width
func (cpu *CPU) pushM(value uint16) {
	if cpu.M {
		cpu.push8(uint8(value))
	} else {
		cpu.push16(value)
	}
}

// pullM pulls an accumulator-width value
func (cpu *CPU) pullM() uint16 {
	if cpu.M {
		return uint16(cpu.pull8())
	}
	return cpu.pull16()
}

// pushX pushes an index register at its width
func (cpu *CPU) pushX(value uint16) {
	if cpu.XF {
		cpu.push8(uint8(value))
	} else {
		cpu.push16(value)
	}
}

// pullX pulls an index-width value
func (cpu *CPU) pullX() uint16 {
	if cpu.XF {
		return uint16(cpu.pull8())
	}
	return cpu.pull16()
}

// blockMove implements MVN/MVP. The operand bytes name the destination and
// source banks; A counts bytes minus one, X and Y walk source and
// destination, and DBR ends up holding the destination bank.
func (cpu *CPU) blockMove(direction int32) {
	destBank := cpu.fetch8()
	srcBank := cpu.fetch8()
	cpu.DBR = destBank

	for {
		value := cpu.memory.Read8(uint32(srcBank)<<16 | uint32(cpu.X))
		cpu.memory.Write8(uint32(destBank)<<16|uint32(cpu.Y), value)

		cpu.X = cpu.maskX(uint16(int32(cpu.X) + direction))
		cpu.Y = cpu.maskX(uint16(int32(cpu.Y) + direction))
		cpu.A--
		cpu.extra += 7
		if cpu.A == 0xFFFF {
			break
		}
	}
}
