package apu

import "log"

// SPC700 represents the 8-bit sound processor. It executes out of ARAM
// through the owning APU, which also services the $F0-$FF I/O window.
type SPC700 struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	// PSW flags. P relocates the direct page to $0100; H is the
	// half-carry used by DAA/DAS.
	N bool
	V bool
	P bool
	B bool
	H bool
	I bool
	Z bool
	C bool

	bus *APU

	halted      bool
	unknownSeen [256]bool
}

// NewSPC700 creates the core bound to its APU
func NewSPC700(bus *APU) *SPC700 {
	return &SPC700{bus: bus}
}

// Reset places the core at the IPL entry point
func (s *SPC700) Reset() {
	s.A = 0
	s.X = 0
	s.Y = 0
	s.SP = 0xEF
	s.PC = 0xFFC0
	s.N = false
	s.V = false
	s.P = false
	s.B = false
	s.H = false
	s.I = false
	s.Z = false
	s.C = false
	s.halted = false
}

// PSW packs the status flags
func (s *SPC700) PSW() uint8 {
	var psw uint8
	if s.C {
		psw |= 0x01
	}
	if s.Z {
		psw |= 0x02
	}
	if s.I {
		psw |= 0x04
	}
	if s.H {
		psw |= 0x08
	}
	if s.B {
		psw |= 0x10
	}
	if s.P {
		psw |= 0x20
	}
	if s.V {
		psw |= 0x40
	}
	if s.N {
		psw |= 0x80
	}
	return psw
}

// SetPSW unpacks a status byte
func (s *SPC700) SetPSW(psw uint8) {
	s.C = psw&0x01 != 0
	s.Z = psw&0x02 != 0
	s.I = psw&0x04 != 0
	s.H = psw&0x08 != 0
	s.B = psw&0x10 != 0
	s.P = psw&0x20 != 0
	s.V = psw&0x40 != 0
	s.N = psw&0x80 != 0
}

// YA returns the 16-bit register pair
func (s *SPC700) YA() uint16 {
	return uint16(s.Y)<<8 | uint16(s.A)
}

// SetYA stores into the register pair
func (s *SPC700) SetYA(value uint16) {
	s.Y = uint8(value >> 8)
	s.A = uint8(value)
}

func (s *SPC700) read(addr uint16) uint8 {
	return s.bus.Read(addr)
}

func (s *SPC700) write(addr uint16, value uint8) {
	s.bus.Write(addr, value)
}

func (s *SPC700) read16(addr uint16) uint16 {
	return uint16(s.read(addr)) | uint16(s.read(addr+1))<<8
}

func (s *SPC700) fetch8() uint8 {
	value := s.read(s.PC)
	s.PC++
	return value
}

func (s *SPC700) fetch16() uint16 {
	low := s.fetch8()
	high := s.fetch8()
	return uint16(low) | uint16(high)<<8
}

// pageBase returns the direct-page base selected by P
func (s *SPC700) pageBase() uint16 {
	if s.P {
		return 0x0100
	}
	return 0x0000
}

// dp forms a direct-page address; indexing wraps within the page
func (s *SPC700) dp(offset uint8) uint16 {
	return s.pageBase() | uint16(offset)
}

func (s *SPC700) push8(value uint8) {
	s.write(0x0100|uint16(s.SP), value)
	s.SP--
}

func (s *SPC700) push16(value uint16) {
	s.push8(uint8(value >> 8))
	s.push8(uint8(value))
}

func (s *SPC700) pop8() uint8 {
	s.SP++
	return s.read(0x0100 | uint16(s.SP))
}

func (s *SPC700) pop16() uint16 {
	low := s.pop8()
	high := s.pop8()
	return uint16(low) | uint16(high)<<8
}

func (s *SPC700) setNZ(value uint8) uint8 {
	s.N = value&0x80 != 0
	s.Z = value == 0
	return value
}

func (s *SPC700) setNZ16(value uint16) uint16 {
	s.N = value&0x8000 != 0
	s.Z = value == 0
	return value
}

// adc adds with carry and full N V H Z C semantics
func (s *SPC700) adc(a, b uint8) uint8 {
	carry := uint16(0)
	if s.C {
		carry = 1
	}
	sum := uint16(a) + uint16(b) + carry
	result := uint8(sum)

	s.C = sum > 0xFF
	s.H = (a&0x0F)+(b&0x0F)+uint8(carry) > 0x0F
	s.V = (^(a^b)&(a^result))&0x80 != 0
	return s.setNZ(result)
}

// sbc subtracts with borrow via complement addition
func (s *SPC700) sbc(a, b uint8) uint8 {
	return s.adc(a, ^b)
}

// cmp compares and sets N Z C
func (s *SPC700) cmp(a, b uint8) {
	s.C = a >= b
	s.setNZ(a - b)
}

func (s *SPC700) asl(value uint8) uint8 {
	s.C = value&0x80 != 0
	return s.setNZ(value << 1)
}

func (s *SPC700) lsr(value uint8) uint8 {
	s.C = value&0x01 != 0
	return s.setNZ(value >> 1)
}

func (s *SPC700) rol(value uint8) uint8 {
	carry := uint8(0)
	if s.C {
		carry = 1
	}
	s.C = value&0x80 != 0
	return s.setNZ(value<<1 | carry)
}

func (s *SPC700) ror(value uint8) uint8 {
	carry := uint8(0)
	if s.C {
		carry = 0x80
	}
	s.C = value&0x01 != 0
	return s.setNZ(value>>1 | carry)
}

// modifyDP applies a read-modify-write op at a direct-page address
func (s *SPC700) modifyDP(addr uint16, f func(uint8) uint8) {
	s.write(addr, f(s.read(addr)))
}

// branch takes a signed 8-bit displacement when the condition holds and
// reports whether it was taken for cycle accounting.
func (s *SPC700) branch(condition bool) bool {
	offset := int8(s.fetch8())
	if condition {
		s.PC = uint16(int32(s.PC) + int32(offset))
	}
	return condition
}

// absBit decodes a mem.bit operand: 13-bit address, 3-bit bit index
func (s *SPC700) absBit() (uint16, uint8) {
	operand := s.fetch16()
	return operand & 0x1FFF, uint8(operand >> 13)
}

// Step executes one instruction and returns its cycle cost
func (s *SPC700) Step() int {
	if s.halted {
		return 2
	}

	opcode := s.fetch8()
	cycles := int(spcCycles[opcode])

	switch opcode {
	case 0x00: // NOP

	// TCALL n: vectors descend from $FFDE
	case 0x01, 0x11, 0x21, 0x31, 0x41, 0x51, 0x61, 0x71,
		0x81, 0x91, 0xA1, 0xB1, 0xC1, 0xD1, 0xE1, 0xF1:
		n := uint16(opcode >> 4)
		s.push16(s.PC)
		s.PC = s.read16(0xFFDE - 2*n)

	// SET1/CLR1 dp.bit
	case 0x02, 0x22, 0x42, 0x62, 0x82, 0xA2, 0xC2, 0xE2:
		bit := opcode >> 5
		addr := s.dp(s.fetch8())
		s.write(addr, s.read(addr)|1<<bit)
	case 0x12, 0x32, 0x52, 0x72, 0x92, 0xB2, 0xD2, 0xF2:
		bit := opcode >> 5
		addr := s.dp(s.fetch8())
		s.write(addr, s.read(addr)&^(1<<bit))

	// BBS/BBC dp.bit,rel
	case 0x03, 0x23, 0x43, 0x63, 0x83, 0xA3, 0xC3, 0xE3:
		bit := opcode >> 5
		value := s.read(s.dp(s.fetch8()))
		if s.branch(value&(1<<bit) != 0) {
			cycles += 2
		}
	case 0x13, 0x33, 0x53, 0x73, 0x93, 0xB3, 0xD3, 0xF3:
		bit := opcode >> 5
		value := s.read(s.dp(s.fetch8()))
		if s.branch(value&(1<<bit) == 0) {
			cycles += 2
		}

	// OR
	case 0x08:
		s.A = s.setNZ(s.A | s.fetch8())
	case 0x04:
		s.A = s.setNZ(s.A | s.read(s.dp(s.fetch8())))
	case 0x14:
		s.A = s.setNZ(s.A | s.read(s.dp(s.fetch8()+s.X)))
	case 0x05:
		s.A = s.setNZ(s.A | s.read(s.fetch16()))
	case 0x15:
		s.A = s.setNZ(s.A | s.read(s.fetch16()+uint16(s.X)))
	case 0x16:
		s.A = s.setNZ(s.A | s.read(s.fetch16()+uint16(s.Y)))
	case 0x06:
		s.A = s.setNZ(s.A | s.read(s.dp(s.X)))
	case 0x07:
		s.A = s.setNZ(s.A | s.read(s.indirectX()))
	case 0x17:
		s.A = s.setNZ(s.A | s.read(s.indirectY()))
	case 0x09:
		src := s.read(s.dp(s.fetch8()))
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)|src))
	case 0x18:
		imm := s.fetch8()
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)|imm))
	case 0x19:
		s.write(s.dp(s.X), s.setNZ(s.read(s.dp(s.X))|s.read(s.dp(s.Y))))

	// AND
	case 0x28:
		s.A = s.setNZ(s.A & s.fetch8())
	case 0x24:
		s.A = s.setNZ(s.A & s.read(s.dp(s.fetch8())))
	case 0x34:
		s.A = s.setNZ(s.A & s.read(s.dp(s.fetch8()+s.X)))
	case 0x25:
		s.A = s.setNZ(s.A & s.read(s.fetch16()))
	case 0x35:
		s.A = s.setNZ(s.A & s.read(s.fetch16()+uint16(s.X)))
	case 0x36:
		s.A = s.setNZ(s.A & s.read(s.fetch16()+uint16(s.Y)))
	case 0x26:
		s.A = s.setNZ(s.A & s.read(s.dp(s.X)))
	case 0x27:
		s.A = s.setNZ(s.A & s.read(s.indirectX()))
	case 0x37:
		s.A = s.setNZ(s.A & s.read(s.indirectY()))
	case 0x29:
		src := s.read(s.dp(s.fetch8()))
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)&src))
	case 0x38:
		imm := s.fetch8()
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)&imm))
	case 0x39:
		s.write(s.dp(s.X), s.setNZ(s.read(s.dp(s.X))&s.read(s.dp(s.Y))))

	// EOR
	case 0x48:
		s.A = s.setNZ(s.A ^ s.fetch8())
	case 0x44:
		s.A = s.setNZ(s.A ^ s.read(s.dp(s.fetch8())))
	case 0x54:
		s.A = s.setNZ(s.A ^ s.read(s.dp(s.fetch8()+s.X)))
	case 0x45:
		s.A = s.setNZ(s.A ^ s.read(s.fetch16()))
	case 0x55:
		s.A = s.setNZ(s.A ^ s.read(s.fetch16()+uint16(s.X)))
	case 0x56:
		s.A = s.setNZ(s.A ^ s.read(s.fetch16()+uint16(s.Y)))
	case 0x46:
		s.A = s.setNZ(s.A ^ s.read(s.dp(s.X)))
	case 0x47:
		s.A = s.setNZ(s.A ^ s.read(s.indirectX()))
	case 0x57:
		s.A = s.setNZ(s.A ^ s.read(s.indirectY()))
	case 0x49:
		src := s.read(s.dp(s.fetch8()))
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)^src))
	case 0x58:
		imm := s.fetch8()
		addr := s.dp(s.fetch8())
		s.write(addr, s.setNZ(s.read(addr)^imm))
	case 0x59:
		s.write(s.dp(s.X), s.setNZ(s.read(s.dp(s.X))^s.read(s.dp(s.Y))))

	// CMP
	case 0x68:
		s.cmp(s.A, s.fetch8())
	case 0x64:
		s.cmp(s.A, s.read(s.dp(s.fetch8())))
	case 0x74:
		s.cmp(s.A, s.read(s.dp(s.fetch8()+s.X)))
	case 0x65:
		s.cmp(s.A, s.read(s.fetch16()))
	case 0x75:
		s.cmp(s.A, s.read(s.fetch16()+uint16(s.X)))
	case 0x76:
		s.cmp(s.A, s.read(s.fetch16()+uint16(s.Y)))
	case 0x66:
		s.cmp(s.A, s.read(s.dp(s.X)))
	case 0x67:
		s.cmp(s.A, s.read(s.indirectX()))
	case 0x77:
		s.cmp(s.A, s.read(s.indirectY()))
	case 0x69:
		src := s.read(s.dp(s.fetch8()))
		s.cmp(s.read(s.dp(s.fetch8())), src)
	case 0x78:
		imm := s.fetch8()
		s.cmp(s.read(s.dp(s.fetch8())), imm)
	case 0x79:
		s.cmp(s.read(s.dp(s.X)), s.read(s.dp(s.Y)))
	case 0xC8:
		s.cmp(s.X, s.fetch8())
	case 0x3E:
		s.cmp(s.X, s.read(s.dp(s.fetch8())))
	case 0x1E:
		s.cmp(s.X, s.read(s.fetch16()))
	case 0xAD:
		s.cmp(s.Y, s.fetch8())
	case 0x7E:
		s.cmp(s.Y, s.read(s.dp(s.fetch8())))
	case 0x5E:
		s.cmp(s.Y, s.read(s.fetch16()))

	// ADC
	case 0x88:
		s.A = s.adc(s.A, s.fetch8())
	case 0x84:
		s.A = s.adc(s.A, s.read(s.dp(s.fetch8())))
	case 0x94:
		s.A = s.adc(s.A, s.read(s.dp(s.fetch8()+s.X)))
	case 0x85:
		s.A = s.adc(s.A, s.read(s.fetch16()))
	case 0x95:
		s.A = s.adc(s.A, s.read(s.fetch16()+uint16(s.X)))
	case 0x96:
		s.A = s.adc(s.A, s.read(s.fetch16()+uint16(s.Y)))
	case 0x86:
		s.A = s.adc(s.A, s.read(s.dp(s.X)))
	case 0x87:
		s.A = s.adc(s.A, s.read(s.indirectX()))
	case 0x97:
		s.A = s.adc(s.A, s.read(s.indirectY()))
	case 0x89:
		src := s.read(s.dp(s.fetch8()))
		addr := s.dp(s.fetch8())
		s.write(addr, s.adc(s.read(addr), src))
	case 0x98:
		imm := s.fetch8()
		addr := s.dp(s.fetch8())
		s.write(addr, s.adc(s.read(addr), imm))
	case 0x99:
		s.write(s.dp(s.X), s.adc(s.read(s.dp(s.X)), s.read(s.dp(s.Y))))

	// SBC
	case 0xA8:
		s.A = s.sbc(s.A, s.fetch8())
	case 0xA4:
		s.A = s.sbc(s.A, s.read(s.dp(s.fetch8())))
	case 0xB4:
		s.A = s.sbc(s.A, s.read(s.dp(s.fetch8()+s.X)))
	case 0xA5:
		s.A = s.sbc(s.A, s.read(s.fetch16()))
	case 0xB5:
		s.A = s.sbc(s.A, s.read(s.fetch16()+uint16(s.X)))
	case 0xB6:
		s.A = s.sbc(s.A, s.read(s.fetch16()+uint16(s.Y)))
	case 0xA6:
		s.A = s.sbc(s.A, s.read(s.dp(s.X)))
	case 0xA7:
		s.A = s.sbc(s.A, s.read(s.indirectX()))
	case 0xB7:
		s.A = s.sbc(s.A, s.read(s.indirectY()))
	case 0xA9:
		src := s.read(s.dp(s.fetch8()))
		addr := s.dp(s.fetch8())
		s.write(addr, s.sbc(s.read(addr), src))
	case 0xB8:
		imm := s.fetch8()
		addr := s.dp(s.fetch8())
		s.write(addr, s.sbc(s.read(addr), imm))
	case 0xB9:
		s.write(s.dp(s.X), s.sbc(s.read(s.dp(s.X)), s.read(s.dp(s.Y))))

	// MOV loads
	case 0xE8:
		s.A = s.setNZ(s.fetch8())
	case 0xE4:
		s.A = s.setNZ(s.read(s.dp(s.fetch8())))
	case 0xF4:
		s.A = s.setNZ(s.read(s.dp(s.fetch8() + s.X)))
	case 0xE5:
		s.A = s.setNZ(s.read(s.fetch16()))
	case 0xF5:
		s.A = s.setNZ(s.read(s.fetch16() + uint16(s.X)))
	case 0xF6:
		s.A = s.setNZ(s.read(s.fetch16() + uint16(s.Y)))
	case 0xE6:
		s.A = s.setNZ(s.read(s.dp(s.X)))
	case 0xBF: // MOV A,(X)+
		s.A = s.setNZ(s.read(s.dp(s.X)))
		s.X++
	case 0xE7:
		s.A = s.setNZ(s.read(s.indirectX()))
	case 0xF7:
		s.A = s.setNZ(s.read(s.indirectY()))
	case 0xCD:
		s.X = s.setNZ(s.fetch8())
	case 0xF8:
		s.X = s.setNZ(s.read(s.dp(s.fetch8())))
	case 0xF9:
		s.X = s.setNZ(s.read(s.dp(s.fetch8() + s.Y)))
	case 0xE9:
		s.X = s.setNZ(s.read(s.fetch16()))
	case 0x8D:
		s.Y = s.setNZ(s.fetch8())
	case 0xEB:
		s.Y = s.setNZ(s.read(s.dp(s.fetch8())))
	case 0xFB:
		s.Y = s.setNZ(s.read(s.dp(s.fetch8() + s.X)))
	case 0xEC:
		s.Y = s.setNZ(s.read(s.fetch16()))

	// MOV stores (no flags)
	case 0xC4:
		s.write(s.dp(s.fetch8()), s.A)
	case 0xD4:
		s.write(s.dp(s.fetch8()+s.X), s.A)
	case 0xC5:
		s.write(s.fetch16(), s.A)
	case 0xD5:
		s.write(s.fetch16()+uint16(s.X), s.A)
	case 0xD6:
		s.write(s.fetch16()+uint16(s.Y), s.A)
	case 0xC6:
		s.write(s.dp(s.X), s.A)
	case 0xAF: // MOV (X)+,A
		s.write(s.dp(s.X), s.A)
		s.X++
	case 0xC7:
		s.write(s.indirectX(), s.A)
	case 0xD7:
		s.write(s.indirectY(), s.A)
	case 0xD8:
		s.write(s.dp(s.fetch8()), s.X)
	case 0xD9:
		s.write(s.dp(s.fetch8()+s.Y), s.X)
	case 0xC9:
		s.write(s.fetch16(), s.X)
	case 0xCB:
		s.write(s.dp(s.fetch8()), s.Y)
	case 0xDB:
		s.write(s.dp(s.fetch8()+s.X), s.Y)
	case 0xCC:
		s.write(s.fetch16(), s.Y)
	case 0xFA: // MOV dp,dp
		src := s.read(s.dp(s.fetch8()))
		s.write(s.dp(s.fetch8()), src)
	case 0x8F: // MOV dp,#imm
		imm := s.fetch8()
		s.write(s.dp(s.fetch8()), imm)

	// Register transfers
	case 0x7D:
		s.A = s.setNZ(s.X)
	case 0xDD:
		s.A = s.setNZ(s.Y)
	case 0x5D:
		s.X = s.setNZ(s.A)
	case 0xFD:
		s.Y = s.setNZ(s.A)
	case 0x9D:
		s.X = s.setNZ(s.SP)
	case 0xBD:
		s.SP = s.X

	// Shifts and rotates
	case 0x1C:
		s.A = s.asl(s.A)
	case 0x0B:
		s.modifyDP(s.dp(s.fetch8()), s.asl)
	case 0x1B:
		s.modifyDP(s.dp(s.fetch8()+s.X), s.asl)
	case 0x0C:
		s.modifyAbs(s.fetch16(), s.asl)
	case 0x5C:
		s.A = s.lsr(s.A)
	case 0x4B:
		s.modifyDP(s.dp(s.fetch8()), s.lsr)
	case 0x5B:
		s.modifyDP(s.dp(s.fetch8()+s.X), s.lsr)
	case 0x4C:
		s.modifyAbs(s.fetch16(), s.lsr)
	case 0x3C:
		s.A = s.rol(s.A)
	case 0x2B:
		s.modifyDP(s.dp(s.fetch8()), s.rol)
	case 0x3B:
		s.modifyDP(s.dp(s.fetch8()+s.X), s.rol)
	case 0x2C:
		s.modifyAbs(s.fetch16(), s.rol)
	case 0x7C:
		s.A = s.ror(s.A)
	case 0x6B:
		s.modifyDP(s.dp(s.fetch8()), s.ror)
	case 0x7B:
		s.modifyDP(s.dp(s.fetch8()+s.X), s.ror)
	case 0x6C:
		s.modifyAbs(s.fetch16(), s.ror)

	// INC/DEC
	case 0xBC:
		s.A = s.setNZ(s.A + 1)
	case 0x3D:
		s.X = s.setNZ(s.X + 1)
	case 0xFC:
		s.Y = s.setNZ(s.Y + 1)
	case 0x9C:
		s.A = s.setNZ(s.A - 1)
	case 0x1D:
		s.X = s.setNZ(s.X - 1)
	case 0xDC:
		s.Y = s.setNZ(s.Y - 1)
	case 0xAB:
		s.modifyDP(s.dp(s.fetch8()), func(v uint8) uint8 { return s.setNZ(v + 1) })
	case 0xBB:
		s.modifyDP(s.dp(s.fetch8()+s.X), func(v uint8) uint8 { return s.setNZ(v + 1) })
	case 0xAC:
		s.modifyAbs(s.fetch16(), func(v uint8) uint8 { return s.setNZ(v + 1) })
	case 0x8B:
		s.modifyDP(s.dp(s.fetch8()), func(v uint8) uint8 { return s.setNZ(v - 1) })
	case 0x9B:
		s.modifyDP(s.dp(s.fetch8()+s.X), func(v uint8) uint8 { return s.setNZ(v - 1) })
	case 0x8C:
		s.modifyAbs(s.fetch16(), func(v uint8) uint8 { return s.setNZ(v - 1) })

	// 16-bit word operations on a direct-page pair
	case 0x1A: // DECW
		addr := s.dp(s.fetch8())
		value := s.readWordDP(addr) - 1
		s.writeWordDP(addr, s.setNZ16(value))
	case 0x3A: // INCW
		addr := s.dp(s.fetch8())
		value := s.readWordDP(addr) + 1
		s.writeWordDP(addr, s.setNZ16(value))
	case 0x7A: // ADDW YA,dp
		s.SetYA(s.addw(s.YA(), s.readWordDP(s.dp(s.fetch8()))))
	case 0x9A: // SUBW YA,dp
		s.SetYA(s.subw(s.YA(), s.readWordDP(s.dp(s.fetch8()))))
	case 0x5A: // CMPW YA,dp
		value := s.readWordDP(s.dp(s.fetch8()))
		s.C = s.YA() >= value
		s.setNZ16(s.YA() - value)
	case 0xBA: // MOVW YA,dp
		s.SetYA(s.setNZ16(s.readWordDP(s.dp(s.fetch8()))))
	case 0xDA: // MOVW dp,YA
		s.writeWordDP(s.dp(s.fetch8()), s.YA())

	// Multiply and divide
	case 0xCF: // MUL YA
		product := uint16(s.Y) * uint16(s.A)
		s.SetYA(product)
		s.setNZ(s.Y)
	case 0x9E: // DIV YA,X
		s.div()

	// Decimal adjust and nibble exchange
	case 0xDF: // DAA
		if s.C || s.A > 0x99 {
			s.A += 0x60
			s.C = true
		}
		if s.H || s.A&0x0F > 0x09 {
			s.A += 0x06
		}
		s.setNZ(s.A)
	case 0xBE: // DAS
		if !s.C || s.A > 0x99 {
			s.A -= 0x60
			s.C = false
		}
		if !s.H || s.A&0x0F > 0x09 {
			s.A -= 0x06
		}
		s.setNZ(s.A)
	case 0x9F: // XCN
		s.A = s.setNZ(s.A>>4 | s.A<<4)

	// Branches
	case 0x2F:
		s.branch(true)
	case 0xF0:
		if s.branch(s.Z) {
			cycles += 2
		}
	case 0xD0:
		if s.branch(!s.Z) {
			cycles += 2
		}
	case 0xB0:
		if s.branch(s.C) {
			cycles += 2
		}
	case 0x90:
		if s.branch(!s.C) {
			cycles += 2
		}
	case 0x30:
		if s.branch(s.N) {
			cycles += 2
		}
	case 0x10:
		if s.branch(!s.N) {
			cycles += 2
		}
	case 0x70:
		if s.branch(s.V) {
			cycles += 2
		}
	case 0x50:
		if s.branch(!s.V) {
			cycles += 2
		}
	case 0x2E: // CBNE dp,rel
		value := s.read(s.dp(s.fetch8()))
		if s.branch(s.A != value) {
			cycles += 2
		}
	case 0xDE: // CBNE dp+X,rel
		value := s.read(s.dp(s.fetch8() + s.X))
		if s.branch(s.A != value) {
			cycles += 2
		}
	case 0x6E: // DBNZ dp,rel
		addr := s.dp(s.fetch8())
		value := s.read(addr) - 1
		s.write(addr, value)
		if s.branch(value != 0) {
			cycles += 2
		}
	case 0xFE: // DBNZ Y,rel
		s.Y--
		if s.branch(s.Y != 0) {
			cycles += 2
		}

	// Jumps and calls
	case 0x5F: // JMP !abs
		s.PC = s.fetch16()
	case 0x1F: // JMP [!abs+X]
		s.PC = s.read16(s.fetch16() + uint16(s.X))
	case 0x3F: // CALL !abs
		target := s.fetch16()
		s.push16(s.PC)
		s.PC = target
	case 0x4F: // PCALL up
		target := 0xFF00 | uint16(s.fetch8())
		s.push16(s.PC)
		s.PC = target
	case 0x6F: // RET
		s.PC = s.pop16()
	case 0x7F: // RETI
		s.SetPSW(s.pop8())
		s.PC = s.pop16()

	// Stack
	case 0x2D:
		s.push8(s.A)
	case 0x4D:
		s.push8(s.X)
	case 0x6D:
		s.push8(s.Y)
	case 0x0D:
		s.push8(s.PSW())
	case 0xAE:
		s.A = s.pop8()
	case 0xCE:
		s.X = s.pop8()
	case 0xEE:
		s.Y = s.pop8()
	case 0x8E:
		s.SetPSW(s.pop8())

	// Carry-bit operations on arbitrary memory bits
	case 0x0A: // OR1 C,mem.bit
		addr, bit := s.absBit()
		s.C = s.C || s.read(addr)&(1<<bit) != 0
	case 0x2A: // OR1 C,/mem.bit
		addr, bit := s.absBit()
		s.C = s.C || s.read(addr)&(1<<bit) == 0
	case 0x4A: // AND1 C,mem.bit
		addr, bit := s.absBit()
		s.C = s.C && s.read(addr)&(1<<bit) != 0
	case 0x6A: // AND1 C,/mem.bit
		addr, bit := s.absBit()
		s.C = s.C && s.read(addr)&(1<<bit) == 0
	case 0x8A: // EOR1 C,mem.bit
		addr, bit := s.absBit()
		s.C = s.C != (s.read(addr)&(1<<bit) != 0)
	case 0xAA: // MOV1 C,mem.bit
		addr, bit := s.absBit()
		s.C = s.read(addr)&(1<<bit) != 0
	case 0xCA: // MOV1 mem.bit,C
		addr, bit := s.absBit()
		value := s.read(addr)
		if s.C {
			value |= 1 << bit
		} else {
			value &^= 1 << bit
		}
		s.write(addr, value)
	case 0xEA: // NOT1 mem.bit
		addr, bit := s.absBit()
		s.write(addr, s.read(addr)^1<<bit)

	// TSET1/TCLR1
	case 0x0E:
		addr := s.fetch16()
		value := s.read(addr)
		s.setNZ(s.A - value)
		s.write(addr, value|s.A)
	case 0x4E:
		addr := s.fetch16()
		value := s.read(addr)
		s.setNZ(s.A - value)
		s.write(addr, value&^s.A)

	// Flag control
	case 0x60:
		s.C = false
	case 0x80:
		s.C = true
	case 0xED:
		s.C = !s.C
	case 0xE0:
		s.V = false
		s.H = false
	case 0x20:
		s.P = false
	case 0x40:
		s.P = true
	case 0xA0:
		s.I = true
	case 0xC0:
		s.I = false

	// Interrupt and control
	case 0x0F: // BRK
		s.push16(s.PC)
		s.push8(s.PSW())
		s.B = true
		s.I = false
		s.PC = s.read16(0xFFDE)
	case 0xEF, 0xFF: // SLEEP, STOP
		s.halted = true

	default:
		if !s.unknownSeen[opcode] {
			s.unknownSeen[opcode] = true
			log.Printf("[APU] unsupported SPC700 opcode $%02X at $%04X, treated as NOP", opcode, s.PC-1)
		}
	}

	return cycles
}

// indirectX resolves [dp+X]: pointer at dp+X in the direct page
func (s *SPC700) indirectX() uint16 {
	ptr := s.dp(s.fetch8() + s.X)
	return s.read16DP(ptr)
}

// indirectY resolves [dp]+Y: pointer at dp, then indexed by Y
func (s *SPC700) indirectY() uint16 {
	ptr := s.dp(s.fetch8())
	return s.read16DP(ptr) + uint16(s.Y)
}

// read16DP reads a pointer from the direct page, wrapping within it
func (s *SPC700) read16DP(addr uint16) uint16 {
	low := s.read(addr)
	high := s.read(s.pageBase() | uint16(uint8(addr)+1))
	return uint16(low) | uint16(high)<<8
}

// readWordDP reads a 16-bit word pair in the direct page
func (s *SPC700) readWordDP(addr uint16) uint16 {
	return s.read16DP(addr)
}

// writeWordDP writes a 16-bit word pair in the direct page
func (s *SPC700) writeWordDP(addr uint16, value uint16) {
	s.write(addr, uint8(value))
	s.write(s.pageBase()|uint16(uint8(addr)+1), uint8(value>>8))
}

// modifyAbs applies a read-modify-write op at an absolute address
func (s *SPC700) modifyAbs(addr uint16, f func(uint8) uint8) {
	s.write(addr, f(s.read(addr)))
}

// addw adds two words setting N V H Z C at 16-bit width
func (s *SPC700) addw(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	result := uint16(sum)
	s.C = sum > 0xFFFF
	s.H = (a&0x0FFF)+(b&0x0FFF) > 0x0FFF
	s.V = (^(a^b)&(a^result))&0x8000 != 0
	return s.setNZ16(result)
}

// subw subtracts two words setting N V H Z C at 16-bit width
func (s *SPC700) subw(a, b uint16) uint16 {
	diff := int32(a) - int32(b)
	result := uint16(diff)
	s.C = diff >= 0
	s.H = a&0x0FFF >= b&0x0FFF
	s.V = ((a^b)&(a^result))&0x8000 != 0
	return s.setNZ16(result)
}

// div implements DIV YA,X: quotient to A, remainder to Y
func (s *SPC700) div() {
	s.H = s.Y&0x0F >= s.X&0x0F
	ya := uint32(s.YA())
	x := uint32(s.X)

	if x == 0 {
		s.V = true
		s.A = 0xFF
		s.Y = 0xFF
		s.setNZ(s.A)
		return
	}

	quotient := ya / x
	remainder := ya % x
	s.V = quotient > 0xFF
	s.A = uint8(quotient)
	s.Y = uint8(remainder)
	s.setNZ(s.A)
}

// Halted reports whether SLEEP or STOP has halted the core
func (s *SPC700) Halted() bool {
	return s.halted
}
