package cpu

// Instruction describes one opcode: mnemonic, addressing mode and the base
// cycle cost from the published 65C816 tables (8-bit widths, direct page
// aligned). Only taken branches and block-move bytes add cycles during
// execution; width- and page-dependent extras are not charged.
type Instruction struct {
	Name   string
	Mode   AddressingMode
	Cycles uint8
}

var opcodeTable = [256]Instruction{
	0x00: {"BRK", StackInterrupt, 7},
	0x01: {"ORA", DPIndirectX, 6},
	0x02: {"COP", StackInterrupt, 7},
	0x03: {"ORA", StackRelative, 4},
	0x04: {"TSB", DirectPage, 5},
	0x05: {"ORA", DirectPage, 3},
	0x06: {"ASL", DirectPage, 5},
	0x07: {"ORA", DPIndirectLong, 6},
	0x08: {"PHP", Implied, 3},
	0x09: {"ORA", Immediate, 2},
	0x0A: {"ASL", Accumulator, 2},
	0x0B: {"PHD", Implied, 4},
	0x0C: {"TSB", Absolute, 6},
	0x0D: {"ORA", Absolute, 4},
	0x0E: {"ASL", Absolute, 6},
	0x0F: {"ORA", AbsoluteLong, 5},
	0x10: {"BPL", Relative, 2},
	0x11: {"ORA", DPIndirectY, 5},
	0x12: {"ORA", DPIndirect, 5},
	0x13: {"ORA", StackRelativeY, 7},
	0x14: {"TRB", DirectPage, 5},
	0x15: {"ORA", DirectPageX, 4},
	0x16: {"ASL", DirectPageX, 6},
	0x17: {"ORA", DPIndirectLongY, 6},
	0x18: {"CLC", Implied, 2},
	0x19: {"ORA", AbsoluteY, 4},
	0x1A: {"INC", Accumulator, 2},
	0x1B: {"TCS", Implied, 2},
	0x1C: {"TRB", Absolute, 6},
	0x1D: {"ORA", AbsoluteX, 4},
	0x1E: {"ASL", AbsoluteX, 7},
	0x1F: {"ORA", AbsoluteLongX, 5},
	0x20: {"JSR", Absolute, 6},
	0x21: {"AND", DPIndirectX, 6},
	0x22: {"JSL", AbsoluteLong, 8},
	0x23: {"AND", StackRelative, 4},
	0x24: {"BIT", DirectPage, 3},
	0x25: {"AND", DirectPage, 3},
	0x26: {"ROL", DirectPage, 5},
	0x27: {"AND", DPIndirectLong, 6},
	0x28: {"PLP", Implied, 4},
	0x29: {"AND", Immediate, 2},
	0x2A: {"ROL", Accumulator, 2},
	0x2B: {"PLD", Implied, 5},
	0x2C: {"BIT", Absolute, 4},
	0x2D: {"AND", Absolute, 4},
	0x2E: {"ROL", Absolute, 6},
	0x2F: {"AND", AbsoluteLong, 5},
	0x30: {"BMI", Relative, 2},
	0x31: {"AND", DPIndirectY, 5},
	0x32: {"AND", DPIndirect, 5},
	0x33: {"AND", StackRelativeY, 7},
	0x34: {"BIT", DirectPageX, 4},
	0x35: {"AND", DirectPageX, 4},
	0x36: {"ROL", DirectPageX, 6},
	0x37: {"AND", DPIndirectLongY, 6},
	0x38: {"SEC", Implied, 2},
	0x39: {"AND", AbsoluteY, 4},
	0x3A: {"DEC", Accumulator, 2},
	0x3B: {"TSC", Implied, 2},
	0x3C: {"BIT", AbsoluteX, 4},
	0x3D: {"AND", AbsoluteX, 4},
	0x3E: {"ROL", AbsoluteX, 7},
	0x3F: {"AND", AbsoluteLongX, 5},
	0x40: {"RTI", Implied, 6},
	0x41: {"EOR", DPIndirectX, 6},
	0x42: {"WDM", Immediate, 2},
	0x43: {"EOR", StackRelative, 4},
	0x44: {"MVP", BlockMove, 7},
	0x45: {"EOR", DirectPage, 3},
	0x46: {"LSR", DirectPage, 5},
	0x47: {"EOR", DPIndirectLong, 6},
	0x48: {"PHA", Implied, 3},
	0x49: {"EOR", Immediate, 2},
	0x4A: {"LSR", Accumulator, 2},
	0x4B: {"PHK", Implied, 3},
	0x4C: {"JMP", Absolute, 3},
	0x4D: {"EOR", Absolute, 4},
	0x4E: {"LSR", Absolute, 6},
	0x4F: {"EOR", AbsoluteLong, 5},
	0x50: {"BVC", Relative, 2},
	0x51: {"EOR", DPIndirectY, 5},
	0x52: {"EOR", DPIndirect, 5},
	0x53: {"EOR", StackRelativeY, 7},
	0x54: {"MVN", BlockMove, 7},
	0x55: {"EOR", DirectPageX, 4},
	0x56: {"LSR", DirectPageX, 6},
	0x57: {"EOR", DPIndirectLongY, 6},
	0x58: {"CLI", Implied, 2},
	0x59: {"EOR", AbsoluteY, 4},
	0x5A: {"PHY", Implied, 3},
	0x5B: {"TCD", Implied, 2},
	0x5C: {"JML", AbsoluteLong, 4},
	0x5D: {"EOR", AbsoluteX, 4},
	0x5E: {"LSR", AbsoluteX, 7},
	0x5F: {"EOR", AbsoluteLongX, 5},
	0x60: {"RTS", Implied, 6},
	0x61: {"ADC", DPIndirectX, 6},
	0x62: {"PER", RelativeLong, 6},
	0x63: {"ADC", StackRelative, 4},
	0x64: {"STZ", DirectPage, 3},
	0x65: {"ADC", DirectPage, 3},
	0x66: {"ROR", DirectPage, 5},
	0x67: {"ADC", DPIndirectLong, 6},
	0x68: {"PLA", Implied, 4},
	0x69: {"ADC", Immediate, 2},
	0x6A: {"ROR", Accumulator, 2},
	0x6B: {"RTL", Implied, 6},
	0x6C: {"JMP", AbsoluteIndirect, 5},
	0x6D: {"ADC", Absolute, 4},
	0x6E: {"ROR", Absolute, 6},
	0x6F: {"ADC", AbsoluteLong, 5},
	0x70: {"BVS", Relative, 2},
	0x71: {"ADC", DPIndirectY, 5},
	0x72: {"ADC", DPIndirect, 5},
	0x73: {"ADC", StackRelativeY, 7},
	0x74: {"STZ", DirectPageX, 4},
	0x75: {"ADC", DirectPageX, 4},
	0x76: {"ROR", DirectPageX, 6},
	0x77: {"ADC", DPIndirectLongY, 6},
	0x78: {"SEI", Implied, 2},
	0x79: {"ADC", AbsoluteY, 4},
	0x7A: {"PLY", Implied, 4},
	0x7B: {"TDC", Implied, 2},
	0x7C: {"JMP", AbsoluteIndexedIndirect, 6},
	0x7D: {"ADC", AbsoluteX, 4},
	0x7E: {"ROR", AbsoluteX, 7},
	0x7F: {"ADC", AbsoluteLongX, 5},
	0x80: {"BRA", Relative, 3},
	0x81: {"STA", DPIndirectX, 6},
	0x82: {"BRL", RelativeLong, 4},
	0x83: {"STA", StackRelative, 4},
	0x84: {"STY", DirectPage, 3},
	0x85: {"STA", DirectPage, 3},
	0x86: {"STX", DirectPage, 3},
	0x87: {"STA", DPIndirectLong, 6},
	0x88: {"DEY", Implied, 2},
	0x89: {"BIT", Immediate, 2},
	0x8A: {"TXA", Implied, 2},
	0x8B: {"PHB", Implied, 3},
	0x8C: {"STY", Absolute, 4},
	0x8D: {"STA", Absolute, 4},
	0x8E: {"STX", Absolute, 4},
	0x8F: {"STA", AbsoluteLong, 5},
	0x90: {"BCC", Relative, 2},
	0x91: {"STA", DPIndirectY, 6},
	0x92: {"STA", DPIndirect, 5},
	0x93: {"STA", StackRelativeY, 7},
	0x94: {"STY", DirectPageX, 4},
	0x95: {"STA", DirectPageX, 4},
	0x96: {"STX", DirectPageY, 4},
	0x97: {"STA", DPIndirectLongY, 6},
	0x98: {"TYA", Implied, 2},
	0x99: {"STA", AbsoluteY, 5},
	0x9A: {"TXS", Implied, 2},
	0x9B: {"TXY", Implied, 2},
	0x9C: {"STZ", Absolute, 4},
	0x9D: {"STA", AbsoluteX, 5},
	0x9E: {"STZ", AbsoluteX, 5},
	0x9F: {"STA", AbsoluteLongX, 5},
	0xA0: {"LDY", Immediate, 2},
	0xA1: {"LDA", DPIndirectX, 6},
	0xA2: {"LDX", Immediate, 2},
	0xA3: {"LDA", StackRelative, 4},
	0xA4: {"LDY", DirectPage, 3},
	0xA5: {"LDA", DirectPage, 3},
	0xA6: {"LDX", DirectPage, 3},
	0xA7: {"LDA", DPIndirectLong, 6},
	0xA8: {"TAY", Implied, 2},
	0xA9: {"LDA", Immediate, 2},
	0xAA: {"TAX", Implied, 2},
	0xAB: {"PLB", Implied, 4},
	0xAC: {"LDY", Absolute, 4},
	0xAD: {"LDA", Absolute, 4},
	0xAE: {"LDX", Absolute, 4},
	0xAF: {"LDA", AbsoluteLong, 5},
	0xB0: {"BCS", Relative, 2},
	0xB1: {"LDA", DPIndirectY, 5},
	0xB2: {"LDA", DPIndirect, 5},
	0xB3: {"LDA", StackRelativeY, 7},
	0xB4: {"LDY", DirectPageX, 4},
	0xB5: {"LDA", DirectPageX, 4},
	0xB6: {"LDX", DirectPageY, 4},
	0xB7: {"LDA", DPIndirectLongY, 6},
	0xB8: {"CLV", Implied, 2},
	0xB9: {"LDA", AbsoluteY, 4},
	0xBA: {"TSX", Implied, 2},
	0xBB: {"TYX", Implied, 2},
	0xBC: {"LDY", AbsoluteX, 4},
	0xBD: {"LDA", AbsoluteX, 4},
	0xBE: {"LDX", AbsoluteY, 4},
	0xBF: {"LDA", AbsoluteLongX, 5},
	0xC0: {"CPY", Immediate, 2},
	0xC1: {"CMP", DPIndirectX, 6},
	0xC2: {"REP", Immediate, 3},
	0xC3: {"CMP", StackRelative, 4},
	0xC4: {"CPY", DirectPage, 3},
	0xC5: {"CMP", DirectPage, 3},
	0xC6: {"DEC", DirectPage, 5},
	0xC7: {"CMP", DPIndirectLong, 6},
	0xC8: {"INY", Implied, 2},
	0xC9: {"CMP", Immediate, 2},
	0xCA: {"DEX", Implied, 2},
	0xCB: {"WAI", Implied, 3},
	0xCC: {"CPY", Absolute, 4},
	0xCD: {"CMP", Absolute, 4},
	0xCE: {"DEC", Absolute, 6},
	0xCF: {"CMP", AbsoluteLong, 5},
	0xD0: {"BNE", Relative, 2},
	0xD1: {"CMP", DPIndirectY, 5},
	0xD2: {"CMP", DPIndirect, 5},
	0xD3: {"CMP", StackRelativeY, 7},
	0xD4: {"PEI", DirectPage, 6},
	0xD5: {"CMP", DirectPageX, 4},
	0xD6: {"DEC", DirectPageX, 6},
	0xD7: {"CMP", DPIndirectLongY, 6},
	0xD8: {"CLD", Implied, 2},
	0xD9: {"CMP", AbsoluteY, 4},
	0xDA: {"PHX", Implied, 3},
	0xDB: {"STP", Implied, 3},
	0xDC: {"JML", AbsoluteIndirectLong, 6},
	0xDD: {"CMP", AbsoluteX, 4},
	0xDE: {"DEC", AbsoluteX, 7},
	0xDF: {"CMP", AbsoluteLongX, 5},
	0xE0: {"CPX", Immediate, 2},
	0xE1: {"SBC", DPIndirectX, 6},
	0xE2: {"SEP", Immediate, 3},
	0xE3: {"SBC", StackRelative, 4},
	0xE4: {"CPX", DirectPage, 3},
	0xE5: {"SBC", DirectPage, 3},
	0xE6: {"INC", DirectPage, 5},
	0xE7: {"SBC", DPIndirectLong, 6},
	0xE8: {"INX", Implied, 2},
	0xE9: {"SBC", Immediate, 2},
	0xEA: {"NOP", Implied, 2},
	0xEB: {"XBA", Implied, 3},
	0xEC: {"CPX", Absolute, 4},
	0xED: {"SBC", Absolute, 4},
	0xEE: {"INC", Absolute, 6},
	0xEF: {"SBC", AbsoluteLong, 5},
	0xF0: {"BEQ", Relative, 2},
	0xF1: {"SBC", DPIndirectY, 5},
	0xF2: {"SBC", DPIndirect, 5},
	0xF3: {"SBC", StackRelativeY, 7},
	0xF4: {"PEA", Immediate, 5},
	0xF5: {"SBC", DirectPageX, 4},
	0xF6: {"INC", DirectPageX, 6},
	0xF7: {"SBC", DPIndirectLongY, 6},
	0xF8: {"SED", Implied, 2},
	0xF9: {"SBC", AbsoluteY, 4},
	0xFA: {"PLX", Implied, 4},
	0xFB: {"XCE", Implied, 2},
	0xFC: {"JSR", AbsoluteIndexedIndirect, 8},
	0xFD: {"SBC", AbsoluteX, 4},
	0xFE: {"INC", AbsoluteX, 7},
	0xFF: {"SBC", AbsoluteLongX, 5},
}

// OpcodeName returns the mnemonic for an opcode, for trace output
func OpcodeName(opcode uint8) string {
	return opcodeTable[opcode].Name
}
