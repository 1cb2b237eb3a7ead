// Package cpu implements the 65C816 processor emulation for the SNES.
package cpu

import "log"

// Interrupt vectors in bank $00
const (
	vectorCOPNative  = 0xFFE4
	vectorBRKNative  = 0xFFE6
	vectorNMINative  = 0xFFEA
	vectorIRQNative  = 0xFFEE
	vectorCOPEmu     = 0xFFF4
	vectorNMIEmu     = 0xFFFA
	vectorResetEmu   = 0xFFFC
	vectorIRQBRKEmu  = 0xFFFE
	stackPageEmu     = 0x0100
	defaultLoopLimit = 4_000_000
)

// MemoryInterface defines the interface for CPU bus access
type MemoryInterface interface {
	Read8(address uint32) uint8
	Write8(address uint32, value uint8)
}

// CPU represents the 65C816 processor
type CPU struct {
	// Registers. A holds the full 16-bit accumulator (C); in 8-bit mode the
	// high byte is preserved as the hidden B accumulator.
	A   uint16
	X   uint16
	Y   uint16
	SP  uint16
	D   uint16 // direct page base
	PC  uint16
	DBR uint8 // data bank
	PBR uint8 // program bank

	// Status flags
	N  bool // negative
	V  bool // overflow
	M  bool // accumulator/memory width (1 = 8-bit)
	XF bool // index width (1 = 8-bit)
	DF bool // decimal mode
	I  bool // IRQ disable
	Z  bool // zero
	C  bool // carry

	// E lives outside P and is exchanged with C by XCE
	E bool

	memory MemoryInterface
	cycles uint64
	extra  uint64 // per-instruction dynamic cycle cost

	// Interrupt state
	nmiPending bool
	irqPending bool
	waiting    bool // WAI executed, waiting for an interrupt
	stopped    bool // STP executed

	// Advisory diagnostics; never affect machine state
	loopDetection bool
	loopLimit     int
	lastPC        uint16
	prevPC        uint16
	pcStayCount   int
	loopCallback  func(pc uint16)
	traceLogging  bool
	unknownSeen   [256]bool
}

// New creates a new CPU bound to a bus
func New(memory MemoryInterface) *CPU {
	return &CPU{
		memory:    memory,
		loopLimit: defaultLoopLimit,
	}
}

// Reset performs the power-on/reset sequence: emulation mode, 8-bit widths,
// stack at $01FF, PC loaded from the emulation reset vector.
func (cpu *CPU) Reset() {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = 0x01FF
	cpu.D = 0
	cpu.DBR = 0
	cpu.PBR = 0

	cpu.E = true
	cpu.M = true
	cpu.XF = true
	cpu.I = true
	cpu.DF = false
	cpu.N = false
	cpu.V = false
	cpu.Z = false
	cpu.C = false

	cpu.nmiPending = false
	cpu.irqPending = false
	cpu.waiting = false
	cpu.stopped = false
	cpu.pcStayCount = 0

	cpu.PC = cpu.read16(vectorResetEmu)
}

// Step executes one instruction and returns the cycles it consumed. Pending
// interrupts are serviced at the instruction boundary before the fetch.
func (cpu *CPU) Step() uint64 {
	if cpu.stopped {
		return 2
	}

	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.waiting = false
		cpu.serviceInterrupt(vectorNMINative, vectorNMIEmu)
		return 7
	}
	if cpu.irqPending && !cpu.I {
		cpu.waiting = false
		cpu.serviceInterrupt(vectorIRQNative, vectorIRQBRKEmu)
		return 7
	}
	if cpu.waiting {
		// An IRQ wakes WAI even while I masks it; execution resumes at
		// the following instruction.
		if !cpu.irqPending {
			return 2
		}
		cpu.waiting = false
	}

	if cpu.loopDetection {
		cpu.detectLoop(cpu.PC)
	}

	opcode := cpu.fetch8()
	cycles := cpu.execute(opcode)
	cpu.cycles += cycles
	return cycles
}

// TriggerNMI latches a pending NMI, serviced at the next instruction boundary
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ latches a pending IRQ
func (cpu *CPU) TriggerIRQ() {
	cpu.irqPending = true
}

// ClearIRQ drops the IRQ line
func (cpu *CPU) ClearIRQ() {
	cpu.irqPending = false
}

// Stopped reports whether STP has halted the processor
func (cpu *CPU) Stopped() bool {
	return cpu.stopped
}

// Cycles returns the cumulative cycle count
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// P packs the status flags into the architectural P byte. In emulation mode
// bits 4 and 5 read back as set.
func (cpu *CPU) P() uint8 {
	var p uint8
	if cpu.C {
		p |= 0x01
	}
	if cpu.Z {
		p |= 0x02
	}
	if cpu.I {
		p |= 0x04
	}
	if cpu.DF {
		p |= 0x08
	}
	if cpu.XF || cpu.E {
		p |= 0x10
	}
	if cpu.M || cpu.E {
		p |= 0x20
	}
	if cpu.V {
		p |= 0x40
	}
	if cpu.N {
		p |= 0x80
	}
	return p
}

// SetP unpacks a P byte into the flags and re-applies width invariants
func (cpu *CPU) SetP(p uint8) {
	cpu.C = p&0x01 != 0
	cpu.Z = p&0x02 != 0
	cpu.I = p&0x04 != 0
	cpu.DF = p&0x08 != 0
	cpu.XF = p&0x10 != 0
	cpu.M = p&0x20 != 0
	cpu.V = p&0x40 != 0
	cpu.N = p&0x80 != 0
	cpu.applyWidthInvariants()
}

// applyWidthInvariants enforces the mode state machine: emulation forces
// 8-bit widths, and 8-bit index mode zeroes the index high bytes.
func (cpu *CPU) applyWidthInvariants() {
	if cpu.E {
		cpu.M = true
		cpu.XF = true
		cpu.SP = stackPageEmu | cpu.SP&0xFF
	}
	if cpu.XF {
		cpu.X &= 0xFF
		cpu.Y &= 0xFF
	}
}

// fetch8 reads the next program byte at PBR:PC. PC wraps within the bank.
func (cpu *CPU) fetch8() uint8 {
	value := cpu.memory.Read8(uint32(cpu.PBR)<<16 | uint32(cpu.PC))
	cpu.PC++
	return value
}

// fetch16 reads the next little-endian program word
func (cpu *CPU) fetch16() uint16 {
	low := cpu.fetch8()
	high := cpu.fetch8()
	return uint16(low) | uint16(high)<<8
}

// fetch24 reads the next 24-bit program operand
func (cpu *CPU) fetch24() uint32 {
	low := cpu.fetch8()
	mid := cpu.fetch8()
	high := cpu.fetch8()
	return uint32(low) | uint32(mid)<<8 | uint32(high)<<16
}

// read16 reads a word from bank $00 without bank crossing
func (cpu *CPU) read16(address uint16) uint16 {
	low := cpu.memory.Read8(uint32(address))
	high := cpu.memory.Read8(uint32(address + 1))
	return uint16(low) | uint16(high)<<8
}

// push8 pushes a byte. The stack lives in bank $00; emulation mode wraps the
// pointer within page $01.
func (cpu *CPU) push8(value uint8) {
	cpu.memory.Write8(uint32(cpu.SP), value)
	if cpu.E {
		cpu.SP = stackPageEmu | (cpu.SP-1)&0xFF
	} else {
		cpu.SP--
	}
}

// push16 pushes a word, high byte first
func (cpu *CPU) push16(value uint16) {
	cpu.push8(uint8(value >> 8))
	cpu.push8(uint8(value))
}

// pull8 pops a byte
func (cpu *CPU) pull8() uint8 {
	if cpu.E {
		cpu.SP = stackPageEmu | (cpu.SP+1)&0xFF
	} else {
		cpu.SP++
	}
	return cpu.memory.Read8(uint32(cpu.SP))
}

// pull16 pops a word, low byte first
func (cpu *CPU) pull16() uint16 {
	low := cpu.pull8()
	high := cpu.pull8()
	return uint16(low) | uint16(high)<<8
}

// serviceInterrupt runs the hardware interrupt sequence for NMI/IRQ: push
// PBR (native only), PC and P, clear decimal, set I, jump through the vector
// in bank $00.
func (cpu *CPU) serviceInterrupt(nativeVector, emuVector uint16) {
	if cpu.E {
		cpu.push16(cpu.PC)
		cpu.push8(cpu.P() &^ 0x10) // B clear for hardware interrupts
		cpu.I = true
		cpu.DF = false
		cpu.PBR = 0
		cpu.PC = cpu.read16(emuVector)
	} else {
		cpu.push8(cpu.PBR)
		cpu.push16(cpu.PC)
		cpu.push8(cpu.P())
		cpu.I = true
		cpu.DF = false
		cpu.PBR = 0
		cpu.PC = cpu.read16(nativeVector)
	}
}

// softwareInterrupt implements BRK/COP: the byte after the opcode is a
// signature that the sequence skips.
func (cpu *CPU) softwareInterrupt(nativeVector, emuVector uint16) {
	cpu.PC++ // signature byte
	if cpu.E {
		cpu.push16(cpu.PC)
		cpu.push8(cpu.P() | 0x10) // B set for BRK/COP in emulation mode
		cpu.I = true
		cpu.DF = false
		cpu.PBR = 0
		cpu.PC = cpu.read16(emuVector)
	} else {
		cpu.push8(cpu.PBR)
		cpu.push16(cpu.PC)
		cpu.push8(cpu.P())
		cpu.I = true
		cpu.DF = false
		cpu.PBR = 0
		cpu.PC = cpu.read16(nativeVector)
	}
}

// EnableLoopDetection toggles the advisory infinite-loop detector
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.loopDetection = enable
	cpu.pcStayCount = 0
}

// SetLoopLimit overrides the iteration threshold of the loop detector
func (cpu *CPU) SetLoopLimit(limit int) {
	if limit > 0 {
		cpu.loopLimit = limit
	}
}

// SetLoopCallback installs the handler invoked when a loop trips the limit
func (cpu *CPU) SetLoopCallback(callback func(pc uint16)) {
	cpu.loopCallback = callback
}

// EnableTraceLogging toggles per-instruction trace output
func (cpu *CPU) EnableTraceLogging(enable bool) {
	cpu.traceLogging = enable
}

// detectLoop counts consecutive iterations of a one- or two-instruction
// cycle and fires the callback when the threshold is exceeded.
func (cpu *CPU) detectLoop(pc uint16) {
	if pc == cpu.lastPC || pc == cpu.prevPC {
		cpu.pcStayCount++
		if cpu.pcStayCount > cpu.loopLimit {
			log.Printf("[CPU] loop trap at PC=$%02X:%04X after %d iterations", cpu.PBR, pc, cpu.pcStayCount)
			cpu.pcStayCount = 0
			if cpu.loopCallback != nil {
				cpu.loopCallback(pc)
			}
		}
	} else {
		cpu.pcStayCount = 0
	}
	cpu.prevPC = cpu.lastPC
	cpu.lastPC = pc
}

// reportUnknownOpcode logs an undecodable opcode once
func (cpu *CPU) reportUnknownOpcode(opcode uint8, pc uint16) {
	if !cpu.unknownSeen[opcode] {
		cpu.unknownSeen[opcode] = true
		log.Printf("[CPU] unsupported opcode $%02X at $%02X:%04X, treated as NOP", opcode, cpu.PBR, pc)
	}
}
