// Package apu implements the SNES audio subsystem: an SPC700 core running
// out of 64KB ARAM, the four mailbox ports shared with the main CPU, three
// timers, and the 8-voice DSP mixer.
package apu

// The APU-side I/O window at $00F0-$00FF
const (
	regControl  = 0xF1
	regDSPAddr  = 0xF2
	regDSPData  = 0xF3
	regPort0    = 0xF4
	regPort3    = 0xF7
	regTimer0   = 0xFA
	regTimer2   = 0xFC
	regCounter0 = 0xFD
	regCounter2 = 0xFF
)

// bootState tracks the IPL upload protocol spoken over the mailbox ports
type bootState int

const (
	bootReady    bootState = iota // signature presented, waiting for $CC
	bootTransfer                  // block upload in progress
	bootRun                       // SPC program executing
)

// APU represents the audio subsystem
type APU struct {
	aram [0x10000]uint8

	spc *SPC700
	dsp *DSP

	// Mailbox ports: one direction each. The CPU reads toCPU and writes
	// toAPU; the SPC sees the reverse through $F4-$F7.
	toCPU [4]uint8
	toAPU [4]uint8

	// IPL upload protocol state
	state        bootState
	transferAddr uint16
	expectSeq    uint8

	// Timers: 0 and 1 divide the core clock by 128, timer 2 by 16. Each
	// counts up to its target and increments a 4-bit counter on match.
	timerEnable  [3]bool
	timerTarget  [3]uint8
	timerStage   [3]uint8
	timerCounter [3]uint8
	timerDivider [3]int

	// Instruction pacing: remaining core cycles of the current instruction
	pendingCycles int

	// Sample pacing: the DSP produces one stereo pair per 32kHz period
	sampleAccum int

	samples []int16
}

// The APU core steps at the master clock divided by 8; the DSP emits
// samples at 32kHz.
const (
	coreClock  = 2684659
	sampleRate = 32000
)

// New creates the APU in its reset state
func New() *APU {
	a := &APU{}
	a.spc = NewSPC700(a)
	a.dsp = NewDSP(a)
	a.Reset()
	return a
}

// Reset restores power-on state: the ready signature on ports 0/1 and the
// SPC parked at the IPL entry point.
func (a *APU) Reset() {
	a.state = bootReady
	a.toCPU = [4]uint8{0xAA, 0xBB, 0x00, 0x00}
	a.toAPU = [4]uint8{}
	a.transferAddr = 0
	a.expectSeq = 0
	a.pendingCycles = 0
	a.sampleAccum = 0
	a.samples = a.samples[:0]

	for i := range a.timerEnable {
		a.timerEnable[i] = false
		a.timerTarget[i] = 0
		a.timerStage[i] = 0
		a.timerCounter[i] = 0
		a.timerDivider[i] = 0
	}

	a.spc.Reset()
	a.dsp.Reset()
}

// Step advances the APU by one core cycle
func (a *APU) Step() {
	if a.state == bootRun {
		if a.pendingCycles == 0 {
			a.pendingCycles = a.spc.Step()
		}
		a.pendingCycles--
	}

	a.stepTimers()

	a.sampleAccum += sampleRate
	if a.sampleAccum >= coreClock {
		a.sampleAccum -= coreClock
		left, right := a.dsp.Sample()
		a.samples = append(a.samples, left, right)
	}
}

// Samples returns the stereo samples generated since the last drain
func (a *APU) Samples() []int16 {
	return a.samples
}

// DrainSamples hands out the accumulated samples and resets the buffer
func (a *APU) DrainSamples() []int16 {
	out := a.samples
	a.samples = a.samples[:0]
	return out
}

// SPC returns the SPC700 core for tests and debug tooling
func (a *APU) SPC() *SPC700 {
	return a.spc
}

// DSP returns the DSP for tests and debug tooling
func (a *APU) DSP() *DSP {
	return a.dsp
}

// Running reports whether the uploaded program has been started
func (a *APU) Running() bool {
	return a.state == bootRun
}

// ReadPort services a CPU read of $2140-$2143
func (a *APU) ReadPort(port uint8) uint8 {
	return a.toCPU[port&3]
}

// WritePort services a CPU write of $2140-$2143, driving the IPL upload
// protocol until the program is started.
func (a *APU) WritePort(port uint8, value uint8) {
	port &= 3
	a.toAPU[port] = value

	if port != 0 {
		return
	}

	switch a.state {
	case bootReady:
		// $CC with the destination already on ports 2/3 starts a block
		if value == 0xCC {
			a.transferAddr = uint16(a.toAPU[2]) | uint16(a.toAPU[3])<<8
			a.expectSeq = 0
			a.toCPU[0] = 0xCC
			a.state = bootTransfer
		}

	case bootTransfer:
		if value == a.expectSeq {
			// In-sequence: port 1 carries the data byte
			a.aram[a.transferAddr] = a.toAPU[1]
			a.transferAddr++
			a.toCPU[0] = value
			a.expectSeq++
		} else if value == 0xCC {
			// A fresh block at a new destination
			a.transferAddr = uint16(a.toAPU[2]) | uint16(a.toAPU[3])<<8
			a.expectSeq = 0
			a.toCPU[0] = 0xCC
		} else {
			// Out-of-sequence counter ends the upload: ports 2/3 hold
			// the execution address.
			a.spc.PC = uint16(a.toAPU[2]) | uint16(a.toAPU[3])<<8
			a.toCPU[0] = value
			a.state = bootRun
		}

	case bootRun:
		// Plain mailbox traffic once the program owns the ports
	}
}

// Read services an SPC700 read from ARAM, routing the $F0-$FF window
func (a *APU) Read(address uint16) uint8 {
	if address >= 0xF0 && address <= 0xFF {
		return a.readIO(address)
	}
	return a.aram[address]
}

// Write services an SPC700 write to ARAM, routing the $F0-$FF window
func (a *APU) Write(address uint16, value uint8) {
	if address >= 0xF0 && address <= 0xFF {
		a.writeIO(address, value)
		return
	}
	a.aram[address] = value
}

// ReadARAM bypasses the I/O window for DSP sample fetches and tests
func (a *APU) ReadARAM(address uint16) uint8 {
	return a.aram[address]
}

// WriteARAM bypasses the I/O window for test setup
func (a *APU) WriteARAM(address uint16, value uint8) {
	a.aram[address] = value
}

// readIO services the APU-side register window
func (a *APU) readIO(address uint16) uint8 {
	switch {
	case address == regDSPAddr:
		return a.dsp.Addr()
	case address == regDSPData:
		return a.dsp.ReadData()
	case address >= regPort0 && address <= regPort3:
		return a.toAPU[address-regPort0]
	case address >= regCounter0 && address <= regCounter2:
		// Counters clear on read
		n := address - regCounter0
		value := a.timerCounter[n]
		a.timerCounter[n] = 0
		return value
	default:
		return a.aram[address]
	}
}

// writeIO services the APU-side register window
func (a *APU) writeIO(address uint16, value uint8) {
	switch {
	case address == regControl:
		for i := 0; i < 3; i++ {
			enable := value&(1<<i) != 0
			if enable && !a.timerEnable[i] {
				a.timerStage[i] = 0
				a.timerCounter[i] = 0
			}
			a.timerEnable[i] = enable
		}
		// Bits 4/5 clear the incoming port pairs
		if value&0x10 != 0 {
			a.toAPU[0] = 0
			a.toAPU[1] = 0
		}
		if value&0x20 != 0 {
			a.toAPU[2] = 0
			a.toAPU[3] = 0
		}

	case address == regDSPAddr:
		a.dsp.SetAddr(value)

	case address == regDSPData:
		a.dsp.WriteData(value)

	case address >= regPort0 && address <= regPort3:
		a.toCPU[address-regPort0] = value

	case address >= regTimer0 && address <= regTimer2:
		a.timerTarget[address-regTimer0] = value

	default:
		a.aram[address] = value
	}
}

// stepTimers advances the three timers by one core cycle
func (a *APU) stepTimers() {
	for i := 0; i < 3; i++ {
		if !a.timerEnable[i] {
			continue
		}
		divider := 128
		if i == 2 {
			divider = 16
		}
		a.timerDivider[i]++
		if a.timerDivider[i] < divider {
			continue
		}
		a.timerDivider[i] = 0

		a.timerStage[i]++
		if a.timerStage[i] == a.timerTarget[i] {
			a.timerStage[i] = 0
			a.timerCounter[i] = (a.timerCounter[i] + 1) & 0x0F
		}
	}
}
