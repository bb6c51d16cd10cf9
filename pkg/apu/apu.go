// Package apu implements the base NES Audio Processing Unit: two pulse
// generators, a triangle, noise, and the delta modulation channel, driven
// by a frame sequencer. Rather than the free-running per-CPU-cycle Step
// model, the APU exposes Run(cycle), a catch-up entry point the CPU calls
// before any register access or at frame end so the APU's state is never
// stale by more than one bus operation.
package apu

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/cpu"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// dmaController is the slice of *cpu.CPU the APU needs: frame/DMC IRQ
// scheduling and DMC sample DMA.
type dmaController interface {
	InterruptSchedule(line int, cycle bus.Cycle)
	InterruptAck(line int) bool
	SetDMCDMATimestamp(cycle bus.Cycle, addr uint16, immediate bool)
	SetDMCLoadCallback(f func(data uint8))
}

// APU represents the Audio Processing Unit.
type APU struct {
	Pulse1   PulseChannel
	Pulse2   PulseChannel
	Triangle TriangleChannel
	Noise    NoiseChannel
	DMC      DMCChannel

	FrameCounter uint8 // last value written to $4017
	FrameIRQ     bool

	Cycles     bus.Cycle // CPU cycles since last EndFrame, the bus-handler domain
	seq        bus.Cycle // frame-sequencer divider, free-running across EndFrame
	lastOutput int
	cpu        dmaController
	Mix        *mixer.BlipBuffer
}

// Length counter lookup table.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// New creates a new APU instance bound to blip, its mixer sink.
func New(blip *mixer.BlipBuffer) *APU {
	a := &APU{Mix: blip}
	a.initializeChannels()
	return a
}

// AttachCPU wires the APU to the CPU's interrupt scheduler and DMC DMA
// controller. Must be called once before the first Run.
func (a *APU) AttachCPU(c dmaController) {
	a.cpu = c
	c.SetDMCLoadCallback(a.onDMCLoad)
}

// RegisterHandlers installs $4000-$4017 read/write handlers on b.
func (a *APU) RegisterHandlers(b *bus.Bus) {
	b.RegisterWrite(0x4000, 0x18, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		a.Run(cycle)
		a.WriteRegister(addr, value)
	})
	b.RegisterRead(0x4015, 1, 0, func(addr uint16, cycle bus.Cycle) uint8 {
		a.Run(cycle)
		return a.ReadRegister(addr)
	})
	b.RegisterWrite(0x4015, 1, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		a.Run(cycle)
		a.WriteRegister(addr, value)
	})
	b.RegisterWrite(0x4017, 1, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		a.Run(cycle)
		a.WriteRegister(addr, value)
	})
}

// Reset resets the APU to its power-on state.
func (a *APU) Reset() {
	a.Pulse1 = PulseChannel{}
	a.Pulse2 = PulseChannel{}
	a.Triangle = TriangleChannel{}
	a.Noise = NoiseChannel{}
	a.DMC = DMCChannel{}
	a.FrameCounter = 0
	a.FrameIRQ = false
	a.Cycles = 0
	a.seq = 0
	a.lastOutput = 0
	a.initializeChannels()
}

// Run catches the APU up to toCycle, clocking every channel, the frame
// sequencer, and the mixer delta stream one CPU cycle at a time between
// a.Cycles and toCycle. toCycle is in the same frame-relative cycle
// domain the CPU hands to bus handlers.
func (a *APU) Run(toCycle bus.Cycle) {
	for a.Cycles < toCycle {
		a.clockCPUCycle()
	}
}

// EndFrame flushes the mixer buffer for the elapsed frame and rebases
// a.Cycles back to the CPU's post-EndFrame domain. The frame-sequencer
// divider (seq) is NOT rebased here: it free-runs across video-frame
// boundaries and only resets on its own 4-step/5-step period or a $4017
// write, exactly like the real APU's internal clock.
func (a *APU) EndFrame(cyclesInFrame bus.Cycle) {
	a.Run(cyclesInFrame)
	if a.Mix != nil {
		a.Mix.EndFrame(uint32(cyclesInFrame))
	}
	a.Cycles -= cyclesInFrame
}

func (a *APU) clockCPUCycle() {
	a.Cycles++
	a.seq++

	// Triangle's timer ticks every CPU cycle; everything else (pulse,
	// noise, DMC) ticks at half rate, i.e. every APU cycle.
	a.stepTriangle()
	if a.Cycles%2 == 0 {
		a.stepPulse(&a.Pulse1)
		a.stepPulse(&a.Pulse2)
		a.stepNoise()
		a.stepDMC()
	}

	// NTSC 4-step/5-step frame sequencer, quarter-frame boundaries at
	// 7457/14913/22371/29829 (4-step, IRQ + reset at 29829) or
	// 7457/14913/22371/29829/37281 (5-step, no IRQ).
	switch a.seq {
	case 7457:
		a.frameQuarter()
	case 14913:
		a.frameQuarter()
		a.frameHalf()
	case 22371:
		a.frameQuarter()
	case 29829:
		if a.FrameCounter&0x80 == 0 {
			a.frameQuarter()
			a.frameHalf()
			if a.FrameCounter&0x40 == 0 {
				a.raiseFrameIRQ()
			}
			a.seq = 0
		}
	case 37281:
		if a.FrameCounter&0x80 != 0 {
			a.frameQuarter()
			a.frameHalf()
			a.seq = 0
		}
	}

	a.emitSample()
}

func (a *APU) frameQuarter() {
	a.stepEnvelopes()
	a.stepLinearCounter()
}

func (a *APU) frameHalf() {
	a.stepLengthCounters()
	a.stepSweeps()
}

func (a *APU) raiseFrameIRQ() {
	a.FrameIRQ = true
	if a.cpu != nil {
		a.cpu.InterruptSchedule(cpu.IRQAPUFrame, a.Cycles)
	}
}

// emitSample recomputes the non-linear mix and, if it changed since the
// last CPU cycle, pushes a (cycle, delta) pair into the mixer.
func (a *APU) emitSample() {
	if a.Mix == nil {
		return
	}
	out := a.mixNonLinear()
	if out != a.lastOutput {
		a.Mix.AddDelta(uint32(a.Cycles), int32(out-a.lastOutput))
		a.lastOutput = out
	}
}

func (a *APU) mixNonLinear() int {
	pulseSum := int(a.getPulseOutput(&a.Pulse1)) + int(a.getPulseOutput(&a.Pulse2))
	tndSum := 3*int(a.getTriangleOutput()) + 2*int(a.getNoiseOutput()) + int(a.getDMCOutput())
	return mixer.PulseMix(pulseSum) + mixer.TNDMix(tndSum)
}

func (a *APU) stepEnvelopes() {
	a.stepEnvelope(&a.Pulse1.Envelope)
	a.stepEnvelope(&a.Pulse2.Envelope)
	a.stepEnvelope(&a.Noise.Envelope)
}

func (a *APU) stepLengthCounters() {
	a.stepLengthCounter(&a.Pulse1.Length)
	a.stepLengthCounter(&a.Pulse2.Length)
	a.stepLengthCounter(&a.Triangle.Length)
	a.stepLengthCounter(&a.Noise.Length)
}

func (a *APU) stepSweeps() {
	a.stepSweep(&a.Pulse1, &a.Pulse1.Sweep, true)
	a.stepSweep(&a.Pulse2, &a.Pulse2.Sweep, false)
}

// onDMCLoad is the callback the CPU invokes once a requested DMC DMA
// fetch completes.
func (a *APU) onDMCLoad(data uint8) {
	a.DMC.SampleBuffer = data
	a.DMC.BufferEmpty = false
	a.DMC.CurrentAddress++
	if a.DMC.CurrentAddress == 0 {
		a.DMC.CurrentAddress = 0x8000
	}
	a.DMC.CurrentLength--
	if a.DMC.CurrentLength == 0 {
		if a.DMC.Loop {
			a.DMC.CurrentLength = a.DMC.SampleLength
			a.DMC.CurrentAddress = a.DMC.SampleAddress
		} else if a.DMC.IRQEnabled && a.cpu != nil {
			a.cpu.InterruptSchedule(cpu.IRQAPUDMC, a.Cycles)
		}
	}
}

// ReadRegister reads from an APU-mapped register, currently only $4015.
func (a *APU) ReadRegister(addr uint16) uint8 {
	if addr != 0x4015 {
		return 0
	}
	status := uint8(0)
	if a.Pulse1.Length.Value > 0 {
		status |= 0x01
	}
	if a.Pulse2.Length.Value > 0 {
		status |= 0x02
	}
	if a.Triangle.Length.Value > 0 {
		status |= 0x04
	}
	if a.Noise.Length.Value > 0 {
		status |= 0x08
	}
	if a.DMC.CurrentLength > 0 {
		status |= 0x10
	}
	if a.FrameIRQ {
		status |= 0x40
	}
	if a.DMC.IRQEnabled && a.DMC.CurrentLength == 0 {
		status |= 0x80
	}

	a.FrameIRQ = false
	if a.cpu != nil {
		a.cpu.InterruptAck(cpu.IRQAPUFrame)
	}
	return status
}

// WriteRegister writes to an APU-mapped register.
func (a *APU) WriteRegister(addr uint16, value uint8) {
	switch {
	case addr >= 0x4000 && addr <= 0x4003:
		a.writePulse(&a.Pulse1, addr-0x4000, value)
	case addr >= 0x4004 && addr <= 0x4007:
		a.writePulse(&a.Pulse2, addr-0x4004, value)
	case addr >= 0x4008 && addr <= 0x400B:
		a.writeTriangle(addr-0x4008, value)
	case addr >= 0x400C && addr <= 0x400F:
		a.writeNoise(addr-0x400C, value)
	case addr >= 0x4010 && addr <= 0x4013:
		a.writeDMC(addr-0x4010, value)
	case addr == 0x4015:
		a.writeStatus(value)
	case addr == 0x4017:
		a.writeFrameCounter(value)
	}
}
