package cpu

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/savestate/codec"
)

// EncodeState snapshots every piece of runtime state a save state needs to
// resume execution: registers, the interrupt latch, and the OAM/DMC DMA
// state machines. Bus, ClockDivider and the DMC load callback are wiring
// fixed up by the owner (pkg/nes) when the CPU is constructed, not state.
func (c *CPU) EncodeState() []byte {
	e := codec.NewEncoder()
	e.Uint8(c.A)
	e.Uint8(c.X)
	e.Uint8(c.Y)
	e.Uint8(c.SP)
	e.Uint16(c.PC)
	e.Uint8(c.P)

	e.Uint32(c.Cycles)
	e.Uint32(c.FrameCycles)

	e.Uint32(c.interrupts)
	for _, t := range c.interruptTimes {
		e.Uint32(t)
	}
	e.Uint32(c.polledInterrupts)

	e.Uint32(c.boardRunTimestamp)

	e.Uint32(c.dmcDMATimestamp)
	e.Uint16(c.dmcDMAAddr)
	e.Int(int(c.dmcDMAStep))

	e.Bool(c.oamDMAActive)
	e.Uint16(c.oamDMAAddr)
	e.Int(c.oamDMAWait)
	e.Int(c.oamDMAIndex)
	e.Bool(c.oamDMAReadPending)
	e.Uint8(c.oamDMALatch)
	e.Uint32(c.dmaTimestamp)

	e.Bool(c.jammed)
	e.Uint16(c.lastPC)
	e.Int(c.stuckCounter)
	return e.Bytes()
}

// DecodeState restores state previously produced by EncodeState. It reads
// every field into locals before touching c, so a truncated buffer leaves
// the CPU untouched; check the returned error.
func (c *CPU) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	a := d.Uint8()
	x := d.Uint8()
	y := d.Uint8()
	sp := d.Uint8()
	pc := d.Uint16()
	p := d.Uint8()

	cycles := d.Uint32()
	frameCycles := d.Uint32()

	interrupts := d.Uint32()
	var interruptTimes [IRQMax + 1]bus.Cycle
	for i := range interruptTimes {
		interruptTimes[i] = d.Uint32()
	}
	polledInterrupts := d.Uint32()

	boardRunTimestamp := d.Uint32()

	dmcDMATimestamp := d.Uint32()
	dmcDMAAddr := d.Uint16()
	dmcStep := dmcDMAStep(d.Int())

	oamDMAActive := d.Bool()
	oamDMAAddr := d.Uint16()
	oamDMAWait := d.Int()
	oamDMAIndex := d.Int()
	oamDMAReadPending := d.Bool()
	oamDMALatch := d.Uint8()
	dmaTimestamp := d.Uint32()

	jammed := d.Bool()
	lastPC := d.Uint16()
	stuckCounter := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.A, c.X, c.Y, c.SP, c.PC, c.P = a, x, y, sp, pc, p
	c.Cycles, c.FrameCycles = cycles, frameCycles
	c.interrupts = interrupts
	c.interruptTimes = interruptTimes
	c.polledInterrupts = polledInterrupts
	c.boardRunTimestamp = boardRunTimestamp
	c.dmcDMATimestamp = dmcDMATimestamp
	c.dmcDMAAddr = dmcDMAAddr
	c.dmcDMAStep = dmcStep
	c.oamDMAActive = oamDMAActive
	c.oamDMAAddr = oamDMAAddr
	c.oamDMAWait = oamDMAWait
	c.oamDMAIndex = oamDMAIndex
	c.oamDMAReadPending = oamDMAReadPending
	c.oamDMALatch = oamDMALatch
	c.dmaTimestamp = dmaTimestamp
	c.jammed = jammed
	c.lastPC = lastPC
	c.stuckCounter = stuckCounter
	return nil
}
