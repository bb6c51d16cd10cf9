package vrc6

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

func encodePulse(e *codec.Encoder, p *pulse) {
	e.Uint16(p.period)
	e.Int(p.counter)
	e.Uint8(p.duty)
	e.Bool(p.mode)
	e.Uint8(p.volume)
	e.Int(p.step)
	e.Bool(p.enabled)
	e.Int(p.amplitude)
}

func decodePulse(d *codec.Decoder) pulse {
	return pulse{
		period:    d.Uint16(),
		counter:   d.Int(),
		duty:      d.Uint8(),
		mode:      d.Bool(),
		volume:    d.Uint8(),
		step:      d.Int(),
		enabled:   d.Bool(),
		amplitude: d.Int(),
	}
}

// EncodeState snapshots both pulse generators, the sawtooth, and the chip's
// shared registers. mix is owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	encodePulse(e, &c.Pulse1)
	encodePulse(e, &c.Pulse2)

	e.Uint16(c.Saw.period)
	e.Uint8(c.Saw.rate)
	e.Int(c.Saw.counter)
	e.Int(c.Saw.step)
	e.Int(c.Saw.accumulator)
	e.Bool(c.Saw.enabled)
	e.Int(c.Saw.amplitude)

	e.Bool(c.SwapLines)
	e.Uint8(c.periodShift)
	e.Bool(c.halt)
	e.Uint32(c.cycle)
	e.Int(c.lastAmp)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	p1 := decodePulse(d)
	p2 := decodePulse(d)

	var saw sawtooth
	saw.period = d.Uint16()
	saw.rate = d.Uint8()
	saw.counter = d.Int()
	saw.step = d.Int()
	saw.accumulator = d.Int()
	saw.enabled = d.Bool()
	saw.amplitude = d.Int()

	swapLines := d.Bool()
	periodShift := d.Uint8()
	halt := d.Bool()
	cycle := d.Uint32()
	lastAmp := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.Pulse1, c.Pulse2 = p1, p2
	c.Saw = saw
	c.SwapLines = swapLines
	c.periodShift = periodShift
	c.halt = halt
	c.cycle = cycle
	c.lastAmp = lastAmp
	return nil
}
