package vrc7

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

// EncodeState snapshots every register and oscillator phase. mix is
// owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	for i := range c.Channels {
		ch := &c.Channels[i]
		e.Uint8(ch.fnumLow)
		e.Uint8(ch.block)
		e.Uint8(ch.fnumHigh)
		e.Bool(ch.keyOn)
		e.Uint8(ch.instr)
		e.Uint8(ch.volume)
		e.Int(ch.counter)
		e.Int(ch.step)
		e.Int(ch.amplitude)
	}
	e.Raw(c.custom[:])
	e.Uint8(c.addrReg)
	e.Bool(c.muted)
	e.Uint32(c.cycle)
	e.Uint32(c.nextClock)
	e.Int(c.lastAmp)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	var channels [numChannels]channel
	for i := range channels {
		channels[i].fnumLow = d.Uint8()
		channels[i].block = d.Uint8()
		channels[i].fnumHigh = d.Uint8()
		channels[i].keyOn = d.Bool()
		channels[i].instr = d.Uint8()
		channels[i].volume = d.Uint8()
		channels[i].counter = d.Int()
		channels[i].step = d.Int()
		channels[i].amplitude = d.Int()
	}
	var custom [8]uint8
	copy(custom[:], d.Raw(8))
	addrReg := d.Uint8()
	muted := d.Bool()
	cycle := d.Uint32()
	nextClock := d.Uint32()
	lastAmp := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.Channels = channels
	c.custom = custom
	c.addrReg = addrReg
	c.muted = muted
	c.cycle = cycle
	c.nextClock = nextClock
	c.lastAmp = lastAmp
	return nil
}
