package mmc5

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

func encodePulse(e *codec.Encoder, p *pulse) {
	e.Uint8(p.duty)
	e.Uint8(p.volume)
	e.Bool(p.constant)
	e.Bool(p.loop)
	e.Uint16(p.timer)
	e.Int(p.timerCounter)
	e.Uint8(p.length)
	e.Bool(p.enabled)
	e.Int(p.sequenceStep)
	e.Uint8(p.envelopeVol)
	e.Bool(p.envelopeStart)
	e.Int(p.envelopeCnt)
	e.Int(p.envelopeDiv)
	e.Int(p.amplitude)
}

func decodePulse(d *codec.Decoder) pulse {
	return pulse{
		duty:          d.Uint8(),
		volume:        d.Uint8(),
		constant:      d.Bool(),
		loop:          d.Bool(),
		timer:         d.Uint16(),
		timerCounter:  d.Int(),
		length:        d.Uint8(),
		enabled:       d.Bool(),
		sequenceStep:  d.Int(),
		envelopeVol:   d.Uint8(),
		envelopeStart: d.Bool(),
		envelopeCnt:   d.Int(),
		envelopeDiv:   d.Int(),
		amplitude:     d.Int(),
	}
}

// EncodeState snapshots both pulse generators, the PCM latch, and the
// shared registers. mix is owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	encodePulse(e, &c.Pulse1)
	encodePulse(e, &c.Pulse2)
	e.Uint8(c.pcmValue)
	e.Bool(c.pcmReadMode)
	e.Uint32(c.cycle)
	e.Int(c.lastAmp)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	p1 := decodePulse(d)
	p2 := decodePulse(d)
	pcmValue := d.Uint8()
	pcmReadMode := d.Bool()
	cycle := d.Uint32()
	lastAmp := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.Pulse1, c.Pulse2 = p1, p2
	c.pcmValue = pcmValue
	c.pcmReadMode = pcmReadMode
	c.cycle = cycle
	c.lastAmp = lastAmp
	return nil
}
