package sunsoft5b

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

// EncodeState snapshots the tone/noise/envelope generators and the channel
// enable/select registers. mix is owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	for _, t := range c.Tone {
		e.Uint16(t.period)
		e.Uint8(t.volume)
		e.Int(t.counter)
		e.Int(t.step)
	}

	e.Uint16(c.Envelope.period)
	e.Int(c.Envelope.counter)
	e.Int(c.Envelope.step)
	e.Bool(c.Envelope.cont)
	e.Bool(c.Envelope.attack)
	e.Bool(c.Envelope.alternate)
	e.Bool(c.Envelope.hold)
	e.Bool(c.Envelope.direction)
	e.Bool(c.Envelope.pause)

	e.Uint8(c.Noise.period)
	e.Uint32(c.Noise.seed)
	e.Int(c.Noise.counter)
	e.Int(c.Noise.output)

	for _, v := range c.toneEnabled {
		e.Bool(v)
	}
	for _, v := range c.noiseEnabled {
		e.Bool(v)
	}
	for _, v := range c.envelopeEnabled {
		e.Bool(v)
	}
	e.Uint8(c.registerSelect)
	e.Uint32(c.cycle)
	e.Int(c.lastAmp)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	var tones [3]tone
	for i := range tones {
		tones[i].period = d.Uint16()
		tones[i].volume = d.Uint8()
		tones[i].counter = d.Int()
		tones[i].step = d.Int()
	}

	var env envelope
	env.period = d.Uint16()
	env.counter = d.Int()
	env.step = d.Int()
	env.cont = d.Bool()
	env.attack = d.Bool()
	env.alternate = d.Bool()
	env.hold = d.Bool()
	env.direction = d.Bool()
	env.pause = d.Bool()

	var noise noise
	noise.period = d.Uint8()
	noise.seed = d.Uint32()
	noise.counter = d.Int()
	noise.output = d.Int()

	var toneEnabled, noiseEnabled, envelopeEnabled [3]bool
	for i := range toneEnabled {
		toneEnabled[i] = d.Bool()
	}
	for i := range noiseEnabled {
		noiseEnabled[i] = d.Bool()
	}
	for i := range envelopeEnabled {
		envelopeEnabled[i] = d.Bool()
	}
	registerSelect := d.Uint8()
	cycle := d.Uint32()
	lastAmp := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.Tone = tones
	c.Envelope = env
	c.Noise = noise
	c.toneEnabled = toneEnabled
	c.noiseEnabled = noiseEnabled
	c.envelopeEnabled = envelopeEnabled
	c.registerSelect = registerSelect
	c.cycle = cycle
	c.lastAmp = lastAmp
	return nil
}
