package fds

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

func encodeVolume(e *codec.Encoder, v *volumeUnit) {
	e.Bool(v.enabled)
	e.Bool(v.increase)
	e.Uint8(v.speed)
	e.Int(v.gain)
	e.Int(v.period)
	e.Int(v.counter)
}

func decodeVolume(d *codec.Decoder) volumeUnit {
	return volumeUnit{
		enabled:  d.Bool(),
		increase: d.Bool(),
		speed:    d.Uint8(),
		gain:     d.Int(),
		period:   d.Int(),
		counter:  d.Int(),
	}
}

// EncodeState snapshots the wavetable, both envelope units, the modulator,
// and the shared registers. mix is owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	encodeVolume(e, &c.Volume)
	encodeVolume(e, &c.Sweep)

	e.Raw(c.Wave.table[:])
	e.Bool(c.Wave.writable)
	e.Bool(c.Wave.enabled)
	e.Int(c.Wave.accumulator)
	e.Int(c.Wave.step)
	e.Uint16(c.Wave.unmodPitch)
	e.Uint8(c.Wave.masterVolume)

	e.Raw(c.Modulator.table[:])
	e.Int(c.Modulator.accumulator)
	e.Uint16(c.Modulator.pitch)
	e.Int(c.Modulator.step)
	e.Bool(c.Modulator.enabled)
	e.Int(c.Modulator.sweepBias)

	e.Bool(c.enabled)
	e.Bool(c.envelopesOn)
	e.Uint8(c.envelopeSpeed)
	e.Uint32(c.cycle)
	e.Int(c.lastAmp)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	volume := decodeVolume(d)
	sweep := decodeVolume(d)

	var wave waveUnit
	copy(wave.table[:], d.Raw(64))
	wave.writable = d.Bool()
	wave.enabled = d.Bool()
	wave.accumulator = d.Int()
	wave.step = d.Int()
	wave.unmodPitch = d.Uint16()
	wave.masterVolume = d.Uint8()

	var modulator modulatorUnit
	copy(modulator.table[:], d.Raw(64))
	modulator.accumulator = d.Int()
	modulator.pitch = d.Uint16()
	modulator.step = d.Int()
	modulator.enabled = d.Bool()
	modulator.sweepBias = d.Int()

	enabled := d.Bool()
	envelopesOn := d.Bool()
	envelopeSpeed := d.Uint8()
	cycle := d.Uint32()
	lastAmp := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.Volume, c.Sweep = volume, sweep
	c.Wave = wave
	c.Modulator = modulator
	c.enabled = enabled
	c.envelopesOn = envelopesOn
	c.envelopeSpeed = envelopeSpeed
	c.cycle = cycle
	c.lastAmp = lastAmp
	return nil
}
