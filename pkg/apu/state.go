package apu

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

func encodeSweep(e *codec.Encoder, s *SweepUnit) {
	e.Bool(s.Enabled)
	e.Uint8(s.Period)
	e.Bool(s.Negate)
	e.Uint8(s.Shift)
	e.Bool(s.Reload)
	e.Uint8(s.Counter)
}

func decodeSweep(d *codec.Decoder) SweepUnit {
	return SweepUnit{
		Enabled: d.Bool(),
		Period:  d.Uint8(),
		Negate:  d.Bool(),
		Shift:   d.Uint8(),
		Reload:  d.Bool(),
		Counter: d.Uint8(),
	}
}

func encodeLength(e *codec.Encoder, l *LengthCounter) {
	e.Bool(l.Enabled)
	e.Uint8(l.Value)
	e.Bool(l.Halt)
}

func decodeLength(d *codec.Decoder) LengthCounter {
	return LengthCounter{Enabled: d.Bool(), Value: d.Uint8(), Halt: d.Bool()}
}

func encodeEnvelope(e *codec.Encoder, v *EnvelopeGenerator) {
	e.Bool(v.Start)
	e.Bool(v.Loop)
	e.Bool(v.Constant)
	e.Uint8(v.Volume)
	e.Uint8(v.Counter)
	e.Uint8(v.Divider)
}

func decodeEnvelope(d *codec.Decoder) EnvelopeGenerator {
	return EnvelopeGenerator{
		Start:    d.Bool(),
		Loop:     d.Bool(),
		Constant: d.Bool(),
		Volume:   d.Uint8(),
		Counter:  d.Uint8(),
		Divider:  d.Uint8(),
	}
}

func encodePulse(e *codec.Encoder, p *PulseChannel) {
	e.Bool(p.Enabled)
	e.Uint8(p.DutyCycle)
	e.Uint8(p.Volume)
	encodeSweep(e, &p.Sweep)
	encodeLength(e, &p.Length)
	encodeEnvelope(e, &p.Envelope)
	e.Uint16(p.Timer)
	e.Uint16(p.TimerValue)
	e.Uint8(p.Sequence)
}

func decodePulse(d *codec.Decoder) PulseChannel {
	p := PulseChannel{}
	p.Enabled = d.Bool()
	p.DutyCycle = d.Uint8()
	p.Volume = d.Uint8()
	p.Sweep = decodeSweep(d)
	p.Length = decodeLength(d)
	p.Envelope = decodeEnvelope(d)
	p.Timer = d.Uint16()
	p.TimerValue = d.Uint16()
	p.Sequence = d.Uint8()
	return p
}

// EncodeState snapshots every channel and the frame sequencer. Mix (the
// mixer sink) and cpu (the interrupt/DMA wiring) are owner-supplied at
// construction and are not part of the state.
func (a *APU) EncodeState() []byte {
	e := codec.NewEncoder()
	encodePulse(e, &a.Pulse1)
	encodePulse(e, &a.Pulse2)

	e.Bool(a.Triangle.Enabled)
	e.Uint8(a.Triangle.LinearCounter)
	e.Uint8(a.Triangle.LinearReload)
	e.Bool(a.Triangle.LinearControl)
	encodeLength(e, &a.Triangle.Length)
	e.Uint16(a.Triangle.Timer)
	e.Uint16(a.Triangle.TimerValue)
	e.Uint8(a.Triangle.Sequence)

	e.Bool(a.Noise.Enabled)
	e.Uint8(a.Noise.Volume)
	encodeLength(e, &a.Noise.Length)
	encodeEnvelope(e, &a.Noise.Envelope)
	e.Uint16(a.Noise.Timer)
	e.Uint16(a.Noise.TimerValue)
	e.Uint16(a.Noise.ShiftReg)
	e.Bool(a.Noise.Mode)

	e.Bool(a.DMC.Enabled)
	e.Bool(a.DMC.IRQEnabled)
	e.Bool(a.DMC.Loop)
	e.Uint8(a.DMC.Rate)
	e.Uint16(a.DMC.Timer)
	e.Uint8(a.DMC.LoadCounter)
	e.Uint16(a.DMC.SampleAddress)
	e.Uint16(a.DMC.SampleLength)
	e.Uint16(a.DMC.CurrentAddress)
	e.Uint16(a.DMC.CurrentLength)
	e.Uint8(a.DMC.Buffer)
	e.Uint8(a.DMC.BitsRemaining)
	e.Bool(a.DMC.Silence)
	e.Uint8(a.DMC.SampleBuffer)
	e.Bool(a.DMC.BufferEmpty)

	e.Uint8(a.FrameCounter)
	e.Bool(a.FrameIRQ)
	e.Uint32(a.Cycles)
	e.Uint32(a.seq)
	e.Int(a.lastOutput)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState, leaving a untouched if
// data is truncated.
func (a *APU) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	pulse1 := decodePulse(d)
	pulse2 := decodePulse(d)

	var tri TriangleChannel
	tri.Enabled = d.Bool()
	tri.LinearCounter = d.Uint8()
	tri.LinearReload = d.Uint8()
	tri.LinearControl = d.Bool()
	tri.Length = decodeLength(d)
	tri.Timer = d.Uint16()
	tri.TimerValue = d.Uint16()
	tri.Sequence = d.Uint8()

	var noise NoiseChannel
	noise.Enabled = d.Bool()
	noise.Volume = d.Uint8()
	noise.Length = decodeLength(d)
	noise.Envelope = decodeEnvelope(d)
	noise.Timer = d.Uint16()
	noise.TimerValue = d.Uint16()
	noise.ShiftReg = d.Uint16()
	noise.Mode = d.Bool()

	var dmc DMCChannel
	dmc.Enabled = d.Bool()
	dmc.IRQEnabled = d.Bool()
	dmc.Loop = d.Bool()
	dmc.Rate = d.Uint8()
	dmc.Timer = d.Uint16()
	dmc.LoadCounter = d.Uint8()
	dmc.SampleAddress = d.Uint16()
	dmc.SampleLength = d.Uint16()
	dmc.CurrentAddress = d.Uint16()
	dmc.CurrentLength = d.Uint16()
	dmc.Buffer = d.Uint8()
	dmc.BitsRemaining = d.Uint8()
	dmc.Silence = d.Bool()
	dmc.SampleBuffer = d.Uint8()
	dmc.BufferEmpty = d.Bool()

	frameCounter := d.Uint8()
	frameIRQ := d.Bool()
	cycles := d.Uint32()
	seq := d.Uint32()
	lastOutput := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	a.Pulse1, a.Pulse2 = pulse1, pulse2
	a.Triangle = tri
	a.Noise = noise
	a.DMC = dmc
	a.FrameCounter = frameCounter
	a.FrameIRQ = frameIRQ
	a.Cycles = cycles
	a.seq = seq
	a.lastOutput = lastOutput
	return nil
}
