// Package mmc5 implements the MMC5 expansion audio unit: two pulse
// channels identical to the base APU's pulses but without a sweep unit,
// plus a raw PCM output channel. Grounded on
// original_source/boards/audio/mmc5_audio.c.
package mmc5

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

type pulse struct {
	duty          uint8
	volume        uint8
	constant      bool
	loop          bool
	timer         uint16
	timerCounter  int
	length        uint8
	enabled       bool
	sequenceStep  int
	envelopeVol   uint8
	envelopeStart bool
	envelopeCnt   int
	envelopeDiv   int
	amplitude     int
}

// Chip is one MMC5 audio unit.
type Chip struct {
	Pulse1, Pulse2 pulse
	pcmValue       uint8
	pcmReadMode    bool

	cycle   uint32
	lastAmp int
	mix     *mixer.BlipBuffer
}

// New returns a powered-off MMC5 audio unit.
func New() *Chip {
	return &Chip{}
}

// InstallAudio maps $5000-$5007 (pulse 1/2), $5010-$5011 (PCM) and $5015
// (channel enable) onto b.
func (c *Chip) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterWrite(0x5000, 8, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeRegister(addr, value)
	})
	b.RegisterWrite(0x5010, 2, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeRegister(addr, value)
	})
	b.RegisterRead(0x5010, 2, 0, func(addr uint16, cycle bus.Cycle) uint8 {
		c.run(cycle)
		if addr == 0x5010 {
			return c.pcmValue
		}
		return 0
	})
	b.RegisterWrite(0x5015, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Pulse1.enabled = value&0x01 != 0
		c.Pulse2.enabled = value&0x02 != 0
		if !c.Pulse1.enabled {
			c.Pulse1.length = 0
		}
		if !c.Pulse2.enabled {
			c.Pulse2.length = 0
		}
	})
	b.RegisterRead(0x5015, 1, 0, func(_ uint16, cycle bus.Cycle) uint8 {
		c.run(cycle)
		status := uint8(0)
		if c.Pulse1.length > 0 {
			status |= 0x01
		}
		if c.Pulse2.length > 0 {
			status |= 0x02
		}
		return status
	})
}

func (c *Chip) writeRegister(addr uint16, value uint8) {
	switch {
	case addr >= 0x5000 && addr <= 0x5003:
		c.writePulse(&c.Pulse1, addr-0x5000, value)
	case addr >= 0x5004 && addr <= 0x5007:
		c.writePulse(&c.Pulse2, addr-0x5004, value)
	case addr == 0x5010:
		c.pcmReadMode = value&0x01 != 0
	case addr == 0x5011:
		if !c.pcmReadMode {
			c.pcmValue = value
		}
	}
}

func (c *Chip) writePulse(p *pulse, reg uint16, value uint8) {
	switch reg {
	case 0:
		p.duty = (value >> 6) & 0x03
		p.loop = value&0x20 != 0
		p.constant = value&0x10 != 0
		p.volume = value & 0x0F
	case 2:
		p.timer = (p.timer & 0xFF00) | uint16(value)
	case 3:
		p.timer = (p.timer & 0x00FF) | (uint16(value&0x07) << 8)
		if p.enabled {
			p.length = lengthTable[(value>>3)&0x1F]
		}
		p.envelopeStart = true
		p.sequenceStep = 0
	}
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// run catches the chip up to toCycle; pulses tick at half the CPU clock
// like the base APU's pulse channels.
func (c *Chip) run(toCycle bus.Cycle) {
	for c.cycle < toCycle {
		if c.cycle%2 == 0 {
			c.clockPulse(&c.Pulse1)
			c.clockPulse(&c.Pulse2)
		}
		c.emit()
		c.cycle++
	}
}

// EndFrame rebases the chip's internal cycle counter at a video-frame
// boundary.
func (c *Chip) EndFrame(cyclesInFrame bus.Cycle) {
	c.run(cyclesInFrame)
	c.cycle -= cyclesInFrame
}

func (c *Chip) clockPulse(p *pulse) {
	if !p.enabled || p.length == 0 || p.timer < 8 {
		p.amplitude = 0
		return
	}
	p.timerCounter--
	if p.timerCounter > 0 {
		return
	}
	p.timerCounter = int(p.timer) + 1

	volume := p.volume
	if !p.constant {
		volume = p.envelopeVol
	}

	if dutyTable[p.duty][p.sequenceStep] != 0 {
		p.amplitude = int(volume)
	} else {
		p.amplitude = 0
	}

	p.sequenceStep = (p.sequenceStep + 1) & 7
}

// emit mixes the two pulses and the raw PCM channel and pushes a delta
// into the shared mixer when it changes, reusing the same pulse mixing
// curve as the base APU (mixer.PulseMix) so MMC5's pulses blend with its
// PCM channel the way the original's shared non-linear mixer does.
func (c *Chip) emit() {
	if c.mix == nil {
		return
	}
	out := mixer.PulseMix(c.Pulse1.amplitude+c.Pulse2.amplitude) + int(c.pcmValue)
	if out != c.lastAmp {
		c.mix.AddDelta(c.cycle, int32(out-c.lastAmp))
		c.lastAmp = out
	}
}
