// Package vrc6 implements the Konami VRC6 expansion audio chip: two
// pulse generators with a variable duty/square mode plus a 6-bit
// sawtooth accumulator, mixed into the console's shared BlipBuffer.
// Grounded on original_source/boards/audio/vrc6_audio.c.
package vrc6

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

type pulse struct {
	period    uint16
	counter   int
	duty      uint8
	mode      bool // digitized mode: always on regardless of duty/step
	volume    uint8
	step      int
	enabled   bool
	amplitude int
}

type sawtooth struct {
	period      uint16
	rate        uint8
	counter     int
	step        int
	accumulator int
	enabled     bool
	amplitude   int
}

// Chip is one VRC6 expansion audio unit. SwapLines mirrors the VRC6b
// board variant (mapper 26), which wires A0/A1 to the chip in swapped
// order relative to the VRC6a variant (mapper 24).
type Chip struct {
	Pulse1, Pulse2 pulse
	Saw            sawtooth
	SwapLines      bool

	periodShift uint8
	halt        bool

	cycle      uint32
	lastAmp    int
	mix        *mixer.BlipBuffer
}

// New returns a powered-off VRC6 audio chip.
func New() *Chip {
	return &Chip{}
}

// InstallAudio maps the chip's ten registers ($9000-$9003, $A000-$A002,
// $B000-$B002) onto b and attaches mix as the shared mixer sink.
func (c *Chip) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	for _, addr := range []int{0x9000, 0x9001, 0x9002, 0x9003, 0xA000, 0xA001, 0xA002, 0xB000, 0xB001, 0xB002} {
		a := addr
		b.RegisterWrite(a, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
			c.run(cycle)
			c.writeRegister(uint16(a), value)
		})
	}
}

func (c *Chip) writeRegister(addr uint16, value uint8) {
	if c.SwapLines {
		lo := addr & 3
		addr = (addr &^ 3) | ((lo >> 1) | ((lo << 1) & 2))
	}
	switch addr {
	case 0x9000:
		c.Pulse1.volume = value & 0x0F
		c.Pulse1.duty = (value >> 4) & 0x07
		c.Pulse1.mode = value&0x80 != 0
	case 0x9001:
		c.Pulse1.period = (c.Pulse1.period & 0xFF00) | uint16(value)
	case 0x9002:
		c.Pulse1.period = (c.Pulse1.period & 0x00FF) | (uint16(value&0x0F) << 8)
		c.setPulseEnabled(&c.Pulse1, value&0x80 != 0)
	case 0x9003:
		c.halt = value&0x01 != 0
		shift := (value & 0x06) << 1
		if shift == 0x0C {
			shift = 0x08
		}
		c.periodShift = shift
	case 0xA000:
		c.Pulse2.volume = value & 0x0F
		c.Pulse2.duty = (value >> 4) & 0x07
		c.Pulse2.mode = value&0x80 != 0
	case 0xA001:
		c.Pulse2.period = (c.Pulse2.period & 0xFF00) | uint16(value)
	case 0xA002:
		c.Pulse2.period = (c.Pulse2.period & 0x00FF) | (uint16(value&0x0F) << 8)
		c.setPulseEnabled(&c.Pulse2, value&0x80 != 0)
	case 0xB000:
		c.Saw.rate = value & 0x3F
	case 0xB001:
		c.Saw.period = (c.Saw.period & 0xFF00) | uint16(value)
	case 0xB002:
		c.Saw.period = (c.Saw.period & 0x00FF) | (uint16(value&0x0F) << 8)
		c.setSawEnabled(value&0x80 != 0)
	}
}

func (c *Chip) setPulseEnabled(p *pulse, enabled bool) {
	if p.enabled == enabled {
		return
	}
	if enabled {
		p.counter = c.periodCycles(p.period)
	} else {
		p.step = 15
		p.amplitude = 0
	}
	p.enabled = enabled
}

func (c *Chip) setSawEnabled(enabled bool) {
	if c.Saw.enabled == enabled {
		return
	}
	if !enabled {
		c.Saw.step = 0
		c.Saw.amplitude = 0
		c.Saw.accumulator = 0
	}
	c.Saw.enabled = enabled
}

func (c *Chip) periodCycles(period uint16) int {
	return int(period>>c.periodShift) + 1
}

// run catches the chip up to toCycle, one CPU cycle at a time.
func (c *Chip) run(toCycle bus.Cycle) {
	for c.cycle < toCycle {
		c.clockOne()
		c.cycle++
	}
}

// EndFrame rebases the chip's internal cycle counter at a video-frame
// boundary, matching vrc6_audio_end_frame.
func (c *Chip) EndFrame(cyclesInFrame bus.Cycle) {
	c.run(cyclesInFrame)
	c.cycle -= cyclesInFrame
}

func (c *Chip) clockOne() {
	c.clockPulse(&c.Pulse1)
	c.clockPulse(&c.Pulse2)
	c.clockSaw()
	c.emit()
}

func (c *Chip) clockPulse(p *pulse) {
	if !p.enabled {
		return
	}
	p.counter--
	if p.counter >= 0 {
		return
	}
	p.counter = c.periodCycles(p.period)

	active := p.mode || int(p.step) <= int(p.duty)
	if active {
		p.amplitude = -int(p.volume)
	} else {
		p.amplitude = 0
	}

	p.step--
	if p.step < 0 {
		p.step = 15
	}
}

func (c *Chip) clockSaw() {
	if !c.Saw.enabled {
		return
	}
	c.Saw.counter--
	if c.Saw.counter >= 0 {
		return
	}
	c.Saw.counter = c.periodCycles(c.Saw.period)

	c.Saw.step++
	if c.Saw.step%2 == 0 {
		c.Saw.accumulator += int(c.Saw.rate)
	}
	if c.Saw.step >= 14 {
		c.Saw.step = 0
		c.Saw.accumulator = 0
	}
	c.Saw.amplitude = -(c.Saw.accumulator >> 3)
}

// emit recomputes the chip's total output and pushes a delta into the
// shared mixer if it changed since the last cycle.
func (c *Chip) emit() {
	if c.mix == nil {
		return
	}
	out := c.Pulse1.amplitude + c.Pulse2.amplitude + c.Saw.amplitude
	if out != c.lastAmp {
		c.mix.AddDelta(c.cycle, int32(out-c.lastAmp))
		c.lastAmp = out
	}
}
