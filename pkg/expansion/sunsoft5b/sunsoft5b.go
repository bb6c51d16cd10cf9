// Package sunsoft5b implements the Sunsoft 5B expansion audio chip: an
// AY-3-8910-derived 3-channel tone/noise generator with a shared hardware
// envelope. Grounded on original_source/boards/audio/sunsoft5b_audio.c.
package sunsoft5b

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// volumeTable is the AY-3-8910 logarithmic 5-bit volume curve.
var volumeTable = [32]uint8{
	0x00, 0x01, 0x01, 0x02, 0x02, 0x03, 0x03, 0x04,
	0x05, 0x06, 0x07, 0x09, 0x0b, 0x0d, 0x0f, 0x12,
	0x16, 0x1a, 0x1f, 0x25, 0x2d, 0x35, 0x3f, 0x4c,
	0x5a, 0x6a, 0x7f, 0x97, 0xb4, 0xd6, 0xeb, 0xff,
}

type tone struct {
	period  uint16
	volume  uint8
	counter int
	step    int
}

type envelope struct {
	period    uint16
	counter   int
	step      int
	cont      bool
	attack    bool
	alternate bool
	hold      bool
	direction bool
	pause     bool
}

type noise struct {
	period  uint8
	seed    uint32
	counter int
	output  int
}

// Chip is one Sunsoft 5B audio unit.
type Chip struct {
	Tone     [3]tone
	Envelope envelope
	Noise    noise

	toneEnabled     [3]bool
	noiseEnabled    [3]bool
	envelopeEnabled [3]bool
	registerSelect  uint8

	cycle   uint32
	lastAmp int
	mix     *mixer.BlipBuffer
}

// New returns a powered-off Sunsoft 5B chip.
func New() *Chip {
	c := &Chip{}
	c.Noise.seed = 1
	return c
}

// InstallAudio maps the $C000 register-select and $E000 data-write ports
// onto b, mirrored across the 8 KiB windows real boards decode them over.
func (c *Chip) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterWrite(0xC000, 0x2000, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.registerSelect = value & 0x0F
	})
	b.RegisterWrite(0xE000, 0x2000, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeData(value)
	})
}

// InstallAudioNSF maps only the two exact register addresses ($C000,
// $E000) rather than InstallAudio's 8 KiB cartridge mirrors, for use by
// pkg/nsf's multi-chip install mode where a wide mirror would collide with
// another expansion chip sharing the same bus.
func (c *Chip) InstallAudioNSF(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterWrite(0xC000, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.registerSelect = value & 0x0F
	})
	b.RegisterWrite(0xE000, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeData(value)
	})
}

func (c *Chip) writeData(value uint8) {
	switch c.registerSelect {
	case 0x00, 0x02, 0x04:
		ch := c.registerSelect >> 1
		c.Tone[ch].period = (c.Tone[ch].period & 0x0F00) | uint16(value)
	case 0x01, 0x03, 0x05:
		ch := c.registerSelect >> 1
		c.Tone[ch].period = (c.Tone[ch].period & 0x00FF) | (uint16(value&0x0F) << 8)
	case 0x06:
		c.Noise.period = value & 0x1F
	case 0x07:
		c.toneEnabled[0] = value&0x01 == 0
		c.toneEnabled[1] = value&0x02 == 0
		c.toneEnabled[2] = value&0x04 == 0
		c.noiseEnabled[0] = value&0x08 == 0
		c.noiseEnabled[1] = value&0x10 == 0
		c.noiseEnabled[2] = value&0x20 == 0
	case 0x08, 0x09, 0x0A:
		ch := c.registerSelect & 0x03
		c.envelopeEnabled[ch] = value&0x10 != 0
		c.Tone[ch].volume = (value & 0x0F) << 1
	case 0x0B:
		c.Envelope.period = (c.Envelope.period & 0xFF00) | uint16(value)
	case 0x0C:
		c.Envelope.period = (c.Envelope.period & 0x00FF) | (uint16(value) << 8)
	case 0x0D:
		c.Envelope.cont = value&0x08 != 0
		c.Envelope.attack = value&0x04 != 0
		c.Envelope.alternate = value&0x02 != 0
		c.Envelope.hold = value&0x01 != 0
		c.Envelope.direction = c.Envelope.attack
		c.Envelope.pause = false
		if c.Envelope.direction {
			c.Envelope.step = 0
		} else {
			c.Envelope.step = 31
		}
	}
}

// run catches the chip up to toCycle.
func (c *Chip) run(toCycle bus.Cycle) {
	for c.cycle < toCycle {
		c.clockOne()
		c.cycle++
	}
}

// EndFrame rebases the chip's internal cycle counter at a video-frame
// boundary.
func (c *Chip) EndFrame(cyclesInFrame bus.Cycle) {
	c.run(cyclesInFrame)
	c.cycle -= cyclesInFrame
}

func (c *Chip) clockOne() {
	for i := range c.Tone {
		c.clockTone(&c.Tone[i])
	}
	c.clockNoise()
	c.clockEnvelope()
	c.emit()
}

func (c *Chip) clockTone(t *tone) {
	period := int(t.period)
	if period == 0 {
		period = 1
	}
	t.counter--
	if t.counter > 0 {
		return
	}
	t.counter = period
	t.step ^= 1
}

func (c *Chip) clockNoise() {
	period := int(c.Noise.period)
	if period == 0 {
		period = 1
	}
	c.Noise.counter--
	if c.Noise.counter > 0 {
		return
	}
	c.Noise.counter = period * 2
	bit := (c.Noise.seed ^ (c.Noise.seed >> 3)) & 1
	c.Noise.seed = (c.Noise.seed >> 1) | (bit << 16)
	c.Noise.output = int(c.Noise.seed & 1)
}

func (c *Chip) clockEnvelope() {
	period := int(c.Envelope.period)
	if period == 0 {
		period = 1
	}
	c.Envelope.counter--
	if c.Envelope.counter > 0 {
		return
	}
	c.Envelope.counter = period * 16

	if c.Envelope.pause {
		return
	}

	if c.Envelope.direction {
		c.Envelope.step++
	} else {
		c.Envelope.step--
	}

	if c.Envelope.step > 31 || c.Envelope.step < 0 {
		if !c.Envelope.cont {
			c.Envelope.pause = true
			c.Envelope.step = 0
			return
		}
		if c.Envelope.hold {
			if c.Envelope.alternate {
				c.Envelope.direction = !c.Envelope.direction
			}
			c.Envelope.pause = true
			if c.Envelope.direction {
				c.Envelope.step = 0
			} else {
				c.Envelope.step = 31
			}
			return
		}
		if c.Envelope.alternate {
			c.Envelope.direction = !c.Envelope.direction
		}
		if c.Envelope.direction {
			c.Envelope.step = 0
		} else {
			c.Envelope.step = 31
		}
	}
}

func (c *Chip) envelopeVolume() uint8 {
	step := c.Envelope.step
	if step < 0 {
		step = 0
	}
	if step > 31 {
		step = 31
	}
	return volumeTable[step]
}

// emit recomputes the chip's total output and pushes a delta into the
// shared mixer if it changed since the last cycle.
//
// Open question resolved here: the original write handler's case 0x0D
// falls through to an unreachable amplitude-update call after its break
// statement (a bug in the upstream board code, not an intentional
// hardware quirk), so rather than reproduce that dead code this chip
// recomputes amplitude unconditionally every cycle via clockOne/emit
// instead of only on specific register writes.
func (c *Chip) emit() {
	if c.mix == nil {
		return
	}
	out := 0
	for ch := 0; ch < 3; ch++ {
		active := (c.toneEnabled[ch] && c.Tone[ch].step != 0) || (c.noiseEnabled[ch] && c.Noise.output != 0)
		if !c.toneEnabled[ch] && !c.noiseEnabled[ch] {
			active = true
		}
		if !active {
			continue
		}
		volume := uint8(c.Tone[ch].volume)
		if c.envelopeEnabled[ch] {
			volume = c.envelopeVolume()
		} else {
			volume = volumeTable[volume&0x1F]
		}
		out += int(volume)
	}
	if out != c.lastAmp {
		c.mix.AddDelta(c.cycle, int32(out-c.lastAmp))
		c.lastAmp = out
	}
}
