// Package fds implements the Famicom Disk System's expansion audio unit:
// a 64-entry 6-bit wavetable oscillator, a volume envelope, a sweep
// envelope and a modulator unit. The wave oscillator's pitch is the
// $4082/$4083 frequency plus the signed $4085 bias; the modulator's table
// and accumulator are written and clocked but do not feed into the pitch,
// and the sweep envelope's gain is not applied to it.
// Grounded on original_source/boards/audio/fds_audio.c.
//
// This package covers audio only, not the FDS's disk-drive/BIOS
// subsystem (RAM adapter loading, motor control, disk-change IRQ) — that
// belongs to a disk-image loader, out of scope for an expansion audio
// chip. A cartridge loaded through an FDS-formatted image is expected to
// already be flattened into a flat PRG RAM image by the loader, matching
// how this core's other mappers receive pre-parsed PRG/CHR slices.
package fds

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

type volumeUnit struct {
	enabled  bool
	increase bool
	speed    uint8
	gain     int
	period   int
	counter  int
}

type waveUnit struct {
	table          [64]uint8
	writable       bool
	enabled        bool
	accumulator    int
	step           int
	unmodPitch     uint16
	masterVolume   uint8
}

type modulatorUnit struct {
	table      [64]uint8
	accumulator int
	pitch      uint16
	step       int
	enabled    bool
	sweepBias  int
}

// Chip is one FDS audio unit.
type Chip struct {
	Volume   volumeUnit
	Sweep    volumeUnit
	Wave     waveUnit
	Modulator modulatorUnit

	enabled       bool
	envelopesOn   bool
	envelopeSpeed uint8

	cycle   uint32
	lastAmp int
	mix     *mixer.BlipBuffer
}

// New returns a powered-off FDS audio unit.
func New() *Chip {
	return &Chip{enabled: true, envelopeSpeed: 0xE8}
}

// InstallAudio maps the 64-byte wavetable window ($4040-$407F) and the
// envelope/frequency/modulator control registers ($4080-$408A) onto b.
func (c *Chip) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterRead(0x4040, 0x40, 0, func(addr uint16, cycle bus.Cycle) uint8 {
		c.run(cycle)
		return c.Wave.table[addr-0x4040]
	})
	b.RegisterWrite(0x4040, 0x40, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		if c.Wave.writable {
			c.Wave.table[addr-0x4040] = value & 0x3F
		}
	})
	b.RegisterWrite(0x4080, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Volume.increase = value&0x40 != 0
		c.Volume.enabled = value&0x80 == 0
		c.Volume.speed = value & 0x3F
		if !c.Volume.enabled {
			c.Volume.gain = int(value & 0x3F)
		}
		c.Volume.counter = 0
		c.Volume.period = (int(c.Volume.speed) + 1) * 8 * int(c.envelopeSpeed)
	})
	b.RegisterRead(0x4090, 1, 0, func(_ uint16, cycle bus.Cycle) uint8 {
		c.run(cycle)
		return uint8(c.Volume.gain)
	})
	b.RegisterWrite(0x4082, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Wave.unmodPitch = (c.Wave.unmodPitch & 0xFF00) | uint16(value)
	})
	b.RegisterWrite(0x4083, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Wave.unmodPitch = (c.Wave.unmodPitch & 0x00FF) | (uint16(value&0x0F) << 8)
		c.envelopesOn = value&0x40 == 0
		if !c.envelopesOn {
			c.Volume.counter = 0
			c.Sweep.counter = 0
		}
		if value&0x80 != 0 {
			c.Wave.step = 0
			c.Wave.accumulator = 0
		}
		c.Wave.enabled = value&0x80 == 0
	})
	b.RegisterWrite(0x4084, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Sweep.increase = value&0x40 != 0
		c.Sweep.enabled = value&0x80 == 0
		c.Sweep.speed = value & 0x3F
		if !c.Sweep.enabled {
			c.Sweep.gain = int(value & 0x3F)
		}
		c.Sweep.counter = 0
		c.Sweep.period = (int(c.Sweep.speed) + 1) * 8 * int(c.envelopeSpeed)
	})
	b.RegisterRead(0x4092, 1, 0, func(_ uint16, cycle bus.Cycle) uint8 {
		c.run(cycle)
		return uint8(c.Sweep.gain)
	})
	b.RegisterWrite(0x4085, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		bias := int(value & 0x7F)
		if bias >= 0x40 {
			bias -= 127
		}
		c.Modulator.sweepBias = bias
	})
	b.RegisterWrite(0x4086, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Modulator.pitch = (c.Modulator.pitch & 0xFF00) | uint16(value)
	})
	b.RegisterWrite(0x4087, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Modulator.pitch = (c.Modulator.pitch & 0x00FF) | (uint16(value&0x0F) << 8)
		c.Modulator.enabled = value&0x80 == 0
		if value&0x80 != 0 {
			c.Modulator.accumulator = 0
		}
	})
	b.RegisterWrite(0x4088, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		if c.Modulator.enabled {
			return
		}
		v := value & 0x07
		idx := c.Modulator.step
		c.Modulator.table[idx] = v
		idx = (idx + 1) & 0x3F
		c.Modulator.table[idx] = v
		c.Modulator.step = (idx + 1) & 0x3F
	})
	b.RegisterWrite(0x4089, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.Wave.writable = value&0x80 != 0
		c.Wave.masterVolume = value & 0x03
	})
	b.RegisterWrite(0x408A, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.envelopeSpeed = value
		c.Volume.counter = 0
		c.Sweep.counter = 0
		c.Volume.period = (int(c.Volume.speed) + 1) * 8 * int(value)
		c.Sweep.period = (int(c.Sweep.speed) + 1) * 8 * int(value)
	})
}

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

var masterVolumeDivisor = [4]int{1, 1, 2, 4}

func (c *Chip) clockOne() {
	c.clockEnvelope(&c.Volume)
	c.clockEnvelope(&c.Sweep)
	c.clockModulator()
	c.clockWave()
	c.emit()
}

func (c *Chip) clockEnvelope(v *volumeUnit) {
	if !c.envelopesOn || !v.enabled || v.period == 0 {
		return
	}
	v.counter++
	if v.counter < v.period {
		return
	}
	v.counter = 0
	if v.increase {
		if v.gain < 32 {
			v.gain++
		}
	} else if v.gain > 0 {
		v.gain--
	}
}

func (c *Chip) clockModulator() {
	if !c.Modulator.enabled || c.Modulator.pitch == 0 {
		return
	}
	c.Modulator.accumulator += int(c.Modulator.pitch)
	c.Modulator.accumulator &= 0xFFFFF
}

func (c *Chip) clockWave() {
	if !c.Wave.enabled || c.Wave.unmodPitch == 0 {
		return
	}
	pitch := int(c.Wave.unmodPitch) + c.Modulator.sweepBias
	if pitch <= 0 {
		return
	}
	c.Wave.accumulator += pitch
	if c.Wave.accumulator >= 0x10000*64 {
		c.Wave.accumulator -= 0x10000 * 64
	}
	c.Wave.step = (c.Wave.accumulator >> 16) & 0x3F
}

// emit recomputes the chip's output sample (wave table lookup scaled by
// the volume envelope and master-volume divider) and pushes a delta into
// the shared mixer if it changed.
func (c *Chip) emit() {
	if c.mix == nil || !c.enabled {
		return
	}
	sample := int(c.Wave.table[c.Wave.step])
	gain := c.Volume.gain
	if gain > 32 {
		gain = 32
	}
	amp := sample * gain / masterVolumeDivisor[c.Wave.masterVolume]
	if amp != c.lastAmp {
		c.mix.AddDelta(c.cycle, int32(amp-c.lastAmp))
		c.lastAmp = amp
	}
}
