// Package config holds the emulator's runtime configuration: audio output
// shape, TV region, rate-controller tuning, and per-expansion-chip enable
// flags. It is a plain validated struct rather than a tag-driven decoder;
// nothing in this module's pack reaches for viper/flag-style config
// libraries, so explicit construction plus a Validate method matches the
// teacher's own preference for explicit constructors over reflection-based
// wiring.
package config

import (
	"fmt"

	"github.com/yoshiomiyamaegones/pkg/bus"
)

// Channels selects mono or stereo PCM output.
type Channels int

const (
	ChannelsMono Channels = iota
	ChannelsStereo
)

// ExpansionChips toggles which expansion-audio boards pkg/nsf's multi-chip
// install mode wires onto the bus. A cartridge mapper ignores these flags
// entirely (it only ever carries the one chip its board actually has); NSF
// playback is the only consumer that needs to disable a chip to keep two
// boards' overlapping register windows from fighting each other.
type ExpansionChips struct {
	VRC6      bool
	VRC7      bool
	FDS       bool
	MMC5      bool
	Namco163  bool
	Sunsoft5B bool
}

// Config is the full set of knobs the host (GUI, headless runner, or NSF
// player) needs to stand up a console.
type Config struct {
	SampleRate int
	Channels   Channels
	Region     bus.Region

	// LowWatermarkFrames and BufferRangeFrames size pkg/ratectl's target
	// window, expressed in output frames (one frame = SampleRate/60-ish
	// samples), matching original_source/include/io.h's low_watermark /
	// buffer_target naming.
	LowWatermarkFrames int
	BufferRangeFrames  int

	// MaxAdjustmentPercent caps the rate controller's total correction,
	// expressed as a percentage of the nominal sample rate (spec.md §4.6's
	// "configurable max, typically ±0.5%").
	MaxAdjustmentPercent float64

	Expansion ExpansionChips
}

// Default returns an NTSC, stereo, 44100Hz configuration with every
// expansion chip enabled (the right default for cartridge play, where the
// mapper itself already determines which single chip, if any, is
// installed) and the rate controller's typical ±0.5% ceiling.
func Default() Config {
	return Config{
		SampleRate:           44100,
		Channels:             ChannelsStereo,
		Region:               bus.RegionNTSC,
		LowWatermarkFrames:   2,
		BufferRangeFrames:    4,
		MaxAdjustmentPercent: 0.5,
		Expansion: ExpansionChips{
			VRC6: true, VRC7: true, FDS: true,
			MMC5: true, Namco163: true, Sunsoft5B: true,
		},
	}
}

// Validate reports the first configuration error found, if any.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels != ChannelsMono && c.Channels != ChannelsStereo {
		return fmt.Errorf("config: unknown channel layout %d", c.Channels)
	}
	if c.Region != bus.RegionNTSC && c.Region != bus.RegionPAL && c.Region != bus.RegionDendy {
		return fmt.Errorf("config: unknown region %d", c.Region)
	}
	if c.LowWatermarkFrames < 0 {
		return fmt.Errorf("config: low watermark frames must be non-negative, got %d", c.LowWatermarkFrames)
	}
	if c.BufferRangeFrames <= 0 {
		return fmt.Errorf("config: buffer range frames must be positive, got %d", c.BufferRangeFrames)
	}
	if c.MaxAdjustmentPercent <= 0 {
		return fmt.Errorf("config: max adjustment percent must be positive, got %v", c.MaxAdjustmentPercent)
	}
	return nil
}
