// Package ratectl implements the host throttle / dynamic rate controller
// from spec.md §4.6: at every audio-frame boundary it compares the
// consumer-side ring buffer's fill level against a low/high watermark pair
// and nudges the generator's effective sample rate to track host
// audio-clock drift without an audible pitch jump. Grounded on
// original_source/include/io.h's low_watermark/buffer_target naming and
// original_source/sdl/sdl_audio.c's fill-and-adjust call site.
package ratectl

import (
	"math"

	"github.com/yoshiomiyamaegones/pkg/config"
)

type direction int

const (
	dirNone direction = 0
	dirUp   direction = 1
	dirDown direction = -1
)

// stepLimit is spec.md §4.6's "clamped to ±0.1% per adjustment step".
const stepLimit = 0.001

// Controller tracks the running sample-rate correction. It is not
// goroutine-safe; callers serialize access to it the same way
// pkg/audioout serializes access to the shared BlipBuffer.
type Controller struct {
	sampleRate float64
	frameRate  float64

	lowWatermark  int
	highWatermark int
	maxAdjustment float64 // fraction of sampleRate, e.g. 0.005 for ±0.5%

	adjustment float64   // cumulative signed fraction applied so far
	dir        direction // direction of the run currently being confirmed
	frameCount int        // length of the current consistent-direction run
	lastDiff   int
}

// New builds a Controller from cfg's watermark/range-in-frames settings and
// the console's nominal frame rate (60.0988 NTSC, 50.0070 PAL, 50.0070
// Dendy), used only to convert frame counts into sample counts.
func New(cfg config.Config, frameRate float64) *Controller {
	samplesPerFrame := float64(cfg.SampleRate) / frameRate
	low := int(float64(cfg.LowWatermarkFrames) * samplesPerFrame)
	high := low + int(float64(cfg.BufferRangeFrames)*samplesPerFrame)
	return &Controller{
		sampleRate:    float64(cfg.SampleRate),
		frameRate:     frameRate,
		lowWatermark:  low,
		highWatermark: high,
		maxAdjustment: cfg.MaxAdjustmentPercent / 100,
	}
}

// Update reports samplesAvailable (the consumer-side ring buffer's current
// fill level, in samples) for the frame that just completed and returns the
// sample rate the generator should run at for the next frame.
//
// A single frame outside the watermark band only arms a candidate
// direction; the correction is applied starting the following frame, and
// only while the deficit/surplus keeps growing (or at least doesn't
// shrink) in that same direction, per spec.md §4.6's "apply only if the
// direction has been consistent ... otherwise reset the counter and wait".
func (c *Controller) Update(samplesAvailable int) float64 {
	var diff int
	dir := dirNone
	switch {
	case samplesAvailable < c.lowWatermark:
		diff, dir = c.lowWatermark-samplesAvailable, dirUp
	case samplesAvailable > c.highWatermark:
		diff, dir = samplesAvailable-c.highWatermark, dirDown
	}

	if dir == dirNone {
		c.dir, c.frameCount, c.lastDiff = dirNone, 0, 0
		return c.EffectiveRate()
	}

	consistent := dir == c.dir && diff >= c.lastDiff
	if !consistent {
		c.dir, c.frameCount, c.lastDiff = dir, 1, diff
		return c.EffectiveRate()
	}

	c.frameCount++
	c.lastDiff = diff

	step := -1.2 * (float64(diff) / float64(c.frameCount)) * c.frameRate / c.sampleRate
	step = clamp(step, -stepLimit, stepLimit)

	if dir == dirUp {
		c.adjustment += math.Abs(step)
	} else {
		c.adjustment -= math.Abs(step)
	}
	c.adjustment = clamp(c.adjustment, -c.maxAdjustment, c.maxAdjustment)
	return c.EffectiveRate()
}

// EffectiveRate returns the sample rate the controller currently
// recommends, i.e. the nominal rate plus whatever correction has
// accumulated.
func (c *Controller) EffectiveRate() float64 {
	return c.sampleRate * (1 + c.adjustment)
}

// Reset clears any accumulated correction and pending direction, used when
// the host audio device is reopened or playback restarts.
func (c *Controller) Reset() {
	c.adjustment = 0
	c.dir, c.frameCount, c.lastDiff = dirNone, 0, 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
