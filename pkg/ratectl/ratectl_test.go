package ratectl

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/config"
)

const ntscFrameRate = 60.0988

func TestUpdateWithinBandMakesNoAdjustment(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, ntscFrameRate)
	mid := (c.lowWatermark + c.highWatermark) / 2
	rate := c.Update(mid)
	if rate != c.sampleRate {
		t.Errorf("expected no adjustment in-band, got rate %v want %v", rate, c.sampleRate)
	}
}

func TestUpdateIgnoresSingleFrameBlip(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, ntscFrameRate)
	rate := c.Update(0) // single frame far under the low watermark
	if rate != c.sampleRate {
		t.Errorf("a single frame outside the band should not yet adjust, got %v want %v", rate, c.sampleRate)
	}
}

func TestUpdateAppliesOnConsistentDirection(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, ntscFrameRate)
	c.Update(0) // arm a candidate "too low" run
	rate := c.Update(0)
	if rate <= c.sampleRate {
		t.Errorf("expected an upward rate correction after a consistent deficit, got %v", rate)
	}
}

func TestAdjustmentClampedToMax(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, ntscFrameRate)
	for i := 0; i < 10000; i++ {
		c.Update(0)
	}
	maxRate := c.sampleRate * (1 + c.maxAdjustment)
	if c.EffectiveRate() > maxRate+1e-9 {
		t.Errorf("adjustment exceeded configured max: got %v, ceiling %v", c.EffectiveRate(), maxRate)
	}
}

func TestResetClearsAccumulatedAdjustment(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, ntscFrameRate)
	c.Update(0)
	c.Update(0)
	c.Reset()
	if c.EffectiveRate() != c.sampleRate {
		t.Errorf("Reset should clear the adjustment, got rate %v want %v", c.EffectiveRate(), c.sampleRate)
	}
}
