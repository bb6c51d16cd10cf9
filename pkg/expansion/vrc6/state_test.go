package vrc6

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

func TestStateRoundTrip(t *testing.T) {
	mix := mixer.NewBlipBuffer()
	mix.SetRates(1789773, 44100)
	c := New()
	c.InstallAudio(bus.NewBus(), mix)
	c.Pulse1 = pulse{period: 0x123, counter: 5, duty: 3, mode: true, volume: 8, step: 2, enabled: true, amplitude: -4}
	c.Saw = sawtooth{period: 0x321, rate: 10, counter: 3, step: 6, accumulator: 40, enabled: true, amplitude: -5}
	c.SwapLines = true
	c.periodShift = 4
	c.halt = true
	c.cycle = 999

	data := c.EncodeState()

	other := New()
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if other.Pulse1 != c.Pulse1 || other.Saw != c.Saw {
		t.Errorf("channel state mismatch: got %+v/%+v, want %+v/%+v", other.Pulse1, other.Saw, c.Pulse1, c.Saw)
	}
	if other.SwapLines != c.SwapLines || other.periodShift != c.periodShift || other.cycle != c.cycle {
		t.Errorf("chip state mismatch: got %+v, want %+v", other, c)
	}
}
