package mmc5

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
	c.Pulse1 = pulse{duty: 2, volume: 15, constant: true, timer: 0x123, timerCounter: 5, length: 20, enabled: true, sequenceStep: 3, amplitude: 7}
	c.pcmValue = 0x88
	c.pcmReadMode = true
	c.cycle = 555

	data := c.EncodeState()

	other := New()
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if other.Pulse1 != c.Pulse1 {
		t.Errorf("pulse mismatch: got %+v, want %+v", other.Pulse1, c.Pulse1)
	}
	if other.pcmValue != c.pcmValue || other.pcmReadMode != c.pcmReadMode || other.cycle != c.cycle {
		t.Errorf("chip state mismatch: got %+v, want %+v", other, c)
	}
}
