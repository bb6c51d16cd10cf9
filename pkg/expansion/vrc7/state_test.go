package vrc7

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
	c.Channels[0] = channel{fnumLow: 0x55, block: 3, keyOn: true, instr: 2, volume: 5, counter: 10, step: 1, amplitude: 4}
	c.custom[0] = 0xAB
	c.addrReg = 0x12
	c.muted = true
	c.cycle = 777

	data := c.EncodeState()

	other := New()
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if other.Channels != c.Channels {
		t.Errorf("channels mismatch: got %+v, want %+v", other.Channels, c.Channels)
	}
	if other.custom != c.custom || other.addrReg != c.addrReg || other.muted != c.muted || other.cycle != c.cycle {
		t.Errorf("chip state mismatch: got %+v, want %+v", other, c)
	}
}
