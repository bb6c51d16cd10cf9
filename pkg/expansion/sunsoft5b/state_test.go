package sunsoft5b

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
	c.Tone[0] = tone{period: 0x123, volume: 10, counter: 5, step: 1}
	c.Envelope = envelope{period: 0x55, counter: 2, step: 9, cont: true, attack: true, direction: true}
	c.Noise = noise{period: 7, seed: 0xABCD, counter: 2, output: 1}
	c.toneEnabled[1] = true
	c.registerSelect = 0x0B
	c.cycle = 246

	data := c.EncodeState()

	other := New()
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if other.Tone != c.Tone || other.Envelope != c.Envelope || other.Noise != c.Noise {
		t.Errorf("generator state mismatch: got %+v/%+v/%+v, want %+v/%+v/%+v",
			other.Tone, other.Envelope, other.Noise, c.Tone, c.Envelope, c.Noise)
	}
	if other.toneEnabled != c.toneEnabled || other.registerSelect != c.registerSelect || other.cycle != c.cycle {
		t.Errorf("chip state mismatch: got %+v, want %+v", other, c)
	}
}
