package apu

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/mixer"
)

func TestAPUStateRoundTrip(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4000, 0xBF)
	a.WriteRegister(0x4002, 0x34)
	a.WriteRegister(0x4003, 0x12)
	a.WriteRegister(0x4015, 0x1F)
	a.Run(1000)

	data := a.EncodeState()

	other := New(mixer.NewBlipBuffer())
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}

	if other.Pulse1 != a.Pulse1 {
		t.Errorf("Pulse1 mismatch: got %+v, want %+v", other.Pulse1, a.Pulse1)
	}
	if other.Cycles != a.Cycles {
		t.Errorf("Cycles mismatch: got %d, want %d", other.Cycles, a.Cycles)
	}
	if other.FrameCounter != a.FrameCounter {
		t.Errorf("FrameCounter mismatch: got %d, want %d", other.FrameCounter, a.FrameCounter)
	}
}

func TestAPUStateTruncatedReturnsError(t *testing.T) {
	other := New(mixer.NewBlipBuffer())
	if err := other.DecodeState(nil); err == nil {
		t.Fatal("expected an error decoding empty state")
	}
}
