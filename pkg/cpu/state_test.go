package cpu

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/bus"
)

func TestCPUStateRoundTrip(t *testing.T) {
	b := bus.NewBus()
	c := New(b, 12)
	c.A, c.X, c.Y, c.SP, c.PC, c.P = 0x11, 0x22, 0x33, 0xF0, 0xABCD, 0x65
	c.Cycles = 12345
	c.FrameCycles = 999
	c.InterruptSchedule(IRQAPUFrame, 500)
	c.oamDMAActive = true
	c.oamDMAWait = 2
	c.lastPC = 0x1234
	c.stuckCounter = 7

	data := c.EncodeState()

	other := New(bus.NewBus(), 12)
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}

	if other.A != c.A || other.X != c.X || other.Y != c.Y || other.SP != c.SP || other.PC != c.PC || other.P != c.P {
		t.Errorf("registers mismatch: got %+v, want %+v", other, c)
	}
	if other.Cycles != c.Cycles || other.FrameCycles != c.FrameCycles {
		t.Errorf("cycles mismatch: got %d/%d, want %d/%d", other.Cycles, other.FrameCycles, c.Cycles, c.FrameCycles)
	}
	if other.interruptTimes != c.interruptTimes {
		t.Errorf("interrupt times mismatch: got %v, want %v", other.interruptTimes, c.interruptTimes)
	}
	if other.oamDMAActive != c.oamDMAActive || other.oamDMAWait != c.oamDMAWait {
		t.Errorf("oam dma mismatch: got %v/%d, want %v/%d", other.oamDMAActive, other.oamDMAWait, c.oamDMAActive, c.oamDMAWait)
	}
	if other.lastPC != c.lastPC || other.stuckCounter != c.stuckCounter {
		t.Errorf("debug state mismatch: got %04X/%d, want %04X/%d", other.lastPC, other.stuckCounter, c.lastPC, c.stuckCounter)
	}
}

func TestCPUStateTruncatedLeavesDestinationUntouched(t *testing.T) {
	b := bus.NewBus()
	c := New(b, 12)
	c.A = 0x42

	other := New(bus.NewBus(), 12)
	other.A = 0x99
	if err := other.DecodeState([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error decoding a truncated buffer")
	}
	if other.A != 0x99 {
		t.Errorf("destination was mutated by a failed decode: A=%#x", other.A)
	}
}
