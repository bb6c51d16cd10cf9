package n163

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
	c.ram[0x10] = 0x5A
	c.addr = 0x20
	c.autoIncrement = true
	c.nextChannel = 3
	c.lastAmp[2] = -42
	c.prevTotal = -42
	c.cycle = 321
	c.cpuLast = 7

	data := c.EncodeState()

	other := New()
	if err := other.DecodeState(data); err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if other.ram != c.ram {
		t.Errorf("ram mismatch: got %v, want %v", other.ram, c.ram)
	}
	if other.addr != c.addr || other.autoIncrement != c.autoIncrement || other.nextChannel != c.nextChannel {
		t.Errorf("addressing state mismatch: got %+v, want %+v", other, c)
	}
	if other.lastAmp != c.lastAmp || other.prevTotal != c.prevTotal || other.cycle != c.cycle {
		t.Errorf("mix state mismatch: got %+v, want %+v", other, c)
	}
}
