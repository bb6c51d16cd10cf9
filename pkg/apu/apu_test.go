package apu

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

func newTestAPU() *APU {
	blip := mixer.NewBlipBuffer()
	blip.SetRates(1789773, 44100)
	a := New(blip)
	a.Reset()
	return a
}

func TestAPUCreation(t *testing.T) {
	a := newTestAPU()
	if a.Cycles != 0 {
		t.Errorf("expected cycles=0, got %d", a.Cycles)
	}
	if a.FrameIRQ {
		t.Error("frame IRQ should be false initially")
	}
}

func TestPulseChannelRegisters(t *testing.T) {
	a := newTestAPU()

	a.WriteRegister(0x4000, 0xBF) // duty=10, envelope loop, constant, volume=15
	if a.Pulse1.DutyCycle != 2 {
		t.Errorf("expected duty cycle=2, got %d", a.Pulse1.DutyCycle)
	}
	if !a.Pulse1.Length.Halt {
		t.Error("length halt should be true")
	}
	if !a.Pulse1.Envelope.Constant {
		t.Error("envelope constant should be true")
	}
	if a.Pulse1.Volume != 15 {
		t.Errorf("expected volume=15, got %d", a.Pulse1.Volume)
	}

	a.WriteRegister(0x4001, 0x88)
	if !a.Pulse1.Sweep.Enabled || !a.Pulse1.Sweep.Negate {
		t.Error("sweep enabled/negate not set")
	}

	a.WriteRegister(0x4002, 0x55)
	a.WriteRegister(0x4003, 0x12)
	if a.Pulse1.TimerValue != 0x255 {
		t.Errorf("expected timer=0x255, got %04X", a.Pulse1.TimerValue)
	}
}

func TestStatusRegisterEnablesAndClearsLength(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x1F)
	if !a.Pulse1.Enabled || !a.Pulse2.Enabled || !a.Triangle.Enabled || !a.Noise.Enabled || !a.DMC.Enabled {
		t.Fatal("all channels should be enabled")
	}

	a.WriteRegister(0x4003, 0x08)
	if a.Pulse1.Length.Value == 0 {
		t.Fatal("length counter should have loaded")
	}

	a.WriteRegister(0x4015, 0x00)
	if a.Pulse1.Length.Value != 0 {
		t.Error("disabling a channel should clear its length counter")
	}
}

func TestEnvelopeGeneratorCycle(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4000, 0x08)
	a.WriteRegister(0x4003, 0x08)
	if a.Pulse1.Envelope.Counter != 0 {
		t.Errorf("envelope should start at 0, got %d", a.Pulse1.Envelope.Counter)
	}
	for i := 0; i < 16; i++ {
		a.stepEnvelope(&a.Pulse1.Envelope)
	}
	if a.Pulse1.Envelope.Counter != 14 {
		t.Errorf("expected envelope counter=14 after 16 steps, got %d", a.Pulse1.Envelope.Counter)
	}
}

func TestFrameSequencerRaisesIRQ(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x00) // 4-step mode, IRQ enabled
	a.Run(29830)
	if !a.FrameIRQ {
		t.Fatal("4-step frame sequencer should raise the frame IRQ at its last step")
	}
}

func TestFrameSequencerIRQInhibit(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x40) // IRQ inhibit
	a.Run(29830)
	if a.FrameIRQ {
		t.Fatal("frame IRQ should stay clear when the inhibit bit is set")
	}
}

func TestFiveStepModeNeverRaisesIRQ(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x80)
	a.Run(40000)
	if a.FrameIRQ {
		t.Fatal("5-step mode never raises the frame IRQ")
	}
}

func TestPulseOutputMuteConditions(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0x5F) // duty=01, constant, vol=15
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x01) // timer=0x100, length loaded

	a.Pulse1.Sequence = 1 // duty step that outputs 1 for 25% duty
	if out := a.getPulseOutput(&a.Pulse1); out == 0 {
		t.Error("expected non-zero pulse output")
	}

	a.WriteRegister(0x4015, 0x00)
	if out := a.getPulseOutput(&a.Pulse1); out != 0 {
		t.Errorf("disabled channel should output 0, got %d", out)
	}
}

func TestRunEmitsDeltasOnOutputChange(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0x1F) // constant volume, max
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x01)

	before := a.Mix.SamplesAvailable()
	a.Run(5000)
	a.EndFrame(5000)
	if a.Mix.SamplesAvailable() <= before {
		t.Fatal("running the APU with an active pulse channel should produce samples")
	}
}

type fakeCPU struct {
	scheduled map[int]bus.Cycle
	acked     map[int]bool
	dmaAddr   uint16
	loadFn    func(uint8)
}

func newFakeCPU() *fakeCPU {
	return &fakeCPU{scheduled: map[int]bus.Cycle{}, acked: map[int]bool{}}
}

func (f *fakeCPU) InterruptSchedule(line int, cycle bus.Cycle) { f.scheduled[line] = cycle }
func (f *fakeCPU) InterruptAck(line int) bool {
	f.acked[line] = true
	return true
}
func (f *fakeCPU) SetDMCDMATimestamp(cycle bus.Cycle, addr uint16, immediate bool) {
	f.dmaAddr = addr
	if f.loadFn != nil {
		f.loadFn(0xAB) // simulate an immediate DMA completion for the test
	}
}
func (f *fakeCPU) SetDMCLoadCallback(fn func(uint8)) { f.loadFn = fn }

func TestDMCRequestsDMAWhenBufferEmpty(t *testing.T) {
	a := newTestAPU()
	fc := newFakeCPU()
	a.AttachCPU(fc)

	a.WriteRegister(0x4010, 0x00)
	a.WriteRegister(0x4012, 0x00) // sample address = 0xC000
	a.WriteRegister(0x4013, 0x00) // sample length = 1
	a.WriteRegister(0x4015, 0x10) // enable DMC

	a.stepDMCSample()
	if fc.dmaAddr != 0xC000 {
		t.Fatalf("expected DMA request at 0xC000, got %04X", fc.dmaAddr)
	}
	if a.DMC.SampleBuffer != 0xAB {
		t.Fatalf("expected sample buffer loaded with 0xAB, got %02X", a.DMC.SampleBuffer)
	}
}
