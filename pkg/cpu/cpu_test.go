package cpu

import (
	"testing"

	"github.com/yoshiomiyamaegones/pkg/bus"
)

// newTestCPU wires a CPU to a bus backed by flat RAM across the whole
// address space, which is enough to exercise instruction decode, the
// stack, and addressing modes without a mapper.
func newTestCPU(t *testing.T) (*CPU, []uint8) {
	t.Helper()
	b := bus.NewBus()
	ram := make([]uint8, 0x10000)
	b.Pages().SetPage(0, 0x10000, ram, 3)
	c := New(b, 12)
	c.FrameCycles = bus.CycleNever
	ram[0xFFFC] = 0x00
	ram[0xFFFD] = 0x02
	c.Reset(true)
	// Consume the synthetic RESET vectoring so tests start at $0200.
	c.stepInstruction()
	return c, ram
}

func load(ram []uint8, addr uint16, bytes ...uint8) {
	copy(ram[addr:], bytes)
}

func TestResetVectorsToResetAddress(t *testing.T) {
	c, _ := newTestCPU(t)
	if c.PC != 0x0200 {
		t.Fatalf("PC = $%04X, want $0200", c.PC)
	}
	if c.P&FlagInterrupt == 0 {
		t.Fatal("I flag should be set after reset")
	}
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	c, ram := newTestCPU(t)
	load(ram, c.PC, 0xA9, 0x00)
	c.stepInstruction()
	if c.A != 0 || !c.getFlag(FlagZero) {
		t.Fatalf("LDA #$00: A=%02X Z=%v", c.A, c.getFlag(FlagZero))
	}

	load(ram, c.PC, 0xA9, 0x80)
	c.stepInstruction()
	if c.A != 0x80 || !c.getFlag(FlagNegative) {
		t.Fatalf("LDA #$80: A=%02X N=%v", c.A, c.getFlag(FlagNegative))
	}
}

func TestADCSetsCarryAndOverflow(t *testing.T) {
	c, ram := newTestCPU(t)
	c.A = 0x7F
	c.setFlag(FlagCarry, false)
	load(ram, c.PC, 0x69, 0x01) // ADC #$01
	c.stepInstruction()
	if c.A != 0x80 {
		t.Fatalf("A = %02X, want 0x80", c.A)
	}
	if !c.getFlag(FlagOverflow) {
		t.Fatal("signed overflow (0x7F+0x01) should set V")
	}
	if c.getFlag(FlagCarry) {
		t.Fatal("unsigned carry should be clear for 0x7F+0x01")
	}
}

func TestAbsoluteXDummyReadOnPageCross(t *testing.T) {
	c, ram := newTestCPU(t)
	load(ram, c.PC, 0xBD, 0xFF, 0x02) // LDA $02FF,X
	c.X = 0x01
	ram[0x0300] = 0x42
	before := c.Cycles
	c.stepInstruction()
	if c.A != 0x42 {
		t.Fatalf("A = %02X, want 0x42", c.A)
	}
	consumed := (c.Cycles - before) / bus.Cycle(c.ClockDivider)
	if consumed != 5 {
		t.Fatalf("page-crossing LDA abs,X took %d cycles, want 5", consumed)
	}
}

func TestStackPushPop(t *testing.T) {
	c, ram := newTestCPU(t)
	spBefore := c.SP
	load(ram, c.PC, 0x48) // PHA
	c.A = 0x55
	c.stepInstruction()
	if c.SP != spBefore-1 {
		t.Fatalf("SP after PHA = %02X, want %02X", c.SP, spBefore-1)
	}
	load(ram, c.PC, 0x68) // PLA
	c.A = 0
	c.stepInstruction()
	if c.A != 0x55 || c.SP != spBefore {
		t.Fatalf("PLA: A=%02X SP=%02X", c.A, c.SP)
	}
}

func TestBranchTakenCrossesPage(t *testing.T) {
	c, ram := newTestCPU(t)
	c.PC = 0x02F0
	load(ram, c.PC, 0xF0, 0x20) // BEQ +0x20 -> crosses into next page
	c.setFlag(FlagZero, true)
	c.stepInstruction()
	if c.PC != 0x0312 {
		t.Fatalf("PC after taken branch = $%04X, want $0312", c.PC)
	}
}

func TestNMITakesPriorityOverIRQ(t *testing.T) {
	c, ram := newTestCPU(t)
	load(ram, 0xFFFA, 0x00, 0x03) // NMI vector -> $0300
	load(ram, 0xFFFE, 0x00, 0x04) // IRQ vector -> $0400
	c.setFlag(FlagInterrupt, false)
	c.InterruptSchedule(IRQAPUFrame, c.Cycles)
	c.InterruptSchedule(IRQNMI, c.Cycles)
	c.stepInstruction()
	if c.PC != 0x0300 {
		t.Fatalf("PC = $%04X, want $0300 (NMI priority)", c.PC)
	}
}

func TestIRQBlockedByInterruptFlag(t *testing.T) {
	c, ram := newTestCPU(t)
	load(ram, 0xFFFE, 0x00, 0x04)
	c.setFlag(FlagInterrupt, true)
	c.InterruptSchedule(IRQAPUFrame, c.Cycles)
	pcBefore := c.PC
	load(ram, c.PC, 0xEA) // NOP should execute instead
	c.stepInstruction()
	if c.PC != pcBefore+1 {
		t.Fatalf("IRQ fired despite I flag set; PC=$%04X", c.PC)
	}
}

func TestOAMDMATransfers256Bytes(t *testing.T) {
	c, ram := newTestCPU(t)
	var written []uint8
	c.Bus.RegisterWrite(0x2004, 1, 0, func(addr uint16, value uint8, cycle bus.Cycle) {
		written = append(written, value)
	})
	for i := 0; i < 256; i++ {
		ram[0x0300+i] = uint8(i)
	}
	c.OAMDMA(0x03, false)
	for c.oamDMAActive {
		c.stepInstruction()
	}
	if len(written) != 256 {
		t.Fatalf("OAM DMA wrote %d bytes, want 256", len(written))
	}
	for i, v := range written {
		if v != uint8(i) {
			t.Fatalf("OAM DMA byte %d = %02X, want %02X", i, v, uint8(i))
		}
	}
}

func TestDMCDMAFetchesAndCallsLoad(t *testing.T) {
	c, ram := newTestCPU(t)
	ram[0x4000] = 0xAB
	var loaded uint8
	var gotLoad bool
	c.SetDMCLoadCallback(func(data uint8) {
		loaded = data
		gotLoad = true
	})
	c.SetDMCDMATimestamp(c.Cycles, 0x4000, true)
	for c.dmcDMAStep != dmcDMANone {
		c.stepInstruction()
	}
	if !gotLoad || loaded != 0xAB {
		t.Fatalf("DMC DMA load: got=%v loaded=%02X, want 0xAB", gotLoad, loaded)
	}
}

func TestJamHalts(t *testing.T) {
	c, ram := newTestCPU(t)
	load(ram, c.PC, 0x02)
	pcBefore := c.PC
	c.stepInstruction()
	if !c.jammed {
		t.Fatal("JAM opcode should halt the CPU")
	}
	c.stepInstruction()
	if c.PC != pcBefore+1 {
		t.Fatalf("jammed CPU should not advance PC further, got $%04X", c.PC)
	}
}

func TestLAXLoadsAccumulatorAndX(t *testing.T) {
	c, ram := newTestCPU(t)
	ram[0x0050] = 0x77
	load(ram, c.PC, 0xA7, 0x50) // LAX zp
	c.stepInstruction()
	if c.A != 0x77 || c.X != 0x77 {
		t.Fatalf("LAX: A=%02X X=%02X, want both 0x77", c.A, c.X)
	}
}

func TestEndFrameRebasesTimestamps(t *testing.T) {
	c, _ := newTestCPU(t)
	c.Cycles = 1000
	c.FrameCycles = 2000
	c.InterruptSchedule(IRQAPUFrame, 1500)
	c.BoardRunSchedule(1800)
	c.EndFrame(1000)
	if c.Cycles != 0 || c.FrameCycles != 1000 {
		t.Fatalf("EndFrame: Cycles=%d FrameCycles=%d", c.Cycles, c.FrameCycles)
	}
	if c.interruptTimes[IRQAPUFrame] != 500 {
		t.Fatalf("interrupt time not rebased: got %d, want 500", c.interruptTimes[IRQAPUFrame])
	}
	if c.boardRunTimestamp != 800 {
		t.Fatalf("board run timestamp not rebased: got %d, want 800", c.boardRunTimestamp)
	}
}
