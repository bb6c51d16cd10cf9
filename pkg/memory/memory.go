// Package memory wires the console's fixed CPU-side devices — work RAM,
// the PPU's register window, controller I/O, and OAM DMA — onto a
// pkg/bus.Bus. It no longer owns a CPU-facing Read/Write pair of its own:
// pkg/cpu drives every access through the bus, and this package only
// supplies the handlers and backing storage the bus dispatches to.
package memory

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/logger"
)

// RAM is the console's 2 KiB of work RAM, mirrored four times across
// $0000-$1FFF.
type RAM struct {
	data [2048]uint8
}

// NewRAM returns zeroed work RAM.
func NewRAM() *RAM {
	return &RAM{}
}

// Install maps r onto b as four independent 2 KiB pagetable windows, one
// per mirror, matching cxNES's cpu_set_page calls for $0000/$0800/$1000/
// $1800 rather than a single masked range — RAM mirroring on real hardware
// is address-decode wiring, not a register handler.
func (r *RAM) Install(b *bus.Bus) {
	for mirror := 0; mirror < 4; mirror++ {
		b.Pages().SetPage(mirror*0x800, 0x800, r.data[:], 3)
	}
}

// ppuRegisters is the subset of pkg/ppu.PPU the bus wiring needs.
type ppuRegisters interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// controller is the subset of pkg/input.Controller the bus wiring needs.
type controller interface {
	Read() uint8
	Write(value uint8)
}

// oamDMAController is the subset of pkg/cpu.CPU the $4014 handler needs.
// OAM DMA is serviced by the CPU's own cycle-accurate state machine
// (pkg/cpu/dma.go) rather than a direct 256-byte copy loop here, so the
// stall cycles it costs the CPU are accounted for.
type oamDMAController interface {
	OAMDMA(page uint8, oddCycle bool)
}

// InstallPPURegisters maps ppu's eight registers across $2000-$3FFF,
// mirrored every 8 bytes per cpu_set_read_handler/cpu_set_write_handler
// in original_source/main/cpu.c.
func InstallPPURegisters(b *bus.Bus, ppu ppuRegisters) {
	const base, size, mask = 0x2000, 0x2000, 0x2000
	b.RegisterRead(base, size, mask, func(addr uint16, _ bus.Cycle) uint8 {
		return ppu.ReadRegister(0x2000 + (addr & 0x7))
	})
	b.RegisterWrite(base, size, mask, func(addr uint16, value uint8, _ bus.Cycle) {
		regAddr := 0x2000 + (addr & 0x7)
		if regAddr == 0x2006 || regAddr == 0x2007 {
			logger.LogCPU("PPU write $%04X: value=$%02X", regAddr, value)
		}
		ppu.WriteRegister(regAddr, value)
	})
}

// InstallInput maps controller 1's strobe/shift-register protocol onto
// $4016. $4016 write strobes both controller ports; this core only
// implements the first, so the $4017 read side (controller 2) is left
// unregistered and falls back to open bus (0), matching the teacher's
// single-controller scope.
func InstallInput(b *bus.Bus, pad controller) {
	b.RegisterRead(0x4016, 1, 0, func(_ uint16, _ bus.Cycle) uint8 {
		return pad.Read()
	})
	b.RegisterWrite(0x4016, 1, 0, func(_ uint16, value uint8, _ bus.Cycle) {
		pad.Write(value)
	})
}

// InstallOAMDMA maps $4014 writes onto the CPU's own OAM DMA state
// machine rather than performing the 256-byte transfer directly: the CPU
// already knows how to stall itself for the 513/514-cycle transfer and
// interleave it with DMC DMA, and duplicating that loop here would let the
// two drift out of sync.
func InstallOAMDMA(b *bus.Bus, cpu oamDMAController) {
	b.RegisterWrite(0x4014, 1, 0, func(_ uint16, value uint8, cycle bus.Cycle) {
		cpu.OAMDMA(value, cycle%2 == 1)
	})
}
