package nes

import (
	"github.com/yoshiomiyamaegones/pkg/apu"
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/cartridge"
	"github.com/yoshiomiyamaegones/pkg/cpu"
	"github.com/yoshiomiyamaegones/pkg/input"
	"github.com/yoshiomiyamaegones/pkg/memory"
	"github.com/yoshiomiyamaegones/pkg/mixer"
	"github.com/yoshiomiyamaegones/pkg/ppu"
)

// NES wires the CPU, PPU, APU, work RAM, cartridge and controller onto a
// shared bus.Bus. The CPU drives every other chip's timing: its own
// instruction loop yields bus.Cycle timestamps that the APU and cartridge
// catch up to lazily on access, while the PPU (whose dot clock runs a
// fixed 3x the CPU's and predates the bus-handler model) is stepped
// explicitly alongside each CPU instruction, the way the teacher's
// original per-cycle loop did.
type NES struct {
	Bus       *bus.Bus
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Mix       *mixer.BlipBuffer
	RAM       *memory.RAM
	Cartridge *cartridge.Cartridge
	Input     *input.Controller

	Cycles uint64
	Frame  uint64
}

// NewNES builds a console with no cartridge loaded, clocked for NTSC.
func NewNES() *NES {
	dividers := bus.RegionNTSC.Dividers()

	n := &NES{}
	n.Bus = bus.NewBus()
	n.Mix = mixer.NewBlipBuffer()
	n.Mix.SetRates(1789773, 44100)

	n.CPU = cpu.New(n.Bus, dividers.CPU)
	n.APU = apu.New(n.Mix)
	n.APU.AttachCPU(n.CPU)
	n.APU.RegisterHandlers(n.Bus)

	n.PPU = ppu.New()
	n.Input = input.New()
	n.RAM = memory.NewRAM()

	n.RAM.Install(n.Bus)
	memory.InstallPPURegisters(n.Bus, n.PPU)
	memory.InstallInput(n.Bus, n.Input)
	memory.InstallOAMDMA(n.Bus, n.CPU)

	return n
}

// LoadCartridge installs cart's PRG space onto the bus and hands its CHR
// access to the PPU.
func (n *NES) LoadCartridge(cart *cartridge.Cartridge) {
	n.Cartridge = cart
	cart.InstallPRG(n.Bus)
	cart.InstallAudio(n.Bus, n.Mix)
	n.PPU.SetCartridge(cart)
}

// Reset performs a hard reset of every component.
func (n *NES) Reset() {
	n.CPU.Reset(true)
	n.PPU.Reset()
	n.APU.Reset()
	n.Cycles = 0
	n.Frame = 0
}

// Step runs exactly one CPU instruction, keeps the PPU's dot clock and the
// cartridge's mapper timer in lockstep with it (3 PPU dots per CPU cycle,
// one mapper Step per CPU cycle), and services any NMI/mapper-IRQ edge the
// PPU or cartridge raised during that span.
func (n *NES) Step() {
	cpuCycles := n.CPU.Step()

	for i := 0; i < cpuCycles*3; i++ {
		n.PPU.Step()
		if n.PPU.NMIRequested {
			n.CPU.TriggerNMI()
			n.PPU.NMIRequested = false
		}
		if n.PPU.IsMapperIRQPending() {
			n.CPU.TriggerIRQ()
			n.PPU.ClearMapperIRQ()
		}
	}

	if n.Cartridge != nil {
		for i := 0; i < cpuCycles; i++ {
			n.Cartridge.Step()
			if n.Cartridge.IsIRQPending() {
				n.CPU.TriggerIRQ()
				n.Cartridge.ClearIRQ()
			}
		}
	}

	n.Cycles += uint64(cpuCycles)
}

// StepFrame runs the NES until the PPU completes a frame, then flushes the
// elapsed cycles out of the APU's mixer and rebases the CPU's and APU's
// cycle-relative timestamps back to zero, per SPEC_FULL.md's EndFrame
// contract.
func (n *NES) StepFrame() {
	stepCount := 0
	const maxSteps = 50000
	for !n.PPU.FrameComplete {
		n.Step()
		stepCount++
		if stepCount > maxSteps {
			n.PPU.FrameComplete = true
			break
		}
	}
	n.PPU.FrameComplete = false
	n.Frame = n.PPU.Frame

	frameCycles := n.CPU.GetCycles()
	n.APU.EndFrame(frameCycles)
	n.CPU.EndFrame(frameCycles)
}

// GetInput returns the input controller
func (n *NES) GetInput() *input.Controller {
	return n.Input
}

// GetFramebuffer returns the current framebuffer from PPU
func (n *NES) GetFramebuffer() []uint8 {
	return n.PPU.GetFramebuffer()
}

// GetFrame returns the current frame number
func (n *NES) GetFrame() uint64 {
	return n.Frame
}

// GetFramebufferRaw returns the raw framebuffer as 32-bit integers
func (n *NES) GetFramebufferRaw() []uint32 {
	return n.PPU.FrameBuffer[:]
}

// GetDisplayFramebufferRaw returns the display framebuffer considering persistent rendering
func (n *NES) GetDisplayFramebufferRaw() []uint32 {
	return n.PPU.FrameBuffer[:]
}

// GetDisplayFramebuffer returns the display framebuffer as RGBA bytes considering persistent rendering
func (n *NES) GetDisplayFramebuffer() []uint8 {
	frameBuffer := n.PPU.FrameBuffer[:]

	rgba := make([]uint8, 256*240*4)

	for i, pixel := range frameBuffer {
		r := uint8((pixel >> 16) & 0xFF)
		g := uint8((pixel >> 8) & 0xFF)
		b := uint8(pixel & 0xFF)
		a := uint8((pixel >> 24) & 0xFF)

		rgba[i*4+0] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = a
	}

	return rgba
}
