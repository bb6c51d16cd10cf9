// Package nsf is a thin NSF (NES Sound Format) player harness: it accepts
// an already-parsed header describing which expansion chips a tune uses
// and the addresses of its init/play routines, and wires up exactly the
// chips named by that header onto a bare CPU+APU+bus, with no PRG/CHR
// cartridge mapping at all (NSF code runs out of its own bank-switched
// load image rather than a mapper). Grounded on
// original_source/boards/nsf.c, which drives playback the same way: call
// init once with the selected song, then call play once per frame
// forever.
//
// File parsing (the on-disk NSF header, bankswitch-init bytes, and the
// loaded PRG image itself) is out of scope here; Header is the parsed
// result a separate loader is expected to hand in.
package nsf

import (
	"github.com/yoshiomiyamaegones/pkg/apu"
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/cpu"
	"github.com/yoshiomiyamaegones/pkg/expansion/fds"
	"github.com/yoshiomiyamaegones/pkg/expansion/mmc5"
	"github.com/yoshiomiyamaegones/pkg/expansion/n163"
	"github.com/yoshiomiyamaegones/pkg/expansion/sunsoft5b"
	"github.com/yoshiomiyamaegones/pkg/expansion/vrc6"
	"github.com/yoshiomiyamaegones/pkg/expansion/vrc7"
	"github.com/yoshiomiyamaegones/pkg/memory"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// ChipFlags names which expansion-audio chips a tune's header declares,
// matching the one-bit-per-chip layout of a real NSF header's extra sound
// chip byte.
type ChipFlags uint8

const (
	ChipVRC6 ChipFlags = 1 << iota
	ChipVRC7
	ChipFDS
	ChipMMC5
	ChipNamco163
	ChipSunsoft5B
)

// Has reports whether f names chip.
func (f ChipFlags) Has(chip ChipFlags) bool { return f&chip != 0 }

// Header is the subset of a parsed NSF header a Player needs to drive
// playback: song count/selection, the three fixed entry points, the
// region the tune expects, and which expansion chips it uses.
type Header struct {
	SongCount   int
	StartSong   int
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Region      bus.Region
	Chips       ChipFlags
}

// Player drives one NSF tune: a CPU and base APU, plus whichever
// expansion-audio chips Header.Chips names. Unlike pkg/nes.NES it owns no
// PPU, controller, or cartridge mapper — an NSF tune never touches any of
// those.
type Player struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	APU *apu.APU
	Mix *mixer.BlipBuffer

	VRC6      *vrc6.Chip
	VRC7      *vrc7.Chip
	FDS       *fds.Chip
	MMC5      *mmc5.Chip
	Namco163  *n163.Chip
	Sunsoft5B *sunsoft5b.Chip

	header      Header
	currentSong int
}

// New builds a Player for header, wiring the CPU/APU to bus b's region
// clock dividers and installing every expansion chip header.Chips names.
// multiChipNSF selects the register-mapping mode: false installs each
// chip's normal cartridge-style handlers (correct when the header names
// exactly one expansion chip, same as a real board); true narrows VRC7 and
// Sunsoft 5B onto their exact NSF-spec register addresses instead of their
// wider cartridge mirrors, so two or more chips can share the bus without
// their handler windows colliding — something that never happens on real
// hardware, where a cartridge carries at most one expansion chip.
func New(header Header, multiChipNSF bool) *Player {
	dividers := header.Region.Dividers()
	p := &Player{header: header, currentSong: header.StartSong}

	p.Bus = bus.NewBus()
	p.Mix = mixer.NewBlipBuffer()
	p.Mix.SetRates(1789773, 44100)

	p.CPU = cpu.New(p.Bus, dividers.CPU)
	p.APU = apu.New(p.Mix)
	p.APU.AttachCPU(p.CPU)
	p.APU.RegisterHandlers(p.Bus)
	memory.NewRAM().Install(p.Bus)

	p.installExpansionChips(multiChipNSF)
	return p
}

func (p *Player) installExpansionChips(multiChipNSF bool) {
	chips := p.header.Chips
	if chips.Has(ChipVRC6) {
		p.VRC6 = vrc6.New()
		p.VRC6.InstallAudio(p.Bus, p.Mix)
	}
	if chips.Has(ChipVRC7) {
		p.VRC7 = vrc7.New()
		if multiChipNSF {
			p.VRC7.InstallAudioNSF(p.Bus, p.Mix)
		} else {
			p.VRC7.InstallAudio(p.Bus, p.Mix)
		}
	}
	if chips.Has(ChipFDS) {
		p.FDS = fds.New()
		p.FDS.InstallAudio(p.Bus, p.Mix)
	}
	if chips.Has(ChipMMC5) {
		p.MMC5 = mmc5.New()
		p.MMC5.InstallAudio(p.Bus, p.Mix)
	}
	if chips.Has(ChipNamco163) {
		p.Namco163 = n163.New()
		p.Namco163.InstallAudio(p.Bus, p.Mix)
	}
	if chips.Has(ChipSunsoft5B) {
		p.Sunsoft5B = sunsoft5b.New()
		if multiChipNSF {
			p.Sunsoft5B.InstallAudioNSF(p.Bus, p.Mix)
		} else {
			p.Sunsoft5B.InstallAudio(p.Bus, p.Mix)
		}
	}
}

// SelectSong sets the song Init will start the next time it's called,
// clamped to [0, SongCount).
func (p *Player) SelectSong(song int) {
	if song < 0 {
		song = 0
	}
	if song >= p.header.SongCount {
		song = p.header.SongCount - 1
	}
	p.currentSong = song
}

// haltTrap is the dummy return address a call() pushes before jumping into
// a routine: since NSF code is entered via a bare PC jump rather than a
// real JSR from some caller, there is no legitimate address for its
// closing RTS to return to. call() detects the RTS by watching the stack
// pointer instead of caring what's mapped at haltTrap.
const haltTrap = 0x0100

// Init calls the tune's init routine for the currently selected song: it
// sets A to the song number, X to the region flag (0 NTSC, 1 PAL), and
// calls Header.InitAddress, matching how a real NSF player primes playback
// before the first Play call.
func (p *Player) Init() {
	p.CPU.Reset(true)
	p.CPU.InterruptCancel(cpu.IRQReset)
	p.CPU.SetAccumulator(uint8(p.currentSong))
	regionFlag := uint8(0)
	if p.header.Region == bus.RegionPAL {
		regionFlag = 1
	}
	p.CPU.SetXRegister(regionFlag)
	p.call(p.header.InitAddress)
}

// Play calls the tune's play routine once, the way a real player does
// every video frame, then ends the audio frame so the mixer flushes.
func (p *Player) Play() {
	p.call(p.header.PlayAddress)
	frameCycles := p.CPU.GetCycles()
	p.APU.EndFrame(frameCycles)
	p.CPU.EndFrame(frameCycles)
}

// call simulates a JSR to addr by pushing a dummy return address onto the
// stack and jumping the PC directly (NSF entry points have no real
// caller), then steps the CPU until that RTS pops the stack back to its
// starting depth or a runaway-instruction ceiling is hit, mirroring the
// teacher's own StepFrame runaway guard.
func (p *Player) call(addr uint16) {
	const maxSteps = 200000
	startSP := p.CPU.GetStackPointer()

	ret := uint16(haltTrap) - 1
	sp := startSP
	p.CPU.Poke(0x0100+uint16(sp), uint8(ret>>8))
	sp--
	p.CPU.Poke(0x0100+uint16(sp), uint8(ret&0xFF))
	sp--
	p.CPU.SetStackPointer(sp)
	p.CPU.SetPC(addr)

	for i := 0; i < maxSteps; i++ {
		p.CPU.Step()
		if p.CPU.GetStackPointer() >= startSP && p.CPU.IsOpcodeFetch() {
			return
		}
	}
}
