package nsf

import (
	"bytes"
	"testing"

	"github.com/yoshiomiyamaegones/pkg/bus"
)

// lda #imm ; rts is the smallest routine that visibly changes CPU state and
// returns, enough to exercise Init/Play's call() without a real NSF image.
var ldaImmRTS = []uint8{0xA9, 0x00, 0x60}

// mapRAM backs [base, base+size) with a single writable page-aligned RAM
// region so multiple loadProgram calls into that range don't clobber each
// other with separate backing arrays.
func mapRAM(p *Player, base uint16, size int) {
	p.Bus.Pages().SetPage(int(base), size, make([]uint8, size), 3)
}

func loadProgram(p *Player, addr uint16, program []uint8) {
	for i, b := range program {
		p.Bus.Write(addr+uint16(i), b, 0)
	}
}

func TestSingleChipInstall(t *testing.T) {
	h := Header{SongCount: 1, Region: bus.RegionNTSC, Chips: ChipVRC6}
	p := New(h, false)
	if p.VRC6 == nil {
		t.Fatal("expected VRC6 to be installed")
	}
	if p.VRC7 != nil || p.FDS != nil {
		t.Error("expected only the requested chip to be installed")
	}
}

func TestMultiChipInstallAvoidsRegisterCollision(t *testing.T) {
	h := Header{SongCount: 1, Region: bus.RegionNTSC, Chips: ChipVRC7 | ChipSunsoft5B}
	p := New(h, true)
	if p.VRC7 == nil || p.Sunsoft5B == nil {
		t.Fatal("expected both chips to be installed")
	}

	// Under the NSF-narrowed mapping, Sunsoft 5B's $E000 handler must be a
	// single exact address, not an 8 KiB mirror that would swallow VRC7's
	// real $E000 channel-mute write on a cartridge board. Writing the
	// Sunsoft 5B "apply register" value to $E000 must not silently mutate
	// VRC7 state through an unintended alias.
	vrc7Before := p.VRC7.EncodeState()
	p.Bus.Write(0xC000, 0x07, 0) // select "channel enable" register
	p.Bus.Write(0xE000, 0xFF, 0) // write it - must land on Sunsoft 5B only
	if !bytes.Equal(p.VRC7.EncodeState(), vrc7Before) {
		t.Error("Sunsoft 5B's narrowed $E000 handler leaked into VRC7's state (mute bit included)")
	}
}

func TestInitAndPlayRunAndReturn(t *testing.T) {
	h := Header{
		SongCount:   1,
		StartSong:   0,
		InitAddress: 0x8000,
		PlayAddress: 0x8010,
		Region:      bus.RegionNTSC,
	}
	p := New(h, false)
	mapRAM(p, 0x8000, 1024)
	loadProgram(p, h.InitAddress, ldaImmRTS)
	loadProgram(p, h.PlayAddress, ldaImmRTS)

	p.Init()
	if p.CPU.GetPC() != haltTrap {
		t.Errorf("expected PC to land on the halt trap after Init, got %#04x", p.CPU.GetPC())
	}

	p.Play()
	if p.CPU.GetPC() != haltTrap {
		t.Errorf("expected PC to land on the halt trap after Play, got %#04x", p.CPU.GetPC())
	}
}

func TestSelectSongClamps(t *testing.T) {
	h := Header{SongCount: 4}
	p := New(h, false)
	p.SelectSong(-1)
	if p.currentSong != 0 {
		t.Errorf("expected clamp to 0, got %d", p.currentSong)
	}
	p.SelectSong(99)
	if p.currentSong != 3 {
		t.Errorf("expected clamp to SongCount-1=3, got %d", p.currentSong)
	}
}
