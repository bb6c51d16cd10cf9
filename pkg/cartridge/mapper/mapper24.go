package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/vrc6"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper24 implements Konami VRC6 (mapper 24, VRC6a) and VRC6b (mapper
// 26, swapped address lines), both 16K+8K PRG-switchable boards carrying
// the VRC6 expansion audio chip.
//
// CHR banking is not implemented: like the teacher's other simple
// mappers, CHR space is addressed directly against CHRROM/CHRRAM. Real
// VRC6 carts bank-switch 1 KiB CHR pages via $D000-$E003; reproducing
// that is a pure graphics-mapper concern orthogonal to this board's
// audio chip, which is what SPEC_FULL.md's expansion-audio section
// actually asks this mapper to carry.
type Mapper24 struct {
	data *CartridgeData
	Chip *vrc6.Chip

	prg16kBank uint8
	prg8kBank  uint8
	prg16kCount uint8
	prg8kCount  uint8
}

// NewMapper24 creates a VRC6 board. swapLines selects the VRC6b variant.
func NewMapper24(data *CartridgeData, swapLines bool) *Mapper24 {
	m := &Mapper24{data: data, Chip: vrc6.New()}
	m.Chip.SwapLines = swapLines
	if len(data.PRGROM) > 0 {
		m.prg16kCount = uint8(len(data.PRGROM) / 16384)
		m.prg8kCount = uint8(len(data.PRGROM) / 8192)
	}
	return m
}

// InstallAudio wires the VRC6 sound chip onto b; see mapper.AudioMapper.
func (m *Mapper24) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
}

func (m *Mapper24) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		bank := m.prg16kBank
		if m.prg16kCount > 0 {
			bank %= m.prg16kCount
		}
		off := uint32(bank)*16384 + uint32(addr-0x8000)
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off]
		}
	case addr >= 0xC000 && addr < 0xE000:
		bank := m.prg8kBank
		if m.prg8kCount > 0 {
			bank %= m.prg8kCount
		}
		off := uint32(bank)*8192 + uint32(addr-0xC000)
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off]
		}
	case addr >= 0xE000:
		if m.prg8kCount == 0 {
			return 0
		}
		lastBank := m.prg8kCount - 1
		off := uint32(lastBank)*8192 + uint32(addr-0xE000)
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off]
		}
	case addr >= 0x6000 && len(m.data.PRGRAM) > 0:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			return m.data.PRGRAM[off]
		}
	}
	return 0
}

func (m *Mapper24) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000 && addr < 0x9000:
		m.prg16kBank = value & 0x0F
	case addr >= 0xC000 && addr < 0xD000:
		m.prg8kBank = value & 0x1F
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
	}
}

func (m *Mapper24) ReadCHR(addr uint16) uint8 {
	if len(m.data.CHRROM) > 0 {
		if int(addr) < len(m.data.CHRROM) {
			return m.data.CHRROM[addr]
		}
		return 0
	}
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr]
	}
	return 0
}

func (m *Mapper24) WriteCHR(addr uint16, value uint8) {
	if len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *Mapper24) Step()            {}
func (m *Mapper24) IsIRQPending() bool { return false }
func (m *Mapper24) ClearIRQ()        {}
