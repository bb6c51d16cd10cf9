package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/vrc7"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper85 implements Konami VRC7 (mapper 85): three independent 8KB PRG
// windows at $8000/$A000/$C000, a fixed last 8KB bank at $E000, and the
// VRC7 FM expansion audio chip latched through $9010/$9030. Like Mapper24's
// VRC6, CHR banking is a graphics-mapper concern orthogonal to this core's
// expansion-audio focus and is left unmodeled: CHR space reads straight
// through to CHRROM/CHRRAM.
type Mapper85 struct {
	data *CartridgeData
	Chip *vrc7.Chip

	prgBank0 uint8 // $8000 window
	prgBank1 uint8 // $A000 window
	prgBank2 uint8 // $C000 window

	prgBankCount uint8
}

// NewMapper85 returns a VRC7 board wired to data's PRG/CHR backing stores.
func NewMapper85(data *CartridgeData) *Mapper85 {
	m := &Mapper85{data: data, Chip: vrc7.New()}
	if len(data.PRGROM) > 0 {
		m.prgBankCount = uint8(len(data.PRGROM) / 8192)
	}
	return m
}

// InstallAudio wires the VRC7 FM synthesizer's registers onto b.
func (m *Mapper85) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
}

func (m *Mapper85) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if len(m.data.PRGRAM) == 0 {
			return 0
		}
		return m.data.PRGRAM[addr-0x6000]
	case addr >= 0x8000 && addr < 0xA000:
		return m.readPRGBank(m.prgBank0, addr-0x8000)
	case addr >= 0xA000 && addr < 0xC000:
		return m.readPRGBank(m.prgBank1, addr-0xA000)
	case addr >= 0xC000 && addr < 0xE000:
		return m.readPRGBank(m.prgBank2, addr-0xC000)
	case addr >= 0xE000:
		lastBank := uint8(0)
		if m.prgBankCount > 0 {
			lastBank = m.prgBankCount - 1
		}
		return m.readPRGBank(lastBank, addr-0xE000)
	}
	return 0
}

func (m *Mapper85) readPRGBank(bank uint8, offset uint16) uint8 {
	if m.prgBankCount == 0 {
		return 0
	}
	base := int(bank%m.prgBankCount) * 8192
	return m.data.PRGROM[base+int(offset)]
}

func (m *Mapper85) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if len(m.data.PRGRAM) > 0 {
			m.data.PRGRAM[addr-0x6000] = value
		}
	case addr >= 0x8000 && addr < 0x8010:
		m.prgBank0 = value & 0x3F
	case addr >= 0x8010 && addr < 0x9000:
		m.prgBank1 = value & 0x3F
	case addr >= 0x9000 && addr < 0x9010:
		m.prgBank2 = value & 0x3F
	}
}

func (m *Mapper85) ReadCHR(addr uint16) uint8 {
	if len(m.data.CHRRAM) > 0 {
		return m.data.CHRRAM[int(addr)%len(m.data.CHRRAM)]
	}
	if len(m.data.CHRROM) > 0 {
		return m.data.CHRROM[int(addr)%len(m.data.CHRROM)]
	}
	return 0
}

func (m *Mapper85) WriteCHR(addr uint16, value uint8) {
	if len(m.data.CHRRAM) > 0 {
		m.data.CHRRAM[int(addr)%len(m.data.CHRRAM)] = value
	}
}

func (m *Mapper85) Step()            {}
func (m *Mapper85) IsIRQPending() bool { return false }
func (m *Mapper85) ClearIRQ()        {}
