package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/mmc5"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper5 implements a PRG/CHR-banking subset of MMC5 (mapper 5): PRG
// mode 3 (four independently switchable 8K windows, the mode most MMC5
// games run in) plus the MMC5 expansion audio chip exposed at
// $5000-$5015. Extended nametable/fill-mode/split-screen/ExGrafix
// features are not modeled, matching the teacher's other mappers'
// scope of PRG/CHR banking plus whatever SPEC_FULL.md's expansion-audio
// table asks the board to carry.
type Mapper5 struct {
	data *CartridgeData
	Chip *mmc5.Chip

	prgMode  uint8
	prgBanks [4]uint8 // 8K windows at $8000/$A000/$C000/$E000
	ramBank  uint8
	ramEnable1, ramEnable2 uint8

	prgBankCount uint8
	chrBankCount uint16
	chrBank      uint16
}

// NewMapper5 creates an MMC5 board.
func NewMapper5(data *CartridgeData) *Mapper5 {
	m := &Mapper5{data: data, Chip: mmc5.New(), prgMode: 3}
	if len(data.PRGROM) > 0 {
		m.prgBankCount = uint8(len(data.PRGROM) / 8192)
	}
	if len(data.CHRROM) > 0 {
		m.chrBankCount = uint16(len(data.CHRROM) / 1024)
	}
	if m.prgBankCount > 0 {
		m.prgBanks[3] = m.prgBankCount - 1
	}
	return m
}

// InstallAudio wires the MMC5 sound chip onto b; see mapper.AudioMapper.
func (m *Mapper5) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
	b.RegisterWrite(0x5100, 1, 0, func(_ uint16, value uint8, _ bus.Cycle) {
		m.prgMode = value & 0x03
	})
	b.RegisterWrite(0x5113, 5, 0, func(addr uint16, value uint8, _ bus.Cycle) {
		if addr == 0x5113 {
			m.ramBank = value & 0x07
			return
		}
		m.prgBanks[addr-0x5114] = value & 0x7F
	})
	b.RegisterWrite(0x5102, 2, 0, func(addr uint16, value uint8, _ bus.Cycle) {
		if addr == 0x5102 {
			m.ramEnable1 = value & 0x03
		} else {
			m.ramEnable2 = value & 0x03
		}
	})
}

func (m *Mapper5) ramWritable() bool {
	return m.ramEnable1 == 0x02 && m.ramEnable2 == 0x01
}

func (m *Mapper5) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := (addr - 0x6000) % uint16(len(m.data.PRGRAM))
		return m.data.PRGRAM[off]
	case addr >= 0x8000:
		window := (addr - 0x8000) / 0x2000
		bank := m.prgBanks[window]
		if m.prgBankCount > 0 {
			bank %= m.prgBankCount
		}
		off := uint32(bank)*8192 + uint32(addr&0x1FFF)
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off]
		}
	}
	return 0
}

func (m *Mapper5) WritePRG(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0 && m.ramWritable() {
		off := (addr - 0x6000) % uint16(len(m.data.PRGRAM))
		m.data.PRGRAM[off] = value
	}
}

func (m *Mapper5) ReadCHR(addr uint16) uint8 {
	if len(m.data.CHRROM) > 0 {
		bank := m.chrBank
		if m.chrBankCount > 0 {
			bank %= m.chrBankCount
		}
		off := uint32(bank)*1024 + uint32(addr&0x3FF)
		if int(off) < len(m.data.CHRROM) {
			return m.data.CHRROM[off]
		}
		return 0
	}
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr]
	}
	return 0
}

func (m *Mapper5) WriteCHR(addr uint16, value uint8) {
	if len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *Mapper5) Step()            {}
func (m *Mapper5) IsIRQPending() bool { return false }
func (m *Mapper5) ClearIRQ()        {}
