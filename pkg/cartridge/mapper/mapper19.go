package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/n163"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper19 implements Namco 129/163 (mapper 19): eight 1K CHR banks,
// three 8K PRG windows plus a fixed last bank, and the Namco 163
// expansion audio chip with its own IRQ counter exposed at
// $5000-$5FFF.
type Mapper19 struct {
	data *CartridgeData
	Chip *n163.Chip

	chrBanks [8]uint16 // CHR/nametable bank select, 0-0xFF ROM, 0x100+ CIRAM (not modeled)
	prgBanks [3]uint8

	irqCounter uint16
	irqEnabled bool

	prgBankCount uint8
	chrBankCount uint16
}

// NewMapper19 creates a Namco 163 board.
func NewMapper19(data *CartridgeData) *Mapper19 {
	m := &Mapper19{data: data, Chip: n163.New()}
	if len(data.PRGROM) > 0 {
		m.prgBankCount = uint8(len(data.PRGROM) / 8192)
	}
	if len(data.CHRROM) > 0 {
		m.chrBankCount = uint16(len(data.CHRROM) / 1024)
	}
	return m
}

// InstallAudio wires the Namco 163 sound chip onto b; see
// mapper.AudioMapper.
func (m *Mapper19) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
	b.RegisterWrite(0x5000, 0x800, 0, func(addr uint16, value uint8, _ bus.Cycle) {
		switch addr {
		case 0x5000:
			m.irqCounter = (m.irqCounter & 0xFF00) | uint16(value)
		case 0x5800:
			m.irqCounter = (m.irqCounter & 0x00FF) | (uint16(value&0x7F) << 8)
			m.irqEnabled = value&0x80 != 0
		}
	})
	b.RegisterRead(0x5000, 0x800, 0, func(addr uint16, _ bus.Cycle) uint8 {
		switch addr {
		case 0x5000:
			return uint8(m.irqCounter)
		case 0x5800:
			v := uint8(m.irqCounter >> 8)
			if m.irqEnabled {
				v |= 0x80
			}
			return v
		}
		return 0
	})
}

func (m *Mapper19) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			return m.data.PRGRAM[off]
		}
	case addr >= 0x8000 && addr < 0xA000:
		return m.readPRGBank(m.prgBanks[0], addr-0x8000)
	case addr >= 0xA000 && addr < 0xC000:
		return m.readPRGBank(m.prgBanks[1], addr-0xA000)
	case addr >= 0xC000 && addr < 0xE000:
		return m.readPRGBank(m.prgBanks[2], addr-0xC000)
	case addr >= 0xE000:
		if m.prgBankCount == 0 {
			return 0
		}
		return m.readPRGBank(m.prgBankCount-1, addr-0xE000)
	}
	return 0
}

func (m *Mapper19) readPRGBank(bank uint8, offset uint16) uint8 {
	if m.prgBankCount > 0 {
		bank %= m.prgBankCount
	}
	off := uint32(bank)*8192 + uint32(offset)
	if int(off) < len(m.data.PRGROM) {
		return m.data.PRGROM[off]
	}
	return 0
}

func (m *Mapper19) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000 && len(m.data.PRGRAM) > 0:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
	case addr >= 0x8000 && addr < 0x8800:
		m.chrBanks[0] = uint16(value)
	case addr >= 0x8800 && addr < 0x9000:
		m.chrBanks[1] = uint16(value)
	case addr >= 0x9000 && addr < 0x9800:
		m.chrBanks[2] = uint16(value)
	case addr >= 0x9800 && addr < 0xA000:
		m.chrBanks[3] = uint16(value)
	case addr >= 0xA000 && addr < 0xA800:
		m.chrBanks[4] = uint16(value)
	case addr >= 0xA800 && addr < 0xB000:
		m.chrBanks[5] = uint16(value)
	case addr >= 0xB000 && addr < 0xB800:
		m.chrBanks[6] = uint16(value)
	case addr >= 0xB800 && addr < 0xC000:
		m.chrBanks[7] = uint16(value)
	case addr >= 0xC000 && addr < 0xC800,
		addr >= 0xC800 && addr < 0xD000,
		addr >= 0xD000 && addr < 0xD800,
		addr >= 0xD800 && addr < 0xE000:
		// nametable bank selects, not modeled: PPU nametables stay on
		// the header's fixed mirroring.
	case addr >= 0xE000 && addr < 0xE800:
		m.prgBanks[0] = value & 0x3F
	case addr >= 0xE800 && addr < 0xF000:
		m.prgBanks[1] = value & 0x3F
	case addr >= 0xF000 && addr < 0xF800:
		m.prgBanks[2] = value & 0x3F
	}
}

func (m *Mapper19) ReadCHR(addr uint16) uint8 {
	bank := m.chrBanks[addr>>10]
	if len(m.data.CHRROM) > 0 {
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

func (m *Mapper19) WriteCHR(addr uint16, value uint8) {
	if len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

// Step increments the Namco 163 IRQ counter once per CPU cycle while IRQs
// are enabled, stopping at $7FFF, the value at which IsIRQPending reports
// the IRQ.
func (m *Mapper19) Step() {
	if !m.irqEnabled {
		return
	}
	if m.irqCounter >= 0x7FFF {
		return
	}
	m.irqCounter++
}

func (m *Mapper19) IsIRQPending() bool {
	return m.irqEnabled && m.irqCounter >= 0x7FFF
}

func (m *Mapper19) ClearIRQ() {
	m.irqEnabled = false
}
