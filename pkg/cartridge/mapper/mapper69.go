package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/sunsoft5b"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper69 implements Sunsoft FME-7 / 5B (mapper 69): eight 1K CHR bank
// registers and four 8K PRG bank registers selected through a $8000
// command port and written through $A000, plus the Sunsoft 5B expansion
// audio chip and an IRQ counter clocked once per CPU cycle.
type Mapper69 struct {
	data *CartridgeData
	Chip *sunsoft5b.Chip

	command    uint8
	prgBanks   [4]uint8 // bank 0 maps ROM (or PRG RAM) at $6000; 1-3 map $8000/$A000/$C000; $E000 is the last bank
	chrBanks   [8]uint8
	ramEnabled bool
	ramSelect  bool // true: bank0 maps PRG RAM at $6000 instead of ROM

	irqEnabled bool
	irqCounter uint16
	irqPending bool

	prgBankCount uint8
	chrBankCount uint8
}

// NewMapper69 creates a Sunsoft FME-7/5B board.
func NewMapper69(data *CartridgeData) *Mapper69 {
	m := &Mapper69{data: data, Chip: sunsoft5b.New()}
	if len(data.PRGROM) > 0 {
		m.prgBankCount = uint8(len(data.PRGROM) / 8192)
	}
	if len(data.CHRROM) > 0 {
		m.chrBankCount = uint8(len(data.CHRROM) / 1024)
	}
	if m.prgBankCount > 0 {
		m.prgBanks[3] = m.prgBankCount - 1
	}
	return m
}

// InstallAudio wires the Sunsoft 5B sound chip onto b; see
// mapper.AudioMapper.
func (m *Mapper69) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
}

func (m *Mapper69) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.ramSelect {
			if m.ramEnabled && len(m.data.PRGRAM) > 0 {
				off := addr - 0x6000
				if int(off) < len(m.data.PRGRAM) {
					return m.data.PRGRAM[off]
				}
			}
			return 0
		}
		return m.readPRGBank(m.prgBanks[0], addr-0x6000)
	case addr >= 0x8000 && addr < 0xA000:
		return m.readPRGBank(m.prgBanks[1], addr-0x8000)
	case addr >= 0xA000 && addr < 0xC000:
		return m.readPRGBank(m.prgBanks[2], addr-0xA000)
	case addr >= 0xC000 && addr < 0xE000:
		return m.readPRGBank(m.prgBanks[3], addr-0xC000)
	case addr >= 0xE000:
		bank := m.prgBankCount - 1
		return m.readPRGBank(bank, addr-0xE000)
	}
	return 0
}

func (m *Mapper69) readPRGBank(bank uint8, offset uint16) uint8 {
	if m.prgBankCount > 0 {
		bank %= m.prgBankCount
	}
	off := uint32(bank)*8192 + uint32(offset)
	if int(off) < len(m.data.PRGROM) {
		return m.data.PRGROM[off]
	}
	return 0
}

func (m *Mapper69) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000 && m.ramSelect:
		if m.ramEnabled && len(m.data.PRGRAM) > 0 {
			off := addr - 0x6000
			if int(off) < len(m.data.PRGRAM) {
				m.data.PRGRAM[off] = value
			}
		}
	case addr >= 0x8000 && addr < 0xA000:
		m.command = value & 0x0F
	case addr >= 0xA000 && addr < 0xC000:
		switch {
		case m.command <= 0x07:
			if m.chrBankCount > 0 {
				m.chrBanks[m.command] = value % m.chrBankCount
			} else {
				m.chrBanks[m.command] = value
			}
		case m.command == 0x08:
			m.ramEnabled = value&0x80 != 0
			m.ramSelect = value&0x40 != 0
			m.prgBanks[0] = value & 0x3F
		case m.command >= 0x09 && m.command <= 0x0B:
			m.prgBanks[m.command-0x08] = value & 0x3F
		case m.command == 0x0C:
			// mirroring control, not modeled: nametable layout stays as
			// set by the iNES header.
		case m.command == 0x0D:
			m.irqEnabled = value&0x01 != 0
			m.irqPending = false
		case m.command == 0x0E:
			m.irqCounter = (m.irqCounter & 0xFF00) | uint16(value)
		case m.command == 0x0F:
			m.irqCounter = (m.irqCounter & 0x00FF) | (uint16(value) << 8)
		}
	}
}

func (m *Mapper69) ReadCHR(addr uint16) uint8 {
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

func (m *Mapper69) WriteCHR(addr uint16, value uint8) {
	if len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

// Step decrements the FME-7 16-bit IRQ counter once per CPU cycle while
// IRQs are enabled (it does not count while they are disabled) and raises
// the IRQ when it wraps from $0000 to $FFFF.
func (m *Mapper69) Step() {
	if !m.irqEnabled {
		return
	}
	m.irqCounter--
	if m.irqCounter == 0xFFFF {
		m.irqPending = true
	}
}

func (m *Mapper69) IsIRQPending() bool { return m.irqPending }
func (m *Mapper69) ClearIRQ()          { m.irqPending = false }
