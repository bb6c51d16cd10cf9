package mapper

import (
	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/expansion/fds"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// MapperFDS implements the Famicom Disk System's RAM adapter board: a
// flat 32K+ RAM window at $6000-$FFFF (the disk image, already flattened
// by the loader that produced CartridgeData — see cartridge.LoadFDSFromReader),
// fixed 8K CHR RAM, and the FDS expansion audio chip. It carries no PRG
// ROM banking because the RAM adapter has none: the whole visible PRG
// space is writable RAM the disk's boot code copies itself into.
type MapperFDS struct {
	data *CartridgeData
	Chip *fds.Chip
}

// NewMapperFDS creates an FDS RAM-adapter board over a flattened disk
// image already held in data.PRGRAM.
func NewMapperFDS(data *CartridgeData) *MapperFDS {
	if len(data.CHRRAM) == 0 {
		data.CHRRAM = make([]uint8, 8192)
	}
	return &MapperFDS{data: data, Chip: fds.New()}
}

// InstallAudio wires the FDS sound chip onto b; see mapper.AudioMapper.
func (m *MapperFDS) InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer) {
	m.Chip.InstallAudio(b, mix)
}

func (m *MapperFDS) ReadPRG(addr uint16) uint8 {
	if addr < 0x6000 || len(m.data.PRGRAM) == 0 {
		return 0
	}
	off := int(addr - 0x6000)
	if off < len(m.data.PRGRAM) {
		return m.data.PRGRAM[off]
	}
	return 0
}

func (m *MapperFDS) WritePRG(addr uint16, value uint8) {
	if addr < 0x6000 || len(m.data.PRGRAM) == 0 {
		return
	}
	off := int(addr - 0x6000)
	if off < len(m.data.PRGRAM) {
		m.data.PRGRAM[off] = value
	}
}

func (m *MapperFDS) ReadCHR(addr uint16) uint8 {
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr]
	}
	return 0
}

func (m *MapperFDS) WriteCHR(addr uint16, value uint8) {
	if int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
}

func (m *MapperFDS) Step()            {}
func (m *MapperFDS) IsIRQPending() bool { return false }
func (m *MapperFDS) ClearIRQ()        {}
