package mapper

import (
	"fmt"

	"github.com/yoshiomiyamaegones/pkg/bus"
	"github.com/yoshiomiyamaegones/pkg/mixer"
)

// Mapper interface for different mappers
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Step()
	IsIRQPending() bool
	ClearIRQ()
}

// AudioMapper is implemented by boards that carry expansion audio
// (VRC6, VRC7, MMC5, Namco 163, Sunsoft 5B, FDS). InstallAudio wires the
// board's sound registers onto the CPU bus and its output into the
// console's shared mixer, in addition to the PRG/CHR banking every
// Mapper already provides.
type AudioMapper interface {
	Mapper
	InstallAudio(b *bus.Bus, mix *mixer.BlipBuffer)
}

// CartridgeData contains cartridge data for mappers
type CartridgeData struct {
	PRGROM []uint8
	CHRROM []uint8
	PRGRAM []uint8
	CHRRAM []uint8
}

// NewMapper creates a new mapper instance
func NewMapper(mapperNumber uint8, data *CartridgeData) (Mapper, error) {
	switch mapperNumber {
	case 0:
		return NewMapper0(data), nil
	case 1:
		return NewMapper1(data), nil
	case 2:
		return NewMapper2(data), nil
	case 3:
		return NewMapper3(data), nil
	case 4:
		return NewMapper4(data), nil
	case 5:
		return NewMapper5(data), nil
	case 19:
		return NewMapper19(data), nil
	case 24:
		return NewMapper24(data, false), nil
	case 26:
		return NewMapper24(data, true), nil
	case 69:
		return NewMapper69(data), nil
	case 85:
		return NewMapper85(data), nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %d", mapperNumber)
	}
}