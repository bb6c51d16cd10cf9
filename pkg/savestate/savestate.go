// Package savestate implements the tagged-chunk save-state container:
// every stateful component (CPU, APU, and whichary expansion-audio board a
// cartridge's mapper carries) produces an opaque, self-describing byte
// block, and Save/Load concatenate or split them back apart. The encoding
// of any one component's state lives inside that component's own package
// (pkg/cpu, pkg/apu, pkg/expansion/*) since only the owning package can see
// the private fields involved; this package only owns the container format
// and the dispatch from a cartridge's concrete mapper type to the chunk tag
// its expansion chip uses.
package savestate

import (
	"bytes"
	"fmt"

	"github.com/yoshiomiyamaegones/pkg/cartridge/mapper"
	"github.com/yoshiomiyamaegones/pkg/nes"
)

// expansionChip pairs an installed cartridge's expansion-audio chip with
// the tag its state chunk is saved/restored under.
func expansionChip(n *nes.NES) (tag string, encode func() []byte, decode func([]byte) error) {
	if n.Cartridge == nil {
		return "", nil, nil
	}
	switch m := n.Cartridge.Mapper.(type) {
	case *mapper.Mapper24:
		return TagVRC6, m.Chip.EncodeState, m.Chip.DecodeState
	case *mapper.Mapper85:
		return TagVRC7, m.Chip.EncodeState, m.Chip.DecodeState
	case *mapper.MapperFDS:
		return TagFDS, m.Chip.EncodeState, m.Chip.DecodeState
	case *mapper.Mapper5:
		return TagMMC5, m.Chip.EncodeState, m.Chip.DecodeState
	case *mapper.Mapper19:
		return TagNamco163, m.Chip.EncodeState, m.Chip.DecodeState
	case *mapper.Mapper69:
		return TagSunsoft, m.Chip.EncodeState, m.Chip.DecodeState
	default:
		return "", nil, nil
	}
}

// Save encodes n's full runtime state: CPU, APU, and (if the loaded
// cartridge carries one) its expansion-audio chip.
func Save(n *nes.NES) ([]byte, error) {
	var buf bytes.Buffer
	writeChunk(&buf, TagCPU, n.CPU.EncodeState())
	writeChunk(&buf, TagAPU, n.APU.EncodeState())
	if tag, encode, _ := expansionChip(n); tag != "" {
		writeChunk(&buf, tag, encode())
	}
	return buf.Bytes(), nil
}

// Load restores state previously produced by Save. Chunks are parsed (tag,
// length, and bounds checked) before any of them are applied, so a
// truncated buffer or a chunk this build doesn't recognize leaves n
// entirely untouched; each component's own DecodeState is in turn atomic
// for its own fields, so a failure decoding one component's payload never
// leaves that component half-updated.
func Load(n *nes.NES, data []byte) error {
	chunks, err := readChunks(data)
	if err != nil {
		return err
	}

	expTag, _, expDecode := expansionChip(n)
	known := map[string]bool{TagCPU: true, TagAPU: true}
	if expTag != "" {
		known[expTag] = true
	}
	for _, c := range chunks {
		if !known[c.tag] {
			return fmt.Errorf("savestate: chunk %q: %w", c.tag, ErrUnknownChunk)
		}
	}

	for _, c := range chunks {
		var err error
		switch c.tag {
		case TagCPU:
			err = n.CPU.DecodeState(c.payload)
		case TagAPU:
			err = n.APU.DecodeState(c.payload)
		default:
			if c.tag == expTag {
				err = expDecode(c.payload)
			}
		}
		if err != nil {
			return fmt.Errorf("savestate: chunk %q: %w", c.tag, err)
		}
	}
	return nil
}
