package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownChunk is wrapped with the offending tag and returned by Load
// when the save data names a chunk this build doesn't know how to apply
// (e.g. a save made with an expansion-audio board this build lacks, or a
// future format this binary predates).
var ErrUnknownChunk = errors.New("savestate: unknown chunk")

// ErrTruncatedChunk is wrapped with the offending tag and returned by Load
// when a chunk's declared length runs past the end of the save data.
var ErrTruncatedChunk = errors.New("savestate: truncated chunk")

// Tags identifying each component's chunk. Each is exactly four bytes, the
// format spec.md requires; the trailing space on the short ones pads them
// out rather than leaving them null-terminated.
const (
	TagCPU      = "CPU "
	TagAPU      = "APU "
	TagFDS      = "FDSS"
	TagMMC5     = "MC5S"
	TagNamco163 = "N163"
	TagSunsoft  = "S5BS"
	TagVRC6     = "VC6S"
	TagVRC7     = "VC7S"
)

// chunk is one tagged, length-prefixed block: a 4-byte tag, a uint32
// little-endian length, then that many payload bytes. Chunks are
// concatenated with no outer framing, so a save is just its chunks in
// sequence; position within the stream carries no meaning, matching the
// "position-independent" requirement.
type chunk struct {
	tag     string
	payload []byte
}

func writeChunk(w *bytes.Buffer, tag string, payload []byte) {
	w.WriteString(tag)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	w.Write(lenBuf[:])
	w.Write(payload)
}

// readChunks parses data into a sequence of chunks without interpreting
// any of them, so a truncated stream is caught before any component state
// is touched.
func readChunks(data []byte) ([]chunk, error) {
	var chunks []chunk
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var tagBuf [4]byte
		if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
			return nil, fmt.Errorf("savestate: reading chunk tag: %w", ErrTruncatedChunk)
		}
		var lenBuf [4]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, fmt.Errorf("savestate: chunk %q: %w", tagBuf, ErrTruncatedChunk)
		}
		length := binary.LittleEndian.Uint32(lenBuf[:])
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("savestate: chunk %q: %w", tagBuf, ErrTruncatedChunk)
		}
		chunks = append(chunks, chunk{tag: string(tagBuf[:]), payload: payload})
	}
	return chunks, nil
}
