// Package codec is the leaf binary-encoding helper save states are built
// from. It exists so pkg/cpu, pkg/apu, and the pkg/expansion/* packages can
// each encode their own private fields into a flat byte stream without
// pkg/savestate importing them (which would need Save/Load to reach back
// into those same packages, an import cycle) and without resorting to
// reflection-based encoding/gob over unexported fields.
//
// Every value is written little-endian and fixed-width; there is no framing
// here; pkg/savestate's chunk format owns tagging and length-prefixing.
package codec

import "errors"

// ErrTruncated is returned by a Decoder read that runs past the end of its
// backing slice. pkg/savestate wraps it with the offending chunk's tag.
var ErrTruncated = errors.New("codec: truncated data")

// Encoder appends fixed-width fields to a growing byte buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Uint8(v uint8) { e.buf = append(e.buf, v) }

func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint8(1)
	} else {
		e.Uint8(0)
	}
}

func (e *Encoder) Uint16(v uint16) {
	e.buf = append(e.buf, byte(v), byte(v>>8))
}

func (e *Encoder) Uint32(v uint32) {
	e.buf = append(e.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (e *Encoder) Int32(v int32) { e.Uint32(uint32(v)) }

// Int stores v truncated to 32 bits; the core never runs counters that
// overflow int32 within a single save.
func (e *Encoder) Int(v int) { e.Int32(int32(v)) }

// Raw appends b verbatim, with no length prefix; callers use it only for
// fixed-size arrays whose length is implied by the surrounding format.
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

// Decoder reads fixed-width fields back out of a byte slice in the same
// order an Encoder wrote them.
type Decoder struct {
	data []byte
	pos  int
	err  error
}

// NewDecoder wraps data for sequential reads.
func NewDecoder(data []byte) *Decoder { return &Decoder{data: data} }

// Err reports whether any read has run past the end of data.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.pos+n > len(d.data) {
		d.err = ErrTruncated
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *Decoder) Uint8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) Bool() bool { return d.Uint8() != 0 }

func (d *Decoder) Uint16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (d *Decoder) Uint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (d *Decoder) Int32() int32 { return int32(d.Uint32()) }
func (d *Decoder) Int() int     { return int(d.Int32()) }

// Raw reads n bytes verbatim. The returned slice aliases the Decoder's
// backing array; callers that keep it past the next decode must copy.
func (d *Decoder) Raw(n int) []byte { return d.take(n) }
