package n163

import "github.com/yoshiomiyamaegones/pkg/savestate/codec"

// EncodeState snapshots the 128-byte internal RAM, the address latch, and
// the channel-multiplexing state. mix is owner-supplied wiring, not state.
func (c *Chip) EncodeState() []byte {
	e := codec.NewEncoder()
	e.Raw(c.ram[:])
	e.Uint8(c.addr)
	e.Bool(c.autoIncrement)
	e.Int(c.nextChannel)
	for _, v := range c.lastAmp {
		e.Int(v)
	}
	e.Int(c.prevTotal)
	e.Uint32(c.cycle)
	e.Int(c.cpuLast)
	return e.Bytes()
}

// DecodeState restores state written by EncodeState.
func (c *Chip) DecodeState(data []byte) error {
	d := codec.NewDecoder(data)
	var ram [128]uint8
	copy(ram[:], d.Raw(128))
	addr := d.Uint8()
	autoIncrement := d.Bool()
	nextChannel := d.Int()
	var lastAmp [8]int
	for i := range lastAmp {
		lastAmp[i] = d.Int()
	}
	prevTotal := d.Int()
	cycle := d.Uint32()
	cpuLast := d.Int()

	if d.Err() != nil {
		return d.Err()
	}

	c.ram = ram
	c.addr = addr
	c.autoIncrement = autoIncrement
	c.nextChannel = nextChannel
	c.lastAmp = lastAmp
	c.prevTotal = prevTotal
	c.cycle = cycle
	c.cpuLast = cpuLast
	return nil
}
