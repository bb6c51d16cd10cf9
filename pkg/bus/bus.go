package bus

// ReadHandler observes or produces a bus read. cycle is the CPU's current
// master-clock timestamp at the moment of the access, passed through so the
// handler can catch its owning chip up before answering.
type ReadHandler func(addr uint16, cycle Cycle) uint8

// WriteHandler observes or sinks a bus write, same cycle contract as
// ReadHandler.
type WriteHandler func(addr uint16, value uint8, cycle Cycle)

// Bus is the CPU's address space: a bulk pagetable plus a per-address
// handler table. On any access the pagetable entry, if present, produces a
// value first; the handler, if present, then observes/overrides/sinks the
// access. This mirrors real NES hardware, where a cartridge can both decode
// an address range onto its PRG-RAM/ROM and latch register writes out of
// the same range.
type Bus struct {
	pages  PageTable
	reads  [0x10000]ReadHandler
	writes [0x10000]WriteHandler
}

// NewBus returns an empty bus: no pagetable mappings, no handlers.
func NewBus() *Bus {
	return &Bus{}
}

// Pages exposes the pagetable for SetPage/Clear calls.
func (b *Bus) Pages() *PageTable {
	return &b.pages
}

// RegisterRead installs handler as the read handler for every address i in
// [addr, addr+size) such that (i & mask) == addr, matching cpu_set_read_handler.
// A zero mask matches every address in range unconditionally (the typical
// case of a contiguous, unmirrored register block); a nonzero mask lets a
// chip install one handler across a mirrored range (e.g. $4000-$4017
// decoded every 0x20 bytes) without a loop per mirror. Out-of-range addr is
// ignored.
func (b *Bus) RegisterRead(addr, size, mask int, handler ReadHandler) {
	if addr < 0 || addr >= 0x10000 {
		return
	}
	for i := addr; i < addr+size && i < 0x10000; i++ {
		if mask == 0 || (i&mask) == addr {
			b.reads[i] = handler
		}
	}
}

// RegisterWrite is the write-side counterpart of RegisterRead.
func (b *Bus) RegisterWrite(addr, size, mask int, handler WriteHandler) {
	if addr < 0 || addr >= 0x10000 {
		return
	}
	for i := addr; i < addr+size && i < 0x10000; i++ {
		if mask == 0 || (i&mask) == addr {
			b.writes[i] = handler
		}
	}
}

// ClearRead removes the read handler installed over [addr, addr+size),
// unconditionally (no mask filtering) — used when a board deconfigures a
// dynamically-installed handler, e.g. MMC5's PCM read-mode toggle.
func (b *Bus) ClearRead(addr, size int) {
	b.RegisterRead(addr, size, 0, nil)
}

// ClearWrite is the write-side counterpart of ClearRead.
func (b *Bus) ClearWrite(addr, size int) {
	b.RegisterWrite(addr, size, 0, nil)
}

// Read performs a full bus access at the given cycle: pagetable first, then
// handler. When a handler is installed, its return value is the result and
// the pagetable value is discarded (the handler is not given it; handlers
// that only partially decode a register supply the other bits themselves).
func (b *Bus) Read(addr uint16, cycle Cycle) uint8 {
	value, _ := b.pages.read(addr)
	if h := b.reads[addr]; h != nil {
		return h(addr, cycle)
	}
	return value
}

// Peek is Read without handler side effects where possible: it still must
// invoke the handler (peripherals don't expose a side-effect-free read
// path on real hardware), but exists as a named entry point matching
// cpu_peek for debug/save-state code that wants to read without implying a
// catch-up obligation beyond what the handler itself performs.
func (b *Bus) Peek(addr uint16, cycle Cycle) uint8 {
	return b.Read(addr, cycle)
}

// Write performs a full bus access: pagetable write first (dropped silently
// if the page is read-only or unmapped), then handler, which may act on the
// value regardless of whether the pagetable accepted it.
func (b *Bus) Write(addr uint16, value uint8, cycle Cycle) {
	b.pages.write(addr, value)
	if h := b.writes[addr]; h != nil {
		h(addr, value, cycle)
	}
}
