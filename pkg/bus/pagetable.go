package bus

// pageShift/pageSize define the 1 KiB granularity of the CPU pagetable.
const (
	pageShift = 10
	pageSize  = 1 << pageShift
	numPages  = 0x10000 / pageSize // 64
)

// pageEntry is one pagetable slot: a bulk backing-memory slice plus the
// read/write permission bits for it. A nil Data means "unmapped" for that
// direction.
type pageEntry struct {
	data []uint8
	r    bool
	w    bool
}

// PageTable is the CPU's 64-page bulk memory map. Each page independently
// carries a read-side and a write-side backing pointer; the two may point
// at different (or no) storage, matching boards where RAM is writable but
// ROM is not.
type PageTable struct {
	pages [numPages]pageEntry
}

// NewPageTable returns an empty pagetable; every page starts unmapped.
func NewPageTable() *PageTable {
	return &PageTable{}
}

// SetPage installs data as the backing memory for the 1 KiB page starting
// at addr. rw&1 enables reads, rw&2 enables writes, matching CPU_PAGE_READ /
// CPU_PAGE_WRITE. addr must be page-aligned; size must be a multiple of
// pageSize. Out-of-range or misaligned requests are silently ignored, per
// spec: "invalid handler registrations silently refuse out-of-range
// addresses."
func (pt *PageTable) SetPage(addr int, size int, data []uint8, rw int) {
	if addr < 0 || addr >= 0x10000 || addr%pageSize != 0 || size%pageSize != 0 {
		return
	}
	first := addr >> pageShift
	count := size >> pageShift
	for p := first; p < first+count && p < numPages; p++ {
		off := (p - first) * pageSize
		var backing []uint8
		if data != nil {
			end := off + pageSize
			if end > len(data) {
				end = len(data)
			}
			if off < len(data) {
				backing = data[off:end]
			}
		}
		pt.pages[p] = pageEntry{
			data: backing,
			r:    rw&1 != 0,
			w:    rw&2 != 0,
		}
	}
}

// Clear unmaps the page containing addr's range, matching SetPage(addr,
// size, nil, 0).
func (pt *PageTable) Clear(addr, size int) {
	pt.SetPage(addr, size, nil, 0)
}

// read returns the pagetable value at addr and whether a readable backing
// page covers it.
func (pt *PageTable) read(addr uint16) (uint8, bool) {
	p := &pt.pages[addr>>pageShift]
	if !p.r || p.data == nil {
		return 0, false
	}
	off := int(addr) & (pageSize - 1)
	if off >= len(p.data) {
		return 0, false
	}
	return p.data[off], true
}

// write stores value through the pagetable at addr if a writable backing
// page covers it. Returns false if the page is read-only or unmapped, in
// which case the write is dropped unless a handler observes it.
func (pt *PageTable) write(addr uint16, value uint8) bool {
	p := &pt.pages[addr>>pageShift]
	if !p.w || p.data == nil {
		return false
	}
	off := int(addr) & (pageSize - 1)
	if off >= len(p.data) {
		return false
	}
	p.data[off] = value
	return true
}
