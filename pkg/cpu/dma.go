package cpu

import "github.com/yoshiomiyamaegones/pkg/bus"

// serviceDMA advances exactly one CPU cycle of whichever DMA is active.
// DMC DMA takes priority and steals cycles from an in-flight OAM DMA
// rather than running alongside it, so the two never read simultaneously.
func (c *CPU) serviceDMA() {
	if c.dmcDMAStep != dmcDMANone {
		c.stepDMCDMA()
		return
	}
	c.stepOAMDMA()
}

// stepDMCDMA runs one cycle of the RDY -> DUMMY -> ALIGN -> XFER sequence.
// Each step costs one CPU cycle; on XFER the byte is fetched and handed to
// the APU via the load callback.
func (c *CPU) stepDMCDMA() {
	switch c.dmcDMAStep {
	case dmcDMARDY:
		c.tick()
		c.dmcDMAStep = dmcDMADummy
	case dmcDMADummy:
		c.tick()
		c.dmcDMAStep = dmcDMAAlign
	case dmcDMAAlign:
		c.tick()
		c.dmcDMAStep = dmcDMAXfer
	case dmcDMAXfer:
		value := c.read(c.dmcDMAAddr)
		c.dmcDMAStep = dmcDMANone
		c.dmcDMATimestamp = bus.CycleNever
		if c.dmcDMALoad != nil {
			c.dmcDMALoad(value)
		}
	}
	c.recomputeDMATimestamp()
}

// stepOAMDMA runs one cycle of the 256-byte OAM transfer: an initial
// alignment wait (1 cycle, 2 if $4014 landed on an odd bus cycle), then 256
// (read source; write $2004) pairs.
func (c *CPU) stepOAMDMA() {
	if c.oamDMAWait > 0 {
		c.tick()
		c.oamDMAWait--
		return
	}

	if !c.oamDMAReadPending {
		c.oamDMALatch = c.read(c.oamDMAAddr + uint16(c.oamDMAIndex))
		c.oamDMAReadPending = true
		return
	}

	c.write(0x2004, c.oamDMALatch)
	c.oamDMAReadPending = false
	c.oamDMAIndex++
	if c.oamDMAIndex >= 256 {
		c.oamDMAActive = false
	}
	c.recomputeDMATimestamp()
}
