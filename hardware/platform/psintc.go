// This file is part of Emulite.
//
// Emulite is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emulite is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emulite.  If not, see <https://www.gnu.org/licenses/>.

package platform

import (
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/savestate"
)

// psIRQ is the interrupt source for the PlayStation interrupt controllers.
// The controller is the only device connected to the CPU interrupt line.
const psIRQ interrupt.Source = 0

// PlayStation interrupt numbers. The numbering is the same on the PS2 IOP.
const (
	psIntVBlank = 0
	psIntGPU    = 1
	psIntCDROM  = 2
	psIntDMA    = 3
	psIntTimer0 = 4
	psIntPad    = 7
	psIntSPU    = 9
)

// psINTC is the interrupt controller of the PlayStation and of the PS2
// Emotion Engine. Peripherals set bits in the status register and the CPU
// interrupt line is asserted while any unmasked bit is set.
//
// On the PS1 writing to I_STAT acknowledges the bits written as zero and
// writing I_MASK replaces the mask. On the PS2 writing to INTC_STAT
// acknowledges the bits written as one and writing INTC_MASK toggles the
// bits written as one.
type psINTC struct {
	lines  *interrupt.Lines
	toggle bool

	stat uint32
	mask uint32
}

func newPSINTC(lines *interrupt.Lines, toggle bool) *psINTC {
	return &psINTC{lines: lines, toggle: toggle}
}

func (c *psINTC) update() {
	if c.stat&c.mask != 0 {
		c.lines.RaiseIRQ(psIRQ)
	} else {
		c.lines.LowerIRQ(psIRQ)
	}
}

// raise sets an interrupt bit.
func (c *psINTC) raise(n int) {
	c.stat |= 1 << n
	c.update()
}

func (c *psINTC) acknowledge(v uint32) {
	if c.toggle {
		c.stat &^= v
	} else {
		c.stat &= v
	}
	c.update()
}

func (c *psINTC) setMask(v uint32) {
	if c.toggle {
		c.mask ^= v
	} else {
		c.mask = v
	}
	c.update()
}

func (c *psINTC) reset() {
	c.stat = 0
	c.mask = 0
	c.lines.LowerIRQ(psIRQ)
}

// ReadWord implements the memory.WordHandler interface. Register zero is the
// status register. The mask register is at the address of register 2 on
// the PS1 and register 4 on the PS2.
func (c *psINTC) ReadWord(reg uint32) uint32 {
	return c.PeekWord(reg)
}

// PeekWord implements the memory.WordHandler interface.
func (c *psINTC) PeekWord(reg uint32) uint32 {
	switch reg {
	case 0:
		return c.stat
	case c.maskReg():
		return c.mask
	}
	return 0
}

// WriteWord implements the memory.WordHandler interface.
func (c *psINTC) WriteWord(reg uint32, v uint32) {
	switch reg {
	case 0:
		c.acknowledge(v)
	case c.maskReg():
		c.setMask(v)
	}
}

func (c *psINTC) maskReg() uint32 {
	if c.toggle {
		return 4
	}
	return 2
}

// SaveState implements the savestate.Snapshotter interface.
func (c *psINTC) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(c.stat))
	enc.Uint(2, uint64(c.mask))
}

// RestoreState implements the savestate.Snapshotter interface. The
// interrupt line is restored with the other lines.
func (c *psINTC) RestoreState(dec *savestate.Decoder) error {
	c.stat = uint32(dec.Uint(1))
	c.mask = uint32(dec.Uint(2))
	return nil
}
