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

package mos6502

import (
	"fmt"

	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/savestate"
)

// Variant of the 6502 family.
type Variant int

// List of supported variants.
const (
	// 16 bit address bus
	MOS6502 Variant = iota

	// the 6502 with only 13 address pins, as used in the Atari 2600
	MOS6507

	// the NES CPU. decimal mode is disabled
	RP2A03

	// the 65C816 in emulation mode. the bank registers extend addresses to
	// 24 bits
	W65C816E
)

func (v Variant) String() string {
	switch v {
	case MOS6507:
		return "MOS 6507"
	case RP2A03:
		return "Ricoh 2A03"
	case W65C816E:
		return "WDC 65C816 (emulation mode)"
	}
	return "MOS 6502"
}

// Interrupt vectors.
const (
	COP   = 0xfff4
	NMI   = 0xfffa
	Reset = 0xfffc
	IRQ   = 0xfffe
)

// CPU implements the 6502 family.
type CPU struct {
	variant Variant
	bus     memory.CPUBus
	lines   *interrupt.Lines

	// addresses are masked before being put on the bus
	addressMask uint32

	// 24 bit addressing (65C816)
	wide bool

	// decimal mode is available
	decimal bool

	pc     uint16
	a      uint8
	x      uint8
	y      uint8
	sp     uint8
	status status

	// 65C816 registers. always zero for the other variants
	b   uint8
	d   uint16
	dbr uint8
	pbr uint8

	// the CPU has executed a KIL instruction and will do nothing until reset
	jammed bool

	// 65C816 WAI and STP
	waiting bool
	stopped bool

	instructions *[256]definition

	// result of the most recent step. the instruction being executed is in
	// the process of being written to this field
	last cpu.Result

	// the first memory fault during a step
	fault error

	// operand information decided during addressing
	imm     uint8
	operand uint16
	baseHi  uint8
	crossed bool
}

// NewCPU is the preferred method of initialisation for the CPU type. The
// interrupt lines can be nil if the platform has no interrupt sources.
func NewCPU(variant Variant, bus memory.CPUBus, lines *interrupt.Lines) *CPU {
	mc := &CPU{
		variant:      variant,
		bus:          bus,
		lines:        lines,
		addressMask:  0xffff,
		decimal:      true,
		instructions: definitions(variant),
	}

	switch variant {
	case MOS6507:
		mc.addressMask = 0x1fff
	case RP2A03:
		mc.decimal = false
	case W65C816E:
		mc.addressMask = 0xffffff
		mc.wide = true
	}

	return mc
}

// Variant returns the 6502 variant.
func (mc *CPU) Variant() Variant {
	return mc.variant
}

// Label implements the cpu.CPU interface.
func (mc *CPU) Label() string {
	return mc.variant.String()
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%04x A=%02x X=%02x Y=%02x SP=%02x SR=%s", mc.pc, mc.a, mc.x, mc.y, mc.sp, mc.status)
}

// Killed returns true if the CPU has been jammed by a KIL instruction.
func (mc *CPU) Killed() bool {
	return mc.jammed
}

// Reset implements the cpu.CPU interface. Registers are put into the power-on
// state and the PC is loaded from the reset vector.
func (mc *CPU) Reset() error {
	mc.fault = nil
	mc.last = cpu.Result{}

	mc.a = 0
	mc.x = 0
	mc.y = 0
	mc.sp = 0xfd
	mc.status = status{InterruptDisable: true}
	mc.b = 0
	mc.d = 0
	mc.dbr = 0
	mc.pbr = 0
	mc.jammed = false
	mc.waiting = false
	mc.stopped = false

	mc.pc = mc.read16(Reset)

	return mc.fault
}

// PC implements the cpu.CPU interface.
func (mc *CPU) PC() uint32 {
	return uint32(mc.pbr)<<16 | uint32(mc.pc)
}

// SetPC implements the cpu.CPU interface.
func (mc *CPU) SetPC(pc uint32) {
	mc.pc = uint16(pc)
	if mc.wide {
		mc.pbr = uint8(pc >> 16)
	}
}

// LastResult implements the cpu.CPU interface.
func (mc *CPU) LastResult() cpu.Result {
	return mc.last
}

var registerNames = []string{"PC", "A", "X", "Y", "SP", "SR"}
var registerNames816 = []string{"PC", "A", "X", "Y", "SP", "SR", "B", "D", "DBR", "PBR"}

// Registers implements the cpu.CPU interface.
func (mc *CPU) Registers() []string {
	if mc.wide {
		return registerNames816
	}
	return registerNames
}

// Register implements the cpu.CPU interface.
func (mc *CPU) Register(name string) (uint32, bool) {
	switch name {
	case "PC":
		return mc.PC(), true
	case "A":
		return uint32(mc.a), true
	case "X":
		return uint32(mc.x), true
	case "Y":
		return uint32(mc.y), true
	case "SP":
		return uint32(mc.sp), true
	case "SR":
		return uint32(mc.status.value()), true
	}

	if mc.wide {
		switch name {
		case "B":
			return uint32(mc.b), true
		case "D":
			return uint32(mc.d), true
		case "DBR":
			return uint32(mc.dbr), true
		case "PBR":
			return uint32(mc.pbr), true
		}
	}

	return 0, false
}

// SetRegister implements the cpu.CPU interface.
func (mc *CPU) SetRegister(name string, value uint32) bool {
	switch name {
	case "PC":
		mc.SetPC(value)
	case "A":
		mc.a = uint8(value)
	case "X":
		mc.x = uint8(value)
	case "Y":
		mc.y = uint8(value)
	case "SP":
		mc.sp = uint8(value)
	case "SR":
		mc.status.load(uint8(value))
	default:
		if !mc.wide {
			return false
		}
		switch name {
		case "B":
			mc.b = uint8(value)
		case "D":
			mc.d = uint16(value)
		case "DBR":
			mc.dbr = uint8(value)
		case "PBR":
			mc.pbr = uint8(value)
		default:
			return false
		}
	}
	return true
}

// Flags implements the cpu.CPU interface.
func (mc *CPU) Flags() []string {
	return flagNames
}

// Flag implements the cpu.CPU interface.
func (mc *CPU) Flag(name string) (bool, bool) {
	f, ok := mc.status.flag(name)
	if !ok {
		return false, false
	}
	return *f, true
}

// SetFlag implements the cpu.CPU interface.
func (mc *CPU) SetFlag(name string, value bool) bool {
	f, ok := mc.status.flag(name)
	if !ok {
		return false
	}
	*f = value
	return true
}

// SaveState implements the savestate.Snapshotter interface.
func (mc *CPU) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(mc.pc))
	enc.Uint(2, uint64(mc.a))
	enc.Uint(3, uint64(mc.x))
	enc.Uint(4, uint64(mc.y))
	enc.Uint(5, uint64(mc.sp))
	enc.Uint(6, uint64(mc.status.value()))
	enc.Uint(7, uint64(mc.b))
	enc.Uint(8, uint64(mc.d))
	enc.Uint(9, uint64(mc.dbr))
	enc.Uint(10, uint64(mc.pbr))
	enc.Bool(11, mc.jammed)
	enc.Bool(12, mc.waiting)
	enc.Bool(13, mc.stopped)
}

// RestoreState implements the savestate.Snapshotter interface.
func (mc *CPU) RestoreState(dec *savestate.Decoder) error {
	mc.pc = uint16(dec.Uint(1))
	mc.a = uint8(dec.Uint(2))
	mc.x = uint8(dec.Uint(3))
	mc.y = uint8(dec.Uint(4))
	mc.sp = uint8(dec.Uint(5))
	mc.status.load(uint8(dec.Uint(6)))
	mc.b = uint8(dec.Uint(7))
	mc.d = uint16(dec.Uint(8))
	mc.dbr = uint8(dec.Uint(9))
	mc.pbr = uint8(dec.Uint(10))
	mc.jammed = dec.Bool(11)
	mc.waiting = dec.Bool(12)
	mc.stopped = dec.Bool(13)
	mc.last = cpu.Result{}
	return nil
}
