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

package powerpc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/savestate"
)

// XER bits.
const (
	xerSO = 0x80000000
	xerOV = 0x40000000
	xerCA = 0x20000000
)

// the value returned by mfspr PVR.
const pvr = 0x00700100

// CPU implements a 32 bit PowerPC.
type CPU struct {
	bus   memory.CPUBus
	lines *interrupt.Lines

	gpr  [32]uint32
	lr   uint32
	ctr  uint32
	xer  uint32
	cr   uint32
	msr  uint32
	srr0 uint32
	srr1 uint32
	sprg [4]uint32

	// time base. incremented once per step
	tb uint64

	pc uint32

	// address of the instruction being executed
	current uint32

	last  cpu.Result
	fault error
}

// NewCPU is the preferred method of initialisation for the CPU type. The bus
// should be big endian. The interrupt lines can be nil.
func NewCPU(bus memory.CPUBus, lines *interrupt.Lines) *CPU {
	return &CPU{
		bus:   bus,
		lines: lines,
	}
}

// Label implements the cpu.CPU interface.
func (mc *CPU) Label() string {
	return "PowerPC"
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%08x LR=%08x CTR=%08x CR=%08x XER=%08x MSR=%08x", mc.pc, mc.lr, mc.ctr, mc.cr, mc.xer, mc.msr)
}

// Reset implements the cpu.CPU interface.
func (mc *CPU) Reset() error {
	mc.gpr = [32]uint32{}
	mc.lr = 0
	mc.ctr = 0
	mc.xer = 0
	mc.cr = 0
	mc.msr = 0
	mc.srr0 = 0
	mc.srr1 = 0
	mc.sprg = [4]uint32{}
	mc.tb = 0
	mc.pc = ResetVector
	mc.last = cpu.Result{}
	mc.fault = nil
	return nil
}

// PC implements the cpu.CPU interface.
func (mc *CPU) PC() uint32 {
	return mc.pc
}

// SetPC implements the cpu.CPU interface. The low two bits are ignored.
func (mc *CPU) SetPC(pc uint32) {
	mc.pc = pc &^ 0x03
}

// LastResult implements the cpu.CPU interface.
func (mc *CPU) LastResult() cpu.Result {
	return mc.last
}

var registerNames []string

func init() {
	registerNames = append(registerNames, "PC")
	for i := 0; i < 32; i++ {
		registerNames = append(registerNames, fmt.Sprintf("r%d", i))
	}
	registerNames = append(registerNames, "LR", "CTR", "XER", "CR", "MSR", "SRR0", "SRR1")
}

// Registers implements the cpu.CPU interface.
func (mc *CPU) Registers() []string {
	return registerNames
}

// gprIndex returns the index of a general purpose register named "r3" or
// "3". The stack pointer can also be named "sp".
func gprIndex(name string) (int, bool) {
	name = strings.ToLower(name)
	if name == "sp" {
		return 1, true
	}
	i, err := strconv.Atoi(strings.TrimPrefix(name, "r"))
	if err != nil || i < 0 || i > 31 {
		return 0, false
	}
	return i, true
}

// Register implements the cpu.CPU interface.
func (mc *CPU) Register(name string) (uint32, bool) {
	switch strings.ToUpper(name) {
	case "PC":
		return mc.pc, true
	case "LR":
		return mc.lr, true
	case "CTR":
		return mc.ctr, true
	case "XER":
		return mc.xer, true
	case "CR":
		return mc.cr, true
	case "MSR":
		return mc.msr, true
	case "SRR0":
		return mc.srr0, true
	case "SRR1":
		return mc.srr1, true
	}
	if i, ok := gprIndex(name); ok {
		return mc.gpr[i], true
	}
	return 0, false
}

// SetRegister implements the cpu.CPU interface.
func (mc *CPU) SetRegister(name string, value uint32) bool {
	switch strings.ToUpper(name) {
	case "PC":
		mc.SetPC(value)
	case "LR":
		mc.lr = value
	case "CTR":
		mc.ctr = value
	case "XER":
		mc.xer = value
	case "CR":
		mc.cr = value
	case "MSR":
		mc.msr = value
	case "SRR0":
		mc.srr0 = value
	case "SRR1":
		mc.srr1 = value
	default:
		i, ok := gprIndex(name)
		if !ok {
			return false
		}
		mc.gpr[i] = value
	}
	return true
}

// the flags are the bits of condition register field 0, the carry and
// overflow bits of XER and the external interrupt enable bit of MSR.
var flagNames = []string{"LT", "GT", "EQ", "SO", "CA", "OV", "EE"}

func (mc *CPU) flagBit(name string) (*uint32, uint32, bool) {
	switch name {
	case "LT":
		return &mc.cr, 0x80000000, true
	case "GT":
		return &mc.cr, 0x40000000, true
	case "EQ":
		return &mc.cr, 0x20000000, true
	case "SO":
		return &mc.cr, 0x10000000, true
	case "CA":
		return &mc.xer, xerCA, true
	case "OV":
		return &mc.xer, xerOV, true
	case "EE":
		return &mc.msr, msrEE, true
	}
	return nil, 0, false
}

// Flags implements the cpu.CPU interface.
func (mc *CPU) Flags() []string {
	return flagNames
}

// Flag implements the cpu.CPU interface.
func (mc *CPU) Flag(name string) (bool, bool) {
	r, bit, ok := mc.flagBit(name)
	if !ok {
		return false, false
	}
	return *r&bit == bit, true
}

// SetFlag implements the cpu.CPU interface.
func (mc *CPU) SetFlag(name string, value bool) bool {
	r, bit, ok := mc.flagBit(name)
	if !ok {
		return false
	}
	if value {
		*r |= bit
	} else {
		*r &^= bit
	}
	return true
}

// SaveState implements the savestate.Snapshotter interface.
func (mc *CPU) SaveState(enc *savestate.Encoder) {
	g := make([]uint64, len(mc.gpr))
	for i := range mc.gpr {
		g[i] = uint64(mc.gpr[i])
	}
	enc.Uints(1, g)
	enc.Uint(2, uint64(mc.lr))
	enc.Uint(3, uint64(mc.ctr))
	enc.Uint(4, uint64(mc.xer))
	enc.Uint(5, uint64(mc.cr))
	enc.Uint(6, uint64(mc.msr))
	enc.Uint(7, uint64(mc.srr0))
	enc.Uint(8, uint64(mc.srr1))
	enc.Uints(9, []uint64{uint64(mc.sprg[0]), uint64(mc.sprg[1]), uint64(mc.sprg[2]), uint64(mc.sprg[3])})
	enc.Uint(10, mc.tb)
	enc.Uint(11, uint64(mc.pc))
}

// RestoreState implements the savestate.Snapshotter interface.
func (mc *CPU) RestoreState(dec *savestate.Decoder) error {
	g := dec.Uints(1)
	if len(g) != len(mc.gpr) {
		return curated.Errorf("powerpc: %v: %d general purpose registers in state", savestate.CorruptError, len(g))
	}
	for i := range mc.gpr {
		mc.gpr[i] = uint32(g[i])
	}
	mc.lr = uint32(dec.Uint(2))
	mc.ctr = uint32(dec.Uint(3))
	mc.xer = uint32(dec.Uint(4))
	mc.cr = uint32(dec.Uint(5))
	mc.msr = uint32(dec.Uint(6))
	mc.srr0 = uint32(dec.Uint(7))
	mc.srr1 = uint32(dec.Uint(8))
	s := dec.Uints(9)
	if len(s) != len(mc.sprg) {
		return curated.Errorf("powerpc: %v: %d SPRG registers in state", savestate.CorruptError, len(s))
	}
	for i := range mc.sprg {
		mc.sprg[i] = uint32(s[i])
	}
	mc.tb = dec.Uint(10)
	mc.pc = uint32(dec.Uint(11))
	mc.last = cpu.Result{}
	return nil
}
