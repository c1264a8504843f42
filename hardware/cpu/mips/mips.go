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

package mips

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

// CPU implements the MIPS R3000A.
type CPU struct {
	bus   memory.CPUBus
	order memory.ByteOrder
	lines *interrupt.Lines

	gpr [32]uint32
	hi  uint32
	lo  uint32

	// address of the next instruction to be fetched and the address of the
	// instruction after that. a branch changes npc so the instruction at pc
	// is the delay slot
	pc  uint32
	npc uint32

	// the instruction at pc is in a branch delay slot
	delay bool

	cop0 [32]uint32

	// address of the instruction being executed
	current uint32

	// the instruction being executed is in a branch delay slot
	currentDelay bool

	last  cpu.Result
	fault error
}

// NewCPU is the preferred method of initialisation for the CPU type. The byte
// order should be the same as the byte order of the bus. The interrupt lines
// can be nil.
func NewCPU(bus memory.CPUBus, order memory.ByteOrder, lines *interrupt.Lines) *CPU {
	return &CPU{
		bus:   bus,
		order: order,
		lines: lines,
	}
}

// Label implements the cpu.CPU interface.
func (mc *CPU) Label() string {
	return "MIPS R3000A"
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%08x SR=%08x Cause=%08x EPC=%08x", mc.pc, mc.cop0[cop0SR], mc.cop0[cop0Cause], mc.cop0[cop0EPC])
}

// Reset implements the cpu.CPU interface. The SR register is set with BEV so
// exceptions during the boot ROM go to the bootstrap vector.
func (mc *CPU) Reset() error {
	mc.gpr = [32]uint32{}
	mc.hi = 0
	mc.lo = 0
	mc.cop0 = [32]uint32{}
	mc.cop0[cop0SR] = srBEV
	mc.cop0[cop0PRId] = prid
	mc.pc = ResetVector
	mc.npc = ResetVector + 4
	mc.delay = false
	mc.last = cpu.Result{}
	mc.fault = nil
	return nil
}

// PC implements the cpu.CPU interface.
func (mc *CPU) PC() uint32 {
	return mc.pc
}

// SetPC implements the cpu.CPU interface. Any pending branch is forgotten.
func (mc *CPU) SetPC(pc uint32) {
	mc.pc = pc
	mc.npc = pc + 4
	mc.delay = false
}

// LastResult implements the cpu.CPU interface.
func (mc *CPU) LastResult() cpu.Result {
	return mc.last
}

// conventional names of the general purpose registers.
var gprNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var registerNames []string

func init() {
	registerNames = append(registerNames, "PC")
	registerNames = append(registerNames, gprNames[:]...)
	registerNames = append(registerNames, "HI", "LO", "SR", "Cause", "EPC", "BadVAddr")
}

// Registers implements the cpu.CPU interface.
func (mc *CPU) Registers() []string {
	return registerNames
}

// gprIndex returns the index of a general purpose register. Registers can be
// named by their conventional name or by number, with or without a leading
// dollar sign ("sp", "$29", "r29").
func gprIndex(name string) (int, bool) {
	name = strings.ToLower(strings.TrimPrefix(name, "$"))
	for i, n := range gprNames {
		if n == name {
			return i, true
		}
	}
	if name == "s8" {
		return 30, true
	}
	name = strings.TrimPrefix(name, "r")
	i, err := strconv.Atoi(name)
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
	case "HI":
		return mc.hi, true
	case "LO":
		return mc.lo, true
	case "SR":
		return mc.cop0[cop0SR], true
	case "CAUSE":
		return mc.cop0[cop0Cause], true
	case "EPC":
		return mc.cop0[cop0EPC], true
	case "BADVADDR":
		return mc.cop0[cop0BadVAddr], true
	}
	if i, ok := gprIndex(name); ok {
		return mc.gpr[i], true
	}
	return 0, false
}

// SetRegister implements the cpu.CPU interface. Writes to the zero register
// are accepted and ignored.
func (mc *CPU) SetRegister(name string, value uint32) bool {
	switch strings.ToUpper(name) {
	case "PC":
		mc.SetPC(value)
	case "HI":
		mc.hi = value
	case "LO":
		mc.lo = value
	case "SR":
		mc.cop0[cop0SR] = value
	case "CAUSE":
		mc.cop0[cop0Cause] = value
	case "EPC":
		mc.cop0[cop0EPC] = value
	case "BADVADDR":
		mc.cop0[cop0BadVAddr] = value
	default:
		i, ok := gprIndex(name)
		if !ok {
			return false
		}
		mc.setGPR(i, value)
	}
	return true
}

// the R3000A has no condition flags. the status register bits most useful
// when debugging are presented as flags instead
var flagNames = []string{"IEc", "KUc", "IsC", "BEV", "BD"}

func flagBit(name string) (int, uint32, bool) {
	switch name {
	case "IEc":
		return cop0SR, srIEc, true
	case "KUc":
		return cop0SR, srKUc, true
	case "IsC":
		return cop0SR, srIsC, true
	case "BEV":
		return cop0SR, srBEV, true
	case "BD":
		return cop0Cause, causeBD, true
	}
	return 0, 0, false
}

// Flags implements the cpu.CPU interface.
func (mc *CPU) Flags() []string {
	return flagNames
}

// Flag implements the cpu.CPU interface.
func (mc *CPU) Flag(name string) (bool, bool) {
	reg, bit, ok := flagBit(name)
	if !ok {
		return false, false
	}
	return mc.cop0[reg]&bit == bit, true
}

// SetFlag implements the cpu.CPU interface.
func (mc *CPU) SetFlag(name string, value bool) bool {
	reg, bit, ok := flagBit(name)
	if !ok {
		return false
	}
	if value {
		mc.cop0[reg] |= bit
	} else {
		mc.cop0[reg] &^= bit
	}
	return true
}

func (mc *CPU) setGPR(r int, v uint32) {
	if r != 0 {
		mc.gpr[r] = v
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (mc *CPU) SaveState(enc *savestate.Encoder) {
	g := make([]uint64, len(mc.gpr))
	for i := range mc.gpr {
		g[i] = uint64(mc.gpr[i])
	}
	enc.Uints(1, g)
	enc.Uint(2, uint64(mc.hi))
	enc.Uint(3, uint64(mc.lo))
	enc.Uint(4, uint64(mc.pc))
	enc.Uint(5, uint64(mc.npc))
	enc.Bool(6, mc.delay)
	c := make([]uint64, len(mc.cop0))
	for i := range mc.cop0 {
		c[i] = uint64(mc.cop0[i])
	}
	enc.Uints(7, c)
}

// RestoreState implements the savestate.Snapshotter interface.
func (mc *CPU) RestoreState(dec *savestate.Decoder) error {
	g := dec.Uints(1)
	if len(g) != len(mc.gpr) {
		return curated.Errorf("mips: %v: %d general purpose registers in state", savestate.CorruptError, len(g))
	}
	for i := range mc.gpr {
		mc.gpr[i] = uint32(g[i])
	}
	mc.hi = uint32(dec.Uint(2))
	mc.lo = uint32(dec.Uint(3))
	mc.pc = uint32(dec.Uint(4))
	mc.npc = uint32(dec.Uint(5))
	mc.delay = dec.Bool(6)
	c := dec.Uints(7)
	if len(c) != len(mc.cop0) {
		return curated.Errorf("mips: %v: %d coprocessor registers in state", savestate.CorruptError, len(c))
	}
	for i := range mc.cop0 {
		mc.cop0[i] = uint32(c[i])
	}
	mc.last = cpu.Result{}
	return nil
}
