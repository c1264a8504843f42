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

// mode describes how the operand of an instruction is found.
type mode int

const (
	implied mode = iota
	accumulator
	immediate
	relative

	zeroPage
	zeroPageX
	zeroPageY

	absolute
	absoluteX
	absoluteY
	indirect

	indexedIndirect // (zp,X)
	indirectIndexed // (zp),Y

	// 65C816 modes
	dpIndirect             // (dp)
	absIndexedIndirect     // (abs,X)
	long                   // long
	longX                  // long,X
	dpIndirectLong         // [dp]
	dpIndirectLongY        // [dp],Y
	stackRelative          // sr,S
	stackRelativeIndirectY // (sr,S),Y
	blockMove              // srcbank,destbank
	relativeLong
	absIndirectLong // [abs]
)

// length of instruction for each mode, including the opcode
func (m mode) bytes() int {
	switch m {
	case implied, accumulator:
		return 1
	case absolute, absoluteX, absoluteY, indirect, absIndexedIndirect, blockMove, relativeLong, absIndirectLong:
		return 3
	case long, longX:
		return 4
	}
	return 2
}

// definition of a single opcode.
type definition struct {
	mnemonic string
	mode     mode
	cycles   int

	// one extra cycle if the indexed address crosses a page
	pageSensitive bool

	// not part of the documented instruction set. the NMOS "illegal" opcodes
	undocumented bool
}

func op(mnemonic string, m mode, cycles int) definition {
	return definition{mnemonic: mnemonic, mode: m, cycles: cycles}
}

func opP(mnemonic string, m mode, cycles int) definition {
	return definition{mnemonic: mnemonic, mode: m, cycles: cycles, pageSensitive: true}
}

func ill(mnemonic string, m mode, cycles int) definition {
	return definition{mnemonic: mnemonic, mode: m, cycles: cycles, undocumented: true}
}

func illP(mnemonic string, m mode, cycles int) definition {
	return definition{mnemonic: mnemonic, mode: m, cycles: cycles, pageSensitive: true, undocumented: true}
}

// the KIL opcodes jam the CPU. the instruction consumes a single cycle and
// every subsequent step does the same until reset
var kil = ill("KIL", implied, 1)

// nmos is the instruction set of the NMOS 6502 including the undocumented
// opcodes. the unstable opcodes (ANE, LXA, SHA, SHX, SHY, TAS) use the most
// commonly observed behaviour.
var nmos = [256]definition{
	0x00: op("BRK", immediate, 7), 0x01: op("ORA", indexedIndirect, 6), 0x02: kil, 0x03: ill("SLO", indexedIndirect, 8),
	0x04: ill("NOP", zeroPage, 3), 0x05: op("ORA", zeroPage, 3), 0x06: op("ASL", zeroPage, 5), 0x07: ill("SLO", zeroPage, 5),
	0x08: op("PHP", implied, 3), 0x09: op("ORA", immediate, 2), 0x0a: op("ASL", accumulator, 2), 0x0b: ill("ANC", immediate, 2),
	0x0c: ill("NOP", absolute, 4), 0x0d: op("ORA", absolute, 4), 0x0e: op("ASL", absolute, 6), 0x0f: ill("SLO", absolute, 6),

	0x10: op("BPL", relative, 2), 0x11: opP("ORA", indirectIndexed, 5), 0x12: kil, 0x13: ill("SLO", indirectIndexed, 8),
	0x14: ill("NOP", zeroPageX, 4), 0x15: op("ORA", zeroPageX, 4), 0x16: op("ASL", zeroPageX, 6), 0x17: ill("SLO", zeroPageX, 6),
	0x18: op("CLC", implied, 2), 0x19: opP("ORA", absoluteY, 4), 0x1a: ill("NOP", implied, 2), 0x1b: ill("SLO", absoluteY, 7),
	0x1c: illP("NOP", absoluteX, 4), 0x1d: opP("ORA", absoluteX, 4), 0x1e: op("ASL", absoluteX, 7), 0x1f: ill("SLO", absoluteX, 7),

	0x20: op("JSR", absolute, 6), 0x21: op("AND", indexedIndirect, 6), 0x22: kil, 0x23: ill("RLA", indexedIndirect, 8),
	0x24: op("BIT", zeroPage, 3), 0x25: op("AND", zeroPage, 3), 0x26: op("ROL", zeroPage, 5), 0x27: ill("RLA", zeroPage, 5),
	0x28: op("PLP", implied, 4), 0x29: op("AND", immediate, 2), 0x2a: op("ROL", accumulator, 2), 0x2b: ill("ANC", immediate, 2),
	0x2c: op("BIT", absolute, 4), 0x2d: op("AND", absolute, 4), 0x2e: op("ROL", absolute, 6), 0x2f: ill("RLA", absolute, 6),

	0x30: op("BMI", relative, 2), 0x31: opP("AND", indirectIndexed, 5), 0x32: kil, 0x33: ill("RLA", indirectIndexed, 8),
	0x34: ill("NOP", zeroPageX, 4), 0x35: op("AND", zeroPageX, 4), 0x36: op("ROL", zeroPageX, 6), 0x37: ill("RLA", zeroPageX, 6),
	0x38: op("SEC", implied, 2), 0x39: opP("AND", absoluteY, 4), 0x3a: ill("NOP", implied, 2), 0x3b: ill("RLA", absoluteY, 7),
	0x3c: illP("NOP", absoluteX, 4), 0x3d: opP("AND", absoluteX, 4), 0x3e: op("ROL", absoluteX, 7), 0x3f: ill("RLA", absoluteX, 7),

	0x40: op("RTI", implied, 6), 0x41: op("EOR", indexedIndirect, 6), 0x42: kil, 0x43: ill("SRE", indexedIndirect, 8),
	0x44: ill("NOP", zeroPage, 3), 0x45: op("EOR", zeroPage, 3), 0x46: op("LSR", zeroPage, 5), 0x47: ill("SRE", zeroPage, 5),
	0x48: op("PHA", implied, 3), 0x49: op("EOR", immediate, 2), 0x4a: op("LSR", accumulator, 2), 0x4b: ill("ALR", immediate, 2),
	0x4c: op("JMP", absolute, 3), 0x4d: op("EOR", absolute, 4), 0x4e: op("LSR", absolute, 6), 0x4f: ill("SRE", absolute, 6),

	0x50: op("BVC", relative, 2), 0x51: opP("EOR", indirectIndexed, 5), 0x52: kil, 0x53: ill("SRE", indirectIndexed, 8),
	0x54: ill("NOP", zeroPageX, 4), 0x55: op("EOR", zeroPageX, 4), 0x56: op("LSR", zeroPageX, 6), 0x57: ill("SRE", zeroPageX, 6),
	0x58: op("CLI", implied, 2), 0x59: opP("EOR", absoluteY, 4), 0x5a: ill("NOP", implied, 2), 0x5b: ill("SRE", absoluteY, 7),
	0x5c: illP("NOP", absoluteX, 4), 0x5d: opP("EOR", absoluteX, 4), 0x5e: op("LSR", absoluteX, 7), 0x5f: ill("SRE", absoluteX, 7),

	0x60: op("RTS", implied, 6), 0x61: op("ADC", indexedIndirect, 6), 0x62: kil, 0x63: ill("RRA", indexedIndirect, 8),
	0x64: ill("NOP", zeroPage, 3), 0x65: op("ADC", zeroPage, 3), 0x66: op("ROR", zeroPage, 5), 0x67: ill("RRA", zeroPage, 5),
	0x68: op("PLA", implied, 4), 0x69: op("ADC", immediate, 2), 0x6a: op("ROR", accumulator, 2), 0x6b: ill("ARR", immediate, 2),
	0x6c: op("JMP", indirect, 5), 0x6d: op("ADC", absolute, 4), 0x6e: op("ROR", absolute, 6), 0x6f: ill("RRA", absolute, 6),

	0x70: op("BVS", relative, 2), 0x71: opP("ADC", indirectIndexed, 5), 0x72: kil, 0x73: ill("RRA", indirectIndexed, 8),
	0x74: ill("NOP", zeroPageX, 4), 0x75: op("ADC", zeroPageX, 4), 0x76: op("ROR", zeroPageX, 6), 0x77: ill("RRA", zeroPageX, 6),
	0x78: op("SEI", implied, 2), 0x79: opP("ADC", absoluteY, 4), 0x7a: ill("NOP", implied, 2), 0x7b: ill("RRA", absoluteY, 7),
	0x7c: illP("NOP", absoluteX, 4), 0x7d: opP("ADC", absoluteX, 4), 0x7e: op("ROR", absoluteX, 7), 0x7f: ill("RRA", absoluteX, 7),

	0x80: ill("NOP", immediate, 2), 0x81: op("STA", indexedIndirect, 6), 0x82: ill("NOP", immediate, 2), 0x83: ill("SAX", indexedIndirect, 6),
	0x84: op("STY", zeroPage, 3), 0x85: op("STA", zeroPage, 3), 0x86: op("STX", zeroPage, 3), 0x87: ill("SAX", zeroPage, 3),
	0x88: op("DEY", implied, 2), 0x89: ill("NOP", immediate, 2), 0x8a: op("TXA", implied, 2), 0x8b: ill("ANE", immediate, 2),
	0x8c: op("STY", absolute, 4), 0x8d: op("STA", absolute, 4), 0x8e: op("STX", absolute, 4), 0x8f: ill("SAX", absolute, 4),

	0x90: op("BCC", relative, 2), 0x91: op("STA", indirectIndexed, 6), 0x92: kil, 0x93: ill("SHA", indirectIndexed, 6),
	0x94: op("STY", zeroPageX, 4), 0x95: op("STA", zeroPageX, 4), 0x96: op("STX", zeroPageY, 4), 0x97: ill("SAX", zeroPageY, 4),
	0x98: op("TYA", implied, 2), 0x99: op("STA", absoluteY, 5), 0x9a: op("TXS", implied, 2), 0x9b: ill("TAS", absoluteY, 5),
	0x9c: ill("SHY", absoluteX, 5), 0x9d: op("STA", absoluteX, 5), 0x9e: ill("SHX", absoluteY, 5), 0x9f: ill("SHA", absoluteY, 5),

	0xa0: op("LDY", immediate, 2), 0xa1: op("LDA", indexedIndirect, 6), 0xa2: op("LDX", immediate, 2), 0xa3: ill("LAX", indexedIndirect, 6),
	0xa4: op("LDY", zeroPage, 3), 0xa5: op("LDA", zeroPage, 3), 0xa6: op("LDX", zeroPage, 3), 0xa7: ill("LAX", zeroPage, 3),
	0xa8: op("TAY", implied, 2), 0xa9: op("LDA", immediate, 2), 0xaa: op("TAX", implied, 2), 0xab: ill("LXA", immediate, 2),
	0xac: op("LDY", absolute, 4), 0xad: op("LDA", absolute, 4), 0xae: op("LDX", absolute, 4), 0xaf: ill("LAX", absolute, 4),

	0xb0: op("BCS", relative, 2), 0xb1: opP("LDA", indirectIndexed, 5), 0xb2: kil, 0xb3: illP("LAX", indirectIndexed, 5),
	0xb4: op("LDY", zeroPageX, 4), 0xb5: op("LDA", zeroPageX, 4), 0xb6: op("LDX", zeroPageY, 4), 0xb7: ill("LAX", zeroPageY, 4),
	0xb8: op("CLV", implied, 2), 0xb9: opP("LDA", absoluteY, 4), 0xba: op("TSX", implied, 2), 0xbb: illP("LAS", absoluteY, 4),
	0xbc: opP("LDY", absoluteX, 4), 0xbd: opP("LDA", absoluteX, 4), 0xbe: opP("LDX", absoluteY, 4), 0xbf: illP("LAX", absoluteY, 4),

	0xc0: op("CPY", immediate, 2), 0xc1: op("CMP", indexedIndirect, 6), 0xc2: ill("NOP", immediate, 2), 0xc3: ill("DCP", indexedIndirect, 8),
	0xc4: op("CPY", zeroPage, 3), 0xc5: op("CMP", zeroPage, 3), 0xc6: op("DEC", zeroPage, 5), 0xc7: ill("DCP", zeroPage, 5),
	0xc8: op("INY", implied, 2), 0xc9: op("CMP", immediate, 2), 0xca: op("DEX", implied, 2), 0xcb: ill("SBX", immediate, 2),
	0xcc: op("CPY", absolute, 4), 0xcd: op("CMP", absolute, 4), 0xce: op("DEC", absolute, 6), 0xcf: ill("DCP", absolute, 6),

	0xd0: op("BNE", relative, 2), 0xd1: opP("CMP", indirectIndexed, 5), 0xd2: kil, 0xd3: ill("DCP", indirectIndexed, 8),
	0xd4: ill("NOP", zeroPageX, 4), 0xd5: op("CMP", zeroPageX, 4), 0xd6: op("DEC", zeroPageX, 6), 0xd7: ill("DCP", zeroPageX, 6),
	0xd8: op("CLD", implied, 2), 0xd9: opP("CMP", absoluteY, 4), 0xda: ill("NOP", implied, 2), 0xdb: ill("DCP", absoluteY, 7),
	0xdc: illP("NOP", absoluteX, 4), 0xdd: opP("CMP", absoluteX, 4), 0xde: op("DEC", absoluteX, 7), 0xdf: ill("DCP", absoluteX, 7),

	0xe0: op("CPX", immediate, 2), 0xe1: op("SBC", indexedIndirect, 6), 0xe2: ill("NOP", immediate, 2), 0xe3: ill("ISC", indexedIndirect, 8),
	0xe4: op("CPX", zeroPage, 3), 0xe5: op("SBC", zeroPage, 3), 0xe6: op("INC", zeroPage, 5), 0xe7: ill("ISC", zeroPage, 5),
	0xe8: op("INX", implied, 2), 0xe9: op("SBC", immediate, 2), 0xea: op("NOP", implied, 2), 0xeb: ill("SBC", immediate, 2),
	0xec: op("CPX", absolute, 4), 0xed: op("SBC", absolute, 4), 0xee: op("INC", absolute, 6), 0xef: ill("ISC", absolute, 6),

	0xf0: op("BEQ", relative, 2), 0xf1: opP("SBC", indirectIndexed, 5), 0xf2: kil, 0xf3: ill("ISC", indirectIndexed, 8),
	0xf4: ill("NOP", zeroPageX, 4), 0xf5: op("SBC", zeroPageX, 4), 0xf6: op("INC", zeroPageX, 6), 0xf7: ill("ISC", zeroPageX, 6),
	0xf8: op("SED", implied, 2), 0xf9: opP("SBC", absoluteY, 4), 0xfa: ill("NOP", implied, 2), 0xfb: ill("ISC", absoluteY, 7),
	0xfc: illP("NOP", absoluteX, 4), 0xfd: opP("SBC", absoluteX, 4), 0xfe: op("INC", absoluteX, 7), 0xff: ill("ISC", absoluteX, 7),
}

// the 65C816 in emulation mode has no undocumented opcodes. every slot that
// is undocumented on the NMOS part is a 65C02 or 65C816 instruction
var emulationMode = map[uint8]definition{
	0x02: op("COP", immediate, 7), 0x03: op("ORA", stackRelative, 4), 0x04: op("TSB", zeroPage, 5), 0x07: op("ORA", dpIndirectLong, 6),
	0x0b: op("PHD", implied, 4), 0x0c: op("TSB", absolute, 6), 0x0f: op("ORA", long, 5),
	0x12: op("ORA", dpIndirect, 5), 0x13: op("ORA", stackRelativeIndirectY, 7), 0x14: op("TRB", zeroPage, 5), 0x17: op("ORA", dpIndirectLongY, 6),
	0x1a: op("INC", accumulator, 2), 0x1b: op("TCS", implied, 2), 0x1c: op("TRB", absolute, 6), 0x1f: op("ORA", longX, 5),

	0x22: op("JSL", long, 8), 0x23: op("AND", stackRelative, 4), 0x27: op("AND", dpIndirectLong, 6), 0x2b: op("PLD", implied, 5),
	0x2f: op("AND", long, 5),
	0x32: op("AND", dpIndirect, 5), 0x33: op("AND", stackRelativeIndirectY, 7), 0x34: op("BIT", zeroPageX, 4), 0x37: op("AND", dpIndirectLongY, 6),
	0x3a: op("DEC", accumulator, 2), 0x3b: op("TSC", implied, 2), 0x3c: opP("BIT", absoluteX, 4), 0x3f: op("AND", longX, 5),

	0x42: op("WDM", immediate, 2), 0x43: op("EOR", stackRelative, 4), 0x44: op("MVP", blockMove, 7), 0x47: op("EOR", dpIndirectLong, 6),
	0x4b: op("PHK", implied, 3), 0x4f: op("EOR", long, 5),
	0x52: op("EOR", dpIndirect, 5), 0x53: op("EOR", stackRelativeIndirectY, 7), 0x54: op("MVN", blockMove, 7), 0x57: op("EOR", dpIndirectLongY, 6),
	0x5a: op("PHY", implied, 3), 0x5b: op("TCD", implied, 2), 0x5c: op("JML", long, 4), 0x5f: op("EOR", longX, 5),

	0x62: op("PER", relativeLong, 6), 0x63: op("ADC", stackRelative, 4), 0x64: op("STZ", zeroPage, 3), 0x67: op("ADC", dpIndirectLong, 6),
	0x6b: op("RTL", implied, 6), 0x6f: op("ADC", long, 5),
	0x72: op("ADC", dpIndirect, 5), 0x73: op("ADC", stackRelativeIndirectY, 7), 0x74: op("STZ", zeroPageX, 4), 0x77: op("ADC", dpIndirectLongY, 6),
	0x7a: op("PLY", implied, 4), 0x7b: op("TDC", implied, 2), 0x7c: op("JMP", absIndexedIndirect, 6), 0x7f: op("ADC", longX, 5),

	0x80: op("BRA", relative, 2), 0x82: op("BRL", relativeLong, 4), 0x83: op("STA", stackRelative, 4), 0x87: op("STA", dpIndirectLong, 6),
	0x89: op("BIT", immediate, 2), 0x8b: op("PHB", implied, 3), 0x8f: op("STA", long, 5),
	0x92: op("STA", dpIndirect, 5), 0x93: op("STA", stackRelativeIndirectY, 7), 0x97: op("STA", dpIndirectLongY, 6),
	0x9b: op("TXY", implied, 2), 0x9c: op("STZ", absolute, 4), 0x9e: op("STZ", absoluteX, 5), 0x9f: op("STA", longX, 5),

	0xa3: op("LDA", stackRelative, 4), 0xa7: op("LDA", dpIndirectLong, 6), 0xab: op("PLB", implied, 4), 0xaf: op("LDA", long, 5),
	0xb2: op("LDA", dpIndirect, 5), 0xb3: op("LDA", stackRelativeIndirectY, 7), 0xb7: op("LDA", dpIndirectLongY, 6),
	0xbb: op("TYX", implied, 2), 0xbf: op("LDA", longX, 5),

	0xc2: op("REP", immediate, 3), 0xc3: op("CMP", stackRelative, 4), 0xc7: op("CMP", dpIndirectLong, 6), 0xcb: op("WAI", implied, 3),
	0xcf: op("CMP", long, 5),
	0xd2: op("CMP", dpIndirect, 5), 0xd3: op("CMP", stackRelativeIndirectY, 7), 0xd4: op("PEI", zeroPage, 6), 0xd7: op("CMP", dpIndirectLongY, 6),
	0xda: op("PHX", implied, 3), 0xdb: op("STP", implied, 3), 0xdc: op("JML", absIndirectLong, 6), 0xdf: op("CMP", longX, 5),

	0xe2: op("SEP", immediate, 3), 0xe3: op("SBC", stackRelative, 4), 0xe7: op("SBC", dpIndirectLong, 6), 0xeb: op("XBA", implied, 3),
	0xef: op("SBC", long, 5),
	0xf2: op("SBC", dpIndirect, 5), 0xf3: op("SBC", stackRelativeIndirectY, 7), 0xf4: op("PEA", absolute, 5), 0xf7: op("SBC", dpIndirectLongY, 6),
	0xfa: op("PLX", implied, 4), 0xfb: op("XCE", implied, 2), 0xfc: op("JSR", absIndexedIndirect, 8), 0xff: op("SBC", longX, 5),
}

// definitions returns the opcode table for the variant.
func definitions(v Variant) *[256]definition {
	t := nmos
	if v == W65C816E {
		for opcode, defn := range emulationMode {
			t[opcode] = defn
		}
	}
	return &t
}
