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

package cartridge

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory"
)

// BIOS checks that a raw BIOS image is not empty and no larger than max.
func BIOS(label string, data []uint8, max int) ([]uint8, error) {
	if len(data) == 0 {
		return nil, curated.Errorf("%s: %v: empty BIOS image", label, FormatError)
	}
	if len(data) > max {
		return nil, curated.Errorf("%s: %v: BIOS image too large (%d bytes, max %d)", label, FormatError, len(data), max)
	}
	if len(data)%4 != 0 {
		return nil, curated.Errorf("%s: %v: BIOS image is not word aligned (%d bytes)", label, FormatError, len(data))
	}
	return data, nil
}

const (
	psxMagic     = "PS-X EXE"
	psxHeaderLen = 0x800

	// stack pointer used when the executable doesn't specify one
	psxDefaultSP = 0x801ffff0
)

// PSXEXE is a PlayStation executable.
type PSXEXE struct {
	PC   uint32
	GP   uint32
	Addr uint32
	SP   uint32
	Text []uint8
}

// ParsePSXEXE interprets the header of a PS-X EXE file.
func ParsePSXEXE(data []uint8) (*PSXEXE, error) {
	if len(data) < psxHeaderLen || string(data[:len(psxMagic)]) != psxMagic {
		return nil, curated.Errorf("ps-x exe: %v: missing header", FormatError)
	}

	word := func(offset int) uint32 {
		return memory.Join[uint32](memory.LittleEndian, data[offset:offset+4])
	}
	exe := &PSXEXE{
		PC:   word(0x10),
		GP:   word(0x14),
		Addr: word(0x18),
	}
	size := word(0x1c)
	spBase := word(0x30)
	spSize := word(0x34)

	if uint64(psxHeaderLen)+uint64(size) > uint64(len(data)) {
		return nil, curated.Errorf("ps-x exe: %v: text truncated (%d of %d bytes)", FormatError, len(data)-psxHeaderLen, size)
	}
	exe.Text = data[psxHeaderLen : psxHeaderLen+size]

	if spBase == 0 {
		exe.SP = psxDefaultSP
	} else {
		exe.SP = spBase + spSize
	}

	if exe.PC&0x03 != 0 || exe.Addr&0x03 != 0 {
		return nil, curated.Errorf("ps-x exe: %v: unaligned entry point (%#08x)", FormatError, exe.PC)
	}

	return exe, nil
}

// IsPSXEXE returns true if data begins with the PS-X EXE magic string.
func IsPSXEXE(data []uint8) bool {
	return len(data) >= len(psxMagic) && string(data[:len(psxMagic)]) == psxMagic
}

// MIPS encodings used by the boot stub
func mipsLUI(rt uint32, imm uint32) uint32 {
	return 0x0f<<26 | rt<<16 | imm&0xffff
}

func mipsORI(rt uint32, rs uint32, imm uint32) uint32 {
	return 0x0d<<26 | rs<<21 | rt<<16 | imm&0xffff
}

func mipsJR(rs uint32) uint32 {
	return rs<<21 | 0x08
}

// BootStub returns the little-endian MIPS code that replaces the BIOS. It
// sets the global and stack pointers and jumps to the entry point of the
// executable.
func (exe *PSXEXE) BootStub() []uint8 {
	const (
		t0 = 8
		gp = 28
		sp = 29
	)

	code := []uint32{
		mipsLUI(gp, exe.GP>>16),
		mipsORI(gp, gp, exe.GP),
		mipsLUI(sp, exe.SP>>16),
		mipsORI(sp, sp, exe.SP),
		mipsLUI(t0, exe.PC>>16),
		mipsORI(t0, t0, exe.PC),
		mipsJR(t0),
		0, // delay slot
	}

	return codeWords(memory.LittleEndian, code)
}

// codeWords lays out instruction words in the byte order of the processor.
func codeWords(o memory.ByteOrder, code []uint32) []uint8 {
	b := make([]uint8, len(code)*4)
	for i, c := range code {
		memory.SplitInto(o, c, b[i*4:i*4+4])
	}
	return b
}

// Segment of an executable image to be copied into memory.
type Segment struct {
	Addr uint32
	Data []uint8
}

// PPCImage is a program for the PowerPC based platform.
type PPCImage struct {
	Entry    uint32
	Segments []Segment
}

// ParsePPCELF reads the loadable segments of a big-endian PowerPC ELF file.
// Both 32-bit and 64-bit files are accepted but every segment must lie in
// the 32-bit address space below limit.
func ParsePPCELF(data []uint8, limit uint32) (*PPCImage, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, curated.Errorf("elf: %v: %v", FormatError, err)
	}
	defer f.Close()

	if f.Machine != elf.EM_PPC && f.Machine != elf.EM_PPC64 {
		return nil, curated.Errorf("elf: %v: not a PowerPC executable (%v)", FormatError, f.Machine)
	}
	if f.ByteOrder != binary.BigEndian {
		return nil, curated.Errorf("elf: %v: not big endian", FormatError)
	}

	img := &PPCImage{Entry: uint32(f.Entry)}
	if f.Entry > uint64(limit) {
		return nil, curated.Errorf("elf: %v: entry point out of range (%#x)", FormatError, f.Entry)
	}

	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}
		if p.Paddr+p.Memsz > uint64(limit) && p.Vaddr+p.Memsz > uint64(limit) {
			return nil, curated.Errorf("elf: %v: segment out of range (%#x)", FormatError, p.Vaddr)
		}

		addr := p.Vaddr
		if addr+p.Memsz > uint64(limit) {
			addr = p.Paddr
		}

		// the segment is zero filled beyond the file data
		seg := Segment{Addr: uint32(addr), Data: make([]uint8, p.Memsz)}
		if p.Filesz > 0 {
			n, err := p.ReadAt(seg.Data[:p.Filesz], 0)
			if err != nil || uint64(n) != p.Filesz {
				return nil, curated.Errorf("elf: %v: segment truncated (%#x)", FormatError, p.Vaddr)
			}
		}
		img.Segments = append(img.Segments, seg)
	}

	if len(img.Segments) == 0 {
		return nil, curated.Errorf("elf: %v: no loadable segments", FormatError)
	}

	return img, nil
}

// IsELF returns true if data begins with the ELF magic number.
func IsELF(data []uint8) bool {
	return len(data) >= 4 && string(data[:4]) == elf.ELFMAG
}

// PPC encodings used by the reset trampoline
func ppcLIS(rd uint32, imm uint32) uint32 {
	return 15<<26 | rd<<21 | imm&0xffff
}

func ppcORI(ra uint32, rs uint32, imm uint32) uint32 {
	return 24<<26 | rs<<21 | ra<<16 | imm&0xffff
}

// Trampoline returns the big-endian PowerPC code placed at the reset address
// that branches to entry through the count register.
func Trampoline(entry uint32) []uint8 {
	const r12 = 12

	code := []uint32{
		ppcLIS(r12, entry>>16),
		ppcORI(r12, r12, entry),
		0x7c0903a6 | r12<<21, // mtctr r12
		0x4e800420,           // bctr
	}

	return codeWords(memory.BigEndian, code)
}
