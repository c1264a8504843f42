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

package cartridge_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/test"
)

func atariImage(size int) []uint8 {
	d := make([]uint8, size)
	for i := range d {
		d[i] = uint8(i / 4096)
	}
	return d
}

func TestAtariSchemes(t *testing.T) {
	for _, c := range []struct {
		size  int
		id    string
		banks int
	}{
		{2048, "2K", 1},
		{4096, "4K", 1},
		{8192, "F8", 2},
		{16384, "F6", 4},
		{32768, "F4", 8},
	} {
		b, err := cartridge.NewAtari(atariImage(c.size))
		test.DemandSuccess(t, err, c.id)
		test.ExpectEquality(t, b.Label(), c.id)
		test.ExpectEquality(t, b.NumBanks(), c.banks, c.id)
	}

	_, err := cartridge.NewAtari(atariImage(3000))
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

func TestAtariF6Hotspots(t *testing.T) {
	b, err := cartridge.NewAtari(atariImage(16384))
	test.DemandSuccess(t, err)

	// start bank
	test.ExpectEquality(t, b.Window(0), 1)

	for bank := 0; bank < 4; bank++ {
		_, _ = b.Read(0x0ff6 + uint32(bank))
		test.ExpectEquality(t, b.Window(0), bank)
		v, _ := b.Read(0x0000)
		test.ExpectEquality(t, v, uint8(bank))
	}

	// writes to hotspots also switch
	test.ExpectSuccess(t, b.Write(0x0ff7, 0))
	test.ExpectEquality(t, b.Window(0), 1)

	// addresses just outside the hotspots do not
	_, _ = b.Read(0x0ffa)
	test.ExpectEquality(t, b.Window(0), 1)
}

func TestAtari2KMirror(t *testing.T) {
	d := atariImage(2048)
	d[0x10] = 0xee
	b, err := cartridge.NewAtari(d)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.Peek(0x0810), uint8(0xee))
}

func inesImage(mapper int, prgBanks int, chrBanks int) []uint8 {
	d := make([]uint8, 16+prgBanks*16384+chrBanks*8192)
	copy(d, []uint8{'N', 'E', 'S', 0x1a})
	d[4] = uint8(prgBanks)
	d[5] = uint8(chrBanks)
	d[6] = uint8(mapper&0x0f)<<4 | 0x01
	d[7] = uint8(mapper & 0xf0)
	for b := 0; b < prgBanks; b++ {
		for i := 0; i < 16384; i++ {
			d[16+b*16384+i] = uint8(b)
		}
	}
	return d
}

func TestINES(t *testing.T) {
	img, err := cartridge.ParseINES(inesImage(0, 1, 1))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Mapper, 0)
	test.ExpectEquality(t, img.Mirroring, cartridge.Vertical)
	test.ExpectEquality(t, len(img.PRG), 16384)
	test.ExpectEquality(t, len(img.CHR), 8192)

	dev, err := img.PRGDevice()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, dev.Label(), "NROM")

	_, err = cartridge.ParseINES([]uint8{1, 2, 3})
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))

	_, err = cartridge.ParseINES(inesImage(4, 2, 1))
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))

	// truncated image
	_, err = cartridge.ParseINES(inesImage(0, 1, 1)[:1000])
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

func TestUxROM(t *testing.T) {
	img, err := cartridge.ParseINES(inesImage(2, 8, 0))
	test.DemandSuccess(t, err)

	dev, err := img.PRGDevice()
	test.DemandSuccess(t, err)
	b := test.DemandImplements[*memory.Banked](t, dev)

	// upper window is fixed to the last bank
	test.ExpectEquality(t, b.Peek(0x4000), uint8(7))
	test.ExpectEquality(t, b.Peek(0x0000), uint8(0))

	test.ExpectSuccess(t, b.Write(0x1234, 5))
	test.ExpectEquality(t, b.Peek(0x0000), uint8(5))
	test.ExpectEquality(t, b.Peek(0x4000), uint8(7))
}

func TestLoROM(t *testing.T) {
	d := make([]uint8, 0x20000)
	for i := range d {
		d[i] = uint8(i >> 15)
	}
	copy(d[0x7fc0:], "EMULITE TEST         ")

	r, err := cartridge.NewLoROM(d)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.Title(), "EMULITE TEST")

	test.ExpectEquality(t, r.Peek(0x008000), uint8(0))
	test.ExpectEquality(t, r.Peek(0x018000), uint8(1))
	test.ExpectEquality(t, r.Peek(0x818000), uint8(1))
	test.ExpectEquality(t, r.Peek(0x038000), uint8(3))

	// the image is mirrored beyond its size
	test.ExpectEquality(t, r.Peek(0x048000), uint8(0))
	test.ExpectEquality(t, r.Peek(0x058000), uint8(1))

	v, err := r.Read(0x028000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(2))

	// lower half of a bank, WRAM and SRAM are not ROM
	for _, a := range []uint32{0x001000, 0x7e8000, 0x700000} {
		_, err = r.Read(a)
		test.ExpectSuccess(t, errors.Is(err, memory.FaultError))
		test.ExpectEquality(t, r.Peek(a), uint8(0))
	}

	// copier header is removed
	h := make([]uint8, 512+len(d))
	copy(h[512:], d)
	r, err = cartridge.NewLoROM(h)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.Size(), len(d))

	_, err = cartridge.NewLoROM(make([]uint8, 1000))
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

func TestPSXEXE(t *testing.T) {
	d := make([]uint8, 0x800+16)
	copy(d, "PS-X EXE")
	binary.LittleEndian.PutUint32(d[0x10:], 0x80010000)
	binary.LittleEndian.PutUint32(d[0x14:], 0x8001ff00)
	binary.LittleEndian.PutUint32(d[0x18:], 0x80010000)
	binary.LittleEndian.PutUint32(d[0x1c:], 16)

	test.ExpectSuccess(t, cartridge.IsPSXEXE(d))
	exe, err := cartridge.ParsePSXEXE(d)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, exe.PC, uint32(0x80010000))
	test.ExpectEquality(t, exe.SP, uint32(0x801ffff0))
	test.ExpectEquality(t, len(exe.Text), 16)

	stub := exe.BootStub()
	test.ExpectEquality(t, len(stub), 32)

	// lui gp, 0x8001
	test.ExpectEquality(t, binary.LittleEndian.Uint32(stub), uint32(0x3c1c8001))

	// jr t0
	test.ExpectEquality(t, binary.LittleEndian.Uint32(stub[24:]), uint32(0x01000008))

	// text size larger than file
	binary.LittleEndian.PutUint32(d[0x1c:], 0x1000)
	_, err = cartridge.ParsePSXEXE(d)
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

func TestBIOS(t *testing.T) {
	_, err := cartridge.BIOS("ps1", make([]uint8, 1024), 512*1024)
	test.ExpectSuccess(t, err)
	_, err = cartridge.BIOS("ps1", make([]uint8, 513*1024), 512*1024)
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
	_, err = cartridge.BIOS("ps1", nil, 512*1024)
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

// ppcELF builds a minimal 32-bit big-endian PowerPC executable with one
// loadable segment.
func ppcELF(entry uint32, vaddr uint32, text []uint8, memsz uint32) []uint8 {
	const ehsize = 52
	const phsize = 32
	d := make([]uint8, ehsize+phsize+len(text))
	be := binary.BigEndian

	copy(d, []uint8{0x7f, 'E', 'L', 'F', 1, 2, 1})
	be.PutUint16(d[16:], 2)  // ET_EXEC
	be.PutUint16(d[18:], 20) // EM_PPC
	be.PutUint32(d[20:], 1)
	be.PutUint32(d[24:], entry)
	be.PutUint32(d[28:], ehsize)
	be.PutUint16(d[40:], ehsize)
	be.PutUint16(d[42:], phsize)
	be.PutUint16(d[44:], 1)

	ph := d[ehsize:]
	be.PutUint32(ph[0:], 1) // PT_LOAD
	be.PutUint32(ph[4:], ehsize+phsize)
	be.PutUint32(ph[8:], vaddr)
	be.PutUint32(ph[12:], vaddr)
	be.PutUint32(ph[16:], uint32(len(text)))
	be.PutUint32(ph[20:], memsz)
	be.PutUint32(ph[24:], 5)
	be.PutUint32(ph[28:], 4)

	copy(d[ehsize+phsize:], text)
	return d
}

func TestPPCELF(t *testing.T) {
	d := ppcELF(0x10000, 0x10000, []uint8{0x60, 0x00, 0x00, 0x00}, 16)
	test.ExpectSuccess(t, cartridge.IsELF(d))

	img, err := cartridge.ParsePPCELF(d, 0x0fffffff)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Entry, uint32(0x10000))
	test.DemandEquality(t, len(img.Segments), 1)
	test.ExpectEquality(t, img.Segments[0].Addr, uint32(0x10000))
	test.ExpectEquality(t, len(img.Segments[0].Data), 16)
	test.ExpectEquality(t, img.Segments[0].Data[0], uint8(0x60))

	// segment beyond the limit
	_, err = cartridge.ParsePPCELF(ppcELF(0x100, 0x20000000, []uint8{0, 0, 0, 0}, 4), 0x0fffffff)
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))

	_, err = cartridge.ParsePPCELF([]uint8("not an elf"), 0x0fffffff)
	test.ExpectSuccess(t, errors.Is(err, cartridge.FormatError))
}

func TestTrampoline(t *testing.T) {
	b := cartridge.Trampoline(0x00123456)
	test.DemandEquality(t, len(b), 16)
	test.ExpectEquality(t, binary.BigEndian.Uint32(b[0:]), uint32(0x3d800012))
	test.ExpectEquality(t, binary.BigEndian.Uint32(b[4:]), uint32(0x618c3456))
	test.ExpectEquality(t, binary.BigEndian.Uint32(b[8:]), uint32(0x7d8903a6))
	test.ExpectEquality(t, binary.BigEndian.Uint32(b[12:]), uint32(0x4e800420))
}
