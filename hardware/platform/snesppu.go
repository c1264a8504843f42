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
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
)

// PPU registers as offsets from 0x2100.
const (
	snesINIDISP  = 0x00
	snesOAMADDL  = 0x02
	snesOAMADDH  = 0x03
	snesOAMDATA  = 0x04
	snesBGMODE   = 0x05
	snesBG1SC    = 0x07
	snesBG12NBA  = 0x0b
	snesBG1HOFS  = 0x0d
	snesBG1VOFS  = 0x0e
	snesVMAIN    = 0x15
	snesVMADDL   = 0x16
	snesVMADDH   = 0x17
	snesVMDATAL  = 0x18
	snesVMDATAH  = 0x19
	snesM7A      = 0x1b
	snesM7B      = 0x1c
	snesCGADD    = 0x21
	snesCGDATA   = 0x22
	snesTM       = 0x2c
	snesMPYL     = 0x34
	snesMPYM     = 0x35
	snesMPYH     = 0x36
	snesSLHV     = 0x37
	snesRDOAM    = 0x38
	snesRDVRAML  = 0x39
	snesRDVRAMH  = 0x3a
	snesRDCGRAM  = 0x3b
	snesOPHCT    = 0x3c
	snesOPVCT    = 0x3d
	snesSTAT77   = 0x3e
	snesSTAT78   = 0x3f
	snesOAMSize  = 544
	snesVRAMSize = 0x10000
)

// snesPPU draws the backdrop and background layer one. Background one is
// drawn with two bits per pixel in mode 0 and four bits per pixel in every
// other mode. Sprites are not drawn but OAM is fully addressable.
type snesPPU struct {
	p  *Platform
	io *snesIO

	inidisp uint8
	bgmode  uint8
	bg1sc   uint8
	bg12nba uint8
	tm      uint8

	hofs uint16
	vofs uint16

	// the scroll registers are written twice. the previous value written to
	// any scroll register is shared
	ofsLatch uint8

	vmain  uint8
	vmadd  uint16
	vread  uint16
	vram   [snesVRAMSize]uint8
	cgadd  uint16
	cgram  [512]uint8
	cgLow  uint8
	oamadd uint16
	oam    [snesOAMSize]uint8

	m7a     int16
	m7b     int8
	m7Latch uint8

	// latched counters
	opvct uint16
}

func newSNESPPU(p *Platform) *snesPPU {
	return &snesPPU{p: p}
}

func (ppu *snesPPU) reset() {
	*ppu = snesPPU{p: ppu.p, io: ppu.io, inidisp: 0x80}
}

func (ppu *snesPPU) vramStep() uint16 {
	switch ppu.vmain & 0x03 {
	case 0:
		return 1
	case 1:
		return 32
	}
	return 128
}

func (ppu *snesPPU) prefetch() {
	a := uint32(ppu.vmadd&0x7fff) * 2
	ppu.vread = uint16(ppu.vram[a]) | uint16(ppu.vram[a+1])<<8
}

// ReadRegister implements the memory.RegisterHandler interface.
func (ppu *snesPPU) ReadRegister(reg uint32) uint8 {
	switch reg {
	case snesSLHV:
		ppu.opvct = uint16(ppu.p.video.Scanline())
		return 0
	case snesRDOAM:
		v := ppu.oam[ppu.oamadd%snesOAMSize]
		ppu.oamadd = (ppu.oamadd + 1) % snesOAMSize
		return v
	case snesRDVRAML:
		v := uint8(ppu.vread)
		if ppu.vmain&0x80 == 0 {
			ppu.prefetch()
			ppu.vmadd += ppu.vramStep()
		}
		return v
	case snesRDVRAMH:
		v := uint8(ppu.vread >> 8)
		if ppu.vmain&0x80 == 0x80 {
			ppu.prefetch()
			ppu.vmadd += ppu.vramStep()
		}
		return v
	case snesRDCGRAM:
		v := ppu.cgram[ppu.cgadd%512]
		ppu.cgadd = (ppu.cgadd + 1) % 512
		return v
	}
	return ppu.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (ppu *snesPPU) PeekRegister(reg uint32) uint8 {
	mpy := int32(ppu.m7a) * int32(ppu.m7b)
	switch reg {
	case snesMPYL:
		return uint8(mpy)
	case snesMPYM:
		return uint8(mpy >> 8)
	case snesMPYH:
		return uint8(mpy >> 16)
	case snesRDOAM:
		return ppu.oam[ppu.oamadd%snesOAMSize]
	case snesRDVRAML:
		return uint8(ppu.vread)
	case snesRDVRAMH:
		return uint8(ppu.vread >> 8)
	case snesRDCGRAM:
		return ppu.cgram[ppu.cgadd%512]
	case snesOPVCT:
		return uint8(ppu.opvct)
	case snesSTAT77:
		return 0x01
	case snesSTAT78:
		// NTSC, PPU2 version 3
		return 0x03
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (ppu *snesPPU) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case snesINIDISP:
		ppu.inidisp = data
	case snesOAMADDL:
		ppu.oamadd = ((ppu.oamadd/2)&0x100 | uint16(data)) * 2 % snesOAMSize
	case snesOAMADDH:
		ppu.oamadd = (uint16(data&0x01)<<8 | ppu.oamadd/2&0xff) * 2 % snesOAMSize
	case snesOAMDATA:
		ppu.oam[ppu.oamadd] = data
		ppu.oamadd = (ppu.oamadd + 1) % snesOAMSize
	case snesBGMODE:
		ppu.bgmode = data
	case snesBG1SC:
		ppu.bg1sc = data
	case snesBG12NBA:
		ppu.bg12nba = data
	case snesBG1HOFS:
		ppu.hofs = (uint16(data)<<8 | uint16(ppu.ofsLatch)) & 0x3ff
		ppu.ofsLatch = data
	case snesBG1VOFS:
		ppu.vofs = (uint16(data)<<8 | uint16(ppu.ofsLatch)) & 0x3ff
		ppu.ofsLatch = data
	case snesVMAIN:
		ppu.vmain = data
	case snesVMADDL:
		ppu.vmadd = ppu.vmadd&0xff00 | uint16(data)
		ppu.prefetch()
	case snesVMADDH:
		ppu.vmadd = ppu.vmadd&0x00ff | uint16(data)<<8
		ppu.prefetch()
	case snesVMDATAL:
		ppu.vram[uint32(ppu.vmadd&0x7fff)*2] = data
		if ppu.vmain&0x80 == 0 {
			ppu.vmadd += ppu.vramStep()
		}
	case snesVMDATAH:
		ppu.vram[uint32(ppu.vmadd&0x7fff)*2+1] = data
		if ppu.vmain&0x80 == 0x80 {
			ppu.vmadd += ppu.vramStep()
		}
	case snesM7A:
		ppu.m7a = int16(uint16(data)<<8 | uint16(ppu.m7Latch))
		ppu.m7Latch = data
	case snesM7B:
		ppu.m7b = int8(data)
		ppu.m7Latch = data
	case snesCGADD:
		ppu.cgadd = uint16(data) * 2
	case snesCGDATA:
		// colours are written in pairs. the low byte is held until the high
		// byte arrives
		if ppu.cgadd&0x01 == 0 {
			ppu.cgLow = data
		} else {
			ppu.cgram[ppu.cgadd-1] = ppu.cgLow
			ppu.cgram[ppu.cgadd] = data & 0x7f
		}
		ppu.cgadd = (ppu.cgadd + 1) % 512
	case snesTM:
		ppu.tm = data
	}
}

func (ppu *snesPPU) colour(idx int) video.Colour {
	c := uint16(ppu.cgram[idx*2]) | uint16(ppu.cgram[idx*2+1])<<8
	col := video.BGR555(c)

	bright := int(ppu.inidisp & 0x0f)
	if bright < 15 {
		col.R = uint8(int(col.R) * (bright + 1) / 16)
		col.G = uint8(int(col.G) * (bright + 1) / 16)
		col.B = uint8(int(col.B) * (bright + 1) / 16)
	}
	return col
}

// tilemap returns the byte address of the tilemap entry for a tile
// position on the full background.
func (ppu *snesPPU) tilemap(tx int, ty int) uint32 {
	base := uint32(ppu.bg1sc>>2) << 11

	screen := 0
	switch ppu.bg1sc & 0x03 {
	case 1:
		screen = (tx / 32) & 0x01
	case 2:
		screen = (ty / 32) & 0x01
	case 3:
		screen = (tx/32)&0x01 | ((ty/32)&0x01)<<1
	}

	addr := base + uint32(screen)*0x800 + uint32((ty%32)*32+(tx%32))*2
	return addr % snesVRAMSize
}

// Scanline implements the video.Renderer interface.
func (ppu *snesPPU) Scanline(line int, row []uint8) {
	if ppu.inidisp&0x80 == 0x80 {
		video.Fill(row, video.RGB(0, 0, 0))
		return
	}

	video.Fill(row, ppu.colour(0))

	if ppu.tm&0x01 == 0 {
		return
	}

	bpp := 4
	if ppu.bgmode&0x07 == 0 {
		bpp = 2
	}
	chars := uint32(ppu.bg12nba&0x0f) << 13

	y := (line + int(ppu.vofs)) & 0x3ff
	for x := 0; x < 256; x++ {
		sx := (x + int(ppu.hofs)) & 0x3ff

		a := ppu.tilemap(sx/8, y/8)
		entry := uint16(ppu.vram[a]) | uint16(ppu.vram[(a+1)%snesVRAMSize])<<8

		tile := uint32(entry & 0x3ff)
		pal := int(entry>>10) & 0x07
		r := y % 8
		c := sx % 8
		if entry&0x8000 == 0x8000 {
			r = 7 - r
		}
		if entry&0x4000 == 0x4000 {
			c = 7 - c
		}

		addr := chars + tile*uint32(bpp*8) + uint32(r)*2
		bit := uint(7 - c)
		var pix int
		for plane := 0; plane < bpp; plane += 2 {
			p := (addr + uint32(plane*8)) % snesVRAMSize
			pix |= int((ppu.vram[p]>>bit)&0x01) << plane
			pix |= int((ppu.vram[(p+1)%snesVRAMSize]>>bit)&0x01) << (plane + 1)
		}
		if pix == 0 {
			continue
		}

		video.FillSpan(row, x, x+1, ppu.colour(pal*(1<<bpp)+pix))
	}
}

// VBlank implements the video.Renderer interface.
func (ppu *snesPPU) VBlank(start bool) {
	if ppu.io != nil {
		ppu.io.vblank(start)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (ppu *snesPPU) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, []uint8{ppu.inidisp, ppu.bgmode, ppu.bg1sc, ppu.bg12nba, ppu.tm, ppu.ofsLatch, ppu.vmain, ppu.cgLow, ppu.m7Latch, uint8(ppu.m7b)})
	enc.Uints(2, []uint64{uint64(ppu.hofs), uint64(ppu.vofs), uint64(ppu.vmadd), uint64(ppu.vread), uint64(ppu.cgadd), uint64(ppu.oamadd), uint64(uint16(ppu.m7a)), uint64(ppu.opvct)})
	enc.Bytes(3, ppu.vram[:])
	enc.Bytes(4, ppu.cgram[:])
	enc.Bytes(5, ppu.oam[:])
}

// RestoreState implements the savestate.Snapshotter interface.
func (ppu *snesPPU) RestoreState(dec *savestate.Decoder) error {
	b := dec.Bytes(1)
	u := dec.Uints(2)
	if len(b) != 10 || len(u) != 8 {
		return curated.Errorf("ppu: %v: register count", savestate.CorruptError)
	}
	ppu.inidisp, ppu.bgmode, ppu.bg1sc, ppu.bg12nba, ppu.tm = b[0], b[1], b[2], b[3], b[4]
	ppu.ofsLatch, ppu.vmain, ppu.cgLow, ppu.m7Latch, ppu.m7b = b[5], b[6], b[7], b[8], int8(b[9])
	ppu.hofs = uint16(u[0])
	ppu.vofs = uint16(u[1])
	ppu.vmadd = uint16(u[2])
	ppu.vread = uint16(u[3])
	ppu.cgadd = uint16(u[4]) % 512
	ppu.oamadd = uint16(u[5]) % snesOAMSize
	ppu.m7a = int16(uint16(u[6]))
	ppu.opvct = uint16(u[7])
	if err := dec.CopyBytes(3, ppu.vram[:]); err != nil {
		return err
	}
	if err := dec.CopyBytes(4, ppu.cgram[:]); err != nil {
		return err
	}
	return dec.CopyBytes(5, ppu.oam[:])
}
