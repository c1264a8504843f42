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
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
)

// PPU registers.
const (
	ppuCTRL    = 0
	ppuMASK    = 1
	ppuSTATUS  = 2
	ppuOAMADDR = 3
	ppuOAMDATA = 4
	ppuSCROLL  = 5
	ppuADDR    = 6
	ppuDATA    = 7
)

// PPUSTATUS bits.
const (
	ppuVBlank   = 0x80
	ppuSprite0  = 0x40
	ppuOverflow = 0x20
)

// nesPPU is the picture processing unit of the NES. It draws a complete
// scanline at a time with the horizontal scroll in effect at the end of the
// line and the vertical scroll in effect at the start of the frame.
type nesPPU struct {
	p *Platform

	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	// the internal address registers. v is the current VRAM address, t is the
	// temporary address and x is the fine horizontal scroll
	v uint16
	t uint16
	x uint8
	w bool

	// PPUDATA reads of VRAM are delayed by one read
	buffer uint8

	oam     [256]uint8
	vram    [4096]uint8
	palette [32]uint8

	chr       []uint8
	chrRAM    bool
	mirroring cartridge.Mirroring

	// the vertical scroll and nametable taken from t at the end of the
	// vertical blank
	frameY  int
	frameNT uint16
}

func newNESPPU(p *Platform) *nesPPU {
	return &nesPPU{
		p:   p,
		chr: make([]uint8, 0x2000),
	}
}

// insert the CHR data of a cartridge. Cartridges without CHR ROM have 8K of
// CHR RAM.
func (ppu *nesPPU) insert(img *cartridge.INES) {
	ppu.mirroring = img.Mirroring
	if len(img.CHR) == 0 {
		ppu.chr = make([]uint8, 0x2000)
		ppu.chrRAM = true
		return
	}
	ppu.chr = make([]uint8, len(img.CHR))
	copy(ppu.chr, img.CHR)
	ppu.chrRAM = false
}

func (ppu *nesPPU) reset() {
	ppu.ctrl = 0
	ppu.mask = 0
	ppu.status = 0
	ppu.oamAddr = 0
	ppu.v = 0
	ppu.t = 0
	ppu.x = 0
	ppu.w = false
	ppu.buffer = 0
	ppu.oam = [256]uint8{}
	ppu.vram = [4096]uint8{}
	ppu.palette = [32]uint8{}
	ppu.frameY = 0
	ppu.frameNT = 0
	if ppu.chrRAM {
		clear(ppu.chr)
	}
}

// nametable converts an address in the range 0x2000 to 0x3eff to an index
// into VRAM.
func (ppu *nesPPU) nametable(addr uint16) uint16 {
	table := (addr >> 10) & 0x03
	offset := addr & 0x3ff
	switch ppu.mirroring {
	case cartridge.Horizontal:
		table >>= 1
	case cartridge.Vertical:
		table &= 0x01
	}
	return table<<10 | offset
}

func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1f
	if i&0x13 == 0x10 {
		i &^= 0x10
	}
	return i
}

func (ppu *nesPPU) read(addr uint16) uint8 {
	addr &= 0x3fff
	switch {
	case addr < 0x2000:
		if int(addr) < len(ppu.chr) {
			return ppu.chr[addr]
		}
		return 0
	case addr < 0x3f00:
		return ppu.vram[ppu.nametable(addr)]
	}
	return ppu.palette[paletteIndex(addr)]
}

func (ppu *nesPPU) write(addr uint16, data uint8) {
	addr &= 0x3fff
	switch {
	case addr < 0x2000:
		if ppu.chrRAM && int(addr) < len(ppu.chr) {
			ppu.chr[addr] = data
		}
	case addr < 0x3f00:
		ppu.vram[ppu.nametable(addr)] = data
	default:
		ppu.palette[paletteIndex(addr)] = data & 0x3f
	}
}

func (ppu *nesPPU) increment() {
	if ppu.ctrl&0x04 == 0x04 {
		ppu.v += 32
	} else {
		ppu.v++
	}
	ppu.v &= 0x7fff
}

// ReadRegister implements the memory.RegisterHandler interface.
func (ppu *nesPPU) ReadRegister(reg uint32) uint8 {
	switch reg {
	case ppuSTATUS:
		v := ppu.status & 0xe0
		ppu.status &^= ppuVBlank
		ppu.w = false
		return v
	case ppuOAMDATA:
		return ppu.oam[ppu.oamAddr]
	case ppuDATA:
		addr := ppu.v & 0x3fff
		var v uint8
		if addr < 0x3f00 {
			v = ppu.buffer
			ppu.buffer = ppu.read(addr)
		} else {
			v = ppu.read(addr)
			ppu.buffer = ppu.read(addr - 0x1000)
		}
		ppu.increment()
		return v
	}
	return 0
}

// PeekRegister implements the memory.RegisterHandler interface.
func (ppu *nesPPU) PeekRegister(reg uint32) uint8 {
	switch reg {
	case ppuCTRL:
		return ppu.ctrl
	case ppuMASK:
		return ppu.mask
	case ppuSTATUS:
		return ppu.status & 0xe0
	case ppuOAMADDR:
		return ppu.oamAddr
	case ppuOAMDATA:
		return ppu.oam[ppu.oamAddr]
	case ppuDATA:
		return ppu.buffer
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (ppu *nesPPU) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case ppuCTRL:
		// enabling NMI during the vertical blank causes an immediate NMI
		if data&0x80 == 0x80 && ppu.ctrl&0x80 == 0 && ppu.status&ppuVBlank == ppuVBlank {
			ppu.p.lines.PulseNMI()
		}
		ppu.ctrl = data
		ppu.t = (ppu.t &^ 0x0c00) | uint16(data&0x03)<<10
	case ppuMASK:
		ppu.mask = data
	case ppuOAMADDR:
		ppu.oamAddr = data
	case ppuOAMDATA:
		ppu.oam[ppu.oamAddr] = data
		ppu.oamAddr++
	case ppuSCROLL:
		if !ppu.w {
			ppu.t = (ppu.t &^ 0x001f) | uint16(data>>3)
			ppu.x = data & 0x07
		} else {
			ppu.t = (ppu.t &^ 0x73e0) | uint16(data&0x07)<<12 | uint16(data&0xf8)<<2
		}
		ppu.w = !ppu.w
	case ppuADDR:
		if !ppu.w {
			ppu.t = (ppu.t & 0x00ff) | uint16(data&0x3f)<<8
		} else {
			ppu.t = (ppu.t & 0xff00) | uint16(data)
			ppu.v = ppu.t
		}
		ppu.w = !ppu.w
	case ppuDATA:
		ppu.write(ppu.v, data)
		ppu.increment()
	}
}

// oamDMA copies a page of CPU memory into OAM.
func (ppu *nesPPU) oamDMA(page []uint8) {
	for i, v := range page {
		ppu.oam[(int(ppu.oamAddr)+i)&0xff] = v
	}
}

func (ppu *nesPPU) colour(idx uint8) video.Colour {
	return paletteNES.Colour(int(idx & 0x3f))
}

// pattern returns the two bit value of a pixel in a tile.
func (ppu *nesPPU) pattern(base uint16, tile uint16, row int, col int) uint8 {
	addr := base + tile*16 + uint16(row)
	lo := ppu.read(addr)
	hi := ppu.read(addr + 8)
	bit := 7 - col
	return (lo>>bit)&0x01 | ((hi>>bit)&0x01)<<1
}

// Scanline implements the video.Renderer interface.
func (ppu *nesPPU) Scanline(line int, row []uint8) {
	backdrop := ppu.colour(ppu.palette[0])
	video.Fill(row, backdrop)

	if ppu.mask&0x18 == 0 {
		return
	}

	var opaque [256]bool

	if ppu.mask&0x08 == 0x08 {
		scrollX := int(ppu.t&0x1f)*8 + int(ppu.x)
		scrollY := ppu.frameY + line
		ntX := int(ppu.t>>10) & 0x01
		ntY := int(ppu.frameNT>>1) & 0x01

		ntY += scrollY / 240
		sy := scrollY % 240

		base := uint16(0)
		if ppu.ctrl&0x10 == 0x10 {
			base = 0x1000
		}

		for x := 0; x < 256; x++ {
			if x < 8 && ppu.mask&0x02 == 0 {
				continue
			}
			sx := scrollX + x
			nt := uint16((ntX+sx/256)&0x01 | ((ntY & 0x01) << 1))
			sx %= 256

			ntBase := 0x2000 | nt<<10
			tile := ppu.read(ntBase + uint16(sy/8)*32 + uint16(sx/8))
			attr := ppu.read(ntBase + 0x3c0 + uint16(sy/32)*8 + uint16(sx/32))
			shift := ((sy/16)&0x01)*4 + ((sx/16)&0x01)*2
			pal := (attr >> shift) & 0x03

			pix := ppu.pattern(base, uint16(tile), sy%8, sx%8)
			if pix != 0 {
				opaque[x] = true
				c := ppu.colour(ppu.palette[pal*4+pix])
				video.FillSpan(row, x, x+1, c)
			}
		}
	}

	if ppu.mask&0x10 == 0x10 {
		ppu.sprites(line, row, &opaque)
	}
}

func (ppu *nesPPU) sprites(line int, row []uint8, opaque *[256]bool) {
	height := 8
	if ppu.ctrl&0x20 == 0x20 {
		height = 16
	}

	var drawn [256]bool
	count := 0

	for i := 0; i < 64; i++ {
		y := int(ppu.oam[i*4]) + 1
		if line < y || line >= y+height {
			continue
		}

		count++
		if count > 8 {
			ppu.status |= ppuOverflow
			break
		}

		tile := uint16(ppu.oam[i*4+1])
		attr := ppu.oam[i*4+2]
		sx := int(ppu.oam[i*4+3])

		r := line - y
		if attr&0x80 == 0x80 {
			r = height - 1 - r
		}

		var base uint16
		if height == 8 {
			if ppu.ctrl&0x08 == 0x08 {
				base = 0x1000
			}
		} else {
			base = (tile & 0x01) * 0x1000
			tile &= 0xfe
			if r >= 8 {
				tile++
				r -= 8
			}
		}

		for c := 0; c < 8; c++ {
			x := sx + c
			if x > 255 || drawn[x] {
				continue
			}
			if x < 8 && ppu.mask&0x04 == 0 {
				continue
			}
			col := c
			if attr&0x40 == 0x40 {
				col = 7 - c
			}
			pix := ppu.pattern(base, tile, r, col)
			if pix == 0 {
				continue
			}
			drawn[x] = true

			if i == 0 && opaque[x] && x != 255 {
				ppu.status |= ppuSprite0
			}

			// behind the background
			if attr&0x20 == 0x20 && opaque[x] {
				continue
			}

			idx := 0x10 + (attr&0x03)*4 + pix
			video.FillSpan(row, x, x+1, ppu.colour(ppu.palette[paletteIndex(uint16(idx))]))
		}
	}
}

// VBlank implements the video.Renderer interface. The NMI is raised at the
// start of the vertical blank if it is enabled in PPUCTRL.
func (ppu *nesPPU) VBlank(start bool) {
	if start {
		ppu.status |= ppuVBlank
		if ppu.ctrl&0x80 == 0x80 {
			ppu.p.lines.PulseNMI()
		}
		return
	}
	ppu.status &^= ppuVBlank | ppuSprite0 | ppuOverflow
	ppu.frameY = int(ppu.t>>5)&0x1f*8 + int(ppu.t>>12)&0x07
	ppu.frameNT = (ppu.t >> 10) & 0x03
}

// SaveState implements the savestate.Snapshotter interface.
func (ppu *nesPPU) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, []uint8{ppu.ctrl, ppu.mask, ppu.status, ppu.oamAddr, ppu.x, ppu.buffer})
	enc.Uint(2, uint64(ppu.v))
	enc.Uint(3, uint64(ppu.t))
	enc.Bool(4, ppu.w)
	enc.Bytes(5, ppu.oam[:])
	enc.Bytes(6, ppu.vram[:])
	enc.Bytes(7, ppu.palette[:])
	if ppu.chrRAM {
		enc.Bytes(8, ppu.chr)
	}
	enc.Uint(9, uint64(ppu.frameY))
	enc.Uint(10, uint64(ppu.frameNT))
}

// RestoreState implements the savestate.Snapshotter interface.
func (ppu *nesPPU) RestoreState(dec *savestate.Decoder) error {
	r := dec.Bytes(1)
	if len(r) != 6 {
		return curated.Errorf("ppu: %v: %d registers in state", savestate.CorruptError, len(r))
	}
	ppu.ctrl, ppu.mask, ppu.status, ppu.oamAddr, ppu.x, ppu.buffer = r[0], r[1], r[2], r[3], r[4], r[5]
	ppu.v = uint16(dec.Uint(2))
	ppu.t = uint16(dec.Uint(3))
	ppu.w = dec.Bool(4)
	if err := dec.CopyBytes(5, ppu.oam[:]); err != nil {
		return err
	}
	if err := dec.CopyBytes(6, ppu.vram[:]); err != nil {
		return err
	}
	if err := dec.CopyBytes(7, ppu.palette[:]); err != nil {
		return err
	}
	if ppu.chrRAM {
		if err := dec.CopyBytes(8, ppu.chr); err != nil {
			return err
		}
	}
	ppu.frameY = int(dec.Uint(9))
	ppu.frameNT = uint16(dec.Uint(10))
	return nil
}
