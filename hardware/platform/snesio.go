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
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/savestate"
)

// CPU registers as offsets from 0x4200.
const (
	snesNMITIMEN = 0x00
	snesWRIO     = 0x01
	snesWRMPYA   = 0x02
	snesWRMPYB   = 0x03
	snesWRDIVL   = 0x04
	snesWRDIVH   = 0x05
	snesWRDIVB   = 0x06
	snesMDMAEN   = 0x0b
	snesMEMSEL   = 0x0d
	snesRDNMI    = 0x10
	snesTIMEUP   = 0x11
	snesHVBJOY   = 0x12
	snesRDIO     = 0x13
	snesRDDIVL   = 0x14
	snesRDDIVH   = 0x15
	snesRDMPYL   = 0x16
	snesRDMPYH   = 0x17
	snesJOY1L    = 0x18
)

// snesIO is the register block of the CPU package at 4200-421F. It holds
// the multiplication and division units, the NMI flag and the joypad
// auto-read registers.
type snesIO struct {
	p    *Platform
	ppu  *snesPPU
	pads [2]*input.ShiftPort
	dma  *snesDMA

	nmitimen uint8
	wrio     uint8
	wrmpya   uint8
	wrdiv    uint16
	rddiv    uint16
	rdmpy    uint16
	memsel   uint8
	rdnmi    bool
	joy      [4]uint16
}

func newSNESIO(p *Platform, ppu *snesPPU, pads [2]*input.ShiftPort) *snesIO {
	return &snesIO{
		p:    p,
		ppu:  ppu,
		pads: pads,
		dma:  &snesDMA{p: p},
		wrio: 0xff,
	}
}

func (io *snesIO) reset() {
	*io = snesIO{
		p:      io.p,
		ppu:    io.ppu,
		pads:   io.pads,
		dma:    io.dma,
		wrio:   0xff,
		wrmpya: 0xff,
	}
	io.dma.regs = [0x80]uint8{}
}

// vblank is called by the PPU at the start and end of the vertical blank.
func (io *snesIO) vblank(start bool) {
	if !start {
		io.rdnmi = false
		return
	}

	io.rdnmi = true
	if io.nmitimen&0x80 == 0x80 {
		io.p.lines.PulseNMI()
	}
	if io.nmitimen&0x01 == 0x01 {
		io.joy[0] = io.pads[0].Word()
		io.joy[1] = io.pads[1].Word()
	}
}

// ReadRegister implements the memory.RegisterHandler interface.
func (io *snesIO) ReadRegister(reg uint32) uint8 {
	v := io.PeekRegister(reg)
	if reg == snesRDNMI {
		io.rdnmi = false
	}
	return v
}

// PeekRegister implements the memory.RegisterHandler interface.
func (io *snesIO) PeekRegister(reg uint32) uint8 {
	switch reg {
	case snesRDNMI:
		// CPU version 2
		v := uint8(0x02)
		if io.rdnmi {
			v |= 0x80
		}
		return v
	case snesTIMEUP:
		return 0
	case snesHVBJOY:
		if io.p.video.InVBlank() {
			return 0x80
		}
		return 0
	case snesRDIO:
		return io.wrio
	case snesRDDIVL:
		return uint8(io.rddiv)
	case snesRDDIVH:
		return uint8(io.rddiv >> 8)
	case snesRDMPYL:
		return uint8(io.rdmpy)
	case snesRDMPYH:
		return uint8(io.rdmpy >> 8)
	}
	if reg >= snesJOY1L && reg < snesJOY1L+8 {
		j := io.joy[(reg-snesJOY1L)/2]
		if reg&0x01 == 0 {
			return uint8(j)
		}
		return uint8(j >> 8)
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (io *snesIO) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case snesNMITIMEN:
		// enabling the NMI while the NMI flag is set causes an NMI
		if data&0x80 == 0x80 && io.nmitimen&0x80 == 0 && io.rdnmi {
			io.p.lines.PulseNMI()
		}
		io.nmitimen = data
	case snesWRIO:
		io.wrio = data
	case snesWRMPYA:
		io.wrmpya = data
	case snesWRMPYB:
		io.rdmpy = uint16(io.wrmpya) * uint16(data)
		io.rddiv = uint16(data)
	case snesWRDIVL:
		io.wrdiv = io.wrdiv&0xff00 | uint16(data)
	case snesWRDIVH:
		io.wrdiv = io.wrdiv&0x00ff | uint16(data)<<8
	case snesWRDIVB:
		if data == 0 {
			io.rddiv = 0xffff
			io.rdmpy = io.wrdiv
		} else {
			io.rddiv = io.wrdiv / uint16(data)
			io.rdmpy = io.wrdiv % uint16(data)
		}
	case snesMDMAEN:
		io.dma.run(data)
	case snesMEMSEL:
		io.memsel = data
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (io *snesIO) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, []uint8{io.nmitimen, io.wrio, io.wrmpya, io.memsel})
	enc.Uints(2, []uint64{uint64(io.wrdiv), uint64(io.rddiv), uint64(io.rdmpy)})
	enc.Bool(3, io.rdnmi)
	enc.Uints(4, []uint64{uint64(io.joy[0]), uint64(io.joy[1]), uint64(io.joy[2]), uint64(io.joy[3])})
	enc.Bytes(5, io.dma.regs[:])
}

// RestoreState implements the savestate.Snapshotter interface.
func (io *snesIO) RestoreState(dec *savestate.Decoder) error {
	b := dec.Bytes(1)
	u := dec.Uints(2)
	j := dec.Uints(4)
	if len(b) != 4 || len(u) != 3 || len(j) != 4 {
		return curated.Errorf("snes: %v: CPU register count", savestate.CorruptError)
	}
	io.nmitimen, io.wrio, io.wrmpya, io.memsel = b[0], b[1], b[2], b[3]
	io.wrdiv, io.rddiv, io.rdmpy = uint16(u[0]), uint16(u[1]), uint16(u[2])
	io.rdnmi = dec.Bool(3)
	for i := range io.joy {
		io.joy[i] = uint16(j[i])
	}
	return dec.CopyBytes(5, io.dma.regs[:])
}

// the order of B bus registers written by each DMA transfer mode
var snesDMAPatterns = [8][]uint8{
	{0}, {0, 1}, {0, 0}, {0, 0, 1, 1}, {0, 1, 2, 3}, {0, 1, 0, 1}, {0, 0}, {0, 0, 1, 1},
}

// snesDMA is the general purpose DMA controller. HDMA is not supported.
type snesDMA struct {
	p    *Platform
	regs [0x80]uint8
}

// ReadRegister implements the memory.RegisterHandler interface.
func (dma *snesDMA) ReadRegister(reg uint32) uint8 {
	return dma.regs[reg]
}

// PeekRegister implements the memory.RegisterHandler interface.
func (dma *snesDMA) PeekRegister(reg uint32) uint8 {
	return dma.regs[reg]
}

// WriteRegister implements the memory.RegisterHandler interface.
func (dma *snesDMA) WriteRegister(reg uint32, data uint8) {
	dma.regs[reg] = data
}

// run the channels selected by the mask, lowest channel first. The CPU is
// stalled for the duration of the transfers.
func (dma *snesDMA) run(mask uint8) {
	var transferred int

	for ch := 0; ch < 8; ch++ {
		if mask&(1<<ch) == 0 {
			continue
		}
		r := dma.regs[ch*16 : ch*16+16]

		params := r[0]
		bbad := r[1]
		a := uint16(r[2]) | uint16(r[3])<<8
		bank := uint32(r[4]) << 16
		count := int(uint16(r[5]) | uint16(r[6])<<8)
		if count == 0 {
			count = 0x10000
		}
		pattern := snesDMAPatterns[params&0x07]

		for i := 0; i < count; i++ {
			b := uint32(0x2100) | uint32(bbad+pattern[i%len(pattern)])
			if params&0x80 == 0x80 {
				v, _ := dma.p.bus.Read8(b)
				_ = dma.p.bus.Write8(bank|uint32(a), v)
			} else {
				v, _ := dma.p.bus.Read8(bank | uint32(a))
				_ = dma.p.bus.Write8(b, v)
			}
			switch params & 0x18 {
			case 0x00:
				a++
			case 0x10:
				a--
			}
		}

		r[2] = uint8(a)
		r[3] = uint8(a >> 8)
		r[5] = 0
		r[6] = 0
		transferred += count
	}

	// eight master cycles per byte and six master cycles per CPU cycle
	dma.p.Stall(transferred * 8 / 6)
}
