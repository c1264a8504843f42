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
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/savestate"
)

const (
	spuVoices  = 24
	spuRAMSize = 0x80000

	// the sample rate of the SPU and the number of samples decoded from
	// each ADPCM block
	spuRate  = 44100
	spuBlock = 28
)

// spuLayout gives the halfword register numbers that differ between the
// PS1 SPU and core 0 of the PS2 SPU2. The voice registers are the same.
type spuLayout struct {
	count uint32
	kon   uint32
	koff  uint32
	ctrl  uint32
	stat  uint32
	addr  uint32
	fifo  uint32
}

var ps1SPULayout = spuLayout{
	count: 0x200,
	kon:   0xc4,
	koff:  0xc6,
	ctrl:  0xd5,
	stat:  0xd7,
	addr:  0xd3,
	fifo:  0xd4,
}

var ps2SPULayout = spuLayout{
	count: 0x400,
	kon:   0xd0,
	koff:  0xd2,
	ctrl:  0xcd,
	stat:  0x1a2,
	addr:  0xd4,
	fifo:  0xd6,
}

// psSPU holds the registers and sound RAM of the sound processor. ADPCM
// decoding is not emulated. A keyed-on voice is rendered as a square wave
// with the pitch and volume of its registers.
type psSPU struct {
	layout spuLayout

	regs  []uint16
	ram   []uint8
	on    uint32
	addr  uint32
	voice [spuVoices]audio.Voice
}

func newPSSPU(layout spuLayout) *psSPU {
	return &psSPU{
		layout: layout,
		regs:   make([]uint16, layout.count),
		ram:    make([]uint8, spuRAMSize),
	}
}

func (spu *psSPU) voices() []*audio.Voice {
	v := make([]*audio.Voice, spuVoices)
	for i := range spu.voice {
		v[i] = &spu.voice[i]
	}
	return v
}

func (spu *psSPU) reset() {
	clear(spu.regs)
	clear(spu.ram)
	spu.on = 0
	spu.addr = 0
	for i := range spu.voice {
		spu.voice[i].Silence()
	}
}

func spuVolume(v uint16) float64 {
	// volume sweeps are not emulated
	if v&0x8000 == 0x8000 {
		return 0.5
	}
	return min(float64(v&0x7fff)/0x3fff, 1.0)
}

// update the audio voices from the registers.
func (spu *psSPU) update() {
	for i := range spu.voice {
		base := uint32(i) * 8
		v := &spu.voice[i]
		pitch := float64(spu.regs[base+2])
		v.Enabled = spu.on&(1<<i) != 0
		v.Frequency = pitch * spuRate / 0x1000 / spuBlock
		v.Volume = (spuVolume(spu.regs[base]) + spuVolume(spu.regs[base+1])) / 2
		v.Duty = 0.5
	}
}

// ReadWord implements the memory.WordHandler interface.
func (spu *psSPU) ReadWord(reg uint32) uint32 {
	return spu.PeekWord(reg)
}

// PeekWord implements the memory.WordHandler interface.
func (spu *psSPU) PeekWord(reg uint32) uint32 {
	switch reg {
	case spu.layout.stat:
		return uint32(spu.regs[spu.layout.ctrl] & 0x3f)
	case spu.layout.kon, spu.layout.kon + 1, spu.layout.koff, spu.layout.koff + 1:
		return 0
	}
	return uint32(spu.regs[reg%spu.layout.count])
}

// WriteWord implements the memory.WordHandler interface.
func (spu *psSPU) WriteWord(reg uint32, v uint32) {
	reg %= spu.layout.count
	spu.regs[reg] = uint16(v)

	switch reg {
	case spu.layout.kon:
		spu.on |= v & 0xffff
	case spu.layout.kon + 1:
		spu.on |= (v & 0xff) << 16
	case spu.layout.koff:
		spu.on &^= v & 0xffff
	case spu.layout.koff + 1:
		spu.on &^= (v & 0xff) << 16
	case spu.layout.addr:
		spu.addr = (v & 0xffff) * 8
	case spu.layout.fifo:
		spu.ram[spu.addr%spuRAMSize] = uint8(v)
		spu.ram[(spu.addr+1)%spuRAMSize] = uint8(v >> 8)
		spu.addr = (spu.addr + 2) % spuRAMSize
	}

	spu.update()
}

// SaveState implements the savestate.Snapshotter interface.
func (spu *psSPU) SaveState(enc *savestate.Encoder) {
	r := make([]uint64, len(spu.regs))
	for i, v := range spu.regs {
		r[i] = uint64(v)
	}
	enc.Uints(1, r)
	enc.Bytes(2, spu.ram)
	enc.Uint(3, uint64(spu.on))
	enc.Uint(4, uint64(spu.addr))
}

// RestoreState implements the savestate.Snapshotter interface.
func (spu *psSPU) RestoreState(dec *savestate.Decoder) error {
	r := dec.Uints(1)
	if len(r) != len(spu.regs) {
		return curated.Errorf("spu: %v: %d registers in state", savestate.CorruptError, len(r))
	}
	for i := range spu.regs {
		spu.regs[i] = uint16(r[i])
	}
	if err := dec.CopyBytes(2, spu.ram); err != nil {
		return err
	}
	spu.on = uint32(dec.Uint(3))
	spu.addr = uint32(dec.Uint(4)) % spuRAMSize
	spu.update()
	return nil
}
