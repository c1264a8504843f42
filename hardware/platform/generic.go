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
	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/hardware/cpu/mos6502"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
)

const (
	genericRAMSize = 0x8000
	genericROMBase = 0x8000
	genericROMSize = 0x8000

	// the display is a 32x32 grid of pixels, one byte per pixel
	genericDisplay     = 0x0200
	genericDisplaySize = 32

	// CPU cycles per scanline. about 60 frames per second at 1.79MHz
	genericLineCycles = 114
)

var genericInfo = Info{
	ID:            "generic",
	Name:          "Generic 6502",
	Version:       "1.0.0",
	CPU:           mos6502.MOS6502.String(),
	MemorySize:    genericRAMSize,
	Width:         genericDisplaySize,
	Height:        genericDisplaySize,
	Refresh:       60,
	AudioChannels: 0,
	Formats:       []string{"bin"},
}

// the sixteen colours of the generic display, from the C64
var genericPalette = video.Palette{
	video.RGB(0x00, 0x00, 0x00), video.RGB(0xff, 0xff, 0xff),
	video.RGB(0x88, 0x00, 0x00), video.RGB(0xaa, 0xff, 0xee),
	video.RGB(0xcc, 0x44, 0xcc), video.RGB(0x00, 0xcc, 0x55),
	video.RGB(0x00, 0x00, 0xaa), video.RGB(0xee, 0xee, 0x77),
	video.RGB(0xdd, 0x88, 0x55), video.RGB(0x66, 0x44, 0x00),
	video.RGB(0xff, 0x77, 0x77), video.RGB(0x33, 0x33, 0x33),
	video.RGB(0x77, 0x77, 0x77), video.RGB(0xaa, 0xff, 0x66),
	video.RGB(0x00, 0x88, 0xff), video.RGB(0xbb, 0xbb, 0xbb),
}

// generic is a flat 64K 6502 machine. RAM at 0000-7FFF and ROM at 8000-FFFF.
// There are no peripherals other than a small display showing the contents
// of memory from 0x0200.
type generic struct {
	p   *Platform
	ram *memory.RAM
}

func newGeneric(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("generic", 16, memory.LittleEndian, memory.OpenBusConstant(0xff))
	p := newPlatform(genericInfo, cfg, bus)

	hw := &generic{
		p:   p,
		ram: memory.NewRAM("RAM", genericRAMSize),
	}
	p.hw = hw

	if err := bus.Attach(0x0000, genericRAMSize-1, hw.ram); err != nil {
		return nil, curated.Errorf("platform: %v", err)
	}

	p.cpu = mos6502.NewCPU(mos6502.MOS6502, bus, p.lines)

	geometry := video.Geometry{
		Width:     genericDisplaySize,
		Height:    genericDisplaySize,
		Scanlines: 262,
		Refresh:   genericInfo.Refresh,
	}
	if err := p.addVideo(geometry, clocks.Whole(genericLineCycles), hw); err != nil {
		return nil, err
	}

	return p, nil
}

// load implements the hardware interface. The image is placed at the start
// of the ROM. An image that does not reach the interrupt vectors has every
// vector set to the start of the ROM.
func (hw *generic) load(rom []uint8) error {
	if len(rom) == 0 {
		return curated.Errorf("generic: %v: empty image", cartridge.FormatError)
	}
	if len(rom) > genericROMSize {
		return curated.Errorf("generic: %v: image too large (%d bytes)", cartridge.FormatError, len(rom))
	}

	data := make([]uint8, genericROMSize)
	copy(data, rom)

	if len(rom) <= mos6502.NMI-genericROMBase {
		for _, v := range []uint32{mos6502.NMI, mos6502.Reset, mos6502.IRQ} {
			data[v-genericROMBase] = uint8(genericROMBase & 0xff)
			data[v-genericROMBase+1] = uint8(genericROMBase >> 8)
		}
	}

	return hw.p.bus.Attach(genericROMBase, genericROMBase+genericROMSize-1, memory.NewROM("ROM", data, memory.RaiseOnWrite))
}

func (hw *generic) reset() {
}

func (hw *generic) setInput(port int, _ input.Snapshot) error {
	return curated.Errorf("generic: no input port %d", port)
}

func (hw *generic) release() {
}

// Scanline implements the video.Renderer interface.
func (hw *generic) Scanline(line int, row []uint8) {
	for x := 0; x < genericDisplaySize; x++ {
		v := hw.ram.Peek(uint32(genericDisplay + line*genericDisplaySize + x))
		c := genericPalette.Colour(int(v & 0x0f))
		copy(row[x*4:], []uint8{c.R, c.G, c.B, c.A})
	}
}

// VBlank implements the video.Renderer interface.
func (hw *generic) VBlank(_ bool) {
}

// SaveState implements the savestate.Snapshotter interface. The RAM is saved
// by the bus.
func (hw *generic) SaveState(_ *savestate.Encoder) {
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *generic) RestoreState(_ *savestate.Decoder) error {
	return nil
}
