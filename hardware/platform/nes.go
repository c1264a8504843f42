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
	nesScanlines = 262
	nesClock     = int(clocks.NES * 1000000)
)

// CPU cycles per scanline. the PPU draws 341 dots per line at three times
// the CPU clock
var nesLineRatio = clocks.Ratio{Cycles: 341, Per: 3}

var nesInfo = Info{
	ID:            "nes",
	Name:          "Nintendo Entertainment System",
	Version:       "1.0.0",
	CPU:           mos6502.RP2A03.String(),
	MemorySize:    2048,
	Width:         256,
	Height:        240,
	Refresh:       float64(nesClock) * 3 / (341 * nesScanlines),
	AudioChannels: 5,
	Formats:       []string{"nes"},
	Aliases:       []string{"nintendo", "famicom"},
}

// nes is the NES with an NROM or UxROM cartridge.
type nes struct {
	p    *Platform
	ppu  *nesPPU
	apu  *nesAPU
	pads [2]*input.ShiftPort
}

func newNES(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("nes", 16, memory.LittleEndian, memory.OpenBusLast())
	p := newPlatform(nesInfo, cfg, bus)

	hw := &nes{p: p}
	hw.pads[0] = input.NewShiftPort(input.NESOrder)
	hw.pads[1] = input.NewShiftPort(input.NESOrder)
	hw.ppu = newNESPPU(p)
	hw.apu = newNESAPU(p, hw.ppu, hw.pads)
	p.hw = hw

	for _, err := range []error{
		bus.AttachMirror(0x0000, 0x1fff, memory.NewRAM("RAM", 0x800), 0x7ff),
		bus.Attach(0x2000, 0x3fff, memory.NewRegisters("PPU", 8, hw.ppu)),
		bus.Attach(0x4000, 0x4017, memory.NewRegisters("APU", 0x18, hw.apu)),
		bus.Attach(0x6000, 0x7fff, memory.NewRAM("PRG RAM", 0x2000)),
	} {
		if err != nil {
			return nil, curated.Errorf("platform: %v", err)
		}
	}

	p.cpu = mos6502.NewCPU(mos6502.RP2A03, bus, p.lines)

	geometry := video.Geometry{
		Width:     nesInfo.Width,
		Height:    nesInfo.Height,
		Scanlines: nesScanlines,
		Refresh:   nesInfo.Refresh,
	}
	if err := p.addVideo(geometry, nesLineRatio, hw.ppu); err != nil {
		return nil, err
	}
	if err := p.addAudio(nesClock, hw.apu.voices()...); err != nil {
		return nil, err
	}
	p.addStepper(hw.apu)

	return p, nil
}

func (hw *nes) load(rom []uint8) error {
	img, err := cartridge.ParseINES(rom)
	if err != nil {
		return err
	}
	prg, err := img.PRGDevice()
	if err != nil {
		return err
	}
	hw.ppu.insert(img)
	return hw.p.bus.Attach(0x8000, 0xffff, prg)
}

func (hw *nes) reset() {
	hw.ppu.reset()
	hw.pads[0].Reset()
	hw.pads[1].Reset()
}

func (hw *nes) setInput(port int, s input.Snapshot) error {
	if port < 0 || port >= len(hw.pads) {
		return curated.Errorf("nes: no input port %d", port)
	}
	hw.pads[port].Set(s)
	return nil
}

func (hw *nes) release() {
	hw.ppu.chr = nil
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *nes) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.ppu)
	enc.Snapshot(3, hw.pads[0])
	enc.Snapshot(4, hw.pads[1])
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *nes) RestoreState(dec *savestate.Decoder) error {
	if err := dec.Restore(1, hw.ppu); err != nil {
		return err
	}
	if err := dec.Restore(3, hw.pads[0]); err != nil {
		return err
	}
	return dec.Restore(4, hw.pads[1])
}
