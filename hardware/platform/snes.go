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
	"github.com/emulite/emulite/hardware/memory/memorymap"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/savestate"
)

const (
	snesScanlines = 262
	snesClock     = int(clocks.SNES * 1000000)
	snesWRAMSize  = 0x20000
	snesWRAMBank  = 0x7e0000
)

// CPU cycles per scanline. a line is 1364 master cycles and the CPU runs at
// one sixth of the master clock
var snesLineRatio = clocks.Ratio{Cycles: 682, Per: 3}

var snesInfo = Info{
	ID:            "snes",
	Name:          "Super Nintendo Entertainment System",
	Version:       "1.0.0",
	CPU:           mos6502.W65C816E.String(),
	MemorySize:    snesWRAMSize,
	Width:         256,
	Height:        224,
	Refresh:       float64(snesClock) * 3 / (682 * snesScanlines),
	AudioChannels: 0,
	Formats:       []string{"sfc", "smc"},
	Aliases:       []string{"super nintendo", "superfamicom", "sfc"},
}

// snes is the SNES with a LoROM cartridge. The sound CPU is not emulated.
// The APU ports answer the IPL handshake so that programs uploading a sound
// driver do not wait forever.
type snes struct {
	p    *Platform
	wram *memory.RAM
	ppu  *snesPPU
	io   *snesIO
	apu  *snesAPUPorts
	port *snesWRAMPort
	pads [2]*input.ShiftPort
}

func newSNES(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("snes", 24, memory.LittleEndian, memory.OpenBusLast())
	p := newPlatform(snesInfo, cfg, bus)

	hw := &snes{
		p:    p,
		wram: memory.NewRAM("WRAM", snesWRAMSize),
		apu:  &snesAPUPorts{},
	}
	hw.pads[0] = input.NewShiftPort(input.SNESOrder)
	hw.pads[1] = input.NewShiftPort(input.SNESOrder)
	hw.port = &snesWRAMPort{wram: hw.wram}
	hw.ppu = newSNESPPU(p)
	hw.io = newSNESIO(p, hw.ppu, hw.pads)
	hw.ppu.io = hw.io
	p.hw = hw

	ppuRegs := memory.NewRegisters("PPU", 0x40, hw.ppu)
	apuRegs := memory.NewRegisters("APU", 0x04, hw.apu)
	portRegs := memory.NewRegisters("WRAM port", 0x04, hw.port)
	joyRegs := memory.NewRegisters("JOY", 0x02, &snesJoypad{pads: hw.pads})
	ioRegs := memory.NewRegisters("CPU", 0x20, hw.io)
	dmaRegs := memory.NewRegisters("DMA", 0x80, hw.io.dma)

	// system area of banks 00-3F and 80-BF
	for _, half := range []uint32{0x000000, 0x800000} {
		for bank := uint32(0); bank < 0x40; bank++ {
			base := half | bank<<16
			for _, r := range []memorymap.Range[memory.Device]{
				{Start: base, End: base | 0x1fff, Device: hw.wram, Mask: 0x1fff},
				{Start: base | 0x2100, End: base | 0x213f, Device: ppuRegs},
				{Start: base | 0x2140, End: base | 0x217f, Device: apuRegs, Mask: 0x03},
				{Start: base | 0x2180, End: base | 0x2183, Device: portRegs},
				{Start: base | 0x4016, End: base | 0x4017, Device: joyRegs},
				{Start: base | 0x4200, End: base | 0x421f, Device: ioRegs},
				{Start: base | 0x4300, End: base | 0x437f, Device: dmaRegs},
			} {
				if err := bus.AttachRange(r); err != nil {
					return nil, curated.Errorf("platform: %v", err)
				}
			}
		}
	}
	if err := bus.Attach(snesWRAMBank, snesWRAMBank+snesWRAMSize-1, hw.wram); err != nil {
		return nil, curated.Errorf("platform: %v", err)
	}

	p.cpu = mos6502.NewCPU(mos6502.W65C816E, bus, p.lines)

	geometry := video.Geometry{
		Width:     snesInfo.Width,
		Height:    snesInfo.Height,
		Scanlines: snesScanlines,
		Refresh:   snesInfo.Refresh,
	}
	if err := p.addVideo(geometry, snesLineRatio, hw.ppu); err != nil {
		return nil, err
	}
	if err := p.addAudio(snesClock); err != nil {
		return nil, err
	}

	return p, nil
}

// load implements the hardware interface. The ROM appears in the upper half
// of every bank other than the WRAM banks.
func (hw *snes) load(rom []uint8) error {
	cart, err := cartridge.NewLoROM(rom)
	if err != nil {
		return err
	}

	for _, half := range []uint32{0x000000, 0x800000} {
		for bank := uint32(0); bank < 0x80; bank++ {
			start := half | bank<<16
			if start >= snesWRAMBank && start < snesWRAMBank+snesWRAMSize {
				continue
			}
			r := memorymap.Range[memory.Device]{
				Start:  start | 0x8000,
				End:    start | 0xffff,
				Device: cart,
				Base:   start | 0x8000,
			}
			if err := hw.p.bus.AttachRange(r); err != nil {
				return curated.Errorf("snes: %v", err)
			}
		}
	}

	logger.Logf(hw.p.perm, "snes", "cartridge %q (%d bytes)", cart.Title(), cart.Size())

	return nil
}

func (hw *snes) reset() {
	hw.ppu.reset()
	hw.io.reset()
	hw.apu.reset()
	hw.port.addr = 0
	hw.pads[0].Reset()
	hw.pads[1].Reset()
}

func (hw *snes) setInput(port int, s input.Snapshot) error {
	if port < 0 || port >= len(hw.pads) {
		return curated.Errorf("snes: no input port %d", port)
	}
	hw.pads[port].Set(s)
	return nil
}

func (hw *snes) release() {
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *snes) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.ppu)
	enc.Snapshot(2, hw.io)
	enc.Snapshot(3, hw.apu)
	enc.Uint(4, uint64(hw.port.addr))
	enc.Snapshot(5, hw.pads[0])
	enc.Snapshot(6, hw.pads[1])
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *snes) RestoreState(dec *savestate.Decoder) error {
	if err := dec.Restore(1, hw.ppu); err != nil {
		return err
	}
	if err := dec.Restore(2, hw.io); err != nil {
		return err
	}
	if err := dec.Restore(3, hw.apu); err != nil {
		return err
	}
	hw.port.addr = uint32(dec.Uint(4)) % snesWRAMSize
	if err := dec.Restore(5, hw.pads[0]); err != nil {
		return err
	}
	return dec.Restore(6, hw.pads[1])
}

// snesAPUPorts are the four ports shared with the sound CPU. Until the
// program writes 0xCC to port 0 the ports read as the IPL ready signature.
// Afterwards every port echoes the last value written to it.
type snesAPUPorts struct {
	ports  [4]uint8
	booted bool
}

func (apu *snesAPUPorts) reset() {
	apu.ports = [4]uint8{}
	apu.booted = false
}

// ReadRegister implements the memory.RegisterHandler interface.
func (apu *snesAPUPorts) ReadRegister(reg uint32) uint8 {
	return apu.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (apu *snesAPUPorts) PeekRegister(reg uint32) uint8 {
	if !apu.booted {
		switch reg {
		case 0:
			return 0xaa
		case 1:
			return 0xbb
		}
		return 0
	}
	return apu.ports[reg]
}

// WriteRegister implements the memory.RegisterHandler interface.
func (apu *snesAPUPorts) WriteRegister(reg uint32, data uint8) {
	if reg == 0 && data == 0xcc {
		apu.booted = true
	}
	apu.ports[reg] = data
}

// SaveState implements the savestate.Snapshotter interface.
func (apu *snesAPUPorts) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, apu.ports[:])
	enc.Bool(2, apu.booted)
}

// RestoreState implements the savestate.Snapshotter interface.
func (apu *snesAPUPorts) RestoreState(dec *savestate.Decoder) error {
	if err := dec.CopyBytes(1, apu.ports[:]); err != nil {
		return err
	}
	apu.booted = dec.Bool(2)
	return nil
}

// snesWRAMPort gives sequential access to WRAM through 2180-2183.
type snesWRAMPort struct {
	wram *memory.RAM
	addr uint32
}

// ReadRegister implements the memory.RegisterHandler interface.
func (w *snesWRAMPort) ReadRegister(reg uint32) uint8 {
	if reg != 0 {
		return 0
	}
	v := w.wram.Peek(w.addr)
	w.addr = (w.addr + 1) % snesWRAMSize
	return v
}

// PeekRegister implements the memory.RegisterHandler interface.
func (w *snesWRAMPort) PeekRegister(reg uint32) uint8 {
	if reg != 0 {
		return 0
	}
	return w.wram.Peek(w.addr)
}

// WriteRegister implements the memory.RegisterHandler interface.
func (w *snesWRAMPort) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case 0:
		_ = w.wram.Write(w.addr, data)
		w.addr = (w.addr + 1) % snesWRAMSize
	case 1:
		w.addr = (w.addr &^ 0x0000ff) | uint32(data)
	case 2:
		w.addr = (w.addr &^ 0x00ff00) | uint32(data)<<8
	case 3:
		w.addr = (w.addr &^ 0x010000) | uint32(data&0x01)<<16
	}
}

// snesJoypad is the serial interface at 4016 and 4017. It is the same as the
// NES interface but with sixteen bits per controller.
type snesJoypad struct {
	pads [2]*input.ShiftPort
}

// ReadRegister implements the memory.RegisterHandler interface.
func (j *snesJoypad) ReadRegister(reg uint32) uint8 {
	return j.pads[reg&0x01].Read()
}

// PeekRegister implements the memory.RegisterHandler interface.
func (j *snesJoypad) PeekRegister(reg uint32) uint8 {
	return j.pads[reg&0x01].Peek()
}

// WriteRegister implements the memory.RegisterHandler interface.
func (j *snesJoypad) WriteRegister(reg uint32, data uint8) {
	if reg == 0 {
		j.pads[0].Strobe(data&0x01 == 0x01)
		j.pads[1].Strobe(data&0x01 == 0x01)
	}
}
