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
	"github.com/emulite/emulite/hardware/cpu/mips"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/memory/memorymap"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/savestate"
)

const (
	ps1Clock     = int(clocks.PSX * 1000000)
	ps1Scanlines = 263
	ps1RAMSize   = 0x200000
	ps1BIOSBase  = 0x1fc00000
	ps1BIOSSize  = 0x80000
)

// CPU cycles per scanline. the GPU clock is 11/7 of the CPU clock and a
// line is 3413 GPU cycles
var ps1LineRatio = clocks.Ratio{Cycles: 23891, Per: 11}

var ps1Info = Info{
	ID:            "ps1",
	Name:          "Sony PlayStation",
	Version:       "1.0.0",
	CPU:           "MIPS R3000A",
	MemorySize:    ps1RAMSize,
	Width:         320,
	Height:        240,
	Refresh:       float64(ps1Clock) * 11 / (23891 * ps1Scanlines),
	AudioChannels: spuVoices,
	Formats:       []string{"exe", "bin"},
	Aliases:       []string{"playstation", "psx", "psone"},
}

// ps1 is the PlayStation. The bus is addressed with physical addresses.
// The CPU removes the segment bits before every access.
type ps1 struct {
	p     *Platform
	ram   *memory.RAM
	intc  *psINTC
	pads  *psPads
	cdrom *psCDROM
	gpu   *psGPU
	spu   *psSPU

	// the executable is copied to RAM after every reset
	exe *cartridge.PSXEXE
}

func newPS1(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("ps1", 32, memory.LittleEndian, memory.OpenBusConstant(0))
	p := newPlatform(ps1Info, cfg, bus)

	hw := &ps1{
		p:   p,
		ram: memory.NewRAM("RAM", ps1RAMSize),
	}
	hw.intc = newPSINTC(p.lines, false)
	hw.pads = newPSPads(hw.intc)
	hw.cdrom = newPSCDROM(hw.intc)
	hw.gpu = newPSGPU(hw.intc)
	hw.spu = newPSSPU(ps1SPULayout)
	p.hw = hw

	for _, r := range []memorymap.Range[memory.Device]{
		{Start: 0x00000000, End: 0x007fffff, Device: hw.ram, Mask: ps1RAMSize - 1},
		{Start: 0x1f800000, End: 0x1f8003ff, Device: memory.NewRAM("Scratchpad", 0x400)},
		{Start: 0x1f801000, End: 0x1f801023, Device: memory.NewRAM("Memory control", 0x24)},
		{Start: 0x1f801040, End: 0x1f80104f, Device: memory.NewRegisters("SIO0", 0x10, hw.pads)},
		{Start: 0x1f801060, End: 0x1f801063, Device: memory.NewRAM("RAM size", 4)},
		{Start: 0x1f801070, End: 0x1f801077, Device: memory.NewWordRegisters("Interrupt control", 4, 2, memory.LittleEndian, hw.intc)},
		{Start: 0x1f801080, End: 0x1f8010ff, Device: memory.NewRAM("DMA", 0x80)},
		{Start: 0x1f801100, End: 0x1f80112f, Device: memory.NewRAM("Timers", 0x30)},
		{Start: 0x1f801800, End: 0x1f801803, Device: memory.NewRegisters("CD-ROM", 4, hw.cdrom)},
		{Start: 0x1f801810, End: 0x1f801817, Device: memory.NewWordRegisters("GPU", 2, 4, memory.LittleEndian, hw.gpu)},
		{Start: 0x1f801c00, End: 0x1f801fff, Device: memory.NewWordRegisters("SPU", ps1SPULayout.count, 2, memory.LittleEndian, hw.spu)},
		{Start: 0x1f802000, End: 0x1f802fff, Device: memory.NewRAM("Expansion 2", 0x1000)},
		{Start: 0x1ffe0130, End: 0x1ffe0133, Device: memory.NewRAM("Cache control", 4)},
	} {
		if err := bus.AttachRange(r); err != nil {
			return nil, curated.Errorf("platform: %v", err)
		}
	}

	p.cpu = mips.NewCPU(bus, memory.LittleEndian, p.lines)

	geometry := video.Geometry{
		Width:     ps1Info.Width,
		Height:    ps1Info.Height,
		Scanlines: ps1Scanlines,
		Refresh:   ps1Info.Refresh,
	}
	if err := p.addVideo(geometry, ps1LineRatio, hw.gpu); err != nil {
		return nil, err
	}
	if err := p.addAudio(ps1Clock, hw.spu.voices()...); err != nil {
		return nil, err
	}

	return p, nil
}

// load implements the hardware interface. The image is either a PS-X EXE or
// a raw BIOS.
func (hw *ps1) load(rom []uint8) error {
	var bios []uint8

	if cartridge.IsPSXEXE(rom) {
		exe, err := cartridge.ParsePSXEXE(rom)
		if err != nil {
			return err
		}
		if uint64(exe.Addr&(ps1RAMSize-1))+uint64(len(exe.Text)) > ps1RAMSize {
			return curated.Errorf("ps1: %v: executable does not fit in RAM", cartridge.FormatError)
		}
		hw.exe = exe
		bios = exe.BootStub()
		logger.Logf(hw.p.perm, "ps1", "executable: entry %08x, %d bytes at %08x", exe.PC, len(exe.Text), exe.Addr)
	} else {
		var err error
		bios, err = cartridge.BIOS("ps1", rom, ps1BIOSSize)
		if err != nil {
			return err
		}
	}

	data := make([]uint8, ps1BIOSSize)
	copy(data, bios)
	return hw.p.bus.Attach(ps1BIOSBase, ps1BIOSBase+ps1BIOSSize-1, memory.NewROM("BIOS", data, memory.RaiseOnWrite))
}

func (hw *ps1) reset() {
	hw.intc.reset()
	hw.pads.reset()
	hw.cdrom.reset()
	hw.gpu.powerOn()
	hw.spu.reset()
	if hw.exe != nil {
		hw.ram.Load(hw.exe.Addr&(ps1RAMSize-1), hw.exe.Text)
	}
}

func (hw *ps1) setInput(port int, s input.Snapshot) error {
	return hw.pads.set(port, s)
}

func (hw *ps1) release() {
	hw.gpu.vram = nil
	hw.spu.ram = nil
	hw.exe = nil
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *ps1) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.intc)
	enc.Snapshot(2, hw.pads)
	enc.Snapshot(3, hw.cdrom)
	enc.Snapshot(4, hw.gpu)
	enc.Snapshot(5, hw.spu)
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *ps1) RestoreState(dec *savestate.Decoder) error {
	for i, s := range []savestate.Snapshotter{hw.intc, hw.pads, hw.cdrom, hw.gpu, hw.spu} {
		if err := dec.Restore(i+1, s); err != nil {
			return err
		}
	}
	return nil
}
