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
	"github.com/emulite/emulite/savestate"
)

const (
	ps2Clock     = int(clocks.EmotionEE * 1000000)
	ps2Scanlines = 525
	ps2RAMSize   = 0x2000000
	ps2BIOSBase  = 0x1fc00000
	ps2BIOSSize  = 0x400000
)

// CPU cycles per scanline. the display runs progressive 480p with a line
// rate of 9MHz/286
var ps2LineRatio = clocks.Ratio{Cycles: 10543104, Per: 1125}

var ps2Info = Info{
	ID:            "ps2",
	Name:          "Sony PlayStation 2",
	Version:       "1.0.0",
	CPU:           "MIPS R3000A",
	MemorySize:    ps2RAMSize,
	Width:         640,
	Height:        448,
	Refresh:       float64(ps2Clock) * 1125 / (10543104 * ps2Scanlines),
	AudioChannels: spuVoices,
	Formats:       []string{"bin", "rom"},
	Aliases:       []string{"playstation2"},
}

// interrupt numbers of the EE interrupt controller
const (
	ps2IntGS       = 0
	ps2VBlankStart = 2
	ps2VBlankEnd   = 3
)

// ps2 is the Emotion Engine side of the PlayStation 2. The GS is limited to
// its privileged registers and draws the background colour.
type ps2 struct {
	p    *Platform
	intc *psINTC
	gs   *ps2GS
	spu  *psSPU
	cdvd *ps2CDVD
	pads *psPads
}

func newPS2(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("ps2", 32, memory.LittleEndian, memory.OpenBusConstant(0))
	p := newPlatform(ps2Info, cfg, bus)

	hw := &ps2{p: p}
	hw.intc = newPSINTC(p.lines, true)
	hw.gs = &ps2GS{intc: hw.intc}
	hw.spu = newPSSPU(ps2SPULayout)
	hw.cdvd = &ps2CDVD{}
	hw.pads = newPSPads(hw.intc)
	p.hw = hw

	for _, r := range []memorymap.Range[memory.Device]{
		{Start: 0x00000000, End: ps2RAMSize - 1, Device: memory.NewRAM("RAM", ps2RAMSize)},
		{Start: 0x1000f000, End: 0x1000f01f, Device: memory.NewWordRegisters("INTC", 8, 4, memory.LittleEndian, hw.intc)},
		{Start: 0x12000000, End: 0x12001fff, Device: memory.NewWordRegisters("GS", 0x800, 4, memory.LittleEndian, hw.gs)},
		{Start: 0x1f402000, End: 0x1f40201f, Device: memory.NewRegisters("CDVD", 0x20, hw.cdvd)},
		{Start: 0x1f900000, End: 0x1f9007ff, Device: memory.NewWordRegisters("SPU2", ps2SPULayout.count, 2, memory.LittleEndian, hw.spu)},
	} {
		if err := bus.AttachRange(r); err != nil {
			return nil, curated.Errorf("platform: %v", err)
		}
	}

	p.cpu = mips.NewCPU(bus, memory.LittleEndian, p.lines)

	geometry := video.Geometry{
		Width:     ps2Info.Width,
		Height:    ps2Info.Height,
		Scanlines: ps2Scanlines,
		Refresh:   ps2Info.Refresh,
	}
	if err := p.addVideo(geometry, ps2LineRatio, hw.gs); err != nil {
		return nil, err
	}
	if err := p.addAudio(ps2Clock, hw.spu.voices()...); err != nil {
		return nil, err
	}

	return p, nil
}

// load implements the hardware interface. Only a BIOS image is accepted.
func (hw *ps2) load(rom []uint8) error {
	bios, err := cartridge.BIOS("ps2", rom, ps2BIOSSize)
	if err != nil {
		return err
	}
	data := make([]uint8, ps2BIOSSize)
	copy(data, bios)
	return hw.p.bus.Attach(ps2BIOSBase, ps2BIOSBase+ps2BIOSSize-1, memory.NewROM("BIOS", data, memory.RaiseOnWrite))
}

func (hw *ps2) reset() {
	hw.intc.reset()
	hw.gs.reset()
	hw.spu.reset()
	hw.cdvd.reset()
	hw.pads.reset()
}

// setInput implements the hardware interface. The controllers are connected
// to the IOP, which is not emulated, so the state is only latched.
func (hw *ps2) setInput(port int, s input.Snapshot) error {
	return hw.pads.set(port, s)
}

func (hw *ps2) release() {
	hw.spu.ram = nil
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *ps2) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.intc)
	enc.Snapshot(2, hw.gs)
	enc.Snapshot(3, hw.spu)
	enc.Snapshot(4, hw.cdvd)
	enc.Snapshot(5, hw.pads)
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *ps2) RestoreState(dec *savestate.Decoder) error {
	for i, s := range []savestate.Snapshotter{hw.intc, hw.gs, hw.spu, hw.cdvd, hw.pads} {
		if err := dec.Restore(i+1, s); err != nil {
			return err
		}
	}
	return nil
}

// GS privileged registers as word numbers. Each register is 64 bits wide and
// the upper word is at the following register number.
const (
	gsPMODE   = 0x0000 / 4
	gsBGCOLOR = 0x00e0 / 4
	gsCSR     = 0x1000 / 4
	gsIMR     = 0x1010 / 4
)

// CSR bits.
const (
	gsSIGNAL = 0x0001
	gsFINISH = 0x0002
	gsHSINT  = 0x0004
	gsVSINT  = 0x0008
	gsRESET  = 0x0200
	gsFIELD  = 0x2000

	// revision and identifier in the upper half of CSR
	gsID = 0x551b
)

// ps2GS holds the privileged registers of the Graphics Synthesizer.
type ps2GS struct {
	intc *psINTC

	pmode   uint32
	bgcolor uint32
	csr     uint32
	imr     uint32
}

func (gs *ps2GS) reset() {
	gs.pmode = 0
	gs.bgcolor = 0
	gs.csr = 0
	gs.imr = 0x7f00
}

// ReadWord implements the memory.WordHandler interface.
func (gs *ps2GS) ReadWord(reg uint32) uint32 {
	return gs.PeekWord(reg)
}

// PeekWord implements the memory.WordHandler interface.
func (gs *ps2GS) PeekWord(reg uint32) uint32 {
	switch reg {
	case gsPMODE:
		return gs.pmode
	case gsBGCOLOR:
		return gs.bgcolor
	case gsCSR:
		return gs.csr
	case gsCSR + 1:
		return gsID
	case gsIMR:
		return gs.imr
	}
	return 0
}

// WriteWord implements the memory.WordHandler interface.
func (gs *ps2GS) WriteWord(reg uint32, v uint32) {
	switch reg {
	case gsPMODE:
		gs.pmode = v
	case gsBGCOLOR:
		gs.bgcolor = v & 0xffffff
	case gsCSR:
		if v&gsRESET == gsRESET {
			gs.reset()
			return
		}
		// interrupt flags are cleared by writing one
		gs.csr &^= v & (gsSIGNAL | gsFINISH | gsHSINT | gsVSINT)
	case gsIMR:
		gs.imr = v
	}
}

// Scanline implements the video.Renderer interface.
func (gs *ps2GS) Scanline(_ int, row []uint8) {
	c := video.RGB(uint8(gs.bgcolor), uint8(gs.bgcolor>>8), uint8(gs.bgcolor>>16))
	video.Fill(row, c)
}

// VBlank implements the video.Renderer interface.
func (gs *ps2GS) VBlank(start bool) {
	if !start {
		gs.intc.raise(ps2VBlankEnd)
		return
	}
	gs.csr ^= gsFIELD
	gs.csr |= gsVSINT
	gs.intc.raise(ps2VBlankStart)
	if gs.imr&(gsVSINT<<8) == 0 {
		gs.intc.raise(ps2IntGS)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (gs *ps2GS) SaveState(enc *savestate.Encoder) {
	enc.Uints(1, []uint64{uint64(gs.pmode), uint64(gs.bgcolor), uint64(gs.csr), uint64(gs.imr)})
}

// RestoreState implements the savestate.Snapshotter interface.
func (gs *ps2GS) RestoreState(dec *savestate.Decoder) error {
	r := dec.Uints(1)
	if len(r) != 4 {
		return curated.Errorf("gs: %v: %d registers in state", savestate.CorruptError, len(r))
	}
	gs.pmode, gs.bgcolor, gs.csr, gs.imr = uint32(r[0]), uint32(r[1]), uint32(r[2]), uint32(r[3])
	return nil
}

// CDVD registers as offsets from 0x1F402000.
const (
	cdvdNStatus = 0x05
	cdvdStatus  = 0x0a
	cdvdType    = 0x0f
	cdvdSCmd    = 0x16
	cdvdSStatus = 0x17
	cdvdSResult = 0x18
)

// ps2CDVD is the CDVD controller with no disc. S commands complete at once
// with a single zero byte result.
type ps2CDVD struct {
	result []uint8
	last   uint8
}

func (cd *ps2CDVD) reset() {
	cd.result = cd.result[:0]
	cd.last = 0
}

// ReadRegister implements the memory.RegisterHandler interface.
func (cd *ps2CDVD) ReadRegister(reg uint32) uint8 {
	if reg == cdvdSResult {
		if len(cd.result) == 0 {
			return 0
		}
		v := cd.result[0]
		cd.result = cd.result[1:]
		return v
	}
	return cd.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (cd *ps2CDVD) PeekRegister(reg uint32) uint8 {
	switch reg {
	case cdvdNStatus:
		// ready
		return 0x40
	case cdvdStatus:
		// tray open
		return 0x01
	case cdvdType:
		// no disc
		return 0x00
	case cdvdSCmd:
		return cd.last
	case cdvdSStatus:
		if len(cd.result) == 0 {
			return 0x40
		}
		return 0x00
	case cdvdSResult:
		if len(cd.result) == 0 {
			return 0
		}
		return cd.result[0]
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (cd *ps2CDVD) WriteRegister(reg uint32, data uint8) {
	if reg == cdvdSCmd {
		cd.last = data
		cd.result = append(cd.result[:0], 0x00)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (cd *ps2CDVD) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, cd.result)
	enc.Uint(2, uint64(cd.last))
}

// RestoreState implements the savestate.Snapshotter interface.
func (cd *ps2CDVD) RestoreState(dec *savestate.Decoder) error {
	cd.result = dec.Bytes(1)
	cd.last = uint8(dec.Uint(2))
	return nil
}
