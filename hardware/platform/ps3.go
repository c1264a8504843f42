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
	"github.com/emulite/emulite/hardware/cpu/powerpc"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/savestate"
)

const (
	ps3Clock     = int(clocks.CellTimebase * 1000000)
	ps3Scanlines = 750
	ps3RAMSize   = 0x10000000
	ps3RSXBase   = 0x28000000
	ps3SPUBase   = 0x1f000000
)

// time base ticks per scanline. the 720p line rate is 74.25MHz/1650
var ps3LineRatio = clocks.Ratio{Cycles: 5320, Per: 3}

var ps3Info = Info{
	ID:            "ps3",
	Name:          "Sony PlayStation 3",
	Version:       "1.0.0",
	CPU:           "PowerPC",
	MemorySize:    ps3RAMSize,
	Width:         1280,
	Height:        720,
	Refresh:       float64(ps3Clock) * 3 / (5320 * ps3Scanlines),
	AudioChannels: 0,
	Formats:       []string{"elf", "bin"},
	Aliases:       []string{"playstation3"},
}

// interrupt sources of the PS3.
const (
	ps3RSXIRQ interrupt.Source = iota
	ps3SPUIRQ
)

// ps3 is the PPU of the Cell with a minimal RSX and a loopback SPU mailbox.
type ps3 struct {
	p   *Platform
	ram *memory.RAM
	rsx *ps3RSX
	spu *ps3Mailbox

	// copied to RAM after every reset
	segments []cartridge.Segment

	// controllers are latched but not connected to any register
	pads [2]input.Snapshot
}

func newPS3(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("ps3", 32, memory.BigEndian, memory.OpenBusConstant(0))
	p := newPlatform(ps3Info, cfg, bus)

	hw := &ps3{
		p:   p,
		ram: memory.NewRAM("RAM", ps3RAMSize),
		rsx: &ps3RSX{lines: p.lines},
		spu: &ps3Mailbox{lines: p.lines},
	}
	p.hw = hw

	for _, err := range []error{
		bus.Attach(0x00000000, ps3RAMSize-1, hw.ram),
		bus.Attach(ps3SPUBase, ps3SPUBase+0x0f, memory.NewWordRegisters("SPU mailbox", 4, 4, memory.BigEndian, hw.spu)),
		bus.Attach(ps3RSXBase, ps3RSXBase+0x1f, memory.NewWordRegisters("RSX", 8, 4, memory.BigEndian, hw.rsx)),
	} {
		if err != nil {
			return nil, curated.Errorf("platform: %v", err)
		}
	}

	p.cpu = powerpc.NewCPU(bus, p.lines)

	geometry := video.Geometry{
		Width:     ps3Info.Width,
		Height:    ps3Info.Height,
		Scanlines: ps3Scanlines,
		Refresh:   ps3Info.Refresh,
	}
	if err := p.addVideo(geometry, ps3LineRatio, hw.rsx); err != nil {
		return nil, err
	}

	return p, nil
}

// load implements the hardware interface. The image is a PowerPC ELF or a
// raw program placed at the reset vector.
func (hw *ps3) load(rom []uint8) error {
	if cartridge.IsELF(rom) {
		img, err := cartridge.ParsePPCELF(rom, ps3RAMSize)
		if err != nil {
			return err
		}
		hw.segments = append(img.Segments, cartridge.Segment{
			Addr: powerpc.ResetVector,
			Data: cartridge.Trampoline(img.Entry),
		})
		logger.Logf(hw.p.perm, "ps3", "elf: entry %08x, %d segments", img.Entry, len(img.Segments))
		return nil
	}

	if len(rom) == 0 {
		return curated.Errorf("ps3: %v: empty image", cartridge.FormatError)
	}
	if uint64(len(rom))+powerpc.ResetVector > ps3RAMSize {
		return curated.Errorf("ps3: %v: image too large (%d bytes)", cartridge.FormatError, len(rom))
	}
	data := make([]uint8, len(rom))
	copy(data, rom)
	hw.segments = []cartridge.Segment{{Addr: powerpc.ResetVector, Data: data}}

	return nil
}

func (hw *ps3) reset() {
	hw.rsx.reset()
	hw.spu.reset()
	for _, s := range hw.segments {
		hw.ram.Load(s.Addr, s.Data)
	}
}

func (hw *ps3) setInput(port int, s input.Snapshot) error {
	if port < 0 || port >= len(hw.pads) {
		return curated.Errorf("ps3: no input port %d", port)
	}
	hw.pads[port] = s
	return nil
}

func (hw *ps3) release() {
	hw.segments = nil
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *ps3) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.rsx)
	enc.Snapshot(2, hw.spu)
}

// RestoreState implements the savestate.Snapshotter interface.
func (hw *ps3) RestoreState(dec *savestate.Decoder) error {
	if err := dec.Restore(1, hw.rsx); err != nil {
		return err
	}
	return dec.Restore(2, hw.spu)
}

// RSX control registers.
const (
	rsxClearColour = 0
	rsxFlip        = 1
	rsxVBlank      = 2
	rsxIRQEnable   = 3
	rsxFlipCount   = 4
	rsxIRQStatus   = 5
)

// ps3RSX is the control block of the RSX. A flip presents the clear colour.
// The whole display shows the colour of the most recent flip.
type ps3RSX struct {
	lines *interrupt.Lines

	clear     uint32
	front     uint32
	flips     uint32
	inVBlank  bool
	vblanked  bool
	irqEnable bool
	irqStatus bool
}

func (rsx *ps3RSX) reset() {
	rsx.clear = 0
	rsx.front = 0
	rsx.flips = 0
	rsx.inVBlank = false
	rsx.vblanked = false
	rsx.irqEnable = false
	rsx.irqStatus = false
	rsx.lines.LowerIRQ(ps3RSXIRQ)
}

// ReadWord implements the memory.WordHandler interface. Reading the vblank
// status clears the vblank-occurred bit.
func (rsx *ps3RSX) ReadWord(reg uint32) uint32 {
	v := rsx.PeekWord(reg)
	if reg == rsxVBlank {
		rsx.vblanked = false
	}
	return v
}

// PeekWord implements the memory.WordHandler interface.
func (rsx *ps3RSX) PeekWord(reg uint32) uint32 {
	switch reg {
	case rsxClearColour:
		return rsx.clear
	case rsxVBlank:
		var v uint32
		if rsx.inVBlank {
			v |= 0x01
		}
		if rsx.vblanked {
			v |= 0x02
		}
		return v
	case rsxIRQEnable:
		if rsx.irqEnable {
			return 1
		}
	case rsxFlipCount:
		return rsx.flips
	case rsxIRQStatus:
		if rsx.irqStatus {
			return 1
		}
	}
	return 0
}

// WriteWord implements the memory.WordHandler interface.
func (rsx *ps3RSX) WriteWord(reg uint32, v uint32) {
	switch reg {
	case rsxClearColour:
		rsx.clear = v
	case rsxFlip:
		rsx.front = rsx.clear
		rsx.flips++
	case rsxIRQEnable:
		rsx.irqEnable = v&0x01 == 0x01
	case rsxIRQStatus:
		if v&0x01 == 0x01 {
			rsx.irqStatus = false
			rsx.lines.LowerIRQ(ps3RSXIRQ)
		}
	}
}

// Scanline implements the video.Renderer interface. The colour is stored as
// ARGB.
func (rsx *ps3RSX) Scanline(_ int, row []uint8) {
	video.Fill(row, video.RGB(uint8(rsx.front>>16), uint8(rsx.front>>8), uint8(rsx.front)))
}

// VBlank implements the video.Renderer interface.
func (rsx *ps3RSX) VBlank(start bool) {
	rsx.inVBlank = start
	if !start {
		return
	}
	rsx.vblanked = true
	if rsx.irqEnable {
		rsx.irqStatus = true
		rsx.lines.RaiseIRQ(ps3RSXIRQ)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (rsx *ps3RSX) SaveState(enc *savestate.Encoder) {
	enc.Uints(1, []uint64{uint64(rsx.clear), uint64(rsx.front), uint64(rsx.flips)})
	enc.Bool(2, rsx.inVBlank)
	enc.Bool(3, rsx.vblanked)
	enc.Bool(4, rsx.irqEnable)
	enc.Bool(5, rsx.irqStatus)
}

// RestoreState implements the savestate.Snapshotter interface.
func (rsx *ps3RSX) RestoreState(dec *savestate.Decoder) error {
	r := dec.Uints(1)
	if len(r) != 3 {
		return curated.Errorf("rsx: %v: %d registers in state", savestate.CorruptError, len(r))
	}
	rsx.clear, rsx.front, rsx.flips = uint32(r[0]), uint32(r[1]), uint32(r[2])
	rsx.inVBlank = dec.Bool(2)
	rsx.vblanked = dec.Bool(3)
	rsx.irqEnable = dec.Bool(4)
	rsx.irqStatus = dec.Bool(5)
	return nil
}

// SPU mailbox registers.
const (
	mailboxIn     = 0
	mailboxOut    = 1
	mailboxStatus = 2
	mailboxIRQ    = 3

	mailboxDepth = 4
)

// ps3Mailbox is the mailbox interface of one SPU. No SPU program runs.
// Every value written to the inbound mailbox is returned through the
// outbound mailbox.
type ps3Mailbox struct {
	lines *interrupt.Lines

	queue     []uint32
	irqEnable bool
}

func (mb *ps3Mailbox) reset() {
	mb.queue = mb.queue[:0]
	mb.irqEnable = false
	mb.lines.LowerIRQ(ps3SPUIRQ)
}

func (mb *ps3Mailbox) update() {
	if mb.irqEnable && len(mb.queue) > 0 {
		mb.lines.RaiseIRQ(ps3SPUIRQ)
	} else {
		mb.lines.LowerIRQ(ps3SPUIRQ)
	}
}

// ReadWord implements the memory.WordHandler interface. Reading the outbound
// mailbox removes the value.
func (mb *ps3Mailbox) ReadWord(reg uint32) uint32 {
	v := mb.PeekWord(reg)
	if reg == mailboxOut && len(mb.queue) > 0 {
		mb.queue = mb.queue[1:]
		mb.update()
	}
	return v
}

// PeekWord implements the memory.WordHandler interface. The status register
// has the number of free inbound entries in the low byte and the number of
// waiting outbound entries in the next byte.
func (mb *ps3Mailbox) PeekWord(reg uint32) uint32 {
	switch reg {
	case mailboxOut:
		if len(mb.queue) > 0 {
			return mb.queue[0]
		}
	case mailboxStatus:
		return uint32(mailboxDepth-len(mb.queue)) | uint32(len(mb.queue))<<8
	case mailboxIRQ:
		if mb.irqEnable {
			return 1
		}
	}
	return 0
}

// WriteWord implements the memory.WordHandler interface. Writes to a full
// mailbox are lost.
func (mb *ps3Mailbox) WriteWord(reg uint32, v uint32) {
	switch reg {
	case mailboxIn:
		if len(mb.queue) < mailboxDepth {
			mb.queue = append(mb.queue, v)
		}
	case mailboxIRQ:
		mb.irqEnable = v&0x01 == 0x01
	}
	mb.update()
}

// SaveState implements the savestate.Snapshotter interface.
func (mb *ps3Mailbox) SaveState(enc *savestate.Encoder) {
	q := make([]uint64, len(mb.queue))
	for i, v := range mb.queue {
		q[i] = uint64(v)
	}
	enc.Uints(1, q)
	enc.Bool(2, mb.irqEnable)
}

// RestoreState implements the savestate.Snapshotter interface.
func (mb *ps3Mailbox) RestoreState(dec *savestate.Decoder) error {
	q := dec.Uints(1)
	if len(q) > mailboxDepth {
		return curated.Errorf("spu: %v: %d mailbox entries", savestate.CorruptError, len(q))
	}
	mb.queue = mb.queue[:0]
	for _, v := range q {
		mb.queue = append(mb.queue, uint32(v))
	}
	mb.irqEnable = dec.Bool(2)
	return nil
}
