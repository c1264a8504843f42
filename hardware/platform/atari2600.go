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
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
)

const (
	atariLineCycles = 76
	atariScanlines  = 262
	atariClock      = int(clocks.NTSC * 1000000)
)

var atariInfo = Info{
	ID:            "atari2600",
	Name:          "Atari 2600",
	Version:       "1.0.0",
	CPU:           mos6502.MOS6507.String(),
	MemorySize:    128,
	Width:         160,
	Height:        192,
	Refresh:       float64(atariClock) / (atariLineCycles * atariScanlines),
	AudioChannels: 2,
	Formats:       []string{"a26", "bin"},
	Aliases:       []string{"atari", "2600", "vcs"},
}

// atari2600 is the VCS. The TIA and the RIOT are the only chips other than
// the CPU and the cartridge.
type atari2600 struct {
	p    *Platform
	tia  *tia
	riot *riot
	cart *memory.Banked
}

func newAtari2600(cfg *config.Config) (*Platform, error) {
	bus := memory.NewBus("atari2600", 13, memory.LittleEndian, memory.OpenBusLast())
	p := newPlatform(atariInfo, cfg, bus)

	hw := &atari2600{p: p}
	hw.riot = newRIOT()
	hw.tia = newTIA(p, hw.riot)
	p.hw = hw

	tiaRegs := memory.NewRegisters("TIA", 0x40, hw.tia)
	ram := memory.NewRAM("RIOT RAM", 128)
	riotRegs := memory.NewRegisters("RIOT", 0x18, hw.riot)

	for _, err := range []error{
		bus.AttachMirror(0x000, 0x07f, tiaRegs, 0x3f),
		bus.Attach(0x080, 0x0ff, ram),
		bus.AttachMirror(0x100, 0x17f, tiaRegs, 0x3f),
		bus.Attach(0x180, 0x1ff, ram),
		bus.Attach(0x280, 0x297, riotRegs),
	} {
		if err != nil {
			return nil, curated.Errorf("platform: %v", err)
		}
	}

	p.cpu = mos6502.NewCPU(mos6502.MOS6507, bus, p.lines)

	geometry := video.Geometry{
		Width:     atariInfo.Width,
		Height:    atariInfo.Height,
		Scanlines: atariScanlines,
		Refresh:   atariInfo.Refresh,
	}
	if err := p.addVideo(geometry, clocks.Whole(atariLineCycles), hw.tia); err != nil {
		return nil, err
	}
	if err := p.addAudio(atariClock, &hw.tia.voices[0], &hw.tia.voices[1]); err != nil {
		return nil, err
	}
	p.addStepper(hw.riot)

	return p, nil
}

func (hw *atari2600) load(rom []uint8) error {
	cart, err := cartridge.NewAtari(rom)
	if err != nil {
		return err
	}
	hw.cart = cart
	return hw.p.bus.Attach(0x1000, 0x1fff, cart)
}

func (hw *atari2600) reset() {
	hw.tia.reset()
	hw.riot.Reset()
}

func (hw *atari2600) setInput(port int, s input.Snapshot) error {
	if port < 0 || port >= len(hw.riot.ports) {
		return curated.Errorf("atari2600: no input port %d", port)
	}
	hw.riot.ports[port].Set(s)
	return nil
}

func (hw *atari2600) release() {
	hw.cart = nil
}

// SaveState implements the savestate.Snapshotter interface.
func (hw *atari2600) SaveState(enc *savestate.Encoder) {
	enc.Snapshot(1, hw.tia)
	enc.Snapshot(2, hw.riot.ports[0])
	enc.Snapshot(3, hw.riot.ports[1])
}

// RestoreState implements the savestate.Snapshotter interface. The RIOT timer
// is a stepper and is restored by the platform.
func (hw *atari2600) RestoreState(dec *savestate.Decoder) error {
	if err := dec.Restore(1, hw.tia); err != nil {
		return err
	}
	if err := dec.Restore(2, hw.riot.ports[0]); err != nil {
		return err
	}
	return dec.Restore(3, hw.riot.ports[1])
}

// TIA write registers.
const (
	tiaVSYNC  = 0x00
	tiaVBLANK = 0x01
	tiaWSYNC  = 0x02
	tiaCOLUP0 = 0x06
	tiaCOLUP1 = 0x07
	tiaCOLUPF = 0x08
	tiaCOLUBK = 0x09
	tiaCTRLPF = 0x0a
	tiaPF0    = 0x0d
	tiaPF1    = 0x0e
	tiaPF2    = 0x0f
	tiaAUDC0  = 0x15
	tiaAUDC1  = 0x16
	tiaAUDF0  = 0x17
	tiaAUDF1  = 0x18
	tiaAUDV0  = 0x19
	tiaAUDV1  = 0x1a
)

// TIA read registers.
const (
	tiaINPT4 = 0x0c
	tiaINPT5 = 0x0d
)

// the audio clock of the TIA in Hz
const tiaAudioClock = 31400.0

// divider of the audio clock for each AUDC value. zero is silent. the noise
// and poly modes are approximated by a tone of the same period
var tiaAudioDivider = [16]float64{0, 15, 465, 465, 2, 2, 31, 31, 511, 31, 31, 0, 6, 6, 93, 93}

// tia is the video and audio chip of the Atari 2600. The playfield and the
// background colour are drawn once per scanline from the register values at
// the end of the line.
type tia struct {
	p    *Platform
	riot *riot

	vsync  uint8
	vblank uint8
	colup  [2]uint8
	colupf uint8
	colubk uint8
	ctrlpf uint8
	pf     [3]uint8

	audc [2]uint8
	audf [2]uint8
	audv [2]uint8

	voices [2]audio.Voice
}

func newTIA(p *Platform, r *riot) *tia {
	return &tia{p: p, riot: r}
}

func (t *tia) reset() {
	t.vsync = 0
	t.vblank = 0
	t.colup = [2]uint8{}
	t.colupf = 0
	t.colubk = 0
	t.ctrlpf = 0
	t.pf = [3]uint8{}
	t.audc = [2]uint8{}
	t.audf = [2]uint8{}
	t.audv = [2]uint8{}
	for i := range t.voices {
		t.voices[i].Silence()
	}
}

// ReadRegister implements the memory.RegisterHandler interface.
func (t *tia) ReadRegister(reg uint32) uint8 {
	return t.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (t *tia) PeekRegister(reg uint32) uint8 {
	switch reg & 0x0f {
	case tiaINPT4:
		return t.fire(0)
	case tiaINPT5:
		return t.fire(1)
	}
	return 0
}

// the fire buttons are active low in bit 7
func (t *tia) fire(port int) uint8 {
	if t.riot.ports[port].Snapshot().Buttons&(input.A|input.B) != 0 {
		return 0x00
	}
	return 0x80
}

// WriteRegister implements the memory.RegisterHandler interface.
func (t *tia) WriteRegister(reg uint32, data uint8) {
	reg &= 0x3f
	switch reg {
	case tiaVSYNC:
		t.vsync = data
	case tiaVBLANK:
		t.vblank = data
	case tiaWSYNC:
		t.p.StallUntil(t.p.video)
	case tiaCOLUP0:
		t.colup[0] = data
	case tiaCOLUP1:
		t.colup[1] = data
	case tiaCOLUPF:
		t.colupf = data
	case tiaCOLUBK:
		t.colubk = data
	case tiaCTRLPF:
		t.ctrlpf = data
	case tiaPF0:
		t.pf[0] = data
	case tiaPF1:
		t.pf[1] = data
	case tiaPF2:
		t.pf[2] = data
	case tiaAUDC0, tiaAUDC1:
		t.audc[reg-tiaAUDC0] = data & 0x0f
		t.updateVoice(int(reg - tiaAUDC0))
	case tiaAUDF0, tiaAUDF1:
		t.audf[reg-tiaAUDF0] = data & 0x1f
		t.updateVoice(int(reg - tiaAUDF0))
	case tiaAUDV0, tiaAUDV1:
		t.audv[reg-tiaAUDV0] = data & 0x0f
		t.updateVoice(int(reg - tiaAUDV0))
	}
}

func (t *tia) updateVoice(i int) {
	div := tiaAudioDivider[t.audc[i]]
	v := &t.voices[i]
	v.Enabled = div > 0 && t.audv[i] > 0
	if div > 0 {
		v.Frequency = tiaAudioClock / float64(int(t.audf[i])+1) / div
	}
	v.Volume = float64(t.audv[i]) / 15
}

// playfield returns true if the playfield bit for the 4 pixel wide column is
// set. there are 40 columns, 20 for each half of the screen.
func (t *tia) playfield(col int) bool {
	if col >= 20 {
		col -= 20
		if t.ctrlpf&0x01 == 0x01 {
			col = 19 - col
		}
	}
	switch {
	case col < 4:
		return t.pf[0]&(0x10<<col) != 0
	case col < 12:
		return t.pf[1]&(0x80>>(col-4)) != 0
	}
	return t.pf[2]&(0x01<<(col-12)) != 0
}

// Scanline implements the video.Renderer interface.
func (t *tia) Scanline(_ int, row []uint8) {
	if t.vblank&0x02 == 0x02 || t.vsync&0x02 == 0x02 {
		video.Fill(row, video.RGB(0, 0, 0))
		return
	}

	video.Fill(row, paletteNTSC.Colour(int(t.colubk>>1)))

	for col := 0; col < 40; col++ {
		if !t.playfield(col) {
			continue
		}
		c := t.colupf
		if t.ctrlpf&0x02 == 0x02 {
			c = t.colup[col/20]
		}
		video.FillSpan(row, col*4, col*4+4, paletteNTSC.Colour(int(c>>1)))
	}
}

// VBlank implements the video.Renderer interface. The 2600 has no vertical
// blank interrupt.
func (t *tia) VBlank(_ bool) {
}

// SaveState implements the savestate.Snapshotter interface.
func (t *tia) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, []uint8{
		t.vsync, t.vblank, t.colup[0], t.colup[1], t.colupf, t.colubk, t.ctrlpf,
		t.pf[0], t.pf[1], t.pf[2],
		t.audc[0], t.audc[1], t.audf[0], t.audf[1], t.audv[0], t.audv[1],
	})
}

// RestoreState implements the savestate.Snapshotter interface.
func (t *tia) RestoreState(dec *savestate.Decoder) error {
	r := dec.Bytes(1)
	if len(r) != 16 {
		return curated.Errorf("tia: %v: %d registers in state", savestate.CorruptError, len(r))
	}
	t.vsync, t.vblank, t.colup[0], t.colup[1], t.colupf, t.colubk, t.ctrlpf = r[0], r[1], r[2], r[3], r[4], r[5], r[6]
	t.pf[0], t.pf[1], t.pf[2] = r[7], r[8], r[9]
	t.audc[0], t.audc[1], t.audf[0], t.audf[1], t.audv[0], t.audv[1] = r[10], r[11], r[12], r[13], r[14], r[15]
	for i := range t.voices {
		t.updateVoice(i)
	}
	return nil
}

// RIOT registers, as offsets from 0x280.
const (
	riotSWCHA  = 0x00
	riotSWACNT = 0x01
	riotSWCHB  = 0x02
	riotSWBCNT = 0x03
	riotINTIM  = 0x04
	riotTIMINT = 0x05
	riotTIM1T  = 0x14
	riotTIM8T  = 0x15
	riotTIM64T = 0x16
	riotT1024T = 0x17
)

// riot is the I/O and timer part of the 6532. The RAM is a separate device.
//
// The timer is a stepper ticked once per CPU cycle.
type riot struct {
	ports [2]*input.ParallelPort

	swacnt uint8
	swbcnt uint8

	// timer value and the number of cycles between decrements
	intim     uint8
	divider   int
	remaining int
	timint    bool
}

func newRIOT() *riot {
	r := &riot{}
	r.ports[0] = input.NewParallelPort(map[input.Button]uint{
		input.Right: 7, input.Left: 6, input.Down: 5, input.Up: 4,
	}, true)
	r.ports[1] = input.NewParallelPort(map[input.Button]uint{
		input.Right: 3, input.Left: 2, input.Down: 1, input.Up: 0,
	}, true)
	r.Reset()
	return r
}

// Label implements the peripherals.Stepper interface.
func (r *riot) Label() string {
	return "RIOT"
}

// Ratio implements the peripherals.Stepper interface.
func (r *riot) Ratio() clocks.Ratio {
	return clocks.Whole(1)
}

// Tick implements the peripherals.Stepper interface. Once the timer passes
// zero it decreases every cycle until INTIM is read.
func (r *riot) Tick() error {
	r.remaining--
	if r.remaining < 0 {
		r.intim--
		if r.intim == 0xff {
			r.timint = true
		}
		if r.timint {
			r.remaining = 0
		} else {
			r.remaining = r.divider - 1
		}
	}
	return nil
}

// Reset implements the peripherals.Stepper interface. Controller state is
// kept.
func (r *riot) Reset() {
	r.swacnt = 0
	r.swbcnt = 0
	r.intim = 0
	r.divider = 1024
	r.remaining = 1024
	r.timint = false
}

func (r *riot) swcha() uint8 {
	return uint8(r.ports[0].Read() & r.ports[1].Read())
}

// the console switches are taken from the first controller. start is the
// reset switch
func (r *riot) swchb() uint8 {
	v := uint8(0x3f)
	s := r.ports[0].Snapshot()
	if s.Pressed(input.Start) {
		v &^= 0x01
	}
	if s.Pressed(input.Select) {
		v &^= 0x02
	}
	return v
}

// ReadRegister implements the memory.RegisterHandler interface.
func (r *riot) ReadRegister(reg uint32) uint8 {
	if reg == riotINTIM || reg == riotINTIM+2 {
		// reading the timer returns it to the programmed interval
		r.timint = false
	}
	return r.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (r *riot) PeekRegister(reg uint32) uint8 {
	switch reg {
	case riotSWCHA:
		return r.swcha()
	case riotSWACNT:
		return r.swacnt
	case riotSWCHB:
		return r.swchb()
	case riotSWBCNT:
		return r.swbcnt
	case riotINTIM, riotINTIM + 2:
		return r.intim
	case riotTIMINT, riotTIMINT + 2:
		if r.timint {
			return 0x80
		}
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (r *riot) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case riotSWACNT:
		r.swacnt = data
	case riotSWBCNT:
		r.swbcnt = data
	case riotTIM1T, riotTIM8T, riotTIM64T, riotT1024T:
		r.divider = []int{1, 8, 64, 1024}[reg-riotTIM1T]
		r.intim = data
		r.remaining = 0
		r.timint = false
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (r *riot) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(r.swacnt))
	enc.Uint(2, uint64(r.swbcnt))
	enc.Uint(3, uint64(r.intim))
	enc.Uint(4, uint64(r.divider))
	enc.Int(5, int64(r.remaining))
	enc.Bool(6, r.timint)
}

// RestoreState implements the savestate.Snapshotter interface.
func (r *riot) RestoreState(dec *savestate.Decoder) error {
	r.swacnt = uint8(dec.Uint(1))
	r.swbcnt = uint8(dec.Uint(2))
	r.intim = uint8(dec.Uint(3))
	r.divider = int(dec.Uint(4))
	r.remaining = int(dec.Int(5))
	r.timint = dec.Bool(6)
	switch r.divider {
	case 1, 8, 64, 1024:
	default:
		return curated.Errorf("riot: %v: timer interval %d", savestate.CorruptError, r.divider)
	}
	return nil
}
