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

package platform_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/hardware/memory/cartridge"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/savestate"
	"github.com/emulite/emulite/test"
)

// create a platform, load the image and reset.
func boot(t *testing.T, id string, rom []uint8) *platform.Platform {
	t.Helper()
	p, err := platform.Create(id, nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, p.Load(rom))
	test.DemandSuccess(t, p.Reset())
	return p
}

func run(p *platform.Platform, steps int) {
	for i := 0; i < steps; i++ {
		_, _ = p.Step()
	}
}

// runFrames steps until the frame count has advanced by n. Gives up after a
// large number of steps.
func runFrames(p *platform.Platform, n int) {
	target := p.Frame() + n
	for i := 0; i < 10000000 && p.Frame() < target; i++ {
		_, _ = p.Step()
	}
}

type frameSink struct {
	frames []video.Frame
}

func (s *frameSink) NewFrame(f video.Frame) {
	s.frames = append(s.frames, f)
}

func nesImage(prg []uint8, nmi uint16) []uint8 {
	rom := make([]uint8, 16+0x4000)
	copy(rom, []uint8{'N', 'E', 'S', 0x1a, 1, 0, 0, 0})
	copy(rom[16:], prg)
	binary.LittleEndian.PutUint16(rom[16+0x3ffa:], nmi)
	binary.LittleEndian.PutUint16(rom[16+0x3ffc:], 0x8000)
	binary.LittleEndian.PutUint16(rom[16+0x3ffe:], 0x8000)
	return rom
}

func atariImage(program ...uint8) []uint8 {
	rom := make([]uint8, 4096)
	copy(rom, program)
	binary.LittleEndian.PutUint16(rom[0xffc:], 0xf000)
	return rom
}

func snesImage(program ...uint8) []uint8 {
	rom := make([]uint8, 0x8000)
	copy(rom, program)
	binary.LittleEndian.PutUint16(rom[0x7ffc:], 0x8000)
	return rom
}

func psxImage(code ...uint32) []uint8 {
	rom := make([]uint8, 0x800+len(code)*4)
	copy(rom, "PS-X EXE")
	binary.LittleEndian.PutUint32(rom[0x10:], 0x80010000)
	binary.LittleEndian.PutUint32(rom[0x18:], 0x80010000)
	binary.LittleEndian.PutUint32(rom[0x1c:], uint32(len(code)*4))
	for i, c := range code {
		binary.LittleEndian.PutUint32(rom[0x800+i*4:], c)
	}
	return rom
}

func TestRegistry(t *testing.T) {
	ids := platform.IDs()
	test.ExpectEquality(t, len(ids), 7)
	for i := 1; i < len(ids); i++ {
		test.ExpectEquality(t, ids[i-1] < ids[i], true)
	}

	for alias, id := range map[string]string{
		"atari":          "atari2600",
		"Nintendo":       "nes",
		"super nintendo": "snes",
		"playstation":    "ps1",
		"playstation2":   "ps2",
		"playstation3":   "ps3",
		" generic ":      "generic",
	} {
		v, ok := platform.Lookup(alias)
		test.ExpectEquality(t, ok, true, alias)
		test.ExpectEquality(t, v, id, alias)
	}

	_, err := platform.Create("amiga", nil)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, errors.Is(err, platform.UnsupportedError), true)

	_, err = platform.Describe("amiga")
	test.ExpectEquality(t, errors.Is(err, platform.UnsupportedError), true)

	inf, err := platform.Describe("nes")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, inf.Width, 256)
	test.ExpectEquality(t, inf.Height, 240)
	test.ExpectApproximate(t, inf.Refresh, 60.1, 0.01)
}

// every registered platform can be created and has a geometry that fits
// within its scanline count.
func TestCreateAll(t *testing.T) {
	for _, id := range platform.IDs() {
		p, err := platform.Create(id, nil)
		test.DemandSuccess(t, err, id)
		g := p.Geometry()
		test.ExpectEquality(t, g.Scanlines >= g.Height, true, id)
		test.ExpectEquality(t, g.Refresh > 0, true, id)
	}

	inf, err := platform.Describe("ps2")
	test.DemandSuccess(t, err)
	test.ExpectApproximate(t, inf.Refresh, 59.94, 0.01)

	inf, err = platform.Describe("ps3")
	test.DemandSuccess(t, err)
	test.ExpectApproximate(t, inf.Refresh, 60.0, 0.01)
}

func TestNotLoaded(t *testing.T) {
	p, err := platform.Create("generic", nil)
	test.DemandSuccess(t, err)
	_, err = p.Step()
	test.ExpectFailure(t, err)
}

// a JMP to itself takes three cycles and never moves the program counter.
func TestJumpLoop(t *testing.T) {
	p := boot(t, "generic", []uint8{0x4c, 0x00, 0x80})
	test.ExpectEquality(t, p.CPU().PC(), uint32(0x8000))

	const n = 1000
	for i := 0; i < n; i++ {
		c, err := p.Step()
		test.DemandSuccess(t, err)
		test.DemandEquality(t, c, 3)
	}
	test.ExpectEquality(t, p.CPU().PC(), uint32(0x8000))
	test.ExpectEquality(t, p.Cycles(), uint64(n*3))
	test.ExpectEquality(t, p.Instructions(), uint64(n))
}

func TestLoadOnce(t *testing.T) {
	p := boot(t, "generic", []uint8{0x4c, 0x00, 0x80})
	test.ExpectFailure(t, p.Load([]uint8{0xea}))
}

func TestOpenBus(t *testing.T) {
	p, err := platform.Create("generic", nil)
	test.DemandSuccess(t, err)
	v, err := p.Bus().Read8(0x9000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xff))

	p = boot(t, "nes", nesImage(nil, 0x8000))
	test.DemandSuccess(t, p.Bus().Write8(0x0000, 0x42))
	v, err = p.Bus().Read8(0x5000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x42))

	p = boot(t, "ps1", make([]uint8, 4))
	test.DemandSuccess(t, p.Bus().Write8(0x00000000, 0x42))
	v, err = p.Bus().Read8(0x1f000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x00))
}

func TestROMWriteFault(t *testing.T) {
	p := boot(t, "generic", []uint8{0x4c, 0x00, 0x80})
	err := p.Bus().Write8(0x8000, 0x01)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, errors.Is(err, memory.FaultError), true)

	v, err := p.Bus().Peek(0x8000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0x4c))
}

func TestFormatErrors(t *testing.T) {
	for id, rom := range map[string][]uint8{
		"generic":   {},
		"atari2600": make([]uint8, 3000),
		"nes":       []uint8("not an iNES image"),
		"snes":      make([]uint8, 100),
		"ps1":       {},
		"ps2":       make([]uint8, 3),
		"ps3":       {},
	} {
		p, err := platform.Create(id, nil)
		test.DemandSuccess(t, err, id)
		err = p.Load(rom)
		test.ExpectFailure(t, err, id)
		test.ExpectEquality(t, errors.Is(err, cartridge.FormatError), true, id)
		test.ExpectEquality(t, p.Loaded(), false, id)
	}
}

func TestInputPorts(t *testing.T) {
	p := boot(t, "generic", []uint8{0x4c, 0x00, 0x80})
	test.ExpectFailure(t, p.SetInput(0, input.Snapshot{}))

	p = boot(t, "nes", nesImage(nil, 0x8000))
	test.ExpectSuccess(t, p.SetInput(0, input.Snapshot{}))
	test.ExpectSuccess(t, p.SetInput(1, input.Snapshot{}))
	test.ExpectFailure(t, p.SetInput(2, input.Snapshot{}))
}

// the same program from the same state must reach the same state.
func TestSnapshotDeterminism(t *testing.T) {
	images := map[string][]uint8{
		"generic":   {0xee, 0x00, 0x02, 0x4c, 0x00, 0x80},
		"atari2600": atariImage(0xe6, 0x80, 0x85, 0x02, 0x4c, 0x00, 0xf0),
		"nes":       nesImage([]uint8{0xe6, 0x10, 0x4c, 0x00, 0x80}, 0x8000),
		"snes":      snesImage(0xee, 0x00, 0x00, 0x4c, 0x00, 0x80),
		"ps1":       make([]uint8, 4),
		"ps2":       make([]uint8, 4),
		"ps3":       {0x38, 0x63, 0x00, 0x01, 0x4b, 0xff, 0xff, 0xfc},
	}

	for id, rom := range images {
		a := boot(t, id, rom)
		run(a, 5000)

		enc := &savestate.Encoder{}
		a.SaveState(enc)

		b := boot(t, id, rom)
		dec, err := savestate.NewDecoder(enc.Data())
		test.DemandSuccess(t, err, id)
		test.DemandSuccess(t, b.RestoreState(dec), id)

		run(a, 5000)
		run(b, 5000)

		test.ExpectEquality(t, a.Cycles(), b.Cycles(), id)
		test.ExpectEquality(t, a.Instructions(), b.Instructions(), id)
		test.ExpectEquality(t, a.CPU().PC(), b.CPU().PC(), id)
		test.ExpectEquality(t, a.Frame(), b.Frame(), id)

		ea := &savestate.Encoder{}
		a.SaveState(ea)
		eb := &savestate.Encoder{}
		b.SaveState(eb)
		test.ExpectEquality(t, string(ea.Data()), string(eb.Data()), id)
	}
}

func TestSnapshotWrongPlatform(t *testing.T) {
	a := boot(t, "generic", []uint8{0x4c, 0x00, 0x80})
	enc := &savestate.Encoder{}
	a.SaveState(enc)

	b := boot(t, "nes", nesImage(nil, 0x8000))
	dec, err := savestate.NewDecoder(enc.Data())
	test.DemandSuccess(t, err)
	err = b.RestoreState(dec)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, errors.Is(err, savestate.CorruptError), true)
}

func TestAtariWSYNC(t *testing.T) {
	// STA WSYNC; JMP $F000
	p := boot(t, "atari2600", atariImage(0x85, 0x02, 0x4c, 0x00, 0xf0))

	for i := 0; i < 10; i++ {
		_, err := p.Step()
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, p.Cycles()%76, uint64(0))
		_, err = p.Step()
		test.DemandSuccess(t, err)
	}
}

func TestNESVBlankNMI(t *testing.T) {
	prg := make([]uint8, 0x20)
	// LDA #$80; STA $2000; JMP $8005
	copy(prg, []uint8{0xa9, 0x80, 0x8d, 0x00, 0x20, 0x4c, 0x05, 0x80})
	// INC $10; RTI
	copy(prg[0x10:], []uint8{0xe6, 0x10, 0x40})

	p := boot(t, "nes", nesImage(prg, 0x8010))
	runFrames(p, 3)
	test.ExpectEquality(t, p.Frame(), 3)

	v, err := p.Bus().Peek(0x0010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v >= 2, true)
}

func TestSNESAPUHandshake(t *testing.T) {
	// LDA $2140; STA $0000; JMP $8006
	p := boot(t, "snes", snesImage(0xad, 0x40, 0x21, 0x8d, 0x00, 0x00, 0x4c, 0x06, 0x80))
	run(p, 3)

	v, err := p.Bus().Peek(0x7e0000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xaa))

	// the low 8K of WRAM is mirrored in bank 0x80
	v, err = p.Bus().Peek(0x800000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint8(0xaa))
}

func TestPS1Executable(t *testing.T) {
	p := boot(t, "ps1", psxImage(
		0x24021234, // addiu v0, zero, 0x1234
		0x08004001, // j 0x80010004
		0x00000000, // nop
	))
	run(p, 20)

	v, ok := p.CPU().Register("v0")
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(0x1234))

	pc := p.CPU().PC()
	test.ExpectEquality(t, pc >= 0x80010004 && pc <= 0x8001000c, true)

	// the executable is copied again on reset
	test.DemandSuccess(t, p.Reset())
	run(p, 20)
	v, _ = p.CPU().Register("v0")
	test.ExpectEquality(t, v, uint32(0x1234))
}

func TestPS1GPUFill(t *testing.T) {
	p := boot(t, "ps1", make([]uint8, 4))
	sink := &frameSink{}
	p.SetVideoSink(sink)

	const gp0 = 0x1f801810
	const gp1 = 0x1f801814

	test.DemandSuccess(t, p.Bus().Write(gp1, 4, 0x03000000))
	test.DemandSuccess(t, p.Bus().Write(gp0, 4, 0x020000ff))
	test.DemandSuccess(t, p.Bus().Write(gp0, 4, 0x00000000))
	test.DemandSuccess(t, p.Bus().Write(gp0, 4, 0x00100010))

	stat, err := p.Bus().Read(gp1, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, stat&(1<<23), uint32(0))

	runFrames(p, 1)
	test.DemandEquality(t, len(sink.frames), 1)

	f := sink.frames[0]
	test.ExpectEquality(t, f.Width, 320)
	test.ExpectEquality(t, f.Pixel(0, 0), video.RGB(0xff, 0, 0))
	test.ExpectEquality(t, f.Pixel(15, 15), video.RGB(0xff, 0, 0))
	test.ExpectEquality(t, f.Pixel(16, 16), video.RGB(0, 0, 0))
}

func TestPS3RawImage(t *testing.T) {
	// li r3, 42; b .
	p := boot(t, "ps3", []uint8{0x38, 0x60, 0x00, 0x2a, 0x48, 0x00, 0x00, 0x00})
	run(p, 10)

	v, ok := p.CPU().Register("r3")
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, v, uint32(42))
	test.ExpectEquality(t, p.CPU().PC(), uint32(0x104))
}
