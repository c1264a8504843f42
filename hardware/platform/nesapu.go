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
	"github.com/emulite/emulite/hardware/clocks"
	"github.com/emulite/emulite/hardware/interrupt"
	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/savestate"
)

// interrupt sources of the NES.
const (
	nesFrameIRQ interrupt.Source = iota
)

// the APU frame sequencer runs at approximately 240Hz.
var nesFrameRatio = clocks.Ratio{Cycles: 7457, Per: 1}

// APU register offsets from 0x4000.
const (
	apuPulse1    = 0x00
	apuPulse2    = 0x04
	apuTriangle  = 0x08
	apuNoise     = 0x0c
	apuDMC       = 0x10
	apuOAMDMA    = 0x14
	apuStatus    = 0x15
	apuJoy1      = 0x16
	apuJoy2Frame = 0x17
)

var nesLengths = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

var nesNoisePeriods = [16]int{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var nesDMCRates = [16]int{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

var nesDuty = [4]float64{0.125, 0.25, 0.5, 0.75}

// nesAPU is the audio processing unit of the RP2A03 along with the other
// registers in the 0x4000 page: the OAM DMA and the controller ports.
//
// Each channel is rendered by a square wave voice. The frame sequencer
// clocks the length counters and raises the frame interrupt.
type nesAPU struct {
	p    *Platform
	ppu  *nesPPU
	pads [2]*input.ShiftPort

	regs    [0x18]uint8
	lengths [4]uint8
	step    int

	pulse1   audio.Voice
	pulse2   audio.Voice
	triangle audio.Voice
	noise    audio.Voice
	dmc      audio.Voice
}

func newNESAPU(p *Platform, ppu *nesPPU, pads [2]*input.ShiftPort) *nesAPU {
	return &nesAPU{
		p:    p,
		ppu:  ppu,
		pads: pads,
	}
}

func (apu *nesAPU) voices() []*audio.Voice {
	return []*audio.Voice{&apu.pulse1, &apu.pulse2, &apu.triangle, &apu.noise, &apu.dmc}
}

// Label implements the peripherals.Stepper interface.
func (apu *nesAPU) Label() string {
	return "APU"
}

// Ratio implements the peripherals.Stepper interface.
func (apu *nesAPU) Ratio() clocks.Ratio {
	return nesFrameRatio
}

// Reset implements the peripherals.Stepper interface.
func (apu *nesAPU) Reset() {
	apu.regs = [0x18]uint8{}
	apu.lengths = [4]uint8{}
	apu.step = 0
	for _, v := range apu.voices() {
		v.Silence()
	}
	apu.p.lines.LowerIRQ(nesFrameIRQ)
}

// Tick implements the peripherals.Stepper interface. Each tick is one step
// of the frame sequencer.
func (apu *nesAPU) Tick() error {
	five := apu.regs[apuJoy2Frame]&0x80 == 0x80

	steps := 4
	if five {
		steps = 5
	}

	// length counters are clocked on every other step
	if apu.step == 1 || apu.step == steps-1 {
		apu.clockLengths()
	}

	if !five && apu.step == 3 && apu.regs[apuJoy2Frame]&0x40 == 0 {
		apu.p.lines.RaiseIRQ(nesFrameIRQ)
	}

	apu.step = (apu.step + 1) % steps
	apu.update()

	return nil
}

// halt flags for each channel with a length counter.
func (apu *nesAPU) halted(ch int) bool {
	switch ch {
	case 0:
		return apu.regs[apuPulse1]&0x20 == 0x20
	case 1:
		return apu.regs[apuPulse2]&0x20 == 0x20
	case 2:
		return apu.regs[apuTriangle]&0x80 == 0x80
	}
	return apu.regs[apuNoise]&0x20 == 0x20
}

func (apu *nesAPU) clockLengths() {
	for ch := range apu.lengths {
		if apu.lengths[ch] > 0 && !apu.halted(ch) {
			apu.lengths[ch]--
		}
	}
}

func (apu *nesAPU) timer(base int) int {
	return int(apu.regs[base+2]) | int(apu.regs[base+3]&0x07)<<8
}

// update the voices from the register values.
func (apu *nesAPU) update() {
	clock := float64(nesClock)

	pulse := func(v *audio.Voice, base int, ch int) {
		t := apu.timer(base)
		v.Enabled = apu.lengths[ch] > 0 && t >= 8
		v.Frequency = clock / float64(16*(t+1))
		v.Volume = float64(apu.regs[base]&0x0f) / 15
		v.Duty = nesDuty[apu.regs[base]>>6]
	}
	pulse(&apu.pulse1, apuPulse1, 0)
	pulse(&apu.pulse2, apuPulse2, 1)

	t := apu.timer(apuTriangle)
	apu.triangle.Enabled = apu.lengths[2] > 0 && apu.regs[apuTriangle]&0x7f != 0 && t >= 2
	apu.triangle.Frequency = clock / float64(32*(t+1))
	apu.triangle.Volume = 1
	apu.triangle.Duty = 0.5

	apu.noise.Enabled = apu.lengths[3] > 0
	apu.noise.Frequency = clock / float64(nesNoisePeriods[apu.regs[apuNoise+2]&0x0f]*2)
	apu.noise.Volume = float64(apu.regs[apuNoise]&0x0f) / 15
	apu.noise.Duty = 0.5

	// the DMC is approximated by a tone at the sample rate with the level of
	// the direct load register
	apu.dmc.Enabled = apu.regs[apuStatus]&0x10 == 0x10
	apu.dmc.Frequency = clock / float64(nesDMCRates[apu.regs[apuDMC]&0x0f]) / 8
	apu.dmc.Volume = float64(apu.regs[apuDMC+1]&0x7f) / 127
	apu.dmc.Duty = 0.5
}

// ReadRegister implements the memory.RegisterHandler interface.
func (apu *nesAPU) ReadRegister(reg uint32) uint8 {
	switch reg {
	case apuStatus:
		v := apu.PeekRegister(reg)
		apu.p.lines.LowerIRQ(nesFrameIRQ)
		return v
	case apuJoy1:
		return apu.pads[0].Read() | 0x40
	case apuJoy2Frame:
		return apu.pads[1].Read() | 0x40
	}
	return 0
}

// PeekRegister implements the memory.RegisterHandler interface.
func (apu *nesAPU) PeekRegister(reg uint32) uint8 {
	switch reg {
	case apuStatus:
		var v uint8
		for ch, l := range apu.lengths {
			if l > 0 {
				v |= 1 << ch
			}
		}
		if apu.p.lines.IRQSource(nesFrameIRQ) {
			v |= 0x40
		}
		return v
	case apuJoy1:
		return apu.pads[0].Peek() | 0x40
	case apuJoy2Frame:
		return apu.pads[1].Peek() | 0x40
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (apu *nesAPU) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case apuOAMDMA:
		apu.dma(data)
		return
	case apuJoy1:
		apu.pads[0].Strobe(data&0x01 == 0x01)
		apu.pads[1].Strobe(data&0x01 == 0x01)
		return
	}

	apu.regs[reg] = data

	switch reg {
	case apuPulse1 + 3, apuPulse2 + 3, apuTriangle + 3, apuNoise + 3:
		ch := int(reg) / 4
		if apu.regs[apuStatus]&(1<<ch) != 0 {
			apu.lengths[ch] = nesLengths[data>>3]
		}
	case apuStatus:
		for ch := range apu.lengths {
			if data&(1<<ch) == 0 {
				apu.lengths[ch] = 0
			}
		}
	case apuJoy2Frame:
		apu.step = 0
		if data&0x40 == 0x40 {
			apu.p.lines.LowerIRQ(nesFrameIRQ)
		}
		if data&0x80 == 0x80 {
			apu.clockLengths()
		}
	}

	apu.update()
}

// dma copies a page of CPU memory to OAM. The CPU is suspended for the
// duration of the transfer.
func (apu *nesAPU) dma(page uint8) {
	data := make([]uint8, 256)
	base := uint32(page) << 8
	for i := range data {
		data[i], _ = apu.p.bus.Read8(base + uint32(i))
	}
	apu.ppu.oamDMA(data)
	apu.p.Stall(513)
}

// SaveState implements the savestate.Snapshotter interface.
func (apu *nesAPU) SaveState(enc *savestate.Encoder) {
	enc.Bytes(1, apu.regs[:])
	enc.Bytes(2, apu.lengths[:])
	enc.Int(3, int64(apu.step))
}

// RestoreState implements the savestate.Snapshotter interface. The voices
// are derived from the restored registers.
func (apu *nesAPU) RestoreState(dec *savestate.Decoder) error {
	if err := dec.CopyBytes(1, apu.regs[:]); err != nil {
		return err
	}
	if err := dec.CopyBytes(2, apu.lengths[:]); err != nil {
		return err
	}
	apu.step = int(dec.Int(3))
	if apu.step < 0 || apu.step > 4 {
		return curated.Errorf("apu: %v: frame step %d", savestate.CorruptError, apu.step)
	}
	apu.update()
	return nil
}
