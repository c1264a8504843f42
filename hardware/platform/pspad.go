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
	"github.com/emulite/emulite/hardware/peripherals/input"
	"github.com/emulite/emulite/savestate"
)

// bits of the digital pad response. a pressed button reads as zero
var psPadBits = map[input.Button]uint{
	input.Select: 0,
	input.L3:     1,
	input.R3:     2,
	input.Start:  3,
	input.Up:     4,
	input.Right:  5,
	input.Down:   6,
	input.Left:   7,
	input.L2:     8,
	input.R2:     9,
	input.L1:     10,
	input.R1:     11,
	input.Y:      12, // triangle
	input.B:      13, // circle
	input.A:      14, // cross
	input.X:      15, // square
}

// SIO0 registers.
const (
	sioData = 0x0
	sioStat = 0x4
	sioMode = 0x8
	sioCtrl = 0xa
	sioBaud = 0xe
)

// psPads is the controller half of the serial port at 0x1F801040. Both
// ports have a digital pad connected. Memory cards are not present and do
// not answer.
type psPads struct {
	intc  *psINTC
	ports [2]*input.ParallelPort

	mode uint16
	ctrl uint16
	baud uint16

	// position in the current exchange
	step int

	rx      uint8
	rxFull  bool
	irq     bool
	latched uint32
}

func newPSPads(intc *psINTC) *psPads {
	return &psPads{
		intc: intc,
		ports: [2]*input.ParallelPort{
			input.NewParallelPort(psPadBits, true),
			input.NewParallelPort(psPadBits, true),
		},
	}
}

func (sio *psPads) set(port int, s input.Snapshot) error {
	if port < 0 || port >= len(sio.ports) {
		return curated.Errorf("playstation: no input port %d", port)
	}
	sio.ports[port].Set(s)
	return nil
}

func (sio *psPads) reset() {
	sio.mode = 0
	sio.ctrl = 0
	sio.baud = 0
	sio.step = 0
	sio.rx = 0
	sio.rxFull = false
	sio.irq = false
}

// exchange sends a byte to the selected controller and receives the reply.
// Returns true if the controller acknowledges, meaning that it expects
// another byte.
func (sio *psPads) exchange(tx uint8) (uint8, bool) {
	if sio.ctrl&0x02 == 0 {
		return 0xff, false
	}

	port := 0
	if sio.ctrl&0x2000 == 0x2000 {
		port = 1
	}

	switch sio.step {
	case 0:
		if tx != 0x01 {
			return 0xff, false
		}
		sio.step++
		return 0xff, true
	case 1:
		if tx != 0x42 {
			sio.step = 0
			return 0xff, false
		}
		sio.latched = sio.ports[port].Read()
		sio.step++
		return 0x41, true
	case 2:
		sio.step++
		return 0x5a, true
	case 3:
		sio.step++
		return uint8(sio.latched), true
	}
	sio.step = 0
	return uint8(sio.latched >> 8), false
}

// ReadRegister implements the memory.RegisterHandler interface.
func (sio *psPads) ReadRegister(reg uint32) uint8 {
	if reg == sioData {
		v := sio.PeekRegister(reg)
		sio.rxFull = false
		return v
	}
	return sio.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (sio *psPads) PeekRegister(reg uint32) uint8 {
	switch reg {
	case sioData:
		if !sio.rxFull {
			return 0xff
		}
		return sio.rx
	case sioStat:
		v := uint8(0x05)
		if sio.rxFull {
			v |= 0x02
		}
		return v
	case sioStat + 1:
		if sio.irq {
			return 0x02
		}
		return 0
	case sioMode:
		return uint8(sio.mode)
	case sioMode + 1:
		return uint8(sio.mode >> 8)
	case sioCtrl:
		return uint8(sio.ctrl)
	case sioCtrl + 1:
		return uint8(sio.ctrl >> 8)
	case sioBaud:
		return uint8(sio.baud)
	case sioBaud + 1:
		return uint8(sio.baud >> 8)
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (sio *psPads) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case sioData:
		rx, ack := sio.exchange(data)
		sio.rx = rx
		sio.rxFull = true
		if ack && sio.ctrl&0x1000 == 0x1000 {
			sio.irq = true
			sio.intc.raise(psIntPad)
		}
	case sioMode:
		sio.mode = sio.mode&0xff00 | uint16(data)
	case sioMode + 1:
		sio.mode = sio.mode&0x00ff | uint16(data)<<8
	case sioCtrl:
		sio.ctrl = sio.ctrl&0xff00 | uint16(data)
		if data&0x10 == 0x10 {
			sio.irq = false
		}
		if data&0x40 == 0x40 {
			sio.reset()
		}
		if sio.ctrl&0x02 == 0 {
			sio.step = 0
		}
	case sioCtrl + 1:
		sio.ctrl = sio.ctrl&0x00ff | uint16(data)<<8
	case sioBaud:
		sio.baud = sio.baud&0xff00 | uint16(data)
	case sioBaud + 1:
		sio.baud = sio.baud&0x00ff | uint16(data)<<8
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (sio *psPads) SaveState(enc *savestate.Encoder) {
	enc.Uints(1, []uint64{uint64(sio.mode), uint64(sio.ctrl), uint64(sio.baud), uint64(sio.step), uint64(sio.latched)})
	enc.Uint(2, uint64(sio.rx))
	enc.Bool(3, sio.rxFull)
	enc.Bool(4, sio.irq)
	enc.Snapshot(5, sio.ports[0])
	enc.Snapshot(6, sio.ports[1])
}

// RestoreState implements the savestate.Snapshotter interface.
func (sio *psPads) RestoreState(dec *savestate.Decoder) error {
	u := dec.Uints(1)
	if len(u) != 5 || u[3] > 4 {
		return curated.Errorf("playstation: %v: serial port state", savestate.CorruptError)
	}
	sio.mode, sio.ctrl, sio.baud = uint16(u[0]), uint16(u[1]), uint16(u[2])
	sio.step = int(u[3])
	sio.latched = uint32(u[4])
	sio.rx = uint8(dec.Uint(2))
	sio.rxFull = dec.Bool(3)
	sio.irq = dec.Bool(4)
	if err := dec.Restore(5, sio.ports[0]); err != nil {
		return err
	}
	return dec.Restore(6, sio.ports[1])
}
