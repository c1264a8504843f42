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
	"github.com/emulite/emulite/savestate"
)

// CD-ROM interrupt types.
const (
	cdINT2 = 2
	cdINT3 = 3
	cdINT5 = 5
)

// drive status with the lid open and no disc.
const cdNoDisc = 0x10

type cdResponse struct {
	irq  uint8
	data []uint8
}

// psCDROM is the CD-ROM controller with no disc inserted. Commands are
// answered so that a program can detect that there is no disc.
type psCDROM struct {
	intc *psINTC

	index    uint8
	params   []uint8
	response []uint8
	enable   uint8
	flag     uint8

	// responses waiting for the current interrupt to be acknowledged
	pending []cdResponse
}

func newPSCDROM(intc *psINTC) *psCDROM {
	return &psCDROM{intc: intc}
}

func (cd *psCDROM) reset() {
	cd.index = 0
	cd.params = cd.params[:0]
	cd.response = cd.response[:0]
	cd.enable = 0
	cd.flag = 0
	cd.pending = cd.pending[:0]
}

func (cd *psCDROM) command(cmd uint8) {
	ok := cdResponse{irq: cdINT3, data: []uint8{cdNoDisc}}
	noDisc := cdResponse{irq: cdINT5, data: []uint8{cdNoDisc | 0x01, 0x80}}

	switch cmd {
	case 0x01, 0x02, 0x0e:
		// Getstat, Setloc, Setmode
		cd.respond(ok)
	case 0x0a:
		// Init
		cd.respond(ok, cdResponse{irq: cdINT2, data: []uint8{cdNoDisc}})
	case 0x19:
		// Test. only the version query is answered
		if len(cd.params) > 0 && cd.params[0] == 0x20 {
			cd.respond(cdResponse{irq: cdINT3, data: []uint8{0x94, 0x09, 0x19, 0xc0}})
		} else {
			cd.respond(cdResponse{irq: cdINT5, data: []uint8{cdNoDisc | 0x01, 0x10}})
		}
	case 0x1a:
		// GetID
		cd.respond(ok, cdResponse{irq: cdINT5, data: []uint8{0x08, 0x40, 0, 0, 0, 0, 0, 0}})
	case 0x06, 0x1b, 0x15, 0x16, 0x03:
		// ReadN, ReadS, SeekL, SeekP, Play
		cd.respond(noDisc)
	default:
		cd.respond(cdResponse{irq: cdINT5, data: []uint8{cdNoDisc | 0x01, 0x40}})
	}

	cd.params = cd.params[:0]
}

func (cd *psCDROM) respond(r ...cdResponse) {
	cd.pending = append(cd.pending, r...)
	if cd.flag == 0 {
		cd.deliver()
	}
}

func (cd *psCDROM) deliver() {
	if len(cd.pending) == 0 {
		return
	}
	r := cd.pending[0]
	cd.pending = cd.pending[1:]
	cd.response = append(cd.response[:0], r.data...)
	cd.flag = r.irq
	if cd.enable&cd.flag != 0 {
		cd.intc.raise(psIntCDROM)
	}
}

// ReadRegister implements the memory.RegisterHandler interface.
func (cd *psCDROM) ReadRegister(reg uint32) uint8 {
	if reg == 1 {
		if len(cd.response) == 0 {
			return 0
		}
		v := cd.response[0]
		cd.response = cd.response[1:]
		return v
	}
	return cd.PeekRegister(reg)
}

// PeekRegister implements the memory.RegisterHandler interface.
func (cd *psCDROM) PeekRegister(reg uint32) uint8 {
	switch reg {
	case 0:
		v := cd.index | 0x18
		if len(cd.params) > 0 {
			v &^= 0x08
		}
		if len(cd.params) >= 16 {
			v &^= 0x10
		}
		if len(cd.response) > 0 {
			v |= 0x20
		}
		return v
	case 1:
		if len(cd.response) == 0 {
			return 0
		}
		return cd.response[0]
	case 3:
		if cd.index&0x01 == 0 {
			return cd.enable | 0xe0
		}
		return cd.flag | 0xe0
	}
	return 0
}

// WriteRegister implements the memory.RegisterHandler interface.
func (cd *psCDROM) WriteRegister(reg uint32, data uint8) {
	switch reg {
	case 0:
		cd.index = data & 0x03
	case 1:
		if cd.index == 0 {
			cd.command(data)
		}
	case 2:
		switch cd.index {
		case 0:
			if len(cd.params) < 16 {
				cd.params = append(cd.params, data)
			}
		case 1:
			cd.enable = data & 0x1f
		}
	case 3:
		if cd.index == 1 {
			cd.flag &^= data & 0x1f
			if data&0x40 == 0x40 {
				cd.params = cd.params[:0]
			}
			if cd.flag == 0 {
				cd.deliver()
			}
		}
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (cd *psCDROM) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(cd.index))
	enc.Bytes(2, cd.params)
	enc.Bytes(3, cd.response)
	enc.Uint(4, uint64(cd.enable))
	enc.Uint(5, uint64(cd.flag))
	for _, r := range cd.pending {
		enc.Message(6, func(enc *savestate.Encoder) {
			enc.Uint(1, uint64(r.irq))
			enc.Bytes(2, r.data)
		})
	}
}

// RestoreState implements the savestate.Snapshotter interface.
func (cd *psCDROM) RestoreState(dec *savestate.Decoder) error {
	cd.index = uint8(dec.Uint(1)) & 0x03
	cd.params = dec.Bytes(2)
	cd.response = dec.Bytes(3)
	cd.enable = uint8(dec.Uint(4))
	cd.flag = uint8(dec.Uint(5))
	if len(cd.params) > 16 {
		return curated.Errorf("cdrom: %v: %d parameters in state", savestate.CorruptError, len(cd.params))
	}

	msgs, err := dec.Messages(6)
	if err != nil {
		return err
	}
	cd.pending = cd.pending[:0]
	for _, m := range msgs {
		cd.pending = append(cd.pending, cdResponse{irq: uint8(m.Uint(1)), data: m.Bytes(2)})
	}
	return nil
}
