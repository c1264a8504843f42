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

package emulation

import (
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/logger"
)

// Cheat is a value written to an address at every frame boundary.
type Cheat struct {
	Address uint32
	Value   uint8
}

// AddCheat adds a cheat. A cheat for an address that already has one
// replaces the earlier cheat. The address must be inside the address space
// of the platform.
func (emu *Emulator) AddCheat(address uint32, value uint8) error {
	return emu.Checkpoint(func(p *platform.Platform) error {
		if _, err := p.Bus().Peek(address); err != nil {
			return curated.Errorf("emulation: cheat: %v", err)
		}
		for i := range emu.cheats {
			if emu.cheats[i].Address == address {
				emu.cheats[i].Value = value
				return nil
			}
		}
		emu.cheats = append(emu.cheats, Cheat{Address: address, Value: value})
		return nil
	})
}

// RemoveCheat removes the cheat for the address. Returns false if there is
// no such cheat.
func (emu *Emulator) RemoveCheat(address uint32) bool {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	for i := range emu.cheats {
		if emu.cheats[i].Address == address {
			emu.cheats = append(emu.cheats[:i], emu.cheats[i+1:]...)
			return true
		}
	}
	return false
}

// Cheats returns a copy of the current cheats in the order they were added.
func (emu *Emulator) Cheats() []Cheat {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	return append([]Cheat(nil), emu.cheats...)
}

// applyCheats pokes every cheat into memory. The bus observer is not
// notified because the writes are not made by an instruction. A failed write
// is logged and the cheat is kept.
func (emu *Emulator) applyCheats() {
	for _, c := range emu.cheats {
		if err := emu.plat.Bus().Poke(c.Address, c.Value); err != nil {
			logger.Logf(emu, "emulation", "cheat: %v", err)
		}
	}
}
