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

// Package platform composes a CPU, a memory bus and a set of peripherals into
// an emulated machine.
//
// A Platform is created by name through the registry:
//
//	p, err := platform.Create("nes", cfg)
//	if err != nil {
//		// errors.Is(err, platform.UnsupportedError)
//	}
//	err = p.Load(rom)
//	err = p.Reset()
//	cycles, err := p.Step()
//
// Each call to Step() executes exactly one CPU instruction (or takes one
// interrupt). The cycles consumed by the instruction are fed to the clock
// accumulator of every peripheral and each peripheral is ticked once for
// every period of its clock ratio that has completed. Peripherals never call
// into the CPU. They communicate through their registers and the interrupt
// lines, which the CPU samples at the start of its next step.
//
// The supported platforms are atari2600, nes, snes, ps1, ps2, ps3 and
// generic. The generic platform is a flat 6502 test machine.
package platform
