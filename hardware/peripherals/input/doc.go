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

// Package input implements the controller ports of the supported platforms.
//
// The host supplies a Snapshot of a controller once per step. How the
// snapshot is presented to the CPU depends on the port. A ShiftPort is read
// one bit at a time after a strobe, as on the NES and SNES. A ParallelPort
// presents every button at once as the bits of a register, as on the Atari
// 2600 and PlayStation.
package input
