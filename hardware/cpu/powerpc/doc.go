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

// Package powerpc implements the 32 bit integer instruction set of the
// PowerPC architecture. Floating point, vector and 64 bit instructions are
// not implemented and take the program exception.
//
// Memory is big endian and the CPU reads and writes through a 32 bit bus.
// There is no address translation. The IR and DR bits of the MSR are kept but
// have no effect.
//
// Exceptions are taken as the architecture describes. The address to return
// to is saved in SRR0 and the MSR in SRR1. The exception vectors are in low
// memory unless MSR[IP] is set, in which case they are offset by 0xfff00000.
package powerpc
