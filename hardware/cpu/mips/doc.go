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

// Package mips implements an R3000A style MIPS I integer core.
//
// Branches and jumps have a delay slot. The instruction following a branch is
// always executed before the branch target. Loads complete immediately so
// there is no load delay slot.
//
// Virtual addresses in kuseg, kseg0 and kseg1 are translated to physical
// addresses by masking off the top three bits. kseg2 addresses are put on the
// bus unchanged. There is no TLB.
//
// Exceptions are handled by coprocessor 0 as the R3000A does it. The
// interrupt enable and kernel mode bits in SR are pushed on exception entry
// and popped by RFE. The vector is 0x80000080, or 0xbfc00180 when the BEV bit
// is set.
//
// The data bus is 32 bits wide and the byte order is decided by the bus. The
// partial word loads and stores (LWL, LWR, SWL, SWR) take the byte order into
// account.
package mips
