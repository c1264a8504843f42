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

// Package cartridge interprets ROM images and creates the memory devices
// that present them on a bus.
//
// Each platform asks for the format it supports. There is no sniffing of the
// image to decide which platform it is for. An image that cannot be
// interpreted results in an error wrapping FormatError and nothing is
// installed.
//
// Supported formats:
//
//	Atari 2600    2K, 4K, F8, F6 and F4 bank switching, chosen by size
//	NES           iNES header with mapper 0 (NROM) or mapper 2 (UxROM)
//	SNES          LoROM, with or without a 512 byte copier header
//	PlayStation   raw BIOS image or PS-X EXE executable
//	PlayStation 2 raw BIOS image
//	PlayStation 3 big-endian PowerPC ELF or raw image
package cartridge
