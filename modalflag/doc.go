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

// Package modalflag handles command lines that are divided into modes. Each
// mode has its own set of flags and may be followed by a sub-mode with its
// own flags. For example:
//
//	emulite -log RUN -speed 2 -frames 600 game.nes
//
// Flags are parsed with the flag package of the standard library. A mode is
// parsed with a call to Parse() after the flags for the mode have been
// added. NewMode() starts the next mode.
package modalflag
