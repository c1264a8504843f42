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

// Package statsview is built fully only when the statsview build tag is
// present. Without the tag Available() returns false and Launch() does
// nothing.
//
// When built it runs a local HTTP server showing runtime statistics of the
// emulator process. The statistics are at:
//
//	localhost:12600/debug/statsview
//
// and the standard pprof endpoints at:
//
//	localhost:12600/debug/pprof/
package statsview
