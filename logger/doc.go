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

// Package logger is the central log for the application. Log entries are
// made with the Log() and Logf() functions and have a tag and a detail
// string. Tags are short lowercase words identifying the package or
// component making the entry.
//
// Consecutive identical entries are collapsed into a single entry with a
// repeat count. Only the most recent 256 entries are kept.
//
// Each logging request must be accompanied by a Permission. The Allow value
// can be used when an entry should always be made.
package logger
