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

// Package audio implements the sample generator used by every platform.
//
// The Generator is ticked once per output sample. On each tick it mixes the
// platform's voices into one interleaved frame of signed 16-bit samples. When
// the buffer is full it is handed to the Sink and a new buffer is started.
//
// Voices are simple square wave models. Each platform converts the values
// written to its sound registers into a frequency, a volume and a duty cycle.
package audio
