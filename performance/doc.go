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

// Package performance runs a platform for a fixed duration and reports the
// number of frames per second achieved.
//
// Check() runs the emulation as fast as possible and prints the frame rate
// along with a histogram of the time taken by each frame. RunProfiler() can
// wrap any function to produce CPU, memory and execution trace profiles.
//
// CalcFPS() calculates frames-per-second in aggregate along with an accuracy
// value compared to the refresh rate of the platform.
package performance
