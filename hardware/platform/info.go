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

package platform

import (
	"fmt"
	"strings"
)

// Info describes a platform.
type Info struct {
	ID      string
	Name    string
	Version string
	CPU     string

	// size of the main RAM in bytes
	MemorySize int

	// native video resolution
	Width  int
	Height int

	// frames per second of the native video signal
	Refresh float64

	// the number of sound voices of the hardware
	AudioChannels int

	// file extensions of the images accepted by Load()
	Formats []string

	// alternative names accepted by Lookup()
	Aliases []string
}

func (inf Info) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%-10s %s (%s)", inf.ID, inf.Name, inf.CPU))
	s.WriteString(fmt.Sprintf(" %s RAM, %dx%d @ %.2fHz, %d voices", memorySize(inf.MemorySize), inf.Width, inf.Height, inf.Refresh, inf.AudioChannels))
	if len(inf.Formats) > 0 {
		s.WriteString(fmt.Sprintf(" [%s]", strings.Join(inf.Formats, ", ")))
	}
	return s.String()
}

func memorySize(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
