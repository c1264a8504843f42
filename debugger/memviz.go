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

package debugger

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/emulite/emulite/hardware/platform"
)

// haltStructures is the value drawn by DumpMemviz().
type haltStructures struct {
	State       string
	Breakpoints []Breakpoint
	Watchpoints []Watchpoint
	Hits        []Hit
	Trace       []TraceEntry
}

// the number of trace entries included by DumpMemviz().
const memvizTrace = 16

// DumpMemviz writes a graphviz description of the breakpoints, watchpoints,
// recent watchpoint hits and the most recent entries of the execution trace.
func (dbg *Debugger) DumpMemviz(w io.Writer) error {
	var hs haltStructures
	err := dbg.attached("dump structures", func(_ *platform.Platform) error {
		hs = haltStructures{
			State:       dbg.State().String(),
			Breakpoints: dbg.brk.list(),
			Watchpoints: dbg.wtc.list(),
			Hits:        dbg.wtc.hits.Slice(),
		}
		t := dbg.trace.Entries()
		if len(t) > memvizTrace {
			t = t[len(t)-memvizTrace:]
		}
		hs.Trace = t
		return nil
	})
	if err != nil {
		return err
	}
	memviz.Map(w, &hs)
	return nil
}
