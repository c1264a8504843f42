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
	"fmt"
	"io"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/cpu"
	"github.com/emulite/emulite/ring"
)

// TraceEntry is a single executed instruction.
type TraceEntry struct {
	Address  uint32
	Mnemonic string
	Operand  string
	Bytes    int
	Cycles   int

	// the name of the interrupt taken instead of an instruction
	Interrupt string
}

func (e TraceEntry) String() string {
	s := fmt.Sprintf("%08x %s", e.Address, e.Mnemonic)
	if e.Operand != "" {
		s = fmt.Sprintf("%s %s", s, e.Operand)
	}
	return fmt.Sprintf("%-32s [%d]", s, e.Cycles)
}

// ExecutionTrace is a fixed capacity record of the most recent instructions.
// When full the oldest entry is forgotten.
type ExecutionTrace struct {
	entries *ring.Buffer[TraceEntry]
}

func newExecutionTrace(capacity int) *ExecutionTrace {
	return &ExecutionTrace{
		entries: ring.New[TraceEntry](capacity),
	}
}

func (tr *ExecutionTrace) record(r cpu.Result) {
	tr.entries.Push(TraceEntry{
		Address:   r.Address,
		Mnemonic:  r.Mnemonic,
		Operand:   r.Operand,
		Bytes:     r.Bytes,
		Cycles:    r.Cycles,
		Interrupt: r.Interrupt,
	})
}

// Cap returns the number of entries the trace can hold.
func (tr *ExecutionTrace) Cap() int {
	return tr.entries.Cap()
}

// Len returns the number of entries in the trace.
func (tr *ExecutionTrace) Len() int {
	return tr.entries.Len()
}

// Entries returns a copy of the trace, oldest entry first.
func (tr *ExecutionTrace) Entries() []TraceEntry {
	return tr.entries.Slice()
}

// Newest returns the most recent entry. Returns false if the trace is empty.
func (tr *ExecutionTrace) Newest() (TraceEntry, bool) {
	return tr.entries.Newest()
}

func (tr *ExecutionTrace) clear() {
	tr.entries.Clear()
}

// export writes the trace as text, one instruction per line.
func (tr *ExecutionTrace) export(w io.Writer) error {
	var err error
	tr.entries.Do(func(e TraceEntry) bool {
		_, err = fmt.Fprintln(w, e.String())
		return err == nil
	})
	if err != nil {
		return curated.Errorf("debugger: trace: %v", err)
	}
	return nil
}
