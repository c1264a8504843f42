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

package debugger_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/debugger"
	"github.com/emulite/emulite/emulation"
	"github.com/emulite/emulite/hardware/memory"
	"github.com/emulite/emulite/test"
)

// LDA #$01; STA $0200; JMP $8005
var storeProgram = []uint8{0xa9, 0x01, 0x8d, 0x00, 0x02, 0x4c, 0x05, 0x80}

// LDX #$00; INX; JMP $8002
var countProgram = []uint8{0xa2, 0x00, 0xe8, 0x4c, 0x02, 0x80}

// JSR $8003; JMP $8003
var callProgram = []uint8{0x20, 0x03, 0x80, 0x4c, 0x03, 0x80}

// JMP $8000
var loopProgram = []uint8{0x4c, 0x00, 0x80}

// STA $8000; JMP $8000
var faultProgram = []uint8{0x8d, 0x00, 0x80, 0x4c, 0x00, 0x80}

func newDebugger(t *testing.T, rom []uint8) (*emulation.Emulator, *debugger.Debugger) {
	t.Helper()
	cfg := config.NewConfig()
	test.DemandSuccess(t, cfg.Debug.Enabled.Set(true))
	test.DemandSuccess(t, cfg.Debug.TraceEntries.Set(64))

	emu, err := emulation.NewEmulator(cfg)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, emu.Load("generic", rom))

	dbg := debugger.New(emu)
	test.DemandSuccess(t, dbg.Attach())
	t.Cleanup(func() {
		dbg.Close()
		_ = emu.Stop()
	})
	return emu, dbg
}

func expectEvent(t *testing.T, dbg *debugger.Debugger, kind debugger.EventKind) debugger.Event {
	t.Helper()
	select {
	case ev := <-dbg.Events():
		test.ExpectEquality(t, ev.Kind, kind)
		return ev
	default:
		t.Errorf("no %s event", kind)
	}
	return debugger.Event{}
}

func TestAttach(t *testing.T) {
	emu, err := emulation.NewEmulator(nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, emu.Load("generic", storeProgram))
	defer func() {
		_ = emu.Stop()
	}()

	dbg := debugger.New(emu)
	defer dbg.Close()
	test.ExpectEquality(t, dbg.State(), debugger.Detached)

	// debugging is disabled in the default configuration
	err = dbg.Attach()
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)
	test.ExpectEquality(t, dbg.State(), debugger.Detached)

	test.DemandSuccess(t, emu.Config().Debug.Enabled.Set(true))
	test.DemandSuccess(t, dbg.Attach())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)

	err = dbg.Attach()
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)

	test.DemandSuccess(t, dbg.Detach())
	test.ExpectEquality(t, dbg.State(), debugger.Detached)
	_, err = dbg.AddBreakpoint(0x8000, "")
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)
}

func TestWriteWatchpoint(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.AddWatchpoint(0x0200, 1, debugger.WatchWrite)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	test.ExpectEquality(t, emu.State(), emulation.Paused)

	tr, err := dbg.Trace()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(tr), 2)
	test.ExpectEquality(t, tr[len(tr)-1].Address, uint32(0x8002))
	test.ExpectEquality(t, tr[len(tr)-1].Mnemonic, "STA")

	pc, err := dbg.PC()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, pc, uint32(0x8005))

	ev := expectEvent(t, dbg, debugger.EventWatchpoint)
	test.ExpectEquality(t, ev.PC, uint32(0x8002))
	test.ExpectEquality(t, len(ev.Hits), 1)

	hits := dbg.Hits()
	test.DemandEquality(t, len(hits), 1)
	test.ExpectEquality(t, hits[0].Address, uint32(0x0200))
	test.ExpectEquality(t, hits[0].Kind, memory.AccessWrite)
	test.ExpectEquality(t, hits[0].Value, uint32(1))
	test.ExpectEquality(t, hits[0].PC, uint32(0x8002))

	w := dbg.Watchpoints()
	test.DemandEquality(t, len(w), 1)
	test.ExpectEquality(t, w[0].Hits, 1)
}

func TestReadWatchpoint(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.AddWatchpoint(0x01fe, 4, debugger.WatchRead)
	test.DemandSuccess(t, err)

	// the program only writes to the watched range
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)
	test.ExpectEquality(t, len(dbg.Hits()), 0)
}

func TestDisabledWatchpoint(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	id, err := dbg.AddWatchpoint(0x0200, 1, debugger.WatchBoth)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, dbg.EnableWatchpoint(id, false))

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)

	test.DemandSuccess(t, dbg.RemoveWatchpoint(id))
	test.ExpectEquality(t, len(dbg.Watchpoints()), 0)
	test.ExpectFailure(t, dbg.RemoveWatchpoint(id))
}

// JSR pushes two bytes. Both writes are recorded but the debugger halts once.
func TestWatchpointMultipleAccesses(t *testing.T) {
	emu, dbg := newDebugger(t, callProgram)

	_, err := dbg.AddWatchpoint(0x01fd, 1, debugger.WatchWrite)
	test.DemandSuccess(t, err)
	_, err = dbg.AddWatchpoint(0x01fc, 1, debugger.WatchWrite)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	test.ExpectEquality(t, dbg.Instructions(), 1)

	ev := expectEvent(t, dbg, debugger.EventWatchpoint)
	test.ExpectEquality(t, ev.PC, uint32(0x8000))
	test.ExpectEquality(t, len(ev.Hits), 2)

	// a single halt
	select {
	case ev := <-dbg.Events():
		t.Errorf("unexpected event: %s", ev)
	default:
	}

	hits := dbg.Hits()
	test.DemandEquality(t, len(hits), 2)
	test.ExpectEquality(t, hits[0].Address, uint32(0x01fd))
	test.ExpectEquality(t, hits[0].Value, uint32(0x80))
	test.ExpectEquality(t, hits[1].Address, uint32(0x01fc))
	test.ExpectEquality(t, hits[1].Value, uint32(0x02))
	for _, h := range hits {
		test.ExpectEquality(t, h.PC, uint32(0x8000))
	}
}

// cheats are applied at the frame boundary and are not instruction accesses.
func TestCheatNotWatched(t *testing.T) {
	emu, dbg := newDebugger(t, loopProgram)

	_, err := dbg.AddWatchpoint(0x0300, 1, debugger.WatchBoth)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, emu.AddCheat(0x0300, 0x42))

	for i := 0; i < 3; i++ {
		test.DemandSuccess(t, emu.RunFrame())
		test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)
	}
	test.ExpectEquality(t, len(dbg.Hits()), 0)

	select {
	case ev := <-dbg.Events():
		t.Errorf("unexpected event: %s", ev)
	default:
	}

	test.DemandSuccess(t, dbg.Pause())
	b, err := dbg.ReadMemory(0x0300, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b[0], uint8(0x42))
}

func TestBreakpoint(t *testing.T) {
	emu, dbg := newDebugger(t, countProgram)

	id, err := dbg.AddBreakpoint(0x8002, "X == 3")
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)

	ev := expectEvent(t, dbg, debugger.EventBreakpoint)
	test.ExpectEquality(t, ev.Breakpoint, id)
	test.ExpectEquality(t, ev.PC, uint32(0x8002))

	x, err := dbg.Register("X")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, x, uint32(3))

	// LDX and three iterations of the loop
	test.ExpectEquality(t, dbg.Instructions(), 7)

	// the breakpoint is not taken again until the X register wraps around
	test.DemandSuccess(t, dbg.ResetCounters())
	test.DemandSuccess(t, dbg.Continue())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	test.ExpectEquality(t, dbg.Instructions(), 512)
	test.ExpectEquality(t, dbg.CyclesCounted(), 256*5)

	b := dbg.Breakpoints()
	test.DemandEquality(t, len(b), 1)
	test.ExpectEquality(t, b[0].Hits, 2)
	test.ExpectEquality(t, b[0].Condition, "X == 3")

	test.DemandSuccess(t, dbg.EnableBreakpoint(id, false))
	test.DemandSuccess(t, dbg.Continue())
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)

	test.DemandSuccess(t, dbg.RemoveBreakpoint(id))
	test.ExpectEquality(t, len(dbg.Breakpoints()), 0)
	test.ExpectFailure(t, dbg.EnableBreakpoint(id, true))
}

func TestBreakpointConditions(t *testing.T) {
	emu, dbg := newDebugger(t, countProgram)

	_, err := dbg.AddBreakpoint(0x8002, "X ==")
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)
	test.ExpectEquality(t, len(dbg.Breakpoints()), 0)

	// the zero flag is set by LDX #$00
	_, err = dbg.AddBreakpoint(0x8002, "flag.Z and hits == 0")
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	x, err := dbg.Register("X")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, x, uint32(0))
	z, err := dbg.Flag("Z")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, z, true)
}

func TestPeekCondition(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.AddBreakpoint(0x8005, "peek(0x0200) == 1")
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	pc, err := dbg.PC()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, pc, uint32(0x8005))
}

func TestStep(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.Step()
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)

	test.DemandSuccess(t, dbg.Pause())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)

	// a paused debugger halts the emulation before the first step
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.Instructions(), 0)

	_, err = dbg.AddWatchpoint(0x0200, 1, debugger.WatchWrite)
	test.DemandSuccess(t, err)

	n, err := dbg.Step()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 2)
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)

	// the watchpoint is matched but stepping ends paused anyway
	n, err = dbg.Step()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)
	test.ExpectEquality(t, len(dbg.Hits()), 1)

	tr, err := dbg.Trace()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(tr), 2)
	test.ExpectEquality(t, tr[0].Address, uint32(0x8000))
	test.ExpectEquality(t, tr[1].Address, uint32(0x8002))
	test.ExpectEquality(t, dbg.CyclesCounted(), 6)
}

func TestInspection(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.Register("A")
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)
	_, err = dbg.ReadMemory(0x0200, 1)
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)

	test.DemandSuccess(t, dbg.Pause())

	_, err = dbg.Register("Q")
	test.ExpectEquality(t, errors.Is(err, debugger.StateError), true)

	test.DemandSuccess(t, dbg.SetRegister("A", 0x55))
	a, err := dbg.Register("A")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, uint32(0x55))

	test.DemandSuccess(t, dbg.SetFlag("C", true))
	c, err := dbg.Flag("C")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c, true)

	// start at the STA instruction
	test.DemandSuccess(t, dbg.SetPC(0x8002))
	_, err = dbg.Step()
	test.DemandSuccess(t, err)

	b, err := dbg.ReadMemory(0x0200, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b[0], uint8(0x55))

	// debugger writes are seen by watchpoints
	_, err = dbg.AddWatchpoint(0x0300, 2, debugger.WatchWrite)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, dbg.WriteMemory(0x0300, []uint8{0x12, 0x34}))
	hits := dbg.Hits()
	test.DemandEquality(t, len(hits), 2)
	test.ExpectEquality(t, hits[1].Address, uint32(0x0301))
	test.ExpectEquality(t, hits[1].Value, uint32(0x34))
	test.ExpectEquality(t, hits[1].PC, uint32(0x8005))

	b, err = dbg.ReadMemory(0x0300, 2)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b[0], uint8(0x12))
	test.ExpectEquality(t, b[1], uint8(0x34))

	// the matches made by the debugger do not halt the emulation again
	test.DemandSuccess(t, dbg.Continue())
	test.DemandSuccess(t, emu.RunFrame())
	test.ExpectEquality(t, dbg.State(), debugger.AttachedRunning)

	test.DemandSuccess(t, dbg.Pause())
	_, err = dbg.ReadMemory(0xffff, 2)
	test.ExpectEquality(t, errors.Is(err, memory.FaultError), true)
}

func TestFaultEvent(t *testing.T) {
	emu, dbg := newDebugger(t, faultProgram)

	err := emu.RunFrame()
	test.ExpectEquality(t, errors.Is(err, memory.FaultError), true)
	test.ExpectEquality(t, dbg.State(), debugger.AttachedPaused)

	ev := expectEvent(t, dbg, debugger.EventFault)
	test.ExpectEquality(t, ev.PC, uint32(0x8000))
	test.ExpectEquality(t, errors.Is(ev.Err, memory.FaultError), true)
}

func TestTraceCapacity(t *testing.T) {
	emu, dbg := newDebugger(t, countProgram)

	test.DemandSuccess(t, emu.RunFrame())
	test.DemandSuccess(t, dbg.Pause())

	tr, err := dbg.Trace()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tr), 64)

	// the oldest entries have been forgotten
	test.ExpectInequality(t, tr[0].Address, uint32(0x8000))

	s := &strings.Builder{}
	test.DemandSuccess(t, dbg.ExportTrace(s))
	test.ExpectEquality(t, strings.Count(s.String(), "\n"), 64)
	test.ExpectEquality(t, strings.Contains(s.String(), "INX"), true)

	test.DemandSuccess(t, dbg.ClearTrace())
	tr, err = dbg.Trace()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tr), 0)
}

func TestDumpMemviz(t *testing.T) {
	emu, dbg := newDebugger(t, storeProgram)

	_, err := dbg.AddBreakpoint(0x8005, "A == 1")
	test.DemandSuccess(t, err)
	_, err = dbg.AddWatchpoint(0x0200, 1, debugger.WatchWrite)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, emu.RunFrame())

	s := &strings.Builder{}
	test.DemandSuccess(t, dbg.DumpMemviz(s))
	test.ExpectEquality(t, strings.Contains(s.String(), "digraph"), true)
	test.ExpectEquality(t, strings.Contains(s.String(), "A == 1"), true)
}
