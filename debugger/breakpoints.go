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
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/platform"
)

// Breakpoint halts the emulation when the program counter reaches the
// address and the condition is true.
//
// The condition is a Lua expression. Every register of the CPU is a global
// variable with the register's name. Flags are in the flag table, for
// example flag.Z. The number of times the breakpoint has halted the
// emulation is in hits and memory can be read with peek(address). An empty
// condition is always true.
type Breakpoint struct {
	ID        int
	Address   uint32
	Condition string
	Enabled   bool

	// the number of times the breakpoint has halted the emulation
	Hits int

	fn *lua.LFunction
}

func (b Breakpoint) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("#%d %08x", b.ID, b.Address))
	if b.Condition != "" {
		s.WriteString(fmt.Sprintf(" if %s", b.Condition))
	}
	if !b.Enabled {
		s.WriteString(" (disabled)")
	}
	return s.String()
}

// breakpoints keeps track of all the currently defined breakpoints.
type breakpoints struct {
	L      *lua.LState
	breaks []*Breakpoint
	nextID int

	// the platform being checked. used by the peek() function
	plat *platform.Platform
}

func newBreakpoints() *breakpoints {
	brk := &breakpoints{
		L:      lua.NewState(lua.Options{SkipOpenLibs: true}),
		nextID: 1,
	}

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
		{lua.StringLibName, lua.OpenString},
	} {
		brk.L.Push(brk.L.NewFunction(lib.open))
		brk.L.Push(lua.LString(lib.name))
		brk.L.Call(1, 0)
	}

	brk.L.SetGlobal("peek", brk.L.NewFunction(brk.peek))

	return brk
}

func (brk *breakpoints) close() {
	brk.L.Close()
}

// peek(address) for use in conditions.
func (brk *breakpoints) peek(L *lua.LState) int {
	address := L.CheckInt64(1)
	if brk.plat == nil {
		L.RaiseError("peek: no platform")
		return 0
	}
	v, err := brk.plat.Bus().Peek(uint32(address))
	if err != nil {
		L.RaiseError("peek: %v", err)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

// compile a condition. an empty condition compiles to nil.
func (brk *breakpoints) compile(condition string) (*lua.LFunction, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return nil, nil
	}
	fn, err := brk.L.LoadString("return " + condition)
	if err != nil {
		return nil, curated.Errorf("debugger: %v: malformed condition: %v", StateError, err)
	}
	return fn, nil
}

func (brk *breakpoints) add(address uint32, condition string) (int, error) {
	fn, err := brk.compile(condition)
	if err != nil {
		return 0, err
	}
	b := &Breakpoint{
		ID:        brk.nextID,
		Address:   address,
		Condition: strings.TrimSpace(condition),
		Enabled:   true,
		fn:        fn,
	}
	brk.nextID++
	brk.breaks = append(brk.breaks, b)
	return b.ID, nil
}

func (brk *breakpoints) find(id int) (int, bool) {
	for i, b := range brk.breaks {
		if b.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (brk *breakpoints) drop(id int) error {
	i, ok := brk.find(id)
	if !ok {
		return curated.Errorf("debugger: %v: breakpoint #%d is not defined", StateError, id)
	}
	brk.breaks = append(brk.breaks[:i], brk.breaks[i+1:]...)
	return nil
}

func (brk *breakpoints) enable(id int, enabled bool) error {
	i, ok := brk.find(id)
	if !ok {
		return curated.Errorf("debugger: %v: breakpoint #%d is not defined", StateError, id)
	}
	brk.breaks[i].Enabled = enabled
	return nil
}

func (brk *breakpoints) list() []Breakpoint {
	l := make([]Breakpoint, len(brk.breaks))
	for i, b := range brk.breaks {
		l[i] = *b
		l[i].fn = nil
	}
	return l
}

// eval returns the value of the breakpoint's condition.
func (brk *breakpoints) eval(b *Breakpoint, p *platform.Platform) (bool, error) {
	if b.fn == nil {
		return true, nil
	}

	brk.plat = p
	defer func() {
		brk.plat = nil
	}()

	c := p.CPU()
	for _, r := range c.Registers() {
		v, _ := c.Register(r)
		brk.L.SetGlobal(r, lua.LNumber(v))
	}
	flags := brk.L.NewTable()
	for _, f := range c.Flags() {
		v, _ := c.Flag(f)
		flags.RawSetString(f, lua.LBool(v))
	}
	brk.L.SetGlobal("flag", flags)
	brk.L.SetGlobal("hits", lua.LNumber(b.Hits))

	brk.L.Push(b.fn)
	if err := brk.L.PCall(0, 1, nil); err != nil {
		return false, err
	}
	ret := brk.L.Get(-1)
	brk.L.Pop(1)

	return lua.LVAsBool(ret), nil
}

// check returns the first enabled breakpoint for the address whose
// condition is true. A condition that fails to evaluate is false and the
// error is returned with the breakpoint.
func (brk *breakpoints) check(pc uint32, p *platform.Platform) (*Breakpoint, error) {
	var ferr error
	for _, b := range brk.breaks {
		if !b.Enabled || b.Address != pc {
			continue
		}
		ok, err := brk.eval(b, p)
		if err != nil {
			if ferr == nil {
				ferr = curated.Errorf("debugger: breakpoint #%d: %v", b.ID, err)
			}
			continue
		}
		if ok {
			b.Hits++
			return b, ferr
		}
	}
	return nil, ferr
}
