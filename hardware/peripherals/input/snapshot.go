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

package input

import (
	"strings"
)

// Button is a bit mask of controller buttons.
type Button uint32

// List of buttons. Platforms use the subset that applies to their
// controllers.
const (
	Up Button = 1 << iota
	Down
	Left
	Right
	A
	B
	X
	Y
	L
	R
	Start
	Select
	L1
	R1
	L2
	R2
	L3
	R3
	Home
	Back
	Menu
)

var buttonNames = []struct {
	b    Button
	name string
}{
	{Up, "Up"}, {Down, "Down"}, {Left, "Left"}, {Right, "Right"},
	{A, "A"}, {B, "B"}, {X, "X"}, {Y, "Y"},
	{L, "L"}, {R, "R"}, {Start, "Start"}, {Select, "Select"},
	{L1, "L1"}, {R1, "R1"}, {L2, "L2"}, {R2, "R2"},
	{L3, "L3"}, {R3, "R3"}, {Home, "Home"}, {Back, "Back"},
	{Menu, "Menu"},
}

func (b Button) String() string {
	var s []string
	for _, n := range buttonNames {
		if b&n.b == n.b {
			s = append(s, n.name)
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "+")
}

// ParseButton returns the button with the name. The comparison is case
// insensitive.
func ParseButton(name string) (Button, bool) {
	for _, n := range buttonNames {
		if strings.EqualFold(n.name, name) {
			return n.b, true
		}
	}
	return 0, false
}

// Axis identifies an analogue axis.
type Axis int

// List of analogue axes.
const (
	LeftX Axis = iota
	LeftY
	RightX
	RightY
	TriggerL2
	TriggerR2
	NumAxes
)

// Snapshot is the state of a controller at one instant.
type Snapshot struct {
	Buttons Button

	// axes range from -32768 to 32767. triggers range from 0 to 32767
	Axes [NumAxes]int16
}

// Pressed returns true if every button in the mask is pressed.
func (s Snapshot) Pressed(b Button) bool {
	return s.Buttons&b == b
}
