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

// Package prefs provides typed preference values (Bool, Int, Float, String)
// that are safe to read and write from more than one goroutine.
//
// Each value can have a pre hook and a post hook. The pre hook is called
// with the new value before it is stored and can veto the change by
// returning an error. This is how range checking is implemented by users of
// the package. The post hook is called after the value has been stored.
//
// The CommandLine type parses a string of "key::value" pairs, separated by
// semi-colons. Values are applied to preferences by key with the Apply()
// function.
package prefs
