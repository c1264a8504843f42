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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect functions report a failure and allow the test to continue. The
// Demand functions are fatal on failure and are used when later parts of a
// test depend on the result.
//
// ExpectSuccess() and ExpectFailure() test for success and failure under
// generic conditions. For bool a success is true. For error a success is nil.
// The nil type is considered a success and consequently will cause
// ExpectFailure() to fail. This is because of how errors usually work (nil
// to indicate no error).
//
// ExpectEquality() and DemandEquality() are generic and compare any two
// values of the same comparable type.
//
// All functions accept optional tags which are prefixed to failure messages.
// These are useful in table driven tests to identify the failing entry.
//
// The RingWriter type implements the io.Writer interface and keeps only the
// most recent output written to it.
package test
