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

// Package curated is a helper package for the plain Go language error type.
//
// Curated errors are created with the Errorf() function. It takes a pattern
// and placeholder values in the same way as fmt.Errorf(). The pattern is kept
// so that errors can be recognised later:
//
//	e := curated.Errorf("cartridge: %v: %d bytes", cartridge.FormatError, n)
//
//	if curated.Is(e, "cartridge: %v: %d bytes") {
//		fmt.Println("true")
//	}
//
// The Has() function checks if a pattern occurs anywhere in the chain of
// curated errors.
//
// Curated errors also implement Unwrap(). The first placeholder value that is
// an error is returned so the standard errors.Is() function can test for a
// sentinel error wrapped by a curated error. In the example above:
//
//	errors.Is(e, cartridge.FormatError) == true
//
// The Error() implementation normalises the message chain by removing
// adjacent duplicate parts. The message "memory: memory: fault" is returned
// as "memory: fault".
package curated
