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

// Package digest creates fingerprints of the video and audio output of a
// platform. Each fingerprint includes the previous fingerprint so the final
// value identifies the whole sequence of output.
//
// Digests are used to check that two runs of the same image produce exactly
// the same output.
package digest

// Digest is implemented by Video and Audio.
type Digest interface {
	Hash() string
	ResetDigest()
}
