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

// Package video implements the scanline generator used by every platform.
//
// The Generator counts scanlines. Visible scanlines are drawn into an
// RGBA8888 frame by the platform's Renderer. When the last visible scanline
// has been drawn the vertical blank begins, the platform is notified and a
// copy of the frame is handed to the Sink.
//
// Pixel data is always RGBA8888 with packed rows, the stride being four times
// the width. This is the same layout as an image.RGBA created with
// image.NewRGBA().
package video
