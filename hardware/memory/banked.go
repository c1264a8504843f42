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

package memory

import (
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/savestate"
)

// BankControl is implemented by the mapper logic of a Banked device. It is
// called for every read and write to the device (but not for peeks) and can
// change which bank is visible in each window.
type BankControl interface {
	// the initial bank for each window
	Reset(b *Banked)

	// Access is called before the access takes effect. The return value
	// indicates whether the access was consumed by the mapper. A consumed
	// write is not forwarded to the underlying storage.
	Access(b *Banked, offset uint32, data uint8, write bool) bool
}

// Banked is a bank switched ROM. The device is divided into windows of equal
// size and each window shows one bank of the ROM at a time. Which bank is
// shown is private to the device and changed only by the BankControl.
type Banked struct {
	label    string
	data     []uint8
	bankSize uint32
	windows  []int
	ctrl     BankControl
	policy   WritePolicy
}

// NewBanked is the preferred method of initialisation for the Banked type.
// The data must be a whole number of banks.
func NewBanked(label string, data []uint8, bankSize uint32, windows int, ctrl BankControl, policy WritePolicy) (*Banked, error) {
	if bankSize == 0 || len(data) == 0 || uint32(len(data))%bankSize != 0 {
		return nil, curated.Errorf("memory: banked device %s: data (%d bytes) is not a multiple of bank size (%d)", label, len(data), bankSize)
	}
	if windows < 1 {
		windows = 1
	}

	b := &Banked{
		label:    label,
		data:     make([]uint8, len(data)),
		bankSize: bankSize,
		windows:  make([]int, windows),
		ctrl:     ctrl,
		policy:   policy,
	}
	copy(b.data, data)
	b.Reset()

	return b, nil
}

// Label implements the Device interface.
func (b *Banked) Label() string {
	return b.label
}

// NumBanks returns the number of banks in the device.
func (b *Banked) NumBanks() int {
	return len(b.data) / int(b.bankSize)
}

// NumWindows returns the number of windows in the device.
func (b *Banked) NumWindows() int {
	return len(b.windows)
}

// Window returns the bank visible in window w.
func (b *Banked) Window(w int) int {
	return b.windows[w]
}

// SetWindow makes bank visible in window w. Bank numbers wrap around the
// number of banks.
func (b *Banked) SetWindow(w int, bank int) {
	n := b.NumBanks()
	bank %= n
	if bank < 0 {
		bank += n
	}
	b.windows[w%len(b.windows)] = bank
}

func (b *Banked) resolve(offset uint32) uint32 {
	offset %= b.bankSize * uint32(len(b.windows))
	w := offset / b.bankSize
	return uint32(b.windows[w])*b.bankSize + offset%b.bankSize
}

// Read implements the Device interface.
func (b *Banked) Read(offset uint32) (uint8, error) {
	// the value is read from the bank visible before any switch caused by
	// the access
	v := b.Peek(offset)
	if b.ctrl != nil {
		b.ctrl.Access(b, offset, v, false)
	}
	return v, nil
}

// Write implements the Device interface.
func (b *Banked) Write(offset uint32, data uint8) error {
	if b.ctrl != nil && b.ctrl.Access(b, offset, data, true) {
		return nil
	}
	if b.policy == RaiseOnWrite {
		return &Fault{Reason: ReadOnly, Kind: AccessWrite, Address: offset, Width: 1, Device: b.label}
	}
	return nil
}

// Peek implements the Device interface.
func (b *Banked) Peek(offset uint32) uint8 {
	return b.data[b.resolve(offset)]
}

// Reset implements the Device interface.
func (b *Banked) Reset() {
	for i := range b.windows {
		b.windows[i] = i % b.NumBanks()
	}
	if b.ctrl != nil {
		b.ctrl.Reset(b)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (b *Banked) SaveState(enc *savestate.Encoder) {
	w := make([]uint64, len(b.windows))
	for i := range b.windows {
		w[i] = uint64(b.windows[i])
	}
	enc.Uints(1, w)
}

// RestoreState implements the savestate.Snapshotter interface.
func (b *Banked) RestoreState(dec *savestate.Decoder) error {
	w := dec.Uints(1)
	if len(w) != len(b.windows) {
		return curated.Errorf("memory: %v: %s has %d windows not %d", savestate.CorruptError, b.label, len(b.windows), len(w))
	}
	for i := range w {
		if int(w[i]) >= b.NumBanks() {
			return curated.Errorf("memory: %v: %s bank %d does not exist", savestate.CorruptError, b.label, w[i])
		}
		b.windows[i] = int(w[i])
	}
	return nil
}
