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
	"errors"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/memory/memorymap"
	"github.com/emulite/emulite/savestate"
)

// OpenBus policy decides the value read from an address that has no device.
type OpenBus struct {
	// if Constant is false the value is the last value driven on the bus
	Constant bool
	Value    uint8
}

// OpenBusLast returns the policy where unmapped reads return the last value
// driven on the bus.
func OpenBusLast() OpenBus {
	return OpenBus{}
}

// OpenBusConstant returns the policy where unmapped reads return a fixed
// value.
func OpenBusConstant(v uint8) OpenBus {
	return OpenBus{Constant: true, Value: v}
}

// Bus resolves accesses to the attached devices.
type Bus struct {
	label   string
	bits    int
	max     uint32
	order   ByteOrder
	openBus OpenBus

	mmap *memorymap.Map[Device]

	// last value driven on the bus. used for the OpenBusLast policy
	latch uint8

	// index of the most recently used range. memory accesses tend to be
	// grouped so checking the previous range first avoids a search
	recent int

	observer Observer
}

// NewBus is the preferred method of initialisation for the Bus type. The
// number of bits defines the size of the address space.
func NewBus(label string, bits int, order ByteOrder, openBus OpenBus) *Bus {
	if bits < 1 || bits > 32 {
		bits = 32
	}
	max := uint32((uint64(1) << bits) - 1)
	return &Bus{
		label:   label,
		bits:    bits,
		max:     max,
		order:   order,
		openBus: openBus,
		mmap:    memorymap.New[Device](max),
		recent:  -1,
	}
}

// Label returns the name of the bus.
func (bus *Bus) Label() string {
	return bus.label
}

// Bits returns the width of the address space in bits.
func (bus *Bus) Bits() int {
	return bus.bits
}

// MaxAddress returns the highest valid address.
func (bus *Bus) MaxAddress() uint32 {
	return bus.max
}

// Order returns the byte order of multi-byte accesses.
func (bus *Bus) Order() ByteOrder {
	return bus.order
}

// OpenBusPolicy returns the open bus policy.
func (bus *Bus) OpenBusPolicy() OpenBus {
	return bus.openBus
}

// Map returns the memory map of the bus.
func (bus *Bus) Map() *memorymap.Map[Device] {
	return bus.mmap
}

// Attach a device to the inclusive address range.
func (bus *Bus) Attach(start uint32, end uint32, dev Device) error {
	return bus.AttachRange(memorymap.Range[Device]{Start: start, End: end, Device: dev})
}

// AttachMirror attaches a device to the inclusive address range with the
// offset masked. A device smaller than the range appears repeatedly.
func (bus *Bus) AttachMirror(start uint32, end uint32, dev Device, mask uint32) error {
	return bus.AttachRange(memorymap.Range[Device]{Start: start, End: end, Device: dev, Mask: mask})
}

// AttachRange attaches a fully specified range.
func (bus *Bus) AttachRange(r memorymap.Range[Device]) error {
	bus.recent = -1
	if err := bus.mmap.Add(r); err != nil {
		return curated.Errorf("memory: %s: %v", bus.label, err)
	}
	return nil
}

// SetObserver sets the observer notified of every Read() and Write(). A nil
// observer stops notifications.
func (bus *Bus) SetObserver(o Observer) {
	bus.observer = o
}

// lookup returns the range covering address or nil.
func (bus *Bus) lookup(address uint32) *memorymap.Range[Device] {
	if bus.recent >= 0 {
		r := bus.mmap.Range(bus.recent)
		if r.Contains(address) {
			return r
		}
	}
	i, ok := bus.mmap.Lookup(address)
	if !ok {
		return nil
	}
	bus.recent = i
	return bus.mmap.Range(i)
}

func (bus *Bus) openValue() uint8 {
	if bus.openBus.Constant {
		return bus.openBus.Value
	}
	return bus.latch
}

func (bus *Bus) check(address uint32, width int, kind AccessKind) error {
	if width != 1 && width != 2 && width != 4 {
		return &Fault{Reason: BadWidth, Kind: kind, Address: address, Width: width}
	}
	if uint64(address)+uint64(width)-1 > uint64(bus.max) {
		return &Fault{Reason: OutOfRange, Kind: kind, Address: address, Width: width}
	}
	return nil
}

// fault completes the details of a fault returned by a device.
func (bus *Bus) fault(err error, address uint32, width int, kind AccessKind) error {
	var f *Fault
	if errors.As(err, &f) {
		f.Address = address
		f.Width = width
		f.Kind = kind
		return f
	}
	return err
}

// read8 reads a single byte without observation.
func (bus *Bus) read8(address uint32) (uint8, error) {
	r := bus.lookup(address)
	if r == nil {
		return bus.openValue(), nil
	}
	v, err := r.Device.Read(r.Offset(address))
	bus.latch = v
	return v, err
}

// write8 writes a single byte without observation.
func (bus *Bus) write8(address uint32, data uint8) error {
	bus.latch = data
	r := bus.lookup(address)
	if r == nil {
		return nil
	}
	return r.Device.Write(r.Offset(address), data)
}

// Read8 reads a single byte. Implements the CPUBus interface.
func (bus *Bus) Read8(address uint32) (uint8, error) {
	if address > bus.max {
		return bus.openValue(), &Fault{Reason: OutOfRange, Kind: AccessRead, Address: address, Width: 1}
	}

	v, err := bus.read8(address)
	if err != nil {
		err = bus.fault(err, address, 1, AccessRead)
	}

	if bus.observer != nil {
		bus.observer.MemoryAccess(Access{Address: address, Width: 1, Kind: AccessRead, Value: uint32(v)})
	}

	return v, err
}

// Write8 writes a single byte. Implements the CPUBus interface.
func (bus *Bus) Write8(address uint32, data uint8) error {
	if address > bus.max {
		return &Fault{Reason: OutOfRange, Kind: AccessWrite, Address: address, Width: 1}
	}

	err := bus.write8(address, data)
	if err != nil {
		err = bus.fault(err, address, 1, AccessWrite)
	}

	if bus.observer != nil {
		bus.observer.MemoryAccess(Access{Address: address, Width: 1, Kind: AccessWrite, Value: uint32(data)})
	}

	return err
}

// Poke writes a single byte without notifying the observer and without
// driving the open bus latch. Writes that are not made on behalf of the CPU
// use Poke().
func (bus *Bus) Poke(address uint32, data uint8) error {
	if address > bus.max {
		return &Fault{Reason: OutOfRange, Kind: AccessWrite, Address: address, Width: 1}
	}
	latch := bus.latch
	defer func() {
		bus.latch = latch
	}()
	if err := bus.write8(address, data); err != nil {
		return bus.fault(err, address, 1, AccessWrite)
	}
	return nil
}

// Read a value of 1, 2 or 4 bytes. The bytes are composed in the byte order
// of the bus. Implements the CPUBus interface.
func (bus *Bus) Read(address uint32, width int) (uint32, error) {
	if err := bus.check(address, width, AccessRead); err != nil {
		return 0, err
	}

	var b [4]uint8
	var ferr error

	for i := 0; i < width; i++ {
		v, err := bus.read8(address + uint32(i))
		if err != nil && ferr == nil {
			ferr = bus.fault(err, address, width, AccessRead)
		}
		b[i] = v
	}
	value := Join[uint32](bus.order, b[:width])

	if bus.observer != nil {
		bus.observer.MemoryAccess(Access{Address: address, Width: width, Kind: AccessRead, Value: value})
	}

	return value, ferr
}

// Write a value of 1, 2 or 4 bytes. The value is decomposed in the byte order
// of the bus. Bytes for devices that fault are dropped but the remaining
// bytes are still written. Implements the CPUBus interface.
func (bus *Bus) Write(address uint32, width int, value uint32) error {
	if err := bus.check(address, width, AccessWrite); err != nil {
		return err
	}

	var b [4]uint8
	SplitInto(bus.order, value, b[:width])

	var ferr error

	for i := 0; i < width; i++ {
		err := bus.write8(address+uint32(i), b[i])
		if err != nil && ferr == nil {
			ferr = bus.fault(err, address, width, AccessWrite)
		}
	}

	if bus.observer != nil {
		bus.observer.MemoryAccess(Access{Address: address, Width: width, Kind: AccessWrite, Value: value})
	}

	return ferr
}

// Peek returns the value at address without side effects and without
// notifying the observer.
func (bus *Bus) Peek(address uint32) (uint8, error) {
	if address > bus.max {
		return 0, &Fault{Reason: OutOfRange, Kind: AccessRead, Address: address, Width: 1}
	}
	r := bus.lookup(address)
	if r == nil {
		return bus.openValue(), nil
	}
	return r.Device.Peek(r.Offset(address)), nil
}

// PeekRange returns n bytes starting at address without side effects.
func (bus *Bus) PeekRange(address uint32, n int) ([]uint8, error) {
	if n < 0 || uint64(address)+uint64(n) > uint64(bus.max)+1 {
		return nil, &Fault{Reason: OutOfRange, Kind: AccessRead, Address: address, Width: n}
	}
	b := make([]uint8, n)
	for i := range b {
		b[i], _ = bus.Peek(address + uint32(i))
	}
	return b, nil
}

// Reset all attached devices and the open bus latch.
func (bus *Bus) Reset() {
	bus.latch = 0
	for _, d := range bus.mmap.Devices() {
		d.Reset()
	}
}

// Release removes all devices from the bus. The bus is unusable afterwards
// until new devices are attached.
func (bus *Bus) Release() {
	bus.observer = nil
	bus.recent = -1
	bus.mmap.Clear()
}

// SaveState implements the savestate.Snapshotter interface. Devices are saved
// in map order.
func (bus *Bus) SaveState(enc *savestate.Encoder) {
	enc.Uint(1, uint64(bus.latch))
	for _, d := range bus.mmap.Devices() {
		enc.Message(2, func(enc *savestate.Encoder) {
			enc.String(1, d.Label())
			enc.Snapshot(2, d)
		})
	}
}

// RestoreState implements the savestate.Snapshotter interface.
func (bus *Bus) RestoreState(dec *savestate.Decoder) error {
	devs := bus.mmap.Devices()
	msgs, err := dec.Messages(2)
	if err != nil {
		return err
	}
	if len(msgs) != len(devs) {
		return curated.Errorf("memory: %v: %s has %d devices, state has %d", savestate.CorruptError, bus.label, len(devs), len(msgs))
	}
	for i, m := range msgs {
		if l := m.String(1); l != devs[i].Label() {
			return curated.Errorf("memory: %v: expected device %s, state has %s", savestate.CorruptError, devs[i].Label(), l)
		}
		if err := m.Restore(2, devs[i]); err != nil {
			return err
		}
	}
	bus.latch = uint8(dec.Uint(1))
	return nil
}
