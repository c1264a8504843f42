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

// Package savestate encodes and decodes the state of emulation components.
//
// State is written as a sequence of numbered fields in the protocol buffer
// wire format using the protowire package. There are no generated message
// types: each component decides its own field numbers and reads them back
// in RestoreState(). Nested components are written as length-delimited
// sub-messages.
//
// Fields that are missing when decoding read as the zero value for their
// type, so a component can add fields without invalidating older state.
package savestate

import (
	"errors"

	"github.com/emulite/emulite/curated"
	"google.golang.org/protobuf/encoding/protowire"
)

// CorruptError is wrapped by all errors caused by undecodable state data.
var CorruptError = errors.New("corrupt state")

// Snapshotter is implemented by any component with state that must survive
// a snapshot and restore.
type Snapshotter interface {
	SaveState(enc *Encoder)
	RestoreState(dec *Decoder) error
}

// Encoder accumulates numbered fields.
type Encoder struct {
	buf []byte
}

// NewEncoder is the preferred method of initialisation for the Encoder type.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Data returns the encoded fields.
func (enc *Encoder) Data() []byte {
	return enc.buf
}

// Uint writes an unsigned integer field.
func (enc *Encoder) Uint(num int, v uint64) {
	enc.buf = protowire.AppendTag(enc.buf, protowire.Number(num), protowire.VarintType)
	enc.buf = protowire.AppendVarint(enc.buf, v)
}

// Int writes a signed integer field.
func (enc *Encoder) Int(num int, v int64) {
	enc.Uint(num, protowire.EncodeZigZag(v))
}

// Bool writes a boolean field.
func (enc *Encoder) Bool(num int, v bool) {
	enc.Uint(num, protowire.EncodeBool(v))
}

// Bytes writes a byte slice field.
func (enc *Encoder) Bytes(num int, b []byte) {
	enc.buf = protowire.AppendTag(enc.buf, protowire.Number(num), protowire.BytesType)
	enc.buf = protowire.AppendBytes(enc.buf, b)
}

// String writes a string field.
func (enc *Encoder) String(num int, s string) {
	enc.buf = protowire.AppendTag(enc.buf, protowire.Number(num), protowire.BytesType)
	enc.buf = protowire.AppendString(enc.buf, s)
}

// Uints writes a repeated unsigned integer field.
func (enc *Encoder) Uints(num int, v []uint64) {
	for _, u := range v {
		enc.Uint(num, u)
	}
}

// Ints writes a repeated signed integer field.
func (enc *Encoder) Ints(num int, v []int64) {
	for _, i := range v {
		enc.Int(num, i)
	}
}

// Message writes a nested message field. The function is called with a new
// Encoder for the nested fields.
func (enc *Encoder) Message(num int, f func(*Encoder)) {
	sub := &Encoder{}
	f(sub)
	enc.Bytes(num, sub.buf)
}

// Snapshot writes the state of a Snapshotter as a nested message field.
func (enc *Encoder) Snapshot(num int, s Snapshotter) {
	enc.Message(num, s.SaveState)
}

type field struct {
	varint uint64
	bytes  []byte
}

// Decoder gives access to the numbered fields of encoded state.
type Decoder struct {
	fields map[protowire.Number][]field
}

// NewDecoder parses encoded state.
func NewDecoder(b []byte) (*Decoder, error) {
	dec := &Decoder{fields: make(map[protowire.Number][]field)}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, curated.Errorf("savestate: %v: %v", CorruptError, protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, curated.Errorf("savestate: %v: field %d: %v", CorruptError, num, protowire.ParseError(n))
			}
			dec.fields[num] = append(dec.fields[num], field{varint: v})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, curated.Errorf("savestate: %v: field %d: %v", CorruptError, num, protowire.ParseError(n))
			}
			dec.fields[num] = append(dec.fields[num], field{bytes: v})
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, curated.Errorf("savestate: %v: field %d: %v", CorruptError, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	return dec, nil
}

// Has returns true if the field is present.
func (dec *Decoder) Has(num int) bool {
	return len(dec.fields[protowire.Number(num)]) > 0
}

// last returns the most recent instance of a field.
func (dec *Decoder) last(num int) (field, bool) {
	f := dec.fields[protowire.Number(num)]
	if len(f) == 0 {
		return field{}, false
	}
	return f[len(f)-1], true
}

// Uint returns the value of an unsigned integer field.
func (dec *Decoder) Uint(num int) uint64 {
	f, _ := dec.last(num)
	return f.varint
}

// Int returns the value of a signed integer field.
func (dec *Decoder) Int(num int) int64 {
	return protowire.DecodeZigZag(dec.Uint(num))
}

// Bool returns the value of a boolean field.
func (dec *Decoder) Bool(num int) bool {
	return protowire.DecodeBool(dec.Uint(num))
}

// Bytes returns a copy of a byte slice field.
func (dec *Decoder) Bytes(num int) []byte {
	f, ok := dec.last(num)
	if !ok {
		return nil
	}
	c := make([]byte, len(f.bytes))
	copy(c, f.bytes)
	return c
}

// CopyBytes copies a byte slice field into b. Returns an error if the
// field is present and its length differs from the length of b.
func (dec *Decoder) CopyBytes(num int, b []byte) error {
	f, ok := dec.last(num)
	if !ok {
		return nil
	}
	if len(f.bytes) != len(b) {
		return curated.Errorf("savestate: %v: field %d: length %d, expected %d", CorruptError, num, len(f.bytes), len(b))
	}
	copy(b, f.bytes)
	return nil
}

// String returns the value of a string field.
func (dec *Decoder) String(num int) string {
	f, _ := dec.last(num)
	return string(f.bytes)
}

// Uints returns all instances of a repeated unsigned integer field.
func (dec *Decoder) Uints(num int) []uint64 {
	f := dec.fields[protowire.Number(num)]
	v := make([]uint64, len(f))
	for i := range f {
		v[i] = f[i].varint
	}
	return v
}

// Ints returns all instances of a repeated signed integer field.
func (dec *Decoder) Ints(num int) []int64 {
	u := dec.Uints(num)
	v := make([]int64, len(u))
	for i := range u {
		v[i] = protowire.DecodeZigZag(u[i])
	}
	return v
}

// Message returns a Decoder for a nested message field. A missing field
// results in an empty Decoder.
func (dec *Decoder) Message(num int) (*Decoder, error) {
	f, _ := dec.last(num)
	return NewDecoder(f.bytes)
}

// Messages returns a Decoder for every instance of a repeated nested message
// field.
func (dec *Decoder) Messages(num int) ([]*Decoder, error) {
	f := dec.fields[protowire.Number(num)]
	d := make([]*Decoder, 0, len(f))
	for i := range f {
		m, err := NewDecoder(f[i].bytes)
		if err != nil {
			return nil, err
		}
		d = append(d, m)
	}
	return d, nil
}

// Restore decodes a nested message field into a Snapshotter.
func (dec *Decoder) Restore(num int, s Snapshotter) error {
	m, err := dec.Message(num)
	if err != nil {
		return err
	}
	return s.RestoreState(m)
}
