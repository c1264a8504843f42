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

package platform

import (
	"encoding/binary"

	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/savestate"
)

const (
	gpuVRAMWidth  = 1024
	gpuVRAMHeight = 512
)

// GP0 transfer modes.
const (
	gpuCommand = iota
	gpuImageLoad
	gpuImageStore
)

// psGPU is the PlayStation GPU. Drawing is flat or gouraud shaded without
// texture sampling or semi-transparency. Textured primitives are drawn with
// their vertex colours.
type psGPU struct {
	intc *psINTC

	vram []uint16

	mode   int
	buffer []uint32

	// rectangle of the current image transfer and the position in it
	tx, ty, tw, th int
	tpos           int

	// drawing area and offset
	areaX1, areaY1 int
	areaX2, areaY2 int
	offsetX        int
	offsetY        int

	texpage uint32
	mask    uint32

	// display control
	displayX    int
	displayY    int
	displayMode uint32
	hrange      uint32
	vrange      uint32
	disabled    bool
	dmaDir      uint32
	irq         bool
	odd         bool
	read        uint32
}

func newPSGPU(intc *psINTC) *psGPU {
	gpu := &psGPU{
		intc: intc,
		vram: make([]uint16, gpuVRAMWidth*gpuVRAMHeight),
	}
	gpu.reset()
	return gpu
}

// reset the GPU state but not VRAM. This is the effect of GP1(00).
func (gpu *psGPU) reset() {
	gpu.mode = gpuCommand
	gpu.buffer = gpu.buffer[:0]
	gpu.areaX1, gpu.areaY1 = 0, 0
	gpu.areaX2, gpu.areaY2 = gpuVRAMWidth-1, gpuVRAMHeight-1
	gpu.offsetX, gpu.offsetY = 0, 0
	gpu.texpage = 0
	gpu.mask = 0
	gpu.displayX, gpu.displayY = 0, 0
	gpu.displayMode = 0x01
	gpu.hrange = 0xc60260
	gpu.vrange = 0x03fc10
	gpu.disabled = true
	gpu.dmaDir = 0
	gpu.irq = false
	gpu.read = 0
}

// powerOn clears VRAM as well as resetting the GPU.
func (gpu *psGPU) powerOn() {
	clear(gpu.vram)
	gpu.odd = false
	gpu.reset()
}

// rgb15 converts the 24 bit colour of a command to a VRAM pixel.
func rgb15(c uint32) uint16 {
	r := (c >> 3) & 0x1f
	g := (c >> 11) & 0x1f
	b := (c >> 19) & 0x1f
	return uint16(r | g<<5 | b<<10)
}

func signed11(v uint32) int {
	return int(int32(v<<21) >> 21)
}

func (gpu *psGPU) pixel(x int, y int) *uint16 {
	x &= gpuVRAMWidth - 1
	y &= gpuVRAMHeight - 1
	return &gpu.vram[y*gpuVRAMWidth+x]
}

// plot a pixel inside the drawing area.
func (gpu *psGPU) plot(x int, y int, c uint16) {
	if x < gpu.areaX1 || x > gpu.areaX2 || y < gpu.areaY1 || y > gpu.areaY2 {
		return
	}
	*gpu.pixel(x, y) = c
}

// gp0Length returns the number of words in a GP0 command. Returns zero for
// polylines, which end with a terminator word.
func gp0Length(cmd uint32) int {
	op := cmd >> 24
	switch {
	case op == 0x02:
		return 3
	case op >= 0x20 && op < 0x40:
		verts := 3
		if op&0x08 == 0x08 {
			verts = 4
		}
		per := 1
		if op&0x04 == 0x04 {
			per++
		}
		n := 1 + verts*per
		if op&0x10 == 0x10 {
			n += verts - 1
		}
		return n
	case op >= 0x40 && op < 0x60:
		if op&0x08 == 0x08 {
			return 0
		}
		if op&0x10 == 0x10 {
			return 4
		}
		return 3
	case op >= 0x60 && op < 0x80:
		n := 2
		if op&0x04 == 0x04 {
			n++
		}
		if op&0x18 == 0 {
			n++
		}
		return n
	case op >= 0x80 && op < 0xa0:
		return 4
	case op >= 0xa0 && op < 0xe0:
		return 3
	}
	return 1
}

// gp0 receives a word written to the GP0 port.
func (gpu *psGPU) gp0(v uint32) {
	if gpu.mode == gpuImageLoad {
		gpu.imageWord(v)
		return
	}

	gpu.buffer = append(gpu.buffer, v)
	n := gp0Length(gpu.buffer[0])

	if n == 0 {
		// polylines end with a word in the form 5xxx5xxx after at least two
		// vertices
		if len(gpu.buffer) < 4 || v&0xf000f000 != 0x50005000 {
			return
		}
	} else if len(gpu.buffer) < n {
		return
	}

	gpu.execute(gpu.buffer)
	gpu.buffer = gpu.buffer[:0]
}

func (gpu *psGPU) execute(cmd []uint32) {
	op := cmd[0] >> 24
	switch {
	case op == 0x02:
		gpu.fill(cmd)
	case op == 0x1f:
		gpu.irq = true
		gpu.intc.raise(psIntGPU)
	case op >= 0x20 && op < 0x40:
		gpu.polygon(cmd)
	case op >= 0x40 && op < 0x60:
		gpu.lines(cmd)
	case op >= 0x60 && op < 0x80:
		gpu.rectangle(cmd)
	case op >= 0x80 && op < 0xa0:
		gpu.copy(cmd)
	case op >= 0xa0 && op < 0xc0:
		gpu.transfer(cmd)
		gpu.mode = gpuImageLoad
	case op >= 0xc0 && op < 0xe0:
		gpu.transfer(cmd)
		gpu.mode = gpuImageStore
	case op == 0xe1:
		gpu.texpage = cmd[0] & 0x7ff
	case op == 0xe3:
		gpu.areaX1 = int(cmd[0] & 0x3ff)
		gpu.areaY1 = int((cmd[0] >> 10) & 0x1ff)
	case op == 0xe4:
		gpu.areaX2 = int(cmd[0] & 0x3ff)
		gpu.areaY2 = int((cmd[0] >> 10) & 0x1ff)
	case op == 0xe5:
		gpu.offsetX = signed11(cmd[0])
		gpu.offsetY = signed11(cmd[0] >> 11)
	case op == 0xe6:
		gpu.mask = cmd[0] & 0x03
	}
}

// fill a rectangle in VRAM. The drawing area is ignored.
func (gpu *psGPU) fill(cmd []uint32) {
	c := rgb15(cmd[0])
	x := int(cmd[1] & 0x3f0)
	y := int((cmd[1] >> 16) & 0x1ff)
	w := int(((cmd[2] & 0x3ff) + 0x0f) &^ 0x0f)
	h := int((cmd[2] >> 16) & 0x1ff)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			*gpu.pixel(x+i, y+j) = c
		}
	}
}

type gpuVertex struct {
	x, y    int
	r, g, b int
}

func (gpu *psGPU) vertex(xy uint32, c uint32) gpuVertex {
	return gpuVertex{
		x: signed11(xy) + gpu.offsetX,
		y: signed11(xy>>16) + gpu.offsetY,
		r: int(c & 0xff),
		g: int((c >> 8) & 0xff),
		b: int((c >> 16) & 0xff),
	}
}

func (gpu *psGPU) polygon(cmd []uint32) {
	op := cmd[0] >> 24
	quad := op&0x08 == 0x08
	textured := op&0x04 == 0x04
	gouraud := op&0x10 == 0x10

	n := 3
	if quad {
		n = 4
	}

	var v [4]gpuVertex
	i := 1
	colour := cmd[0]
	for k := 0; k < n; k++ {
		if gouraud && k > 0 {
			colour = cmd[i]
			i++
		}
		v[k] = gpu.vertex(cmd[i], colour)
		i++
		if textured {
			i++
		}
	}

	gpu.triangle(v[0], v[1], v[2])
	if quad {
		gpu.triangle(v[1], v[2], v[3])
	}
}

func edge(a gpuVertex, b gpuVertex, x int, y int) int {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// triangle draws a shaded triangle with either winding.
func (gpu *psGPU) triangle(a gpuVertex, b gpuVertex, c gpuVertex) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}

	minX := max(min(a.x, b.x, c.x), gpu.areaX1)
	maxX := min(max(a.x, b.x, c.x), gpu.areaX2)
	minY := max(min(a.y, b.y, c.y), gpu.areaY1)
	maxY := min(max(a.y, b.y, c.y), gpu.areaY2)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edge(b, c, x, y)
			w1 := edge(c, a, x, y)
			w2 := edge(a, b, x, y)
			if area < 0 {
				w0, w1, w2 = -w0, -w1, -w2
			}
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			s := area
			if s < 0 {
				s = -s
			}
			r := (a.r*w0 + b.r*w1 + c.r*w2) / s
			g := (a.g*w0 + b.g*w1 + c.g*w2) / s
			bl := (a.b*w0 + b.b*w1 + c.b*w2) / s
			gpu.plot(x, y, rgb15(uint32(r)|uint32(g)<<8|uint32(bl)<<16))
		}
	}
}

func (gpu *psGPU) lines(cmd []uint32) {
	op := cmd[0] >> 24
	gouraud := op&0x10 == 0x10

	var verts []gpuVertex
	colour := cmd[0]
	for i := 1; i < len(cmd); i++ {
		if cmd[i]&0xf000f000 == 0x50005000 && op&0x08 == 0x08 && len(verts) >= 2 {
			break
		}
		if gouraud && len(verts) > 0 {
			colour = cmd[i]
			i++
			if i >= len(cmd) {
				break
			}
		}
		verts = append(verts, gpu.vertex(cmd[i], colour))
	}

	for i := 1; i < len(verts); i++ {
		gpu.line(verts[i-1], verts[i])
	}
}

// line draws a line with the colour of its first vertex.
func (gpu *psGPU) line(a gpuVertex, b gpuVertex) {
	c := rgb15(uint32(a.r) | uint32(a.g)<<8 | uint32(a.b)<<16)

	dx := b.x - a.x
	if dx < 0 {
		dx = -dx
	}
	dy := -(b.y - a.y)
	if dy > 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if a.x > b.x {
		sx = -1
	}
	if a.y > b.y {
		sy = -1
	}

	x, y := a.x, a.y
	e := dx + dy
	for {
		gpu.plot(x, y, c)
		if x == b.x && y == b.y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (gpu *psGPU) rectangle(cmd []uint32) {
	op := cmd[0] >> 24
	v := gpu.vertex(cmd[1], cmd[0])

	var w, h int
	switch op & 0x18 {
	case 0x00:
		wh := cmd[len(cmd)-1]
		w = int(wh & 0x3ff)
		h = int((wh >> 16) & 0x1ff)
	case 0x08:
		w, h = 1, 1
	case 0x10:
		w, h = 8, 8
	case 0x18:
		w, h = 16, 16
	}

	c := rgb15(cmd[0])
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			gpu.plot(v.x+i, v.y+j, c)
		}
	}
}

func (gpu *psGPU) copy(cmd []uint32) {
	sx := int(cmd[1] & 0x3ff)
	sy := int((cmd[1] >> 16) & 0x1ff)
	dx := int(cmd[2] & 0x3ff)
	dy := int((cmd[2] >> 16) & 0x1ff)
	w := int((cmd[3]-1)&0x3ff) + 1
	h := int(((cmd[3]>>16)-1)&0x1ff) + 1
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			*gpu.pixel(dx+i, dy+j) = *gpu.pixel(sx+i, sy+j)
		}
	}
}

// transfer sets up the rectangle of an image load or store.
func (gpu *psGPU) transfer(cmd []uint32) {
	gpu.tx = int(cmd[1] & 0x3ff)
	gpu.ty = int((cmd[1] >> 16) & 0x1ff)
	gpu.tw = int((cmd[2]-1)&0x3ff) + 1
	gpu.th = int(((cmd[2]>>16)-1)&0x1ff) + 1
	gpu.tpos = 0
}

// next returns the VRAM pixel at the current position of the image
// transfer and advances. Returns false when the transfer is complete.
func (gpu *psGPU) next() (*uint16, bool) {
	if gpu.tpos >= gpu.tw*gpu.th {
		return nil, false
	}
	x := gpu.tx + gpu.tpos%gpu.tw
	y := gpu.ty + gpu.tpos/gpu.tw
	gpu.tpos++
	return gpu.pixel(x, y), true
}

func (gpu *psGPU) imageWord(v uint32) {
	for _, px := range []uint16{uint16(v), uint16(v >> 16)} {
		p, ok := gpu.next()
		if !ok {
			break
		}
		*p = px
	}
	if gpu.tpos >= gpu.tw*gpu.th {
		gpu.mode = gpuCommand
	}
}

// gpuRead returns the next word of an image store or the response to
// the last GP1(10) command.
func (gpu *psGPU) gpuRead() uint32 {
	if gpu.mode != gpuImageStore {
		return gpu.read
	}
	var v uint32
	for i := 0; i < 2; i++ {
		p, ok := gpu.next()
		if !ok {
			break
		}
		v |= uint32(*p) << (16 * i)
	}
	if gpu.tpos >= gpu.tw*gpu.th {
		gpu.mode = gpuCommand
	}
	return v
}

// gp1 receives a word written to the GP1 port.
func (gpu *psGPU) gp1(v uint32) {
	switch v >> 24 {
	case 0x00:
		gpu.reset()
	case 0x01:
		gpu.buffer = gpu.buffer[:0]
		gpu.mode = gpuCommand
	case 0x02:
		gpu.irq = false
	case 0x03:
		gpu.disabled = v&0x01 == 0x01
	case 0x04:
		gpu.dmaDir = v & 0x03
	case 0x05:
		gpu.displayX = int(v & 0x3fe)
		gpu.displayY = int((v >> 10) & 0x1ff)
	case 0x06:
		gpu.hrange = v & 0xffffff
	case 0x07:
		gpu.vrange = v & 0xfffff
	case 0x08:
		gpu.displayMode = v & 0xff
	case 0x10:
		switch v & 0x0f {
		case 0x03:
			gpu.read = uint32(gpu.areaX1) | uint32(gpu.areaY1)<<10
		case 0x04:
			gpu.read = uint32(gpu.areaX2) | uint32(gpu.areaY2)<<10
		case 0x05:
			gpu.read = uint32(gpu.offsetX)&0x7ff | (uint32(gpu.offsetY)&0x7ff)<<11
		case 0x07:
			gpu.read = 0x02
		}
	}
}

// status returns GPUSTAT.
func (gpu *psGPU) status() uint32 {
	s := gpu.texpage&0x7ff | gpu.mask<<11
	m := gpu.displayMode
	s |= (m & 0x03) << 17
	s |= ((m >> 6) & 0x01) << 16
	s |= ((m >> 2) & 0x0f) << 19
	if gpu.disabled {
		s |= 1 << 23
	}
	if gpu.irq {
		s |= 1 << 24
	}
	s |= 1<<26 | 1<<28
	if gpu.mode == gpuImageStore {
		s |= 1 << 27
	}
	s |= gpu.dmaDir << 29
	if gpu.odd {
		s |= 1 << 31
	}
	return s
}

// ReadWord implements the memory.WordHandler interface. Register zero is
// GPUREAD and register one is GPUSTAT.
func (gpu *psGPU) ReadWord(reg uint32) uint32 {
	if reg == 0 {
		return gpu.gpuRead()
	}
	return gpu.status()
}

// PeekWord implements the memory.WordHandler interface.
func (gpu *psGPU) PeekWord(reg uint32) uint32 {
	if reg == 0 {
		return gpu.read
	}
	return gpu.status()
}

// WriteWord implements the memory.WordHandler interface. Register zero is
// GP0 and register one is GP1.
func (gpu *psGPU) WriteWord(reg uint32, v uint32) {
	if reg == 0 {
		gpu.gp0(v)
		return
	}
	gpu.gp1(v)
}

// Scanline implements the video.Renderer interface. The display area is
// drawn in 15 bit colour.
func (gpu *psGPU) Scanline(line int, row []uint8) {
	if gpu.disabled {
		video.Fill(row, video.RGB(0, 0, 0))
		return
	}
	for x := 0; x*4 < len(row); x++ {
		c := video.BGR555(*gpu.pixel(gpu.displayX+x, gpu.displayY+line))
		video.FillSpan(row, x, x+1, c)
	}
}

// VBlank implements the video.Renderer interface.
func (gpu *psGPU) VBlank(start bool) {
	if start {
		gpu.odd = !gpu.odd
		gpu.intc.raise(psIntVBlank)
	}
}

// SaveState implements the savestate.Snapshotter interface.
func (gpu *psGPU) SaveState(enc *savestate.Encoder) {
	b := make([]uint8, len(gpu.vram)*2)
	for i, p := range gpu.vram {
		binary.LittleEndian.PutUint16(b[i*2:], p)
	}
	enc.Bytes(1, b)

	buf := make([]uint64, len(gpu.buffer))
	for i, w := range gpu.buffer {
		buf[i] = uint64(w)
	}
	enc.Uints(2, buf)

	enc.Ints(3, []int64{
		int64(gpu.mode), int64(gpu.tx), int64(gpu.ty), int64(gpu.tw), int64(gpu.th), int64(gpu.tpos),
		int64(gpu.areaX1), int64(gpu.areaY1), int64(gpu.areaX2), int64(gpu.areaY2),
		int64(gpu.offsetX), int64(gpu.offsetY), int64(gpu.displayX), int64(gpu.displayY),
	})
	enc.Uints(4, []uint64{
		uint64(gpu.texpage), uint64(gpu.mask), uint64(gpu.displayMode), uint64(gpu.hrange),
		uint64(gpu.vrange), uint64(gpu.dmaDir), uint64(gpu.read),
	})
	enc.Bool(5, gpu.disabled)
	enc.Bool(6, gpu.irq)
	enc.Bool(7, gpu.odd)
}

// RestoreState implements the savestate.Snapshotter interface.
func (gpu *psGPU) RestoreState(dec *savestate.Decoder) error {
	b := dec.Bytes(1)
	ints := dec.Ints(3)
	u := dec.Uints(4)
	if len(b) != len(gpu.vram)*2 || len(ints) != 14 || len(u) != 7 {
		return curated.Errorf("gpu: %v: state does not match", savestate.CorruptError)
	}
	for i := range gpu.vram {
		gpu.vram[i] = binary.LittleEndian.Uint16(b[i*2:])
	}

	gpu.buffer = gpu.buffer[:0]
	for _, w := range dec.Uints(2) {
		gpu.buffer = append(gpu.buffer, uint32(w))
	}

	gpu.mode, gpu.tx, gpu.ty, gpu.tw, gpu.th, gpu.tpos = int(ints[0]), int(ints[1]), int(ints[2]), int(ints[3]), int(ints[4]), int(ints[5])
	gpu.areaX1, gpu.areaY1, gpu.areaX2, gpu.areaY2 = int(ints[6]), int(ints[7]), int(ints[8]), int(ints[9])
	gpu.offsetX, gpu.offsetY, gpu.displayX, gpu.displayY = int(ints[10]), int(ints[11]), int(ints[12]), int(ints[13])

	gpu.texpage, gpu.mask, gpu.displayMode, gpu.hrange = uint32(u[0]), uint32(u[1]), uint32(u[2]), uint32(u[3])
	gpu.vrange, gpu.dmaDir, gpu.read = uint32(u[4]), uint32(u[5]), uint32(u[6])

	gpu.disabled = dec.Bool(5)
	gpu.irq = dec.Bool(6)
	gpu.odd = dec.Bool(7)
	return nil
}
