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

package emulation

import (
	"context"
	"image"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/emulite/emulite/hardware/peripherals/audio"
	"github.com/emulite/emulite/hardware/peripherals/video"
)

// length of the presentation queues.
const (
	frameQueue = 8
	audioQueue = 32
)

// presenter receives frames and audio buffers from the platform and hands
// them to the host. The platform side never blocks. If a queue is full the
// frame or buffer is dropped and counted.
//
// Scaling happens in the dispatch goroutine and not on the core.
type presenter struct {
	skip   int
	width  int
	height int

	// frames seen since the presenter was created. used for frame skipping
	count int

	// queues filled by the platform and drained by the dispatchers
	frameIn chan video.Frame
	audioIn chan audio.Buffer

	// queues read by the host
	frames chan video.Frame
	audio  chan audio.Buffer

	droppedFrames atomic.Uint64
	droppedAudio  atomic.Uint64
}

func newPresenter(skip int, width int, height int) *presenter {
	return &presenter{
		skip:    skip,
		width:   width,
		height:  height,
		frameIn: make(chan video.Frame, frameQueue),
		audioIn: make(chan audio.Buffer, audioQueue),
		frames:  make(chan video.Frame, frameQueue),
		audio:   make(chan audio.Buffer, audioQueue),
	}
}

// NewFrame implements the video.Sink interface. Only every (skip+1)th frame
// is queued.
func (pr *presenter) NewFrame(f video.Frame) {
	pr.count++
	if (pr.count-1)%(pr.skip+1) != 0 {
		return
	}
	select {
	case pr.frameIn <- f:
	default:
		pr.droppedFrames.Add(1)
	}
}

// NewBuffer implements the audio.Sink interface.
func (pr *presenter) NewBuffer(b audio.Buffer) {
	select {
	case pr.audioIn <- b:
	default:
		pr.droppedAudio.Add(1)
	}
}

// scale the frame to the configured dimensions. A dimension of zero is the
// native dimension of the frame.
func (pr *presenter) scale(f video.Frame) video.Frame {
	w, h := pr.width, pr.height
	if w == 0 {
		w = f.Width
	}
	if h == 0 {
		h = f.Height
	}
	if w == f.Width && h == f.Height {
		return f
	}

	src := f.Image()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return video.FromImage(f.Number, dst)
}

func (pr *presenter) forwardFrame(f video.Frame) {
	f = pr.scale(f)
	select {
	case pr.frames <- f:
	default:
		pr.droppedFrames.Add(1)
	}
}

func (pr *presenter) forwardBuffer(b audio.Buffer) {
	select {
	case pr.audio <- b:
	default:
		pr.droppedAudio.Add(1)
	}
}

// dispatchFrames forwards frames until the context is cancelled. Frames
// still queued at that point are forwarded before returning.
func (pr *presenter) dispatchFrames(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case f := <-pr.frameIn:
					pr.forwardFrame(f)
				default:
					return nil
				}
			}
		case f := <-pr.frameIn:
			pr.forwardFrame(f)
		}
	}
}

func (pr *presenter) dispatchAudio(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case b := <-pr.audioIn:
					pr.forwardBuffer(b)
				default:
					return nil
				}
			}
		case b := <-pr.audioIn:
			pr.forwardBuffer(b)
		}
	}
}

// close the host queues. must only be called after the dispatchers have
// returned.
func (pr *presenter) close() {
	close(pr.frames)
	close(pr.audio)
}
