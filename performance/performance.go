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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/curated"
	"github.com/emulite/emulite/emulation"
)

// Result of a call to Measure().
type Result struct {
	Frames   int
	Duration time.Duration

	// the time taken to run each frame, in milliseconds
	FrameTimes []float64

	// the refresh rate of the platform
	Refresh float64
}

// FPS returns the number of frames per second and the accuracy of that value
// as a percentage of the platform's refresh rate.
func (r Result) FPS() (float64, float64) {
	return CalcFPS(r.Refresh, r.Frames, r.Duration.Seconds())
}

// CalcFPS takes the number of frames and duration in seconds and returns
// the frames-per-second and the accuracy of that value as a percentage of
// the refresh rate.
func CalcFPS(refresh float64, frames int, duration float64) (fps float64, accuracy float64) {
	if duration <= 0 {
		return 0, 0
	}
	fps = float64(frames) / duration
	if refresh > 0 {
		accuracy = 100 * fps / refresh
	}
	return fps, accuracy
}

// Measure runs the emulator, which must be loaded but not started, for the
// duration. Frames are run one after another without pacing. A fault ends
// the measurement early and is returned with the result so far.
func Measure(emu *emulation.Emulator, duration time.Duration) (Result, error) {
	if duration <= 0 {
		return Result{}, curated.Errorf("performance: duration must be positive (%v)", duration)
	}

	r := Result{
		Refresh: emu.Platform().Geometry().Refresh,
	}

	start := time.Now()
	end := start.Add(duration)
	for t := start; t.Before(end); {
		err := emu.RunFrame()
		n := time.Now()
		r.FrameTimes = append(r.FrameTimes, float64(n.Sub(t).Microseconds())/1000)
		r.Frames++
		r.Duration = n.Sub(start)
		if err != nil {
			return r, curated.Errorf("performance: %v", err)
		}
		t = n
	}

	return r, nil
}

// the number of bins in the frame time histogram.
const histogramBins = 10

// Histogram writes a histogram of the frame times.
func (r Result) Histogram(output io.Writer) error {
	if len(r.FrameTimes) == 0 {
		return nil
	}
	fmt.Fprintln(output, "frame time (ms)")

	// a histogram needs a range of values
	same := true
	for _, v := range r.FrameTimes[1:] {
		same = same && v == r.FrameTimes[0]
	}
	if same {
		fmt.Fprintf(output, "%.3f: %d\n", r.FrameTimes[0], len(r.FrameTimes))
		return nil
	}

	h := histogram.Hist(histogramBins, r.FrameTimes)
	if err := histogram.Fprint(output, h, histogram.Linear(40)); err != nil {
		return curated.Errorf("performance: %v", err)
	}
	return nil
}

// Check the performance of the emulator using the image. The emulation is
// run for the duration and the frame rate is written to output along with a
// histogram of frame times. Profiles are written as requested.
func Check(output io.Writer, profile Profile, platformID string, rom []uint8, duration time.Duration) error {
	emu, err := emulation.NewEmulator(config.NewConfig())
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}
	defer func() {
		_ = emu.Stop()
	}()

	if err := emu.Load(platformID, rom); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	var r Result
	err = RunProfiler(profile, "performance", func() error {
		var err error
		r, err = Measure(emu, duration)
		return err
	})
	if err != nil {
		return err
	}

	fps, accuracy := r.FPS()
	fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, r.Frames, r.Duration.Seconds(), accuracy)

	return r.Histogram(output)
}
