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
	"math"
	"sync/atomic"
	"time"
)

// limiter paces the emulation loop. Each tick of the pulse allows one frame
// to be run.
type limiter struct {
	// the requested number of frames per second. the refresh rate of the
	// platform multiplied by the speed
	requested float64

	pulse *time.Ticker

	// the actual number of frames per second, stored as float64 bits
	actual atomic.Uint64

	// measurement
	measureCt      int
	measureTime    time.Time
	measuringPulse *time.Ticker
}

func newLimiter(refresh float64, speed float64) *limiter {
	lmtr := &limiter{
		requested:      refresh * speed,
		measureTime:    time.Now(),
		measuringPulse: time.NewTicker(time.Second),
	}
	if lmtr.requested <= 0 {
		lmtr.requested = 60
	}
	lmtr.pulse = time.NewTicker(time.Duration(float64(time.Second) / lmtr.requested))
	return lmtr
}

func (lmtr *limiter) stop() {
	lmtr.pulse.Stop()
	lmtr.measuringPulse.Stop()
}

// checkFrame should be called once for every frame run.
func (lmtr *limiter) checkFrame() {
	lmtr.measureCt++
}

// measures frame rate on every tick of the measuringPulse ticker.
func (lmtr *limiter) measureActual() {
	select {
	case <-lmtr.measuringPulse.C:
		t := time.Now()
		actual := float64(lmtr.measureCt) / t.Sub(lmtr.measureTime).Seconds()
		lmtr.actual.Store(math.Float64bits(actual))

		// reset time and count ready for next measurement
		lmtr.measureTime = t
		lmtr.measureCt = 0
	default:
	}
}
