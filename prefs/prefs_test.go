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

package prefs_test

import (
	"errors"
	"testing"

	"github.com/emulite/emulite/prefs"
	"github.com/emulite/emulite/test"
)

func TestBool(t *testing.T) {
	var v prefs.Bool
	test.ExpectEquality(t, v.String(), "false")

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectEquality(t, v.Get().(bool), true)

	test.ExpectSuccess(t, v.Set("TRUE"))
	test.ExpectEquality(t, v.Get().(bool), true)

	test.ExpectSuccess(t, v.Set("foo"))
	test.ExpectEquality(t, v.Get().(bool), false)

	test.ExpectFailure(t, v.Set(10))
}

func TestInt(t *testing.T) {
	var v prefs.Int
	test.ExpectEquality(t, v.String(), "0")

	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, v.Get().(int), 10)

	test.ExpectSuccess(t, v.Set("20"))
	test.ExpectEquality(t, v.Get().(int), 20)

	test.ExpectFailure(t, v.Set("foo"))
	test.ExpectEquality(t, v.Get().(int), 20)

	test.ExpectSuccess(t, v.Reset())
	test.ExpectEquality(t, v.Get().(int), 0)
}

func TestFloat(t *testing.T) {
	var v prefs.Float
	test.ExpectEquality(t, v.String(), "0.000")

	test.ExpectSuccess(t, v.Set(1.5))
	test.ExpectEquality(t, v.Get().(float64), 1.5)

	test.ExpectSuccess(t, v.Set("0.25"))
	test.ExpectEquality(t, v.String(), "0.250")

	test.ExpectSuccess(t, v.Set(2))
	test.ExpectEquality(t, v.Get().(float64), 2.0)
}

func TestString(t *testing.T) {
	var v prefs.String
	test.ExpectEquality(t, v.String(), "")
	test.ExpectSuccess(t, v.Set("hello"))
	test.ExpectEquality(t, v.Get().(string), "hello")
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var post int

	tooBig := errors.New("too big")

	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) > 100 {
			return tooBig
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(50))
	test.ExpectEquality(t, post, 50)

	// the pre hook vetoes the new value
	err := v.Set(101)
	test.ExpectSuccess(t, errors.Is(err, tooBig))
	test.ExpectEquality(t, v.Get().(int), 50)
	test.ExpectEquality(t, post, 50)
}

func TestCommandLine(t *testing.T) {
	cl := prefs.ParseCommandLine("audio.rate::48000; video.width :: 320; bad; debug::true")

	var rate prefs.Int
	test.ExpectSuccess(t, cl.Apply("audio.rate", &rate))
	test.ExpectEquality(t, rate.Get().(int), 48000)

	// applying a second time has no effect because the value has been taken
	test.ExpectSuccess(t, rate.Set(44100))
	test.ExpectSuccess(t, cl.Apply("audio.rate", &rate))
	test.ExpectEquality(t, rate.Get().(int), 44100)

	v, ok := cl.Take("video.width")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, "320")

	test.ExpectEquality(t, cl.Unused(), "debug::true")

	var width prefs.Int
	cl = prefs.ParseCommandLine("width::wide")
	test.ExpectFailure(t, cl.Apply("width", &width))
}
