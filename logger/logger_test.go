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

package logger_test

import (
	"strings"
	"testing"

	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()

	tw := &strings.Builder{}

	test.ExpectFailure(t, logger.Write(tw))
	test.ExpectEquality(t, tw.String(), "")

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(tw)
	test.ExpectEquality(t, tw.String(), "test: this is a test\n")

	tw.Reset()
	logger.Log(logger.Allow, "test2", "this is another test")
	logger.Write(tw)
	test.ExpectEquality(t, tw.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for too many entries in a Tail() should be okay
	tw.Reset()
	logger.Tail(tw, 100)
	test.ExpectEquality(t, tw.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for fewer entries is okay too
	tw.Reset()
	logger.Tail(tw, 1)
	test.ExpectEquality(t, tw.String(), "test2: this is another test\n")

	// and no entries
	tw.Reset()
	logger.Tail(tw, 0)
	test.ExpectEquality(t, tw.String(), "")
}

func TestRepeatAndPermission(t *testing.T) {
	logger.Clear()

	tw := &strings.Builder{}

	logger.Logf(logger.Allow, "test", "value %d", 10)
	logger.Logf(logger.Allow, "test", "value %d", 10)
	logger.Logf(logger.Allow, "test", "value %d", 10)
	logger.Log(logger.Deny, "test", "not logged")
	logger.Write(tw)
	test.ExpectEquality(t, tw.String(), "test: value 10 (repeat x3)\n")
}

func TestMaximumEntries(t *testing.T) {
	logger.Clear()

	for i := 0; i < 300; i++ {
		logger.Logf(logger.Allow, "test", "entry %d", i)
	}

	var n int
	var first string
	logger.BorrowLog(func(e []logger.Entry) {
		n = len(e)
		first = e[0].Detail
	})
	test.ExpectEquality(t, n, 256)
	test.ExpectEquality(t, first, "entry 44")
}

func TestEcho(t *testing.T) {
	logger.Clear()

	tw := &strings.Builder{}
	logger.SetEcho(tw)
	defer logger.SetEcho(nil)

	logger.Log(logger.Allow, "echo", "hello")
	test.ExpectEquality(t, tw.String(), "echo: hello\n")
}
