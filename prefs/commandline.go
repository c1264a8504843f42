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

package prefs

import (
	"fmt"
	"sort"
	"strings"
)

// CommandLine is a group of preference values taken from a single string of
// the form:
//
//	key::value; key::value
//
// Values are removed from the group as they are taken. Anything left over
// was not recognised by the caller.
type CommandLine struct {
	values map[string]string
}

// ParseCommandLine splits the prefs string into key/value pairs. Malformed
// pairs are ignored.
func ParseCommandLine(prefs string) *CommandLine {
	cl := &CommandLine{values: make(map[string]string)}
	for _, p := range strings.Split(prefs, ";") {
		kv := strings.Split(p, "::")
		if len(kv) == 2 {
			k := strings.TrimSpace(kv[0])
			if k != "" {
				cl.values[k] = strings.TrimSpace(kv[1])
			}
		}
	}
	return cl
}

// Take returns the value for key and removes it from the group.
func (cl *CommandLine) Take(key string) (string, bool) {
	v, ok := cl.values[key]
	if ok {
		delete(cl.values, key)
	}
	return v, ok
}

// Apply sets the preference with the value for key, if the key is present.
func (cl *CommandLine) Apply(key string, p Pref) error {
	if v, ok := cl.Take(key); ok {
		if err := p.Set(v); err != nil {
			return fmt.Errorf("prefs: %s: %w", key, err)
		}
	}
	return nil
}

// Unused returns the preferences that have not been taken, as a prefs string
// in key order.
func (cl *CommandLine) Unused() string {
	keys := make([]string, 0, len(cl.values))
	for k := range cl.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for i, k := range keys {
		if i > 0 {
			s.WriteString("; ")
		}
		s.WriteString(fmt.Sprintf("%s::%s", k, cl.values[k]))
	}
	return s.String()
}
