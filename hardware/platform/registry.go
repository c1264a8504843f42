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
	"errors"
	"sort"
	"strings"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/curated"
)

// UnsupportedError is the sentinel for requests naming an unknown platform.
var UnsupportedError = errors.New("unsupported platform")

type definition struct {
	info   Info
	create func(cfg *config.Config) (*Platform, error)
}

var registry = map[string]definition{}

func register(info Info, create func(cfg *config.Config) (*Platform, error)) {
	registry[info.ID] = definition{info: info, create: create}
}

func init() {
	register(genericInfo, newGeneric)
	register(atariInfo, newAtari2600)
	register(nesInfo, newNES)
	register(snesInfo, newSNES)
	register(ps1Info, newPS1)
	register(ps2Info, newPS2)
	register(ps3Info, newPS3)
}

// IDs returns the identifiers of every registered platform in alphabetical
// order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the platform identifier for a name. The name can be the
// identifier itself or one of its aliases. The comparison ignores case and
// surrounding space.
func Lookup(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := registry[name]; ok {
		return name, true
	}
	for id, d := range registry {
		for _, a := range d.info.Aliases {
			if a == name {
				return id, true
			}
		}
	}
	return "", false
}

// Describe returns the Info for a platform without creating it.
func Describe(name string) (Info, error) {
	id, ok := Lookup(name)
	if !ok {
		return Info{}, curated.Errorf("platform: %v: %s", UnsupportedError, name)
	}
	return registry[id].info, nil
}

// Create a platform by name. An unknown name is an UnsupportedError and
// nothing is constructed. A nil configuration is replaced by the default
// configuration.
func Create(name string, cfg *config.Config) (*Platform, error) {
	id, ok := Lookup(name)
	if !ok {
		return nil, curated.Errorf("platform: %v: %s", UnsupportedError, name)
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return registry[id].create(cfg)
}
