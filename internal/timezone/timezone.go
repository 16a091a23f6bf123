// Package timezone translates between the internal zone names stored on a
// person and IANA identifiers.
package timezone

import (
	"sync"
	"time"
)

// UTC is the name used when a person has no zone.
const UTC = "UTC"

var (
	byName map[string]string
	byID   map[string]string
	once   sync.Once
)

func build() {
	byName = make(map[string]string, len(names))
	byID = make(map[string]string, len(names))
	for _, n := range names {
		byName[n.Name] = n.ID
		byID[n.ID] = n.Name
	}
}

// ID returns the IANA identifier for an internal name.
func ID(name string) (string, bool) {
	once.Do(build)
	id, ok := byName[name]
	return id, ok
}

// FromID returns the internal name for an IANA identifier.
func FromID(id string) (string, bool) {
	once.Do(build)
	name, ok := byID[id]
	return name, ok
}

// Location loads the zone for an internal name. Unknown or empty names fall
// back to UTC.
func Location(name string) *time.Location {
	id, ok := ID(name)
	if !ok {
		return time.UTC
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return time.UTC
	}
	return loc
}
