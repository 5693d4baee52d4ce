package store

import "fmt"

// reservedSectionIDs collide with UI actions and filter keywords.
var reservedSectionIDs = map[string]bool{
	"delete": true,
	"open":   true,
	"save":   true,
	"drag":   true,
	"all":    true,
}

// IsReservedSectionID reports whether id is reserved.
func IsReservedSectionID(id string) bool {
	return reservedSectionIDs[id]
}

// CheckSectionID is the single authority on section id validity.
// Every section-mutating path that derives an id from a name calls it.
func CheckSectionID(id string) error {
	if reservedSectionIDs[id] {
		return fmt.Errorf("%w: %q", ErrReservedName, id)
	}
	return nil
}
