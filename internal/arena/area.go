// Package arena provides the fixed area graph tributes move across
// and the catalog of hazards that can strike an area.
package arena

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownArea is returned when a name does not match any area.
var ErrUnknownArea = errors.New("unknown area")

// Area is one of the five zones of the arena.
type Area uint8

const (
	Nowhere    Area = iota // Not in the arena (eliminated or not yet placed)
	Cornucopia             // The hub, adjacent to every other area
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

var areaNames = [...]string{
	Nowhere:    "Nowhere",
	Cornucopia: "The Cornucopia",
	NorthEast:  "North East",
	NorthWest:  "North West",
	SouthEast:  "South East",
	SouthWest:  "South West",
}

var areaCodes = [...]string{
	Nowhere:    "",
	Cornucopia: "hub",
	NorthEast:  "ne",
	NorthWest:  "nw",
	SouthEast:  "se",
	SouthWest:  "sw",
}

// All returns every real area in a stable order, hub first.
func All() []Area {
	return []Area{Cornucopia, NorthEast, NorthWest, SouthEast, SouthWest}
}

// Valid reports whether a is a real area of the arena.
func (a Area) Valid() bool {
	return a >= Cornucopia && a <= SouthWest
}

func (a Area) String() string {
	if int(a) < len(areaNames) {
		return areaNames[a]
	}
	return fmt.Sprintf("Area(%d)", uint8(a))
}

// Code returns the short code used in storage and the HTTP API.
func (a Area) Code() string {
	if int(a) < len(areaCodes) {
		return areaCodes[a]
	}
	return ""
}

// Neighbors returns the areas reachable in one move from a.
func Neighbors(a Area) []Area {
	switch {
	case a == Cornucopia:
		return []Area{NorthEast, NorthWest, SouthEast, SouthWest}
	case a.Valid():
		return []Area{Cornucopia}
	default:
		return nil
	}
}

// Adjacent reports whether a and b share an edge. The graph is undirected
// and an area is not adjacent to itself.
func Adjacent(a, b Area) bool {
	if !a.Valid() || !b.Valid() || a == b {
		return false
	}
	return a == Cornucopia || b == Cornucopia
}

// Parse looks an area up by display name or short code, ignoring case.
func Parse(name string) (Area, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	switch key {
	case "hub", "cornucopia", "the cornucopia":
		return Cornucopia, nil
	}
	for _, a := range All() {
		if key == a.Code() || key == strings.ToLower(a.String()) || key == strings.ReplaceAll(strings.ToLower(a.String()), " ", "") {
			return a, nil
		}
	}
	return Nowhere, fmt.Errorf("%w: %q", ErrUnknownArea, name)
}
