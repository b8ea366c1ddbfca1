package models

import (
	"fmt"
	"strings"
)

// Direction is the travel direction encoded as the suffix of a directional stop id.
type Direction string

const (
	Northbound Direction = "N"
	Southbound Direction = "S"
	// AnyDirection matches direction-agnostic stop ids.
	AnyDirection Direction = ""
)

// ParseDirection accepts N/S as well as the spelled-out forms.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north", "northbound", "uptown":
		return Northbound, nil
	case "s", "south", "southbound", "downtown":
		return Southbound, nil
	case "":
		return AnyDirection, nil
	}
	return AnyDirection, fmt.Errorf("unknown direction %q", s)
}

// Letter is the suffix letter used in feed stop ids.
func (d Direction) Letter() string {
	return string(d)
}

func (d Direction) String() string {
	switch d {
	case Northbound:
		return "northbound"
	case Southbound:
		return "southbound"
	}
	return "any"
}
