package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinates is returned when a coordinate pair is outside the WGS84 ranges.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}

// Validate reports whether both components are finite and inside their ranges.
// A point at (0, 0) is valid.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, c.Longitude)
	}

	return nil
}
