// Package world holds basic world-space value types. Positions always
// originate from the host or from clients and are never simulated here.
package world

import "math"

// Point3 is a position in world space.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the euclidean distance to the given Point3.
func (p Point3) DistanceTo(other Point3) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// WithinRadius reports whether the given Point3 lies within the given radius
// around p.
func (p Point3) WithinRadius(other Point3, radius float64) bool {
	return p.DistanceTo(other) <= radius
}

// RGB is a color with 8-bit channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
