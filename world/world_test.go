package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint3DistanceTo(t *testing.T) {
	a := Point3{X: 1, Y: 2, Z: 3}
	b := Point3{X: 1, Y: 2, Z: 3}
	assert.Zero(t, a.DistanceTo(b), "distance to self should be zero")
	c := Point3{X: 4, Y: 6, Z: 3}
	assert.InDelta(t, 5, a.DistanceTo(c), 0.0001, "should compute euclidean distance")
}

func TestPoint3WithinRadius(t *testing.T) {
	base := Point3{}
	assert.True(t, base.WithinRadius(Point3{X: 2}, 2), "boundary should count as within")
	assert.False(t, base.WithinRadius(Point3{X: 2.01}, 2), "outside should not count as within")
}
