package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectableInflatesXYOnly(t *testing.T) {
	b := Collectable([3]float32{0, 0, 0}, [3]float32{0, 0, 0}, [3]float32{32, 32, 56})
	assert.Equal(t, float32(-15), b.Min[0])
	assert.Equal(t, float32(-15), b.Min[1])
	assert.Equal(t, float32(0), b.Min[2])
	assert.Equal(t, float32(47), b.Max[0])
	assert.Equal(t, float32(56), b.Max[2])
}

func TestPlayerInflatesAllAxes(t *testing.T) {
	b := Player([3]float32{0, 0, 0})
	assert.Equal(t, PlayerMins[0]-1, b.Min[0])
	assert.Equal(t, PlayerMaxs[2]+1, b.Max[2])
}

func TestPlayerCenter(t *testing.T) {
	c := PlayerCenter([3]float32{100, 0, 0})
	assert.InDelta(t, 100, c[0], 0.001)
	assert.InDelta(t, 4, c[2], 0.001) // 0.5*(-24+32)
}

func TestDistanceNegativeMeansOverlap(t *testing.T) {
	a := Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{10, 10, 10}}
	b := Bounds{Min: [3]float32{5, 5, 5}, Max: [3]float32{15, 15, 15}}
	assert.Less(t, Distance(a, b), float32(0))
}

func TestDistancePositiveWhenSeparated(t *testing.T) {
	a := Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{10, 10, 10}}
	b := Bounds{Min: [3]float32{20, 0, 0}, Max: [3]float32{30, 10, 10}}
	assert.Equal(t, float32(10), Distance(a, b))
}
