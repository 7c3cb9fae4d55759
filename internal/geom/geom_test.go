package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinate_StringRoundsAndParses(t *testing.T) {
	c := Coordinate{X: 10.4, Y: -3.6}
	assert.Equal(t, "10, -4", c.String())

	parsed, err := ParseCoordinate(c.String())
	require.NoError(t, err)
	assert.Equal(t, Coordinate{X: 10, Y: -4}, parsed)

	// The comment move wire format omits the space.
	parsed, err = ParseCoordinate("7,8")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{X: 7, Y: 8}, parsed)

	_, err = ParseCoordinate("7")
	require.Error(t, err)
}

func TestCoordinate_Distance(t *testing.T) {
	assert.InDelta(t, 5.0, Coordinate{X: 3, Y: 4}.Distance(Coordinate{}), 1e-9)
	assert.True(t, EqualPtr(nil, nil))
	assert.False(t, EqualPtr(&Coordinate{}, nil))
}

func TestRect(t *testing.T) {
	r := RectFrom(Coordinate{X: 10, Y: 20}, Size{Width: 30, Height: 40})
	assert.Equal(t, 30.0, r.Width())
	assert.Equal(t, 40.0, r.Height())
	assert.True(t, r.Contains(Coordinate{X: 10, Y: 60}))
	assert.False(t, r.Contains(Coordinate{X: 9, Y: 30}))
	assert.True(t, r.Intersects(Rect{Top: 55, Bottom: 100, Left: 35, Right: 100}))
	assert.False(t, r.Intersects(r.Translate(100, 0)))
}
