package pathfind

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFillOpenMap(t *testing.T) {
	m := uniformMap(7, 5, 4)
	fill := NewPathFill(m)

	assert.Equal(t, 35, fill.Fill(Point{3, 2}))
	assert.Equal(t, image.Rect(0, 0, 7, 5), fill.Filled())
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			assert.True(t, m.Has(Point{x, y}, CellVisited), "cell %d,%d", x, y)
		}
	}
}

func TestPathFillStopsAtWall(t *testing.T) {
	m := uniformMap(6, 5, 4)
	for y := 0; y < 5; y++ {
		m.Block(Point{3, y})
	}

	fill := NewPathFill(m)
	assert.Equal(t, 15, fill.Fill(Point{0, 0}))
	assert.Equal(t, image.Rect(0, 0, 3, 5), fill.Filled())
	assert.False(t, m.Has(Point{4, 0}, CellVisited))

	m.SetCost(Point{3, 4}, 4)
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			m.Unmark(Point{x, y}, CellVisited)
		}
	}
	assert.Equal(t, 26, fill.Fill(Point{0, 0}))
	assert.True(t, m.Has(Point{5, 0}, CellVisited))
}

func TestPathFillCrossesDiagonalGaps(t *testing.T) {
	m := NewAccessMap(4, 4)
	for i := 0; i < 4; i++ {
		m.Set(Point{i, i}, 4, 0)
	}

	straight := NewFloodFill(pathCells{m.Clone()}, image.Rect(0, 0, 4, 4), false)
	assert.Equal(t, 1, straight.Fill(Point{0, 0}))

	fill := NewPathFill(m)
	assert.Equal(t, 4, fill.Fill(Point{0, 0}))
	assert.True(t, m.Has(Point{3, 3}, CellVisited))
}

func TestPathFillBlockedSeed(t *testing.T) {
	m := uniformMap(3, 3, 4)
	m.Block(Point{1, 1})

	fill := NewPathFill(m)
	assert.Zero(t, fill.Fill(Point{1, 1}))
	assert.Zero(t, fill.Fill(Point{-1, 0}))
	assert.False(t, m.Has(Point{1, 0}, CellVisited))
}
