package pathfind

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// follow returns the cells visited by steps from start
func follow(start Point, steps []Point) []Point {
	cells := make([]Point, 0, len(steps))
	p := start
	for _, s := range steps {
		p = p.Add(s)
		cells = append(cells, p)
	}
	return cells
}

func search(m *AccessMap, start, dest Point, maxCost int) *PathResult {
	return NewPathSearchContext(m, start, dest, maxCost, false).RunSearch()
}

func TestSearchOpenGridDiagonal(t *testing.T) {
	m := uniformMap(10, 10, 1)

	res := search(m, Point{0, 0}, Point{5, 5}, 32767)
	require.NotNil(t, res)
	assert.Equal(t, Point{5, 5}, res.Destination)
	require.Len(t, res.Steps, 5)
	for _, s := range res.Steps {
		assert.Equal(t, Point{1, 1}, s)
	}
}

func TestSearchDetoursAroundWall(t *testing.T) {
	m := uniformMap(10, 10, 1)
	for y := 0; y <= 8; y++ {
		m.Block(Point{4, y})
	}

	start, dest := Point{0, 0}, Point{9, 0}
	res := search(m, start, dest, 32767)
	require.NotNil(t, res)

	cells := follow(start, res.Steps)
	assert.Equal(t, dest, cells[len(cells)-1])
	assert.Contains(t, cells, Point{4, 9})
	assert.Len(t, res.Steps, 18)
	for _, c := range cells {
		assert.NotZero(t, m.Cost(c), "path enters blocked cell %v", c)
	}
}

func TestSearchChebyshevLengthOnOpenGrid(t *testing.T) {
	cases := []struct {
		w, h       int
		start, end Point
	}{
		{10, 10, Point{0, 0}, Point{9, 9}},
		{10, 10, Point{9, 0}, Point{0, 3}},
		{12, 5, Point{1, 4}, Point{11, 0}},
		{5, 12, Point{4, 11}, Point{2, 0}},
		{20, 20, Point{3, 17}, Point{16, 2}},
		{8, 8, Point{7, 7}, Point{6, 7}},
		{16, 3, Point{0, 1}, Point{15, 1}},
	}
	for _, c := range cases {
		m := uniformMap(c.w, c.h, 1)
		res := search(m, c.start, c.end, 32767)
		require.NotNil(t, res, "%v -> %v", c.start, c.end)
		assert.Len(t, res.Steps, ChebyshevDistance(c.start, c.end), "%v -> %v", c.start, c.end)
		cells := follow(c.start, res.Steps)
		assert.Equal(t, c.end, cells[len(cells)-1])
	}
}

func TestSearchUnreachable(t *testing.T) {
	m := uniformMap(8, 8, 4)
	for y := 0; y < 8; y++ {
		m.Block(Point{3, y})
	}
	assert.Nil(t, search(m, Point{0, 0}, Point{7, 7}, 32767))
}

func TestSearchTruncatesAtMaxCost(t *testing.T) {
	m := uniformMap(10, 3, 4)

	res := search(m, Point{0, 1}, Point{9, 1}, 10)
	require.NotNil(t, res)
	assert.Len(t, res.Steps, 2)
	assert.LessOrEqual(t, res.Cost(m, Point{0, 1}), 10)

	assert.Nil(t, search(m, Point{0, 1}, Point{9, 1}, 3))
}

func TestSearchCollectsStats(t *testing.T) {
	m := uniformMap(10, 10, 4)
	m.Block(Point{5, 5})

	res := search(m, Point{0, 0}, Point{9, 9}, 32767)
	require.NotNil(t, res)
	assert.Positive(t, res.Stats.EvaluatedSquares)
	assert.Positive(t, res.Stats.EvaluatorCalls)
	assert.Positive(t, res.Stats.SquareInsertions)
	assert.Positive(t, res.Stats.MaxDepth)
}

func TestEvaluateCostAirTransport(t *testing.T) {
	m := uniformMap(3, 1, 4)
	m.Set(Point{0, 0}, 4, CellTransportExclusion)
	m.Set(Point{1, 0}, 12, CellAirPassable)

	assert.Equal(t, 12, EvaluateCost(m, Point{0, 0}, Point{1, 0}, false))
	assert.Zero(t, EvaluateCost(m, Point{0, 0}, Point{1, 0}, true))
	assert.Zero(t, EvaluateCost(m, Point{1, 0}, Point{0, 0}, true))
	assert.Equal(t, 4, EvaluateCost(m, Point{1, 0}, Point{2, 0}, true))
}

// Every destination the reachability fill marks must yield a path, and
// every path must stay on open cells and within its budget.
func TestSearchAgreesWithPathFill(t *testing.T) {
	cases := []struct {
		name  string
		costs []int
	}{
		{"uniform cost 1", []int{1}},
		{"cheap mixed", []int{1, 1, 2, 3}},
		{"expensive mixed", []int{2, 4, 4, 8}},
		{"full range", []int{1, 5, 17, 31}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			for trial := 0; trial < 500; trial++ {
				w, h := 3+rng.IntN(22), 3+rng.IntN(22)
				m := NewAccessMap(w, h)
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						if rng.Float64() >= 0.25 {
							m.Set(Point{x, y}, tc.costs[rng.IntN(len(tc.costs))], 0)
						}
					}
				}
				start := Point{rng.IntN(w), rng.IntN(h)}
				dest := Point{rng.IntN(w), rng.IntN(h)}
				if start == dest {
					continue
				}
				m.Set(start, tc.costs[0], 0)

				filled := m.Clone()
				NewPathFill(filled).Fill(start)
				reachable := filled.Has(dest, CellVisited)

				res := search(filled, start, dest, 32767)
				if !reachable {
					assert.Nil(t, res, "trial %d: unreachable %v -> %v found a path", trial, start, dest)
					continue
				}
				require.NotNil(t, res, "trial %d: %v -> %v on %dx%d", trial, start, dest, w, h)

				cells := follow(start, res.Steps)
				assert.Equal(t, dest, cells[len(cells)-1], "trial %d", trial)
				for _, c := range cells {
					assert.NotZero(t, m.Cost(c), "trial %d: blocked cell %v", trial, c)
				}
			}
		})
	}
}

// A cost 1 corridor that doubles back away from the destination must not
// be cut off by the bound of the opposing search.
func TestSearchFollowsCheapSwitchback(t *testing.T) {
	m := NewAccessMap(9, 7)
	for x := 0; x < 9; x++ {
		m.Set(Point{x, 0}, 1, 0)
		m.Set(Point{x, 6}, 1, 0)
	}
	for y := 0; y < 7; y++ {
		m.Set(Point{8, y}, 1, 0)
	}
	for x := 0; x < 7; x++ {
		m.Set(Point{x, 3}, 1, 0)
	}
	m.Set(Point{0, 1}, 1, 0)
	m.Set(Point{0, 2}, 1, 0)

	// east along the bottom, up the right edge, back west along the top
	// and down into the middle row
	start, dest := Point{0, 6}, Point{6, 3}
	res := search(m, start, dest, 32767)
	require.NotNil(t, res)
	cells := follow(start, res.Steps)
	assert.Equal(t, dest, cells[len(cells)-1])
	assert.Contains(t, cells, Point{0, 1})
	for _, c := range cells {
		assert.NotZero(t, m.Cost(c), "blocked cell %v", c)
	}
}

func TestSearcherRingBoundExtrapolates(t *testing.T) {
	m := uniformMap(10, 10, 4)
	s := NewSearcher(m, Point{0, 0}, Point{9, 9}, false)

	assert.Equal(t, 0, s.ringBound(0))
	assert.Equal(t, 2, s.ringBound(7))

	s.updateRings(Point{2, 0}, Point{0, 0}, 8)
	assert.Equal(t, 4, s.ringLimit)
	assert.Equal(t, 8, s.ringBound(4))
	assert.Equal(t, 8, s.ringBound(1))
	assert.Equal(t, 9, s.ringBound(9))
}
