package pathfind

// PathResult is a found path: the destination and the unit steps leading
// to it from the start.
type PathResult struct {
	Destination Point
	Steps       []Point
	Stats       SearchStats
}

// Cost sums the step costs of r over m
func (r *PathResult) Cost(m *AccessMap, start Point) int {
	total := 0
	p := start
	for _, s := range r.Steps {
		p = p.Add(s)
		c := m.Cost(p)
		if s.X != 0 && s.Y != 0 {
			c = diagonalCost(c)
		}
		total += c
	}
	return total
}

// PathSearchContext owns everything one search needs: a private copy of the
// access map and both searchers. It reads no shared state, so RunSearch may
// execute on any goroutine.
type PathSearchContext struct {
	access       *AccessMap
	start        Point
	destination  Point
	maxCost      int
	airTransport bool

	forward  *Searcher
	backward *Searcher
}

// NewPathSearchContext takes ownership of access. Callers hand in a clone
// when they keep using their own map.
func NewPathSearchContext(access *AccessMap, start, destination Point, maxCost int, airTransport bool) *PathSearchContext {
	return &PathSearchContext{
		access:       access,
		start:        start,
		destination:  destination,
		maxCost:      maxCost,
		airTransport: airTransport,
	}
}

// Access returns the context's raster
func (c *PathSearchContext) Access() *AccessMap { return c.access }

// Start returns the search origin
func (c *PathSearchContext) Start() Point { return c.start }

// Destination returns the search goal
func (c *PathSearchContext) Destination() Point { return c.destination }

// MaxCost returns the cost budget of the returned path
func (c *PathSearchContext) MaxCost() int { return c.maxCost }

// AirTransport reports whether the search runs in air transport mode
func (c *PathSearchContext) AirTransport() bool { return c.airTransport }

// Forward returns the forward searcher of the last RunSearch, nil before it
func (c *PathSearchContext) Forward() *Searcher { return c.forward }

// RunSearch seeds both searchers with a straight walk, alternates their
// expansion until the forward frontier is exhausted and extracts the path.
// It returns nil when no path within the cost budget exists.
func (c *PathSearchContext) RunSearch() *PathResult {
	if !c.access.InBounds(c.start) || !c.access.InBounds(c.destination) {
		return nil
	}

	c.forward = NewSearcher(c.access, c.start, c.destination, c.airTransport)
	c.backward = NewSearcher(c.access, c.destination, c.start, c.airTransport)

	c.forward.Process(c.start, true)
	c.backward.Process(c.destination, false)

	for {
		c.backward.BackwardSearch(c.forward)
		if !c.forward.ForwardSearch(c.backward) {
			break
		}
	}

	steps := c.forward.DeterminePath(c.start, c.maxCost)
	if len(steps) == 0 {
		return nil
	}

	res := &PathResult{Destination: c.destination, Steps: steps}
	res.Stats.add(c.forward.Stats)
	res.Stats.add(c.backward.Stats)
	return res
}
