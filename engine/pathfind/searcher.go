package pathfind

import "container/heap"

const (
	// CostUnvisited marks a cell no search front has costed yet
	CostUnvisited = 0x3FFF
	ringUnreached = 0x7FFF
)

// SearchStats counts the work done by one searcher
type SearchStats struct {
	EvaluatedSquares int
	EvaluatorCalls   int
	SquareInsertions int
	MaxDepth         int
}

func (s *SearchStats) add(o SearchStats) {
	s.EvaluatedSquares += o.EvaluatedSquares
	s.EvaluatorCalls += o.EvaluatorCalls
	s.SquareInsertions += o.SquareInsertions
	s.MaxDepth = max(s.MaxDepth, o.MaxDepth)
}

// EvaluateCost returns the cost of entering to from from, 0 when the move is
// not allowed. With an air transporter a move between a transport-excluded
// cell and an air-passable cell is not allowed.
func EvaluateCost(m *AccessMap, from, to Point, airTransport bool) int {
	if airTransport {
		if (m.Has(to, CellTransportExclusion) && m.Has(from, CellAirPassable)) ||
			(m.Has(from, CellTransportExclusion) && m.Has(to, CellAirPassable)) {
			return 0
		}
	}
	return m.Cost(to)
}

// --- Frontier ---

type square struct {
	p    Point
	cost int
	seq  uint64
}

// frontier pops the cheapest square; among equal costs the newest wins
type frontier []square

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq > f[j].seq
}
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(square)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Searcher is one half of a bidirectional search. It expands outward from
// its origin toward its destination and reads the opposing searcher's
// costs and ring table to bound its own expansion.
type Searcher struct {
	access       *AccessMap
	origin       Point
	destination  Point
	airTransport bool

	costs      []uint16
	directions []Direction

	// rings[d] is the lowest cost seen on any expanded cell at line
	// distance d or more from the origin; ringLimit is the largest d seen.
	rings     []uint16
	ringLimit int

	open frontier
	seq  uint64

	Stats SearchStats
}

// NewSearcher prepares a search over access from origin toward destination
func NewSearcher(access *AccessMap, origin, destination Point, airTransport bool) *Searcher {
	n := access.Width * access.Height
	s := &Searcher{
		access:       access,
		origin:       origin,
		destination:  destination,
		airTransport: airTransport,
		costs:        make([]uint16, n),
		directions:   make([]Direction, n),
	}
	for i := range s.costs {
		s.costs[i] = CostUnvisited
		s.directions[i] = DirInvalid
	}
	s.costs[s.index(origin)] = 0

	mx := max(access.Width-origin.X, origin.X)
	my := max(access.Height-origin.Y, origin.Y)
	s.rings = make([]uint16, 2*max(mx, my)+min(mx, my)+1)
	for i := range s.rings {
		s.rings[i] = ringUnreached
	}
	s.rings[0] = 0

	return s
}

// Origin returns the cell the searcher expands from
func (s *Searcher) Origin() Point { return s.origin }

// Destination returns the cell the searcher expands toward
func (s *Searcher) Destination() Point { return s.destination }

// CostAt returns the best known cost from the origin to p
func (s *Searcher) CostAt(p Point) int { return int(s.costs[s.index(p)]) }

// DirectionAt returns the heading p was last reached by
func (s *Searcher) DirectionAt(p Point) Direction { return s.directions[s.index(p)] }

// FrontierLen returns the number of squares waiting to be expanded
func (s *Searcher) FrontierLen() int { return len(s.open) }

func (s *Searcher) index(p Point) int { return p.Y*s.access.Width + p.X }

func (s *Searcher) evaluate(from, to Point) int {
	s.Stats.EvaluatorCalls++
	return EvaluateCost(s.access, from, to, s.airTransport)
}

func (s *Searcher) push(p Point, cost int) {
	s.seq++
	heap.Push(&s.open, square{p: p, cost: cost, seq: s.seq})
	s.Stats.SquareInsertions++
	s.Stats.MaxDepth = max(s.Stats.MaxDepth, len(s.open))
}

// Process seeds the frontier with a straight walk from point toward the
// destination. Every cell on the walk is costed and queued, giving an
// initial upper bound when the walk gets through. The walk ends at the
// first cell that cannot be entered. A backward walk charges each step the
// cost of the cell it leaves.
func (s *Searcher) Process(point Point, forward bool) {
	s.push(point, s.CostAt(point))

	dx := s.destination.X - point.X
	dy := s.destination.Y - point.Y
	sx, sy := 1, 1
	if dx <= 0 {
		dx, sx = -dx, -1
	}
	if dy <= 0 {
		dy, sy = -dy, -1
	}

	// Bresenham style walk: heading is the major axis direction and each
	// accumulator overflow turns one step diagonal.
	var minor, turnA, turnB int
	var heading int
	if dx < dy {
		minor = dx
		if minor == 0 {
			minor, dy, dx = 1, dy+1, 1
		}
		heading = sy*2 + 2
		switch {
		case sx != sy:
			turnA = 1
		case heading != 0:
			turnA = -1
		default:
			turnA = 7
		}
	} else {
		minor = dy
		if minor == 0 {
			minor, dx, dy = 1, dx+1, 1
		}
		heading = 4 - sx*2
		if sx == sy {
			turnB = 1
		} else {
			turnB = -1
		}
	}

	accA, accB, cost := 0, 0, 0
	for point != s.destination {
		dir := heading
		accA += minor
		if accA >= dy {
			dir += turnA
			accA -= dy
		}
		accB += minor
		if accB >= dx {
			dir += turnB
			accB -= dx
		}

		d := Direction(dir)
		next := point.Add(d.Offset())

		var step int
		if forward {
			step = s.evaluate(point, next)
			if step == 0 {
				return
			}
		} else {
			if s.evaluate(point, next) == 0 {
				return
			}
			step = s.evaluate(next, point)
		}
		if d.Diagonal() {
			step = diagonalCost(step)
		}
		cost += step

		i := s.index(next)
		s.costs[i] = uint16(cost)
		s.directions[i] = d
		s.push(next, cost)

		point = next
	}
}

// updateRings records that a cell at line distance from target was
// expanded at cost, lowering every ring at or inside it that cost beats.
func (s *Searcher) updateRings(p, target Point, cost int) {
	d := LineDistance(p, target)
	if d > s.ringLimit {
		s.ringLimit = d
	}
	for d >= 0 && cost < int(s.rings[d]) {
		s.rings[d] = uint16(cost)
		d--
	}
}

// ringBound is a lower bound on what the searcher has to spend to reach a
// cell at line distance d from its origin. Past the outermost ring it grows
// by the cheapest move per unit of line distance: a diagonal step over cost
// 1 cells costs 1 and covers 3.
func (s *Searcher) ringBound(d int) int {
	if d > s.ringLimit {
		return int(s.rings[s.ringLimit]) + (d-s.ringLimit)/3
	}
	return int(s.rings[d])
}

// evaluateSquare offers p at cost, reached by heading dir. An improving
// cost is recorded; the square is queued only while it can still beat the
// best known cost at the destination, and a cell already costed by other
// tightens that best known cost.
func (s *Searcher) evaluateSquare(p Point, cost int, dir Direction, other *Searcher) {
	i := s.index(p)
	stored := int(s.costs[i])

	if stored > cost {
		bound := other.ringBound(LineDistance(p, s.destination))

		s.costs[i] = uint16(cost)
		s.directions[i] = dir

		goal := s.index(s.destination)
		if cost+bound <= int(s.costs[goal]) {
			if met := int(other.costs[i]) + cost; met < int(s.costs[goal]) {
				s.costs[goal] = uint16(met)
			}
			s.push(p, cost)
		}
	} else if stored == cost {
		s.directions[i] = dir
	}
}

func (s *Searcher) pop() (Point, bool) {
	if len(s.open) == 0 {
		return Point{}, false
	}
	s.Stats.EvaluatedSquares++
	return heap.Pop(&s.open).(square).p, true
}

// ForwardSearch expands the cheapest frontier square, charging each move
// the cost of the cell entered. It returns false once the frontier is empty.
func (s *Searcher) ForwardSearch(other *Searcher) bool {
	pos, ok := s.pop()
	if !ok {
		return false
	}

	cost := s.CostAt(pos)
	s.updateRings(pos, other.destination, cost)

	for d := DirNorth; d < DirCount; d++ {
		step := pos.Add(d.Offset())
		if !s.access.InBounds(step) || cost >= s.CostAt(step) {
			continue
		}
		c := s.evaluate(pos, step)
		if c > 0 {
			if d.Diagonal() {
				c = diagonalCost(c)
			}
			s.evaluateSquare(step, cost+c, d, other)
		}
	}
	return true
}

// BackwardSearch expands the cheapest frontier square. Every allowed move
// is charged the cost of the cell being expanded rather than the cell
// entered, mirroring the direction of travel back toward the origin.
func (s *Searcher) BackwardSearch(other *Searcher) bool {
	pos, ok := s.pop()
	if !ok {
		return false
	}

	cost := s.CostAt(pos)
	s.updateRings(pos, other.destination, cost)
	reference := s.evaluate(pos, pos)

	for d := DirNorth; d < DirCount; d++ {
		step := pos.Add(d.Offset())
		if !s.access.InBounds(step) || cost >= s.CostAt(step) {
			continue
		}
		if s.evaluate(pos, step) > 0 {
			c := reference
			if d.Diagonal() {
				c = diagonalCost(c)
			}
			s.evaluateSquare(step, cost+c, d, other)
		}
	}
	return true
}

// DeterminePath follows the recorded headings from the destination back to
// start and returns the unit steps from start, stopping before their summed
// cost would exceed maxCost. It returns nil when the chain is broken or no
// step fits.
func (s *Searcher) DeterminePath(start Point, maxCost int) []Point {
	var reversed []Point
	limit := s.access.Width * s.access.Height

	for p := s.destination; p != start; {
		dir := s.DirectionAt(p)
		if dir >= DirCount || len(reversed) >= limit {
			return nil
		}
		off := dir.Offset()
		reversed = append(reversed, off)
		p = p.Sub(off)
		if !s.access.InBounds(p) {
			return nil
		}
	}

	var steps []Point
	cost := 0
	p := start
	for i := len(reversed) - 1; i >= 0; i-- {
		off := reversed[i]
		p = p.Add(off)
		c := s.access.Cost(p)
		if off.X != 0 && off.Y != 0 {
			c = diagonalCost(c)
		}
		if cost+c > maxCost {
			break
		}
		cost += c
		steps = append(steps, off)
	}
	return steps
}
