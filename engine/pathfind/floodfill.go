package pathfind

import "image"

// FillStrategy decides which cells a FloodFill may enter and records the
// ones it claims. Runs are vertical spans [top, bottom) within one column.
type FillStrategy interface {
	// RunTop walks up from p while the cell above is fillable, stopping at
	// minY, and returns the topmost fillable row.
	RunTop(p Point, minY int) int
	// RunBottom walks down from p while cells are fillable and returns the
	// first row that is not, or maxY.
	RunBottom(p Point, maxY int) int
	// NextFillable returns the first fillable row at or below p, or maxY.
	NextFillable(p Point, maxY int) int
	// MarkRun claims the cells of a run so they are no longer fillable.
	MarkRun(x, top, bottom int)
}

type floodRun struct {
	x, top, bottom int
}

// FloodFill is a scanline flood fill over vertical runs
type FloodFill struct {
	// Bounds limits the fill; Max is exclusive
	Bounds image.Rectangle
	// Diagonal lets runs connect through corners
	Diagonal bool
	// MaxRuns is the deepest the run stack grew during the last Fill
	MaxRuns int

	strategy FillStrategy
	filled   image.Rectangle
	cells    int
}

// NewFloodFill creates a fill over bounds driven by s
func NewFloodFill(s FillStrategy, bounds image.Rectangle, diagonal bool) *FloodFill {
	return &FloodFill{Bounds: bounds, Diagonal: diagonal, strategy: s}
}

// Filled returns the rectangle covering every claimed cell of the last Fill
func (f *FloodFill) Filled() image.Rectangle { return f.filled }

// Cells returns the number of cells claimed by the last Fill
func (f *FloodFill) Cells() int { return f.cells }

// Fill claims every cell connected to p and returns how many it claimed.
// A seed that is not fillable claims nothing.
func (f *FloodFill) Fill(p Point) int {
	f.cells = 0
	f.MaxRuns = 0
	f.filled = image.Rectangle{}

	if !image.Pt(p.X, p.Y).In(f.Bounds) || f.strategy.NextFillable(p, p.Y+1) != p.Y {
		return 0
	}

	minX, minY, maxX, maxY := p.X, p.Y, p.X, p.Y

	runs := []floodRun{f.claim(p)}

	for len(runs) > 0 {
		f.MaxRuns = max(f.MaxRuns, len(runs))

		run := runs[len(runs)-1]
		runs = runs[:len(runs)-1]

		minY = min(minY, run.top)
		minX = min(minX, run.x)
		maxX = max(maxX, run.x)
		maxY = max(maxY, run.bottom)

		top, bottom := run.top, run.bottom
		if f.Diagonal {
			top = max(f.Bounds.Min.Y, top-1)
			bottom = min(f.Bounds.Max.Y, bottom+1)
		}

		if run.x > f.Bounds.Min.X {
			runs = f.scan(runs, run.x-1, top, bottom)
		}
		if run.x < f.Bounds.Max.X-1 {
			runs = f.scan(runs, run.x+1, top, bottom)
		}
	}

	f.filled = image.Rect(minX, minY, maxX+1, maxY)
	return f.cells
}

// scan claims every fillable run in column x that touches [top, bottom)
func (f *FloodFill) scan(runs []floodRun, x, top, bottom int) []floodRun {
	p := Point{x, top}
	for p.Y < bottom {
		p.Y = f.strategy.NextFillable(p, bottom)
		if p.Y < bottom {
			run := f.claim(p)
			p.Y = run.bottom
			runs = append(runs, run)
		}
	}
	return runs
}

func (f *FloodFill) claim(p Point) floodRun {
	run := floodRun{
		x:      p.X,
		top:    f.strategy.RunTop(p, f.Bounds.Min.Y),
		bottom: f.strategy.RunBottom(p, f.Bounds.Max.Y),
	}
	f.cells += run.bottom - run.top
	f.strategy.MarkRun(run.x, run.top, run.bottom)
	return run
}

// pathCells fills passable cells of an access map that are not yet visited
type pathCells struct {
	m *AccessMap
}

func (c pathCells) fillable(p Point) bool {
	return c.m.Cost(p) != 0 && !c.m.Has(p, CellVisited)
}

func (c pathCells) RunTop(p Point, minY int) int {
	for ; p.Y > minY; p.Y-- {
		if !c.fillable(Point{p.X, p.Y - 1}) {
			break
		}
	}
	return p.Y
}

func (c pathCells) RunBottom(p Point, maxY int) int {
	for ; p.Y < maxY; p.Y++ {
		if !c.fillable(p) {
			break
		}
	}
	return p.Y
}

func (c pathCells) NextFillable(p Point, maxY int) int {
	for ; p.Y < maxY; p.Y++ {
		if c.fillable(p) {
			break
		}
	}
	return p.Y
}

func (c pathCells) MarkRun(x, top, bottom int) {
	for y := top; y < bottom; y++ {
		c.m.Mark(Point{x, y}, CellVisited)
	}
}

// NewPathFill returns a reachability fill over m. Filling from an origin
// sets CellVisited on every cell the 8-direction search could reach.
func NewPathFill(m *AccessMap) *FloodFill {
	return NewFloodFill(pathCells{m}, image.Rect(0, 0, m.Width, m.Height), true)
}
