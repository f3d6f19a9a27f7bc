package pathfind

// Point represents a 2D integer grid coordinate
type Point struct{ X, Y int }

// Add returns p offset by q
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p minus q
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Direction is one of the eight grid headings, clockwise from north.
// Odd directions are diagonal.
type Direction uint8

const (
	DirNorth Direction = iota
	DirNorthEast
	DirEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
	DirCount

	DirInvalid Direction = 0xFF
)

// DirectionOffsets maps a direction to its unit step
var DirectionOffsets = [DirCount]Point{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Offset returns the unit step for d
func (d Direction) Offset() Point { return DirectionOffsets[d] }

// Diagonal reports whether d moves along both axes
func (d Direction) Diagonal() bool { return d&1 == 1 }

// LineDistance is the octile distance between a and b in half steps:
// a cardinal step counts 2 and a diagonal step counts 3.
func LineDistance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return 2*dx + dy
	}
	return 2*dy + dx
}

// SquaredDistance returns the squared euclidean distance between a and b
func SquaredDistance(a, b Point) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// ChebyshevDistance returns the king-move distance between a and b
func ChebyshevDistance(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// diagonalCost scales a cardinal cost for a diagonal step
func diagonalCost(c int) int { return c * 3 / 2 }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
