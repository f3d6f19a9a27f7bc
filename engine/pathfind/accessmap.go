package pathfind

import "bytes"

// CellFlag is an auxiliary marker stored above the cost bits of a cell
type CellFlag uint8

const (
	// CellVisited is set by PathFill on every reachable cell
	CellVisited CellFlag = 0x20
	// CellTransportExclusion marks cells the transporter cannot enter,
	// and the carved cells of an approach ring
	CellTransportExclusion CellFlag = 0x40
	// CellAirPassable marks cells only reachable aboard an air transport
	CellAirPassable CellFlag = 0x80
)

const (
	costMask = 0x1F
	// MaxCellCost is the largest cost a cell can carry
	MaxCellCost = costMask
)

// AccessMap is a per-agent traversal raster. Each cell holds a cost in the
// low five bits (0 = impassable) and CellFlag markers above it.
type AccessMap struct {
	Width, Height int
	cells         []uint8
}

// NewAccessMap allocates an all-impassable raster
func NewAccessMap(width, height int) *AccessMap {
	return &AccessMap{
		Width:  width,
		Height: height,
		cells:  make([]uint8, width*height),
	}
}

// AccessMapFromRaw wraps a copy of raw cell bytes in row-major order
func AccessMapFromRaw(width, height int, raw []byte) *AccessMap {
	m := NewAccessMap(width, height)
	copy(m.cells, raw)
	return m
}

// Size returns the raster dimensions as a point
func (m *AccessMap) Size() Point { return Point{m.Width, m.Height} }

// Resize reallocates the raster when the dimensions differ and reports
// whether it did.
func (m *AccessMap) Resize(width, height int) bool {
	if m.Width == width && m.Height == height && len(m.cells) == width*height {
		return false
	}
	m.Width, m.Height = width, height
	m.cells = make([]uint8, width*height)
	return true
}

// InBounds checks if a point lies on the raster
func (m *AccessMap) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

func (m *AccessMap) index(p Point) int { return p.Y*m.Width + p.X }

// Cost returns the traversal cost of a cell, 0 when impassable
func (m *AccessMap) Cost(p Point) int {
	return int(m.cells[m.index(p)] & costMask)
}

// Has reports whether a cell carries flag f
func (m *AccessMap) Has(p Point, f CellFlag) bool {
	return m.cells[m.index(p)]&uint8(f) != 0
}

// Set replaces a cell with the given cost and flags
func (m *AccessMap) Set(p Point, cost int, flags CellFlag) {
	m.cells[m.index(p)] = clampCost(cost) | uint8(flags)
}

// SetCost replaces the cost of a cell, keeping its flags
func (m *AccessMap) SetCost(p Point, cost int) {
	i := m.index(p)
	m.cells[i] = m.cells[i]&^costMask | clampCost(cost)
}

// Mark adds flag f to a cell
func (m *AccessMap) Mark(p Point, f CellFlag) {
	m.cells[m.index(p)] |= uint8(f)
}

// Unmark removes flag f from a cell
func (m *AccessMap) Unmark(p Point, f CellFlag) {
	m.cells[m.index(p)] &^= uint8(f)
}

// Block makes a cell impassable and clears its flags
func (m *AccessMap) Block(p Point) {
	m.cells[m.index(p)] = 0
}

// Fill sets every cell to cost with no flags
func (m *AccessMap) Fill(cost int) {
	v := clampCost(cost)
	for i := range m.cells {
		m.cells[i] = v
	}
}

// IsProcessed reports whether p is on the map, passable and not reserved
// for air transport.
func (m *AccessMap) IsProcessed(p Point) bool {
	if !m.InBounds(p) {
		return false
	}
	v := m.cells[m.index(p)]
	return v != 0 && v&uint8(CellAirPassable) == 0
}

// Clone returns an independent copy
func (m *AccessMap) Clone() *AccessMap {
	return AccessMapFromRaw(m.Width, m.Height, m.cells)
}

// Equal reports whether two rasters are byte-identical
func (m *AccessMap) Equal(o *AccessMap) bool {
	return m.Width == o.Width && m.Height == o.Height && bytes.Equal(m.cells, o.cells)
}

// Raw returns a copy of the cell bytes in row-major order
func (m *AccessMap) Raw() []byte {
	return bytes.Clone(m.cells)
}

func clampCost(cost int) uint8 {
	if cost < 0 {
		return 0
	}
	if cost > MaxCellCost {
		return MaxCellCost
	}
	return uint8(cost)
}
