package maplib

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// SurfaceType is the terrain class of a tile. Unit movement classes are
// expressed as a mask of the same values.
type SurfaceType uint8

const (
	SurfaceNone  SurfaceType = 0
	SurfaceLand  SurfaceType = 1 << 0
	SurfaceWater SurfaceType = 1 << 1
	SurfaceCoast SurfaceType = 1 << 2
	SurfaceAir   SurfaceType = 1 << 3
)

// ErrBadMap is returned when a map file does not describe a usable grid
var ErrBadMap = errors.New("maplib: malformed map")

func (s SurfaceType) String() string {
	switch s {
	case SurfaceNone:
		return "none"
	case SurfaceLand:
		return "land"
	case SurfaceWater:
		return "water"
	case SurfaceCoast:
		return "coast"
	case SurfaceAir:
		return "air"
	}
	return fmt.Sprintf("surface(%#x)", uint8(s))
}

// Tile represents a single map tile
type Tile struct {
	Surface SurfaceType `json:"surface"`
	Height  int8        `json:"height"` // elevation level, cosmetic
}

// TileMap represents the game map
type TileMap struct {
	Name   string `json:"name"`
	Author string `json:"author"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`

	StartPositions []StartPos `json:"start_positions"`
	Description    string     `json:"description"`
}

// StartPos defines a team start position
type StartPos struct {
	Team int `json:"team"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// NewTileMap creates a map where every tile is land
func NewTileMap(name string, width, height int) *TileMap {
	tm := &TileMap{
		Name:   name,
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for i := range tm.Tiles {
		tm.Tiles[i].Surface = SurfaceLand
	}
	return tm
}

// ParseRows builds a map from text rows: '.' land, '~' water, ',' coast,
// anything else is an unusable tile.
func ParseRows(name string, rows []string) (*TileMap, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("parse %q: %w", name, ErrBadMap)
	}
	tm := NewTileMap(name, len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != tm.Width {
			return nil, fmt.Errorf("parse %q row %d: width %d, want %d: %w", name, y, len(row), tm.Width, ErrBadMap)
		}
		for x, c := range []byte(row) {
			s := SurfaceNone
			switch c {
			case '.':
				s = SurfaceLand
			case '~':
				s = SurfaceWater
			case ',':
				s = SurfaceCoast
			}
			tm.Tiles[y*tm.Width+x].Surface = s
		}
	}
	return tm, nil
}

// At returns a pointer to the tile at (x, y)
func (tm *TileMap) At(x, y int) *Tile {
	if x < 0 || y < 0 || x >= tm.Width || y >= tm.Height {
		return nil
	}
	return &tm.Tiles[y*tm.Width+x]
}

// InBounds checks if coordinates are within map bounds
func (tm *TileMap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < tm.Width && y < tm.Height
}

// SurfaceAt returns the surface of a tile, SurfaceNone outside the map
func (tm *TileMap) SurfaceAt(x, y int) SurfaceType {
	t := tm.At(x, y)
	if t == nil {
		return SurfaceNone
	}
	return t.Surface
}

// SetSurface sets the surface for a rectangular region (inclusive)
func (tm *TileMap) SetSurface(x1, y1, x2, y2 int, s SurfaceType) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if t := tm.At(x, y); t != nil {
				t.Surface = s
			}
		}
	}
}

// SaveJSON saves the map to a JSON file
func (tm *TileMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(tm, "", "  ")
	if err != nil {
		return fmt.Errorf("encode map %q: %w", tm.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON loads a map from a JSON file
func LoadJSON(path string) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tm TileMap
	if err := json.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("decode map %s: %w", path, err)
	}
	if tm.Width <= 0 || tm.Height <= 0 || len(tm.Tiles) != tm.Width*tm.Height {
		return nil, fmt.Errorf("load map %s: %dx%d with %d tiles: %w", path, tm.Width, tm.Height, len(tm.Tiles), ErrBadMap)
	}
	return &tm, nil
}
