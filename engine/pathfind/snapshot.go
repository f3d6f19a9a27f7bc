package pathfind

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

var (
	colorBlocked     = color.RGBA{0x20, 0x20, 0x24, 0xff}
	colorAirPassable = color.RGBA{0x3c, 0x78, 0xd8, 0xff}
	colorExcluded    = color.RGBA{0xd8, 0x8c, 0x3c, 0xff}
	colorPath        = color.RGBA{0xf0, 0xe0, 0x30, 0xff}
)

// CellColor returns the debug color of a cell: darker greens for higher
// costs, blue for air-transport cells, orange for excluded cells. Visited
// cells are drawn brighter.
func (m *AccessMap) CellColor(p Point) color.RGBA {
	cost := m.Cost(p)
	var c color.RGBA
	switch {
	case cost == 0:
		return colorBlocked
	case m.Has(p, CellAirPassable):
		c = colorAirPassable
	case m.Has(p, CellTransportExclusion):
		c = colorExcluded
	default:
		shade := uint8(0xe0 - cost*0xc0/MaxCellCost)
		c = color.RGBA{0x30, shade, 0x40, 0xff}
	}
	if m.Has(p, CellVisited) {
		c.R = c.R/2 + 0x60
		c.B = c.B/2 + 0x60
	}
	return c
}

// Image renders the raster one pixel per cell, overlaying the cells a path
// from start visits.
func (m *AccessMap) Image(start Point, steps []Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			img.SetRGBA(x, y, m.CellColor(Point{x, y}))
		}
	}
	p := start
	for _, s := range steps {
		p = p.Add(s)
		if m.InBounds(p) {
			img.SetRGBA(p.X, p.Y, colorPath)
		}
	}
	return img
}

// WriteSnapshot encodes the raster as a PNG scaled up by scale
func (m *AccessMap) WriteSnapshot(w io.Writer, start Point, steps []Point, scale int) error {
	if scale < 1 {
		scale = 1
	}
	src := m.Image(start, steps)
	dst := image.NewRGBA(image.Rect(0, 0, m.Width*scale, m.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("encode access map snapshot: %w", err)
	}
	return nil
}
