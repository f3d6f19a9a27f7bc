package render

import (
	"image/color"

	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
)

// SurfaceColors maps surfaces to their flat colors
var SurfaceColors = map[maplib.SurfaceType]color.RGBA{
	maplib.SurfaceNone:  {40, 40, 40, 255},
	maplib.SurfaceLand:  {110, 140, 70, 255},
	maplib.SurfaceWater: {30, 90, 170, 255},
	maplib.SurfaceCoast: {200, 190, 130, 255},
}

var teamColors = []color.RGBA{
	{60, 120, 255, 255},
	{230, 60, 50, 255},
	{240, 200, 40, 255},
	{80, 210, 90, 255},
}

var (
	GridColor   = color.RGBA{0, 0, 0, 40}
	PathColor   = color.RGBA{240, 224, 48, 255}
	SelectColor = color.RGBA{0, 255, 0, 200}
)

// TeamColor returns the unit color of a team, cycling for higher teams
func TeamColor(team pathfind.TeamID) color.RGBA {
	i := int(team) % len(teamColors)
	if i < 0 {
		i += len(teamColors)
	}
	return teamColors[i]
}

// Overlay returns the debug color of an access map cell at the given
// opacity, premultiplied for drawing
func Overlay(m *pathfind.AccessMap, p pathfind.Point, alpha uint8) color.RGBA {
	c := m.CellColor(p)
	c.A = alpha
	return Premultiply(c)
}

// SearchShade returns the color of a cell the forward search costed, and
// false for cells it never reached
func SearchShade(cost int) (color.RGBA, bool) {
	if cost >= pathfind.CostUnvisited {
		return color.RGBA{}, false
	}
	shade := uint8(min(cost*4, 200))
	return Premultiply(color.RGBA{shade, 40, 200 - shade, 90}), true
}

// Premultiply converts a straight alpha color for ebiten's blending
func Premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{uint8(uint16(c.R) * a / 255), uint8(uint16(c.G) * a / 255), uint8(uint16(c.B) * a / 255), c.A}
}
