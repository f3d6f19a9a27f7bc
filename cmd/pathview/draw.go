package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/klei1984/max-sub005/engine/maplib"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/render"
)

func fillTile(screen *ebiten.Image, cam *render.Camera, p pathfind.Point, c color.Color) {
	sx, sy := cam.WorldToScreen(float64(p.X), float64(p.Y))
	ts := cam.TilePixels()
	vector.DrawFilledRect(screen, sx, sy, ts, ts, c, false)
}

// drawMap renders the visible portion of the tile map
func drawMap(screen *ebiten.Image, cam *render.Camera, tm *maplib.TileMap, grid bool) {
	minX, minY, maxX, maxY := cam.VisibleTileRange(tm.Width, tm.Height)
	ts := cam.TilePixels()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			fillTile(screen, cam, pathfind.Point{X: x, Y: y}, render.SurfaceColors[tm.SurfaceAt(x, y)])
			if grid {
				sx, sy := cam.WorldToScreen(float64(x), float64(y))
				vector.StrokeRect(screen, sx, sy, ts, ts, 1, render.GridColor, false)
			}
		}
	}
}

// drawAccess overlays the debug colors of an access map
func drawAccess(screen *ebiten.Image, cam *render.Camera, m *pathfind.AccessMap) {
	minX, minY, maxX, maxY := cam.VisibleTileRange(m.Width, m.Height)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := pathfind.Point{X: x, Y: y}
			fillTile(screen, cam, p, render.Overlay(m, p, 150))
		}
	}
}

// drawSearch shades the cells the forward searcher costed
func drawSearch(screen *ebiten.Image, cam *render.Camera, ctx *pathfind.PathSearchContext) {
	s := ctx.Forward()
	if s == nil {
		return
	}
	m := ctx.Access()
	minX, minY, maxX, maxY := cam.VisibleTileRange(m.Width, m.Height)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := pathfind.Point{X: x, Y: y}
			if c, ok := render.SearchShade(s.CostAt(p)); ok {
				fillTile(screen, cam, p, c)
			}
		}
	}
}

func drawPath(screen *ebiten.Image, cam *render.Camera, start pathfind.Point, steps []pathfind.Point) {
	width := max(cam.TilePixels()/6, 1)
	x0, y0 := cam.WorldToScreen(float64(start.X)+0.5, float64(start.Y)+0.5)
	p := start
	for _, s := range steps {
		p = p.Add(s)
		x1, y1 := cam.WorldToScreen(float64(p.X)+0.5, float64(p.Y)+0.5)
		vector.StrokeLine(screen, x0, y0, x1, y1, width, render.PathColor, false)
		x0, y0 = x1, y1
	}
}

// drawUnits draws units as discs in their team color; air units are rings
func drawUnits(screen *ebiten.Image, cam *render.Camera, units []*pathfind.Unit, selected pathfind.UnitID) {
	ts := cam.TilePixels()
	for _, u := range units {
		cx, cy := cam.WorldToScreen(float64(u.Position.X)+0.5, float64(u.Position.Y)+0.5)
		radius := ts * 0.35
		if u.Is(pathfind.UnitBuilding) {
			cx, cy = cx+ts/2, cy+ts/2
			radius = ts * 0.8
		}
		clr := render.TeamColor(u.Team)
		if u.Is(pathfind.UnitMobileAir) {
			vector.StrokeCircle(screen, cx, cy, radius, 2, clr, false)
		} else {
			vector.DrawFilledCircle(screen, cx, cy, radius, clr, false)
		}
		if u.ID == selected {
			vector.StrokeCircle(screen, cx, cy, radius+3, 2, render.SelectColor, false)
		}
	}
}
