package render

import (
	"math"

	"github.com/klei1984/max-sub005/engine/pathfind"
)

// Camera represents the viewport onto the top-down tile grid
type Camera struct {
	X, Y     float64 // camera center position (world pixels at zoom 1)
	Zoom     float64 // zoom level (1.0 = default)
	MinZoom  float64
	MaxZoom  float64
	ScreenW  int     // viewport width in pixels
	ScreenH  int     // viewport height in pixels
	Speed    float64 // pan speed (pixels per second)
	TileSize int
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH, tileSize int) *Camera {
	return &Camera{
		Zoom:     1.0,
		MinZoom:  0.25,
		MaxZoom:  4.0,
		ScreenW:  screenW,
		ScreenH:  screenH,
		Speed:    500,
		TileSize: tileSize,
	}
}

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms while keeping the world point under the screen position
// in place
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	ts := float64(c.TileSize)
	c.X += (wx - wx2) * ts
	c.Y += (wy - wy2) * ts
}

// CenterOn centers the camera on a tile position
func (c *Camera) CenterOn(wx, wy float64) {
	ts := float64(c.TileSize)
	c.X = wx * ts
	c.Y = wy * ts
}

// WorldToScreen converts tile coordinates to a screen pixel position
func (c *Camera) WorldToScreen(wx, wy float64) (float32, float32) {
	ts := float64(c.TileSize)
	sx := (wx*ts-c.X)*c.Zoom + float64(c.ScreenW)/2
	sy := (wy*ts-c.Y)*c.Zoom + float64(c.ScreenH)/2
	return float32(sx), float32(sy)
}

// ScreenToWorld converts a screen pixel to tile coordinates
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	ts := float64(c.TileSize)
	wx := ((float64(sx)-float64(c.ScreenW)/2)/c.Zoom + c.X) / ts
	wy := ((float64(sy)-float64(c.ScreenH)/2)/c.Zoom + c.Y) / ts
	return wx, wy
}

// ScreenToTile returns the cell under a screen pixel
func (c *Camera) ScreenToTile(sx, sy int) pathfind.Point {
	wx, wy := c.ScreenToWorld(sx, sy)
	return pathfind.Point{X: int(math.Floor(wx)), Y: int(math.Floor(wy))}
}

// TilePixels returns the on-screen edge length of a tile
func (c *Camera) TilePixels() float32 { return float32(float64(c.TileSize) * c.Zoom) }

// VisibleTileRange returns the range of tiles visible on screen
func (c *Camera) VisibleTileRange(mapW, mapH int) (minX, minY, maxX, maxY int) {
	lo := c.ScreenToTile(0, 0)
	hi := c.ScreenToTile(c.ScreenW, c.ScreenH)
	minX, minY = max(lo.X, 0), max(lo.Y, 0)
	maxX, maxY = min(hi.X, mapW-1), min(hi.Y, mapH-1)
	return
}
