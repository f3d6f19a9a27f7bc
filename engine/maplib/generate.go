package maplib

import "github.com/aquilax/go-perlin"

// Noise thresholds for generated maps, in [0, 1] heights
const (
	GenWaterLevel = 0.40
	GenCoastLevel = 0.45
	GenRockLevel  = 0.72
	// genScale is the number of tiles per noise unit
	genScale = 11.7
)

// SurfaceForHeight classifies a normalized height
func SurfaceForHeight(h float64) SurfaceType {
	switch {
	case h < GenWaterLevel:
		return SurfaceWater
	case h < GenCoastLevel:
		return SurfaceCoast
	case h >= GenRockLevel:
		return SurfaceNone
	}
	return SurfaceLand
}

// Generate builds a map from Perlin noise. Low ground floods into water
// ringed by coast and peaks become impassable rock. The same seed always
// gives the same map.
func Generate(name string, width, height int, seed int64) *TileMap {
	tm := NewTileMap(name, width, height)
	noise := perlin.NewPerlin(2, 2, 3, seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := (noise.Noise2D(float64(x)/genScale, float64(y)/genScale) + 1) / 2
			h = min(max(h, 0), 1)
			t := &tm.Tiles[y*width+x]
			t.Surface = SurfaceForHeight(h)
			t.Height = int8(h * 8)
		}
	}
	return tm
}
