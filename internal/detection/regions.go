package detection

import (
	"sort"

	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), so Width = X2 - X1.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Region is one connected blob of true mask cells.
type Region struct {
	// Bounds is the bounding box enclosing every cell of the region.
	Bounds Bounds `json:"bounds"`

	// Center is the centroid of the region's cells, rounded down.
	Center Point `json:"center"`

	// Area is the number of cells in the region.
	Area int `json:"area"`

	// Coverage is Area relative to the whole mask (0-100).
	Coverage float64 `json:"coverage"`
}

// FindRegions groups the true cells of mask into 8-connected regions.
//
// Parameters:
//   - mask: The mask to label. It is not modified.
//   - minArea: Regions with fewer cells are dropped. Values below 1 are
//     treated as 1.
//
// Returns the regions sorted by area, largest first. Ties keep scan order
// (top-to-bottom, left-to-right by first cell).
//
// # Algorithm
//
// Every unvisited true cell seeds an iterative flood fill that marks and
// collects all cells reachable through the 8 neighbors. The explicit stack
// keeps large regions from exhausting the goroutine stack.
func FindRegions(mask *raster.Mask, minArea int) ([]Region, error) {
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if minArea < 1 {
		minArea = 1
	}

	width, height := mask.Width, mask.Height
	visited := make([]bool, len(mask.Bits))
	total := float64(len(mask.Bits))
	regions := make([]Region, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask.Bits[y*width+x] || visited[y*width+x] {
				continue
			}
			region := floodFill(mask, visited, x, y)
			if region.Area < minArea {
				continue
			}
			region.Coverage = float64(region.Area) / total * 100
			regions = append(regions, region)
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area > regions[j].Area
	})

	return regions, nil
}

// floodFill collects the 8-connected region containing (startX, startY) and
// marks its cells as visited.
func floodFill(mask *raster.Mask, visited []bool, startX, startY int) Region {
	width, height := mask.Width, mask.Height
	stack := []Point{{X: startX, Y: startY}}

	minX, minY := startX, startY
	maxX, maxY := startX, startY
	var sumX, sumY, area int

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		idx := p.Y*width + p.X
		if visited[idx] || !mask.Bits[idx] {
			continue
		}
		visited[idx] = true

		area++
		sumX += p.X
		sumY += p.Y
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return Region{
		Bounds: Bounds{X1: minX, Y1: minY, X2: maxX + 1, Y2: maxY + 1},
		Center: Point{X: sumX / area, Y: sumY / area},
		Area:   area,
	}
}
