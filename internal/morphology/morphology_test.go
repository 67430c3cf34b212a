package morphology

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// maskFromRows builds a mask from strings where '#' marks a true cell.
func maskFromRows(t *testing.T, rows ...string) *raster.Mask {
	t.Helper()
	m, err := raster.NewMask(len(rows[0]), len(rows))
	require.NoError(t, err)
	for y, row := range rows {
		for x, ch := range row {
			m.Set(x, y, ch == '#')
		}
	}
	return m
}

// rows renders a mask in the format accepted by maskFromRows.
func rows(m *raster.Mask) []string {
	out := make([]string, m.Height)
	for y := 0; y < m.Height; y++ {
		var sb strings.Builder
		for x := 0; x < m.Width; x++ {
			if m.Get(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		out[y] = sb.String()
	}
	return out
}

func filledMask(t *testing.T, width, height int) *raster.Mask {
	t.Helper()
	m, err := raster.NewMask(width, height)
	require.NoError(t, err)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

// randomMask returns a mask with roughly density*100 percent true cells.
func randomMask(t *testing.T, rng *rand.Rand, width, height int, density float64) *raster.Mask {
	t.Helper()
	m, err := raster.NewMask(width, height)
	require.NoError(t, err)
	for i := range m.Bits {
		m.Bits[i] = rng.Float64() < density
	}
	return m
}

// clearBand sets every cell within band of an edge to false.
func clearBand(m *raster.Mask, band int) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x < band || y < band || x >= m.Width-band || y >= m.Height-band {
				m.Set(x, y, false)
			}
		}
	}
}

// subsetInside reports whether a ⊆ b on cells at least band from every edge.
func subsetInside(a, b *raster.Mask, band int) bool {
	for y := band; y < a.Height-band; y++ {
		for x := band; x < a.Width-band; x++ {
			if a.Get(x, y) && !b.Get(x, y) {
				return false
			}
		}
	}
	return true
}

func TestErode(t *testing.T) {
	m := maskFromRows(t,
		".......",
		".#####.",
		".#####.",
		".#####.",
		".####..",
		".#####.",
		".......",
	)

	got, err := Erode(m, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".......",
		".......",
		"..###..",
		"..##...",
		"..##...",
		".......",
		".......",
	}, rows(got))
}

func TestDilate(t *testing.T) {
	m := maskFromRows(t,
		".......",
		".......",
		".......",
		"...#...",
		".......",
		".......",
		"#......",
	)

	got, err := Dilate(m, 1)
	require.NoError(t, err)
	// The corner pixel sits in the dead band; only its interior neighbor
	// picks it up.
	assert.Equal(t, []string{
		".......",
		".......",
		"..###..",
		"..###..",
		"..###..",
		".#.....",
		".......",
	}, rows(got))
}

func TestBorderPolicy(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, radius := range []int{1, 2, 3} {
		for _, m := range []*raster.Mask{
			filledMask(t, 12, 9),
			randomMask(t, rng, 12, 9, 0.5),
		} {
			eroded, err := Erode(m, radius)
			require.NoError(t, err)
			dilated, err := Dilate(m, radius)
			require.NoError(t, err)

			for y := 0; y < m.Height; y++ {
				for x := 0; x < m.Width; x++ {
					if x < radius || y < radius || x >= m.Width-radius || y >= m.Height-radius {
						require.False(t, eroded.Get(x, y), "eroded (%d,%d) r=%d", x, y, radius)
						require.False(t, dilated.Get(x, y), "dilated (%d,%d) r=%d", x, y, radius)
					}
				}
			}
		}
	}
}

func TestFilledMask_KeepsInterior(t *testing.T) {
	m := filledMask(t, 8, 6)
	eroded, err := Erode(m, 2)
	require.NoError(t, err)
	dilated, err := Dilate(m, 2)
	require.NoError(t, err)

	// Only the 4x2 interior is evaluated; it is entirely true.
	assert.Equal(t, 8, eroded.Count())
	assert.True(t, eroded.Equal(dilated))
}

func TestDegenerateRadius(t *testing.T) {
	m := filledMask(t, 5, 5)

	eroded, err := Erode(m, 3)
	require.NoError(t, err)
	dilated, err := Dilate(m, 3)
	require.NoError(t, err)

	assert.Zero(t, eroded.Count())
	assert.Zero(t, dilated.Count())
	assert.True(t, IsDegenerate(5, 5, 3))
}

func TestIsDegenerate(t *testing.T) {
	tests := []struct {
		width, height, radius int
		want                  bool
	}{
		{5, 5, 2, false},
		{5, 5, 3, true},
		{4, 4, 2, true},
		{100, 4, 2, true},
		{100, 5, 2, false},
		{3, 3, 1, false},
		{2, 2, 1, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDegenerate(tt.width, tt.height, tt.radius),
			"%dx%d r=%d", tt.width, tt.height, tt.radius)
	}
}

func TestInvalidRadius(t *testing.T) {
	m := filledMask(t, 5, 5)

	ops := map[string]func(*raster.Mask, int) (*raster.Mask, error){
		"erode":      Erode,
		"dilate":     Dilate,
		"open":       Open,
		"close":      Close,
		"open-close": OpenClose,
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			for _, r := range []int{0, -1} {
				_, err := op(m, r)
				require.ErrorIs(t, err, ErrInvalidRadius)
			}
		})
	}

	_, err := Refine(m, 0)
	require.ErrorIs(t, err, ErrInvalidRadius)
}

func TestInvalidMask(t *testing.T) {
	_, err := Erode(nil, 1)
	require.ErrorIs(t, err, raster.ErrInvalidImage)

	_, err = Dilate(&raster.Mask{Width: 3, Height: 3, Bits: make([]bool, 4)}, 1)
	require.ErrorIs(t, err, raster.ErrInvalidImage)
}

func TestInputNotModified(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	m := randomMask(t, rng, 10, 10, 0.5)
	orig := m.Clone()

	_, err := Refine(m, 1)
	require.NoError(t, err)
	assert.True(t, m.Equal(orig))
}

func TestAlgebraicProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))

	for _, radius := range []int{1, 2} {
		for _, density := range []float64{0.2, 0.5, 0.8, 0.95} {
			for i := 0; i < 10; i++ {
				m := randomMask(t, rng, 17, 13, density)

				eroded, err := Erode(m, radius)
				require.NoError(t, err)
				dilated, err := Dilate(m, radius)
				require.NoError(t, err)
				opened, err := Open(m, radius)
				require.NoError(t, err)
				closed, err := Close(m, radius)
				require.NoError(t, err)

				require.True(t, eroded.SubsetOf(m), "erosion must be anti-extensive")
				require.True(t, subsetInside(m, dilated, radius), "dilation must be extensive inside the band")
				require.True(t, eroded.SubsetOf(dilated))

				require.True(t, opened.SubsetOf(m), "opening must be anti-extensive")
				require.True(t, subsetInside(m, closed, 2*radius), "closing must be extensive away from the band")
			}
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))

	for _, radius := range []int{1, 2} {
		for _, density := range []float64{0.3, 0.6, 0.9} {
			for i := 0; i < 10; i++ {
				m := randomMask(t, rng, 20, 16, density)
				clearBand(m, radius)

				once, err := Open(m, radius)
				require.NoError(t, err)
				twice, err := Open(once, radius)
				require.NoError(t, err)
				require.True(t, once.Equal(twice), "r=%d density=%.1f\n%s\nvs\n%s",
					radius, density, strings.Join(rows(once), "\n"), strings.Join(rows(twice), "\n"))
			}
		}
	}
}

func TestOpen_IdempotentOnOwnOutput(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	// Unrestricted masks: the first opening already clears the band, so the
	// second and third agree.
	for i := 0; i < 20; i++ {
		m := randomMask(t, rng, 15, 15, 0.85)
		once, err := Open(m, 1)
		require.NoError(t, err)
		twice, err := Open(once, 1)
		require.NoError(t, err)
		thrice, err := Open(twice, 1)
		require.NoError(t, err)
		require.True(t, twice.Equal(thrice))
	}
}

func TestOpen_BandTouchingMask(t *testing.T) {
	// A blob hugging the left edge survives one opening only partially, and
	// the survivor no longer fits the structuring element inside the band.
	m := maskFromRows(t,
		"###....",
		"###....",
		"###....",
		".......",
		".......",
	)

	once, err := Open(m, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".......",
		".##....",
		".##....",
		".......",
		".......",
	}, rows(once))

	twice, err := Open(once, 1)
	require.NoError(t, err)
	assert.Zero(t, twice.Count())
}

func TestOpen_RemovesSpeck(t *testing.T) {
	m := maskFromRows(t,
		"..........",
		".#####....",
		".#####....",
		".#####..#.",
		".#####....",
		".#####....",
		"..........",
	)

	got, err := Open(m, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"..........",
		".#####....",
		".#####....",
		".#####....",
		".#####....",
		".#####....",
		"..........",
	}, rows(got))
}

func TestClose_FillsHole(t *testing.T) {
	m := maskFromRows(t,
		"#########",
		"#########",
		"#########",
		"#########",
		"####.####",
		"#########",
		"#########",
		"#########",
		"#########",
	)

	got, err := Close(m, 1)
	require.NoError(t, err)
	// The hole is filled; only cells at least 2r from the edges are
	// guaranteed to survive the two banded passes.
	assert.True(t, got.Get(4, 4))
	for y := 2; y < 7; y++ {
		for x := 2; x < 7; x++ {
			assert.True(t, got.Get(x, y), "(%d,%d)", x, y)
		}
	}
	assert.False(t, got.Get(0, 0))
}

func TestOpenClose_IsCloseOfOpen(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	m := randomMask(t, rng, 14, 14, 0.7)

	opened, err := Open(m, 1)
	require.NoError(t, err)
	want, err := Close(opened, 1)
	require.NoError(t, err)

	got, err := OpenClose(m, 1)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestRefine(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 4))
	m := randomMask(t, rng, 16, 12, 0.6)

	ref, err := Refine(m, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Radius)
	assert.False(t, ref.Degenerate)

	eroded, _ := Erode(m, 2)
	dilated, _ := Dilate(m, 2)
	opened, _ := Open(m, 2)
	closed, _ := Close(m, 2)
	openedClosed, _ := OpenClose(m, 2)

	assert.True(t, ref.Eroded.Equal(eroded))
	assert.True(t, ref.Dilated.Equal(dilated))
	assert.True(t, ref.Opened.Equal(opened))
	assert.True(t, ref.Closed.Equal(closed))
	assert.True(t, ref.OpenedClosed.Equal(openedClosed))

	ref.Eroded.Bits[ref.Eroded.Width*3+3] = !ref.Eroded.Bits[ref.Eroded.Width*3+3]
	assert.True(t, ref.Opened.Equal(opened), "variants must not share storage")
}

func TestRefine_Degenerate(t *testing.T) {
	ref, err := Refine(filledMask(t, 5, 5), 3)
	require.NoError(t, err)
	assert.True(t, ref.Degenerate)
	for _, v := range []*raster.Mask{ref.Eroded, ref.Dilated, ref.Opened, ref.Closed, ref.OpenedClosed} {
		assert.Zero(t, v.Count())
	}
}
