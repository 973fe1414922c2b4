package report

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// ============ COLORMAP ============

// Colormap maps [0, 1] onto a piecewise Lab blend of its stops. The first
// stop colours 0, the last colours 1.
type Colormap []colorful.Color

// DefaultColormap runs from dark blue through teal to yellow.
func DefaultColormap() Colormap {
	return Colormap{
		colorful.MustParseHex("#440154"),
		colorful.MustParseHex("#21918c"),
		colorful.MustParseHex("#fde725"),
	}
}

// Monotone returns a copy of the stops ordered by CIE L*, darkest first, so
// the ramp brightens with success whatever order the stops were given in.
func (c Colormap) Monotone() Colormap {
	out := slices.Clone(c)
	slices.SortStableFunc(out, func(a, b colorful.Color) int {
		return cmp.Compare(lightness(a), lightness(b))
	})
	return out
}

func lightness(c colorful.Color) float64 {
	l, _, _ := c.Lab()
	return l
}

func (c Colormap) At(v float64) color.RGBA {
	switch len(c) {
	case 0:
		g := gray(v)
		return color.RGBA{R: g, G: g, B: g, A: 255}
	case 1:
		r, g, b := c[0].Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	v = clamp01(v)
	seg := v * float64(len(c)-1)
	i := min(int(seg), len(c)-2)
	col := c[i].BlendLab(c[i+1], seg-float64(i)).Clamped()
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ============ RENDER ============

type RenderOptions struct {
	// Edge length of one grid cell in pixels. Values below 1 mean 1.
	CellSize int
	// Nil renders grey levels, black at 0 and white at 1. Stops are used in
	// order of lightness.
	Colormap Colormap
}

// Render draws a [rho][delta] success map with rho index 0 on the bottom
// row and delta index 0 on the left.
func Render(m *mat.Dense, opt RenderOptions) image.Image {
	r, c := m.Dims()
	var cells draw.Image
	if opt.Colormap == nil {
		g := image.NewGray(image.Rect(0, 0, c, r))
		for i := range r {
			for j := range c {
				g.SetGray(j, r-1-i, color.Gray{Y: gray(m.At(i, j))})
			}
		}
		cells = g
	} else {
		cmap := opt.Colormap.Monotone()
		rgba := image.NewRGBA(image.Rect(0, 0, c, r))
		for i := range r {
			for j := range c {
				rgba.SetRGBA(j, r-1-i, cmap.At(m.At(i, j)))
			}
		}
		cells = rgba
	}
	size := max(opt.CellSize, 1)
	if size == 1 {
		return cells
	}
	var dst draw.Image
	bounds := image.Rect(0, 0, c*size, r*size)
	if opt.Colormap == nil {
		dst = image.NewGray(bounds)
	} else {
		dst = image.NewRGBA(bounds)
	}
	draw.NearestNeighbor.Scale(dst, bounds, cells, cells.Bounds(), draw.Src, nil)
	return dst
}

func gray(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}

// ============ ENCODE ============

// SaveImage encodes img by the extension of filename: png, jpg/jpeg, bmp or
// tif/tiff.
func SaveImage(img image.Image, filename string) (err error) {
	var encode func(*os.File) error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error { return tiff.Encode(f, img, nil) }
	default:
		return fmt.Errorf("%w: unsupported image format %q", ErrRender, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrRender, cerr)
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrRender, filename, err)
	}
	return nil
}

// SaveColorbar writes the legend of the images Render draws with cmap: steps
// tiles of tileSize pixels, from the colour of 0 on the left to the colour of
// 1 on the right. A nil cmap gives the grey ramp. Zero steps or tileSize
// mean 11 steps of 16 pixels.
func SaveColorbar(cmap Colormap, steps, tileSize int, filename string) error {
	if steps == 0 {
		steps = 11
	}
	if steps < 2 {
		return fmt.Errorf("%w: colorbar needs at least 2 steps, got %d", ErrRender, steps)
	}
	if tileSize <= 0 {
		tileSize = 16
	}
	w := tileSize * steps
	h := tileSize
	cmap = cmap.Monotone()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range steps {
		c := cmap.At(float64(i) / float64(steps-1))
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return SaveImage(img, filename)
}
