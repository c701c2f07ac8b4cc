package viewer

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/nfnt/resize"

	"github.com/mgmeyers/pdfmark/config"
)

// Viewport places a rendered page inside the canvas. Scene coordinates are
// pixels of the rendered image; view coordinates are canvas pixels.
type Viewport struct {
	Width  float64
	Height float64
	Fit    float64
	Offset r2.Point
}

func newViewport(w config.Window) Viewport {
	return Viewport{
		Width:  w.Width,
		Height: w.Height - w.Toolbar - w.Strip,
		Fit:    1,
	}
}

// FitTo scales an iw x ih image to the largest size that fits the canvas,
// keeping its aspect ratio, and centers it.
func (v Viewport) FitTo(iw, ih float64) Viewport {
	if iw <= 0 || ih <= 0 {
		v.Fit = 1
		v.Offset = r2.Point{}
		return v
	}

	v.Fit = math.Min(v.Width/iw, v.Height/ih)
	v.Offset = r2.Point{
		X: (v.Width - iw*v.Fit) / 2,
		Y: (v.Height - ih*v.Fit) / 2,
	}

	return v
}

func (v Viewport) ViewToScene(p r2.Point) r2.Point {
	return p.Sub(v.Offset).Mul(1 / v.Fit)
}

func (v Viewport) SceneToView(p r2.Point) r2.Point {
	return p.Mul(v.Fit).Add(v.Offset)
}

// Scale resizes a rendered image to its on-canvas size.
func (v Viewport) Scale(img image.Image) image.Image {
	b := img.Bounds()
	w := uint(math.Round(float64(b.Dx()) * v.Fit))
	h := uint(math.Round(float64(b.Dy()) * v.Fit))

	if w == 0 || h == 0 || (int(w) == b.Dx() && int(h) == b.Dy()) {
		return img
	}

	return resize.Resize(w, h, img, resize.Lanczos3)
}

// ScreenToPage maps a window point to page space at the given zoom.
func ScreenToPage(win config.Window, v Viewport, zoom float64, pt r2.Point) r2.Point {
	view := r2.Point{X: pt.X, Y: pt.Y - win.Toolbar}
	return v.ViewToScene(view).Mul(1 / zoom)
}

// PageToScreen is the inverse of ScreenToPage.
func PageToScreen(win config.Window, v Viewport, zoom float64, pt r2.Point) r2.Point {
	view := v.SceneToView(pt.Mul(zoom))
	return r2.Point{X: view.X, Y: view.Y + win.Toolbar}
}

// OnCanvas reports whether a window point lies between the toolbar and the
// bottom strip.
func OnCanvas(win config.Window, pt r2.Point) bool {
	return pt.Y > win.Toolbar && pt.Y < win.Height-win.Strip
}

func clampToPage(size r2.Point, pt r2.Point) r2.Point {
	bounds := r2.RectFromPoints(r2.Point{}, size)
	return bounds.ClampPoint(pt)
}

// HighlightRect spans start and end. Rects narrower or shorter than one unit
// become a fallback x fallback square anchored at start.
func HighlightRect(start, end r2.Point, fallback float64) r2.Rect {
	rect := r2.RectFromPoints(start, end)
	size := rect.Size()

	if rect.IsEmpty() || !rect.IsValid() || size.X < 1 || size.Y < 1 {
		return r2.RectFromPoints(start, start.Add(r2.Point{X: fallback, Y: fallback}))
	}

	return rect
}

// PencilEnd treats a stroke shorter than one unit on both axes as a click and
// returns a diagonal end point fallback units away from start.
func PencilEnd(start, end r2.Point, fallback float64) r2.Point {
	if math.Abs(start.X-end.X) < 1 && math.Abs(start.Y-end.Y) < 1 {
		return start.Add(r2.Point{X: fallback, Y: fallback})
	}

	return end
}
