package pdfutils

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/extractor"
	"github.com/mgmeyers/unipdf/v3/model"
)

// Display space is what a rasterizer shows: origin at the top left of the
// rotated page, y growing downward, one unit per point.

func pageRotation(page *model.PdfPage) int64 {
	if page.Rotate == nil {
		return 0
	}

	return ((*page.Rotate % 360) + 360) % 360
}

func mediaBox(page *model.PdfPage) *model.PdfRectangle {
	if page.MediaBox != nil {
		return page.MediaBox
	}

	if mb, err := page.GetMediaBox(); err == nil && mb != nil {
		return mb
	}

	// US Letter, as readers assume when a page has no media box.
	return &model.PdfRectangle{Llx: 0, Lly: 0, Urx: 612, Ury: 792}
}

// PageSize returns the page's display width and height.
func PageSize(page *model.PdfPage) r2.Point {
	mb := mediaBox(page)
	width := mb.Width()
	height := mb.Height()

	if angle := pageRotation(page); angle == 90 || angle == 270 {
		width, height = height, width
	}

	return r2.Point{X: width, Y: height}
}

// DisplayToUser maps a display-space point to PDF user space.
func DisplayToUser(page *model.PdfPage, pt r2.Point) r2.Point {
	mb := mediaBox(page)
	width := mb.Width()
	height := mb.Height()

	var x, y float64

	switch pageRotation(page) {
	case 90:
		x, y = pt.Y, pt.X
	case 180:
		x, y = width-pt.X, pt.Y
	case 270:
		x, y = width-pt.Y, height-pt.X
	default:
		// the rasterizer's y-axis is oriented at the top
		x, y = pt.X, height-pt.Y
	}

	return r2.Point{X: mb.Llx + x, Y: mb.Lly + y}
}

// UserToDisplay is the inverse of DisplayToUser.
func UserToDisplay(page *model.PdfPage, pt r2.Point) r2.Point {
	mb := mediaBox(page)
	width := mb.Width()
	height := mb.Height()
	x := pt.X - mb.Llx
	y := pt.Y - mb.Lly

	switch pageRotation(page) {
	case 90:
		return r2.Point{X: y, Y: x}
	case 180:
		return r2.Point{X: width - x, Y: y}
	case 270:
		return r2.Point{X: height - y, Y: width - x}
	default:
		return r2.Point{X: x, Y: height - y}
	}
}

// DisplayRectToUser maps a display-space rect to a user-space rect.
func DisplayRectToUser(page *model.PdfPage, rect r2.Rect) r2.Rect {
	return r2.RectFromPoints(
		DisplayToUser(page, rect.Lo()),
		DisplayToUser(page, rect.Hi()),
	)
}

func RectToPdfObject(rect r2.Rect) *core.PdfObjectArray {
	return core.MakeArrayFromFloats([]float64{rect.X.Lo, rect.Y.Lo, rect.X.Hi, rect.Y.Hi})
}

// QuadPoints returns the single quadrilateral covering rect, in the
// upper-left, upper-right, lower-left, lower-right order readers expect.
func QuadPoints(rect r2.Rect) *core.PdfObjectArray {
	return core.MakeArrayFromFloats([]float64{
		rect.X.Lo, rect.Y.Hi,
		rect.X.Hi, rect.Y.Hi,
		rect.X.Lo, rect.Y.Lo,
		rect.X.Hi, rect.Y.Lo,
	})
}

func IsWithinOverlapThresh(annot r2.Rect, mark r2.Rect) bool {
	markSize := getArea(mark)
	intersect := getArea(annot.Intersection(mark))

	return intersect/markSize >= 0.5
}

func getArea(r r2.Rect) float64 {
	s := r.Size()
	return s.X * s.Y
}

func GetMarkRect(mark extractor.TextMark) r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: mark.BBox.Llx, Y: mark.BBox.Lly},
		r2.Point{X: mark.BBox.Urx, Y: mark.BBox.Ury},
	)
}

func GetAnnotationRects(annotation *model.PdfAnnotation) []r2.Rect {
	hl, ok := annotation.GetContext().(*model.PdfAnnotationHighlight)
	if !ok {
		return nil
	}

	qp, ok := hl.QuadPoints.(*core.PdfObjectArray)
	if !ok {
		return nil
	}

	coords, err := qp.GetAsFloat64Slice()
	if err != nil {
		return nil
	}

	rects := []r2.Rect{}
	ptHolder := []r2.Point{}

	for i := 0; i+1 < len(coords); i += 2 {
		ptHolder = append(ptHolder, r2.Point{X: coords[i], Y: coords[i+1]})

		if len(ptHolder) == 4 {
			rects = append(rects, r2.RectFromPoints(ptHolder...))
			ptHolder = ptHolder[:0]
		}
	}

	return rects
}

func GetCoordinates(annotation *model.PdfAnnotation) (float64, float64) {
	objArr, ok := annotation.Rect.(*core.PdfObjectArray)
	if !ok {
		return 0.0, 0.0
	}

	annotRect, err := objArr.ToFloat64Array()
	if err != nil || len(annotRect) < 4 {
		return 0.0, 0.0
	}

	x := math.Round(math.Min(annotRect[0], annotRect[2])*100) / 100
	y := math.Round(math.Min(annotRect[1], annotRect[3])*100) / 100

	return x, y
}
