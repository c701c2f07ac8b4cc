package pdfdoc

import (
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/mgmeyers/unipdf/v3/annotator"
	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/contentstream/draw"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/pdfutils"
)

// annotation flag bit 3: print the annotation with the page
const flagPrint = 4

var now = time.Now

func stamp(annot *model.PdfAnnotation, clr pdfutils.RGB) {
	annot.NM = core.MakeString(uuid.New().String())
	annot.M = pdfutils.FormatDate(now())
	annot.F = core.MakeInteger(flagPrint)
	annot.C = clr.ToPdfObject()
}

// commit appends annot to a page and refreshes the rasterizer. On failure the
// page's annotation list is restored.
func (d *Document) commit(index int, annot *model.PdfAnnotation) error {
	page, err := d.page(index)
	if err != nil {
		return err
	}

	before, err := page.GetAnnotations()
	if err != nil {
		return errors.Wrap(err, "read page annotations")
	}
	saved := make([]*model.PdfAnnotation, len(before))
	copy(saved, before)

	page.AddAnnotation(annot)

	if err := d.refresh(); err != nil {
		page.SetAnnotations(saved)
		return err
	}

	return nil
}

func highlightAppearance(rect r2.Rect, clr pdfutils.RGB) (*core.PdfObjectDictionary, error) {
	size := rect.Size()

	cc := contentstream.NewContentCreator()
	cc.Add_q().
		Add_gs("GS0").
		Add_rg(clr.R, clr.G, clr.B).
		Add_re(rect.X.Lo, rect.Y.Lo, size.X, size.Y).
		Add_f().
		Add_Q()

	gs := core.MakeDict()
	gs.Set("Type", core.MakeName("ExtGState"))
	gs.Set("BM", core.MakeName("Multiply"))

	resources := model.NewPdfPageResources()
	if err := resources.AddExtGState("GS0", gs); err != nil {
		return nil, err
	}

	form := model.NewXObjectForm()
	form.BBox = pdfutils.RectToPdfObject(rect)
	form.Resources = resources

	if err := form.SetContentStream(cc.Bytes(), core.NewRawEncoder()); err != nil {
		return nil, err
	}

	ap := core.MakeDict()
	ap.Set("N", form.ToPdfObject())

	return ap, nil
}

// AddHighlight places a highlight over rect, given in display space.
func (d *Document) AddHighlight(index int, rect r2.Rect, clr pdfutils.RGB) error {
	page, err := d.page(index)
	if err != nil {
		return err
	}

	user := pdfutils.DisplayRectToUser(page, rect)
	if size := user.Size(); !user.IsValid() || size.X <= 0 || size.Y <= 0 {
		return errors.Errorf("empty highlight rect %v", rect)
	}

	ap, err := highlightAppearance(user, clr)
	if err != nil {
		return errors.Wrap(err, "highlight appearance")
	}

	hl := model.NewPdfAnnotationHighlight()
	stamp(hl.PdfAnnotation, clr)
	hl.Rect = pdfutils.RectToPdfObject(user)
	hl.QuadPoints = pdfutils.QuadPoints(user)
	hl.AP = ap

	if err := d.commit(index, hl.PdfAnnotation); err != nil {
		return errors.Wrap(err, "add highlight")
	}

	d.log.WithFields(logrus.Fields{
		"page":  index,
		"rect":  rect,
		"color": clr.Hex(),
	}).Debug("highlight annotation added")

	return nil
}

// AddDot places a circle of the given radius centered on a display-space point.
func (d *Document) AddDot(index int, center r2.Point, radius float64, clr pdfutils.RGB) error {
	page, err := d.page(index)
	if err != nil {
		return err
	}

	user := pdfutils.DisplayToUser(page, center)

	annot, err := annotator.CreateCircleAnnotation(annotator.CircleAnnotationDef{
		X:             user.X - radius,
		Y:             user.Y - radius,
		Width:         2 * radius,
		Height:        2 * radius,
		FillEnabled:   true,
		FillColor:     clr.DeviceRGB(),
		BorderEnabled: true,
		BorderWidth:   1,
		BorderColor:   clr.DeviceRGB(),
		Opacity:       1.0,
	})
	if err != nil {
		return errors.Wrap(err, "create dot")
	}

	// the annotator offsets Rect by X,Y a second time; the appearance BBox is right
	annot.Rect = pdfutils.RectToPdfObject(r2.RectFromCenterSize(user, r2.Point{X: 2 * radius, Y: 2 * radius}))
	stamp(annot, clr)

	if err := d.commit(index, annot); err != nil {
		return errors.Wrap(err, "add dot")
	}

	d.log.WithFields(logrus.Fields{
		"page":   index,
		"center": center,
		"color":  clr.Hex(),
	}).Debug("dot annotation added")

	return nil
}

// AddLine draws a straight line annotation between two display-space points.
func (d *Document) AddLine(index int, from, to r2.Point, width float64, clr pdfutils.RGB) error {
	page, err := d.page(index)
	if err != nil {
		return err
	}

	p1 := pdfutils.DisplayToUser(page, from)
	p2 := pdfutils.DisplayToUser(page, to)

	annot, err := annotator.CreateLineAnnotation(annotator.LineAnnotationDef{
		X1:               p1.X,
		Y1:               p1.Y,
		X2:               p2.X,
		Y2:               p2.Y,
		LineColor:        clr.DeviceRGB(),
		Opacity:          1.0,
		LineWidth:        width,
		LineEndingStyle1: draw.LineEndingStyleNone,
		LineEndingStyle2: draw.LineEndingStyleNone,
	})
	if err != nil {
		return errors.Wrap(err, "create line")
	}

	stamp(annot, clr)

	if err := d.commit(index, annot); err != nil {
		return errors.Wrap(err, "add line")
	}

	d.log.WithFields(logrus.Fields{
		"page":  index,
		"from":  from,
		"to":    to,
		"color": clr.Hex(),
	}).Debug("line annotation added")

	return nil
}
