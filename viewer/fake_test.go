package viewer

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/pdfutils"
)

type highlightCall struct {
	Page  int
	Rect  r2.Rect
	Color pdfutils.RGB
}

type dotCall struct {
	Page   int
	Center r2.Point
	Radius float64
	Color  pdfutils.RGB
}

type lineCall struct {
	Page     int
	From, To r2.Point
	Width    float64
	Color    pdfutils.RGB
}

type fakeDoc struct {
	sizes []r2.Point

	highlights []highlightCall
	dots       []dotCall
	lines      []lineCall
	renders    int
	savedTo    []string
	closed     bool

	annotateErr error
	renderErr   error
	saveErr     error
	closeErr    error
}

func newFakeDoc(pages int) *fakeDoc {
	sizes := make([]r2.Point, pages)
	for i := range sizes {
		sizes[i] = r2.Point{X: 600, Y: 800}
	}
	return &fakeDoc{sizes: sizes}
}

func (d *fakeDoc) NumPages() int { return len(d.sizes) }

func (d *fakeDoc) PageSize(index int) (r2.Point, error) {
	if index < 0 || index >= len(d.sizes) {
		return r2.Point{}, errors.New("page out of range")
	}
	return d.sizes[index], nil
}

func (d *fakeDoc) Render(index int, zoom float64) (image.Image, error) {
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	d.renders++
	size := d.sizes[index]
	w := int(math.Round(size.X * zoom))
	h := int(math.Round(size.Y * zoom))
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (d *fakeDoc) AddHighlight(index int, rect r2.Rect, clr pdfutils.RGB) error {
	if d.annotateErr != nil {
		return d.annotateErr
	}
	d.highlights = append(d.highlights, highlightCall{index, rect, clr})
	return nil
}

func (d *fakeDoc) AddDot(index int, center r2.Point, radius float64, clr pdfutils.RGB) error {
	if d.annotateErr != nil {
		return d.annotateErr
	}
	d.dots = append(d.dots, dotCall{index, center, radius, clr})
	return nil
}

func (d *fakeDoc) AddLine(index int, from, to r2.Point, width float64, clr pdfutils.RGB) error {
	if d.annotateErr != nil {
		return d.annotateErr
	}
	d.lines = append(d.lines, lineCall{index, from, to, width, clr})
	return nil
}

func (d *fakeDoc) Save(path string) error {
	if d.saveErr != nil {
		return d.saveErr
	}
	d.savedTo = append(d.savedTo, path)
	return nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return d.closeErr
}

type recorder struct {
	frames   []Frame
	labels   []string
	statuses []string
	tools    []Tool
}

func (r *recorder) ShowFrame(f Frame)      { r.frames = append(r.frames, f) }
func (r *recorder) ShowPageLabel(l string) { r.labels = append(r.labels, l) }
func (r *recorder) ShowStatus(s string)    { r.statuses = append(r.statuses, s) }
func (r *recorder) ShowTool(t Tool)        { r.tools = append(r.tools, t) }
func (r *recorder) lastLabel() string      { return r.labels[len(r.labels)-1] }
func (r *recorder) lastStatus() string     { return r.statuses[len(r.statuses)-1] }

// opener serves fake documents by path; unknown paths fail to open.
type opener map[string]*fakeDoc

func (o opener) Open(path string) (Document, error) {
	doc, ok := o[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return doc, nil
}

type harness struct {
	session *Session
	present *recorder
	docs    opener
	hook    *test.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	h := &harness{
		present: &recorder{},
		docs:    opener{},
		hook:    hook,
	}

	s, err := NewSession(config.Default(), h.docs.Open, h.present, log)
	require.NoError(t, err)
	h.session = s

	return h
}

// openDoc registers a fake document with pages pages and opens it.
func (h *harness) openDoc(t *testing.T, path string, pages int) *fakeDoc {
	t.Helper()

	doc := newFakeDoc(pages)
	h.docs[path] = doc
	require.NoError(t, h.session.Open(path))

	return doc
}

// screen maps a page-space point to a window point under the session's
// current zoom and viewport.
func (h *harness) screen(pt r2.Point) r2.Point {
	s := h.session
	return PageToScreen(s.Window(), s.Viewport(), s.Zoom(), pt)
}
