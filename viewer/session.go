// Package viewer holds the state of an annotation session: the open document,
// page, zoom, armed tool and in-progress stroke. Operations run on the
// caller's goroutine; a Session is not safe for concurrent use.
package viewer

import (
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/pdfutils"
)

// Document is an open PDF. Page indexes are 0-based; points and rects are in
// page display space (origin top left, one unit per point).
type Document interface {
	NumPages() int
	PageSize(index int) (r2.Point, error)
	Render(index int, zoom float64) (image.Image, error)
	AddHighlight(index int, rect r2.Rect, clr pdfutils.RGB) error
	AddDot(index int, center r2.Point, radius float64, clr pdfutils.RGB) error
	AddLine(index int, from, to r2.Point, width float64, clr pdfutils.RGB) error
	Save(path string) error
	Close() error
}

type Opener func(path string) (Document, error)

// Frame is one rendered page, already scaled to the canvas.
type Frame struct {
	Image     image.Image
	Page      int
	PageCount int
	Zoom      float64
	Viewport  Viewport
}

// Presenter shows session output. Errors are not presented through it; they
// are returned to the caller.
type Presenter interface {
	ShowFrame(Frame)
	ShowPageLabel(string)
	ShowStatus(string)
	ShowTool(Tool)
}

type Session struct {
	cfg     config.Config
	open    Opener
	present Presenter
	log     logrus.FieldLogger

	palette Palette
	tool    Tool
	stroke  *Stroke

	doc      Document
	path     string
	page     int
	zoom     float64
	pageSize r2.Point
	viewport Viewport
}

func NewSession(cfg config.Config, open Opener, present Presenter, log logrus.FieldLogger) (*Session, error) {
	palette, err := NewPalette(cfg.Tools)
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:      cfg,
		open:     open,
		present:  present,
		log:      log,
		palette:  palette,
		zoom:     1.0,
		viewport: newViewport(cfg.Window),
	}, nil
}

func (s *Session) Loaded() bool          { return s.doc != nil }
func (s *Session) Document() Document    { return s.doc }
func (s *Session) Path() string          { return s.path }
func (s *Session) CurrentPage() int      { return s.page }
func (s *Session) Zoom() float64         { return s.zoom }
func (s *Session) Tool() Tool            { return s.tool }
func (s *Session) Palette() Palette      { return s.palette }
func (s *Session) Viewport() Viewport    { return s.viewport }
func (s *Session) Window() config.Window { return s.cfg.Window }

func (s *Session) PageCount() int {
	if s.doc == nil {
		return 0
	}
	return s.doc.NumPages()
}

func (s *Session) PageLabel() string {
	if s.doc == nil {
		return "Page 1"
	}
	return fmt.Sprintf("Page %d of %d", s.page+1, s.doc.NumPages())
}

// Open replaces the current document with the one at path. On failure the
// current document, page and zoom are left as they were. Once the new
// document is installed a render error is returned but the document stays.
func (s *Session) Open(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return wrap(KindOpen, "open", path, ErrNotPDF)
	}

	doc, err := s.open(path)
	if err != nil {
		return wrap(KindOpen, "open", path, err)
	}

	if doc.NumPages() == 0 {
		if err := doc.Close(); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("closing empty document")
		}
		return wrap(KindOpen, "open", path, ErrNoPages)
	}

	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			s.log.WithError(err).WithField("path", s.path).Warn("closing previous document")
		}
	}

	s.doc = doc
	s.path = path
	s.page = 0
	s.zoom = 1.0
	s.stroke = nil

	s.log.WithFields(logrus.Fields{"path": path, "pages": doc.NumPages()}).Debug("opened document")

	s.present.ShowPageLabel(s.PageLabel())
	s.present.ShowStatus("Opened: " + path)

	// a failed first render leaves the document open on page 1
	return s.Render()
}

func (s *Session) Save(path string) error {
	if s.doc == nil {
		return ErrNoDocument
	}

	if err := s.doc.Save(path); err != nil {
		return wrap(KindSave, "save", path, err)
	}

	s.log.WithField("path", path).Debug("saved document")
	s.present.ShowStatus("Saved as: " + path)

	return nil
}

// Close releases the open document, if any.
func (s *Session) Close() error {
	if s.doc == nil {
		return nil
	}

	err := s.doc.Close()
	s.doc = nil
	s.path = ""
	s.stroke = nil

	return err
}

// Render draws the current page at the current zoom and fits it to the canvas.
func (s *Session) Render() error {
	if s.doc == nil {
		return nil
	}

	size, err := s.doc.PageSize(s.page)
	if err != nil {
		return wrap(KindRender, "render", s.path, err)
	}

	img, err := s.doc.Render(s.page, s.zoom)
	if err != nil {
		return wrap(KindRender, "render", s.path, err)
	}

	b := img.Bounds()
	s.pageSize = size
	s.viewport = s.viewport.FitTo(float64(b.Dx()), float64(b.Dy()))

	s.present.ShowFrame(Frame{
		Image:     s.viewport.Scale(img),
		Page:      s.page,
		PageCount: s.doc.NumPages(),
		Zoom:      s.zoom,
		Viewport:  s.viewport,
	})

	s.log.WithFields(logrus.Fields{
		"page":      s.page,
		"zoom":      s.zoom,
		"page_size": size,
		"fit":       s.viewport.Fit,
	}).Debug("displayed page")

	return nil
}

// GoToPage moves to index. Indexes outside the document are ignored.
func (s *Session) GoToPage(index int) error {
	if s.doc == nil || index < 0 || index >= s.doc.NumPages() || index == s.page {
		return nil
	}

	s.page = index
	s.stroke = nil

	if err := s.Render(); err != nil {
		return err
	}

	s.present.ShowPageLabel(s.PageLabel())

	return nil
}

func (s *Session) NextPage() error { return s.GoToPage(s.page + 1) }

func (s *Session) PrevPage() error { return s.GoToPage(s.page - 1) }

// Scroll pages backward for a positive wheel delta and forward for a negative one.
func (s *Session) Scroll(delta int) error {
	switch {
	case delta > 0:
		return s.PrevPage()
	case delta < 0:
		return s.NextPage()
	}
	return nil
}

func (s *Session) setZoom(zoom float64) error {
	s.zoom = math.Max(s.cfg.Zoom.Floor, math.Min(s.cfg.Zoom.Ceiling, zoom))
	return s.Render()
}

func (s *Session) ZoomIn() error { return s.setZoom(s.zoom * s.cfg.Zoom.Step) }

func (s *Session) ZoomOut() error { return s.setZoom(s.zoom / s.cfg.Zoom.Step) }

func (s *Session) ZoomReset() error { return s.setZoom(1.0) }

// SetZoomPercent sets the zoom from the slider range [floor*100, ceiling*100].
func (s *Session) SetZoomPercent(percent int) error {
	return s.setZoom(float64(percent) / 100)
}

// Pinch scales the zoom by a gesture factor. Shrinking stops at the floor.
func (s *Session) Pinch(scale float64) error {
	if scale <= 0 || scale == 1.0 {
		return nil
	}

	if scale < 1 && s.zoom <= s.cfg.Zoom.Floor {
		return nil
	}

	return s.setZoom(s.zoom * scale)
}

// SelectTool arms the palette tool called name; "none" disarms. Any
// half-finished stroke is dropped.
func (s *Session) SelectTool(name string) error {
	tool := Tool{}

	if name != "none" {
		t, ok := s.palette.Lookup(name)
		if !ok {
			return errors.Wrapf(ErrUnknownTool, "%q", name)
		}
		tool = t
	}

	s.setTool(tool)
	if tool.Armed() {
		s.present.ShowStatus(fmt.Sprintf("Tool: %s (%s)", tool.Kind, tool.Hex))
	} else {
		s.present.ShowStatus("Tool: none")
	}
	s.log.WithFields(logrus.Fields{"tool": tool.Name, "kind": tool.Kind, "color": tool.Hex}).Debug("tool set")

	return nil
}

func (s *Session) setTool(tool Tool) {
	s.tool = tool
	s.stroke = nil
	s.present.ShowTool(tool)
}

var testAnnotationRect = r2.RectFromPoints(r2.Point{X: 100, Y: 100}, r2.Point{X: 200, Y: 150})

// TestAnnotation highlights a fixed area of the current page in red.
func (s *Session) TestAnnotation() error {
	if s.doc == nil {
		return ErrNoDocument
	}

	red := pdfutils.RGB{R: 1}
	if err := s.doc.AddHighlight(s.page, testAnnotationRect, red); err != nil {
		return wrap(KindAnnotate, "test annotation", s.path, err)
	}

	s.log.WithField("rect", testAnnotationRect).Debug("test annotation added")
	s.present.ShowStatus("Test annotation added")

	return s.Render()
}
