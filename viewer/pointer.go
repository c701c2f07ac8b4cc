package viewer

import (
	"github.com/golang/geo/r2"
	"github.com/sirupsen/logrus"
)

// Stroke is a pointer drag in page space.
type Stroke struct {
	Start r2.Point
	End   r2.Point
}

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool {
	return s.stroke != nil
}

func (s *Session) Stroke() (Stroke, bool) {
	if s.stroke == nil {
		return Stroke{}, false
	}
	return *s.stroke, true
}

// PageSize is the display size of the current page, as of the last render.
func (s *Session) PageSize() r2.Point {
	return s.pageSize
}

// ToPage maps a window point to the current page, clamped to its bounds.
func (s *Session) ToPage(pt r2.Point) r2.Point {
	return clampToPage(s.pageSize, ScreenToPage(s.cfg.Window, s.viewport, s.zoom, pt))
}

// PointerDown starts a stroke when a tool is armed and pt is on the canvas.
// The highlight tool marks the start with a dot.
func (s *Session) PointerDown(pt r2.Point) error {
	if s.doc == nil || !s.tool.Armed() || !OnCanvas(s.cfg.Window, pt) {
		return nil
	}

	s.log.WithField("screen", pt).Debug("pointer down")

	return s.beginStroke(s.ToPage(pt))
}

func (s *Session) beginStroke(start r2.Point) error {
	s.stroke = &Stroke{Start: start, End: start}

	s.log.WithFields(logrus.Fields{
		"page_pt":   start,
		"zoom":      s.zoom,
		"page_size": s.pageSize,
	}).Debug("stroke started")

	if s.tool.Kind != ToolHighlight {
		return nil
	}

	if err := s.doc.AddDot(s.page, start, s.cfg.DotRadius, s.tool.Color); err != nil {
		return wrap(KindAnnotate, "dot", s.path, err)
	}

	return s.Render()
}

// PointerMove tracks the end of the stroke in progress.
func (s *Session) PointerMove(pt r2.Point) {
	if s.stroke == nil || !OnCanvas(s.cfg.Window, pt) {
		return
	}

	s.stroke.End = s.ToPage(pt)
	s.log.WithField("page_pt", s.stroke.End).Debug("pointer move")
}

// PointerUp finishes the stroke and commits it with the armed tool. The
// stroke is cleared and the page re-rendered whether or not the commit
// succeeds. A release off the canvas drops the stroke.
func (s *Session) PointerUp(pt r2.Point) error {
	if s.stroke == nil {
		return nil
	}

	stroke := *s.stroke
	s.stroke = nil

	if !OnCanvas(s.cfg.Window, pt) {
		s.log.WithField("screen", pt).Debug("released off canvas, stroke dropped")
		return nil
	}

	stroke.End = s.ToPage(pt)

	return s.finishStroke(stroke)
}

func (s *Session) finishStroke(stroke Stroke) error {
	var err error

	switch s.tool.Kind {
	case ToolHighlight:
		err = s.commitHighlight(stroke)
		// a highlight tool is spent by one stroke
		s.setTool(Tool{})
	case ToolPencil:
		err = s.commitPencil(stroke)
	}

	renderErr := s.Render()
	if err != nil {
		return err
	}

	return renderErr
}

func (s *Session) commitHighlight(stroke Stroke) error {
	rect := HighlightRect(stroke.Start, stroke.End, s.cfg.FallbackSize)

	s.log.WithFields(logrus.Fields{
		"start":     stroke.Start,
		"end":       stroke.End,
		"rect":      rect,
		"page_size": s.pageSize,
	}).Debug("final highlight rect")

	if err := s.doc.AddHighlight(s.page, rect, s.tool.Color); err != nil {
		return wrap(KindAnnotate, "highlight", s.path, err)
	}

	s.present.ShowStatus("Highlighted area")

	return nil
}

func (s *Session) commitPencil(stroke Stroke) error {
	end := PencilEnd(stroke.Start, stroke.End, s.cfg.FallbackSize)

	s.log.WithFields(logrus.Fields{
		"start": stroke.Start,
		"end":   end,
	}).Debug("pencil line")

	if err := s.doc.AddLine(s.page, stroke.Start, end, s.cfg.PencilWidth, s.tool.Color); err != nil {
		return wrap(KindAnnotate, "pencil", s.path, err)
	}

	s.present.ShowStatus("Line drawn")

	return nil
}

// Drag is a pointer down at from, a move and a release at to. A failed start
// dot does not stop the stroke; the first error is returned.
func (s *Session) Drag(from, to r2.Point) error {
	downErr := s.PointerDown(from)
	s.PointerMove(to)
	upErr := s.PointerUp(to)

	if downErr != nil {
		return downErr
	}

	return upErr
}

// Mark strokes from one page point to another with the armed tool, as a drag
// would, without going through the window. Points are clamped to the page.
func (s *Session) Mark(from, to r2.Point) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if !s.tool.Armed() {
		return ErrNoTool
	}

	from = clampToPage(s.pageSize, from)
	to = clampToPage(s.pageSize, to)

	downErr := s.beginStroke(from)
	s.stroke = nil

	upErr := s.finishStroke(Stroke{Start: from, End: to})

	if downErr != nil {
		return downErr
	}

	return upErr
}
