package shell

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/mgmeyers/pdfmark/pdfutils"
	"github.com/mgmeyers/pdfmark/viewer"
)

// annotationLister is implemented by documents that can describe their
// existing annotations.
type annotationLister interface {
	Annotations(withText bool) ([]*pdfutils.Annotation, error)
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, errUsage
	}

	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errUsage
		}
		out[i] = v
	}

	return out, nil
}

func point(v []float64) r2.Point {
	return r2.Point{X: v[0], Y: v[1]}
}

func noArgs(f func() error) func([]string) error {
	return func(args []string) error {
		if len(args) != 0 {
			return errUsage
		}
		return f()
	}
}

func oneArg(f func(string) error) func([]string) error {
	return func(args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		return f(args[0])
	}
}

func (s *Shell) buildCommands() []command {
	sess := s.session

	return []command{
		{"open", "open <file.pdf>", "open a PDF document", oneArg(sess.Open)},
		{"save", "save <file.pdf>", "save the document with its annotations", oneArg(sess.Save)},
		{"next", "next", "go to the next page", noArgs(sess.NextPage)},
		{"prev", "prev", "go to the previous page", noArgs(sess.PrevPage)},
		{"page", "page <n>", "go to page n (1-based)", oneArg(s.page)},
		{"zoom", "zoom in|out|reset|<percent>", "change the zoom", oneArg(s.zoom)},
		{"pinch", "pinch <scale>", "pinch gesture by scale", oneArg(s.pinch)},
		{"scroll", "scroll <delta>", "wheel delta; positive goes back a page", oneArg(s.scroll)},
		{"tools", "tools", "list annotation tools", noArgs(s.listTools)},
		{"tool", "tool <name>|none", "arm an annotation tool", oneArg(sess.SelectTool)},
		{"down", "down <x> <y>", "pointer press at window coordinates", s.pointer(sess.PointerDown)},
		{"move", "move <x> <y>", "pointer move to window coordinates", s.pointer(func(pt r2.Point) error {
			sess.PointerMove(pt)
			return nil
		})},
		{"up", "up <x> <y>", "pointer release at window coordinates", s.pointer(sess.PointerUp)},
		{"drag", "drag <x1> <y1> <x2> <y2>", "press, move and release in window coordinates", s.drag},
		{"mark", "mark <x1> <y1> <x2> <y2>", "stroke between two page coordinates", s.mark},
		{"test", "test", "add the test highlight to the current page", noArgs(sess.TestAnnotation)},
		{"annots", "annots", "print the document's annotations as JSON", noArgs(s.annots)},
		{"status", "status", "print the session state", noArgs(s.status)},
	}
}

func (s *Shell) page(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errUsage
	}
	return s.session.GoToPage(n - 1)
}

func (s *Shell) zoom(arg string) error {
	switch arg {
	case "in", "+":
		return s.session.ZoomIn()
	case "out", "-":
		return s.session.ZoomOut()
	case "reset", "1:1":
		return s.session.ZoomReset()
	}

	percent, err := strconv.Atoi(arg)
	if err != nil {
		return errUsage
	}

	return s.session.SetZoomPercent(percent)
}

func (s *Shell) pinch(arg string) error {
	scale, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return errUsage
	}
	return s.session.Pinch(scale)
}

func (s *Shell) scroll(arg string) error {
	delta, err := strconv.Atoi(arg)
	if err != nil {
		return errUsage
	}
	return s.session.Scroll(delta)
}

func (s *Shell) pointer(f func(r2.Point) error) func([]string) error {
	return func(args []string) error {
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		return f(point(v))
	}
}

func (s *Shell) drag(args []string) error {
	v, err := parseFloats(args, 4)
	if err != nil {
		return err
	}
	return s.session.Drag(point(v[:2]), point(v[2:]))
}

func (s *Shell) mark(args []string) error {
	v, err := parseFloats(args, 4)
	if err != nil {
		return err
	}
	return s.session.Mark(point(v[:2]), point(v[2:]))
}

func (s *Shell) listTools() error {
	for _, t := range s.session.Palette() {
		marker := " "
		if armed := s.session.Tool(); armed.Armed() && armed.Name == t.Name {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %-8s %-9s %s\n", marker, t.Name, t.Kind, t.Hex)
	}
	return nil
}

func (s *Shell) annots() error {
	doc := s.session.Document()
	if doc == nil {
		return viewer.ErrNoDocument
	}

	lister, ok := doc.(annotationLister)
	if !ok {
		return errors.New("document cannot list annotations")
	}

	annots, err := lister.Annotations(false)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(annots, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, string(data))

	return nil
}

func (s *Shell) status() error {
	sess := s.session

	if !sess.Loaded() {
		fmt.Fprintln(s.out, "no document")
	} else {
		fmt.Fprintf(s.out, "%s: %s, zoom %.0f%%\n", sess.Path(), sess.PageLabel(), sess.Zoom()*100)
	}

	tool := sess.Tool()
	if tool.Armed() {
		fmt.Fprintf(s.out, "tool: %s (%s %s)\n", tool.Name, tool.Kind, tool.Hex)
	} else {
		fmt.Fprintln(s.out, "tool: none")
	}

	if st, ok := sess.Stroke(); ok {
		fmt.Fprintf(s.out, "drawing from (%.1f, %.1f)\n", st.Start.X, st.Start.Y)
	}

	return nil
}
