package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/pdfutils"
	"github.com/mgmeyers/pdfmark/viewer"
)

// presenter prints session output as text and writes each frame to an image file.
type presenter struct {
	out     io.Writer
	cfg     config.Config
	log     logrus.FieldLogger
	palette viewer.Palette

	status string
	label  string
	tool   viewer.Tool
	frames int
}

func (p *presenter) ShowFrame(f viewer.Frame) {
	p.frames++

	b := f.Image.Bounds()
	fmt.Fprintf(p.out, "frame: page %d/%d zoom %.0f%% %dx%d\n", f.Page+1, f.PageCount, f.Zoom*100, b.Dx(), b.Dy())

	if p.cfg.FramePath == "" {
		return
	}

	if err := pdfutils.WriteImage(f.Image, p.cfg.FramePath, p.cfg.FrameFormat, p.cfg.FrameQuality); err != nil {
		p.log.WithError(err).WithField("path", p.cfg.FramePath).Warn("writing frame")
	}
}

func (p *presenter) ShowPageLabel(label string) {
	p.label = label
	fmt.Fprintln(p.out, label)
}

func (p *presenter) ShowStatus(status string) {
	p.status = status
	fmt.Fprintln(p.out, "status:", status)
}

// ShowTool redraws the tool row with the armed tool in brackets.
func (p *presenter) ShowTool(t viewer.Tool) {
	p.tool = t
	fmt.Fprintln(p.out, p.toolbar())
}

func (p *presenter) toolbar() string {
	names := make([]string, 0, len(p.palette))
	for _, t := range p.palette {
		if p.tool.Armed() && t.Name == p.tool.Name {
			names = append(names, "["+t.Name+"]")
		} else {
			names = append(names, t.Name)
		}
	}
	return "tools: " + strings.Join(names, " ")
}

// showDiagnostic is the non-fatal error window.
func (p *presenter) showDiagnostic(err error) {
	fmt.Fprintln(p.out, "Debug - Crash Report")
	fmt.Fprintln(p.out, "Application crashed!")
	fmt.Fprintf(p.out, "Error: %v\n", err)
}
