package viewer

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/pdfutils"
)

type ToolKind int

const (
	ToolNone ToolKind = iota
	ToolHighlight
	ToolPencil
)

func (k ToolKind) String() string {
	switch k {
	case ToolHighlight:
		return config.KindHighlight
	case ToolPencil:
		return config.KindPencil
	}
	return "none"
}

// Tool is the armed annotation tool. The zero Tool is disarmed.
type Tool struct {
	Name  string
	Kind  ToolKind
	Hex   string
	Color pdfutils.RGB
}

func (t Tool) Armed() bool {
	return t.Kind != ToolNone
}

type Palette []Tool

func NewPalette(tools []config.Tool) (Palette, error) {
	p := make(Palette, 0, len(tools))

	for _, t := range tools {
		var kind ToolKind
		switch strings.ToLower(t.Kind) {
		case config.KindHighlight:
			kind = ToolHighlight
		case config.KindPencil:
			kind = ToolPencil
		default:
			return nil, errors.Wrapf(config.ErrUnknownTool, "tool %q", t.Name)
		}

		clr, err := pdfutils.ParseHexColor(t.Color)
		if err != nil {
			return nil, errors.Wrapf(err, "tool %q", t.Name)
		}

		p = append(p, Tool{Name: t.Name, Kind: kind, Hex: clr.Hex(), Color: clr})
	}

	return p, nil
}

func (p Palette) Lookup(name string) (Tool, bool) {
	for _, t := range p {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
