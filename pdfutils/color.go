package pdfutils

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
)

// RGB is a color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

func ParseHexColor(hex string) (RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}

	return RGB{R: c.R, G: c.G, B: c.B}, nil
}

func (c RGB) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
}

func (c RGB) ToPdfObject() core.PdfObject {
	return core.MakeArrayFromFloats([]float64{c.R, c.G, c.B})
}

func (c RGB) DeviceRGB() *model.PdfColorDeviceRGB {
	return model.NewPdfColorDeviceRGB(c.R, c.G, c.B)
}

func toHEXStr(i int) string {
	s := fmt.Sprintf("%x", i)

	if len(s) == 1 {
		return "0" + s
	}

	return s
}

func pdfObjToRGB(c core.PdfObject) (RGB, bool) {
	if c == nil {
		return RGB{}, false
	}

	objArr, ok := c.(*core.PdfObjectArray)
	if !ok {
		return RGB{}, false
	}

	clr, err := objArr.ToFloat64Array()
	if err != nil || len(clr) < 3 {
		return RGB{}, false
	}

	return RGB{R: clr[0], G: clr[1], B: clr[2]}, true
}

func PDFObjToHex(c core.PdfObject) string {
	clr, ok := pdfObjToRGB(c)
	if !ok {
		return ""
	}

	return "#" + toHEXStr(int(clr.R*255)) + toHEXStr(int(clr.G*255)) + toHEXStr(int(clr.B*255))
}

func GetAnnotationColor(annotation *model.PdfAnnotation) string {
	if annotation == nil {
		return ""
	}

	return PDFObjToHex(annotation.C)
}

func GetAnnotationColorCategory(annotation *model.PdfAnnotation) string {
	if annotation == nil {
		return ""
	}

	return PDFObjToColorCategory(annotation.C)
}

func PDFObjToColorCategory(c core.PdfObject) string {
	clr, ok := pdfObjToRGB(c)
	if !ok {
		return ""
	}

	return ColorCategory(clr)
}

func ColorCategory(clr RGB) string {
	color := colorful.Color{
		R: clr.R,
		G: clr.G,
		B: clr.B,
	}
	h, s, l := color.Hsl()

	// define color category based on HSL
	if l < 0.12 {
		return "Black"
	}
	if l > 0.98 {
		return "White"
	}
	if s < 0.2 {
		return "Gray"
	}
	if h < 15 {
		return "Red"
	}
	if h < 45 {
		return "Orange"
	}
	if h < 65 {
		return "Yellow"
	}
	if h < 170 {
		return "Green"
	}
	if h < 190 {
		return "Cyan"
	}
	if h < 263 {
		return "Blue"
	}
	if h < 280 {
		return "Purple"
	}
	if h < 335 {
		return "Magenta"
	}
	return "Red"
}
