package pdfutils

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/extractor"
	"github.com/mgmeyers/unipdf/v3/model"
)

const dateFormat = "D:20060102150405-07'00'"
const dateFormatZ = "D:20060102150405Z07'00'"
const dateFormatNoZ = "D:20060102150405"

func FormatDate(t time.Time) core.PdfObject {
	return core.MakeString(t.UTC().Format(dateFormatNoZ) + "Z")
}

func GetAnnotationDate(annot *model.PdfAnnotation) *time.Time {
	dateStr, ok := annot.M.(*core.PdfObjectString)
	if !ok || dateStr == nil {
		return nil
	}

	date, err := time.Parse(dateFormat, dateStr.String())

	if err != nil {
		date, err = time.Parse(dateFormatZ, dateStr.String())
	}

	if err != nil {
		split := strings.Split(dateStr.String(), "Z")
		date, err = time.Parse(dateFormatNoZ, split[0])
	}

	if err != nil {
		return nil
	}

	return &date
}

func GetAnnotationType(t interface{}) string {
	switch t.(type) {
	case *model.PdfAnnotationHighlight:
		return Highlight
	case *model.PdfAnnotationStrikeOut:
		return Strike
	case *model.PdfAnnotationUnderline:
		return Underline
	case *model.PdfAnnotationSquare:
		return Rectangle
	case *model.PdfAnnotationCircle:
		return Circle
	case *model.PdfAnnotationLine:
		return Line
	case *model.PdfAnnotationText:
		return Text
	default:
		return Unsupported
	}
}

func RemoveNul(str string) string {
	return strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, str)
}

func GetAnnotationID(ids map[string]bool, pageIndex int, x float64, y float64, annotType string) string {
	xInt := int(x)
	yInt := int(y)
	id := fmt.Sprintf("%s-p%dx%dy%d", annotType, pageIndex+1, xInt, yInt)
	_, ok := ids[id]

	for i := 1; ok; i++ {
		id = fmt.Sprintf("%s-p%dx%dy%d-%d", annotType, pageIndex+1, xInt, yInt, i)
		_, ok = ids[id]
	}

	ids[id] = true

	return id
}

// GetMarkedText collects the text marks covered by annotRect.
func GetMarkedText(text string, annotRect r2.Rect, markRects []r2.Rect, marks []extractor.TextMark) string {
	segment := ""

	for i, mark := range markRects {
		if !mark.IsValid() || mark.IsEmpty() {
			continue
		}

		if annotRect.Intersects(mark) && IsWithinOverlapThresh(annotRect, mark) {
			if len(marks[i].Text) > 0 && marks[i].Offset > 0 && len(segment) > 0 {
				prevChar := string(text[marks[i].Offset-1])

				if prevChar == " " || prevChar == "\n" {
					segment += " " + marks[i].Text
					continue
				}
			}

			segment += marks[i].Text
		}
	}

	return segment
}

func stringValue(obj core.PdfObject) string {
	s, ok := obj.(*core.PdfObjectString)
	if !ok || s == nil {
		return ""
	}

	return RemoveNul(s.String())
}

// SummarizePage describes the supported annotations of one page, top to
// bottom. Text under highlights is extracted when withText is set.
func SummarizePage(pageIndex int, page *model.PdfPage, ids map[string]bool, withText bool) ([]*Annotation, error) {
	annotations, err := page.GetAnnotations()
	if err != nil {
		return nil, err
	}

	var text string
	var marks []extractor.TextMark
	markRects := []r2.Rect{}

	if withText {
		ext, err := extractor.New(page)
		if err != nil {
			return nil, err
		}

		txt, _, _, err := ext.ExtractPageText()
		if err != nil {
			return nil, err
		}

		text = txt.Text()
		marks = txt.Marks().Elements()

		for _, mark := range marks {
			markRects = append(markRects, GetMarkRect(mark))
		}
	}

	annots := []*Annotation{}

	for _, annotation := range annotations {
		annotType := GetAnnotationType(annotation.GetContext())

		if annotType == Unsupported {
			continue
		}

		x, y := GetCoordinates(annotation)

		built := &Annotation{
			Color:         GetAnnotationColor(annotation),
			ColorCategory: GetAnnotationColorCategory(annotation),
			Comment:       stringValue(annotation.Contents),
			ID:            GetAnnotationID(ids, pageIndex, x, y, annotType),
			Name:          stringValue(annotation.NM),
			Page:          pageIndex + 1,
			Type:          annotType,
			X:             x,
			Y:             y,
		}

		if date := GetAnnotationDate(annotation); date != nil {
			built.Date = date.Format(time.RFC3339)
		}

		if withText && annotType == Highlight {
			segments := []string{}
			for _, rect := range GetAnnotationRects(annotation) {
				if s := GetMarkedText(text, rect, markRects, marks); s != "" {
					segments = append(segments, s)
				}
			}
			built.AnnotatedText = strings.Join(segments, " ")
		}

		annots = append(annots, built)
	}

	// reading order: top to bottom, then left to right
	sort.Sort(ByX(annots))
	sort.Stable(ByY(annots))

	return annots, nil
}
