package viewer

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OpenResetsState(t *testing.T) {
	h := newHarness(t)
	first := h.openDoc(t, "a.pdf", 3)

	require.NoError(t, h.session.NextPage())
	require.NoError(t, h.session.ZoomIn())

	h.openDoc(t, "b.pdf", 2)

	assert.True(t, first.closed)
	assert.Equal(t, 0, h.session.CurrentPage())
	assert.Equal(t, 1.0, h.session.Zoom())
	assert.Equal(t, "Page 1 of 2", h.present.lastLabel())
	assert.Equal(t, "Opened: b.pdf", h.present.lastStatus())
}

func TestSession_OpenFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	doc := h.openDoc(t, "a.pdf", 3)
	require.NoError(t, h.session.NextPage())
	require.NoError(t, h.session.SetZoomPercent(150))

	frames := len(h.present.frames)

	err := h.session.Open("missing.pdf")
	require.Error(t, err)
	assert.Equal(t, KindOpen, KindOf(err))

	assert.False(t, doc.closed)
	assert.Equal(t, "a.pdf", h.session.Path())
	assert.Equal(t, 1, h.session.CurrentPage())
	assert.Equal(t, 1.5, h.session.Zoom())
	assert.Len(t, h.present.frames, frames)
}

func TestSession_OpenRejectsNonPDF(t *testing.T) {
	h := newHarness(t)
	h.docs["notes.txt"] = newFakeDoc(1)

	err := h.session.Open("notes.txt")
	assert.True(t, errors.Is(err, ErrNotPDF))
	assert.Equal(t, KindOpen, KindOf(err))
	assert.False(t, h.session.Loaded())
}

func TestSession_OpenEmptyDocument(t *testing.T) {
	h := newHarness(t)
	empty := newFakeDoc(0)
	h.docs["empty.pdf"] = empty

	err := h.session.Open("empty.pdf")
	assert.True(t, errors.Is(err, ErrNoPages))
	assert.True(t, empty.closed)
	assert.False(t, h.session.Loaded())
}

func TestSession_OpenEmptyDocumentCloseFailure(t *testing.T) {
	h := newHarness(t)
	empty := newFakeDoc(0)
	empty.closeErr = errors.New("handle leak")
	h.docs["empty.pdf"] = empty

	err := h.session.Open("empty.pdf")
	assert.True(t, errors.Is(err, ErrNoPages))

	warned := false
	for _, e := range h.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "closing empty document" {
			warned = true
			assert.Equal(t, "empty.pdf", e.Data["path"])
		}
	}
	assert.True(t, warned)
}

func TestSession_OpenRenderFailureKeepsDocument(t *testing.T) {
	h := newHarness(t)
	doc := newFakeDoc(3)
	doc.renderErr = errors.New("boom")
	h.docs["b.pdf"] = doc

	err := h.session.Open("b.pdf")
	require.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))

	assert.True(t, h.session.Loaded())
	assert.Equal(t, "b.pdf", h.session.Path())
	assert.Equal(t, "Page 1 of 3", h.present.lastLabel())
	assert.Equal(t, "Opened: b.pdf", h.present.lastStatus())
	assert.Empty(t, h.present.frames)
}

func TestSession_NavigationScenario(t *testing.T) {
	h := newHarness(t)
	h.openDoc(t, "three.pdf", 3)

	require.NoError(t, h.session.SetZoomPercent(150))
	require.NoError(t, h.session.NextPage())
	require.NoError(t, h.session.NextPage())
	assert.Equal(t, "Page 3 of 3", h.present.lastLabel())

	frames := len(h.present.frames)
	labels := len(h.present.labels)

	require.NoError(t, h.session.NextPage())
	assert.Equal(t, 2, h.session.CurrentPage())
	assert.Len(t, h.present.frames, frames)
	assert.Len(t, h.present.labels, labels)
	assert.Equal(t, "Page 3 of 3", h.session.PageLabel())
}

func TestSession_NavigationBounds(t *testing.T) {
	h := newHarness(t)
	h.openDoc(t, "five.pdf", 5)

	moves := []func() error{
		h.session.PrevPage, h.session.NextPage, h.session.NextPage, h.session.NextPage,
		h.session.NextPage, h.session.NextPage, h.session.NextPage, h.session.PrevPage,
	}

	for _, move := range moves {
		require.NoError(t, move())
		assert.GreaterOrEqual(t, h.session.CurrentPage(), 0)
		assert.Less(t, h.session.CurrentPage(), 5)
	}

	assert.Equal(t, 3, h.session.CurrentPage())

	require.NoError(t, h.session.GoToPage(-1))
	require.NoError(t, h.session.GoToPage(5))
	assert.Equal(t, 3, h.session.CurrentPage())

	require.NoError(t, h.session.GoToPage(0))
	assert.Equal(t, "Page 1 of 5", h.present.lastLabel())
}

func TestSession_NavigationWithoutDocument(t *testing.T) {
	h := newHarness(t)

	assert.NoError(t, h.session.NextPage())
	assert.NoError(t, h.session.PrevPage())
	assert.Equal(t, 0, h.session.CurrentPage())
	assert.Empty(t, h.present.frames)
}

func TestSession_Scroll(t *testing.T) {
	h := newHarness(t)
	h.openDoc(t, "three.pdf", 3)

	require.NoError(t, h.session.Scroll(-120))
	assert.Equal(t, 1, h.session.CurrentPage())
	require.NoError(t, h.session.Scroll(120))
	assert.Equal(t, 0, h.session.CurrentPage())
	require.NoError(t, h.session.Scroll(0))
	assert.Equal(t, 0, h.session.CurrentPage())
}

func TestSession_Zoom(t *testing.T) {
	h := newHarness(t)
	h.openDoc(t, "a.pdf", 1)

	require.NoError(t, h.session.ZoomIn())
	assert.InDelta(t, 1.2, h.session.Zoom(), 1e-9)

	require.NoError(t, h.session.ZoomOut())
	assert.InDelta(t, 1.0, h.session.Zoom(), 1e-9)

	for i := 0; i < 20; i++ {
		require.NoError(t, h.session.ZoomOut())
	}
	assert.Equal(t, 0.2, h.session.Zoom())

	for i := 0; i < 20; i++ {
		require.NoError(t, h.session.ZoomIn())
	}
	assert.Equal(t, 2.0, h.session.Zoom())

	require.NoError(t, h.session.ZoomReset())
	assert.Equal(t, 1.0, h.session.Zoom())

	last := h.present.frames[len(h.present.frames)-1]
	assert.Equal(t, 1.0, last.Zoom)
}

func TestSession_SetZoomPercentRendersEveryChange(t *testing.T) {
	h := newHarness(t)
	doc := h.openDoc(t, "a.pdf", 1)
	renders := doc.renders

	for _, v := range []int{20, 21, 22, 100, 199, 200} {
		require.NoError(t, h.session.SetZoomPercent(v))
		assert.InDelta(t, float64(v)/100, h.session.Zoom(), 1e-9)
	}
	assert.Equal(t, renders+6, doc.renders)

	require.NoError(t, h.session.SetZoomPercent(5))
	assert.Equal(t, 0.2, h.session.Zoom())
	require.NoError(t, h.session.SetZoomPercent(500))
	assert.Equal(t, 2.0, h.session.Zoom())
}

func TestSession_Pinch(t *testing.T) {
	h := newHarness(t)
	h.openDoc(t, "a.pdf", 1)

	require.NoError(t, h.session.Pinch(1.5))
	assert.InDelta(t, 1.5, h.session.Zoom(), 1e-9)

	require.NoError(t, h.session.Pinch(0.1))
	assert.Equal(t, 0.2, h.session.Zoom())

	renders := len(h.present.frames)
	require.NoError(t, h.session.Pinch(0.5))
	assert.Equal(t, 0.2, h.session.Zoom())
	assert.Len(t, h.present.frames, renders)

	require.NoError(t, h.session.Pinch(1.0))
	assert.Len(t, h.present.frames, renders)
}

func TestSession_RenderFailure(t *testing.T) {
	h := newHarness(t)
	doc := h.openDoc(t, "a.pdf", 2)
	doc.renderErr = errors.New("boom")

	err := h.session.NextPage()
	require.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))
}

func TestSession_Save(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ErrNoDocument, h.session.Save("out.pdf"))

	doc := h.openDoc(t, "a.pdf", 1)
	require.NoError(t, h.session.Save("out.pdf"))
	assert.Equal(t, []string{"out.pdf"}, doc.savedTo)
	assert.Equal(t, "Saved as: out.pdf", h.present.lastStatus())

	doc.saveErr = errors.New("disk full")
	err := h.session.Save("again.pdf")
	assert.Equal(t, KindSave, KindOf(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestSession_Close(t *testing.T) {
	h := newHarness(t)
	doc := h.openDoc(t, "a.pdf", 1)

	require.NoError(t, h.session.Close())
	assert.True(t, doc.closed)
	assert.False(t, h.session.Loaded())
	assert.NoError(t, h.session.Close())
}

func TestSession_TestAnnotation(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ErrNoDocument, h.session.TestAnnotation())

	doc := h.openDoc(t, "a.pdf", 1)
	require.NoError(t, h.session.TestAnnotation())
	require.Len(t, doc.highlights, 1)
	assert.Equal(t, testAnnotationRect, doc.highlights[0].Rect)
	assert.Equal(t, 1.0, doc.highlights[0].Color.R)
	assert.Equal(t, "Test annotation added", h.present.lastStatus())
}

func TestSession_SelectTool(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SelectTool("hgreen"))
	assert.Equal(t, ToolHighlight, h.session.Tool().Kind)
	assert.Equal(t, "#99ff99", h.session.Tool().Hex)
	assert.Equal(t, "Tool: highlight (#99ff99)", h.present.lastStatus())

	require.NoError(t, h.session.SelectTool("pblue"))
	assert.Equal(t, ToolPencil, h.session.Tool().Kind)
	require.Len(t, h.present.tools, 2)
	assert.Equal(t, "pblue", h.present.tools[1].Name)

	err := h.session.SelectTool("eraser")
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Equal(t, "pblue", h.session.Tool().Name)

	require.NoError(t, h.session.SelectTool("none"))
	assert.False(t, h.session.Tool().Armed())
}
