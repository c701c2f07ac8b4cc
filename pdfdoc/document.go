// Package pdfdoc binds a PDF's object model (unipdf) to a rasterizer (MuPDF via
// go-fitz) so that annotations added to a page show up in the next render.
package pdfdoc

import (
	"bytes"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/pdfutils"
)

var ErrPageRange = errors.New("page out of range")

type Options struct {
	// ValidateOnSave runs pdfcpu's validator over the written file before it
	// replaces the destination.
	ValidateOnSave bool
}

type Document struct {
	path   string
	pages  []*model.PdfPage
	raster *fitz.Document
	opts   Options
	log    logrus.FieldLogger
}

func Open(path string, log logrus.FieldLogger, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parse pdf")
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, errors.Wrap(err, "read encryption")
	}

	if encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, errors.Wrap(err, "decrypt")
		}
		if !ok {
			return nil, errors.New("pdf is password protected")
		}
		log.WithField("path", path).Info("opened encrypted pdf with the empty user password")
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, errors.Wrap(err, "count pages")
	}

	if numPages == 0 {
		return nil, errors.New("the document has no pages")
	}

	pages := make([]*model.PdfPage, 0, numPages)

	for i := 0; i < numPages; i++ {
		page, err := reader.GetPage(i + 1)
		if err != nil {
			return nil, errors.Wrapf(err, "load page %d", i+1)
		}
		pages = append(pages, page)
	}

	raster, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, errors.Wrap(err, "open rasterizer")
	}

	log.WithFields(logrus.Fields{"path": path, "pages": numPages}).Debug("document opened")

	return &Document{
		path:   path,
		pages:  pages,
		raster: raster,
		opts:   opts,
		log:    log,
	}, nil
}

func (d *Document) Path() string {
	return d.path
}

func (d *Document) NumPages() int {
	return len(d.pages)
}

func (d *Document) page(index int) (*model.PdfPage, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, errors.Wrapf(ErrPageRange, "page %d of %d", index+1, len(d.pages))
	}

	return d.pages[index], nil
}

// PageSize returns the display size of a page in points.
func (d *Document) PageSize(index int) (r2.Point, error) {
	page, err := d.page(index)
	if err != nil {
		return r2.Point{}, err
	}

	return pdfutils.PageSize(page), nil
}

// Render rasterizes a page at zoom times its point size, annotations included.
func (d *Document) Render(index int, zoom float64) (image.Image, error) {
	if _, err := d.page(index); err != nil {
		return nil, err
	}

	img, err := d.raster.ImageDPI(index, 72*zoom)
	if err != nil {
		return nil, errors.Wrapf(err, "rasterize page %d", index+1)
	}

	return img, nil
}

// Annotations summarizes the supported annotations of every page.
func (d *Document) Annotations(withText bool) ([]*pdfutils.Annotation, error) {
	ids := map[string]bool{}
	all := []*pdfutils.Annotation{}

	for i, page := range d.pages {
		annots, err := pdfutils.SummarizePage(i, page, ids, withText)
		if err != nil {
			return nil, errors.Wrapf(err, "page %d annotations", i+1)
		}
		all = append(all, annots...)
	}

	return all, nil
}

var writeDocument = (*Document).write

func (d *Document) write(w io.Writer) error {
	writer := model.NewPdfWriter()

	for i, page := range d.pages {
		if err := writer.AddPage(page); err != nil {
			return errors.Wrapf(err, "add page %d", i+1)
		}
	}

	return writer.Write(w)
}

// refresh rebuilds the rasterizer from the current object model.
func (d *Document) refresh() error {
	var buf bytes.Buffer
	if err := writeDocument(d, &buf); err != nil {
		return err
	}

	raster, err := fitz.NewFromMemory(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "reopen rasterizer")
	}

	old := d.raster
	d.raster = raster

	return old.Close()
}

// Save writes the document next to path and renames it into place, so a
// failed save never truncates an existing file.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfmark-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := d.write(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write pdf")
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if d.opts.ValidateOnSave {
		if err := api.ValidateFile(tmpPath, pdfcpumodel.NewDefaultConfiguration()); err != nil {
			return errors.Wrap(err, "validate written pdf")
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	d.log.WithField("path", path).Debug("document saved")

	return nil
}

func (d *Document) Close() error {
	if d.raster == nil {
		return nil
	}

	err := d.raster.Close()
	d.raster = nil

	return err
}
