package main

import (
	"encoding/json"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/pdfdoc"
	"github.com/mgmeyers/pdfmark/pdfutils"
	"github.com/mgmeyers/pdfmark/shell"
	"github.com/mgmeyers/pdfmark/viewer"
)

var cli struct {
	Config   string `short:"c" type:"path" help:"Path to the YAML config file"`
	LogFile  string `help:"Write the debug log here instead of the configured file"`
	LogLevel string `help:"Log level (trace, debug, info, warn, error)"`

	Shell  shellCmd  `cmd:"" default:"withargs" help:"Annotate a PDF from an interactive shell"`
	Run    runCmd    `cmd:"" help:"Run a command script against a PDF"`
	Render renderCmd `cmd:"" help:"Render pages to image files"`
	List   listCmd   `cmd:"" help:"Print the annotations of a PDF as JSON"`
}

type app struct {
	cfg config.Config
	log *logrus.Logger
}

func (a *app) open(path string) (viewer.Document, error) {
	doc, err := pdfdoc.Open(path, a.log, pdfdoc.Options{ValidateOnSave: a.cfg.ValidateOnSave})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *app) shell() *shell.Shell {
	sh, err := shell.New(a.cfg, a.open, os.Stdout, a.log)
	endIfErr(err)
	return sh
}

type shellCmd struct {
	Input string `arg:"" optional:"" name:"input" help:"PDF to open on start" type:"path"`
}

func (c *shellCmd) Run(a *app) error {
	sh := a.shell()
	defer sh.Close()

	if c.Input != "" {
		sh.Exec([]string{"open", c.Input})
	}

	ish := sh.Interactive()
	ish.Println("pdfmark: type help for commands, exit to quit")
	ish.Run()
	ish.Close()

	return nil
}

type runCmd struct {
	Input  string `arg:"" optional:"" name:"input" help:"PDF to open before the script" type:"path"`
	Script string `short:"s" required:"" type:"existingfile" help:"Command script, one command per line"`
	Output string `short:"o" type:"path" help:"Save the annotated PDF here when the script ends"`
}

func (c *runCmd) Run(a *app) error {
	f, err := os.Open(c.Script)
	if err != nil {
		return err
	}
	defer f.Close()

	sh := a.shell()
	defer sh.Close()

	failures := 0

	if c.Input != "" {
		if err := sh.Exec([]string{"open", c.Input}); err != nil {
			failures++
		}
	}

	n, err := sh.RunScript(f)
	if err != nil {
		return errors.Wrap(err, "read script")
	}
	failures += n

	if c.Output != "" {
		if err := sh.Exec([]string{"save", c.Output}); err != nil {
			failures++
		}
	}

	if failures > 0 {
		return errors.Errorf("%d command(s) failed, see %s", failures, a.cfg.LogFile)
	}

	return nil
}

type renderCmd struct {
	Input    string  `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
	Page     int     `short:"p" default:"1" help:"Page to render (1-based)"`
	All      bool    `short:"a" help:"Render every page"`
	Zoom     float64 `short:"z" default:"1" help:"Zoom factor; 1 is 72 DPI"`
	Format   string  `short:"f" enum:"jpg,png" default:"png" help:"Image format. Supports png and jpg"`
	Quality  int     `short:"q" default:"90" help:"Image quality. Only applies to jpg images"`
	Output   string  `short:"o" required:"" type:"path" help:"Output directory"`
	BaseName string  `short:"n" default:"page" help:"Base name of saved images"`
}

func (c *renderCmd) Run(a *app) error {
	doc, err := pdfdoc.Open(c.Input, a.log, pdfdoc.Options{})
	if err != nil {
		return err
	}
	defer doc.Close()

	pages := []int{c.Page - 1}
	if c.All {
		pages = pages[:0]
		for i := 0; i < doc.NumPages(); i++ {
			pages = append(pages, i)
		}
	}

	// fitz serializes rasterization; encoding and writing run in parallel.
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, index := range pages {
		index := index
		g.Go(func() error {
			img, err := doc.Render(index, c.Zoom)
			if err != nil {
				return err
			}

			name := pdfutils.PageImagePath(c.Output, c.BaseName, index, c.Format)
			if err := pdfutils.WriteImage(img, name, c.Format, c.Quality); err != nil {
				return errors.Wrapf(err, "write %s", name)
			}

			a.log.WithFields(logrus.Fields{"page": index + 1, "path": name}).Debug("rendered page")

			return nil
		})
	}

	return g.Wait()
}

type listCmd struct {
	Input        string    `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
	NoText       bool      `short:"t" help:"Do not extract the text under highlights"`
	IgnoreBefore time.Time `short:"b" help:"Ignore annotations added before this date. Must be ISO 8601 formatted"`
}

func (c *listCmd) Run(a *app) error {
	doc, err := pdfdoc.Open(c.Input, a.log, pdfdoc.Options{})
	if err != nil {
		return err
	}
	defer doc.Close()

	annots, err := doc.Annotations(!c.NoText)
	if err != nil {
		return err
	}

	logOutput(filterBefore(annots, c.IgnoreBefore))

	return nil
}

func filterBefore(annots []*pdfutils.Annotation, before time.Time) []*pdfutils.Annotation {
	if before.IsZero() {
		return annots
	}

	kept := []*pdfutils.Annotation{}
	for _, annot := range annots {
		date, err := time.Parse(time.RFC3339, annot.Date)
		if err == nil && date.Before(before) {
			continue
		}
		kept = append(kept, annot)
	}

	return kept
}

func logOutput(annots []*pdfutils.Annotation) {
	jsonAnnots, err := json.Marshal(annots)

	endIfErr(err)

	oLog := log.New(os.Stdout, "", 0)
	oLog.Println(string(jsonAnnots))
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("pdfmark"),
		kong.Description("View, highlight and draw on PDF pages."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	endIfErr(err)

	if cli.LogFile != "" {
		cfg.LogFile = cli.LogFile
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	logger, closeLog, err := newLogger(cfg)
	endIfErr(err)

	err = ctx.Run(&app{cfg: cfg, log: logger})
	if err != nil {
		logger.WithError(err).Error("command failed")
	}

	closeLog()
	ctx.FatalIfErrorf(err)
}
