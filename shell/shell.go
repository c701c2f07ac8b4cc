// Package shell drives a viewer session from typed commands, either
// interactively through ishell or from a script.
package shell

import (
	"bufio"
	"io"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/config"
	"github.com/mgmeyers/pdfmark/viewer"
)

var errUsage = errors.New("usage")

type command struct {
	name  string
	usage string
	help  string
	run   func(args []string) error
}

type Shell struct {
	session  *viewer.Session
	present  *presenter
	log      logrus.FieldLogger
	out      io.Writer
	commands []command
}

func New(cfg config.Config, open viewer.Opener, out io.Writer, log logrus.FieldLogger) (*Shell, error) {
	palette, err := viewer.NewPalette(cfg.Tools)
	if err != nil {
		return nil, err
	}

	p := &presenter{out: out, cfg: cfg, log: log, palette: palette}

	session, err := viewer.NewSession(cfg, open, p, log)
	if err != nil {
		return nil, err
	}

	s := &Shell{
		session: session,
		present: p,
		log:     log,
		out:     out,
	}
	s.commands = s.buildCommands()

	return s, nil
}

func (s *Shell) Session() *viewer.Session {
	return s.session
}

func (s *Shell) lookup(name string) (command, bool) {
	for _, c := range s.commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Exec runs one command line. Failures are reported here, once, and also
// returned.
func (s *Shell) Exec(args []string) error {
	if len(args) == 0 {
		return nil
	}

	c, ok := s.lookup(args[0])
	if !ok {
		err := errors.Errorf("unknown command %q", args[0])
		io.WriteString(s.out, err.Error()+"\n")
		return err
	}

	err := c.run(args[1:])
	if errors.Cause(err) == errUsage {
		io.WriteString(s.out, "usage: "+c.usage+"\n")
		return err
	}

	s.report(err)

	return err
}

// report is the single place where operation errors reach the user.
func (s *Shell) report(err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, viewer.ErrNoDocument):
		s.present.ShowStatus("No document open")
		return
	case errors.Is(err, viewer.ErrNoTool):
		s.present.ShowStatus("No tool selected")
		return
	}

	entry := s.log.WithError(err)
	if kind := viewer.KindOf(err); kind != 0 {
		entry = entry.WithField("kind", kind.String())
	}
	entry.Error("operation failed")

	s.present.showDiagnostic(err)
}

// RunScript executes one command per line. Blank lines and lines starting
// with # are skipped. It returns the number of failed commands.
func (s *Shell) RunScript(r io.Reader) (int, error) {
	failures := 0
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := s.Exec(strings.Fields(line)); err != nil {
			failures++
		}
	}

	return failures, scanner.Err()
}

// Interactive builds an ishell with every command registered.
func (s *Shell) Interactive() *ishell.Shell {
	sh := ishell.New()
	sh.SetPrompt("pdfmark> ")

	for _, c := range s.commands {
		c := c
		sh.AddCmd(&ishell.Cmd{
			Name:     c.name,
			Help:     c.help,
			LongHelp: "usage: " + c.usage,
			Func: func(ctx *ishell.Context) {
				s.Exec(append([]string{c.name}, ctx.Args...))
			},
		})
	}

	return sh
}

func (s *Shell) Close() error {
	return s.session.Close()
}
