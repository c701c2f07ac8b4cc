package viewer

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoDocument is returned by operations that need an open document.
	ErrNoDocument  = errors.New("no document open")
	ErrNotPDF      = errors.New("not a PDF document")
	ErrNoPages     = errors.New("the document has no pages")
	ErrUnknownTool = errors.New("unknown tool")
	ErrNoTool      = errors.New("no tool selected")
)

type Kind int

const (
	KindOpen Kind = iota + 1
	KindSave
	KindAnnotate
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindSave:
		return "save"
	case KindAnnotate:
		return "annotate"
	case KindRender:
		return "render"
	}
	return "unknown"
}

// Error is a failed document operation. The session state it leaves behind
// is the state before the operation, except for KindRender.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Cause() error { return e.Err }

// KindOf reports the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
