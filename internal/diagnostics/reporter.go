package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/esqlpp/internal/token"
	"github.com/mattn/go-isatty"
)

// Reporter collects diagnostics for one input file. Reporting never
// stops translation; the caller inspects Count at the end.
type Reporter struct {
	File   string
	Errors []*DiagnosticError

	pos token.Token
}

func NewReporter(file string) *Reporter {
	return &Reporter{File: file}
}

// SetPosition records the token that subsequent reports are attributed to.
func (r *Reporter) SetPosition(tok token.Token) {
	r.pos = tok
}

func (r *Reporter) Position() token.Token {
	return r.pos
}

// Report adds a diagnostic at the current position.
func (r *Reporter) Report(code ErrorCode, args ...interface{}) *DiagnosticError {
	return r.Add(NewError(code, r.pos, args...))
}

func (r *Reporter) Add(err *DiagnosticError) *DiagnosticError {
	if err.File == "" {
		err.File = r.File
	}
	r.Errors = append(r.Errors, err)
	return err
}

func (r *Reporter) Count() int {
	return len(r.Errors)
}

// HasCode reports whether any collected diagnostic carries code.
func (r *Reporter) HasCode(code ErrorCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Print writes one line per diagnostic.
func (r *Reporter) Print(w io.Writer, color bool) {
	for _, e := range r.Errors {
		if color {
			fmt.Fprintf(w, "\033[1;31merror:\033[0m %s\n", e.Error())
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Error())
		}
	}
}

// UseColor reports whether f is a terminal that should get ANSI colors.
func UseColor(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
