// Package diag implements Lumina's diagnostic model: the error taxonomy of
// spec.md §7, a resettable process-wide counter (spec.md §5), and a
// source-caret renderer. It generalizes the teacher's internal/errors
// package (SentraError/SourceLocation/WithSource) from a single runtime
// error shape into the compiler's multi-category diagnostic record, and
// drops the teacher's CallStack (a compiler front end has no call stack to
// report).
package diag

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"lumina/internal/token"
)

// Category is one of the stable taxonomy buckets from spec.md §7.
type Category string

const (
	Lexical            Category = "lexical"
	Syntactic          Category = "syntactic"
	Include            Category = "include"
	SemanticDeclaration Category = "semantic-declaration"
	SemanticReference   Category = "semantic-reference"
	SemanticTyping      Category = "semantic-typing"
	Pipeline            Category = "pipeline"
)

// Diagnostic is one recorded compiler error. It is never fatal: callers
// append it to a slice and keep going (spec.md §4.3, §4.4, §7).
type Diagnostic struct {
	Category Category
	Message  string
	Span     token.Span
}

// Error satisfies the error interface so a Diagnostic can be returned or
// wrapped like any other Go error, but the compiler itself never uses
// Go-level error propagation to abandon work — it records Diagnostics into
// a slice instead.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Category, d.Message)
}

// New constructs a Diagnostic anchored at span.
func New(category Category, span token.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Category: category, Message: fmt.Sprintf(format, args...), Span: span}
}

// Counter is the single process-wide diagnostic tally described in
// spec.md §5 ("The only shared process-wide state is a diagnostic
// counter"). It must be resettable between compilation runs (spec.md §6).
type Counter struct {
	n int64
}

func (c *Counter) Add(delta int) { atomic.AddInt64(&c.n, int64(delta)) }
func (c *Counter) Count() int    { return int(atomic.LoadInt64(&c.n)) }
func (c *Counter) Reset()        { atomic.StoreInt64(&c.n, 0) }

// Global is the process-wide counter instance CLI entry points use.
var Global = &Counter{}

// Bag collects diagnostics for one compilation unit and keeps Global in
// sync as entries are appended.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
	Global.Add(1)
}

func (b *Bag) Addf(category Category, span token.Span, format string, args ...interface{}) {
	b.Add(New(category, span, format, args...))
}

func (b *Bag) Items() []Diagnostic { return b.items }
func (b *Bag) Len() int            { return len(b.items) }
func (b *Bag) Empty() bool         { return len(b.items) == 0 }

// Renderer formats diagnostics with an optional source line and a caret
// range underlining the offending span, colorized when writing to a
// terminal. This is the teacher's SentraError.Error() "type / location /
// source / caret" shape, extended to underline a full span rather than a
// single column and to auto-detect color support the way a real CLI does.
type Renderer struct {
	Color bool
}

// NewRenderer detects terminal support for fd via go-isatty, matching the
// ecosystem's standard isatty+color pairing (mattn/go-isatty feeding
// fatih/color, as seen across this pack's CLI-shaped repositories).
func NewRenderer(fd uintptr, forceColor, noColor bool) *Renderer {
	if noColor {
		return &Renderer{Color: false}
	}
	if forceColor {
		return &Renderer{Color: true}
	}
	return &Renderer{Color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (r *Renderer) Render(d Diagnostic, sourceLine string) string {
	var sb strings.Builder

	label := fmt.Sprintf("%s", d.Category)
	if r.Color {
		label = color.New(color.FgRed, color.Bold).Sprint(label)
	}
	fmt.Fprintf(&sb, "%s: %s: %s\n", d.Span, label, d.Message)

	if sourceLine != "" {
		fmt.Fprintf(&sb, "  %s\n", sourceLine)
		col := d.Span.Start.Column
		width := d.Span.End.Column - d.Span.Start.Column
		if width < 1 {
			width = 1
		}
		caret := strings.Repeat(" ", col) + strings.Repeat("^", width)
		if r.Color {
			caret = color.New(color.FgGreen, color.Bold).Sprint(caret)
		}
		fmt.Fprintf(&sb, "  %s\n", caret)
	}
	return sb.String()
}
