// Package driver ties the pipeline stages together: lexer, include
// resolver, parser, analyzer. Writing the artifact is left to the caller
// (cmd/luminac/commands). A Result carries everything
// a CLI command needs without re-running any stage. Per spec.md §9,
// Lexer/Parser/Analyzer instances are never reused or shared across
// concurrent compilations; CompileAll below hands each unit its own set.
package driver

import (
	"fmt"
	"sync"

	"lumina/internal/analyzer"
	"lumina/internal/diag"
	"lumina/internal/include"
	"lumina/internal/ir"
	"lumina/internal/lexer"
	"lumina/internal/parser"
	"lumina/internal/token"
)

// Result is the outcome of compiling one source file.
type Result struct {
	File        string
	Module      *ir.Module
	Diagnostics *diag.Bag
	Tokens      []token.Token // post-include-expansion, kept for tooling/tests
}

// Options configures one compilation.
type Options struct {
	IncludePaths []string
	Reader       include.Reader // nil defaults to include.OSReader{}
}

// Compile runs the full pipeline over source, which is the already-read
// text of file (CRLF/CR normalization is the caller's responsibility, done
// once per spec.md §6.6 before any file reaches this function).
func Compile(file, source string, opts Options) *Result {
	bag := &diag.Bag{}

	tokens := lexer.New(file, source).Tokenize()

	reader := opts.Reader
	if reader == nil {
		reader = include.OSReader{}
	}
	resolver := include.NewResolver(reader, opts.IncludePaths, bag)
	tokens = resolver.Resolve(file, tokens)

	p := parser.New(file, tokens, bag)
	units := p.ParseUnit()

	a := analyzer.New(bag)
	mod := a.Analyze(units)

	return &Result{File: file, Module: mod, Diagnostics: bag, Tokens: tokens}
}

// Unit names one source file to compile as part of a batch.
type Unit struct {
	File   string
	Source string
}

// CompileAll compiles every unit concurrently with a bounded worker pool
// (spec.md §5's "MAY compile multiple independent translation units
// concurrently"), grounded in the teacher's internal/concurrency worker-pool
// idiom (sync.WaitGroup + buffered channel). Results are returned in the
// same order as units regardless of completion order; no symbol table is
// ever shared across units.
func CompileAll(units []Unit, opts Options, workers int) []*Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(units))
	jobs := make(chan int, len(units))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				u := units[i]
				results[i] = Compile(u.File, u.Source, opts)
			}
		}()
	}
	for i := range units {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// Summary renders a one-line human summary of a Result, in the teacher's
// terse status-line style.
func Summary(r *Result) string {
	if r.Diagnostics.Empty() {
		return fmt.Sprintf("%s: ok", r.File)
	}
	return fmt.Sprintf("%s: %d diagnostic(s)", r.File, r.Diagnostics.Len())
}
