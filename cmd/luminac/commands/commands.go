// Package commands implements luminac's subcommands, split out of main the
// way the teacher splits cmd/sentra/commands from cmd/sentra/main.go.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"lumina/internal/artifact"
	"lumina/internal/config"
	"lumina/internal/diag"
	"lumina/internal/driver"
	"lumina/internal/history"

	"github.com/fatih/color"
)

// Build runs the full pipeline and writes the IR artifact. It is also the
// implicit command: `luminac file.lum` is sugar for `luminac build file.lum`.
func Build(opts *config.Options) error {
	start := time.Now()
	result, source, err := runPipeline(opts)
	if err != nil {
		return err
	}
	reportDiagnostics(result.Diagnostics, sourceLines(source))

	if diag.Global.Count() > 0 {
		return fmt.Errorf("build failed: %d diagnostic(s)", diag.Global.Count())
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", opts.Output, err)
	}
	defer out.Close()

	if strings.HasSuffix(opts.Output, ".json") {
		err = artifact.WriteJSON(out, result.Module)
	} else {
		err = artifact.WriteBinary(out, result.Module)
	}
	if err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}

	if opts.Verbose {
		fmt.Printf("%s -> %s (%s)\n", opts.Input, opts.Output, time.Since(start).Round(time.Millisecond))
	}

	recordHistory(opts, result, start, len(source))
	return nil
}

// Check runs the pipeline but never writes output; exit status still
// reflects the diagnostic count, per the teacher's check/lint aliases.
func Check(opts *config.Options) error {
	result, source, err := runPipeline(opts)
	if err != nil {
		return err
	}
	reportDiagnostics(result.Diagnostics, sourceLines(source))
	if diag.Global.Count() > 0 {
		return fmt.Errorf("%s: %d diagnostic(s)", opts.Input, diag.Global.Count())
	}
	fmt.Printf("%s: ok\n", opts.Input)
	return nil
}

// History lists recent compilation runs from the build-history store.
func History() error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded compilation runs yet.")
		return nil
	}
	for _, r := range runs {
		fmt.Println(history.FormatRow(r))
	}
	return nil
}

func runPipeline(opts *config.Options) (*driver.Result, []byte, error) {
	diag.Global.Reset()
	source, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", opts.Input, err)
	}
	result := driver.Compile(opts.Input, normalizeNewlines(string(source)), driver.Options{
		IncludePaths: opts.IncludePaths,
	})
	return result, source, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func reportDiagnostics(bag *diag.Bag, lines []string) {
	renderer := diag.NewRenderer(os.Stderr.Fd(), false, os.Getenv("NO_COLOR") != "")
	for _, d := range bag.Items() {
		fmt.Fprint(os.Stderr, renderer.Render(d, sourceLineAt(lines, d.Span.Start.Line)))
	}
}

// sourceLines splits the raw source into its newline-delimited lines so
// reportDiagnostics can show the caret-underlined line a diagnostic points
// at (spec.md §6).
func sourceLines(source []byte) []string {
	return strings.Split(normalizeNewlines(string(source)), "\n")
}

// sourceLineAt returns the 1-indexed line, or "" if out of range.
func sourceLineAt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func recordHistory(opts *config.Options, result *driver.Result, start time.Time, sourceSize int) {
	path, err := history.DefaultPath()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		return
	}
	defer store.Close()

	info, statErr := os.Stat(opts.Output)
	var artifactSize int64
	if statErr == nil {
		artifactSize = info.Size()
	}
	store.Record(opts.Input, opts.Output, result.Diagnostics.Len(), artifactSize, time.Since(start))
}

// Version prints the compiler version, in the teacher's boxed-banner style.
func Version(version string) {
	if color.NoColor {
		fmt.Printf("Lumina compiler v%s\n", version)
		return
	}
	fmt.Println(color.New(color.FgCyan, color.Bold).Sprintf("Lumina compiler v%s", version))
}

// Usage prints the top-level usage banner.
func Usage() {
	fmt.Println("luminac - Lumina shader compiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  luminac <file.lum>              Compile a shader (alias for build)")
	fmt.Println("  luminac build <file.lum>        Compile and write the IR artifact")
	fmt.Println("  luminac check <file.lum>        Validate without writing output")
	fmt.Println("  luminac history                 List recent compilation runs")
	fmt.Println("  luminac version                 Show version")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -o, --output <path>    Output artifact path (default a.out; .json for text form)")
	fmt.Println("  -i, --includePath <dir> Add an include search directory (repeatable)")
	fmt.Println("  -v, --verbose          Verbose output")
	fmt.Println("  -h, --help             Show this help")
}
