package driver

import (
	"fmt"
	"testing"

	"lumina/internal/include"
)

const cleanSource = `
namespace Demo {
	float addOne(float v) {
		float result;
		result = v + 1.0;
		return result;
	}

	VertexPass() {
		float total;
		total = addOne(2.0);
		return;
	}
}
`

func TestCompileCleanProgramProducesNoDiagnostics(t *testing.T) {
	r := Compile("test.lum", cleanSource, Options{})
	if !r.Diagnostics.Empty() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics.Items())
	}
	if r.Module == nil {
		t.Fatal("expected a non-nil module")
	}
	if _, ok := r.Module.StageFunctions["VertexPass"]; !ok {
		t.Errorf("expected VertexPass to be lifted into StageFunctions")
	}
}

func TestCompileExpandsIncludesBeforeParsing(t *testing.T) {
	reader := fakeReader{"/proj/common.lum": "float gain;"}
	r := Compile("/proj/main.lum", `#include "common.lum"
void f() {}`, Options{IncludePaths: []string{"/proj"}, Reader: reader})
	if !r.Diagnostics.Empty() {
		t.Fatalf("unexpected diagnostics: %v", r.Diagnostics.Items())
	}
	found := false
	for _, tok := range r.Tokens {
		if tok.Lexeme == "gain" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the included file's tokens to appear in r.Tokens")
	}
}

func TestCompileReportsParseAndSemanticDiagnosticsTogether(t *testing.T) {
	r := Compile("test.lum", `void f() { missing(1) }`, Options{})
	if r.Diagnostics.Empty() {
		t.Fatalf("expected diagnostics for a missing ';' and an undeclared function")
	}
}

func TestCompileAllPreservesUnitOrder(t *testing.T) {
	units := []Unit{
		{File: "a.lum", Source: "float a;"},
		{File: "b.lum", Source: "float b;"},
		{File: "c.lum", Source: "float c;"},
	}
	results := CompileAll(units, Options{}, 2)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []string{"a.lum", "b.lum", "c.lum"} {
		if results[i].File != want {
			t.Errorf("results[%d].File = %q, want %q", i, results[i].File, want)
		}
	}
}

func TestCompileAllDefaultsWorkersToAtLeastOne(t *testing.T) {
	units := []Unit{{File: "a.lum", Source: "float a;"}}
	results := CompileAll(units, Options{}, 0)
	if len(results) != 1 || results[0] == nil {
		t.Fatalf("got %v", results)
	}
}

func TestSummaryReportsOkOrDiagnosticCount(t *testing.T) {
	clean := Compile("ok.lum", "float a;", Options{})
	if got := Summary(clean); got != "ok.lum: ok" {
		t.Errorf("Summary(clean) = %q, want %q", got, "ok.lum: ok")
	}

	broken := Compile("broken.lum", "float a", Options{})
	want := fmt.Sprintf("broken.lum: %d diagnostic(s)", broken.Diagnostics.Len())
	if got := Summary(broken); got != want {
		t.Errorf("Summary(broken) = %q, want %q", got, want)
	}
}

// fakeReader is an in-memory include.Reader, avoiding any real filesystem
// access in these tests.
type fakeReader map[string]string

func (f fakeReader) ReadFile(path string) (string, error) {
	if src, ok := f[path]; ok {
		return src, nil
	}
	return "", fmt.Errorf("no such file: %s", path)
}

var _ include.Reader = fakeReader{}
