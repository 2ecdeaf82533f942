package include

import (
	"fmt"
	"testing"

	"lumina/internal/diag"
	"lumina/internal/lexer"
	"lumina/internal/token"
)

// fakeReader is an in-memory Reader so tests never touch the real
// filesystem, matching the Reader interface's stated purpose.
type fakeReader map[string]string

func (f fakeReader) ReadFile(path string) (string, error) {
	if src, ok := f[path]; ok {
		return src, nil
	}
	return "", fmt.Errorf("no such file: %s", path)
}

func toks(src string) []token.Token {
	return lexer.New("main.lum", src).Tokenize()
}

func names(toks []token.Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Lexeme)
	}
	return out
}

func TestResolveInlinesAStringInclude(t *testing.T) {
	reader := fakeReader{"/proj/common.lum": "float gain;"}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/proj"}, Diagnostics: bag}

	out := r.Resolve("main.lum", toks(`#include "common.lum"
void f() {}`))
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := names(out)
	want := []string{"float", "gain", ";", "void", "f", "(", ")", "{", "}", ""} // "" is the parent's EOF
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestResolveInlinesAHeaderInclude(t *testing.T) {
	reader := fakeReader{"/proj/common/lighting.lumh": "float gain;"}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/proj"}, Diagnostics: bag}

	out := r.Resolve("main.lum", toks(`#include <common/lighting.lumh>
void f() {}`))
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := names(out)
	want := []string{"float", "gain", ";", "void", "f", "(", ")", "{", "}", ""} // "" is the parent's EOF
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("token %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestResolveDropsTheChildsOwnEOF(t *testing.T) {
	reader := fakeReader{"/proj/lib.lum": "int x;"}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/proj"}, Diagnostics: bag}

	out := r.Resolve("main.lum", toks(`#include "lib.lum"`))
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(out) != 4 { // int, x, ;, then the parent stream's own final EOF
		t.Fatalf("got %d tokens: %v", len(out), names(out))
	}
}

func TestResolveMissingFileRecordsIncludeDiagnostic(t *testing.T) {
	reader := fakeReader{}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/proj"}, Diagnostics: bag}

	r.Resolve("main.lum", toks(`#include "missing.lum"`))
	if bag.Empty() {
		t.Fatalf("expected a diagnostic for a missing include file")
	}
	if bag.Items()[0].Category != diag.Include {
		t.Errorf("category = %s, want %s", bag.Items()[0].Category, diag.Include)
	}
}

func TestResolveDetectsIncludeCycle(t *testing.T) {
	reader := fakeReader{
		"/proj/a.lum": `#include "b.lum"`,
		"/proj/b.lum": `#include "a.lum"`,
	}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/proj"}, Diagnostics: bag}

	r.Resolve("/proj/a.lum", toks(`#include "b.lum"`))
	found := false
	for _, d := range bag.Items() {
		if d.Category == diag.Include {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an include diagnostic for the cycle, got %v", bag.Items())
	}
}

func TestResolveSearchesCallerSuppliedDirsBeforeIncludingFileDir(t *testing.T) {
	reader := fakeReader{
		"/vendor/shared.lum": "int fromVendor;",
		"/proj/shared.lum":   "int fromProj;",
	}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, SearchDirs: []string{"/vendor"}, Diagnostics: bag}

	out := r.Resolve("/proj/main.lum", toks(`#include "shared.lum"`))
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := names(out)
	if len(got) < 2 || got[1] != "fromVendor" {
		t.Errorf("got %v, want the vendor-dir copy to win", got)
	}
}

func TestResolveFallsBackToIncludingFileDirectory(t *testing.T) {
	reader := fakeReader{"/proj/shared.lum": "int fromProj;"}
	bag := &diag.Bag{}
	r := &Resolver{Reader: reader, Diagnostics: bag}

	out := r.Resolve("/proj/main.lum", toks(`#include "shared.lum"`))
	if !bag.Empty() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	got := names(out)
	if len(got) < 2 || got[1] != "fromProj" {
		t.Errorf("got %v, want the including file's directory to be searched", got)
	}
}

func TestNewResolverSeedsSearchDirsFromExtraFlags(t *testing.T) {
	r := NewResolver(fakeReader{}, []string{"vendor", "lib"}, &diag.Bag{})
	if len(r.SearchDirs) != 2 || r.SearchDirs[0] != "vendor" || r.SearchDirs[1] != "lib" {
		t.Errorf("SearchDirs = %v, want [vendor lib] (no %s set)", r.SearchDirs, EnvVar)
	}
}
