// Package include flattens #include directives into a single token
// stream, per spec.md §4.2. It generalizes the teacher's module-path
// resolution idiom (internal/packages.ModuleCache's search-path walking)
// from a package-manager cache lookup to textual file inclusion with
// cycle detection.
package include

import (
	"os"
	"path/filepath"

	"lumina/internal/diag"
	"lumina/internal/lexer"
	"lumina/internal/token"
)

// EnvVar is the well-known environment variable naming include search
// directories (spec.md §6), colon- or semicolon-separated per
// filepath.ListSeparator.
const EnvVar = "LUMINA_INCLUDE_PATH"

// Reader abstracts file access so tests can supply an in-memory file set
// without touching disk.
type Reader interface {
	ReadFile(path string) (string, error)
}

// OSReader reads from the real filesystem.
type OSReader struct{}

func (OSReader) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return normalizeNewlines(string(b)), nil
}

func normalizeNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			out = append(out, '\n')
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// Resolver flattens #include directives found in a token stream.
type Resolver struct {
	Reader       Reader
	SearchDirs   []string // search orders (a) then (b): env-var dirs, then -i/--includePath dirs
	Diagnostics  *diag.Bag
}

// NewResolver builds a Resolver with search dirs seeded from extra (the
// CLI's -i flags) and EnvVar (search order (a) in spec.md §4.2).
func NewResolver(reader Reader, extra []string, bag *diag.Bag) *Resolver {
	var dirs []string
	if env := os.Getenv(EnvVar); env != "" {
		for _, d := range filepathSplitList(env) {
			dirs = append(dirs, filepath.Join(d, "includes"))
		}
	}
	dirs = append(dirs, extra...)
	return &Resolver{Reader: reader, SearchDirs: dirs, Diagnostics: bag}
}

func filepathSplitList(env string) []string {
	return filepath.SplitList(env)
}

// Resolve takes file's already-lexed tokens and replaces every
// #include directive with the tokens of the referenced file, recursively,
// stopping cycles via visited. file is the absolute/display path used for
// relative (c) resolution and for cycle bookkeeping.
func (r *Resolver) Resolve(file string, tokens []token.Token) []token.Token {
	visited := map[string]bool{absOrSelf(file): true}
	return r.expand(file, tokens, visited)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (r *Resolver) expand(file string, tokens []token.Token, visited map[string]bool) []token.Token {
	var out []token.Token
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		if isIncludeStart(tokens, i) {
			directiveSpan := t.Span
			pathTok := tokens[i+2]
			target := pathTok.Lexeme
			i += 3

			resolved, ok := r.findFile(target, file)
			if !ok {
				r.Diagnostics.Addf(diag.Include, directiveSpan, "include file not found: %q", target)
				continue
			}
			key := absOrSelf(resolved)
			if visited[key] {
				r.Diagnostics.Addf(diag.Include, directiveSpan, "include cycle detected at %q", target)
				continue
			}

			src, err := r.Reader.ReadFile(resolved)
			if err != nil {
				r.Diagnostics.Addf(diag.Include, directiveSpan, "include file not found: %q", target)
				continue
			}

			childVisited := make(map[string]bool, len(visited)+1)
			for k := range visited {
				childVisited[k] = true
			}
			childVisited[key] = true

			childTokens := lexer.New(resolved, src).Tokenize()
			// Drop the child's own EOF; the parent stream supplies one.
			if n := len(childTokens); n > 0 && childTokens[n-1].Kind == token.EOF {
				childTokens = childTokens[:n-1]
			}
			out = append(out, r.expand(resolved, childTokens, childVisited)...)
			continue
		}
		out = append(out, t)
		i++
	}
	return out
}

// isIncludeStart reports whether tokens[i:] begins "# include <path-or-string>".
func isIncludeStart(tokens []token.Token, i int) bool {
	if i+2 >= len(tokens) {
		return false
	}
	if tokens[i].Kind != token.KwHash {
		return false
	}
	if tokens[i+1].Kind != token.KwInclude {
		return false
	}
	k := tokens[i+2].Kind
	return k == token.String || k == token.Header
}

// findFile resolves target against the search order of spec.md §4.2:
// (a) env dirs, (b) caller-supplied dirs, (c) parent of including file,
// (d) current working directory.
func (r *Resolver) findFile(target, including string) (string, bool) {
	candidates := make([]string, 0, len(r.SearchDirs)+2)
	for _, d := range r.SearchDirs {
		candidates = append(candidates, filepath.Join(d, target))
	}
	candidates = append(candidates, filepath.Join(filepath.Dir(including), target))
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, target))
	}
	if filepath.IsAbs(target) {
		candidates = append([]string{target}, candidates...)
	}

	for _, c := range candidates {
		if fileExists(r.Reader, c) {
			return c, true
		}
	}
	return "", false
}

func fileExists(reader Reader, path string) bool {
	_, err := reader.ReadFile(path)
	return err == nil
}
