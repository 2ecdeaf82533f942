package parser

import (
	"testing"

	"lumina/internal/ast"
	"lumina/internal/diag"
	"lumina/internal/lexer"
)

// parseString tokenizes and parses input directly (no include expansion),
// returning the parsed instructions and whatever diagnostics the parser's
// tolerant recovery recorded. Unlike the teacher's parser, ParseUnit never
// panics (spec.md §4.3 "Recovery"), so there is no recover() here.
func parseString(input string) ([]ast.Instruction, *diag.Bag) {
	bag := &diag.Bag{}
	toks := lexer.New("test.lum", input).Tokenize()
	p := New("test.lum", toks, bag)
	return p.ParseUnit(), bag
}

func assertParseClean(t *testing.T, input, description string) []ast.Instruction {
	t.Helper()
	insts, bag := parseString(input)
	if !bag.Empty() {
		t.Errorf("%s: expected no diagnostics, got %v", description, bag.Items())
	}
	return insts
}

func assertParseDiagnoses(t *testing.T, input, description string) {
	t.Helper()
	_, bag := parseString(input)
	if bag.Empty() {
		t.Errorf("%s: expected a diagnostic, got none", description)
	}
}

func TestGlobalVariableDeclarations(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"simple declaration", "float x;", true},
		{"with initializer", "float x = 1.0;", true},
		{"array declaration", "float x[];", true},
		{"qualified type", "Demo::Point p;", true},
		{"by-ref declaration", "float &x = y;", true},
		{"missing semicolon", "float x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldPass {
				insts := assertParseClean(t, tt.input, tt.name)
				if len(insts) != 1 {
					t.Errorf("%s: got %d instructions, want 1", tt.name, len(insts))
				}
			} else {
				assertParseDiagnoses(t, tt.input, tt.name)
			}
		})
	}
}

func TestFunctionDeclaration(t *testing.T) {
	insts := assertParseClean(t, `float add(float a, float b) { return a + b; }`, "function decl")
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	fn, ok := insts[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.FunctionDecl", insts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || len(fn.Body) != 1 {
		t.Errorf("unexpected function shape: %+v", fn)
	}
}

func TestNamespaceDeclaration(t *testing.T) {
	insts := assertParseClean(t, `namespace Demo { float x; }`, "namespace decl")
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	ns, ok := insts[0].(*ast.NamespaceDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.NamespaceDecl", insts[0])
	}
	if ns.Name != "Demo" || len(ns.Instructions) != 1 {
		t.Errorf("unexpected namespace shape: %+v", ns)
	}
}

func TestStructDeclaration(t *testing.T) {
	insts := assertParseClean(t, `struct Point {
		float x;
		float y;
		Point(float x, float y) { this.x = x; }
		float length() const { return x; }
		operator + (Point other) const { return this; }
	};`, "struct decl")
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	agg, ok := insts[0].(*ast.AggregateDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.AggregateDecl", insts[0])
	}
	if agg.Kind != ast.KindStruct || len(agg.Fields) != 2 || len(agg.Constructors) != 1 ||
		len(agg.Methods) != 1 || len(agg.Operators) != 1 {
		t.Errorf("unexpected struct shape: %+v", agg)
	}
}

func TestPipelineDeclaration(t *testing.T) {
	insts := assertParseClean(t, `Input -> VertexPass : Vector3 position;`, "pipeline decl")
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	if _, ok := insts[0].(*ast.PipelineDecl); !ok {
		t.Fatalf("got %T, want *ast.PipelineDecl", insts[0])
	}
}

func TestStageFunctionDeclaration(t *testing.T) {
	insts := assertParseClean(t, `VertexPass() { discard; }`, "stage function")
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	sf, ok := insts[0].(*ast.StageFunction)
	if !ok {
		t.Fatalf("got %T, want *ast.StageFunction", insts[0])
	}
	if len(sf.Body) != 1 {
		t.Errorf("unexpected stage body: %+v", sf.Body)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	// "a + b * c" must parse as a + (b * c): the outer node is '+'.
	insts := assertParseClean(t, `void f() { a + b * c; }`, "precedence")
	fn := insts[0].(*ast.FunctionDecl)
	exprStmt := fn.Body[0].(*ast.ExprStmt)
	bin, ok := exprStmt.Expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.BinaryExpr", exprStmt.Expr)
	}
	if bin.Operator != "+" {
		t.Fatalf("outer operator = %q, want %q", bin.Operator, "+")
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Operator != "*" {
		t.Fatalf("rhs = %+v, want a '*' node", bin.Right)
	}
}

func TestTernaryIsRightAssociative(t *testing.T) {
	insts := assertParseClean(t, `void f() { a ? b : c ? d : e; }`, "ternary")
	fn := insts[0].(*ast.FunctionDecl)
	exprStmt := fn.Body[0].(*ast.ExprStmt)
	cond, ok := exprStmt.Expr.(*ast.ConditionalExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.ConditionalExpr", exprStmt.Expr)
	}
	if _, ok := cond.Else.(*ast.ConditionalExpr); !ok {
		t.Fatalf("else branch = %T, want nested conditional", cond.Else)
	}
}

func TestControlFlowStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"if/else", `void f() { if (a) { b; } else { c; } }`},
		{"while", `void f() { while (a) { b; } }`},
		{"do-while", `void f() { do { b; } while (a); }`},
		{"for", `void f() { for (int i = 0; i < 10; i++) { b; } }`},
		{"break/continue", `void f() { while (a) { break; continue; } }`},
		{"return value", `int f() { return 1; }`},
		{"return void", `void f() { return; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertParseClean(t, tt.input, tt.name)
		})
	}
}

func TestMissingClosingBraceRecordsDiagnosticAndRecovers(t *testing.T) {
	insts, bag := parseString(`void f() { return; `)
	if bag.Empty() {
		t.Fatalf("expected a diagnostic for the missing '}'")
	}
	if len(insts) != 1 {
		t.Fatalf("parser should still recover a FunctionDecl instruction, got %d", len(insts))
	}
}

func TestStrayStageKeywordIsDiagnosedNotPanicked(t *testing.T) {
	assertParseDiagnoses(t, `Input x;`, "stray Input outside pipeline decl")
}

func TestUnexpectedTokenInExpressionRecovers(t *testing.T) {
	// A garbage token inside an expression position must not abort parsing
	// of the rest of the unit (tolerant recovery, spec.md §4.3).
	insts, bag := parseString(`void f() { @; } void g() { return; }`)
	if bag.Empty() {
		t.Fatalf("expected a diagnostic for the stray '@'")
	}
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2 (parser should recover and continue)", len(insts))
	}
}
