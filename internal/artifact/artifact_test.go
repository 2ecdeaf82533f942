package artifact

import (
	"bytes"
	"encoding/json"
	"testing"

	"lumina/internal/ir"
)

func sampleModule() *ir.Module {
	fn := ir.Function{
		ReturnType: "float",
		Mangled:    "Demo_addOne",
		Params:     []ir.Param{{Type: "float", Name: "v"}},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.LiteralExpr{Base: ir.NewBase(ir.TypeRef{Name: "float"}), Text: "1.0"}},
		},
	}
	demo := ir.Namespace{
		Name: "Demo",
		Types: []ir.Type{
			{Name: "Point", Mangled: "Demo_Point", Class: "struct", Fields: []ir.Field{
				{Type: "float", Name: "x"},
				{Type: "float", Name: "y"},
			}},
		},
		Variables: []ir.Variable{{Type: "float", Name: "gain"}},
		Functions: []ir.Function{fn},
		Flows: []ir.PipelineFlow{
			{Direction: ir.In, Stage: "VertexPass", Variable: ir.Variable{Type: "Vector3", Name: "position"}},
		},
	}
	root := ir.Namespace{Children: []ir.Namespace{demo}}
	return &ir.Module{
		Root:     root,
		Textures: []ir.Variable{{Type: "Texture", Name: "albedo"}},
		StageFunctions: map[string]ir.Function{
			"VertexPass": {ReturnType: "void", Mangled: "VertexPass"},
		},
	}
}

func TestBinaryRoundTripPreservesSkeleton(t *testing.T) {
	mod := sampleModule()
	var buf bytes.Buffer
	if err := WriteBinary(&buf, mod); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	skel, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if len(skel.Root.Children) != 1 {
		t.Fatalf("got %d root children, want 1", len(skel.Root.Children))
	}
	demo := skel.Root.Children[0]
	if demo.Name != "Demo" {
		t.Errorf("child namespace name = %q, want Demo", demo.Name)
	}
	if len(demo.TypeNames) != 1 || demo.TypeNames[0] != "Point" {
		t.Errorf("TypeNames = %v, want [Point]", demo.TypeNames)
	}
	if len(demo.FuncNames) != 1 || demo.FuncNames[0] != "Demo_addOne" {
		t.Errorf("FuncNames = %v, want [Demo_addOne]", demo.FuncNames)
	}
}

func TestReadBinaryRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 1, 0, 0, 0})
	if _, err := ReadBinary(buf); err == nil {
		t.Error("expected an error for a bad magic number")
	}
}

func TestReadBinaryRejectsFutureVersion(t *testing.T) {
	mod := sampleModule()
	var buf bytes.Buffer
	if err := WriteBinary(&buf, mod); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	raw := buf.Bytes()
	// Version is the second u32, immediately after the magic number.
	raw[4] = 0xFF
	if _, err := ReadBinary(bytes.NewReader(raw)); err == nil {
		t.Error("expected an error for an unsupported version")
	}
}

func TestWriteBinaryIsDeterministic(t *testing.T) {
	mod := sampleModule()
	var a, b bytes.Buffer
	if err := WriteBinary(&a, mod); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if err := WriteBinary(&b, mod); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two WriteBinary passes over the same module produced different bytes")
	}
}

func TestWriteJSONProducesDiscriminatedUnionShape(t *testing.T) {
	mod := sampleModule()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, mod); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	root, ok := out["root"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing root object: %v", out)
	}
	children, ok := root["children"].([]interface{})
	if !ok || len(children) != 1 {
		t.Fatalf("root.children = %v, want one entry", root["children"])
	}
	demo := children[0].(map[string]interface{})
	functions, ok := demo["functions"].([]interface{})
	if !ok || len(functions) != 1 {
		t.Fatalf("demo.functions = %v, want one entry", demo["functions"])
	}
	fn := functions[0].(map[string]interface{})
	body, ok := fn["body"].([]interface{})
	if !ok || len(body) != 1 {
		t.Fatalf("fn.body = %v, want one entry", fn["body"])
	}
	stmt := body[0].(map[string]interface{})
	if stmt["kind"] != "return" {
		t.Errorf("stmt.kind = %v, want %q", stmt["kind"], "return")
	}
	value, ok := stmt["value"].(map[string]interface{})
	if !ok {
		t.Fatalf("return stmt missing value: %v", stmt)
	}
	if value["kind"] != "literal" || value["text"] != "1.0" {
		t.Errorf("return value = %v, want a literal \"1.0\"", value)
	}
}

func TestWriteJSONOmitsEmptyTextures(t *testing.T) {
	mod := &ir.Module{Root: ir.Namespace{Name: "root"}, StageFunctions: map[string]ir.Function{}}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, mod); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := out["textures"]; ok {
		t.Errorf("expected textures to be omitted when empty, got %v", out["textures"])
	}
}
