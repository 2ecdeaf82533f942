// Package types hosts Lumina's built-in type registry and the
// implicit-conversion lattice, per spec.md §3 (the operator-name mangling
// map lives in internal/token as token.OperatorName). The
// registry is populated once and addressed by name thereafter (spec.md §9
// "Built-in types... installed once at analyzer construction").
package types

// ExprType is an expression's deduced type: a named type plus array
// dimensions (spec.md §3 "ExprType").
type ExprType struct {
	Name      string
	ArrayDims int
}

func (e ExprType) Equal(o ExprType) bool {
	return e.Name == o.Name && e.ArrayDims == o.ArrayDims
}

func (e ExprType) String() string {
	s := e.Name
	for i := 0; i < e.ArrayDims; i++ {
		s += "[]"
	}
	return s
}

// Field is one ordered attribute of a composite type.
type Field struct {
	Type      string
	Name      string
	ArrayDims int
}

// Builtin describes one preloaded built-in type's shape: its fields (for
// vectors, colors and matrices, the single-letter component fields only;
// multi-letter swizzles are not listed and are recognized during lowering)
// and the scalar family it belongs to for conversion purposes.
type Builtin struct {
	Name       string
	Fields     []Field
	ScalarKind string // "" for non-scalar-like types
	VectorSize int    // 0 if not a vector/color
	Family     string // conversion family key: "int-uint-float", "vecN" (shared by the float, Int and UInt variants; Color is "vec4"), "matN", ""
}

// Names of every mandatory built-in, preloaded before parsing (spec.md §3).
var BuiltinNames = []string{
	"void", "bool", "int", "uint", "float",
	"Color", "Texture",
	"Vector2", "Vector2Int", "Vector2UInt",
	"Vector3", "Vector3Int", "Vector3UInt",
	"Vector4", "Vector4Int", "Vector4UInt",
	"Matrix2x2", "Matrix3x3", "Matrix4x4",
}

var componentNames = []string{"x", "y", "z", "w"}
var colorComponentNames = []string{"r", "g", "b", "a"}

func vectorFields(n int, names []string) []Field {
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		fields = append(fields, Field{Type: "", Name: names[i]})
	}
	return fields
}

// Builtins is the preloaded table of mandatory built-in types.
func Builtins() map[string]*Builtin {
	m := map[string]*Builtin{
		"void":  {Name: "void"},
		"bool":  {Name: "bool"},
		"int":   {Name: "int", ScalarKind: "int", Family: "int-uint-float"},
		"uint":  {Name: "uint", ScalarKind: "uint", Family: "int-uint-float"},
		"float": {Name: "float", ScalarKind: "float", Family: "int-uint-float"},

		"Texture": {Name: "Texture"},

		"Color": {Name: "Color", VectorSize: 4, ScalarKind: "float", Family: "vec4"},

		"Vector2":     {Name: "Vector2", VectorSize: 2, ScalarKind: "float", Family: "vec2"},
		"Vector2Int":  {Name: "Vector2Int", VectorSize: 2, ScalarKind: "int", Family: "vec2"},
		"Vector2UInt": {Name: "Vector2UInt", VectorSize: 2, ScalarKind: "uint", Family: "vec2"},

		"Vector3":     {Name: "Vector3", VectorSize: 3, ScalarKind: "float", Family: "vec3"},
		"Vector3Int":  {Name: "Vector3Int", VectorSize: 3, ScalarKind: "int", Family: "vec3"},
		"Vector3UInt": {Name: "Vector3UInt", VectorSize: 3, ScalarKind: "uint", Family: "vec3"},

		"Vector4":     {Name: "Vector4", VectorSize: 4, ScalarKind: "float", Family: "vec4"},
		"Vector4Int":  {Name: "Vector4Int", VectorSize: 4, ScalarKind: "int", Family: "vec4"},
		"Vector4UInt": {Name: "Vector4UInt", VectorSize: 4, ScalarKind: "uint", Family: "vec4"},

		"Matrix2x2": {Name: "Matrix2x2", VectorSize: 2, ScalarKind: "float", Family: "mat2"},
		"Matrix3x3": {Name: "Matrix3x3", VectorSize: 3, ScalarKind: "float", Family: "mat3"},
		"Matrix4x4": {Name: "Matrix4x4", VectorSize: 4, ScalarKind: "float", Family: "mat4"},
	}
	for name, b := range m {
		if b.VectorSize > 0 && name != "Color" {
			b.Fields = vectorFields(b.VectorSize, componentNames)
		} else if name == "Color" {
			b.Fields = vectorFields(4, colorComponentNames)
		}
	}
	return m
}

// ComponentNamesFor returns the single-character component field names for
// a vector/color type (the base from which swizzles are built), or nil if
// t is not a vector-like type.
func ComponentNamesFor(b *Builtin) []string {
	if b == nil || b.VectorSize == 0 {
		return nil
	}
	if b.Name == "Color" {
		return colorComponentNames[:b.VectorSize]
	}
	return componentNames[:b.VectorSize]
}

// SwizzleResultType returns the vector type name produced by swizzling n
// components off b (family Vector<n> matching b's scalar kind), b's scalar
// kind when n is 1, or "" if b has no such family (e.g. n > 4).
func SwizzleResultType(b *Builtin, n int) string {
	if n < 1 || n > 4 {
		return ""
	}
	if n == 1 {
		return b.ScalarKind
	}
	suffix := ""
	switch b.ScalarKind {
	case "int":
		suffix = "Int"
	case "uint":
		suffix = "UInt"
	}
	switch n {
	case 2:
		return "Vector2" + suffix
	case 3:
		return "Vector3" + suffix
	case 4:
		return "Vector4" + suffix
	}
	return ""
}

// ConversionLattice is the sparse directed graph of spec.md §3's implicit
// conversion rules: scalar <-> among {int,uint,float}; each VectorN family
// closed under conversion within the same N; Color <-> Vector4; MatrixN <->
// VectorN. Edges cost 1; paths never compose (only direct edges count).
func ConversionLattice() map[string]map[string]int {
	lat := map[string]map[string]int{}
	edge := func(a, b string) {
		if lat[a] == nil {
			lat[a] = map[string]int{}
		}
		lat[a][b] = 1
	}
	biEdge := func(a, b string) { edge(a, b); edge(b, a) }

	for _, a := range []string{"int", "uint", "float"} {
		for _, b := range []string{"int", "uint", "float"} {
			if a != b {
				edge(a, b)
			}
		}
	}

	vecFamilies := map[string][]string{
		"2": {"Vector2", "Vector2Int", "Vector2UInt"},
		"3": {"Vector3", "Vector3Int", "Vector3UInt"},
		"4": {"Vector4", "Vector4Int", "Vector4UInt"},
	}
	for _, members := range vecFamilies {
		for _, a := range members {
			for _, b := range members {
				if a != b {
					edge(a, b)
				}
			}
		}
	}

	biEdge("Color", "Vector4")
	biEdge("Matrix2x2", "Vector2")
	biEdge("Matrix3x3", "Vector3")
	biEdge("Matrix4x4", "Vector4")

	return lat
}

// ConversionCost returns the per-argument conversion cost used by overload
// resolution (spec.md §4.4.4): 0 if from==to, 1 if a direct lattice edge
// exists, -1 (infinite) otherwise. bool is isolated, so it never appears
// in the lattice.
func ConversionCost(lattice map[string]map[string]int, from, to string) int {
	if from == to {
		return 0
	}
	if edges, ok := lattice[from]; ok {
		if cost, ok := edges[to]; ok {
			return cost
		}
	}
	return -1
}
