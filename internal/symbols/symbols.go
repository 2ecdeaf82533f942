// Package symbols implements the namespace-scoped symbol table of
// spec.md §3: a tree of namespaces, each owning uniquely-keyed Type,
// Variable, Function, and PipelineFlow entries.
package symbols

import (
	"strings"

	"lumina/internal/ast"
	"lumina/internal/types"
)

// AggregateClass classifies a Type entry, per spec.md §3.
type AggregateClass int

const (
	ClassStandard AggregateClass = iota
	ClassStruct
	ClassAttributeBlock
	ClassConstantBlock
)

// TypeField is one ordered field of a Type entry.
type TypeField struct {
	Type      string
	Name      string
	ArrayDims int
}

// Operator is keyed by (operator, rhs-type) and mangled via the
// operator-name map to <TypeName>_Operator<OpName>.
type Operator struct {
	Symbol     string
	RHSType    string // "" for unary/postfix operators
	MangledFn  string
}

// Type is a Type entry in the symbol table.
type Type struct {
	Name         string // local name
	Mangled      string // <nsPath>_<localName>, colons replaced with underscores
	Fields       []TypeField
	Conversions  map[string]bool // admitted implicit conversions to other type names
	Constructors []string        // mangled constructor function names
	Methods      map[string]string // local method name -> mangled function name
	Operators    []Operator
	Class        AggregateClass
}

// Variable is a Variable entry: lives in an enclosing namespace (global)
// or a function-local scope.
type Variable struct {
	Type      string
	Name      string
	ArrayDims int
	ByRef     bool
}

// Param mirrors ast.Param once resolved to a concrete type name.
type Param struct {
	Type      string
	ByRef     bool
	ArrayDims int
	Name      string
}

// Function is a Function entry; overloads share a Namespace.Functions key
// and are distinguished by parameter types (spec.md §3). Once the analyzer
// has disambiguated them, each overload's Mangled is that key plus "$i".
type Function struct {
	ReturnType string
	Mangled    string
	Params     []Param
	Body       []ast.Statement // CST body, lowered lazily by the analyzer
	IsMethod   bool
	SelfType   string // set when lifted from a method/operator/constructor
}

// Direction of a PipelineFlow.
type Direction int

const (
	In Direction = iota
	Out
)

// PipelineFlow records declared dataflow between adjacent stages.
type PipelineFlow struct {
	Direction Direction
	Stage     string
	Variable  Variable
}

// Namespace is one node of the symbol-table tree.
type Namespace struct {
	Name      string
	Parent    *Namespace
	Children  map[string]*Namespace
	Types     map[string]*Type
	Variables map[string]*Variable
	Functions map[string][]*Function // keyed by mangled name; slice holds overloads
	Flows     []PipelineFlow
}

func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		Name:      name,
		Parent:    parent,
		Children:  map[string]*Namespace{},
		Types:     map[string]*Type{},
		Variables: map[string]*Variable{},
		Functions: map[string][]*Function{},
	}
}

// QualifiedPath returns the list of namespace names from the root
// (exclusive of the unnamed global root) down to ns.
func (ns *Namespace) QualifiedPath() []string {
	if ns.Parent == nil {
		return nil
	}
	return append(ns.Parent.QualifiedPath(), ns.Name)
}

// Mangle forms the <nsPath>_<localName> mangled name, colons replaced by
// underscores per spec.md §4.4.1.
func Mangle(nsPath []string, localName string) string {
	parts := append(append([]string{}, nsPath...), localName)
	joined := strings.Join(parts, "::")
	return strings.ReplaceAll(joined, "::", "_")
}

// MangleOperatorMethod forms <TypeName>_Operator<OpName>.
func MangleOperatorMethod(typeName, opName string) string {
	return typeName + "_Operator" + opName
}

// MangleMethod forms <TypeName>_<methodName>.
func MangleMethod(typeName, methodName string) string {
	return typeName + "_" + methodName
}

// Table is the root of the namespace tree plus the preloaded built-in
// type registry and conversion lattice (spec.md §9: installed once).
type Table struct {
	Root      *Namespace
	Builtins  map[string]*types.Builtin
	Lattice   map[string]map[string]int
}

// NewTable builds a fresh Table with every mandatory built-in type
// preloaded into the root namespace as Type entries classified Standard.
func NewTable() *Table {
	root := NewNamespace("", nil)
	builtins := types.Builtins()
	for _, name := range types.BuiltinNames {
		b := builtins[name]
		fields := make([]TypeField, 0, len(b.Fields))
		for _, f := range b.Fields {
			fields = append(fields, TypeField{Type: b.ScalarKind, Name: f.Name})
		}
		root.Types[name] = &Type{
			Name:    name,
			Mangled: name,
			Fields:  fields,
			Class:   ClassStandard,
		}
	}
	return &Table{Root: root, Builtins: builtins, Lattice: types.ConversionLattice()}
}

// LookupType resolves a single local type name by trying from, then each
// enclosing namespace outward, then the global namespace (spec.md §4.4.2).
// It takes no namespace qualifier: callers pass the last part of a
// qualified name, so a type inside a namespace that does not enclose from
// is not found.
func LookupType(from *Namespace, name string) (*Type, *Namespace) {
	for ns := from; ns != nil; ns = ns.Parent {
		if t, ok := ns.Types[name]; ok {
			return t, ns
		}
	}
	return nil, nil
}

// LookupVariable resolves name the same way as LookupType, for globals.
func LookupVariable(from *Namespace, name string) (*Variable, *Namespace) {
	for ns := from; ns != nil; ns = ns.Parent {
		if v, ok := ns.Variables[name]; ok {
			return v, ns
		}
	}
	return nil, nil
}

// LookupFunctions resolves every overload sharing mangled name, searching
// outward the same way.
func LookupFunctions(from *Namespace, mangled string) []*Function {
	for ns := from; ns != nil; ns = ns.Parent {
		if fns, ok := ns.Functions[mangled]; ok {
			return fns
		}
	}
	return nil
}
