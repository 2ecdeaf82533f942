// Package analyzer implements Lumina's symbol pass and lowering pass
// (spec.md §4.4): it walks the CST produced by internal/parser, builds a
// namespace-scoped symbol table (internal/symbols), resolves every type
// name, variable reference, and call to an exact target, and emits the
// fully-resolved internal/ir representation plus any diagnostics raised
// along the way. It generalizes the teacher's two-phase
// internal/compiler (internal/compiler/compiler.go performs a single
// visitor pass; internal/compregister/compiler.go separately hoists
// declarations before compiling bodies) into Lumina's declare-then-lower
// structure, trading the teacher's Accept/Visit dispatch for direct type
// switches since Lumina's CST nodes carry no Accept method.
package analyzer

import (
	"sort"

	"lumina/internal/ast"
	"lumina/internal/diag"
	"lumina/internal/ir"
	"lumina/internal/symbols"
)

// Analyzer turns one compilation unit's CST into IR. One instance is
// used per compilation (spec.md §9).
type Analyzer struct {
	Table       *symbols.Table
	Diagnostics *diag.Bag
}

func New(bag *diag.Bag) *Analyzer {
	return &Analyzer{Table: symbols.NewTable(), Diagnostics: bag}
}

// Analyze runs the symbol pass over units, then lowers every declared
// function/method/operator/stage body into IR.
func (a *Analyzer) Analyze(units []ast.Instruction) *ir.Module {
	a.declarePass(units, a.Table.Root)
	disambiguateOverloads(a.Table.Root)

	root := a.lowerNamespace(a.Table.Root)
	mod := &ir.Module{Root: root, StageFunctions: map[string]ir.Function{}}
	extractStageFunctions(&mod.Root, mod.StageFunctions)
	collectTextures(&mod.Root, mod)
	return mod
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lowerNamespace recursively converts one symbols.Namespace into its IR
// counterpart. Map-keyed entries are emitted in sorted order so that two
// runs over the same source produce byte-identical IR (spec.md §6.5).
func (a *Analyzer) lowerNamespace(ns *symbols.Namespace) ir.Namespace {
	out := ir.Namespace{Name: ns.Name}

	for _, k := range sortedKeys(ns.Types) {
		out.Types = append(out.Types, a.lowerType(ns.Types[k]))
	}
	for _, k := range sortedKeys(ns.Variables) {
		v := ns.Variables[k]
		out.Variables = append(out.Variables, ir.Variable{Type: v.Type, Name: v.Name, ArrayDims: v.ArrayDims})
	}
	for _, k := range sortedKeys(ns.Functions) {
		for _, fn := range ns.Functions[k] {
			out.Functions = append(out.Functions, a.lowerFunction(fn, ns))
		}
	}
	for _, flow := range ns.Flows {
		out.Flows = append(out.Flows, ir.PipelineFlow{
			Direction: ir.Direction(flow.Direction),
			Stage:     flow.Stage,
			Variable:  ir.Variable{Type: flow.Variable.Type, Name: flow.Variable.Name, ArrayDims: flow.Variable.ArrayDims},
		})
	}
	for _, k := range sortedKeys(ns.Children) {
		out.Children = append(out.Children, a.lowerNamespace(ns.Children[k]))
	}
	return out
}

func (a *Analyzer) lowerType(t *symbols.Type) ir.Type {
	fields := make([]ir.Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, ir.Field{Type: f.Type, Name: f.Name, ArrayDims: f.ArrayDims})
	}
	ops := make([]ir.Operator, 0, len(t.Operators))
	for _, o := range t.Operators {
		ops = append(ops, ir.Operator{Symbol: o.Symbol, RHSType: o.RHSType, MangledFn: o.MangledFn})
	}
	class := "standard"
	switch t.Class {
	case symbols.ClassStruct:
		class = "struct"
	case symbols.ClassAttributeBlock:
		class = "attribute-block"
	case symbols.ClassConstantBlock:
		class = "constant-block"
	}
	return ir.Type{
		Name: t.Name, Mangled: t.Mangled, Fields: fields,
		Constructors: append([]string{}, t.Constructors...),
		Methods:      t.Methods, Operators: ops, Class: class,
	}
}

// extractStageFunctions pulls the VertexPass/FragmentPass entries out of
// whichever namespace they were declared in and into the module-level
// StageFunctions map, since a pipeline stage is addressed by stage name
// rather than by its declaring namespace (spec.md §4.4.7).
func extractStageFunctions(ns *ir.Namespace, out map[string]ir.Function) {
	kept := ns.Functions[:0]
	for _, fn := range ns.Functions {
		if fn.Mangled == "VertexPass" || fn.Mangled == "FragmentPass" {
			out[fn.Mangled] = fn
			continue
		}
		kept = append(kept, fn)
	}
	ns.Functions = kept
	for i := range ns.Children {
		extractStageFunctions(&ns.Children[i], out)
	}
}

func collectTextures(ns *ir.Namespace, mod *ir.Module) {
	for _, v := range ns.Variables {
		if v.Type == "Texture" {
			mod.Textures = append(mod.Textures, v)
		}
	}
	for i := range ns.Children {
		collectTextures(&ns.Children[i], mod)
	}
}
