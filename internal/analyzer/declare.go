package analyzer

import (
	"fmt"

	"lumina/internal/ast"
	"lumina/internal/diag"
	"lumina/internal/symbols"
	"lumina/internal/token"
)

// declarePass walks every instruction and populates the symbol table with
// Type, Function, Variable and PipelineFlow entries (spec.md §4.4.1). It
// never inspects statement/expression bodies beyond stashing them on the
// Function entry for the later lowering pass.
func (a *Analyzer) declarePass(insts []ast.Instruction, ns *symbols.Namespace) {
	for _, inst := range insts {
		switch n := inst.(type) {
		case *ast.NamespaceDecl:
			child, ok := ns.Children[n.Name]
			if !ok {
				child = symbols.NewNamespace(n.Name, ns)
				ns.Children[n.Name] = child
			}
			a.declarePass(n.Instructions, child)
		case *ast.AggregateDecl:
			a.declareAggregate(n, ns)
		case *ast.FunctionDecl:
			a.declareFunction(n, ns)
		case *ast.GlobalVarDecl:
			a.declareGlobalVar(n, ns)
		case *ast.PipelineDecl:
			a.declarePipelineFlow(n, ns)
		case *ast.StageFunction:
			a.declareStageFunction(n, ns)
		}
	}
}

func (a *Analyzer) resolveParams(params []ast.Param) []symbols.Param {
	out := make([]symbols.Param, 0, len(params))
	for _, p := range params {
		out = append(out, symbols.Param{
			Type: p.Type.Name.Last(), ByRef: p.ByRef,
			ArrayDims: p.ArrayDims + p.Type.ArrayDims, Name: p.Name,
		})
	}
	return out
}

func (a *Analyzer) declareAggregate(n *ast.AggregateDecl, ns *symbols.Namespace) {
	if _, exists := ns.Types[n.Name]; exists {
		a.Diagnostics.Addf(diag.SemanticDeclaration, n.At, "type %q is already declared in this namespace", n.Name)
		return
	}

	class := symbols.ClassStruct
	switch n.Kind {
	case ast.KindAttributeBlock:
		class = symbols.ClassAttributeBlock
	case ast.KindConstantBlock:
		class = symbols.ClassConstantBlock
	}

	mangled := symbols.Mangle(ns.QualifiedPath(), n.Name)
	typ := &symbols.Type{
		Name: n.Name, Mangled: mangled, Class: class,
		Conversions: map[string]bool{}, Methods: map[string]string{},
	}
	for _, f := range n.Fields {
		typ.Fields = append(typ.Fields, symbols.TypeField{
			Type: f.Type.Name.Last(), Name: f.Name, ArrayDims: f.ArrayDims + f.Type.ArrayDims,
		})
	}
	ns.Types[n.Name] = typ

	ctorMangled := symbols.MangleMethod(mangled, "Construct")
	for _, c := range n.Constructors {
		fn := &symbols.Function{
			ReturnType: n.Name, Mangled: ctorMangled, Params: a.resolveParams(c.Params),
			Body: c.Body, IsMethod: true, SelfType: n.Name,
		}
		ns.Functions[ctorMangled] = append(ns.Functions[ctorMangled], fn)
	}
	if len(n.Constructors) > 0 {
		typ.Constructors = append(typ.Constructors, ctorMangled)
	}

	for _, m := range n.Methods {
		fnMangled := symbols.MangleMethod(mangled, m.Name)
		fn := &symbols.Function{
			ReturnType: m.ReturnType.Name.Last(), Mangled: fnMangled, Params: a.resolveParams(m.Params),
			Body: m.Body, IsMethod: true, SelfType: n.Name,
		}
		ns.Functions[fnMangled] = append(ns.Functions[fnMangled], fn)
		typ.Methods[m.Name] = fnMangled
	}

	for _, op := range n.Operators {
		opName, ok := token.OperatorName[op.Symbol]
		if !ok {
			a.Diagnostics.Addf(diag.SemanticDeclaration, op.At, "unknown operator symbol %q", op.Symbol)
			continue
		}
		fnMangled := symbols.MangleOperatorMethod(mangled, opName)
		params := a.resolveParams(op.Params)
		fn := &symbols.Function{
			ReturnType: n.Name, Mangled: fnMangled, Params: params,
			Body: op.Body, IsMethod: true, SelfType: n.Name,
		}
		ns.Functions[fnMangled] = append(ns.Functions[fnMangled], fn)
		rhsType := ""
		if len(params) > 0 {
			rhsType = params[0].Type
		}
		typ.Operators = append(typ.Operators, symbols.Operator{Symbol: op.Symbol, RHSType: rhsType, MangledFn: fnMangled})
	}
}

func (a *Analyzer) declareFunction(n *ast.FunctionDecl, ns *symbols.Namespace) {
	mangled := symbols.Mangle(ns.QualifiedPath(), n.Name)
	fn := &symbols.Function{
		ReturnType: n.ReturnType.Name.Last(), Mangled: mangled,
		Params: a.resolveParams(n.Params), Body: n.Body,
	}
	ns.Functions[mangled] = append(ns.Functions[mangled], fn)
}

func (a *Analyzer) declareGlobalVar(n *ast.GlobalVarDecl, ns *symbols.Namespace) {
	if _, exists := ns.Variables[n.Name]; exists {
		a.Diagnostics.Addf(diag.SemanticDeclaration, n.At, "variable %q is already declared in this namespace", n.Name)
		return
	}
	ns.Variables[n.Name] = &symbols.Variable{
		Type: n.Type.Name.Last(), Name: n.Name,
		ArrayDims: n.ArrayDims + n.Type.ArrayDims, ByRef: n.ByRef,
	}
}

// validStagePair reports whether (from, to) is one of the three legal
// adjacent edges of the pipeline (spec.md §4.3, §7): Input->VertexPass,
// VertexPass->FragmentPass, FragmentPass->Output.
func validStagePair(from, to token.Kind) bool {
	for i := 0; i+1 < len(token.StageOrder); i++ {
		if token.StageOrder[i] == from && token.StageOrder[i+1] == to {
			return true
		}
	}
	return false
}

func (a *Analyzer) declarePipelineFlow(n *ast.PipelineDecl, ns *symbols.Namespace) {
	if !validStagePair(n.From, n.To) {
		a.Diagnostics.Addf(diag.Pipeline, n.At, "invalid stage pair: %s -> %s", n.From, n.To)
		return
	}
	v := symbols.Variable{Type: n.Type.Name.Last(), Name: n.VarName, ArrayDims: n.Type.ArrayDims}
	ns.Flows = append(ns.Flows, symbols.PipelineFlow{Direction: symbols.Out, Stage: string(n.From), Variable: v})
	ns.Flows = append(ns.Flows, symbols.PipelineFlow{Direction: symbols.In, Stage: string(n.To), Variable: v})
	// Make the declared flow variable resolvable by name from inside the
	// stage bodies it connects (spec.md invariant 2/5), the same way any
	// other namespace-level global is.
	if _, exists := ns.Variables[n.VarName]; !exists {
		ns.Variables[n.VarName] = &v
	}
}

func (a *Analyzer) declareStageFunction(n *ast.StageFunction, ns *symbols.Namespace) {
	mangled := string(n.Stage)
	if _, exists := ns.Functions[mangled]; exists {
		a.Diagnostics.Addf(diag.SemanticDeclaration, n.At, "%s is already declared", n.Stage)
		return
	}
	fn := &symbols.Function{ReturnType: "void", Mangled: mangled, Params: a.resolveParams(n.Params), Body: n.Body}
	ns.Functions[mangled] = []*symbols.Function{fn}
}

// disambiguateOverloads gives every overload of a key that has more than
// one declaration, the first included, a unique mangled name ("$0", "$1",
// ...) so the lowered IR's CallExpr.Callee
// always names one concrete function (spec.md invariant 4), even when
// several declarations share a symbol-table key.
func disambiguateOverloads(ns *symbols.Namespace) {
	for key, fns := range ns.Functions {
		if len(fns) > 1 {
			for i, fn := range fns {
				fn.Mangled = fmt.Sprintf("%s$%d", key, i)
			}
		}
	}
	for _, child := range ns.Children {
		disambiguateOverloads(child)
	}
}
