package analyzer

import (
	"strings"

	"lumina/internal/ast"
	"lumina/internal/diag"
	"lumina/internal/ir"
	"lumina/internal/symbols"
	"lumina/internal/token"
	"lumina/internal/types"
)

// scope is a chain of block-local variable bindings rooted at a
// function's parameter list, mirroring the teacher's lexical-scope
// handling in internal/compiler/hoisting_compiler.go but keyed by static
// type instead of a dynamic value.
type scope struct {
	parent   *scope
	ns       *symbols.Namespace
	vars     map[string]localVar
	selfType string
}

type localVar struct {
	Name      string
	Type      string
	ArrayDims int
}

func newScope(parent *scope, ns *symbols.Namespace) *scope {
	s := &scope{parent: parent, ns: ns, vars: map[string]localVar{}}
	if parent != nil {
		s.selfType = parent.selfType
	}
	return s
}

func (s *scope) lookup(name string) (localVar, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

// lowerCtx accumulates the per-function Calls/TypeRefs sets that
// spec.md §4.4.6 asks the IR to carry, alongside a handle back to the
// Analyzer for diagnostics and table lookups.
type lowerCtx struct {
	a        *Analyzer
	calls    map[string]bool
	typeRefs map[string]bool
}

func (a *Analyzer) lowerFunction(fn *symbols.Function, ns *symbols.Namespace) ir.Function {
	sc := newScope(nil, ns)
	sc.selfType = fn.SelfType
	if fn.IsMethod {
		sc.vars["this"] = localVar{Name: "this", Type: fn.SelfType}
	}
	irParams := make([]ir.Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		sc.vars[p.Name] = localVar{Name: p.Name, Type: p.Type, ArrayDims: p.ArrayDims}
		irParams = append(irParams, ir.Param{Type: p.Type, ByRef: p.ByRef, ArrayDims: p.ArrayDims, Name: p.Name})
	}

	lc := &lowerCtx{a: a, calls: map[string]bool{}, typeRefs: map[string]bool{}}
	body := make([]ir.Stmt, 0, len(fn.Body))
	for _, s := range fn.Body {
		body = append(body, lc.lowerStmt(s, sc))
	}
	lc.typeRefs[fn.ReturnType] = true

	return ir.Function{
		ReturnType: fn.ReturnType, Mangled: fn.Mangled, Params: irParams, Body: body,
		Calls: lc.calls, TypeRefs: lc.typeRefs,
	}
}

// ---- statements ----

func (lc *lowerCtx) lowerStmt(s ast.Statement, sc *scope) ir.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		inner := newScope(sc, sc.ns)
		stmts := make([]ir.Stmt, 0, len(n.Stmts))
		for _, st := range n.Stmts {
			stmts = append(stmts, lc.lowerStmt(st, inner))
		}
		return ir.BlockStmt{Stmts: stmts}

	case *ast.IfStmt:
		cond := lc.lowerExpr(n.Cond, sc)
		then := lc.lowerStmt(n.Then, sc)
		var els ir.Stmt
		if n.Else != nil {
			els = lc.lowerStmt(n.Else, sc)
		}
		return ir.IfStmt{Cond: cond, Then: then, Else: els}

	case *ast.WhileStmt:
		return ir.WhileStmt{Cond: lc.lowerExpr(n.Cond, sc), Body: lc.lowerStmt(n.Body, sc)}

	case *ast.DoWhileStmt:
		return ir.DoWhileStmt{Body: lc.lowerStmt(n.Body, sc), Cond: lc.lowerExpr(n.Cond, sc)}

	case *ast.ForStmt:
		inner := newScope(sc, sc.ns)
		var init ir.Stmt
		if n.Init != nil {
			init = lc.lowerStmt(n.Init, inner)
		}
		var cond, incr ir.Expr
		if n.Cond != nil {
			cond = lc.lowerExpr(n.Cond, inner)
		}
		if n.Incr != nil {
			incr = lc.lowerExpr(n.Incr, inner)
		}
		return ir.ForStmt{Init: init, Cond: cond, Incr: incr, Body: lc.lowerStmt(n.Body, inner)}

	case *ast.ReturnStmt:
		var v ir.Expr
		if n.Value != nil {
			v = lc.lowerExpr(n.Value, sc)
		}
		return ir.ReturnStmt{Value: v}

	case *ast.BreakStmt:
		return ir.BreakStmt{}
	case *ast.ContinueStmt:
		return ir.ContinueStmt{}
	case *ast.DiscardStmt:
		return ir.DiscardStmt{}

	case *ast.ExprStmt:
		return ir.ExprStmt{Expr: lc.lowerExpr(n.Expr, sc)}

	case *ast.VarDeclStmt:
		declaredType := n.Type.Name.Last()
		dims := n.ArrayDims + n.Type.ArrayDims
		lc.typeRefs[declaredType] = true
		var init ir.Expr
		if n.Init != nil {
			init = lc.lowerExpr(n.Init, sc)
			init = lc.coerceChecked(init, types.ExprType{Name: declaredType, ArrayDims: dims}, n.At)
		}
		sc.vars[n.Name] = localVar{Name: n.Name, Type: declaredType, ArrayDims: dims}
		return ir.VarDeclStmt{
			Const: n.Const,
			Var:   ir.Variable{Type: declaredType, Name: n.Name, ArrayDims: dims},
			Init:  init,
		}
	}
	return ir.BlockStmt{}
}

// ---- expressions ----

func (lc *lowerCtx) lowerExpr(e ast.Expression, sc *scope) ir.Expr {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return lc.lowerLiteral(n)
	case *ast.IdentExpr:
		return lc.lowerIdent(n, sc)
	case *ast.ThisExpr:
		return ir.VarRefExpr{Base: ir.NewBase(ir.TypeRef{Name: sc.selfType}), Name: "this"}
	case *ast.MemberExpr:
		return lc.lowerMember(n, sc)
	case *ast.IndexExpr:
		return lc.lowerIndex(n, sc)
	case *ast.CallExpr:
		return lc.lowerCall(n, sc)
	case *ast.UnaryExpr:
		operand := lc.lowerExpr(n.Operand, sc)
		return ir.UnaryExpr{Base: ir.NewBase(operand.Type()), Operator: n.Operator, Operand: operand}
	case *ast.PostfixExpr:
		operand := lc.lowerExpr(n.Operand, sc)
		return ir.PostfixExpr{Base: ir.NewBase(operand.Type()), Operator: n.Operator, Operand: operand}
	case *ast.BinaryExpr:
		return lc.lowerBinary(n, sc)
	case *ast.ConditionalExpr:
		return lc.lowerConditional(n, sc)
	case *ast.AssignExpr:
		return lc.lowerAssign(n, sc)
	case *ast.ArrayLiteralExpr:
		return lc.lowerArrayLiteral(n, sc)
	}
	return ir.LiteralExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Text: ""}
}

func (lc *lowerCtx) lowerLiteral(n *ast.LiteralExpr) ir.Expr {
	name := "void"
	switch n.Kind {
	case ast.LitInt:
		name = "int"
	case ast.LitUInt:
		name = "uint"
	case ast.LitFloat:
		name = "float"
	case ast.LitString:
		name = "string"
	case ast.LitBool:
		name = "bool"
	}
	return ir.LiteralExpr{Base: ir.NewBase(ir.TypeRef{Name: name}), Text: n.Text}
}

func (lc *lowerCtx) lowerIdent(n *ast.IdentExpr, sc *scope) ir.Expr {
	if len(n.Name.Parts) == 1 {
		if v, ok := sc.lookup(n.Name.Parts[0]); ok {
			return ir.VarRefExpr{Base: ir.NewBase(ir.TypeRef{Name: v.Type, ArrayDims: v.ArrayDims}), Name: v.Name}
		}
	}
	if v, _ := symbols.LookupVariable(sc.ns, n.Name.Last()); v != nil {
		return ir.VarRefExpr{Base: ir.NewBase(ir.TypeRef{Name: v.Type, ArrayDims: v.ArrayDims}), Name: v.Name}
	}
	// Inside a lifted method/constructor/operator, a bare name with no
	// local or global match falls back to a field of the receiver and is
	// rewritten as this.<field> (spec.md §4.4.3, §9).
	if len(n.Name.Parts) == 1 && sc.selfType != "" {
		if typ, _ := symbols.LookupType(sc.ns, sc.selfType); typ != nil {
			for _, f := range typ.Fields {
				if f.Name == n.Name.Parts[0] {
					this := ir.VarRefExpr{Base: ir.NewBase(ir.TypeRef{Name: sc.selfType}), Name: "this"}
					return ir.MemberExpr{Base: ir.NewBase(ir.TypeRef{Name: f.Type, ArrayDims: f.ArrayDims}), Object: this, Member: f.Name}
				}
			}
		}
	}
	lc.a.Diagnostics.Addf(diag.SemanticReference, n.At, "undeclared identifier %q", n.Name.String())
	return ir.VarRefExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Name: n.Name.String()}
}

func isSwizzle(member string, comps []string) bool {
	if len(member) < 1 || len(member) > 4 || comps == nil {
		return false
	}
	set := map[byte]bool{}
	for _, c := range comps {
		set[c[0]] = true
	}
	for i := 0; i < len(member); i++ {
		if !set[member[i]] {
			return false
		}
	}
	return true
}

func (lc *lowerCtx) lowerMember(n *ast.MemberExpr, sc *scope) ir.Expr {
	obj := lc.lowerExpr(n.Object, sc)
	objType := obj.Type()

	if b, ok := lc.a.Table.Builtins[objType.Name]; ok && b.VectorSize > 0 && objType.ArrayDims == 0 {
		comps := types.ComponentNamesFor(b)
		if isSwizzle(n.Member, comps) {
			resultName := types.SwizzleResultType(b, len(n.Member))
			return ir.MemberExpr{Base: ir.NewBase(ir.TypeRef{Name: resultName}), Object: obj, Member: n.Member, Swizzle: true}
		}
	}

	if typ, _ := symbols.LookupType(sc.ns, objType.Name); typ != nil {
		for _, f := range typ.Fields {
			if f.Name == n.Member {
				return ir.MemberExpr{Base: ir.NewBase(ir.TypeRef{Name: f.Type, ArrayDims: f.ArrayDims}), Object: obj, Member: n.Member}
			}
		}
	}

	lc.a.Diagnostics.Addf(diag.SemanticReference, n.At, "type %q has no member %q", objType.Name, n.Member)
	return ir.MemberExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Object: obj, Member: n.Member}
}

func (lc *lowerCtx) lowerIndex(n *ast.IndexExpr, sc *scope) ir.Expr {
	obj := lc.lowerExpr(n.Object, sc)
	idx := lc.lowerExpr(n.Index, sc)
	t := obj.Type()

	var result ir.TypeRef
	switch {
	case t.ArrayDims > 0:
		result = ir.TypeRef{Name: t.Name, ArrayDims: t.ArrayDims - 1}
	default:
		if b, ok := lc.a.Table.Builtins[t.Name]; ok && b.VectorSize > 0 {
			result = ir.TypeRef{Name: b.ScalarKind}
		} else {
			lc.a.Diagnostics.Addf(diag.SemanticTyping, n.At, "type %q is not indexable", t.Name)
			result = ir.TypeRef{Name: "void"}
		}
	}
	return ir.IndexExpr{Base: ir.NewBase(result), Object: obj, Index: idx}
}

// ---- calls and overload resolution ----

func rootOf(ns *symbols.Namespace) *symbols.Namespace {
	for ns.Parent != nil {
		ns = ns.Parent
	}
	return ns
}

func navigate(root *symbols.Namespace, parts []string) *symbols.Namespace {
	cur := root
	for _, p := range parts {
		next, ok := cur.Children[p]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// lookupFunctionsByLocalName resolves an unqualified call by recomputing
// the mangled name at each enclosing namespace in turn (spec.md §4.4.2's
// outward-resolution rule applied to functions).
func lookupFunctionsByLocalName(from *symbols.Namespace, name string) []*symbols.Function {
	for ns := from; ns != nil; ns = ns.Parent {
		mangled := symbols.Mangle(ns.QualifiedPath(), name)
		if fns, ok := ns.Functions[mangled]; ok {
			return fns
		}
	}
	return nil
}

func callFunctions(from *symbols.Namespace, nameParts []string) []*symbols.Function {
	if len(nameParts) == 1 {
		return lookupFunctionsByLocalName(from, nameParts[0])
	}
	target := navigate(rootOf(from), nameParts[:len(nameParts)-1])
	if target == nil {
		return nil
	}
	local := nameParts[len(nameParts)-1]
	mangled := symbols.Mangle(target.QualifiedPath(), local)
	return target.Functions[mangled]
}

func (lc *lowerCtx) pickOverload(fns []*symbols.Function, argTypes []types.ExprType) (*symbols.Function, bool) {
	var best *symbols.Function
	bestCost := -1
	ambiguous := false
	for _, fn := range fns {
		if len(fn.Params) != len(argTypes) {
			continue
		}
		cost := 0
		viable := true
		for i, p := range fn.Params {
			if p.ArrayDims != argTypes[i].ArrayDims {
				viable = false
				break
			}
			c := types.ConversionCost(lc.a.Table.Lattice, argTypes[i].Name, p.Type)
			if c < 0 {
				viable = false
				break
			}
			cost += c
		}
		if !viable {
			continue
		}
		switch {
		case best == nil || cost < bestCost:
			best, bestCost, ambiguous = fn, cost, false
		case cost == bestCost:
			ambiguous = true
		}
	}
	return best, ambiguous
}

func (lc *lowerCtx) dispatchOverload(fns []*symbols.Function, displayName string, args []ir.Expr, argTypes []types.ExprType, at token.Span) ir.CallExpr {
	if len(fns) == 0 {
		lc.a.Diagnostics.Addf(diag.SemanticReference, at, "undeclared function %q", displayName)
		return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Callee: displayName, Args: args, Unresolved: true}
	}
	best, ambiguous := lc.pickOverload(fns, argTypes)
	if ambiguous {
		lc.a.Diagnostics.Addf(diag.SemanticTyping, at, "ambiguous call to %q", displayName)
	}
	if best == nil {
		lc.a.Diagnostics.Addf(diag.SemanticTyping, at, "no viable overload for %q", displayName)
		return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Callee: displayName, Args: args, Unresolved: true}
	}
	lc.calls[best.Mangled] = true
	lc.typeRefs[best.ReturnType] = true
	return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: best.ReturnType}), Callee: best.Mangled, Args: lc.coerceArgs(args, best.Params)}
}

func (lc *lowerCtx) lowerCall(n *ast.CallExpr, sc *scope) ir.Expr {
	args := make([]ir.Expr, 0, len(n.Args))
	argTypes := make([]types.ExprType, 0, len(n.Args))
	for _, argExpr := range n.Args {
		le := lc.lowerExpr(argExpr, sc)
		args = append(args, le)
		argTypes = append(argTypes, types.ExprType{Name: le.Type().Name, ArrayDims: le.Type().ArrayDims})
	}

	switch callee := n.Callee.(type) {
	case *ast.IdentExpr:
		if len(callee.Name.Parts) == 1 {
			if typ, _ := symbols.LookupType(sc.ns, callee.Name.Parts[0]); typ != nil {
				return lc.constructorCall(typ, sc.ns, args, argTypes, n.At)
			}
		}
		fns := callFunctions(sc.ns, callee.Name.Parts)
		return lc.dispatchOverload(fns, callee.Name.String(), args, argTypes, n.At)

	case *ast.MemberExpr:
		obj := lc.lowerExpr(callee.Object, sc)
		typ, _ := symbols.LookupType(sc.ns, obj.Type().Name)
		if typ == nil {
			lc.a.Diagnostics.Addf(diag.SemanticReference, n.At, "cannot call a method on unknown type %q", obj.Type().Name)
			return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Args: append([]ir.Expr{obj}, args...), Unresolved: true}
		}
		mangledName, ok := typ.Methods[callee.Member]
		if !ok {
			lc.a.Diagnostics.Addf(diag.SemanticReference, n.At, "type %q has no method %q", typ.Name, callee.Member)
			return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Args: append([]ir.Expr{obj}, args...), Unresolved: true}
		}
		fns := symbols.LookupFunctions(sc.ns, mangledName)
		result := lc.dispatchOverload(fns, typ.Name+"."+callee.Member, args, argTypes, n.At)
		result.Args = append([]ir.Expr{obj}, result.Args...)
		return result
	}

	lc.a.Diagnostics.Addf(diag.Syntactic, n.At, "unsupported call target")
	return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: "void"}), Args: args, Unresolved: true}
}

// constructorCall resolves "TypeName(args...)". Aggregates that declare
// constructors dispatch through the same overload machinery as any other
// function; built-in types and aggregates without a declared constructor
// have no registered constructor function, so their call is accepted at
// whatever arity the grammar permits (component-wise and splicing
// constructors, spec.md §4.4.5). For built-ins with a scalar kind, every
// non-vector argument is cast to that scalar kind without a lattice check;
// other arguments are passed through unchanged.
func (lc *lowerCtx) constructorCall(typ *symbols.Type, ns *symbols.Namespace, args []ir.Expr, argTypes []types.ExprType, at token.Span) ir.Expr {
	mangled := symbols.MangleMethod(typ.Mangled, "Construct")
	lc.typeRefs[typ.Mangled] = true

	if len(typ.Constructors) == 0 {
		b := lc.a.Table.Builtins[typ.Name]
		coerced := args
		if b != nil && b.ScalarKind != "" {
			coerced = make([]ir.Expr, len(args))
			for i, argExpr := range args {
				argType := argExpr.Type()
				if ab, ok := lc.a.Table.Builtins[argType.Name]; ok && ab.VectorSize > 0 {
					coerced[i] = argExpr // vector-splicing argument, left whole
					continue
				}
				coerced[i] = lc.coerce(argExpr, types.ExprType{Name: b.ScalarKind})
			}
		}
		return ir.CallExpr{Base: ir.NewBase(ir.TypeRef{Name: typ.Name}), Callee: mangled, Args: coerced}
	}

	fns := symbols.LookupFunctions(ns, mangled)
	return lc.dispatchOverload(fns, typ.Name, args, argTypes, at)
}

func (lc *lowerCtx) coerceArgs(args []ir.Expr, params []symbols.Param) []ir.Expr {
	out := make([]ir.Expr, len(args))
	for i, argExpr := range args {
		if i < len(params) {
			out[i] = lc.coerce(argExpr, types.ExprType{Name: params[i].Type, ArrayDims: params[i].ArrayDims})
		} else {
			out[i] = argExpr
		}
	}
	return out
}

// coerce wraps e in a CastExpr if its type differs from target. It does
// not consult the lattice: overload resolution has already verified the
// conversion for call arguments, while the built-in constructor path in
// constructorCall casts its scalar arguments unchecked.
func (lc *lowerCtx) coerce(e ir.Expr, target types.ExprType) ir.Expr {
	cur := e.Type()
	if cur.Name == target.Name && cur.ArrayDims == target.ArrayDims {
		return e
	}
	lc.typeRefs[target.Name] = true
	return ir.CastExpr{Base: ir.NewBase(ir.TypeRef{Name: target.Name, ArrayDims: target.ArrayDims}), Value: e}
}

// coerceChecked is coerce's counterpart for positions the overload
// resolver never validated (a plain initializer or assignment), so it
// re-checks the lattice itself and raises a diagnostic on failure.
func (lc *lowerCtx) coerceChecked(e ir.Expr, target types.ExprType, at token.Span) ir.Expr {
	cur := e.Type()
	if cur.Name == target.Name && cur.ArrayDims == target.ArrayDims {
		return e
	}
	if cur.ArrayDims != target.ArrayDims {
		lc.a.Diagnostics.Addf(diag.SemanticTyping, at, "cannot convert %s to %s", cur.Name, target.Name)
		return e
	}
	if types.ConversionCost(lc.a.Table.Lattice, cur.Name, target.Name) < 0 {
		lc.a.Diagnostics.Addf(diag.SemanticTyping, at, "no implicit conversion from %q to %q", cur.Name, target.Name)
		return e
	}
	lc.typeRefs[target.Name] = true
	return ir.CastExpr{Base: ir.NewBase(ir.TypeRef{Name: target.Name, ArrayDims: target.ArrayDims}), Value: e}
}

// ---- operators ----

func builtinBinaryResultType(op string, lt ir.TypeRef) ir.TypeRef {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return ir.TypeRef{Name: "bool"}
	}
	return lt
}

func (lc *lowerCtx) lowerBinary(n *ast.BinaryExpr, sc *scope) ir.Expr {
	left := lc.lowerExpr(n.Left, sc)
	right := lc.lowerExpr(n.Right, sc)

	if n.Operator == "&&" || n.Operator == "||" {
		return ir.LogicalExpr{Base: ir.NewBase(ir.TypeRef{Name: "bool"}), Operator: n.Operator, Left: left, Right: right}
	}

	lt, rt := left.Type(), right.Type()
	opName := token.OperatorName[n.Operator]

	if typ, _ := symbols.LookupType(sc.ns, lt.Name); typ != nil {
		for _, op := range typ.Operators {
			if op.Symbol == n.Operator && op.RHSType == rt.Name {
				lc.calls[op.MangledFn] = true
				lc.typeRefs[typ.Mangled] = true
				resultType := ir.TypeRef{Name: typ.Name}
				if fns := symbols.LookupFunctions(sc.ns, op.MangledFn); len(fns) > 0 {
					resultType = ir.TypeRef{Name: fns[0].ReturnType}
				}
				return ir.BinaryOpCallExpr{Base: ir.NewBase(resultType), Mangled: op.MangledFn, Left: left, Right: right}
			}
		}
	}

	resultType := builtinBinaryResultType(n.Operator, lt)
	mangled := lt.Name + "_Operator" + opName
	lc.typeRefs[lt.Name] = true
	return ir.BinaryOpCallExpr{Base: ir.NewBase(resultType), Mangled: mangled, Left: left, Right: right, Builtin: true}
}

func (lc *lowerCtx) lowerConditional(n *ast.ConditionalExpr, sc *scope) ir.Expr {
	cond := lc.lowerExpr(n.Cond, sc)
	then := lc.lowerExpr(n.Then, sc)
	els := lc.lowerExpr(n.Else, sc)
	resultType := then.Type()
	els = lc.coerceChecked(els, types.ExprType{Name: resultType.Name, ArrayDims: resultType.ArrayDims}, n.At)
	return ir.ConditionalExpr{Base: ir.NewBase(resultType), Cond: cond, Then: then, Else: els}
}

func (lc *lowerCtx) lowerAssign(n *ast.AssignExpr, sc *scope) ir.Expr {
	target := lc.lowerExpr(n.Target, sc)
	value := lc.lowerExpr(n.Value, sc)
	tt := target.Type()

	if n.Operator == "=" {
		value = lc.coerceChecked(value, types.ExprType{Name: tt.Name, ArrayDims: tt.ArrayDims}, n.At)
		return ir.AssignExpr{Base: ir.NewBase(tt), Target: target, Value: value}
	}

	baseOp := strings.TrimSuffix(n.Operator, "=")
	combined := lc.combineForCompoundAssign(baseOp, target, value, sc)
	return ir.AssignExpr{Base: ir.NewBase(tt), Target: target, Value: combined}
}

func (lc *lowerCtx) combineForCompoundAssign(op string, target, value ir.Expr, sc *scope) ir.Expr {
	tt := target.Type()
	if typ, _ := symbols.LookupType(sc.ns, tt.Name); typ != nil {
		for _, o := range typ.Operators {
			if o.Symbol == op+"=" && o.RHSType == value.Type().Name {
				lc.calls[o.MangledFn] = true
				return ir.BinaryOpCallExpr{Base: ir.NewBase(tt), Mangled: o.MangledFn, Left: target, Right: value}
			}
		}
	}
	mangled := tt.Name + "_Operator" + token.OperatorName[op]
	return ir.BinaryOpCallExpr{Base: ir.NewBase(tt), Mangled: mangled, Left: target, Right: value, Builtin: true}
}

func (lc *lowerCtx) lowerArrayLiteral(n *ast.ArrayLiteralExpr, sc *scope) ir.Expr {
	elems := make([]ir.Expr, 0, len(n.Elements))
	var elemType ir.TypeRef
	for i, elemExpr := range n.Elements {
		le := lc.lowerExpr(elemExpr, sc)
		if i == 0 {
			elemType = le.Type()
		}
		elems = append(elems, le)
	}
	return ir.ArrayLiteralExpr{Base: ir.NewBase(ir.TypeRef{Name: elemType.Name, ArrayDims: elemType.ArrayDims + 1}), Elements: elems}
}
