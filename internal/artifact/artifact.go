// Package artifact serializes a compiled internal/ir.Module to a
// byte-deterministic form: a binary encoding grounded in the teacher's
// internal/buildutil.BytecodeFile (magic number, version, length-prefixed
// sections written with encoding/binary), and a textual JSON encoding
// grounded in the teacher's internal/reporting JSON-tagged report structs.
// Both walk the module in the same pre-sorted order the analyzer already
// produced it in, so two compilations of identical input are byte-identical.
package artifact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"lumina/internal/ir"
)

const (
	// Magic identifies a Lumina IR artifact file ("LUMI").
	Magic   uint32 = 0x4C554D49
	Version uint32 = 1
)

// WriteBinary writes mod in the deterministic binary artifact format.
func WriteBinary(w io.Writer, mod *ir.Module) error {
	if err := writeU32(w, Magic); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	if err := writeU32(w, Version); err != nil {
		return fmt.Errorf("writing version: %w", err)
	}
	if err := writeNamespace(w, &mod.Root); err != nil {
		return fmt.Errorf("writing root namespace: %w", err)
	}
	if err := writeString(w, ""); err != nil { // reserved section terminator, kept explicit for forward compat
		return err
	}

	stageNames := make([]string, 0, len(mod.StageFunctions))
	for name := range mod.StageFunctions {
		stageNames = append(stageNames, name)
	}
	sortStrings(stageNames)
	if err := writeU32(w, uint32(len(stageNames))); err != nil {
		return err
	}
	for _, name := range stageNames {
		if err := writeFunction(w, mod.StageFunctions[name]); err != nil {
			return fmt.Errorf("writing stage function %s: %w", name, err)
		}
	}

	if err := writeU32(w, uint32(len(mod.Textures))); err != nil {
		return err
	}
	for _, tex := range mod.Textures {
		if err := writeVariable(w, tex); err != nil {
			return fmt.Errorf("writing texture %s: %w", tex.Name, err)
		}
	}
	return nil
}

// ReadBinary reads back a module written by WriteBinary. The binary form
// carries no function bodies, and only the skeleton of names round-trips:
// namespace, type and function names. Variables, flows and the remaining
// type and function details are read past and not returned.
func ReadBinary(r io.Reader) (*Skeleton, error) {
	magic, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("not a lumina artifact: bad magic number")
	}
	version, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version > Version {
		return nil, fmt.Errorf("unsupported artifact version %d", version)
	}
	ns, err := readNamespaceSkeleton(r)
	if err != nil {
		return nil, fmt.Errorf("reading root namespace: %w", err)
	}
	if _, err := readString(r); err != nil {
		return nil, err
	}
	return &Skeleton{Root: ns}, nil
}

// Skeleton is the structural subset of an ir.Module preserved across a
// binary round trip.
type Skeleton struct {
	Root NamespaceSkeleton
}

type NamespaceSkeleton struct {
	Name      string
	TypeNames []string
	FuncNames []string
	Children  []NamespaceSkeleton
}

func writeNamespace(w io.Writer, ns *ir.Namespace) error {
	if err := writeString(w, ns.Name); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(ns.Types))); err != nil {
		return err
	}
	for _, t := range ns.Types {
		if err := writeType(w, t); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(ns.Variables))); err != nil {
		return err
	}
	for _, v := range ns.Variables {
		if err := writeVariable(w, v); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(ns.Functions))); err != nil {
		return err
	}
	for _, fn := range ns.Functions {
		if err := writeFunction(w, fn); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(ns.Flows))); err != nil {
		return err
	}
	for _, fl := range ns.Flows {
		if err := writeU32(w, uint32(fl.Direction)); err != nil {
			return err
		}
		if err := writeString(w, fl.Stage); err != nil {
			return err
		}
		if err := writeVariable(w, fl.Variable); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(len(ns.Children))); err != nil {
		return err
	}
	for i := range ns.Children {
		if err := writeNamespace(w, &ns.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func readNamespaceSkeleton(r io.Reader) (NamespaceSkeleton, error) {
	var ns NamespaceSkeleton
	name, err := readString(r)
	if err != nil {
		return ns, err
	}
	ns.Name = name

	numTypes, err := readU32(r)
	if err != nil {
		return ns, err
	}
	for i := uint32(0); i < numTypes; i++ {
		t, err := skipType(r)
		if err != nil {
			return ns, err
		}
		ns.TypeNames = append(ns.TypeNames, t)
	}

	numVars, err := readU32(r)
	if err != nil {
		return ns, err
	}
	for i := uint32(0); i < numVars; i++ {
		if _, err := skipVariable(r); err != nil {
			return ns, err
		}
	}

	numFuncs, err := readU32(r)
	if err != nil {
		return ns, err
	}
	for i := uint32(0); i < numFuncs; i++ {
		name, err := skipFunction(r)
		if err != nil {
			return ns, err
		}
		ns.FuncNames = append(ns.FuncNames, name)
	}

	numFlows, err := readU32(r)
	if err != nil {
		return ns, err
	}
	for i := uint32(0); i < numFlows; i++ {
		if _, err := readU32(r); err != nil {
			return ns, err
		}
		if _, err := readString(r); err != nil {
			return ns, err
		}
		if _, err := skipVariable(r); err != nil {
			return ns, err
		}
	}

	numChildren, err := readU32(r)
	if err != nil {
		return ns, err
	}
	for i := uint32(0); i < numChildren; i++ {
		child, err := readNamespaceSkeleton(r)
		if err != nil {
			return ns, err
		}
		ns.Children = append(ns.Children, child)
	}
	return ns, nil
}

func writeType(w io.Writer, t ir.Type) error {
	if err := writeString(w, t.Name); err != nil {
		return err
	}
	if err := writeString(w, t.Mangled); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(t.Fields))); err != nil {
		return err
	}
	for _, f := range t.Fields {
		if err := writeString(w, f.Type); err != nil {
			return err
		}
		if err := writeString(w, f.Name); err != nil {
			return err
		}
		if err := writeU32(w, uint32(f.ArrayDims)); err != nil {
			return err
		}
	}
	return writeString(w, t.Class)
}

func skipType(r io.Reader) (string, error) {
	name, err := readString(r)
	if err != nil {
		return "", err
	}
	if _, err := readString(r); err != nil { // mangled
		return "", err
	}
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	for i := uint32(0); i < n; i++ {
		if _, err := readString(r); err != nil {
			return "", err
		}
		if _, err := readString(r); err != nil {
			return "", err
		}
		if _, err := readU32(r); err != nil {
			return "", err
		}
	}
	if _, err := readString(r); err != nil { // class
		return "", err
	}
	return name, nil
}

func writeVariable(w io.Writer, v ir.Variable) error {
	if err := writeString(w, v.Type); err != nil {
		return err
	}
	if err := writeString(w, v.Name); err != nil {
		return err
	}
	return writeU32(w, uint32(v.ArrayDims))
}

func skipVariable(r io.Reader) (string, error) {
	if _, err := readString(r); err != nil {
		return "", err
	}
	name, err := readString(r)
	if err != nil {
		return "", err
	}
	if _, err := readU32(r); err != nil {
		return "", err
	}
	return name, nil
}

func writeFunction(w io.Writer, fn ir.Function) error {
	if err := writeString(w, fn.ReturnType); err != nil {
		return err
	}
	if err := writeString(w, fn.Mangled); err != nil {
		return err
	}
	return writeU32(w, uint32(len(fn.Params)))
}

func skipFunction(r io.Reader) (string, error) {
	if _, err := readString(r); err != nil {
		return "", err
	}
	mangled, err := readString(r)
	if err != nil {
		return "", err
	}
	if _, err := readU32(r); err != nil {
		return "", err
	}
	return mangled, nil
}

func writeU32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ---- JSON form ----

// jsonModule mirrors ir.Module with json tags, grounded in the teacher's
// internal/reporting tagged-struct style.
type jsonModule struct {
	Root           jsonNamespace            `json:"root"`
	Textures       []jsonVariable           `json:"textures,omitempty"`
	StageFunctions map[string]jsonFunction  `json:"stageFunctions,omitempty"`
}

type jsonNamespace struct {
	Name      string          `json:"name"`
	Types     []jsonType      `json:"types,omitempty"`
	Variables []jsonVariable  `json:"variables,omitempty"`
	Functions []jsonFunction  `json:"functions,omitempty"`
	Flows     []jsonFlow      `json:"flows,omitempty"`
	Children  []jsonNamespace `json:"children,omitempty"`
}

type jsonType struct {
	Name         string            `json:"name"`
	Mangled      string            `json:"mangled"`
	Fields       []jsonField       `json:"fields,omitempty"`
	Constructors []string          `json:"constructors,omitempty"`
	Methods      map[string]string `json:"methods,omitempty"`
	Operators    []jsonOperator    `json:"operators,omitempty"`
	Class        string            `json:"class"`
}

type jsonField struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	ArrayDims int    `json:"arrayDims,omitempty"`
}

type jsonOperator struct {
	Symbol    string `json:"symbol"`
	RHSType   string `json:"rhsType,omitempty"`
	MangledFn string `json:"mangledFn"`
}

type jsonVariable struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	ArrayDims int             `json:"arrayDims,omitempty"`
	Init      json.RawMessage `json:"init,omitempty"`
}

type jsonFunction struct {
	ReturnType string          `json:"returnType"`
	Mangled    string          `json:"mangled"`
	Params     []jsonParam     `json:"params,omitempty"`
	Body       []json.RawMessage `json:"body,omitempty"`
}

type jsonParam struct {
	Type      string `json:"type"`
	ByRef     bool   `json:"byRef,omitempty"`
	ArrayDims int    `json:"arrayDims,omitempty"`
	Name      string `json:"name"`
}

type jsonFlow struct {
	Direction string       `json:"direction"`
	Stage     string       `json:"stage"`
	Variable  jsonVariable `json:"variable"`
}

// WriteJSON writes mod as deterministic, indented JSON: map keys in
// jsonModule.StageFunctions sort alphabetically under encoding/json's own
// marshaling rules, and every slice keeps the deterministic order the
// analyzer produced: types, variables, functions and child namespaces
// sorted by key, flows in declaration order, and textures gathered
// depth-first from those sorted variables (spec.md §6.5).
func WriteJSON(w io.Writer, mod *ir.Module) error {
	jm := jsonModule{
		Root:           toJSONNamespace(mod.Root),
		StageFunctions: map[string]jsonFunction{},
	}
	for _, tex := range mod.Textures {
		jm.Textures = append(jm.Textures, toJSONVariable(tex))
	}
	for name, fn := range mod.StageFunctions {
		jm.StageFunctions[name] = toJSONFunction(fn)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jm)
}

func toJSONNamespace(ns ir.Namespace) jsonNamespace {
	out := jsonNamespace{Name: ns.Name}
	for _, t := range ns.Types {
		out.Types = append(out.Types, toJSONType(t))
	}
	for _, v := range ns.Variables {
		out.Variables = append(out.Variables, toJSONVariable(v))
	}
	for _, fn := range ns.Functions {
		out.Functions = append(out.Functions, toJSONFunction(fn))
	}
	for _, fl := range ns.Flows {
		out.Flows = append(out.Flows, jsonFlow{
			Direction: fl.Direction.String(),
			Stage:     fl.Stage,
			Variable:  toJSONVariable(fl.Variable),
		})
	}
	for _, c := range ns.Children {
		out.Children = append(out.Children, toJSONNamespace(c))
	}
	return out
}

func toJSONType(t ir.Type) jsonType {
	out := jsonType{Name: t.Name, Mangled: t.Mangled, Class: t.Class, Constructors: t.Constructors, Methods: t.Methods}
	for _, f := range t.Fields {
		out.Fields = append(out.Fields, jsonField{Type: f.Type, Name: f.Name, ArrayDims: f.ArrayDims})
	}
	for _, o := range t.Operators {
		out.Operators = append(out.Operators, jsonOperator{Symbol: o.Symbol, RHSType: o.RHSType, MangledFn: o.MangledFn})
	}
	return out
}

func toJSONVariable(v ir.Variable) jsonVariable {
	out := jsonVariable{Type: v.Type, Name: v.Name, ArrayDims: v.ArrayDims}
	if v.Init != nil {
		if raw, err := exprToJSON(v.Init); err == nil {
			out.Init = raw
		}
	}
	return out
}

func toJSONFunction(fn ir.Function) jsonFunction {
	out := jsonFunction{ReturnType: fn.ReturnType, Mangled: fn.Mangled}
	for _, p := range fn.Params {
		out.Params = append(out.Params, jsonParam{Type: p.Type, ByRef: p.ByRef, ArrayDims: p.ArrayDims, Name: p.Name})
	}
	for _, s := range fn.Body {
		if raw, err := stmtToJSON(s); err == nil {
			out.Body = append(out.Body, raw)
		}
	}
	return out
}

// stmtToJSON and exprToJSON flatten the Stmt/Expr sum types into a
// discriminated-union JSON shape ({"kind": "...", ...fields}), since Go's
// encoding/json cannot marshal an interface value on its own.
func stmtToJSON(s ir.Stmt) (json.RawMessage, error) {
	var payload map[string]interface{}
	switch v := s.(type) {
	case ir.BlockStmt:
		body := make([]json.RawMessage, 0, len(v.Stmts))
		for _, inner := range v.Stmts {
			raw, err := stmtToJSON(inner)
			if err != nil {
				return nil, err
			}
			body = append(body, raw)
		}
		payload = map[string]interface{}{"kind": "block", "stmts": body}
	case ir.IfStmt:
		cond, err := exprToJSON(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := stmtToJSON(v.Then)
		if err != nil {
			return nil, err
		}
		payload = map[string]interface{}{"kind": "if", "cond": cond, "then": then}
		if v.Else != nil {
			els, err := stmtToJSON(v.Else)
			if err != nil {
				return nil, err
			}
			payload["else"] = els
		}
	case ir.WhileStmt:
		cond, err := exprToJSON(v.Cond)
		if err != nil {
			return nil, err
		}
		body, err := stmtToJSON(v.Body)
		if err != nil {
			return nil, err
		}
		payload = map[string]interface{}{"kind": "while", "cond": cond, "body": body}
	case ir.DoWhileStmt:
		cond, err := exprToJSON(v.Cond)
		if err != nil {
			return nil, err
		}
		body, err := stmtToJSON(v.Body)
		if err != nil {
			return nil, err
		}
		payload = map[string]interface{}{"kind": "doWhile", "cond": cond, "body": body}
	case ir.ForStmt:
		payload = map[string]interface{}{"kind": "for"}
		if v.Init != nil {
			init, err := stmtToJSON(v.Init)
			if err != nil {
				return nil, err
			}
			payload["init"] = init
		}
		if v.Cond != nil {
			cond, err := exprToJSON(v.Cond)
			if err != nil {
				return nil, err
			}
			payload["cond"] = cond
		}
		if v.Incr != nil {
			incr, err := exprToJSON(v.Incr)
			if err != nil {
				return nil, err
			}
			payload["incr"] = incr
		}
		body, err := stmtToJSON(v.Body)
		if err != nil {
			return nil, err
		}
		payload["body"] = body
	case ir.ReturnStmt:
		payload = map[string]interface{}{"kind": "return"}
		if v.Value != nil {
			val, err := exprToJSON(v.Value)
			if err != nil {
				return nil, err
			}
			payload["value"] = val
		}
	case ir.BreakStmt:
		payload = map[string]interface{}{"kind": "break"}
	case ir.ContinueStmt:
		payload = map[string]interface{}{"kind": "continue"}
	case ir.DiscardStmt:
		payload = map[string]interface{}{"kind": "discard"}
	case ir.ExprStmt:
		val, err := exprToJSON(v.Expr)
		if err != nil {
			return nil, err
		}
		payload = map[string]interface{}{"kind": "exprStmt", "expr": val}
	case ir.VarDeclStmt:
		payload = map[string]interface{}{"kind": "varDecl", "const": v.Const, "var": toJSONVariable(v.Var)}
		if v.Init != nil {
			val, err := exprToJSON(v.Init)
			if err != nil {
				return nil, err
			}
			payload["init"] = val
		}
	default:
		return nil, fmt.Errorf("artifact: unhandled stmt type %T", s)
	}
	return json.Marshal(payload)
}

func exprToJSON(e ir.Expr) (json.RawMessage, error) {
	t := e.Type()
	base := map[string]interface{}{"type": t.Name, "arrayDims": t.ArrayDims}
	setKind := func(kind string) { base["kind"] = kind }

	switch v := e.(type) {
	case ir.LiteralExpr:
		setKind("literal")
		base["text"] = v.Text
	case ir.VarRefExpr:
		setKind("varRef")
		base["name"] = v.Name
	case ir.MemberExpr:
		setKind("member")
		obj, err := exprToJSON(v.Object)
		if err != nil {
			return nil, err
		}
		base["object"] = obj
		base["member"] = v.Member
		base["swizzle"] = v.Swizzle
	case ir.IndexExpr:
		setKind("index")
		obj, err := exprToJSON(v.Object)
		if err != nil {
			return nil, err
		}
		idx, err := exprToJSON(v.Index)
		if err != nil {
			return nil, err
		}
		base["object"] = obj
		base["index"] = idx
	case ir.CallExpr:
		setKind("call")
		args := make([]json.RawMessage, 0, len(v.Args))
		for _, a := range v.Args {
			raw, err := exprToJSON(a)
			if err != nil {
				return nil, err
			}
			args = append(args, raw)
		}
		base["callee"] = v.Callee
		base["args"] = args
		base["unresolved"] = v.Unresolved
	case ir.UnaryExpr:
		setKind("unary")
		operand, err := exprToJSON(v.Operand)
		if err != nil {
			return nil, err
		}
		base["operator"] = v.Operator
		base["operand"] = operand
	case ir.PostfixExpr:
		setKind("postfix")
		operand, err := exprToJSON(v.Operand)
		if err != nil {
			return nil, err
		}
		base["operator"] = v.Operator
		base["operand"] = operand
	case ir.BinaryOpCallExpr:
		setKind("binaryOpCall")
		left, err := exprToJSON(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprToJSON(v.Right)
		if err != nil {
			return nil, err
		}
		base["mangled"] = v.Mangled
		base["left"] = left
		base["right"] = right
		base["builtin"] = v.Builtin
	case ir.LogicalExpr:
		setKind("logical")
		left, err := exprToJSON(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := exprToJSON(v.Right)
		if err != nil {
			return nil, err
		}
		base["operator"] = v.Operator
		base["left"] = left
		base["right"] = right
	case ir.ConditionalExpr:
		setKind("conditional")
		cond, err := exprToJSON(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := exprToJSON(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := exprToJSON(v.Else)
		if err != nil {
			return nil, err
		}
		base["cond"] = cond
		base["then"] = then
		base["else"] = els
	case ir.AssignExpr:
		setKind("assign")
		target, err := exprToJSON(v.Target)
		if err != nil {
			return nil, err
		}
		value, err := exprToJSON(v.Value)
		if err != nil {
			return nil, err
		}
		base["target"] = target
		base["value"] = value
	case ir.CastExpr:
		setKind("cast")
		value, err := exprToJSON(v.Value)
		if err != nil {
			return nil, err
		}
		base["value"] = value
	case ir.ArrayLiteralExpr:
		setKind("arrayLiteral")
		elems := make([]json.RawMessage, 0, len(v.Elements))
		for _, el := range v.Elements {
			raw, err := exprToJSON(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, raw)
		}
		base["elements"] = elems
	default:
		return nil, fmt.Errorf("artifact: unhandled expr type %T", e)
	}
	return json.Marshal(base)
}
