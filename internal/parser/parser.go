// Package parser builds Lumina's concrete syntax tree from a token
// stream, per spec.md §4.3. It generalizes the teacher's recursive-descent
// parser (internal/parser/parser.go: tokens/current/Errors fields,
// match/check/advance/consume helpers, an operator-precedence table) from
// a dynamically-typed scripting grammar to Lumina's statically-typed
// declaration grammar, and replaces the teacher's panic-based error
// handling (a parse failure there unwinds the whole Parse() call via
// recover, see parser_test.go) with the spec's required tolerant recovery:
// a consume failure here records a diagnostic and resynchronizes to the
// next statement boundary instead of aborting the parse.
package parser

import (
	"strconv"
	"strings"

	"lumina/internal/ast"
	"lumina/internal/diag"
	"lumina/internal/token"
)

var assignOps = map[token.Kind]bool{
	token.Assign: true, token.PlusEq: true, token.MinusEq: true,
	token.StarEq: true, token.SlashEq: true, token.PercentEq: true,
	token.AmpEq: true, token.PipeEq: true, token.CaretEq: true,
}

// Parser walks a flattened token stream into a CST. One Parser instance
// is used for exactly one compilation (spec.md §9).
type Parser struct {
	tokens      []token.Token
	current     int
	file        string
	Diagnostics *diag.Bag
}

func New(file string, tokens []token.Token, bag *diag.Bag) *Parser {
	return &Parser{tokens: tokens, file: file, Diagnostics: bag}
}

// ParseUnit parses a whole compilation unit: a sequence of top-level
// instructions (spec.md §4.3 "Grammar").
func (p *Parser) ParseUnit() []ast.Instruction {
	var out []ast.Instruction
	for !p.isAtEnd() {
		startLine := p.peek().Span.Start.Line
		inst := p.instruction()
		if inst != nil {
			out = append(out, inst)
		}
		// Guard against a non-advancing iteration turning into an
		// infinite loop on a pathological input.
		if !p.isAtEnd() && p.peek().Span.Start.Line == startLine && inst == nil {
			p.advance()
		}
	}
	return out
}

// ---- token-stream primitives ----

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.EOF }
func (p *Parser) peek() token.Token { return p.tokens[p.current] }
func (p *Parser) peekAt(off int) token.Token {
	idx := p.current + off
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}
func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(k token.Kind) bool { return !p.isAtEnd() && p.peek().Kind == k }

func (p *Parser) checkNext(k token.Kind) bool { return p.peekAt(1).Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// consume requires kind next; on failure it records a diagnostic and
// returns the offending token without advancing, letting the caller
// decide how to recover (usually via synchronize).
func (p *Parser) consume(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	cur := p.peek()
	p.Diagnostics.Addf(diag.Syntactic, cur.Span, "%s (got %q)", msg, cur.Lexeme)
	return cur, false
}

// synchronize advances past tokens until the token just consumed is `;`
// or `}`, or the next token starts a line strictly after errLine or is a
// top-level keyword (spec.md §4.3 "Recovery").
func (p *Parser) synchronize(errLine int) {
	for !p.isAtEnd() {
		if p.previous().Kind == token.Semicolon || p.previous().Kind == token.RBrace {
			return
		}
		switch p.peek().Kind {
		case token.KwNamespace, token.KwStruct, token.KwAttributeBlock,
			token.KwConstantBlock, token.KwVertexPass, token.KwFragmentPass,
			token.KwInput, token.KwOutput:
			return
		}
		if p.peek().Span.Start.Line > errLine {
			return
		}
		p.advance()
	}
}

// ---- names and types ----

func (p *Parser) qualifiedName() ast.Name {
	start := p.peek().Span
	parts := []string{p.advance().Lexeme}
	for p.match(token.DColon) {
		if tok, ok := p.consume(token.Identifier, "expect identifier after '::'"); ok {
			parts = append(parts, tok.Lexeme)
		} else {
			break
		}
	}
	return ast.NewName(parts, token.Merge(start, p.previous().Span))
}

// looksLikeTypeStart reports whether the parser is positioned at a
// `[const] (identifier|Texture)(::identifier)*` run that could begin a
// type reference, used by the declaration-vs-expression lookahead
// (spec.md §4.3).
func (p *Parser) looksLikeTypeStart(offset int) bool {
	i := offset
	if p.peekAt(i).Kind == token.KwConst {
		i++
	}
	k := p.peekAt(i).Kind
	if k != token.Identifier && k != token.KwTexture {
		return false
	}
	i++
	for p.peekAt(i).Kind == token.DColon {
		i += 2
	}
	return true
}

// parseTypeRef parses a (possibly qualified) type name plus an optional
// array suffix "[N]" / "[]" repeated.
func (p *Parser) parseTypeRef() ast.TypeRef {
	start := p.peek().Span
	var name ast.Name
	if p.check(token.KwTexture) {
		tok := p.advance()
		name = ast.NewName([]string{tok.Lexeme}, tok.Span)
	} else {
		name = p.qualifiedName()
	}
	dims := 0
	for p.check(token.LBracket) {
		p.advance()
		if !p.check(token.RBracket) {
			p.advance() // array-size literal, shape only (spec.md open question)
		}
		p.consume(token.RBracket, "expect ']' after array dimension")
		dims++
	}
	return ast.TypeRef{Name: name, ArrayDims: dims, Span: token.Merge(start, p.previous().Span)}
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	p.consume(token.LParen, "expect '(' to start parameter list")
	if !p.check(token.RParen) {
		for {
			start := p.peek().Span
			typ := p.parseTypeRef()
			byRef := p.match(token.Amp)
			nameTok, _ := p.consume(token.Identifier, "expect parameter name")
			dims := 0
			for p.match(token.LBracket) {
				p.consume(token.RBracket, "expect ']' after array dimension")
				dims++
			}
			params = append(params, ast.Param{
				Type: typ, ByRef: byRef, Name: nameTok.Lexeme, ArrayDims: dims,
				Span: token.Merge(start, p.previous().Span),
			})
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RParen, "expect ')' after parameter list")
	return params
}

// ---- top-level instructions ----

func (p *Parser) instruction() ast.Instruction {
	switch {
	case p.isStageArrow():
		return p.pipelineDecl()
	case p.check(token.KwVertexPass), p.check(token.KwFragmentPass):
		return p.stageFunction()
	case p.check(token.KwNamespace):
		return p.namespaceDecl()
	case p.check(token.KwStruct), p.check(token.KwAttributeBlock), p.check(token.KwConstantBlock):
		return p.aggregateDecl()
	case p.check(token.KwInput), p.check(token.KwOutput):
		errLine := p.peek().Span.Start.Line
		p.Diagnostics.Addf(diag.Pipeline, p.peek().Span, "stray stage keyword %q outside a pipeline declaration", p.peek().Lexeme)
		p.advance()
		p.synchronize(errLine)
		return nil
	default:
		return p.functionOrVariableDecl()
	}
}

func (p *Parser) isStageArrow() bool {
	switch p.peek().Kind {
	case token.KwInput, token.KwOutput, token.KwVertexPass, token.KwFragmentPass:
		return p.checkNext(token.Arrow)
	}
	return false
}

func (p *Parser) pipelineDecl() ast.Instruction {
	start := p.peek().Span
	from := p.advance().Kind
	p.consume(token.Arrow, "expect '->' in pipeline declaration")
	to := p.advance().Kind
	p.consume(token.Colon, "expect ':' in pipeline declaration")
	typ := p.parseTypeRef()
	nameTok, _ := p.consume(token.Identifier, "expect variable name in pipeline declaration")
	p.consume(token.Semicolon, "expect ';' after pipeline declaration")
	return &ast.PipelineDecl{From: from, To: to, Type: typ, VarName: nameTok.Lexeme, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) stageFunction() ast.Instruction {
	start := p.peek().Span
	stage := p.advance().Kind
	if start.File != p.file {
		p.Diagnostics.Addf(diag.Include, start, "stage function %s is not allowed in included file %s", stage, start.File)
	}
	params := p.parseParams()
	p.consume(token.LBrace, "expect '{' to start stage function body")
	body := p.statementsUntilRBrace()
	p.consume(token.RBrace, "expect '}' to close stage function body")
	return &ast.StageFunction{Stage: stage, Params: params, Body: body, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) namespaceDecl() ast.Instruction {
	start := p.peek().Span
	p.advance()
	nameTok, _ := p.consume(token.Identifier, "expect namespace name")
	p.consume(token.LBrace, "expect '{' to start namespace body")
	var insts []ast.Instruction
	for !p.check(token.RBrace) && !p.isAtEnd() {
		startLine := p.peek().Span.Start.Line
		inst := p.instruction()
		if inst != nil {
			insts = append(insts, inst)
		} else if !p.isAtEnd() && p.peek().Span.Start.Line == startLine {
			p.advance()
		}
	}
	p.consume(token.RBrace, "expect '}' to close namespace body")
	return &ast.NamespaceDecl{Name: nameTok.Lexeme, Instructions: insts, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) aggregateDecl() ast.Instruction {
	start := p.peek().Span
	var kind ast.AggregateKind
	switch p.advance().Kind {
	case token.KwStruct:
		kind = ast.KindStruct
	case token.KwAttributeBlock:
		kind = ast.KindAttributeBlock
	case token.KwConstantBlock:
		kind = ast.KindConstantBlock
	}
	nameTok, _ := p.consume(token.Identifier, "expect aggregate name")
	p.consume(token.LBrace, "expect '{' to start aggregate body")

	decl := &ast.AggregateDecl{Kind: kind, Name: nameTok.Lexeme}
	for !p.check(token.RBrace) && !p.isAtEnd() {
		errLine := p.peek().Span.Start.Line
		switch {
		case p.check(token.KwOperator):
			decl.Operators = append(decl.Operators, p.operatorDecl())
		case p.check(token.Identifier) && p.peek().Lexeme == nameTok.Lexeme && p.checkNext(token.LParen):
			decl.Constructors = append(decl.Constructors, p.constructorDecl())
		case p.looksLikeTypeStart(0) && p.isMethodAhead():
			decl.Methods = append(decl.Methods, p.methodDecl())
		case p.looksLikeTypeStart(0):
			decl.Fields = append(decl.Fields, p.fieldDecl())
		default:
			p.Diagnostics.Addf(diag.Syntactic, p.peek().Span, "expected aggregate member, got %q", p.peek().Lexeme)
			p.advance()
			p.synchronize(errLine)
		}
	}
	p.consume(token.RBrace, "expect '}' to close aggregate body")
	p.consume(token.Semicolon, "expect ';' after aggregate declaration")
	decl.At = token.Merge(start, p.previous().Span)
	return decl
}

// isMethodAhead distinguishes "Type name ( ... ) { ... }" (method) from
// "Type name ;" / "Type name = expr;" (field), by scanning past the type
// and name to see whether '(' follows.
func (p *Parser) isMethodAhead() bool {
	save := p.current
	defer func() { p.current = save }()
	p.parseTypeRef()
	if !p.check(token.Identifier) {
		return false
	}
	p.advance()
	return p.check(token.LParen)
}

func (p *Parser) fieldDecl() ast.FieldDecl {
	start := p.peek().Span
	typ := p.parseTypeRef()
	nameTok, _ := p.consume(token.Identifier, "expect field name")
	dims := 0
	for p.match(token.LBracket) {
		p.consume(token.RBracket, "expect ']' after array dimension")
		dims++
	}
	p.consume(token.Semicolon, "expect ';' after field declaration")
	return ast.FieldDecl{Type: typ, Name: nameTok.Lexeme, ArrayDims: dims, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) constructorDecl() *ast.ConstructorDecl {
	start := p.peek().Span
	p.advance() // constructor name
	params := p.parseParams()
	p.consume(token.LBrace, "expect '{' to start constructor body")
	body := p.statementsUntilRBrace()
	p.consume(token.RBrace, "expect '}' to close constructor body")
	return &ast.ConstructorDecl{Params: params, Body: body, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) methodDecl() *ast.MethodDecl {
	start := p.peek().Span
	ret := p.parseTypeRef()
	nameTok, _ := p.consume(token.Identifier, "expect method name")
	params := p.parseParams()
	isConst := p.match(token.KwConst)
	p.consume(token.LBrace, "expect '{' to start method body")
	body := p.statementsUntilRBrace()
	p.consume(token.RBrace, "expect '}' to close method body")
	return &ast.MethodDecl{
		ReturnType: ret, Name: nameTok.Lexeme, Params: params, Const: isConst,
		Body: body, At: token.Merge(start, p.previous().Span),
	}
}

func (p *Parser) operatorDecl() *ast.OperatorDecl {
	start := p.peek().Span
	p.advance() // 'operator'
	symbol := p.operatorSymbol()
	params := p.parseParams()
	isConst := p.match(token.KwConst)
	p.consume(token.LBrace, "expect '{' to start operator body")
	body := p.statementsUntilRBrace()
	p.consume(token.RBrace, "expect '}' to close operator body")
	return &ast.OperatorDecl{Symbol: symbol, Params: params, Const: isConst, Body: body, At: token.Merge(start, p.previous().Span)}
}

// operatorSymbol reads one operator token, handling the paired "[ ]"
// index-operator spelling.
func (p *Parser) operatorSymbol() string {
	if p.check(token.LBracket) {
		p.advance()
		p.consume(token.RBracket, "expect ']' to close '[' in operator[]")
		return "[]"
	}
	tok := p.advance()
	return tok.Lexeme
}

func (p *Parser) functionOrVariableDecl() ast.Instruction {
	start := p.peek().Span
	isConst := p.match(token.KwConst)
	typ := p.parseTypeRef()
	byRef := p.match(token.Amp)
	nameTok, ok := p.consume(token.Identifier, "expect declaration name")
	if !ok {
		errLine := start.Start.Line
		p.synchronize(errLine)
		return nil
	}

	if p.check(token.LParen) {
		params := p.parseParams()
		isMethodConst := p.match(token.KwConst)
		p.consume(token.LBrace, "expect '{' to start function body")
		body := p.statementsUntilRBrace()
		p.consume(token.RBrace, "expect '}' to close function body")
		_ = isConst
		return &ast.FunctionDecl{
			ReturnType: typ, ByRefReturn: byRef, Name: nameTok.Lexeme, Params: params,
			Const: isMethodConst, Body: body, At: token.Merge(start, p.previous().Span),
		}
	}

	dims := 0
	for p.match(token.LBracket) {
		p.consume(token.RBracket, "expect ']' after array dimension")
		dims++
	}
	var init ast.Expression
	if p.match(token.Assign) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after variable declaration")
	return &ast.GlobalVarDecl{
		Type: typ, ByRef: byRef, Name: nameTok.Lexeme, ArrayDims: dims, Init: init,
		At: token.Merge(start, p.previous().Span),
	}
}

// ---- statements ----

func (p *Parser) statementsUntilRBrace() []ast.Statement {
	var stmts []ast.Statement
	for !p.check(token.RBrace) && !p.isAtEnd() {
		startLine := p.peek().Span.Start.Line
		s := p.statement()
		if s != nil {
			stmts = append(stmts, s)
		} else if !p.isAtEnd() && p.peek().Span.Start.Line == startLine {
			p.advance()
		}
	}
	return stmts
}

// looksLikeDeclaration implements the disambiguation rule of spec.md
// §4.3: an optional `const`, one-or-more identifier/Texture separated by
// `::`, an optional `&`, then an identifier.
func (p *Parser) looksLikeDeclaration() bool {
	i := 0
	if p.peekAt(i).Kind == token.KwConst {
		i++
	}
	k := p.peekAt(i).Kind
	if k != token.Identifier && k != token.KwTexture {
		return false
	}
	i++
	for p.peekAt(i).Kind == token.DColon {
		i += 2
	}
	if p.peekAt(i).Kind == token.Amp {
		i++
	}
	return p.peekAt(i).Kind == token.Identifier
}

func (p *Parser) statement() ast.Statement {
	switch {
	case p.check(token.LBrace):
		return p.blockStatement()
	case p.check(token.KwIf):
		return p.ifStatement()
	case p.check(token.KwWhile):
		return p.whileStatement()
	case p.check(token.KwDo):
		return p.doWhileStatement()
	case p.check(token.KwFor):
		return p.forStatement()
	case p.check(token.KwReturn):
		return p.returnStatement()
	case p.check(token.KwBreak):
		start := p.advance().Span
		p.consume(token.Semicolon, "expect ';' after 'break'")
		return &ast.BreakStmt{At: token.Merge(start, p.previous().Span)}
	case p.check(token.KwContinue):
		start := p.advance().Span
		p.consume(token.Semicolon, "expect ';' after 'continue'")
		return &ast.ContinueStmt{At: token.Merge(start, p.previous().Span)}
	case p.check(token.KwDiscard):
		start := p.advance().Span
		p.consume(token.Semicolon, "expect ';' after 'discard'")
		return &ast.DiscardStmt{At: token.Merge(start, p.previous().Span)}
	case p.looksLikeDeclaration():
		return p.varDeclStatement()
	default:
		start := p.peek().Span
		errLine := start.Start.Line
		expr := p.expression()
		if _, ok := p.consume(token.Semicolon, "expect ';' after expression"); !ok {
			p.synchronize(errLine)
		}
		return &ast.ExprStmt{Expr: expr, At: token.Merge(start, p.previous().Span)}
	}
}

func (p *Parser) blockStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	stmts := p.statementsUntilRBrace()
	p.consume(token.RBrace, "expect '}' to close block")
	return &ast.BlockStmt{Stmts: stmts, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) ifStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	p.consume(token.LParen, "expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RParen, "expect ')' after if condition")
	then := p.statement()
	var elseStmt ast.Statement
	if p.match(token.KwElse) {
		elseStmt = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseStmt, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) whileStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	p.consume(token.LParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RParen, "expect ')' after while condition")
	body := p.statement()
	return &ast.WhileStmt{Cond: cond, Body: body, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) doWhileStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	body := p.statement()
	p.consume(token.KwWhile, "expect 'while' after do-block")
	p.consume(token.LParen, "expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RParen, "expect ')' after while condition")
	p.consume(token.Semicolon, "expect ';' after do-while")
	return &ast.DoWhileStmt{Body: body, Cond: cond, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) forStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	p.consume(token.LParen, "expect '(' after 'for'")

	var init ast.Statement
	if !p.check(token.Semicolon) {
		if p.looksLikeDeclaration() {
			init = p.varDeclStatement()
		} else {
			e := p.expression()
			p.consume(token.Semicolon, "expect ';' after for-init")
			init = &ast.ExprStmt{Expr: e, At: e.Span()}
		}
	} else {
		p.advance()
	}

	var cond ast.Expression
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after for-condition")

	var incr ast.Expression
	if !p.check(token.RParen) {
		incr = p.expression()
	}
	p.consume(token.RParen, "expect ')' after for-clauses")

	body := p.statement()
	return &ast.ForStmt{Init: init, Cond: cond, Incr: incr, Body: body, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) returnStatement() ast.Statement {
	start := p.peek().Span
	p.advance()
	var value ast.Expression
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after return")
	return &ast.ReturnStmt{Value: value, At: token.Merge(start, p.previous().Span)}
}

func (p *Parser) varDeclStatement() ast.Statement {
	start := p.peek().Span
	isConst := p.match(token.KwConst)
	typ := p.parseTypeRef()
	byRef := p.match(token.Amp)
	nameTok, _ := p.consume(token.Identifier, "expect variable name")
	dims := 0
	for p.match(token.LBracket) {
		p.consume(token.RBracket, "expect ']' after array dimension")
		dims++
	}
	var init ast.Expression
	if p.match(token.Assign) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "expect ';' after variable declaration")
	return &ast.VarDeclStmt{
		Const: isConst, Type: typ, ByRef: byRef, Name: nameTok.Lexeme, ArrayDims: dims,
		Init: init, At: token.Merge(start, p.previous().Span),
	}
}

// ---- expressions ----

func (p *Parser) expression() ast.Expression { return p.assignment() }

func (p *Parser) assignment() ast.Expression {
	expr := p.conditional()
	if assignOps[p.peek().Kind] {
		opTok := p.advance()
		value := p.assignment() // right-associative
		return &ast.AssignExpr{Target: expr, Operator: opTok.Lexeme, Value: value, At: token.Merge(expr.Span(), value.Span())}
	}
	return expr
}

func (p *Parser) conditional() ast.Expression {
	cond := p.logicalOr()
	if p.match(token.Question) {
		then := p.expression()
		p.consume(token.Colon, "expect ':' in conditional expression")
		elseExpr := p.conditional() // right-associative
		return &ast.ConditionalExpr{Cond: cond, Then: then, Else: elseExpr, At: token.Merge(cond.Span(), elseExpr.Span())}
	}
	return cond
}

// levels lists each precedence rung low-to-high as the set of operator
// kinds that share it; binaryLevel(0) is the loosest (||), and falls
// through to unary() once the rungs are exhausted.
var levels = [][]token.Kind{
	{token.OrOr},
	{token.AndAnd},
	{token.Pipe},
	{token.Caret},
	{token.Amp},
	{token.EqEq, token.NotEq},
	{token.Lt, token.Gt, token.LtEq, token.GtEq},
	{token.Plus, token.Minus},
	{token.Star, token.Slash, token.Percent},
}

func (p *Parser) logicalOr() ast.Expression { return p.binaryLevel(0) }

// binaryLevel implements one precedence rung via the standard
// left-associative climbing-precedence loop.
func (p *Parser) binaryLevel(level int) ast.Expression {
	if level >= len(levels) {
		return p.unary()
	}
	next := func() ast.Expression { return p.binaryLevel(level + 1) }

	left := next()
	for containsKind(levels[level], p.peek().Kind) {
		opTok := p.advance()
		right := next()
		left = &ast.BinaryExpr{Left: left, Operator: opTok.Lexeme, Right: right, At: token.Merge(left.Span(), right.Span())}
	}
	return left
}

func containsKind(ks []token.Kind, k token.Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

func (p *Parser) unary() ast.Expression {
	switch p.peek().Kind {
	case token.Plus, token.Minus, token.Bang, token.Tilde, token.Incr, token.Decr:
		opTok := p.advance()
		operand := p.unary()
		return &ast.UnaryExpr{Operator: opTok.Lexeme, Operand: operand, At: token.Merge(opTok.Span, operand.Span())}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expression {
	expr := p.primary()
	for {
		switch p.peek().Kind {
		case token.LParen:
			start := expr.Span()
			p.advance()
			var args []ast.Expression
			if !p.check(token.RParen) {
				for {
					args = append(args, p.expression())
					if !p.match(token.Comma) {
						break
					}
				}
			}
			p.consume(token.RParen, "expect ')' after call arguments")
			expr = &ast.CallExpr{Callee: expr, Args: args, At: token.Merge(start, p.previous().Span)}
		case token.Dot:
			p.advance()
			memberTok, _ := p.consume(token.Identifier, "expect member name after '.'")
			expr = &ast.MemberExpr{Object: expr, Member: memberTok.Lexeme, At: token.Merge(expr.Span(), memberTok.Span)}
		case token.LBracket:
			start := expr.Span()
			p.advance()
			idx := p.expression()
			p.consume(token.RBracket, "expect ']' after index expression")
			expr = &ast.IndexExpr{Object: expr, Index: idx, At: token.Merge(start, p.previous().Span)}
		case token.Incr, token.Decr:
			opTok := p.advance()
			expr = &ast.PostfixExpr{Operator: opTok.Lexeme, Operand: expr, At: token.Merge(expr.Span(), opTok.Span)}
		default:
			return expr
		}
	}
}

func (p *Parser) primary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case token.Integer:
		p.advance()
		kind := ast.LitInt
		if strings.ContainsAny(tok.Lexeme, "uU") {
			kind = ast.LitUInt
		}
		return &ast.LiteralExpr{Kind: kind, Text: tok.Lexeme, At: tok.Span}
	case token.Float:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LitFloat, Text: tok.Lexeme, At: tok.Span}
	case token.String:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LitString, Text: tok.Lexeme, At: tok.Span}
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.LiteralExpr{Kind: ast.LitBool, Text: tok.Lexeme, At: tok.Span}
	case token.KwThis:
		p.advance()
		return &ast.ThisExpr{At: tok.Span}
	case token.LBrace:
		return p.arrayLiteral()
	case token.LParen:
		p.advance()
		inner := p.expression()
		p.consume(token.RParen, "expect ')' to close parenthesized expression")
		return inner
	case token.Identifier:
		name := p.qualifiedName()
		return &ast.IdentExpr{Name: name, At: name.Span}
	}

	p.Diagnostics.Addf(diag.Syntactic, tok.Span, "unexpected token %q in expression", tok.Lexeme)
	p.advance()
	return &ast.LiteralExpr{Kind: ast.LitInt, Text: "0", At: tok.Span}
}

func (p *Parser) arrayLiteral() ast.Expression {
	start := p.peek().Span
	p.advance()
	var elems []ast.Expression
	if !p.check(token.RBrace) {
		for {
			elems = append(elems, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RBrace, "expect '}' to close array literal")
	return &ast.ArrayLiteralExpr{Elements: elems, At: token.Merge(start, p.previous().Span)}
}

// ParseIntLiteral is a small helper that strips a literal's u/U suffix
// before interpreting an int/uint literal's numeric value.
func ParseIntLiteral(text string) (int64, bool) {
	trimmed := strings.TrimRight(text, "uU")
	n, err := strconv.ParseInt(trimmed, 10, 64)
	return n, err == nil
}
