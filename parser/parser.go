package parser

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/lexer"
	"github.com/thiremani/kmangle/token"
)

const (
	_ int = iota
	LOWEST
	CONJUNCTION // A & B
	SUM         // +
	PRODUCT     // *
	POWER       // ^
	PREFIX      // -X, expand X, @Mod X
	POSTFIX     // X[N] or f(X)
)

var precedences = map[token.TokenType]int{
	token.AND:    CONJUNCTION,
	token.ADD:    SUM,
	token.SUB:    SUM,
	token.MUL:    PRODUCT,
	token.XOR:    POWER,
	token.LBRACK: POSTFIX,
	token.LPAREN: POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentExpression)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.SUB, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.AT, p.parseModifiedExpression)
	p.registerPrefix(token.FUNC, p.parseFuncTypeExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.ADD, p.parseInfixExpression)
	p.registerInfix(token.SUB, p.parseInfixExpression)
	p.registerInfix(token.MUL, p.parseInfixExpression)
	p.registerInfix(token.XOR, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.LBRACK, p.parseArrayExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf("%d:%d: ", tok.Line, tok.Column) + fmt.Sprintf(format, args...)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected next token to be %s, got %s instead", t, p.peekToken)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(tok, "no prefix parse function for %s found", tok)
}

// ParseProgram parses a whole sketch file. Parsing continues after an error
// so that one run reports every malformed declaration.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	if p.curTokenIs(token.MODULE) {
		program.Module = p.parseModuleStatement()
		p.nextToken()
	}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.skipToNextDecl()
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseModuleStatement() *ast.ModuleStatement {
	stmt := &ast.ModuleStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal
	// dotted module names: module core.math
	for p.peekTokenIs(token.PERIOD) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Name += "." + p.curToken.Literal
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.MANGLE:
		if s := p.parseMangleStatement(); s != nil {
			return s
		}
		return nil
	case token.MODULE:
		p.errorf(p.curToken, "module must be declared once, before any declaration")
		p.parseModuleStatement()
		return nil
	}
	if d := p.parseDeclStatement(); d != nil {
		return d
	}
	return nil
}

func (p *Parser) parseMangleStatement() *ast.MangleStatement {
	stmt := &ast.MangleStatement{Token: p.curToken}
	p.nextToken()

	switch {
	case p.curToken.IsWord("type"):
		stmt.Kind = ast.MangleType
		p.nextToken()
		stmt.Target = p.parseExpression(LOWEST)
	case p.curToken.IsWord("witness"):
		stmt.Kind = ast.MangleWitness
		p.nextToken()
		stmt.Target = p.parseExpression(LOWEST)
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		stmt.Sup = p.parseExpression(LOWEST)
		if stmt.Sup == nil {
			return nil
		}
	default:
		stmt.Kind = ast.MangleDecl
		if !p.curTokenIs(token.IDENT) {
			p.errorf(p.curToken, "expected a declaration path after mangle, got %s", p.curToken)
			return nil
		}
		stmt.Target = p.parsePath()
	}

	if stmt.Target == nil {
		return nil
	}
	return stmt
}

// parseModifiers consumes leading @modifier words. On return curToken is the
// declaration keyword.
func (p *Parser) parseModifiers() ([]ast.Modifier, bool) {
	var mods []ast.Modifier
	for p.curTokenIs(token.AT) {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		mod, ok := ast.LookupModifier(p.curToken.Literal)
		if !ok {
			p.errorf(p.curToken, "unknown modifier @%s", p.curToken.Literal)
			return nil, false
		}
		mods = append(mods, mod)
		p.nextToken()
	}
	return mods, true
}

func (p *Parser) parseDeclStatement() *ast.DeclStatement {
	mods, ok := p.parseModifiers()
	if !ok {
		return nil
	}

	var d *ast.DeclStatement
	switch p.curToken.Type {
	case token.STRUCT:
		d = p.parseAggregate(ast.StructDecl)
	case token.INTERFACE:
		d = p.parseAggregate(ast.InterfaceDecl)
	case token.ENUM:
		d = p.parseAggregate(ast.EnumDecl)
	case token.EXTENSION:
		d = p.parseExtension()
	case token.VAR:
		d = p.parseVar()
	case token.PROPERTY:
		d = p.parseProperty()
	case token.FUNC:
		d = p.parseFunc()
	case token.INIT:
		d = p.parseInit()
	case token.TYPEALIAS:
		d = p.parseTypeAlias()
	case token.GENERIC:
		d = p.parseGeneric()
	case token.DERIVATIVE:
		d = p.parseDerivative()
	default:
		p.errorf(p.curToken, "expected a declaration, got %s", p.curToken)
		return nil
	}

	if d == nil {
		return nil
	}
	if len(mods) > 0 {
		if d.Kind == ast.GenericDecl {
			p.errorf(d.Token, "modifiers go on the declaration after generic<...>")
			return nil
		}
		d.Modifiers = append(mods, d.Modifiers...)
	}
	return d
}

// parseName accepts a plain or back-quoted identifier as a declaration name.
func (p *Parser) parseName() (string, bool) {
	if !p.expectPeek(token.IDENT) {
		return "", false
	}
	return p.curToken.Literal, true
}

func (p *Parser) parseAggregate(kind ast.DeclKind) *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: kind}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if !p.parseSupersAndBody(d) {
		return nil
	}
	return d
}

func (p *Parser) parseExtension() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.ExtensionDecl}
	p.nextToken()
	d.Type = p.parseExpression(LOWEST)
	if d.Type == nil || !p.parseSupersAndBody(d) {
		return nil
	}
	return d
}

// parseSupersAndBody parses `[: A, B] { members }` with curToken on the last
// token before it. It leaves curToken on the closing brace.
func (p *Parser) parseSupersAndBody(d *ast.DeclStatement) bool {
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		d.Supers = p.parseExpList()
		if d.Supers == nil {
			return false
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return false
	}
	open := p.curToken
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(open, "unterminated body of %s", d.Token.Literal)
			return false
		}
		if m := p.parseDeclStatement(); m != nil {
			d.Body = append(d.Body, m)
		} else {
			p.skipToNextDecl()
		}
		p.nextToken()
	}
	return true
}

// skipToNextDecl advances until the next token could start a declaration, so
// one bad member does not derail the rest of a body.
func (p *Parser) skipToNextDecl() {
	for !p.peekTokenIs(token.EOF) && !p.peekTokenIs(token.RBRACE) &&
		!p.peekTokenIs(token.AT) && !p.peekToken.IsKeyword() {
		p.nextToken()
	}
}

func (p *Parser) parseVar() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.VarDecl}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if d.Type = p.parseTypeAnnotation(); d.Type == nil {
		return nil
	}
	return d
}

// parseTypeAnnotation parses `: Type` following curToken.
func (p *Parser) parseTypeAnnotation() ast.Expression {
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseProperty() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.PropertyDecl}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if d.Type = p.parseTypeAnnotation(); d.Type == nil {
		return nil
	}
	if !p.peekTokenIs(token.LBRACE) {
		return d
	}
	p.nextToken()
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		kind, ok := ast.LookupAccessor(p.curToken.Literal)
		if !p.curTokenIs(token.IDENT) || p.curToken.Quoted || !ok {
			p.errorf(p.curToken, "expected get, set or ref in property body, got %s", p.curToken)
			return nil
		}
		d.Accessors = append(d.Accessors, kind)
	}
	p.nextToken()
	return d
}

func (p *Parser) parseFunc() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.FuncDecl}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if d.Params, ok = p.parseParams(); !ok {
		return nil
	}
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		if d.Result = p.parseExpression(LOWEST); d.Result == nil {
			return nil
		}
	}
	return d
}

func (p *Parser) parseInit() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.ConstructorDecl}
	var ok bool
	if d.Params, ok = p.parseParams(); !ok {
		return nil
	}
	return d
}

// parseParams parses `(p: T, out q: U)` following curToken and leaves
// curToken on ')'.
func (p *Parser) parseParams() ([]*ast.ParamNode, bool) {
	if !p.expectPeek(token.LPAREN) {
		return nil, false
	}
	params := []*ast.ParamNode{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		param := p.parseParam()
		if param == nil {
			return nil, false
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseParam() *ast.ParamNode {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	param := &ast.ParamNode{Token: p.curToken, Direction: ast.In}
	// A direction word is only a direction when a name follows it, so a
	// parameter may still be called `out`.
	if dir, ok := ast.LookupDirection(p.curToken.Literal); ok && !p.curToken.Quoted && p.peekTokenIs(token.IDENT) {
		param.Direction = dir
		p.nextToken()
		param.Token = p.curToken
	}
	param.Name = p.curToken.Literal
	if param.Type = p.parseTypeAnnotation(); param.Type == nil {
		return nil
	}
	return param
}

func (p *Parser) parseTypeAlias() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.TypeAliasDecl}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	if d.Type = p.parseExpression(LOWEST); d.Type == nil {
		return nil
	}
	return d
}

func (p *Parser) parseGeneric() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken, Kind: ast.GenericDecl}
	if !p.expectPeek(token.LSS) {
		return nil
	}
	for {
		gp := p.parseGenericParam()
		if gp == nil {
			return nil
		}
		d.GenericParams = append(d.GenericParams, gp)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.GTR) {
		return nil
	}

	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		for {
			p.nextToken()
			sub := p.parseExpression(LOWEST)
			if sub == nil || !p.expectPeek(token.COLON) {
				return nil
			}
			clause := &ast.WhereClause{Token: p.curToken, Sub: sub}
			p.nextToken()
			if clause.Sup = p.parseExpression(LOWEST); clause.Sup == nil {
				return nil
			}
			d.Where = append(d.Where, clause)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	p.nextToken()
	if d.Inner = p.parseDeclStatement(); d.Inner == nil {
		return nil
	}
	switch d.Inner.Kind {
	case ast.ConstructorDecl, ast.ForwardDerivativeRequirementDecl, ast.BackwardDerivativeRequirementDecl:
		p.errorf(d.Inner.Token, "%s cannot be generic", d.Inner.Token.Literal)
		return nil
	}
	return d
}

func (p *Parser) parseGenericParam() *ast.GenericParamNode {
	p.nextToken()
	switch {
	case p.curTokenIs(token.LET):
		gp := &ast.GenericParamNode{Token: p.curToken, Kind: ast.GenericValueParamDecl}
		name, ok := p.parseName()
		if !ok {
			return nil
		}
		gp.Name = name
		if gp.Type = p.parseTypeAnnotation(); gp.Type == nil {
			return nil
		}
		return gp
	case p.curToken.IsWord("each") && p.peekTokenIs(token.IDENT):
		gp := &ast.GenericParamNode{Token: p.curToken, Kind: ast.GenericTypePackParamDecl}
		p.nextToken()
		gp.Name = p.curToken.Literal
		return gp
	case p.curTokenIs(token.IDENT):
		return &ast.GenericParamNode{Token: p.curToken, Kind: ast.GenericTypeParamDecl, Name: p.curToken.Literal}
	}
	p.errorf(p.curToken, "expected a generic parameter, got %s", p.curToken)
	return nil
}

func (p *Parser) parseDerivative() *ast.DeclStatement {
	d := &ast.DeclStatement{Token: p.curToken}
	p.nextToken()
	switch {
	case p.curToken.IsWord("fwd"):
		d.Kind = ast.ForwardDerivativeRequirementDecl
	case p.curToken.IsWord("bwd"):
		d.Kind = ast.BackwardDerivativeRequirementDecl
	default:
		p.errorf(p.curToken, "expected fwd or bwd after derivative, got %s", p.curToken)
		return nil
	}
	name, ok := p.parseName()
	if !ok {
		return nil
	}
	d.Name = name
	if !p.expectPeek(token.OF) || !p.expectPeek(token.IDENT) {
		return nil
	}
	if d.Original = p.parsePath(); d.Original == nil {
		return nil
	}
	return d
}

func (p *Parser) parseExpList() []ast.Expression {
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	expList := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil
		}
		expList = append(expList, exp)
	}
	return expList
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

// parseIdentExpression handles the contextual prefix words `expand` and
// `each` and otherwise parses a path.
func (p *Parser) parseIdentExpression() ast.Expression {
	if (p.curToken.IsWord("expand") || p.curToken.IsWord("each")) && p.prefixParseFns[p.peekToken.Type] != nil {
		expression := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
		p.nextToken()
		if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
			return nil
		}
		return expression
	}
	if path := p.parsePath(); path != nil {
		return path
	}
	return nil
}

// parsePath parses `a<args>.b.c<args>` starting at an identifier.
func (p *Parser) parsePath() *ast.PathExpression {
	path := &ast.PathExpression{Token: p.curToken}
	for {
		seg := &ast.Segment{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if p.peekTokenIs(token.LSS) {
			p.nextToken()
			seg.Generic = true
			args, ok := p.parseGenericArgs()
			if !ok {
				return nil
			}
			seg.Args = args
		}
		path.Segments = append(path.Segments, seg)
		if !p.peekTokenIs(token.PERIOD) {
			return path
		}
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
	}
}

// parseGenericArgs parses `<a, b>` with curToken on '<' and leaves curToken
// on '>'.
func (p *Parser) parseGenericArgs() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	if p.peekTokenIs(token.GTR) {
		p.nextToken()
		return args, true
	}
	p.nextToken()
	args = p.parseExpList()
	if args == nil || !p.expectPeek(token.GTR) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	u, err := strconv.ParseUint(p.curToken.Literal, 10, 64)
	if err != nil {
		p.errorf(p.curToken, "could not parse %q as integer", p.curToken.Literal)
		return nil
	}
	value, err := safecast.Conv[int64](u)
	if err != nil {
		p.errorf(p.curToken, "integer %s out of range: %v", p.curToken.Literal, err)
		return nil
	}

	lit.Value = value

	return lit
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(token.XOR) {
		// right associative: 2^3^2 is 2^(3^2)
		precedence--
	}
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}

	return expression
}

// parseGroupedExpression parses `(T)` as T, and `()`, `(A,)` and `(A, B)` as
// tuples.
func (p *Parser) parseGroupedExpression() ast.Expression {
	tuple := &ast.TupleExpression{Token: p.curToken, Elements: []ast.Expression{}}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return tuple
	}
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return exp
	}

	tuple.Elements = append(tuple.Elements, exp)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
		p.nextToken()
		if exp = p.parseExpression(LOWEST); exp == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, exp)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return tuple
}

func (p *Parser) parseModifiedExpression() ast.Expression {
	expression := &ast.ModifiedExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expression.Modifier = p.curToken.Literal
	p.nextToken()
	if expression.Base = p.parseExpression(PREFIX); expression.Base == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseFuncTypeExpression() ast.Expression {
	expression := &ast.FuncTypeExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	expression.Params = []ast.Expression{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		p.nextToken()
		if expression.Params = p.parseExpList(); expression.Params == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	if !p.expectPeek(token.ARROW) {
		return nil
	}
	p.nextToken()
	// The result binds tighter than `&` so `func() -> A & B` stays a
	// conjunction of a function type.
	if expression.Result = p.parseExpression(CONJUNCTION); expression.Result == nil {
		return nil
	}
	if p.peekToken.IsWord("throws") {
		p.nextToken()
		p.nextToken()
		if expression.Throws = p.parseExpression(CONJUNCTION); expression.Throws == nil {
			return nil
		}
	}
	return expression
}

func (p *Parser) parseArrayExpression(elem ast.Expression) ast.Expression {
	expression := &ast.ArrayExpression{Token: p.curToken, Elem: elem}
	p.nextToken()
	if expression.Count = p.parseExpression(LOWEST); expression.Count == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return expression
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	path, ok := function.(*ast.PathExpression)
	if !ok {
		p.errorf(p.curToken, "cannot call %s", function)
		return nil
	}
	exp := &ast.CallExpression{Token: p.curToken, Function: path}
	exp.Arguments = p.parseCallArguments()
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = p.parseExpList()
	if args == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return args
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
