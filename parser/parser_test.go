package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/lexer"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

// parseOneExpr parses src as the target of a `mangle type` statement.
func parseOneExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	program := parseProgram(t, "mangle type "+src)
	require.Len(t, program.Statements, 1)
	stmt, ok := program.Statements[0].(*ast.MangleStatement)
	require.True(t, ok, "statement is %T", program.Statements[0])
	return stmt.Target
}

func testInfixExpression(t *testing.T, exp ast.Expression, left any, operator string, right any) {
	t.Helper()
	opExp, ok := exp.(*ast.InfixExpression)
	require.True(t, ok, "exp is not *ast.InfixExpression. got=%T(%s)", exp, exp)
	testLiteralExpression(t, opExp.Left, left)
	assert.Equal(t, operator, opExp.Operator)
	testLiteralExpression(t, opExp.Right, right)
}

func testLiteralExpression(t *testing.T, exp ast.Expression, expected any) {
	t.Helper()
	switch v := expected.(type) {
	case int:
		integ, ok := exp.(*ast.IntegerLiteral)
		require.True(t, ok, "exp not *ast.IntegerLiteral. got=%T", exp)
		assert.Equal(t, int64(v), integ.Value)
	case string:
		path, ok := exp.(*ast.PathExpression)
		require.True(t, ok, "exp not *ast.PathExpression. got=%T", exp)
		require.Len(t, path.Segments, 1)
		assert.Equal(t, v, path.Segments[0].Name.Value)
	default:
		t.Fatalf("type of expected not handled. got=%T", expected)
	}
}

func TestInfixExpressions(t *testing.T) {
	tests := []struct {
		input    string
		left     any
		operator string
		right    any
	}{
		{"5 + 5", 5, "+", 5},
		{"N - 1", "N", "-", 1},
		{"2 * N", 2, "*", "N"},
		{"N ^ 2", "N", "^", 2},
		{"IA & IB", "IA", "&", "IB"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			testInfixExpression(t, parseOneExpr(t, tt.input), tt.left, tt.operator, tt.right)
		})
	}
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2 * N ^ 2 + 1", "((2 * (N ^ 2)) + 1)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"-N + 1", "((-N) + 1)"},
		{"-(N + 1)", "(-(N + 1))"},
		{"N * (M + 1)", "(N * (M + 1))"},
		{"A & B & C", "((A & B) & C)"},
		{"float[N * 2]", "float[(N * 2)]"},
		{"float[3][4]", "float[3][4]"},
		{"(int)", "int"},
		{"(int, float)", "(int, float)"},
		{"(int,)", "(int,)"},
		{"()", "()"},
		{"func(int, float) -> bool", "func(int, float) -> bool"},
		{"func() -> int throws error", "func() -> int throws error"},
		{"func() -> A & B", "(func() -> A & B)"},
		{"@NoDiff @Foo float", "@NoDiff @Foo float"},
		{"expand each T", "(expand (each T))"},
		{"m.Box<int>.get", "m.Box<int>.get"},
		{"vector<float, 4>", "vector<float, 4>"},
		{"Box<>", "Box<>"},
		{"Box<cast<int>(N)>", "Box<cast<int>(N)>"},
		{"Box<count(N, 2) + 1>", "Box<(count(N, 2) + 1)>"},
		{"`+`", "`+`"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOneExpr(t, tt.input).String())
		})
	}
}

func TestPathSegments(t *testing.T) {
	exp := parseOneExpr(t, "m.Box<int, N>.get<>")
	path, ok := exp.(*ast.PathExpression)
	require.True(t, ok)
	require.Len(t, path.Segments, 3)

	assert.Equal(t, "m", path.Segments[0].Name.Value)
	assert.False(t, path.Segments[0].Generic)

	box := path.Segments[1]
	assert.True(t, box.Generic)
	require.Len(t, box.Args, 2)
	testLiteralExpression(t, box.Args[0], "int")
	testLiteralExpression(t, box.Args[1], "N")

	get := path.Segments[2]
	assert.True(t, get.Generic)
	assert.Empty(t, get.Args)
}

func TestDeclarationStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"struct Vec : IShape, IOther {\n var x: float\n func len() -> float\n}",
			"struct Vec : IShape, IOther { var x: float; func len() -> float; }",
		},
		{"enum E {}", "enum E { }"},
		{"interface IShape { func area() -> float }", "interface IShape { func area() -> float; }"},
		{
			"extension Vec : IShape { func area() -> float }",
			"extension Vec : IShape { func area() -> float; }",
		},
		{"property x: float { get set }", "property x: float { get set }"},
		{"property y: int", "property y: int"},
		{"property z: int {}", "property z: int"},
		{
			"@mutating @ref func f(out a: int, inout b: float, c: T) -> void",
			"@mutating @ref func f(out a: int, inout b: float, c: T) -> void",
		},
		{"func g()", "func g()"},
		{"func h(out: int)", "func h(out: int)"},
		{"init(x: float)", "init(x: float)"},
		{"func `+`(a: int, b: int) -> int", "func +(a: int, b: int) -> int"},
		{"typealias Real = float", "typealias Real = float"},
		{
			"generic<T, let N: int, each U> where T: IShape & IOther, U: IShape func pick(xs: T[N]) -> T",
			"generic<T, let N: int, each U> where T: (IShape & IOther), U: IShape func pick(xs: T[N]) -> T",
		},
		{"generic<T> @export func f(x: T)", "generic<T> @export func f(x: T)"},
		{"derivative fwd df of m.f", "derivative fwd df of m.f"},
		{"derivative bwd db of f", "derivative bwd db of f"},
		{"mangle witness Vec : IShape", "mangle witness Vec : IShape"},
		{"mangle type float[4]", "mangle type float[4]"},
		{"mangle m.Box<int>.get", "mangle m.Box<int>.get"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			program := parseProgram(t, tt.input)
			require.Len(t, program.Statements, 1)
			assert.Equal(t, tt.expected, program.Statements[0].String())
		})
	}
}

func TestParamDirections(t *testing.T) {
	program := parseProgram(t, "func f(a: int, out b: int, inout c: int, ref d: int, constref e: int, `out`: int)")
	fn := program.Statements[0].(*ast.DeclStatement)
	require.Len(t, fn.Params, 6)

	expected := []ast.Direction{ast.In, ast.Out, ast.InOut, ast.Ref, ast.ConstRef, ast.In}
	for i, p := range fn.Params {
		assert.Equal(t, expected[i], p.Direction, "param %d", i)
	}
	assert.Equal(t, "out", fn.Params[5].Name)
}

func TestModuleStatement(t *testing.T) {
	program := parseProgram(t, "# shapes\nmodule core.math\nstruct A {}\n")
	require.NotNil(t, program.Module)
	assert.Equal(t, "core.math", program.Module.Name)
	assert.Len(t, program.Statements, 1)

	program = parseProgram(t, "struct A {}")
	assert.Nil(t, program.Module)
}

func TestGenericParams(t *testing.T) {
	program := parseProgram(t, "generic<T, let N: int, each U> func f()")
	gen := program.Statements[0].(*ast.DeclStatement)
	require.Equal(t, ast.GenericDecl, gen.Kind)
	require.Len(t, gen.GenericParams, 3)

	kinds := []ast.DeclKind{ast.GenericTypeParamDecl, ast.GenericValueParamDecl, ast.GenericTypePackParamDecl}
	names := []string{"T", "N", "U"}
	for i, gp := range gen.GenericParams {
		assert.Equal(t, kinds[i], gp.Kind)
		assert.Equal(t, names[i], gp.Name)
	}
	assert.Equal(t, "int", gen.GenericParams[1].Type.String())
	require.NotNil(t, gen.Inner)
	assert.Equal(t, ast.FuncDecl, gen.Inner.Kind)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"missing name", "struct { }", "expected next token to be IDENT"},
		{"unknown modifier", "@bogus func f()", "unknown modifier @bogus"},
		{"modifier before generic", "@mutating generic<T> func f()", "modifiers go on the declaration after generic<...>"},
		{"generic init", "struct A { generic<T> init() }", "init cannot be generic"},
		{"generic derivative", "generic<T> derivative fwd d of f", "derivative cannot be generic"},
		{"bad accessor", "property p: int { get fetch }", "expected get, set or ref in property body"},
		{"bad derivative direction", "derivative sideways d of f", "expected fwd or bwd after derivative"},
		{"unterminated body", "struct A { var x: int", "unterminated body of struct"},
		{"second module", "func f()\nmodule m", "module must be declared once"},
		{"mangle literal", "mangle 3", "expected a declaration path after mangle"},
		{"integer overflow", "mangle type float[99999999999999999999]", "could not parse"},
		{"integer out of range", "mangle type float[18446744073709551615]", "out of range"},
		{"call on array", "mangle type float[2](x)", "cannot call"},
		{"illegal rune", "func f(a: $)", "no prefix parse function for ILLEGAL"},
		{"bad generic param", "generic<3> func f()", "expected a generic parameter"},
		{"not a declaration", "int", "expected a declaration, got IDENT(int)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input))
			p.ParseProgram()
			errs := p.Errors()
			require.NotEmpty(t, errs)
			assert.True(t, strings.Contains(strings.Join(errs, "\n"), tt.errMsg),
				"expected error containing %q, got %v", tt.errMsg, errs)
		})
	}
}

func TestErrorPositions(t *testing.T) {
	p := New(lexer.New("struct A {}\n  @bogus func f()"))
	p.ParseProgram()
	require.NotEmpty(t, p.Errors())
	assert.True(t, strings.HasPrefix(p.Errors()[0], "2:4: "), "got %q", p.Errors()[0])
}

func TestErrorRecovery(t *testing.T) {
	p := New(lexer.New("struct A { var x: int\n var : int\n func good() }\nfunc ok()"))
	program := p.ParseProgram()
	require.Len(t, p.Errors(), 1)
	require.Len(t, program.Statements, 2)

	agg := program.Statements[0].(*ast.DeclStatement)
	require.Len(t, agg.Body, 2)
	assert.Equal(t, "var x: int", agg.Body[0].String())
	assert.Equal(t, "func good()", agg.Body[1].String())
	assert.Equal(t, "func ok()", program.Statements[1].String())
}
