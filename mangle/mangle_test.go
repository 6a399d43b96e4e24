package mangle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/types"
)

func mustName(t *testing.T, g *ast.Graph, ref ast.DeclRef) string {
	t.Helper()
	s, err := Name(g, ref)
	require.NoError(t, err)
	return s
}

func mustTypeName(t *testing.T, g *ast.Graph, typ ast.TypeID) string {
	t.Helper()
	s, err := TypeName(g, typ)
	require.NoError(t, err)
	return s
}

// shapes is a small program shared by several tests:
//
//	module m
//	interface IShape
//	struct Vec : IShape { property x: float { get set ref } }
//	func add(a: int, b: int) -> int
//	func add(a: float, b: float) -> float
type shapes struct {
	g              *ast.Graph
	m              ast.DeclID
	ishape, vec    ast.DeclID
	prop           ast.DeclID
	get, set, ref  ast.DeclID
	addInt, addFlt ast.DeclID
	i, f, void     ast.TypeID
}

func newShapes() *shapes {
	s := &shapes{g: ast.NewGraph()}
	g := s.g
	s.i, s.f, s.void = g.Basic(types.Int), g.Basic(types.Float), g.Basic(types.Void)
	s.m = g.NewModule("m")
	s.ishape = g.AddAggregate(s.m, ast.InterfaceDecl, "IShape")
	s.vec = g.AddAggregate(s.m, ast.StructDecl, "Vec")
	g.AddInheritance(s.vec, g.DeclType(ast.MakeRef(s.ishape)))
	s.prop = g.AddProperty(s.vec, "x", s.f)
	s.get = g.AddAccessor(s.prop, ast.GetterDecl)
	s.set = g.AddAccessor(s.prop, ast.SetterDecl)
	s.ref = g.AddAccessor(s.prop, ast.RefAccessorDecl)
	s.addInt = g.AddFunc(s.m, "add", s.i, ast.Param{Name: "a", Type: s.i}, ast.Param{Name: "b", Type: s.i})
	s.addFlt = g.AddFunc(s.m, "add", s.f, ast.Param{Name: "a", Type: s.f}, ast.Param{Name: "b", Type: s.f})
	return s
}

func TestMangleFreeFunctions(t *testing.T) {
	s := newShapes()
	intName := mustName(t, s.g, ast.MakeRef(s.addInt))
	fltName := mustName(t, s.g, ast.MakeRef(s.addFlt))

	assert.Equal(t, "_S1m3addp2pi_ii_ii", intName)
	assert.Equal(t, "_S1m3addp2pi_fi_ff", fltName)
	assert.Equal(t, intName, mustName(t, s.g, ast.MakeRef(s.addInt)), "mangling must be deterministic")
}

func TestMangleDeclarationKinds(t *testing.T) {
	s := newShapes()
	g := s.g
	global := g.AddVar(s.m, "g", s.i)
	real := g.AddAlias(s.m, "Real", s.f)
	useAlias := g.AddFunc(s.m, "f", s.void, ast.Param{Name: "x", Type: g.Named(ast.MakeRef(real))})
	ctor := g.AddConstructor(s.vec, ast.Param{Name: "x", Type: s.f})
	inherit := g.Decl(s.vec).Members[0]

	tests := []struct {
		name     string
		decl     ast.DeclID
		expected string
	}{
		{"interface", s.ishape, "_ST1m6IShape"},
		{"struct", s.vec, "_ST1m3Vec"},
		{"variable", global, "_SV1m1g"},
		{"type alias", real, "_ST1m4Real"},
		{"alias resolves to its target", useAlias, "_S1m1fp1pi_fV"},
		{"constructor omits result", ctor, "_S1m3VecR8_24xinitp1pi_f"},
		{"inheritance", inherit, "_S1m3VecI1m6IShape0"},
		{"module", s.m, "_S1m"},
		{"property", s.prop, "_S1m3Vec1x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustName(t, g, ast.MakeRef(tt.decl)))
		})
	}
}

func TestMangleAccessors(t *testing.T) {
	s := newShapes()
	get := mustName(t, s.g, ast.MakeRef(s.get))
	set := mustName(t, s.g, ast.MakeRef(s.set))
	ref := mustName(t, s.g, ast.MakeRef(s.ref))

	assert.Equal(t, "_S1m3Vec1x0Agp0pf", get)
	assert.Equal(t, "_S1m3Vec1x0Asp1pi_fV", set)
	assert.Equal(t, "_S1m3Vec1x0Arp0pf", ref)
}

func TestMangleExternCpp(t *testing.T) {
	s := newShapes()
	foo := s.g.AddFunc(s.m, "foo", s.i, ast.Param{Name: "x", Type: s.f})
	s.g.AddModifiers(foo, ast.ExternCpp)

	assert.Equal(t, "foo", mustName(t, s.g, ast.MakeRef(foo)))

	// The fixed name also wins when the declaration is mangled as part of
	// another symbol.
	w, err := WitnessName(s.g, ast.MakeRef(foo), ast.MakeRef(s.ishape))
	require.NoError(t, err)
	assert.Equal(t, "_SWfoo1m6IShape", w)
}

func TestMangleExportDropsModule(t *testing.T) {
	s := newShapes()
	g := s.g
	bar := g.AddFunc(s.m, "bar", s.void, ast.Param{Name: "r", Dir: ast.Out, Type: s.f})
	g.AddModifiers(bar, ast.Export)
	method := g.AddFunc(s.vec, "len", s.f)
	g.AddModifiers(method, ast.Extern)

	assert.Equal(t, "_S3barp1po_fV", mustName(t, g, ast.MakeRef(bar)))
	assert.Equal(t, "_S3Vec3lenp0pf", mustName(t, g, ast.MakeRef(method)))
}

func TestMangleParameterDirections(t *testing.T) {
	s := newShapes()
	tests := []struct {
		dir      ast.Direction
		expected string
	}{
		{ast.In, "_S1m1fp1pi_iV"},
		{ast.Out, "_S1m1fp1po_iV"},
		{ast.InOut, "_S1m1fp1pio_iV"},
		{ast.Ref, "_S1m1fp1pr_iV"},
		{ast.ConstRef, "_S1m1fp1pc_iV"},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			fn := s.g.AddFunc(s.m, "f", s.void, ast.Param{Name: "x", Dir: tt.dir, Type: s.i})
			assert.Equal(t, tt.expected, mustName(t, s.g, ast.MakeRef(fn)))
		})
	}
}

func TestMangleQualifiersFixedOrder(t *testing.T) {
	s := newShapes()
	g := s.g
	a := g.AddFunc(s.vec, "scale", s.void, ast.Param{Name: "k", Type: s.f})
	g.AddModifiers(a, ast.NoDiffThis, ast.Mutating)
	b := g.AddFunc(s.vec, "scale", s.void, ast.Param{Name: "k", Type: s.f})
	g.AddModifiers(b, ast.Mutating, ast.NoDiffThis)
	all := g.AddFunc(s.vec, "scale", s.void, ast.Param{Name: "k", Type: s.f})
	g.AddModifiers(all, ast.NoDiffThis, ast.BackwardDifferentiable, ast.ForwardDifferentiable, ast.RefThis, ast.Mutating)

	assert.Equal(t, "_S1m3Vec5scalep1pi_fVmn", mustName(t, g, ast.MakeRef(a)))
	assert.Equal(t, mustName(t, g, ast.MakeRef(a)), mustName(t, g, ast.MakeRef(b)))
	assert.Equal(t, "_S1m3Vec5scalep1pi_fVmrfbn", mustName(t, g, ast.MakeRef(all)))
}

func TestMangleFixedness(t *testing.T) {
	s := newShapes()
	g := s.g
	pre := g.AddFunc(s.m, "++", s.i, ast.Param{Name: "x", Type: s.i})
	g.AddModifiers(pre, ast.Prefix)
	post := g.AddFunc(s.m, "++", s.i, ast.Param{Name: "x", Type: s.i})
	g.AddModifiers(post, ast.Postfix)

	assert.Equal(t, "_S1mR8_2bx_2bxpp1pi_ii", mustName(t, g, ast.MakeRef(pre)))
	assert.Equal(t, "_S1mR8_2bx_2bxPp1pi_ii", mustName(t, g, ast.MakeRef(post)))
}

// Every variant differs from the base declaration in exactly one respect.
func TestMangleSignatureInjective(t *testing.T) {
	s := newShapes()
	g := s.g
	param := func(dir ast.Direction, typ ast.TypeID) ast.Param {
		return ast.Param{Name: "x", Dir: dir, Type: typ}
	}
	withMods := func(id ast.DeclID, mods ...ast.Modifier) ast.DeclID {
		g.AddModifiers(id, mods...)
		return id
	}

	variants := map[string]ast.DeclID{
		"base":        g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)),
		"param type":  g.AddFunc(s.vec, "op", s.i, param(ast.In, s.f)),
		"direction":   g.AddFunc(s.vec, "op", s.i, param(ast.InOut, s.i)),
		"result":      g.AddFunc(s.vec, "op", s.f, param(ast.In, s.i)),
		"mutating":    withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.Mutating),
		"ref this":    withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.RefThis),
		"fwd diff":    withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.ForwardDifferentiable),
		"bwd diff":    withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.BackwardDifferentiable),
		"no diff":     withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.NoDiffThis),
		"prefix":      withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.Prefix),
		"postfix":     withMods(g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i)), ast.Postfix),
		"param count": g.AddFunc(s.vec, "op", s.i, param(ast.In, s.i), param(ast.In, s.i)),
	}

	seen := make(map[string]string)
	for label, id := range variants {
		name := mustName(t, g, ast.MakeRef(id))
		if other, dup := seen[name]; dup {
			t.Errorf("%q and %q both mangle to %q", label, other, name)
		}
		seen[name] = label
	}

	accessors := []string{
		mustName(t, g, ast.MakeRef(s.get)),
		mustName(t, g, ast.MakeRef(s.set)),
		mustName(t, g, ast.MakeRef(s.ref)),
	}
	assert.Len(t, map[string]bool{accessors[0]: true, accessors[1]: true, accessors[2]: true}, 3)
}

func TestMangleDerivativeRequirements(t *testing.T) {
	s := newShapes()
	g := s.g
	f := g.AddFunc(s.m, "f", s.void)
	fwd := g.AddDerivativeRequirement(s.m, ast.ForwardDerivativeRequirementDecl, "df", ast.MakeRef(f))
	bwd := g.AddDerivativeRequirement(s.m, ast.BackwardDerivativeRequirementDecl, "db", ast.MakeRef(f))

	assert.Equal(t, "_SFwdReq_1m1fp0pV", mustName(t, g, ast.MakeRef(fwd)))
	assert.Equal(t, "_SBwdReq_1m1fp0pV", mustName(t, g, ast.MakeRef(bwd)))
}

func TestMangleExtension(t *testing.T) {
	s := newShapes()
	g := s.g
	ext := g.AddExtension(s.m, g.DeclType(ast.MakeRef(s.vec)))
	g.AddInheritance(ext, g.DeclType(ast.MakeRef(s.ishape)))
	area := g.AddFunc(ext, "area", s.f)

	assert.Equal(t, "_S1mX1m3VecI1m6IShape04areap0pf", mustName(t, g, ast.MakeRef(area)))
}

func TestMangleMissingDeclaration(t *testing.T) {
	s := newShapes()
	name, err := Name(s.g, ast.DeclRef{})
	assert.NoError(t, err)
	assert.Empty(t, name)
}

func TestMangleConcurrentReaders(t *testing.T) {
	s := newShapes()
	want := mustName(t, s.g, ast.MakeRef(s.set))

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Name(s.g, ast.MakeRef(s.set))
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestMangleInternalErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *shapes) func() (string, error)
	}{
		{
			name: "unknown type kind",
			build: func(s *shapes) func() (string, error) {
				bad := s.g.AddType(ast.Type{Kind: ast.TypeKind(99)})
				return func() (string, error) { return TypeName(s.g, bad) }
			},
		},
		{
			name: "unknown base type",
			build: func(s *shapes) func() (string, error) {
				bad := s.g.Basic(types.BaseType(42))
				return func() (string, error) { return TypeName(s.g, bad) }
			},
		},
		{
			name: "unknown value kind",
			build: func(s *shapes) func() (string, error) {
				bad := s.g.AddVal(ast.Val{Kind: ast.ValKind(99)})
				arr := s.g.Array(s.f, bad)
				return func() (string, error) { return TypeName(s.g, arr) }
			},
		},
		{
			name: "unknown parameter direction",
			build: func(s *shapes) func() (string, error) {
				fn := s.g.AddFunc(s.m, "f", s.void, ast.Param{Name: "x", Dir: ast.Direction(9), Type: s.i})
				return func() (string, error) { return Name(s.g, ast.MakeRef(fn)) }
			},
		},
		{
			name: "unknown declaration kind",
			build: func(s *shapes) func() (string, error) {
				d := s.g.AddDecl(ast.Decl{Kind: ast.DeclKind(77), Name: "x", Parent: s.m})
				return func() (string, error) { return Name(s.g, ast.MakeRef(d)) }
			},
		},
		{
			name: "callable without result",
			build: func(s *shapes) func() (string, error) {
				fn := s.g.AddDecl(ast.Decl{Kind: ast.FuncDecl, Name: "f", Parent: s.m})
				return func() (string, error) { return Name(s.g, ast.MakeRef(fn)) }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := tt.build(newShapes())
			name, err := call()
			require.Error(t, err)
			var ie *InternalError
			assert.ErrorAs(t, err, &ie)
			assert.Empty(t, name, "no partial symbol may escape")
		})
	}
}

func TestMangleForeignPanicPropagates(t *testing.T) {
	s := newShapes()
	assert.Panics(t, func() {
		_, _ = TypeName(s.g, ast.TypeID(12345))
	})
}
