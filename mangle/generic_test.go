package mangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/types"
)

type identity struct {
	g      *ast.Graph
	m, gen ast.DeclID
	fn     ast.DeclID
}

// newIdentity builds `generic<T> func identity(x: T) -> T` in module m, with
// the type parameter spelled name.
func newIdentity(name string) identity {
	g := ast.NewGraph()
	m := g.NewModule("m")
	gen := g.AddGeneric(m)
	p := g.AddTypeParam(gen, name)
	tp := g.DeclType(ast.MakeRef(p))
	fn := g.AddFunc(gen, "identity", tp, ast.Param{Name: "x", Type: tp})
	return identity{g: g, m: m, gen: gen, fn: fn}
}

func TestMangleGenericFunction(t *testing.T) {
	id := newIdentity("T")
	g := id.g
	intArg := []ast.ValID{g.TypeArg(g.Basic(types.Int))}
	fltArg := []ast.ValID{g.TypeArg(g.Basic(types.Float))}

	unspecialized := mustName(t, g, ast.MakeRef(id.fn))
	asInt := mustName(t, g, ast.Specialize(id.fn, id.gen, intArg, nil))
	asFloat := mustName(t, g, ast.Specialize(id.fn, id.gen, fltArg, nil))

	assert.Equal(t, "_S1m8identityg1Tp1pi_GP0GP0", unspecialized)
	assert.Equal(t, "_S1m8identityG1ip1pi_ii", asInt)
	assert.Equal(t, "_S1m8identityG1fp1pi_ff", asFloat)
	assert.NotEqual(t, asInt, unspecialized)
}

func TestMangleGenericRenamingInvariance(t *testing.T) {
	a := newIdentity("T")
	b := newIdentity("Element")
	assert.Equal(t, mustName(t, a.g, ast.MakeRef(a.fn)), mustName(t, b.g, ast.MakeRef(b.fn)))

	// A value parameter that only appears in the parameter list is encoded
	// by its type.
	build := func(name string) string {
		g := ast.NewGraph()
		m := g.NewModule("m")
		gen := g.AddGeneric(m)
		g.AddValueParam(gen, name, g.Basic(types.Int))
		fn := g.AddFunc(gen, "f", g.Basic(types.Void))
		return mustName(t, g, ast.MakeRef(fn))
	}
	assert.Equal(t, "_S1m1fg1vip0pV", build("N"))
	assert.Equal(t, build("N"), build("Count"))
}

// Value parameters referenced from types are still spelled by name.
func TestMangleValueParamNameLeaks(t *testing.T) {
	build := func(name string) string {
		g := ast.NewGraph()
		m := g.NewModule("m")
		gen := g.AddGeneric(m)
		n := g.AddValueParam(gen, name, g.Basic(types.Int))
		arr := g.Array(g.Basic(types.Float), g.ParamRef(ast.MakeRef(n)))
		fn := g.AddFunc(gen, "f", g.Basic(types.Void), ast.Param{Name: "xs", Type: arr})
		return mustName(t, g, ast.MakeRef(fn))
	}
	assert.Equal(t, "_S1m1fg1vip1pi_aK1NfV", build("N"))
	assert.NotEqual(t, build("N"), build("M"))
}

func TestMangleGenericWithValueParamAndConstraint(t *testing.T) {
	g := ast.NewGraph()
	m := g.NewModule("m")
	ishape := g.AddAggregate(m, ast.InterfaceDecl, "IShape")
	vec := g.AddAggregate(m, ast.StructDecl, "Vec")

	gen := g.AddGeneric(m)
	tp := g.AddTypeParam(gen, "T")
	n := g.AddValueParam(gen, "N", g.Basic(types.Int))
	tT := g.DeclType(ast.MakeRef(tp))
	g.AddConstraint(gen, tT, g.DeclType(ast.MakeRef(ishape)))
	xs := g.Array(tT, g.ParamRef(ast.MakeRef(n)))
	pick := g.AddFunc(gen, "pick", tT, ast.Param{Name: "xs", Type: xs})

	args := []ast.ValID{g.TypeArg(g.DeclType(ast.MakeRef(vec))), g.Int(4), g.Witness()}

	assert.Equal(t, "_S1m4pickg3TviCGP01m6IShapep1pi_aK1NGP0GP0", mustName(t, g, ast.MakeRef(pick)))
	assert.Equal(t, "_S1m4pickG31m3Veck4p1pi_a41m3Vec1m3Vec", mustName(t, g, ast.Specialize(pick, gen, args, nil)))
}

func TestMangleConstraintOrderIndependence(t *testing.T) {
	build := func(reversed bool) string {
		g := ast.NewGraph()
		m := g.NewModule("m")
		ia := g.DeclType(ast.MakeRef(g.AddAggregate(m, ast.InterfaceDecl, "IA")))
		ib := g.DeclType(ast.MakeRef(g.AddAggregate(m, ast.InterfaceDecl, "IB")))
		gen := g.AddGeneric(m)
		tT := g.DeclType(ast.MakeRef(g.AddTypeParam(gen, "T")))
		if reversed {
			g.AddConstraint(gen, tT, ib)
			g.AddConstraint(gen, tT, ia)
		} else {
			g.AddConstraint(gen, tT, ia)
			g.AddConstraint(gen, tT, ib)
		}
		fn := g.AddFunc(gen, "f", g.Basic(types.Void), ast.Param{Name: "x", Type: tT})
		return mustName(t, g, ast.MakeRef(fn))
	}
	assert.Equal(t, "_S1m1fg3TCGP01m2IA_1m2IBp1pi_GP0V", build(false))
	assert.Equal(t, build(false), build(true))
}

// TestMangleConstraintsThroughOuterArgs covers bounds that differ only in the
// arguments of an enclosing generic:
//
//	generic<U> struct Outer { interface IBar }
//	generic<T> where T: Outer<int>.IBar & Outer<float>.IBar func f(x: T)
func TestMangleConstraintsThroughOuterArgs(t *testing.T) {
	build := func(bounds ...types.BaseType) string {
		g := ast.NewGraph()
		m := g.NewModule("m")
		outerGen := g.AddGeneric(m)
		g.AddTypeParam(outerGen, "U")
		outer := g.AddAggregate(outerGen, ast.StructDecl, "Outer")
		ibar := g.AddAggregate(outer, ast.InterfaceDecl, "IBar")
		barOf := func(bt types.BaseType) ast.TypeID {
			return g.DeclType(ast.Specialize(ibar, outerGen, []ast.ValID{g.TypeArg(g.Basic(bt))}, nil))
		}

		gen := g.AddGeneric(m)
		tT := g.DeclType(ast.MakeRef(g.AddTypeParam(gen, "T")))
		sup := barOf(bounds[0])
		for _, b := range bounds[1:] {
			sup = g.And(sup, barOf(b))
		}
		g.AddConstraint(gen, tT, sup)
		fn := g.AddFunc(gen, "f", g.Basic(types.Void), ast.Param{Name: "x", Type: tT})
		return mustName(t, g, ast.MakeRef(fn))
	}

	intFloat := build(types.Int, types.Float)
	floatInt := build(types.Float, types.Int)
	onlyInt := build(types.Int)
	onlyFloat := build(types.Float)

	assert.Equal(t, intFloat, floatInt)
	assert.Contains(t, intFloat, "1m5OuterG1i4IBar")
	assert.Contains(t, intFloat, "1m5OuterG1f4IBar")
	assert.NotEqual(t, intFloat, onlyInt)
	assert.NotEqual(t, intFloat, onlyFloat)
	assert.NotEqual(t, onlyInt, onlyFloat)
	assert.Equal(t, onlyInt, build(types.Int, types.Int), "repeated bounds collapse")
}

type box struct {
	g        *ast.Graph
	m, gen   ast.DeclID
	tp, box  ast.DeclID
	v, get   ast.DeclID
	clone    ast.DeclID
	intSubst *ast.Substitution
}

// newBox builds
//
//	generic<T> struct Box {
//	  var v: T
//	  func get() -> T
//	  func clone() -> Box<T>
//	}
func newBox() box {
	g := ast.NewGraph()
	b := box{g: g}
	b.m = g.NewModule("m")
	b.gen = g.AddGeneric(b.m)
	b.tp = g.AddTypeParam(b.gen, "T")
	tT := g.DeclType(ast.MakeRef(b.tp))
	b.box = g.AddAggregate(b.gen, ast.StructDecl, "Box")
	b.v = g.AddVar(b.box, "v", tT)
	b.get = g.AddFunc(b.box, "get", tT)
	self := g.DeclType(ast.Specialize(b.box, b.gen, []ast.ValID{g.TypeArg(tT)}, nil))
	b.clone = g.AddFunc(b.box, "clone", self)
	b.intSubst = &ast.Substitution{Generic: b.gen, Args: []ast.ValID{g.TypeArg(g.Basic(types.Int))}}
	return b
}

func TestMangleGenericAggregate(t *testing.T) {
	b := newBox()
	g := b.g

	tests := []struct {
		name     string
		ref      ast.DeclRef
		expected string
	}{
		{"generic itself", ast.MakeRef(b.gen), "_SG1m3Boxg1T"},
		{"field", ast.MakeRef(b.v), "_SV1m3Boxg1T1v"},
		{"method", ast.MakeRef(b.get), "_S1m3Boxg1T3getp0pGP0"},
		{"self reference", ast.MakeRef(b.clone), "_S1m3Boxg1T5clonep0p1m3BoxG1GP0"},
		{"specialized field", ast.DeclRef{Decl: b.v, Subst: b.intSubst}, "_SV1m3BoxG1i1v"},
		{"specialized method", ast.DeclRef{Decl: b.get, Subst: b.intSubst}, "_S1m3BoxG1i3getp0pi"},
		{"outer argument resolved", ast.DeclRef{Decl: b.clone, Subst: b.intSubst}, "_S1m3BoxG1i5clonep0p1m3BoxG1i"},
		{"type parameter", ast.MakeRef(b.tp), "_SGP0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustName(t, g, tt.ref))
		})
	}

	boxOfInt := g.DeclType(ast.DeclRef{Decl: b.box, Subst: b.intSubst})
	assert.Equal(t, "_ST1m3BoxG1i", mustTypeName(t, g, boxOfInt))
}

func TestMangleNestedGeneric(t *testing.T) {
	b := newBox()
	g := b.g
	inner := g.AddGeneric(b.box)
	u := g.AddTypeParam(inner, "U")
	tU := g.DeclType(ast.MakeRef(u))
	tT := g.DeclType(ast.MakeRef(b.tp))
	mp := g.AddFunc(inner, "map", tU, ast.Param{Name: "x", Type: tT})

	ref := ast.Specialize(mp, inner, []ast.ValID{g.TypeArg(g.Basic(types.Float))}, b.intSubst)
	assert.Equal(t, "_S1m3BoxG1i3mapG1fp1pi_if", mustName(t, g, ref))
	assert.Equal(t, "_S1m3Boxg1T3mapg1Tp1pi_GP0GP0", mustName(t, g, ast.MakeRef(mp)))
}

func TestMangleGenericExtension(t *testing.T) {
	b := newBox()
	g := b.g
	gen := g.AddGeneric(b.m)
	tp := g.AddTypeParam(gen, "T")
	tT := g.DeclType(ast.MakeRef(tp))
	target := g.DeclType(ast.Specialize(b.box, b.gen, []ast.ValID{g.TypeArg(tT)}, nil))
	ext := g.AddExtension(gen, target)
	peek := g.AddFunc(ext, "peek", tT)

	require.Equal(t, ext, g.Decl(gen).Inner)
	assert.Equal(t, "_S1mX1m3BoxG1GP0g1T4peekp0pGP0", mustName(t, g, ast.MakeRef(peek)))
}

func TestMangleSpecializationsDistinct(t *testing.T) {
	b := newBox()
	g := b.g
	seen := make(map[string]types.BaseType)
	for _, bt := range []types.BaseType{types.Int, types.UInt, types.Float, types.Double, types.Bool, types.Int64} {
		s := &ast.Substitution{Generic: b.gen, Args: []ast.ValID{g.TypeArg(g.Basic(bt))}}
		name := mustName(t, g, ast.DeclRef{Decl: b.get, Subst: s})
		prev, dup := seen[name]
		assert.False(t, dup, "%v and %v share %q", prev, bt, name)
		seen[name] = bt
	}
}
