package mangle

import (
	"github.com/thiremani/kmangle/ast"
)

// bound returns the argument env binds for the generic parameter param.
func (m *mangler) bound(env *ast.Substitution, param ast.DeclID) (ast.ValID, bool) {
	if env == nil {
		return ast.NoVal, false
	}
	d := m.p.Decl(param)
	if !d.Kind.IsGenericParam() {
		return ast.NoVal, false
	}
	args := m.p.GenericArgs(env, d.Parent)
	if d.ParamIndex < 0 || d.ParamIndex >= len(args) {
		return ast.NoVal, false
	}
	return args[d.ParamIndex], true
}

// simpleInt encodes a dimension-like operand. Constants 0 through 9 are
// written as a bare digit.
func (m *mangler) simpleInt(id ast.ValID, env *ast.Substitution) {
	if !id.IsValid() {
		m.fault("missing value operand")
	}
	v := m.p.Val(id)
	if v.Kind == ast.GenericParamIntVal {
		if arg, ok := m.bound(env, v.Ref.Decl); ok {
			id, env = arg, nil
			v = m.p.Val(id)
		}
	}
	if v.Kind == ast.ConstantIntVal && v.Int >= 0 && v.Int <= 9 {
		m.uint(v.Int)
		return
	}
	m.val(id, env)
}

func (m *mangler) val(id ast.ValID, env *ast.Substitution) {
	if !id.IsValid() {
		m.fault("missing value")
	}
	v := m.p.Val(id)
	switch v.Kind {
	case ast.TypeVal:
		m.typ(v.Type, env)
	case ast.WitnessVal:
		// How a constraint was satisfied is not part of a declaration's
		// identity.
	case ast.GenericParamIntVal:
		if arg, ok := m.bound(env, v.Ref.Decl); ok {
			m.val(arg, nil)
			return
		}
		// TODO: encode value parameters by (depth, index) so renaming one
		// stops changing the symbols that mention it.
		m.raw("K")
		m.name(m.p.Decl(v.Ref.Decl).Name)
	case ast.ConstantIntVal:
		m.raw("k")
		m.uint(v.Int)
	case ast.FuncCallIntVal:
		m.raw("KC")
		m.count(len(v.Args))
		m.name(m.p.Decl(v.Ref.Decl).Name)
		for _, a := range v.Args {
			m.val(a, env)
		}
	case ast.WitnessLookupIntVal:
		m.raw("KL")
		m.val(v.Base, env)
		m.name(m.p.Decl(v.Key).Name)
	case ast.PolynomialIntVal:
		m.raw("KX")
		m.uint(v.Int)
		m.count(len(v.Terms))
		for _, term := range v.Terms {
			m.uint(term.Coeff)
			m.count(len(term.Factors))
			for _, f := range term.Factors {
				m.val(f.Param, env)
				m.uint(f.Power)
			}
		}
	case ast.TypeCastIntVal:
		m.raw("KK")
		m.typ(v.Type, env)
		m.val(v.Base, env)
	case ast.ModifierVal:
		m.name(v.Class)
	default:
		m.fault("unimplemented case in val mangling: %v", v.Kind)
	}
}
