package mangle

import (
	"github.com/thiremani/kmangle/ast"
)

var directionCodes = map[ast.Direction]string{
	ast.Ref:      "r_",
	ast.ConstRef: "c_",
	ast.Out:      "o_",
	ast.InOut:    "io_",
	ast.In:       "i_",
}

// Qualifier tags in emission order. The order is fixed so that the position
// of a modifier in the source never matters.
var qualifierCodes = []struct {
	mod  ast.Modifier
	code string
}{
	{ast.Mutating, "m"},
	{ast.RefThis, "r"},
	{ast.ForwardDifferentiable, "f"},
	{ast.BackwardDifferentiable, "b"},
	{ast.NoDiffThis, "n"},
}

// qualifiedName encodes ref together with every enclosing declaration. env is
// the substitution of the context ref appears in; it resolves generic
// arguments written in terms of outer parameters.
func (m *mangler) qualifiedName(ref ast.DeclRef, includeModule bool, env *ast.Substitution) {
	d := m.p.Decl(ref.Decl)
	if !includeModule {
		if d.Kind == ast.ModuleDecl {
			return
		}
	} else if d.HasModifier(ast.Extern) || d.HasModifier(ast.Export) {
		// Exported symbols must not move when their module is renamed.
		includeModule = false
	}

	if d.HasModifier(ast.ExternCpp) {
		m.raw(d.Name)
		return
	}

	if d.Kind.IsGenericParam() {
		m.raw("GP")
		m.count(d.ParamIndex)
		return
	}

	parent := m.p.Parent(ref.Decl)
	parentGeneric := ast.NoDecl
	if parent.IsValid() {
		if m.p.Decl(parent).Kind == ast.GenericDecl {
			parentGeneric = parent
		}
		m.qualifiedName(ast.DeclRef{Decl: parent, Subst: ref.Subst}, includeModule, env)
	}

	if d.Kind == ast.GenericDecl {
		return
	}

	inner := refEnv(ref, env)
	ignoreName := false
	switch d.Kind {
	case ast.ExtensionDecl:
		m.raw("X")
		m.typ(d.Type, inner)
		for _, mem := range d.Members {
			if md := m.p.Decl(mem); md.Kind == ast.InheritanceDecl {
				m.raw("I")
				m.typ(md.Type, inner)
			}
		}
		// The target type already identifies an extension of a generic.
		ignoreName = parentGeneric.IsValid()
	case ast.InheritanceDecl, ast.GenericTypeConstraintDecl:
		m.raw("I")
		m.typ(d.Type, inner)
		ignoreName = parentGeneric.IsValid()
	}

	if !ignoreName {
		m.name(d.Name)
	}

	switch d.Kind {
	case ast.GetterDecl:
		m.raw("Ag")
	case ast.SetterDecl:
		m.raw("As")
	case ast.RefAccessorDecl:
		m.raw("Ar")
	}
	if d.HasModifier(ast.Postfix) {
		m.raw("P")
	}
	if d.HasModifier(ast.Prefix) {
		m.raw("p")
	}

	if parentGeneric.IsValid() && m.p.Decl(parentGeneric).Inner == ref.Decl {
		if args := m.p.GenericArgs(ref.Subst, parentGeneric); len(args) > 0 {
			m.raw("G")
			m.count(len(args))
			for _, a := range args {
				m.val(a, env)
			}
		} else {
			m.genericParams(parentGeneric, inner)
		}
	}

	if d.Kind.IsCallable() {
		m.signature(d, inner)
	}
}

// genericParams encodes the parameter list and constraints of an
// unspecialized generic.
func (m *mangler) genericParams(generic ast.DeclID, env *ast.Substitution) {
	gen := m.p.Decl(generic)
	n := 0
	for _, mem := range gen.Members {
		if k := m.p.Decl(mem).Kind; k.IsGenericParam() || k == ast.GenericTypeConstraintDecl {
			n++
		}
	}
	m.raw("g")
	m.count(n)

	for _, mem := range gen.Members {
		md := m.p.Decl(mem)
		switch md.Kind {
		case ast.GenericTypeParamDecl:
			m.raw("T")
		case ast.GenericTypePackParamDecl:
			m.raw("TP")
		case ast.GenericValueParamDecl:
			m.raw("v")
			m.typ(md.Type, env)
		}
	}

	for _, c := range m.p.CanonicalConstraints(generic) {
		if len(c.Bounds) == 0 {
			continue
		}
		m.raw("C")
		m.typ(c.Sub, env)
		for i, b := range c.Bounds {
			if i > 0 {
				m.raw("_")
			}
			m.typ(b, env)
		}
	}
}

// signature encodes parameters, result and qualifiers of a callable so
// overloads and differently qualified methods never share a symbol.
func (m *mangler) signature(d *ast.Decl, env *ast.Substitution) {
	m.raw("p")
	m.count(len(d.Params))
	m.raw("p")
	for _, pid := range d.Params {
		param := m.p.Decl(pid)
		code, ok := directionCodes[param.Direction]
		if !ok {
			m.fault("unknown parameter direction: %d", int(param.Direction))
		}
		m.raw(code)
		m.typ(param.Type, env)
	}

	if d.Kind != ast.ConstructorDecl {
		m.typ(d.Result, env)
	}

	for _, q := range qualifierCodes {
		if d.HasModifier(q.mod) {
			m.raw(q.code)
		}
	}
}
