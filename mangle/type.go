package mangle

import (
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/types"
)

var baseTypeCodes = map[types.BaseType]string{
	types.Void:    "V",
	types.Bool:    "b",
	types.Int8:    "c",
	types.Int16:   "s",
	types.Int:     "i",
	types.Int64:   "I",
	types.UInt8:   "C",
	types.UInt16:  "S",
	types.UInt:    "u",
	types.UInt64:  "U",
	types.Half:    "h",
	types.Float:   "f",
	types.Double:  "d",
	types.UIntPtr: "up",
	types.IntPtr:  "ip",
}

func (m *mangler) baseType(bt types.BaseType) {
	code, ok := baseTypeCodes[bt]
	if !ok {
		m.fault("unimplemented case in base type mangling: %v", bt)
	}
	m.raw(code)
}

func (m *mangler) typ(id ast.TypeID, env *ast.Substitution) {
	if !id.IsValid() {
		m.fault("missing type")
	}
	t := m.p.Type(id)
	switch t.Kind {
	case ast.BasicType:
		m.baseType(t.Base)
	case ast.VectorType:
		m.raw("v")
		m.simpleInt(t.Count, env)
		m.typ(t.Elem, env)
	case ast.MatrixType:
		m.raw("m")
		m.simpleInt(t.Rows, env)
		m.raw("x")
		m.simpleInt(t.Cols, env)
		m.typ(t.Elem, env)
	case ast.NamedType:
		alias := m.p.Decl(t.Ref.Decl)
		m.typ(alias.Type, refEnv(t.Ref, env))
	case ast.DeclRefType:
		if arg, ok := m.bound(env, t.Ref.Decl); ok {
			m.val(arg, nil)
			return
		}
		m.qualifiedName(t.Ref, true, env)
	case ast.EnumTypeType:
		m.qualifiedName(t.Ref, true, env)
	case ast.ArrayType:
		m.raw("a")
		m.simpleInt(t.Count, env)
		m.typ(t.Elem, env)
	case ast.ThisType:
		m.raw("t")
		m.qualifiedName(t.Ref, true, env)
	case ast.ErrorType:
		m.raw("E")
	case ast.BottomType:
		m.raw("B")
	case ast.FuncType:
		m.raw("F")
		m.count(len(t.Elems))
		for _, p := range t.Elems {
			m.typ(p, env)
		}
		m.typ(t.Result, env)
		m.typ(t.Error, env)
	case ast.TupleType:
		m.raw("Tu")
		m.count(len(t.Elems))
		for _, e := range t.Elems {
			m.typ(e, env)
		}
	case ast.ModifiedType:
		m.raw("Tm")
		m.typ(t.Elem, env)
		m.count(len(t.Modifiers))
		for _, mod := range t.Modifiers {
			m.val(mod, env)
		}
	case ast.AndType:
		m.raw("Ta")
		m.typ(t.Left, env)
		m.typ(t.Right, env)
	case ast.ExpandType:
		m.raw("Tx")
		m.typ(t.Elem, env)
	case ast.EachType:
		m.raw("Te")
		m.typ(t.Elem, env)
	case ast.TypePackType:
		m.raw("Tp")
		m.count(len(t.Elems))
		for _, e := range t.Elems {
			m.typ(e, env)
		}
	default:
		m.fault("unimplemented case in type mangling: %v", t.Kind)
	}
}

// refEnv picks the substitution that applies inside ref: its own when it has
// one, else the one of the enclosing context.
func refEnv(ref ast.DeclRef, env *ast.Substitution) *ast.Substitution {
	if ref.Subst != nil {
		return ref.Subst
	}
	return env
}
