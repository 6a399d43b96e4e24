package ast

import (
	"strconv"
	"strings"
)

// DeclPath returns a dotted, human-readable path naming id, e.g. "m.Vec.scale".
func (g *Graph) DeclPath(id DeclID) string {
	var parts []string
	for cur := id; cur.IsValid(); cur = g.Parent(cur) {
		if s := g.declSegment(cur); s != "" {
			parts = append(parts, s)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

func (g *Graph) declSegment(id DeclID) string {
	d := g.Decl(id)
	switch {
	case d.Kind == GenericDecl:
		return ""
	case d.Kind == ExtensionDecl:
		return "extension(" + g.TypeString(d.Type) + ")"
	case d.Kind.IsAccessor():
		return d.Kind.String()
	case d.Kind.IsTypeConstraint():
		return ":" + g.TypeString(d.Type)
	}
	return d.Name
}

// TypeKey returns a string that identifies the structure of t: two types
// share a key exactly when they are built the same way from the same
// declarations under the same substitutions at every level. Keys are not
// meant for display.
func (g *Graph) TypeKey(t TypeID) string {
	var sb strings.Builder
	g.writeType(&sb, t, true)
	return sb.String()
}

func (g *Graph) writeRef(sb *strings.Builder, ref DeclRef, key bool) {
	if !key {
		sb.WriteString(g.RefString(ref))
		return
	}
	sb.WriteString("#" + strconv.FormatUint(uint64(ref.Decl), 10))
	for s := ref.Subst; s != nil; s = s.Outer {
		sb.WriteString("[#" + strconv.FormatUint(uint64(s.Generic), 10) + ":")
		sb.WriteString(g.valsString(s.Args, key))
		sb.WriteString("]")
	}
}

// RefString prints ref with the generic arguments bound for its own generic.
func (g *Graph) RefString(ref DeclRef) string {
	s := g.DeclPath(ref.Decl)
	d := g.Decl(ref.Decl)
	if d.Kind.IsGenericParam() {
		s = d.Name
	}
	if gen := g.GenericOf(ref.Decl); gen.IsValid() {
		if args := g.GenericArgs(ref.Subst, gen); len(args) > 0 {
			s += "<" + g.valsString(args, false) + ">"
		}
	}
	return s
}

// TypeString prints t in sketch syntax. Equal structures print equally.
func (g *Graph) TypeString(t TypeID) string {
	var sb strings.Builder
	g.writeType(&sb, t, false)
	return sb.String()
}

// ValString prints v in sketch syntax.
func (g *Graph) ValString(v ValID) string {
	var sb strings.Builder
	g.writeVal(&sb, v, false)
	return sb.String()
}

func (g *Graph) typesString(ts []TypeID, key bool) string {
	var sb strings.Builder
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(", ")
		}
		g.writeType(&sb, t, key)
	}
	return sb.String()
}

func (g *Graph) valsString(vs []ValID, key bool) string {
	var sb strings.Builder
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		g.writeVal(&sb, v, key)
	}
	return sb.String()
}

func (g *Graph) writeType(sb *strings.Builder, id TypeID, key bool) {
	if !id.IsValid() {
		sb.WriteString("?")
		return
	}
	t := g.Type(id)
	switch t.Kind {
	case BasicType:
		sb.WriteString(t.Base.String())
	case VectorType:
		sb.WriteString("vector<")
		g.writeType(sb, t.Elem, key)
		sb.WriteString(", ")
		g.writeVal(sb, t.Count, key)
		sb.WriteString(">")
	case MatrixType:
		sb.WriteString("matrix<")
		g.writeType(sb, t.Elem, key)
		sb.WriteString(", ")
		g.writeVal(sb, t.Rows, key)
		sb.WriteString(", ")
		g.writeVal(sb, t.Cols, key)
		sb.WriteString(">")
	case NamedType, DeclRefType, EnumTypeType:
		g.writeRef(sb, t.Ref, key)
	case ArrayType:
		g.writeType(sb, t.Elem, key)
		sb.WriteString("[")
		g.writeVal(sb, t.Count, key)
		sb.WriteString("]")
	case ThisType:
		sb.WriteString("this<")
		g.writeRef(sb, t.Ref, key)
		sb.WriteString(">")
	case ErrorType:
		sb.WriteString("error")
	case BottomType:
		sb.WriteString("never")
	case FuncType:
		sb.WriteString("func(" + g.typesString(t.Elems, key) + ") -> ")
		g.writeType(sb, t.Result, key)
		if t.Error.IsValid() {
			sb.WriteString(" throws ")
			g.writeType(sb, t.Error, key)
		}
	case TupleType:
		sb.WriteString("(" + g.typesString(t.Elems, key) + ")")
	case ModifiedType:
		for _, m := range t.Modifiers {
			g.writeVal(sb, m, key)
			sb.WriteString(" ")
		}
		g.writeType(sb, t.Elem, key)
	case AndType:
		g.writeType(sb, t.Left, key)
		sb.WriteString(" & ")
		g.writeType(sb, t.Right, key)
	case ExpandType:
		sb.WriteString("expand ")
		g.writeType(sb, t.Elem, key)
	case EachType:
		sb.WriteString("each ")
		g.writeType(sb, t.Elem, key)
	case TypePackType:
		sb.WriteString("pack<" + g.typesString(t.Elems, key) + ">")
	default:
		sb.WriteString(t.Kind.String())
	}
}

func (g *Graph) writeVal(sb *strings.Builder, id ValID, key bool) {
	if !id.IsValid() {
		sb.WriteString("?")
		return
	}
	v := g.Val(id)
	switch v.Kind {
	case TypeVal:
		g.writeType(sb, v.Type, key)
	case ConstantIntVal:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case GenericParamIntVal:
		if key {
			g.writeRef(sb, v.Ref, key)
		} else {
			sb.WriteString(g.Decl(v.Ref.Decl).Name)
		}
	case WitnessVal:
		sb.WriteString("_")
	case FuncCallIntVal:
		if key {
			g.writeRef(sb, v.Ref, key)
		} else {
			sb.WriteString(g.Decl(v.Ref.Decl).Name)
		}
		sb.WriteString("(" + g.valsString(v.Args, key) + ")")
	case WitnessLookupIntVal:
		g.writeVal(sb, v.Base, key)
		sb.WriteString("." + g.Decl(v.Key).Name)
		if key {
			sb.WriteString("#" + strconv.FormatUint(uint64(v.Key), 10))
		}
	case PolynomialIntVal:
		g.writePoly(sb, v, key)
	case TypeCastIntVal:
		sb.WriteString("cast<")
		g.writeType(sb, v.Type, key)
		sb.WriteString(">(")
		g.writeVal(sb, v.Base, key)
		sb.WriteString(")")
	case ModifierVal:
		sb.WriteString("@" + v.Class)
	default:
		sb.WriteString(v.Kind.String())
	}
}

func (g *Graph) writePoly(sb *strings.Builder, v *Val, key bool) {
	first := true
	for _, term := range v.Terms {
		if !first {
			sb.WriteString(" + ")
		}
		first = false
		sb.WriteString(strconv.FormatInt(term.Coeff, 10))
		for _, f := range term.Factors {
			sb.WriteString("*")
			g.writeVal(sb, f.Param, key)
			if f.Power != 1 {
				sb.WriteString("^" + strconv.FormatInt(f.Power, 10))
			}
		}
	}
	if v.Int != 0 || first {
		if !first {
			sb.WriteString(" + ")
		}
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	}
}
