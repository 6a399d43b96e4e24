package ast

// Substitution binds the arguments of one generic. Outer links to the
// bindings of enclosing generics; a nil *Substitution binds nothing.
type Substitution struct {
	Generic DeclID
	Args    []ValID
	Outer   *Substitution
}

// DeclRef is a declaration viewed through the substitutions active where it
// is referenced. It is a small value; copy it freely.
type DeclRef struct {
	Decl  DeclID
	Subst *Substitution
}

// MakeRef refers to decl without any substitution.
func MakeRef(decl DeclID) DeclRef {
	return DeclRef{Decl: decl}
}

// Specialize returns a reference to decl with generic bound to args, layered
// over outer.
func Specialize(decl, generic DeclID, args []ValID, outer *Substitution) DeclRef {
	return DeclRef{Decl: decl, Subst: &Substitution{Generic: generic, Args: args, Outer: outer}}
}

// GenericArgs returns the arguments s binds for generic, or nil.
func (g *Graph) GenericArgs(s *Substitution, generic DeclID) []ValID {
	for ; s != nil; s = s.Outer {
		if s.Generic == generic {
			return s.Args
		}
	}
	return nil
}

// DefaultArgs returns the arguments that bind every parameter of generic to
// itself, followed by one witness per constraint, in the order a
// specialization must supply them.
func (g *Graph) DefaultArgs(generic DeclID) []ValID {
	var args, witnesses []ValID
	for _, m := range g.Decl(generic).Members {
		switch g.Decl(m).Kind {
		case GenericTypeParamDecl, GenericTypePackParamDecl:
			args = append(args, g.TypeArg(g.DeclType(MakeRef(m))))
		case GenericValueParamDecl:
			args = append(args, g.ParamRef(MakeRef(m)))
		case GenericTypeConstraintDecl:
			witnesses = append(witnesses, g.Witness())
		}
	}
	return append(args, witnesses...)
}
