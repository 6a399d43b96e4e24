package ast

import (
	"slices"
	"strings"
)

// Constraint groups the bounds a generic places on one constrained type.
type Constraint struct {
	Param  DeclID // the constrained parameter, NoDecl for other subtypes
	Sub    TypeID // the constrained type as written in the first constraint
	Bounds []TypeID
}

// CanonicalConstraints returns the constraints of generic in a form that does
// not depend on the order they were written in: one group per type or pack
// parameter in declaration order (possibly without bounds), then groups for
// any other constrained types. Bounds are flattened through conjunctions,
// deduplicated and sorted. Types are identified by their structural key and
// ordered by their printed form, ties broken by the key.
func (g *Graph) CanonicalConstraints(generic DeclID) []Constraint {
	gen := g.Decl(generic)
	var groups []Constraint
	byParam := make(map[DeclID]int)
	for _, m := range gen.Members {
		switch g.Decl(m).Kind {
		case GenericTypeParamDecl, GenericTypePackParamDecl:
			byParam[m] = len(groups)
			groups = append(groups, Constraint{Param: m})
		}
	}

	var others []Constraint
	byKey := make(map[string]int)
	for _, m := range gen.Members {
		d := g.Decl(m)
		if d.Kind != GenericTypeConstraintDecl {
			continue
		}
		bounds := g.flattenAnd(d.Type, nil)
		if p, ok := g.constrainedParam(d.Sub, generic); ok {
			c := &groups[byParam[p]]
			if !c.Sub.IsValid() {
				c.Sub = d.Sub
			}
			c.Bounds = append(c.Bounds, bounds...)
			continue
		}
		key := g.TypeKey(d.Sub)
		i, ok := byKey[key]
		if !ok {
			i = len(others)
			byKey[key] = i
			others = append(others, Constraint{Sub: d.Sub})
		}
		others[i].Bounds = append(others[i].Bounds, bounds...)
	}
	slices.SortFunc(others, func(a, b Constraint) int {
		return g.compareTypes(a.Sub, b.Sub)
	})

	groups = append(groups, others...)
	for i := range groups {
		groups[i].Bounds = g.canonicalBounds(groups[i].Bounds)
	}
	return groups
}

// constrainedParam reports the parameter of generic that sub names directly.
func (g *Graph) constrainedParam(sub TypeID, generic DeclID) (DeclID, bool) {
	t := g.Type(sub)
	if t.Kind != DeclRefType {
		return NoDecl, false
	}
	d := g.Decl(t.Ref.Decl)
	if (d.Kind == GenericTypeParamDecl || d.Kind == GenericTypePackParamDecl) && d.Parent == generic {
		return t.Ref.Decl, true
	}
	return NoDecl, false
}

func (g *Graph) flattenAnd(t TypeID, out []TypeID) []TypeID {
	if ty := g.Type(t); ty.Kind == AndType {
		out = g.flattenAnd(ty.Left, out)
		return g.flattenAnd(ty.Right, out)
	}
	return append(out, t)
}

// compareTypes orders types by printed form. Distinct types that print alike,
// such as members reached through different outer arguments, fall back to
// their structural keys.
func (g *Graph) compareTypes(a, b TypeID) int {
	if c := strings.Compare(g.TypeString(a), g.TypeString(b)); c != 0 {
		return c
	}
	return strings.Compare(g.TypeKey(a), g.TypeKey(b))
}

func (g *Graph) canonicalBounds(bounds []TypeID) []TypeID {
	if len(bounds) < 2 {
		return bounds
	}
	seen := make(map[string]bool, len(bounds))
	out := make([]TypeID, 0, len(bounds))
	for _, b := range bounds {
		k := g.TypeKey(b)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	slices.SortFunc(out, g.compareTypes)
	return out
}
