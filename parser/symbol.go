package parser

import (
	"fmt"

	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/mangle"
)

// Symbol is one row of a unit's symbol listing.
type Symbol struct {
	Path string // declaration path, or the request as written
	Kind string
	Name string
}

// Symbols mangles every nameable declaration of the unit in declaration
// order, followed by its mangle requests.
func (u *Unit) Symbols() ([]Symbol, error) {
	var out []Symbol
	var walk func(id ast.DeclID) error
	walk = func(id ast.DeclID) error {
		d := u.Graph.Decl(id)
		switch d.Kind {
		case ast.ParamDecl, ast.GenericTypeConstraintDecl, ast.FileDecl:
		default:
			if d.Kind.IsGenericParam() {
				break
			}
			name, err := mangle.Name(u.Graph, ast.MakeRef(id))
			if err != nil {
				return fmt.Errorf("%s: %w", u.Graph.DeclPath(id), err)
			}
			path := u.Graph.DeclPath(id)
			if d.Kind == ast.GenericDecl {
				path = u.Graph.DeclPath(d.Inner) + "<>"
			}
			out = append(out, Symbol{Path: path, Kind: d.Kind.String(), Name: name})
		}
		for _, m := range d.Members {
			if err := walk(m); err != nil {
				return err
			}
		}
		return nil
	}
	for _, m := range u.Graph.Decl(u.File).Members {
		if err := walk(m); err != nil {
			return nil, err
		}
	}

	for _, r := range u.Requests {
		name, err := u.Symbol(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Text, err)
		}
		out = append(out, Symbol{Path: r.Text, Kind: "mangle", Name: name})
	}
	return out, nil
}

// Symbol mangles a single request.
func (u *Unit) Symbol(r Request) (string, error) {
	g := u.Graph
	switch r.Kind {
	case ast.MangleDecl:
		return mangle.Name(g, r.Ref)
	case ast.MangleType:
		return mangle.TypeName(g, r.Type)
	}

	sub, sup := g.Type(r.Type), g.Type(r.Sup)
	switch {
	case sub.Kind == ast.DeclRefType && sup.Kind == ast.DeclRefType:
		return mangle.WitnessName(g, sub.Ref, sup.Ref)
	case sub.Kind == ast.DeclRefType:
		return mangle.WitnessTypeName(g, sub.Ref, r.Sup)
	}
	return mangle.WitnessTypesName(g, r.Type, r.Sup)
}
