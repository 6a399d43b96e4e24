// Package mangle turns type-checked declarations, types and conformance
// witnesses into deterministic linker symbols.
//
// Every symbol starts with a prefix naming what it identifies:
//
//	_S   ordinary declaration
//	_ST  bare type
//	_SW  conformance witness
//	_Sh  hashed alias of another symbol
//
// The encoders are plain recursive functions over the node kinds of package
// ast. Each public entry point owns a private output buffer, so calls on
// different declarations may run concurrently over the same read-only graph.
package mangle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thiremani/kmangle/ast"
)

const (
	PREFIX         = "_S"
	TYPE_PREFIX    = "_ST"
	WITNESS_PREFIX = "_SW"
	HASH_PREFIX    = "_Sh"
)

// Program is the read-only view of the front end's graph the mangler needs.
// *ast.Graph implements it.
type Program interface {
	Decl(id ast.DeclID) *ast.Decl
	Type(id ast.TypeID) *ast.Type
	Val(id ast.ValID) *ast.Val
	// Parent returns the lexical parent, looking through file groupings.
	Parent(id ast.DeclID) ast.DeclID
	GenericArgs(s *ast.Substitution, generic ast.DeclID) []ast.ValID
	CanonicalConstraints(generic ast.DeclID) []ast.Constraint
}

// InternalError reports a node the mangler does not know how to encode. It
// means the front end handed over a graph that breaks the mangler's contract;
// it is never a user error.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "mangle: internal error: " + e.Msg
}

type mangler struct {
	p  Program
	sb strings.Builder
}

func (m *mangler) fault(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}

func (m *mangler) raw(s string) {
	m.sb.WriteString(s)
}

func (m *mangler) count(n int) {
	m.sb.WriteString(strconv.Itoa(n))
}

// uint writes v as an unsigned decimal; negative values wrap.
func (m *mangler) uint(v int64) {
	m.sb.WriteString(strconv.FormatUint(uint64(v), 10))
}

func (m *mangler) name(s string) {
	writeIdentifier(&m.sb, s)
}

// run executes f on a fresh mangler. An InternalError raised anywhere inside
// discards the partial output.
func run(p Program, f func(m *mangler)) (s string, err error) {
	m := &mangler{p: p}
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			s, err = "", ie
		}
	}()
	f(m)
	return m.sb.String(), nil
}

// Name returns the symbol for ref. A reference without a declaration yields
// "" and no error; callers treat that as unmangleable.
func Name(p Program, ref ast.DeclRef) (string, error) {
	if !ref.Decl.IsValid() {
		return "", nil
	}
	return run(p, func(m *mangler) { m.mangleName(ref) })
}

func (m *mangler) mangleName(ref ast.DeclRef) {
	d := m.p.Decl(ref.Decl)
	if d.HasModifier(ast.ExternCpp) {
		m.raw(d.Name)
		return
	}

	m.raw(PREFIX)
	switch d.Kind {
	case ast.FuncDecl:
	case ast.StructDecl, ast.InterfaceDecl, ast.EnumDecl, ast.TypeAliasDecl:
		m.raw("T")
	case ast.VarDecl, ast.ParamDecl:
		m.raw("V")
	case ast.GenericDecl:
		// Mangles the inner declaration unspecialized; a generic has no name
		// of its own.
		m.raw("G")
		m.qualifiedName(ast.MakeRef(d.Inner), true, nil)
		return
	case ast.ForwardDerivativeRequirementDecl:
		m.raw("FwdReq_")
		m.qualifiedName(d.Original, true, nil)
		return
	case ast.BackwardDerivativeRequirementDecl:
		m.raw("BwdReq_")
		m.qualifiedName(d.Original, true, nil)
		return
	case ast.ModuleDecl, ast.FileDecl, ast.ConstructorDecl, ast.GetterDecl, ast.SetterDecl,
		ast.RefAccessorDecl, ast.PropertyDecl, ast.ExtensionDecl, ast.InheritanceDecl,
		ast.GenericTypeConstraintDecl, ast.GenericTypeParamDecl, ast.GenericTypePackParamDecl,
		ast.GenericValueParamDecl:
	default:
		m.fault("unimplemented case in declaration mangling: %v", d.Kind)
	}
	m.qualifiedName(ref, true, nil)
}

// TypeName returns the symbol for a bare type, used as a reflection key.
func TypeName(p Program, t ast.TypeID) (string, error) {
	return run(p, func(m *mangler) {
		m.raw(TYPE_PREFIX)
		m.typ(t, nil)
	})
}

// WitnessName returns the symbol for the witness that sub conforms to sup,
// both given as declarations.
func WitnessName(p Program, sub, sup ast.DeclRef) (string, error) {
	return run(p, func(m *mangler) {
		m.raw(WITNESS_PREFIX)
		m.qualifiedName(sub, true, nil)
		m.qualifiedName(sup, true, nil)
	})
}

// WitnessTypeName returns the symbol for the witness that the declaration sub
// conforms to the type sup.
func WitnessTypeName(p Program, sub ast.DeclRef, sup ast.TypeID) (string, error) {
	return run(p, func(m *mangler) {
		m.raw(WITNESS_PREFIX)
		m.qualifiedName(sub, true, nil)
		m.typ(sup, nil)
	})
}

// WitnessTypesName returns the symbol for the witness that type sub conforms
// to type sup.
func WitnessTypesName(p Program, sub, sup ast.TypeID) (string, error) {
	return run(p, func(m *mangler) {
		m.raw(WITNESS_PREFIX)
		m.typ(sub, nil)
		m.typ(sup, nil)
	})
}

// WitnessOpName is WitnessTypesName with one exception: when sup is the
// builtin enum type, subOp (the name of the operation producing sub's
// representation) replaces sub. Enums sharing an underlying representation
// then share one witness table.
func WitnessOpName(p Program, sub, sup ast.TypeID, subOp string) (string, error) {
	return run(p, func(m *mangler) {
		m.raw(WITNESS_PREFIX)
		if m.p.Type(sup).Kind == ast.EnumTypeType {
			m.raw(subOp)
		} else {
			m.typ(sub, nil)
		}
		m.typ(sup, nil)
	})
}
