package ast

import (
	"fmt"
	"slices"
)

type DeclKind int

const (
	InvalidDecl DeclKind = iota
	ModuleDecl
	FileDecl
	FuncDecl
	ConstructorDecl
	GetterDecl
	SetterDecl
	RefAccessorDecl
	PropertyDecl
	StructDecl
	InterfaceDecl
	EnumDecl
	TypeAliasDecl
	VarDecl
	ParamDecl
	GenericDecl
	ExtensionDecl
	InheritanceDecl
	GenericTypeConstraintDecl
	GenericTypeParamDecl
	GenericTypePackParamDecl
	GenericValueParamDecl
	ForwardDerivativeRequirementDecl
	BackwardDerivativeRequirementDecl
)

var declKindNames = [...]string{
	InvalidDecl:                       "invalid",
	ModuleDecl:                        "module",
	FileDecl:                          "file",
	FuncDecl:                          "func",
	ConstructorDecl:                   "init",
	GetterDecl:                        "get",
	SetterDecl:                        "set",
	RefAccessorDecl:                   "ref",
	PropertyDecl:                      "property",
	StructDecl:                        "struct",
	InterfaceDecl:                     "interface",
	EnumDecl:                          "enum",
	TypeAliasDecl:                     "typealias",
	VarDecl:                           "var",
	ParamDecl:                         "param",
	GenericDecl:                       "generic",
	ExtensionDecl:                     "extension",
	InheritanceDecl:                   "inheritance",
	GenericTypeConstraintDecl:         "constraint",
	GenericTypeParamDecl:              "type-param",
	GenericTypePackParamDecl:          "pack-param",
	GenericValueParamDecl:             "value-param",
	ForwardDerivativeRequirementDecl:  "fwd-req",
	BackwardDerivativeRequirementDecl: "bwd-req",
}

func (k DeclKind) String() string {
	if k >= 0 && int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return fmt.Sprintf("DeclKind(%d)", int(k))
}

// IsCallable reports whether declarations of this kind carry a parameter list
// and a result type.
func (k DeclKind) IsCallable() bool {
	switch k {
	case FuncDecl, ConstructorDecl, GetterDecl, SetterDecl, RefAccessorDecl:
		return true
	}
	return false
}

// IsAccessor reports whether k is one of the property accessor kinds.
func (k DeclKind) IsAccessor() bool {
	return k == GetterDecl || k == SetterDecl || k == RefAccessorDecl
}

// IsAggregate reports whether k declares a nominal aggregate type.
func (k DeclKind) IsAggregate() bool {
	return k == StructDecl || k == InterfaceDecl || k == EnumDecl
}

// IsGenericParam reports whether k is a parameter of a generic.
func (k DeclKind) IsGenericParam() bool {
	return k == GenericTypeParamDecl || k == GenericTypePackParamDecl || k == GenericValueParamDecl
}

// IsTypeConstraint reports whether k states a subtype relationship.
func (k DeclKind) IsTypeConstraint() bool {
	return k == InheritanceDecl || k == GenericTypeConstraintDecl
}

type Modifier int

const (
	Mutating Modifier = iota
	RefThis
	ForwardDifferentiable
	BackwardDifferentiable
	NoDiffThis
	Prefix
	Postfix
	ExternCpp
	Extern
	Export
)

var modifierNames = [...]string{
	Mutating:               "mutating",
	RefThis:                "ref",
	ForwardDifferentiable:  "fwd_diff",
	BackwardDifferentiable: "bwd_diff",
	NoDiffThis:             "no_diff_this",
	Prefix:                 "prefix",
	Postfix:                "postfix",
	ExternCpp:              "extern_cpp",
	Extern:                 "extern",
	Export:                 "export",
}

func (m Modifier) String() string {
	if m >= 0 && int(m) < len(modifierNames) {
		return modifierNames[m]
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}

// LookupModifier maps an attribute spelling to its Modifier.
func LookupModifier(name string) (Modifier, bool) {
	for m, n := range modifierNames {
		if n == name {
			return Modifier(m), true
		}
	}
	return 0, false
}

type Direction int

const (
	In Direction = iota
	Out
	InOut
	Ref
	ConstRef
)

var directionNames = [...]string{
	In:       "in",
	Out:      "out",
	InOut:    "inout",
	Ref:      "ref",
	ConstRef: "constref",
}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// LookupDirection maps a parameter direction keyword to its Direction.
func LookupDirection(name string) (Direction, bool) {
	for d, n := range directionNames {
		if n == name {
			return Direction(d), true
		}
	}
	return 0, false
}

// Decl is a node in the tree of lexically nested declarations. Which fields
// are meaningful depends on Kind:
//
//	Inner      generic: the declaration it parameterizes
//	ParamIndex generic params: position among the generic's parameters
//	Type       var, param, value-param: declared type
//	           type-alias: target; extension: extended type
//	           inheritance, constraint: supertype
//	Sub        constraint: the constrained type
//	Params     callables: parameter declarations in order
//	Result     callables: result type
//	Direction  param: passing direction
//	Original   derivative requirements: the requirement they derive
type Decl struct {
	Kind       DeclKind
	Name       string
	Parent     DeclID
	Members    []DeclID
	Modifiers  []Modifier
	Inner      DeclID
	ParamIndex int
	Type       TypeID
	Sub        TypeID
	Params     []DeclID
	Result     TypeID
	Direction  Direction
	Original   DeclRef
}

// HasModifier reports whether m is present in the declaration's modifier list.
func (d *Decl) HasModifier(m Modifier) bool {
	return slices.Contains(d.Modifiers, m)
}
