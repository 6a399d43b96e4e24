package ast

import (
	"fmt"

	"github.com/thiremani/kmangle/types"
)

type TypeKind int

const (
	InvalidType TypeKind = iota
	BasicType
	VectorType
	MatrixType
	NamedType
	DeclRefType
	ArrayType
	ThisType
	ErrorType
	BottomType
	FuncType
	TupleType
	ModifiedType
	AndType
	ExpandType
	EachType
	TypePackType
	EnumTypeType
)

var typeKindNames = [...]string{
	InvalidType:  "invalid",
	BasicType:    "basic",
	VectorType:   "vector",
	MatrixType:   "matrix",
	NamedType:    "named",
	DeclRefType:  "declref",
	ArrayType:    "array",
	ThisType:     "this",
	ErrorType:    "error",
	BottomType:   "bottom",
	FuncType:     "func",
	TupleType:    "tuple",
	ModifiedType: "modified",
	AndType:      "and",
	ExpandType:   "expand",
	EachType:     "each",
	TypePackType: "pack",
	EnumTypeType: "enum-type",
}

func (k TypeKind) String() string {
	if k >= 0 && int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// Type is a node of a type expression. Field use by kind:
//
//	Base                   basic
//	Elem, Count            vector, array (Elem also: each, expand pattern)
//	Elem, Rows, Cols       matrix
//	Ref                    named, declref, this, enum-type
//	Elems                  func params, tuple members, pack elements
//	Result, Error          func
//	Elem, Modifiers        modified
//	Left, Right            and
type Type struct {
	Kind      TypeKind
	Base      types.BaseType
	Elem      TypeID
	Count     ValID
	Rows      ValID
	Cols      ValID
	Ref       DeclRef
	Elems     []TypeID
	Result    TypeID
	Error     TypeID
	Modifiers []ValID
	Left      TypeID
	Right     TypeID
}
