package ast

import "fmt"

type ValKind int

const (
	InvalidVal ValKind = iota
	TypeVal
	ConstantIntVal
	GenericParamIntVal
	WitnessVal
	FuncCallIntVal
	WitnessLookupIntVal
	PolynomialIntVal
	TypeCastIntVal
	ModifierVal
)

var valKindNames = [...]string{
	InvalidVal:          "invalid",
	TypeVal:             "type",
	ConstantIntVal:      "const",
	GenericParamIntVal:  "param",
	WitnessVal:          "witness",
	FuncCallIntVal:      "call",
	WitnessLookupIntVal: "lookup",
	PolynomialIntVal:    "poly",
	TypeCastIntVal:      "cast",
	ModifierVal:         "modifier",
}

func (k ValKind) String() string {
	if k >= 0 && int(k) < len(valKindNames) {
		return valKindNames[k]
	}
	return fmt.Sprintf("ValKind(%d)", int(k))
}

// PolyFactor is Param raised to Power inside a polynomial term.
type PolyFactor struct {
	Param ValID
	Power int64
}

// PolyTerm is Coeff times the product of its factors.
type PolyTerm struct {
	Coeff   int64
	Factors []PolyFactor
}

// Val is a compile-time value. Field use by kind:
//
//	Type               type, cast (target type)
//	Int                const; poly (constant term)
//	Ref                param (the value parameter), call (the callee)
//	Args               call
//	Base               lookup (the witness), cast (the source value)
//	Key                lookup (the looked-up member)
//	Terms              poly
//	Class              modifier
type Val struct {
	Kind  ValKind
	Type  TypeID
	Int   int64
	Ref   DeclRef
	Args  []ValID
	Base  ValID
	Key   DeclID
	Terms []PolyTerm
	Class string
}
