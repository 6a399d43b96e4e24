package types

import "fmt"

// BaseType identifies a scalar type.
type BaseType int

const (
	Void BaseType = iota
	Bool
	Int8
	Int16
	Int
	Int64
	UInt8
	UInt16
	UInt
	UInt64
	Half
	Float
	Double
	UIntPtr
	IntPtr
	baseTypeCount
)

var baseTypeNames = [...]string{
	Void:    "void",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int:     "int",
	Int64:   "int64",
	UInt8:   "uint8",
	UInt16:  "uint16",
	UInt:    "uint",
	UInt64:  "uint64",
	Half:    "half",
	Float:   "float",
	Double:  "double",
	UIntPtr: "uintptr",
	IntPtr:  "intptr",
}

// Built-in type constructors and sentinels the sketch language reserves
// alongside the scalar names.
var reservedTypeNames = []string{
	"vector",
	"matrix",
	"pack",
	"this",
	"error",
	"never",
	"expand",
	"each",
	"func",
	"cast",
}

var baseTypeSet = func() map[string]BaseType {
	m := make(map[string]BaseType, len(baseTypeNames))
	for bt, name := range baseTypeNames {
		m[name] = BaseType(bt)
	}
	return m
}()

var reservedTypeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(reservedTypeNames)+len(baseTypeNames))
	for _, t := range reservedTypeNames {
		m[t] = struct{}{}
	}
	for _, t := range baseTypeNames {
		m[t] = struct{}{}
	}
	return m
}()

func (bt BaseType) String() string {
	if bt >= 0 && bt < baseTypeCount {
		return baseTypeNames[bt]
	}
	return fmt.Sprintf("BaseType(%d)", int(bt))
}

// Valid reports whether bt is one of the known scalar kinds.
func (bt BaseType) Valid() bool {
	return bt >= 0 && bt < baseTypeCount
}

// LookupBaseType maps a source-level scalar name to its BaseType.
func LookupBaseType(name string) (BaseType, bool) {
	bt, ok := baseTypeSet[name]
	return bt, ok
}

// ReservedTypeNames returns a copy of source-level reserved type names.
func ReservedTypeNames() []string {
	names := append([]string(nil), baseTypeNames[:]...)
	return append(names, reservedTypeNames...)
}

// IsReservedTypeName reports whether name is reserved for built-in/compiler types.
func IsReservedTypeName(name string) bool {
	_, ok := reservedTypeSet[name]
	return ok
}
