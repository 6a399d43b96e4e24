package parser

import (
	"maps"
)

type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	MemberScope           // body of a struct, interface, enum or extension
	GenericScope          // parameters of a generic
)

type Scope[T any] struct {
	Elems     map[string]T
	ScopeKind ScopeKind
}

func NewScope[T any](sk ScopeKind) Scope[T] {
	return Scope[T]{
		Elems:     make(map[string]T),
		ScopeKind: sk,
	}
}

func PushScope[T any](scopes *[]Scope[T], sk ScopeKind) {
	*scopes = append(*scopes, NewScope[T](sk))
}

func PopScope[T any](scopes *[]Scope[T]) {
	if len(*scopes) == 1 {
		panic("cannot pop module scope")
	}
	*scopes = (*scopes)[:len(*scopes)-1]
}

// Put does not need a pointer, as it modifies the map within a scope, not the slice itself.
func Put[T any](scopes []Scope[T], name string, elem T) {
	scopes[len(scopes)-1].Elems[name] = elem
}

// PutBulk is also fine without a pointer.
func PutBulk[T any](scopes []Scope[T], elems map[string]T) {
	maps.Copy(scopes[len(scopes)-1].Elems, elems)
}

// Get searches from the innermost scope outward. Inner names shadow outer
// ones entirely, overloads included.
func Get[T any](scopes []Scope[T], name string) (T, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		if e, ok := scopes[i].Elems[name]; ok {
			return e, true
		}
	}

	var zero T
	return zero, false
}

// Innermost returns the kind of the innermost scope that is not a generic
// parameter list.
func Innermost[T any](scopes []Scope[T]) ScopeKind {
	for i := len(scopes) - 1; i >= 0; i-- {
		if scopes[i].ScopeKind != GenericScope {
			return scopes[i].ScopeKind
		}
	}
	return ModuleScope
}
