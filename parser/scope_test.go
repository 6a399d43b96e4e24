package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopes(t *testing.T) {
	scopes := []Scope[int]{NewScope[int](ModuleScope)}
	Put(scopes, "a", 1)
	PutBulk(scopes, map[string]int{"b": 2, "c": 3})

	PushScope(&scopes, MemberScope)
	Put(scopes, "a", 10)
	PushScope(&scopes, GenericScope)
	Put(scopes, "T", 20)

	tests := []struct {
		name  string
		want  int
		found bool
	}{
		{"a", 10, true},
		{"b", 2, true},
		{"T", 20, true},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := Get(scopes, tt.name)
		assert.Equal(t, tt.found, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
	assert.Equal(t, MemberScope, Innermost(scopes))

	PopScope(&scopes)
	PopScope(&scopes)
	got, ok := Get(scopes, "a")
	require.True(t, ok)
	assert.Equal(t, 1, got)
	assert.Equal(t, ModuleScope, Innermost(scopes))

	assert.Panics(t, func() { PopScope(&scopes) })
}
