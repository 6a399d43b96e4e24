package mangle

import (
	"fmt"
	"hash/fnv"
)

// Hashed returns the fixed-width alias of an already mangled name: "_Sh"
// followed by 16 hex digits of its 64-bit FNV-1a hash. Distinct names may
// collide; the same name always yields the same alias.
func Hashed(mangled string) string {
	h := fnv.New64a()
	h.Write([]byte(mangled))
	return fmt.Sprintf("%s%016x", HASH_PREFIX, h.Sum64())
}

// Shorten returns mangled unchanged unless maxLen is positive and mangled is
// longer, in which case it returns the hashed alias.
func Shorten(mangled string, maxLen int) string {
	if maxLen > 0 && len(mangled) > maxLen {
		return Hashed(mangled)
	}
	return mangled
}
