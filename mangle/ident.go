package mangle

import (
	"strconv"
	"strings"
)

// Identifier returns the self-delimiting encoding of name.
//
// Names made only of ASCII letters, digits and '_' are written as their byte
// length followed by the bytes: "foo" -> "3foo". Anything else is escaped
// first (alphanumerics kept, '_' -> "_u", other bytes -> '_' hex 'x') and
// written as 'R', the escaped length and the escaped bytes: "+" -> "R4_2bx".
//
// The escaped form may contain consecutive underscores. Targets that reject
// those must rewrite symbols themselves.
func Identifier(name string) string {
	var sb strings.Builder
	writeIdentifier(&sb, name)
	return sb.String()
}

func writeIdentifier(sb *strings.Builder, name string) {
	if isPlainIdent(name) {
		sb.WriteString(strconv.Itoa(len(name)))
		sb.WriteString(name)
		return
	}

	var enc strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case isAlnum(c):
			enc.WriteByte(c)
		case c == '_':
			enc.WriteString("_u")
		default:
			enc.WriteByte('_')
			enc.WriteString(strconv.FormatUint(uint64(c), 16))
			enc.WriteByte('x')
		}
	}
	sb.WriteByte('R')
	sb.WriteString(strconv.Itoa(enc.Len()))
	sb.WriteString(enc.String())
}

func isPlainIdent(name string) bool {
	for i := 0; i < len(name); i++ {
		if !isAlnum(name[i]) && name[i] != '_' {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
