package parser

import (
	"fmt"
	"strings"

	"github.com/thiremani/kmangle/token"
)

// ValidateModuleName checks a module name, given by a module statement or
// taken from the file stem. A name is one or more dot-separated segments,
// each a lowercase ASCII identifier that is not a keyword. Such a segment
// mangles to its plain length-prefixed form and can be written back in a
// module statement.
func ValidateModuleName(name string) error {
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	for seg := range strings.SplitSeq(name, ".") {
		if err := checkSegment(seg); err != nil {
			return err
		}
	}
	return nil
}

func checkSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty segment in module name")
	}
	for i, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("segment %q starts with a digit", seg)
			}
		case r >= 'A' && r <= 'Z':
			return fmt.Errorf("uppercase letter %q in segment %q: module names are lowercase", r, seg)
		default:
			return fmt.Errorf("invalid character %q in segment %q", r, seg)
		}
	}
	if token.LookupIdent(seg) != token.IDENT {
		return fmt.Errorf("segment %q is a keyword", seg)
	}
	return nil
}
