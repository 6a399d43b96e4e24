package token

import "strconv"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	literal_beg
	// Identifiers + literals
	IDENT // add, Vec, `+`, ...
	INT   // 1343456
	literal_end

	operator_beg
	// Operators and delimiters
	ASSIGN // =
	ADD    // +
	SUB    // -
	MUL    // *
	XOR    // ^
	AND    // &
	AT     // @
	COLON  // :
	ARROW  // ->

	LPAREN // (
	LBRACK // [
	LBRACE // {
	LSS    // <
	COMMA  // ,
	PERIOD // .

	RPAREN // )
	RBRACK // ]
	RBRACE // }
	GTR    // >
	operator_end

	keyword_beg
	MODULE
	STRUCT
	INTERFACE
	ENUM
	VAR
	PROPERTY
	FUNC
	INIT
	TYPEALIAS
	EXTENSION
	GENERIC
	WHERE
	LET
	DERIVATIVE
	OF
	MANGLE
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT: "IDENT",
	INT:   "INT",

	ASSIGN: "=",
	ADD:    "+",
	SUB:    "-",
	MUL:    "*",
	XOR:    "^",
	AND:    "&",
	AT:     "@",
	COLON:  ":",
	ARROW:  "->",

	LPAREN: "(",
	LBRACK: "[",
	LBRACE: "{",
	LSS:    "<",
	COMMA:  ",",
	PERIOD: ".",

	RPAREN: ")",
	RBRACK: "]",
	RBRACE: "}",
	GTR:    ">",

	MODULE:     "module",
	STRUCT:     "struct",
	INTERFACE:  "interface",
	ENUM:       "enum",
	VAR:        "var",
	PROPERTY:   "property",
	FUNC:       "func",
	INIT:       "init",
	TYPEALIAS:  "typealias",
	EXTENSION:  "extension",
	GENERIC:    "generic",
	WHERE:      "where",
	LET:        "let",
	DERIVATIVE: "derivative",
	OF:         "of",
	MANGLE:     "mangle",
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType, keyword_end-keyword_beg)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		keywords[tokens[i]] = i
	}
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Token is one lexeme. Quoted marks a back-quoted name, which is never a
// keyword or a contextual word such as "get" or "vector".
type Token struct {
	Type    TokenType
	Literal string
	Quoted  bool
	Line    int
	Column  int
}

// IsWord reports whether t is the unquoted identifier word.
func (t Token) IsWord(word string) bool {
	return t.Type == IDENT && !t.Quoted && t.Literal == word
}

func (t Token) IsKeyword() bool {
	return keyword_beg < t.Type && t.Type < keyword_end
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INT:
		return t.Type.String() + "(" + t.Literal + ")"
	}
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}
