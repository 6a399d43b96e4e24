package lexer

import (
	"unicode"

	"github.com/thiremani/kmangle/token"
	"golang.org/x/text/unicode/norm"
)

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line, column int  // of curr, 1-based
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, column := l.line, l.column
	tok := l.scan()
	tok.Line, tok.Column = line, column
	return tok
}

func (l *Lexer) scan() token.Token {
	var tok token.Token

	switch l.curr {
	case '=':
		tok = newToken(token.ASSIGN, l.curr)
	case '+':
		tok = newToken(token.ADD, l.curr)
	case '-':
		if l.peekRune() == '>' {
			l.readRune()
			tok = token.Token{Type: token.ARROW, Literal: "->"}
		} else {
			tok = newToken(token.SUB, l.curr)
		}
	case '*':
		tok = newToken(token.MUL, l.curr)
	case '^':
		tok = newToken(token.XOR, l.curr)
	case '&':
		tok = newToken(token.AND, l.curr)
	case '@':
		tok = newToken(token.AT, l.curr)
	case ':':
		tok = newToken(token.COLON, l.curr)
	case '<':
		tok = newToken(token.LSS, l.curr)
	case '>':
		tok = newToken(token.GTR, l.curr)
	case ',':
		tok = newToken(token.COMMA, l.curr)
	case '.':
		tok = newToken(token.PERIOD, l.curr)
	case '(':
		tok = newToken(token.LPAREN, l.curr)
	case ')':
		tok = newToken(token.RPAREN, l.curr)
	case '[':
		tok = newToken(token.LBRACK, l.curr)
	case ']':
		tok = newToken(token.RBRACK, l.curr)
	case '{':
		tok = newToken(token.LBRACE, l.curr)
	case '}':
		tok = newToken(token.RBRACE, l.curr)
	case '`':
		return l.readQuoted()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		return tok
	default:
		if isLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.curr) {
			tok.Type = token.INT
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = newToken(token.ILLEGAL, l.curr)
		}
	}

	l.readRune()
	return tok
}

// skipWhitespaceAndComments skips blanks, newlines and '#' comments, which
// run to the end of the line.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.curr {
		case ' ', '\t', '\n', '\r':
			l.readRune()
		case '#':
			for l.curr != '\n' && l.curr != 0 {
				l.readRune()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	} else {
		return l.input[l.readPosition]
	}
}

// readIdentifier returns the identifier at the current position in NFC, so
// canonically equivalent spellings name the same declaration.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) || unicode.IsMark(l.curr) {
		l.readRune()
	}
	return norm.NFC.String(string(l.input[position:l.position]))
}

// readQuoted reads a back-quoted name such as `+` or `$init`. The quotes are
// not part of the literal. An unterminated or empty name is ILLEGAL.
func (l *Lexer) readQuoted() token.Token {
	l.readRune()
	position := l.position
	for l.curr != '`' && l.curr != '\n' && l.curr != 0 {
		l.readRune()
	}
	lit := string(l.input[position:l.position])
	if l.curr != '`' || lit == "" {
		return token.Token{Type: token.ILLEGAL, Literal: "`" + lit}
	}
	l.readRune()
	return token.Token{Type: token.IDENT, Literal: norm.NFC.String(lit), Quoted: true}
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, curr rune) token.Token {
	return token.Token{Type: tokenType, Literal: string(curr)}
}
