package ast

import (
	"bytes"
	"strings"

	"github.com/thiremani/kmangle/token"
)

// The syntax tree of a sketch file. The parser produces it; the builder in
// package parser lowers it into a Graph.

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Module     *ModuleStatement // nil when the file does not name its module
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	} else {
		return token.Token{
			Type:    token.EOF,
			Literal: "",
		}
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	if p.Module != nil {
		out.WriteString(p.Module.String())
		out.WriteString("\n")
	}
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

func printVec(a []Expression) string {
	if len(a) == 0 {
		return ""
	}

	ret := a[0].String()
	for _, val := range a[1:] {
		ret += ", "
		ret += val.String()
	}

	return ret
}

// Statements
type ModuleStatement struct {
	Token token.Token // the token.MODULE token
	Name  string
}

func (ms *ModuleStatement) statementNode()   {}
func (ms *ModuleStatement) Tok() token.Token { return ms.Token }
func (ms *ModuleStatement) String() string   { return "module " + ms.Name }

// ParamNode is one parameter of a func or init.
type ParamNode struct {
	Token     token.Token // the name token
	Direction Direction
	Name      string
	Type      Expression
}

func (pn *ParamNode) String() string {
	s := pn.Name + ": " + pn.Type.String()
	if pn.Direction != In {
		s = pn.Direction.String() + " " + s
	}
	return s
}

// GenericParamNode is one parameter of a generic: a type parameter, a
// `let` value parameter or an `each` pack parameter.
type GenericParamNode struct {
	Token token.Token
	Kind  DeclKind
	Name  string
	Type  Expression // value parameters only
}

func (gp *GenericParamNode) String() string {
	switch gp.Kind {
	case GenericValueParamDecl:
		return "let " + gp.Name + ": " + gp.Type.String()
	case GenericTypePackParamDecl:
		return "each " + gp.Name
	}
	return gp.Name
}

// WhereClause constrains Sub to conform to Sup.
type WhereClause struct {
	Token token.Token // the ':' token
	Sub   Expression
	Sup   Expression
}

func (wc *WhereClause) String() string {
	return wc.Sub.String() + ": " + wc.Sup.String()
}

// DeclStatement is any declaration. Which fields are set depends on Kind.
type DeclStatement struct {
	Token     token.Token // the keyword token
	Kind      DeclKind
	Name      string
	Modifiers []Modifier

	Supers []Expression     // aggregate and extension conformances
	Body   []*DeclStatement // aggregate and extension members

	Type      Expression // var, property, alias target, extension target
	Params    []*ParamNode
	Result    Expression // nil means void
	Accessors []DeclKind

	GenericParams []*GenericParamNode
	Where         []*WhereClause
	Inner         *DeclStatement

	Original *PathExpression // derivative requirements
}

func (ds *DeclStatement) statementNode()   {}
func (ds *DeclStatement) Tok() token.Token { return ds.Token }
func (ds *DeclStatement) String() string {
	var out bytes.Buffer

	for _, m := range ds.Modifiers {
		out.WriteString("@" + m.String() + " ")
	}

	switch ds.Kind {
	case StructDecl, InterfaceDecl, EnumDecl, ExtensionDecl:
		out.WriteString(ds.Token.Literal + " ")
		if ds.Kind == ExtensionDecl {
			out.WriteString(ds.Type.String())
		} else {
			out.WriteString(ds.Name)
		}
		if len(ds.Supers) > 0 {
			out.WriteString(" : " + printVec(ds.Supers))
		}
		out.WriteString(" {")
		for _, m := range ds.Body {
			out.WriteString(" " + m.String() + ";")
		}
		out.WriteString(" }")
	case VarDecl:
		out.WriteString("var " + ds.Name + ": " + ds.Type.String())
	case PropertyDecl:
		out.WriteString("property " + ds.Name + ": " + ds.Type.String())
		if len(ds.Accessors) > 0 {
			words := make([]string, len(ds.Accessors))
			for i, a := range ds.Accessors {
				words[i] = accessorWords[a]
			}
			out.WriteString(" { " + strings.Join(words, " ") + " }")
		}
	case FuncDecl, ConstructorDecl:
		if ds.Kind == FuncDecl {
			out.WriteString("func " + ds.Name)
		} else {
			out.WriteString("init")
		}
		params := make([]string, len(ds.Params))
		for i, p := range ds.Params {
			params[i] = p.String()
		}
		out.WriteString("(" + strings.Join(params, ", ") + ")")
		if ds.Result != nil {
			out.WriteString(" -> " + ds.Result.String())
		}
	case TypeAliasDecl:
		out.WriteString("typealias " + ds.Name + " = " + ds.Type.String())
	case GenericDecl:
		params := make([]string, len(ds.GenericParams))
		for i, p := range ds.GenericParams {
			params[i] = p.String()
		}
		out.WriteString("generic<" + strings.Join(params, ", ") + ">")
		if len(ds.Where) > 0 {
			clauses := make([]string, len(ds.Where))
			for i, w := range ds.Where {
				clauses[i] = w.String()
			}
			out.WriteString(" where " + strings.Join(clauses, ", "))
		}
		out.WriteString(" " + ds.Inner.String())
	case ForwardDerivativeRequirementDecl, BackwardDerivativeRequirementDecl:
		dir := "fwd"
		if ds.Kind == BackwardDerivativeRequirementDecl {
			dir = "bwd"
		}
		out.WriteString("derivative " + dir + " " + ds.Name + " of " + ds.Original.String())
	}

	return out.String()
}

var accessorWords = map[DeclKind]string{
	GetterDecl:      "get",
	SetterDecl:      "set",
	RefAccessorDecl: "ref",
}

// LookupAccessor maps an accessor word inside a property body to its kind.
func LookupAccessor(word string) (DeclKind, bool) {
	for k, w := range accessorWords {
		if w == word {
			return k, true
		}
	}
	return InvalidDecl, false
}

type MangleKind int

const (
	MangleDecl MangleKind = iota
	MangleType
	MangleWitness
)

// MangleStatement asks for the symbol of a declaration, a type or a
// conformance witness.
type MangleStatement struct {
	Token  token.Token // the token.MANGLE token
	Kind   MangleKind
	Target Expression // a *PathExpression for MangleDecl
	Sup    Expression // MangleWitness only
}

func (ms *MangleStatement) statementNode()   {}
func (ms *MangleStatement) Tok() token.Token { return ms.Token }
func (ms *MangleStatement) String() string {
	switch ms.Kind {
	case MangleType:
		return "mangle type " + ms.Target.String()
	case MangleWitness:
		return "mangle witness " + ms.Target.String() + " : " + ms.Sup.String()
	}
	return "mangle " + ms.Target.String()
}

// Expressions
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string {
	if i.Token.Quoted {
		return "`" + i.Value + "`"
	}
	return i.Value
}

// Segment is one dotted component of a path, with optional generic
// arguments.
type Segment struct {
	Name    *Identifier
	Args    []Expression
	Generic bool // written with <...>, possibly empty
}

func (s *Segment) String() string {
	if !s.Generic {
		return s.Name.String()
	}
	return s.Name.String() + "<" + printVec(s.Args) + ">"
}

// PathExpression names a declaration or builtin: `Vec`, `m.Box<int>.get`,
// `vector<float, 4>`.
type PathExpression struct {
	Token    token.Token // the first identifier
	Segments []*Segment
}

func (pe *PathExpression) expressionNode()  {}
func (pe *PathExpression) Tok() token.Token { return pe.Token }
func (pe *PathExpression) String() string {
	parts := make([]string, len(pe.Segments))
	for i, s := range pe.Segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()  {}
func (il *IntegerLiteral) Tok() token.Token { return il.Token }
func (il *IntegerLiteral) String() string   { return il.Token.Literal }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. - or expand
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()  {}
func (pe *PrefixExpression) Tok() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	if pe.Operator != "-" {
		out.WriteString(" ")
	}
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// ArrayExpression is the array type Elem[Count].
type ArrayExpression struct {
	Token token.Token // the '[' token
	Elem  Expression
	Count Expression
}

func (ae *ArrayExpression) expressionNode()  {}
func (ae *ArrayExpression) Tok() token.Token { return ae.Token }
func (ae *ArrayExpression) String() string {
	return ae.Elem.String() + "[" + ae.Count.String() + "]"
}

// TupleExpression is a parenthesized type list other than a single grouped
// type.
type TupleExpression struct {
	Token    token.Token // the '(' token
	Elements []Expression
}

func (te *TupleExpression) expressionNode()  {}
func (te *TupleExpression) Tok() token.Token { return te.Token }
func (te *TupleExpression) String() string {
	if len(te.Elements) == 1 {
		return "(" + te.Elements[0].String() + ",)"
	}
	return "(" + printVec(te.Elements) + ")"
}

// FuncTypeExpression is func(Params) -> Result [throws Throws].
type FuncTypeExpression struct {
	Token  token.Token // the token.FUNC token
	Params []Expression
	Result Expression
	Throws Expression // nil when the function cannot fail
}

func (fe *FuncTypeExpression) expressionNode()  {}
func (fe *FuncTypeExpression) Tok() token.Token { return fe.Token }
func (fe *FuncTypeExpression) String() string {
	s := "func(" + printVec(fe.Params) + ") -> " + fe.Result.String()
	if fe.Throws != nil {
		s += " throws " + fe.Throws.String()
	}
	return s
}

// ModifiedExpression is a type carrying a modifier, written @Modifier Base.
type ModifiedExpression struct {
	Token    token.Token // the '@' token
	Modifier string
	Base     Expression
}

func (me *ModifiedExpression) expressionNode()  {}
func (me *ModifiedExpression) Tok() token.Token { return me.Token }
func (me *ModifiedExpression) String() string {
	return "@" + me.Modifier + " " + me.Base.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  *PathExpression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}
