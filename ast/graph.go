package ast

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/thiremani/kmangle/types"
)

// Graph owns every declaration, type and value of a program. Nodes are
// appended and never removed or rewritten once the front end hands the graph
// to a consumer, so a Graph may be shared read-only across goroutines.
type Graph struct {
	decls []Decl
	types []Type
	vals  []Val
	basic map[types.BaseType]TypeID
}

// NewGraph returns an empty graph with slot 0 of every arena reserved.
func NewGraph() *Graph {
	return &Graph{
		decls: []Decl{{}},
		types: []Type{{}},
		vals:  []Val{{}},
		basic: make(map[types.BaseType]TypeID),
	}
}

func nextID(n int) uint32 {
	id, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("graph arena overflow: %w", err))
	}
	return id
}

// Decl returns the declaration stored at id. It panics on an unknown id.
func (g *Graph) Decl(id DeclID) *Decl {
	if id == NoDecl || int(id) >= len(g.decls) {
		panic(fmt.Sprintf("ast: unknown declaration %d", id))
	}
	return &g.decls[id]
}

// Type returns the type stored at id. It panics on an unknown id.
func (g *Graph) Type(id TypeID) *Type {
	if id == NoType || int(id) >= len(g.types) {
		panic(fmt.Sprintf("ast: unknown type %d", id))
	}
	return &g.types[id]
}

// Val returns the value stored at id. It panics on an unknown id.
func (g *Graph) Val(id ValID) *Val {
	if id == NoVal || int(id) >= len(g.vals) {
		panic(fmt.Sprintf("ast: unknown value %d", id))
	}
	return &g.vals[id]
}

// NumDecls returns the number of declarations, including the reserved slot.
func (g *Graph) NumDecls() int { return len(g.decls) }

// Parent returns the lexical parent of id, looking through file groupings.
func (g *Graph) Parent(id DeclID) DeclID {
	p := g.Decl(id).Parent
	if p.IsValid() && g.Decl(p).Kind == FileDecl {
		p = g.Decl(p).Parent
	}
	return p
}

// AddDecl stores d and links it into its parent's member list. A declaration
// added under a generic that is not itself a generic parameter or constraint
// becomes the generic's inner declaration.
func (g *Graph) AddDecl(d Decl) DeclID {
	id := DeclID(nextID(len(g.decls)))
	g.decls = append(g.decls, d)
	if d.Parent.IsValid() {
		parent := g.Decl(d.Parent)
		parent.Members = append(parent.Members, id)
		if parent.Kind == GenericDecl && !d.Kind.IsGenericParam() && d.Kind != GenericTypeConstraintDecl {
			parent.Inner = id
		}
	}
	return id
}

// AddType stores t.
func (g *Graph) AddType(t Type) TypeID {
	id := TypeID(nextID(len(g.types)))
	g.types = append(g.types, t)
	return id
}

// AddVal stores v.
func (g *Graph) AddVal(v Val) ValID {
	id := ValID(nextID(len(g.vals)))
	g.vals = append(g.vals, v)
	return id
}

// Param describes one parameter for AddFunc and AddConstructor.
type Param struct {
	Name string
	Dir  Direction
	Type TypeID
}

func (g *Graph) NewModule(name string) DeclID {
	return g.AddDecl(Decl{Kind: ModuleDecl, Name: name})
}

func (g *Graph) AddFile(module DeclID, name string) DeclID {
	return g.AddDecl(Decl{Kind: FileDecl, Name: name, Parent: module})
}

// AddParam appends a parameter to callable's signature.
func (g *Graph) AddParam(callable DeclID, p Param) DeclID {
	pid := g.AddDecl(Decl{Kind: ParamDecl, Name: p.Name, Parent: callable, Direction: p.Dir, Type: p.Type})
	d := g.Decl(callable)
	d.Params = append(d.Params, pid)
	return pid
}

func (g *Graph) addParams(callable DeclID, params []Param) {
	for _, p := range params {
		g.AddParam(callable, p)
	}
}

// AddFunc declares a function or method.
func (g *Graph) AddFunc(parent DeclID, name string, result TypeID, params ...Param) DeclID {
	id := g.AddDecl(Decl{Kind: FuncDecl, Name: name, Parent: parent, Result: result})
	g.addParams(id, params)
	return id
}

// AddConstructor declares an initializer of parent. Its result is the
// enclosing type and is never part of its signature.
func (g *Graph) AddConstructor(parent DeclID, params ...Param) DeclID {
	id := g.AddDecl(Decl{Kind: ConstructorDecl, Name: "$init", Parent: parent})
	g.addParams(id, params)
	return id
}

// AddAggregate declares a struct, interface or enum.
func (g *Graph) AddAggregate(parent DeclID, kind DeclKind, name string) DeclID {
	if !kind.IsAggregate() {
		panic(fmt.Sprintf("ast: %v is not an aggregate kind", kind))
	}
	return g.AddDecl(Decl{Kind: kind, Name: name, Parent: parent})
}

func (g *Graph) AddVar(parent DeclID, name string, t TypeID) DeclID {
	return g.AddDecl(Decl{Kind: VarDecl, Name: name, Parent: parent, Type: t})
}

func (g *Graph) AddAlias(parent DeclID, name string, target TypeID) DeclID {
	return g.AddDecl(Decl{Kind: TypeAliasDecl, Name: name, Parent: parent, Type: target})
}

func (g *Graph) AddProperty(parent DeclID, name string, t TypeID) DeclID {
	return g.AddDecl(Decl{Kind: PropertyDecl, Name: name, Parent: parent, Type: t})
}

// AddAccessor declares a getter, setter or ref accessor of property. Accessors
// are nameless; a setter takes the implicit newValue parameter.
func (g *Graph) AddAccessor(property DeclID, kind DeclKind) DeclID {
	if !kind.IsAccessor() {
		panic(fmt.Sprintf("ast: %v is not an accessor kind", kind))
	}
	t := g.Decl(property).Type
	switch kind {
	case SetterDecl:
		id := g.AddDecl(Decl{Kind: kind, Parent: property, Result: g.Basic(types.Void)})
		g.addParams(id, []Param{{Name: "newValue", Dir: In, Type: t}})
		return id
	default:
		return g.AddDecl(Decl{Kind: kind, Parent: property, Result: t})
	}
}

// AddGeneric declares a generic under parent. Parameters, constraints and
// exactly one inner declaration are added with the generic as their parent.
func (g *Graph) AddGeneric(parent DeclID) DeclID {
	return g.AddDecl(Decl{Kind: GenericDecl, Parent: parent})
}

func (g *Graph) nextParamIndex(generic DeclID) int {
	n := 0
	for _, m := range g.Decl(generic).Members {
		if g.Decl(m).Kind.IsGenericParam() {
			n++
		}
	}
	return n
}

func (g *Graph) AddTypeParam(generic DeclID, name string) DeclID {
	idx := g.nextParamIndex(generic)
	return g.AddDecl(Decl{Kind: GenericTypeParamDecl, Name: name, Parent: generic, ParamIndex: idx})
}

func (g *Graph) AddTypePackParam(generic DeclID, name string) DeclID {
	idx := g.nextParamIndex(generic)
	return g.AddDecl(Decl{Kind: GenericTypePackParamDecl, Name: name, Parent: generic, ParamIndex: idx})
}

func (g *Graph) AddValueParam(generic DeclID, name string, t TypeID) DeclID {
	idx := g.nextParamIndex(generic)
	return g.AddDecl(Decl{Kind: GenericValueParamDecl, Name: name, Parent: generic, ParamIndex: idx, Type: t})
}

// AddConstraint records that sub must conform to sup inside generic.
func (g *Graph) AddConstraint(generic DeclID, sub, sup TypeID) DeclID {
	return g.AddDecl(Decl{Kind: GenericTypeConstraintDecl, Parent: generic, Sub: sub, Type: sup})
}

func (g *Graph) AddExtension(parent DeclID, target TypeID) DeclID {
	return g.AddDecl(Decl{Kind: ExtensionDecl, Parent: parent, Type: target})
}

// AddInheritance records that parent conforms to sup.
func (g *Graph) AddInheritance(parent DeclID, sup TypeID) DeclID {
	return g.AddDecl(Decl{Kind: InheritanceDecl, Parent: parent, Type: sup})
}

// AddDerivativeRequirement declares a forward or backward derivative
// requirement synthesized for original.
func (g *Graph) AddDerivativeRequirement(parent DeclID, kind DeclKind, name string, original DeclRef) DeclID {
	if kind != ForwardDerivativeRequirementDecl && kind != BackwardDerivativeRequirementDecl {
		panic(fmt.Sprintf("ast: %v is not a derivative requirement kind", kind))
	}
	return g.AddDecl(Decl{Kind: kind, Name: name, Parent: parent, Original: original})
}

// AddModifiers appends mods to the declaration's modifier list.
func (g *Graph) AddModifiers(id DeclID, mods ...Modifier) {
	d := g.Decl(id)
	d.Modifiers = append(d.Modifiers, mods...)
}

// GenericOf returns the generic whose inner declaration is id, or NoDecl.
func (g *Graph) GenericOf(id DeclID) DeclID {
	p := g.Decl(id).Parent
	if p.IsValid() && g.Decl(p).Kind == GenericDecl && g.Decl(p).Inner == id {
		return p
	}
	return NoDecl
}

// GenericParams returns the generic's parameter declarations in order.
func (g *Graph) GenericParams(generic DeclID) []DeclID {
	var params []DeclID
	for _, m := range g.Decl(generic).Members {
		if g.Decl(m).Kind.IsGenericParam() {
			params = append(params, m)
		}
	}
	return params
}

// Basic returns the (shared) scalar type bt.
func (g *Graph) Basic(bt types.BaseType) TypeID {
	if id, ok := g.basic[bt]; ok {
		return id
	}
	id := g.AddType(Type{Kind: BasicType, Base: bt})
	g.basic[bt] = id
	return id
}

func (g *Graph) Vector(elem TypeID, count ValID) TypeID {
	return g.AddType(Type{Kind: VectorType, Elem: elem, Count: count})
}

func (g *Graph) Matrix(elem TypeID, rows, cols ValID) TypeID {
	return g.AddType(Type{Kind: MatrixType, Elem: elem, Rows: rows, Cols: cols})
}

func (g *Graph) Array(elem TypeID, count ValID) TypeID {
	return g.AddType(Type{Kind: ArrayType, Elem: elem, Count: count})
}

// Named returns a reference to a type alias.
func (g *Graph) Named(alias DeclRef) TypeID {
	return g.AddType(Type{Kind: NamedType, Ref: alias})
}

// DeclType returns the nominal type of ref's declaration.
func (g *Graph) DeclType(ref DeclRef) TypeID {
	return g.AddType(Type{Kind: DeclRefType, Ref: ref})
}

func (g *Graph) This(iface DeclRef) TypeID {
	return g.AddType(Type{Kind: ThisType, Ref: iface})
}

func (g *Graph) ErrorType() TypeID {
	return g.AddType(Type{Kind: ErrorType})
}

func (g *Graph) Bottom() TypeID {
	return g.AddType(Type{Kind: BottomType})
}

// Func returns a function type. A function that cannot fail has the bottom
// type as its error type; NoType selects that.
func (g *Graph) Func(params []TypeID, result, errType TypeID) TypeID {
	if !errType.IsValid() {
		errType = g.Bottom()
	}
	return g.AddType(Type{Kind: FuncType, Elems: params, Result: result, Error: errType})
}

func (g *Graph) Tuple(members ...TypeID) TypeID {
	return g.AddType(Type{Kind: TupleType, Elems: members})
}

func (g *Graph) Modified(base TypeID, mods ...ValID) TypeID {
	return g.AddType(Type{Kind: ModifiedType, Elem: base, Modifiers: mods})
}

func (g *Graph) And(left, right TypeID) TypeID {
	return g.AddType(Type{Kind: AndType, Left: left, Right: right})
}

func (g *Graph) Expand(pattern TypeID) TypeID {
	return g.AddType(Type{Kind: ExpandType, Elem: pattern})
}

func (g *Graph) Each(elem TypeID) TypeID {
	return g.AddType(Type{Kind: EachType, Elem: elem})
}

func (g *Graph) Pack(elems ...TypeID) TypeID {
	return g.AddType(Type{Kind: TypePackType, Elems: elems})
}

// EnumType returns the builtin enum interface type declared by ref.
func (g *Graph) EnumType(ref DeclRef) TypeID {
	return g.AddType(Type{Kind: EnumTypeType, Ref: ref})
}

func (g *Graph) Int(v int64) ValID {
	return g.AddVal(Val{Kind: ConstantIntVal, Int: v})
}

// TypeArg wraps t so it can be used as a generic argument.
func (g *Graph) TypeArg(t TypeID) ValID {
	return g.AddVal(Val{Kind: TypeVal, Type: t})
}

// ParamRef refers to a generic value parameter.
func (g *Graph) ParamRef(param DeclRef) ValID {
	return g.AddVal(Val{Kind: GenericParamIntVal, Ref: param})
}

func (g *Graph) Witness() ValID {
	return g.AddVal(Val{Kind: WitnessVal})
}

func (g *Graph) Call(callee DeclRef, args ...ValID) ValID {
	return g.AddVal(Val{Kind: FuncCallIntVal, Ref: callee, Args: args})
}

func (g *Graph) Lookup(witness ValID, key DeclID) ValID {
	return g.AddVal(Val{Kind: WitnessLookupIntVal, Base: witness, Key: key})
}

func (g *Graph) Poly(constant int64, terms ...PolyTerm) ValID {
	return g.AddVal(Val{Kind: PolynomialIntVal, Int: constant, Terms: terms})
}

func (g *Graph) Cast(t TypeID, base ValID) ValID {
	return g.AddVal(Val{Kind: TypeCastIntVal, Type: t, Base: base})
}

func (g *Graph) ModifierVal(class string) ValID {
	return g.AddVal(Val{Kind: ModifierVal, Class: class})
}
