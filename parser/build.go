package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/lexer"
	"github.com/thiremani/kmangle/token"
	"github.com/thiremani/kmangle/types"
)

// Request is a resolved mangle statement.
type Request struct {
	Text string
	Kind ast.MangleKind
	Ref  ast.DeclRef // MangleDecl
	Type ast.TypeID  // MangleType, and the conforming type of MangleWitness
	Sup  ast.TypeID  // MangleWitness
}

// Unit is one sketch file lowered into a graph of its own.
type Unit struct {
	Graph    *ast.Graph
	Module   ast.DeclID
	File     ast.DeclID
	Requests []Request
}

// Parse lexes, parses and lowers the sketch source of file. A file without a
// module statement belongs to the module named after its stem.
func Parse(file, src string) (*Unit, error) {
	p := New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, joinErrors(file, errs)
	}
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	unit, errs := Build(program, stem, filepath.Base(file))
	if len(errs) > 0 {
		return nil, joinErrors(file, errs)
	}
	return unit, nil
}

func joinErrors(file string, msgs []string) error {
	errs := make([]error, len(msgs))
	for i, m := range msgs {
		errs[i] = fmt.Errorf("%s:%s", file, m)
	}
	return errors.Join(errs...)
}

type builder struct {
	g       *ast.Graph
	errors  []string
	ids     map[*ast.DeclStatement]ast.DeclID
	params  map[*ast.GenericParamNode]ast.DeclID
	witness map[ast.DeclID]int // generic -> number of where clauses
	scopes  []Scope[[]ast.DeclID]
}

// Build lowers program into a fresh graph. Declarations are entered in a
// first pass so that types may refer to anything in the file regardless of
// order; a second pass resolves every type and value.
func Build(program *ast.Program, module, file string) (*Unit, []string) {
	b := &builder{
		g:       ast.NewGraph(),
		ids:     make(map[*ast.DeclStatement]ast.DeclID),
		params:  make(map[*ast.GenericParamNode]ast.DeclID),
		witness: make(map[ast.DeclID]int),
	}

	modTok := program.Tok()
	if program.Module != nil {
		module = program.Module.Name
		modTok = program.Module.Token
	}
	if err := ValidateModuleName(module); err != nil {
		b.errorf(modTok, "invalid module name %q: %v", module, err)
		return nil, b.errors
	}

	unit := &Unit{Graph: b.g}
	unit.Module = b.g.NewModule(module)
	unit.File = b.g.AddFile(unit.Module, file)

	var decls []*ast.DeclStatement
	var requests []*ast.MangleStatement
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.DeclStatement:
			decls = append(decls, s)
		case *ast.MangleStatement:
			requests = append(requests, s)
		}
	}

	for _, d := range decls {
		b.declare(d, unit.File)
	}

	b.scopes = []Scope[[]ast.DeclID]{NewScope[[]ast.DeclID](ModuleScope)}
	Put(b.scopes, module, []ast.DeclID{unit.Module})
	b.putMembers(decls)
	for _, d := range decls {
		b.resolve(d)
	}

	for _, r := range requests {
		if req, ok := b.request(r); ok {
			unit.Requests = append(unit.Requests, req)
		}
	}

	if len(b.errors) > 0 {
		return nil, b.errors
	}
	return unit, nil
}

func (b *builder) errorf(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf("%d:%d: ", tok.Line, tok.Column) + fmt.Sprintf(format, args...)
	b.errors = append(b.errors, msg)
}

// declare enters ds and everything nested in it into the graph without
// resolving any type.
func (b *builder) declare(ds *ast.DeclStatement, parent ast.DeclID) ast.DeclID {
	g := b.g
	var id ast.DeclID
	switch ds.Kind {
	case ast.StructDecl, ast.InterfaceDecl, ast.EnumDecl:
		b.checkTypeName(ds.Token, ds.Name)
		id = g.AddAggregate(parent, ds.Kind, ds.Name)
		for _, m := range ds.Body {
			b.declare(m, id)
		}
	case ast.ExtensionDecl:
		id = g.AddExtension(parent, ast.NoType)
		for _, m := range ds.Body {
			b.declare(m, id)
		}
	case ast.VarDecl:
		id = g.AddVar(parent, ds.Name, ast.NoType)
	case ast.PropertyDecl:
		id = g.AddProperty(parent, ds.Name, ast.NoType)
	case ast.FuncDecl:
		id = g.AddFunc(parent, ds.Name, ast.NoType)
	case ast.ConstructorDecl:
		if k := g.Decl(parent).Kind; !k.IsAggregate() && k != ast.ExtensionDecl {
			b.errorf(ds.Token, "init must be declared inside a struct, interface, enum or extension")
		}
		id = g.AddConstructor(parent)
	case ast.TypeAliasDecl:
		b.checkTypeName(ds.Token, ds.Name)
		id = g.AddAlias(parent, ds.Name, ast.NoType)
	case ast.GenericDecl:
		id = g.AddGeneric(parent)
		seen := make(map[string]bool)
		for _, gp := range ds.GenericParams {
			if seen[gp.Name] {
				b.errorf(gp.Token, "duplicate generic parameter %s", gp.Name)
			}
			seen[gp.Name] = true
			switch gp.Kind {
			case ast.GenericTypeParamDecl:
				b.checkTypeName(gp.Token, gp.Name)
				b.params[gp] = g.AddTypeParam(id, gp.Name)
			case ast.GenericTypePackParamDecl:
				b.checkTypeName(gp.Token, gp.Name)
				b.params[gp] = g.AddTypePackParam(id, gp.Name)
			case ast.GenericValueParamDecl:
				b.params[gp] = g.AddValueParam(id, gp.Name, ast.NoType)
			}
		}
		b.witness[id] = len(ds.Where)
		b.declare(ds.Inner, id)
	case ast.ForwardDerivativeRequirementDecl, ast.BackwardDerivativeRequirementDecl:
		id = g.AddDerivativeRequirement(parent, ds.Kind, ds.Name, ast.DeclRef{})
	default:
		b.errorf(ds.Token, "unexpected declaration kind %v", ds.Kind)
		return ast.NoDecl
	}
	g.AddModifiers(id, ds.Modifiers...)
	b.ids[ds] = id
	return id
}

func (b *builder) checkTypeName(tok token.Token, name string) {
	if types.IsReservedTypeName(name) {
		b.errorf(tok, "%s is a reserved type name", name)
	}
}

// putMembers makes the names of decls visible in the innermost scope. A
// generic is visible under the name of the declaration it wraps.
func (b *builder) putMembers(decls []*ast.DeclStatement) {
	for _, ds := range decls {
		inner := ds
		for inner.Kind == ast.GenericDecl {
			inner = inner.Inner
		}
		if inner.Kind == ast.ExtensionDecl || inner.Kind == ast.ConstructorDecl {
			continue
		}
		cur, _ := b.scopes[len(b.scopes)-1].Elems[inner.Name]
		Put(b.scopes, inner.Name, append(cur, b.ids[inner]))
	}
}

func (b *builder) resolve(ds *ast.DeclStatement) {
	g := b.g
	id, ok := b.ids[ds]
	if !ok {
		return
	}
	switch ds.Kind {
	case ast.StructDecl, ast.InterfaceDecl, ast.EnumDecl:
		b.resolveSupers(id, ds.Supers)
		b.resolveBody(ds.Body)
	case ast.ExtensionDecl:
		target := b.typeOf(ds.Type)
		g.Decl(id).Type = target
		b.resolveSupers(id, ds.Supers)
		b.resolveBody(ds.Body)
	case ast.VarDecl, ast.TypeAliasDecl:
		t := b.typeOf(ds.Type)
		g.Decl(id).Type = t
	case ast.PropertyDecl:
		t := b.typeOf(ds.Type)
		g.Decl(id).Type = t
		seen := make(map[ast.DeclKind]bool)
		for _, k := range ds.Accessors {
			if seen[k] {
				b.errorf(ds.Token, "duplicate %v accessor on property %s", k, ds.Name)
				continue
			}
			seen[k] = true
			g.AddAccessor(id, k)
		}
	case ast.FuncDecl:
		b.resolveParams(id, ds.Params)
		result := g.Basic(types.Void)
		if ds.Result != nil {
			result = b.typeOf(ds.Result)
		}
		g.Decl(id).Result = result
	case ast.ConstructorDecl:
		b.resolveParams(id, ds.Params)
	case ast.GenericDecl:
		PushScope(&b.scopes, GenericScope)
		for _, gp := range ds.GenericParams {
			Put(b.scopes, gp.Name, []ast.DeclID{b.params[gp]})
		}
		for _, gp := range ds.GenericParams {
			if gp.Kind == ast.GenericValueParamDecl {
				t := b.typeOf(gp.Type)
				g.Decl(b.params[gp]).Type = t
			}
		}
		for _, w := range ds.Where {
			sub, sup := b.typeOf(w.Sub), b.typeOf(w.Sup)
			g.AddConstraint(id, sub, sup)
		}
		b.resolve(ds.Inner)
		PopScope(&b.scopes)
	case ast.ForwardDerivativeRequirementDecl, ast.BackwardDerivativeRequirementDecl:
		ref, ok := b.resolvePath(ds.Original)
		if !ok {
			return
		}
		if !g.Decl(ref.Decl).Kind.IsCallable() {
			b.errorf(ds.Original.Tok(), "derivative of %s: not a function", ds.Original)
			return
		}
		g.Decl(id).Original = ref
	}
}

func (b *builder) resolveSupers(id ast.DeclID, supers []ast.Expression) {
	for _, s := range supers {
		t := b.typeOf(s)
		b.g.AddInheritance(id, t)
	}
}

func (b *builder) resolveBody(body []*ast.DeclStatement) {
	PushScope(&b.scopes, MemberScope)
	b.putMembers(body)
	for _, m := range body {
		b.resolve(m)
	}
	PopScope(&b.scopes)
}

func (b *builder) resolveParams(id ast.DeclID, params []*ast.ParamNode) {
	for _, p := range params {
		t := b.typeOf(p.Type)
		b.g.AddParam(id, ast.Param{Name: p.Name, Dir: p.Direction, Type: t})
	}
}

func (b *builder) request(ms *ast.MangleStatement) (Request, bool) {
	req := Request{Text: ms.String(), Kind: ms.Kind}
	n := len(b.errors)
	switch ms.Kind {
	case ast.MangleDecl:
		path, ok := ms.Target.(*ast.PathExpression)
		if !ok {
			b.errorf(ms.Token, "mangle expects a declaration path, got %s", ms.Target)
			return req, false
		}
		if req.Ref, ok = b.resolvePath(path); !ok {
			return req, false
		}
	case ast.MangleType:
		req.Type = b.typeOf(ms.Target)
	case ast.MangleWitness:
		req.Type = b.typeOf(ms.Target)
		req.Sup = b.typeOf(ms.Sup)
	}
	return req, len(b.errors) == n
}

// typeOf lowers a type expression. On error it records a message and returns
// NoType.
func (b *builder) typeOf(e ast.Expression) ast.TypeID {
	g := b.g
	switch e := e.(type) {
	case *ast.PathExpression:
		return b.pathType(e)
	case *ast.InfixExpression:
		if e.Operator == "&" {
			l, r := b.typeOf(e.Left), b.typeOf(e.Right)
			return g.And(l, r)
		}
	case *ast.PrefixExpression:
		switch e.Operator {
		case "expand":
			return g.Expand(b.typeOf(e.Right))
		case "each":
			return g.Each(b.typeOf(e.Right))
		}
	case *ast.ModifiedExpression:
		var mods []ast.ValID
		var base ast.Expression = e
		for me, ok := base.(*ast.ModifiedExpression); ok; me, ok = base.(*ast.ModifiedExpression) {
			mods = append(mods, g.ModifierVal(me.Modifier))
			base = me.Base
		}
		return g.Modified(b.typeOf(base), mods...)
	case *ast.ArrayExpression:
		elem := b.typeOf(e.Elem)
		return g.Array(elem, b.valOf(e.Count))
	case *ast.TupleExpression:
		members := make([]ast.TypeID, len(e.Elements))
		for i, m := range e.Elements {
			members[i] = b.typeOf(m)
		}
		return g.Tuple(members...)
	case *ast.FuncTypeExpression:
		params := make([]ast.TypeID, len(e.Params))
		for i, p := range e.Params {
			params[i] = b.typeOf(p)
		}
		result := b.typeOf(e.Result)
		errType := ast.NoType
		if e.Throws != nil {
			errType = b.typeOf(e.Throws)
		}
		return g.Func(params, result, errType)
	}
	b.errorf(e.Tok(), "%s is not a type", e)
	return ast.NoType
}

func (b *builder) pathType(pe *ast.PathExpression) ast.TypeID {
	if seg := pe.Segments[0]; len(pe.Segments) == 1 && !seg.Name.Token.Quoted && types.IsReservedTypeName(seg.Name.Value) {
		return b.builtinType(pe, seg)
	}
	ref, ok := b.resolvePath(pe)
	if !ok {
		return ast.NoType
	}
	d := b.g.Decl(ref.Decl)
	switch {
	case d.Kind.IsAggregate(), d.Kind == ast.GenericTypeParamDecl, d.Kind == ast.GenericTypePackParamDecl:
		return b.g.DeclType(ref)
	case d.Kind == ast.TypeAliasDecl:
		return b.g.Named(ref)
	}
	b.errorf(pe.Tok(), "%s is a %v, not a type", pe, d.Kind)
	return ast.NoType
}

func (b *builder) wantArgs(pe *ast.PathExpression, seg *ast.Segment, n int) bool {
	if len(seg.Args) != n {
		b.errorf(pe.Tok(), "%s expects %d arguments, got %d", seg.Name.Value, n, len(seg.Args))
		return false
	}
	return true
}

func (b *builder) builtinType(pe *ast.PathExpression, seg *ast.Segment) ast.TypeID {
	g := b.g
	name := seg.Name.Value
	if bt, ok := types.LookupBaseType(name); ok {
		if seg.Generic {
			b.errorf(pe.Tok(), "%s takes no arguments", name)
			return ast.NoType
		}
		return g.Basic(bt)
	}
	switch name {
	case "vector":
		if b.wantArgs(pe, seg, 2) {
			elem := b.typeOf(seg.Args[0])
			return g.Vector(elem, b.valOf(seg.Args[1]))
		}
	case "matrix":
		if b.wantArgs(pe, seg, 3) {
			elem := b.typeOf(seg.Args[0])
			rows := b.valOf(seg.Args[1])
			return g.Matrix(elem, rows, b.valOf(seg.Args[2]))
		}
	case "pack":
		elems := make([]ast.TypeID, len(seg.Args))
		for i, a := range seg.Args {
			elems[i] = b.typeOf(a)
		}
		return g.Pack(elems...)
	case "this":
		if !b.wantArgs(pe, seg, 1) {
			return ast.NoType
		}
		iface, ok := seg.Args[0].(*ast.PathExpression)
		if !ok {
			b.errorf(pe.Tok(), "this expects an interface, got %s", seg.Args[0])
			return ast.NoType
		}
		ref, ok := b.resolvePath(iface)
		if !ok {
			return ast.NoType
		}
		if b.g.Decl(ref.Decl).Kind != ast.InterfaceDecl {
			b.errorf(iface.Tok(), "this expects an interface, got %s", iface)
			return ast.NoType
		}
		return g.This(ref)
	case "error", "never":
		if b.wantArgs(pe, seg, 0) {
			if name == "error" {
				return g.ErrorType()
			}
			return g.Bottom()
		}
	default:
		b.errorf(pe.Tok(), "%s cannot be used as a type here", name)
	}
	return ast.NoType
}

// resolvePath resolves a dotted path to a declaration, binding the generic
// arguments written on any segment.
func (b *builder) resolvePath(pe *ast.PathExpression) (ast.DeclRef, bool) {
	first := pe.Segments[0]
	cands, _ := Get(b.scopes, first.Name.Value)
	cur, ok := b.pick(pe, first, cands)
	if !ok {
		return ast.DeclRef{}, false
	}
	subst, ok := b.bindArgs(pe, first, cur, nil)
	if !ok {
		return ast.DeclRef{}, false
	}

	for _, seg := range pe.Segments[1:] {
		if cur, ok = b.pick(pe, seg, b.members(cur, seg.Name.Value)); !ok {
			return ast.DeclRef{}, false
		}
		if subst, ok = b.bindArgs(pe, seg, cur, subst); !ok {
			return ast.DeclRef{}, false
		}
	}
	return ast.DeclRef{Decl: cur, Subst: subst}, true
}

func (b *builder) pick(pe *ast.PathExpression, seg *ast.Segment, cands []ast.DeclID) (ast.DeclID, bool) {
	switch len(cands) {
	case 0:
		b.errorf(seg.Name.Tok(), "undefined: %s in %s", seg.Name, pe)
		return ast.NoDecl, false
	case 1:
		return cands[0], true
	}
	b.errorf(seg.Name.Tok(), "ambiguous reference to %s: %d declarations", seg.Name, len(cands))
	return ast.NoDecl, false
}

// members returns the declarations named name directly inside container.
func (b *builder) members(container ast.DeclID, name string) []ast.DeclID {
	var out []ast.DeclID
	for _, m := range b.g.Decl(container).Members {
		md := b.g.Decl(m)
		switch md.Kind {
		case ast.FileDecl:
			out = append(out, b.members(m, name)...)
			continue
		case ast.GenericDecl:
			for md.Kind == ast.GenericDecl {
				m = md.Inner
				md = b.g.Decl(m)
			}
		case ast.ExtensionDecl, ast.ConstructorDecl, ast.ParamDecl, ast.InheritanceDecl,
			ast.GetterDecl, ast.SetterDecl, ast.RefAccessorDecl:
			continue
		}
		if md.Name == name {
			out = append(out, m)
		}
	}
	if b.g.Decl(container).Kind.IsAggregate() {
		for _, ext := range b.extensionsOf(container) {
			out = append(out, b.members(ext, name)...)
		}
	}
	return out
}

// extensionsOf returns the extensions whose target is the aggregate decl.
func (b *builder) extensionsOf(decl ast.DeclID) []ast.DeclID {
	var out []ast.DeclID
	for i := 1; i < b.g.NumDecls(); i++ {
		id := ast.DeclID(i)
		d := b.g.Decl(id)
		if d.Kind != ast.ExtensionDecl || !d.Type.IsValid() {
			continue
		}
		if t := b.g.Type(d.Type); t.Kind == ast.DeclRefType && t.Ref.Decl == decl {
			out = append(out, id)
		}
	}
	return out
}

// bindArgs layers the arguments written on seg over outer. Every constraint
// of the generic receives a witness argument after the written ones.
func (b *builder) bindArgs(pe *ast.PathExpression, seg *ast.Segment, decl ast.DeclID, outer *ast.Substitution) (*ast.Substitution, bool) {
	if !seg.Generic {
		return outer, true
	}
	gen := b.g.GenericOf(decl)
	if !gen.IsValid() {
		b.errorf(seg.Name.Tok(), "%s is not generic", seg.Name)
		return nil, false
	}
	params := b.g.GenericParams(gen)
	if len(seg.Args) != len(params) {
		b.errorf(seg.Name.Tok(), "%s expects %d generic arguments, got %d", seg.Name, len(params), len(seg.Args))
		return nil, false
	}
	args := make([]ast.ValID, 0, len(params)+b.witness[gen])
	for _, a := range seg.Args {
		args = append(args, b.argOf(a))
	}
	for range b.witness[gen] {
		args = append(args, b.g.Witness())
	}
	return &ast.Substitution{Generic: gen, Args: args, Outer: outer}, true
}

// argOf lowers a generic argument, which is a value when it is written as
// arithmetic, a literal, a call, or names a value parameter, and a type
// otherwise.
func (b *builder) argOf(e ast.Expression) ast.ValID {
	switch e := e.(type) {
	case *ast.IntegerLiteral, *ast.CallExpression:
		return b.valOf(e)
	case *ast.PrefixExpression:
		if e.Operator == "-" {
			return b.valOf(e)
		}
	case *ast.InfixExpression:
		if e.Operator != "&" {
			return b.valOf(e)
		}
	case *ast.PathExpression:
		if b.valueParam(e).IsValid() {
			return b.valOf(e)
		}
	}
	return b.g.TypeArg(b.typeOf(e))
}

// valueParam returns the generic value parameter pe names, if any.
func (b *builder) valueParam(pe *ast.PathExpression) ast.DeclID {
	if len(pe.Segments) != 1 || pe.Segments[0].Generic {
		return ast.NoDecl
	}
	cands, _ := Get(b.scopes, pe.Segments[0].Name.Value)
	if len(cands) == 1 && b.g.Decl(cands[0]).Kind == ast.GenericValueParamDecl {
		return cands[0]
	}
	return ast.NoDecl
}

// valOf lowers a compile-time integer expression. Sums, differences,
// products and powers are folded into a canonical polynomial.
func (b *builder) valOf(e ast.Expression) ast.ValID {
	p, ok := b.polyOf(e)
	if !ok {
		return ast.NoVal
	}
	return p.lower(b.g)
}

type polyFactor struct {
	key   string
	atom  ast.ValID
	power int64
}

type polyTerm struct {
	coeff   int64
	factors []polyFactor // sorted by key
}

func (t polyTerm) key() string {
	parts := make([]string, len(t.factors))
	for i, f := range t.factors {
		parts[i] = f.key + "^" + strconv.FormatInt(f.power, 10)
	}
	return strings.Join(parts, "*")
}

func (t polyTerm) degree() int64 {
	var d int64
	for _, f := range t.factors {
		d += f.power
	}
	return d
}

type poly struct {
	constant int64
	terms    []polyTerm
}

func constPoly(v int64) poly { return poly{constant: v} }

func atomPoly(key string, atom ast.ValID) poly {
	return poly{terms: []polyTerm{{coeff: 1, factors: []polyFactor{{key: key, atom: atom, power: 1}}}}}
}

// normalize merges like terms, drops zero ones and orders the rest by
// descending degree, then by their factors.
func (p poly) normalize() poly {
	merged := make(map[string]int)
	var out []polyTerm
	for _, t := range p.terms {
		k := t.key()
		if i, ok := merged[k]; ok {
			out[i].coeff += t.coeff
			continue
		}
		merged[k] = len(out)
		out = append(out, t)
	}
	out = slices.DeleteFunc(out, func(t polyTerm) bool { return t.coeff == 0 })
	slices.SortStableFunc(out, func(a, b polyTerm) int {
		if da, db := a.degree(), b.degree(); da != db {
			if da > db {
				return -1
			}
			return 1
		}
		return strings.Compare(a.key(), b.key())
	})
	return poly{constant: p.constant, terms: out}
}

func (p poly) add(q poly) poly {
	terms := append(slices.Clone(p.terms), q.terms...)
	return poly{constant: p.constant + q.constant, terms: terms}.normalize()
}

func (p poly) scale(c int64) poly {
	out := poly{constant: p.constant * c}
	for _, t := range p.terms {
		out.terms = append(out.terms, polyTerm{coeff: t.coeff * c, factors: t.factors})
	}
	return out.normalize()
}

func (p poly) mul(q poly) poly {
	out := p.scale(q.constant).add(q.scale(p.constant))
	out.constant = p.constant * q.constant
	for _, a := range p.terms {
		for _, c := range q.terms {
			out.terms = append(out.terms, polyTerm{coeff: a.coeff * c.coeff, factors: mulFactors(a.factors, c.factors)})
		}
	}
	return out.normalize()
}

func mulFactors(a, b []polyFactor) []polyFactor {
	out := slices.Clone(a)
	for _, f := range b {
		i := slices.IndexFunc(out, func(g polyFactor) bool { return g.key == f.key })
		if i >= 0 {
			out[i].power += f.power
		} else {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(x, y polyFactor) int { return strings.Compare(x.key, y.key) })
	return out
}

func (p poly) lower(g *ast.Graph) ast.ValID {
	switch {
	case len(p.terms) == 0:
		return g.Int(p.constant)
	case len(p.terms) == 1 && p.constant == 0 && p.terms[0].coeff == 1 &&
		len(p.terms[0].factors) == 1 && p.terms[0].factors[0].power == 1:
		return p.terms[0].factors[0].atom
	}
	terms := make([]ast.PolyTerm, len(p.terms))
	for i, t := range p.terms {
		factors := make([]ast.PolyFactor, len(t.factors))
		for j, f := range t.factors {
			factors[j] = ast.PolyFactor{Param: f.atom, Power: f.power}
		}
		terms[i] = ast.PolyTerm{Coeff: t.coeff, Factors: factors}
	}
	return g.Poly(p.constant, terms...)
}

// maxPower bounds `^` so a typo cannot blow up the polynomial.
const maxPower = 64

func (b *builder) polyOf(e ast.Expression) (poly, bool) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return constPoly(e.Value), true
	case *ast.PrefixExpression:
		if e.Operator == "-" {
			p, ok := b.polyOf(e.Right)
			return p.scale(-1), ok
		}
	case *ast.InfixExpression:
		l, ok := b.polyOf(e.Left)
		if !ok {
			return poly{}, false
		}
		r, ok := b.polyOf(e.Right)
		if !ok {
			return poly{}, false
		}
		switch e.Operator {
		case "+":
			return l.add(r), true
		case "-":
			return l.add(r.scale(-1)), true
		case "*":
			return l.mul(r), true
		case "^":
			if len(r.terms) > 0 || r.constant < 0 || r.constant > maxPower {
				b.errorf(e.Tok(), "exponent in %s must be a constant between 0 and %d", e, maxPower)
				return poly{}, false
			}
			out := constPoly(1)
			for range r.constant {
				out = out.mul(l)
			}
			return out, true
		}
	case *ast.PathExpression:
		if param := b.valueParam(e); param.IsValid() {
			return atomPoly("p"+strconv.Itoa(int(param)), b.g.ParamRef(ast.MakeRef(param))), true
		}
		b.errorf(e.Tok(), "%s is not a value parameter", e)
		return poly{}, false
	case *ast.CallExpression:
		v, ok := b.callVal(e)
		if !ok {
			return poly{}, false
		}
		return atomPoly("v"+strconv.Itoa(int(v)), v), true
	}
	b.errorf(e.Tok(), "%s is not a compile-time integer", e)
	return poly{}, false
}

// callVal lowers cast<T>(v) and calls of declared functions.
func (b *builder) callVal(ce *ast.CallExpression) (ast.ValID, bool) {
	fn := ce.Function
	if seg := fn.Segments[0]; len(fn.Segments) == 1 && seg.Name.Token.IsWord("cast") {
		if len(seg.Args) != 1 || len(ce.Arguments) != 1 {
			b.errorf(ce.Tok(), "cast expects one type argument and one value")
			return ast.NoVal, false
		}
		t := b.typeOf(seg.Args[0])
		return b.g.Cast(t, b.valOf(ce.Arguments[0])), true
	}

	ref, ok := b.resolvePath(fn)
	if !ok {
		return ast.NoVal, false
	}
	if b.g.Decl(ref.Decl).Kind != ast.FuncDecl {
		b.errorf(ce.Tok(), "%s is not a function", fn)
		return ast.NoVal, false
	}
	args := make([]ast.ValID, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = b.valOf(a)
	}
	return b.g.Call(ref, args...), true
}
