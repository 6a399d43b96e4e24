// Package backend lowers the non-generic declarations of a sketch unit into
// an LLVM module that declares every function and global variable under its
// mangled symbol.
package backend

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/thiremani/kmangle/ast"
	"github.com/thiremani/kmangle/mangle"
	"github.com/thiremani/kmangle/parser"
	"github.com/thiremani/kmangle/types"
	"tinygo.org/x/go-llvm"
)

type Emitter struct {
	Context llvm.Context
	Module  llvm.Module
	Unit    *parser.Unit
	MaxLen  int // >0: symbols longer than this are replaced by their hashed alias
	Errors  []error

	owners map[string]ast.DeclID // symbol -> declaration that emitted it
}

func NewEmitter(ctx llvm.Context, unit *parser.Unit, maxLen int) *Emitter {
	g := unit.Graph
	return &Emitter{
		Context: ctx,
		Module:  ctx.NewModule(g.Decl(unit.Module).Name),
		Unit:    unit,
		MaxLen:  maxLen,
		owners:  make(map[string]ast.DeclID),
	}
}

// Emit declares every symbol of unit in a fresh context and returns the
// printed module.
func Emit(unit *parser.Unit, maxLen int) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()

	e := NewEmitter(ctx, unit, maxLen)
	defer e.Module.Dispose()
	if err := e.Declare(); err != nil {
		return "", err
	}
	return e.Module.String(), nil
}

// Declare walks the unit and adds a declaration for each function,
// initializer, accessor and module-level variable. Declarations inside a generic
// have no concrete layout and are skipped.
func (e *Emitter) Declare() error {
	g := e.Unit.Graph
	var walk func(id ast.DeclID)
	walk = func(id ast.DeclID) {
		d := g.Decl(id)
		switch {
		case d.Kind == ast.GenericDecl:
			return
		case d.Kind.IsCallable():
			e.declareFunc(id)
		case d.Kind == ast.VarDecl && g.Decl(g.Parent(id)).Kind == ast.ModuleDecl:
			e.declareGlobal(id)
		}
		for _, m := range d.Members {
			walk(m)
		}
	}
	for _, m := range g.Decl(e.Unit.File).Members {
		walk(m)
	}
	return errors.Join(e.Errors...)
}

func (e *Emitter) errorf(id ast.DeclID, format string, args ...any) {
	path := e.Unit.Graph.DeclPath(id)
	e.Errors = append(e.Errors, fmt.Errorf("%s: "+format, append([]any{path}, args...)...))
}

func (e *Emitter) symbol(id ast.DeclID) (string, bool) {
	name, err := mangle.Name(e.Unit.Graph, ast.MakeRef(id))
	if err != nil {
		e.errorf(id, "%w", err)
		return "", false
	}
	return mangle.Shorten(name, e.MaxLen), true
}

// claim reports whether name is still free, recording id as its owner. A
// second declaration under the same name is a symbol collision.
func (e *Emitter) claim(id ast.DeclID, name string) bool {
	if owner, ok := e.owners[name]; ok {
		e.errorf(id, "duplicate symbol %s, already declared by %s", name, e.Unit.Graph.DeclPath(owner))
		return false
	}
	e.owners[name] = id
	return true
}

func (e *Emitter) declareFunc(id ast.DeclID) {
	g := e.Unit.Graph
	name, ok := e.symbol(id)
	if !ok || !e.claim(id, name) {
		return
	}
	d := g.Decl(id)

	var params []llvm.Type
	if e.isMethod(id) {
		params = append(params, e.opaquePtr())
	}
	for _, pid := range d.Params {
		p := g.Decl(pid)
		t, ok := e.mapToLLVMType(p.Type)
		if !ok || t.TypeKind() == llvm.VoidTypeKind {
			e.errorf(id, "cannot lay out parameter %s: %s", p.Name, g.TypeString(p.Type))
			return
		}
		if p.Direction != ast.In {
			t = llvm.PointerType(t, 0)
		}
		params = append(params, t)
	}

	var result llvm.Type
	switch {
	case d.Kind == ast.ConstructorDecl:
		result = e.opaquePtr()
	default:
		r, ok := e.mapToLLVMType(d.Result)
		if !ok {
			e.errorf(id, "cannot lay out result %s", g.TypeString(d.Result))
			return
		}
		result = r
	}

	fnType := llvm.FunctionType(result, params, false)
	llvm.AddFunction(e.Module, name, fnType)
}

// isMethod reports whether id is called on an instance of an enclosing
// aggregate or extension, which then receives a leading this pointer.
func (e *Emitter) isMethod(id ast.DeclID) bool {
	g := e.Unit.Graph
	d := g.Decl(id)
	owner := g.Parent(id)
	if d.Kind.IsAccessor() {
		owner = g.Parent(owner)
	}
	if d.Kind == ast.ConstructorDecl || !owner.IsValid() {
		return false
	}
	k := g.Decl(owner).Kind
	return k.IsAggregate() || k == ast.ExtensionDecl
}

func (e *Emitter) declareGlobal(id ast.DeclID) {
	g := e.Unit.Graph
	name, ok := e.symbol(id)
	if !ok || !e.claim(id, name) {
		return
	}
	d := g.Decl(id)
	t, ok := e.mapToLLVMType(d.Type)
	if !ok || t.TypeKind() == llvm.VoidTypeKind {
		e.errorf(id, "cannot lay out %s", g.TypeString(d.Type))
		return
	}
	llvm.AddGlobal(e.Module, t, name)
}

func (e *Emitter) opaquePtr() llvm.Type {
	return llvm.PointerType(e.Context.Int8Type(), 0)
}

// NamedOpaquePtr returns a pointer type to a named opaque struct, creating it if needed.
func (e *Emitter) NamedOpaquePtr(name string) llvm.Type {
	st := e.Module.GetTypeByName(name)
	if st.IsNil() {
		st = e.Context.StructCreateNamed(name)
	}
	return llvm.PointerType(st, 0)
}

func (e *Emitter) mapBaseType(bt types.BaseType) llvm.Type {
	switch bt {
	case types.Void:
		return e.Context.VoidType()
	case types.Bool:
		return e.Context.Int1Type()
	case types.Int8, types.UInt8:
		return e.Context.Int8Type()
	// half travels as its 16-bit storage
	case types.Int16, types.UInt16, types.Half:
		return e.Context.Int16Type()
	case types.Int, types.UInt:
		return e.Context.Int32Type()
	case types.Int64, types.UInt64, types.IntPtr, types.UIntPtr:
		return e.Context.Int64Type()
	case types.Float:
		return e.Context.FloatType()
	case types.Double:
		return e.Context.DoubleType()
	default:
		panic(fmt.Sprintf("unsupported base type: %v", bt))
	}
}

// mapToLLVMType lowers a type whose dimensions are all constant. Scalars,
// vectors, matrices, arrays and tuples are passed by value; nominal and
// abstract types are opaque pointers.
func (e *Emitter) mapToLLVMType(id ast.TypeID) (llvm.Type, bool) {
	g := e.Unit.Graph
	t := g.Type(id)
	switch t.Kind {
	case ast.BasicType:
		return e.mapBaseType(t.Base), true
	case ast.VectorType:
		elem, ok := e.elemType(t.Elem)
		n, nok := e.constCount(t.Count)
		if !ok || !nok {
			return llvm.Type{}, false
		}
		return llvm.VectorType(elem, n), true
	case ast.MatrixType:
		elem, ok := e.elemType(t.Elem)
		rows, rok := e.constCount(t.Rows)
		cols, cok := e.constCount(t.Cols)
		if !ok || !rok || !cok {
			return llvm.Type{}, false
		}
		return llvm.ArrayType(llvm.VectorType(elem, cols), rows), true
	case ast.ArrayType:
		elem, ok := e.elemType(t.Elem)
		n, nok := e.constCount(t.Count)
		if !ok || !nok {
			return llvm.Type{}, false
		}
		return llvm.ArrayType(elem, n), true
	case ast.TupleType:
		elems := make([]llvm.Type, len(t.Elems))
		for i, m := range t.Elems {
			et, ok := e.elemType(m)
			if !ok {
				return llvm.Type{}, false
			}
			elems[i] = et
		}
		return e.Context.StructType(elems, false), true
	case ast.NamedType:
		return e.mapToLLVMType(g.Decl(t.Ref.Decl).Type)
	case ast.ModifiedType:
		return e.mapToLLVMType(t.Elem)
	case ast.BottomType:
		return e.Context.VoidType(), true
	case ast.DeclRefType:
		name, err := mangle.TypeName(g, id)
		if err != nil {
			return llvm.Type{}, false
		}
		return e.NamedOpaquePtr(name), true
	default:
		return e.opaquePtr(), true
	}
}

// elemType lowers a type stored inside another one, which cannot be void.
func (e *Emitter) elemType(id ast.TypeID) (llvm.Type, bool) {
	t, ok := e.mapToLLVMType(id)
	if !ok || t.TypeKind() == llvm.VoidTypeKind {
		return llvm.Type{}, false
	}
	return t, true
}

// constCount evaluates a dimension to a non-negative constant.
func (e *Emitter) constCount(v ast.ValID) (int, bool) {
	if !v.IsValid() {
		return 0, false
	}
	val := e.Unit.Graph.Val(v)
	switch val.Kind {
	case ast.ConstantIntVal:
	case ast.PolynomialIntVal:
		if len(val.Terms) > 0 {
			return 0, false
		}
	default:
		return 0, false
	}
	n, err := safecast.Conv[int](val.Int)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
