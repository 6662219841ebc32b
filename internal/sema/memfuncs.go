package sema

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

const memfuncsNamespace = "memfuncs"

func memfuncsID(tag string) ast.ID { return ast.NewSynthID(memfuncsNamespace, tag) }

// GenerateMemoryFunctions synthesizes __free_<Struct>/__clone_<Struct>
// for every struct whose transitive field set contains a heap type
// (spec §4.11): the stdlib String struct itself (the base heap shape —
// "a NativeStruct representing String"), or any user struct reaching
// it directly or through a nested struct. Constructors already clone
// their heap-typed arguments (synthesized at parse time by
// synthesizeConstructor); this phase adds the two functions those
// constructors and the OwnershipAnalyzer call by name.
//
// This runs after TypeChecker, so every new Bnd is built already
// resolved and typed rather than left for an earlier phase to fill
// in — there is no earlier phase left to do it.
func GenerateMemoryFunctions(m *ast.Module) []*errors.Report {
	structs, order := collectStructs(m)
	heap := heapStructSet(structs)
	existing := existingMemberNames(m)

	for _, id := range order {
		if !heap[id] {
			continue
		}
		st := structs[id]
		if !existing["__free_"+st.Name] {
			bnd := synthesizeFree(m, st, structs, heap)
			m.Members = append(m.Members, bnd)
			existing[bnd.Name] = true
		}
		if !existing["__clone_"+st.Name] {
			bnd := synthesizeClone(m, st, structs, heap)
			m.Members = append(m.Members, bnd)
			existing[bnd.Name] = true
		}
	}
	return nil
}

func collectStructs(m *ast.Module) (map[ast.ID]*ast.TypeStruct, []ast.ID) {
	structs := make(map[ast.ID]*ast.TypeStruct)
	var order []ast.ID
	for _, mem := range m.Members {
		if st, ok := mem.(*ast.TypeStruct); ok {
			structs[st.ID] = st
			order = append(order, st.ID)
		}
	}
	return structs, order
}

func existingMemberNames(m *ast.Module) map[string]bool {
	names := make(map[string]bool, len(m.Members))
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok {
			names[bnd.Name] = true
		}
	}
	return names
}

// heapStructSet computes the fixed point of "contains a heap type"
// over every TypeStruct in the module: String is the seed (it is a
// heap type by definition, not because its own fields are heap), and
// any other struct joins the set once one of its fields resolves to a
// struct already in it.
func heapStructSet(structs map[ast.ID]*ast.TypeStruct) map[ast.ID]bool {
	heap := make(map[ast.ID]bool)
	for id, st := range structs {
		if st.Name == "String" {
			heap[id] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for id, st := range structs {
			if heap[id] {
				continue
			}
			for _, f := range st.Fields {
				if ref, ok := f.TypeAsc.(*ast.TypeRef); ok && ref.HasResolved && heap[ref.ResolvedID] {
					heap[id] = true
					changed = true
					break
				}
			}
		}
	}
	return heap
}

// heapFieldTargetName reports the struct name a heap field's type
// resolves to, so the generated body knows which __free_/__clone_ to
// call.
func heapFieldTargetName(f *ast.Field, structs map[ast.ID]*ast.TypeStruct, heap map[ast.ID]bool) (string, bool) {
	ref, ok := f.TypeAsc.(*ast.TypeRef)
	if !ok || !ref.HasResolved || !heap[ref.ResolvedID] {
		return "", false
	}
	if st, ok := structs[ref.ResolvedID]; ok {
		return st.Name, true
	}
	return ref.Name, true
}

func structTypeRef(st *ast.TypeStruct) ast.Type {
	return &ast.TypeRef{Name: st.Name, HasResolved: true, ResolvedID: st.ID, NodeSpan: span.Invalid}
}

func resolvedTypeByName(m *ast.Module, name string) ast.Type {
	for _, mem := range m.Members {
		switch n := mem.(type) {
		case *ast.TypeDef:
			if n.Name == name {
				return &ast.TypeRef{Name: name, HasResolved: true, ResolvedID: n.ID, NodeSpan: span.Invalid}
			}
		case *ast.TypeAlias:
			if n.Name == name {
				if n.TypeSpec != nil {
					return n.TypeSpec
				}
				return &ast.TypeRef{Name: name, HasResolved: true, ResolvedID: n.ID, NodeSpan: span.Invalid}
			}
		case *ast.TypeStruct:
			if n.Name == name {
				return structTypeRef(n)
			}
		}
	}
	return &ast.TypeRef{Name: name, NodeSpan: span.Invalid}
}

func findBndByName(m *ast.Module, name string) *ast.Bnd {
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok && bnd.Name == name {
			return bnd
		}
	}
	return nil
}

// selfParam builds the `~s: Struct` / `s: Struct` receiver parameter
// shared by both generated functions.
func selfParam(tag string, st *ast.TypeStruct, consuming bool) *ast.FnParam {
	return &ast.FnParam{
		ID:        memfuncsID("param." + tag + ".s"),
		Name:      "s",
		TypeAsc:   structTypeRef(st),
		Consuming: consuming,
		Source:    ast.OriginSynth,
		NodeSpan:  span.Invalid,
	}
}

func fieldSelectRef(paramID ast.ID, field *ast.Field) *ast.Ref {
	return &ast.Ref{
		Name:        "s",
		Qualifier:   field.Name,
		ResolvedID:  paramID,
		HasResolved: true,
		TypeSpec:    field.TypeAsc,
		NodeSpan:    span.Invalid,
	}
}

// synthesizeFree builds `__free_<Struct>(~s: Struct): Unit`. String
// itself is the leaf case: none of its own fields are heap, so its
// body is a native runtime call rather than a composition of other
// __free_* calls. Every other heap struct's body chains one free call
// per heap field via LocalLet, since a Lambda body is a single
// expression and freeing more than one field needs sequencing.
func synthesizeFree(m *ast.Module, st *ast.TypeStruct, structs map[ast.ID]*ast.TypeStruct, heap map[ast.ID]bool) *ast.Bnd {
	name := "__free_" + st.Name
	param := selfParam(name, st, true)
	unitType := resolvedTypeByName(m, "Unit")

	var body *ast.Expr
	if st.Name == "String" {
		body = &ast.Expr{
			Terms:    []ast.Term{&ast.NativeImpl{MemEffectKind: ast.NoAlloc, Template: "free_string", NodeSpan: span.Invalid}},
			NodeSpan: span.Invalid,
		}
	} else {
		var calls []ast.Term
		for _, f := range st.Fields {
			targetName, ok := heapFieldTargetName(f, structs, heap)
			if !ok {
				continue
			}
			fieldRef := fieldSelectRef(param.ID, f)
			freeRef := &ast.Ref{
				Name: "__free_" + targetName, ResolvedID: memfuncsID("bnd.__free_" + targetName),
				HasResolved: true, NodeSpan: span.Invalid,
			}
			calls = append(calls, &ast.App{Fn: freeRef, Arg: fieldRef, NodeSpan: span.Invalid})
		}
		body = sequenceUnitCalls(calls)
	}

	lambda := &ast.Lambda{Params: []*ast.FnParam{param}, Body: body, TypeAsc: unitType, NodeSpan: span.Invalid}
	return &ast.Bnd{
		ID:         memfuncsID("bnd." + name),
		Name:       name,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: span.Invalid},
		TypeSpec:   functionTypeOf(lambda),
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:       ast.Destructor,
			Arity:        ast.Unary,
			ArityN:       1,
			OriginalName: name,
			MangledName:  name,
		},
		NodeSpan: span.Invalid,
	}
}

// sequenceUnitCalls chains a list of Unit-returning calls into one
// expression: a single call stands alone; more than one is nested
// right-to-left into `let _ = call0; let _ = call1; ...; lastCall`.
func sequenceUnitCalls(calls []ast.Term) *ast.Expr {
	if len(calls) == 0 {
		return &ast.Expr{Terms: []ast.Term{&ast.LiteralUnit{NodeSpan: span.Invalid}}, NodeSpan: span.Invalid}
	}
	last := len(calls) - 1
	body := &ast.Expr{Terms: []ast.Term{calls[last]}, NodeSpan: span.Invalid}
	for i := last - 1; i >= 0; i-- {
		step := &ast.LocalLet{
			Name:     "_",
			Value:    &ast.Expr{Terms: []ast.Term{calls[i]}, NodeSpan: span.Invalid},
			Body:     body,
			NodeSpan: span.Invalid,
		}
		body = &ast.Expr{Terms: []ast.Term{step}, NodeSpan: span.Invalid}
	}
	return body
}

// synthesizeClone builds `__clone_<Struct>(s: Struct): Struct`: a
// fresh instance via the struct's own constructor, calling
// `__clone_T` for heap fields and passing non-heap fields straight
// through by value (spec §4.11). String is again the leaf case.
func synthesizeClone(m *ast.Module, st *ast.TypeStruct, structs map[ast.ID]*ast.TypeStruct, heap map[ast.ID]bool) *ast.Bnd {
	name := "__clone_" + st.Name
	param := selfParam(name, st, false)
	structType := structTypeRef(st)

	var body *ast.Expr
	if st.Name == "String" {
		body = &ast.Expr{
			Terms:    []ast.Term{&ast.NativeImpl{MemEffectKind: ast.Alloc, Template: "clone_string", NodeSpan: span.Invalid}},
			NodeSpan: span.Invalid,
		}
	} else {
		ctor := findBndByName(m, "__mk_"+st.Name)
		var ctorID ast.ID
		if ctor != nil {
			ctorID = ctor.ID
		}
		var call ast.Term = &ast.Ref{Name: "__mk_" + st.Name, ResolvedID: ctorID, HasResolved: ctor != nil, NodeSpan: span.Invalid}
		for _, f := range st.Fields {
			fieldRef := fieldSelectRef(param.ID, f)
			var arg ast.Term = fieldRef
			if targetName, ok := heapFieldTargetName(f, structs, heap); ok {
				cloneRef := &ast.Ref{
					Name: "__clone_" + targetName, ResolvedID: memfuncsID("bnd.__clone_" + targetName),
					HasResolved: true, NodeSpan: span.Invalid,
				}
				arg = &ast.App{Fn: cloneRef, Arg: fieldRef, NodeSpan: span.Invalid}
			}
			call = &ast.App{Fn: call, Arg: arg, NodeSpan: span.Invalid}
		}
		body = &ast.Expr{Terms: []ast.Term{call}, NodeSpan: span.Invalid}
	}

	lambda := &ast.Lambda{Params: []*ast.FnParam{param}, Body: body, TypeAsc: structType, NodeSpan: span.Invalid}
	return &ast.Bnd{
		ID:         memfuncsID("bnd." + name),
		Name:       name,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: span.Invalid},
		TypeSpec:   functionTypeOf(lambda),
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:       ast.Function,
			Arity:        ast.Unary,
			ArityN:       1,
			OriginalName: name,
			MangledName:  name,
		},
		NodeSpan: span.Invalid,
	}
}
