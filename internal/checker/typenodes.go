package checker

import (
	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// typeFromNode lowers a type annotation into the interned universe. env
// carries in-scope type parameters by name; everything else resolves
// through the symbol table.
func (c *fileChecker) typeFromNode(node ast.NodeID, env map[source.Atom]types.TypeID) types.TypeID {
	if !node.IsValid() {
		return c.b().Error
	}
	b := c.b()
	switch c.arena.Kind(node) {
	case ast.KindKeywordType:
		switch c.arena.Op(node) {
		case ast.OpAnyKeyword:
			return b.Any
		case ast.OpUnknownKeyword:
			return b.Unknown
		case ast.OpNeverKeyword:
			return b.Never
		case ast.OpVoidKeyword:
			return b.Void
		case ast.OpUndefinedKeyword:
			return b.Undefined
		case ast.OpNullKeyword:
			return b.Null
		case ast.OpStringKeyword:
			return b.String
		case ast.OpNumberKeyword:
			return b.Number
		case ast.OpBooleanKeyword:
			return b.Boolean
		case ast.OpBigIntKeyword:
			return b.BigInt
		case ast.OpSymbolKeyword:
			return b.Symbol
		case ast.OpObjectKeyword:
			return b.Object
		}
	case ast.KindTypeRef:
		return c.typeRefFromNode(node, env)
	case ast.KindUnionType:
		members := c.arena.Children(node)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = c.typeFromNode(m, env)
		}
		return c.in.MakeUnion(out...)
	case ast.KindIntersectionType:
		members := c.arena.Children(node)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = c.typeFromNode(m, env)
		}
		return c.in.MakeIntersection(out...)
	case ast.KindLiteralType:
		lit := c.arena.Child(node, 0)
		switch c.arena.Kind(lit) {
		case ast.KindStringLit:
			return c.in.MakeLiteralString(c.arena.Text(lit))
		case ast.KindNumberLit:
			return c.in.MakeLiteralNumber(c.arena.Number(lit))
		case ast.KindBigIntLit:
			return c.in.MakeLiteralBigInt(c.arena.Text(lit))
		case ast.KindTrueLit:
			return b.True
		case ast.KindFalseLit:
			return b.False
		case ast.KindNullLit:
			return b.Null
		case ast.KindPrefixUnary:
			if v, ok := c.constEvalNumber(lit); ok {
				return c.in.MakeLiteralNumber(v)
			}
		}
	case ast.KindArrayType:
		return c.in.MakeArray(c.typeFromNode(c.arena.Child(node, 0), env))
	case ast.KindTupleType:
		elems := c.arena.Children(node)
		out := make([]types.TupleElem, 0, len(elems))
		for _, e := range elems {
			el := types.TupleElem{}
			switch c.arena.Kind(e) {
			case ast.KindNamedTupleMember:
				el.Label = c.arena.Atom(c.arena.Child(e, 0))
				el.Type = c.typeFromNode(c.arena.Child(e, 1), env)
				el.Optional = c.arena.Flags(e).Has(ast.FlagOptional)
				el.Rest = c.arena.Flags(e).Has(ast.FlagRest)
			case ast.KindOptionalType:
				el.Type = c.typeFromNode(c.arena.Child(e, 0), env)
				el.Optional = true
			case ast.KindRestType:
				el.Type = c.typeFromNode(c.arena.Child(e, 0), env)
				el.Rest = true
			default:
				el.Type = c.typeFromNode(e, env)
			}
			out = append(out, el)
		}
		return c.in.MakeTuple(out...)
	case ast.KindFunctionType:
		sig := c.functionTypeSignature(node, env)
		return c.in.MakeFunction(sig)
	case ast.KindConstructorType:
		sig := c.functionTypeSignature(node, env)
		return c.in.MakeObject(types.ObjectInfo{Constructs: []types.SignatureID{sig}})
	case ast.KindTypeLiteral:
		var info types.ObjectInfo
		for _, m := range c.arena.Children(node) {
			c.addMember(&info, m, env)
		}
		return c.in.MakeObject(info)
	case ast.KindConditionalType:
		check := c.typeFromNode(c.arena.Child(node, 0), env)
		extEnv := env
		// Infer bindings in the extends clause extend the environment of
		// the true branch.
		inferNames := collectInferNames(c.arena, c.arena.Child(node, 1))
		if len(inferNames) > 0 {
			extEnv = make(map[source.Atom]types.TypeID, len(env)+len(inferNames))
			for k, v := range env {
				extEnv[k] = v
			}
			for _, n := range inferNames {
				extEnv[n] = c.in.MakeInfer(types.TypeParamInfo{Name: n})
			}
		}
		return c.in.MakeConditional(types.CondInfo{
			Check:        check,
			Extends:      c.typeFromNode(c.arena.Child(node, 1), extEnv),
			WhenTrue:     c.typeFromNode(c.arena.Child(node, 2), extEnv),
			WhenFalse:    c.typeFromNode(c.arena.Child(node, 3), env),
			Distributive: c.in.KindOf(check) == types.KindTypeParameter,
		})
	case ast.KindInferType:
		tp := c.arena.Child(node, 0)
		name := c.arena.Atom(c.arena.Child(tp, 0))
		if t, ok := env[name]; ok {
			return t
		}
		return c.in.MakeInfer(types.TypeParamInfo{Name: name})
	case ast.KindMappedType:
		tp := c.arena.Child(node, 0)
		name := c.arena.Atom(c.arena.Child(tp, 0))
		param := c.in.MakeTypeParameter(types.TypeParamInfo{Name: name})
		inner := make(map[source.Atom]types.TypeID, len(env)+1)
		for k, v := range env {
			inner[k] = v
		}
		inner[name] = param
		f := c.arena.Flags(node)
		info := types.MappedInfo{
			TypeParam: param,
			Keys:      c.typeFromNode(c.arena.Child(tp, 1), env),
			Value:     c.typeFromNode(c.arena.Child(node, 2), inner),
		}
		if nameType := c.arena.Child(node, 1); nameType.IsValid() {
			info.NameType = c.typeFromNode(nameType, inner)
		}
		switch {
		case f.Has(ast.FlagMappedPlusOptional):
			info.Optional = types.MappedAdd
		case f.Has(ast.FlagMappedMinusOptional):
			info.Optional = types.MappedStrip
		}
		switch {
		case f.Has(ast.FlagMappedPlusReadonly):
			info.Readonly = types.MappedAdd
		case f.Has(ast.FlagMappedMinusReadonly):
			info.Readonly = types.MappedStrip
		}
		return c.in.MakeMapped(info)
	case ast.KindIndexedAccessType:
		return c.in.MakeIndexedAccess(
			c.typeFromNode(c.arena.Child(node, 0), env),
			c.typeFromNode(c.arena.Child(node, 1), env))
	case ast.KindTypeOperator:
		operand := c.typeFromNode(c.arena.Child(node, 0), env)
		switch c.arena.Op(node) {
		case ast.OpKeyOf:
			return c.in.MakeKeyOf(operand)
		case ast.OpReadonlyOp:
			return c.in.MakeReadonly(operand)
		case ast.OpUnique:
			return c.b().Symbol
		}
	case ast.KindTypeQuery:
		nameNode := c.arena.Child(node, 0)
		if sym, ok := c.resolveName(nameNode, c.arena.Atom(nameNode)); ok {
			return c.in.MakeTypeQuery(uint32(sym))
		}
		if sym, ok := c.lookupFileScope(c.arena.Atom(nameNode)); ok {
			return c.in.MakeTypeQuery(uint32(sym))
		}
		c.errorAt(diag.CannotFindName, nameNode, "Cannot find name '%s'.", c.arena.Text(nameNode))
	case ast.KindThisType:
		return b.This
	case ast.KindTemplateLiteralType:
		children := c.arena.Children(node)
		texts := []source.Atom{c.arena.Atom(children[0])}
		var holes []types.TypeID
		for _, span := range children[1:] {
			holes = append(holes, c.typeFromNode(c.arena.Child(span, 0), env))
			texts = append(texts, c.arena.Atom(c.arena.Child(span, 1)))
		}
		return c.in.MakeTemplate(types.TemplateInfo{Texts: texts, Holes: holes})
	case ast.KindParenType:
		return c.typeFromNode(c.arena.Child(node, 0), env)
	case ast.KindTypePredicate:
		return b.Boolean
	}
	return c.b().Error
}

func collectInferNames(a *ast.Arena, node ast.NodeID) []source.Atom {
	var out []source.Atom
	a.Walk(node, func(n ast.NodeID) bool {
		if a.Kind(n) == ast.KindInferType {
			out = append(out, a.Atom(a.Child(a.Child(n, 0), 0)))
		}
		return true
	})
	return out
}

func (c *fileChecker) functionTypeSignature(node ast.NodeID, env map[source.Atom]types.TypeID) types.SignatureID {
	// FunctionType layout: [typeParams, params, returnType]. The signature is
	// built directly from those child positions.
	inner := env
	var tps []types.TypeID
	if list := c.arena.Child(node, 0); list.IsValid() {
		tpEnv := c.paramEnv(list)
		if len(tpEnv) > 0 {
			inner = make(map[source.Atom]types.TypeID, len(env)+len(tpEnv))
			for k, v := range env {
				inner[k] = v
			}
			for k, v := range tpEnv {
				inner[k] = v
				tps = append(tps, v)
			}
		}
	}
	var params []types.Param
	for _, p := range c.arena.ListItems(c.arena.Child(node, 1)) {
		pf := c.arena.Flags(p)
		params = append(params, types.Param{
			Name:     c.arena.Atom(c.arena.DeclName(p)),
			Type:     c.typeFromNode(c.arena.DeclType(p), inner),
			Optional: pf.Has(ast.FlagOptional),
			Rest:     pf.Has(ast.FlagRest),
			IsThis:   pf.Has(ast.FlagThisParam),
		})
	}
	return c.in.MakeSignature(types.SignatureInfo{
		TypeParams: tps,
		Params:     params,
		Return:     c.typeFromNode(c.arena.Child(node, 2), inner),
	})
}

// typeRefFromNode resolves `Name<Args>` references.
func (c *fileChecker) typeRefFromNode(node ast.NodeID, env map[source.Atom]types.TypeID) types.TypeID {
	nameNode := c.arena.Child(node, 0)
	typeArgs := c.arena.Child(node, 1)
	name := c.arena.Atom(nameNode)

	if t, ok := env[name]; ok {
		return t
	}
	// Built-in generic shorthand.
	if text := c.arena.Text(nameNode); text == "Array" || text == "ReadonlyArray" {
		args := c.arena.ListItems(typeArgs)
		if len(args) == 1 {
			elem := c.typeFromNode(args[0], env)
			arr := c.in.MakeArray(elem)
			if text == "ReadonlyArray" {
				return c.in.MakeReadonly(arr)
			}
			return arr
		}
	}
	sym, found := c.resolveTypeName(nameNode, name)
	if !found {
		c.errorAt(diag.CannotFindName, nameNode, "Cannot find name '%s'.", c.arena.Text(nameNode))
		return c.b().Error
	}
	return c.typeReference(sym, typeArgs, env)
}

func (c *fileChecker) resolveTypeName(use ast.NodeID, name source.Atom) (symbols.SymbolID, bool) {
	if sym, ok := c.resolveName(use, name); ok {
		if c.bind.Symbols.Get(sym).Flags.IsType() {
			return sym, true
		}
		return sym, true
	}
	return c.lookupFileScope(name)
}

func (c *fileChecker) lookupFileScope(name source.Atom) (symbols.SymbolID, bool) {
	sym, _, ok := c.bind.Scopes.Lookup(c.bind.FileScope, name)
	return sym, ok
}

// typeReference builds the type for a resolved type symbol, wrapping
// generic uses in an Application for lazy instantiation.
func (c *fileChecker) typeReference(sym symbols.SymbolID, typeArgs ast.NodeID, env map[source.Atom]types.TypeID) types.TypeID {
	s := c.bind.Symbols.Get(sym)
	if s.Flags&symbols.FlagTypeParameter != 0 {
		for _, decl := range s.Decls {
			return c.typeParamType(decl)
		}
	}
	def := c.defFor(sym)
	lazy := c.in.MakeLazy(def)
	args := c.arena.ListItems(typeArgs)
	if len(args) == 0 {
		if len(c.DefTypeParams(def)) == 0 {
			return lazy
		}
		return c.in.MakeApplication(lazy, def, nil)
	}
	out := make([]types.TypeID, len(args))
	for i, a := range args {
		out[i] = c.typeFromNode(a, env)
	}
	return c.in.MakeApplication(lazy, def, out)
}
