package checker

import (
	"tyco/internal/ast"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// realizeSymbolType builds the structural realization of a type-namespace
// symbol: merged interfaces, class instance shapes, alias bodies and enums.
func (c *fileChecker) realizeSymbolType(sym symbols.SymbolID, def types.DefID) types.TypeID {
	s := c.bind.Symbols.Get(sym)
	if s == nil {
		return c.b().Error
	}
	switch {
	case s.Flags&symbols.FlagInterface != 0:
		return c.realizeInterface(s)
	case s.Flags&symbols.FlagClass != 0:
		return c.instanceTypeOfClass(sym)
	case s.Flags&symbols.FlagTypeAlias != 0:
		for _, decl := range s.Decls {
			if c.arena.Kind(decl) == ast.KindTypeAliasDecl {
				env := c.paramEnv(c.arena.Child(decl, 1))
				return c.typeFromNode(c.arena.Child(decl, 2), env)
			}
		}
	case s.Flags&symbols.FlagEnum != 0:
		return c.enumType(sym, def)
	case s.Flags&symbols.FlagTypeParameter != 0:
		for _, decl := range s.Decls {
			return c.typeParamType(decl)
		}
	}
	return c.b().Error
}

// paramEnv binds a declaration's type parameters by name for annotation
// resolution within its body.
func (c *fileChecker) paramEnv(list ast.NodeID) map[source.Atom]types.TypeID {
	items := c.arena.ListItems(list)
	if len(items) == 0 {
		return nil
	}
	env := make(map[source.Atom]types.TypeID, len(items))
	for _, tp := range items {
		name := c.arena.Atom(c.arena.Child(tp, 0))
		env[name] = c.typeParamType(tp)
	}
	return env
}

// typeParamType interns the type-parameter type for a declaration site.
func (c *fileChecker) typeParamType(decl ast.NodeID) types.TypeID {
	sym := c.bind.DeclSymbols[decl]
	if sym.IsValid() {
		if t, ok := c.paramTypes[sym]; ok {
			return t
		}
	}
	info := types.TypeParamInfo{Name: c.arena.Atom(c.arena.Child(decl, 0))}
	if constraint := c.arena.Child(decl, 1); constraint.IsValid() {
		info.Constraint = c.typeFromNode(constraint, nil)
	}
	if def := c.arena.Child(decl, 2); def.IsValid() {
		info.Default = c.typeFromNode(def, nil)
	}
	t := c.in.MakeTypeParameter(info)
	if sym.IsValid() {
		c.paramTypes[sym] = t
	}
	return t
}

// realizeInterface merges every interface declaration of the symbol into a
// single object shape, honoring heritage clauses as intersections.
func (c *fileChecker) realizeInterface(s *symbols.Symbol) types.TypeID {
	var info types.ObjectInfo
	var bases []types.TypeID
	for _, decl := range s.Decls {
		if c.arena.Kind(decl) != ast.KindInterfaceDecl {
			continue
		}
		env := c.paramEnv(c.arena.ClassTypeParams(decl))
		for _, h := range c.arena.ListItems(c.arena.ClassHeritage(decl)) {
			for _, e := range c.arena.Children(h) {
				bases = append(bases, c.typeFromHeritage(e, env))
			}
		}
		for _, m := range c.arena.ListItems(c.arena.ClassMembers(decl)) {
			c.addMember(&info, m, env)
		}
	}
	own := c.in.MakeObject(info)
	if len(bases) == 0 {
		return own
	}
	return c.in.MakeIntersection(append([]types.TypeID{own}, bases...)...)
}

func (c *fileChecker) typeFromHeritage(e ast.NodeID, env map[source.Atom]types.TypeID) types.TypeID {
	// ExpressionWithTypeArgs: [expr, typeArgs]
	expr := c.arena.Child(e, 0)
	typeArgs := c.arena.Child(e, 1)
	name := c.arena.Atom(expr)
	if t, ok := env[name]; ok {
		return t
	}
	if sym, found := c.resolveTypeName(expr, name); found {
		return c.typeReference(sym, typeArgs, env)
	}
	return c.b().Error
}

// addMember folds one interface/type-literal member into an object shape.
func (c *fileChecker) addMember(info *types.ObjectInfo, m ast.NodeID, env map[source.Atom]types.TypeID) {
	flags := c.arena.Flags(m)
	switch c.arena.Kind(m) {
	case ast.KindPropertySignature, ast.KindPropertyDecl:
		t := c.typeFromNode(c.arena.DeclType(m), env)
		if !c.arena.DeclType(m).IsValid() {
			t = c.b().Any
		}
		info.Props = append(info.Props, types.Prop{
			Name:     c.arena.Atom(c.arena.DeclName(m)),
			Type:     t,
			Optional: flags.Has(ast.FlagOptional),
			Readonly: flags.Has(ast.FlagReadonly),
		})
	case ast.KindMethodSignature, ast.KindMethodDecl:
		sig := c.signatureFromNode(m, env)
		fn := c.in.MakeFunction(sig)
		info.Props = append(info.Props, types.Prop{
			Name:     c.arena.Atom(c.arena.FnName(m)),
			Type:     fn,
			Optional: flags.Has(ast.FlagOptional),
			IsMethod: true,
		})
	case ast.KindCallSignature:
		info.Calls = append(info.Calls, c.signatureFromNode(m, env))
	case ast.KindConstructSignature:
		info.Constructs = append(info.Constructs, c.signatureFromNode(m, env))
	case ast.KindIndexSignature:
		param := c.arena.Child(m, 0)
		keyType := c.typeFromNode(c.arena.DeclType(param), env)
		valType := c.typeFromNode(c.arena.Child(m, 1), env)
		if keyType == c.b().Number {
			info.NumberIndex = valType
		} else {
			info.StringIndex = valType
		}
	case ast.KindGetAccessor:
		info.Props = append(info.Props, types.Prop{
			Name:     c.arena.Atom(c.arena.FnName(m)),
			Type:     c.typeFromNode(c.arena.FnReturnType(m), env),
			Readonly: true,
		})
	case ast.KindSetAccessor:
		params := c.arena.ListItems(c.arena.FnParams(m))
		var wt types.TypeID
		if len(params) > 0 {
			wt = c.typeFromNode(c.arena.DeclType(params[0]), env)
		}
		info.Props = append(info.Props, types.Prop{
			Name:      c.arena.Atom(c.arena.FnName(m)),
			WriteType: wt,
		})
	}
}

// signatureFromNode builds a signature from any function-like node.
func (c *fileChecker) signatureFromNode(m ast.NodeID, env map[source.Atom]types.TypeID) types.SignatureID {
	inner := env
	var tps []types.TypeID
	if list := c.arena.FnTypeParams(m); list.IsValid() {
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
	for _, p := range c.arena.ListItems(c.arena.FnParams(m)) {
		pf := c.arena.Flags(p)
		t := c.typeFromNode(c.arena.DeclType(p), inner)
		if !c.arena.DeclType(p).IsValid() {
			t = c.b().Any
		}
		params = append(params, types.Param{
			Name:     c.arena.Atom(c.arena.DeclName(p)),
			Type:     t,
			Optional: pf.Has(ast.FlagOptional) || c.arena.DeclInit(p).IsValid(),
			Rest:     pf.Has(ast.FlagRest),
			IsThis:   pf.Has(ast.FlagThisParam),
		})
	}
	ret := c.b().Any
	var pred *types.Predicate
	if rt := c.arena.FnReturnType(m); rt.IsValid() {
		if c.arena.Kind(rt) == ast.KindTypePredicate {
			pred = c.predicateFromNode(rt, params, inner)
			ret = c.b().Boolean
			if pred != nil && pred.Asserts {
				ret = c.b().Void
			}
		} else {
			ret = c.typeFromNode(rt, inner)
		}
	}
	return c.in.MakeSignature(types.SignatureInfo{
		TypeParams: tps,
		Params:     params,
		Return:     ret,
		Predicate:  pred,
	})
}

func (c *fileChecker) predicateFromNode(rt ast.NodeID, params []types.Param, env map[source.Atom]types.TypeID) *types.Predicate {
	nameNode := c.arena.Child(rt, 0)
	pred := &types.Predicate{
		Asserts:    c.arena.Flags(rt).Has(ast.FlagAsserts),
		ParamIndex: -1,
	}
	if c.arena.Kind(nameNode) == ast.KindIdent {
		name := c.arena.Atom(nameNode)
		for i, p := range params {
			if p.Name == name {
				pred.ParamIndex = int32(i)
			}
		}
	}
	if tn := c.arena.Child(rt, 1); tn.IsValid() {
		pred.Type = c.typeFromNode(tn, env)
	}
	return pred
}

// instanceTypeOfClass realizes the instance side of a class.
func (c *fileChecker) instanceTypeOfClass(sym symbols.SymbolID) types.TypeID {
	s := c.bind.Symbols.Get(sym)
	var info types.ObjectInfo
	info.Flags |= types.ObjectClassInstance
	info.Symbol = uint32(sym)
	var bases []types.TypeID
	for _, decl := range s.Decls {
		if !c.arena.Kind(decl).IsClassLike() {
			continue
		}
		env := c.paramEnv(c.arena.ClassTypeParams(decl))
		for _, h := range c.arena.ListItems(c.arena.ClassHeritage(decl)) {
			if c.arena.Op(h) != ast.OpExtends {
				continue
			}
			for _, e := range c.arena.Children(h) {
				bases = append(bases, c.typeFromHeritage(e, env))
			}
		}
		for _, m := range c.arena.ListItems(c.arena.ClassMembers(decl)) {
			if c.arena.Flags(m).Has(ast.FlagStatic) {
				continue
			}
			switch c.arena.Kind(m) {
			case ast.KindPropertyDecl:
				t := c.typeFromNode(c.arena.DeclType(m), env)
				if !c.arena.DeclType(m).IsValid() {
					if init := c.arena.DeclInit(m); init.IsValid() {
						t = c.widenLiteral(c.checkExpr(init, types.NoTypeID))
					} else {
						t = c.b().Any
					}
				}
				vis := types.Public
				if c.arena.Flags(m).Has(ast.FlagPrivate) {
					vis = types.Private
				} else if c.arena.Flags(m).Has(ast.FlagProtected) {
					vis = types.Protected
				}
				info.Props = append(info.Props, types.Prop{
					Name:       c.arena.Atom(c.arena.DeclName(m)),
					Type:       t,
					Optional:   c.arena.Flags(m).Has(ast.FlagOptional),
					Readonly:   c.arena.Flags(m).Has(ast.FlagReadonly),
					Visibility: vis,
				})
			case ast.KindMethodDecl, ast.KindGetAccessor, ast.KindSetAccessor:
				c.addMember(&info, m, env)
			}
		}
	}
	own := c.in.MakeObject(info)
	if len(bases) == 0 {
		return own
	}
	return c.in.MakeIntersection(append([]types.TypeID{own}, bases...)...)
}

// enumType folds member initializers, auto-increments numeric members, and
// interns the nominal enum type over the member union.
func (c *fileChecker) enumType(sym symbols.SymbolID, def types.DefID) types.TypeID {
	s := c.bind.Symbols.Get(sym)
	var memberTypes []types.TypeID
	next := 0.0
	autoOK := true
	for _, decl := range s.Decls {
		if c.arena.Kind(decl) != ast.KindEnumDecl {
			continue
		}
		for _, m := range c.arena.ListItems(c.arena.Child(decl, 1)) {
			var mt types.TypeID
			if init := c.arena.Child(m, 1); init.IsValid() {
				if v, ok := c.constEvalNumber(init); ok {
					mt = c.in.MakeLiteralNumber(v)
					next = v + 1
					autoOK = true
				} else if sv, ok := c.constEvalString(init); ok {
					mt = c.in.MakeLiteralString(sv)
					autoOK = false
				} else {
					mt = c.b().Number
					autoOK = false
				}
			} else if autoOK {
				mt = c.in.MakeLiteralNumber(next)
				next++
			} else {
				mt = c.b().Number
			}
			memberTypes = append(memberTypes, mt)
			if msym := c.bind.DeclSymbols[m]; msym.IsValid() {
				c.res.SymbolTypes[msym] = mt
			}
		}
	}
	return c.in.MakeEnum(def, c.in.MakeUnion(memberTypes...))
}

// constEvalNumber folds numeric constant expressions for enum members.
func (c *fileChecker) constEvalNumber(node ast.NodeID) (float64, bool) {
	switch c.arena.Kind(node) {
	case ast.KindNumberLit:
		return c.arena.Number(node), true
	case ast.KindPrefixUnary:
		v, ok := c.constEvalNumber(c.arena.Child(node, 0))
		if !ok {
			return 0, false
		}
		switch c.arena.Op(node) {
		case ast.OpUnaryMinus:
			return -v, true
		case ast.OpUnaryPlus:
			return v, true
		}
	case ast.KindBinary:
		l, ok1 := c.constEvalNumber(c.arena.BinLHS(node))
		r, ok2 := c.constEvalNumber(c.arena.BinRHS(node))
		if !ok1 || !ok2 {
			return 0, false
		}
		switch c.arena.Op(node) {
		case ast.OpPlus:
			return l + r, true
		case ast.OpMinus:
			return l - r, true
		case ast.OpStar:
			return l * r, true
		case ast.OpShl:
			return float64(int64(l) << uint(int64(r))), true
		case ast.OpShr:
			return float64(int64(l) >> uint(int64(r))), true
		case ast.OpPipe:
			return float64(int64(l) | int64(r)), true
		case ast.OpAmp:
			return float64(int64(l) & int64(r)), true
		}
	case ast.KindParen:
		return c.constEvalNumber(c.arena.Child(node, 0))
	}
	return 0, false
}

func (c *fileChecker) constEvalString(node ast.NodeID) (string, bool) {
	if c.arena.Kind(node) == ast.KindStringLit {
		return c.arena.Text(node), true
	}
	return "", false
}
