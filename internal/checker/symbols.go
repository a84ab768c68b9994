package checker

import (
	"tyco/internal/ast"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// typeOfSymbol computes the value-namespace type of a symbol, memoized.
func (c *fileChecker) typeOfSymbol(sym symbols.SymbolID) types.TypeID {
	if t, ok := c.res.SymbolTypes[sym]; ok {
		return t
	}
	// Break self-referential initializer cycles with any.
	c.res.SymbolTypes[sym] = c.b().Any
	t := c.computeSymbolType(sym)
	c.res.SymbolTypes[sym] = t
	return t
}

func (c *fileChecker) computeSymbolType(sym symbols.SymbolID) types.TypeID {
	s := c.bind.Symbols.Get(sym)
	b := c.b()
	if s == nil {
		return b.Error
	}
	switch {
	case s.Flags&symbols.FlagEnumMember != 0:
		// Realizing the parent enum fills the member types in.
		if s.Parent.IsValid() {
			c.ResolveDef(c.defFor(s.Parent))
			if t, ok := c.res.SymbolTypes[sym]; ok && t != b.Any {
				return t
			}
		}
		return b.Number
	case s.Flags&symbols.FlagEnum != 0:
		return c.ResolveDef(c.defFor(sym))
	case s.Flags&symbols.FlagClass != 0:
		return c.classValueType(sym)
	case s.Flags&(symbols.FlagFunction|symbols.FlagMethod) != 0:
		return c.functionValueType(s)
	case s.Flags&symbols.FlagNamespaceModule != 0:
		return c.namespaceValueType(s)
	case s.Flags&symbols.FlagAccessor != 0:
		for _, decl := range s.Decls {
			if c.arena.Kind(decl) == ast.KindGetAccessor {
				if rt := c.arena.FnReturnType(decl); rt.IsValid() {
					return c.typeFromNode(rt, nil)
				}
			}
		}
		return b.Any
	case s.Flags&symbols.FlagTypeParameter != 0:
		for _, decl := range s.Decls {
			return c.typeParamType(decl)
		}
		return b.Error
	case s.Flags&(symbols.FlagsVariable|symbols.FlagProperty) != 0:
		return c.variableType(s)
	case s.Flags&symbols.FlagAlias != 0:
		// Cross-module alias targets resolve through the driver; a lone
		// file sees them as any.
		return b.Any
	}
	return b.Error
}

func (c *fileChecker) variableType(s *symbols.Symbol) types.TypeID {
	decl := s.ValueDecl
	if !decl.IsValid() && len(s.Decls) > 0 {
		decl = s.Decls[0]
	}
	if !decl.IsValid() {
		return c.b().Error
	}
	if tn := c.arena.DeclType(decl); tn.IsValid() {
		return c.typeFromNode(tn, nil)
	}
	if init := c.arena.DeclInit(decl); init.IsValid() {
		t := c.checkExpr(init, types.NoTypeID)
		if c.isConstDecl(decl) {
			return c.unfresh(t)
		}
		return c.widenLiteral(c.unfresh(t))
	}
	if s.Flags&symbols.FlagParameter != 0 {
		return c.b().Any
	}
	if c.opts.StrictNullChecks {
		return c.b().Any
	}
	return c.b().Any
}

func (c *fileChecker) isConstDecl(decl ast.NodeID) bool {
	p := c.arena.Parent(decl)
	for p.IsValid() {
		if c.arena.Kind(p) == ast.KindVarStatement {
			return c.arena.Flags(p).Has(ast.FlagConst)
		}
		p = c.arena.Parent(p)
	}
	return false
}

// functionValueType builds the callable type from a function symbol's
// declarations. Body-less declarations are the overload set; when present
// they alone form the public signatures.
func (c *fileChecker) functionValueType(s *symbols.Symbol) types.TypeID {
	var overloads, impls []ast.NodeID
	for _, decl := range s.Decls {
		if !c.arena.Kind(decl).IsFunctionLike() {
			continue
		}
		if c.arena.FnBody(decl).IsValid() {
			impls = append(impls, decl)
		} else {
			overloads = append(overloads, decl)
		}
	}
	sigDecls := overloads
	if len(sigDecls) == 0 {
		sigDecls = impls
	}
	var calls []types.SignatureID
	for _, decl := range sigDecls {
		calls = append(calls, c.signatureFromNode(decl, nil))
	}
	if len(calls) == 0 {
		return c.b().Error
	}
	return c.in.MakeFunction(calls...)
}

// classValueType builds the static (constructor) side of a class.
func (c *fileChecker) classValueType(sym symbols.SymbolID) types.TypeID {
	if !sym.IsValid() {
		return c.b().Error
	}
	s := c.bind.Symbols.Get(sym)
	instance := c.in.MakeLazy(c.defFor(sym))
	var info types.ObjectInfo
	info.Symbol = uint32(sym)

	var ctorSigs []types.SignatureID
	for _, decl := range s.Decls {
		if !c.arena.Kind(decl).IsClassLike() {
			continue
		}
		env := c.paramEnv(c.arena.ClassTypeParams(decl))
		for _, m := range c.arena.ListItems(c.arena.ClassMembers(decl)) {
			mf := c.arena.Flags(m)
			switch c.arena.Kind(m) {
			case ast.KindConstructorDecl:
				sig := c.in.Signature(c.signatureFromNode(m, env))
				ctorSigs = append(ctorSigs, c.in.MakeSignature(types.SignatureInfo{
					TypeParams: sig.TypeParams,
					Params:     sig.Params,
					Return:     instance,
				}))
			case ast.KindPropertyDecl:
				if !mf.Has(ast.FlagStatic) {
					continue
				}
				t := c.typeFromNode(c.arena.DeclType(m), env)
				if !c.arena.DeclType(m).IsValid() {
					if init := c.arena.DeclInit(m); init.IsValid() {
						t = c.widenLiteral(c.unfresh(c.checkExpr(init, types.NoTypeID)))
					} else {
						t = c.b().Any
					}
				}
				info.Props = append(info.Props, types.Prop{
					Name:     c.arena.Atom(c.arena.DeclName(m)),
					Type:     t,
					Readonly: mf.Has(ast.FlagReadonly),
				})
			case ast.KindMethodDecl:
				if !mf.Has(ast.FlagStatic) {
					continue
				}
				info.Props = append(info.Props, types.Prop{
					Name:     c.arena.Atom(c.arena.FnName(m)),
					Type:     c.in.MakeFunction(c.signatureFromNode(m, env)),
					IsMethod: true,
				})
			}
		}
	}
	if len(ctorSigs) == 0 {
		ctorSigs = append(ctorSigs, c.in.MakeSignature(types.SignatureInfo{Return: instance}))
	}
	info.Constructs = ctorSigs
	return c.in.MakeObject(info)
}

// namespaceValueType exposes a namespace's exported values as an object.
func (c *fileChecker) namespaceValueType(s *symbols.Symbol) types.TypeID {
	var info types.ObjectInfo
	s.Exports.ForEach(func(name source.Atom, member symbols.SymbolID) {
		ms := c.bind.Symbols.Get(member)
		if ms == nil || !ms.Flags.IsValue() {
			return
		}
		info.Props = append(info.Props, types.Prop{
			Name: name,
			Type: c.typeOfSymbol(member),
		})
	})
	return c.in.MakeObject(info)
}

// memberValueType resolves container.member accesses through export tables.
func (c *fileChecker) memberValueType(container, member symbols.SymbolID) types.TypeID {
	cs := c.bind.Symbols.Get(container)
	if cs != nil && cs.Flags&symbols.FlagEnum != 0 {
		// Touch the enum so member literal types exist.
		c.ResolveDef(c.defFor(container))
	}
	return c.typeOfSymbol(member)
}
