package checker

import (
	"tyco/internal/ast"
	"tyco/internal/diag"
	"tyco/internal/source"
	"tyco/internal/symbols"
	"tyco/internal/types"
)

// checkExpr computes the type of an expression. contextual is the type made
// available by the syntactic context (NoTypeID when absent); it guides
// object-literal property typing, parameter inference and widening.
func (c *fileChecker) checkExpr(node ast.NodeID, contextual types.TypeID) types.TypeID {
	t := c.computeExpr(node, contextual)
	if node.IsValid() {
		c.res.ExprTypes[node] = t
	}
	return t
}

func (c *fileChecker) computeExpr(node ast.NodeID, contextual types.TypeID) types.TypeID {
	if !node.IsValid() {
		return c.b().Error
	}
	b := c.b()
	switch c.arena.Kind(node) {
	case ast.KindNumberLit:
		return c.in.MakeLiteralNumber(c.arena.Number(node))
	case ast.KindStringLit, ast.KindNoSubTemplateLit:
		return c.in.MakeLiteralString(c.arena.Text(node))
	case ast.KindBigIntLit:
		return c.in.MakeLiteralBigInt(c.arena.Text(node))
	case ast.KindTrueLit:
		return b.True
	case ast.KindFalseLit:
		return b.False
	case ast.KindNullLit:
		if c.opts.StrictNullChecks {
			return b.Null
		}
		return b.Any
	case ast.KindRegexLit:
		return b.Object
	case ast.KindIdent:
		return c.checkIdent(node)
	case ast.KindThisExpr:
		return c.checkThis(node)
	case ast.KindSuperExpr:
		return b.Any
	case ast.KindTemplateExpr:
		for _, span := range c.arena.Children(node)[1:] {
			c.checkExpr(c.arena.Child(span, 0), types.NoTypeID)
		}
		return b.String
	case ast.KindArrayLit:
		return c.checkArrayLit(node, contextual)
	case ast.KindObjectLit:
		return c.checkObjectLit(node, contextual)
	case ast.KindPropertyAccess:
		return c.checkPropertyAccess(node)
	case ast.KindElementAccess:
		return c.checkElementAccess(node)
	case ast.KindCall:
		return c.checkCall(node, false)
	case ast.KindNew:
		return c.checkCall(node, true)
	case ast.KindTaggedTemplate:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.Any
	case ast.KindParen:
		return c.checkExpr(c.arena.Child(node, 0), contextual)
	case ast.KindArrowFunction, ast.KindFunctionExpr:
		return c.checkFunctionExpr(node, contextual)
	case ast.KindClassExpr:
		c.checkClassBody(node)
		return c.classValueType(c.bind.DeclSymbols[node])
	case ast.KindPrefixUnary:
		return c.checkPrefixUnary(node)
	case ast.KindPostfixUnary:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.Number
	case ast.KindBinary:
		return c.checkBinary(node, contextual)
	case ast.KindConditionalExpr:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		t1 := c.checkExpr(c.arena.Child(node, 1), contextual)
		t2 := c.checkExpr(c.arena.Child(node, 2), contextual)
		return c.in.MakeUnion(c.unfresh(t1), c.unfresh(t2))
	case ast.KindAwait:
		operand := c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return c.awaitedType(operand)
	case ast.KindYield:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.Any
	case ast.KindTypeOfExpr:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.String
	case ast.KindVoidExpr:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.Undefined
	case ast.KindDeleteExpr:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return b.Boolean
	case ast.KindAsExpr:
		c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return c.typeFromNode(c.arena.Child(node, 1), nil)
	case ast.KindSatisfiesExpr:
		t := c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		want := c.typeFromNode(c.arena.Child(node, 1), nil)
		c.checkAssignable(t, want, c.arena.Child(node, 0), diag.NotAssignable)
		return t
	case ast.KindNonNullExpr:
		t := c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
		return c.removeNullish(t)
	case ast.KindSpreadElement:
		return c.checkExpr(c.arena.Child(node, 0), contextual)
	}
	return b.Error
}

func (c *fileChecker) checkIdent(node ast.NodeID) types.TypeID {
	name := c.arena.Atom(node)
	text := c.arena.Text(node)
	if text == "undefined" {
		return c.b().Undefined
	}
	sym, ok := c.resolveName(node, name)
	if !ok {
		c.errorAt(diag.CannotFindName, node, "Cannot find name '%s'.", text)
		return c.b().Error
	}
	c.res.UseSymbols[node] = sym
	declared := c.typeOfSymbol(sym)
	return c.narrowedTypeAt(sym, declared, node)
}

func (c *fileChecker) checkThis(node ast.NodeID) types.TypeID {
	for p := c.arena.Parent(node); p.IsValid(); p = c.arena.Parent(p) {
		if c.arena.Kind(p).IsClassLike() {
			if sym := c.bind.DeclSymbols[p]; sym.IsValid() {
				return c.in.MakeLazy(c.defFor(sym))
			}
		}
	}
	return c.b().Any
}

func (c *fileChecker) checkArrayLit(node ast.NodeID, contextual types.TypeID) types.TypeID {
	elems := c.arena.Children(node)
	ctxElem := types.NoTypeID
	wantTuple := false
	if contextual.IsValid() {
		ev := c.sub.Evaluator().Evaluate(contextual)
		switch c.in.KindOf(ev) {
		case types.KindArray:
			ctxElem = c.in.MustLookup(ev).Elem
		case types.KindTuple:
			wantTuple = true
		}
	}
	if len(elems) == 0 {
		if ctxElem.IsValid() {
			return c.in.MakeArray(ctxElem)
		}
		return c.in.MakeArray(c.b().Never)
	}
	if wantTuple {
		out := make([]types.TupleElem, 0, len(elems))
		for _, e := range elems {
			out = append(out, types.TupleElem{Type: c.unfresh(c.checkExpr(e, types.NoTypeID))})
		}
		return c.in.MakeTuple(out...)
	}
	parts := make([]types.TypeID, 0, len(elems))
	for _, e := range elems {
		t := c.checkExpr(e, ctxElem)
		if !ctxElem.IsValid() {
			t = c.widenLiteral(t)
		}
		parts = append(parts, c.unfresh(t))
	}
	return c.in.MakeArray(c.in.MakeUnion(parts...))
}

// checkObjectLit builds a fresh object type, typing each property under the
// corresponding contextual property type.
func (c *fileChecker) checkObjectLit(node ast.NodeID, contextual types.TypeID) types.TypeID {
	ctx := types.NoTypeID
	if contextual.IsValid() {
		ctx = c.sub.Evaluator().Evaluate(contextual)
	}
	var info types.ObjectInfo
	info.Flags |= types.ObjectFresh
	for _, p := range c.arena.Children(node) {
		switch c.arena.Kind(p) {
		case ast.KindPropertyAssignment:
			nameNode := c.arena.Child(p, 0)
			name := c.propNameAtom(nameNode)
			propCtx := types.NoTypeID
			if ctx.IsValid() && name.IsValid() {
				if cp, ok := c.in.FindProp(ctx, name); ok {
					propCtx = cp.Type
				}
			}
			t := c.checkExpr(c.arena.Child(p, 1), propCtx)
			if !propCtx.IsValid() {
				t = c.widenLiteral(t)
			}
			info.Props = append(info.Props, types.Prop{Name: name, Type: c.unfresh(t)})
		case ast.KindShorthandProperty:
			ident := c.arena.Child(p, 0)
			t := c.widenLiteral(c.checkExpr(ident, types.NoTypeID))
			info.Props = append(info.Props, types.Prop{Name: c.arena.Atom(ident), Type: c.unfresh(t)})
		case ast.KindSpreadAssignment:
			spread := c.checkExpr(c.arena.Child(p, 0), types.NoTypeID)
			sev := c.sub.Evaluator().Evaluate(spread)
			if o, ok := c.in.Object(sev); ok {
				for _, sp := range o.Props {
					info.Props = append(info.Props, sp)
				}
			} else if !c.isSpreadable(sev) {
				c.errorAt(diag.SpreadNonObject, p, "Spread types may only be created from object types.")
			}
		case ast.KindMethodDecl:
			sig := c.signatureFromNode(p, nil)
			c.checkFunctionBody(p, sig)
			info.Props = append(info.Props, types.Prop{
				Name:     c.propNameAtom(c.arena.FnName(p)),
				Type:     c.in.MakeFunction(sig),
				IsMethod: true,
			})
		case ast.KindGetAccessor, ast.KindSetAccessor:
			c.addMember(&info, p, nil)
		}
	}
	return c.in.MakeObject(info)
}

func (c *fileChecker) isSpreadable(t types.TypeID) bool {
	b := c.b()
	if t == b.Any || t == b.Error || t == b.Unknown {
		return true
	}
	switch c.in.KindOf(t) {
	case types.KindObject, types.KindArray, types.KindTuple, types.KindIntersection:
		return true
	}
	return false
}

func (c *fileChecker) propNameAtom(nameNode ast.NodeID) source.Atom {
	switch c.arena.Kind(nameNode) {
	case ast.KindIdent, ast.KindStringLit, ast.KindPrivateIdent:
		return c.arena.Atom(nameNode)
	case ast.KindNumberLit:
		return c.arena.Strings.Intern(c.in.Format(c.in.MakeLiteralNumber(c.arena.Number(nameNode))))
	case ast.KindComputedPropertyName:
		inner := c.arena.Child(nameNode, 0)
		if c.arena.Kind(inner) == ast.KindStringLit {
			return c.arena.Atom(inner)
		}
	}
	return source.NoAtom
}

func (c *fileChecker) checkPropertyAccess(node ast.NodeID) types.TypeID {
	obj := c.arena.AccessObj(node)
	nameNode := c.arena.AccessName(node)
	name := c.arena.Atom(nameNode)

	// Namespace/enum member access resolves through symbol exports first.
	if c.arena.Kind(obj) == ast.KindIdent {
		if sym, ok := c.resolveName(obj, c.arena.Atom(obj)); ok {
			s := c.bind.Symbols.Get(sym)
			if s.Flags&(symbols.FlagModule|symbols.FlagNamespaceModule|symbols.FlagEnum) != 0 {
				if member, found := s.Exports.Get(name); found {
					c.res.UseSymbols[obj] = sym
					c.res.UseSymbols[node] = member
					return c.memberValueType(sym, member)
				}
			}
		}
	}

	objType := c.checkExpr(obj, types.NoTypeID)
	return c.propertyOn(node, objType, name)
}

// propertyOn looks name up on objType, reporting TS2339/TS2551 on failure.
func (c *fileChecker) propertyOn(node ast.NodeID, objType types.TypeID, name source.Atom) types.TypeID {
	b := c.b()
	if objType == b.Error || objType == b.Any || objType == b.StrictAny {
		return b.Any
	}
	ev := c.sub.Evaluator().Evaluate(objType)

	if c.opts.StrictNullChecks {
		switch {
		case ev == b.Null:
			c.errorAt(diag.PossiblyNull, node, "'%s' is possibly 'null'.", c.in.Format(objType))
			return b.Error
		case ev == b.Undefined:
			c.errorAt(diag.PossiblyUndefined, node, "'%s' is possibly 'undefined'.", c.in.Format(objType))
			return b.Error
		}
	}

	// Unions distribute property access over their members.
	if c.in.KindOf(ev) == types.KindUnion {
		var parts []types.TypeID
		for _, m := range c.in.ListMembers(ev) {
			t := c.propertyOn(node, m, name)
			if t == b.Error {
				return b.Error
			}
			parts = append(parts, t)
		}
		return c.in.MakeUnion(parts...)
	}
	if c.in.KindOf(ev) == types.KindEnum {
		ev = c.in.MustLookup(ev).Elem
	}

	if p, ok := c.in.FindProp(ev, name); ok {
		if p.Type.IsValid() {
			return p.Type
		}
		if p.WriteType.IsValid() {
			return p.WriteType
		}
		return b.Any
	}
	if o, ok := c.in.Object(ev); ok {
		if o.StringIndex.IsValid() {
			return o.StringIndex
		}
	}
	// Apparent members of arrays/tuples.
	if apparent, ok := c.arrayApparentMember(ev, name); ok {
		return apparent
	}

	text, _ := c.arena.Strings.Lookup(name)
	if suggestion, ok := c.didYouMean(ev, name); ok {
		c.errorAt(diag.PropertyNotFoundDidYouMean, node,
			"Property '%s' does not exist on type '%s'. Did you mean '%s'?", text, c.in.Format(objType), suggestion)
	} else {
		c.errorAt(diag.PropertyNotFound, node,
			"Property '%s' does not exist on type '%s'.", text, c.in.Format(objType))
	}
	return b.Error
}

// arrayApparentMember covers the array/tuple/string members the checker
// needs without full lib declarations.
func (c *fileChecker) arrayApparentMember(t types.TypeID, name source.Atom) (types.TypeID, bool) {
	text, _ := c.arena.Strings.Lookup(name)
	b := c.b()
	kind := c.in.KindOf(t)
	if kind == types.KindArray || kind == types.KindTuple || t == b.String || kind == types.KindLiteralString {
		switch text {
		case "length":
			return b.Number, true
		}
	}
	if kind == types.KindArray {
		elem := c.in.MustLookup(t).Elem
		switch text {
		case "push", "unshift":
			sig := c.in.MakeSignature(types.SignatureInfo{
				Params: []types.Param{{Name: name, Type: c.in.MakeArray(elem), Rest: true}},
				Return: b.Number,
			})
			return c.in.MakeFunction(sig), true
		case "pop", "shift":
			sig := c.in.MakeSignature(types.SignatureInfo{
				Return: c.in.MakeUnion(elem, b.Undefined),
			})
			return c.in.MakeFunction(sig), true
		}
	}
	return types.NoTypeID, false
}

// didYouMean searches the shape for a near-miss property name:
// case-insensitive equality or edit distance one.
func (c *fileChecker) didYouMean(t types.TypeID, name source.Atom) (string, bool) {
	o, ok := c.in.Object(t)
	if !ok {
		return "", false
	}
	want, _ := c.arena.Strings.Lookup(name)
	for _, p := range o.Props {
		have, _ := c.arena.Strings.Lookup(p.Name)
		if equalFold(want, have) || editDistanceOne(want, have) {
			return have, true
		}
	}
	return "", false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func editDistanceOne(a, b string) bool {
	switch {
	case len(a) == len(b):
		diff := 0
		for i := 0; i < len(a); i++ {
			if a[i] != b[i] {
				diff++
			}
		}
		return diff == 1
	case len(a)+1 == len(b):
		return oneInsertion(a, b)
	case len(b)+1 == len(a):
		return oneInsertion(b, a)
	}
	return false
}

func oneInsertion(short, long string) bool {
	i, j, used := 0, 0, false
	for i < len(short) && j < len(long) {
		if short[i] == long[j] {
			i++
			j++
			continue
		}
		if used {
			return false
		}
		used = true
		j++
	}
	return true
}

func (c *fileChecker) checkElementAccess(node ast.NodeID) types.TypeID {
	objType := c.checkExpr(c.arena.AccessObj(node), types.NoTypeID)
	idxType := c.checkExpr(c.arena.Child(node, 1), types.NoTypeID)
	b := c.b()
	if objType == b.Error || idxType == b.Error {
		return b.Error
	}
	if objType == b.Any {
		return b.Any
	}
	access := c.in.MakeIndexedAccess(objType, idxType)
	ev := c.sub.Evaluator().Evaluate(access)
	if ev != access {
		return ev
	}
	ev2 := c.sub.Evaluator().Evaluate(objType)
	if o, ok := c.in.Object(ev2); ok {
		if idxType == b.Number || c.in.KindOf(idxType) == types.KindLiteralNumber {
			if o.NumberIndex.IsValid() {
				return o.NumberIndex
			}
		}
		if o.StringIndex.IsValid() {
			return o.StringIndex
		}
		c.errorAt(diag.NoIndexSignature, node,
			"Element implicitly has an 'any' type because expression of type '%s' can't be used to index type '%s'.",
			c.in.Format(idxType), c.in.Format(objType))
		return b.Error
	}
	if c.in.KindOf(idxType) != types.KindLiteralString && c.in.KindOf(idxType) != types.KindLiteralNumber &&
		idxType != b.Number && idxType != b.String {
		c.errorAt(diag.CannotUseAsIndex, node, "Type '%s' cannot be used as an index type.", c.in.Format(idxType))
		return b.Error
	}
	return b.Any
}

func (c *fileChecker) checkPrefixUnary(node ast.NodeID) types.TypeID {
	operand := c.checkExpr(c.arena.Child(node, 0), types.NoTypeID)
	b := c.b()
	switch c.arena.Op(node) {
	case ast.OpNot:
		return b.Boolean
	case ast.OpUnaryMinus, ast.OpUnaryPlus:
		if c.in.KindOf(operand) == types.KindLiteralNumber {
			if v, ok := c.in.NumberValue(operand); ok && c.arena.Op(node) == ast.OpUnaryMinus {
				return c.in.MakeLiteralNumber(-v)
			}
			return operand
		}
		return b.Number
	case ast.OpBitNot, ast.OpPlusPlus, ast.OpMinusMinus:
		return b.Number
	}
	return b.Error
}

// awaitedType unwraps Promise-shaped types: an object with a callable
// `then` whose first callback parameter carries the value.
func (c *fileChecker) awaitedType(t types.TypeID) types.TypeID {
	ev := c.sub.Evaluator().Evaluate(t)
	if then, ok := c.in.FindProp(ev, c.arena.Strings.Intern("then")); ok {
		if o, isObj := c.in.Object(then.Type); isObj && len(o.Calls) > 0 {
			sig := c.in.Signature(o.Calls[0])
			if len(sig.Params) > 0 {
				if cb, isCb := c.in.Object(sig.Params[0].Type); isCb && len(cb.Calls) > 0 {
					cbSig := c.in.Signature(cb.Calls[0])
					if len(cbSig.Params) > 0 {
						return cbSig.Params[0].Type
					}
				}
			}
		}
	}
	return ev
}

// unfresh strips object-literal freshness once a literal escapes its
// original assignability site.
func (c *fileChecker) unfresh(t types.TypeID) types.TypeID {
	return c.in.WithFreshness(t, false)
}

// widenLiteral widens fresh literal types to their base primitive for
// mutable positions.
func (c *fileChecker) widenLiteral(t types.TypeID) types.TypeID {
	return c.in.BaseOfLiteral(t)
}

func (c *fileChecker) removeNullish(t types.TypeID) types.TypeID {
	b := c.b()
	if c.in.KindOf(t) != types.KindUnion {
		if c.in.IsNullish(t) {
			return b.Never
		}
		return t
	}
	var kept []types.TypeID
	for _, m := range c.in.ListMembers(t) {
		if !c.in.IsNullish(m) {
			kept = append(kept, m)
		}
	}
	return c.in.MakeUnion(kept...)
}
