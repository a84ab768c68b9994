package transform

import (
	"fmt"

	"tyco/internal/ast"
)

// lowerDestructuring rewrites binding patterns in variable statements into
// temporaries and field reads, preserving evaluation order and handling
// defaults, rest elements and computed keys:
//
//	var { a, b = 1 } = expr;
//	  →
//	var _a = expr, a = _a.a, _b = _a.b, b = _b === void 0 ? 1 : _b;
//
// Object rest bindings route through the __rest helper, excluding the keys
// already bound:
//
//	var { a, ...rest } = expr;
//	  →
//	var _a = expr, a = _a.a, rest = __rest(_a, ["a"]);
func lowerDestructuring(ctx *Context) {
	a := ctx.Arena
	temp := 0
	a.Walk(a.Root(), func(n ast.NodeID) bool {
		if a.Kind(n) != ast.KindVarStatement {
			return true
		}
		var decls []ast.NodeID
		changed := false
		for _, decl := range a.Children(n) {
			name := a.DeclName(decl)
			switch a.Kind(name) {
			case ast.KindObjectBindingPattern, ast.KindArrayBindingPattern:
				changed = true
				decls = append(decls, ctx.explodePattern(name, a.DeclInit(decl), &temp)...)
			default:
				decls = append(decls, decl)
			}
		}
		if changed {
			a.SetChildren(n, decls)
		}
		return true
	})
}

func (ctx *Context) freshTemp(counter *int) string {
	name := fmt.Sprintf("_%s", tempSuffix(*counter))
	*counter++
	return name
}

// tempSuffix produces a, b, ..., z, aa, ab, ... matching the familiar
// temporary naming.
func tempSuffix(n int) string {
	s := ""
	for {
		s = string(rune('a'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			return s
		}
	}
}

// explodePattern flattens one pattern binding into a declarator sequence.
func (ctx *Context) explodePattern(pattern, init ast.NodeID, counter *int) []ast.NodeID {
	a := ctx.Arena
	tempName := ctx.freshTemp(counter)
	out := []ast.NodeID{a.NewVarDeclaration(ctx.span(), ctx.ident(tempName), ast.NoNodeID, init)}
	out = append(out, ctx.explodeInto(pattern, ctx.ident(tempName), counter)...)
	return out
}

func (ctx *Context) explodeInto(pattern, source ast.NodeID, counter *int) []ast.NodeID {
	a := ctx.Arena
	var out []ast.NodeID
	isArray := a.Kind(pattern) == ast.KindArrayBindingPattern
	var boundKeys []string

	for i, el := range a.Children(pattern) {
		if a.Kind(el) != ast.KindBindingElement {
			continue
		}
		name := a.Child(el, 1)
		def := a.Child(el, 2)

		var read ast.NodeID
		if isArray {
			if a.Flags(el).Has(ast.FlagRest) {
				read = ctx.call(ctx.prop(source, "slice"), ctx.num(float64(i)))
			} else {
				read = a.New(ast.KindElementAccess, ctx.span(), source, ctx.num(float64(i)))
			}
		} else if a.Flags(el).Has(ast.FlagRest) {
			// Object rest copies every own property not already bound:
			// rest = __rest(_a, ["a", "b"]);
			excluded := make([]ast.NodeID, len(boundKeys))
			for j, k := range boundKeys {
				excluded[j] = ctx.str(k)
			}
			read = ctx.call(ctx.helperName("__rest"), source, ctx.arrayLit(excluded))
		} else {
			prop := a.Child(el, 0)
			key := name
			if prop.IsValid() {
				key = prop
			}
			if a.Kind(key) == ast.KindComputedPropertyName {
				read = a.New(ast.KindElementAccess, ctx.span(), source, a.Child(key, 0))
			} else {
				boundKeys = append(boundKeys, a.Text(key))
				read = a.New(ast.KindPropertyAccess, ctx.span(), source, ctx.ident(a.Text(key)))
			}
		}

		// Defaults read through a temporary so the source expression is
		// evaluated exactly once.
		if def.IsValid() {
			t := ctx.freshTemp(counter)
			out = append(out, ctx.Arena.NewVarDeclaration(ctx.span(), ctx.ident(t), ast.NoNodeID, read))
			cond := ctx.Arena.NewBinary(ctx.span(), ast.OpStrictEq, ctx.ident(t), ctx.voidZero())
			pick := ctx.Arena.New(ast.KindConditionalExpr, ctx.span(), cond, def, ctx.ident(t))
			read = pick
		}

		switch a.Kind(name) {
		case ast.KindIdent:
			out = append(out, ctx.Arena.NewVarDeclaration(ctx.span(), ctx.ident(a.Text(name)), ast.NoNodeID, read))
		case ast.KindObjectBindingPattern, ast.KindArrayBindingPattern:
			t := ctx.freshTemp(counter)
			out = append(out, ctx.Arena.NewVarDeclaration(ctx.span(), ctx.ident(t), ast.NoNodeID, read))
			out = append(out, ctx.explodeInto(name, ctx.ident(t), counter)...)
		}
	}
	return out
}
