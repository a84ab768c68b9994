package binder

import (
	"tyco/internal/ast"
	"tyco/internal/symbols"
)

// hoistContainer runs the hoisting phases for one container body, in order:
// collect hoisted var names (descending into blocks), collect hoisted
// function declarations (not descending into blocks under strict/module
// rules), then allocate vars before functions so merge order is stable.
func (b *binder) hoistContainer(stmts []ast.NodeID) {
	var vars, fns []ast.NodeID
	for _, s := range stmts {
		b.collectVars(s, &vars)
	}
	for _, s := range stmts {
		b.collectFns(s, &fns, true)
	}
	for _, decl := range vars {
		nameNode := b.arena.DeclName(decl)
		if b.arena.Kind(decl) == ast.KindBindingElement {
			nameNode = b.arena.Child(decl, 1)
		}
		name := b.atomOf(nameNode)
		sym := b.declare(name, decl, symbols.FlagFunctionScopedVariable)
		b.markExported(sym, b.varStatementOf(decl))
	}
	for _, fn := range fns {
		name := b.atomOf(b.arena.FnName(fn))
		sym := b.declare(name, fn, symbols.FlagFunction)
		b.markExported(sym, fn)
	}
}

// varStatementOf climbs from a declarator to its statement for modifiers.
func (b *binder) varStatementOf(decl ast.NodeID) ast.NodeID {
	p := b.arena.Parent(decl)
	if b.arena.Kind(p) == ast.KindVarStatement {
		return p
	}
	return decl
}

// collectVars gathers function-scoped declarators, descending into every
// statement except nested function bodies.
func (b *binder) collectVars(node ast.NodeID, out *[]ast.NodeID) {
	switch b.arena.Kind(node) {
	case ast.KindVarStatement:
		f := b.arena.Flags(node)
		if f&(ast.FlagLet|ast.FlagConst|ast.FlagUsing) != 0 {
			return
		}
		for _, decl := range b.arena.Children(node) {
			b.collectBindingNames(b.arena.DeclName(decl), decl, out)
		}
	case ast.KindBlock, ast.KindCaseClause, ast.KindDefaultClause, ast.KindSourceFile, ast.KindModuleBlock:
		for _, c := range b.arena.Children(node) {
			b.collectVars(c, out)
		}
	case ast.KindIf:
		b.collectVars(b.arena.IfThen(node), out)
		b.collectVars(b.arena.IfElse(node), out)
	case ast.KindWhile, ast.KindDo:
		b.collectVars(b.arena.Child(node, 1), out)
	case ast.KindFor:
		b.collectVars(b.arena.Child(node, 0), out)
		b.collectVars(b.arena.Child(node, 3), out)
	case ast.KindForIn, ast.KindForOf:
		b.collectVars(b.arena.Child(node, 0), out)
		b.collectVars(b.arena.Child(node, 2), out)
	case ast.KindLabeled:
		b.collectVars(b.arena.Child(node, 1), out)
	case ast.KindSwitch:
		for _, c := range b.arena.Children(node)[1:] {
			b.collectVars(c, out)
		}
	case ast.KindTry:
		b.collectVars(b.arena.Child(node, 0), out)
		if catch := b.arena.Child(node, 1); catch.IsValid() {
			b.collectVars(b.arena.Child(catch, 1), out)
		}
		b.collectVars(b.arena.Child(node, 2), out)
	}
}

// collectBindingNames records declarators. For binding patterns every leaf
// element declares its own name against the same declarator node family.
func (b *binder) collectBindingNames(name, decl ast.NodeID, out *[]ast.NodeID) {
	switch b.arena.Kind(name) {
	case ast.KindIdent:
		*out = append(*out, decl)
	case ast.KindObjectBindingPattern, ast.KindArrayBindingPattern:
		b.res.Features.Destructuring = true
		for _, el := range b.arena.Children(name) {
			if b.arena.Kind(el) == ast.KindBindingElement {
				b.collectBindingNames(b.arena.Child(el, 1), el, out)
			}
		}
	}
}

// collectFns gathers hoistable function declarations. In strict or module
// scopes function declarations inside blocks are block-scoped and are bound
// when the block itself binds, so descent stops at the top level.
func (b *binder) collectFns(node ast.NodeID, out *[]ast.NodeID, topLevel bool) {
	switch b.arena.Kind(node) {
	case ast.KindFunctionDecl:
		if topLevel || !b.strict {
			*out = append(*out, node)
		}
	case ast.KindBlock, ast.KindLabeled:
		if b.strict {
			return
		}
		for _, c := range b.arena.Children(node) {
			b.collectFns(c, out, false)
		}
	}
}
