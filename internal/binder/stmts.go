package binder

import (
	"tyco/internal/ast"
	"tyco/internal/flow"
	"tyco/internal/source"
	"tyco/internal/symbols"
)

func (b *binder) bindStatement(node ast.NodeID) {
	if !node.IsValid() {
		return
	}
	switch b.arena.Kind(node) {
	case ast.KindVarStatement:
		b.bindVarStatement(node)
	case ast.KindExpressionStmt:
		b.bindExpr(b.arena.Child(node, 0))
	case ast.KindBlock:
		b.bindBlock(node)
	case ast.KindIf:
		b.bindIf(node)
	case ast.KindWhile:
		b.bindWhile(node)
	case ast.KindDo:
		b.bindDo(node)
	case ast.KindFor:
		b.bindFor(node)
	case ast.KindForIn, ast.KindForOf:
		b.bindForInOf(node)
	case ast.KindReturn, ast.KindThrow:
		b.bindExpr(b.arena.Child(node, 0))
		b.currentFlow = b.res.Flow.Unreachable
	case ast.KindBreak:
		b.bindJump(node, b.breakTargets)
	case ast.KindContinue:
		b.bindJump(node, b.continueTargets)
	case ast.KindSwitch:
		b.bindSwitch(node)
	case ast.KindLabeled:
		b.bindLabeled(node)
	case ast.KindTry:
		b.bindTry(node)
	case ast.KindFunctionDecl:
		b.bindFunctionLike(node)
	case ast.KindClassDecl:
		b.bindClass(node)
	case ast.KindInterfaceDecl:
		b.bindInterface(node)
	case ast.KindTypeAliasDecl:
		name := b.atomOf(b.arena.Child(node, 0))
		sym := b.declare(name, node, symbols.FlagTypeAlias)
		b.markExported(sym, node)
	case ast.KindEnumDecl:
		b.bindEnum(node)
	case ast.KindModuleDecl:
		b.bindModule(node)
	case ast.KindImportDecl:
		b.bindImport(node)
	case ast.KindExportDecl:
		b.bindExportDecl(node)
	case ast.KindExportAssignment:
		b.bindExportAssignment(node)
	case ast.KindDebugger, ast.KindEmptyStmt:
	default:
		// Unknown statements degrade to binding their children.
		for _, c := range b.arena.Children(node) {
			b.bindStatement(c)
		}
	}
}

func (b *binder) bindVarStatement(node ast.NodeID) {
	f := b.arena.Flags(node)
	lexical := f&(ast.FlagLet|ast.FlagConst|ast.FlagUsing) != 0
	if f.Has(ast.FlagUsing) {
		b.res.Features.Using = true
	}
	var flags symbols.Flags
	if lexical {
		flags = symbols.FlagBlockScopedVariable
	} else {
		flags = symbols.FlagFunctionScopedVariable
	}
	for _, decl := range b.arena.Children(node) {
		init := b.arena.DeclInit(decl)
		b.bindExpr(init)
		if lexical {
			b.declarePattern(b.arena.DeclName(decl), decl, flags, node)
		}
		if init.IsValid() {
			b.currentFlow = b.res.Flow.New(flow.KindAssignment, decl, b.currentFlow)
		}
	}
}

// declarePattern declares every leaf of a binding name and binds pattern
// initializers/computed keys for flow purposes.
func (b *binder) declarePattern(name, decl ast.NodeID, flags symbols.Flags, exportCarrier ast.NodeID) {
	switch b.arena.Kind(name) {
	case ast.KindIdent:
		sym := b.declare(b.arena.Atom(name), decl, flags)
		b.markExported(sym, exportCarrier)
	case ast.KindObjectBindingPattern, ast.KindArrayBindingPattern:
		b.res.Features.Destructuring = true
		for _, el := range b.arena.Children(name) {
			if b.arena.Kind(el) != ast.KindBindingElement {
				continue
			}
			b.bindExpr(b.arena.Child(el, 2))
			b.declarePattern(b.arena.Child(el, 1), el, flags, exportCarrier)
		}
	}
}

func (b *binder) bindBlock(node ast.NodeID) {
	b.enterScope(symbols.ScopeBlock, node)
	defer b.leaveScope()
	stmts := b.arena.Children(node)
	// Strict-mode function declarations are block-scoped: pre-declare so
	// mutual references inside the block resolve.
	if b.strict {
		for _, s := range stmts {
			if b.arena.Kind(s) == ast.KindFunctionDecl {
				b.declare(b.atomOf(b.arena.FnName(s)), s, symbols.FlagFunction)
			}
		}
	}
	for _, s := range stmts {
		b.bindStatement(s)
	}
}

func (b *binder) bindIf(node ast.NodeID) {
	cond := b.arena.IfCond(node)
	b.bindExpr(cond)
	pre := b.currentFlow
	trueFlow := b.res.Flow.New(flow.KindTrueCondition, cond, pre)
	falseFlow := b.res.Flow.New(flow.KindFalseCondition, cond, pre)

	b.currentFlow = trueFlow
	b.bindStatement(b.arena.IfThen(node))
	afterThen := b.currentFlow

	b.currentFlow = falseFlow
	b.bindStatement(b.arena.IfElse(node))
	afterElse := b.currentFlow

	merge := b.res.Flow.New(flow.KindBranchLabel, node)
	b.res.Flow.AddAntecedent(merge, afterThen)
	b.res.Flow.AddAntecedent(merge, afterElse)
	b.currentFlow = b.labelOrUnreachable(merge)
}

// labelOrUnreachable collapses labels that no path reaches.
func (b *binder) labelOrUnreachable(label flow.FlowID) flow.FlowID {
	if len(b.res.Flow.Get(label).Antecedents) == 0 {
		return b.res.Flow.Unreachable
	}
	return label
}

func (b *binder) pushLoop(breakLabel, continueLabel flow.FlowID, name source.Atom) {
	b.breakTargets = append(b.breakTargets, jumpTarget{label: breakLabel, name: name})
	b.continueTargets = append(b.continueTargets, jumpTarget{label: continueLabel, name: name})
}

func (b *binder) popLoop() {
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
}

func (b *binder) bindWhile(node ast.NodeID) {
	cond := b.arena.Child(node, 0)
	body := b.arena.Child(node, 1)

	loop := b.res.Flow.New(flow.KindLoopLabel, node)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.currentFlow = loop
	b.bindExpr(cond)
	trueFlow := b.res.Flow.New(flow.KindTrueCondition, cond, loop)
	post := b.res.Flow.New(flow.KindBranchLabel, node)
	b.res.Flow.AddAntecedent(post, b.res.Flow.New(flow.KindFalseCondition, cond, loop))

	b.pushLoop(post, loop, source.NoAtom)
	b.currentFlow = trueFlow
	b.bindStatement(body)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.popLoop()

	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindDo(node ast.NodeID) {
	cond := b.arena.Child(node, 0)
	body := b.arena.Child(node, 1)

	loop := b.res.Flow.New(flow.KindLoopLabel, node)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	post := b.res.Flow.New(flow.KindBranchLabel, node)

	b.pushLoop(post, loop, source.NoAtom)
	b.currentFlow = loop
	b.bindStatement(body)
	b.bindExpr(cond)
	b.res.Flow.AddAntecedent(loop, b.res.Flow.New(flow.KindTrueCondition, cond, b.currentFlow))
	b.res.Flow.AddAntecedent(post, b.res.Flow.New(flow.KindFalseCondition, cond, b.currentFlow))
	b.popLoop()

	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindFor(node ast.NodeID) {
	b.enterScope(symbols.ScopeFor, node)
	defer b.leaveScope()

	init := b.arena.Child(node, 0)
	cond := b.arena.Child(node, 1)
	incr := b.arena.Child(node, 2)
	body := b.arena.Child(node, 3)

	if init.IsValid() {
		if b.arena.Kind(init) == ast.KindVarStatement {
			b.bindVarStatement(init)
		} else {
			b.bindExpr(init)
		}
	}
	loop := b.res.Flow.New(flow.KindLoopLabel, node)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.currentFlow = loop
	post := b.res.Flow.New(flow.KindBranchLabel, node)
	if cond.IsValid() {
		b.bindExpr(cond)
		b.res.Flow.AddAntecedent(post, b.res.Flow.New(flow.KindFalseCondition, cond, loop))
		b.currentFlow = b.res.Flow.New(flow.KindTrueCondition, cond, loop)
	}

	b.pushLoop(post, loop, source.NoAtom)
	b.bindStatement(body)
	b.bindExpr(incr)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.popLoop()

	// A condition-less for(;;) exits only through break, which
	// labelOrUnreachable already reflects: post has no antecedents then.
	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindForInOf(node ast.NodeID) {
	b.enterScope(symbols.ScopeFor, node)
	defer b.leaveScope()

	init := b.arena.Child(node, 0)
	expr := b.arena.Child(node, 1)
	body := b.arena.Child(node, 2)

	b.bindExpr(expr)
	loop := b.res.Flow.New(flow.KindLoopLabel, node)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.currentFlow = loop
	post := b.res.Flow.New(flow.KindBranchLabel, node)
	b.res.Flow.AddAntecedent(post, loop)

	if b.arena.Kind(init) == ast.KindVarStatement {
		b.bindVarStatement(init)
	} else {
		b.bindExpr(init)
		b.currentFlow = b.res.Flow.New(flow.KindAssignment, init, b.currentFlow)
	}

	b.pushLoop(post, loop, source.NoAtom)
	b.bindStatement(body)
	b.res.Flow.AddAntecedent(loop, b.currentFlow)
	b.popLoop()

	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindJump(node ast.NodeID, targets []jumpTarget) {
	label := b.atomOf(b.arena.Child(node, 0))
	for i := len(targets) - 1; i >= 0; i-- {
		t := targets[i]
		if !label.IsValid() || t.name == label {
			b.res.Flow.AddAntecedent(t.label, b.currentFlow)
			break
		}
	}
	b.currentFlow = b.res.Flow.Unreachable
}

func (b *binder) bindSwitch(node ast.NodeID) {
	children := b.arena.Children(node)
	b.bindExpr(children[0])
	pre := b.currentFlow
	post := b.res.Flow.New(flow.KindBranchLabel, node)
	b.breakTargets = append(b.breakTargets, jumpTarget{label: post})

	b.enterScope(symbols.ScopeBlock, node)
	hasDefault := false
	fallthroughFlow := b.res.Flow.Unreachable
	for _, clause := range children[1:] {
		isDefault := b.arena.Kind(clause) == ast.KindDefaultClause
		clauseStart := b.res.Flow.New(flow.KindBranchLabel, clause)
		b.res.Flow.AddAntecedent(clauseStart, pre)
		b.res.Flow.AddAntecedent(clauseStart, fallthroughFlow)
		b.currentFlow = b.labelOrUnreachable(clauseStart)
		stmts := b.arena.Children(clause)
		if !isDefault && len(stmts) > 0 {
			b.bindExpr(stmts[0])
			stmts = stmts[1:]
		} else {
			hasDefault = hasDefault || isDefault
		}
		for _, s := range stmts {
			b.bindStatement(s)
		}
		fallthroughFlow = b.currentFlow
	}
	b.leaveScope()
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	b.res.Flow.AddAntecedent(post, fallthroughFlow)
	if !hasDefault {
		b.res.Flow.AddAntecedent(post, pre)
	}
	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindLabeled(node ast.NodeID) {
	label := b.atomOf(b.arena.Child(node, 0))
	stmt := b.arena.Child(node, 1)
	post := b.res.Flow.New(flow.KindBranchLabel, node)
	b.breakTargets = append(b.breakTargets, jumpTarget{label: post, name: label})
	b.bindStatement(stmt)
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.res.Flow.AddAntecedent(post, b.currentFlow)
	b.currentFlow = b.labelOrUnreachable(post)
}

func (b *binder) bindTry(node ast.NodeID) {
	block := b.arena.Child(node, 0)
	catch := b.arena.Child(node, 1)
	finally := b.arena.Child(node, 2)

	pre := b.currentFlow
	b.bindStatement(block)
	afterTry := b.currentFlow

	afterCatch := b.res.Flow.Unreachable
	if catch.IsValid() {
		// The catch body may be entered from any point in the try block;
		// the pre-try flow is the sound approximation.
		b.currentFlow = pre
		b.enterScope(symbols.ScopeCatch, catch)
		decl := b.arena.Child(catch, 0)
		if decl.IsValid() {
			b.declarePattern(b.arena.DeclName(decl), decl, symbols.FlagBlockScopedVariable, ast.NoNodeID)
		}
		b.bindStatement(b.arena.Child(catch, 1))
		b.leaveScope()
		afterCatch = b.currentFlow
	}

	merge := b.res.Flow.New(flow.KindBranchLabel, node)
	b.res.Flow.AddAntecedent(merge, afterTry)
	b.res.Flow.AddAntecedent(merge, afterCatch)
	b.currentFlow = b.labelOrUnreachable(merge)

	if finally.IsValid() {
		b.bindStatement(finally)
	}
}
