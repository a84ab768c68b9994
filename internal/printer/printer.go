// Package printer serializes a (possibly transformed) arena back to
// ECMAScript text. Type-only constructs are erased; selected source trivia
// is preserved: newlines inside property-access chains and the single-line
// vs multi-line layout of object literals.
package printer

import (
	"fmt"
	"strings"

	"tyco/internal/ast"
)

// Options tune the output.
type Options struct {
	Indent string // defaults to four spaces
}

// Print serializes the file rooted at the arena's root node.
func Print(a *ast.Arena, opts Options) string {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	p := &printer{a: a, opts: opts}
	for _, s := range a.Children(a.Root()) {
		p.stmt(s)
	}
	return p.sb.String()
}

type printer struct {
	a     *ast.Arena
	opts  Options
	sb    strings.Builder
	depth int
}

func (p *printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat(p.opts.Indent, p.depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) raw(s string) { p.sb.WriteString(s) }

func (p *printer) indent() string { return strings.Repeat(p.opts.Indent, p.depth) }

func (p *printer) stmt(node ast.NodeID) {
	if !node.IsValid() {
		return
	}
	a := p.a
	switch a.Kind(node) {
	case ast.KindInterfaceDecl, ast.KindTypeAliasDecl, ast.KindImportDecl:
		// Erased: types never reach the output; imports are rewritten by
		// the module transform before printing.
		return
	case ast.KindVarStatement:
		p.line("%s;", p.varStatementText(node))
	case ast.KindExpressionStmt:
		p.line("%s;", p.expr(a.Child(node, 0), precLowest))
	case ast.KindReturn:
		if e := a.Child(node, 0); e.IsValid() {
			p.line("return %s;", p.expr(e, precLowest))
		} else {
			p.line("return;")
		}
	case ast.KindThrow:
		p.line("throw %s;", p.expr(a.Child(node, 0), precLowest))
	case ast.KindBlock:
		p.line("{")
		p.depth++
		for _, s := range a.Children(node) {
			p.stmt(s)
		}
		p.depth--
		p.line("}")
	case ast.KindIf:
		p.raw(p.indent())
		p.raw("if (" + p.expr(a.IfCond(node), precLowest) + ") ")
		p.embeddedStmt(a.IfThen(node))
		if e := a.IfElse(node); e.IsValid() {
			p.raw(p.indent())
			p.raw("else ")
			p.embeddedStmt(e)
		}
	case ast.KindWhile:
		p.raw(p.indent())
		p.raw("while (" + p.expr(a.Child(node, 0), precLowest) + ") ")
		p.embeddedStmt(a.Child(node, 1))
	case ast.KindDo:
		p.raw(p.indent())
		p.raw("do ")
		p.embeddedStmt(a.Child(node, 1))
		p.line("while (%s);", p.expr(a.Child(node, 0), precLowest))
	case ast.KindFor:
		init := ""
		if n := a.Child(node, 0); n.IsValid() {
			if a.Kind(n) == ast.KindVarStatement {
				init = p.varStatementText(n)
			} else {
				init = p.expr(n, precLowest)
			}
		}
		cond := ""
		if n := a.Child(node, 1); n.IsValid() {
			cond = p.expr(n, precLowest)
		}
		incr := ""
		if n := a.Child(node, 2); n.IsValid() {
			incr = p.expr(n, precLowest)
		}
		p.raw(p.indent())
		p.raw(fmt.Sprintf("for (%s; %s; %s) ", init, cond, incr))
		p.embeddedStmt(a.Child(node, 3))
	case ast.KindForIn, ast.KindForOf:
		kw := "in"
		if a.Kind(node) == ast.KindForOf {
			kw = "of"
		}
		init := a.Child(node, 0)
		initText := ""
		if a.Kind(init) == ast.KindVarStatement {
			initText = p.varStatementText(init)
		} else {
			initText = p.expr(init, precLowest)
		}
		p.raw(p.indent())
		p.raw(fmt.Sprintf("for (%s %s %s) ", initText, kw, p.expr(a.Child(node, 1), precLowest)))
		p.embeddedStmt(a.Child(node, 2))
	case ast.KindBreak:
		p.jumpStmt(node, "break")
	case ast.KindContinue:
		p.jumpStmt(node, "continue")
	case ast.KindSwitch:
		children := a.Children(node)
		p.line("switch (%s) {", p.expr(children[0], precLowest))
		p.depth++
		for _, clause := range children[1:] {
			stmts := a.Children(clause)
			if a.Kind(clause) == ast.KindCaseClause {
				p.line("case %s:", p.expr(stmts[0], precLowest))
				stmts = stmts[1:]
			} else {
				p.line("default:")
			}
			p.depth++
			for _, s := range stmts {
				p.stmt(s)
			}
			p.depth--
		}
		p.depth--
		p.line("}")
	case ast.KindLabeled:
		p.line("%s:", a.Text(a.Child(node, 0)))
		p.stmt(a.Child(node, 1))
	case ast.KindTry:
		p.raw(p.indent())
		p.raw("try ")
		p.embeddedStmt(a.Child(node, 0))
		if catch := a.Child(node, 1); catch.IsValid() {
			p.raw(p.indent())
			binding := ""
			if decl := a.Child(catch, 0); decl.IsValid() {
				binding = " (" + p.bindingName(a.DeclName(decl)) + ")"
			}
			p.raw("catch" + binding + " ")
			p.embeddedStmt(a.Child(catch, 1))
		}
		if fin := a.Child(node, 2); fin.IsValid() {
			p.raw(p.indent())
			p.raw("finally ")
			p.embeddedStmt(fin)
		}
	case ast.KindFunctionDecl:
		p.functionText(node, true)
	case ast.KindClassDecl:
		p.classText(node)
	case ast.KindDebugger:
		p.line("debugger;")
	case ast.KindEmptyStmt:
		p.line(";")
	case ast.KindEnumDecl, ast.KindModuleDecl, ast.KindExportDecl, ast.KindExportAssignment:
		// The module/namespace transforms rewrite these before printing;
		// leftovers erase.
		return
	}
}

// embeddedStmt prints a statement that follows a header on the same line.
func (p *printer) embeddedStmt(node ast.NodeID) {
	if !node.IsValid() {
		p.raw("{ }\n")
		return
	}
	if p.a.Kind(node) == ast.KindBlock {
		p.raw("{\n")
		p.depth++
		for _, s := range p.a.Children(node) {
			p.stmt(s)
		}
		p.depth--
		p.raw(p.indent() + "}\n")
		return
	}
	p.raw("\n")
	p.depth++
	p.stmt(node)
	p.depth--
}

func (p *printer) jumpStmt(node ast.NodeID, kw string) {
	if label := p.a.Child(node, 0); label.IsValid() {
		p.line("%s %s;", kw, p.a.Text(label))
		return
	}
	p.line("%s;", kw)
}

func (p *printer) varStatementText(node ast.NodeID) string {
	a := p.a
	kw := "var"
	f := a.Flags(node)
	switch {
	case f.Has(ast.FlagConst):
		kw = "const"
	case f.Has(ast.FlagLet):
		kw = "let"
	}
	parts := make([]string, 0, len(a.Children(node)))
	for _, decl := range a.Children(node) {
		s := p.bindingName(a.DeclName(decl))
		if init := a.DeclInit(decl); init.IsValid() {
			s += " = " + p.expr(init, precAssign)
		}
		parts = append(parts, s)
	}
	return kw + " " + strings.Join(parts, ", ")
}

func (p *printer) bindingName(node ast.NodeID) string {
	a := p.a
	switch a.Kind(node) {
	case ast.KindIdent, ast.KindPrivateIdent:
		return a.Text(node)
	case ast.KindObjectBindingPattern:
		var parts []string
		for _, el := range a.Children(node) {
			s := p.bindingName(a.Child(el, 1))
			if prop := a.Child(el, 0); prop.IsValid() {
				s = a.Text(prop) + ": " + s
			}
			if init := a.Child(el, 2); init.IsValid() {
				s += " = " + p.expr(init, precAssign)
			}
			if a.Flags(el).Has(ast.FlagRest) {
				s = "..." + s
			}
			parts = append(parts, s)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case ast.KindArrayBindingPattern:
		var parts []string
		for _, el := range a.Children(node) {
			if !el.IsValid() {
				parts = append(parts, "")
				continue
			}
			s := p.bindingName(a.Child(el, 1))
			if init := a.Child(el, 2); init.IsValid() {
				s += " = " + p.expr(init, precAssign)
			}
			if a.Flags(el).Has(ast.FlagRest) {
				s = "..." + s
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return a.Text(node)
}

func (p *printer) functionText(node ast.NodeID, statement bool) {
	a := p.a
	prefix := ""
	if a.Flags(node).Has(ast.FlagAsync) {
		prefix = "async "
	}
	star := ""
	if a.Flags(node).Has(ast.FlagGenerator) {
		star = "*"
	}
	name := ""
	if n := a.FnName(node); n.IsValid() {
		name = " " + a.Text(n)
	}
	p.raw(p.indent())
	p.raw(fmt.Sprintf("%sfunction%s%s(%s) ", prefix, star, name, p.paramsText(node)))
	if body := a.FnBody(node); body.IsValid() {
		p.embeddedStmt(body)
	} else {
		p.raw("{ }\n")
	}
	_ = statement
}

func (p *printer) paramsText(fn ast.NodeID) string {
	a := p.a
	var parts []string
	for _, param := range a.ListItems(a.FnParams(fn)) {
		if a.Flags(param).Has(ast.FlagThisParam) {
			continue
		}
		s := p.bindingName(a.DeclName(param))
		if a.Flags(param).Has(ast.FlagRest) {
			s = "..." + s
		}
		if init := a.DeclInit(param); init.IsValid() {
			s += " = " + p.expr(init, precAssign)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) classText(node ast.NodeID) {
	a := p.a
	header := "class"
	if n := a.ClassName(node); n.IsValid() {
		header += " " + a.Text(n)
	}
	for _, h := range a.ListItems(a.ClassHeritage(node)) {
		if a.Op(h) != ast.OpExtends {
			continue
		}
		for _, e := range a.Children(h) {
			header += " extends " + p.expr(a.Child(e, 0), precLeftHandSide)
		}
	}
	p.line("%s {", header)
	p.depth++
	for _, m := range a.ListItems(a.ClassMembers(node)) {
		p.classMember(m)
	}
	p.depth--
	p.line("}")
}

func (p *printer) classMember(m ast.NodeID) {
	a := p.a
	mods := ""
	if a.Flags(m).Has(ast.FlagStatic) {
		mods = "static "
	}
	switch a.Kind(m) {
	case ast.KindPropertyDecl:
		s := mods + a.Text(a.DeclName(m))
		if init := a.DeclInit(m); init.IsValid() {
			s += " = " + p.expr(init, precAssign)
		}
		p.line("%s;", s)
	case ast.KindConstructorDecl:
		p.raw(p.indent())
		p.raw(fmt.Sprintf("constructor(%s) ", p.paramsText(m)))
		p.embeddedStmt(a.FnBody(m))
	case ast.KindMethodDecl:
		prefix := mods
		if a.Flags(m).Has(ast.FlagAsync) {
			prefix += "async "
		}
		if a.Flags(m).Has(ast.FlagGenerator) {
			prefix += "*"
		}
		p.raw(p.indent())
		p.raw(fmt.Sprintf("%s%s(%s) ", prefix, a.Text(a.FnName(m)), p.paramsText(m)))
		p.embeddedStmt(a.FnBody(m))
	case ast.KindGetAccessor:
		p.raw(p.indent())
		p.raw(fmt.Sprintf("%sget %s() ", mods, a.Text(a.FnName(m))))
		p.embeddedStmt(a.FnBody(m))
	case ast.KindSetAccessor:
		p.raw(p.indent())
		p.raw(fmt.Sprintf("%sset %s(%s) ", mods, a.Text(a.FnName(m)), p.paramsText(m)))
		p.embeddedStmt(a.FnBody(m))
	case ast.KindStaticBlock:
		p.raw(p.indent())
		p.raw("static ")
		p.embeddedStmt(a.Child(m, 0))
	}
}
