package printer

import (
	"strconv"
	"strings"

	"tyco/internal/ast"
)

// Binding powers for parenthesization decisions.
const (
	precLowest = iota
	precComma
	precAssign
	precConditional
	precNullish
	precLogicalOr
	precLogicalAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precLeftHandSide
	precPrimary
)

func opPrec(op ast.Op) int {
	switch op {
	case ast.OpComma:
		return precComma
	case ast.OpAssign, ast.OpPlusAssign, ast.OpMinusAssign, ast.OpStarAssign,
		ast.OpSlashAssign, ast.OpPercentAssign, ast.OpAmpAssign, ast.OpPipeAssign,
		ast.OpCaretAssign, ast.OpShlAssign, ast.OpShrAssign, ast.OpUShrAssign,
		ast.OpAndAssign, ast.OpOrAssign, ast.OpNullishAssign, ast.OpExpAssign:
		return precAssign
	case ast.OpNullish:
		return precNullish
	case ast.OpLogicalOr:
		return precLogicalOr
	case ast.OpLogicalAnd:
		return precLogicalAnd
	case ast.OpPipe:
		return precBitOr
	case ast.OpCaret:
		return precBitXor
	case ast.OpAmp:
		return precBitAnd
	case ast.OpEq, ast.OpNotEq, ast.OpStrictEq, ast.OpStrictNotEq:
		return precEquality
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq, ast.OpInstanceOf, ast.OpIn:
		return precRelational
	case ast.OpShl, ast.OpShr, ast.OpUShr:
		return precShift
	case ast.OpPlus, ast.OpMinus:
		return precAdditive
	case ast.OpStar, ast.OpSlash, ast.OpPercent:
		return precMultiplicative
	case ast.OpExp:
		return precExponent
	}
	return precLowest
}

func (p *printer) expr(node ast.NodeID, parent int) string {
	if !node.IsValid() {
		return ""
	}
	a := p.a
	switch a.Kind(node) {
	case ast.KindIdent, ast.KindPrivateIdent:
		return a.Text(node)
	case ast.KindStringLit:
		return strconv.Quote(a.Text(node))
	case ast.KindNumberLit:
		return strconv.FormatFloat(a.Number(node), 'g', -1, 64)
	case ast.KindBigIntLit:
		return a.Text(node) + "n"
	case ast.KindTrueLit:
		return "true"
	case ast.KindFalseLit:
		return "false"
	case ast.KindNullLit:
		return "null"
	case ast.KindRegexLit:
		return a.Text(node)
	case ast.KindThisExpr:
		return "this"
	case ast.KindSuperExpr:
		return "super"
	case ast.KindNoSubTemplateLit:
		return "`" + a.Text(node) + "`"
	case ast.KindTemplateExpr:
		children := a.Children(node)
		var b strings.Builder
		b.WriteString("`")
		b.WriteString(a.Text(children[0]))
		for _, span := range children[1:] {
			b.WriteString("${")
			b.WriteString(p.expr(a.Child(span, 0), precLowest))
			b.WriteString("}")
			b.WriteString(a.Text(a.Child(span, 1)))
		}
		b.WriteString("`")
		return b.String()
	case ast.KindArrayLit:
		var parts []string
		for _, e := range a.Children(node) {
			parts = append(parts, p.expr(e, precAssign))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ast.KindObjectLit:
		return p.objectLit(node)
	case ast.KindPropertyAccess:
		obj := p.expr(a.AccessObj(node), precLeftHandSide)
		// Preserve source newlines inside access chains.
		if a.Flags(node).Has(ast.FlagNewlineBefore) {
			return obj + "\n" + p.indent() + p.opts.Indent + "." + a.Text(a.AccessName(node))
		}
		return obj + "." + a.Text(a.AccessName(node))
	case ast.KindElementAccess:
		return p.expr(a.AccessObj(node), precLeftHandSide) + "[" + p.expr(a.Child(node, 1), precLowest) + "]"
	case ast.KindCall:
		return p.expr(a.CallCallee(node), precLeftHandSide) + "(" + p.argsText(node) + ")"
	case ast.KindNew:
		return "new " + p.expr(a.CallCallee(node), precLeftHandSide) + "(" + p.argsText(node) + ")"
	case ast.KindTaggedTemplate:
		return p.expr(a.Child(node, 0), precLeftHandSide) + p.expr(a.Child(node, 1), precPrimary)
	case ast.KindParen:
		return "(" + p.expr(a.Child(node, 0), precLowest) + ")"
	case ast.KindFunctionExpr:
		return p.inlineFunction(node)
	case ast.KindArrowFunction:
		return p.arrowText(node, parent)
	case ast.KindClassExpr:
		return "(class { })"
	case ast.KindPrefixUnary:
		op := a.Op(node)
		operand := p.expr(a.Child(node, 0), precUnary)
		text := op.String()
		if text == "instanceof" || text == "in" {
			text += " "
		}
		s := text + operand
		return p.maybeParen(s, precUnary, parent)
	case ast.KindPostfixUnary:
		return p.maybeParen(p.expr(a.Child(node, 0), precPostfix)+a.Op(node).String(), precPostfix, parent)
	case ast.KindBinary:
		op := a.Op(node)
		prec := opPrec(op)
		lhs := p.expr(a.BinLHS(node), prec)
		rhs := p.expr(a.BinRHS(node), prec+1)
		s := lhs + " " + op.String() + " " + rhs
		if op == ast.OpComma {
			s = lhs + ", " + rhs
		}
		return p.maybeParen(s, prec, parent)
	case ast.KindConditionalExpr:
		s := p.expr(a.Child(node, 0), precNullish) + " ? " +
			p.expr(a.Child(node, 1), precAssign) + " : " +
			p.expr(a.Child(node, 2), precAssign)
		return p.maybeParen(s, precConditional, parent)
	case ast.KindAwait:
		return p.maybeParen("await "+p.expr(a.Child(node, 0), precUnary), precUnary, parent)
	case ast.KindYield:
		star := ""
		if a.Flags(node).Has(ast.FlagYieldDelegate) {
			star = "*"
		}
		inner := ""
		if e := a.Child(node, 0); e.IsValid() {
			inner = " " + p.expr(e, precAssign)
		}
		return p.maybeParen("yield"+star+inner, precAssign, parent)
	case ast.KindTypeOfExpr:
		return p.maybeParen("typeof "+p.expr(a.Child(node, 0), precUnary), precUnary, parent)
	case ast.KindVoidExpr:
		return p.maybeParen("void "+p.expr(a.Child(node, 0), precUnary), precUnary, parent)
	case ast.KindDeleteExpr:
		return p.maybeParen("delete "+p.expr(a.Child(node, 0), precUnary), precUnary, parent)
	case ast.KindAsExpr, ast.KindSatisfiesExpr, ast.KindNonNullExpr:
		// Type assertions erase.
		return p.expr(a.Child(node, 0), parent)
	case ast.KindSpreadElement, ast.KindSpreadAssignment:
		return "..." + p.expr(a.Child(node, 0), precAssign)
	}
	return ""
}

func (p *printer) maybeParen(s string, prec, parent int) string {
	if prec < parent {
		return "(" + s + ")"
	}
	return s
}

func (p *printer) argsText(node ast.NodeID) string {
	var parts []string
	for _, arg := range p.a.ListItems(p.a.CallArgs(node)) {
		parts = append(parts, p.expr(arg, precAssign))
	}
	return strings.Join(parts, ", ")
}

// objectLit honors the recorded single-line vs multi-line source layout.
func (p *printer) objectLit(node ast.NodeID) string {
	a := p.a
	props := a.Children(node)
	if len(props) == 0 {
		return "{}"
	}
	var parts []string
	for _, prop := range props {
		switch a.Kind(prop) {
		case ast.KindPropertyAssignment:
			name := a.Child(prop, 0)
			nameText := a.Text(name)
			if a.Kind(name) == ast.KindStringLit {
				nameText = strconv.Quote(nameText)
			} else if a.Kind(name) == ast.KindComputedPropertyName {
				nameText = "[" + p.expr(a.Child(name, 0), precLowest) + "]"
			} else if a.Kind(name) == ast.KindNumberLit {
				nameText = strconv.FormatFloat(a.Number(name), 'g', -1, 64)
			}
			parts = append(parts, nameText+": "+p.expr(a.Child(prop, 1), precAssign))
		case ast.KindShorthandProperty:
			parts = append(parts, a.Text(a.Child(prop, 0)))
		case ast.KindSpreadAssignment:
			parts = append(parts, "..."+p.expr(a.Child(prop, 0), precAssign))
		case ast.KindMethodDecl:
			var b strings.Builder
			b.WriteString(a.Text(a.FnName(prop)))
			b.WriteString("(")
			b.WriteString(p.paramsText(prop))
			b.WriteString(") ")
			b.WriteString(p.inlineBody(prop))
			parts = append(parts, b.String())
		}
	}
	if a.Flags(node).Has(ast.FlagSingleLine) || len(parts) == 1 {
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	inner := p.indent() + p.opts.Indent
	return "{\n" + inner + strings.Join(parts, ",\n"+inner) + "\n" + p.indent() + "}"
}

func (p *printer) inlineFunction(node ast.NodeID) string {
	a := p.a
	prefix := ""
	if a.Flags(node).Has(ast.FlagAsync) {
		prefix = "async "
	}
	if a.Flags(node).Has(ast.FlagGenerator) {
		prefix += "function*"
	} else {
		prefix += "function"
	}
	name := " "
	if n := a.FnName(node); n.IsValid() {
		name = " " + a.Text(n)
	}
	return prefix + name + "(" + p.paramsText(node) + ") " + p.inlineBody(node)
}

func (p *printer) arrowText(node ast.NodeID, parent int) string {
	a := p.a
	prefix := ""
	if a.Flags(node).Has(ast.FlagAsync) {
		prefix = "async "
	}
	head := prefix + "(" + p.paramsText(node) + ") => "
	body := a.FnBody(node)
	var s string
	if body.IsValid() && a.Kind(body) != ast.KindBlock {
		inner := p.expr(body, precAssign)
		if a.Kind(body) == ast.KindObjectLit {
			inner = "(" + inner + ")"
		}
		s = head + inner
	} else {
		s = head + p.inlineBody(node)
	}
	return p.maybeParen(s, precAssign, parent)
}

// inlineBody renders a function body block inline after a header.
func (p *printer) inlineBody(fn ast.NodeID) string {
	a := p.a
	body := a.FnBody(fn)
	if !body.IsValid() {
		return "{ }"
	}
	stmts := a.Children(body)
	if len(stmts) == 0 {
		return "{ }"
	}
	sub := &printer{a: a, opts: p.opts, depth: p.depth + 1}
	for _, s := range stmts {
		sub.stmt(s)
	}
	return "{\n" + sub.sb.String() + p.indent() + "}"
}
