package ast

import "tyco/internal/source"

// Constructors for the node shapes the engine consumes. The external parser
// is expected to produce arenas through these (directly or via astio), so
// the child layouts documented on Kind stay authoritative in one place.

// NewIdent creates an identifier node.
func (a *Arena) NewIdent(span source.Span, name string) NodeID {
	id := a.New(KindIdent, span)
	a.SetAtom(id, a.Strings.Intern(name))
	return id
}

// NewStringLit creates a string literal node with the given value.
func (a *Arena) NewStringLit(span source.Span, value string) NodeID {
	id := a.New(KindStringLit, span)
	a.SetAtom(id, a.Strings.Intern(value))
	return id
}

// NewNumberLit creates a numeric literal node.
func (a *Arena) NewNumberLit(span source.Span, value float64) NodeID {
	id := a.New(KindNumberLit, span)
	a.SetNumber(id, value)
	return id
}

// NewBool creates a true/false literal.
func (a *Arena) NewBool(span source.Span, value bool) NodeID {
	if value {
		return a.New(KindTrueLit, span)
	}
	return a.New(KindFalseLit, span)
}

// NewList creates a synthetic ordered container node.
func (a *Arena) NewList(span source.Span, items ...NodeID) NodeID {
	return a.New(KindList, span, items...)
}

// NewBinary creates a binary expression with the given operator.
func (a *Arena) NewBinary(span source.Span, op Op, lhs, rhs NodeID) NodeID {
	id := a.New(KindBinary, span, lhs, rhs)
	a.SetOp(id, op)
	return id
}

// NewPrefixUnary creates a prefix unary expression.
func (a *Arena) NewPrefixUnary(span source.Span, op Op, operand NodeID) NodeID {
	id := a.New(KindPrefixUnary, span, operand)
	a.SetOp(id, op)
	return id
}

// NewKeywordType creates a keyword type node (any, string, never, ...).
func (a *Arena) NewKeywordType(span source.Span, kw Op) NodeID {
	id := a.New(KindKeywordType, span)
	a.SetOp(id, kw)
	return id
}

// NewTypeRef creates a type reference `name<typeArgs>`.
func (a *Arena) NewTypeRef(span source.Span, name NodeID, typeArgs NodeID) NodeID {
	return a.New(KindTypeRef, span, name, typeArgs)
}

// NewFunctionLike creates any node with the function child layout.
func (a *Arena) NewFunctionLike(kind Kind, span source.Span, name, typeParams, params, returnType, body NodeID) NodeID {
	return a.New(kind, span, name, typeParams, params, returnType, body)
}

// NewParameter creates a parameter node.
func (a *Arena) NewParameter(span source.Span, name, typ, init NodeID) NodeID {
	return a.New(KindParameter, span, name, typ, init)
}

// NewVarStatement creates a var/let/const statement from declarations.
func (a *Arena) NewVarStatement(span source.Span, flags Flags, decls ...NodeID) NodeID {
	id := a.New(KindVarStatement, span, decls...)
	a.SetFlags(id, flags)
	return id
}

// NewVarDeclaration creates one declarator.
func (a *Arena) NewVarDeclaration(span source.Span, name, typ, init NodeID) NodeID {
	return a.New(KindVarDeclaration, span, name, typ, init)
}

// NewSourceFile creates the file root node from statements and marks it as
// the arena root.
func (a *Arena) NewSourceFile(span source.Span, stmts ...NodeID) NodeID {
	id := a.New(KindSourceFile, span, stmts...)
	a.SetRoot(id)
	return id
}

// NewCall creates a call expression.
func (a *Arena) NewCall(span source.Span, callee, typeArgs, args NodeID) NodeID {
	return a.New(KindCall, span, callee, typeArgs, args)
}

// NewPropertyAccess creates `obj.name`.
func (a *Arena) NewPropertyAccess(span source.Span, obj NodeID, name string) NodeID {
	ident := a.NewIdent(span, name)
	return a.New(KindPropertyAccess, span, obj, ident)
}
