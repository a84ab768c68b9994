package ast

// Kind tags every node in the arena. The parser (an external collaborator)
// produces these; the binder, checker, transforms and printer consume them.
//
// Child layout conventions (indices into Children):
//
//	SourceFile        statements...
//	List              free-form ordered container (params, members, ...)
//	VarStatement      declarations...           (let/const/using in flags)
//	VarDeclaration    [name, type, init]
//	If                [cond, then, else]
//	While             [cond, body]
//	Do                [cond, body]
//	For               [init, cond, incr, body]
//	ForIn/ForOf       [init, expr, body]
//	Return/Throw      [expr]
//	Labeled           [label, stmt]
//	Switch            [expr, clauses...]
//	CaseClause        [expr, stmts...]   DefaultClause: stmts...
//	Try               [block, catch, finally]
//	Catch             [decl, block]
//	FunctionDecl      [name, typeParams, params, returnType, body]
//	FunctionExpr      same as FunctionDecl
//	ArrowFunction     same, name = NoNodeID
//	MethodDecl        same              (also Get/SetAccessor, ConstructorDecl,
//	                                     MethodSignature, Call/ConstructSignature)
//	ClassDecl/Expr    [name, typeParams, heritage, members]
//	InterfaceDecl     [name, typeParams, heritage, members]
//	HeritageClause    types...                  (extends/implements in Op)
//	TypeAliasDecl     [name, typeParams, type]
//	EnumDecl          [name, members]
//	EnumMember        [name, init]
//	ModuleDecl        [name, body]
//	ImportDecl        [clause, specifier]
//	ImportClause      [defaultName, bindings]
//	NamespaceImport   [name]
//	NamedImports      specifiers...
//	ImportSpecifier   [propertyName, name]
//	ExportDecl        [clause, specifier]
//	NamedExports      specifiers...
//	ExportSpecifier   [propertyName, name]
//	ExportAssignment  [expr]                    (export= vs default in flags)
//	Parameter         [name, type, init]
//	TypeParameter     [name, constraint, default]
//	PropertyDecl      [name, type, init]        (also PropertySignature)
//	IndexSignature    [param, type]
//	PropertyAssignment [name, init]   Shorthand: [name]   Spread: [expr]
//	PropertyAccess    [obj, name]
//	ElementAccess     [obj, index]
//	Call/New          [callee, typeArgs, args]
//	Binary            [lhs, rhs]                (operator in Op)
//	PrefixUnary       [operand]                 (operator in Op; also Postfix)
//	ConditionalExpr   [cond, whenTrue, whenFalse]
//	TemplateExpr      [head, spans...]   TemplateSpan: [expr, literal]
//	As/Satisfies      [expr, type]
//	TypeRef           [name, typeArgs]
//	Union/Intersection members...
//	LiteralType       [literal]
//	ArrayType         [elem]    TupleType: elements...
//	NamedTupleMember  [name, type]
//	FunctionType      [typeParams, params, returnType]  (also ConstructorType)
//	ConditionalType   [check, extends, whenTrue, whenFalse]
//	InferType         [typeParam]
//	MappedType        [typeParam, nameType, valueType]  (modifiers in flags)
//	IndexedAccessType [obj, index]
//	TypeOperator      [operand]                 (keyof/readonly/unique in Op)
//	TypeQuery         [exprName]
//	TemplateLiteralType [head, spans...]  span: [type, literal]
//	TypePredicate     [paramName, type]         (asserts in flags)
//	BindingElement    [propertyName, name, init]
//	ComputedPropertyName [expr]
//	Decorator         [expr]
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSourceFile
	KindList

	// Names and literals.
	KindIdent
	KindPrivateIdent
	KindQualifiedName
	KindStringLit
	KindNumberLit
	KindBigIntLit
	KindTrueLit
	KindFalseLit
	KindNullLit
	KindRegexLit
	KindNoSubTemplateLit
	KindTemplateExpr
	KindTemplateSpan
	KindThisExpr
	KindSuperExpr

	// Expressions.
	KindArrayLit
	KindObjectLit
	KindPropertyAssignment
	KindShorthandProperty
	KindSpreadAssignment
	KindPropertyAccess
	KindElementAccess
	KindCall
	KindNew
	KindTaggedTemplate
	KindParen
	KindArrowFunction
	KindFunctionExpr
	KindClassExpr
	KindPrefixUnary
	KindPostfixUnary
	KindBinary
	KindConditionalExpr
	KindAwait
	KindYield
	KindTypeOfExpr
	KindVoidExpr
	KindDeleteExpr
	KindAsExpr
	KindSatisfiesExpr
	KindNonNullExpr
	KindSpreadElement
	KindComputedPropertyName

	// Statements.
	KindBlock
	KindVarStatement
	KindVarDeclaration
	KindExpressionStmt
	KindIf
	KindDo
	KindWhile
	KindFor
	KindForIn
	KindForOf
	KindContinue
	KindBreak
	KindReturn
	KindSwitch
	KindCaseClause
	KindDefaultClause
	KindLabeled
	KindThrow
	KindTry
	KindCatch
	KindDebugger
	KindEmptyStmt

	// Declarations.
	KindFunctionDecl
	KindClassDecl
	KindInterfaceDecl
	KindTypeAliasDecl
	KindEnumDecl
	KindEnumMember
	KindModuleDecl
	KindModuleBlock
	KindImportDecl
	KindImportClause
	KindNamespaceImport
	KindNamedImports
	KindImportSpecifier
	KindExportDecl
	KindNamedExports
	KindExportSpecifier
	KindExportAssignment

	// Declaration children.
	KindParameter
	KindTypeParameter
	KindPropertyDecl
	KindPropertySignature
	KindMethodDecl
	KindMethodSignature
	KindConstructorDecl
	KindGetAccessor
	KindSetAccessor
	KindIndexSignature
	KindCallSignature
	KindConstructSignature
	KindHeritageClause
	KindExpressionWithTypeArgs
	KindDecorator
	KindStaticBlock
	KindObjectBindingPattern
	KindArrayBindingPattern
	KindBindingElement

	// Type nodes.
	KindKeywordType
	KindTypeRef
	KindUnionType
	KindIntersectionType
	KindLiteralType
	KindArrayType
	KindTupleType
	KindNamedTupleMember
	KindOptionalType
	KindRestType
	KindFunctionType
	KindConstructorType
	KindTypeLiteral
	KindConditionalType
	KindInferType
	KindMappedType
	KindIndexedAccessType
	KindTypeOperator
	KindTypeQuery
	KindThisType
	KindTemplateLiteralType
	KindTemplateLiteralTypeSpan
	KindParenType
	KindTypePredicate

	kindCount
)

// IsExpr reports whether the kind is an expression.
func (k Kind) IsExpr() bool {
	switch k {
	case KindIdent, KindPrivateIdent, KindStringLit, KindNumberLit, KindBigIntLit,
		KindTrueLit, KindFalseLit, KindNullLit, KindRegexLit, KindNoSubTemplateLit,
		KindTemplateExpr, KindThisExpr, KindSuperExpr, KindArrayLit, KindObjectLit,
		KindPropertyAccess, KindElementAccess, KindCall, KindNew, KindTaggedTemplate,
		KindParen, KindArrowFunction, KindFunctionExpr, KindClassExpr,
		KindPrefixUnary, KindPostfixUnary, KindBinary, KindConditionalExpr,
		KindAwait, KindYield, KindTypeOfExpr, KindVoidExpr, KindDeleteExpr,
		KindAsExpr, KindSatisfiesExpr, KindNonNullExpr, KindSpreadElement:
		return true
	}
	return false
}

// IsStmt reports whether the kind is a statement or declaration statement.
func (k Kind) IsStmt() bool {
	switch k {
	case KindBlock, KindVarStatement, KindExpressionStmt, KindIf, KindDo,
		KindWhile, KindFor, KindForIn, KindForOf, KindContinue, KindBreak,
		KindReturn, KindSwitch, KindLabeled, KindThrow, KindTry, KindDebugger,
		KindEmptyStmt, KindFunctionDecl, KindClassDecl, KindInterfaceDecl,
		KindTypeAliasDecl, KindEnumDecl, KindModuleDecl, KindImportDecl,
		KindExportDecl, KindExportAssignment:
		return true
	}
	return false
}

// IsTypeNode reports whether the kind belongs to the type grammar.
func (k Kind) IsTypeNode() bool {
	return k >= KindKeywordType && k <= KindTypePredicate
}

// IsFunctionLike reports whether the node carries the function child layout
// [name, typeParams, params, returnType, body].
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunctionDecl, KindFunctionExpr, KindArrowFunction, KindMethodDecl,
		KindMethodSignature, KindConstructorDecl, KindGetAccessor, KindSetAccessor,
		KindCallSignature, KindConstructSignature:
		return true
	}
	return false
}

// IsClassLike reports whether the node carries the class child layout.
func (k Kind) IsClassLike() bool {
	return k == KindClassDecl || k == KindClassExpr
}
