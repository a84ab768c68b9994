package ast

// Flags carry per-node modifier and shape bits. Which bits are meaningful
// depends on the kind; unrelated bits are ignored.
type Flags uint32

const (
	// FlagLet marks a let declaration list.
	FlagLet Flags = 1 << iota
	// FlagConst marks a const declaration list.
	FlagConst
	// FlagUsing marks a using / await using declaration list.
	FlagUsing
	// FlagAwaitUsing refines FlagUsing.
	FlagAwaitUsing
	// FlagExport marks an exported declaration.
	FlagExport
	// FlagDefault marks an export-default declaration.
	FlagDefault
	// FlagDeclare marks an ambient declaration.
	FlagDeclare
	// FlagAsync marks async function-likes and await-using.
	FlagAsync
	// FlagGenerator marks generator function-likes.
	FlagGenerator
	// FlagStatic marks static class members.
	FlagStatic
	// FlagAbstract marks abstract classes and members.
	FlagAbstract
	// FlagReadonly marks readonly properties, index signatures and parameters.
	FlagReadonly
	// FlagOptional marks optional members, parameters and tuple elements.
	FlagOptional
	// FlagRest marks rest parameters, elements and bindings.
	FlagRest
	// FlagPrivate / FlagProtected / FlagPublic are accessibility modifiers.
	FlagPrivate
	FlagProtected
	FlagPublic
	// FlagExportEquals distinguishes `export =` from `export default` on
	// ExportAssignment nodes.
	FlagExportEquals
	// FlagTypeOnly marks type-only imports and exports.
	FlagTypeOnly
	// FlagAsserts marks `asserts` type predicates.
	FlagAsserts
	// FlagDistributive is set on ConditionalType nodes whose check type is a
	// bare type parameter.
	FlagDistributive
	// FlagMappedPlusOptional .. FlagMappedMinusReadonly encode mapped-type
	// modifiers (`?`, `-?`, `readonly`, `-readonly`).
	FlagMappedPlusOptional
	FlagMappedMinusOptional
	FlagMappedPlusReadonly
	FlagMappedMinusReadonly
	// FlagYieldDelegate marks `yield*`.
	FlagYieldDelegate
	// FlagThisParam marks a `this` pseudo-parameter.
	FlagThisParam
	// FlagSingleLine records that an object/array literal was written on one
	// line; the printer preserves the layout.
	FlagSingleLine
	// FlagNewlineBefore records a source newline preceding the node inside a
	// property-access chain; the printer preserves it.
	FlagNewlineBefore
	// FlagStrictMode is set on SourceFile nodes parsed as modules or with a
	// "use strict" prologue.
	FlagStrictMode
)

// Accessibility returns the explicit accessibility bits, if any.
func (f Flags) Accessibility() Flags {
	return f & (FlagPrivate | FlagProtected | FlagPublic)
}

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }
