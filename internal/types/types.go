package types

import "tyco/internal/source"

// TypeID identifies an interned type. Equal IDs imply structural equality.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// DefID identifies a definition site: the origin of a nominal type, distinct
// from its structural realization. Enums and lazy references carry one.
type DefID uint32

// NoDefID marks the absence of a definition.
const NoDefID DefID = 0

// IsValid reports whether the ID refers to a definition.
func (id DefID) IsValid() bool { return id != NoDefID }

// SignatureID indexes the signature side table.
type SignatureID uint32

// Kind discriminates the type variants of the universe.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindIntrinsic
	KindLiteralString
	KindLiteralNumber
	KindLiteralBigInt
	KindLiteralBool
	KindUniqueSymbol
	KindObject
	KindArray
	KindTuple
	KindUnion
	KindIntersection
	KindApplication
	KindMapped
	KindConditional
	KindInfer
	KindTemplateLiteral
	KindKeyOf
	KindReadonly
	KindIndexedAccess
	KindTypeParameter
	KindThisType
	KindTypeQuery
	KindLazy
	KindEnum
)

// Intrinsic selects one of the built-in types with fixed TypeIDs.
type Intrinsic uint8

const (
	IntrinsicNever Intrinsic = iota
	IntrinsicNull
	IntrinsicUndefined
	IntrinsicVoid
	IntrinsicBoolean
	IntrinsicNumber
	IntrinsicString
	IntrinsicBigInt
	IntrinsicSymbol
	IntrinsicObject
	IntrinsicAny
	IntrinsicUnknown
	IntrinsicError
	IntrinsicStrictAny
	IntrinsicFunction
)

var intrinsicNames = [...]string{
	"never", "null", "undefined", "void", "boolean", "number", "string",
	"bigint", "symbol", "object", "any", "unknown", "error", "any", "Function",
}

func (i Intrinsic) String() string {
	if int(i) < len(intrinsicNames) {
		return intrinsicNames[i]
	}
	return "invalid"
}

// Variance describes how subtyping of a generic relates to its arguments.
type Variance uint8

const (
	VarianceInvariant Variance = iota
	VarianceCovariant
	VarianceContravariant
	VarianceBivariant
)

// Type is the interned descriptor. Slim fixed-width fields cover the common
// cases; list-bearing variants index a per-kind side table through Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // Array elem, KeyOf/Readonly operand, IndexedAccess object, Enum member union
	Key     TypeID // IndexedAccess index
	Def     DefID  // Lazy target, Enum identity, Application base identity
	Sym     uint32 // TypeQuery / unique-symbol symbol handle
	Payload uint32 // side-table index or inline scalar (intrinsic, atom, bool)
}

// ObjectFlags qualify an object shape.
type ObjectFlags uint8

const (
	// ObjectFresh marks object-literal types subject to excess-property checks.
	ObjectFresh ObjectFlags = 1 << iota
	// ObjectClassInstance marks shapes that realize a class instance.
	ObjectClassInstance
)

// Visibility of a property.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

// Prop is one named member of an object shape.
type Prop struct {
	Name       source.Atom
	Type       TypeID
	WriteType  TypeID // setter type when it differs from the read type
	Optional   bool
	Readonly   bool
	IsMethod   bool
	Visibility Visibility
}

// ObjectInfo is the payload of object and callable shapes: ordered
// properties, optional indexers and call/construct signatures.
type ObjectInfo struct {
	Props       []Prop
	StringIndex TypeID
	NumberIndex TypeID
	Calls       []SignatureID
	Constructs  []SignatureID
	Symbol      uint32 // backing symbol for nominal hints, 0 when absent
	Flags       ObjectFlags
}

// Param is one parameter of a signature.
type Param struct {
	Name     source.Atom
	Type     TypeID
	Optional bool
	Rest     bool
	IsThis   bool
}

// Predicate is a type predicate attached to a signature (`x is T`,
// `asserts x`, `asserts x is T`).
type Predicate struct {
	Asserts    bool
	ParamIndex int32 // -1 for `this`
	Type       TypeID
}

// SignatureInfo is one call or construct signature.
type SignatureInfo struct {
	TypeParams []TypeID // KindTypeParameter ids
	Params     []Param
	Return     TypeID
	Predicate  *Predicate
}

// RequiredParams counts parameters that are neither optional nor rest nor
// this-markers.
func (s *SignatureInfo) RequiredParams() int {
	n := 0
	for _, p := range s.Params {
		if !p.Optional && !p.Rest && !p.IsThis {
			n++
		}
	}
	return n
}

// Rest returns the rest parameter, if any.
func (s *SignatureInfo) Rest() (Param, bool) {
	for _, p := range s.Params {
		if p.Rest {
			return p, true
		}
	}
	return Param{}, false
}

// TupleElem is one positional element of a tuple.
type TupleElem struct {
	Type     TypeID
	Label    source.Atom
	Optional bool
	Rest     bool
}

// TupleInfo is the payload of tuple types.
type TupleInfo struct {
	Elems []TupleElem
}

// ListInfo backs unions and intersections: a normalized member list.
type ListInfo struct {
	Members []TypeID
}

// AppInfo is an uninstantiated generic application Base<Args...>.
type AppInfo struct {
	Base TypeID
	Args []TypeID
}

// Modifier adjustment in mapped types: keep, add (+) or strip (-).
type MappedModifier int8

const (
	MappedKeep  MappedModifier = 0
	MappedAdd   MappedModifier = 1
	MappedStrip MappedModifier = -1
)

// MappedInfo is the payload of `{ [K in Keys as Name]: Value }`.
type MappedInfo struct {
	TypeParam TypeID // the K binding (KindTypeParameter)
	Keys      TypeID // the `in` clause
	Value     TypeID
	NameType  TypeID // `as` remapping, NoTypeID when absent
	Optional  MappedModifier
	Readonly  MappedModifier
}

// CondInfo is the payload of `Check extends Extends ? True : False`.
type CondInfo struct {
	Check        TypeID
	Extends      TypeID
	WhenTrue     TypeID
	WhenFalse    TypeID
	Distributive bool
}

// TemplateInfo is the payload of a template literal type. Texts has one more
// entry than Holes; the sequence is Texts[0], Holes[0], Texts[1], ...
type TemplateInfo struct {
	Texts []source.Atom
	Holes []TypeID
}

// TypeParamInfo is the payload of type parameters and infer bindings.
type TypeParamInfo struct {
	Name       source.Atom
	Constraint TypeID
	Default    TypeID
	Variance   Variance
}
