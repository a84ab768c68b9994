package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"fortio.org/safecast"

	"tyco/internal/source"
)

// Builtins stores the reserved TypeIDs for the intrinsics. They are allocated
// first so their values are stable within a compilation.
type Builtins struct {
	Never     TypeID
	Null      TypeID
	Undefined TypeID
	Void      TypeID
	Boolean   TypeID
	Number    TypeID
	String    TypeID
	BigInt    TypeID
	Symbol    TypeID
	Object    TypeID
	Any       TypeID
	Unknown   TypeID
	Error     TypeID
	StrictAny TypeID
	Function  TypeID
	True      TypeID
	False     TypeID
	This      TypeID
}

// Interner deduplicates type descriptors and hands out stable TypeIDs.
// Two TypeIDs are equal iff the underlying variants are structurally equal,
// including the content of payload lists. Two exceptions: type parameters and
// infer bindings are identified by declaration, and signatures are keyed by
// handle, not content. Single-threaded per compilation.
type Interner struct {
	types    []Type
	index    map[string]TypeID
	builtins Builtins

	objects   []ObjectInfo
	sigs      []SignatureInfo
	tuples    []TupleInfo
	lists     []ListInfo
	apps      []AppInfo
	mapped    []MappedInfo
	conds     []CondInfo
	templates []TemplateInfo
	params    []TypeParamInfo
	numbers   []float64
	numIndex  map[float64]uint32

	// Strings is the atom interner shared with the AST arena.
	Strings *source.Interner
}

// NewInterner constructs an interner seeded with the intrinsics.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		index:    make(map[string]TypeID, 256),
		numIndex: make(map[float64]uint32, 64),
		Strings:  strings,
	}
	// Reserve index 0 of every arena as the invalid sentinel.
	in.types = append(in.types, Type{Kind: KindInvalid})
	in.objects = append(in.objects, ObjectInfo{})
	in.sigs = append(in.sigs, SignatureInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.lists = append(in.lists, ListInfo{})
	in.apps = append(in.apps, AppInfo{})
	in.mapped = append(in.mapped, MappedInfo{})
	in.conds = append(in.conds, CondInfo{})
	in.templates = append(in.templates, TemplateInfo{})
	in.params = append(in.params, TypeParamInfo{})

	b := &in.builtins
	b.Never = in.intrinsic(IntrinsicNever)
	b.Null = in.intrinsic(IntrinsicNull)
	b.Undefined = in.intrinsic(IntrinsicUndefined)
	b.Void = in.intrinsic(IntrinsicVoid)
	b.Boolean = in.intrinsic(IntrinsicBoolean)
	b.Number = in.intrinsic(IntrinsicNumber)
	b.String = in.intrinsic(IntrinsicString)
	b.BigInt = in.intrinsic(IntrinsicBigInt)
	b.Symbol = in.intrinsic(IntrinsicSymbol)
	b.Object = in.intrinsic(IntrinsicObject)
	b.Any = in.intrinsic(IntrinsicAny)
	b.Unknown = in.intrinsic(IntrinsicUnknown)
	b.Error = in.intrinsic(IntrinsicError)
	b.StrictAny = in.intrinsic(IntrinsicStrictAny)
	b.Function = in.intrinsic(IntrinsicFunction)
	b.True = in.Intern(Type{Kind: KindLiteralBool, Payload: 1})
	b.False = in.Intern(Type{Kind: KindLiteralBool, Payload: 0})
	b.This = in.Intern(Type{Kind: KindThisType})
	return in
}

func (in *Interner) intrinsic(i Intrinsic) TypeID {
	return in.Intern(Type{Kind: KindIntrinsic, Payload: uint32(i)})
}

// Builtins returns the reserved intrinsic ids.
func (in *Interner) Builtins() Builtins { return in.builtins }

// Intern ensures the descriptor has a stable TypeID. Descriptors whose
// payload indexes a side table must have been built through the Make
// helpers so the payload content participates in the key.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := in.keyFor(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t, key)
}

func (in *Interner) internRaw(t Type, key string) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// KindOf returns the kind of id, or KindInvalid.
func (in *Interner) KindOf(id TypeID) Kind {
	if id == NoTypeID || int(id) >= len(in.types) {
		return KindInvalid
	}
	return in.types[id].Kind
}

// Len reports the number of interned types excluding the sentinel.
func (in *Interner) Len() int { return len(in.types) - 1 }

// keyFor builds the structural identity key. List payloads are expanded so
// equal content maps to equal keys regardless of payload index.
func (in *Interner) keyFor(t Type) string {
	var buf []byte
	buf = append(buf, byte(t.Kind))
	put32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	put32(uint32(t.Elem))
	put32(uint32(t.Key))
	put32(uint32(t.Def))
	put32(t.Sym)
	switch t.Kind {
	case KindObject:
		o := in.objects[t.Payload]
		buf = append(buf, byte(o.Flags))
		put32(o.Symbol)
		put32(uint32(o.StringIndex))
		put32(uint32(o.NumberIndex))
		for _, p := range o.Props {
			put32(uint32(p.Name))
			put32(uint32(p.Type))
			put32(uint32(p.WriteType))
			buf = append(buf, boolByte(p.Optional), boolByte(p.Readonly), boolByte(p.IsMethod), byte(p.Visibility))
		}
		buf = append(buf, 0xFE)
		for _, s := range o.Calls {
			put32(uint32(s))
		}
		buf = append(buf, 0xFE)
		for _, s := range o.Constructs {
			put32(uint32(s))
		}
	case KindTuple:
		for _, e := range in.tuples[t.Payload].Elems {
			put32(uint32(e.Type))
			put32(uint32(e.Label))
			buf = append(buf, boolByte(e.Optional), boolByte(e.Rest))
		}
	case KindUnion, KindIntersection:
		for _, m := range in.lists[t.Payload].Members {
			put32(uint32(m))
		}
	case KindApplication:
		a := in.apps[t.Payload]
		put32(uint32(a.Base))
		for _, m := range a.Args {
			put32(uint32(m))
		}
	case KindMapped:
		m := in.mapped[t.Payload]
		put32(uint32(m.TypeParam))
		put32(uint32(m.Keys))
		put32(uint32(m.Value))
		put32(uint32(m.NameType))
		buf = append(buf, byte(m.Optional+2), byte(m.Readonly+2))
	case KindConditional:
		c := in.conds[t.Payload]
		put32(uint32(c.Check))
		put32(uint32(c.Extends))
		put32(uint32(c.WhenTrue))
		put32(uint32(c.WhenFalse))
		buf = append(buf, boolByte(c.Distributive))
	case KindTemplateLiteral:
		tpl := in.templates[t.Payload]
		for _, a := range tpl.Texts {
			put32(uint32(a))
		}
		buf = append(buf, 0xFE)
		for _, h := range tpl.Holes {
			put32(uint32(h))
		}
	case KindTypeParameter, KindInfer:
		// Type parameters are identified by declaration, not content: two
		// parameters named T with the same constraint are distinct types.
		put32(t.Payload)
	default:
		put32(t.Payload)
	}
	return string(buf)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// --- Make helpers -----------------------------------------------------------

// MakeLiteralString interns a string literal type.
func (in *Interner) MakeLiteralString(value string) TypeID {
	atom := in.Strings.Intern(value)
	return in.Intern(Type{Kind: KindLiteralString, Payload: uint32(atom)})
}

// MakeLiteralNumber interns a numeric literal type.
func (in *Interner) MakeLiteralNumber(value float64) TypeID {
	idx, ok := in.numIndex[value]
	if !ok {
		lenNums, err := safecast.Conv[uint32](len(in.numbers))
		if err != nil {
			panic(fmt.Errorf("len(numbers) overflow: %w", err))
		}
		idx = lenNums
		in.numbers = append(in.numbers, value)
		in.numIndex[value] = idx
	}
	return in.Intern(Type{Kind: KindLiteralNumber, Payload: idx})
}

// MakeLiteralBigInt interns a bigint literal type from its text.
func (in *Interner) MakeLiteralBigInt(text string) TypeID {
	atom := in.Strings.Intern(text)
	return in.Intern(Type{Kind: KindLiteralBigInt, Payload: uint32(atom)})
}

// MakeLiteralBool returns the interned true/false literal type.
func (in *Interner) MakeLiteralBool(v bool) TypeID {
	if v {
		return in.builtins.True
	}
	return in.builtins.False
}

// MakeObject interns an object shape. Properties keep declaration order.
func (in *Interner) MakeObject(info ObjectInfo) TypeID {
	lenObjs, err := safecast.Conv[uint32](len(in.objects))
	if err != nil {
		panic(fmt.Errorf("len(objects) overflow: %w", err))
	}
	in.objects = append(in.objects, info)
	id := in.Intern(Type{Kind: KindObject, Payload: lenObjs})
	// Dedup hit: the appended info is unreachable; pop it to keep the arena
	// aligned with live payloads.
	if got := in.types[id].Payload; got != lenObjs {
		in.objects = in.objects[:lenObjs]
	}
	return id
}

// MakeSignature interns a call/construct signature and returns its handle.
func (in *Interner) MakeSignature(info SignatureInfo) SignatureID {
	lenSigs, err := safecast.Conv[uint32](len(in.sigs))
	if err != nil {
		panic(fmt.Errorf("len(sigs) overflow: %w", err))
	}
	in.sigs = append(in.sigs, info)
	return SignatureID(lenSigs)
}

// MakeFunction interns a callable shape with the given signatures.
func (in *Interner) MakeFunction(calls ...SignatureID) TypeID {
	return in.MakeObject(ObjectInfo{Calls: calls})
}

// MakeArray interns Array<elem>.
func (in *Interner) MakeArray(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem})
}

// MakeTuple interns a tuple type.
func (in *Interner) MakeTuple(elems ...TupleElem) TypeID {
	lenTuples, err := safecast.Conv[uint32](len(in.tuples))
	if err != nil {
		panic(fmt.Errorf("len(tuples) overflow: %w", err))
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: elems})
	id := in.Intern(Type{Kind: KindTuple, Payload: lenTuples})
	if got := in.types[id].Payload; got != lenTuples {
		in.tuples = in.tuples[:lenTuples]
	}
	return id
}

// MakeUnion interns the normalized union of members: flattened one level,
// deduplicated, sorted, with the absorbing identities applied
// (X|never = X, X|unknown = unknown, X|any = any).
func (in *Interner) MakeUnion(members ...TypeID) TypeID {
	b := in.builtins
	flat := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == NoTypeID || m == b.Never {
			continue
		}
		if m == b.Any || m == b.StrictAny {
			return m
		}
		if in.KindOf(m) == KindUnion {
			flat = append(flat, in.ListMembers(m)...)
			continue
		}
		flat = append(flat, m)
	}
	slices.Sort(flat)
	flat = slices.Compact(flat)
	if slices.Contains(flat, b.Unknown) {
		return b.Unknown
	}
	switch len(flat) {
	case 0:
		return b.Never
	case 1:
		return flat[0]
	}
	return in.makeList(KindUnion, flat)
}

// MakeIntersection interns the normalized intersection of members
// (X&never = never, X&unknown = X, X&any = any).
func (in *Interner) MakeIntersection(members ...TypeID) TypeID {
	b := in.builtins
	flat := make([]TypeID, 0, len(members))
	for _, m := range members {
		if m == NoTypeID || m == b.Unknown {
			continue
		}
		if m == b.Never {
			return b.Never
		}
		if m == b.Any || m == b.StrictAny {
			return b.Any
		}
		if in.KindOf(m) == KindIntersection {
			flat = append(flat, in.ListMembers(m)...)
			continue
		}
		flat = append(flat, m)
	}
	slices.Sort(flat)
	flat = slices.Compact(flat)
	switch len(flat) {
	case 0:
		return b.Unknown
	case 1:
		return flat[0]
	}
	return in.makeList(KindIntersection, flat)
}

func (in *Interner) makeList(kind Kind, members []TypeID) TypeID {
	lenLists, err := safecast.Conv[uint32](len(in.lists))
	if err != nil {
		panic(fmt.Errorf("len(lists) overflow: %w", err))
	}
	in.lists = append(in.lists, ListInfo{Members: members})
	id := in.Intern(Type{Kind: kind, Payload: lenLists})
	if got := in.types[id].Payload; got != lenLists {
		in.lists = in.lists[:lenLists]
	}
	return id
}

// MakeApplication interns Base<Args...> without evaluating it. BaseDef names
// the definition the base resolves to, for variance-guided subtyping.
func (in *Interner) MakeApplication(base TypeID, baseDef DefID, args []TypeID) TypeID {
	lenApps, err := safecast.Conv[uint32](len(in.apps))
	if err != nil {
		panic(fmt.Errorf("len(apps) overflow: %w", err))
	}
	in.apps = append(in.apps, AppInfo{Base: base, Args: args})
	id := in.Intern(Type{Kind: KindApplication, Def: baseDef, Payload: lenApps})
	if got := in.types[id].Payload; got != lenApps {
		in.apps = in.apps[:lenApps]
	}
	return id
}

// MakeMapped interns a mapped type.
func (in *Interner) MakeMapped(info MappedInfo) TypeID {
	lenMapped, err := safecast.Conv[uint32](len(in.mapped))
	if err != nil {
		panic(fmt.Errorf("len(mapped) overflow: %w", err))
	}
	in.mapped = append(in.mapped, info)
	id := in.Intern(Type{Kind: KindMapped, Payload: lenMapped})
	if got := in.types[id].Payload; got != lenMapped {
		in.mapped = in.mapped[:lenMapped]
	}
	return id
}

// MakeConditional interns a conditional type.
func (in *Interner) MakeConditional(info CondInfo) TypeID {
	lenConds, err := safecast.Conv[uint32](len(in.conds))
	if err != nil {
		panic(fmt.Errorf("len(conds) overflow: %w", err))
	}
	in.conds = append(in.conds, info)
	id := in.Intern(Type{Kind: KindConditional, Payload: lenConds})
	if got := in.types[id].Payload; got != lenConds {
		in.conds = in.conds[:lenConds]
	}
	return id
}

// MakeTemplate interns a template literal type.
func (in *Interner) MakeTemplate(info TemplateInfo) TypeID {
	lenTemplates, err := safecast.Conv[uint32](len(in.templates))
	if err != nil {
		panic(fmt.Errorf("len(templates) overflow: %w", err))
	}
	in.templates = append(in.templates, info)
	id := in.Intern(Type{Kind: KindTemplateLiteral, Payload: lenTemplates})
	if got := in.types[id].Payload; got != lenTemplates {
		in.templates = in.templates[:lenTemplates]
	}
	return id
}

// MakeTypeParameter allocates a fresh type parameter. Type parameters are
// never deduplicated: identity is the declaration, not the content.
func (in *Interner) MakeTypeParameter(info TypeParamInfo) TypeID {
	return in.makeParamLike(KindTypeParameter, info)
}

// MakeInfer allocates a fresh infer binding.
func (in *Interner) MakeInfer(info TypeParamInfo) TypeID {
	return in.makeParamLike(KindInfer, info)
}

func (in *Interner) makeParamLike(kind Kind, info TypeParamInfo) TypeID {
	lenParams, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("len(params) overflow: %w", err))
	}
	in.params = append(in.params, info)
	t := Type{Kind: kind, Payload: lenParams}
	return in.internRaw(t, in.keyFor(t))
}

// MakeKeyOf interns `keyof T`.
func (in *Interner) MakeKeyOf(operand TypeID) TypeID {
	return in.Intern(Type{Kind: KindKeyOf, Elem: operand})
}

// MakeReadonly interns the readonly marker over T.
func (in *Interner) MakeReadonly(operand TypeID) TypeID {
	return in.Intern(Type{Kind: KindReadonly, Elem: operand})
}

// MakeIndexedAccess interns T[K].
func (in *Interner) MakeIndexedAccess(obj, index TypeID) TypeID {
	return in.Intern(Type{Kind: KindIndexedAccess, Elem: obj, Key: index})
}

// MakeTypeQuery interns `typeof x` for a symbol handle.
func (in *Interner) MakeTypeQuery(sym uint32) TypeID {
	return in.Intern(Type{Kind: KindTypeQuery, Sym: sym})
}

// MakeLazy interns a deferred reference to a definition.
func (in *Interner) MakeLazy(def DefID) TypeID {
	return in.Intern(Type{Kind: KindLazy, Def: def})
}

// MakeEnum interns a nominal enum type: identity by DefID plus the
// structural union of its member literal types.
func (in *Interner) MakeEnum(def DefID, memberUnion TypeID) TypeID {
	return in.Intern(Type{Kind: KindEnum, Def: def, Elem: memberUnion})
}

// MakeUniqueSymbol interns a unique-symbol type for a symbol handle.
func (in *Interner) MakeUniqueSymbol(sym uint32) TypeID {
	return in.Intern(Type{Kind: KindUniqueSymbol, Sym: sym})
}

// --- Payload accessors ------------------------------------------------------

// Object returns the payload of an object shape.
func (in *Interner) Object(id TypeID) (*ObjectInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindObject {
		return nil, false
	}
	return &in.objects[t.Payload], true
}

// Signature returns a signature payload.
func (in *Interner) Signature(id SignatureID) *SignatureInfo {
	return &in.sigs[id]
}

// Tuple returns the payload of a tuple type.
func (in *Interner) Tuple(id TypeID) (*TupleInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTuple {
		return nil, false
	}
	return &in.tuples[t.Payload], true
}

// ListMembers returns the members of a union or intersection.
func (in *Interner) ListMembers(id TypeID) []TypeID {
	t, ok := in.Lookup(id)
	if !ok || (t.Kind != KindUnion && t.Kind != KindIntersection) {
		return nil
	}
	return in.lists[t.Payload].Members
}

// App returns the payload of a generic application.
func (in *Interner) App(id TypeID) (*AppInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindApplication {
		return nil, false
	}
	return &in.apps[t.Payload], true
}

// Mapped returns the payload of a mapped type.
func (in *Interner) Mapped(id TypeID) (*MappedInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindMapped {
		return nil, false
	}
	return &in.mapped[t.Payload], true
}

// Cond returns the payload of a conditional type.
func (in *Interner) Cond(id TypeID) (*CondInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindConditional {
		return nil, false
	}
	return &in.conds[t.Payload], true
}

// Template returns the payload of a template literal type.
func (in *Interner) Template(id TypeID) (*TemplateInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindTemplateLiteral {
		return nil, false
	}
	return &in.templates[t.Payload], true
}

// Param returns the payload of a type parameter or infer binding.
func (in *Interner) Param(id TypeID) (*TypeParamInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || (t.Kind != KindTypeParameter && t.Kind != KindInfer) {
		return nil, false
	}
	return &in.params[t.Payload], true
}

// NumberValue returns the value of a numeric literal type.
func (in *Interner) NumberValue(id TypeID) (float64, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindLiteralNumber {
		return math.NaN(), false
	}
	return in.numbers[t.Payload], true
}

// StringValue returns the value of a string literal type.
func (in *Interner) StringValue(id TypeID) (string, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindLiteralString {
		return "", false
	}
	s, _ := in.Strings.Lookup(source.Atom(t.Payload))
	return s, true
}

// WithFreshness reinterns an object shape with the fresh bit set or cleared.
// Non-object types are returned unchanged.
func (in *Interner) WithFreshness(id TypeID, fresh bool) TypeID {
	o, ok := in.Object(id)
	if !ok {
		return id
	}
	has := o.Flags&ObjectFresh != 0
	if has == fresh {
		return id
	}
	clone := *o
	clone.Props = slices.Clone(o.Props)
	if fresh {
		clone.Flags |= ObjectFresh
	} else {
		clone.Flags &^= ObjectFresh
	}
	return in.MakeObject(clone)
}

// IsFresh reports whether id is a fresh object-literal type.
func (in *Interner) IsFresh(id TypeID) bool {
	if o, ok := in.Object(id); ok {
		return o.Flags&ObjectFresh != 0
	}
	return false
}
