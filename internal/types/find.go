package types

import "tyco/internal/source"

// FindProp looks up a named property on an object shape, including members
// contributed by every branch of an intersection. For intersections the
// first branch that provides the name wins.
func (in *Interner) FindProp(id TypeID, name source.Atom) (Prop, bool) {
	switch in.KindOf(id) {
	case KindObject:
		o, _ := in.Object(id)
		for _, p := range o.Props {
			if p.Name == name {
				return p, true
			}
		}
	case KindIntersection:
		for _, m := range in.ListMembers(id) {
			if p, ok := in.FindProp(m, name); ok {
				return p, true
			}
		}
	case KindReadonly:
		t := in.MustLookup(id)
		if p, ok := in.FindProp(t.Elem, name); ok {
			p.Readonly = true
			return p, true
		}
	}
	return Prop{}, false
}

// IsUnit reports whether distinct TypeIDs of this kind imply disjoint types.
// Excludes null/undefined/void/never (special assignability) and tuples
// (labels change identity without changing compatibility).
func (in *Interner) IsUnit(id TypeID) bool {
	switch in.KindOf(id) {
	case KindLiteralString, KindLiteralNumber, KindLiteralBigInt, KindLiteralBool, KindUniqueSymbol:
		return true
	}
	return false
}

// IsNullish reports null or undefined.
func (in *Interner) IsNullish(id TypeID) bool {
	b := in.builtins
	return id == b.Null || id == b.Undefined
}

// BaseOfLiteral returns the primitive a literal type widens to.
func (in *Interner) BaseOfLiteral(id TypeID) TypeID {
	b := in.builtins
	switch in.KindOf(id) {
	case KindLiteralString:
		return b.String
	case KindLiteralNumber:
		return b.Number
	case KindLiteralBigInt:
		return b.BigInt
	case KindLiteralBool:
		return b.Boolean
	case KindUniqueSymbol:
		return b.Symbol
	}
	return id
}

// KeysOf computes the key set of a concrete object shape as a union of
// string literal types (plus string/number when indexers exist). Returns
// (NoTypeID, false) when the shape is not statically known.
func (in *Interner) KeysOf(id TypeID) (TypeID, bool) {
	switch in.KindOf(id) {
	case KindObject:
		o, _ := in.Object(id)
		members := make([]TypeID, 0, len(o.Props)+2)
		for _, p := range o.Props {
			name, _ := in.Strings.Lookup(p.Name)
			members = append(members, in.MakeLiteralString(name))
		}
		if o.StringIndex.IsValid() {
			members = append(members, in.builtins.String)
		}
		if o.NumberIndex.IsValid() {
			members = append(members, in.builtins.Number)
		}
		return in.MakeUnion(members...), true
	case KindTuple:
		tup, _ := in.Tuple(id)
		members := make([]TypeID, 0, len(tup.Elems))
		for i := range tup.Elems {
			members = append(members, in.MakeLiteralNumber(float64(i)))
		}
		return in.MakeUnion(members...), true
	case KindArray:
		return in.builtins.Number, true
	case KindEnum:
		t := in.MustLookup(id)
		return in.KeysOf(t.Elem)
	case KindIntersection:
		var members []TypeID
		for _, m := range in.ListMembers(id) {
			k, ok := in.KeysOf(m)
			if !ok {
				return NoTypeID, false
			}
			members = append(members, k)
		}
		return in.MakeUnion(members...), true
	}
	return NoTypeID, false
}

// PropByKey projects T[K] for a literal key against a concrete shape.
func (in *Interner) PropByKey(obj, key TypeID) (TypeID, bool) {
	switch in.KindOf(key) {
	case KindLiteralString:
		name, _ := in.StringValue(key)
		if p, ok := in.FindProp(obj, in.Strings.Intern(name)); ok {
			return p.Type, true
		}
		if o, ok := in.Object(obj); ok && o.StringIndex.IsValid() {
			return o.StringIndex, true
		}
	case KindLiteralNumber:
		if tup, ok := in.Tuple(obj); ok {
			v, _ := in.NumberValue(key)
			i := int(v)
			if i >= 0 && i < len(tup.Elems) && float64(i) == v {
				return tup.Elems[i].Type, true
			}
			return NoTypeID, false
		}
		if in.KindOf(obj) == KindArray {
			return in.MustLookup(obj).Elem, true
		}
		if o, ok := in.Object(obj); ok {
			if o.NumberIndex.IsValid() {
				return o.NumberIndex, true
			}
			if o.StringIndex.IsValid() {
				return o.StringIndex, true
			}
		}
	}
	return NoTypeID, false
}
