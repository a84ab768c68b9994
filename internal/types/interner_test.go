package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Never == NoTypeID || b.Any == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	tt := in.MustLookup(b.String)
	if tt.Kind != KindIntrinsic || Intrinsic(tt.Payload) != IntrinsicString {
		t.Fatalf("expected string intrinsic, got %+v", tt)
	}
}

func TestInternerDeduplicatesLiterals(t *testing.T) {
	in := NewInterner(nil)
	a := in.MakeLiteralString("a")
	b := in.MakeLiteralString("a")
	if a != b {
		t.Fatalf("string literals should be deduplicated")
	}
	n1 := in.MakeLiteralNumber(1)
	n2 := in.MakeLiteralNumber(1)
	if n1 != n2 {
		t.Fatalf("number literals should be deduplicated")
	}
	if a == n1 {
		t.Fatalf("distinct literals must differ")
	}
}

func TestInternerDeduplicatesObjects(t *testing.T) {
	in := NewInterner(nil)
	x := in.Strings.Intern("x")
	mk := func() TypeID {
		return in.MakeObject(ObjectInfo{Props: []Prop{{Name: x, Type: in.Builtins().Number}}})
	}
	if mk() != mk() {
		t.Fatalf("structurally equal objects should share a TypeID")
	}
}

func TestFreshnessAffectsIdentityButNotShape(t *testing.T) {
	in := NewInterner(nil)
	x := in.Strings.Intern("x")
	plain := in.MakeObject(ObjectInfo{Props: []Prop{{Name: x, Type: in.Builtins().Number}}})
	fresh := in.WithFreshness(plain, true)
	if plain == fresh {
		t.Fatalf("fresh and non-fresh shapes must differ")
	}
	if got := in.WithFreshness(fresh, false); got != plain {
		t.Fatalf("removing freshness should restore the plain shape")
	}
}

func TestUnionNormalization(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()

	// X | X = X
	if got := in.MakeUnion(b.String, b.String); got != b.String {
		t.Fatalf("A|A should collapse to A, got %s", in.Format(got))
	}
	// X | never = X
	if got := in.MakeUnion(b.String, b.Never); got != b.String {
		t.Fatalf("A|never should collapse to A")
	}
	// X | unknown = unknown
	if got := in.MakeUnion(b.String, b.Unknown); got != b.Unknown {
		t.Fatalf("A|unknown should collapse to unknown")
	}
	// X | any = any
	if got := in.MakeUnion(b.String, b.Any); got != b.Any {
		t.Fatalf("A|any should collapse to any")
	}
	// Order independence.
	u1 := in.MakeUnion(b.String, b.Number)
	u2 := in.MakeUnion(b.Number, b.String)
	if u1 != u2 {
		t.Fatalf("unions must be order independent")
	}
	// Nested unions flatten.
	u3 := in.MakeUnion(u1, b.Boolean)
	u4 := in.MakeUnion(b.Boolean, b.Number, b.String)
	if u3 != u4 {
		t.Fatalf("nested unions must flatten")
	}
	// Interning an already-normalized union is the identity.
	if got := in.MakeUnion(u1); got != u1 {
		t.Fatalf("normalizing a normalized union must be the identity")
	}
}

func TestIntersectionNormalization(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if got := in.MakeIntersection(b.String, b.Never); got != b.Never {
		t.Fatalf("A&never should collapse to never")
	}
	if got := in.MakeIntersection(b.String, b.Unknown); got != b.String {
		t.Fatalf("A&unknown should collapse to A")
	}
	if got := in.MakeIntersection(b.String, b.Any); got != b.Any {
		t.Fatalf("A&any should collapse to any")
	}
}

func TestTypeParametersAreNominal(t *testing.T) {
	in := NewInterner(nil)
	name := in.Strings.Intern("T")
	p1 := in.MakeTypeParameter(TypeParamInfo{Name: name})
	p2 := in.MakeTypeParameter(TypeParamInfo{Name: name})
	if p1 == p2 {
		t.Fatalf("distinct type parameter declarations must not be conflated")
	}
}

func TestKeysOfObject(t *testing.T) {
	in := NewInterner(nil)
	a := in.Strings.Intern("a")
	c := in.Strings.Intern("b")
	obj := in.MakeObject(ObjectInfo{Props: []Prop{
		{Name: a, Type: in.Builtins().Number},
		{Name: c, Type: in.Builtins().String},
	}})
	keys, ok := in.KeysOf(obj)
	if !ok {
		t.Fatalf("keys of a concrete object should be known")
	}
	want := in.MakeUnion(in.MakeLiteralString("a"), in.MakeLiteralString("b"))
	if keys != want {
		t.Fatalf("keyof = %s, want %s", in.Format(keys), in.Format(want))
	}
}

// Deterministic fuzz over small literal unions: reflexive identities and
// interner idempotence hold for every generated shape.
func TestUnionIdempotenceFuzz(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	atoms := []TypeID{
		b.String, b.Number, b.Boolean,
		in.MakeLiteralString("x"), in.MakeLiteralString("y"),
		in.MakeLiteralNumber(0), in.MakeLiteralNumber(1),
		in.MakeLiteralBool(true),
	}
	// Enumerate all 3-element multisets (with repetition) of the atom pool.
	for i := range atoms {
		for j := range atoms {
			for k := range atoms {
				u := in.MakeUnion(atoms[i], atoms[j], atoms[k])
				if again := in.MakeUnion(atoms[i], atoms[j], atoms[k]); again != u {
					t.Fatalf("union interning must be deterministic")
				}
				if perm := in.MakeUnion(atoms[k], atoms[i], atoms[j]); perm != u {
					t.Fatalf("union interning must be order independent")
				}
				if self := in.MakeUnion(u); self != u {
					t.Fatalf("re-normalizing must be the identity")
				}
			}
		}
	}
}
