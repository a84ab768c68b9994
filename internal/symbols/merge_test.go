package symbols

import (
	"testing"

	"tyco/internal/source"
)

func TestCanMergeTable(t *testing.T) {
	cases := []struct {
		name string
		a, b Flags
		want bool
	}{
		{"interface+interface", FlagInterface, FlagInterface, true},
		{"interface+class", FlagInterface, FlagClass, true},
		{"class+interface", FlagClass, FlagInterface, true},
		{"module+module", FlagModule, FlagNamespaceModule, true},
		{"module+class", FlagModule, FlagClass, true},
		{"module+function", FlagModule, FlagFunction, true},
		{"module+enum", FlagModule, FlagEnum, true},
		{"module+interface", FlagModule, FlagInterface, true},
		{"namespace+var", FlagNamespaceModule, FlagFunctionScopedVariable, true},
		{"function+function", FlagFunction, FlagFunction, true},
		{"function+class", FlagFunction, FlagClass, true},
		{"method+method", FlagMethod, FlagMethod, true},
		{"alias+value", FlagTypeAlias, FlagBlockScopedVariable, true},
		{"interface+value", FlagInterface, FlagFunctionScopedVariable, true},

		{"class+class", FlagClass, FlagClass, false},
		{"let+let", FlagBlockScopedVariable, FlagBlockScopedVariable, false},
		{"let+class", FlagBlockScopedVariable, FlagClass, false},
		{"alias+alias", FlagTypeAlias, FlagTypeAlias, false},
		{"alias+interface", FlagTypeAlias, FlagInterface, false},
		{"enum-member+enum-member", FlagEnumMember, FlagEnumMember, false},
	}
	for _, tc := range cases {
		if got := CanMerge(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: CanMerge = %v, want %v", tc.name, got, tc.want)
		}
		if got := CanMerge(tc.b, tc.a); got != tc.want {
			t.Errorf("%s (swapped): CanMerge = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// Merge commutativity: the order of two mergeable declarations does not
// affect the resulting flag set or declaration count.
func TestMergeCommutativity(t *testing.T) {
	run := func(first, second Flags) (Flags, int) {
		arena := NewArena(0)
		in := source.NewInterner()
		name := in.Intern("L")
		id := arena.New(name, 0)
		arena.AddDeclaration(id, 1, first)
		arena.AddDeclaration(id, 2, second)
		s := arena.Get(id)
		return s.Flags, len(s.Decls)
	}
	f1, n1 := run(FlagInterface, FlagClass)
	f2, n2 := run(FlagClass, FlagInterface)
	if f1 != f2 || n1 != n2 {
		t.Fatalf("merge must be commutative: (%v,%d) vs (%v,%d)", f1, n1, f2, n2)
	}
}
