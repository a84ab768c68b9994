package solver

import (
	"testing"

	"tyco/internal/source"
	"tyco/internal/types"
)

func TestConditionalEvaluatesConcreteCheck(t *testing.T) {
	c, b := newChecker()
	in := c.In
	// "x" extends string ? true : false  →  true
	cond := in.MakeConditional(types.CondInfo{
		Check:     in.MakeLiteralString("x"),
		Extends:   b.String,
		WhenTrue:  b.True,
		WhenFalse: b.False,
	})
	if got := c.Evaluator().Evaluate(cond); got != b.True {
		t.Fatalf("conditional should pick the true branch, got %s", in.Format(got))
	}
	// number extends string ? true : false  →  false
	cond2 := in.MakeConditional(types.CondInfo{
		Check:     b.Number,
		Extends:   b.String,
		WhenTrue:  b.True,
		WhenFalse: b.False,
	})
	if got := c.Evaluator().Evaluate(cond2); got != b.False {
		t.Fatalf("conditional should pick the false branch, got %s", in.Format(got))
	}
}

func TestConditionalDistributesOverUnion(t *testing.T) {
	c, b := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	// T extends string ? "s" : "n", distributive, instantiated at string|number.
	cond := in.MakeConditional(types.CondInfo{
		Check:        tp,
		Extends:      b.String,
		WhenTrue:     in.MakeLiteralString("s"),
		WhenFalse:    in.MakeLiteralString("n"),
		Distributive: true,
	})
	inst := c.Evaluator().Instantiate(cond, Substitution{tp: in.MakeUnion(b.String, b.Number)})
	got := c.Evaluator().Evaluate(inst)
	want := in.MakeUnion(in.MakeLiteralString("s"), in.MakeLiteralString("n"))
	if got != want {
		t.Fatalf("distribution: got %s, want %s", in.Format(got), in.Format(want))
	}
}

func TestConditionalInferBinding(t *testing.T) {
	c, b := newChecker()
	in := c.In
	// string[] extends (infer E)[] ? E : never  →  string
	infer := in.MakeInfer(types.TypeParamInfo{Name: in.Strings.Intern("E")})
	cond := in.MakeConditional(types.CondInfo{
		Check:     in.MakeArray(b.String),
		Extends:   in.MakeArray(infer),
		WhenTrue:  infer,
		WhenFalse: b.Never,
	})
	if got := c.Evaluator().Evaluate(cond); got != b.String {
		t.Fatalf("infer should bind the element type, got %s", in.Format(got))
	}
}

func TestKeyOfConcreteObject(t *testing.T) {
	c, b := newChecker()
	in := c.In
	obj := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("a"), Type: b.Number},
		{Name: in.Strings.Intern("b"), Type: b.String},
	}})
	got := c.Evaluator().Evaluate(in.MakeKeyOf(obj))
	want := in.MakeUnion(in.MakeLiteralString("a"), in.MakeLiteralString("b"))
	if got != want {
		t.Fatalf("keyof: got %s, want %s", in.Format(got), in.Format(want))
	}
}

func TestIndexedAccessProjection(t *testing.T) {
	c, b := newChecker()
	in := c.In
	obj := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("a"), Type: b.Number},
	}})
	got := c.Evaluator().Evaluate(in.MakeIndexedAccess(obj, in.MakeLiteralString("a")))
	if got != b.Number {
		t.Fatalf("T[\"a\"] should project the property type, got %s", in.Format(got))
	}
	// Union keys project to the union of members.
	obj2 := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("a"), Type: b.Number},
		{Name: in.Strings.Intern("b"), Type: b.String},
	}})
	keys := in.MakeUnion(in.MakeLiteralString("a"), in.MakeLiteralString("b"))
	got2 := c.Evaluator().Evaluate(in.MakeIndexedAccess(obj2, keys))
	if got2 != in.MakeUnion(b.Number, b.String) {
		t.Fatalf("T[keyof T] projection: got %s", in.Format(got2))
	}
}

func TestNoUncheckedIndexedAccessAddsUndefined(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	opts := DefaultOptions()
	opts.NoUncheckedIndexedAccess = true
	c := NewSubtypeCheckerWith(in, NoopResolver{}, opts)
	c.Cache = NewCache()
	arr := in.MakeArray(b.String)
	got := c.Evaluator().Evaluate(in.MakeIndexedAccess(arr, b.Number))
	if got != in.MakeUnion(b.String, b.Undefined) {
		t.Fatalf("indexed access should include undefined, got %s", in.Format(got))
	}
}

func TestMappedTypeExpansion(t *testing.T) {
	c, b := newChecker()
	in := c.In
	obj := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("a"), Type: b.Number},
		{Name: in.Strings.Intern("b"), Type: b.String},
	}})
	k := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("K")})
	// { [K in keyof O]: O[K] } over a concrete O reproduces the shape.
	mapped := in.MakeMapped(types.MappedInfo{
		TypeParam: k,
		Keys:      in.MakeKeyOf(obj),
		Value:     in.MakeIndexedAccess(obj, k),
	})
	got := c.Evaluator().Evaluate(mapped)
	o, ok := in.Object(got)
	if !ok || len(o.Props) != 2 {
		t.Fatalf("mapped type should expand to a two-prop object, got %s", in.Format(got))
	}
	if p, _ := in.FindProp(got, in.Strings.Intern("a")); p.Type != b.Number {
		t.Fatalf("prop a should map to number, got %s", in.Format(p.Type))
	}
	// Readonly/optional modifiers apply.
	mappedOpt := in.MakeMapped(types.MappedInfo{
		TypeParam: k,
		Keys:      in.MakeKeyOf(obj),
		Value:     in.MakeIndexedAccess(obj, k),
		Optional:  types.MappedAdd,
	})
	gotOpt := c.Evaluator().Evaluate(mappedOpt)
	if p, _ := in.FindProp(gotOpt, in.Strings.Intern("a")); !p.Optional {
		t.Fatalf("+? modifier should mark properties optional")
	}
}

func TestMappedTypeDefersOnOpaqueKeys(t *testing.T) {
	c, _ := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	k := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("K")})
	mapped := in.MakeMapped(types.MappedInfo{
		TypeParam: k,
		Keys:      in.MakeKeyOf(tp),
		Value:     in.MakeIndexedAccess(tp, k),
	})
	if got := c.Evaluator().Evaluate(mapped); in.KindOf(got) != types.KindMapped {
		t.Fatalf("mapped types over unknown keys must defer, got %s", in.Format(got))
	}
}

func TestGenericApplicationBetaReduction(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	value := in.Strings.Intern("value")
	// type Box<T> = { value: T }; Box<string> evaluates to { value: string }.
	r := &boxResolver{in: in, value: value}
	c := NewSubtypeCheckerWith(in, r, DefaultOptions())
	c.Cache = NewCache()
	app := in.MakeApplication(in.MakeLazy(1), 1, []types.TypeID{b.String})
	got := c.Evaluator().Evaluate(app)
	if p, ok := in.FindProp(got, value); !ok || p.Type != b.String {
		t.Fatalf("Box<string> should expand to { value: string }, got %s", in.Format(got))
	}
}

type boxResolver struct {
	NoopResolver
	in    *types.Interner
	value source.Atom
	param types.TypeID
}

func (r *boxResolver) typeParam() types.TypeID {
	if !r.param.IsValid() {
		r.param = r.in.MakeTypeParameter(types.TypeParamInfo{Name: r.in.Strings.Intern("T")})
	}
	return r.param
}

func (r *boxResolver) ResolveDef(types.DefID) types.TypeID {
	return r.in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: r.value, Type: r.typeParam()}}})
}

func (r *boxResolver) DefTypeParams(types.DefID) []types.TypeID {
	return []types.TypeID{r.typeParam()}
}
