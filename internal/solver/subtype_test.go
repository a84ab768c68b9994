package solver

import (
	"testing"

	"tyco/internal/source"
	"tyco/internal/types"
)

func newChecker() (*SubtypeChecker, types.Builtins) {
	in := types.NewInterner(nil)
	c := NewSubtypeChecker(in)
	c.Cache = NewCache()
	return c, in.Builtins()
}

func sampleTypes(in *types.Interner) []types.TypeID {
	b := in.Builtins()
	x := in.Strings.Intern("x")
	obj := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: x, Type: b.Number}}})
	return []types.TypeID{
		b.Never, b.Null, b.Undefined, b.Void, b.Boolean, b.Number, b.String,
		b.BigInt, b.Symbol, b.Any, b.Unknown,
		in.MakeLiteralString("a"), in.MakeLiteralNumber(1), in.MakeLiteralBool(true),
		obj, in.MakeArray(b.String),
		in.MakeTuple(types.TupleElem{Type: b.Number}, types.TupleElem{Type: b.String}),
		in.MakeUnion(b.String, b.Number),
		in.MakeIntersection(obj, in.MakeObject(types.ObjectInfo{})),
	}
}

// Property 1: reflexivity.
func TestSubtypeReflexivity(t *testing.T) {
	c, _ := newChecker()
	for _, id := range sampleTypes(c.In) {
		if !c.Check(id, id).IsTrue() {
			t.Errorf("T <: T must hold for %s", c.In.Format(id))
		}
	}
}

// Property 2: never is bottom, unknown is top.
func TestSubtypeTopBottom(t *testing.T) {
	c, b := newChecker()
	for _, id := range sampleTypes(c.In) {
		if !c.Check(b.Never, id).IsTrue() {
			t.Errorf("never <: %s must hold", c.In.Format(id))
		}
		if !c.Check(id, b.Unknown).IsTrue() {
			t.Errorf("%s <: unknown must hold", c.In.Format(id))
		}
	}
}

// Property 3: any propagates in both directions under AnyAll.
func TestSubtypeAnyPropagation(t *testing.T) {
	c, b := newChecker()
	for _, id := range sampleTypes(c.In) {
		if !c.Check(b.Any, id).IsTrue() {
			t.Errorf("any <: %s must hold", c.In.Format(id))
		}
		if !c.Check(id, b.Any).IsTrue() {
			t.Errorf("%s <: any must hold", c.In.Format(id))
		}
	}
}

// Properties 4 and 5: union elimination and introduction.
func TestUnionEliminationIntroduction(t *testing.T) {
	c, b := newChecker()
	in := c.In
	a := in.MakeLiteralString("a")
	bb := in.MakeLiteralString("b")
	u := in.MakeUnion(a, bb)

	// (A|B) <: T iff A <: T and B <: T.
	if !c.Check(u, b.String).IsTrue() {
		t.Errorf(`"a"|"b" <: string must hold`)
	}
	if c.Check(u, a).IsTrue() {
		t.Errorf(`"a"|"b" <: "a" must fail (b does not fit)`)
	}
	// S <: A implies S <: A|B.
	if !c.Check(a, u).IsTrue() {
		t.Errorf(`"a" <: "a"|"b" must hold`)
	}
	if !c.Check(bb, u).IsTrue() {
		t.Errorf(`"b" <: "a"|"b" must hold`)
	}
	if c.Check(b.String, u).IsTrue() {
		t.Errorf(`string <: "a"|"b" must fail`)
	}
}

// Property 6: intersection elimination on the target.
func TestIntersectionTargetElimination(t *testing.T) {
	c, b := newChecker()
	in := c.In
	x := in.Strings.Intern("x")
	y := in.Strings.Intern("y")
	withX := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: x, Type: b.Number}}})
	withY := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: y, Type: b.String}}})
	withBoth := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: x, Type: b.Number}, {Name: y, Type: b.String},
	}})
	inter := in.MakeIntersection(withX, withY)

	if !c.Check(withBoth, inter).IsTrue() {
		t.Errorf("{x,y} <: {x}&{y} must hold")
	}
	if c.Check(withX, inter).IsTrue() {
		t.Errorf("{x} <: {x}&{y} must fail")
	}
	// Intersection source satisfies an object target through merged props.
	if !c.Check(inter, withBoth).IsTrue() {
		t.Errorf("{x}&{y} <: {x,y} must hold")
	}
}

func TestLiteralWidening(t *testing.T) {
	c, b := newChecker()
	in := c.In
	if !c.Check(in.MakeLiteralString("hi"), b.String).IsTrue() {
		t.Errorf("string literal <: string must hold")
	}
	if !c.Check(in.MakeLiteralNumber(3), b.Number).IsTrue() {
		t.Errorf("number literal <: number must hold")
	}
	if c.Check(b.String, in.MakeLiteralString("hi")).IsTrue() {
		t.Errorf("string <: literal must fail")
	}
	if c.Check(in.MakeLiteralString("a"), in.MakeLiteralString("b")).IsTrue() {
		t.Errorf("distinct literals must be disjoint")
	}
}

func TestBooleanDecomposition(t *testing.T) {
	c, b := newChecker()
	u := c.In.MakeUnion(b.True, b.False)
	if !c.Check(b.Boolean, u).IsTrue() {
		t.Errorf("boolean <: true|false must hold")
	}
}

func TestObjectStructural(t *testing.T) {
	c, b := newChecker()
	in := c.In
	x := in.Strings.Intern("x")
	narrow := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: x, Type: b.Number}}})
	wideOpt := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: x, Type: b.Number, Optional: true}}})

	if !c.Check(narrow, wideOpt).IsTrue() {
		t.Errorf("{x: number} <: {x?: number} must hold")
	}
	if !c.Check(in.MakeObject(types.ObjectInfo{}), wideOpt).IsTrue() {
		t.Errorf("{} <: {x?: number} must hold")
	}
	if c.Check(in.MakeObject(types.ObjectInfo{}), narrow).IsTrue() {
		t.Errorf("{} <: {x: number} must fail")
	}
}

func TestFreshExcessProperty(t *testing.T) {
	c, b := newChecker()
	in := c.In
	x := in.Strings.Intern("x")
	y := in.Strings.Intern("y")
	target := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: x, Type: b.Number}}})
	src := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: x, Type: b.Number}, {Name: y, Type: b.Number},
	}})

	if !c.Check(src, target).IsTrue() {
		t.Errorf("non-fresh wider object must be assignable")
	}
	fresh := in.WithFreshness(src, true)
	tracer := &CollectTracer{}
	c.Tracer = tracer
	if c.Check(fresh, target).IsTrue() {
		t.Errorf("fresh literal with excess property must be rejected")
	}
	found := false
	for _, m := range tracer.Events {
		if m.Kind == MismatchExcessProperty && m.Property == y {
			found = true
		}
	}
	if !found {
		t.Errorf("tracer should report the excess property, got %+v", tracer.Events)
	}
}

func TestFunctionVariance(t *testing.T) {
	c, b := newChecker()
	in := c.In
	animal := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("name"), Type: b.String},
	}})
	dog := in.MakeObject(types.ObjectInfo{Props: []types.Prop{
		{Name: in.Strings.Intern("name"), Type: b.String},
		{Name: in.Strings.Intern("bark"), Type: b.Boolean},
	}})

	fnOf := func(param, ret types.TypeID) types.TypeID {
		sig := in.MakeSignature(types.SignatureInfo{
			Params: []types.Param{{Name: in.Strings.Intern("a"), Type: param}},
			Return: ret,
		})
		return in.MakeFunction(sig)
	}

	takesAnimal := fnOf(animal, b.Void)
	takesDog := fnOf(dog, b.Void)

	// Contravariant parameters under strict function types.
	if !c.Check(takesAnimal, takesDog).IsTrue() {
		t.Errorf("(Animal) => void <: (Dog) => void must hold")
	}
	if c.Check(takesDog, takesAnimal).IsTrue() {
		t.Errorf("(Dog) => void <: (Animal) => void must fail under strict function types")
	}

	// Covariant returns; void target accepts any return.
	retDog := fnOf(animal, dog)
	retAnimal := fnOf(animal, animal)
	if !c.Check(retDog, retAnimal).IsTrue() {
		t.Errorf("() => Dog <: () => Animal must hold")
	}
	if c.Check(retAnimal, retDog).IsTrue() {
		t.Errorf("() => Animal <: () => Dog must fail")
	}
	if !c.Check(retDog, fnOf(animal, b.Void)).IsTrue() {
		t.Errorf("void-returning target must accept any source return")
	}
}

func TestRequiredParamCount(t *testing.T) {
	c, b := newChecker()
	in := c.In
	fn := func(params ...types.TypeID) types.TypeID {
		ps := make([]types.Param, len(params))
		for i, p := range params {
			ps[i] = types.Param{Name: in.Strings.Intern("p"), Type: p}
		}
		return in.MakeFunction(in.MakeSignature(types.SignatureInfo{Params: ps, Return: b.Void}))
	}
	oneArg := fn(b.Number)
	twoArgs := fn(b.Number, b.String)

	// Fewer parameters fit a wider target; more required do not.
	if !c.Check(oneArg, twoArgs).IsTrue() {
		t.Errorf("(number) => void <: (number, string) => void must hold")
	}
	if c.Check(twoArgs, oneArg).IsTrue() {
		t.Errorf("(number, string) => void <: (number) => void must fail")
	}
}

func TestTupleAndArray(t *testing.T) {
	c, b := newChecker()
	in := c.In
	pair := in.MakeTuple(types.TupleElem{Type: b.Number}, types.TupleElem{Type: b.Number})
	nums := in.MakeArray(b.Number)
	if !c.Check(pair, nums).IsTrue() {
		t.Errorf("[number, number] <: number[] must hold")
	}
	if c.Check(nums, pair).IsTrue() {
		t.Errorf("number[] <: [number, number] must fail")
	}
	withOpt := in.MakeTuple(
		types.TupleElem{Type: b.Number},
		types.TupleElem{Type: b.Number, Optional: true})
	single := in.MakeTuple(types.TupleElem{Type: b.Number})
	if !c.Check(single, withOpt).IsTrue() {
		t.Errorf("[number] <: [number, number?] must hold")
	}
}

// Property 9: cycle safety. A self-referential definition terminates with a
// coinductive success or a bounded failure, never a hang.
func TestCycleSafety(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	next := in.Strings.Intern("next")

	// Two structurally identical recursive lists through Lazy defs.
	const defA, defB = 1, 2
	r := &loopResolver{in: in, bodies: map[types.DefID]types.TypeID{}}
	r.bodies[defA] = in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: next, Type: in.MakeLazy(defA)}}})
	r.bodies[defB] = in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: next, Type: in.MakeLazy(defB)}}})

	c := NewSubtypeCheckerWith(in, r, DefaultOptions())
	c.Cache = NewCache()
	res := c.Check(in.MakeLazy(defA), in.MakeLazy(defB))
	if !res.IsTrue() {
		t.Fatalf("recursive structurally-equal lists must be mutual subtypes, got %s", res)
	}
	_ = b
}

type loopResolver struct {
	NoopResolver
	in     *types.Interner
	bodies map[types.DefID]types.TypeID
}

func (r *loopResolver) ResolveDef(def types.DefID) types.TypeID { return r.bodies[def] }
func (r *loopResolver) SymbolOfDef(def types.DefID) uint32      { return uint32(def) }

func TestDepthExceededOnExpansiveRecursion(t *testing.T) {
	in := types.NewInterner(nil)
	v := in.Strings.Intern("v")
	// type T<X> = { v: T<Box<X>> } — expansive, never cycles at the same pair.
	r := &expansiveResolver{in: in, v: v}
	c := NewSubtypeCheckerWith(in, r, DefaultOptions())
	c.Cache = NewCache()

	lhs := in.MakeApplication(in.MakeLazy(1), 1, []types.TypeID{in.Builtins().String})
	rhs := in.MakeApplication(in.MakeLazy(1), 1, []types.TypeID{in.Builtins().Number})
	res := c.Check(lhs, rhs)
	if res == CycleDetected || res == True {
		t.Fatalf("expansive recursion should not be accepted coinductively, got %s", res)
	}
}

type expansiveResolver struct {
	NoopResolver
	in    *types.Interner
	v     source.Atom
	param types.TypeID
}

func (r *expansiveResolver) ResolveDef(types.DefID) types.TypeID {
	if !r.param.IsValid() {
		r.param = r.in.MakeTypeParameter(types.TypeParamInfo{Name: r.in.Strings.Intern("X")})
	}
	boxed := r.in.MakeTuple(types.TupleElem{Type: r.param})
	inner := r.in.MakeApplication(r.in.MakeLazy(1), 1, []types.TypeID{boxed})
	return r.in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: r.v, Type: inner}}})
}

func (r *expansiveResolver) DefTypeParams(types.DefID) []types.TypeID {
	if !r.param.IsValid() {
		r.param = r.in.MakeTypeParameter(types.TypeParamInfo{Name: r.in.Strings.Intern("X")})
	}
	return []types.TypeID{r.param}
}

func (r *expansiveResolver) SymbolOfDef(types.DefID) uint32 { return 0 }

func TestTemplateLiteralMatching(t *testing.T) {
	c, b := newChecker()
	in := c.In
	// `get${string}` accepts "getName" but not "setName".
	tpl := in.MakeTemplate(types.TemplateInfo{
		Texts: []source.Atom{in.Strings.Intern("get"), in.Strings.Intern("")},
		Holes: []types.TypeID{b.String},
	})
	if !c.Check(in.MakeLiteralString("getName"), tpl).IsTrue() {
		t.Errorf(`"getName" <: ` + "`get${string}` must hold")
	}
	if c.Check(in.MakeLiteralString("setName"), tpl).IsTrue() {
		t.Errorf(`"setName" <: ` + "`get${string}` must fail")
	}
	// `${number}` accepts "1.5", declines "x".
	numTpl := in.MakeTemplate(types.TemplateInfo{
		Texts: []source.Atom{in.Strings.Intern(""), in.Strings.Intern("")},
		Holes: []types.TypeID{b.Number},
	})
	if !c.Check(in.MakeLiteralString("1.5"), numTpl).IsTrue() {
		t.Errorf(`"1.5" <: ` + "`${number}` must hold")
	}
	if c.Check(in.MakeLiteralString("x"), numTpl).IsTrue() {
		t.Errorf(`"x" <: ` + "`${number}` must fail")
	}
	if !c.Check(tpl, b.String).IsTrue() {
		t.Errorf("template literal <: string must hold")
	}
}

func TestEnumNominality(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()
	r := &enumResolver{numeric: map[types.DefID]bool{1: true, 2: true}}
	c := NewSubtypeCheckerWith(in, r, DefaultOptions())
	c.Cache = NewCache()

	membersA := in.MakeUnion(in.MakeLiteralNumber(0), in.MakeLiteralNumber(1))
	enumA := in.MakeEnum(1, membersA)
	enumB := in.MakeEnum(2, membersA)

	if !c.Check(enumA, enumA).IsTrue() {
		t.Errorf("enum must be assignable to itself")
	}
	if c.Check(enumA, enumB).IsTrue() {
		t.Errorf("distinct enum defs must never subtype each other")
	}
	if !c.Check(in.MakeLiteralNumber(0), enumA).IsTrue() {
		t.Errorf("member literal <: enum must hold")
	}
	// Open numeric enums, both directions.
	if !c.Check(b.Number, enumA).IsTrue() {
		t.Errorf("number <: numeric enum must hold (open enums)")
	}
	if !c.Check(enumA, b.Number).IsTrue() {
		t.Errorf("numeric enum <: number must hold")
	}
}

type enumResolver struct {
	NoopResolver
	numeric map[types.DefID]bool
}

func (r *enumResolver) IsNumericEnum(def types.DefID) bool { return r.numeric[def] }

func TestNullUndefinedStrictness(t *testing.T) {
	in := types.NewInterner(nil)
	b := in.Builtins()

	strict := NewSubtypeCheckerWith(in, NoopResolver{}, DefaultOptions())
	strict.Cache = NewCache()
	if strict.Check(b.Null, b.String).IsTrue() {
		t.Errorf("null <: string must fail under strict null checks")
	}
	if !strict.Check(b.Undefined, b.Void).IsTrue() {
		t.Errorf("undefined <: void must hold")
	}

	legacy := DefaultOptions()
	legacy.StrictNullChecks = false
	loose := NewSubtypeCheckerWith(in, NoopResolver{}, legacy)
	loose.Cache = NewCache()
	if !loose.Check(b.Null, b.String).IsTrue() {
		t.Errorf("null <: string must hold without strict null checks")
	}
}

func TestCacheStoresDefinitiveOnly(t *testing.T) {
	c, b := newChecker()
	in := c.In
	c.Check(in.MakeLiteralString("a"), b.String)
	if c.Cache.Len() == 0 {
		t.Fatalf("definitive results must be cached")
	}

	// A bounded failure is not definitive and stays out of the cache.
	shallow, sb := newChecker()
	shallow.MaxDepth = 1
	u := shallow.In.MakeUnion(shallow.In.MakeLiteralString("a"), shallow.In.MakeLiteralString("b"))
	if res := shallow.Check(u, sb.String); res != DepthExceeded {
		t.Fatalf("a depth-bounded check should report depth-exceeded, got %s", res)
	}
	if shallow.Cache.Len() != 0 {
		t.Fatalf("non-definitive results must not be cached")
	}
}
