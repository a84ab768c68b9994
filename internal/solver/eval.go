package solver

import (
	"tyco/internal/source"
	"tyco/internal/types"
)

// Substitution maps type-parameter ids to their replacements.
type Substitution map[types.TypeID]types.TypeID

const (
	evalFuel        = 50
	instantiateFuel = 50
)

type evalKey struct {
	id    types.TypeID
	flags uint16
}

// Evaluator reduces deferred type forms one outermost step at a time:
// Lazy resolution, generic beta-reduction, conditional selection and
// distribution, keyof/indexed-access projection and mapped-type expansion.
// It co-recurses with the subtype engine through the owning checker.
type Evaluator struct {
	c    *SubtypeChecker
	memo map[evalKey]types.TypeID
}

func newEvaluator(c *SubtypeChecker) *Evaluator {
	return &Evaluator{c: c, memo: make(map[evalKey]types.TypeID)}
}

// Evaluate reduces id to a fixpoint under bounded fuel. Irreducible forms
// (free type parameters, unknown defs) come back unchanged.
func (e *Evaluator) Evaluate(id types.TypeID) types.TypeID {
	key := evalKey{id, e.c.Opts.Packed()}
	if v, ok := e.memo[key]; ok {
		return v
	}
	cur := id
	for range evalFuel {
		next := e.Step(cur)
		if next == cur || next == NoType {
			break
		}
		cur = next
	}
	// No-progress results stay unmemoized: a Lazy that resolved to nothing
	// mid-realization may reduce once its definition lands.
	if cur != id {
		e.memo[key] = cur
	}
	return cur
}

// Step applies one outermost evaluation step, or returns id unchanged.
func (e *Evaluator) Step(id types.TypeID) types.TypeID {
	t, ok := e.c.In.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindLazy:
		// The error intrinsic doubles as the resolver's in-progress marker;
		// treat it as "not yet resolvable" rather than a real expansion.
		if r := e.c.Resolver.ResolveDef(t.Def); r.IsValid() && r != e.c.In.Builtins().Error {
			return r
		}
	case types.KindApplication:
		return e.stepApplication(id, t)
	case types.KindConditional:
		return e.stepConditional(id)
	case types.KindKeyOf:
		operand := e.Evaluate(t.Elem)
		if keys, known := e.c.In.KeysOf(operand); known {
			return keys
		}
		if operand != t.Elem {
			return e.c.In.MakeKeyOf(operand)
		}
	case types.KindIndexedAccess:
		return e.stepIndexedAccess(id, t)
	case types.KindMapped:
		return e.stepMapped(id)
	case types.KindTypeQuery:
		if r := e.c.Resolver.TypeOfSymbol(t.Sym); r.IsValid() {
			return r
		}
	}
	return id
}

func (e *Evaluator) stepApplication(id types.TypeID, t types.Type) types.TypeID {
	app, _ := e.c.In.App(id)
	def := t.Def
	if !def.IsValid() {
		return id
	}
	body := e.c.Resolver.ResolveDef(def)
	if !body.IsValid() {
		return id
	}
	params := e.c.Resolver.DefTypeParams(def)
	sub := make(Substitution, len(params))
	for i, p := range params {
		switch {
		case i < len(app.Args):
			sub[p] = app.Args[i]
		default:
			info, _ := e.c.In.Param(p)
			if info != nil && info.Default.IsValid() {
				sub[p] = info.Default
			} else {
				sub[p] = e.c.In.Builtins().Unknown
			}
		}
	}
	return e.Instantiate(body, sub)
}

func (e *Evaluator) stepConditional(id types.TypeID) types.TypeID {
	ci, _ := e.c.In.Cond(id)
	check := e.Evaluate(ci.Check)

	// Distribution over a union check side.
	if ci.Distributive && e.c.In.KindOf(check) == types.KindUnion {
		members := e.c.In.ListMembers(check)
		results := make([]types.TypeID, 0, len(members))
		for _, m := range members {
			branch := e.c.In.MakeConditional(types.CondInfo{
				Check:     m,
				Extends:   ci.Extends,
				WhenTrue:  ci.WhenTrue,
				WhenFalse: ci.WhenFalse,
			})
			results = append(results, e.Evaluate(branch))
		}
		return e.c.In.MakeUnion(results...)
	}

	if e.hasFreeParams(check, 0) {
		return id
	}

	// Bind infer occurrences in the extends clause against the check type.
	infers := e.collectInfers(ci.Extends, nil, 0)
	extends := ci.Extends
	var inferSub Substitution
	if len(infers) > 0 {
		ic := NewInference(e.c.In, infers)
		ic.Infer(check, extends, types.VarianceCovariant)
		sub, ok := ic.Solve(e.c)
		if !ok {
			return e.instantiateBranch(ci.WhenFalse, nil)
		}
		inferSub = sub
		extends = e.Instantiate(extends, sub)
	}

	saved := e.c.BypassEvaluation
	e.c.BypassEvaluation = true
	decided := e.c.Check(check, extends)
	e.c.BypassEvaluation = saved

	switch {
	case decided.IsTrue():
		return e.instantiateBranch(ci.WhenTrue, inferSub)
	case decided.IsFalse():
		return e.instantiateBranch(ci.WhenFalse, inferSub)
	default:
		// Resource-bounded outcome: stay un-reduced.
		return id
	}
}

func (e *Evaluator) instantiateBranch(branch types.TypeID, sub Substitution) types.TypeID {
	if len(sub) == 0 {
		return e.Evaluate(branch)
	}
	return e.Evaluate(e.Instantiate(branch, sub))
}

func (e *Evaluator) stepIndexedAccess(id types.TypeID, t types.Type) types.TypeID {
	obj := e.Evaluate(t.Elem)
	key := e.Evaluate(t.Key)

	if e.c.In.KindOf(key) == types.KindUnion {
		members := e.c.In.ListMembers(key)
		parts := make([]types.TypeID, 0, len(members))
		for _, k := range members {
			parts = append(parts, e.Evaluate(e.c.In.MakeIndexedAccess(obj, k)))
		}
		return e.c.In.MakeUnion(parts...)
	}
	if projected, ok := e.c.In.PropByKey(obj, key); ok {
		if e.c.Opts.NoUncheckedIndexedAccess && e.c.In.KindOf(obj) != types.KindTuple {
			return e.c.In.MakeUnion(projected, e.c.In.Builtins().Undefined)
		}
		return projected
	}
	b := e.c.In.Builtins()
	if key == b.Number && e.c.In.KindOf(obj) == types.KindArray {
		elem := e.c.In.MustLookup(obj).Elem
		if e.c.Opts.NoUncheckedIndexedAccess {
			return e.c.In.MakeUnion(elem, b.Undefined)
		}
		return elem
	}
	if obj != t.Elem || key != t.Key {
		return e.c.In.MakeIndexedAccess(obj, key)
	}
	return id
}

// stepMapped expands a mapped type whose key source is statically known.
// Unknown key sources defer: the mapped type stays opaque rather than
// over-approximating.
func (e *Evaluator) stepMapped(id types.TypeID) types.TypeID {
	m, _ := e.c.In.Mapped(id)
	keys := e.Evaluate(m.Keys)

	var keyList []types.TypeID
	switch e.c.In.KindOf(keys) {
	case types.KindUnion:
		keyList = e.c.In.ListMembers(keys)
	case types.KindLiteralString, types.KindLiteralNumber:
		keyList = []types.TypeID{keys}
	default:
		if keys == e.c.In.Builtins().Never {
			return e.c.In.MakeObject(types.ObjectInfo{})
		}
		if keys == e.c.In.Builtins().String {
			value := e.Evaluate(e.Instantiate(m.Value, Substitution{m.TypeParam: keys}))
			return e.c.In.MakeObject(types.ObjectInfo{StringIndex: value})
		}
		return id
	}

	var info types.ObjectInfo
	for _, k := range keyList {
		if e.c.In.KindOf(k) != types.KindLiteralString && e.c.In.KindOf(k) != types.KindLiteralNumber {
			return id
		}
		sub := Substitution{m.TypeParam: k}
		name := k
		if m.NameType.IsValid() {
			name = e.Evaluate(e.Instantiate(m.NameType, sub))
			if name == e.c.In.Builtins().Never {
				continue
			}
			if e.c.In.KindOf(name) != types.KindLiteralString {
				return id
			}
		}
		var atom source.Atom
		switch e.c.In.KindOf(name) {
		case types.KindLiteralString:
			s, _ := e.c.In.StringValue(name)
			atom = e.c.In.Strings.Intern(s)
		case types.KindLiteralNumber:
			atom = e.c.In.Strings.Intern(e.c.In.Format(name))
		}
		value := e.Evaluate(e.Instantiate(m.Value, sub))
		info.Props = append(info.Props, types.Prop{
			Name:     atom,
			Type:     value,
			Optional: m.Optional == types.MappedAdd,
			Readonly: m.Readonly == types.MappedAdd,
		})
	}
	return e.c.In.MakeObject(info)
}

// hasFreeParams scans for type-parameter or infer occurrences.
func (e *Evaluator) hasFreeParams(id types.TypeID, depth int) bool {
	if depth > instantiateFuel {
		return true
	}
	t, ok := e.c.In.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindTypeParameter, types.KindInfer:
		return true
	case types.KindArray, types.KindKeyOf, types.KindReadonly:
		return e.hasFreeParams(t.Elem, depth+1)
	case types.KindIndexedAccess:
		return e.hasFreeParams(t.Elem, depth+1) || e.hasFreeParams(t.Key, depth+1)
	case types.KindUnion, types.KindIntersection:
		for _, m := range e.c.In.ListMembers(id) {
			if e.hasFreeParams(m, depth+1) {
				return true
			}
		}
	case types.KindTuple:
		tup, _ := e.c.In.Tuple(id)
		for _, el := range tup.Elems {
			if e.hasFreeParams(el.Type, depth+1) {
				return true
			}
		}
	case types.KindApplication:
		app, _ := e.c.In.App(id)
		for _, a := range app.Args {
			if e.hasFreeParams(a, depth+1) {
				return true
			}
		}
	case types.KindObject:
		o, _ := e.c.In.Object(id)
		for _, p := range o.Props {
			if e.hasFreeParams(p.Type, depth+1) {
				return true
			}
		}
		for _, sigs := range [][]types.SignatureID{o.Calls, o.Constructs} {
			for _, sid := range sigs {
				sig := e.c.In.Signature(sid)
				for _, p := range sig.Params {
					if e.hasFreeParams(p.Type, depth+1) {
						return true
					}
				}
				if e.hasFreeParams(sig.Return, depth+1) {
					return true
				}
			}
		}
	case types.KindConditional:
		ci, _ := e.c.In.Cond(id)
		return e.hasFreeParams(ci.Check, depth+1) || e.hasFreeParams(ci.Extends, depth+1) ||
			e.hasFreeParams(ci.WhenTrue, depth+1) || e.hasFreeParams(ci.WhenFalse, depth+1)
	case types.KindMapped:
		m, _ := e.c.In.Mapped(id)
		return e.hasFreeParams(m.Keys, depth+1)
	case types.KindTemplateLiteral:
		tpl, _ := e.c.In.Template(id)
		for _, h := range tpl.Holes {
			if e.hasFreeParams(h, depth+1) {
				return true
			}
		}
	}
	return false
}

// collectInfers gathers infer bindings in an extends clause.
func (e *Evaluator) collectInfers(id types.TypeID, acc []types.TypeID, depth int) []types.TypeID {
	if depth > instantiateFuel {
		return acc
	}
	t, ok := e.c.In.Lookup(id)
	if !ok {
		return acc
	}
	switch t.Kind {
	case types.KindInfer:
		for _, existing := range acc {
			if existing == id {
				return acc
			}
		}
		return append(acc, id)
	case types.KindArray, types.KindKeyOf, types.KindReadonly:
		return e.collectInfers(t.Elem, acc, depth+1)
	case types.KindIndexedAccess:
		acc = e.collectInfers(t.Elem, acc, depth+1)
		return e.collectInfers(t.Key, acc, depth+1)
	case types.KindUnion, types.KindIntersection:
		for _, m := range e.c.In.ListMembers(id) {
			acc = e.collectInfers(m, acc, depth+1)
		}
	case types.KindTuple:
		tup, _ := e.c.In.Tuple(id)
		for _, el := range tup.Elems {
			acc = e.collectInfers(el.Type, acc, depth+1)
		}
	case types.KindApplication:
		app, _ := e.c.In.App(id)
		for _, a := range app.Args {
			acc = e.collectInfers(a, acc, depth+1)
		}
	case types.KindObject:
		o, _ := e.c.In.Object(id)
		for _, p := range o.Props {
			acc = e.collectInfers(p.Type, acc, depth+1)
		}
		for _, sigs := range [][]types.SignatureID{o.Calls, o.Constructs} {
			for _, sid := range sigs {
				sig := e.c.In.Signature(sid)
				for _, p := range sig.Params {
					acc = e.collectInfers(p.Type, acc, depth+1)
				}
				acc = e.collectInfers(sig.Return, acc, depth+1)
			}
		}
	case types.KindTemplateLiteral:
		tpl, _ := e.c.In.Template(id)
		for _, h := range tpl.Holes {
			acc = e.collectInfers(h, acc, depth+1)
		}
	}
	return acc
}
