package solver

import (
	"tyco/internal/types"
)

// SubtypeChecker answers `is source a subtype of target?` for any two
// TypeIDs. It owns the visiting sets for cycle detection; one instance
// serves one logical check tree and may be reused serially.
type SubtypeChecker struct {
	In       *types.Interner
	Resolver TypeResolver
	Opts     Options
	Cache    *Cache
	Tracer   Tracer

	// BypassEvaluation skips the evaluator inside Check. The evaluator sets
	// it when it consults the engine, preventing runaway co-recursion.
	BypassEvaluation bool
	// MaxDepth overrides the default recursion bound when positive.
	MaxDepth int

	eval *Evaluator

	pairGuard guard[types.TypeID]
	defGuard  guard[types.DefID]
	symGuard  guard[uint32]
	depth     int
	iterations int
}

// NewSubtypeChecker creates a checker without a resolver (basic mode).
func NewSubtypeChecker(in *types.Interner) *SubtypeChecker {
	return NewSubtypeCheckerWith(in, NoopResolver{}, DefaultOptions())
}

// NewSubtypeCheckerWith creates a checker with a resolver and options.
func NewSubtypeCheckerWith(in *types.Interner, resolver TypeResolver, opts Options) *SubtypeChecker {
	c := &SubtypeChecker{
		In:        in,
		Resolver:  resolver,
		Opts:      opts,
		pairGuard: newGuard[types.TypeID](),
		defGuard:  newGuard[types.DefID](),
		symGuard:  newGuard[uint32](),
	}
	c.eval = newEvaluator(c)
	return c
}

// Evaluator exposes the co-recursive evaluator sharing this checker's state.
func (c *SubtypeChecker) Evaluator() *Evaluator { return c.eval }

func (c *SubtypeChecker) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return maxSubtypeDepth
}

// Check decides source <: target.
func (c *SubtypeChecker) Check(source, target types.TypeID) Result {
	if c.depth == 0 {
		c.iterations = 0
	}
	c.iterations++
	if c.iterations > maxSubtypeIterations {
		return DepthExceeded
	}
	b := c.In.Builtins()

	// Fast path 1: identity.
	if source == target {
		return True
	}
	if source == NoType || target == NoType {
		return False
	}
	// Fast path 2: error and the top/bottom rules.
	if source == b.Error || target == b.Error {
		return True
	}
	anyAllowed := c.Opts.AnyPropagation == AnyAll || c.depth == 0
	if anyAllowed {
		if source == b.Any || target == b.Any {
			return True
		}
		if source == b.StrictAny {
			return True
		}
	}
	if target == b.StrictAny {
		// StrictAny is top even when plain any is demoted.
		return True
	}
	if target == b.Unknown {
		return True
	}
	if source == b.Never {
		return True
	}
	if !c.Opts.StrictNullChecks && c.In.IsNullish(source) && target != b.Never {
		return True
	}
	// Fast path 3: disjoint unit types.
	if c.In.IsUnit(source) && c.In.IsUnit(target) {
		c.trace(Mismatch{Kind: MismatchLiteral, Source: source, Target: target})
		return False
	}
	// Fast path 5: decision cache. Lookup precedes cycle detection.
	// Traced runs bypass it: diagnostics re-run failed checks precisely to
	// observe the full failure path.
	flags := c.Opts.Packed()
	if c.Tracer == nil {
		if v, ok := c.Cache.Lookup(source, target, flags); ok {
			return fromBool(v)
		}
	}

	res := c.checkGuarded(source, target)
	if res.Definitive() && c.depth == 0 {
		// Insertion happens after the visiting guards are popped; only
		// top-level results are free of in-flight coinductive assumptions.
		c.Cache.Store(source, target, flags, res.IsTrue())
	}
	return res
}

// NoType is the invalid sentinel re-exported for call sites.
const NoType = types.NoTypeID

func (c *SubtypeChecker) checkGuarded(source, target types.TypeID) Result {
	if c.depth >= c.maxDepth() {
		return DepthExceeded
	}
	// Lazy references cycle at DefID granularity before expansion.
	st, _ := c.In.Lookup(source)
	tt, _ := c.In.Lookup(target)
	if st.Kind == types.KindLazy && tt.Kind == types.KindLazy {
		if !c.defGuard.enter(st.Def, tt.Def) {
			return CycleDetected
		}
		defer c.defGuard.exit(st.Def, tt.Def)
	}
	if !c.pairGuard.enter(source, target) {
		return CycleDetected
	}
	defer c.pairGuard.exit(source, target)

	c.depth++
	res := c.dispatch(source, target, st, tt)
	c.depth--
	return res
}

// evaluated applies the evaluator unless the caller is the evaluator itself.
func (c *SubtypeChecker) evaluated(id types.TypeID) types.TypeID {
	if c.BypassEvaluation {
		return id
	}
	return c.eval.Evaluate(id)
}

func (c *SubtypeChecker) dispatch(source, target types.TypeID, st, tt types.Type) Result {
	b := c.In.Builtins()

	// Resolve outermost deferred forms first. The DefID guard above bounds
	// re-entry for recursive definitions.
	if isDeferred(st.Kind) || isDeferred(tt.Kind) {
		es, et := c.evaluated(source), c.evaluated(target)
		if es != source || et != target {
			// Symbol-pair guard: recursive interfaces lose DefID identity
			// once expanded (e.g. Promise vs PromiseLike member types).
			ss, ts := c.symbolOf(st), c.symbolOf(tt)
			if ss != 0 && ts != 0 {
				if !c.symGuard.enter(ss, ts) {
					return CycleDetected
				}
				defer c.symGuard.exit(ss, ts)
			}
			return c.Check(es, et)
		}
	}

	// Strip the readonly marker: it affects write sites, not assignability.
	if st.Kind == types.KindReadonly {
		return c.Check(st.Elem, target)
	}
	if tt.Kind == types.KindReadonly {
		return c.Check(source, tt.Elem)
	}

	// Union source: every member must fit.
	if st.Kind == types.KindUnion {
		res := True
		for _, m := range c.In.ListMembers(source) {
			res = both(res, c.Check(m, target))
			if res.IsFalse() {
				return res
			}
		}
		return res
	}
	// Conditional source: both branches must fit (spec case b).
	if st.Kind == types.KindConditional {
		if tt.Kind != types.KindConditional {
			ci, _ := c.In.Cond(source)
			return both(c.Check(ci.WhenTrue, target), c.Check(ci.WhenFalse, target))
		}
	}
	// Union target: some member must accept the source.
	if tt.Kind == types.KindUnion {
		return c.checkUnionTarget(source, target, st)
	}
	// Intersection target: every member must accept the source.
	if tt.Kind == types.KindIntersection {
		res := True
		for _, m := range c.In.ListMembers(target) {
			res = both(res, c.Check(source, m))
			if res.IsFalse() {
				return res
			}
		}
		return res
	}
	// Intersection source: one member suffices, with a merged-shape retry
	// against object targets (A&B satisfies a property if either provides it).
	if st.Kind == types.KindIntersection {
		return c.checkIntersectionSource(source, target, tt)
	}

	switch tt.Kind {
	case types.KindIntrinsic:
		return c.checkIntrinsicTarget(source, target, st, types.Intrinsic(tt.Payload))
	case types.KindLiteralString, types.KindLiteralNumber, types.KindLiteralBigInt, types.KindLiteralBool, types.KindUniqueSymbol:
		// Unit targets only accept themselves (identity handled earlier)
		// and enum members via the enum path below.
		if st.Kind == types.KindEnum {
			return c.Check(st.Elem, target)
		}
		c.trace(Mismatch{Kind: MismatchLiteral, Source: source, Target: target})
		return False
	case types.KindObject:
		return c.checkObjectTarget(source, target, st)
	case types.KindArray:
		return c.checkArrayTarget(source, target, st, tt)
	case types.KindTuple:
		return c.checkTupleTarget(source, target, st)
	case types.KindEnum:
		return c.checkEnumTarget(source, target, st, tt)
	case types.KindTemplateLiteral:
		return c.checkTemplateTarget(source, target, st)
	case types.KindTypeParameter:
		// A bare parameter target stands for every instantiation: only the
		// parameter itself (or one constrained to it) fits.
		if st.Kind == types.KindTypeParameter {
			return c.checkParamSource(source, target)
		}
		if source == b.Never {
			return True
		}
		c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
		return False
	case types.KindConditional:
		return c.checkConditionalTarget(source, target, st, tt)
	case types.KindMapped:
		return c.checkMappedTarget(source, target, st, tt)
	case types.KindApplication:
		return c.checkApplicationTarget(source, target, st, tt)
	case types.KindThisType:
		return fromBool(source == b.This)
	}

	// Source-driven leftovers: parameters fall back to their constraints.
	if st.Kind == types.KindTypeParameter {
		return c.checkParamSource(source, target)
	}
	if st.Kind == types.KindEnum {
		return c.Check(st.Elem, target)
	}
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

func isDeferred(k types.Kind) bool {
	switch k {
	case types.KindLazy, types.KindApplication, types.KindKeyOf,
		types.KindIndexedAccess, types.KindTypeQuery,
		types.KindConditional, types.KindMapped:
		return true
	}
	return false
}

func (c *SubtypeChecker) symbolOf(t types.Type) uint32 {
	if t.Def.IsValid() {
		return c.Resolver.SymbolOfDef(t.Def)
	}
	return 0
}

func (c *SubtypeChecker) checkIntrinsicTarget(source, target types.TypeID, st types.Type, intr types.Intrinsic) Result {
	b := c.In.Builtins()
	switch intr {
	case types.IntrinsicVoid:
		// undefined (and null without strict nulls) flows into void.
		if source == b.Undefined {
			return True
		}
		if !c.Opts.StrictNullChecks && source == b.Null {
			return True
		}
	case types.IntrinsicObject:
		// The object keyword accepts every non-primitive.
		switch st.Kind {
		case types.KindObject, types.KindArray, types.KindTuple, types.KindMapped:
			return True
		}
	case types.IntrinsicFunction:
		if o, ok := c.In.Object(source); ok && (len(o.Calls) > 0 || len(o.Constructs) > 0) {
			return True
		}
	}
	// Literals widen to their base primitive.
	if base := c.In.BaseOfLiteral(source); base != source {
		return c.Check(base, target)
	}
	switch st.Kind {
	case types.KindEnum:
		return c.Check(st.Elem, target)
	case types.KindTemplateLiteral:
		// Every template inhabitant is a string.
		if target == b.String {
			return True
		}
	case types.KindTypeParameter:
		return c.checkParamSource(source, target)
	}
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

// checkUnionTarget implements S <: (A | B): try each member; before failing
// apply the discriminant refinement and intersection-factoring retries.
func (c *SubtypeChecker) checkUnionTarget(source, target types.TypeID, st types.Type) Result {
	b := c.In.Builtins()
	members := c.In.ListMembers(target)

	// boolean decomposes as true | false.
	if source == b.Boolean {
		hasTrue, hasFalse := false, false
		for _, m := range members {
			if m == b.True {
				hasTrue = true
			}
			if m == b.False {
				hasFalse = true
			}
		}
		if hasTrue && hasFalse {
			return True
		}
	}

	sawDepth := false
	for _, m := range members {
		r := c.Check(source, m)
		if r.IsTrue() {
			return True
		}
		if r == DepthExceeded {
			sawDepth = true
		}
	}

	// Discriminant refinement: split an object source by a shared literal
	// discriminant and match each value against the member it selects.
	if st.Kind == types.KindObject {
		if r := c.checkDiscriminated(source, members); r.IsTrue() {
			return r
		}
	}
	// Intersection factoring: when every member is Mi & S', check S <: union(Mi).
	if r := c.checkIntersectionFactored(source, members); r.IsTrue() {
		return r
	}

	if sawDepth {
		return DepthExceeded
	}
	c.trace(Mismatch{Kind: MismatchNoUnionMember, Source: source, Target: target})
	return False
}

func (c *SubtypeChecker) checkDiscriminated(source types.TypeID, members []types.TypeID) Result {
	o, ok := c.In.Object(source)
	if !ok {
		return False
	}
	for i, p := range o.Props {
		// A discriminant typed as a union of literals splits the source:
		// each literal variant must satisfy the union target on its own.
		if c.In.KindOf(p.Type) == types.KindUnion {
			target := c.In.MakeUnion(members...)
			fits := true
			for _, v := range c.In.ListMembers(p.Type) {
				split := *o
				split.Props = append([]types.Prop(nil), o.Props...)
				split.Props[i].Type = v
				fits = fits && c.In.IsUnit(v) && c.Check(c.In.MakeObject(split), target).IsTrue()
			}
			if fits {
				return True
			}
		}
		if !c.In.IsUnit(p.Type) {
			continue
		}
		// p is a candidate discriminant: find the member whose property of
		// the same name matches the literal value.
		for _, m := range members {
			mp, found := c.In.FindProp(m, p.Name)
			if !found || !c.In.IsUnit(mp.Type) {
				continue
			}
			if mp.Type == p.Type {
				if c.Check(source, m).IsTrue() {
					return True
				}
			}
		}
	}
	return False
}

func (c *SubtypeChecker) checkIntersectionFactored(source types.TypeID, members []types.TypeID) Result {
	var factored []types.TypeID
	for _, m := range members {
		if c.In.KindOf(m) != types.KindIntersection {
			return False
		}
		parts := c.In.ListMembers(m)
		rest := make([]types.TypeID, 0, len(parts))
		matched := false
		for _, p := range parts {
			if !matched && c.Check(source, p).IsTrue() {
				matched = true
				continue
			}
			rest = append(rest, p)
		}
		if !matched || len(rest) != 1 {
			return False
		}
		factored = append(factored, rest[0])
	}
	return c.Check(source, c.In.MakeUnion(factored...))
}

func (c *SubtypeChecker) checkIntersectionSource(source, target types.TypeID, tt types.Type) Result {
	for _, m := range c.In.ListMembers(source) {
		if c.Check(m, target).IsTrue() {
			return True
		}
	}
	// Merge object members before the property-by-property retry.
	if tt.Kind == types.KindObject {
		if merged, ok := c.mergeIntersection(source); ok {
			return c.checkObjectTarget(merged, target, c.In.MustLookup(merged))
		}
	}
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

// mergeIntersection flattens an intersection of plain object shapes into a
// single shape. First declaration of a name wins, and so do the first string
// and the first number indexer; call and construct signatures accumulate.
func (c *SubtypeChecker) mergeIntersection(id types.TypeID) (types.TypeID, bool) {
	members := c.In.ListMembers(id)
	var merged types.ObjectInfo
	seen := make(map[uint32]bool)
	for _, m := range members {
		o, ok := c.In.Object(m)
		if !ok {
			return NoType, false
		}
		for _, p := range o.Props {
			if !seen[uint32(p.Name)] {
				seen[uint32(p.Name)] = true
				merged.Props = append(merged.Props, p)
			}
		}
		if !merged.StringIndex.IsValid() {
			merged.StringIndex = o.StringIndex
		}
		if !merged.NumberIndex.IsValid() {
			merged.NumberIndex = o.NumberIndex
		}
		merged.Calls = append(merged.Calls, o.Calls...)
		merged.Constructs = append(merged.Constructs, o.Constructs...)
	}
	return c.In.MakeObject(merged), true
}

func (c *SubtypeChecker) checkParamSource(source, target types.TypeID) Result {
	// A parameter satisfies T when T is the parameter itself or its
	// constraint chain reaches T.
	seen := 0
	for cur := source; c.In.KindOf(cur) == types.KindTypeParameter || c.In.KindOf(cur) == types.KindInfer; {
		if cur == target {
			return True
		}
		p, _ := c.In.Param(cur)
		if p == nil || !p.Constraint.IsValid() {
			break
		}
		if p.Constraint == target {
			return True
		}
		cur = p.Constraint
		seen++
		if seen > maxSubtypeDepth {
			return DepthExceeded
		}
		if c.In.KindOf(cur) != types.KindTypeParameter && c.In.KindOf(cur) != types.KindInfer {
			return c.Check(cur, target)
		}
	}
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

func (c *SubtypeChecker) checkEnumTarget(source, target types.TypeID, st, tt types.Type) Result {
	b := c.In.Builtins()
	// Nominal first: same DefID was identity; different enum DefIDs never
	// subtype each other.
	if st.Kind == types.KindEnum {
		if st.Def == tt.Def {
			return True
		}
		c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
		return False
	}
	// A member literal of the enum fits.
	if c.Check(source, tt.Elem).IsTrue() {
		return True
	}
	// Open numeric enums: number flows in freely. Documented unsoundness.
	if c.Resolver.IsNumericEnum(tt.Def) {
		if source == b.Number || c.In.KindOf(source) == types.KindLiteralNumber {
			return True
		}
	}
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

func (c *SubtypeChecker) checkConditionalTarget(source, target types.TypeID, st, tt types.Type) Result {
	ci, _ := c.In.Cond(target)
	// Same-structure conditionals compare check sides for identity and
	// recurse into both branches.
	if st.Kind == types.KindConditional {
		si, _ := c.In.Cond(source)
		if si.Check == ci.Check && si.Extends == ci.Extends {
			return both(c.Check(si.WhenTrue, ci.WhenTrue), c.Check(si.WhenFalse, ci.WhenFalse))
		}
	}
	// A concrete check side reduces through the evaluator (handled above);
	// otherwise the target stays opaque: admit the source only when both
	// branches admit it.
	return both(c.Check(source, ci.WhenTrue), c.Check(source, ci.WhenFalse))
}

func (c *SubtypeChecker) checkApplicationTarget(source, target types.TypeID, st, tt types.Type) Result {
	if st.Kind == types.KindApplication && st.Def.IsValid() && st.Def == tt.Def {
		sa, _ := c.In.App(source)
		ta, _ := c.In.App(target)
		if len(sa.Args) == len(ta.Args) {
			variance := c.Resolver.DefVariance(tt.Def)
			res := True
			for i := range sa.Args {
				v := types.VarianceInvariant
				if i < len(variance) {
					v = variance[i]
				}
				res = both(res, c.checkVariant(sa.Args[i], ta.Args[i], v))
				if res.IsFalse() {
					return res
				}
			}
			return res
		}
	}
	// Different bases: evaluation already ran; nothing further to expand.
	c.trace(Mismatch{Kind: MismatchType, Source: source, Target: target})
	return False
}

func (c *SubtypeChecker) checkVariant(src, tgt types.TypeID, v types.Variance) Result {
	switch v {
	case types.VarianceCovariant:
		return c.Check(src, tgt)
	case types.VarianceContravariant:
		return c.Check(tgt, src)
	case types.VarianceBivariant:
		if c.Check(src, tgt).IsTrue() {
			return True
		}
		return c.Check(tgt, src)
	default:
		return both(c.Check(src, tgt), c.Check(tgt, src))
	}
}
