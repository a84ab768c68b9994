package solver

import (
	"tyco/internal/source"
	"tyco/internal/types"
)

// apparentObject views a source type as an object shape for property
// iteration: real objects pass through; arrays and tuples expose their
// element structure and length.
func (c *SubtypeChecker) apparentObject(id types.TypeID) (*types.ObjectInfo, bool) {
	switch c.In.KindOf(id) {
	case types.KindObject:
		o, _ := c.In.Object(id)
		return o, true
	case types.KindArray:
		t := c.In.MustLookup(id)
		return &types.ObjectInfo{
			Props: []types.Prop{{
				Name: c.In.Strings.Intern("length"),
				Type: c.In.Builtins().Number,
			}},
			NumberIndex: t.Elem,
		}, true
	case types.KindTuple:
		tup, _ := c.In.Tuple(id)
		elems := make([]types.TypeID, 0, len(tup.Elems))
		for _, e := range tup.Elems {
			elems = append(elems, e.Type)
		}
		return &types.ObjectInfo{
			Props: []types.Prop{{
				Name: c.In.Strings.Intern("length"),
				Type: c.In.MakeLiteralNumber(float64(len(tup.Elems))),
			}},
			NumberIndex: c.In.MakeUnion(elems...),
		}, true
	}
	return nil, false
}

func (c *SubtypeChecker) checkObjectTarget(src, target types.TypeID, st types.Type) Result {
	to, _ := c.In.Object(target)
	so, isObjectish := c.apparentObject(src)

	if !isObjectish {
		if st.Kind == types.KindTypeParameter {
			return c.checkParamSource(src, target)
		}
		if st.Kind == types.KindEnum {
			return c.Check(st.Elem, target)
		}
		// Primitives satisfy only empty-requirement shapes (the `{}` and
		// marker-interface cases); full apparent-member lookup belongs to
		// the lib declarations, which the resolver may layer on.
		if c.emptyRequirements(to) && !c.In.IsNullish(src) && src != c.In.Builtins().Void {
			return True
		}
		c.trace(Mismatch{Kind: MismatchType, Source: src, Target: target})
		return False
	}

	// Excess property checking applies to fresh object literals only.
	if st.Kind == types.KindObject && so.Flags&types.ObjectFresh != 0 {
		for _, p := range so.Props {
			if _, ok := c.In.FindProp(target, p.Name); ok {
				continue
			}
			if to.StringIndex.IsValid() || (to.NumberIndex.IsValid() && isNumericName(c.In.Strings, p.Name)) {
				continue
			}
			c.trace(Mismatch{Kind: MismatchExcessProperty, Source: src, Target: target, Property: p.Name})
			return False
		}
	}

	res := True
	for _, tp := range to.Props {
		sp, found := c.findSourceProp(src, so, tp.Name)
		if !found {
			if tp.Optional {
				continue
			}
			c.trace(Mismatch{Kind: MismatchPropertyNotFound, Source: src, Target: target, Property: tp.Name})
			return False
		}
		r := c.checkPropTypes(sp, tp)
		if !r.IsTrue() {
			c.trace(Mismatch{Kind: MismatchPropertyType, Source: src, Target: target, Property: tp.Name})
		}
		res = both(res, r)
		if res.IsFalse() {
			return res
		}
	}

	// Index signatures.
	if to.StringIndex.IsValid() {
		for _, p := range so.Props {
			r := c.Check(p.Type, to.StringIndex)
			if !r.IsTrue() {
				c.trace(Mismatch{Kind: MismatchIndexSignature, Source: src, Target: target, Property: p.Name})
			}
			res = both(res, r)
			if res.IsFalse() {
				return res
			}
		}
		if so.StringIndex.IsValid() {
			res = both(res, c.Check(so.StringIndex, to.StringIndex))
		}
		if so.NumberIndex.IsValid() {
			res = both(res, c.Check(so.NumberIndex, to.StringIndex))
		}
		if res.IsFalse() {
			return res
		}
	}
	if to.NumberIndex.IsValid() {
		srcNum := so.NumberIndex
		if !srcNum.IsValid() && so.StringIndex.IsValid() {
			srcNum = so.StringIndex
		}
		if srcNum.IsValid() {
			r := c.Check(srcNum, to.NumberIndex)
			if !r.IsTrue() {
				c.trace(Mismatch{Kind: MismatchIndexSignature, Source: src, Target: target})
			}
			res = both(res, r)
			if res.IsFalse() {
				return res
			}
		}
		for _, p := range so.Props {
			if isNumericName(c.In.Strings, p.Name) {
				res = both(res, c.Check(p.Type, to.NumberIndex))
				if res.IsFalse() {
					return res
				}
			}
		}
	}

	// Call and construct signatures: every target signature needs a
	// compatible source signature.
	res = both(res, c.checkSignatureSets(so.Calls, to.Calls, src, target, false))
	if res.IsFalse() {
		return res
	}
	res = both(res, c.checkSignatureSets(so.Constructs, to.Constructs, src, target, false))
	return res
}

func (c *SubtypeChecker) emptyRequirements(o *types.ObjectInfo) bool {
	if len(o.Calls) > 0 || len(o.Constructs) > 0 {
		return false
	}
	if o.StringIndex.IsValid() || o.NumberIndex.IsValid() {
		return false
	}
	for _, p := range o.Props {
		if !p.Optional {
			return false
		}
	}
	return true
}

func (c *SubtypeChecker) findSourceProp(src types.TypeID, so *types.ObjectInfo, name source.Atom) (types.Prop, bool) {
	if p, ok := c.In.FindProp(src, name); ok {
		return p, true
	}
	for _, p := range so.Props {
		if p.Name == name {
			return p, true
		}
	}
	return types.Prop{}, false
}

// checkPropTypes applies per-property variance: bivariant methods (unless
// disabled), covariant readonly, contravariant setter-only writes, and
// invariant mutable properties.
func (c *SubtypeChecker) checkPropTypes(sp, tp types.Prop) Result {
	srcType, tgtType := sp.Type, tp.Type
	if !c.Opts.ExactOptionalPropertyTypes {
		und := c.In.Builtins().Undefined
		if tp.Optional {
			tgtType = c.In.MakeUnion(tgtType, und)
		}
		// Seen through an optional target slot, the source may be absent too.
		if sp.Optional || tp.Optional {
			srcType = c.In.MakeUnion(srcType, und)
		}
	} else if sp.Optional && !tp.Optional {
		return False
	}

	switch {
	case tp.IsMethod && !c.Opts.DisableMethodBivariance:
		if c.Check(srcType, tgtType).IsTrue() {
			return True
		}
		return c.Check(tgtType, srcType)
	case !tp.Type.IsValid() && tp.WriteType.IsValid():
		// Setter-only target: writes are contravariant.
		w := sp.WriteType
		if !w.IsValid() {
			w = sp.Type
		}
		return c.Check(tp.WriteType, w)
	case tp.Readonly:
		return c.Check(srcType, tgtType)
	default:
		return both(c.Check(srcType, tgtType), c.Check(tgtType, srcType))
	}
}

func (c *SubtypeChecker) checkSignatureSets(srcSigs, tgtSigs []types.SignatureID, src, target types.TypeID, construct bool) Result {
	if len(tgtSigs) == 0 {
		return True
	}
	if len(srcSigs) == 0 {
		c.trace(Mismatch{Kind: MismatchArity, Source: src, Target: target})
		return False
	}
	res := True
	for _, ts := range tgtSigs {
		matched := False
		for _, ss := range srcSigs {
			r := c.checkSignature(ss, ts)
			if r.IsTrue() {
				matched = True
				break
			}
			if r == DepthExceeded {
				matched = DepthExceeded
			}
		}
		if matched == False {
			c.trace(Mismatch{Kind: MismatchArity, Source: src, Target: target})
			return False
		}
		res = both(res, matched)
	}
	return res
}

// checkSignature decides source-signature <: target-signature: parameters
// contravariant under strict function types (bivariant otherwise), return
// covariant with the void allowance, required-count bounded by the target's
// capacity.
func (c *SubtypeChecker) checkSignature(srcID, tgtID types.SignatureID) Result {
	src := c.In.Signature(srcID)
	tgt := c.In.Signature(tgtID)

	// A generic source signature is compared at the instantiation the
	// target's parameter types infer.
	if len(src.TypeParams) > 0 {
		inst := c.instantiateForTarget(src, tgt)
		if inst != nil {
			src = inst
		}
	}

	srcParams := nonThisParams(src.Params)
	tgtParams := nonThisParams(tgt.Params)

	// Required-count rule.
	tgtCapacity := 0
	tgtHasRest := false
	for _, p := range tgtParams {
		if p.Rest {
			tgtHasRest = true
			continue
		}
		tgtCapacity++
	}
	if !tgtHasRest && src.RequiredParams() > tgtCapacity {
		if !c.Opts.AllowBivariantParamCount {
			return False
		}
	}

	res := True
	b := c.In.Builtins()
	for i, tp := range tgtParams {
		var sp types.Param
		switch {
		case i < len(srcParams) && !srcParams[i].Rest:
			sp = srcParams[i]
		case len(srcParams) > 0 && srcParams[len(srcParams)-1].Rest:
			sp = srcParams[len(srcParams)-1]
			sp.Type = c.restElement(sp.Type)
		default:
			// Source accepts fewer parameters: extra target params are
			// simply ignored by the source function.
			continue
		}
		spType, tpType := sp.Type, tp.Type
		if tp.Rest {
			tpType = c.restElement(tpType)
			if c.Opts.AllowBivariantRest && (spType == b.Any || spType == b.Unknown) {
				continue
			}
		}
		var r Result
		if c.Opts.StrictFunctionTypes {
			r = c.Check(tpType, spType)
		} else {
			r = c.Check(tpType, spType)
			if r.IsFalse() {
				r = c.Check(spType, tpType)
			}
		}
		if !r.IsTrue() && r != DepthExceeded {
			c.trace(Mismatch{Kind: MismatchParamCount})
			return False
		}
		res = both(res, r)
	}

	// Return types.
	if tgt.Return == b.Void && c.Opts.AllowVoidReturn {
		return res
	}
	return both(res, c.Check(src.Return, tgt.Return))
}

func nonThisParams(ps []types.Param) []types.Param {
	if len(ps) > 0 && ps[0].IsThis {
		return ps[1:]
	}
	return ps
}

// restElement unwraps Array<T>/T[] to T for rest-parameter comparison.
func (c *SubtypeChecker) restElement(id types.TypeID) types.TypeID {
	if c.In.KindOf(id) == types.KindArray {
		return c.In.MustLookup(id).Elem
	}
	return id
}

// instantiateForTarget infers the generic source signature's parameters
// from the target's parameter and return types, then substitutes.
func (c *SubtypeChecker) instantiateForTarget(src, tgt *types.SignatureInfo) *types.SignatureInfo {
	ic := NewInference(c.In, src.TypeParams)
	srcParams := nonThisParams(src.Params)
	tgtParams := nonThisParams(tgt.Params)
	for i := range srcParams {
		if i >= len(tgtParams) {
			break
		}
		ic.Infer(tgtParams[i].Type, srcParams[i].Type, types.VarianceCovariant)
	}
	ic.Infer(tgt.Return, src.Return, types.VarianceCovariant)
	sub, ok := ic.Solve(c)
	if !ok {
		return nil
	}
	out := &types.SignatureInfo{Return: c.eval.Instantiate(src.Return, sub)}
	out.Params = make([]types.Param, len(src.Params))
	for i, p := range src.Params {
		p.Type = c.eval.Instantiate(p.Type, sub)
		out.Params[i] = p
	}
	out.Predicate = src.Predicate
	return out
}

func (c *SubtypeChecker) checkArrayTarget(src, target types.TypeID, st, tt types.Type) Result {
	switch st.Kind {
	case types.KindArray:
		// Covariant element access: documented unsoundness shared with the
		// reference implementation.
		return c.Check(st.Elem, tt.Elem)
	case types.KindTuple:
		tup, _ := c.In.Tuple(src)
		res := True
		for _, e := range tup.Elems {
			elem := e.Type
			if e.Rest {
				elem = c.restElement(elem)
			}
			res = both(res, c.Check(elem, tt.Elem))
			if res.IsFalse() {
				return res
			}
		}
		return res
	case types.KindObject:
		if o, _ := c.In.Object(src); o != nil && o.NumberIndex.IsValid() {
			return c.Check(o.NumberIndex, tt.Elem)
		}
	case types.KindTypeParameter:
		return c.checkParamSource(src, target)
	}
	c.trace(Mismatch{Kind: MismatchType, Source: src, Target: target})
	return False
}

func (c *SubtypeChecker) checkTupleTarget(src, target types.TypeID, st types.Type) Result {
	ttup, _ := c.In.Tuple(target)
	switch st.Kind {
	case types.KindTuple:
		stup, _ := c.In.Tuple(src)
		return c.checkTupleElems(stup, ttup, src, target)
	case types.KindArray:
		// An array fits only a tuple that is entirely rest.
		elem := st.Elem
		res := True
		for _, te := range ttup.Elems {
			if !te.Rest {
				c.trace(Mismatch{Kind: MismatchArity, Source: src, Target: target})
				return False
			}
			res = both(res, c.Check(elem, c.restElement(te.Type)))
		}
		return res
	case types.KindTypeParameter:
		return c.checkParamSource(src, target)
	}
	c.trace(Mismatch{Kind: MismatchType, Source: src, Target: target})
	return False
}

func (c *SubtypeChecker) checkTupleElems(stup, ttup *types.TupleInfo, src, target types.TypeID) Result {
	required := 0
	total := 0
	hasRest := false
	for _, e := range ttup.Elems {
		if e.Rest {
			hasRest = true
			continue
		}
		total++
		if !e.Optional {
			required++
		}
	}
	srcLen := 0
	srcRest := false
	for _, e := range stup.Elems {
		if e.Rest {
			srcRest = true
			continue
		}
		srcLen++
	}
	if srcLen < required && !srcRest {
		c.trace(Mismatch{Kind: MismatchArity, Source: src, Target: target})
		return False
	}
	if srcLen > total && !hasRest {
		c.trace(Mismatch{Kind: MismatchArity, Source: src, Target: target})
		return False
	}

	res := True
	for i, te := range ttup.Elems {
		tgtType := te.Type
		if te.Rest {
			// Remaining source elements flow into the rest element.
			rest := c.restElement(tgtType)
			for j := i; j < len(stup.Elems); j++ {
				se := stup.Elems[j]
				elem := se.Type
				if se.Rest {
					elem = c.restElement(elem)
				}
				res = both(res, c.Check(elem, rest))
				if res.IsFalse() {
					return res
				}
			}
			break
		}
		if i >= len(stup.Elems) {
			if te.Optional {
				continue
			}
			break
		}
		se := stup.Elems[i]
		srcType := se.Type
		if se.Rest {
			srcType = c.restElement(srcType)
		}
		res = both(res, c.Check(srcType, tgtType))
		if res.IsFalse() {
			return res
		}
	}
	return res
}

func (c *SubtypeChecker) checkMappedTarget(src, target types.TypeID, st, tt types.Type) Result {
	tm, _ := c.In.Mapped(target)
	if st.Kind == types.KindMapped {
		sm, _ := c.In.Mapped(src)
		// Structural "for all keys" comparison over a shared key domain.
		if c.Check(tm.Keys, sm.Keys).IsTrue() {
			// Compare value types with the target's parameter renamed to
			// the source's so occurrences line up.
			sub := Substitution{tm.TypeParam: sm.TypeParam}
			tv := c.eval.Instantiate(tm.Value, sub)
			if tm.Readonly == sm.Readonly && tm.Optional == sm.Optional {
				return c.Check(sm.Value, tv)
			}
		}
	}
	c.trace(Mismatch{Kind: MismatchType, Source: src, Target: target})
	return False
}
