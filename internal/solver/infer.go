package solver

import "tyco/internal/types"

// InferenceContext collects constraints from (candidate, pattern) pairs
// referencing a common set of type parameters and solves for them. Walks
// source and pattern in lockstep, classifying each site's variance from the
// surrounding context.
type InferenceContext struct {
	in         *types.Interner
	paramIndex map[types.TypeID]int
	params     []types.TypeID
	candidates [][]inferCandidate
	depth      int
}

type inferCandidate struct {
	t types.TypeID
	v types.Variance
}

// NewInference creates a context over the given type-parameter ids
// (including infer bindings).
func NewInference(in *types.Interner, params []types.TypeID) *InferenceContext {
	ic := &InferenceContext{
		in:         in,
		paramIndex: make(map[types.TypeID]int, len(params)),
		params:     params,
		candidates: make([][]inferCandidate, len(params)),
	}
	for i, p := range params {
		ic.paramIndex[p] = i
	}
	return ic
}

// Infer walks source against pattern, recording a candidate wherever the
// pattern is one of the context's parameters.
func (ic *InferenceContext) Infer(source, pattern types.TypeID, v types.Variance) {
	if ic.depth > instantiateFuel || !source.IsValid() || !pattern.IsValid() {
		return
	}
	ic.depth++
	defer func() { ic.depth-- }()

	if i, ok := ic.paramIndex[pattern]; ok {
		ic.candidates[i] = append(ic.candidates[i], inferCandidate{t: source, v: v})
		return
	}

	in := ic.in
	pt, ok := in.Lookup(pattern)
	if !ok {
		return
	}
	st, _ := in.Lookup(source)

	switch pt.Kind {
	case types.KindArray:
		switch st.Kind {
		case types.KindArray:
			ic.Infer(st.Elem, pt.Elem, v)
		case types.KindTuple:
			tup, _ := in.Tuple(source)
			for _, el := range tup.Elems {
				ic.Infer(el.Type, pt.Elem, v)
			}
		}
	case types.KindTuple:
		if st.Kind == types.KindTuple {
			ptup, _ := in.Tuple(pattern)
			stup, _ := in.Tuple(source)
			for i, pe := range ptup.Elems {
				if pe.Rest {
					rest := make([]types.TypeID, 0)
					for j := i; j < len(stup.Elems); j++ {
						rest = append(rest, stup.Elems[j].Type)
					}
					ic.Infer(in.MakeTuple(tupleOf(rest)...), pe.Type, v)
					break
				}
				if i < len(stup.Elems) {
					ic.Infer(stup.Elems[i].Type, pe.Type, v)
				}
			}
		}
	case types.KindUnion:
		// Every member is inferred against the whole source; the source is
		// not split between members.
		for _, m := range in.ListMembers(pattern) {
			ic.Infer(source, m, v)
		}
	case types.KindIntersection:
		for _, m := range in.ListMembers(pattern) {
			ic.Infer(source, m, v)
		}
	case types.KindObject:
		po, _ := in.Object(pattern)
		for _, pp := range po.Props {
			if sp, found := in.FindProp(source, pp.Name); found {
				ic.Infer(sp.Type, pp.Type, v)
			}
		}
		if po.StringIndex.IsValid() {
			if so, found := in.Object(source); found && so.StringIndex.IsValid() {
				ic.Infer(so.StringIndex, po.StringIndex, v)
			}
		}
		so, isObj := in.Object(source)
		if isObj {
			ic.inferSignatures(so.Calls, po.Calls, v)
			ic.inferSignatures(so.Constructs, po.Constructs, v)
		}
	case types.KindApplication:
		if st.Kind == types.KindApplication && st.Def == pt.Def {
			sa, _ := in.App(source)
			pa, _ := in.App(pattern)
			for i := range pa.Args {
				if i < len(sa.Args) {
					ic.Infer(sa.Args[i], pa.Args[i], v)
				}
			}
		}
	case types.KindKeyOf:
		if st.Kind == types.KindKeyOf {
			ic.Infer(st.Elem, pt.Elem, flip(v))
		}
	case types.KindReadonly:
		ic.Infer(source, pt.Elem, v)
	case types.KindTemplateLiteral:
		if st.Kind == types.KindTemplateLiteral {
			stpl, _ := in.Template(source)
			ptpl, _ := in.Template(pattern)
			if len(stpl.Holes) == len(ptpl.Holes) {
				for i := range ptpl.Holes {
					ic.Infer(stpl.Holes[i], ptpl.Holes[i], v)
				}
			}
		}
	}
}

func tupleOf(ids []types.TypeID) []types.TupleElem {
	out := make([]types.TupleElem, len(ids))
	for i, id := range ids {
		out[i] = types.TupleElem{Type: id}
	}
	return out
}

func (ic *InferenceContext) inferSignatures(srcSigs, patSigs []types.SignatureID, v types.Variance) {
	for i, ps := range patSigs {
		if i >= len(srcSigs) {
			break
		}
		ss := ic.in.Signature(srcSigs[i])
		p := ic.in.Signature(ps)
		sParams := nonThisParams(ss.Params)
		pParams := nonThisParams(p.Params)
		for j, pp := range pParams {
			if j < len(sParams) {
				// Parameter positions are contravariant sites.
				ic.Infer(sParams[j].Type, pp.Type, flip(v))
			}
		}
		ic.Infer(ss.Return, p.Return, v)
	}
}

func flip(v types.Variance) types.Variance {
	switch v {
	case types.VarianceCovariant:
		return types.VarianceContravariant
	case types.VarianceContravariant:
		return types.VarianceCovariant
	}
	return v
}

// Solve produces the substitution. For each parameter: the union of
// covariant candidates, the intersection of contravariant candidates, or
// the intersection when invariant sites contributed. Parameters without
// candidates fall back to their default, then their constraint, then
// unknown. The only failure is
// a violated constraint.
func (ic *InferenceContext) Solve(c *SubtypeChecker) (Substitution, bool) {
	sub := make(Substitution, len(ic.params))
	for i, p := range ic.params {
		cands := ic.candidates[i]
		var inferred types.TypeID
		var inv, co, contra []types.TypeID
		for _, cand := range cands {
			switch cand.v {
			case types.VarianceCovariant:
				co = append(co, cand.t)
			case types.VarianceContravariant:
				contra = append(contra, cand.t)
			default:
				inv = append(inv, cand.t)
			}
		}
		switch {
		case len(inv) > 0:
			inferred = ic.in.MakeIntersection(inv...)
		case len(co) > 0:
			inferred = ic.in.MakeUnion(co...)
		case len(contra) > 0:
			inferred = ic.in.MakeIntersection(contra...)
		}
		info, _ := ic.in.Param(p)
		if !inferred.IsValid() {
			switch {
			case info != nil && info.Default.IsValid():
				inferred = info.Default
			case info != nil && info.Constraint.IsValid():
				inferred = info.Constraint
			default:
				inferred = ic.in.Builtins().Unknown
			}
		}
		if info != nil && info.Constraint.IsValid() && c != nil {
			if !c.Check(inferred, info.Constraint).IsTrue() {
				return nil, false
			}
		}
		sub[p] = inferred
	}
	return sub, true
}
