package solver

import "tyco/internal/types"

// Instantiate rewrites id with the substitution applied, rebuilding every
// structure through the interner so results stay deduplicated. Conditionals
// marked distributive distribute when their check parameter receives a
// union.
func (e *Evaluator) Instantiate(id types.TypeID, sub Substitution) types.TypeID {
	if len(sub) == 0 {
		return id
	}
	return e.instantiate(id, sub, 0)
}

func (e *Evaluator) instantiate(id types.TypeID, sub Substitution, depth int) types.TypeID {
	if depth > instantiateFuel {
		return id
	}
	if r, ok := sub[id]; ok {
		return r
	}
	in := e.c.In
	t, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch t.Kind {
	case types.KindArray:
		return in.MakeArray(e.instantiate(t.Elem, sub, depth+1))
	case types.KindKeyOf:
		return in.MakeKeyOf(e.instantiate(t.Elem, sub, depth+1))
	case types.KindReadonly:
		return in.MakeReadonly(e.instantiate(t.Elem, sub, depth+1))
	case types.KindIndexedAccess:
		return in.MakeIndexedAccess(
			e.instantiate(t.Elem, sub, depth+1),
			e.instantiate(t.Key, sub, depth+1))
	case types.KindUnion:
		members := in.ListMembers(id)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = e.instantiate(m, sub, depth+1)
		}
		return in.MakeUnion(out...)
	case types.KindIntersection:
		members := in.ListMembers(id)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = e.instantiate(m, sub, depth+1)
		}
		return in.MakeIntersection(out...)
	case types.KindTuple:
		tup, _ := in.Tuple(id)
		elems := make([]types.TupleElem, len(tup.Elems))
		for i, el := range tup.Elems {
			el.Type = e.instantiate(el.Type, sub, depth+1)
			elems[i] = el
		}
		return in.MakeTuple(elems...)
	case types.KindApplication:
		app, _ := in.App(id)
		args := make([]types.TypeID, len(app.Args))
		for i, a := range app.Args {
			args[i] = e.instantiate(a, sub, depth+1)
		}
		return in.MakeApplication(e.instantiate(app.Base, sub, depth+1), t.Def, args)
	case types.KindObject:
		o, _ := in.Object(id)
		var out types.ObjectInfo
		out.Flags = o.Flags
		out.Symbol = o.Symbol
		out.Props = make([]types.Prop, len(o.Props))
		for i, p := range o.Props {
			p.Type = e.instantiate(p.Type, sub, depth+1)
			if p.WriteType.IsValid() {
				p.WriteType = e.instantiate(p.WriteType, sub, depth+1)
			}
			out.Props[i] = p
		}
		if o.StringIndex.IsValid() {
			out.StringIndex = e.instantiate(o.StringIndex, sub, depth+1)
		}
		if o.NumberIndex.IsValid() {
			out.NumberIndex = e.instantiate(o.NumberIndex, sub, depth+1)
		}
		out.Calls = e.instantiateSigs(o.Calls, sub, depth)
		out.Constructs = e.instantiateSigs(o.Constructs, sub, depth)
		return in.MakeObject(out)
	case types.KindConditional:
		ci, _ := in.Cond(id)
		if ci.Distributive {
			if repl, hit := sub[ci.Check]; hit && in.KindOf(repl) == types.KindUnion {
				members := in.ListMembers(repl)
				parts := make([]types.TypeID, 0, len(members))
				for _, m := range members {
					narrowed := make(Substitution, len(sub))
					for k, v := range sub {
						narrowed[k] = v
					}
					narrowed[ci.Check] = m
					// Each distributed branch is reduced, so the result is a
					// union of selected branches rather than of conditionals.
					parts = append(parts, e.Evaluate(e.instantiate(id, narrowed, depth+1)))
				}
				return in.MakeUnion(parts...)
			}
		}
		return in.MakeConditional(types.CondInfo{
			Check:        e.instantiate(ci.Check, sub, depth+1),
			Extends:      e.instantiate(ci.Extends, sub, depth+1),
			WhenTrue:     e.instantiate(ci.WhenTrue, sub, depth+1),
			WhenFalse:    e.instantiate(ci.WhenFalse, sub, depth+1),
			Distributive: ci.Distributive && !subHasConcrete(sub, ci.Check),
		})
	case types.KindMapped:
		m, _ := in.Mapped(id)
		out := *m
		out.Keys = e.instantiate(m.Keys, sub, depth+1)
		out.Value = e.instantiate(m.Value, sub, depth+1)
		if m.NameType.IsValid() {
			out.NameType = e.instantiate(m.NameType, sub, depth+1)
		}
		return in.MakeMapped(out)
	case types.KindTemplateLiteral:
		tpl, _ := in.Template(id)
		holes := make([]types.TypeID, len(tpl.Holes))
		for i, h := range tpl.Holes {
			holes[i] = e.instantiate(h, sub, depth+1)
		}
		return in.MakeTemplate(types.TemplateInfo{Texts: tpl.Texts, Holes: holes})
	}
	return id
}

func subHasConcrete(sub Substitution, param types.TypeID) bool {
	_, ok := sub[param]
	return ok
}

func (e *Evaluator) instantiateSigs(sigs []types.SignatureID, sub Substitution, depth int) []types.SignatureID {
	if len(sigs) == 0 {
		return nil
	}
	out := make([]types.SignatureID, len(sigs))
	for i, sid := range sigs {
		sig := e.c.In.Signature(sid)
		// Inner signature type parameters shadow: drop them from the
		// substitution when they collide.
		inner := sub
		for _, tp := range sig.TypeParams {
			if _, hit := sub[tp]; hit {
				inner = make(Substitution, len(sub))
				for k, v := range sub {
					inner[k] = v
				}
				for _, shadow := range sig.TypeParams {
					delete(inner, shadow)
				}
				break
			}
		}
		params := make([]types.Param, len(sig.Params))
		for j, p := range sig.Params {
			p.Type = e.instantiate(p.Type, inner, depth+1)
			params[j] = p
		}
		out[i] = e.c.In.MakeSignature(types.SignatureInfo{
			TypeParams: sig.TypeParams,
			Params:     params,
			Return:     e.instantiate(sig.Return, inner, depth+1),
			Predicate:  sig.Predicate,
		})
	}
	return out
}
