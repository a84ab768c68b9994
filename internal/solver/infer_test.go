package solver

import (
	"testing"

	"tyco/internal/types"
)

func TestInferFromArrayArgument(t *testing.T) {
	c, b := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	ic := NewInference(in, []types.TypeID{tp})
	ic.Infer(in.MakeArray(b.String), in.MakeArray(tp), types.VarianceCovariant)
	sub, ok := ic.Solve(c)
	if !ok {
		t.Fatalf("inference should succeed")
	}
	if sub[tp] != b.String {
		t.Fatalf("T should infer as string, got %s", in.Format(sub[tp]))
	}
}

func TestInferUnionsCovariantCandidates(t *testing.T) {
	c, b := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	ic := NewInference(in, []types.TypeID{tp})
	ic.Infer(b.String, tp, types.VarianceCovariant)
	ic.Infer(b.Number, tp, types.VarianceCovariant)
	sub, _ := ic.Solve(c)
	if sub[tp] != in.MakeUnion(b.String, b.Number) {
		t.Fatalf("covariant candidates should union, got %s", in.Format(sub[tp]))
	}
}

func TestInferFromObjectProperty(t *testing.T) {
	c, b := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	name := in.Strings.Intern("value")
	pattern := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: name, Type: tp}}})
	sourceT := in.MakeObject(types.ObjectInfo{Props: []types.Prop{{Name: name, Type: b.Number}}})
	ic := NewInference(in, []types.TypeID{tp})
	ic.Infer(sourceT, pattern, types.VarianceCovariant)
	sub, _ := ic.Solve(c)
	if sub[tp] != b.Number {
		t.Fatalf("T should infer from the property type, got %s", in.Format(sub[tp]))
	}
}

func TestInferParameterPositionIsContravariant(t *testing.T) {
	c, b := newChecker()
	in := c.In
	tp := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("T")})
	mkFn := func(param types.TypeID) types.TypeID {
		return in.MakeFunction(in.MakeSignature(types.SignatureInfo{
			Params: []types.Param{{Name: in.Strings.Intern("x"), Type: param}},
			Return: b.Void,
		}))
	}
	ic := NewInference(in, []types.TypeID{tp})
	ic.Infer(mkFn(b.String), mkFn(tp), types.VarianceCovariant)
	sub, _ := ic.Solve(c)
	// A single contravariant candidate still lands on the source type.
	if sub[tp] != b.String {
		t.Fatalf("T should infer from the parameter, got %s", in.Format(sub[tp]))
	}
}

func TestInferDefaultsAndConstraints(t *testing.T) {
	c, b := newChecker()
	in := c.In
	// No candidates: the default wins, then unknown.
	withDefault := in.MakeTypeParameter(types.TypeParamInfo{
		Name:    in.Strings.Intern("D"),
		Default: b.Number,
	})
	bare := in.MakeTypeParameter(types.TypeParamInfo{Name: in.Strings.Intern("U")})
	ic := NewInference(in, []types.TypeID{withDefault, bare})
	sub, ok := ic.Solve(c)
	if !ok {
		t.Fatalf("empty inference should still produce a substitution")
	}
	if sub[withDefault] != b.Number || sub[bare] != b.Unknown {
		t.Fatalf("defaults: got %s and %s", in.Format(sub[withDefault]), in.Format(sub[bare]))
	}

	// Violated constraints are the one failure mode.
	constrained := in.MakeTypeParameter(types.TypeParamInfo{
		Name:       in.Strings.Intern("C"),
		Constraint: b.String,
	})
	ic2 := NewInference(in, []types.TypeID{constrained})
	ic2.Infer(b.Number, constrained, types.VarianceCovariant)
	if _, ok := ic2.Solve(c); ok {
		t.Fatalf("number against a string-constrained parameter must fail")
	}
}
