package flow

import (
	"testing"

	"tyco/internal/ast"
)

func TestGraphSentinels(t *testing.T) {
	g := NewGraph(0)
	if !g.Unreachable.IsValid() || !g.Start.IsValid() {
		t.Fatalf("shared sentinels must be allocated")
	}
	if g.Get(g.Unreachable).Kind != KindUnreachable {
		t.Fatalf("unreachable sentinel kind mismatch")
	}
}

func TestAddAntecedentSkipsUnreachableAndDuplicates(t *testing.T) {
	g := NewGraph(0)
	label := g.New(KindBranchLabel, ast.NoNodeID)
	a := g.New(KindAssignment, 7, g.Start)

	g.AddAntecedent(label, g.Unreachable)
	if len(g.Get(label).Antecedents) != 0 {
		t.Fatalf("unreachable must not join a label")
	}
	g.AddAntecedent(label, a)
	g.AddAntecedent(label, a)
	if len(g.Get(label).Antecedents) != 1 {
		t.Fatalf("duplicate antecedents must collapse")
	}
}

func TestRecordUse(t *testing.T) {
	g := NewGraph(0)
	cond := g.New(KindTrueCondition, 3, g.Start)
	g.RecordUse(9, cond)
	if g.UseOf(9) != cond {
		t.Fatalf("use should map to the recorded flow node")
	}
	if g.UseOf(10).IsValid() {
		t.Fatalf("unrecorded uses report NoFlowID")
	}
}
