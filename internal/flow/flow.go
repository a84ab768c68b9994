package flow

import (
	"fmt"

	"fortio.org/safecast"

	"tyco/internal/ast"
)

// FlowID identifies a node in the flow graph.
type FlowID uint32

// NoFlowID marks the absence of a flow node.
const NoFlowID FlowID = 0

// IsValid reports whether the ID refers to an allocated flow node.
func (id FlowID) IsValid() bool { return id != NoFlowID }

// Kind discriminates flow-node variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindStart is the entry of a function or file.
	KindStart
	// KindBranchLabel joins the arms of a branch.
	KindBranchLabel
	// KindLoopLabel joins loop back-edges; narrowing walks through it
	// pessimistically.
	KindLoopLabel
	// KindAssignment records a write through Node.
	KindAssignment
	// KindTrueCondition / KindFalseCondition record that Node evaluated
	// truthy / falsy on the path.
	KindTrueCondition
	KindFalseCondition
	// KindCall records a call site, for assertion-function narrowing.
	KindCall
	// KindArrayMutation records a mutating call on an array receiver.
	KindArrayMutation
	// KindAwaitPoint / KindYieldPoint mark suspension points that
	// invalidate identity-over-time narrowings.
	KindAwaitPoint
	KindYieldPoint
	// KindUnreachable follows return/throw/break/continue.
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindBranchLabel:
		return "branch"
	case KindLoopLabel:
		return "loop"
	case KindAssignment:
		return "assign"
	case KindTrueCondition:
		return "true-cond"
	case KindFalseCondition:
		return "false-cond"
	case KindCall:
		return "call"
	case KindArrayMutation:
		return "array-mutation"
	case KindAwaitPoint:
		return "await"
	case KindYieldPoint:
		return "yield"
	case KindUnreachable:
		return "unreachable"
	default:
		return "invalid"
	}
}

// Node is one control-flow fact: its kind, the AST position that produced
// it, and the antecedent paths that reach it.
type Node struct {
	Kind        Kind
	Node        ast.NodeID
	Antecedents []FlowID
}

// Antecedent returns the single antecedent of linear nodes.
func (n *Node) Antecedent() FlowID {
	if len(n.Antecedents) == 0 {
		return NoFlowID
	}
	return n.Antecedents[0]
}

// Graph is the flow-node arena for one file. Flow nodes are discarded once
// checking finishes for the file.
type Graph struct {
	data []Node
	// Uses maps identifier uses to the flow node current at bind time.
	Uses map[ast.NodeID]FlowID
	// Unreachable is the shared terminal node.
	Unreachable FlowID
	// Start is the file-level entry node.
	Start FlowID
}

// NewGraph creates a flow graph with its shared sentinels allocated.
func NewGraph(capacity uint32) *Graph {
	if capacity == 0 {
		capacity = 64
	}
	g := &Graph{
		data: make([]Node, 1, capacity+1),
		Uses: make(map[ast.NodeID]FlowID),
	}
	g.Unreachable = g.New(KindUnreachable, ast.NoNodeID)
	g.Start = g.New(KindStart, ast.NoNodeID)
	return g
}

// New allocates a flow node.
func (g *Graph) New(kind Kind, node ast.NodeID, antecedents ...FlowID) FlowID {
	lenData, err := safecast.Conv[uint32](len(g.data))
	if err != nil {
		panic(fmt.Errorf("flow arena overflow: %w", err))
	}
	id := FlowID(lenData)
	g.data = append(g.data, Node{Kind: kind, Node: node, Antecedents: antecedents})
	return id
}

// Get returns the flow node pointer or nil if the ID is invalid.
func (g *Graph) Get(id FlowID) *Node {
	if !id.IsValid() || int(id) >= len(g.data) {
		return nil
	}
	return &g.data[id]
}

// AddAntecedent appends a path into a label node, skipping duplicates and
// the unreachable sentinel.
func (g *Graph) AddAntecedent(label, antecedent FlowID) {
	if !label.IsValid() || !antecedent.IsValid() || antecedent == g.Unreachable {
		return
	}
	n := g.Get(label)
	for _, a := range n.Antecedents {
		if a == antecedent {
			return
		}
	}
	n.Antecedents = append(n.Antecedents, antecedent)
}

// RecordUse attaches the current flow node to an identifier use.
func (g *Graph) RecordUse(node ast.NodeID, at FlowID) {
	g.Uses[node] = at
}

// UseOf returns the flow node recorded for an identifier use.
func (g *Graph) UseOf(node ast.NodeID) FlowID {
	return g.Uses[node]
}

// Len reports the number of flow nodes excluding the sentinel.
func (g *Graph) Len() int { return len(g.data) - 1 }
