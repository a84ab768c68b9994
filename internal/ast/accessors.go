package ast

// Named child accessors for the fixed layouts documented on Kind. Each
// tolerates NoNodeID and out-of-range lookups by returning NoNodeID.

// FnName .. FnBody read the function-like layout.
func (a *Arena) FnName(id NodeID) NodeID       { return a.Child(id, 0) }
func (a *Arena) FnTypeParams(id NodeID) NodeID { return a.Child(id, 1) }
func (a *Arena) FnParams(id NodeID) NodeID     { return a.Child(id, 2) }
func (a *Arena) FnReturnType(id NodeID) NodeID { return a.Child(id, 3) }
func (a *Arena) FnBody(id NodeID) NodeID       { return a.Child(id, 4) }

// ClassName .. ClassMembers read the class/interface layout.
func (a *Arena) ClassName(id NodeID) NodeID       { return a.Child(id, 0) }
func (a *Arena) ClassTypeParams(id NodeID) NodeID { return a.Child(id, 1) }
func (a *Arena) ClassHeritage(id NodeID) NodeID   { return a.Child(id, 2) }
func (a *Arena) ClassMembers(id NodeID) NodeID    { return a.Child(id, 3) }

// DeclName, DeclType and DeclInit read [name, type, init] layouts
// (VarDeclaration, Parameter, PropertyDecl, PropertySignature).
func (a *Arena) DeclName(id NodeID) NodeID { return a.Child(id, 0) }
func (a *Arena) DeclType(id NodeID) NodeID { return a.Child(id, 1) }
func (a *Arena) DeclInit(id NodeID) NodeID { return a.Child(id, 2) }

// IfCond, IfThen, IfElse read the if layout.
func (a *Arena) IfCond(id NodeID) NodeID { return a.Child(id, 0) }
func (a *Arena) IfThen(id NodeID) NodeID { return a.Child(id, 1) }
func (a *Arena) IfElse(id NodeID) NodeID { return a.Child(id, 2) }

// CallCallee, CallTypeArgs and CallArgs read call/new layouts.
func (a *Arena) CallCallee(id NodeID) NodeID   { return a.Child(id, 0) }
func (a *Arena) CallTypeArgs(id NodeID) NodeID { return a.Child(id, 1) }
func (a *Arena) CallArgs(id NodeID) NodeID     { return a.Child(id, 2) }

// AccessObj and AccessName read property/element access layouts.
func (a *Arena) AccessObj(id NodeID) NodeID  { return a.Child(id, 0) }
func (a *Arena) AccessName(id NodeID) NodeID { return a.Child(id, 1) }

// BinLHS and BinRHS read binary layouts.
func (a *Arena) BinLHS(id NodeID) NodeID { return a.Child(id, 0) }
func (a *Arena) BinRHS(id NodeID) NodeID { return a.Child(id, 1) }

// ListItems returns the items of a List node (or nil).
func (a *Arena) ListItems(id NodeID) []NodeID {
	if a.Kind(id) != KindList {
		return nil
	}
	return a.Children(id)
}

// ModuleName and ModuleBody read the module/namespace layout.
func (a *Arena) ModuleName(id NodeID) NodeID { return a.Child(id, 0) }
func (a *Arena) ModuleBody(id NodeID) NodeID { return a.Child(id, 1) }

// NameText returns the declared name text for nodes whose first child is a
// name, or the node's own text for identifiers.
func (a *Arena) NameText(id NodeID) string {
	switch a.Kind(id) {
	case KindIdent, KindPrivateIdent, KindStringLit:
		return a.Text(id)
	}
	name := a.Child(id, 0)
	if !name.IsValid() {
		return ""
	}
	return a.NameText(name)
}

// EnclosingFunction walks parents to the nearest function-like node.
func (a *Arena) EnclosingFunction(id NodeID) NodeID {
	for p := a.Parent(id); p.IsValid(); p = a.Parent(p) {
		if a.Kind(p).IsFunctionLike() {
			return p
		}
	}
	return NoNodeID
}
