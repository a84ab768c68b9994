package symbols

// CanMerge reports whether a new declaration with incoming flags may merge
// into an existing symbol with existing flags. The combinations are exactly
// the mergeable pairs of the language; anything else is a duplicate
// identifier (the binder still records the declaration so references
// resolve, and the checker emits the diagnostic).
func CanMerge(existing, incoming Flags) bool {
	return canMergeOneWay(existing, incoming) || canMergeOneWay(incoming, existing)
}

func canMergeOneWay(a, b Flags) bool {
	switch {
	// interface + interface
	case a&FlagInterface != 0 && b&FlagInterface != 0:
		return true
	// interface + class (the class provides the value)
	case a&FlagInterface != 0 && b&FlagClass != 0:
		return true
	// module + module
	case a&(FlagModule|FlagNamespaceModule) != 0 && b&(FlagModule|FlagNamespaceModule) != 0:
		return true
	// module + class/function/enum/interface
	case a&(FlagModule|FlagNamespaceModule) != 0 &&
		b&(FlagClass|FlagFunction|FlagEnum|FlagInterface) != 0:
		return true
	// namespace-module + variable
	case a&FlagNamespaceModule != 0 && b&FlagsVariable != 0:
		return true
	// function + function (overloads)
	case a&FlagFunction != 0 && b&FlagFunction != 0:
		return true
	// function + class
	case a&FlagFunction != 0 && b&FlagClass != 0:
		return true
	// method + method (overloads)
	case a&FlagMethod != 0 && b&FlagMethod != 0:
		return true
	// type-alias + value (separate namespaces)
	case a&FlagTypeAlias != 0 && b.IsValue() && !b.IsType():
		return true
	// interface + value (e.g. the global Object)
	case a&FlagInterface != 0 && b.IsValue() && b&(FlagClass|FlagEnum) == 0:
		return true
	// enum + enum
	case a&FlagEnum != 0 && b&FlagEnum != 0:
		return true
	}
	return false
}
