package diag

import "fmt"

// Code identifies a diagnostic. Numbering follows the reference TypeScript
// compiler wherever the semantics match, so editor integrations keyed by TS
// codes keep working.
type Code uint32

const (
	// UnknownCode is reserved for diagnostics without a stable number.
	UnknownCode Code = 0

	// Syntactic diagnostics surfaced unchanged from the parser.
	SynExpectedToken    Code = 1005
	SynReservedWord     Code = 1214
	SynUnexpectedToken  Code = 1434
	SynDecoratorContext Code = 1206

	// Declarative diagnostics.
	DuplicateIdentifier         Code = 2300
	CannotRedeclareBlockScoped  Code = 2451
	OverloadSignatureMismatch   Code = 2394
	AccessibilityModifierClash  Code = 2379
	ExportAssignmentWithExports Code = 2309

	// Resolution diagnostics.
	CannotFindName        Code = 2304
	CannotFindModule      Code = 2307
	TypeOnlyUsedAsValue   Code = 1361
	UsedBeforeAssigned    Code = 2454
	BlockScopedUsedBefore Code = 2448

	// Type diagnostics.
	NotAssignable           Code = 2322
	PropertyNotFound        Code = 2339
	PropertyNotFoundDidYouMean Code = 2551
	ArgumentNotAssignable   Code = 2345
	ExcessProperty          Code = 2353
	NoMatchingOverload      Code = 2769
	NoIndexSignature        Code = 7053
	CannotUseAsIndex        Code = 2538
	SpreadNonObject         Code = 2698
	ComparisonUnintentional Code = 2367
	ReadonlyAssignment      Code = 2540
	GetterMustReturn        Code = 2378
	ImplicitAnyParameter    Code = 7006
	ImplicitAnyVariable     Code = 7005
	NotCallable             Code = 2349
	ExpectedArguments       Code = 2554
	PossiblyUndefined       Code = 18048
	PossiblyNull            Code = 18047

	// Flow diagnostics.
	UnreachableCode    Code = 7027
	NotAllPathsReturn  Code = 2366
	VariableUsedBefore Code = 2565
)

func (c Code) String() string {
	return fmt.Sprintf("TS%d", uint32(c))
}
