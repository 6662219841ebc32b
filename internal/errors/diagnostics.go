package errors

import (
	"fmt"

	"github.com/minnieml-lang/mml/internal/span"
)

// Builder functions, one per CompilationError variant named in spec §7.
// Each pins the phase name and message shape so call sites in
// internal/parser and internal/sema stay terse and consistent.

func ParserFailure(message string, sp span.Span) *Report {
	return New(PAR001, "parser", message, sp)
}

func ParserUnknown(message string, sp span.Span) *Report {
	return New(PAR002, "parser", message, sp)
}

func ParsingMemberError(failedCode, message string, sp span.Span) *Report {
	return New(PAR003, "parser", message, sp).WithData(map[string]any{"failed_code": failedCode})
}

func ParsingIdError(invalidID, message string, sp span.Span) *Report {
	return New(PAR004, "parser", message, sp).WithData(map[string]any{"invalid_id": invalidID})
}

func UnclosedComment(sp span.Span) *Report {
	return New(PAR005, "parser", "unclosed block comment", sp)
}

func TermError(message string, sp span.Span) *Report {
	return New(PAR006, "parser", message, sp)
}

func UndefinedRef(name string, sp span.Span) *Report {
	return New(NAM001, "names", fmt.Sprintf("undefined reference %q", name), sp).
		WithData(map[string]any{"name": name})
}

func UndefinedTypeRef(name string, sp span.Span) *Report {
	return New(NAM002, "names", fmt.Sprintf("undefined type reference %q", name), sp).
		WithData(map[string]any{"name": name})
}

func DuplicateName(name string, offendingSpans []span.Span, sp span.Span) *Report {
	return New(NAM003, "names", fmt.Sprintf("duplicate name %q", name), sp).
		WithData(map[string]any{"name": name, "spans": offendingSpans})
}

func InvalidExpression(reason string, sp span.Span) *Report {
	return New(NAM004, "names", reason, sp)
}

func DanglingTerms(message string, sp span.Span) *Report {
	return New(NAM005, "names", message, sp)
}

func MemberErrorFound(failedCode string, sp span.Span) *Report {
	return New(NAM006, "names", fmt.Sprintf("member error %q reached semantic analysis", failedCode), sp)
}

func ParsingIdErrorFound(invalidID string, sp span.Span) *Report {
	return New(NAM007, "names", fmt.Sprintf("invalid identifier %q reached semantic analysis", invalidID), sp)
}

func InvalidExpressionFound(reason string, sp span.Span) *Report {
	return New(NAM008, "names", reason, sp)
}

func InvalidEntryPoint(reason string, sp span.Span) *Report {
	return New(NAM009, "names", reason, sp)
}

func MissingParameterType(name string, sp span.Span) *Report {
	return New(TYP001, "types", fmt.Sprintf("parameter %q has no type ascription", name), sp)
}

func MissingReturnType(name string, sp span.Span) *Report {
	return New(TYP002, "types", fmt.Sprintf("%q has no return type and none could be inferred", name), sp)
}

func RecursiveFunctionMissingReturnType(name string, sp span.Span) *Report {
	return New(TYP003, "types", fmt.Sprintf("recursive function %q requires an explicit return type", name), sp)
}

func MissingOperatorParameterType(name string, sp span.Span) *Report {
	return New(TYP004, "types", fmt.Sprintf("operator %q parameter has no type ascription", name), sp)
}

func MissingOperatorReturnType(name string, sp span.Span) *Report {
	return New(TYP005, "types", fmt.Sprintf("operator %q has no return type", name), sp)
}

func TypeMismatch(expected, actual string, sp span.Span) *Report {
	return New(TYP006, "types", fmt.Sprintf("expected type %s, got %s", expected, actual), sp).
		WithData(map[string]any{"expected": expected, "actual": actual})
}

func UndersaturatedApplication(expected, actual int, sp span.Span) *Report {
	return New(TYP007, "types", fmt.Sprintf("expected %d argument(s), got %d", expected, actual), sp)
}

func OversaturatedApplication(expected, actual int, sp span.Span) *Report {
	return New(TYP008, "types", fmt.Sprintf("expected %d argument(s), got %d", expected, actual), sp)
}

func InvalidApplication(fnType, argType string, sp span.Span) *Report {
	return New(TYP009, "types", fmt.Sprintf("cannot apply a value of type %s to %s", fnType, argType), sp)
}

func InvalidSelection(baseType string, sp span.Span) *Report {
	return New(TYP010, "types", fmt.Sprintf("%s is not a struct type", baseType), sp)
}

func UnknownField(structName, field string, sp span.Span) *Report {
	return New(TYP011, "types", fmt.Sprintf("%s has no field %q", structName, field), sp)
}

func ConditionalBranchTypeMismatch(tTrue, tFalse string, sp span.Span) *Report {
	return New(TYP012, "types", fmt.Sprintf("branches disagree: %s vs %s", tTrue, tFalse), sp)
}

func ConditionalBranchTypeUnknown(sp span.Span) *Report {
	return New(TYP013, "types", "neither branch of the conditional could be typed", sp)
}

func UnresolvableType(sp span.Span) *Report {
	return New(TYP014, "types", "type could not be resolved", sp)
}

func IncompatibleTypes(t1, t2, context string, sp span.Span) *Report {
	return New(TYP015, "types", fmt.Sprintf("%s and %s are incompatible in %s", t1, t2, context), sp)
}

func UntypedHoleInBinding(sp span.Span) *Report {
	return New(TYP016, "types", "hole has no expected type in this context", sp)
}

func UseAfterMove(name string, sp span.Span) *Report {
	return New(OWN001, "ownership", fmt.Sprintf("%q used after being moved", name), sp)
}

func ConsumingParamNotLastUse(name string, sp span.Span) *Report {
	return New(OWN002, "ownership", fmt.Sprintf("consuming parameter %q is not its argument's last use", name), sp)
}

func PartialApplicationWithConsuming(name string, sp span.Span) *Report {
	return New(OWN003, "ownership", fmt.Sprintf("%q has a consuming parameter and cannot be partially applied", name), sp)
}

func ConditionalOwnershipMismatch(sp span.Span) *Report {
	return New(OWN004, "ownership", "conditional branches disagree on ownership state", sp)
}

func BorrowEscapeViaReturn(name string, sp span.Span) *Report {
	return New(OWN005, "ownership", fmt.Sprintf("borrowed parameter %q escapes via return", name), sp)
}
