package errors

import (
	"strconv"
	"strings"
)

// Type graph error codes (GRA100-199)
const (
	// ErrCyclicSupertype indicates a type reaches itself through its supertype chain
	ErrCyclicSupertype ErrorCode = "GRA100"
	// ErrDanglingReference indicates a named type reference that the graph cannot resolve
	ErrDanglingReference ErrorCode = "GRA101"
	// ErrUnresolvedGeneric indicates a type variable with no binding, or a binding arity mismatch
	ErrUnresolvedGeneric ErrorCode = "GRA102"
	// ErrMalformedConstructor indicates an inconsistent constructor declaration
	ErrMalformedConstructor ErrorCode = "GRA103"
	// ErrMalformedParameter indicates an inconsistent parameter list
	ErrMalformedParameter ErrorCode = "GRA104"
	// ErrDuplicateType indicates two nodes share one identity
	ErrDuplicateType ErrorCode = "GRA105"
)

// NewCyclicSupertype creates a GRA100 error
func NewCyclicSupertype(node string, chain []string) *ScanError {
	return newError(
		ErrCyclicSupertype,
		"cyclic_supertype",
		KindTypeGraph,
		SeverityError,
		"Supertype chain of %s is cyclic",
		node,
	).WithNode(node).
		WithActual(strings.Join(chain, " -> ")).
		WithSuggestion("Fix the indexer output; a type cannot extend itself")
}

// NewDanglingReference creates a GRA101 error
func NewDanglingReference(node, ref string) *ScanError {
	return newError(
		ErrDanglingReference,
		"dangling_reference",
		KindTypeGraph,
		SeverityError,
		"Type reference %s cannot be resolved",
		ref,
	).WithNode(node).
		WithSuggestion("Include the referenced type in the snapshot, or mark it opaque")
}

// NewUnresolvedGeneric creates a GRA102 error
func NewUnresolvedGeneric(node, variable string) *ScanError {
	return newError(
		ErrUnresolvedGeneric,
		"unresolved_generic",
		KindTypeGraph,
		SeverityError,
		"Type variable %s has no binding",
		variable,
	).WithNode(node)
}

// NewGenericArityMismatch creates a GRA102 error for a reference with the wrong number of arguments
func NewGenericArityMismatch(node string, expected, actual int) *ScanError {
	return newError(
		ErrUnresolvedGeneric,
		"generic_arity_mismatch",
		KindTypeGraph,
		SeverityError,
		"Wrong number of type arguments for %s",
		node,
	).WithNode(node).
		WithExpected(strconv.Itoa(expected)).
		WithActual(strconv.Itoa(actual))
}

// NewMalformedConstructor creates a GRA103 error
func NewMalformedConstructor(node, reason string) *ScanError {
	return newError(
		ErrMalformedConstructor,
		"malformed_constructor",
		KindTypeGraph,
		SeverityError,
		"Malformed constructor: %s",
		reason,
	).WithNode(node)
}

// NewMalformedParameter creates a GRA104 error
func NewMalformedParameter(node, reason string) *ScanError {
	return newError(
		ErrMalformedParameter,
		"malformed_parameter",
		KindTypeGraph,
		SeverityError,
		"Malformed parameter list: %s",
		reason,
	).WithNode(node)
}

// NewDuplicateType creates a GRA105 error
func NewDuplicateType(node string) *ScanError {
	return newError(
		ErrDuplicateType,
		"duplicate_type",
		KindTypeGraph,
		SeverityError,
		"Type %s is declared more than once",
		node,
	).WithNode(node)
}
