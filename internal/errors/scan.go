package errors

import (
	"strings"
)

// Tag conflict codes (TAG200-299)
const (
	// ErrTagConflict indicates two equally ranked tags disagree about one attribute
	ErrTagConflict ErrorCode = "TAG200"
)

// Wrapper shape codes (WRP300-399)
const (
	// ErrUnsupportedWrapperShape indicates a generic type that is neither a registered wrapper nor a graph type
	ErrUnsupportedWrapperShape ErrorCode = "WRP300"
)

// Route conflict codes (RTE400-499)
const (
	// ErrRouteConflict indicates several callables are bound to one route
	ErrRouteConflict ErrorCode = "RTE400"
)

// NewTagConflict creates a TAG200 error
func NewTagConflict(node, attribute string, values []string) *ScanError {
	return newError(
		ErrTagConflict,
		"tag_conflict",
		KindTagConflict,
		SeverityError,
		"Conflicting %s tags of equal precedence",
		attribute,
	).WithNode(node).
		WithActual(strings.Join(values, ", ")).
		WithSuggestion("Remove one of the tags or move it to a narrower scope")
}

// NewUnsupportedWrapperShape creates a WRP300 warning
func NewUnsupportedWrapperShape(node, ref string) *ScanError {
	return newError(
		ErrUnsupportedWrapperShape,
		"unsupported_wrapper_shape",
		KindUnsupportedWrapper,
		SeverityWarning,
		"Generic type %s is not a registered wrapper; treated as opaque",
		ref,
	).WithNode(node).
		WithSuggestion("Register the wrapper shape under wrappers.extra")
}

// NewRouteConflict creates an RTE400 error
func NewRouteConflict(route string, callables []string) *ScanError {
	return newError(
		ErrRouteConflict,
		"route_conflict",
		KindRouteConflict,
		SeverityError,
		"Route %s is bound to %d callables",
		route, len(callables),
	).WithNode(route).
		WithActual(strings.Join(callables, ", "))
}

// NewOverloadsDropped creates an RTE400 warning for the default electing policy
func NewOverloadsDropped(route, elected string, dropped []string) *ScanError {
	return newError(
		ErrRouteConflict,
		"overloads_dropped",
		KindRouteConflict,
		SeverityWarning,
		"Route %s documents %s; alternate overloads dropped",
		route, elected,
	).WithNode(route).
		WithActual(strings.Join(dropped, ", "))
}
