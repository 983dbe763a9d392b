// Package engine reconciles the signals attached to declared types and
// callables into a Schema Model.
//
// A scan is a pure, single-threaded pass over an immutable type graph. The
// stages run in order: signal extraction, constructor reconciliation,
// inheritance merging, and tag precedence resolution. Wrapper unwrapping is
// applied to every type reference, and the method scanner drives the same
// stages per callable parameter.
package engine

import (
	"go.uber.org/zap"

	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// Options configures a Scanner
type Options struct {
	// Naming is applied to property names that carry no rename tag
	Naming NamingStrategy

	// StrictTags raises a TagConflictError when two equally ranked tags
	// disagree, instead of picking the first declared.
	StrictTags bool

	// StrictOverloads raises a RouteConflictError when several callables are
	// bound to one route, instead of electing one.
	StrictOverloads bool

	// Wrappers is the registry of recognised wrapper shapes
	Wrappers *WrapperRegistry

	// OriginRank orders tag origins; higher wins
	OriginRank map[typegraph.Origin]int

	Logger *zap.Logger
}

// DefaultOriginRank returns the default origin ranking table
func DefaultOriginRank() map[typegraph.Origin]int {
	return map[typegraph.Origin]int{
		typegraph.OriginStructural: 300,
		typegraph.OriginNative:     200,
		typegraph.OriginAuxiliary:  100,
	}
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Naming:     NamingIdentity,
		Wrappers:   DefaultWrappers(),
		OriginRank: DefaultOriginRank(),
		Logger:     zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	if o.Naming == "" {
		o.Naming = NamingIdentity
	}
	if o.Wrappers == nil {
		o.Wrappers = DefaultWrappers()
	}
	if o.OriginRank == nil {
		o.OriginRank = DefaultOriginRank()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
