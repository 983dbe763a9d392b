package engine

import (
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// tagScope is the declaration level a tag is attached to. Narrower scopes
// have higher values.
type tagScope int

const (
	scopeType tagScope = iota + 1
	scopeMethod
	scopeProperty
	scopeParameter
)

func (s tagScope) String() string {
	switch s {
	case scopeType:
		return "type"
	case scopeMethod:
		return "method"
	case scopeProperty:
		return "property"
	case scopeParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// tagSignal is a tag as found on a declaration, not yet resolved
type tagSignal struct {
	typegraph.MetadataTag
	scope tagScope
	seq   int
}

// signals are the atomic facts attached directly to one declaration
type signals struct {
	name        string
	typ         typegraph.TypeRef
	nullability typegraph.Nullability
	hasDefault  bool
	defaultExpr string
	tags        []tagSignal
}

// scopedTags wraps tags with their scope and declaration sequence. A native
// deprecation marker becomes a deprecated tag of native origin.
func scopedTags(tags []typegraph.MetadataTag, native *typegraph.Deprecation, scope tagScope) []tagSignal {
	out := make([]tagSignal, 0, len(tags)+1)
	for i, t := range tags {
		out = append(out, tagSignal{MetadataTag: t, scope: scope, seq: i})
	}
	if native != nil {
		out = append(out, tagSignal{
			MetadataTag: typegraph.MetadataTag{
				Kind:   typegraph.TagDeprecated,
				Origin: typegraph.OriginNative,
				Since:  native.Since,
			},
			scope: scope,
			seq:   len(tags),
		})
	}
	return out
}

func propertySignals(p *typegraph.PropertyDecl) signals {
	return signals{
		name:        p.Name,
		typ:         p.Type,
		nullability: p.Type.Nullability,
		tags:        scopedTags(p.Tags, p.Deprecated, scopeProperty),
	}
}

func parameterSignals(p *typegraph.ParameterDecl) signals {
	return signals{
		name:        p.Name,
		typ:         p.Type,
		nullability: p.Type.Nullability,
		hasDefault:  p.HasDefault,
		defaultExpr: p.Default,
		tags:        scopedTags(p.Tags, p.Deprecated, scopeParameter),
	}
}

func typeSignals(t *typegraph.TypeNode) []tagSignal {
	return scopedTags(t.Tags, t.Deprecated, scopeType)
}

// methodSignals scopes callable tags between the owning type and its
// parameters. They only decide method attributes and never compete with
// parameter tags.
func methodSignals(m *typegraph.MethodDecl) []tagSignal {
	return scopedTags(m.Tags, m.Deprecated, scopeMethod)
}
