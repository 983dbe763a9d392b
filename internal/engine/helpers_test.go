package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

var (
	str    = typegraph.Primitive("string")
	intRef = typegraph.Primitive("int")
)

func named(id string, args ...typegraph.TypeRef) typegraph.TypeRef {
	return typegraph.Named(id, args...)
}

func field(name string, typ typegraph.TypeRef, tags ...typegraph.MetadataTag) *typegraph.PropertyDecl {
	return &typegraph.PropertyDecl{
		Name:   name,
		Type:   typ,
		Source: typegraph.SourceField | typegraph.SourceConstructor,
		Tags:   tags,
	}
}

func accessor(name string, typ typegraph.TypeRef, tags ...typegraph.MetadataTag) *typegraph.PropertyDecl {
	return &typegraph.PropertyDecl{
		Name:   name,
		Type:   typ,
		Source: typegraph.SourceAccessor | typegraph.SourceMutator,
		Tags:   tags,
	}
}

func param(pos int, name string, typ typegraph.TypeRef, tags ...typegraph.MetadataTag) *typegraph.ParameterDecl {
	return &typegraph.ParameterDecl{Name: name, Type: typ, Position: pos, Tags: tags}
}

func withDefault(p *typegraph.ParameterDecl, expr string) *typegraph.ParameterDecl {
	p.HasDefault = true
	p.Default = expr
	return p
}

func ctor(params ...*typegraph.ParameterDecl) *typegraph.ConstructorDecl {
	return &typegraph.ConstructorDecl{Params: params}
}

func delegating(target int, fixed map[string]string, params ...*typegraph.ParameterDecl) *typegraph.ConstructorDecl {
	return &typegraph.ConstructorDecl{
		Params:     params,
		Delegation: &typegraph.Delegation{Target: target, Fixed: fixed},
	}
}

func method(owner, name, route string, returns *typegraph.TypeRef, params ...*typegraph.ParameterDecl) *typegraph.MethodDecl {
	return &typegraph.MethodDecl{Owner: owner, Name: name, Route: route, Returns: returns, Params: params}
}

func refPtr(r typegraph.TypeRef) *typegraph.TypeRef {
	return &r
}

func tag(kind typegraph.TagKind, origin typegraph.Origin) typegraph.MetadataTag {
	return typegraph.MetadataTag{Kind: kind, Origin: origin}
}

func renameTag(value string, origin typegraph.Origin) typegraph.MetadataTag {
	t := tag(typegraph.TagRename, origin)
	t.Value = value
	return t
}

func flagTag(kind typegraph.TagKind, origin typegraph.Origin, flag bool) typegraph.MetadataTag {
	t := tag(kind, origin)
	t.Flag = typegraph.Bool(flag)
	return t
}

func deprecatedTag(since string, origin typegraph.Origin) typegraph.MetadataTag {
	t := tag(typegraph.TagDeprecated, origin)
	t.Since = since
	return t
}

func mustGraph(t *testing.T, nodes ...*typegraph.TypeNode) *typegraph.Graph {
	t.Helper()
	g, err := typegraph.NewGraph(nodes...)
	require.NoError(t, err)
	return g
}

func scanWith(t *testing.T, g *typegraph.Graph, root string, opts Options) *model.Model {
	t.Helper()
	m, err := NewScanner(g, opts).Scan(root)
	require.NoError(t, err)
	return m
}

func mustScan(t *testing.T, g *typegraph.Graph, root string) *model.Model {
	t.Helper()
	return scanWith(t, g, root, DefaultOptions())
}

func mustProperty(t *testing.T, m *model.Model, typeID, name string) *model.PropertySchema {
	t.Helper()
	ts := m.Type(typeID)
	require.NotNil(t, ts, "type %s", typeID)
	p := ts.Property(name)
	require.NotNil(t, p, "property %s.%s", typeID, name)
	return p
}

func propertyNames(ts *model.TypeSchema) []string {
	names := make([]string, 0, len(ts.Properties))
	for _, p := range ts.Properties {
		names = append(names, p.Name)
	}
	return names
}

// assertContract checks the invariants every reconciled property must hold
func assertContract(t *testing.T, m *model.Model) {
	t.Helper()
	for _, ts := range m.Types {
		for _, p := range ts.Properties {
			if p.Required {
				require.False(t, p.HasDefault, "%s.%s is required with a default", ts.ID, p.Name)
			}
		}
	}
	for _, op := range m.Operations {
		for _, p := range op.Parameters {
			if p.Required {
				require.False(t, p.HasDefault, "%s(%s) is required with a default", op.Route, p.Name)
			}
		}
	}
}
