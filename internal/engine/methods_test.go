package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

func overloadGraph(t *testing.T) *typegraph.Graph {
	t.Helper()
	return mustGraph(t, &typegraph.TypeNode{
		ID: "a.Items",
		Methods: []*typegraph.MethodDecl{
			method("a.Items", "list", "GET /items", refPtr(named("List", str))),
			method("a.Items", "list", "GET /items", refPtr(named("List", str)),
				param(0, "page", intRef.MakeNonNull()),
				withDefault(param(1, "sort", str), `"name"`),
				param(2, "filter", str.MakeNullable()),
				param(3, "size", intRef),
			),
		},
	})
}

func TestMethods_OverloadTieBreak(t *testing.T) {
	m := mustScan(t, overloadGraph(t), "a.Items")
	assertContract(t, m)

	require.Len(t, m.Operations, 1)
	op := m.Operations[0]
	require.Len(t, op.Parameters, 4)
	assert.Equal(t, []string{"list()"}, op.Alternates)

	page := op.Parameter("page")
	assert.True(t, page.Required)
	assert.Equal(t, 0, page.Position)

	sort := op.Parameter("sort")
	assert.False(t, sort.Required)
	assert.True(t, sort.HasDefault)
	assert.Equal(t, `"name"`, sort.Default)

	filter := op.Parameter("filter")
	assert.False(t, filter.Required)
	assert.False(t, filter.HasDefault)
	assert.True(t, filter.Nullable)

	assert.True(t, op.Parameter("size").Required)

	require.Len(t, m.Warnings, 1)
	assert.Equal(t, string(scanerrors.ErrRouteConflict), m.Warnings[0].Code)
	assert.Equal(t, "GET /items", m.Warnings[0].Node)
}

func TestMethods_StrictOverloads(t *testing.T) {
	opts := DefaultOptions()
	opts.StrictOverloads = true

	_, err := NewScanner(overloadGraph(t), opts).Scan("a.Items")
	require.Error(t, err)
	assert.True(t, scanerrors.IsRouteConflict(err))
	se, _ := scanerrors.As(err)
	assert.Equal(t, "list(int!, string, string?, int), list()", se.Actual)
}

func TestMethods_EqualArityKeepsDeclarationOrder(t *testing.T) {
	g := mustGraph(t, &typegraph.TypeNode{
		ID: "a.R",
		Methods: []*typegraph.MethodDecl{
			method("a.R", "byName", "GET /", nil, param(0, "name", str)),
			method("a.R", "byID", "GET /", nil, param(0, "id", intRef)),
		},
	})

	m := mustScan(t, g, "a.R")
	op := m.Operation("GET /")
	require.NotNil(t, op)
	assert.Equal(t, "byName", op.Method)
	assert.Nil(t, op.Result)
	assert.Equal(t, []string{"byID(int)"}, op.Alternates)
}

func TestMethods_IgnoredAndUnroutedCallables(t *testing.T) {
	ignored := method("a.R", "internal", "POST /internal", nil)
	ignored.Tags = []typegraph.MetadataTag{tag(typegraph.TagIgnore, structural)}

	deprecated := method("a.R", "legacy", "GET /legacy", nil)
	deprecated.Deprecated = &typegraph.Deprecation{Since: "2.0"}

	g := mustGraph(t, &typegraph.TypeNode{
		ID: "a.R",
		Methods: []*typegraph.MethodDecl{
			method("a.R", "helper", "", refPtr(str)),
			ignored,
			deprecated,
			method("a.R", "create", "POST /",
				nil,
				param(0, "body", named("Multi", str)),
				param(1, "trace", str, tag(typegraph.TagIgnore, auxiliary)),
				param(2, "userName", str.MakeNullable(), renameTag("user", structural)),
			),
		},
	})

	opts := DefaultOptions()
	opts.Naming = NamingSnakeCase
	m := scanWith(t, g, "a.R", opts)
	require.Len(t, m.Operations, 2)

	legacy := m.Operation("GET /legacy")
	require.NotNil(t, legacy)
	assert.True(t, legacy.Deprecated)
	assert.Equal(t, "2.0", legacy.Since)

	create := m.Operation("POST /")
	require.NotNil(t, create)
	assert.True(t, create.Streaming)
	require.Len(t, create.Parameters, 2)

	body := create.Parameters[0]
	assert.True(t, body.Streaming)
	assert.Equal(t, "string", body.Type.Name)

	user := create.Parameters[1]
	assert.Equal(t, "user", user.Name)
	assert.Equal(t, "userName", user.DeclaredName)
	assert.Equal(t, 2, user.Position)
	assert.False(t, user.Required)
}

func TestMethods_ParameterOverrides(t *testing.T) {
	g := mustGraph(t, &typegraph.TypeNode{
		ID: "a.R",
		Methods: []*typegraph.MethodDecl{
			method("a.R", "find", "GET /", nil,
				withDefault(param(0, "limit", intRef, flagTag(typegraph.TagRequired, auxiliary, true)), "10"),
				param(1, "q", str, flagTag(typegraph.TagNullable, structural, true)),
			),
		},
	})

	m := mustScan(t, g, "a.R")
	assertContract(t, m)
	op := m.Operation("GET /")

	limit := op.Parameter("limit")
	assert.True(t, limit.Required)
	assert.False(t, limit.HasDefault)

	q := op.Parameter("q")
	assert.True(t, q.Nullable)
	assert.True(t, q.Required)
}

func TestMethods_MalformedParameters(t *testing.T) {
	g := mustGraph(t, &typegraph.TypeNode{
		ID: "a.R",
		Methods: []*typegraph.MethodDecl{
			method("a.R", "find", "GET /", nil, param(0, "q", str), param(1, "q", str)),
		},
	})

	_, err := NewScanner(g, DefaultOptions()).Scan("a.R")
	se, ok := scanerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, scanerrors.ErrMalformedParameter, se.Code)
	assert.Equal(t, "a.R.find", se.Node)
}

func TestMethods_UnboundVariable(t *testing.T) {
	g := mustGraph(t, &typegraph.TypeNode{
		ID:         "a.Repo",
		TypeParams: []string{"E"},
		Bindings:   map[string]typegraph.TypeRef{"E": str},
		Methods: []*typegraph.MethodDecl{
			method("a.Repo", "get", "GET /", refPtr(typegraph.Variable("E")), param(0, "key", typegraph.Variable("K"))),
		},
	})

	_, err := NewScanner(g, DefaultOptions()).Scan("a.Repo")
	se, ok := scanerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, scanerrors.ErrUnresolvedGeneric, se.Code)
	assert.Equal(t, "a.Repo.get(key)", se.Node)
}

func TestParamScan_NoBacktracking(t *testing.T) {
	p := &paramScan{decl: param(0, "x", str)}
	assert.Equal(t, "NEW", p.state.String())

	p.advance(paramSignalsExtracted)
	p.advance(paramTagsResolved)
	assert.Panics(t, func() { p.advance(paramSignalsExtracted) })
	assert.Panics(t, func() { p.advance(paramTagsResolved) })

	p.advance(paramDone)
	assert.Equal(t, "DONE", p.state.String())
}
