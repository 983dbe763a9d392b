package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

func superRef(id string, args ...typegraph.TypeRef) *typegraph.TypeRef {
	return refPtr(named(id, args...))
}

func TestInherit_SubtypeOverlayWinsWholesale(t *testing.T) {
	g := mustGraph(t,
		&typegraph.TypeNode{
			ID: "a.S",
			Properties: []*typegraph.PropertyDecl{
				accessor("z", str),
				field("x", str),
				{Name: "VERSION", Type: str, Static: true},
			},
			Constructors: []*typegraph.ConstructorDecl{
				ctor(withDefault(param(0, "x", str), `"a"`)),
			},
		},
		&typegraph.TypeNode{
			ID:    "a.T",
			Super: superRef("a.S"),
			Properties: []*typegraph.PropertyDecl{
				field("x", str),
				field("y", intRef),
			},
			Constructors: []*typegraph.ConstructorDecl{
				ctor(param(0, "x", str.MakeNonNull()), param(1, "y", intRef.MakeNonNull())),
			},
		},
	)

	m := mustScan(t, g, "a.T")
	assertContract(t, m)

	x := mustProperty(t, m, "a.T", "x")
	assert.True(t, x.Required)
	assert.False(t, x.HasDefault)
	assert.Empty(t, x.Default)

	assert.Equal(t, []string{"z", "x", "y"}, propertyNames(m.Type("a.T")))

	s := mustScan(t, g, "a.S")
	sx := mustProperty(t, s, "a.S", "x")
	assert.False(t, sx.Required)
	assert.True(t, sx.HasDefault)
	assert.Equal(t, []string{"z", "x"}, propertyNames(s.Type("a.S")))
}

func TestInherit_GenericSupertypeBindings(t *testing.T) {
	g := mustGraph(t,
		&typegraph.TypeNode{
			ID:         "a.Base",
			TypeParams: []string{"T"},
			Properties: []*typegraph.PropertyDecl{
				accessor("value", typegraph.Variable("T")),
				field("id", typegraph.Variable("T")),
			},
			Constructors: []*typegraph.ConstructorDecl{
				ctor(param(0, "id", typegraph.Variable("T"))),
			},
		},
		&typegraph.TypeNode{
			ID:    "a.Child",
			Super: superRef("a.Base", str.MakeNonNull()),
		},
		&typegraph.TypeNode{
			ID:    "a.Loose",
			Super: superRef("a.Base", str.MakeNullable()),
		},
	)

	m := mustScan(t, g, "a.Child")
	value := mustProperty(t, m, "a.Child", "value")
	assert.Equal(t, model.KindPrimitive, value.Type.Kind)
	assert.Equal(t, "string", value.Type.Name)
	assert.False(t, value.Nullable)
	assert.True(t, mustProperty(t, m, "a.Child", "id").Required)

	loose := mustScan(t, g, "a.Loose")
	id := mustProperty(t, loose, "a.Loose", "id")
	assert.False(t, id.Required)
	assert.True(t, id.Nullable)
}

func TestInherit_CyclicSupertypes(t *testing.T) {
	g := mustGraph(t,
		&typegraph.TypeNode{ID: "a.A", Super: superRef("a.B")},
		&typegraph.TypeNode{ID: "a.B", Super: superRef("a.C")},
		&typegraph.TypeNode{ID: "a.C", Super: superRef("a.A")},
	)

	_, err := NewScanner(g, DefaultOptions()).Scan("a.A")
	require.Error(t, err)
	se, ok := scanerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, scanerrors.ErrCyclicSupertype, se.Code)
	assert.Equal(t, "a.A", se.Node)
	assert.Equal(t, "a.A -> a.B -> a.C -> a.A", se.Actual)
}

func TestInherit_SupertypeErrors(t *testing.T) {
	t.Run("dangling", func(t *testing.T) {
		g := mustGraph(t, &typegraph.TypeNode{ID: "a.A", Super: superRef("a.Missing")})
		_, err := NewScanner(g, DefaultOptions()).Scan("a.A")
		se, ok := scanerrors.As(err)
		require.True(t, ok)
		assert.Equal(t, scanerrors.ErrDanglingReference, se.Code)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		g := mustGraph(t,
			&typegraph.TypeNode{ID: "a.Base", TypeParams: []string{"K", "V"}},
			&typegraph.TypeNode{ID: "a.A", Super: superRef("a.Base", str)},
		)
		_, err := NewScanner(g, DefaultOptions()).Scan("a.A")
		se, ok := scanerrors.As(err)
		require.True(t, ok)
		assert.Equal(t, scanerrors.ErrUnresolvedGeneric, se.Code)
		assert.Equal(t, "2", se.Expected)
		assert.Equal(t, "1", se.Actual)
	})

	t.Run("opaque supertype contributes nothing", func(t *testing.T) {
		g := mustGraph(t,
			&typegraph.TypeNode{ID: "java.lang.Object", Opaque: true},
			&typegraph.TypeNode{
				ID:         "a.A",
				Super:      superRef("java.lang.Object"),
				Properties: []*typegraph.PropertyDecl{accessor("x", str)},
			},
		)
		m := mustScan(t, g, "a.A")
		assert.Equal(t, []string{"x"}, propertyNames(m.Type("a.A")))
	})
}
