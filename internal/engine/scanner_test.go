package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

func shopGraph(t *testing.T) *typegraph.Graph {
	t.Helper()
	return mustGraph(t,
		&typegraph.TypeNode{
			ID: "shop.Address",
			Properties: []*typegraph.PropertyDecl{
				accessor("street", str),
			},
		},
		&typegraph.TypeNode{
			ID: "shop.Customer",
			Properties: []*typegraph.PropertyDecl{
				field("name", str.MakeNonNull()),
				accessor("address", named("shop.Address")),
				accessor("referrer", named("shop.Customer").MakeNullable()),
			},
			Constructors: []*typegraph.ConstructorDecl{ctor(param(0, "name", str.MakeNonNull()))},
		},
		&typegraph.TypeNode{
			ID:         "shop.Page",
			Name:       "Page",
			TypeParams: []string{"T"},
			Properties: []*typegraph.PropertyDecl{
				field("items", named("List", typegraph.Variable("T"))),
				field("total", intRef.MakeNonNull()),
			},
			Constructors: []*typegraph.ConstructorDecl{
				ctor(param(0, "items", named("List", typegraph.Variable("T"))), param(1, "total", intRef.MakeNonNull())),
			},
		},
		&typegraph.TypeNode{
			ID:   "shop.Order",
			Name: "Order",
			Properties: []*typegraph.PropertyDecl{
				field("customer", named("shop.Customer")),
				field("billing", named("shop.Address")),
			},
			Constructors: []*typegraph.ConstructorDecl{
				ctor(param(0, "customer", named("shop.Customer")), param(1, "billing", named("shop.Address").MakeNullable())),
			},
			Methods: []*typegraph.MethodDecl{
				method("shop.Order", "page", "GET /orders", refPtr(named("Uni", named("shop.Page", named("shop.Order"))))),
			},
		},
		&typegraph.TypeNode{ID: "java.time.Instant", Opaque: true},
	)
}

func TestScanner_DiscoveryOrder(t *testing.T) {
	m := mustScan(t, shopGraph(t), "shop.Order")
	assertContract(t, m)

	ids := make([]string, 0, len(m.Types))
	for _, ts := range m.Types {
		ids = append(ids, ts.ID)
	}
	assert.Equal(t, []string{"shop.Order", "shop.Page<shop.Order>", "shop.Customer", "shop.Address"}, ids)
	assert.Equal(t, "shop.Order", m.Root)

	billing := mustProperty(t, m, "shop.Order", "billing")
	assert.Equal(t, model.KindObject, billing.Type.Kind)
	assert.Equal(t, "shop.Address", billing.Type.Name)
	assert.True(t, billing.Type.Nullable)
	assert.False(t, billing.Required)
}

func TestScanner_GenericInstantiation(t *testing.T) {
	m := mustScan(t, shopGraph(t), "shop.Order")

	page := m.Type("shop.Page<shop.Order>")
	require.NotNil(t, page)
	assert.Equal(t, "Page<shop.Order>", page.Name)

	items := page.Property("items")
	require.NotNil(t, items)
	assert.True(t, items.Required)
	assert.Equal(t, model.KindArray, items.Type.Kind)
	assert.Equal(t, "shop.Order", items.Type.Items.Name)

	op := m.Operation("GET /orders")
	require.NotNil(t, op)
	assert.False(t, op.Streaming)
	assert.Equal(t, "shop.Page<shop.Order>", op.Result.Name)
}

func TestScanner_SelfReference(t *testing.T) {
	m := mustScan(t, shopGraph(t), "shop.Customer")
	require.Len(t, m.Types, 2)

	referrer := mustProperty(t, m, "shop.Customer", "referrer")
	assert.Equal(t, "shop.Customer", referrer.Type.Name)
	assert.True(t, referrer.Nullable)
}

func TestScanner_Errors(t *testing.T) {
	g := shopGraph(t)
	s := NewScanner(g, DefaultOptions())

	_, err := s.Scan("shop.Missing")
	assert.True(t, scanerrors.IsTypeGraphError(err))

	_, err = s.Scan("shop.Page")
	require.Error(t, err)
	se, ok := scanerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, scanerrors.ErrUnresolvedGeneric, se.Code)
	assert.Equal(t, "shop.Page", se.Node)
}

func TestScanner_OpaqueReferences(t *testing.T) {
	g := mustGraph(t,
		&typegraph.TypeNode{ID: "java.time.Instant", Opaque: true},
		&typegraph.TypeNode{
			ID:         "a.Event",
			Properties: []*typegraph.PropertyDecl{accessor("at", named("java.time.Instant").MakeNonNull())},
		},
	)

	m := mustScan(t, g, "a.Event")
	at := mustProperty(t, m, "a.Event", "at")
	assert.Equal(t, model.KindOpaque, at.Type.Kind)
	assert.Equal(t, "java.time.Instant", at.Type.Name)
	assert.Len(t, m.Types, 1)

	empty := mustScan(t, g, "java.time.Instant")
	assert.Empty(t, empty.Types)
}

func TestScanner_Roots(t *testing.T) {
	s := NewScanner(shopGraph(t), Options{})
	assert.Equal(t, []string{"shop.Address", "shop.Customer", "shop.Order"}, s.Roots())
}

func TestScanner_DoesNotMutateGraph(t *testing.T) {
	g := shopGraph(t)
	before := len(g.Types())
	order, _ := g.Lookup("shop.Order")
	param := order.Constructors[0].Params[1]

	opts := DefaultOptions()
	opts.Logger = zap.NewExample()
	_ = scanWith(t, g, "shop.Order", opts)
	_ = scanWith(t, g, "shop.Order", opts)

	assert.Equal(t, before, len(g.Types()))
	assert.True(t, param.Type.IsNullable())
	assert.Equal(t, "billing", param.Name)
}

func TestScanAll(t *testing.T) {
	g := shopGraph(t)

	models, err := ScanAll(context.Background(), g, []string{"shop.Order", "shop.Customer", "shop.Address"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, "shop.Order", models[0].Root)
	assert.Equal(t, "shop.Customer", models[1].Root)
	assert.Equal(t, "shop.Address", models[2].Root)

	_, err = ScanAll(context.Background(), g, []string{"shop.Order", "shop.Page"}, DefaultOptions())
	assert.True(t, scanerrors.IsTypeGraphError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ScanAll(ctx, g, []string{"shop.Order"}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
