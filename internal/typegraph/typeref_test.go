package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRef_String(t *testing.T) {
	tests := []struct {
		name string
		ref  TypeRef
		want string
	}{
		{"primitive", Primitive("string"), "string"},
		{"non-null primitive", Primitive("string").MakeNonNull(), "string!"},
		{"nullable named", Named("a.Foo").MakeNullable(), "a.Foo?"},
		{"generic", Named("a.Page", Named("a.Foo").MakeNullable()), "a.Page<a.Foo?>"},
		{"array", ArrayOf(Primitive("int").MakeNonNull()).MakeNullable(), "[]int!?"},
		{"variable", Variable("T"), "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
		})
	}
}

func TestTypeRef_Key(t *testing.T) {
	a := Named("a.Page", Primitive("string").MakeNonNull()).MakeNullable()
	b := Named("a.Page", Primitive("string"))
	assert.Equal(t, "a.Page<string!>", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, "a.Page<string>", b.Key())
}

func TestTypeRef_Nullability(t *testing.T) {
	r := Primitive("int")
	assert.False(t, r.IsNullable())
	assert.False(t, r.IsNonNull())
	assert.True(t, r.MakeNullable().IsNullable())
	assert.True(t, r.MakeNonNull().IsNonNull())
	assert.True(t, r.WithNullability(Nullable).IsNullable())
	assert.True(t, TypeRef{}.IsZero())
	assert.False(t, r.IsZero())
}

func TestTypeRef_Substitute(t *testing.T) {
	bindings := map[string]TypeRef{
		"T": Named("a.Foo").MakeNonNull(),
	}

	sub, _, ok := Variable("T").Substitute(bindings)
	require.True(t, ok)
	assert.Equal(t, "a.Foo!", sub.String())

	sub, _, ok = Variable("T").MakeNullable().Substitute(bindings)
	require.True(t, ok)
	assert.Equal(t, "a.Foo?", sub.String())

	sub, _, ok = Named("a.Page", ArrayOf(Variable("T"))).Substitute(bindings)
	require.True(t, ok)
	assert.Equal(t, "a.Page<[]a.Foo!>", sub.String())

	_, missing, ok := Named("a.Pair", Variable("T"), Variable("U")).Substitute(bindings)
	assert.False(t, ok)
	assert.Equal(t, "U", missing)
}

func TestMethodSignature(t *testing.T) {
	m := &MethodDecl{
		Name: "list",
		Params: []*ParameterDecl{
			{Name: "page", Type: Primitive("int")},
			{Name: "filter", Type: Primitive("string").MakeNullable()},
		},
	}
	assert.Equal(t, "list(int, string?)", m.Signature())
}

func TestSourceKindAndTags(t *testing.T) {
	s := SourceField | SourceConstructor
	assert.True(t, s.Has(SourceField))
	assert.False(t, s.Has(SourceMutator))

	assert.True(t, MetadataTag{Kind: TagIgnore}.Enabled())
	assert.False(t, MetadataTag{Kind: TagIgnore, Flag: Bool(false)}.Enabled())
}
