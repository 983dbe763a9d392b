package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamingStrategy_Apply(t *testing.T) {
	tests := []struct {
		strategy NamingStrategy
		in       string
		want     string
	}{
		{NamingIdentity, "firstName", "firstName"},
		{NamingSnakeCase, "firstName", "first_name"},
		{NamingSnakeCase, "URLValue", "urlvalue"},
		{NamingSnakeCase, "already_snake", "already_snake"},
		{NamingSnakeCase, "htmlURL", "html_url"},
		{NamingKebabCase, "firstName", "first-name"},
		{NamingKebabCase, "first-name", "first-name"},
		{NamingUpperCamel, "firstName", "FirstName"},
		{NamingUpperCamel, "", ""},
		{NamingLowerCase, "firstName", "firstname"},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy)+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Apply(tt.in))
		})
	}
}

func TestNamingStrategy_Idempotent(t *testing.T) {
	strategies := []NamingStrategy{NamingIdentity, NamingSnakeCase, NamingKebabCase, NamingUpperCamel, NamingLowerCase}
	names := []string{"", "x", "id", "firstName", "URLValue", "htmlURL", "a_b", "A-B", "_private", "ÄpfelBaum", "snake_caseMixed", "ID"}

	for _, s := range strategies {
		for _, name := range names {
			once := s.Apply(name)
			assert.Equal(t, once, s.Apply(once), "%s(%q)", s, name)
		}
	}
}

func TestParseNamingStrategy(t *testing.T) {
	s, err := ParseNamingStrategy("")
	require.NoError(t, err)
	assert.Equal(t, NamingIdentity, s)

	s, err = ParseNamingStrategy("kebab-case")
	require.NoError(t, err)
	assert.Equal(t, NamingKebabCase, s)

	_, err = ParseNamingStrategy("SCREAMING")
	assert.Error(t, err)
}
