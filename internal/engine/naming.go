package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// NamingStrategy maps a declared property name to its external name when no
// rename tag applies. Every strategy is idempotent.
type NamingStrategy string

const (
	NamingIdentity   NamingStrategy = "identity"
	NamingSnakeCase  NamingStrategy = "snake_case"
	NamingKebabCase  NamingStrategy = "kebab-case"
	NamingUpperCamel NamingStrategy = "UpperCamelCase"
	NamingLowerCase  NamingStrategy = "lowercase"
)

// ParseNamingStrategy validates a configured strategy name
func ParseNamingStrategy(name string) (NamingStrategy, error) {
	switch s := NamingStrategy(name); s {
	case "":
		return NamingIdentity, nil
	case NamingIdentity, NamingSnakeCase, NamingKebabCase, NamingUpperCamel, NamingLowerCase:
		return s, nil
	default:
		return "", fmt.Errorf("unknown naming strategy %q", name)
	}
}

// Apply translates name
func (s NamingStrategy) Apply(name string) string {
	switch s {
	case NamingSnakeCase:
		return separate(name, '_')
	case NamingKebabCase:
		return separate(name, '-')
	case NamingUpperCamel:
		if name == "" {
			return name
		}
		r := []rune(name)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	case NamingLowerCase:
		return strings.ToLower(name)
	default:
		return name
	}
}

// separate lower-cases name, inserting sep before each upper-case letter that
// starts a new word. Runs of capitals stay one word ("URLValue" -> "urlvalue").
func separate(name string, sep rune) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	var prevUpper, prevSep bool
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && !prevUpper && !prevSep {
				b.WriteRune(sep)
			}
			b.WriteRune(unicode.ToLower(r))
			prevUpper = true
			prevSep = false
			continue
		}
		b.WriteRune(r)
		prevUpper = false
		prevSep = r == '_' || r == '-'
	}
	return b.String()
}
