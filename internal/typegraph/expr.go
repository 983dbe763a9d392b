package typegraph

import (
	"fmt"
	"strings"
)

// primitives is the set of scalar names recognised in type expressions
var primitives = map[string]bool{
	"string":     true,
	"char":       true,
	"boolean":    true,
	"bool":       true,
	"byte":       true,
	"short":      true,
	"int":        true,
	"integer":    true,
	"long":       true,
	"float":      true,
	"double":     true,
	"number":     true,
	"decimal":    true,
	"bigdecimal": true,
	"biginteger": true,
	"uuid":       true,
	"date":       true,
	"time":       true,
	"datetime":   true,
	"instant":    true,
	"duration":   true,
	"uri":        true,
	"binary":     true,
	"any":        true,
}

// IsPrimitive reports whether name is a recognised scalar type
func IsPrimitive(name string) bool {
	return primitives[name]
}

// ParseTypeExpr parses a compact type expression:
//
//	string!            non-null primitive
//	Page<Foo?>         generic reference with a nullable argument
//	[]int              array
//	T                  formal parameter, when T is in typeParams
//
// At most one ? or ! suffix binds to each term.
func ParseTypeExpr(expr string, typeParams []string) (TypeRef, error) {
	p := &exprParser{
		input:  expr,
		params: make(map[string]bool, len(typeParams)),
	}
	for _, tp := range typeParams {
		p.params[tp] = true
	}

	p.skipSpace()
	ref, err := p.parse()
	if err != nil {
		return TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return TypeRef{}, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return ref, nil
}

type exprParser struct {
	input  string
	pos    int
	params map[string]bool
}

func (p *exprParser) parse() (TypeRef, error) {
	var ref TypeRef

	if strings.HasPrefix(p.input[p.pos:], "[]") {
		p.pos += 2
		elem, err := p.parse()
		if err != nil {
			return ref, err
		}
		ref = ArrayOf(elem)
	} else {
		name := p.ident()
		if name == "" {
			return ref, p.errorf("expected type name")
		}

		var args []TypeRef
		p.skipSpace()
		if p.peek() == '<' {
			p.pos++
			for {
				p.skipSpace()
				arg, err := p.parse()
				if err != nil {
					return ref, err
				}
				args = append(args, arg)
				p.skipSpace()
				switch p.peek() {
				case ',':
					p.pos++
					continue
				case '>':
					p.pos++
				default:
					return ref, p.errorf("expected ',' or '>'")
				}
				break
			}
		}

		switch {
		case p.params[name] && len(args) == 0:
			ref = Variable(name)
		case primitives[name] && len(args) == 0:
			ref = Primitive(name)
		default:
			ref = Named(name, args...)
		}
	}

	switch p.peek() {
	case '?':
		p.pos++
		ref = ref.MakeNullable()
	case '!':
		p.pos++
		ref = ref.MakeNonNull()
	}
	return ref, nil
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c == '.' || c == '$' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("type expression %q at offset %d: %s", p.input, p.pos, fmt.Sprintf(format, args...))
}
