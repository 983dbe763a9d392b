// Package typegraph defines the read-only type graph snapshot consumed by the
// schema engine: types, properties, constructors, parameters, methods, and the
// metadata tags attached to them.
package typegraph

import (
	"strings"
)

// Nullability is the nullable marker carried by a declared type
type Nullability int

const (
	// NullabilityUnspecified is used for platform types whose nullability is unknown
	NullabilityUnspecified Nullability = iota
	// Nullable marks a type that accepts an absent value (T?)
	Nullable
	// NonNull marks a type that never accepts an absent value (T!)
	NonNull
)

// RefKind classifies a type reference
type RefKind string

const (
	// RefPrimitive is a built-in scalar (string, int, boolean, ...)
	RefPrimitive RefKind = "primitive"
	// RefNamed references a type by identity, optionally with type arguments
	RefNamed RefKind = "named"
	// RefVariable references a formal generic parameter of the enclosing type
	RefVariable RefKind = "variable"
	// RefArray is a native array of Elem
	RefArray RefKind = "array"
)

// TypeRef is a reference to a type as written at a declaration site
type TypeRef struct {
	Kind        RefKind
	Name        string    // primitive name, type identity, or formal parameter name
	Args        []TypeRef // type arguments for RefNamed
	Elem        *TypeRef  // element type for RefArray
	Nullability Nullability
}

// Primitive returns a reference to a built-in scalar type
func Primitive(name string) TypeRef {
	return TypeRef{Kind: RefPrimitive, Name: name}
}

// Named returns a reference to a graph type
func Named(id string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefNamed, Name: id, Args: args}
}

// Variable returns a reference to a formal generic parameter
func Variable(name string) TypeRef {
	return TypeRef{Kind: RefVariable, Name: name}
}

// ArrayOf returns an array reference
func ArrayOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefArray, Elem: &elem}
}

// IsNullable returns true if the nullable marker is present
func (r TypeRef) IsNullable() bool {
	return r.Nullability == Nullable
}

// IsNonNull returns true if the type is explicitly marked non-null
func (r TypeRef) IsNonNull() bool {
	return r.Nullability == NonNull
}

// MakeNullable returns a copy carrying the nullable marker
func (r TypeRef) MakeNullable() TypeRef {
	r.Nullability = Nullable
	return r
}

// MakeNonNull returns a copy carrying the non-null marker
func (r TypeRef) MakeNonNull() TypeRef {
	r.Nullability = NonNull
	return r
}

// WithNullability returns a copy with the given marker
func (r TypeRef) WithNullability(n Nullability) TypeRef {
	r.Nullability = n
	return r
}

// IsZero reports whether the reference is unset
func (r TypeRef) IsZero() bool {
	return r.Kind == "" && r.Name == ""
}

// String renders the reference as Name<Args>? / []Elem! style text
func (r TypeRef) String() string {
	var b strings.Builder
	r.write(&b)
	return b.String()
}

// Key renders the reference without nullability markers. Two references with
// the same key describe the same schema.
func (r TypeRef) Key() string {
	var b strings.Builder
	r.writeKey(&b)
	return b.String()
}

func (r TypeRef) write(b *strings.Builder) {
	r.writeKey(b)
	switch r.Nullability {
	case Nullable:
		b.WriteByte('?')
	case NonNull:
		b.WriteByte('!')
	}
}

func (r TypeRef) writeKey(b *strings.Builder) {
	switch r.Kind {
	case RefArray:
		b.WriteString("[]")
		if r.Elem != nil {
			r.Elem.write(b)
		}
		return
	}

	b.WriteString(r.Name)
	if len(r.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range r.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			arg.write(b)
		}
		b.WriteByte('>')
	}
}

// Substitute replaces type variables using bindings. The variable's own
// nullable marker is kept when the binding carries none. Unbound variables are
// reported through the second return value.
func (r TypeRef) Substitute(bindings map[string]TypeRef) (TypeRef, string, bool) {
	switch r.Kind {
	case RefVariable:
		bound, ok := bindings[r.Name]
		if !ok {
			return r, r.Name, false
		}
		if r.Nullability != NullabilityUnspecified {
			bound.Nullability = r.Nullability
		}
		return bound, "", true
	case RefArray:
		if r.Elem == nil {
			return r, "", true
		}
		elem, missing, ok := r.Elem.Substitute(bindings)
		if !ok {
			return r, missing, false
		}
		r.Elem = &elem
		return r, "", true
	case RefNamed:
		if len(r.Args) == 0 {
			return r, "", true
		}
		args := make([]TypeRef, len(r.Args))
		for i, arg := range r.Args {
			sub, missing, ok := arg.Substitute(bindings)
			if !ok {
				return r, missing, false
			}
			args[i] = sub
		}
		r.Args = args
		return r, "", true
	default:
		return r, "", true
	}
}
