// Package model defines the Schema Model produced by a scan: one normalized
// record per exposed property and parameter, ready for a document assembler.
package model

// Model is the result of scanning one root type
type Model struct {
	Root       string             `json:"root"`
	Types      []*TypeSchema      `json:"types"`
	Operations []*OperationSchema `json:"operations,omitempty"`
	Warnings   []Warning          `json:"warnings,omitempty"`
}

// TypeSchema describes a scanned type. ID is the instantiated reference key,
// e.g. "shop.Page<shop.Order>".
type TypeSchema struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Deprecated bool              `json:"deprecated,omitempty"`
	Since      string            `json:"since,omitempty"`
	Properties []*PropertySchema `json:"properties"`
}

// PropertySchema is the reconciled contract of a single property
type PropertySchema struct {
	Name         string   `json:"name"`
	DeclaredName string   `json:"declared_name"`
	Type         TypeExpr `json:"type"`
	Required     bool     `json:"required"`
	Nullable     bool     `json:"nullable"`
	HasDefault   bool     `json:"has_default"`
	Default      string   `json:"default,omitempty"`
	Deprecated   bool     `json:"deprecated,omitempty"`
	Since        string   `json:"since,omitempty"`
}

// ParameterSchema is the reconciled contract of a callable parameter
type ParameterSchema struct {
	Name         string   `json:"name"`
	DeclaredName string   `json:"declared_name"`
	Position     int      `json:"position"`
	Type         TypeExpr `json:"type"`
	Required     bool     `json:"required"`
	Nullable     bool     `json:"nullable"`
	HasDefault   bool     `json:"has_default"`
	Default      string   `json:"default,omitempty"`
	Deprecated   bool     `json:"deprecated,omitempty"`
	Since        string   `json:"since,omitempty"`
	Streaming    bool     `json:"streaming,omitempty"`
}

// OperationSchema describes the callable elected for a route
type OperationSchema struct {
	Route      string             `json:"route"`
	Method     string             `json:"method"`
	Owner      string             `json:"owner"`
	Parameters []*ParameterSchema `json:"parameters"`
	Result     *TypeExpr          `json:"result,omitempty"`
	Streaming  bool               `json:"streaming"`
	Deprecated bool               `json:"deprecated,omitempty"`
	Since      string             `json:"since,omitempty"`
	Alternates []string           `json:"alternates,omitempty"`
}

// TypeKind classifies a TypeExpr
type TypeKind string

const (
	// KindPrimitive is a scalar
	KindPrimitive TypeKind = "primitive"
	// KindObject references a TypeSchema by ID
	KindObject TypeKind = "object"
	// KindArray is a sequence of Items
	KindArray TypeKind = "array"
	// KindOpaque is a type whose structure is unknown
	KindOpaque TypeKind = "opaque"
)

// TypeExpr is the resolved type of a property, parameter, or result
type TypeExpr struct {
	Kind     TypeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Items    *TypeExpr `json:"items,omitempty"`
	Nullable bool      `json:"nullable,omitempty"`
}

// String renders the expression in the same compact form used by snapshots
func (t TypeExpr) String() string {
	var s string
	if t.Kind == KindArray && t.Items != nil {
		s = "[]" + t.Items.String()
	} else {
		s = t.Name
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Warning is a non-fatal diagnostic raised during a scan
type Warning struct {
	Code    string `json:"code"`
	Node    string `json:"node,omitempty"`
	Message string `json:"message"`
}

// Type returns the schema with the given ID, or nil
func (m *Model) Type(id string) *TypeSchema {
	for _, t := range m.Types {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Operation returns the operation bound to route, or nil
func (m *Model) Operation(route string) *OperationSchema {
	for _, op := range m.Operations {
		if op.Route == route {
			return op
		}
	}
	return nil
}

// Property returns the property with the given external name, or nil
func (t *TypeSchema) Property(name string) *PropertySchema {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Parameter returns the parameter with the given external name, or nil
func (o *OperationSchema) Parameter(name string) *ParameterSchema {
	for _, p := range o.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}
