package typegraph

// SourceKind records how a property is backed. Values combine as a bitmask.
type SourceKind uint8

const (
	// SourceField is a backing field
	SourceField SourceKind = 1 << iota
	// SourceAccessor is a read accessor
	SourceAccessor
	// SourceMutator is a write accessor
	SourceMutator
	// SourceConstructor is a constructor parameter
	SourceConstructor
)

// Has reports whether all bits of k are set
func (s SourceKind) Has(k SourceKind) bool {
	return s&k == k
}

// TypeNode is a declared type
type TypeNode struct {
	ID           string
	Name         string
	TypeParams   []string
	Bindings     map[string]TypeRef // default bindings for TypeParams
	Super        *TypeRef
	Properties   []*PropertyDecl
	Constructors []*ConstructorDecl
	Methods      []*MethodDecl
	Tags         []MetadataTag
	Deprecated   *Deprecation
	Opaque       bool // external type whose structure is not indexed
}

// DisplayName returns Name, falling back to ID
func (t *TypeNode) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// PropertyDecl is a declared property
type PropertyDecl struct {
	Owner      string
	Name       string
	Type       TypeRef
	Source     SourceKind
	Static     bool // declared once per type rather than once per instance
	Tags       []MetadataTag
	Deprecated *Deprecation
}

// ConstructorDecl is a declared constructor
type ConstructorDecl struct {
	Owner      string
	Params     []*ParameterDecl
	Canonical  bool
	Delegation *Delegation
}

// Delegation describes a constructor that forwards to another constructor of
// the same type, supplying fixed argument values for parameters it omits.
type Delegation struct {
	Target int               // index into the owner's Constructors
	Fixed  map[string]string // target parameter name -> literal expression
}

// ParameterDecl is a constructor or method parameter
type ParameterDecl struct {
	Name       string
	Type       TypeRef
	HasDefault bool
	Default    string
	Position   int
	Tags       []MetadataTag
	Deprecated *Deprecation
}

// MethodDecl is a callable. Route is the external route it is bound to; empty
// means the callable is not exposed.
type MethodDecl struct {
	Owner      string
	Name       string
	Route      string
	Params     []*ParameterDecl
	Returns    *TypeRef // nil for no result
	Static     bool
	Tags       []MetadataTag
	Deprecated *Deprecation
}

// Signature renders name(paramType, ...) for diagnostics
func (m *MethodDecl) Signature() string {
	sig := m.Name + "("
	for i, p := range m.Params {
		if i > 0 {
			sig += ", "
		}
		sig += p.Type.String()
	}
	return sig + ")"
}
