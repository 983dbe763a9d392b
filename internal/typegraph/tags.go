package typegraph

// TagKind is the fixed vocabulary collaborators may use to influence output
type TagKind string

const (
	// TagRename overrides the external name (Value)
	TagRename TagKind = "rename"
	// TagRequired overrides the required verdict (Flag)
	TagRequired TagKind = "required-override"
	// TagNullable overrides the nullable verdict (Flag)
	TagNullable TagKind = "nullable-override"
	// TagDeprecated marks a declaration deprecated, optionally since a version (Since)
	TagDeprecated TagKind = "deprecated"
	// TagImplementation overrides the implementation type (Value is a type identity)
	TagImplementation TagKind = "implementation-type-override"
	// TagIgnore excludes a declaration (Flag defaults to true). On a type, Names
	// restricts the directive to the listed properties.
	TagIgnore TagKind = "ignore"
)

// Origin identifies the metadata system a tag comes from
type Origin string

const (
	// OriginStructural tags come from the schema annotation system itself
	OriginStructural Origin = "structural"
	// OriginAuxiliary tags come from an independent system such as a serialization library
	OriginAuxiliary Origin = "auxiliary"
	// OriginNative is the platform deprecation marker. Only deprecation uses it.
	OriginNative Origin = "native"
)

// MetadataTag is a declaration-attached directive
type MetadataTag struct {
	Kind   TagKind
	Origin Origin
	Value  string
	Flag   *bool
	Since  string
	Names  []string
}

// Enabled returns the tag's boolean value, defaulting to true when unset
func (t MetadataTag) Enabled() bool {
	if t.Flag == nil {
		return true
	}
	return *t.Flag
}

// Deprecation is the platform-native deprecation marker
type Deprecation struct {
	Since string
}

// Bool returns a pointer to b, for building tag flags
func Bool(b bool) *bool {
	return &b
}
