// Package graphfile loads type graph snapshots written as YAML (or JSON)
// documents by an external indexer.
package graphfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// Snapshot is the on-disk form of a type graph
type Snapshot struct {
	Types []TypeEntry `yaml:"types"`
}

// TypeEntry describes one type
type TypeEntry struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	TypeParams   []string           `yaml:"type_params"`
	Bindings     map[string]string  `yaml:"bindings"`
	Super        string             `yaml:"super"`
	Opaque       bool               `yaml:"opaque"`
	Deprecated   *Deprecated        `yaml:"deprecated"`
	Tags         []TagEntry         `yaml:"tags"`
	Aux          string             `yaml:"aux"`
	Properties   []PropertyEntry    `yaml:"properties"`
	Constructors []ConstructorEntry `yaml:"constructors"`
	Methods      []MethodEntry      `yaml:"methods"`
}

// PropertyEntry describes one property
type PropertyEntry struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Source     []string    `yaml:"source"`
	Static     bool        `yaml:"static"`
	Deprecated *Deprecated `yaml:"deprecated"`
	Tags       []TagEntry  `yaml:"tags"`
	Aux        string      `yaml:"aux"`
}

// ConstructorEntry describes one constructor
type ConstructorEntry struct {
	Canonical bool             `yaml:"canonical"`
	Params    []ParameterEntry `yaml:"params"`
	Delegates *DelegationEntry `yaml:"delegates"`
}

// DelegationEntry names the constructor a secondary constructor forwards to
type DelegationEntry struct {
	Target int               `yaml:"target"`
	Fixed  map[string]string `yaml:"fixed"`
}

// ParameterEntry describes a constructor or method parameter
type ParameterEntry struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Default    *string     `yaml:"default"`
	Position   *int        `yaml:"position"`
	Deprecated *Deprecated `yaml:"deprecated"`
	Tags       []TagEntry  `yaml:"tags"`
	Aux        string      `yaml:"aux"`
}

// MethodEntry describes a callable
type MethodEntry struct {
	Name       string           `yaml:"name"`
	Route      string           `yaml:"route"`
	Params     []ParameterEntry `yaml:"params"`
	Returns    string           `yaml:"returns"`
	Static     bool             `yaml:"static"`
	Deprecated *Deprecated      `yaml:"deprecated"`
	Tags       []TagEntry       `yaml:"tags"`
	Aux        string           `yaml:"aux"`
}

// TagEntry is an explicit metadata tag
type TagEntry struct {
	Kind   string   `yaml:"kind"`
	Origin string   `yaml:"origin"`
	Value  string   `yaml:"value"`
	Flag   *bool    `yaml:"flag"`
	Since  string   `yaml:"since"`
	Names  []string `yaml:"names"`
}

// Deprecated is the platform deprecation marker. It may be written as a
// boolean, as a version string, or as a mapping with a since key.
type Deprecated struct {
	Since string `yaml:"since"`
	set   bool
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Deprecated) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			d.set = b
			return nil
		}
		d.set = true
		d.Since = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Since string `yaml:"since"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		d.set = true
		d.Since = raw.Since
		return nil
	default:
		return fmt.Errorf("line %d: deprecated must be a boolean, string or mapping", node.Line)
	}
}

func (d *Deprecated) toDecl() *typegraph.Deprecation {
	if d == nil || !d.set {
		return nil
	}
	return &typegraph.Deprecation{Since: d.Since}
}

// Load reads a snapshot file and builds a graph from it
func Load(path string) (*typegraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a snapshot document and builds a graph from it
func Parse(data []byte) (*typegraph.Graph, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	nodes := make([]*typegraph.TypeNode, 0, len(snap.Types))
	for i := range snap.Types {
		node, err := snap.Types[i].build()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return typegraph.NewGraph(nodes...)
}

func (e *TypeEntry) build() (*typegraph.TypeNode, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("type without id")
	}

	node := &typegraph.TypeNode{
		ID:         e.ID,
		Name:       e.Name,
		TypeParams: e.TypeParams,
		Opaque:     e.Opaque,
		Deprecated: e.Deprecated.toDecl(),
	}

	wrap := func(err error) error {
		return fmt.Errorf("type %s: %w", e.ID, err)
	}

	if len(e.Bindings) > 0 {
		node.Bindings = make(map[string]typegraph.TypeRef, len(e.Bindings))
		for name, expr := range e.Bindings {
			ref, err := typegraph.ParseTypeExpr(expr, nil)
			if err != nil {
				return nil, wrap(err)
			}
			node.Bindings[name] = ref
		}
	}

	if e.Super != "" {
		ref, err := typegraph.ParseTypeExpr(e.Super, e.TypeParams)
		if err != nil {
			return nil, wrap(err)
		}
		node.Super = &ref
	}

	tags, err := buildTags(e.Tags, e.Aux, true)
	if err != nil {
		return nil, wrap(err)
	}
	node.Tags = tags

	for _, pe := range e.Properties {
		prop, err := pe.build(e.ID, e.TypeParams)
		if err != nil {
			return nil, wrap(err)
		}
		node.Properties = append(node.Properties, prop)
	}

	for _, ce := range e.Constructors {
		ctor := &typegraph.ConstructorDecl{Owner: e.ID, Canonical: ce.Canonical}
		ctor.Params, err = buildParams(ce.Params, e.TypeParams)
		if err != nil {
			return nil, wrap(err)
		}
		if ce.Delegates != nil {
			ctor.Delegation = &typegraph.Delegation{
				Target: ce.Delegates.Target,
				Fixed:  ce.Delegates.Fixed,
			}
		}
		node.Constructors = append(node.Constructors, ctor)
	}

	for _, me := range e.Methods {
		m := &typegraph.MethodDecl{
			Owner:      e.ID,
			Name:       me.Name,
			Route:      me.Route,
			Static:     me.Static,
			Deprecated: me.Deprecated.toDecl(),
		}
		m.Params, err = buildParams(me.Params, e.TypeParams)
		if err != nil {
			return nil, wrap(fmt.Errorf("method %s: %w", me.Name, err))
		}
		if me.Returns != "" && me.Returns != "void" {
			ref, err := typegraph.ParseTypeExpr(me.Returns, e.TypeParams)
			if err != nil {
				return nil, wrap(fmt.Errorf("method %s: %w", me.Name, err))
			}
			m.Returns = &ref
		}
		m.Tags, err = buildTags(me.Tags, me.Aux, false)
		if err != nil {
			return nil, wrap(fmt.Errorf("method %s: %w", me.Name, err))
		}
		node.Methods = append(node.Methods, m)
	}

	return node, nil
}

func (pe *PropertyEntry) build(owner string, typeParams []string) (*typegraph.PropertyDecl, error) {
	ref, err := typegraph.ParseTypeExpr(pe.Type, typeParams)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", pe.Name, err)
	}

	source, err := parseSource(pe.Source)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", pe.Name, err)
	}

	tags, err := buildTags(pe.Tags, pe.Aux, false)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", pe.Name, err)
	}

	return &typegraph.PropertyDecl{
		Owner:      owner,
		Name:       pe.Name,
		Type:       ref,
		Source:     source,
		Static:     pe.Static,
		Tags:       tags,
		Deprecated: pe.Deprecated.toDecl(),
	}, nil
}

func buildParams(entries []ParameterEntry, typeParams []string) ([]*typegraph.ParameterDecl, error) {
	params := make([]*typegraph.ParameterDecl, 0, len(entries))
	for i, pe := range entries {
		ref, err := typegraph.ParseTypeExpr(pe.Type, typeParams)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pe.Name, err)
		}
		tags, err := buildTags(pe.Tags, pe.Aux, false)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pe.Name, err)
		}

		param := &typegraph.ParameterDecl{
			Name:       pe.Name,
			Type:       ref,
			Position:   i,
			Tags:       tags,
			Deprecated: pe.Deprecated.toDecl(),
		}
		if pe.Position != nil {
			param.Position = *pe.Position
		}
		if pe.Default != nil {
			param.HasDefault = true
			param.Default = *pe.Default
		}
		params = append(params, param)
	}
	return params, nil
}

func parseSource(names []string) (typegraph.SourceKind, error) {
	if len(names) == 0 {
		return typegraph.SourceField, nil
	}
	var kind typegraph.SourceKind
	for _, name := range names {
		switch strings.ToLower(name) {
		case "field":
			kind |= typegraph.SourceField
		case "accessor", "getter":
			kind |= typegraph.SourceAccessor
		case "mutator", "setter":
			kind |= typegraph.SourceMutator
		case "constructor", "ctor":
			kind |= typegraph.SourceConstructor
		default:
			return 0, fmt.Errorf("unknown property source %q", name)
		}
	}
	return kind, nil
}

var tagKinds = map[string]typegraph.TagKind{
	string(typegraph.TagRename):         typegraph.TagRename,
	string(typegraph.TagRequired):       typegraph.TagRequired,
	"required":                          typegraph.TagRequired,
	string(typegraph.TagNullable):       typegraph.TagNullable,
	"nullable":                          typegraph.TagNullable,
	string(typegraph.TagDeprecated):     typegraph.TagDeprecated,
	string(typegraph.TagImplementation): typegraph.TagImplementation,
	"implementation":                    typegraph.TagImplementation,
	string(typegraph.TagIgnore):         typegraph.TagIgnore,
}

func buildTags(entries []TagEntry, aux string, typeLevel bool) ([]typegraph.MetadataTag, error) {
	var tags []typegraph.MetadataTag
	for _, te := range entries {
		kind, ok := tagKinds[te.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown tag kind %q", te.Kind)
		}
		origin := typegraph.OriginStructural
		switch te.Origin {
		case "", string(typegraph.OriginStructural):
		case string(typegraph.OriginAuxiliary):
			origin = typegraph.OriginAuxiliary
		default:
			return nil, fmt.Errorf("unknown tag origin %q", te.Origin)
		}
		tags = append(tags, typegraph.MetadataTag{
			Kind:   kind,
			Origin: origin,
			Value:  te.Value,
			Flag:   te.Flag,
			Since:  te.Since,
			Names:  te.Names,
		})
	}

	auxTags, err := parseAuxTags(aux, typeLevel)
	if err != nil {
		return nil, err
	}
	return append(tags, auxTags...), nil
}
