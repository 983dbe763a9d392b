// Package docs renders scanned models as JSON Schema documents for
// inspection. The rendering is diagnostic and carries every reconciled
// attribute, including ones JSON Schema has no keyword for, under x- keys.
package docs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/conduit-lang/schemascan/internal/model"
)

// Config holds rendering options
type Config struct {
	// Title is set on the root schema; defaults to the model root
	Title string

	// OutputDir is where WriteFile places <root>.schema.json
	OutputDir string
}

// JSONSchemaGenerator renders models as JSON Schema draft 2020-12
type JSONSchemaGenerator struct {
	config Config
}

// NewJSONSchemaGenerator creates a generator
func NewJSONSchemaGenerator(config Config) *JSONSchemaGenerator {
	return &JSONSchemaGenerator{config: config}
}

// Generate builds the schema document for m
func (g *JSONSchemaGenerator) Generate(m *model.Model) (*jsonschema.Schema, error) {
	if m == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if m.Type(m.Root) == nil {
		return nil, fmt.Errorf("root type %s not present in model", m.Root)
	}

	title := g.config.Title
	if title == "" {
		title = m.Root
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       title,
		Ref:         defRef(m.Root),
		Definitions: make(jsonschema.Definitions, len(m.Types)),
	}
	for _, t := range m.Types {
		root.Definitions[t.ID] = typeSchema(t)
	}

	extras := make(map[string]any)
	if len(m.Operations) > 0 {
		ops := make([]operationDoc, 0, len(m.Operations))
		for _, op := range m.Operations {
			ops = append(ops, operation(op))
		}
		extras["x-operations"] = ops
	}
	if len(m.Warnings) > 0 {
		extras["x-warnings"] = m.Warnings
	}
	if len(extras) > 0 {
		root.Extras = extras
	}

	return root, nil
}

// Marshal renders m as indented JSON
func (g *JSONSchemaGenerator) Marshal(m *model.Model) ([]byte, error) {
	schema, err := g.Generate(m)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return data, nil
}

// WriteFile writes the rendered schema into OutputDir and returns its path
func (g *JSONSchemaGenerator) WriteFile(m *model.Model) (string, error) {
	if containsPathTraversal(g.config.OutputDir) {
		return "", fmt.Errorf("invalid output directory: path traversal detected")
	}

	data, err := g.Marshal(m)
	if err != nil {
		return "", err
	}

	outputDir := filepath.Clean(g.config.OutputDir)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, fileName(m.Root)+".schema.json")
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON schema: %w", err)
	}
	return outputPath, nil
}

func typeSchema(t *model.TypeSchema) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Title:      t.Name,
		Properties: jsonschema.NewProperties(),
		Deprecated: t.Deprecated,
	}

	for _, p := range t.Properties {
		ps := exprSchema(p.Type)
		ps.Deprecated = p.Deprecated
		if p.HasDefault {
			ps.Default = p.Default
		}
		ps.Extras = attributes(p.DeclaredName, p.Name, p.Since)
		s.Properties.Set(p.Name, ps)

		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}

	if t.Since != "" {
		s.Extras = map[string]any{"x-since": t.Since}
	}
	return s
}

func attributes(declared, name, since string) map[string]any {
	extras := make(map[string]any)
	if declared != "" && declared != name {
		extras["x-declared-name"] = declared
	}
	if since != "" {
		extras["x-since"] = since
	}
	if len(extras) == 0 {
		return nil
	}
	return extras
}

// exprSchema maps a resolved type expression. Nullable expressions become an
// anyOf with a null branch since Schema.Type holds a single type name.
func exprSchema(e model.TypeExpr) *jsonschema.Schema {
	var s *jsonschema.Schema
	switch e.Kind {
	case model.KindPrimitive:
		s = primitiveSchema(e.Name)
	case model.KindObject:
		s = &jsonschema.Schema{Ref: defRef(e.Name)}
	case model.KindArray:
		s = &jsonschema.Schema{Type: "array"}
		if e.Items != nil {
			s.Items = exprSchema(*e.Items)
		}
	default:
		s = &jsonschema.Schema{Extras: map[string]any{"x-opaque": e.Name}}
	}

	if !e.Nullable {
		return s
	}
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{s, {Type: "null"}},
	}
}

func primitiveSchema(name string) *jsonschema.Schema {
	switch name {
	case "boolean", "bool":
		return &jsonschema.Schema{Type: "boolean"}
	case "byte", "short", "int", "integer", "long", "biginteger":
		return &jsonschema.Schema{Type: "integer"}
	case "float", "double", "number", "decimal", "bigdecimal":
		return &jsonschema.Schema{Type: "number"}
	case "uuid", "date", "time", "duration", "uri":
		return &jsonschema.Schema{Type: "string", Format: name}
	case "datetime", "instant":
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case "binary":
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}
	case "any":
		return &jsonschema.Schema{Extras: map[string]any{"x-type": "any"}}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}

type operationDoc struct {
	Route      string             `json:"route"`
	Method     string             `json:"method"`
	Owner      string             `json:"owner"`
	Streaming  bool               `json:"streaming,omitempty"`
	Deprecated bool               `json:"deprecated,omitempty"`
	Since      string             `json:"since,omitempty"`
	Parameters []parameterDoc     `json:"parameters"`
	Result     *jsonschema.Schema `json:"result,omitempty"`
	Alternates []string           `json:"alternates,omitempty"`
}

type parameterDoc struct {
	Name      string             `json:"name"`
	Position  int                `json:"position"`
	Required  bool               `json:"required"`
	Streaming bool               `json:"streaming,omitempty"`
	Schema    *jsonschema.Schema `json:"schema"`
}

func operation(op *model.OperationSchema) operationDoc {
	doc := operationDoc{
		Route:      op.Route,
		Method:     op.Method,
		Owner:      op.Owner,
		Streaming:  op.Streaming,
		Deprecated: op.Deprecated,
		Since:      op.Since,
		Parameters: make([]parameterDoc, 0, len(op.Parameters)),
		Alternates: op.Alternates,
	}
	for _, p := range op.Parameters {
		ps := exprSchema(p.Type)
		ps.Deprecated = p.Deprecated
		if p.HasDefault {
			ps.Default = p.Default
		}
		ps.Extras = attributes(p.DeclaredName, p.Name, p.Since)
		doc.Parameters = append(doc.Parameters, parameterDoc{
			Name:      p.Name,
			Position:  p.Position,
			Required:  p.Required,
			Streaming: p.Streaming,
			Schema:    ps,
		})
	}
	if op.Result != nil {
		doc.Result = exprSchema(*op.Result)
	}
	return doc
}

// defRef builds a $ref to a definition, escaping the ID as a JSON pointer
// token
func defRef(id string) string {
	token := strings.NewReplacer("~", "~0", "/", "~1").Replace(id)
	return "#/$defs/" + token
}
