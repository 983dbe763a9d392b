package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// maxOverrideDepth bounds chains of implementation-type overrides
const maxOverrideDepth = 8

// Scanner produces Schema Models from a type graph. It holds no per-scan
// state and is safe for concurrent use.
type Scanner struct {
	graph  *typegraph.Graph
	opts   Options
	logger *zap.Logger
}

// NewScanner creates a scanner over g
func NewScanner(g *typegraph.Graph, opts Options) *Scanner {
	opts = opts.withDefaults()
	return &Scanner{
		graph:  g,
		opts:   opts,
		logger: opts.Logger,
	}
}

// Roots returns the identities of every type that can be scanned on its own:
// not opaque and with every type parameter covered by a default binding.
func (s *Scanner) Roots() []string {
	var roots []string
	for _, node := range s.graph.Types() {
		if node.Opaque {
			continue
		}
		bound := true
		for _, tp := range node.TypeParams {
			if _, ok := node.Bindings[tp]; !ok {
				bound = false
				break
			}
		}
		if bound {
			roots = append(roots, node.ID)
		}
	}
	return roots
}

// Scan builds the model rooted at the type with identity root. The root's
// schema comes first, followed by every referenced type in discovery order,
// then the operations exposed by the root's callables.
func (s *Scanner) Scan(root string) (*model.Model, error) {
	node, ok := s.graph.Lookup(root)
	if !ok {
		return nil, scanerrors.NewDanglingReference(root, root)
	}

	st := &scan{
		Scanner:  s,
		resolver: &resolver{rank: s.opts.OriginRank, strict: s.opts.StrictTags},
		index:    make(map[string]*model.TypeSchema),
		verdicts: make(map[string][]*verdict),
		warned:   make(map[string]bool),
		model:    &model.Model{Root: root},
	}

	bindings, err := bindingsFor(node, nil)
	if err != nil {
		return nil, err
	}
	if !node.Opaque {
		st.enqueue(node, typegraph.Named(root), bindings)
	}

	if err := st.scanOperations(node, bindings); err != nil {
		return nil, err
	}

	for i := 0; i < len(st.queue); i++ {
		if err := st.scanType(st.queue[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("scan complete",
		zap.String("root", root),
		zap.Int("types", len(st.model.Types)),
		zap.Int("operations", len(st.model.Operations)),
		zap.Int("warnings", len(st.model.Warnings)),
	)
	return st.model, nil
}

// ScanAll scans each root concurrently over the shared read-only graph.
// Models are returned in root order. The first error cancels the rest.
func ScanAll(ctx context.Context, g *typegraph.Graph, roots []string, opts Options) ([]*model.Model, error) {
	scanner := NewScanner(g, opts)
	models := make([]*model.Model, len(roots))

	eg, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := scanner.Scan(root)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// pendingType is a referenced type waiting to be scanned
type pendingType struct {
	node     *typegraph.TypeNode
	ref      typegraph.TypeRef
	bindings map[string]typegraph.TypeRef
	schema   *model.TypeSchema
}

// scan is the state of a single Scan call
type scan struct {
	*Scanner
	resolver *resolver
	queue    []*pendingType
	index    map[string]*model.TypeSchema
	verdicts map[string][]*verdict
	warned   map[string]bool
	model    *model.Model
}

// enqueue reserves the model slot for ref and returns its key. Slots are
// handed out in discovery order, so the root always comes first.
func (st *scan) enqueue(node *typegraph.TypeNode, ref typegraph.TypeRef, bindings map[string]typegraph.TypeRef) string {
	key := ref.Key()
	if _, ok := st.index[key]; ok {
		return key
	}

	schema := &model.TypeSchema{ID: key}
	st.index[key] = schema
	st.model.Types = append(st.model.Types, schema)
	st.queue = append(st.queue, &pendingType{
		node:     node,
		ref:      ref,
		bindings: bindings,
		schema:   schema,
	})
	return key
}

func (st *scan) warn(err *scanerrors.ScanError) {
	key := string(err.Code) + "|" + err.Node + "|" + err.Message
	if st.warned[key] {
		return
	}
	st.warned[key] = true
	st.logger.Debug("scan warning",
		zap.String("code", string(err.Code)),
		zap.String("node", err.Node),
		zap.String("message", err.Message),
	)
	st.model.Warnings = append(st.model.Warnings, model.Warning{
		Code:    string(err.Code),
		Node:    err.Node,
		Message: err.Message,
	})
}

// scanType fills the reserved schema of one pending type
func (st *scan) scanType(p *pendingType) error {
	node := p.node
	tags := typeSignals(node)

	res, err := st.resolver.resolve(node.ID, tags)
	if err != nil {
		return err
	}

	schema := p.schema
	schema.Name = typeName(node, p.ref)
	if res.renamed {
		schema.Name = res.name
	}
	schema.Deprecated = res.deprecated
	schema.Since = res.since
	schema.Properties = []*model.PropertySchema{}

	verdicts, err := st.merged(node, p.bindings, nil)
	if err != nil {
		return err
	}

	ignores := st.typeIgnores(node)
	for _, v := range verdicts {
		if ignores.has(v.declared) {
			continue
		}
		prop, err := st.propertySchema(v)
		if err != nil {
			return err
		}
		if prop != nil {
			schema.Properties = append(schema.Properties, prop)
		}
	}
	return nil
}

// typeName renders the display name of an instantiated reference
func typeName(node *typegraph.TypeNode, ref typegraph.TypeRef) string {
	name := node.DisplayName()
	if len(ref.Args) == 0 {
		return name
	}
	args := make([]string, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = a.String()
	}
	return name + "<" + strings.Join(args, ",") + ">"
}

// propertySchema applies tag precedence to one verdict. It returns nil when
// the property is ignored or its type is an ignored type.
func (st *scan) propertySchema(v *verdict) (*model.PropertySchema, error) {
	node := v.owner + "." + v.declared
	res, err := st.resolver.resolve(node, v.tags)
	if err != nil {
		return nil, err
	}
	if res.ignored {
		return nil, nil
	}

	typ, err := overrideRef(node, res.implementation, v.typ)
	if err != nil {
		return nil, err
	}
	expr, _, ignoredType, err := st.typeExpr(node, typ, 0)
	if err != nil {
		return nil, err
	}
	if ignoredType {
		return nil, nil
	}

	required, nullable := unwrappedVerdict(v.required, v.nullable, expr)
	prop := &model.PropertySchema{
		Name:         st.opts.Naming.Apply(v.declared),
		DeclaredName: v.declared,
		Required:     required,
		Nullable:     nullable,
		HasDefault:   v.hasDefault,
		Default:      v.defaultExpr,
		Deprecated:   res.deprecated,
		Since:        res.since,
	}
	if res.renamed {
		prop.Name = res.name
	}
	if res.nullable != nil {
		prop.Nullable = *res.nullable
	}
	if res.required != nil {
		prop.Required = *res.required
	}
	if prop.Required {
		prop.HasDefault = false
		prop.Default = ""
	}

	expr.Nullable = prop.Nullable
	prop.Type = expr
	return prop, nil
}

// typeExpr resolves a substituted reference into a model type, unwrapping
// registered wrappers and enqueuing referenced graph types. It reports whether
// a stream wrapper was peeled and whether the type is an ignored type.
func (st *scan) typeExpr(node string, ref typegraph.TypeRef, depth int) (model.TypeExpr, bool, bool, error) {
	ref, streaming, _ := st.opts.Wrappers.unwrap(ref, st.graph)

	switch ref.Kind {
	case typegraph.RefPrimitive:
		return model.TypeExpr{Kind: model.KindPrimitive, Name: ref.Name, Nullable: ref.IsNullable()}, streaming, false, nil

	case typegraph.RefArray:
		if ref.Elem == nil {
			return model.TypeExpr{}, false, false, scanerrors.NewDanglingReference(node, ref.String())
		}
		return st.arrayExpr(node, *ref.Elem, ref.Nullability, streaming, depth)

	case typegraph.RefVariable:
		return model.TypeExpr{}, false, false, scanerrors.NewUnresolvedGeneric(node, ref.Name)
	}

	if st.opts.Wrappers.isCollection(ref, st.graph) {
		return st.arrayExpr(node, ref.Args[0], ref.Nullability, streaming, depth)
	}

	target, ok := st.graph.Lookup(ref.Name)
	if !ok {
		if len(ref.Args) > 0 {
			st.warn(scanerrors.NewUnsupportedWrapperShape(node, ref.String()))
			return model.TypeExpr{Kind: model.KindOpaque, Name: ref.Key(), Nullable: ref.IsNullable()}, false, false, nil
		}
		return model.TypeExpr{}, false, false, scanerrors.NewDanglingReference(node, ref.String())
	}
	if target.Opaque {
		return model.TypeExpr{Kind: model.KindOpaque, Name: ref.Key(), Nullable: ref.IsNullable()}, streaming, false, nil
	}

	if impl, err := st.typeOverride(target); err != nil {
		return model.TypeExpr{}, false, false, err
	} else if impl != "" && depth < maxOverrideDepth {
		replaced, err := overrideRef(node, impl, ref)
		if err != nil {
			return model.TypeExpr{}, false, false, err
		}
		if replaced.Kind != typegraph.RefNamed || replaced.Name != target.ID {
			expr, s, ignored, err := st.typeExpr(node, replaced, depth+1)
			return expr, streaming || s, ignored, err
		}
	}

	if isIgnoredType(target) {
		return model.TypeExpr{}, streaming, true, nil
	}

	bindings, err := bindingsFor(target, ref.Args)
	if err != nil {
		return model.TypeExpr{}, false, false, err
	}
	key := st.enqueue(target, ref, bindings)
	return model.TypeExpr{Kind: model.KindObject, Name: key, Nullable: ref.IsNullable()}, streaming, false, nil
}

// unwrappedVerdict lets a nullable effective type found behind a wrapper
// (Optional<T>, Uni<T?>) relax the verdict computed from the declared type.
func unwrappedVerdict(required, nullable bool, expr model.TypeExpr) (bool, bool) {
	if expr.Nullable && !nullable {
		return false, true
	}
	return required, nullable
}

func (st *scan) arrayExpr(node string, elem typegraph.TypeRef, n typegraph.Nullability, streaming bool, depth int) (model.TypeExpr, bool, bool, error) {
	items, _, ignored, err := st.typeExpr(node, elem, depth)
	if err != nil || ignored {
		return model.TypeExpr{}, streaming, ignored, err
	}
	return model.TypeExpr{Kind: model.KindArray, Items: &items, Nullable: n == typegraph.Nullable}, streaming, false, nil
}

// typeOverride resolves a type-level implementation-type override
func (st *scan) typeOverride(node *typegraph.TypeNode) (string, error) {
	impl, err := st.resolver.pick(node.ID, typeSignals(node), typegraph.TagImplementation,
		func(t tagSignal) bool { return t.Value != "" }, stringValue)
	if err != nil || impl == nil {
		return "", err
	}
	return impl.Value, nil
}

// overrideRef replaces declared with the type named by an
// implementation-type override. The override is a type expression, so it can
// name a primitive, an array or a generic instantiation. Without its own
// marker the override keeps the declared nullability.
func overrideRef(node, impl string, declared typegraph.TypeRef) (typegraph.TypeRef, error) {
	if impl == "" {
		return declared, nil
	}
	ref, err := typegraph.ParseTypeExpr(impl, nil)
	if err != nil {
		return typegraph.TypeRef{}, scanerrors.NewDanglingReference(node, impl).WithActual(err.Error())
	}
	if ref.Nullability == typegraph.NullabilityUnspecified {
		ref = ref.WithNullability(declared.Nullability)
	}
	return ref, nil
}
