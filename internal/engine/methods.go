package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/model"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// paramState tracks a parameter through the method scanner. States only move
// forward.
type paramState int

const (
	paramNew paramState = iota
	paramSignalsExtracted
	paramTagsResolved
	paramDone
)

func (s paramState) String() string {
	switch s {
	case paramNew:
		return "NEW"
	case paramSignalsExtracted:
		return "SIGNALS_EXTRACTED"
	case paramTagsResolved:
		return "TAGS_RESOLVED"
	case paramDone:
		return "DONE"
	default:
		return fmt.Sprintf("paramState(%d)", int(s))
	}
}

type paramScan struct {
	state   paramState
	decl    *typegraph.ParameterDecl
	sig     signals
	res     resolution
	schema  *model.ParameterSchema
	dropped bool
}

func (p *paramScan) advance(next paramState) {
	if next != p.state+1 {
		panic(fmt.Sprintf("parameter %s: invalid transition %s -> %s", p.decl.Name, p.state, next))
	}
	p.state = next
}

// scanOperations builds one operation per route exposed by node's callables.
// Callables sharing a route are ordered by descending parameter count, first
// declared winning ties, and the first is elected.
func (st *scan) scanOperations(node *typegraph.TypeNode, bindings map[string]typegraph.TypeRef) error {
	var routes []string
	byRoute := make(map[string][]*typegraph.MethodDecl)

	for _, m := range node.Methods {
		if m.Route == "" {
			continue
		}
		res, err := st.resolver.resolve(node.ID+"."+m.Name, methodSignals(m))
		if err != nil {
			return err
		}
		if res.ignored {
			continue
		}
		if _, ok := byRoute[m.Route]; !ok {
			routes = append(routes, m.Route)
		}
		byRoute[m.Route] = append(byRoute[m.Route], m)
	}

	for _, route := range routes {
		candidates := byRoute[route]
		sort.SliceStable(candidates, func(i, j int) bool {
			return len(candidates[i].Params) > len(candidates[j].Params)
		})

		elected := candidates[0]
		var alternates []string
		for _, m := range candidates[1:] {
			alternates = append(alternates, m.Signature())
		}

		if len(alternates) > 0 {
			if st.opts.StrictOverloads {
				sigs := append([]string{elected.Signature()}, alternates...)
				return scanerrors.NewRouteConflict(route, sigs)
			}
			st.logger.Debug("elected overload",
				zap.String("route", route),
				zap.String("elected", elected.Signature()),
				zap.Strings("dropped", alternates),
			)
			st.warn(scanerrors.NewOverloadsDropped(route, elected.Signature(), alternates))
		}

		op, err := st.scanOperation(elected, bindings)
		if err != nil {
			return err
		}
		op.Alternates = alternates
		st.model.Operations = append(st.model.Operations, op)
	}
	return nil
}

// scanOperation runs each parameter of m through signal extraction, tag
// resolution and type resolution, then resolves the result type.
func (st *scan) scanOperation(m *typegraph.MethodDecl, bindings map[string]typegraph.TypeRef) (*model.OperationSchema, error) {
	node := m.Owner + "." + m.Name
	if err := validateParams(node, m.Params); err != nil {
		return nil, err
	}

	res, err := st.resolver.resolve(node, methodSignals(m))
	if err != nil {
		return nil, err
	}

	op := &model.OperationSchema{
		Route:      m.Route,
		Method:     m.Name,
		Owner:      m.Owner,
		Parameters: []*model.ParameterSchema{},
		Deprecated: res.deprecated,
		Since:      res.since,
	}

	for _, decl := range m.Params {
		p := &paramScan{decl: decl}
		if err := st.scanParameter(node, p, bindings); err != nil {
			return nil, err
		}
		if p.dropped {
			continue
		}
		if p.schema.Streaming {
			op.Streaming = true
		}
		op.Parameters = append(op.Parameters, p.schema)
	}

	if m.Returns != nil {
		ref, missing, ok := m.Returns.Substitute(bindings)
		if !ok {
			return nil, scanerrors.NewUnresolvedGeneric(node, missing)
		}
		expr, streaming, ignored, err := st.typeExpr(node, ref, 0)
		if err != nil {
			return nil, err
		}
		if streaming {
			op.Streaming = true
		}
		if !ignored {
			op.Result = &expr
		}
	}

	return op, nil
}

func (st *scan) scanParameter(method string, p *paramScan, bindings map[string]typegraph.TypeRef) error {
	node := method + "(" + p.decl.Name + ")"

	p.sig = parameterSignals(p.decl)
	p.advance(paramSignalsExtracted)

	res, err := st.resolver.resolve(node, p.sig.tags)
	if err != nil {
		return err
	}
	p.res = res
	p.advance(paramTagsResolved)

	if res.ignored {
		p.dropped = true
		p.advance(paramDone)
		return nil
	}

	typ, err := overrideRef(node, res.implementation, p.sig.typ)
	if err != nil {
		return err
	}
	typ, missing, ok := typ.Substitute(bindings)
	if !ok {
		return scanerrors.NewUnresolvedGeneric(node, missing)
	}
	expr, streaming, ignoredType, err := st.typeExpr(node, typ, 0)
	if err != nil {
		return err
	}
	if ignoredType {
		p.dropped = true
		p.advance(paramDone)
		return nil
	}

	required, nullable := paramVerdict(p.sig)
	required, nullable = unwrappedVerdict(required, nullable, expr)
	schema := &model.ParameterSchema{
		Name:         p.decl.Name,
		DeclaredName: p.decl.Name,
		Position:     p.decl.Position,
		Required:     required,
		Nullable:     nullable,
		HasDefault:   p.sig.hasDefault,
		Default:      p.sig.defaultExpr,
		Deprecated:   res.deprecated,
		Since:        res.since,
		Streaming:    streaming,
	}
	if res.renamed {
		schema.Name = res.name
	}
	if res.nullable != nil {
		schema.Nullable = *res.nullable
	}
	if res.required != nil {
		schema.Required = *res.required
	}
	if schema.Required {
		schema.HasDefault = false
		schema.Default = ""
	}
	expr.Nullable = schema.Nullable
	schema.Type = expr

	p.schema = schema
	p.advance(paramDone)
	return nil
}
