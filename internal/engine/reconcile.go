package engine

import (
	"fmt"

	"go.uber.org/zap"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// verdict is the reconciled contract of one property before tag resolution
type verdict struct {
	owner       string
	declared    string
	typ         typegraph.TypeRef
	required    bool
	nullable    bool
	hasDefault  bool
	defaultExpr string
	tags        []tagSignal
	constructor bool
}

// rebind returns a copy of v with its type variables substituted. A type
// variable declared without a marker takes its nullability from the binding.
func (v *verdict) rebind(typ typegraph.TypeRef) *verdict {
	c := *v
	c.typ = typ
	if v.typ.Kind != typegraph.RefVariable || v.typ.Nullability != typegraph.NullabilityUnspecified {
		return &c
	}
	if c.constructor {
		c.nullable = typ.IsNullable()
		c.required = !c.nullable && !c.hasDefault
	} else {
		c.nullable = !typ.IsNonNull()
	}
	return &c
}

// selectCanonical returns the canonical constructor of node and its index, or
// nil when the type declares no constructors. An explicitly marked constructor
// wins; otherwise the one with the most parameters, first declared on a tie.
func selectCanonical(node *typegraph.TypeNode) (*typegraph.ConstructorDecl, int) {
	best := -1
	for i, c := range node.Constructors {
		if c.Canonical {
			return c, i
		}
		if best < 0 || len(c.Params) > len(node.Constructors[best].Params) {
			best = i
		}
	}
	if best < 0 {
		return nil, -1
	}
	return node.Constructors[best], best
}

// validateParams checks that names are unique and positions are dense
func validateParams(node string, params []*typegraph.ParameterDecl) error {
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p.Name == "" {
			return scanerrors.NewMalformedParameter(node, fmt.Sprintf("parameter %d has no name", i))
		}
		if seen[p.Name] {
			return scanerrors.NewMalformedParameter(node, fmt.Sprintf("duplicate parameter %q", p.Name))
		}
		seen[p.Name] = true
		if p.Position != i {
			return scanerrors.NewMalformedParameter(node,
				fmt.Sprintf("parameter %q declares position %d at index %d", p.Name, p.Position, i))
		}
	}
	return nil
}

// validateConstructors checks the constructor set of node: at most one is
// marked canonical, parameter lists are well formed, and delegation targets
// exist, are acyclic, and name only parameters of the target.
func validateConstructors(node *typegraph.TypeNode) error {
	marked := 0
	for i, c := range node.Constructors {
		if c.Canonical {
			marked++
		}
		if err := validateParams(node.ID, c.Params); err != nil {
			return err
		}

		d := c.Delegation
		if d == nil {
			continue
		}
		if d.Target < 0 || d.Target >= len(node.Constructors) {
			return scanerrors.NewMalformedConstructor(node.ID,
				fmt.Sprintf("constructor %d delegates to missing constructor %d", i, d.Target))
		}
		target := node.Constructors[d.Target]
		for name := range d.Fixed {
			if !hasParam(target.Params, name) {
				return scanerrors.NewMalformedConstructor(node.ID,
					fmt.Sprintf("constructor %d fixes unknown parameter %q of constructor %d", i, name, d.Target))
			}
		}
	}
	if marked > 1 {
		return scanerrors.NewMalformedConstructor(node.ID, "more than one constructor is marked canonical")
	}

	for i := range node.Constructors {
		seen := map[int]bool{i: true}
		for c := node.Constructors[i]; c.Delegation != nil; c = node.Constructors[c.Delegation.Target] {
			if seen[c.Delegation.Target] {
				return scanerrors.NewMalformedConstructor(node.ID,
					fmt.Sprintf("constructor %d is part of a delegation cycle", i))
			}
			seen[c.Delegation.Target] = true
		}
	}
	return nil
}

func hasParam(params []*typegraph.ParameterDecl, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// paramVerdict applies the canonical parameter rule: required unless the
// declared type is nullable or a default is present.
func paramVerdict(sig signals) (required, nullable bool) {
	nullable = sig.nullability == typegraph.Nullable
	required = !nullable && !sig.hasDefault
	return required, nullable
}

// reconcile produces one verdict per instance property declared by node.
// Properties backed by a canonical constructor parameter take the parameter's
// verdict; all others are optional, nullable unless declared non-null, and
// carry no default. Canonical parameters without a declared property are
// appended in parameter order.
func reconcile(node *typegraph.TypeNode, logger *zap.Logger) ([]*verdict, error) {
	if err := validateConstructors(node); err != nil {
		return nil, err
	}

	canonical, index := selectCanonical(node)
	params := make(map[string]*typegraph.ParameterDecl)
	if canonical != nil {
		logger.Debug("selected canonical constructor",
			zap.String("type", node.ID),
			zap.Int("index", index),
			zap.Bool("marked", canonical.Canonical),
			zap.Int("params", len(canonical.Params)),
		)
		for _, p := range canonical.Params {
			params[p.Name] = p
		}
		logDelegations(node, index, logger)
	}

	out := make([]*verdict, 0, len(node.Properties))
	used := make(map[string]bool, len(params))
	for _, prop := range node.Properties {
		if prop.Static {
			continue
		}
		psig := propertySignals(prop)

		if param, ok := params[prop.Name]; ok {
			used[prop.Name] = true
			sig := parameterSignals(param)
			required, nullable := paramVerdict(sig)
			out = append(out, &verdict{
				owner:       node.ID,
				declared:    prop.Name,
				typ:         param.Type,
				required:    required,
				nullable:    nullable,
				hasDefault:  sig.hasDefault,
				defaultExpr: sig.defaultExpr,
				tags:        append(psig.tags, sig.tags...),
				constructor: true,
			})
			continue
		}

		out = append(out, &verdict{
			owner:    node.ID,
			declared: prop.Name,
			typ:      prop.Type,
			nullable: psig.nullability != typegraph.NonNull,
			tags:     psig.tags,
		})
	}

	if canonical != nil {
		for _, param := range canonical.Params {
			if used[param.Name] {
				continue
			}
			sig := parameterSignals(param)
			required, nullable := paramVerdict(sig)
			out = append(out, &verdict{
				owner:       node.ID,
				declared:    param.Name,
				typ:         param.Type,
				required:    required,
				nullable:    nullable,
				hasDefault:  sig.hasDefault,
				defaultExpr: sig.defaultExpr,
				tags:        sig.tags,
				constructor: true,
			})
		}
	}

	return out, nil
}

// logDelegations notes fixed arguments supplied by secondary constructors.
// They describe alternate call shapes and never change a verdict.
func logDelegations(node *typegraph.TypeNode, canonical int, logger *zap.Logger) {
	for i, c := range node.Constructors {
		if i == canonical || c.Delegation == nil || c.Delegation.Target != canonical {
			continue
		}
		for name := range c.Delegation.Fixed {
			logger.Debug("delegating constructor fixes parameter; contract unchanged",
				zap.String("type", node.ID),
				zap.Int("constructor", i),
				zap.String("param", name),
			)
		}
	}
}
