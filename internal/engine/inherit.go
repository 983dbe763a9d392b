package engine

import (
	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// bindingsFor maps node's formal parameters to args. Without args the node's
// default bindings apply.
func bindingsFor(node *typegraph.TypeNode, args []typegraph.TypeRef) (map[string]typegraph.TypeRef, error) {
	if len(args) == 0 {
		return node.Bindings, nil
	}
	if len(args) != len(node.TypeParams) {
		return nil, scanerrors.NewGenericArityMismatch(node.ID, len(node.TypeParams), len(args))
	}
	bindings := make(map[string]typegraph.TypeRef, len(args))
	for i, name := range node.TypeParams {
		bindings[name] = args[i]
	}
	return bindings, nil
}

// merged returns the instance properties of node including everything
// inherited from its supertypes, with type variables resolved through
// bindings. The supertype set is computed first; the subtype then overlays it
// by declared name, replacing inherited verdicts wholesale. Inherited
// properties keep supertype order and precede the subtype's own.
func (st *scan) merged(node *typegraph.TypeNode, bindings map[string]typegraph.TypeRef, chain []string) ([]*verdict, error) {
	for _, id := range chain {
		if id == node.ID {
			return nil, scanerrors.NewCyclicSupertype(chain[0], append(append([]string{}, chain...), node.ID))
		}
	}
	chain = append(chain, node.ID)

	own, err := st.reconciled(node)
	if err != nil {
		return nil, err
	}

	resolved := make([]*verdict, 0, len(own))
	for _, v := range own {
		typ, missing, ok := v.typ.Substitute(bindings)
		if !ok {
			return nil, scanerrors.NewUnresolvedGeneric(node.ID, missing)
		}
		resolved = append(resolved, v.rebind(typ))
	}

	if node.Super == nil {
		return resolved, nil
	}

	superRef, missing, ok := node.Super.Substitute(bindings)
	if !ok {
		return nil, scanerrors.NewUnresolvedGeneric(node.ID, missing)
	}
	parent, ok := st.graph.Lookup(superRef.Name)
	if !ok {
		return nil, scanerrors.NewDanglingReference(node.ID, superRef.String())
	}
	if parent.Opaque {
		return resolved, nil
	}
	parentBindings, err := bindingsFor(parent, superRef.Args)
	if err != nil {
		return nil, err
	}

	inherited, err := st.merged(parent, parentBindings, chain)
	if err != nil {
		return nil, err
	}

	redeclared := make(map[string]bool, len(resolved))
	for _, v := range resolved {
		redeclared[v.declared] = true
	}

	out := make([]*verdict, 0, len(inherited)+len(resolved))
	for _, v := range inherited {
		if !redeclared[v.declared] {
			out = append(out, v)
		}
	}
	return append(out, resolved...), nil
}

// reconciled memoizes reconcile per type for the duration of one scan
func (st *scan) reconciled(node *typegraph.TypeNode) ([]*verdict, error) {
	if v, ok := st.verdicts[node.ID]; ok {
		return v, nil
	}
	v, err := reconcile(node, st.logger)
	if err != nil {
		return nil, err
	}
	st.verdicts[node.ID] = v
	return v, nil
}

// supertypes returns the nodes above node, nearest first. Opaque supertypes
// end the walk.
func (st *scan) supertypes(node *typegraph.TypeNode) []*typegraph.TypeNode {
	var out []*typegraph.TypeNode
	seen := map[string]bool{node.ID: true}
	for node.Super != nil {
		parent, ok := st.graph.Lookup(node.Super.Name)
		if !ok || parent.Opaque || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		out = append(out, parent)
		node = parent
	}
	return out
}
