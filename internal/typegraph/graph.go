package typegraph

import (
	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
)

// Graph is an immutable index over a set of type nodes. It is safe for
// concurrent readers.
type Graph struct {
	types map[string]*TypeNode
	order []string
}

// NewGraph indexes nodes by identity, preserving their order
func NewGraph(nodes ...*TypeNode) (*Graph, error) {
	g := &Graph{
		types: make(map[string]*TypeNode, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if _, exists := g.types[n.ID]; exists {
			return nil, scanerrors.NewDuplicateType(n.ID)
		}
		g.types[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	return g, nil
}

// Lookup returns the node with the given identity
func (g *Graph) Lookup(id string) (*TypeNode, bool) {
	n, ok := g.types[id]
	return n, ok
}

// Types returns all nodes in declaration order
func (g *Graph) Types() []*TypeNode {
	out := make([]*TypeNode, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.types[id])
	}
	return out
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.order)
}

// SupertypeChain returns id followed by its supertypes, nearest first. A
// cyclic chain or a supertype missing from the graph is a TypeGraphError.
func (g *Graph) SupertypeChain(id string) ([]string, error) {
	chain := []string{id}
	seen := map[string]bool{id: true}

	node, ok := g.types[id]
	if !ok {
		return nil, scanerrors.NewDanglingReference(id, id)
	}
	for node.Super != nil {
		next := node.Super.Name
		if seen[next] {
			return nil, scanerrors.NewCyclicSupertype(id, append(chain, next))
		}
		parent, ok := g.types[next]
		if !ok {
			return nil, scanerrors.NewDanglingReference(node.ID, node.Super.String())
		}
		chain = append(chain, next)
		seen[next] = true
		node = parent
	}
	return chain, nil
}

// Validate checks every supertype chain in the graph and returns all problems found
func (g *Graph) Validate() scanerrors.ErrorList {
	var errs scanerrors.ErrorList
	for _, id := range g.order {
		if _, err := g.SupertypeChain(id); err != nil {
			if se, ok := scanerrors.As(err); ok {
				errs = append(errs, se)
			}
		}
	}
	return errs
}
