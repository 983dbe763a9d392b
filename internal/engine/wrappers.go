package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// WrapperKind classifies a registered wrapper shape
type WrapperKind string

const (
	// WrapperAsync delivers a single value later
	WrapperAsync WrapperKind = "async"
	// WrapperReactiveSingle delivers at most one value reactively
	WrapperReactiveSingle WrapperKind = "reactive-single"
	// WrapperStream delivers a sequence of values one at a time
	WrapperStream WrapperKind = "stream"
	// WrapperOptional marks its element as possibly absent
	WrapperOptional WrapperKind = "optional"
	// WrapperCollection is an aggregate rendered as an array
	WrapperCollection WrapperKind = "collection"
)

// ParseWrapperKind validates a configured wrapper kind
func ParseWrapperKind(s string) (WrapperKind, error) {
	switch k := WrapperKind(s); k {
	case WrapperAsync, WrapperReactiveSingle, WrapperStream, WrapperOptional, WrapperCollection:
		return k, nil
	default:
		return "", fmt.Errorf("unknown wrapper kind %q", s)
	}
}

// WrapperShape is matched structurally by name and generic arity
type WrapperShape struct {
	Name  string
	Arity int
	Kind  WrapperKind
}

// WrapperRegistry is the closed set of recognised wrapper shapes. Names match
// either the full type identity or its simple (last dotted segment) name.
type WrapperRegistry struct {
	mu     sync.RWMutex
	shapes map[string]WrapperShape
}

// NewWrapperRegistry creates a registry holding shapes
func NewWrapperRegistry(shapes ...WrapperShape) *WrapperRegistry {
	r := &WrapperRegistry{shapes: make(map[string]WrapperShape, len(shapes))}
	for _, s := range shapes {
		r.Register(s)
	}
	return r
}

// DefaultWrappers returns the built-in registry
func DefaultWrappers() *WrapperRegistry {
	return NewWrapperRegistry(
		WrapperShape{Name: "CompletionStage", Arity: 1, Kind: WrapperAsync},
		WrapperShape{Name: "CompletableFuture", Arity: 1, Kind: WrapperAsync},
		WrapperShape{Name: "Future", Arity: 1, Kind: WrapperAsync},
		WrapperShape{Name: "Uni", Arity: 1, Kind: WrapperReactiveSingle},
		WrapperShape{Name: "Mono", Arity: 1, Kind: WrapperReactiveSingle},
		WrapperShape{Name: "Single", Arity: 1, Kind: WrapperReactiveSingle},
		WrapperShape{Name: "Maybe", Arity: 1, Kind: WrapperReactiveSingle},
		WrapperShape{Name: "Multi", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Flux", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Flow", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Publisher", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Observable", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Stream", Arity: 1, Kind: WrapperStream},
		WrapperShape{Name: "Optional", Arity: 1, Kind: WrapperOptional},
		WrapperShape{Name: "List", Arity: 1, Kind: WrapperCollection},
		WrapperShape{Name: "Set", Arity: 1, Kind: WrapperCollection},
		WrapperShape{Name: "Collection", Arity: 1, Kind: WrapperCollection},
		WrapperShape{Name: "Iterable", Arity: 1, Kind: WrapperCollection},
	)
}

// Register adds or replaces a shape
func (r *WrapperRegistry) Register(s WrapperShape) {
	if s.Arity == 0 {
		s.Arity = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[s.Name] = s
}

// Lookup returns the shape registered for name at the given arity
func (r *WrapperRegistry) Lookup(name string, arity int) (WrapperShape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shapes[name]
	if !ok {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			s, ok = r.shapes[name[i+1:]]
		}
	}
	if !ok || s.Arity != arity {
		return WrapperShape{}, false
	}
	return s, true
}

// Shapes returns the registered shapes sorted by name
func (r *WrapperRegistry) Shapes() []WrapperShape {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WrapperShape, 0, len(r.shapes))
	for _, s := range r.shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// unwrap peels registered wrapper shapes off ref until none match. A shape is
// only peeled when the graph has no structured type of the same identity.
// Collections are not peeled past: their element is unwrapped by the caller.
func (r *WrapperRegistry) unwrap(ref typegraph.TypeRef, g *typegraph.Graph) (typegraph.TypeRef, bool, bool) {
	streaming := false
	wrapped := false
	for ref.Kind == typegraph.RefNamed {
		if node, ok := g.Lookup(ref.Name); ok && !node.Opaque {
			break
		}
		shape, ok := r.Lookup(ref.Name, len(ref.Args))
		if !ok || shape.Kind == WrapperCollection {
			break
		}

		inner := ref.Args[0]
		switch shape.Kind {
		case WrapperStream:
			streaming = true
		case WrapperOptional:
			inner = inner.MakeNullable()
		default:
			if ref.IsNullable() && inner.Nullability == typegraph.NullabilityUnspecified {
				inner = inner.MakeNullable()
			}
		}
		ref = inner
		wrapped = true
	}
	return ref, streaming, wrapped
}

// isCollection reports whether ref is a registered collection shape
func (r *WrapperRegistry) isCollection(ref typegraph.TypeRef, g *typegraph.Graph) bool {
	if ref.Kind != typegraph.RefNamed {
		return false
	}
	if node, ok := g.Lookup(ref.Name); ok && !node.Opaque {
		return false
	}
	shape, ok := r.Lookup(ref.Name, len(ref.Args))
	return ok && shape.Kind == WrapperCollection
}
