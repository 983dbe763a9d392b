package engine

import (
	"sort"
	"strconv"

	scanerrors "github.com/conduit-lang/schemascan/internal/errors"
	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// resolver applies the tag precedence order: origin rank first, then scope
// (parameter > property > type), then declaration sequence.
type resolver struct {
	rank   map[typegraph.Origin]int
	strict bool
}

// outranks reports whether a wins over b
func (r *resolver) outranks(a, b tagSignal) bool {
	ra, rb := r.rank[a.Origin], r.rank[b.Origin]
	if ra != rb {
		return ra > rb
	}
	if a.scope != b.scope {
		return a.scope > b.scope
	}
	return a.seq < b.seq
}

// tied reports whether a and b have equal origin rank and scope
func (r *resolver) tied(a, b tagSignal) bool {
	return r.rank[a.Origin] == r.rank[b.Origin] && a.scope == b.scope
}

// pick returns the winning tag of kind among candidates accepted by keep. In
// strict mode a winner tied with a runner-up that carries a different value
// is a TagConflictError.
func (r *resolver) pick(
	node string,
	candidates []tagSignal,
	kind typegraph.TagKind,
	keep func(tagSignal) bool,
	value func(tagSignal) string,
) (*tagSignal, error) {
	var matched []tagSignal
	for _, c := range candidates {
		if c.Kind == kind && (keep == nil || keep(c)) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return r.outranks(matched[i], matched[j])
	})

	if r.strict && len(matched) > 1 {
		winner := matched[0]
		values := []string{value(winner)}
		for _, c := range matched[1:] {
			if !r.tied(winner, c) {
				break
			}
			if v := value(c); v != values[0] {
				values = append(values, v)
			}
		}
		if len(values) > 1 {
			return nil, scanerrors.NewTagConflict(node, string(kind), values)
		}
	}

	return &matched[0], nil
}

// resolution is the outcome of tag precedence for one declaration
type resolution struct {
	name           string
	renamed        bool
	required       *bool
	nullable       *bool
	deprecated     bool
	since          string
	implementation string
	ignored        bool
}

func flagValue(t tagSignal) string {
	return strconv.FormatBool(t.Enabled())
}

func stringValue(t tagSignal) string {
	return t.Value
}

func sinceValue(t tagSignal) string {
	return t.Since
}

// resolve computes every tag-driven attribute for one declaration
func (r *resolver) resolve(node string, candidates []tagSignal) (resolution, error) {
	var res resolution

	rename, err := r.pick(node, candidates, typegraph.TagRename, func(t tagSignal) bool { return t.Value != "" }, stringValue)
	if err != nil {
		return res, err
	}
	if rename != nil {
		res.name = rename.Value
		res.renamed = true
	}

	required, err := r.pick(node, candidates, typegraph.TagRequired, nil, flagValue)
	if err != nil {
		return res, err
	}
	if required != nil {
		res.required = typegraph.Bool(required.Enabled())
	}

	nullable, err := r.pick(node, candidates, typegraph.TagNullable, nil, flagValue)
	if err != nil {
		return res, err
	}
	if nullable != nil {
		res.nullable = typegraph.Bool(nullable.Enabled())
	}

	impl, err := r.pick(node, candidates, typegraph.TagImplementation, func(t tagSignal) bool { return t.Value != "" }, stringValue)
	if err != nil {
		return res, err
	}
	if impl != nil {
		res.implementation = impl.Value
	}

	ignore, err := r.pick(node, candidates, typegraph.TagIgnore, func(t tagSignal) bool { return len(t.Names) == 0 }, flagValue)
	if err != nil {
		return res, err
	}
	if ignore != nil {
		res.ignored = ignore.Enabled()
	}

	res.deprecated, res.since, err = r.deprecation(node, candidates)
	return res, err
}

// deprecation follows the highest ranked deprecation marker, so a disabled
// marker clears lower ranked ones. The since version comes from the highest
// ranked enabled marker that carries one.
func (r *resolver) deprecation(node string, candidates []tagSignal) (bool, string, error) {
	marker, err := r.pick(node, candidates, typegraph.TagDeprecated, nil, flagValue)
	if err != nil || marker == nil || !marker.Enabled() {
		return false, "", err
	}

	since, err := r.pick(node, candidates, typegraph.TagDeprecated,
		func(t tagSignal) bool { return t.Enabled() && t.Since != "" }, sinceValue)
	if err != nil || since == nil {
		return true, "", err
	}
	return true, since.Since, nil
}

// ignoreSet collects the property names excluded by type-level directives.
// all is set when the type's own directive names no properties.
type ignoreSet struct {
	all   bool
	names map[string]bool
}

func (s ignoreSet) has(name string) bool {
	return s.all || s.names[name]
}

// typeIgnores gathers the type-level ignore directives of node and its
// supertypes. Listed names are inherited; a whole-type directive is not.
func (st *scan) typeIgnores(node *typegraph.TypeNode) ignoreSet {
	set := ignoreSet{names: make(map[string]bool), all: isIgnoredType(node)}
	for _, n := range append([]*typegraph.TypeNode{node}, st.supertypes(node)...) {
		for _, t := range n.Tags {
			if t.Kind != typegraph.TagIgnore || !t.Enabled() {
				continue
			}
			for _, name := range t.Names {
				set.names[name] = true
			}
		}
	}
	return set
}

// isIgnoredType reports whether node carries an ignore directive that names
// no properties. References to such a type are dropped.
func isIgnoredType(node *typegraph.TypeNode) bool {
	for _, t := range node.Tags {
		if t.Kind == typegraph.TagIgnore && t.Enabled() && len(t.Names) == 0 {
			return true
		}
	}
	return false
}
