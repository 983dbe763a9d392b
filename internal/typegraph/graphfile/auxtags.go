package graphfile

import (
	"fmt"

	"github.com/fatih/structtag"

	"github.com/conduit-lang/schemascan/internal/typegraph"
)

// parseAuxTags converts a serialization tag string such as
//
//	json:"display_name,required" deprecated:"2.1"
//
// into auxiliary-origin metadata tags. On a type, json:"-" ignores the whole
// type and ignore:"a,b" ignores the listed properties.
func parseAuxTags(raw string, typeLevel bool) ([]typegraph.MetadataTag, error) {
	if raw == "" {
		return nil, nil
	}

	tags, err := structtag.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid auxiliary tags %q: %w", raw, err)
	}

	var out []typegraph.MetadataTag
	aux := func(kind typegraph.TagKind) typegraph.MetadataTag {
		return typegraph.MetadataTag{Kind: kind, Origin: typegraph.OriginAuxiliary}
	}

	if js, err := tags.Get("json"); err == nil {
		switch {
		case js.Name == "-":
			out = append(out, aux(typegraph.TagIgnore))
		case js.Name != "" && !typeLevel:
			t := aux(typegraph.TagRename)
			t.Value = js.Name
			out = append(out, t)
		}

		for _, opt := range js.Options {
			switch opt {
			case "required":
				t := aux(typegraph.TagRequired)
				t.Flag = typegraph.Bool(true)
				out = append(out, t)
			case "optional":
				t := aux(typegraph.TagRequired)
				t.Flag = typegraph.Bool(false)
				out = append(out, t)
			case "nullable":
				t := aux(typegraph.TagNullable)
				t.Flag = typegraph.Bool(true)
				out = append(out, t)
			case "nonnull":
				t := aux(typegraph.TagNullable)
				t.Flag = typegraph.Bool(false)
				out = append(out, t)
			}
		}
	}

	if dep, err := tags.Get("deprecated"); err == nil {
		t := aux(typegraph.TagDeprecated)
		t.Since = dep.Name
		out = append(out, t)
	}

	if ign, err := tags.Get("ignore"); err == nil && typeLevel {
		t := aux(typegraph.TagIgnore)
		if ign.Name != "" {
			t.Names = append([]string{ign.Name}, ign.Options...)
		}
		out = append(out, t)
	}

	if impl, err := tags.Get("impl"); err == nil && impl.Name != "" {
		t := aux(typegraph.TagImplementation)
		t.Value = impl.Name
		out = append(out, t)
	}

	return out, nil
}
