package schema

import (
	"sort"
	"strings"
)

// Apply returns a new Schema obtained by folding the non-destructive subset
// of changes — label additions, property additions, and required-ness
// toggles — onto sch. Added definitions are read from target, the schema
// changes was produced by comparing sch against: the same (changes, target)
// shape migrate.GenerateMigrationSQL already consumes to resolve a property's
// type when emitting its ALTER TABLE statement. Removed entries and
// type/nullability Modified entries are destructive and left unapplied
// (spec.md §8-P8: "for non-destructive changes only; destructive changes are
// documented exceptions"), so the result can still differ from target by
// exactly those entries.
func Apply(sch *Schema, changes []Change, target *Schema) *Schema {
	out := cloneSchema(sch)
	for _, c := range changes {
		section, label, prop := splitChangePath(c.Path)
		switch {
		case prop == "" && c.Kind == Added:
			applyLabelAdded(out, section, label, target)
		case prop != "" && c.Kind == Added:
			applyPropertyAdded(out, section, label, prop, target)
		case prop != "" && c.Kind == Modified && c.Detail == "became required":
			setRequired(out, section, label, prop, true)
		case prop != "" && c.Kind == Modified && c.Detail == "no longer required":
			setRequired(out, section, label, prop, false)
		}
	}
	return out
}

func applyLabelAdded(out *Schema, section, label string, target *Schema) {
	switch section {
	case "vertices":
		if vl, ok := target.Vertices[label]; ok {
			out.Vertices[label] = cloneVertexLabel(vl)
		}
	case "edges":
		if el, ok := target.Edges[label]; ok {
			out.Edges[label] = cloneEdgeLabel(el)
		}
	}
}

func applyPropertyAdded(out *Schema, section, label, prop string, target *Schema) {
	switch section {
	case "vertices":
		vl, ok := out.Vertices[label]
		tvl, tok := target.Vertices[label]
		if !ok || !tok {
			return
		}
		if def, ok := tvl.Properties[prop]; ok {
			vl.Properties[prop] = cloneProperty(def)
		}
	case "edges":
		el, ok := out.Edges[label]
		tel, tok := target.Edges[label]
		if !ok || !tok {
			return
		}
		if def, ok := tel.Properties[prop]; ok {
			el.Properties[prop] = cloneProperty(def)
		}
	}
}

func setRequired(out *Schema, section, label, prop string, required bool) {
	var vl *VertexLabel
	switch section {
	case "vertices":
		vl = out.Vertices[label]
	case "edges":
		if el, ok := out.Edges[label]; ok {
			vl = &el.VertexLabel
		}
	}
	if vl == nil {
		return
	}
	set := toSet(vl.Required)
	if required {
		set[prop] = struct{}{}
	} else {
		delete(set, prop)
	}
	required2 := make([]string, 0, len(set))
	for r := range set {
		required2 = append(required2, r)
	}
	sort.Strings(required2)
	vl.Required = required2
}

// splitChangePath splits a Change.Path of the form "section.label" or
// "section.label.property" produced by Compare.
func splitChangePath(path string) (section, label, prop string) {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) >= 1 {
		section = parts[0]
	}
	if len(parts) >= 2 {
		label = parts[1]
	}
	if len(parts) >= 3 {
		prop = parts[2]
	}
	return
}

func cloneSchema(s *Schema) *Schema {
	out := &Schema{Version: s.Version, Metadata: s.Metadata}
	out.Vertices = make(map[string]*VertexLabel, len(s.Vertices))
	for k, v := range s.Vertices {
		out.Vertices[k] = cloneVertexLabel(v)
	}
	out.Edges = make(map[string]*EdgeLabel, len(s.Edges))
	for k, v := range s.Edges {
		out.Edges[k] = cloneEdgeLabel(v)
	}
	return out
}

func cloneVertexLabel(vl *VertexLabel) *VertexLabel {
	props := make(map[string]*PropertyDefinition, len(vl.Properties))
	for k, v := range vl.Properties {
		props[k] = cloneProperty(v)
	}
	required := make([]string, len(vl.Required))
	copy(required, vl.Required)
	return &VertexLabel{Label: vl.Label, Properties: props, Required: required}
}

func cloneEdgeLabel(el *EdgeLabel) *EdgeLabel {
	return &EdgeLabel{
		VertexLabel:  *cloneVertexLabel(&el.VertexLabel),
		FromLabel:    el.FromLabel,
		ToLabel:      el.ToLabel,
		Multiplicity: el.Multiplicity,
		Direction:    el.Direction,
	}
}

func cloneProperty(def *PropertyDefinition) *PropertyDefinition {
	clone := *def
	return &clone
}
