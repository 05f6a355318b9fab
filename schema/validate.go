package schema

import (
	"fmt"
	"regexp"
	"sort"
)

// ValidationError describes one failed check, with a path so callers can
// locate it inside the input (spec.md §4.4).
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []string
}

// Options controls the two validation modes (fail-fast / collect-all) and a
// handful of leniency switches (spec.md §4.4).
type Options struct {
	FailFast                bool
	AllowUnknownProperties  bool
	CheckReferentialIntegrity bool
}

// DefaultOptions matches the loader's own defaults: collect-all, referential
// checks on, unknown properties rejected.
func DefaultOptions() Options {
	return Options{FailFast: false, AllowUnknownProperties: false, CheckReferentialIntegrity: true}
}

// Validate checks data against schema per spec.md §4.4: every required
// property present, every present property conforming to its
// PropertyDefinition and constraints, every edge record having resolvable
// endpoints when CheckReferentialIntegrity is set.
func Validate(data *GraphData, sch *Schema, opts Options) *ValidationResult {
	res := &ValidationResult{Valid: true}

	addErr := func(path, msg string) bool {
		res.Valid = false
		res.Errors = append(res.Errors, ValidationError{Path: path, Message: msg})
		return !opts.FailFast
	}

	for _, label := range sortedKeys(data.Vertices) {
		vl, ok := sch.Vertices[label]
		if !ok {
			if !addErr(fmt.Sprintf("vertices.%s", label), "unknown vertex label") {
				return res
			}
			continue
		}
		for i, props := range data.Vertices[label] {
			path := fmt.Sprintf("vertices.%s[%d]", label, i)
			if !validateEntity(path, props, vl, opts, addErr, res) {
				return res
			}
		}
	}

	for _, label := range sortedKeys(data.Edges) {
		el, ok := sch.Edges[label]
		if !ok {
			if !addErr(fmt.Sprintf("edges.%s", label), "unknown edge label") {
				return res
			}
			continue
		}
		for i, rec := range data.Edges[label] {
			path := fmt.Sprintf("edges.%s[%d]", label, i)
			if rec.From == nil {
				if !addErr(path+".from", "Missing required property: from") {
					return res
				}
			}
			if rec.To == nil {
				if !addErr(path+".to", "Missing required property: to") {
					return res
				}
			}
			if opts.CheckReferentialIntegrity && rec.From != nil && !idPresent(data.Vertices[el.FromLabel], rec.From) {
				if !addErr(path+".from", fmt.Sprintf("no vertex of label %s with id %v in this batch", el.FromLabel, rec.From)) {
					return res
				}
			}
			if opts.CheckReferentialIntegrity && rec.To != nil && !idPresent(data.Vertices[el.ToLabel], rec.To) {
				if !addErr(path+".to", fmt.Sprintf("no vertex of label %s with id %v in this batch", el.ToLabel, rec.To)) {
					return res
				}
			}
			if !validateEntity(path, rec.Properties, &el.VertexLabel, opts, addErr, res) {
				return res
			}
		}
	}

	return res
}

func idPresent(vertices []map[string]interface{}, id interface{}) bool {
	for _, v := range vertices {
		if vid, ok := v["id"]; ok && fmt.Sprintf("%v", vid) == fmt.Sprintf("%v", id) {
			return true
		}
	}
	return false
}

// validateEntity validates one vertex's or edge's property map against a
// VertexLabel's property definitions. Returns false when FailFast stopped
// further processing.
func validateEntity(path string, props map[string]interface{}, vl *VertexLabel, opts Options, addErr func(string, string) bool, res *ValidationResult) bool {
	for _, req := range vl.Required {
		if _, ok := props[req]; !ok {
			if !addErr(fmt.Sprintf("%s.%s", path, req), fmt.Sprintf("Missing required property: %s", req)) {
				return false
			}
		}
	}

	for name, val := range props {
		def, ok := vl.Properties[name]
		if !ok {
			if opts.AllowUnknownProperties {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s.%s: unknown property", path, name))
				continue
			}
			if !addErr(fmt.Sprintf("%s.%s", path, name), "unknown property") {
				return false
			}
			continue
		}
		if val == nil {
			if !def.Nullable {
				if !addErr(fmt.Sprintf("%s.%s", path, name), "property is not nullable") {
					return false
				}
			}
			continue
		}
		if msg := checkType(def, val); msg != "" {
			if !addErr(fmt.Sprintf("%s.%s", path, name), msg) {
				return false
			}
			continue
		}
		if msg := checkConstraints(def, val); msg != "" {
			if !addErr(fmt.Sprintf("%s.%s", path, name), msg) {
				return false
			}
		}
	}
	return true
}

func checkType(def *PropertyDefinition, val interface{}) string {
	if def.Type == TypeAny {
		return ""
	}
	switch def.Type {
	case TypeString, TypeDate, TypeDatetime:
		if _, ok := val.(string); !ok {
			return fmt.Sprintf("expected %s, got %T", def.Type, val)
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return fmt.Sprintf("expected boolean, got %T", val)
		}
	case TypeInteger:
		switch val.(type) {
		case int, int8, int16, int32, int64:
		case float64:
			if f := val.(float64); f != float64(int64(f)) {
				return "expected integer, got non-integral number"
			}
		default:
			return fmt.Sprintf("expected integer, got %T", val)
		}
	case TypeNumber, TypeFloat:
		switch val.(type) {
		case int, int8, int16, int32, int64, float32, float64:
		default:
			return fmt.Sprintf("expected number, got %T", val)
		}
	case TypeObject:
		if _, ok := val.(map[string]interface{}); !ok {
			return fmt.Sprintf("expected object, got %T", val)
		}
	case TypeArray:
		if _, ok := val.([]interface{}); !ok {
			return fmt.Sprintf("expected array, got %T", val)
		}
	}
	return ""
}

func checkConstraints(def *PropertyDefinition, val interface{}) string {
	c := def.Constraints
	if c == nil {
		return ""
	}
	switch def.Type {
	case TypeString:
		s, _ := val.(string)
		if c.MinLength != nil && len(s) < *c.MinLength {
			return fmt.Sprintf("length %d is less than minLength %d", len(s), *c.MinLength)
		}
		if c.MaxLength != nil && len(s) > *c.MaxLength {
			return fmt.Sprintf("length %d exceeds maxLength %d", len(s), *c.MaxLength)
		}
		if c.Pattern != "" {
			re, err := regexp.Compile(c.Pattern)
			if err == nil && !re.MatchString(s) {
				return fmt.Sprintf("value does not match pattern %s", c.Pattern)
			}
		}
		if len(c.Enum) > 0 && !enumContains(c.Enum, s) {
			return fmt.Sprintf("value %q is not one of the allowed enum values", s)
		}
	case TypeNumber, TypeInteger, TypeFloat:
		n := toFloat(val)
		if c.Minimum != nil {
			if c.ExclusiveMinimum && n <= *c.Minimum {
				return fmt.Sprintf("value %v must be greater than %v", n, *c.Minimum)
			}
			if !c.ExclusiveMinimum && n < *c.Minimum {
				return fmt.Sprintf("value %v is less than minimum %v", n, *c.Minimum)
			}
		}
		if c.Maximum != nil {
			if c.ExclusiveMaximum && n >= *c.Maximum {
				return fmt.Sprintf("value %v must be less than %v", n, *c.Maximum)
			}
			if !c.ExclusiveMaximum && n > *c.Maximum {
				return fmt.Sprintf("value %v exceeds maximum %v", n, *c.Maximum)
			}
		}
		if c.MultipleOf != nil && *c.MultipleOf != 0 {
			if remainder := mod(n, *c.MultipleOf); remainder != 0 {
				return fmt.Sprintf("value %v is not a multiple of %v", n, *c.MultipleOf)
			}
		}
		if len(c.Enum) > 0 && !enumContains(c.Enum, n) {
			return fmt.Sprintf("value %v is not one of the allowed enum values", n)
		}
	case TypeArray:
		arr, _ := val.([]interface{})
		if c.MinItems != nil && len(arr) < *c.MinItems {
			return fmt.Sprintf("array has %d items, less than minItems %d", len(arr), *c.MinItems)
		}
		if c.MaxItems != nil && len(arr) > *c.MaxItems {
			return fmt.Sprintf("array has %d items, exceeds maxItems %d", len(arr), *c.MaxItems)
		}
		if c.UniqueItems && hasDuplicates(arr) {
			return "array items must be unique"
		}
		if c.Items != nil {
			for i, item := range arr {
				if msg := checkType(c.Items, item); msg != "" {
					return fmt.Sprintf("item[%d]: %s", i, msg)
				}
			}
		}
	case TypeObject:
		obj, _ := val.(map[string]interface{})
		for _, req := range c.Required {
			if _, ok := obj[req]; !ok {
				return fmt.Sprintf("missing required nested property: %s", req)
			}
		}
		for k, v := range obj {
			if nested, ok := c.Properties[k]; ok {
				if msg := checkType(nested, v); msg != "" {
					return fmt.Sprintf("%s: %s", k, msg)
				}
			}
		}
	}
	return ""
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func mod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	q := a / b
	return a - b*float64(int64(q))
}

func enumContains(enum []interface{}, v interface{}) bool {
	for _, e := range enum {
		if fmt.Sprintf("%v", e) == fmt.Sprintf("%v", v) {
			return true
		}
	}
	return false
}

func hasDuplicates(arr []interface{}) bool {
	seen := make(map[string]struct{}, len(arr))
	for _, v := range arr {
		key := fmt.Sprintf("%v", v)
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
