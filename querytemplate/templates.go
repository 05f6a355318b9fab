// Package querytemplate emits the three families of graph queries described
// in spec.md §4.5. Each is a free function taking explicit arguments rather
// than a method on a shared mutable generator object, carrying forward the
// redesign spec.md §9 calls for in place of the teacher's per-struct
// Build() methods (see query/cypher/vertex_query_builder.go for the pattern
// being generalized: identifier validation up front, then fmt.Sprintf clause
// assembly).
package querytemplate

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IdentError is returned when a label or property name fails the identifier
// check spec.md §4.5 requires before it is placed, unquoted, into a Cypher
// body.
type IdentError struct {
	Kind  string
	Value string
}

func (e *IdentError) Error() string {
	return fmt.Sprintf("invalid %s %q: must match [A-Za-z_][A-Za-z0-9_]*", e.Kind, e.Value)
}

func checkIdent(kind, value string) error {
	if !identPattern.MatchString(value) {
		return &IdentError{Kind: kind, Value: value}
	}
	return nil
}

// VertexCreateTemplate emits the UNWIND/CREATE template for label, reading
// its rows from the bridge key vertex_<label> via get_vertices (spec.md
// §4.5.1).
func VertexCreateTemplate(label string, properties []string) (string, error) {
	if err := checkIdent("vertex label", label); err != nil {
		return "", err
	}
	for _, p := range properties {
		if err := checkIdent("property", p); err != nil {
			return "", err
		}
	}

	props := sortedCopy(properties)
	buf := bytes.Buffer{}
	fmt.Fprintf(&buf, "UNWIND get_vertices('%s') AS v\n", label)
	fmt.Fprintf(&buf, "CREATE (n:%s {", label)
	for i, p := range props {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: CASE WHEN v.%s IS NOT NULL THEN v.%s ELSE NULL END", p, p, p)
	}
	buf.WriteString("})\n")
	buf.WriteString("RETURN count(n) AS created_vertices")
	return buf.String(), nil
}

// EdgeCreateTemplate emits the UNWIND/MATCH/CREATE template for edge label
// connecting endpoint labels from and to, reading its rows from the bridge
// key edge_<label> via get_edges (spec.md §4.5.2). properties excludes
// "from"/"to".
func EdgeCreateTemplate(label, from, to string, properties []string) (string, error) {
	if err := checkIdent("edge label", label); err != nil {
		return "", err
	}
	if err := checkIdent("vertex label", from); err != nil {
		return "", err
	}
	if err := checkIdent("vertex label", to); err != nil {
		return "", err
	}
	for _, p := range properties {
		if err := checkIdent("property", p); err != nil {
			return "", err
		}
	}

	props := sortedCopy(properties)
	buf := bytes.Buffer{}
	fmt.Fprintf(&buf, "UNWIND get_edges('%s') AS e\n", label)
	fmt.Fprintf(&buf, "MATCH (a:%s {id: e.from})\n", from)
	fmt.Fprintf(&buf, "MATCH (b:%s {id: e.to})\n", to)
	fmt.Fprintf(&buf, "CREATE (a)-[r:%s {", label)
	for i, p := range props {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: CASE WHEN e.%s IS NOT NULL THEN e.%s ELSE NULL END", p, p, p)
	}
	buf.WriteString("}]->(b)\n")
	buf.WriteString("RETURN count(r) AS created_edges")
	return buf.String(), nil
}

// ScalarParamsTemplate emits the WITH get_age_param('<key>') AS params prelude
// used to splice a per-request scalar parameter object into a caller-supplied
// body (spec.md §4.5.3).
func ScalarParamsTemplate(key, alias, body string) (string, error) {
	if err := checkIdent("parameter key", key); err != nil {
		return "", err
	}
	if err := checkIdent("alias", alias); err != nil {
		return "", err
	}
	return fmt.Sprintf("WITH get_age_param('%s') AS %s\n%s", key, alias, body), nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
