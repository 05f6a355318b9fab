// Package migrate turns a schema.Schema, or the Change sequence schema.Compare
// produces, into executable CREATE TABLE/ALTER TABLE statements
// (SPEC_FULL.md §9.1, a feature present in original_source/ and dropped by
// the distilled spec). It is a separate package from schema purely to avoid
// an import cycle: dialect already imports schema for PostgresType, so DDL
// generation that needs dialect cannot live inside schema itself.
package migrate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/ageSchemaClient-sub007/dialect"
	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
)

// GenerateCreateTableSQL emits one CREATE TABLE IF NOT EXISTS statement per
// vertex label and per edge label in sch, columns derived from each
// PropertyDefinition's type via dialect.PostgresType.
func GenerateCreateTableSQL(sch *schema.Schema) []string {
	var stmts []string
	for _, label := range sortedKeys(sch.Vertices) {
		stmts = append(stmts, vertexTableSQL(label, sch.Vertices[label]))
	}
	for _, label := range sortedEdgeKeys(sch.Edges) {
		stmts = append(stmts, edgeTableSQL(label, sch.Edges[label]))
	}
	return stmts
}

func vertexTableSQL(label string, vl *schema.VertexLabel) string {
	columns := []string{"id TEXT PRIMARY KEY"}
	columns = append(columns, propertyColumns(vl)...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", dialect.QuoteIdent(label), strings.Join(columns, ",\n  "))
}

func edgeTableSQL(label string, el *schema.EdgeLabel) string {
	columns := []string{
		"from_id TEXT NOT NULL REFERENCES " + dialect.QuoteIdent(el.FromLabel) + "(id)",
		"to_id TEXT NOT NULL REFERENCES " + dialect.QuoteIdent(el.ToLabel) + "(id)",
	}
	columns = append(columns, propertyColumns(&el.VertexLabel)...)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", dialect.QuoteIdent(label), strings.Join(columns, ",\n  "))
}

func propertyColumns(vl *schema.VertexLabel) []string {
	required := toSet(vl.Required)
	var columns []string
	for _, name := range sortedPropertyKeys(vl.Properties) {
		def := vl.Properties[name]
		col := dialect.QuoteIdent(name) + " " + dialect.PostgresType(def.Type)
		if _, ok := required[name]; ok && !def.Nullable {
			col += " NOT NULL"
		}
		columns = append(columns, col)
	}
	return columns
}

// GenerateMigrationSQL turns the output of schema.Compare into ALTER
// TABLE/CREATE TABLE/DROP TABLE statements against newSchema (used to resolve
// the endpoint labels and property types a label- or property-level Added
// change needs).
func GenerateMigrationSQL(changes []schema.Change, newSchema *schema.Schema) []string {
	var stmts []string
	for _, c := range changes {
		section, label, prop := parsePath(c.Path)
		switch {
		case prop == "" && c.Kind == schema.Added:
			stmts = append(stmts, createTableForLabel(section, label, newSchema))
		case prop == "" && c.Kind == schema.Removed:
			stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s", dialect.QuoteIdent(label)))
		case prop != "" && c.Kind == schema.Added:
			if def := propertyDefinition(section, label, prop, newSchema); def != nil {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
					dialect.QuoteIdent(label), dialect.QuoteIdent(prop), dialect.PostgresType(def.Type)))
			}
		case prop != "" && c.Kind == schema.Removed:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", dialect.QuoteIdent(label), dialect.QuoteIdent(prop)))
		case prop != "" && c.Kind == schema.Modified:
			stmts = append(stmts, fmt.Sprintf("-- manual review required: %s.%s.%s: %s", section, label, prop, c.Detail))
		}
	}
	return stmts
}

func createTableForLabel(section, label string, sch *schema.Schema) string {
	if section == "edges" {
		if el, ok := sch.Edges[label]; ok {
			return edgeTableSQL(label, el)
		}
		return fmt.Sprintf("-- cannot generate CREATE TABLE for edges.%s: label no longer present", label)
	}
	if vl, ok := sch.Vertices[label]; ok {
		return vertexTableSQL(label, vl)
	}
	return fmt.Sprintf("-- cannot generate CREATE TABLE for vertices.%s: label no longer present", label)
}

func propertyDefinition(section, label, prop string, sch *schema.Schema) *schema.PropertyDefinition {
	if section == "edges" {
		if el, ok := sch.Edges[label]; ok {
			return el.Properties[prop]
		}
		return nil
	}
	if vl, ok := sch.Vertices[label]; ok {
		return vl.Properties[prop]
	}
	return nil
}

// parsePath splits a schema.Change.Path of the form "section.label" or
// "section.label.property" produced by schema.Compare.
func parsePath(path string) (section, label, prop string) {
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

func toSet(ss []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

func sortedKeys(m map[string]*schema.VertexLabel) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedEdgeKeys(m map[string]*schema.EdgeLabel) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPropertyKeys(m map[string]*schema.PropertyDefinition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
