package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ValidationIssue reports one undefined-variable reference found while
// checking a builder's WHERE/RETURN/ORDER BY/WITH/SET/REMOVE/DELETE text
// against the variable environment (spec.md §4.8, P1).
type ValidationIssue struct {
	Variable   string
	Clause     string
	Suggestion string
}

func (i ValidationIssue) Error() string {
	if i.Suggestion != "" {
		return fmt.Sprintf("Variable '%s' is not defined. Did you mean: %s?", i.Variable, i.Suggestion)
	}
	return fmt.Sprintf("Variable '%s' is not defined", i.Variable)
}

// reserved holds Cypher keywords and built-in function names that are never
// themselves variable references (spec.md §4.8's validation excludes "literals,
// reserved keywords, and built-in function names").
var reserved = map[string]struct{}{
	"NOT": {}, "AND": {}, "OR": {}, "XOR": {}, "TRUE": {}, "FALSE": {}, "NULL": {},
	"AS": {}, "IN": {}, "IS": {}, "DISTINCT": {}, "DESC": {}, "ASC": {}, "DETACH": {},
	"count": {}, "sum": {}, "avg": {}, "min": {}, "max": {}, "collect": {},
	"exists": {}, "length": {}, "type": {}, "toString": {}, "toInteger": {},
	"toFloat": {}, "labels": {}, "id": {}, "properties": {}, "coalesce": {},
}

var identToken = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
var stringLiteral = regexp.MustCompile(`'[^']*'|"[^"]*"`)
var numberLiteral = regexp.MustCompile(`\b\d+(\.\d+)?\b`)

// ValidateQuery extracts every bare identifier referenced in the builder's
// WHERE, RETURN, ORDER BY, WITH, SET, REMOVE and DELETE clauses and checks it
// against the variable environment accumulated from MATCH/WITH/UNWIND/
// CREATE/MERGE, suggesting the closest known alias (Levenshtein distance <=2)
// when a reference is undefined.
func (b *Builder) ValidateQuery() []ValidationIssue {
	var issues []ValidationIssue
	seen := map[string]bool{}
	for _, c := range b.clauses {
		switch c.kind {
		case clauseWhere, clauseReturn, clauseOrderBy, clauseWith, clauseSet, clauseRemove, clauseDelete:
			for _, v := range extractVariables(c.text) {
				if seen[v] {
					continue
				}
				if _, ok := b.env[v]; ok {
					continue
				}
				if _, ok := reserved[v]; ok {
					continue
				}
				seen[v] = true
				issues = append(issues, ValidationIssue{
					Variable:   v,
					Clause:     string(c.kind),
					Suggestion: closestAlias(v, b.env),
				})
			}
		}
	}
	return issues
}

// extractVariables pulls the leading identifier out of each "ident" or
// "ident.prop" reference in text, skipping string/number literals and
// function calls (an identifier immediately followed by "(").
func extractVariables(text string) []string {
	stripped := stringLiteral.ReplaceAllString(text, "")
	var vars []string
	matches := identToken.FindAllStringIndex(stripped, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		tok := stripped[start:end]
		if numberLiteral.MatchString(tok) {
			continue
		}
		// skip if this identifier is a property access continuation (preceded by '.')
		if start > 0 && stripped[start-1] == '.' {
			continue
		}
		// skip function calls: identifier immediately followed by '('
		rest := strings.TrimLeft(stripped[end:], " ")
		if strings.HasPrefix(rest, "(") {
			continue
		}
		if _, ok := reserved[tok]; ok {
			continue
		}
		vars = append(vars, tok)
	}
	return vars
}

func closestAlias(target string, env map[string]struct{}) string {
	best := ""
	bestDist := 3
	for alias := range env {
		d := levenshtein.ComputeDistance(target, alias)
		if d < bestDist {
			bestDist = d
			best = alias
		}
	}
	return best
}
