// Package query implements the fluent Cypher query builder of spec.md §4.8,
// grounded on query/cypher/vertex_query_builder.go and edge_query_builder.go's
// Set*() *T chain (each call appends state and returns the receiver) and
// query/cypher/utils.go's clause-fragment builders, generalized from two
// fixed shapes (vertex lookup, edge lookup) to the full clause sequence.
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/dialect"
	"github.com/standardbeagle/ageSchemaClient-sub007/executor"
	"github.com/standardbeagle/ageSchemaClient-sub007/param"
)

type clauseKind string

const (
	clauseMatch   clauseKind = "MATCH"
	clauseWhere   clauseKind = "WHERE"
	clauseWith    clauseKind = "WITH"
	clauseUnwind  clauseKind = "UNWIND"
	clauseReturn  clauseKind = "RETURN"
	clauseOrderBy clauseKind = "ORDER BY"
	clauseSkip    clauseKind = "SKIP"
	clauseLimit   clauseKind = "LIMIT"
	clauseCreate  clauseKind = "CREATE"
	clauseMerge   clauseKind = "MERGE"
	clauseSet     clauseKind = "SET"
	clauseRemove  clauseKind = "REMOVE"
	clauseDelete  clauseKind = "DELETE"
)

type clause struct {
	kind clauseKind
	text string
}

type pendingParam struct {
	key   string
	value interface{}
}

// Builder accumulates an ordered sequence of Cypher clauses plus the variable
// environment they introduce (spec.md §3's Cypher Variable Environment).
type Builder struct {
	graphName string
	clauses   []clause
	env       map[string]struct{}
	pending   []pendingParam
	bridge    *param.Bridge
	exec      *executor.Executor
}

// New creates a Builder targeting graphName. bridge/exec may be nil for
// callers that only want to compose and validate text (e.g. tests); Execute
// requires both.
func New(graphName string, bridge *param.Bridge, exec *executor.Executor) *Builder {
	return &Builder{graphName: graphName, env: map[string]struct{}{}, bridge: bridge, exec: exec}
}

func (b *Builder) addVar(alias string) {
	if alias != "" {
		b.env[alias] = struct{}{}
	}
}

// Match appends MATCH (alias:label {props}) and registers alias.
func (b *Builder) Match(label, alias string, props core.KVMap) *Builder {
	pattern := fmt.Sprintf("(%s:%s%s)", alias, label, formatProps(props))
	b.clauses = append(b.clauses, clause{kind: clauseMatch, text: pattern})
	b.addVar(alias)
	return b
}

// MatchEdge appends a MATCH (start)-[edgeAlias:edgeLabel {props}]->(end)
// pattern and registers all three aliases.
func (b *Builder) MatchEdge(startAlias, edgeAlias, edgeLabel, endAlias string, props core.KVMap) *Builder {
	pattern := fmt.Sprintf("(%s)-[%s:%s%s]->(%s)", startAlias, edgeAlias, edgeLabel, formatProps(props), endAlias)
	b.clauses = append(b.clauses, clause{kind: clauseMatch, text: pattern})
	b.addVar(startAlias)
	b.addVar(edgeAlias)
	b.addVar(endAlias)
	return b
}

// Where appends a raw boolean expression, ANDed with the WHERE clause
// immediately before it, if any.
func (b *Builder) Where(expr string) *Builder {
	if n := len(b.clauses); n > 0 && b.clauses[n-1].kind == clauseWhere {
		b.clauses[n-1].text = "(" + b.clauses[n-1].text + ") AND (" + expr + ")"
		return b
	}
	b.clauses = append(b.clauses, clause{kind: clauseWhere, text: expr})
	return b
}

// With appends a WITH projection. Each item may be "expr AS alias" or a bare
// alias; the alias (or bare identifier) is added to the variable
// environment.
func (b *Builder) With(items ...string) *Builder {
	for _, item := range items {
		b.addVar(aliasOf(item))
	}
	b.clauses = append(b.clauses, clause{kind: clauseWith, text: strings.Join(items, ", ")})
	return b
}

// Unwind appends UNWIND expr AS alias and registers alias.
func (b *Builder) Unwind(expr, alias string) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseUnwind, text: fmt.Sprintf("%s AS %s", expr, alias)})
	b.addVar(alias)
	return b
}

// Return appends a RETURN clause over the given expressions.
func (b *Builder) Return(exprs ...string) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseReturn, text: strings.Join(exprs, ", ")})
	return b
}

// ReturnDistinct appends RETURN DISTINCT.
func (b *Builder) ReturnDistinct(exprs ...string) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseReturn, text: "DISTINCT " + strings.Join(exprs, ", ")})
	return b
}

// OrderBy appends ORDER BY expr [DESC].
func (b *Builder) OrderBy(expr string, descending bool) *Builder {
	text := expr
	if descending {
		text += " DESC"
	}
	b.clauses = append(b.clauses, clause{kind: clauseOrderBy, text: text})
	return b
}

// Skip appends SKIP n.
func (b *Builder) Skip(n int) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseSkip, text: strconv.Itoa(n)})
	return b
}

// Limit appends LIMIT n.
func (b *Builder) Limit(n int) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseLimit, text: strconv.Itoa(n)})
	return b
}

// Create appends CREATE (alias:label {props}) and registers alias.
func (b *Builder) Create(label, alias string, props core.KVMap) *Builder {
	pattern := fmt.Sprintf("(%s:%s%s)", alias, label, formatProps(props))
	b.clauses = append(b.clauses, clause{kind: clauseCreate, text: pattern})
	b.addVar(alias)
	return b
}

// Merge appends MERGE (alias:label {props}) and registers alias.
func (b *Builder) Merge(label, alias string, props core.KVMap) *Builder {
	pattern := fmt.Sprintf("(%s:%s%s)", alias, label, formatProps(props))
	b.clauses = append(b.clauses, clause{kind: clauseMerge, text: pattern})
	b.addVar(alias)
	return b
}

// CreateEdgeBetween appends CREATE (startAlias)-[edgeAlias:edgeLabel
// {props}]->(endAlias), connecting two aliases already bound by a prior
// Match/Create/Merge, and registers edgeAlias.
func (b *Builder) CreateEdgeBetween(startAlias, edgeAlias, edgeLabel, endAlias string, props core.KVMap) *Builder {
	pattern := fmt.Sprintf("(%s)-[%s:%s%s]->(%s)", startAlias, edgeAlias, edgeLabel, formatProps(props), endAlias)
	b.clauses = append(b.clauses, clause{kind: clauseCreate, text: pattern})
	b.addVar(edgeAlias)
	return b
}

// Set appends a SET clause over raw "alias.prop = expr" assignments.
func (b *Builder) Set(assignments ...string) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseSet, text: strings.Join(assignments, ", ")})
	return b
}

// Remove appends a REMOVE clause over raw "alias.prop"/"alias:Label" items.
func (b *Builder) Remove(items ...string) *Builder {
	b.clauses = append(b.clauses, clause{kind: clauseRemove, text: strings.Join(items, ", ")})
	return b
}

// Delete appends a DELETE (or DETACH DELETE) clause over the given aliases.
func (b *Builder) Delete(detach bool, aliases ...string) *Builder {
	text := strings.Join(aliases, ", ")
	if detach {
		text = "DETACH " + text
	}
	b.clauses = append(b.clauses, clause{kind: clauseDelete, text: text})
	return b
}

// SetParam queues value to be written to the Parameter Bridge under key when
// Execute runs (spec.md §4.8: "setParam(key, value) routes values through the
// Parameter Bridge").
func (b *Builder) SetParam(key string, value interface{}) *Builder {
	b.pending = append(b.pending, pendingParam{key: key, value: value})
	return b
}

// Build assembles the accumulated clauses into Cypher text. It does not run
// pre-execution validation; callers that want P1 enforcement call
// ValidateQuery first (Execute does this for them).
func (b *Builder) Build() (string, error) {
	if len(b.clauses) == 0 {
		return "", ageerr.New(ageerr.QueryError, "no clauses have been added to the builder")
	}
	var sb strings.Builder
	for i, c := range b.clauses {
		if i > 0 {
			sb.WriteString("\n")
		}
		if c.kind == clauseDelete && strings.HasPrefix(c.text, "DETACH ") {
			sb.WriteString("DETACH DELETE " + strings.TrimPrefix(c.text, "DETACH "))
			continue
		}
		sb.WriteString(string(c.kind))
		sb.WriteString(" ")
		sb.WriteString(c.text)
	}
	return sb.String(), nil
}

// ExecuteOptions mirrors spec.md §4.8's execute(opts?) signature.
type ExecuteOptions struct {
	Validate bool
	executor.Options
}

// DefaultExecuteOptions validates by default (spec.md §4.8: "Execution
// proceeds only if the error list is empty, unless the caller passes
// {validate: false}").
func DefaultExecuteOptions() ExecuteOptions {
	return ExecuteOptions{Validate: true, Options: executor.DefaultOptions()}
}

// Execute validates (unless disabled), writes any queued SetParam values, and
// runs the assembled query.
func (b *Builder) Execute(ctx context.Context, opts ExecuteOptions) (*core.QueryResult, error) {
	if opts.Validate {
		if issues := b.ValidateQuery(); len(issues) > 0 {
			return nil, ageerr.New(ageerr.QueryError, formatIssues(issues))
		}
	}
	for _, p := range b.pending {
		if b.bridge == nil {
			return nil, ageerr.New(ageerr.QueryError, "builder has no Parameter Bridge attached; cannot write queued SetParam values")
		}
		if err := b.bridge.Set(ctx, p.key, p.value); err != nil {
			return nil, err
		}
	}
	text, err := b.Build()
	if err != nil {
		return nil, err
	}
	if b.exec == nil {
		return nil, ageerr.New(ageerr.QueryError, "builder has no Executor attached; cannot execute")
	}
	return b.exec.ExecuteCypher(ctx, text, nil, b.graphName, opts.Options)
}

// Explain renders the built query prefixed with EXPLAIN, a developer
// diagnostic carried over from the original implementation (SPEC_FULL.md
// §9.1).
func (b *Builder) Explain() (string, error) {
	text, err := b.Build()
	if err != nil {
		return "", err
	}
	return "EXPLAIN " + text, nil
}

func formatProps(props core.KVMap) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	var sb strings.Builder
	sb.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(dialect.FormatValue(props[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

func aliasOf(projection string) string {
	if idx := strings.LastIndex(strings.ToUpper(projection), " AS "); idx >= 0 {
		return strings.TrimSpace(projection[idx+4:])
	}
	return strings.TrimSpace(projection)
}

func formatIssues(issues []ValidationIssue) string {
	parts := make([]string, len(issues))
	for i, iss := range issues {
		parts[i] = iss.Error()
	}
	return strings.Join(parts, "; ")
}
