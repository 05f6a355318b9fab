// Package graph provides single-entity vertex and edge operations above the
// executor (spec.md §4.9), grounded on agensgraph/executor.go's
// QueryVertex/StoreVertex/QueryEdge/StoreEdge: build a query, run it, decode
// the agtype result back into core.Vertex/core.Edge. Unlike the teacher's
// methods, every operation here first checks the label against a schema and
// surfaces a typed SCHEMA_VALIDATION_ERROR when it is absent.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/standardbeagle/ageSchemaClient-sub007/ageerr"
	"github.com/standardbeagle/ageSchemaClient-sub007/core"
	"github.com/standardbeagle/ageSchemaClient-sub007/dialect"
	"github.com/standardbeagle/ageSchemaClient-sub007/executor"
	"github.com/standardbeagle/ageSchemaClient-sub007/param"
	"github.com/standardbeagle/ageSchemaClient-sub007/query"
	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

// Store runs vertex/edge CRUD shims against one schema and session.
type Store struct {
	bridge *param.Bridge
	exec   *executor.Executor
	sch    *schema.Schema
}

// New wraps sess for schema-checked vertex/edge operations.
func New(sess *session.Session, sch *schema.Schema) *Store {
	return &Store{bridge: param.New(sess), exec: executor.New(sess), sch: sch}
}

func (s *Store) vertexLabel(label string) (*schema.VertexLabel, error) {
	vl, ok := s.sch.Vertices[label]
	if !ok {
		return nil, ageerr.New(ageerr.SchemaValidationError, fmt.Sprintf("vertex label %q is not defined in schema", label))
	}
	return vl, nil
}

func (s *Store) edgeLabel(label string) (*schema.EdgeLabel, error) {
	el, ok := s.sch.Edges[label]
	if !ok {
		return nil, ageerr.New(ageerr.SchemaValidationError, fmt.Sprintf("edge label %q is not defined in schema", label))
	}
	return el, nil
}

// CreateVertex validates label against the schema, then creates a single
// vertex carrying props. When the label declares an "id" property and the
// caller didn't supply one, a uuid is generated for it (SPEC_FULL.md §2.1).
func (s *Store) CreateVertex(ctx context.Context, graphName, label string, props core.KVMap) (*core.Vertex, error) {
	vl, err := s.vertexLabel(label)
	if err != nil {
		return nil, err
	}
	props = withDefaultID(vl, props)
	b := query.New(graphName, s.bridge, s.exec)
	b.Create(label, "n", props).Return("n")
	res, err := b.Execute(ctx, query.DefaultExecuteOptions())
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, ageerr.New(ageerr.QueryError, "create vertex returned no row")
	}
	return executor.DecodeVertex(res.Rows[0], "n")
}

// FindVertices validates label against the schema, then runs a
// MATCH (n:label {filter}) RETURN n, matching every key/value in filter
// exactly.
func (s *Store) FindVertices(ctx context.Context, graphName, label string, filter core.KVMap) ([]*core.Vertex, error) {
	if _, err := s.vertexLabel(label); err != nil {
		return nil, err
	}
	b := query.New(graphName, s.bridge, s.exec)
	b.Match(label, "n", filter).Return("n")
	res, err := b.Execute(ctx, query.DefaultExecuteOptions())
	if err != nil {
		return nil, err
	}
	vertices := make([]*core.Vertex, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, err := executor.DecodeVertex(row, "n")
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

// UpdateVertex validates label, matches the vertex by id, and applies a SET
// over props.
func (s *Store) UpdateVertex(ctx context.Context, graphName, label string, id interface{}, props core.KVMap) (*core.Vertex, error) {
	if _, err := s.vertexLabel(label); err != nil {
		return nil, err
	}
	b := query.New(graphName, s.bridge, s.exec)
	b.Match(label, "n", core.KVMap{"id": id})
	assignments := make([]string, 0, len(props))
	keys := sortedKeys(props)
	for _, k := range keys {
		assignments = append(assignments, fmt.Sprintf("n.%s = %s", k, dialect.FormatValue(props[k])))
	}
	b.Set(assignments...)
	b.Return("n")
	res, err := b.Execute(ctx, query.DefaultExecuteOptions())
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, ageerr.New(ageerr.QueryError, fmt.Sprintf("vertex %v not found for update", id))
	}
	return executor.DecodeVertex(res.Rows[0], "n")
}

// DeleteVertex validates label, matches the vertex by id, and removes it and
// every edge attached to it.
func (s *Store) DeleteVertex(ctx context.Context, graphName, label string, id interface{}) error {
	if _, err := s.vertexLabel(label); err != nil {
		return err
	}
	b := query.New(graphName, s.bridge, s.exec)
	b.Match(label, "n", core.KVMap{"id": id}).Delete(true, "n")
	_, err := b.Execute(ctx, query.DefaultExecuteOptions())
	return err
}

// CreateEdge validates label against the schema, then matches the two
// endpoint vertices by id (using the edge label's declared FromLabel/ToLabel)
// and creates the edge between them carrying props.
func (s *Store) CreateEdge(ctx context.Context, graphName, label string, fromID, toID interface{}, props core.KVMap) (*core.Edge, error) {
	el, err := s.edgeLabel(label)
	if err != nil {
		return nil, err
	}
	props = withDefaultID(&el.VertexLabel, props)
	b := query.New(graphName, s.bridge, s.exec)
	b.Match(el.FromLabel, "a", core.KVMap{"id": fromID})
	b.Match(el.ToLabel, "b", core.KVMap{"id": toID})
	b.CreateEdgeBetween("a", "r", label, "b", props)
	b.Return("r")
	res, execErr := b.Execute(ctx, query.DefaultExecuteOptions())
	if execErr != nil {
		return nil, execErr
	}
	if len(res.Rows) == 0 {
		return nil, ageerr.New(ageerr.QueryError, "create edge returned no row; one or both endpoints may not exist")
	}
	return executor.DecodeEdge(res.Rows[0], "r")
}

// DecodeInto copies a vertex or edge's properties into dest, a pointer to a
// caller-defined struct, using mapstructure's tag-based field mapping.
func DecodeInto(el core.GraphElement, dest interface{}) error {
	if err := mapstructure.Decode(map[string]interface{}(el.GetProperties()), dest); err != nil {
		return ageerr.Wrap(ageerr.QueryError, "decode graph element into struct", err)
	}
	return nil
}

// withDefaultID returns props unchanged unless vl declares an "id" property
// and the caller didn't supply one, in which case it returns a copy of props
// with a generated uuid filled in.
func withDefaultID(vl *schema.VertexLabel, props core.KVMap) core.KVMap {
	if _, declared := vl.Properties["id"]; !declared {
		return props
	}
	if _, supplied := props["id"]; supplied {
		return props
	}
	out := make(core.KVMap, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out["id"] = uuid.NewString()
	return out
}

func sortedKeys(m core.KVMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
